package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMode(t *testing.T) {
	assert.Equal(t, ModeJSON, Mode("json"))
	assert.Equal(t, ModeText, Mode("text"))
	assert.Equal(t, ModeMarkdown, Mode("markdown"))
	assert.Equal(t, ModeAuto, Mode(""))
	assert.Equal(t, ModeAuto, Mode("html"))
}

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{name: "auto tty", mode: ModeAuto, isTTY: true, want: ModeText},
		{name: "auto pipe", mode: ModeAuto, isTTY: false, want: ModeMarkdown},
		{name: "explicit json", mode: ModeJSON, isTTY: true, want: ModeJSON},
		{name: "explicit text", mode: ModeText, isTTY: false, want: ModeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, tt.isTTY, tt.mode)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_BufferIsNotATerminal(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestRenderer_MarkdownHeader(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeMarkdown)

	r.Header(2, "Components")

	assert.Equal(t, "## Components\n\n", out.String())
}

func TestRenderer_NoANSIWithoutTTY(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	r := NewRendererWithTTY(out, errOut, false, ModeText)

	r.Header(1, "Title")
	r.Success("done")
	r.StatusLine("app/page.tsx", "success", "(1.2 KB)")
	r.Warning("careful")
	r.Error("broken")

	assert.NotContains(t, out.String(), "\x1b[")
	assert.NotContains(t, errOut.String(), "\x1b[")
	assert.Contains(t, out.String(), "✓ done")
	assert.Contains(t, out.String(), "✓ app/page.tsx (1.2 KB)")
	assert.Contains(t, errOut.String(), "! careful")
	assert.Contains(t, errOut.String(), "✗ broken")
}

func TestRenderer_JSON(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeJSON)

	require.NoError(t, r.JSON(map[string]int{"files": 12}))
	assert.Equal(t, "{\n  \"files\": 12\n}\n", out.String())

	assert.Error(t, r.JSON(func() {}))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(1, "Title"))
	assert.Equal(t, "# Title", FormatHeader(0, "Title"))
	assert.Equal(t, "### Deep", FormatHeader(3, "Deep"))
	assert.Equal(t, "- **Files:** 12", FormatKeyValue("Files", "12"))
	assert.Equal(t, "```tsx\n<Grid />\n```", FormatCode("tsx", "<Grid />\n"))
}

func TestRenderer_Table(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeMarkdown)

	r.Table([]string{"Name", "Data"}, [][]string{{"Card", "no"}, {"Metric", "yes"}})

	assert.Contains(t, strings.ToLower(out.String()), "| name | data |")
	assert.Contains(t, out.String(), "| Metric | yes |")

	out.Reset()
	r = NewRendererWithTTY(out, &bytes.Buffer{}, false, ModeText)
	r.Table([]string{"Name"}, [][]string{{"Card"}})
	assert.Contains(t, out.String(), "│ Card │")
}
