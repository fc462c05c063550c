package verify

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/dashgen/pkg/codegen"
	"github.com/leapstack-labs/dashgen/pkg/uitree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileDemo(t *testing.T) []codegen.GeneratedFile {
	t.Helper()
	res := codegen.New(codegen.Config{}).Compile(uitree.DemoTree(), codegen.Options{
		Data: map[string]any{"crypto": map[string]any{"bitcoin": map[string]any{"price": 45230, "change": 2.84}}},
	})
	return res.Files
}

func TestSyntax_DemoProject(t *testing.T) {
	report := Syntax(compileDemo(t))

	assert.True(t, report.OK(), "issues: %v", report.Issues)
	// next.config.js, layout, 4 components, index, page
	assert.Equal(t, 8, report.Checked)
	assert.NoError(t, report.Err())
}

func TestSyntax_ReportsErrors(t *testing.T) {
	files := []codegen.GeneratedFile{
		{Path: "app/page.tsx", Content: "export const a = 1;\nconst b = ;\n"},
		{Path: "README.md", Content: "# not checked"},
	}

	report := Syntax(files)

	assert.Equal(t, 1, report.Checked)
	require.False(t, report.OK())
	assert.Equal(t, "app/page.tsx", report.Issues[0].File)
	assert.Equal(t, 2, report.Issues[0].Line)
	assert.Contains(t, report.Err().Error(), "app/page.tsx:2:")
}

func TestBundle_DemoProject(t *testing.T) {
	report := Bundle(compileDemo(t), codegen.EntryPagePath)

	assert.True(t, report.OK(), "issues: %v", report.Issues)
	// page, index and the four components
	assert.Equal(t, 6, report.Checked)
}

func TestBundle_UnresolvedImport(t *testing.T) {
	files := []codegen.GeneratedFile{
		{Path: "app/page.tsx", Content: "import { Gauge } from \"@/components/ui/gauge\";\nexport default function Page() { return <Gauge />; }\n"},
	}

	report := Bundle(files, "app/page.tsx")

	require.False(t, report.OK())
	assert.True(t, strings.Contains(report.Err().Error(), "cannot resolve"), report.Err().Error())
}

func TestBundle_MissingEntry(t *testing.T) {
	report := Bundle(nil, "app/page.tsx")
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "entry file not generated", report.Issues[0].Text)
}

func TestProject(t *testing.T) {
	assert.True(t, Project(compileDemo(t)).OK())
}

func TestImportTarget(t *testing.T) {
	tests := []struct {
		importer, spec, want string
		local                bool
	}{
		{"app/page.tsx", "@/components/ui", "components/ui", true},
		{"components/ui/index.ts", "./grid", "components/ui/grid", true},
		{"components/ui/index.ts", "../lib/x", "components/lib/x", true},
		{"app/page.tsx", "react", "", false},
		{"app/page.tsx", "react/jsx-runtime", "", false},
	}

	for _, tt := range tests {
		got, local := importTarget(tt.importer, tt.spec)
		assert.Equal(t, tt.local, local, tt.spec)
		assert.Equal(t, tt.want, got, tt.spec)
	}
}
