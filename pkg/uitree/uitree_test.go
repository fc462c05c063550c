package uitree

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBindingProp(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"dataPath", true},
		{"bindPath", true},
		{"valuePath", true},
		{"Path", true},
		{"path", false},
		{"symbol", false},
		{"pathPrefix", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBindingProp(tt.name))
		})
	}
}

func TestTree_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Tree{}).Validate(), ErrNoRoot)
	assert.ErrorIs(t, (*Tree)(nil).Validate(), ErrNoRoot)

	tree := &Tree{Root: "main", Elements: map[string]*Element{}}
	assert.ErrorIs(t, tree.Validate(), ErrRootMissing)

	assert.NoError(t, DemoTree().Validate())
}

func TestProps_UnmarshalJSON_KeepsOrder(t *testing.T) {
	var props Props
	err := json.Unmarshal([]byte(`{"zeta": 1, "alpha": "a", "mid": null, "nested": {"b": [1, 2]}}`), &props)
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid", "nested"}, props.Names())

	v, ok := props.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok = props.Get("mid")
	require.True(t, ok)
	assert.Nil(t, v)

	nested, ok := props.Get("nested")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"b": []any{1, 2}}, nested)
}

func TestProps_WithoutNil(t *testing.T) {
	props := P("language", nil, "dataPath", "/github/trending", "limit", 0, "flag", false)

	got := props.WithoutNil()

	assert.Equal(t, []string{"dataPath", "limit", "flag"}, got.Names())
	// the source is left untouched
	assert.Len(t, props, 4)
}

func TestProps_MarshalJSON_KeepsOrder(t *testing.T) {
	data, err := json.Marshal(P("symbol", "BTC", "dataPath", "/crypto/bitcoin", "columns", 2))
	require.NoError(t, err)
	assert.Equal(t, `{"symbol":"BTC","dataPath":"/crypto/bitcoin","columns":2}`, string(data))
}

func TestP_PanicsOnOddArgs(t *testing.T) {
	assert.Panics(t, func() { P("only-name") })
	assert.Panics(t, func() { P(1, "value") })
}

func TestParse_JSON(t *testing.T) {
	src := `{
  "root": "main",
  "elements": {
    "main": {"key": "main", "type": "Grid", "props": {"gap": "lg", "columns": 2}, "children": ["c1"]},
    "c1": {"type": "CryptoCard", "props": {"symbol": "BTC", "dataPath": "/crypto/bitcoin"}}
  }
}`
	tree, err := Parse([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "main", tree.Root)
	require.Len(t, tree.Elements, 2)

	main, ok := tree.Get("main")
	require.True(t, ok)
	assert.Equal(t, []string{"gap", "columns"}, main.Props.Names())
	assert.Equal(t, []string{"c1"}, main.Children)

	c1, ok := tree.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "c1", c1.Key, "key should be inherited from the map key")
	assert.Equal(t, []string{"symbol", "dataPath"}, c1.Props.Names())
}

func TestParse_YAML(t *testing.T) {
	src := `
root: page
elements:
  page:
    type: Stack
    props:
      direction: vertical
      gap: md
    children: [title]
  title:
    type: Heading
    props:
      text: Hello
      level: h1
`
	tree, err := Parse([]byte(src))
	require.NoError(t, err)

	page, ok := tree.Get("page")
	require.True(t, ok)
	assert.Equal(t, "Stack", page.Type)
	assert.Equal(t, []string{"direction", "gap"}, page.Props.Names())
	assert.Equal(t, []string{"title"}, page.Children)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{name: "no root", src: `{"elements": {}}`, want: ErrNoRoot},
		{name: "root missing", src: `{"root": "x", "elements": {"y": {"type": "Text"}}}`, want: ErrRootMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Parse([]byte(`{"root": [`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"root":"a","elements":{"a":{"type":"Text","props":{"content":"hi"}}}}`), 0600))

	tree, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a", tree.Root)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestParseData(t *testing.T) {
	data, err := ParseData([]byte(`{"crypto": {"bitcoin": {"price": 45230, "change": 2.84}}}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"crypto": map[string]any{
			"bitcoin": map[string]any{"price": 45230, "change": 2.84},
		},
	}, data)

	empty, err := ParseData(nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCollect_DemoScenario(t *testing.T) {
	used := Collect(DemoTree())

	assert.Len(t, used, 4, "duplicate CryptoCard instances collapse")
	assert.Equal(t, []string{"CryptoCard", "Grid", "TrendingRepos", "WeatherWidget"}, used.Sorted())
}

func TestCollect_IgnoresUnreachable(t *testing.T) {
	tree := &Tree{
		Root: "root",
		Elements: map[string]*Element{
			"root":   {Key: "root", Type: "Stack", Children: []string{"a", "ghost"}},
			"a":      {Key: "a", Type: "Text"},
			"orphan": {Key: "orphan", Type: "Chart"},
		},
	}

	used := Collect(tree)

	assert.True(t, used.Has("Stack"))
	assert.True(t, used.Has("Text"))
	assert.False(t, used.Has("Chart"), "unreachable element must not contribute")
	assert.Len(t, used, 2)
}

func TestCollect_TerminatesOnCycle(t *testing.T) {
	tree := &Tree{
		Root: "a",
		Elements: map[string]*Element{
			"a": {Key: "a", Type: "Stack", Children: []string{"b"}},
			"b": {Key: "b", Type: "Card", Children: []string{"a"}},
		},
	}

	assert.Equal(t, []string{"Card", "Stack"}, Collect(tree).Sorted())
	assert.Equal(t, []string{"a", "b"}, Reachable(tree))
}

func TestWalk_Depth(t *testing.T) {
	depths := map[string]int{}
	Walk(DemoTree(), func(el *Element, depth int) {
		depths[el.Key] = depth
	})

	assert.Equal(t, 0, depths["main"])
	assert.Equal(t, 1, depths["crypto1"])
	assert.Equal(t, 1, depths["crypto2"])
	assert.Len(t, depths, 5)
}

func TestElement_BindingPaths(t *testing.T) {
	el := &Element{Props: P("symbol", "BTC", "dataPath", "/crypto/bitcoin", "valuePath", 3, "bindPath", "/form/x")}

	got := el.BindingPaths()

	require.Len(t, got, 2)
	assert.Equal(t, "dataPath", got[0].Name)
	assert.Equal(t, "bindPath", got[1].Name)
}

func TestParse_JSONEscapedSlash(t *testing.T) {
	src := `{"root":"link","elements":{"link":{"type":"Button","props":{"label":"Go","url":"https:\/\/x.io"}}}}`

	tree, err := Parse([]byte(src))
	require.NoError(t, err)

	link, ok := tree.Get("link")
	require.True(t, ok)
	v, ok := link.Props.Get("url")
	require.True(t, ok)
	assert.Equal(t, "https://x.io", v)
	assert.Equal(t, []string{"label", "url"}, link.Props.Names())
}

func TestParse_JSONDuplicateKeys(t *testing.T) {
	src := `{
  "root": "a",
  "elements": {
    "a": {"type": "Text", "props": {"content": "first", "size": "sm", "content": "last"}},
    "a": {"type": "Heading", "props": {"text": "kept", "level": "h2", "text": "final"}}
  }
}`
	tree, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, tree.Elements, 1)

	a, ok := tree.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Heading", a.Type, "last element definition wins")
	// a repeated prop keeps its first position and takes the last value
	assert.Equal(t, []string{"text", "level"}, a.Props.Names())
	v, _ := a.Props.Get("text")
	assert.Equal(t, "final", v)
}

func TestParseData_JSONEscapesAndDuplicates(t *testing.T) {
	data, err := ParseData([]byte(`{"s": "a\/b", "n": 1, "n": 2.5, "big": 12345678901}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"s": "a/b", "n": 2.5, "big": 12345678901}, data)

	_, err = ParseData([]byte(`{"a": 1} {"b": 2}`))
	assert.Error(t, err)
}

func TestProps_UnmarshalJSON_Null(t *testing.T) {
	var el Element
	require.NoError(t, json.Unmarshal([]byte(`{"type": "Divider", "props": null}`), &el))
	assert.Nil(t, el.Props)

	var props Props
	assert.Error(t, json.Unmarshal([]byte(`["not", "an", "object"]`), &props))
}
