package codegen

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/dashgen/pkg/uitree"
)

const (
	// IndentStep is the indentation added per nesting level.
	IndentStep = 2

	// DefaultMaxDepth bounds markup nesting.
	DefaultMaxDepth = 128

	// dataAttr references the data constant compiled into the entry file.
	dataAttr = " data={data}"
)

// dataComponents are the built-in types that always receive the data object.
var dataComponents = map[string]bool{
	"Chart":  true,
	"Table":  true,
	"Metric": true,
	"List":   true,
}

// NeedsData reports whether an element of the given type with the given
// (nil-free) props receives the data attribute.
func NeedsData(typ string, props uitree.Props) bool {
	if dataComponents[typ] {
		return true
	}
	for _, p := range props {
		if uitree.IsBindingProp(p.Name) {
			return true
		}
	}
	return false
}

// Emit renders the subtree rooted at key as JSX, starting at the given
// indentation. Diagnostics describe elements that rendered empty and values
// that were dropped.
func Emit(t *uitree.Tree, key string, indent int) (string, []Diagnostic) {
	e := &emitter{tree: t, maxDepth: DefaultMaxDepth, onPath: make(map[string]bool)}
	out := e.emit(key, indent, 0)
	return out, e.diags
}

type emitter struct {
	tree     *uitree.Tree
	maxDepth int

	// onPath holds the keys on the current recursion path.
	onPath map[string]bool
	diags  []Diagnostic
}

func (e *emitter) emit(key string, indent, depth int) string {
	el, ok := e.tree.Get(key)
	if !ok {
		e.report(KindMissingElement, key, "element not found; rendered empty")
		return ""
	}
	if e.onPath[key] {
		e.report(KindCycle, key, "element is its own ancestor; rendered empty")
		return ""
	}
	if depth >= e.maxDepth {
		e.report(KindMaxDepth, key, fmt.Sprintf("nesting deeper than %d; subtree rendered empty", e.maxDepth))
		return ""
	}

	props := el.Props.WithoutNil()
	attrs, diags := SerializeProps(props)
	for _, d := range diags {
		d.Key = key
		e.diags = append(e.diags, d)
	}

	var open strings.Builder
	open.WriteString(strings.Repeat(" ", indent))
	open.WriteString("<")
	open.WriteString(el.Type)
	if NeedsData(el.Type, props) {
		open.WriteString(dataAttr)
	}
	if attrs != "" {
		open.WriteString(" ")
		open.WriteString(attrs)
	}

	if !el.HasChildren() {
		open.WriteString(" />")
		return open.String()
	}
	open.WriteString(">")

	e.onPath[key] = true
	defer delete(e.onPath, key)

	lines := make([]string, 0, len(el.Children)+2)
	lines = append(lines, open.String())
	for _, child := range el.Children {
		if out := e.emit(child, indent+IndentStep, depth+1); out != "" {
			lines = append(lines, out)
		}
	}
	lines = append(lines, strings.Repeat(" ", indent)+"</"+el.Type+">")

	return strings.Join(lines, "\n")
}

func (e *emitter) report(kind DiagnosticKind, key, msg string) {
	e.diags = append(e.diags, Diagnostic{Kind: kind, Key: key, Message: msg})
}
