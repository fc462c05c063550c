package codegen

import "fmt"

// DiagnosticKind classifies a compile diagnostic.
type DiagnosticKind string

// Diagnostic kinds reported by the compiler. None of them stop compilation.
const (
	// KindMissingElement: a referenced key has no element; it renders empty.
	KindMissingElement DiagnosticKind = "missing_element"
	// KindCycle: a key is already on the current render path; it renders empty.
	KindCycle DiagnosticKind = "cycle"
	// KindMaxDepth: nesting exceeded the configured depth; the subtree renders empty.
	KindMaxDepth DiagnosticKind = "max_depth"
	// KindUnregistered: a used type has no template; it gets no component file.
	KindUnregistered DiagnosticKind = "unregistered_component"
	// KindUnencodable: a value has no literal form; it is dropped.
	KindUnencodable DiagnosticKind = "unencodable_value"
)

// Diagnostic is a non-fatal finding produced while compiling a tree.
type Diagnostic struct {
	Kind DiagnosticKind `json:"kind"`
	// Key is the element key the diagnostic refers to, if any.
	Key string `json:"key,omitempty"`
	// Prop is the prop name for value diagnostics.
	Prop    string `json:"prop,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	switch {
	case d.Key != "" && d.Prop != "":
		return fmt.Sprintf("%s: %s.%s: %s", d.Kind, d.Key, d.Prop, d.Message)
	case d.Key != "":
		return fmt.Sprintf("%s: %s: %s", d.Kind, d.Key, d.Message)
	default:
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
}

// CountKind returns how many diagnostics have the given kind.
func CountKind(diags []Diagnostic, kind DiagnosticKind) int {
	n := 0
	for _, d := range diags {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
