// Package uitree defines the declarative UI tree consumed by the project
// compiler: a root key plus a flat map of typed elements that reference their
// children by key.
package uitree

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by Validate and the loaders.
var (
	ErrNoRoot      = errors.New("tree has no root key")
	ErrRootMissing = errors.New("root key not found in elements")
)

// Data-binding prop names that are not covered by the Path suffix rule.
const (
	BindPathProp = "bindPath"
	DataPathProp = "dataPath"
)

// Tree is an abstract, serializable component hierarchy.
type Tree struct {
	Root     string              `json:"root" yaml:"root"`
	Elements map[string]*Element `json:"elements" yaml:"elements"`
}

// Element is one node of a Tree.
type Element struct {
	Key      string   `json:"key" yaml:"key"`
	Type     string   `json:"type" yaml:"type"`
	Props    Props    `json:"props" yaml:"props"`
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`
}

// HasChildren reports whether the element has at least one child key.
func (e *Element) HasChildren() bool {
	return len(e.Children) > 0
}

// Get returns the element stored under key.
func (t *Tree) Get(key string) (*Element, bool) {
	if t == nil || t.Elements == nil {
		return nil, false
	}
	el, ok := t.Elements[key]
	if !ok || el == nil {
		return nil, false
	}
	return el, true
}

// Validate checks the structural preconditions that loaders can enforce
// cheaply: a root key that exists. Dangling child keys and cycles are left to
// the compiler, which degrades them to diagnostics.
func (t *Tree) Validate() error {
	if t == nil || t.Root == "" {
		return ErrNoRoot
	}
	if _, ok := t.Get(t.Root); !ok {
		return fmt.Errorf("%w: %q", ErrRootMissing, t.Root)
	}
	return nil
}

// IsBindingProp reports whether a prop name marks a data-path reference.
func IsBindingProp(name string) bool {
	return strings.HasSuffix(name, "Path") || name == BindPathProp || name == DataPathProp
}

// BindingPaths returns the string values of the element's binding props in
// prop order. Non-string and nil values are skipped.
func (e *Element) BindingPaths() []Prop {
	var out []Prop
	for _, p := range e.Props {
		if !IsBindingProp(p.Name) {
			continue
		}
		if _, ok := p.Value.(string); ok {
			out = append(out, p)
		}
	}
	return out
}
