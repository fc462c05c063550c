// Package datapath resolves slash-delimited paths against nested data.
//
// It mirrors the getByPath helper that generated components embed, so the
// CLI can report bindings that will render as placeholders at runtime. The
// project compiler does not use it: paths stay unresolved in generated markup.
package datapath

import "strings"

// Segments splits a path into its segments. A leading slash is ignored; an
// empty path has no segments.
func Segments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

// Resolve walks obj along path. It returns the referenced value and true, or
// nil and false when a segment is missing or the walk reaches a non-object.
// An empty path resolves to obj itself.
func Resolve(obj any, path string) (any, bool) {
	current := obj
	for _, segment := range Segments(path) {
		if current == nil {
			return nil, false
		}
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			// arrays are objects in the generated runtime, indexable by position
			idx, ok := index(segment, len(node))
			if !ok {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

func index(segment string, n int) (int, bool) {
	if segment == "" {
		return 0, false
	}
	idx := 0
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, false
		}
		idx = idx*10 + int(r-'0')
		if idx >= n {
			return 0, false
		}
	}
	return idx, true
}
