package uitree

import "sort"

// ComponentSet is a set of component type names.
type ComponentSet map[string]struct{}

// Has reports whether name is in the set.
func (s ComponentSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the set members in ascending order.
func (s ComponentSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collect returns the distinct element types reachable from the root.
// Missing child keys are skipped and every key is visited at most once, so
// cyclic trees terminate.
func Collect(t *Tree) ComponentSet {
	used := make(ComponentSet)
	Walk(t, func(el *Element, _ int) {
		used[el.Type] = struct{}{}
	})
	return used
}

// Walk visits every element reachable from the root once, depth-first and
// pre-order, passing the element and its depth (root = 0).
func Walk(t *Tree, fn func(el *Element, depth int)) {
	if t == nil {
		return
	}
	seen := make(map[string]bool)
	var visit func(key string, depth int)
	visit = func(key string, depth int) {
		if seen[key] {
			return
		}
		el, ok := t.Get(key)
		if !ok {
			return
		}
		seen[key] = true
		fn(el, depth)
		for _, child := range el.Children {
			visit(child, depth+1)
		}
	}
	visit(t.Root, 0)
}

// Reachable returns the keys reachable from the root in visit order.
func Reachable(t *Tree) []string {
	var keys []string
	Walk(t, func(el *Element, _ int) {
		keys = append(keys, el.Key)
	})
	return keys
}
