// Package registry provides the component template registry.
// It maps component type names used in UI trees to the TSX source emitted for
// them in generated projects. A registry is built once and never mutated, so
// it can be shared between goroutines without locking.
package registry

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/dashgen/pkg/uitree"
)

//go:embed templates/*.tsx
var templateFS embed.FS

// ErrEmptyTemplate is returned when a template has no source text.
var ErrEmptyTemplate = errors.New("template is empty")

// dataHelper marks templates that resolve data paths at runtime.
const dataHelper = "function getByPath("

// Registry maps component names to template source text.
type Registry struct {
	// templates maps component names to source: "Metric" → "\"use client\";..."
	templates map[string]string

	// names holds the registered component names in ascending order
	names []string
}

// Info describes a registered template.
type Info struct {
	Name string `json:"name"`
	// File is the project-relative path the template is written to.
	File string `json:"file"`
	// ConsumesData is true when the template embeds its own path resolver.
	ConsumesData bool `json:"consumes_data"`
	// Props lists the props declared by the template's props interface, in
	// declaration order.
	Props []string `json:"props"`
	// BindingProps is the subset of Props that carry data paths.
	BindingProps []string `json:"binding_props,omitempty"`
	Lines        int      `json:"lines"`
}

// New creates a registry from a name → source map. The map is copied.
func New(templates map[string]string) (*Registry, error) {
	r := &Registry{
		templates: make(map[string]string, len(templates)),
		names:     make([]string, 0, len(templates)),
	}
	for name, src := range templates {
		if strings.TrimSpace(src) == "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptyTemplate, name)
		}
		r.templates[name] = src
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

// FromFS loads every *.tsx file in dir of fsys. The component name is the
// file name without its extension.
func FromFS(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read template directory: %w", err)
	}

	templates := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".tsx" {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", entry.Name(), err)
		}
		templates[strings.TrimSuffix(entry.Name(), ".tsx")] = string(content)
	}
	return New(templates)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry of built-in templates.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := FromFS(templateFS, "templates")
		if err != nil {
			// embedded at build time; only a broken build gets here
			panic(fmt.Sprintf("registry: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Lookup returns the template source for a component name.
func (r *Registry) Lookup(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	src, ok := r.templates[name]
	return src, ok
}

// Has reports whether a template is registered for name.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered component names in ascending order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

// FileName returns the project-relative file a component is written to.
func FileName(name string) string {
	return "components/ui/" + strings.ToLower(name) + ".tsx"
}

// propLine matches a member of a props interface: "  label: string;" or
// "  padding?: ... | null;".
var propLine = regexp.MustCompile(`^\s{2}(\w+)\??:`)

// Describe returns metadata for a registered template.
func (r *Registry) Describe(name string) (Info, bool) {
	src, ok := r.Lookup(name)
	if !ok {
		return Info{}, false
	}

	info := Info{
		Name:         name,
		File:         FileName(name),
		ConsumesData: strings.Contains(src, dataHelper),
		Lines:        strings.Count(src, "\n"),
	}

	inProps := false
	header := "interface " + name + "Props {"
	for _, line := range strings.Split(src, "\n") {
		switch {
		case strings.HasPrefix(line, header):
			inProps = true
		case inProps && strings.HasPrefix(line, "}"):
			inProps = false
		case inProps:
			m := propLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			// children and the injected data object are not authored props
			if m[1] == "children" || m[1] == "data" {
				continue
			}
			info.Props = append(info.Props, m[1])
			if uitree.IsBindingProp(m[1]) {
				info.BindingProps = append(info.BindingProps, m[1])
			}
		}
	}
	return info, true
}

// DescribeAll returns metadata for every registered template, sorted by name.
func (r *Registry) DescribeAll() []Info {
	infos := make([]Info, 0, r.Len())
	for _, name := range r.Names() {
		info, _ := r.Describe(name)
		infos = append(infos, info)
	}
	return infos
}
