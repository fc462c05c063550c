// Package codegen compiles a UI tree and a data object into the files of a
// standalone Next.js project.
//
// Compilation is pure and deterministic: the same tree, data and template
// source always produce byte-identical files in the same order. It never
// fails; problems in the input are reported as diagnostics.
package codegen

import (
	"log/slog"
	"strings"

	"github.com/leapstack-labs/dashgen/internal/registry"
	"github.com/leapstack-labs/dashgen/pkg/uitree"
)

const (
	// DefaultProjectName is used when Options.ProjectName is empty.
	DefaultProjectName = "generated-dashboard"

	// entryIndent is the indentation of the root element inside the page
	// wrapper div. A base of 4 would leave the root flush with the div.
	entryIndent = 6
)

// File paths of the fixed project files.
const (
	PackageJSONPath  = "package.json"
	NextConfigPath   = "next.config.js"
	TSConfigPath     = "tsconfig.json"
	GlobalsCSSPath   = "app/globals.css"
	LayoutPath       = "app/layout.tsx"
	ComponentIndex   = "components/ui/index.ts"
	EntryPagePath    = "app/page.tsx"
	ReadmePath       = "README.md"
	fixedFilesBefore = 5
	fixedFilesAfter  = 3
)

// TemplateSource resolves component names to template source text.
type TemplateSource interface {
	Lookup(name string) (string, bool)
}

// GeneratedFile is one file of the compiled project.
type GeneratedFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Config configures a Compiler.
type Config struct {
	// Templates defaults to the built-in registry.
	Templates TemplateSource
	// MaxDepth bounds markup nesting; DefaultMaxDepth when zero.
	MaxDepth int
	Logger   *slog.Logger
}

// Options are per-compilation inputs.
type Options struct {
	ProjectName string
	// Data is embedded verbatim as the page's data constant. It is read,
	// never modified.
	Data map[string]any
}

// Result is the outcome of one compilation.
type Result struct {
	Files []GeneratedFile `json:"files"`
	// Components are the used types that got a component file, sorted.
	Components []string `json:"components"`
	// Unregistered are the used types with no template, sorted.
	Unregistered []string     `json:"unregistered,omitempty"`
	Diagnostics  []Diagnostic `json:"diagnostics,omitempty"`
}

// File returns the generated file at path.
func (r Result) File(path string) (GeneratedFile, bool) {
	for _, f := range r.Files {
		if f.Path == path {
			return f, true
		}
	}
	return GeneratedFile{}, false
}

// Compiler turns UI trees into project file sets. It is safe for concurrent
// use.
type Compiler struct {
	templates TemplateSource
	maxDepth  int
	logger    *slog.Logger
}

// New creates a Compiler.
func New(cfg Config) *Compiler {
	if cfg.Templates == nil {
		cfg.Templates = registry.Default()
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Compiler{
		templates: cfg.Templates,
		maxDepth:  cfg.MaxDepth,
		logger:    cfg.Logger,
	}
}

// Compile produces the project files for tree, in this order: package.json,
// next.config.js, tsconfig.json, app/globals.css, app/layout.tsx, one
// component file per used and registered type (sorted by name),
// components/ui/index.ts, app/page.tsx, README.md.
func (c *Compiler) Compile(tree *uitree.Tree, opts Options) Result {
	name := opts.ProjectName
	if name == "" {
		name = DefaultProjectName
	}

	var res Result
	used := uitree.Collect(tree).Sorted()

	type component struct {
		name string
		src  string
	}
	included := make([]component, 0, len(used))
	for _, typ := range used {
		src, ok := c.templates.Lookup(typ)
		if !ok {
			res.Unregistered = append(res.Unregistered, typ)
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Kind:    KindUnregistered,
				Message: "no template for " + typ + "; rendered in markup without a component file",
			})
			continue
		}
		included = append(included, component{name: typ, src: src})
		res.Components = append(res.Components, typ)
	}

	nameLit, err := encodeLiteral(name)
	if err != nil {
		// strings always encode
		nameLit = `"` + DefaultProjectName + `"`
	}
	vars := projectVars{Name: name, NameLiteral: nameLit}

	files := make([]GeneratedFile, 0, fixedFilesBefore+len(included)+fixedFilesAfter)
	files = append(files,
		GeneratedFile{Path: PackageJSONPath, Content: renderScaffold("package.json.tmpl", vars)},
		GeneratedFile{Path: NextConfigPath, Content: staticFile("next.config.js")},
		GeneratedFile{Path: TSConfigPath, Content: staticFile("tsconfig.json")},
		GeneratedFile{Path: GlobalsCSSPath, Content: staticFile("globals.css")},
		GeneratedFile{Path: LayoutPath, Content: renderScaffold("layout.tsx.tmpl", vars)},
	)

	exports := make([]string, len(included))
	names := make([]string, len(included))
	for i, comp := range included {
		files = append(files, GeneratedFile{Path: registry.FileName(comp.name), Content: comp.src})
		exports[i] = `export { ` + comp.name + ` } from "./` + strings.ToLower(comp.name) + `";`
		names[i] = comp.name
	}
	files = append(files, GeneratedFile{Path: ComponentIndex, Content: strings.Join(exports, "\n") + "\n"})

	vars.Imports = strings.Join(names, ", ")
	vars.Data = c.dataLiteral(opts.Data, &res)
	vars.Markup = c.markup(tree, &res)
	files = append(files,
		GeneratedFile{Path: EntryPagePath, Content: renderScaffold("page.tsx.tmpl", vars)},
		GeneratedFile{Path: ReadmePath, Content: renderScaffold("README.md.tmpl", vars)},
	)

	res.Files = files
	c.logger.Debug("compiled project",
		slog.String("project", name),
		slog.Int("files", len(files)),
		slog.Any("components", res.Components),
		slog.Int("diagnostics", len(res.Diagnostics)))
	for _, d := range res.Diagnostics {
		c.logger.Warn("compile diagnostic", slog.String("detail", d.String()))
	}
	return res
}

// markup renders the whole tree for the entry page.
func (c *Compiler) markup(tree *uitree.Tree, res *Result) string {
	if tree == nil {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{Kind: KindMissingElement, Message: "no tree; page rendered empty"})
		return ""
	}
	e := &emitter{tree: tree, maxDepth: c.maxDepth, onPath: make(map[string]bool)}
	out := e.emit(tree.Root, entryIndent, 0)
	res.Diagnostics = append(res.Diagnostics, e.diags...)
	return out
}

// dataLiteral renders data with 2-space indentation, continuation lines
// shifted by 2 so the literal sits under "const data =".
func (c *Compiler) dataLiteral(data map[string]any, res *Result) string {
	if data == nil {
		return "{}"
	}
	lit, err := encodeIndented(data, "  ")
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Kind:    KindUnencodable,
			Message: "data object dropped: " + err.Error(),
		})
		return "{}"
	}
	return strings.ReplaceAll(lit, "\n", "\n  ")
}
