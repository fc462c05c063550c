// Package verify checks generated project sources with esbuild.
//
// Syntax parses every script file on its own. Bundle follows the entry
// page's imports through the generated files, so broken relative or "@/"
// imports surface as well. Neither needs node_modules: bare package imports
// are left external.
package verify

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/leapstack-labs/dashgen/pkg/codegen"
)

const namespace = "dashgen-project"

// Issue is one esbuild error.
type Issue struct {
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
	Text   string `json:"text"`
}

func (i Issue) String() string {
	if i.Line == 0 {
		return fmt.Sprintf("%s: %s", i.File, i.Text)
	}
	return fmt.Sprintf("%s:%d:%d: %s", i.File, i.Line, i.Column, i.Text)
}

// Report is the outcome of a check.
type Report struct {
	// Checked is the number of files parsed.
	Checked int     `json:"checked"`
	Issues  []Issue `json:"issues,omitempty"`
}

// OK reports whether the check found no issues.
func (r Report) OK() bool { return len(r.Issues) == 0 }

// Err returns the issues as an error, or nil.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	lines := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		lines[i] = issue.String()
	}
	return fmt.Errorf("esbuild errors:\n%s", strings.Join(lines, "\n"))
}

func loaderFor(p string) (api.Loader, bool) {
	switch path.Ext(p) {
	case ".tsx":
		return api.LoaderTSX, true
	case ".ts":
		return api.LoaderTS, true
	case ".js":
		return api.LoaderJS, true
	case ".jsx":
		return api.LoaderJSX, true
	default:
		return api.LoaderNone, false
	}
}

func issues(file string, msgs []api.Message) []Issue {
	out := make([]Issue, 0, len(msgs))
	for _, m := range msgs {
		issue := Issue{File: file, Text: m.Text}
		if m.Location != nil {
			if m.Location.File != "" {
				issue.File = strings.TrimPrefix(m.Location.File, namespace+":")
			}
			issue.Line = m.Location.Line
			issue.Column = m.Location.Column
		}
		out = append(out, issue)
	}
	return out
}

// Syntax parses every .ts, .tsx, .js and .jsx file.
func Syntax(files []codegen.GeneratedFile) Report {
	var report Report
	for _, f := range files {
		loader, ok := loaderFor(f.Path)
		if !ok {
			continue
		}
		report.Checked++
		result := api.Transform(f.Content, api.TransformOptions{
			Loader:     loader,
			Sourcefile: f.Path,
			JSX:        api.JSXPreserve,
			Target:     api.ES2020,
			LogLevel:   api.LogLevelSilent,
		})
		report.Issues = append(report.Issues, issues(f.Path, result.Errors)...)
	}
	return report
}

// Bundle bundles entry from the generated files in memory.
func Bundle(files []codegen.GeneratedFile, entry string) Report {
	byPath := make(map[string]string, len(files))
	for _, f := range files {
		byPath[f.Path] = f.Content
	}
	if _, ok := byPath[entry]; !ok {
		return Report{Issues: []Issue{{File: entry, Text: "entry file not generated"}}}
	}

	// esbuild runs plugin callbacks concurrently
	var mu sync.Mutex
	loaded := make(map[string]bool)
	plugin := api.Plugin{
		Name: namespace,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `.*`}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				if args.Kind == api.ResolveEntryPoint {
					return api.OnResolveResult{Path: args.Path, Namespace: namespace}, nil
				}
				target, local := importTarget(args.Importer, args.Path)
				if !local {
					// bare package import: react, next, ...
					return api.OnResolveResult{Path: args.Path, External: true}, nil
				}
				if resolved, ok := resolveFile(byPath, target); ok {
					return api.OnResolveResult{Path: resolved, Namespace: namespace}, nil
				}
				return api.OnResolveResult{}, fmt.Errorf("cannot resolve %q from %s", args.Path, args.Importer)
			})
			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: namespace}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				content, ok := byPath[args.Path]
				if !ok {
					return api.OnLoadResult{}, fmt.Errorf("no generated file %s", args.Path)
				}
				loader, ok := loaderFor(args.Path)
				if !ok {
					// stylesheets and other assets contribute nothing to the check
					loader = api.LoaderEmpty
				}
				mu.Lock()
				loaded[args.Path] = true
				mu.Unlock()
				return api.OnLoadResult{Contents: &content, Loader: loader}, nil
			})
		},
	}

	result := api.Build(api.BuildOptions{
		EntryPoints: []string{entry},
		Bundle:      true,
		Write:       false,
		Outdir:      "out",
		Format:      api.FormatESModule,
		Platform:    api.PlatformBrowser,
		Target:      api.ES2020,
		JSX:         api.JSXAutomatic,
		LogLevel:    api.LogLevelSilent,
		Plugins:     []api.Plugin{plugin},
	})

	report := Report{Checked: len(loaded), Issues: issues(entry, result.Errors)}
	sort.SliceStable(report.Issues, func(i, j int) bool { return report.Issues[i].File < report.Issues[j].File })
	return report
}

// Project runs Syntax over all files and Bundle from the entry page.
func Project(files []codegen.GeneratedFile) Report {
	report := Syntax(files)
	if !report.OK() {
		return report
	}
	bundle := Bundle(files, codegen.EntryPagePath)
	report.Issues = append(report.Issues, bundle.Issues...)
	return report
}

// importTarget maps an import path to a project-relative path. Bare package
// imports are not local.
func importTarget(importer, spec string) (string, bool) {
	switch {
	case strings.HasPrefix(spec, "@/"):
		return strings.TrimPrefix(spec, "@/"), true
	case strings.HasPrefix(spec, "./"), strings.HasPrefix(spec, "../"):
		return path.Join(path.Dir(importer), spec), true
	default:
		return "", false
	}
}

var extensions = []string{"", ".tsx", ".ts", ".jsx", ".js", "/index.tsx", "/index.ts", "/index.js"}

func resolveFile(byPath map[string]string, target string) (string, bool) {
	for _, ext := range extensions {
		if _, ok := byPath[target+ext]; ok {
			return target + ext, true
		}
	}
	return "", false
}
