package commands

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/dashgen/internal/cli/output"
	"github.com/leapstack-labs/dashgen/pkg/codegen"
	"github.com/leapstack-labs/dashgen/pkg/datapath"
	"github.com/leapstack-labs/dashgen/pkg/uitree"
	"github.com/spf13/cobra"
)

// kindUnresolvedPath is reported by check only; the compiler never resolves
// data paths.
const kindUnresolvedPath codegen.DiagnosticKind = "unresolved_path"

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Demo   bool
	Fetch  bool
	Strict bool
}

// CheckOutput is the JSON output for the check command.
type CheckOutput struct {
	Source      string               `json:"source"`
	Elements    int                  `json:"elements"`
	Reachable   int                  `json:"reachable"`
	Bindings    int                  `json:"bindings"`
	Components  []string             `json:"components"`
	Diagnostics []codegen.Diagnostic `json:"diagnostics"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [tree-file]",
		Short: "Check a UI tree against its data without writing files",
		Long: `Compile a UI tree in memory and report its problems:
- Missing child elements and cycles
- Component types without a template
- Data paths in binding props (valuePath, dataPath, ...) that do not
  resolve against the data

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Check the tree named in dashgen.yaml
  dashgen check

  # Check against live data and fail on any finding
  dashgen check dashboard.json --fetch --strict`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Demo, "demo", false, "Check the built-in demo dashboard")
	cmd.Flags().BoolVar(&opts.Fetch, "fetch", false, "Resolve paths against live data when no data file is set")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Exit with an error when anything is reported")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	c := NewCommandContext(cmd)

	in, err := c.loadInputs(cmd, args, opts.Demo, opts.Fetch)
	if err != nil {
		return err
	}

	res := c.Compiler().Compile(in.Tree, codegen.Options{ProjectName: c.Cfg.ProjectName, Data: in.Data})
	unresolved, bindings := checkBindings(in.Tree, in.Data)

	out := CheckOutput{
		Source:      in.Source,
		Elements:    len(in.Tree.Elements),
		Reachable:   len(uitree.Reachable(in.Tree)),
		Bindings:    bindings,
		Components:  res.Components,
		Diagnostics: append(append([]codegen.Diagnostic{}, res.Diagnostics...), unresolved...),
	}

	r := c.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(out); err != nil {
			return err
		}
	} else {
		renderCheck(r, out)
	}

	if opts.Strict && len(out.Diagnostics) > 0 {
		return fmt.Errorf("check found %d problem(s)", len(out.Diagnostics))
	}
	return nil
}

// checkBindings resolves every binding prop of the reachable elements against
// data. It returns a diagnostic per unresolved path and the number of
// bindings seen.
func checkBindings(tree *uitree.Tree, data map[string]any) ([]codegen.Diagnostic, int) {
	var diags []codegen.Diagnostic
	n := 0
	uitree.Walk(tree, func(el *uitree.Element, _ int) {
		for _, p := range el.BindingPaths() {
			n++
			path := p.Value.(string)
			if _, ok := datapath.Resolve(data, path); ok {
				continue
			}
			diags = append(diags, codegen.Diagnostic{
				Kind:    kindUnresolvedPath,
				Key:     el.Key,
				Prop:    p.Name,
				Message: fmt.Sprintf("path %q does not resolve against the data", path),
			})
		}
	})
	return diags, n
}

func renderCheck(r *output.Renderer, out CheckOutput) {
	groups := make(map[codegen.DiagnosticKind][]codegen.Diagnostic)
	for _, d := range out.Diagnostics {
		groups[d.Kind] = append(groups[d.Kind], d)
	}
	kinds := make([]string, 0, len(groups))
	for k := range groups {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	caser := cases.Title(language.English)
	title := func(k string) string { return caser.String(strings.ReplaceAll(k, "_", " ")) }

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Header(2, "Check: "+out.Source)
		r.Println(output.FormatKeyValue("Elements", fmt.Sprintf("%d (%d reachable)", out.Elements, out.Reachable)))
		r.Println(output.FormatKeyValue("Bindings", fmt.Sprintf("%d", out.Bindings)))
		r.Println(output.FormatKeyValue("Components", strings.Join(out.Components, ", ")))
		r.Println("")
		for _, k := range kinds {
			r.Header(3, title(k))
			for _, d := range groups[codegen.DiagnosticKind(k)] {
				r.Println("- " + d.String())
			}
			r.Println("")
		}
	} else {
		r.Header(1, "Check: "+out.Source)
		r.Muted(fmt.Sprintf("%d elements, %d reachable, %d bindings, %d components",
			out.Elements, out.Reachable, out.Bindings, len(out.Components)))
		r.Println("")
		for _, k := range kinds {
			r.Header(2, title(k))
			for _, d := range groups[codegen.DiagnosticKind(k)] {
				r.StatusLine(d.Key, "warning", d.Message)
			}
			r.Println("")
		}
	}

	if len(out.Diagnostics) == 0 {
		r.Success("No problems found")
		return
	}
	r.Warning(fmt.Sprintf("%d problem(s) found", len(out.Diagnostics)))
}
