package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/dashgen/internal/cli/output"
	"github.com/leapstack-labs/dashgen/internal/registry"
	"github.com/spf13/cobra"
)

// ComponentsOptions holds options for the components command.
type ComponentsOptions struct {
	Source bool // Print the template source
}

// NewComponentsCommand creates the components command.
func NewComponentsCommand() *cobra.Command {
	opts := &ComponentsOptions{}
	cmd := &cobra.Command{
		Use:     "components [name]",
		Aliases: []string{"ls"},
		Short:   "List the built-in component templates",
		Long: `List the component types a UI tree can use, with the file each is
written to and the props its template declares. Props ending in "Path"
are data bindings resolved against the data object at runtime.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all components
  dashgen components

  # Show one component and its template source
  dashgen components Metric --source

  # Output as JSON
  dashgen components --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showComponent(cmd, args[0], opts)
			}
			return listComponents(cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Source, "source", false, "Print the template source")

	return cmd
}

func listComponents(cmd *cobra.Command) error {
	r := NewCommandContext(cmd).Renderer
	infos := registry.Default().DescribeAll()

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}

	r.Header(1, fmt.Sprintf("Components (%d)", len(infos)))
	if r.EffectiveMode() != output.ModeMarkdown {
		r.Println("")
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		data := ""
		if info.ConsumesData {
			data = "yes"
		}
		rows = append(rows, []string{info.Name, info.File, data, strings.Join(info.Props, ", ")})
	}
	r.Table([]string{"Name", "File", "Data", "Props"}, rows)
	return nil
}

func showComponent(cmd *cobra.Command, name string, opts *ComponentsOptions) error {
	r := NewCommandContext(cmd).Renderer
	reg := registry.Default()

	info, ok := reg.Describe(name)
	if !ok {
		return fmt.Errorf("unknown component: %s\nHint: run 'dashgen components' to list available components", name)
	}
	src, _ := reg.Lookup(name)

	if r.EffectiveMode() == output.ModeJSON {
		if !opts.Source {
			return r.JSON(info)
		}
		return r.JSON(struct {
			registry.Info
			Source string `json:"source"`
		}{info, src})
	}

	markdown := r.EffectiveMode() == output.ModeMarkdown
	r.Header(1, info.Name)
	if !markdown {
		r.Println("")
	}
	r.Println(output.FormatKeyValue("File", info.File))
	r.Println(output.FormatKeyValue("Consumes data", fmt.Sprintf("%t", info.ConsumesData)))
	r.Println(output.FormatKeyValue("Props", strings.Join(info.Props, ", ")))
	if len(info.BindingProps) > 0 {
		r.Println(output.FormatKeyValue("Binding props", strings.Join(info.BindingProps, ", ")))
	}
	r.Println(output.FormatKeyValue("Lines", fmt.Sprintf("%d", info.Lines)))

	if opts.Source {
		r.Println("")
		r.Println(output.FormatCode("tsx", src))
	}
	return nil
}
