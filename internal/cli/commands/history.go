package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/dashgen/internal/cli/output"
	"github.com/leapstack-labs/dashgen/internal/state"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit  int
	Delete bool
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show past generations",
		Long: `List the projects written by generate, newest first, or show one
generation by id. Any unique prefix of an id is accepted.

History is kept in the state database (state_path in dashgen.yaml).`,
		Example: `  # List the last 10 generations
  dashgen history

  # Show one generation
  dashgen history 3f2a9c1e

  # Forget a generation
  dashgen history 3f2a9c1e --delete`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showGeneration(cmd, args[0], opts)
			}
			return listHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "Number of generations to list (0 for all)")
	cmd.Flags().BoolVar(&opts.Delete, "delete", false, "Delete the given generation")

	return cmd
}

func listHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	c := NewCommandContext(cmd)
	r := c.Renderer

	store, err := c.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	gens, err := store.ListGenerations(opts.Limit)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		if gens == nil {
			gens = []*state.Generation{}
		}
		return r.JSON(gens)
	}

	r.Header(1, fmt.Sprintf("Generations (%d)", len(gens)))
	if r.EffectiveMode() != output.ModeMarkdown {
		r.Println("")
	}
	if len(gens) == 0 {
		r.Muted("No generations recorded yet. Run 'dashgen generate' first.")
		return nil
	}

	rows := make([][]string, 0, len(gens))
	for _, g := range gens {
		rows = append(rows, []string{
			g.ShortID(),
			g.CreatedAt.Local().Format(time.DateTime),
			g.ProjectName,
			g.Source,
			fmt.Sprintf("%d", g.FileCount),
			fmt.Sprintf("%d", g.Diagnostics),
		})
	}
	r.Table([]string{"ID", "Created", "Project", "Source", "Files", "Diagnostics"}, rows)
	return nil
}

func showGeneration(cmd *cobra.Command, id string, opts *HistoryOptions) error {
	c := NewCommandContext(cmd)
	r := c.Renderer

	store, err := c.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	g, err := store.GetGeneration(id)
	if err != nil {
		return err
	}

	if opts.Delete {
		if err := store.DeleteGeneration(g.ID); err != nil {
			return err
		}
		if r.EffectiveMode() == output.ModeJSON {
			return r.JSON(map[string]string{"deleted": g.ID})
		}
		r.Success("Deleted generation " + g.ShortID())
		return nil
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(g)
	}

	r.Header(1, "Generation "+g.ShortID())
	if r.EffectiveMode() != output.ModeMarkdown {
		r.Println("")
	}
	r.Println(output.FormatKeyValue("ID", g.ID))
	r.Println(output.FormatKeyValue("Created", g.CreatedAt.Local().Format(time.DateTime)))
	r.Println(output.FormatKeyValue("Project", g.ProjectName))
	r.Println(output.FormatKeyValue("Output", g.OutputDir))
	r.Println(output.FormatKeyValue("Source", g.Source))
	r.Println(output.FormatKeyValue("Files", fmt.Sprintf("%d (%d bytes)", g.FileCount, g.TotalBytes)))
	r.Println(output.FormatKeyValue("Components", strings.Join(g.Components, ", ")))
	if len(g.Unregistered) > 0 {
		r.Println(output.FormatKeyValue("Unregistered", strings.Join(g.Unregistered, ", ")))
	}
	r.Println(output.FormatKeyValue("Diagnostics", fmt.Sprintf("%d", g.Diagnostics)))
	r.Println(output.FormatKeyValue("Digest", g.Digest))
	return nil
}
