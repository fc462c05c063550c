package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/dashgen/internal/cli/output"
	"github.com/leapstack-labs/dashgen/internal/provider"
	"github.com/spf13/cobra"
)

// FetchOptions holds options for the fetch command.
type FetchOptions struct {
	Offline bool
	Out     string
}

// FetchOutput is the JSON output for the fetch command when no file is written.
type FetchOutput struct {
	Data    map[string]any     `json:"data"`
	Sources []*provider.Result `json:"sources"`
}

// NewFetchCommand creates the fetch command.
func NewFetchCommand() *cobra.Command {
	opts := &FetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch live data for a dashboard",
		Long: `Query the public crypto, weather and GitHub APIs and assemble the data
object a dashboard binds to. Sources that fail fall back to demo data;
the command itself only fails when the output cannot be written.

The coins, cities and GitHub language come from the providers section
of dashgen.yaml.`,
		Example: `  # Show live data status
  dashgen fetch

  # Save the data for generate --data
  dashgen fetch --out data.json

  # Emit demo data without touching the network
  dashgen fetch --offline --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Offline, "offline", false, "Skip the network and use demo data")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write the data object to this JSON file")

	return cmd
}

func runFetch(cmd *cobra.Command, opts *FetchOptions) error {
	c := NewCommandContext(cmd)
	r := c.Renderer

	data, results := c.Provider(opts.Offline).Collect(cmd.Context())

	if opts.Out != "" {
		if err := writeDataFile(opts.Out, data); err != nil {
			return err
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		if opts.Out != "" {
			return r.JSON(results)
		}
		return r.JSON(FetchOutput{Data: data, Sources: results})
	}

	r.Header(1, "Data sources")
	if r.EffectiveMode() != output.ModeMarkdown {
		r.Println("")
	}
	for _, res := range results {
		status, detail := "success", "live"
		if !res.Live {
			status, detail = "warning", "demo data"
			if res.Error != "" {
				detail += ": " + res.Error
			}
		}
		r.StatusLine(res.Source, status, fmt.Sprintf("(%s, %s)", detail, res.FetchedAt.Format(time.TimeOnly)))
	}

	if opts.Out != "" {
		r.Println("")
		r.Success("Wrote " + opts.Out)
	}
	return nil
}

func writeDataFile(path string, data map[string]any) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(b, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	return nil
}
