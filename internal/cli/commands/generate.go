package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/dashgen/internal/cli/output"
	"github.com/leapstack-labs/dashgen/internal/project"
	"github.com/leapstack-labs/dashgen/internal/state"
	"github.com/leapstack-labs/dashgen/internal/verify"
	"github.com/leapstack-labs/dashgen/pkg/codegen"
	"github.com/spf13/cobra"
)

// generateOptions are the generate command's local flags.
type generateOptions struct {
	demo      bool
	fetch     bool
	force     bool
	dryRun    bool
	noHistory bool
}

// GenerateOutput is the JSON form of a generate result.
type GenerateOutput struct {
	ProjectName  string               `json:"project_name"`
	OutputDir    string               `json:"output_dir"`
	Written      bool                 `json:"written"`
	Files        []string             `json:"files"`
	Components   []string             `json:"components"`
	Unregistered []string             `json:"unregistered,omitempty"`
	Diagnostics  []codegen.Diagnostic `json:"diagnostics,omitempty"`
	Digest       string               `json:"digest"`
	GenerationID string               `json:"generation_id,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:     "generate [tree-file]",
		Aliases: []string{"gen"},
		Short:   "Compile a UI tree into a Next.js project",
		Long: `Compile a UI tree (JSON or YAML) and a data object into a standalone
Next.js project: package and build config, one file per used component,
a component index and an entry page embedding the data.

The tree comes from the argument, tree_file in dashgen.yaml, or --demo.
The data comes from --data / data_file, live APIs with --fetch, the demo
data with --demo, or is empty.

Problems in the tree (missing children, cycles, unregistered component
types) are reported as warnings; the project is still generated.`,
		Example: `  # Generate the demo dashboard
  dashgen generate --demo

  # Generate from a tree file into a custom directory
  dashgen generate dashboard.json --output-dir site

  # Use live data from the public APIs and verify the output
  dashgen generate dashboard.yaml --fetch --check

  # Show what would be written
  dashgen generate --demo --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.demo, "demo", false, "Generate the built-in demo dashboard")
	cmd.Flags().BoolVar(&opts.fetch, "fetch", false, "Fetch live data from the public APIs when no data file is set")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Compile and print the file tree without writing")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record the generation in the state database")
	cmd.Flags().Bool("check", false, "Syntax-check generated sources before writing")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string, opts *generateOptions) error {
	c := NewCommandContext(cmd)
	cfg := c.Cfg
	r := c.Renderer

	in, err := c.loadInputs(cmd, args, opts.demo, opts.fetch)
	if err != nil {
		return err
	}

	res := c.Compiler().Compile(in.Tree, codegen.Options{ProjectName: cfg.ProjectName, Data: in.Data})

	check := cfg.Check
	if f := cmd.Flags().Lookup("check"); f != nil && f.Changed {
		check, _ = cmd.Flags().GetBool("check")
	}
	if check {
		report := verify.Project(res.Files)
		c.Logger.Debug("verified project", slog.Int("checked", report.Checked), slog.Int("issues", len(report.Issues)))
		if !report.OK() {
			for _, issue := range report.Issues {
				r.Error(issue.String())
			}
			return report.Err()
		}
	}

	out := GenerateOutput{
		ProjectName:  cfg.ProjectName,
		OutputDir:    cfg.OutputDir,
		Files:        make([]string, len(res.Files)),
		Components:   res.Components,
		Unregistered: res.Unregistered,
		Diagnostics:  res.Diagnostics,
		Digest:       project.Digest(res.Files),
	}
	for i, f := range res.Files {
		out.Files[i] = f.Path
	}

	if !opts.dryRun {
		if _, err := project.Write(cfg.OutputDir, res.Files, opts.force); err != nil {
			return err
		}
		out.Written = true

		if !opts.noHistory {
			id, err := c.recordGeneration(in.Source, res, out.Digest)
			if err != nil {
				// History is best effort; the project is already on disk.
				c.Logger.Warn("failed to record generation", slog.String("error", err.Error()))
			}
			out.GenerationID = id
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}
	return renderGenerate(r, res, out)
}

func (c *CommandContext) recordGeneration(source string, res codegen.Result, digest string) (string, error) {
	store, err := c.OpenStore()
	if err != nil {
		return "", err
	}
	defer func() { _ = store.Close() }()

	g := &state.Generation{
		ProjectName:  c.Cfg.ProjectName,
		OutputDir:    c.Cfg.OutputDir,
		Source:       source,
		FileCount:    len(res.Files),
		TotalBytes:   project.Size(res.Files),
		Components:   res.Components,
		Unregistered: res.Unregistered,
		Diagnostics:  len(res.Diagnostics),
		Digest:       digest,
	}
	if err := store.RecordGeneration(g); err != nil {
		return "", err
	}
	return g.ID, nil
}

func renderGenerate(r *output.Renderer, res codegen.Result, out GenerateOutput) error {
	tree, err := project.Tree(res.Files, out.OutputDir)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Header(2, "Generated "+out.ProjectName)
		r.Println(output.FormatKeyValue("Output", out.OutputDir))
		r.Println(output.FormatKeyValue("Files", fmt.Sprintf("%d", len(out.Files))))
		r.Println(output.FormatKeyValue("Components", fmt.Sprintf("%d", len(out.Components))))
		r.Println(output.FormatKeyValue("Digest", out.Digest[:12]))
		r.Println("")
		r.Println(output.FormatCode("", tree))
		r.Println("")
	} else {
		r.Header(1, out.ProjectName)
		r.Printf("%s\n", strings.TrimRight(tree, "\n"))
	}

	for _, d := range res.Diagnostics {
		r.Warning(d.String())
	}

	switch {
	case !out.Written:
		r.Muted(fmt.Sprintf("Dry run: %d files not written", len(out.Files)))
	default:
		r.Success(fmt.Sprintf("Wrote %d files to %s", len(out.Files), out.OutputDir))
		r.Println("")
		r.Println("Next steps:")
		r.Println("  cd " + out.OutputDir)
		r.Println("  npm install")
		r.Println("  npm run dev")
	}
	return nil
}
