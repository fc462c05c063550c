package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var demo bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new dashgen project",
		Long: `Initialize a new dashgen project with a configuration file and a
starter UI tree.

This creates:
  - dashgen.yaml configuration file
  - tree.yaml, a small page to edit
  - .gitignore for the generated project and state

Use --demo to start from the realtime dashboard instead: crypto cards,
a weather widget and trending repositories, with a data.json to bind to.`,
		Example: `  # Initialize in current directory
  dashgen init

  # Initialize the realtime dashboard demo
  dashgen init --demo

  # Initialize in a new directory
  dashgen init my-dashboard --demo

  # Force overwrite existing files
  dashgen init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			name := "minimal"
			if demo {
				name = "demo"
			}
			return runInit(cmd, dir, name, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&demo, "demo", false, "Create the realtime dashboard demo project")

	return cmd
}

func runInit(cmd *cobra.Command, dir, templateName string, force bool) error {
	r := NewCommandContext(cmd).Renderer

	if !slices.Contains(templateNames(), templateName) {
		return fmt.Errorf("unknown template %q (available: %s)", templateName, strings.Join(templateNames(), ", "))
	}

	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, configFile)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", configFile)
	}

	written, err := copyTemplate(templateName, dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles(templateName)
	for _, f := range files {
		if slices.Contains(written, f) {
			r.StatusLine(f, "success", "")
		} else {
			r.StatusLine(f, "skipped", "(exists)")
		}
	}

	r.Println("")
	r.Success("dashgen project initialized!")
	r.Println("")
	r.Println("Next steps:")
	if dir != "." {
		r.Println("  cd " + dir)
	}
	r.Println("  dashgen check       Check the tree against its data")
	r.Println("  dashgen generate    Write the Next.js project")
	r.Println("  dashgen serve       Preview and rebuild on change")

	return nil
}
