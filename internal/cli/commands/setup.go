// Package commands implements the dashgen CLI commands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/dashgen/internal/cli/config"
	"github.com/leapstack-labs/dashgen/internal/cli/output"
	"github.com/leapstack-labs/dashgen/internal/provider"
	"github.com/leapstack-labs/dashgen/internal/state"
	"github.com/leapstack-labs/dashgen/pkg/codegen"
	"github.com/leapstack-labs/dashgen/pkg/uitree"
	"github.com/spf13/cobra"
)

// CommandContext holds common resources for command execution.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Compiler returns a project compiler configured from the CLI config.
func (c *CommandContext) Compiler() *codegen.Compiler {
	return codegen.New(codegen.Config{MaxDepth: c.Cfg.MaxDepth, Logger: c.Logger})
}

// Provider returns a data provider configured from the CLI config.
func (c *CommandContext) Provider(offline bool) *provider.Provider {
	pc := c.Cfg.GetProvidersConfig()
	return provider.New(provider.Config{
		Timeout:     pc.Timeout,
		Coins:       pc.Coins,
		Cities:      pc.Cities,
		Language:    pc.Language,
		GitHubToken: pc.GitHubToken,
		Offline:     offline,
		Logger:      c.Logger,
	})
}

// OpenStore opens and migrates the generation history database.
// The caller must close the returned store.
func (c *CommandContext) OpenStore() (*state.SQLiteStore, error) {
	path := c.Cfg.StatePath
	if path != ":memory:" {
		// Ensure state directory exists
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore(c.Logger)
	if err := store.Open(path); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// inputs are the tree and data a command compiles.
type inputs struct {
	Tree   *uitree.Tree
	Data   map[string]any
	Source string
}

// loadInputs resolves the tree from args, the config or the demo, and the
// data from the data file, the live providers or the demo data.
func (c *CommandContext) loadInputs(cmd *cobra.Command, args []string, demo, fetch bool) (*inputs, error) {
	in := &inputs{}

	treeFile := c.Cfg.TreeFile
	if len(args) > 0 {
		treeFile = args[0]
	}

	switch {
	case demo:
		in.Tree = uitree.DemoTree()
		in.Source = "demo"
	case treeFile != "":
		tree, err := uitree.LoadFile(treeFile)
		if err != nil {
			return nil, err
		}
		in.Tree = tree
		in.Source = treeFile
	default:
		return nil, fmt.Errorf("no tree file given\nHint: pass a file, set tree_file in dashgen.yaml, or use --demo")
	}

	switch {
	case c.Cfg.DataFile != "":
		data, err := uitree.LoadDataFile(c.Cfg.DataFile)
		if err != nil {
			return nil, err
		}
		in.Data = data
	case fetch:
		in.Data, _ = c.Provider(false).Collect(cmd.Context())
	case demo:
		in.Data = provider.DemoData()
	default:
		in.Data = map[string]any{}
	}

	c.Logger.Debug("loaded inputs",
		slog.String("source", in.Source),
		slog.Int("elements", len(in.Tree.Elements)),
		slog.Int("data_keys", len(in.Data)))
	return in, nil
}
