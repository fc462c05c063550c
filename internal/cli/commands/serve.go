package commands

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/leapstack-labs/dashgen/internal/preview"
	"github.com/leapstack-labs/dashgen/pkg/uitree"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port  int
	Watch bool
	Demo  bool
	Fetch bool
	Open  bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve [tree-file]",
		Short: "Serve the compiled project over HTTP",
		Long: `Start a local server that compiles the UI tree and serves the result:

- GET  /api/project               project summary and diagnostics
- GET  /api/project/files/{path}  generated file contents
- GET  /api/events                revision updates (server-sent events)
- GET  /api/components            the component catalog
- POST /api/generate              compile a posted tree
- POST /api/rebuild               refetch data and rebuild

The tree and data files are watched and the project is rebuilt when they
change.`,
		Example: `  # Serve the tree named in dashgen.yaml
  dashgen serve

  # Serve the demo dashboard with live data on port 3001
  dashgen serve --demo --fetch --port 3001`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8766)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Rebuild when the tree or data file changes")
	cmd.Flags().BoolVar(&opts.Demo, "demo", false, "Serve the built-in demo dashboard")
	cmd.Flags().BoolVar(&opts.Fetch, "fetch", false, "Fetch live data when no data file is set")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "Open the project summary in a browser")

	return cmd
}

func runServe(cmd *cobra.Command, args []string, opts *ServeOptions) error {
	c := NewCommandContext(cmd)
	cfg := c.Cfg
	previewCfg := cfg.GetPreviewConfig()

	// CLI flags override config file
	port := previewCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	watch := previewCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	serverCfg := preview.Config{
		Compiler:    c.Compiler(),
		Provider:    c.Provider(!opts.Fetch),
		DataFile:    cfg.DataFile,
		ProjectName: cfg.ProjectName,
		Port:        port,
		Watch:       watch,
		Logger:      c.Logger,
	}

	treeFile := cfg.TreeFile
	if len(args) > 0 {
		treeFile = args[0]
	}
	switch {
	case opts.Demo:
		serverCfg.Tree = uitree.DemoTree()
	case treeFile != "":
		serverCfg.TreeFile = treeFile
	default:
		return fmt.Errorf("no tree file given\nHint: pass a file, set tree_file in dashgen.yaml, or use --demo")
	}
	// Without --fetch or --demo an unbound dashboard gets an empty data object;
	// otherwise the provider supplies live or demo data.
	if !opts.Demo && !opts.Fetch {
		serverCfg.Data = map[string]any{}
	}

	if err := cfg.ValidateInputs(); err != nil {
		return err
	}

	server := preview.NewServer(serverCfg)

	url := fmt.Sprintf("http://localhost:%d/api/project", port)
	if opts.Open {
		go openBrowser(url)
	}

	r := c.Renderer
	r.Println("Serving " + cfg.ProjectName + " on " + url)
	r.Muted("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
