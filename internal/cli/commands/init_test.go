package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/dashgen/internal/cli/config"
	"github.com/leapstack-labs/dashgen/pkg/uitree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string) // setup before running
		args      []string
		wantErr   bool
		wantFiles []string
	}{
		{
			name:    "init empty directory",
			args:    []string{},
			wantErr: false,
			wantFiles: []string{
				"dashgen.yaml",
				"tree.yaml",
				".gitignore",
			},
		},
		{
			name:    "init demo",
			args:    []string{"--demo"},
			wantErr: false,
			wantFiles: []string{
				"dashgen.yaml",
				"tree.json",
				"data.json",
				".gitignore",
			},
		},
		{
			name:      "init into new directory",
			args:      []string{"nested/board"},
			wantErr:   false,
			wantFiles: []string{"nested/board/dashgen.yaml", "nested/board/tree.yaml"},
		},
		{
			name: "init existing config without force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "dashgen.yaml"), []byte("existing"), 0600)
			},
			args:    []string{},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "dashgen.yaml"), []byte("existing"), 0600)
			},
			args:    []string{"--force"},
			wantErr: false,
			wantFiles: []string{
				"dashgen.yaml",
				"tree.yaml",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create temp directory and change to it
			tmpDir := t.TempDir()
			oldWd, _ := os.Getwd()
			require.NoError(t, os.Chdir(tmpDir))
			defer func() { _ = os.Chdir(oldWd) }()

			// Run setup if provided
			if tt.setupDir != nil {
				tt.setupDir(t, tmpDir)
			}

			cmd := NewInitCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			// Check expected files exist
			for _, f := range tt.wantFiles {
				path := filepath.Join(tmpDir, f)
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "expected file/dir %q to exist", f)
			}
		})
	}
}

func TestInitCommandMetadata(t *testing.T) {
	cmd := NewInitCommand()

	assert.Equal(t, "init [directory]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("force"), "--force flag should exist")
	assert.NotNil(t, cmd.Flags().Lookup("demo"), "--demo flag should exist")
}

func TestInitCreatesValidConfig(t *testing.T) {
	for _, args := range [][]string{{}, {"--demo"}} {
		tmpDir := t.TempDir()
		cmd := NewInitCommand()
		cmd.SetOut(new(bytes.Buffer))
		cmd.SetErr(new(bytes.Buffer))
		cmd.SetArgs(append([]string{tmpDir}, args...))
		require.NoError(t, cmd.Execute())

		config.ResetConfig()
		cfg, err := config.LoadConfig(filepath.Join(tmpDir, "dashgen.yaml"), nil)
		require.NoError(t, err, "generated config should load")
		require.NoError(t, cfg.ValidateInputs())

		tree, err := uitree.LoadFile(cfg.TreeFile)
		require.NoError(t, err, "generated tree should parse")
		assert.NotEmpty(t, tree.Elements)

		if cfg.DataFile != "" {
			_, err := uitree.LoadDataFile(cfg.DataFile)
			require.NoError(t, err, "generated data should parse")
		}
	}
}

func TestInitDemoTreeMatchesBuiltin(t *testing.T) {
	raw, err := templateFS.ReadFile("templates/demo/tree.json")
	require.NoError(t, err)

	tree, err := uitree.Parse(raw)
	require.NoError(t, err)

	demo := uitree.DemoTree()
	assert.Equal(t, demo.Root, tree.Root)
	require.Len(t, tree.Elements, len(demo.Elements))
	for key, want := range demo.Elements {
		got, ok := tree.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, want.Type, got.Type, key)
		assert.Equal(t, want.Children, got.Children, key)
		assert.Equal(t, want.Props.Names(), got.Props.Names(), key)
	}
}

func TestInitSkipsExistingFiles(t *testing.T) {
	tmpDir := t.TempDir()
	treePath := filepath.Join(tmpDir, "tree.yaml")
	require.NoError(t, os.WriteFile(treePath, []byte("root: mine\n"), 0600))

	cmd := NewInitCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{tmpDir})
	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(treePath)
	require.NoError(t, err)
	assert.Equal(t, "root: mine\n", string(content), "existing files are kept without --force")
	assert.Contains(t, buf.String(), "tree.yaml")
}
