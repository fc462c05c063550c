package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "dashgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestExpandEnvVars(t *testing.T) {
	// Set test environment variables
	require.NoError(t, os.Setenv("TEST_VAR_ONE", "value_one"))
	require.NoError(t, os.Setenv("TEST_VAR_TWO", "value_two"))
	defer func() {
		_ = os.Unsetenv("TEST_VAR_ONE")
		_ = os.Unsetenv("TEST_VAR_TWO")
	}()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single variable", input: "${TEST_VAR_ONE}", expected: "value_one"},
		{name: "multiple variables", input: "${TEST_VAR_ONE}/${TEST_VAR_TWO}", expected: "value_one/value_two"},
		{name: "unset variable stays as-is", input: "${UNSET_VARIABLE}", expected: "${UNSET_VARIABLE}"},
		{name: "no variables", input: "plain string", expected: "plain string"},
		{name: "empty string", input: "", expected: ""},
		{name: "mixed set and unset", input: "${TEST_VAR_ONE}:${UNSET_VAR}", expected: "value_one:${UNSET_VAR}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "verbose: false\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	root := filepath.Dir(path)
	assert.Equal(t, DefaultProjectName, cfg.ProjectName)
	assert.Equal(t, filepath.Join(root, DefaultOutputDir), cfg.OutputDir)
	assert.Equal(t, filepath.Join(root, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth)
	assert.Empty(t, cfg.DataFile)
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, path, GetConfigFileUsed())

	require.NotNil(t, cfg.Providers)
	assert.Equal(t, DefaultTimeout, cfg.Providers.Timeout)
	assert.Equal(t, DefaultCoins, cfg.Providers.Coins)
	assert.Equal(t, DefaultCities, cfg.Providers.Cities)

	require.NotNil(t, cfg.Preview)
	assert.Equal(t, DefaultPreviewPort, cfg.Preview.Port)
	assert.True(t, cfg.Preview.Watch)
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, `project_name: crypto-board
output_dir: out/site
data_file: data.yaml
max_depth: 16
providers:
  timeout: 3s
  coins: [dogecoin]
  language: go
preview:
  port: 9000
  watch: false
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	root := filepath.Dir(path)
	assert.Equal(t, "crypto-board", cfg.ProjectName)
	assert.Equal(t, filepath.Join(root, "out/site"), cfg.OutputDir)
	assert.Equal(t, filepath.Join(root, "data.yaml"), cfg.DataFile)
	assert.Equal(t, 16, cfg.MaxDepth)
	assert.Equal(t, 3*time.Second, cfg.Providers.Timeout)
	assert.Equal(t, []string{"dogecoin"}, cfg.Providers.Coins)
	assert.Equal(t, "go", cfg.Providers.Language)
	assert.Equal(t, 9000, cfg.Preview.Port)
	assert.False(t, cfg.Preview.Watch)
}

func TestLoadConfig_GitHubTokenExpanded(t *testing.T) {
	ResetConfig()
	t.Setenv("DASHGEN_TEST_TOKEN", "secret")
	path := writeConfig(t, "providers:\n  github_token: ${DASHGEN_TEST_TOKEN}\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Providers.GitHubToken)
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "project_name: from_file\n")
	t.Setenv("DASHGEN_PROJECT_NAME", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("project-name", "", "project name")
	require.NoError(t, flags.Set("project-name", "from_flag"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "from_flag", cfg.ProjectName, "flag value should override config file and env var")
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "project_name: from_file\n")
	t.Setenv("DASHGEN_PROJECT_NAME", "from_env")
	t.Setenv("DASHGEN_PREVIEW__PORT", "9100")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.ProjectName, "env var should override config file")
	assert.Equal(t, 9100, cfg.Preview.Port, "double underscore selects a nested key")
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "project_name: from_file\n")
	t.Setenv("DASHGEN_PROJECT_NAME", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("project-name", "", "project name")
	// Note: not calling flags.Set(), so Changed is false

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.ProjectName, "env var should be used when flag is not set")
}

func TestLoadConfig_FlagPathsRelativeToCWD(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "verbose: false\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output-dir", "", "output directory")
	flags.String("data", "", "data file")
	flags.String("state", "", "state database")
	require.NoError(t, flags.Set("output-dir", "site"))
	require.NoError(t, flags.Set("data", "data.json"))
	require.NoError(t, flags.Set("state", ":memory:"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "site"), cfg.OutputDir)
	assert.Equal(t, filepath.Join(cwd, "data.json"), cfg.DataFile)
	assert.Equal(t, ":memory:", cfg.StatePath)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "project_name: [unterminated\n")

	_, err := LoadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_InvalidOutput(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "output: html\n")

	_, err := LoadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		errSubstr string
	}{
		{name: "valid", cfg: Config{OutputDir: "out", OutputFormat: "json", LogFormat: "text"}},
		{name: "empty output_dir", cfg: Config{}, errSubstr: "output_dir is required"},
		{name: "bad log format", cfg: Config{OutputDir: "out", LogFormat: "xml"}, errSubstr: "invalid log_format"},
		{name: "negative depth", cfg: Config{OutputDir: "out", MaxDepth: -1}, errSubstr: "max_depth"},
		{name: "bad port", cfg: Config{OutputDir: "out", Preview: &PreviewConfig{Port: 70000}}, errSubstr: "preview.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_ValidateInputs(t *testing.T) {
	dir := t.TempDir()
	tree := filepath.Join(dir, "tree.json")
	require.NoError(t, os.WriteFile(tree, []byte("{}"), 0600))

	assert.NoError(t, (&Config{TreeFile: tree}).ValidateInputs())

	err := (&Config{TreeFile: tree, DataFile: filepath.Join(dir, "missing.json")}).ValidateInputs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data file does not exist")
}

func TestGetProvidersConfig_AppliesDefaults(t *testing.T) {
	cfg := &Config{Providers: &ProvidersConfig{Language: "rust"}}

	p := cfg.GetProvidersConfig()

	assert.Equal(t, DefaultTimeout, p.Timeout)
	assert.Equal(t, DefaultCoins, p.Coins)
	assert.Equal(t, "rust", p.Language)

	assert.Equal(t, DefaultTimeout, (&Config{}).GetProvidersConfig().Timeout)
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}

func TestFromContext(t *testing.T) {
	def := FromContext(context.Background())
	assert.Equal(t, DefaultOutputDir, def.OutputDir)
	assert.Equal(t, DefaultPreviewPort, def.GetPreviewConfig().Port)
	require.NoError(t, def.Validate())

	cfg := &Config{ProjectName: "mine"}
	assert.Same(t, cfg, FromContext(WithConfig(context.Background(), cfg)))
}
