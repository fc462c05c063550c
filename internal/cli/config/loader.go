package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store config in context.
type configKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// EnvPrefix prefixes environment variables read into the config.
const EnvPrefix = "DASHGEN_"

// configNames are the config file names looked up in the project root.
var configNames = []string{"dashgen.yaml", "dashgen.yml"}

// flagKeys maps flag names that differ from their config keys.
var flagKeys = map[string]string{
	"state": "state_path",
	"data":  "data_file",
	"tree":  "tree_file",
}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
)

// configExistsIn checks if a dashgen config file exists in the directory.
func configExistsIn(dir string) string {
	for _, name := range configNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findProjectRootUpward searches upward from startDir for a dashgen config file.
// Returns empty strings if not found within maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) (root, cfgFile string) {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if found := configExistsIn(dir); found != "" {
			return dir, found
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return "", ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty, already absolute, or the
// in-memory database marker.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// defaults are loaded before any other source.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"project_name":       DefaultProjectName,
		"output_dir":         DefaultOutputDir,
		"state_path":         DefaultStateFile,
		"verbose":            false,
		"output":             DefaultOutput,
		"log_format":         DefaultLogFormat,
		"max_depth":          DefaultMaxDepth,
		"check":              false,
		"providers.timeout":  DefaultTimeout.String(),
		"providers.coins":    DefaultCoins,
		"providers.cities":   DefaultCities,
		"providers.language": "",
		"preview.port":       DefaultPreviewPort,
		"preview.watch":      true,
	}
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")
	configFileUsed = ""

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	projectRoot := cwd

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file: explicit path, else search upward from CWD
	if cfgFile != "" {
		configFileUsed = cfgFile
		if abs, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	} else if root, found := findProjectRootUpward(cwd); found != "" {
		projectRoot = root
		configFileUsed = found
	}
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (DASHGEN_ prefix)
	// Transform: DASHGEN_OUTPUT_DIR -> output_dir, DASHGEN_PREVIEW__PORT -> preview.port
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	// Paths given as flags are relative to CWD, not the project root.
	flagPaths := map[string]string{}
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")
			if mapped, ok := flagKeys[f.Name]; ok {
				key = mapped
			}

			val := posflag.FlagVal(flags, f)
			if isPathKey(key) {
				if s, ok := val.(string); ok && s != "" && s != ":memory:" {
					if abs, err := filepath.Abs(s); err == nil {
						flagPaths[key] = abs
					}
				}
			}
			return key, val
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve relative paths against the project root
	cfg.ProjectRoot = projectRoot
	resolve := func(key string, dst *string) {
		if abs, ok := flagPaths[key]; ok {
			*dst = abs
			return
		}
		*dst = resolvePathRelativeTo(*dst, projectRoot)
	}
	resolve("output_dir", &cfg.OutputDir)
	resolve("tree_file", &cfg.TreeFile)
	resolve("data_file", &cfg.DataFile)
	resolve("state_path", &cfg.StatePath)

	if cfg.Providers != nil {
		cfg.Providers.GitHubToken = expandEnvVars(cfg.Providers.GitHubToken)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isPathKey(key string) bool {
	switch key {
	case "output_dir", "tree_file", "data_file", "state_path":
		return true
	}
	return false
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from the command context, or the defaults
// resolved against the working directory when none was loaded.
func FromContext(ctx context.Context) *Config {
	if ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*Config); ok {
			return c
		}
	}
	return Default()
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ProjectName:  DefaultProjectName,
		OutputDir:    DefaultOutputDir,
		StatePath:    DefaultStateFile,
		OutputFormat: DefaultOutput,
		LogFormat:    DefaultLogFormat,
		MaxDepth:     DefaultMaxDepth,
		Providers:    DefaultProvidersConfig(),
		Preview:      &PreviewConfig{Port: DefaultPreviewPort, Watch: true},
	}
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.New(slog.DiscardHandler)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR}
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}
