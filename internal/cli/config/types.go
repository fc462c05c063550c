// Package config provides configuration management for the dashgen CLI.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	ProjectName string `koanf:"project_name"`
	OutputDir   string `koanf:"output_dir"`
	TreeFile    string `koanf:"tree_file"`
	DataFile    string `koanf:"data_file"`
	StatePath   string `koanf:"state_path"`
	Verbose     bool   `koanf:"verbose"`
	// OutputFormat selects the renderer mode: auto, text, markdown or json.
	OutputFormat string `koanf:"output"`
	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`
	MaxDepth  int    `koanf:"max_depth"`
	// Check runs a syntax check over generated sources before writing.
	Check     bool             `koanf:"check"`
	Providers *ProvidersConfig `koanf:"providers"`
	Preview   *PreviewConfig   `koanf:"preview"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// ProvidersConfig configures the live data providers used by fetch.
type ProvidersConfig struct {
	Timeout time.Duration `koanf:"timeout"`
	// Coins are CoinGecko ids, e.g. bitcoin, ethereum.
	Coins []string `koanf:"coins"`
	// Cities are keys of the built-in city table, e.g. newyork, london.
	Cities   []string `koanf:"cities"`
	Language string   `koanf:"language"`
	// GitHubToken may reference an environment variable as ${NAME}.
	GitHubToken string `koanf:"github_token"`
}

// PreviewConfig holds configuration for the preview server.
type PreviewConfig struct {
	Port  int  `koanf:"port"`
	Watch bool `koanf:"watch"`
}

// Default configuration values.
const (
	DefaultProjectName = "generated-dashboard"
	DefaultOutputDir   = "generated-dashboard"
	DefaultStateFile   = ".dashgen/state.db"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogFormat   = "text"
	DefaultMaxDepth    = 128
	DefaultTimeout     = 10 * time.Second
	DefaultPreviewPort = 8766
)

// DefaultCoins and DefaultCities match the demo dashboard.
var (
	DefaultCoins  = []string{"bitcoin", "ethereum", "solana"}
	DefaultCities = []string{"newyork", "london", "tokyo"}
)

// DefaultProvidersConfig returns a ProvidersConfig with default values.
func DefaultProvidersConfig() *ProvidersConfig {
	return &ProvidersConfig{
		Timeout: DefaultTimeout,
		Coins:   append([]string(nil), DefaultCoins...),
		Cities:  append([]string(nil), DefaultCities...),
	}
}

// GetProvidersConfig returns the providers config with defaults applied for
// any unset values.
func (c *Config) GetProvidersConfig() *ProvidersConfig {
	if c.Providers == nil {
		return DefaultProvidersConfig()
	}
	p := c.Providers
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if len(p.Coins) == 0 {
		p.Coins = append([]string(nil), DefaultCoins...)
	}
	if len(p.Cities) == 0 {
		p.Cities = append([]string(nil), DefaultCities...)
	}
	return p
}

// GetPreviewConfig returns the preview config with defaults applied for any
// unset values.
func (c *Config) GetPreviewConfig() *PreviewConfig {
	if c.Preview == nil {
		return &PreviewConfig{Port: DefaultPreviewPort, Watch: true}
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = DefaultPreviewPort
	}
	return c.Preview
}
