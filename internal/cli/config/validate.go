package config

import (
	"fmt"
	"os"
	"slices"
)

var (
	validOutputs    = []string{"auto", "text", "markdown", "json"}
	validLogFormats = []string{"text", "json"}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.OutputFormat != "" && !slices.Contains(validOutputs, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (expected one of auto, text, markdown, json)", c.OutputFormat)
	}
	if c.LogFormat != "" && !slices.Contains(validLogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log_format %q (expected text or json)", c.LogFormat)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.Preview != nil && (c.Preview.Port < 0 || c.Preview.Port > 65535) {
		return fmt.Errorf("preview.port out of range: %d", c.Preview.Port)
	}
	return nil
}

// ValidateInputs checks that the configured tree and data files exist.
func (c *Config) ValidateInputs() error {
	for _, p := range []struct{ name, path string }{{"tree", c.TreeFile}, {"data", c.DataFile}} {
		if p.path == "" {
			continue
		}
		if _, err := os.Stat(p.path); os.IsNotExist(err) {
			return fmt.Errorf("%s file does not exist: %s\nHint: pass --%s or set %s_file in dashgen.yaml", p.name, p.path, p.name, p.name)
		}
	}
	return nil
}
