// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted when the file and flags leave a value empty.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvPort        = "RESUME_BUILDER_PORT"
)

// Defaults used when neither flags, the config file nor the environment set a value.
const (
	DefaultPort          = 8080
	DefaultDraftsDir     = ".resume-drafts"
	DefaultApplyDelay    = 500 * time.Millisecond
	DefaultRatePerMinute = 120
)

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs
	Data         string `json:"data,omitempty" yaml:"data,omitempty"`                   // Path to resume data (JSON or YAML)
	Layout       string `json:"layout,omitempty" yaml:"layout,omitempty"`               // Built-in layout name
	Theme        string `json:"theme,omitempty" yaml:"theme,omitempty"`                 // Theme name
	CustomLayout string `json:"custom_layout,omitempty" yaml:"custom_layout,omitempty"` // Path to a custom layout snippet
	Output       string `json:"output,omitempty" yaml:"output,omitempty"`               // Output path for rendered HTML

	// Server
	Port          int    `json:"port,omitempty" yaml:"port,omitempty"`                       // HTTP listen port
	DraftsDir     string `json:"drafts_dir,omitempty" yaml:"drafts_dir,omitempty"`           // Directory for the file drafts store
	DatabaseURL   string `json:"database_url,omitempty" yaml:"database_url,omitempty"`       // PostgreSQL connection URL
	RatePerMinute int    `json:"rate_per_minute,omitempty" yaml:"rate_per_minute,omitempty"` // Requests per client per minute

	// Behavior
	ApplyDelayMS int  `json:"apply_delay_ms,omitempty" yaml:"apply_delay_ms,omitempty"` // Editor auto-apply delay
	MaxSteps     int  `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`           // Custom layout step budget
	MaxDepth     int  `json:"max_depth,omitempty" yaml:"max_depth,omitempty"`           // Custom layout call depth
	Verbose      bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`               // Print detailed debug information
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.RatePerMinute < 0 {
		return fmt.Errorf("config error: 'rate_per_minute' must be non-negative")
	}
	if c.ApplyDelayMS < 0 {
		return fmt.Errorf("config error: 'apply_delay_ms' must be non-negative")
	}
	if c.MaxSteps < 0 || c.MaxDepth < 0 {
		return fmt.Errorf("config error: 'max_steps' and 'max_depth' must be non-negative")
	}

	// Validate file paths exist (if specified)
	if c.Data != "" {
		if _, err := os.Stat(c.Data); os.IsNotExist(err) {
			return fmt.Errorf("config error: data file not found: %s", c.Data)
		}
	}
	if c.CustomLayout != "" {
		if _, err := os.Stat(c.CustomLayout); os.IsNotExist(err) {
			return fmt.Errorf("config error: custom layout file not found: %s", c.CustomLayout)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Data == "" {
		result.Data = defaults.Data
	}
	if result.Layout == "" {
		result.Layout = defaults.Layout
	}
	if result.Theme == "" {
		result.Theme = defaults.Theme
	}
	if result.CustomLayout == "" {
		result.CustomLayout = defaults.CustomLayout
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.DraftsDir == "" {
		result.DraftsDir = defaults.DraftsDir
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RatePerMinute == 0 {
		result.RatePerMinute = defaults.RatePerMinute
	}
	if result.ApplyDelayMS == 0 {
		result.ApplyDelayMS = defaults.ApplyDelayMS
	}
	if result.MaxSteps == 0 {
		result.MaxSteps = defaults.MaxSteps
	}
	if result.MaxDepth == 0 {
		result.MaxDepth = defaults.MaxDepth
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv fills the database URL and port from the environment when unset.
func (c *Config) ApplyEnv() error {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv(EnvDatabaseURL)
	}
	if c.Port == 0 {
		if v := os.Getenv(EnvPort); v != "" {
			port, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("config error: %s must be a number: %w", EnvPort, err)
			}
			c.Port = port
		}
	}
	return nil
}

// WithBuiltinDefaults fills every remaining zero value with the package defaults.
func (c Config) WithBuiltinDefaults() Config {
	return c.MergeWithDefaults(Config{
		Port:          DefaultPort,
		DraftsDir:     DefaultDraftsDir,
		RatePerMinute: DefaultRatePerMinute,
		ApplyDelayMS:  int(DefaultApplyDelay / time.Millisecond),
	})
}

// ApplyDelay returns the editor auto-apply delay.
func (c Config) ApplyDelay() time.Duration {
	if c.ApplyDelayMS <= 0 {
		return DefaultApplyDelay
	}
	return time.Duration(c.ApplyDelayMS) * time.Millisecond
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf(":%d", port)
}
