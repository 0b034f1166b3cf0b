// Package config loads the xan command line defaults from a TOML or YAML
// file. Command line flags always take precedence over these values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable pointing at a config file.
const EnvVar = "XAN_CONFIG"

// Error policies applied when an expression fails on a row.
const (
	PolicyPanic  = "panic"
	PolicyReport = "report"
	PolicyIgnore = "ignore"
	PolicyLog    = "log"
)

// Policies lists the accepted error policies.
var Policies = []string{PolicyPanic, PolicyReport, PolicyIgnore, PolicyLog}

// Config holds the complete xan configuration.
type Config struct {
	Delimiter       string     `toml:"delimiter" yaml:"delimiter"`
	Threads         int        `toml:"threads" yaml:"threads"`
	Parallel        bool       `toml:"parallel" yaml:"parallel"`
	ErrorPolicy     string     `toml:"error_policy" yaml:"error_policy"`
	ErrorColumn     string     `toml:"error_column" yaml:"error_column"`
	PluralSeparator string     `toml:"plural_separator" yaml:"plural_separator"`
	Extensions      *bool      `toml:"extensions" yaml:"extensions"`
	LogLevel        string     `toml:"log_level" yaml:"log_level"`
	Hist            HistConfig `toml:"hist" yaml:"hist"`
}

// HistConfig holds the defaults of the hist command.
type HistConfig struct {
	Cols        int  `toml:"cols" yaml:"cols"`
	Simple      bool `toml:"simple" yaml:"simple"`
	Rainbow     bool `toml:"rainbow" yaml:"rainbow"`
	ForceColors bool `toml:"force_colors" yaml:"force_colors"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML (.toml) or YAML (.yaml, .yml) file.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(content), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault loads the file named by explicit, else by $XAN_CONFIG, else
// $XDG_CONFIG_HOME/xan/config.toml. Only a missing default file is
// tolerated, in which case Default is returned.
func LoadDefault(explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	if path := os.Getenv(EnvVar); path != "" {
		return Load(path)
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return Default(), nil
	}
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		path := filepath.Join(dir, "xan", name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Delimiter == "" {
		c.Delimiter = ","
	}
	if c.ErrorPolicy == "" {
		c.ErrorPolicy = PolicyPanic
	}
	if c.ErrorColumn == "" {
		c.ErrorColumn = "xan_error"
	}
	if c.PluralSeparator == "" {
		c.PluralSeparator = "|"
	}
	if c.Extensions == nil {
		enabled := true
		c.Extensions = &enabled
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Validate rejects values no command can work with.
func (c *Config) Validate() error {
	if _, err := c.Comma(); err != nil {
		return err
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads must not be negative, got %d", c.Threads)
	}
	if !slices.Contains(Policies, c.ErrorPolicy) {
		return fmt.Errorf("unknown error policy %q, expected one of %s", c.ErrorPolicy, strings.Join(Policies, ", "))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.Hist.Cols < 0 {
		return fmt.Errorf("hist.cols must not be negative, got %d", c.Hist.Cols)
	}
	return nil
}

// Comma returns the delimiter as a single rune. "\t" and "tab" name the tab
// character.
func (c *Config) Comma() (rune, error) {
	return ParseDelimiter(c.Delimiter)
}

// ParseDelimiter parses a one character CSV delimiter.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case `\t`, "tab":
		return '\t', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	switch runes[0] {
	case 0, '"', '\r', '\n':
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return runes[0], nil
}

// ExtensionsEnabled reports whether the extension functions are registered.
func (c *Config) ExtensionsEnabled() bool {
	return c.Extensions == nil || *c.Extensions
}
