// Package config loads pipeline settings from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/torokati44/binaryen/internal/passes"
)

const (
	ConfigFileName = "bulkmem.toml"
)

// Config holds the settings of one run
type Config struct {
	// Passes lists registered pass names in execution order
	Passes []string `toml:"passes"`

	// Workers bounds how many functions are processed at once; 0 means GOMAXPROCS
	Workers int `toml:"workers"`

	// Debug reports every merge through the log at debug level
	Debug bool `toml:"debug"`

	// StoreWidth is "unit" or "access"
	StoreWidth string `toml:"store_width"`

	IntrinsifyLibc bool `toml:"intrinsify_libc"`

	LogFile   string `toml:"log_file"`
	Verbosity int    `toml:"verbosity"`
}

// Default returns the settings used when no file is given
func Default() *Config {
	return &Config{
		Passes:     append([]string(nil), passes.DefaultPasses...),
		StoreWidth: passes.UnitWidth.String(),
	}
}

// Load reads and validates the file at path. Keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates TOML data
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks pass names and enumerated values
func (c *Config) Validate() error {
	if _, err := passes.Create(c.Passes, passes.Options{}); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, ok := passes.ParseStoreWidth(c.StoreWidth); !ok {
		return fmt.Errorf("invalid config: store_width must be \"unit\" or \"access\", got %q", c.StoreWidth)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid config: workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// PassOptions converts the settings into options for pass construction.
// Diagnostics are left for the caller to bind.
func (c *Config) PassOptions() passes.Options {
	width, _ := passes.ParseStoreWidth(c.StoreWidth)
	return passes.Options{
		StoreWidth:     width,
		IntrinsifyLibc: c.IntrinsifyLibc,
	}
}

// Save writes the settings to path as TOML
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// FindConfigFile looks for ConfigFileName in startPath's directory and its
// parents and returns the first match, or "" when there is none
func FindConfigFile(startPath string) string {
	info, err := os.Stat(startPath)
	if err != nil {
		return ""
	}

	dir := startPath
	if !info.IsDir() {
		dir = filepath.Dir(startPath)
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
