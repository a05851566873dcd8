// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"building-cost/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Catalog locates building configuration overrides
	Catalog CatalogConfig `json:"catalog"`

	// Regions locates the regional cost index
	Regions RegionsConfig `json:"regions"`

	// Engine tunes the calculation engine
	Engine EngineConfig `json:"engine"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// CatalogConfig contains catalog settings
type CatalogConfig struct {
	// Directory holds *.hcl files merged over the embedded catalog.
	// Empty means embedded only.
	Directory string `json:"directory,omitempty"`
}

// RegionsConfig contains regional data settings
type RegionsConfig struct {
	// File is a YAML regional index replacing the embedded one
	File string `json:"file,omitempty"`
}

// EngineConfig contains engine settings
type EngineConfig struct {
	// LocationCacheSize bounds the location lookup LRU
	LocationCacheSize int `json:"location_cache_size"`

	// BatchWorkers bounds concurrent scenario calculations
	BatchWorkers int `json:"batch_workers"`

	// HoldYears is the DCF horizon
	HoldYears int `json:"hold_years"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// ShowScopeItems prints scope items in the CLI report
	ShowScopeItems bool `json:"show_scope_items"`

	// ShowTrace prints the calculation trace in the CLI report
	ShowTrace bool `json:"show_trace"`

	// NoColor disables ANSI colors
	NoColor bool `json:"no_color"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Engine: EngineConfig{
			LocationCacheSize: 512,
			BatchWorkers:      4,
			HoldYears:         10,
		},
		Output: OutputConfig{
			DefaultFormat:  "cli",
			ShowScopeItems: false,
			ShowTrace:      false,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns the default configuration file location
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".building-cost.json")
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
