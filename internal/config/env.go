package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables recognised by ApplyEnv
const (
	EnvLogLevel     = "BUILDCOST_LOG_LEVEL"
	EnvCatalogDir   = "BUILDCOST_CATALOG_DIR"
	EnvRegionsFile  = "BUILDCOST_REGIONS_FILE"
	EnvBatchWorkers = "BUILDCOST_BATCH_WORKERS"
	EnvOutputFormat = "BUILDCOST_OUTPUT_FORMAT"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overlays environment variables onto the configuration
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvCatalogDir); v != "" {
		c.Catalog.Directory = v
	}
	if v := os.Getenv(EnvRegionsFile); v != "" {
		c.Regions.File = v
	}
	if v := os.Getenv(EnvBatchWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Engine.BatchWorkers = n
		}
	}
	if v := os.Getenv(EnvOutputFormat); v != "" {
		c.Output.DefaultFormat = v
	}
}
