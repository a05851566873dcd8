package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Engine.HoldYears != 10 {
		t.Errorf("HoldYears = %d, want 10", cfg.Engine.HoldYears)
	}
	if cfg.Engine.LocationCacheSize <= 0 {
		t.Errorf("LocationCacheSize = %d, want > 0", cfg.Engine.LocationCacheSize)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cfg.json")
	cfg := Default()
	cfg.Engine.BatchWorkers = 9
	cfg.Catalog.Directory = "/etc/building-cost/catalog"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Engine.BatchWorkers != 9 {
		t.Errorf("BatchWorkers = %d, want 9", loaded.Engine.BatchWorkers)
	}
	if loaded.Catalog.Directory != "/etc/building-cost/catalog" {
		t.Errorf("Catalog.Directory = %q", loaded.Catalog.Directory)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvBatchWorkers, "12")
	t.Setenv(EnvOutputFormat, "json")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Engine.BatchWorkers != 12 {
		t.Errorf("BatchWorkers = %d, want 12", cfg.Engine.BatchWorkers)
	}
	if cfg.Output.DefaultFormat != "json" {
		t.Errorf("DefaultFormat = %q, want json", cfg.Output.DefaultFormat)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "BUILDCOST_REGIONS_FILE=/tmp/regions.yaml\nBUILDCOST_CATALOG_DIR=/from/file\n"
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvCatalogDir, "/from/env")
	t.Setenv(EnvRegionsFile, "")
	os.Unsetenv(EnvRegionsFile)

	if err := LoadDotEnv(envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv(EnvCatalogDir); got != "/from/env" {
		t.Errorf("%s = %q, want existing value kept", EnvCatalogDir, got)
	}
	if got := os.Getenv(EnvRegionsFile); got != "/tmp/regions.yaml" {
		t.Errorf("%s = %q, want value from file", EnvRegionsFile, got)
	}
}
