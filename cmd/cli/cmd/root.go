// Package cmd provides the CLI commands for building-cost.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"building-cost/core/catalog"
	"building-cost/core/engine"
	"building-cost/core/location"
	"building-cost/internal/config"
	"building-cost/internal/logging"
)

// Version is set at build time
var Version = "0.1.0"

var (
	cfgFile string
	envFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "building-cost",
	Short: "Estimate construction cost and returns for buildings",
	Long: `building-cost estimates the construction cost of a building and the
financial returns of owning it.

Every estimate is a single deterministic calculation over the building
catalog, with a full calculation trace.

Examples:
  building-cost estimate --type office --subtype class_a --sf 50000 --location "Nashville, TN"
  building-cost estimate --details project.json --format json
  building-cost compare scenarios.yaml
  building-cost catalog list`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.building-cost.json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", envFile, err)
	}

	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnv()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// loadCatalog builds the catalog store named by the configuration
func loadCatalog(cfg *config.Config) (*catalog.Store, error) {
	return catalog.LoadDir(cfg.Catalog.Directory)
}

// newEngine wires an engine from the configuration
func newEngine(cfg *config.Config) (*engine.Engine, error) {
	store, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	ds, err := location.DefaultDataset()
	if cfg.Regions.File != "" {
		ds, err = location.LoadFile(cfg.Regions.File)
	}
	if err != nil {
		return nil, err
	}
	locs, err := location.NewResolver(ds, cfg.Engine.LocationCacheSize)
	if err != nil {
		return nil, err
	}

	return engine.New(store, locs, engine.Config{
		BatchWorkers: cfg.Engine.BatchWorkers,
		HoldYears:    cfg.Engine.HoldYears,
	})
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "building-cost version %s\n", Version)
	},
}
