// Package cmd - estimate command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"building-cost/core/engine"
	"building-cost/core/output"
	"building-cost/core/types"
	"building-cost/internal/config"
	"building-cost/internal/logging"
)

var (
	outputFormat string
	outputFile   string
	showScope    bool
	showTrace    bool
	noColor      bool
	detailsFile  string

	est struct {
		buildingType string
		subtype      string
		sf           float64
		location     string
		class        string
		floors       int
		ownership    string
		finish       string
		features     []string
		split        map[string]string
		officeShare  float64
		officeSF     float64
		docks        float64
		mezzanineSF  float64
		noDocks      bool
		blastFreezer bool
	}
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate cost and returns for one building",
	Long: `Calculate construction cost, trade breakdown, scope items and
ownership returns for one building.

Inputs come from flags, from a project details file (JSON or YAML), or
both; flags win over the file.

Examples:
  building-cost estimate --type office --subtype class_a --sf 50000 --location "Nashville, TN"
  building-cost estimate --type industrial --subtype flex_space --sf 40000 --office-share 0.25
  building-cost estimate --type mixed_use --sf 120000 --split office=30 --split residential=70
  building-cost estimate --details project.yaml --format json --out result.json`,
	Args: cobra.NoArgs,
	RunE: runEstimate,
}

func init() {
	f := estimateCmd.Flags()
	f.StringVarP(&outputFormat, "format", "f", "", "output format (cli, json, yaml, markdown)")
	f.StringVarP(&outputFile, "out", "o", "", "write output to a file instead of stdout")
	f.BoolVar(&showScope, "scope", false, "include scope items in the report")
	f.BoolVar(&showTrace, "trace", false, "include the calculation trace in the report")
	f.BoolVar(&noColor, "no-color", false, "disable colored output")
	f.StringVarP(&detailsFile, "details", "d", "", "project details file (JSON or YAML)")

	f.StringVarP(&est.buildingType, "type", "t", "", "building type")
	f.StringVarP(&est.subtype, "subtype", "s", "", "building subtype (default subtype of the type if empty)")
	f.Float64Var(&est.sf, "sf", 0, "gross square footage")
	f.StringVarP(&est.location, "location", "l", "", `location such as "Nashville, TN"`)
	f.StringVar(&est.class, "class", "", "project class (ground_up, addition, renovation, tenant_improvement)")
	f.IntVar(&est.floors, "floors", 0, "number of floors (default typical floors)")
	f.StringVar(&est.ownership, "ownership", "", "ownership type")
	f.StringVar(&est.finish, "finish", "", "finish level (standard, premium, luxury)")
	f.StringSliceVar(&est.features, "feature", nil, "special feature, repeatable")
	f.StringToStringVar(&est.split, "split", nil, "mixed-use component share, e.g. office=30")
	f.Float64Var(&est.officeShare, "office-share", 0, "office share of a flex or industrial building")
	f.Float64Var(&est.officeSF, "office-sf", 0, "office square footage")
	f.Float64Var(&est.docks, "docks", 0, "number of dock doors")
	f.Float64Var(&est.mezzanineSF, "mezzanine-sf", 0, "mezzanine square footage")
	f.BoolVar(&est.noDocks, "no-docks", false, "exclude dock doors")
	f.BoolVar(&est.blastFreezer, "blast-freezer", false, "cold storage has a blast freezer")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger := logging.Named("cli")

	req, err := buildRequest(cmd)
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	res, err := eng.CalculateProject(context.Background(), req)
	if err != nil {
		return err
	}
	logger.Debug("estimate complete")

	return withOutput(cmd, func(w io.Writer, f output.Formatter) error {
		return f.Render(w, res)
	})
}

// buildRequest merges the details file with the flags that were set
func buildRequest(cmd *cobra.Command) (engine.Request, error) {
	var details engine.ProjectDetails
	if detailsFile != "" {
		if err := readDocument(detailsFile, &details); err != nil {
			return engine.Request{}, err
		}
	}

	flags := cmd.Flags()
	o := engine.Request{
		BuildingType:    types.BuildingType(types.NormalizeKey(est.buildingType)),
		Subtype:         est.subtype,
		SquareFootage:   est.sf,
		Location:        est.location,
		ProjectClass:    est.class,
		Floors:          est.floors,
		OwnershipType:   types.OwnershipType(types.NormalizeKey(est.ownership)),
		FinishLevel:     est.finish,
		SpecialFeatures: est.features,
		HasBlastFreezer: est.blastFreezer,
	}
	if len(est.split) > 0 {
		o.MixedUseSplit = make(map[string]interface{}, len(est.split))
		for k, v := range est.split {
			o.MixedUseSplit[k] = v
		}
	}
	if flags.Changed("office-share") {
		o.OfficeShare = &est.officeShare
	}
	if flags.Changed("office-sf") {
		o.OfficeSF = &est.officeSF
	}
	if flags.Changed("docks") {
		o.DockDoors = &est.docks
	}
	if flags.Changed("mezzanine-sf") {
		o.MezzanineSF = &est.mezzanineSF
	}
	if est.noDocks {
		include := false
		o.IncludeDocks = &include
	}

	if detailsFile == "" && o.BuildingType == "" {
		return engine.Request{}, fmt.Errorf("either --type or --details is required")
	}
	return engine.RequestFromDetails(details, o)
}

// withOutput resolves the format and destination and runs render
func withOutput(cmd *cobra.Command, render func(io.Writer, output.Formatter) error) error {
	cfg := config.Get()
	name := outputFormat
	if name == "" {
		name = cfg.Output.DefaultFormat
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return err
	}

	opts := output.Options{
		ShowScopeItems: showScope || cfg.Output.ShowScopeItems,
		ShowTrace:      showTrace || cfg.Output.ShowTrace,
		NoColor:        noColor || cfg.Output.NoColor || outputFile != "",
	}
	formatter, ok := output.NewRegistry(opts).Get(format)
	if !ok {
		return fmt.Errorf("no formatter for %s", format)
	}

	var w io.Writer = cmd.OutOrStdout()
	if outputFile != "" {
		file, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	return render(w, formatter)
}

// readDocument decodes a JSON or YAML file by extension
func readDocument(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, v)
	default:
		err = yaml.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
