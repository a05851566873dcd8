package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"building-cost/core/engine"
	"building-cost/core/output"
	"building-cost/core/ui"
	"building-cost/internal/config"
)

// ScenarioFile is the document read by compare
type ScenarioFile struct {
	Scenarios []engine.Scenario `json:"scenarios" yaml:"scenarios"`
}

// compareCmd runs a batch of scenarios
var compareCmd = &cobra.Command{
	Use:   "compare <scenarios.yaml>",
	Short: "Calculate and compare several scenarios",
	Long: `Run every scenario of a YAML or JSON file concurrently and print a
comparison. A failing scenario is reported and does not stop the others.

Example file:
  scenarios:
    - name: class a
      request:
        building_type: office
        subtype: class_a
        square_footage: 50000
        location: Nashville, TN
    - name: flex
      request:
        building_type: industrial
        subtype: flex_space
        square_footage: 40000
        office_share: 0.25`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	f := compareCmd.Flags()
	f.StringVarP(&outputFormat, "format", "f", "", "output format (cli, json, yaml, markdown)")
	f.StringVarP(&outputFile, "out", "o", "", "write output to a file instead of stdout")
	f.BoolVar(&noColor, "no-color", false, "disable colored output")
	f.StringVar(&baselineName, "baseline", "", "diff every scenario against the named scenario")
	f.Float64Var(&diffThreshold, "threshold", 0.001, "relative change below which a line counts as unchanged")
}

var (
	baselineName  string
	diffThreshold float64
)

func runCompare(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	var doc ScenarioFile
	if err := readDocument(args[0], &doc); err != nil {
		return err
	}
	if len(doc.Scenarios) == 0 {
		return fmt.Errorf("%s has no scenarios", args[0])
	}
	for i := range doc.Scenarios {
		if doc.Scenarios[i].Name == "" {
			doc.Scenarios[i].Name = fmt.Sprintf("scenario %d", i+1)
		}
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	uw := ui.NewWriter(cmd.ErrOrStderr(), noColor || cfg.Output.NoColor)
	if verbose {
		uw.SetVerbosity(2)
	}
	bar := uw.NewProgressBar(len(doc.Scenarios), "Calculating")
	batch := eng.CalculateBatch(context.Background(), doc.Scenarios, engine.WithProgress(func(done, total int) {
		bar.Update(done)
	}))
	bar.Done()

	var comparison *output.Comparison
	if baselineName != "" {
		if comparison, err = output.Compare(batch, baselineName, diffThreshold); err != nil {
			return err
		}
	}

	if err := withOutput(cmd, func(w io.Writer, f output.Formatter) error {
		if comparison != nil {
			return f.RenderComparison(w, comparison)
		}
		return f.RenderBatch(w, batch)
	}); err != nil {
		return err
	}
	if batch.Summary.Succeeded == 0 {
		return fmt.Errorf("all %d scenarios failed", batch.Summary.Count)
	}
	return nil
}
