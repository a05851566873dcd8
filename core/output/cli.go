package output

import (
	"fmt"
	"io"
	"strings"

	"building-cost/core/determinism"
	"building-cost/core/diff"
	"building-cost/core/engine"
	"building-cost/core/trace"
	"building-cost/core/ui"
)

// CLIFormatter writes a terminal report
type CLIFormatter struct {
	opts Options
}

// NewCLIFormatter creates a terminal formatter
func NewCLIFormatter(opts Options) *CLIFormatter {
	return &CLIFormatter{opts: opts}
}

// Format returns FormatCLI
func (f *CLIFormatter) Format() Format { return FormatCLI }

// Render writes one result
func (f *CLIFormatter) Render(w io.Writer, r *engine.Result) error {
	out := ui.NewWriter(w, f.opts.NoColor)
	info := r.ProjectInfo
	cc := r.ConstructionCosts

	summary := out.NewProjectSummary(fmt.Sprintf("%s (%s)", info.DisplayName, info.BuildingType))
	summary.Total = Money(r.Totals.TotalProjectCost)
	summary.CostPerSF = PerSF(r.Totals.CostPerSF)
	summary.Warnings = len(r.Warnings())
	if r.OwnershipAnalysis != nil {
		summary.Recommendation = r.OwnershipAnalysis.Decision.Recommendation
	}
	summary.Render()

	out.Header("Project")
	out.KeyValue("Square footage", Area(info.SquareFootage))
	out.KeyValue("Location", orDash(info.Location))
	out.KeyValue("Project class", string(info.ProjectClass))
	out.KeyValue("Floors", fmt.Sprintf("%d", info.Floors))
	out.KeyValue("Finish level", string(info.FinishLevel))
	out.KeyValue("Ownership", string(info.OwnershipType))

	out.Header("Cost Chain")
	out.KeyValue("Base cost", PerSF(cc.BaseCostPerSF))
	if cc.HeightFactor != 1 {
		out.KeyValue("Height factor", Factor(cc.HeightFactor))
	}
	if r.MixedUse != nil {
		out.KeyValue("Mixed-use split", formatSplit(r.MixedUse.Components))
		out.KeyValue("Mixed-use multiplier", Factor(cc.MixedUseCostMultiplier))
	}
	out.KeyValue("Class multiplier", Factor(cc.ProjectClassMultiplier))
	out.KeyValue("Regional multiplier", Factor(cc.RegionalMultiplier))
	out.KeyValue("Finish factor", Factor(cc.FinishCostFactor))
	out.KeyValue("Final cost", PerSF(cc.FinalCostPerSF))
	if cc.Clamp != nil {
		out.Warning("cost per SF clamped at the %s bound (was %s)", cc.Clamp.Bound, PerSF(cc.Clamp.UnclampedCostPerSF))
	}

	out.Header("Trade Breakdown")
	tbl := out.NewTable("Trade", "Amount", "Share").AlignRight(1, 2)
	for _, line := range r.TradeBreakdown.Ordered() {
		tbl.AddRow(string(line.Trade), Money(line.Amount), Percent(line.Percent))
	}
	tbl.SetFooter("construction", Money(cc.ConstructionTotal), "")
	tbl.Render()

	if f.opts.ShowScopeItems {
		out.Header("Scope Items")
		for _, ts := range r.ScopeItems {
			out.SubHeader(string(ts.Trade))
			items := out.NewTable("Item", "Qty", "Unit", "Unit cost", "Total", "Confidence").AlignRight(1, 3, 4)
			for _, it := range ts.Systems {
				items.AddRow(it.Name, fmt.Sprintf("%.0f", it.Quantity), it.Unit, Money(it.UnitCost), Money(it.TotalCost), it.ConfidenceLabel)
			}
			items.Render()
			out.Println("")
		}
		out.KeyValue("Scope confidence", fmt.Sprintf("%s (%s)", Percent(r.ScopeConfidence.Score), r.ScopeConfidence.Label))
		if len(r.ScopeConfidence.LowItems) > 0 {
			out.KeyValue("Low-confidence items", fmt.Sprintf("%d", len(r.ScopeConfidence.LowItems)))
		}
	}

	out.Header("Project Totals")
	totals := out.NewTable("Component", "Amount").AlignRight(1)
	totals.AddRow("construction", Money(cc.ConstructionTotal))
	if !cc.EquipmentReclassified {
		totals.AddRow("equipment", Money(cc.EquipmentTotal))
	}
	if cc.SpecialFeaturesTotal > 0 {
		totals.AddRow("special features", Money(cc.SpecialFeaturesTotal))
	}
	for _, k := range determinism.SortedKeys(r.SoftCosts) {
		totals.AddRow(strings.ReplaceAll(k, "_", " "), Money(r.SoftCosts[k]))
	}
	totals.SetFooter("total", Money(r.Totals.TotalProjectCost))
	totals.Render()

	if oa := r.OwnershipAnalysis; oa != nil {
		out.Header("Ownership Analysis")
		out.KeyValue("Annual revenue", Money(oa.Revenue.AnnualRevenue))
		out.KeyValue("Operating margin", Percent(oa.Revenue.Margin.Pct)+" ("+oa.Revenue.Margin.Source+")")
		out.KeyValue("Net operating income", Money(oa.Revenue.NOI))
		out.KeyValue("Yield on cost", Percent(oa.Returns.YieldOnCost))
		out.KeyValue("DSCR", fmt.Sprintf("%.2f (target %.2f)", oa.Debt.DSCR, oa.Debt.TargetDSCR))
		out.KeyValue("NPV", Money(oa.Returns.NPV))
		if oa.Returns.IRRConverged {
			out.KeyValue("IRR", Percent(oa.Returns.IRR))
		} else {
			out.KeyValue("IRR", "n/a")
		}
		if oa.Returns.PaybackAchievable {
			out.KeyValue("Payback", fmt.Sprintf("%.1f years", oa.Returns.PaybackYears))
		} else {
			out.KeyValue("Payback", "not achievable")
		}
		for _, reason := range oa.Decision.Reasons {
			out.Info("%s", reason)
		}
	}

	if warnings := r.Warnings(); len(warnings) > 0 {
		out.Header("Warnings")
		for _, e := range warnings {
			out.Warning("[%s] %s", e.Code, e.Message)
		}
	}

	if f.opts.ShowTrace {
		out.Header("Calculation Trace")
		for _, e := range r.Trace {
			label := e.Step
			if e.Code != "" {
				label += " " + e.Code
			}
			if e.Kind == trace.KindStep {
				out.Println("  %3d %-22s %s", e.Seq, label, e.Message)
			} else {
				out.Println("  %3d %-22s %s (%s)", e.Seq, label, e.Message, e.Kind)
			}
		}
	}
	return nil
}

// RenderBatch writes a scenario comparison table
func (f *CLIFormatter) RenderBatch(w io.Writer, b *engine.BatchResult) error {
	out := ui.NewWriter(w, f.opts.NoColor)
	out.Header("Scenario Comparison")

	tbl := out.NewTable("Scenario", "Type", "Area", "Total", "Cost/SF", "NOI", "Decision").AlignRight(2, 3, 4, 5)
	for _, s := range b.Scenarios {
		if s.Result == nil {
			tbl.AddRow(s.Name, "error", "", "", "", "", "")
			continue
		}
		r := s.Result
		noi, decision := "", ""
		if oa := r.OwnershipAnalysis; oa != nil {
			noi = Money(oa.Revenue.NOI)
			decision = oa.Decision.Recommendation
		}
		tbl.AddRow(s.Name,
			string(r.ProjectInfo.BuildingType)+"/"+r.ProjectInfo.Subtype,
			Area(r.ProjectInfo.SquareFootage),
			Money(r.Totals.TotalProjectCost),
			PerSF(r.Totals.CostPerSF),
			noi, decision)
	}
	tbl.Render()
	out.Println("")

	sum := b.Summary
	if sum.Cheapest != nil && sum.Costliest != nil {
		out.KeyValue("Lowest total", fmt.Sprintf("%s (%s)", sum.Cheapest.Name, Money(sum.Cheapest.TotalProjectCost)))
		out.KeyValue("Highest total", fmt.Sprintf("%s (%s)", sum.Costliest.Name, Money(sum.Costliest.TotalProjectCost)))
	}
	if sum.Failed > 0 {
		out.Warning("%d of %d scenarios failed", sum.Failed, sum.Count)
		for _, s := range b.Scenarios {
			if s.Error != "" {
				out.Error("%s: %s", s.Name, s.Error)
			}
		}
	} else {
		out.Success("%d scenarios calculated", sum.Succeeded)
	}
	return nil
}

// RenderComparison writes the batch table followed by the baseline diffs
func (f *CLIFormatter) RenderComparison(w io.Writer, c *Comparison) error {
	if err := f.RenderBatch(w, c.Batch); err != nil {
		return err
	}
	out := ui.NewWriter(w, f.opts.NoColor)
	for _, d := range c.Diffs {
		out.Header(fmt.Sprintf("%s vs %s", d.Candidate, d.Baseline))
		out.KeyValue("Total", fmt.Sprintf("%s -> %s (%s)", Money(d.TotalBefore.Float64()), Money(d.TotalAfter.Float64()), signedMoney(d.TotalDelta.Float64())))
		out.KeyValue("Cost/SF", fmt.Sprintf("%s -> %s", PerSF(d.CostPerSFBefore), PerSF(d.CostPerSFAfter)))

		tbl := out.NewTable("Trade", "Change", "Before", "After", "Delta").AlignRight(2, 3, 4)
		for _, td := range d.Trades {
			if td.ChangeType == diff.ChangeUnchanged {
				continue
			}
			tbl.AddRow(string(td.Trade), td.ChangeType.String(), Money(td.Before.Float64()), Money(td.After.Float64()), signedMoney(td.Delta.Float64()))
		}
		for _, sd := range d.SoftCosts {
			tbl.AddRow("soft: "+sd.Name, sd.ChangeType.String(), Money(sd.Before.Float64()), Money(sd.After.Float64()), signedMoney(sd.Delta.Float64()))
		}
		tbl.Render()
		out.Println("")
	}
	return nil
}

func signedMoney(v float64) string {
	if v > 0 {
		return "+" + Money(v)
	}
	return Money(v)
}

func formatSplit(split map[string]float64) string {
	parts := make([]string, 0, len(split))
	for _, k := range determinism.SortedKeys(split) {
		parts = append(parts, fmt.Sprintf("%s %.0f%%", k, split[k]))
	}
	return strings.Join(parts, " / ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
