package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"building-cost/core/determinism"
	"building-cost/core/diff"
	"building-cost/core/engine"
)

// MarkdownFormatter writes a markdown report
type MarkdownFormatter struct {
	opts Options
}

// NewMarkdownFormatter creates a markdown formatter
func NewMarkdownFormatter(opts Options) *MarkdownFormatter {
	return &MarkdownFormatter{opts: opts}
}

// Format returns FormatMarkdown
func (f *MarkdownFormatter) Format() Format { return FormatMarkdown }

// Render writes one result
func (f *MarkdownFormatter) Render(w io.Writer, r *engine.Result) error {
	bw := bufio.NewWriter(w)
	info := r.ProjectInfo
	cc := r.ConstructionCosts

	fmt.Fprintf(bw, "# %s\n\n", info.DisplayName)
	fmt.Fprintf(bw, "| | |\n|---|---|\n")
	fmt.Fprintf(bw, "| Building type | %s / %s |\n", info.BuildingType, info.Subtype)
	fmt.Fprintf(bw, "| Square footage | %s |\n", Area(info.SquareFootage))
	fmt.Fprintf(bw, "| Location | %s |\n", orDash(info.Location))
	fmt.Fprintf(bw, "| Project class | %s |\n", info.ProjectClass)
	fmt.Fprintf(bw, "| Finish level | %s |\n", info.FinishLevel)
	fmt.Fprintf(bw, "| **Total project cost** | **%s** |\n", Money(r.Totals.TotalProjectCost))
	fmt.Fprintf(bw, "| Cost per SF | %s |\n\n", PerSF(r.Totals.CostPerSF))

	fmt.Fprintf(bw, "## Trade Breakdown\n\n| Trade | Amount | Share |\n|---|---:|---:|\n")
	for _, line := range r.TradeBreakdown.Ordered() {
		fmt.Fprintf(bw, "| %s | %s | %s |\n", line.Trade, Money(line.Amount), Percent(line.Percent))
	}
	fmt.Fprintf(bw, "| **Construction** | **%s** | |\n\n", Money(cc.ConstructionTotal))

	if f.opts.ShowScopeItems {
		fmt.Fprintf(bw, "## Scope Items\n\n")
		for _, ts := range r.ScopeItems {
			fmt.Fprintf(bw, "### %s\n\n| Item | Qty | Unit | Total | Confidence |\n|---|---:|---|---:|---|\n", ts.Trade)
			for _, it := range ts.Systems {
				fmt.Fprintf(bw, "| %s | %.0f | %s | %s | %s |\n", escapeCell(it.Name), it.Quantity, it.Unit, Money(it.TotalCost), it.ConfidenceLabel)
			}
			fmt.Fprintln(bw)
		}
		fmt.Fprintf(bw, "Scope confidence: %s (%s). %s\n\n", Percent(r.ScopeConfidence.Score), r.ScopeConfidence.Label, r.ScopeConfidence.Explanation)
	}

	fmt.Fprintf(bw, "## Soft Costs\n\n| Category | Amount |\n|---|---:|\n")
	for _, k := range determinism.SortedKeys(r.SoftCosts) {
		fmt.Fprintf(bw, "| %s | %s |\n", strings.ReplaceAll(k, "_", " "), Money(r.SoftCosts[k]))
	}
	fmt.Fprintln(bw)

	if oa := r.OwnershipAnalysis; oa != nil {
		fmt.Fprintf(bw, "## Ownership Analysis (%s)\n\n| Metric | Value |\n|---|---:|\n", oa.OwnershipType)
		fmt.Fprintf(bw, "| Annual revenue | %s |\n", Money(oa.Revenue.AnnualRevenue))
		fmt.Fprintf(bw, "| NOI | %s |\n", Money(oa.Revenue.NOI))
		fmt.Fprintf(bw, "| Yield on cost | %s |\n", Percent(oa.Returns.YieldOnCost))
		fmt.Fprintf(bw, "| DSCR | %.2f |\n", oa.Debt.DSCR)
		fmt.Fprintf(bw, "| NPV | %s |\n", Money(oa.Returns.NPV))
		fmt.Fprintf(bw, "| Decision | %s |\n\n", oa.Decision.Recommendation)
	}

	if warnings := r.Warnings(); len(warnings) > 0 {
		fmt.Fprintf(bw, "## Warnings\n\n")
		for _, e := range warnings {
			fmt.Fprintf(bw, "- `%s` %s\n", e.Code, e.Message)
		}
		fmt.Fprintln(bw)
	}

	if f.opts.ShowTrace {
		fmt.Fprintf(bw, "## Calculation Trace\n\n")
		for _, e := range r.Trace {
			fmt.Fprintf(bw, "%d. **%s** %s\n", e.Seq, e.Step, e.Message)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// RenderBatch writes a scenario comparison table
func (f *MarkdownFormatter) RenderBatch(w io.Writer, b *engine.BatchResult) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Scenario Comparison\n\n| Scenario | Type | Area | Total | Cost/SF | Decision |\n|---|---|---:|---:|---:|---|\n")
	for _, s := range b.Scenarios {
		if s.Result == nil {
			fmt.Fprintf(bw, "| %s | error: %s | | | | |\n", escapeCell(s.Name), escapeCell(s.Error))
			continue
		}
		r := s.Result
		decision := ""
		if r.OwnershipAnalysis != nil {
			decision = r.OwnershipAnalysis.Decision.Recommendation
		}
		fmt.Fprintf(bw, "| %s | %s/%s | %s | %s | %s | %s |\n", escapeCell(s.Name),
			r.ProjectInfo.BuildingType, r.ProjectInfo.Subtype, Area(r.ProjectInfo.SquareFootage),
			Money(r.Totals.TotalProjectCost), PerSF(r.Totals.CostPerSF), decision)
	}
	fmt.Fprintf(bw, "\n%d scenarios, %d failed\n", b.Summary.Count, b.Summary.Failed)
	return bw.Flush()
}

// RenderComparison writes the batch table followed by the baseline diffs
func (f *MarkdownFormatter) RenderComparison(w io.Writer, c *Comparison) error {
	if err := f.RenderBatch(w, c.Batch); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, d := range c.Diffs {
		fmt.Fprintf(bw, "\n## %s vs %s\n\n%s\n", escapeCell(d.Candidate), escapeCell(d.Baseline), strings.TrimSpace(d.Summary()))
		fmt.Fprintf(bw, "\n| Trade | Change | Before | After | Delta |\n|---|---|---:|---:|---:|\n")
		for _, td := range d.Trades {
			if td.ChangeType == diff.ChangeUnchanged {
				continue
			}
			fmt.Fprintf(bw, "| %s | %s | %s | %s | %s |\n", td.Trade, td.ChangeType,
				Money(td.Before.Float64()), Money(td.After.Float64()), signedMoney(td.Delta.Float64()))
		}
	}
	return bw.Flush()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
