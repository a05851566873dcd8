// Package diff compares two estimates trade by trade and scope item by
// scope item.
package diff

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"building-cost/core/determinism"
	"building-cost/core/engine"
	"building-cost/core/scope"
	"building-cost/core/types"
)

// ChangeType classifies a line of the diff
type ChangeType int

const (
	ChangeAdded ChangeType = iota
	ChangeRemoved
	ChangeModified
	ChangeUnchanged
)

// String returns the change type name
func (c ChangeType) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeModified:
		return "modified"
	case ChangeUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// MarshalText encodes the change type by name
func (c ChangeType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Result is the diff between a baseline and a candidate estimate
type Result struct {
	Baseline  string `json:"baseline"`
	Candidate string `json:"candidate"`

	TotalBefore  determinism.Money `json:"total_before"`
	TotalAfter   determinism.Money `json:"total_after"`
	TotalDelta   determinism.Money `json:"total_delta"`
	DeltaPercent float64           `json:"delta_percent"`

	CostPerSFBefore float64 `json:"cost_per_sf_before"`
	CostPerSFAfter  float64 `json:"cost_per_sf_after"`

	Trades    []*TradeDiff `json:"trades"`
	SoftCosts []*LineDiff  `json:"soft_costs"`

	AddedCount     int `json:"added_count"`
	RemovedCount   int `json:"removed_count"`
	ChangedCount   int `json:"changed_count"`
	UnchangedCount int `json:"unchanged_count"`

	ConfidenceBefore float64 `json:"confidence_before"`
	ConfidenceAfter  float64 `json:"confidence_after"`
}

// TradeDiff is the change of one trade and its scope items
type TradeDiff struct {
	Trade      types.Trade       `json:"trade"`
	ChangeType ChangeType        `json:"change_type"`
	Before     determinism.Money `json:"before"`
	After      determinism.Money `json:"after"`
	Delta      determinism.Money `json:"delta"`
	Items      []*LineDiff       `json:"items,omitempty"`
}

// LineDiff is the change of a single named amount
type LineDiff struct {
	Key        string            `json:"key"`
	Name       string            `json:"name,omitempty"`
	ChangeType ChangeType        `json:"change_type"`
	Before     determinism.Money `json:"before"`
	After      determinism.Money `json:"after"`
	Delta      determinism.Money `json:"delta"`
}

// Differ computes diffs between estimates
type Differ struct {
	// Relative change at or below which a line counts as unchanged
	ChangeThreshold float64
}

// NewDiffer creates a differ; a non-positive threshold means 0.1%
func NewDiffer(changeThreshold float64) *Differ {
	if changeThreshold <= 0 {
		changeThreshold = 0.001
	}
	return &Differ{ChangeThreshold: changeThreshold}
}

// Diff compares the candidate estimate against the baseline
func (d *Differ) Diff(baselineName string, before *engine.Result, candidateName string, after *engine.Result) *Result {
	r := &Result{
		Baseline:         baselineName,
		Candidate:        candidateName,
		TotalBefore:      determinism.USD(before.Totals.TotalProjectCost),
		TotalAfter:       determinism.USD(after.Totals.TotalProjectCost),
		CostPerSFBefore:  before.Totals.CostPerSF,
		CostPerSFAfter:   after.Totals.CostPerSF,
		ConfidenceBefore: before.ScopeConfidence.Score,
		ConfidenceAfter:  after.ScopeConfidence.Score,
	}
	r.TotalDelta = r.TotalAfter.Sub(r.TotalBefore)
	if before.Totals.TotalProjectCost != 0 {
		r.DeltaPercent = (after.Totals.TotalProjectCost - before.Totals.TotalProjectCost) / before.Totals.TotalProjectCost * 100
	}

	beforeItems := itemsByTrade(before.ScopeItems)
	afterItems := itemsByTrade(after.ScopeItems)

	trades := make(map[types.Trade]bool)
	for t := range before.TradeBreakdown {
		trades[t] = true
	}
	for t := range after.TradeBreakdown {
		trades[t] = true
	}

	for _, t := range sortedTrades(trades) {
		b, inBefore := before.TradeBreakdown[t]
		a, inAfter := after.TradeBreakdown[t]
		td := &TradeDiff{
			Trade:      t,
			ChangeType: d.classify(b, a, inBefore, inAfter),
			Before:     determinism.USD(b),
			After:      determinism.USD(a),
		}
		td.Delta = td.After.Sub(td.Before)
		if td.ChangeType != ChangeUnchanged {
			td.Items = d.lines(beforeItems[t], afterItems[t])
		}
		r.count(td.ChangeType)
		r.Trades = append(r.Trades, td)
	}

	r.SoftCosts = d.lines(softLines(before.SoftCosts), softLines(after.SoftCosts))
	return r
}

func (d *Differ) classify(before, after float64, inBefore, inAfter bool) ChangeType {
	switch {
	case !inBefore && inAfter:
		return ChangeAdded
	case inBefore && !inAfter:
		return ChangeRemoved
	case before == 0 && after == 0:
		return ChangeUnchanged
	}
	change := 1.0
	if before != 0 {
		change = (after - before) / before
	}
	if math.Abs(change) <= d.ChangeThreshold {
		return ChangeUnchanged
	}
	return ChangeModified
}

type line struct {
	name   string
	amount float64
}

// lines diffs keyed amounts, dropping the unchanged ones
func (d *Differ) lines(before, after map[string]line) []*LineDiff {
	all := make(map[string]bool, len(before)+len(after))
	for k := range before {
		all[k] = true
	}
	for k := range after {
		all[k] = true
	}

	var out []*LineDiff
	for _, k := range determinism.SortedKeys(all) {
		b, inBefore := before[k]
		a, inAfter := after[k]
		ct := d.classify(b.amount, a.amount, inBefore, inAfter)
		if ct == ChangeUnchanged {
			continue
		}
		name := a.name
		if !inAfter {
			name = b.name
		}
		ld := &LineDiff{
			Key:        k,
			Name:       name,
			ChangeType: ct,
			Before:     determinism.USD(b.amount),
			After:      determinism.USD(a.amount),
		}
		ld.Delta = ld.After.Sub(ld.Before)
		out = append(out, ld)
	}
	return out
}

func (r *Result) count(ct ChangeType) {
	switch ct {
	case ChangeAdded:
		r.AddedCount++
	case ChangeRemoved:
		r.RemovedCount++
	case ChangeModified:
		r.ChangedCount++
	default:
		r.UnchangedCount++
	}
}

func itemsByTrade(scopes []scope.TradeScope) map[types.Trade]map[string]line {
	out := make(map[types.Trade]map[string]line, len(scopes))
	for _, ts := range scopes {
		m := make(map[string]line, len(ts.Systems))
		for _, it := range ts.Systems {
			prev := m[it.Key]
			m[it.Key] = line{name: it.Name, amount: prev.amount + it.TotalCost}
		}
		out[ts.Trade] = m
	}
	return out
}

func softLines(soft map[string]float64) map[string]line {
	out := make(map[string]line, len(soft))
	for k, v := range soft {
		out[k] = line{name: strings.ReplaceAll(k, "_", " "), amount: v}
	}
	return out
}

// sortedTrades orders trades for display, unknown trades last by name
func sortedTrades(m map[types.Trade]bool) []types.Trade {
	out := make([]types.Trade, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := types.TradeRank(out[i]), types.TradeRank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

// Summary provides a short human-readable account of the diff
func (r *Result) Summary() string {
	var b strings.Builder
	switch {
	case r.TotalDelta.IsZero():
		fmt.Fprintf(&b, "%s vs %s: no cost change\n", r.Candidate, r.Baseline)
	case r.TotalDelta.IsNegative():
		fmt.Fprintf(&b, "%s vs %s: cost decreased by %s (%.1f%%)\n", r.Candidate, r.Baseline, r.TotalDelta.Amount().Neg().StringFixed(2), r.DeltaPercent)
	default:
		fmt.Fprintf(&b, "%s vs %s: cost increased by %s (+%.1f%%)\n", r.Candidate, r.Baseline, r.TotalDelta.StringFixed(2), r.DeltaPercent)
	}
	if r.AddedCount > 0 {
		fmt.Fprintf(&b, "  + %d trades added\n", r.AddedCount)
	}
	if r.RemovedCount > 0 {
		fmt.Fprintf(&b, "  - %d trades removed\n", r.RemovedCount)
	}
	if r.ChangedCount > 0 {
		fmt.Fprintf(&b, "  ~ %d trades changed\n", r.ChangedCount)
	}
	return b.String()
}

// TopChanges returns the changed trades with the largest absolute delta
func (r *Result) TopChanges(n int) []*TradeDiff {
	var changed []*TradeDiff
	for _, td := range r.Trades {
		if td.ChangeType != ChangeUnchanged {
			changed = append(changed, td)
		}
	}
	sort.SliceStable(changed, func(i, j int) bool {
		return changed[i].Delta.Amount().Abs().GreaterThan(changed[j].Delta.Amount().Abs())
	})
	if n < len(changed) {
		changed = changed[:n]
	}
	return changed
}
