// Package trade splits construction cost across trades.
package trade

import (
	"sort"

	"building-cost/core/determinism"
	"building-cost/core/trace"
	"building-cost/core/types"
)

// Breakdown maps trade to dollars. Amounts are unrounded.
type Breakdown map[types.Trade]float64

// Line is one trade of an ordered breakdown
type Line struct {
	Trade   types.Trade `json:"trade"`
	Amount  float64     `json:"amount"`
	Percent float64     `json:"percent"`
}

// Calculate allocates the construction cost by trade percentage. The last
// trade in display order takes the remainder so the breakdown sums exactly
// to the construction cost. Percentages that do not sum to 1.0 are treated
// as relative weights.
func Calculate(constructionCost float64, trades map[types.Trade]float64, log *trace.Log) Breakdown {
	b := make(Breakdown, len(trades))
	order := orderedTrades(trades)
	if len(order) == 0 {
		return b
	}

	weight := 0.0
	for _, t := range order {
		weight += trades[t]
	}
	if weight <= 0 {
		return b
	}

	allocated := 0.0
	for i, t := range order {
		if i == len(order)-1 {
			b[t] = constructionCost - allocated
			break
		}
		b[t] = constructionCost * trades[t] / weight
		allocated += b[t]
	}

	data := map[string]interface{}{"construction_cost": constructionCost}
	for _, t := range order {
		data[string(t)] = b[t]
	}
	if weight < 0.999999 || weight > 1.000001 {
		data["percent_sum"] = weight
	}
	log.Step("trade_breakdown", "allocated construction cost to trades", data)
	return b
}

// Total sums the breakdown
func (b Breakdown) Total() float64 {
	total := 0.0
	for _, t := range orderedTrades(b) {
		total += b[t]
	}
	return total
}

// Scale returns a new breakdown with every trade multiplied by f
func (b Breakdown) Scale(f float64) Breakdown {
	out := make(Breakdown, len(b))
	for t, v := range b {
		out[t] = v * f
	}
	return out
}

// Ordered lists the standard trades first, then any others by name
func (b Breakdown) Ordered() []Line {
	total := b.Total()
	lines := make([]Line, 0, len(b))
	for _, t := range orderedTrades(b) {
		l := Line{Trade: t, Amount: b[t]}
		if total != 0 {
			l.Percent = b[t] / total
		}
		lines = append(lines, l)
	}
	return lines
}

func orderedTrades[V any](m map[types.Trade]V) []types.Trade {
	keys := determinism.SortedKeys(m)
	sort.SliceStable(keys, func(i, j int) bool {
		return types.TradeRank(keys[i]) < types.TradeRank(keys[j])
	})
	return keys
}
