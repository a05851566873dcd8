// Package scope turns trade dollars into priced scope line items.
//
// Item totals are allocated from the trade total and are the source of
// truth; unit cost is always derived from total and quantity.
package scope

import (
	"building-cost/core/confidence"
	"building-cost/core/types"
)

// Item sources
const (
	SourceProfile   = "profile"
	SourceLegacy    = "legacy"
	SourceGeneric   = "generic"
	SourceSynthetic = "synthetic"
)

// Item is one priced scope line
type Item struct {
	Key             string      `json:"key"`
	Name            string      `json:"name"`
	Trade           types.Trade `json:"trade"`
	Quantity        float64     `json:"quantity"`
	Unit            string      `json:"unit"`
	UnitCost        float64     `json:"unit_cost"`
	TotalCost       float64     `json:"total_cost"`
	Note            string      `json:"note,omitempty"`
	Source          string      `json:"source"`
	ConfidenceScore float64     `json:"confidence_score"`
	ConfidenceLabel string      `json:"confidence_label"`
}

// newItem prices an item from its allocated total
func newItem(key, name string, trade types.Trade, qty float64, unit string, total float64, source string, conf *confidence.Tracker) Item {
	it := Item{
		Key:       key,
		Name:      name,
		Trade:     trade,
		Quantity:  qty,
		Unit:      unit,
		TotalCost: total,
		Source:    source,
	}
	it.UnitCost = unitCost(total, qty)
	it.ConfidenceScore = conf.Current()
	it.ConfidenceLabel = conf.Level()
	return it
}

// Scaled returns a copy with the total multiplied by f and unit cost re-derived
func (it Item) Scaled(f float64) Item {
	out := it
	out.TotalCost = it.TotalCost * f
	out.UnitCost = unitCost(out.TotalCost, out.Quantity)
	return out
}

func unitCost(total, qty float64) float64 {
	if qty == 0 {
		return 0
	}
	return total / qty
}

// TradeScope groups the items of one trade
type TradeScope struct {
	Trade   types.Trade `json:"trade"`
	Systems []Item      `json:"systems"`
}

// Total sums the items of the trade
func (ts TradeScope) Total() float64 {
	total := 0.0
	for _, it := range ts.Systems {
		total += it.TotalCost
	}
	return total
}

// Scaled returns a copy with every item scaled by f
func (ts TradeScope) Scaled(f float64) TradeScope {
	out := TradeScope{Trade: ts.Trade, Systems: make([]Item, len(ts.Systems))}
	for i, it := range ts.Systems {
		out.Systems[i] = it.Scaled(f)
	}
	return out
}

// ScaleAll scales every trade of a scope list
func ScaleAll(scopes []TradeScope, f float64) []TradeScope {
	out := make([]TradeScope, len(scopes))
	for i, ts := range scopes {
		out[i] = ts.Scaled(f)
	}
	return out
}

// Context carries the caller-supplied quantities and flags of one calculation
type Context struct {
	SquareFootage float64
	OfficeShare   *float64
	OfficeSF      *float64
	DockDoors     *float64
	MezzanineSF   *float64
	IncludeDocks  *bool
	// HasBlastFreezer switches the cold storage refrigeration split
	HasBlastFreezer bool
	// FlexFinishRates are the office and warehouse finish rates after the cost chain
	FlexFinishRates map[string]float64
}

// OfficeArea returns the office floor area when the caller supplied one.
// Explicit square footage wins over a share. A share of at most 1 is a
// fraction; above 1 it is a percentage, so 1.5 means 1.5%.
func (c Context) OfficeArea() (float64, bool) {
	if c.OfficeSF != nil {
		return clampArea(*c.OfficeSF, c.SquareFootage), true
	}
	if c.OfficeShare != nil {
		share := *c.OfficeShare
		if share > 1 {
			share /= 100
		}
		return clampArea(share*c.SquareFootage, c.SquareFootage), true
	}
	return 0, false
}
