package revenue

import (
	"math"

	"building-cost/core/catalog"
	"building-cost/core/modifiers"
	"building-cost/core/types"
)

// Margin sources beyond those of the modifier resolver
const (
	MarginFromFinishLevel     = "finish_level"
	MarginFromOperatingMargin = "operating_margin"
	MarginFromExpenseRatios   = "expense_ratios"
	MarginFromOfficeProForma  = "office_pro_forma"
)

// Derived-margin bounds and bespoke floors
const (
	minDerivedMargin = 0.05
	maxDerivedMargin = 0.65
	healthcareFloor  = 0.03
	hospitalityFloor = 0.0
)

// Margin is the resolved operating margin with its provenance
type Margin struct {
	Pct         float64            `json:"pct"`
	Source      string             `json:"source"`
	BaseMargin  float64            `json:"base_margin"`
	Adjustments map[string]float64 `json:"adjustments,omitempty"`
}

// ResolveMargin picks the operating margin: finish-level override, then the
// subtype's operating margin or margin_pct, then 1 - expense ratios clamped
// to [0.05, 0.65], then the type default. Healthcare, hospitality and
// office each layer their own derivation on top.
func ResolveMargin(cfg *catalog.BuildingConfig, mods modifiers.Modifiers, res Result) Margin {
	f := cfg.Financial

	if m, ok := cfg.FinishMargins[mods.FinishLevel]; ok {
		return Margin{Pct: m, BaseMargin: m, Source: MarginFromFinishLevel}
	}
	if res.ProForma != nil {
		m := res.ProForma.Margin()
		return Margin{Pct: m, BaseMargin: m, Source: MarginFromOfficeProForma}
	}

	var m Margin
	switch {
	case f.OperatingMargin != nil:
		m = Margin{Pct: *f.OperatingMargin, Source: MarginFromOperatingMargin}
	case mods.MarginSource == modifiers.MarginFromSubtype:
		m = Margin{Pct: mods.MarginPct, Source: modifiers.MarginFromSubtype}
	case len(f.ExpenseRatios) > 0:
		derived := math.Max(minDerivedMargin, math.Min(maxDerivedMargin, 1-f.TotalExpenseRatio()))
		m = Margin{Pct: derived, Source: MarginFromExpenseRatios}
	default:
		m = Margin{Pct: mods.MarginPct, Source: mods.MarginSource}
	}
	m.BaseMargin = m.Pct

	switch cfg.Type {
	case types.BuildingHealthcare:
		if f.UncompensatedCareRatio > 0 {
			m.Pct = math.Max(healthcareFloor, m.Pct-f.UncompensatedCareRatio)
			m.Adjustments = map[string]float64{"uncompensated_care": -f.UncompensatedCareRatio}
		}
	case types.BuildingHospitality:
		fees := f.ManagementFeeRatio + f.FFEReserveRatio
		if fees > 0 {
			m.Pct = math.Max(hospitalityFloor, m.Pct-fees)
			m.Adjustments = map[string]float64{
				"management_fee": -f.ManagementFeeRatio,
				"ffe_reserve":    -f.FFEReserveRatio,
			}
		}
	}
	return m
}
