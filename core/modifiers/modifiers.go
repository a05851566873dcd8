// Package modifiers resolves the per-calculation factor bundle from the
// building configuration, the finish level and the project location.
package modifiers

import (
	"building-cost/core/catalog"
	"building-cost/core/location"
	"building-cost/core/trace"
	"building-cost/core/types"
)

// FallbackMarginPct is used when neither subtype nor type declares a margin
const FallbackMarginPct = 0.10

// Margin sources
const (
	MarginFromSubtype      = "subtype"
	MarginFromBuildingType = "building_type"
	MarginFromFallback     = "fallback"
)

// Modifiers is the derived factor bundle of one calculation
type Modifiers struct {
	CostFactor          float64             `json:"cost_factor"`
	RevenueFactor       float64             `json:"revenue_factor"`
	MarginPct           float64             `json:"margin_pct"`
	MarginSource        string              `json:"margin_source"`
	FinishCostFactor    float64             `json:"finish_cost_factor"`
	MarketFactor        float64             `json:"market_factor"`
	RegionalMultiplier  float64             `json:"regional_multiplier"`
	FinishLevel         types.FinishLevel   `json:"finish_level"`
	FinishLevelProvided string              `json:"finish_level_input,omitempty"`
	Location            location.Resolution `json:"regional"`
}

// RegionalComponent divides the finish factor back out of the cost factor
func (m Modifiers) RegionalComponent() float64 {
	if m.FinishCostFactor == 0 {
		return m.CostFactor
	}
	return m.CostFactor / m.FinishCostFactor
}

// LocationResolver maps location text to regional factors
type LocationResolver interface {
	Resolve(text string) location.Resolution
}

// Request names what to resolve
type Request struct {
	BuildingType types.BuildingType
	Subtype      string
	FinishLevel  string
	Location     string
}

// Resolver composes modifiers in a fixed order
type Resolver struct {
	store     *catalog.Store
	locations LocationResolver
}

// New creates a modifier resolver
func New(store *catalog.Store, locations LocationResolver) *Resolver {
	return &Resolver{store: store, locations: locations}
}

// Resolve looks up the building configuration and resolves its modifiers.
// An unknown type or subtype is a ConfigNotFound error.
func (r *Resolver) Resolve(req Request, log *trace.Log) (Modifiers, error) {
	cfg, err := r.store.Config(req.BuildingType, req.Subtype)
	if err != nil {
		return Modifiers{}, err
	}
	return r.ForConfig(cfg, req.FinishLevel, req.Location, log), nil
}

// ForConfig resolves modifiers for an already looked-up configuration.
// Order: regional factor, finish factor, margin, then composition.
func (r *Resolver) ForConfig(cfg *catalog.BuildingConfig, finishInput, locationText string, log *trace.Log) Modifiers {
	m := Modifiers{FinishLevelProvided: finishInput}

	// 1. Regional factor, city override when present
	m.Location = r.locations.Resolve(locationText)
	m.RegionalMultiplier = m.Location.CostMultiplier
	m.MarketFactor = m.Location.MarketFactor
	switch {
	case m.Location.Matched:
		log.Step("regional_multiplier", "resolved regional factor", map[string]interface{}{
			"location":      m.Location.Display(),
			"source":        string(m.Location.Source),
			"multiplier":    m.RegionalMultiplier,
			"market_factor": m.MarketFactor,
		})
	case locationText == "":
		log.Info(trace.CodeUnresolvedLocation, "regional_multiplier", "no location given, using national average", map[string]interface{}{
			"multiplier": m.RegionalMultiplier,
		})
	default:
		log.Warn(trace.CodeUnresolvedLocation, "regional_multiplier", "location not recognised, using national average", map[string]interface{}{
			"location":   locationText,
			"multiplier": m.RegionalMultiplier,
		})
	}

	// 2. Finish factor from the subtype table, else the global table
	level, ok := types.ParseFinishLevel(finishInput)
	if !ok && finishInput != "" {
		log.Warn(trace.CodeUnknownFinishLevel, "finish_level", "unknown finish level, using standard", map[string]interface{}{
			"requested": finishInput,
		})
	}
	m.FinishLevel = level
	m.FinishCostFactor, m.RevenueFactor = r.finishFactors(cfg, level)
	log.Step("finish_level", "resolved finish factor", map[string]interface{}{
		"finish_level":   string(level),
		"cost_factor":    m.FinishCostFactor,
		"revenue_factor": m.RevenueFactor,
	})

	// 3. Margin: subtype, else building type, else fallback
	m.MarginPct, m.MarginSource = r.margin(cfg)
	log.Step("margin", "resolved operating margin", map[string]interface{}{
		"margin_pct": m.MarginPct,
		"source":     m.MarginSource,
	})

	// 4. Composition
	m.CostFactor = m.RegionalMultiplier * m.FinishCostFactor
	log.Step("cost_factor", "composed cost factor", map[string]interface{}{
		"regional_multiplier": m.RegionalMultiplier,
		"finish_cost_factor":  m.FinishCostFactor,
		"cost_factor":         m.CostFactor,
	})
	return m
}

func (r *Resolver) finishFactors(cfg *catalog.BuildingConfig, level types.FinishLevel) (cost, revenue float64) {
	cost, revenue = 1.0, 1.0
	global, hasGlobal := r.store.FinishLevel(level)
	if hasGlobal {
		cost, revenue = global.CostFactor, global.RevenueFactor
	}
	if f, ok := cfg.FinishCostFactors[level]; ok {
		cost = f
	}
	return cost, revenue
}

func (r *Resolver) margin(cfg *catalog.BuildingConfig) (float64, string) {
	if cfg.MarginPct != nil {
		return *cfg.MarginPct, MarginFromSubtype
	}
	if d, ok := r.store.TypeDefaults(cfg.Type); ok {
		return d.MarginPct, MarginFromBuildingType
	}
	return FallbackMarginPct, MarginFromFallback
}
