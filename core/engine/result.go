package engine

import (
	"time"

	"building-cost/core/confidence"
	"building-cost/core/features"
	"building-cost/core/location"
	"building-cost/core/mixeduse"
	"building-cost/core/modifiers"
	"building-cost/core/revenue"
	"building-cost/core/scope"
	"building-cost/core/trace"
	"building-cost/core/trade"
	"building-cost/core/types"
)

// ProjectInfo echoes the resolved inputs of a calculation
type ProjectInfo struct {
	BuildingType          types.BuildingType  `json:"building_type"`
	Subtype               string              `json:"subtype"`
	DisplayName           string              `json:"display_name"`
	SquareFootage         float64             `json:"square_footage"`
	Location              string              `json:"location"`
	ProjectClass          types.ProjectClass  `json:"project_class"`
	RequestedProjectClass string              `json:"requested_project_class,omitempty"`
	Floors                int                 `json:"floors"`
	OwnershipType         types.OwnershipType `json:"ownership_type"`
	FinishLevel           types.FinishLevel   `json:"finish_level"`
}

// ConstructionCosts is the cost chain and its products.
// FinalCostPerSF times square footage equals ConstructionTotal.
type ConstructionCosts struct {
	BaseCostPerSF          float64 `json:"base_cost_per_sf"`
	HeightFactor           float64 `json:"height_factor"`
	MixedUseCostMultiplier float64 `json:"mixed_use_cost_multiplier"`
	AdjustedBaseCostPerSF  float64 `json:"adjusted_base_cost_per_sf"`
	ProjectClassMultiplier float64 `json:"class_multiplier"`
	CostAfterComplexity    float64 `json:"cost_after_complexity"`
	RegionalMultiplier     float64 `json:"regional_multiplier"`
	CostAfterRegional      float64 `json:"cost_after_regional"`
	FinishCostFactor       float64 `json:"finish_cost_factor"`
	FinalCostPerSF         float64 `json:"final_cost_per_sf"`
	ConstructionTotal      float64 `json:"construction_total"`
	EquipmentTotal         float64 `json:"equipment_total"`
	SpecialFeaturesTotal   float64 `json:"special_features_total"`

	// EquipmentReclassified is set when equipment moved to soft costs
	EquipmentReclassified bool                      `json:"equipment_reclassified,omitempty"`
	FlexReconciliation    *trade.FlexReconciliation `json:"flex_reconciliation,omitempty"`
	Clamp                 *ClampInfo                `json:"cost_clamp,omitempty"`
}

// ClampInfo records a cost-per-SF clamp
type ClampInfo struct {
	Min                float64 `json:"min"`
	Max                float64 `json:"max,omitempty"`
	Bound              string  `json:"bound"`
	UnclampedCostPerSF float64 `json:"unclamped_cost_per_sf"`
	UnclampedTotal     float64 `json:"unclamped_total"`
	Factor             float64 `json:"factor"`
}

// Totals are the project totals. HardCosts plus SoftCosts is TotalProjectCost.
type Totals struct {
	HardCosts        float64 `json:"hard_costs"`
	SoftCosts        float64 `json:"soft_costs"`
	TotalProjectCost float64 `json:"total_project_cost"`
	CostPerSF        float64 `json:"cost_per_sf"`
}

// Result is the full output of one calculation
type Result struct {
	CalculationID     string                     `json:"calculation_id"`
	InputHash         string                     `json:"input_hash"`
	ProjectInfo       ProjectInfo                `json:"project_info"`
	Modifiers         modifiers.Modifiers        `json:"modifiers"`
	Regional          location.Resolution        `json:"regional"`
	ConstructionCosts ConstructionCosts          `json:"construction_costs"`
	MixedUse          *mixeduse.Split            `json:"mixed_use,omitempty"`
	SpecialFeatures   features.Result            `json:"special_features"`
	TradeBreakdown    trade.Breakdown            `json:"trade_breakdown"`
	ScopeItems        []scope.TradeScope         `json:"scope_items"`
	ScopeConfidence   confidence.Rollup          `json:"scope_confidence"`
	SoftCosts         map[string]float64         `json:"soft_costs"`
	Totals            Totals                     `json:"totals"`
	OwnershipAnalysis *revenue.OwnershipAnalysis `json:"ownership_analysis,omitempty"`
	Trace             []trace.Entry              `json:"calculation_trace"`
	Timestamp         time.Time                  `json:"timestamp"`
	Duration          time.Duration              `json:"duration_ns"`
}

// Warnings returns the warning entries of the trace
func (r *Result) Warnings() []trace.Entry {
	var out []trace.Entry
	for _, e := range r.Trace {
		if e.Kind == trace.KindWarning {
			out = append(out, e)
		}
	}
	return out
}
