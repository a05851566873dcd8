package trade

import (
	"building-cost/core/trace"
	"building-cost/core/types"
)

// Finish rate keys of a flex subtype
const (
	FlexOfficeRate    = "office"
	FlexWarehouseRate = "warehouse"
)

// FlexReconciliation records the bottom-up finishes recomputation of a flex building
type FlexReconciliation struct {
	OfficeSF          float64 `json:"office_sf"`
	WarehouseSF       float64 `json:"warehouse_sf"`
	OfficeRate        float64 `json:"office_finish_rate"`
	WarehouseRate     float64 `json:"warehouse_finish_rate"`
	ChainMultiplier   float64 `json:"chain_multiplier"`
	PercentFinishes   float64 `json:"percent_finishes"`
	BottomUpFinishes  float64 `json:"bottom_up_finishes"`
	Delta             float64 `json:"delta"`
	ConstructionAfter float64 `json:"construction_cost_after"`
}

// ReconcileFlex recomputes finishes from office and warehouse finish rates.
// Rates are at base cost; chainMultiplier carries them through the same
// class, regional and finish factors as the base cost. The returned breakdown
// replaces finishes with the bottom-up figure; the caller adds Delta to the
// construction cost so the breakdown still sums to it.
func ReconcileFlex(b Breakdown, rates map[string]float64, squareFootage, officeSF, chainMultiplier, constructionCost float64, log *trace.Log) (Breakdown, FlexReconciliation) {
	if officeSF < 0 {
		officeSF = 0
	}
	if officeSF > squareFootage {
		officeSF = squareFootage
	}
	r := FlexReconciliation{
		OfficeSF:        officeSF,
		WarehouseSF:     squareFootage - officeSF,
		OfficeRate:      rates[FlexOfficeRate],
		WarehouseRate:   rates[FlexWarehouseRate],
		ChainMultiplier: chainMultiplier,
		PercentFinishes: b[types.TradeFinishes],
	}
	r.BottomUpFinishes = (r.OfficeSF*r.OfficeRate + r.WarehouseSF*r.WarehouseRate) * chainMultiplier
	r.Delta = r.BottomUpFinishes - r.PercentFinishes
	r.ConstructionAfter = constructionCost + r.Delta

	out := make(Breakdown, len(b))
	for t, v := range b {
		out[t] = v
	}
	out[types.TradeFinishes] = r.BottomUpFinishes

	log.Adjust(trace.CodeFlexReconciled, "flex_reconciliation", "finishes recomputed from office and warehouse areas", map[string]interface{}{
		"office_sf":          r.OfficeSF,
		"warehouse_sf":       r.WarehouseSF,
		"percent_finishes":   r.PercentFinishes,
		"bottom_up_finishes": r.BottomUpFinishes,
		"delta":              r.Delta,
		"construction_cost":  r.ConstructionAfter,
	})
	return out, r
}
