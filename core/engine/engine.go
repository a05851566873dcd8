// Package engine - Unified cost calculation engine
// One request in, one fully traced result out. The engine holds only
// read-only configuration; every calculation owns its own trace log.
package engine

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"building-cost/core/catalog"
	"building-cost/core/confidence"
	"building-cost/core/determinism"
	"building-cost/core/features"
	"building-cost/core/location"
	"building-cost/core/mixeduse"
	"building-cost/core/modifiers"
	"building-cost/core/revenue"
	"building-cost/core/scope"
	"building-cost/core/trace"
	"building-cost/core/trade"
	"building-cost/core/types"
	"building-cost/internal/errors"
	"building-cost/internal/logging"
)

// Office buildings taller than typical pay 1% per extra floor, capped at 20%
const (
	heightPremiumPerFloor = 0.01
	maxHeightPremium      = 0.20
)

// Config contains engine configuration
type Config struct {
	// BatchWorkers bounds concurrent scenario calculations
	BatchWorkers int

	// HoldYears is the DCF horizon
	HoldYears int
}

// DefaultConfig returns default engine config
func DefaultConfig() Config {
	return Config{BatchWorkers: 4, HoldYears: 10}
}

// Engine is the calculation engine
type Engine struct {
	store     *catalog.Store
	modifiers *modifiers.Resolver
	scope     *scope.Builder
	analyzer  *revenue.Analyzer
	config    Config
	logger    *zap.Logger
	now       func() time.Time
}

// New creates an engine over a catalog and a location resolver.
// Every scope profile is compiled up front so a bad rule fails here.
func New(store *catalog.Store, locations modifiers.LocationResolver, cfg Config) (*Engine, error) {
	if store == nil || locations == nil {
		return nil, errors.Internal("engine requires a catalog and a location resolver", nil)
	}
	if err := scope.ValidateProfiles(store); err != nil {
		return nil, err
	}
	if cfg.BatchWorkers <= 0 {
		cfg.BatchWorkers = DefaultConfig().BatchWorkers
	}
	return &Engine{
		store:     store,
		modifiers: modifiers.New(store, locations),
		scope:     scope.NewBuilder(store),
		analyzer:  revenue.NewAnalyzer(store, cfg.HoldYears),
		config:    cfg,
		logger:    logging.Named("engine"),
		now:       time.Now,
	}, nil
}

// NewDefault creates an engine over the embedded catalog and regional index
func NewDefault(cfg Config) (*Engine, error) {
	store, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	locs, err := location.NewDefaultResolver(512)
	if err != nil {
		return nil, err
	}
	return New(store, locs, cfg)
}

// Store returns the catalog the engine reads
func (e *Engine) Store() *catalog.Store {
	return e.store
}

// CalculateProject runs one calculation. Input and configuration errors
// abort; every other degradation completes and is recorded in the trace.
func (e *Engine) CalculateProject(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := e.now()
	log := trace.New()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	inputHash, err := determinism.HashJSON(req)
	if err != nil {
		return nil, errors.Internal("hash request", err)
	}

	// Configuration
	cfg, err := e.store.Config(req.BuildingType, req.Subtype)
	if err != nil {
		return nil, err
	}
	defaults, _ := e.store.TypeDefaults(cfg.Type)
	sf := req.SquareFootage
	log.Step("config", "resolved building configuration", map[string]interface{}{
		"building_type":  string(cfg.Type),
		"subtype":        cfg.Subtype,
		"square_footage": sf,
	})

	ownership, terms, err := resolveOwnership(cfg, req.OwnershipType, log)
	if err != nil {
		return nil, err
	}
	class := resolveProjectClass(req.ProjectClass, defaults, log)

	floors := req.Floors
	if floors == 0 {
		floors = cfg.TypicalFloors
	}

	mods := e.modifiers.ForConfig(cfg, req.FinishLevel, req.Location, log)

	split := mixeduse.Neutral()
	var mixed *mixeduse.Split
	if cfg.Type == types.BuildingMixedUse {
		split = mixeduse.Resolve(e.store, cfg, req.MixedUseSplit, req.MixedUseSplitHint, log)
		mixed = &split
	}

	// Cost chain
	cc := ConstructionCosts{
		BaseCostPerSF:          cfg.BaseCostPerSF,
		HeightFactor:           heightFactor(cfg, floors),
		MixedUseCostMultiplier: split.CostMultiplier,
		ProjectClassMultiplier: e.store.ProjectClassMultiplier(class, cfg.Type),
		RegionalMultiplier:     mods.RegionalComponent(),
		FinishCostFactor:       mods.FinishCostFactor,
	}
	cc.AdjustedBaseCostPerSF = cc.BaseCostPerSF * cc.HeightFactor * cc.MixedUseCostMultiplier
	cc.CostAfterComplexity = cc.AdjustedBaseCostPerSF * cc.ProjectClassMultiplier
	cc.CostAfterRegional = cc.CostAfterComplexity * cc.RegionalMultiplier
	cc.FinalCostPerSF = cc.CostAfterRegional * cc.FinishCostFactor
	cc.ConstructionTotal = cc.FinalCostPerSF * sf
	log.Step("cost_chain", "applied cost chain", map[string]interface{}{
		"base_cost_per_sf":          cc.BaseCostPerSF,
		"height_factor":             cc.HeightFactor,
		"mixed_use_cost_multiplier": cc.MixedUseCostMultiplier,
		"adjusted_base_cost_per_sf": cc.AdjustedBaseCostPerSF,
		"project_class":             string(class),
		"class_multiplier":          cc.ProjectClassMultiplier,
		"cost_after_complexity":     cc.CostAfterComplexity,
		"regional_multiplier":       cc.RegionalMultiplier,
		"cost_after_regional":       cc.CostAfterRegional,
		"finish_cost_factor":        cc.FinishCostFactor,
		"final_cost_per_sf":         cc.FinalCostPerSF,
		"construction_total":        cc.ConstructionTotal,
	})

	cc.EquipmentTotal = cfg.EquipmentCostPerSF * mods.FinishCostFactor * sf
	feats := features.Resolve(cfg, req.SpecialFeatures, sf, log)
	cc.SpecialFeaturesTotal = feats.Total

	// Trades, with the flex finishes recomputed bottom up when an office area is known
	breakdown := trade.Calculate(cc.ConstructionTotal, cfg.Trades, log)
	scopeCtx := scope.Context{
		SquareFootage:   sf,
		OfficeShare:     req.OfficeShare,
		OfficeSF:        req.OfficeSF,
		DockDoors:       req.DockDoors,
		MezzanineSF:     req.MezzanineSF,
		IncludeDocks:    req.IncludeDocks,
		HasBlastFreezer: req.HasBlastFreezer,
	}
	chain := 1.0
	if cfg.BaseCostPerSF > 0 {
		chain = cc.FinalCostPerSF / cfg.BaseCostPerSF
	}
	if len(cfg.FlexFinishRates) > 0 {
		scopeCtx.FlexFinishRates = scaleRates(cfg.FlexFinishRates, chain)
		if officeSF, ok := scopeCtx.OfficeArea(); ok {
			var rec trade.FlexReconciliation
			breakdown, rec = trade.ReconcileFlex(breakdown, cfg.FlexFinishRates, sf, officeSF, chain, cc.ConstructionTotal, log)
			cc.ConstructionTotal = rec.ConstructionAfter
			cc.FinalCostPerSF = cc.ConstructionTotal / sf
			cc.FlexReconciliation = &rec
		}
	}

	scopes, err := e.scope.Build(cfg, breakdown, scopeCtx, log)
	if err != nil {
		return nil, err
	}

	// Soft costs
	soft := make(map[string]float64, len(cfg.SoftCosts)+1)
	for _, k := range determinism.SortedKeys(cfg.SoftCosts) {
		soft[k] = cfg.SoftCosts[k] * cc.ConstructionTotal
	}
	hard := cc.ConstructionTotal + cc.EquipmentTotal + cc.SpecialFeaturesTotal
	if defaults != nil && defaults.EquipmentAsSoftCost && cc.EquipmentTotal > 0 {
		soft[softMedicalEquipment] = cc.EquipmentTotal
		hard -= cc.EquipmentTotal
		cc.EquipmentReclassified = true
		log.Adjust(trace.CodeEquipmentReclassified, "soft_costs", "equipment carried as a soft cost", map[string]interface{}{
			"equipment_total": cc.EquipmentTotal,
		})
	}
	log.Step("soft_costs", "computed soft costs", map[string]interface{}{
		"soft_costs": scaleRates(soft, 1),
	})

	totals := sumTotals(hard, soft, sf)
	log.Step("totals", "computed project totals", map[string]interface{}{
		"hard_costs":         totals.HardCosts,
		"soft_costs":         totals.SoftCosts,
		"total_project_cost": totals.TotalProjectCost,
		"cost_per_sf":        totals.CostPerSF,
	})

	// Clamp scales every cost component by one factor so the parts still sum
	if clamp := clampFor(cfg.CostClamp, totals); clamp != nil {
		f := clamp.Factor
		cc.FinalCostPerSF *= f
		cc.ConstructionTotal *= f
		cc.EquipmentTotal *= f
		cc.SpecialFeaturesTotal *= f
		feats = feats.Scale(f)
		breakdown = breakdown.Scale(f)
		scopes = scope.ScaleAll(scopes, f)
		soft = scaleRates(soft, f)
		hard *= f
		totals = sumTotals(hard, soft, sf)
		cc.Clamp = clamp
		log.Adjust(trace.CodeCostClamped, "cost_clamp", "cost per SF clamped to the configured band", map[string]interface{}{
			"bound":                 clamp.Bound,
			"unclamped_cost_per_sf": clamp.UnclampedCostPerSF,
			"cost_per_sf":           totals.CostPerSF,
			"factor":                f,
		})
	}

	analysis, err := e.analyzer.Analyze(revenue.AnalysisInput{
		Config:                    cfg,
		Ownership:                 ownership,
		Terms:                     terms,
		SquareFootage:             sf,
		TotalProjectCost:          totals.TotalProjectCost,
		Modifiers:                 mods,
		MixedUseRevenueMultiplier: split.RevenueMultiplier,
		Overrides:                 req.Revenue,
	}, log)
	if err != nil {
		return nil, err
	}

	result := &Result{
		CalculationID: uuid.New().String(),
		InputHash:     inputHash.Hex(),
		ProjectInfo: ProjectInfo{
			BuildingType:          cfg.Type,
			Subtype:               cfg.Subtype,
			DisplayName:           cfg.Name(),
			SquareFootage:         sf,
			Location:              mods.Location.Display(),
			ProjectClass:          class,
			RequestedProjectClass: req.ProjectClass,
			Floors:                floors,
			OwnershipType:         ownership,
			FinishLevel:           mods.FinishLevel,
		},
		Modifiers:         mods,
		Regional:          mods.Location,
		ConstructionCosts: cc,
		MixedUse:          mixed,
		SpecialFeatures:   feats,
		TradeBreakdown:    breakdown,
		ScopeItems:        scopes,
		ScopeConfidence:   scopeConfidence(scopes),
		SoftCosts:         soft,
		Totals:            totals,
		OwnershipAnalysis: analysis,
		Trace:             log.Entries(),
		Timestamp:         start.UTC(),
	}
	result.Duration = e.now().Sub(start)

	e.logger.Debug("calculation complete",
		logging.CalculationID(result.CalculationID),
		logging.Building(string(cfg.Type), cfg.Subtype),
		logging.Dollars("total_project_cost", totals.TotalProjectCost),
		zap.Int("warnings", len(log.Warnings())),
		zap.Duration("duration", result.Duration))

	return result, nil
}

const softMedicalEquipment = "medical_equipment"

// resolveOwnership falls back to the first configured ownership type
func resolveOwnership(cfg *catalog.BuildingConfig, requested types.OwnershipType, log *trace.Log) (types.OwnershipType, catalog.FinancingTerms, error) {
	if len(cfg.Ownership) == 0 {
		return "", catalog.FinancingTerms{}, errors.Newf(errors.TypeConfig, "building %s/%s has no ownership types", cfg.Type, cfg.Subtype)
	}
	requested = types.OwnershipType(types.NormalizeKey(string(requested)))
	if terms, ok := cfg.Terms(requested); ok {
		return requested, terms, nil
	}

	fallback := cfg.Ownership[0]
	if requested != "" {
		available := make([]string, 0, len(cfg.Ownership))
		for _, o := range cfg.Ownership {
			available = append(available, string(o.Type))
		}
		log.Warn(trace.CodeInvalidOwnershipType, "ownership", "ownership type not available, using default", map[string]interface{}{
			"requested": string(requested),
			"used":      string(fallback.Type),
			"available": available,
		})
	}
	return fallback.Type, fallback.Terms, nil
}

// resolveProjectClass parses the class and moves it to a compatible one.
// Unparseable and incompatible classes never fail the calculation.
func resolveProjectClass(raw string, defaults *catalog.TypeDefaults, log *trace.Log) types.ProjectClass {
	class, err := types.ParseProjectClass(raw)
	if err != nil {
		log.Warn(trace.CodeInvalidProjectClass, "project_class", "unknown project class, using ground up", map[string]interface{}{
			"requested": raw,
			"used":      string(types.ClassGroundUp),
		})
		class = types.ClassGroundUp
	}
	if defaults == nil || defaults.AllowsClass(class) {
		return class
	}

	adjusted := defaults.ProjectClasses[0]
	if defaults.AllowsClass(types.ClassGroundUp) {
		adjusted = types.ClassGroundUp
	}
	log.Adjust(trace.CodeInvalidProjectClass, "project_class", "project class not valid for building type", map[string]interface{}{
		"before": string(class),
		"after":  string(adjusted),
	})
	return adjusted
}

func heightFactor(cfg *catalog.BuildingConfig, floors int) float64 {
	if cfg.Type != types.BuildingOffice || floors <= cfg.TypicalFloors {
		return 1.0
	}
	return 1 + math.Min(maxHeightPremium, heightPremiumPerFloor*float64(floors-cfg.TypicalFloors))
}

func scaleRates(rates map[string]float64, f float64) map[string]float64 {
	out := make(map[string]float64, len(rates))
	for k, v := range rates {
		out[k] = v * f
	}
	return out
}

func sumTotals(hard float64, soft map[string]float64, sf float64) Totals {
	t := Totals{HardCosts: hard}
	for _, k := range determinism.SortedKeys(soft) {
		t.SoftCosts += soft[k]
	}
	t.TotalProjectCost = t.HardCosts + t.SoftCosts
	t.CostPerSF = t.TotalProjectCost / sf
	return t
}

// scopeConfidence rolls item confidence up by dollars
func scopeConfidence(scopes []scope.TradeScope) confidence.Rollup {
	var items []confidence.Item
	for _, ts := range scopes {
		for _, it := range ts.Systems {
			items = append(items, confidence.Item{
				ID:     string(ts.Trade) + "/" + it.Key,
				Score:  it.ConfidenceScore,
				Weight: it.TotalCost,
			})
		}
	}
	return confidence.NewPropagator().Propagate(items)
}

func clampFor(c *catalog.CostClamp, t Totals) *ClampInfo {
	if c == nil || t.CostPerSF <= 0 {
		return nil
	}
	info := &ClampInfo{Min: c.Min, Max: c.Max, UnclampedCostPerSF: t.CostPerSF, UnclampedTotal: t.TotalProjectCost}
	switch {
	case c.Min > 0 && t.CostPerSF < c.Min:
		info.Bound = "min"
		info.Factor = c.Min / t.CostPerSF
	case c.Max > 0 && t.CostPerSF > c.Max:
		info.Bound = "max"
		info.Factor = c.Max / t.CostPerSF
	default:
		return nil
	}
	return info
}
