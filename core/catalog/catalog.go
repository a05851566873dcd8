// Package catalog - Authoritative building configuration store
// Building types, subtypes and every numeric parameter the engine reads.
// The store is loaded once and never mutated during a calculation.
package catalog

import (
	"building-cost/core/determinism"
	"building-cost/core/types"
	"building-cost/internal/errors"
)

// FinancingTerms are the capital-structure assumptions for one ownership type.
// Ratios need not sum to 1.0; the remainder is implicit.
type FinancingTerms struct {
	DebtRatio         float64 `json:"debt_ratio"`
	EquityRatio       float64 `json:"equity_ratio"`
	PhilanthropyRatio float64 `json:"philanthropy_ratio"`
	GrantsRatio       float64 `json:"grants_ratio"`
	DebtRate          float64 `json:"debt_rate"`
	TargetDSCR        float64 `json:"target_dscr"`
	TargetROI         float64 `json:"target_roi"`
	NOIPercentage     float64 `json:"noi_percentage"`
}

// Ownership binds financing terms to an ownership type
type Ownership struct {
	Type  types.OwnershipType `json:"type"`
	Terms FinancingTerms      `json:"terms"`
}

// CostClamp bounds the final cost per SF. A zero Max means no upper bound.
type CostClamp struct {
	Min float64 `json:"min"`
	Max float64 `json:"max,omitempty"`
}

// FinancialMetrics holds the revenue-model parameters of a subtype.
// Which fields matter depends on the building type's revenue model.
type FinancialMetrics struct {
	PrimaryUnit     string             `json:"primary_unit,omitempty"`
	UnitsPerSF      float64            `json:"units_per_sf,omitempty"`
	RevenuePerUnit  float64            `json:"revenue_per_unit,omitempty"`
	RevenuePerSF    float64            `json:"revenue_per_sf,omitempty"`
	OccupancyRate   float64            `json:"occupancy_rate,omitempty"`
	MarketRateType  string             `json:"market_rate_type,omitempty"`
	OperatingMargin *float64           `json:"operating_margin,omitempty"`
	ExpenseRatios   map[string]float64 `json:"expense_ratios,omitempty"`

	// Healthcare throughput
	VisitsPerDay           float64 `json:"visits_per_day,omitempty"`
	OperatingDays          float64 `json:"operating_days,omitempty"`
	ReimbursementPerVisit  float64 `json:"reimbursement_per_visit,omitempty"`
	UncompensatedCareRatio float64 `json:"uncompensated_care_ratio,omitempty"`

	// Multifamily
	MonthlyRent float64 `json:"monthly_rent,omitempty"`

	// Hospitality
	ADR                float64 `json:"adr,omitempty"`
	ManagementFeeRatio float64 `json:"management_fee_ratio,omitempty"`
	FFEReserveRatio    float64 `json:"ffe_reserve_ratio,omitempty"`

	// Office pro forma
	BaseRentPerSF        float64 `json:"base_rent_per_sf,omitempty"`
	StabilizedOccupancy  float64 `json:"stabilized_occupancy,omitempty"`
	VacancyCreditLoss    float64 `json:"vacancy_credit_loss,omitempty"`
	OpexPerSF            float64 `json:"opex_per_sf,omitempty"`
	TIPerSF              float64 `json:"ti_per_sf,omitempty"`
	LeasingCommissionPct float64 `json:"leasing_commission_pct,omitempty"`
	LeaseTermYears       float64 `json:"lease_term_years,omitempty"`
}

// TotalExpenseRatio sums the configured expense ratios
func (f FinancialMetrics) TotalExpenseRatio() float64 {
	total := 0.0
	for _, k := range determinism.SortedKeys(f.ExpenseRatios) {
		total += f.ExpenseRatios[k]
	}
	return total
}

// TypeDefaults are the building-type level parameters
type TypeDefaults struct {
	Type                types.BuildingType   `json:"type"`
	DefaultSubtype      string               `json:"default_subtype"`
	MarginPct           float64              `json:"margin_pct"`
	TIMultiplier        float64              `json:"ti_multiplier"`
	ProjectClasses      []types.ProjectClass `json:"project_classes"`
	EquipmentAsSoftCost bool                 `json:"equipment_as_soft_cost"`
}

// AllowsClass reports whether the project class is compatible with the type.
// An empty class list allows every class.
func (d *TypeDefaults) AllowsClass(c types.ProjectClass) bool {
	if len(d.ProjectClasses) == 0 {
		return true
	}
	for _, pc := range d.ProjectClasses {
		if pc == c {
			return true
		}
	}
	return false
}

// BuildingConfig is the full parameter set for one (type, subtype) pair.
// Values returned by the Store are shared and must not be modified.
type BuildingConfig struct {
	Type               types.BuildingType            `json:"building_type"`
	Subtype            string                        `json:"subtype"`
	DisplayName        string                        `json:"display_name"`
	BaseCostPerSF      float64                       `json:"base_cost_per_sf"`
	EquipmentCostPerSF float64                       `json:"equipment_cost_per_sf"`
	TypicalFloors      int                           `json:"typical_floors"`
	Trades             map[types.Trade]float64       `json:"trades"`
	SoftCosts          map[string]float64            `json:"soft_costs"`
	SpecialFeatures    map[string]float64            `json:"special_features,omitempty"`
	FeatureAliases     map[string]string             `json:"feature_aliases,omitempty"`
	MarginPct          *float64                      `json:"margin_pct,omitempty"`
	FinishCostFactors  map[types.FinishLevel]float64 `json:"finish_cost_factors,omitempty"`
	FinishMargins      map[types.FinishLevel]float64 `json:"finish_margins,omitempty"`
	ScopeItemsProfile  string                        `json:"scope_items_profile,omitempty"`
	ScopeGenerator     string                        `json:"scope_profile,omitempty"`
	TileProfile        string                        `json:"tile_profile,omitempty"`
	MinItemsPerTrade   int                           `json:"min_items_per_trade,omitempty"`
	DetailLabels       map[types.Trade][]string      `json:"detail_labels,omitempty"`
	MixedUseDefault    map[string]float64            `json:"mixed_use_default,omitempty"`
	FlexFinishRates    map[string]float64            `json:"flex_finish_rates,omitempty"`
	CostClamp          *CostClamp                    `json:"cost_clamp,omitempty"`
	Financial          FinancialMetrics              `json:"financial_metrics"`
	Ownership          []Ownership                   `json:"ownership_types"`
}

// Terms returns the financing terms for an ownership type
func (c *BuildingConfig) Terms(o types.OwnershipType) (FinancingTerms, bool) {
	for _, own := range c.Ownership {
		if own.Type == o {
			return own.Terms, true
		}
	}
	return FinancingTerms{}, false
}

// Name returns the display name, falling back to the subtype id
func (c *BuildingConfig) Name() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Subtype
}

// FinishFactors are the global cost and revenue factors of a finish level
type FinishFactors struct {
	CostFactor    float64 `json:"cost_factor"`
	RevenueFactor float64 `json:"revenue_factor"`
}

// MixedUseComponent holds the multipliers of one mixed-use component
type MixedUseComponent struct {
	Name              string  `json:"name"`
	CostMultiplier    float64 `json:"cost_multiplier"`
	RevenueMultiplier float64 `json:"revenue_multiplier"`
}

// ItemSpec is one declared scope item of a profile trade
type ItemSpec struct {
	Key          string             `json:"key"`
	Label        string             `json:"label"`
	Unit         string             `json:"unit"`
	QuantityRule string             `json:"quantity_rule"`
	Params       map[string]float64 `json:"params,omitempty"`
	ShareOfTrade float64            `json:"share_of_trade"`
	OmitIfZero   bool               `json:"omit_if_zero,omitempty"`
	Note         string             `json:"note,omitempty"`
}

// Rescale moves the trigger item's share to the targets when its quantity is zero
type Rescale struct {
	Trigger string   `json:"trigger"`
	Targets []string `json:"targets"`
}

// TradeProfile is the item list for one trade
type TradeProfile struct {
	Trade    types.Trade `json:"trade"`
	Items    []ItemSpec  `json:"items"`
	Rescales []Rescale   `json:"conditional_rescales,omitempty"`
}

// ScopeProfile is a declarative scope-items document
type ScopeProfile struct {
	ID     string         `json:"id"`
	Trades []TradeProfile `json:"trades"`
}

// Trade returns the profile for a trade, if declared
func (p *ScopeProfile) Trade(t types.Trade) (*TradeProfile, bool) {
	for i := range p.Trades {
		if p.Trades[i].Trade == t {
			return &p.Trades[i], true
		}
	}
	return nil, false
}

// Tile is one sensitivity stress case
type Tile struct {
	ID           string  `json:"id"`
	Label        string  `json:"label"`
	RevenueDelta float64 `json:"revenue_delta"`
	CostDelta    float64 `json:"cost_delta"`
}

// TileProfile is an ordered set of sensitivity tiles
type TileProfile struct {
	ID    string `json:"id"`
	Tiles []Tile `json:"tiles"`
}

// DefaultTileProfile is used when a subtype declares none
const DefaultTileProfile = "default"

// Store is the immutable configuration store
type Store struct {
	typeDefaults  map[types.BuildingType]*TypeDefaults
	typeClamps    map[types.BuildingType]*CostClamp
	buildings     map[types.BuildingType]map[string]*BuildingConfig
	finishes      map[types.FinishLevel]FinishFactors
	classes       map[types.ProjectClass]float64
	mixedUse      map[string]MixedUseComponent
	scopeProfiles map[string]*ScopeProfile
	tileProfiles  map[string]*TileProfile
}

func newStore() *Store {
	return &Store{
		typeDefaults:  make(map[types.BuildingType]*TypeDefaults),
		typeClamps:    make(map[types.BuildingType]*CostClamp),
		buildings:     make(map[types.BuildingType]map[string]*BuildingConfig),
		finishes:      make(map[types.FinishLevel]FinishFactors),
		classes:       make(map[types.ProjectClass]float64),
		mixedUse:      make(map[string]MixedUseComponent),
		scopeProfiles: make(map[string]*ScopeProfile),
		tileProfiles:  make(map[string]*TileProfile),
	}
}

// Config looks up a building configuration. An empty subtype resolves to the
// type's default subtype; an unknown type or subtype is a ConfigNotFound error.
func (s *Store) Config(bt types.BuildingType, subtype string) (*BuildingConfig, error) {
	subs, ok := s.buildings[bt]
	if !ok {
		return nil, errors.ConfigNotFound(string(bt), subtype)
	}
	key := types.NormalizeKey(subtype)
	if key == "" {
		if d, ok := s.typeDefaults[bt]; ok {
			key = d.DefaultSubtype
		}
	}
	cfg, ok := subs[key]
	if !ok {
		return nil, errors.ConfigNotFound(string(bt), subtype)
	}
	return cfg, nil
}

// TypeDefaults returns the type-level defaults
func (s *Store) TypeDefaults(bt types.BuildingType) (*TypeDefaults, bool) {
	d, ok := s.typeDefaults[bt]
	return d, ok
}

// BuildingTypes returns the configured building types in canonical order
func (s *Store) BuildingTypes() []types.BuildingType {
	var out []types.BuildingType
	for _, bt := range types.AllBuildingTypes {
		if _, ok := s.buildings[bt]; ok {
			out = append(out, bt)
		}
	}
	return out
}

// Subtypes returns the sorted subtype ids of a building type
func (s *Store) Subtypes(bt types.BuildingType) []string {
	return determinism.SortedKeys(s.buildings[bt])
}

// FinishLevel returns the global factors of a finish level
func (s *Store) FinishLevel(level types.FinishLevel) (FinishFactors, bool) {
	f, ok := s.finishes[level]
	return f, ok
}

// ProjectClassMultiplier returns the complexity multiplier. Tenant improvement
// uses the building type's own multiplier when one is configured.
func (s *Store) ProjectClassMultiplier(class types.ProjectClass, bt types.BuildingType) float64 {
	if class == types.ClassTenantImprovement {
		if d, ok := s.typeDefaults[bt]; ok && d.TIMultiplier > 0 {
			return d.TIMultiplier
		}
	}
	if m, ok := s.classes[class]; ok {
		return m
	}
	return 1.0
}

// MixedUseComponent returns the multipliers of a mixed-use component
func (s *Store) MixedUseComponent(name string) (MixedUseComponent, bool) {
	c, ok := s.mixedUse[types.NormalizeKey(name)]
	return c, ok
}

// MixedUseComponents returns the sorted component names
func (s *Store) MixedUseComponents() []string {
	return determinism.SortedKeys(s.mixedUse)
}

// ScopeProfile returns a scope profile by id
func (s *Store) ScopeProfile(id string) (*ScopeProfile, error) {
	p, ok := s.scopeProfiles[id]
	if !ok {
		return nil, errors.ProfileNotFound("scope", id)
	}
	return p, nil
}

// TileProfile returns a tile profile by id
func (s *Store) TileProfile(id string) (*TileProfile, error) {
	p, ok := s.tileProfiles[id]
	if !ok {
		return nil, errors.ProfileNotFound("tile", id)
	}
	return p, nil
}

// ScopeProfileIDs returns the sorted scope profile ids
func (s *Store) ScopeProfileIDs() []string {
	return determinism.SortedKeys(s.scopeProfiles)
}

// TileProfileIDs returns the sorted tile profile ids
func (s *Store) TileProfileIDs() []string {
	return determinism.SortedKeys(s.tileProfiles)
}

// Count returns the number of building configurations
func (s *Store) Count() int {
	n := 0
	for _, subs := range s.buildings {
		n += len(subs)
	}
	return n
}

// each visits every building configuration in deterministic order
func (s *Store) each(fn func(*BuildingConfig)) {
	for _, bt := range s.BuildingTypes() {
		for _, sub := range s.Subtypes(bt) {
			fn(s.buildings[bt][sub])
		}
	}
}
