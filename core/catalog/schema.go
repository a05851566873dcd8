package catalog

// HCL decoding targets. These mirror the block layout of the catalog files
// one-to-one and are converted into the exported domain types by the loader.

type fileSchema struct {
	BuildingTypes  []buildingTypeBlock `hcl:"building_type,block"`
	Buildings      []buildingBlock     `hcl:"building,block"`
	FinishLevels   []finishLevelBlock  `hcl:"finish_level,block"`
	ProjectClasses []projectClassBlock `hcl:"project_class,block"`
	MixedUse       []mixedUseBlock     `hcl:"mixed_use_component,block"`
	ScopeProfiles  []scopeProfileBlock `hcl:"scope_profile,block"`
	TileProfiles   []tileProfileBlock  `hcl:"tile_profile,block"`
}

type buildingTypeBlock struct {
	Type                string             `hcl:"type,label"`
	DefaultSubtype      string             `hcl:"default_subtype"`
	MarginPct           float64            `hcl:"margin_pct"`
	TIMultiplier        float64            `hcl:"ti_multiplier,optional"`
	ProjectClasses      []string           `hcl:"project_classes,optional"`
	EquipmentAsSoftCost bool               `hcl:"equipment_as_soft_cost,optional"`
	SoftCosts           map[string]float64 `hcl:"soft_costs,optional"`
	CostClamp           *costClampBlock    `hcl:"cost_clamp,block"`
	Ownership           []ownershipBlock   `hcl:"ownership,block"`
}

type buildingBlock struct {
	Type               string              `hcl:"type,label"`
	Subtype            string              `hcl:"subtype,label"`
	DisplayName        string              `hcl:"display_name,optional"`
	BaseCostPerSF      float64             `hcl:"base_cost_per_sf"`
	EquipmentCostPerSF float64             `hcl:"equipment_cost_per_sf,optional"`
	TypicalFloors      int                 `hcl:"typical_floors,optional"`
	Trades             map[string]float64  `hcl:"trades"`
	SoftCosts          map[string]float64  `hcl:"soft_costs,optional"`
	SpecialFeatures    map[string]float64  `hcl:"special_features,optional"`
	FeatureAliases     map[string]string   `hcl:"feature_aliases,optional"`
	MarginPct          *float64            `hcl:"margin_pct,optional"`
	FinishCostFactors  map[string]float64  `hcl:"finish_cost_factors,optional"`
	FinishMargins      map[string]float64  `hcl:"finish_margins,optional"`
	ScopeItemsProfile  string              `hcl:"scope_items_profile,optional"`
	ScopeGenerator     string              `hcl:"scope_profile,optional"`
	TileProfile        string              `hcl:"tile_profile,optional"`
	MinItemsPerTrade   int                 `hcl:"min_items_per_trade,optional"`
	DetailLabels       map[string][]string `hcl:"detail_labels,optional"`
	MixedUseDefault    map[string]float64  `hcl:"mixed_use_default,optional"`
	FlexFinishRates    map[string]float64  `hcl:"flex_finish_rates,optional"`
	CostClamp          *costClampBlock     `hcl:"cost_clamp,block"`
	Financial          *financialBlock     `hcl:"financial_metrics,block"`
	Ownership          []ownershipBlock    `hcl:"ownership,block"`
}

type costClampBlock struct {
	Min float64 `hcl:"min,optional"`
	Max float64 `hcl:"max,optional"`
}

type financialBlock struct {
	PrimaryUnit            string             `hcl:"primary_unit,optional"`
	UnitsPerSF             float64            `hcl:"units_per_sf,optional"`
	RevenuePerUnit         float64            `hcl:"revenue_per_unit,optional"`
	RevenuePerSF           float64            `hcl:"revenue_per_sf,optional"`
	OccupancyRate          float64            `hcl:"occupancy_rate,optional"`
	MarketRateType         string             `hcl:"market_rate_type,optional"`
	OperatingMargin        *float64           `hcl:"operating_margin,optional"`
	ExpenseRatios          map[string]float64 `hcl:"expense_ratios,optional"`
	VisitsPerDay           float64            `hcl:"visits_per_day,optional"`
	OperatingDays          float64            `hcl:"operating_days,optional"`
	ReimbursementPerVisit  float64            `hcl:"reimbursement_per_visit,optional"`
	UncompensatedCareRatio float64            `hcl:"uncompensated_care_ratio,optional"`
	MonthlyRent            float64            `hcl:"monthly_rent,optional"`
	ADR                    float64            `hcl:"adr,optional"`
	ManagementFeeRatio     float64            `hcl:"management_fee_ratio,optional"`
	FFEReserveRatio        float64            `hcl:"ffe_reserve_ratio,optional"`
	BaseRentPerSF          float64            `hcl:"base_rent_per_sf,optional"`
	StabilizedOccupancy    float64            `hcl:"stabilized_occupancy,optional"`
	VacancyCreditLoss      float64            `hcl:"vacancy_credit_loss,optional"`
	OpexPerSF              float64            `hcl:"opex_per_sf,optional"`
	TIPerSF                float64            `hcl:"ti_per_sf,optional"`
	LeasingCommissionPct   float64            `hcl:"leasing_commission_pct,optional"`
	LeaseTermYears         float64            `hcl:"lease_term_years,optional"`
}

type ownershipBlock struct {
	Type              string  `hcl:"type,label"`
	DebtRatio         float64 `hcl:"debt_ratio"`
	EquityRatio       float64 `hcl:"equity_ratio"`
	PhilanthropyRatio float64 `hcl:"philanthropy_ratio,optional"`
	GrantsRatio       float64 `hcl:"grants_ratio,optional"`
	DebtRate          float64 `hcl:"debt_rate"`
	TargetDSCR        float64 `hcl:"target_dscr,optional"`
	TargetROI         float64 `hcl:"target_roi,optional"`
	NOIPercentage     float64 `hcl:"noi_percentage,optional"`
}

type finishLevelBlock struct {
	Level         string  `hcl:"level,label"`
	CostFactor    float64 `hcl:"cost_factor"`
	RevenueFactor float64 `hcl:"revenue_factor"`
}

type projectClassBlock struct {
	Class      string  `hcl:"class,label"`
	Multiplier float64 `hcl:"multiplier"`
}

type mixedUseBlock struct {
	Component         string  `hcl:"component,label"`
	CostMultiplier    float64 `hcl:"cost_multiplier"`
	RevenueMultiplier float64 `hcl:"revenue_multiplier"`
}

type scopeProfileBlock struct {
	ID     string            `hcl:"id,label"`
	Trades []scopeTradeBlock `hcl:"trade,block"`
}

type scopeTradeBlock struct {
	Trade    string           `hcl:"trade,label"`
	Items    []scopeItemBlock `hcl:"item,block"`
	Rescales []rescaleBlock   `hcl:"conditional_rescale,block"`
}

type scopeItemBlock struct {
	Key          string             `hcl:"key,label"`
	Label        string             `hcl:"label"`
	Unit         string             `hcl:"unit"`
	QuantityRule string             `hcl:"quantity_rule"`
	Params       map[string]float64 `hcl:"params,optional"`
	ShareOfTrade float64            `hcl:"share_of_trade"`
	OmitIfZero   bool               `hcl:"omit_if_zero,optional"`
	Note         string             `hcl:"note,optional"`
}

type rescaleBlock struct {
	Trigger string   `hcl:"trigger"`
	Targets []string `hcl:"targets"`
}

type tileProfileBlock struct {
	ID    string      `hcl:"id,label"`
	Tiles []tileBlock `hcl:"tile,block"`
}

type tileBlock struct {
	ID           string  `hcl:"id,label"`
	Label        string  `hcl:"label"`
	RevenueDelta float64 `hcl:"revenue_delta,optional"`
	CostDelta    float64 `hcl:"cost_delta,optional"`
}
