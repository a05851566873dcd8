package revenue

import (
	"fmt"
	"math"
	"testing"

	"building-cost/core/catalog"
	"building-cost/core/modifiers"
	"building-cost/core/trace"
	"building-cost/core/types"
	"building-cost/internal/errors"
)

func config(t *testing.T, bt types.BuildingType, sub string) (*catalog.Store, *catalog.BuildingConfig) {
	t.Helper()
	store, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := store.Config(bt, sub)
	if err != nil {
		t.Fatal(err)
	}
	return store, cfg
}

func neutralMods(level types.FinishLevel) modifiers.Modifiers {
	return modifiers.Modifiers{
		RevenueFactor: 1.0,
		MarketFactor:  1.0,
		FinishLevel:   level,
		MarginPct:     0.22,
		MarginSource:  modifiers.MarginFromBuildingType,
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6*math.Max(1, math.Abs(b))
}

func TestModels(t *testing.T) {
	tests := []struct {
		bt       types.BuildingType
		sub      string
		sf       float64
		model    string
		wantBase float64
		wantOcc  float64
		fullyDet bool
	}{
		// 1540 rooms x 245 x 0.72 x 365
		{types.BuildingHospitality, "full_service_hotel", 1_000_000, ModelHospitality, 1540 * 245 * 0.72 * 365, 1.0, false},
		// 111 units x 2100 x 12
		{types.BuildingMultifamily, "market_rate_apartments", 100_000, ModelMultifamily, 111 * 2100 * 12, 0.94, false},
		// 200 rooms x 4 visits x 250 days x 135
		{types.BuildingHealthcare, "medical_office", 50_000, ModelHealthcare, 200 * 4 * 250 * 135, 1.0, true},
		// 1500 seats x 16000
		{types.BuildingRestaurant, "full_service", 50_000, ModelDefault, 1500 * 16000, 0.80, false},
		{types.BuildingRetail, "shopping_center", 10_000, ModelDefault, 10_000 * 32, 0.92, false},
		{types.BuildingCivic, "library", 10_000, ModelCivic, 0, 1.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.sub, func(t *testing.T) {
			_, cfg := config(t, tt.bt, tt.sub)
			m := ModelFor(tt.bt)
			if m.Name() != tt.model {
				t.Fatalf("ModelFor(%s) = %s, want %s", tt.bt, m.Name(), tt.model)
			}
			res := m.Compute(Input{Config: cfg, SquareFootage: tt.sf, QualityFactor: 1.0})
			if !near(res.BaseRevenue, tt.wantBase) {
				t.Errorf("BaseRevenue = %v, want %v", res.BaseRevenue, tt.wantBase)
			}
			if res.OccupancyRate != tt.wantOcc {
				t.Errorf("OccupancyRate = %v, want %v", res.OccupancyRate, tt.wantOcc)
			}
			if res.FullyDetermined != tt.fullyDet {
				t.Errorf("FullyDetermined = %v, want %v", res.FullyDetermined, tt.fullyDet)
			}
		})
	}
}

func TestHospitalityOverrides(t *testing.T) {
	_, cfg := config(t, types.BuildingHospitality, "limited_service_hotel")
	rooms, adr, occ := 120.0, 160.0, 0.8
	res := ModelFor(types.BuildingHospitality).Compute(Input{
		Config:        cfg,
		SquareFootage: 60_000,
		QualityFactor: 1.0,
		Overrides:     Overrides{Units: &rooms, ADR: &adr, Occupancy: &occ},
	})
	if !near(res.BaseRevenue, 120*160*0.8*365) {
		t.Errorf("BaseRevenue = %v", res.BaseRevenue)
	}
}

func TestOfficeProForma(t *testing.T) {
	_, cfg := config(t, types.BuildingOffice, "class_a")
	res := ModelFor(types.BuildingOffice).Compute(Input{Config: cfg, SquareFootage: 50_000, QualityFactor: 1.25})

	p := res.ProForma
	if p == nil {
		t.Fatal("office model returned no pro forma")
	}
	if !near(p.PGI, 48*50_000*0.92) {
		t.Errorf("PGI = %v", p.PGI)
	}
	if !near(p.EGI, p.PGI*0.95) {
		t.Errorf("EGI = %v", p.EGI)
	}
	if !near(p.NOI, p.EGI-p.Opex-p.TIAmortization-p.LCAmortization) || p.NOI <= 0 {
		t.Errorf("NOI = %v", p.NOI)
	}
	if res.QualityFactor != 1.0 || res.OccupancyRate != 1.0 {
		t.Error("office revenue is fully determined; quality and occupancy must be 1.0")
	}
}

func TestResolveMargin(t *testing.T) {
	tests := []struct {
		name       string
		bt         types.BuildingType
		sub        string
		level      types.FinishLevel
		wantPct    float64
		wantSource string
	}{
		{"finish override", types.BuildingOffice, "class_a", types.FinishLuxury, 0.28, MarginFromFinishLevel},
		{"office pro forma", types.BuildingOffice, "class_b", types.FinishStandard, -1, MarginFromOfficeProForma},
		{"operating margin", types.BuildingRetail, "big_box", types.FinishStandard, 0.68, MarginFromOperatingMargin},
		// 1 - 0.88 = 0.12 lies inside the clamp band
		{"expense ratios", types.BuildingRestaurant, "full_service", types.FinishStandard, 0.12, MarginFromExpenseRatios},
		// hospital 1 - 0.86 = 0.14, minus uncompensated care 0.03
		{"healthcare layer", types.BuildingHealthcare, "hospital", types.FinishStandard, 0.11, MarginFromExpenseRatios},
		// hotel 1 - 0.70 = 0.30, minus 0.03 management and 0.04 FF&E
		{"hospitality layer", types.BuildingHospitality, "full_service_hotel", types.FinishStandard, 0.23, MarginFromExpenseRatios},
		{"type default", types.BuildingSpecialty, "laboratory", types.FinishStandard, 0.22, modifiers.MarginFromBuildingType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cfg := config(t, tt.bt, tt.sub)
			res := ModelFor(tt.bt).Compute(Input{Config: cfg, SquareFootage: 50_000, QualityFactor: 1})
			m := ResolveMargin(cfg, neutralMods(tt.level), res)
			if m.Source != tt.wantSource {
				t.Errorf("Source = %s, want %s", m.Source, tt.wantSource)
			}
			if tt.wantPct >= 0 && !near(m.Pct, tt.wantPct) {
				t.Errorf("Pct = %v, want %v", m.Pct, tt.wantPct)
			}
		})
	}
}

func TestAnalyzeOffice(t *testing.T) {
	store, cfg := config(t, types.BuildingOffice, "class_a")
	terms, _ := cfg.Terms(types.OwnershipForProfit)
	log := trace.New()

	a, err := NewAnalyzer(store, 10).Analyze(AnalysisInput{
		Config:           cfg,
		Ownership:        types.OwnershipForProfit,
		Terms:            terms,
		SquareFootage:    50_000,
		TotalProjectCost: 22_000_000,
		Modifiers:        neutralMods(types.FinishStandard),
	}, log)
	if err != nil {
		t.Fatal(err)
	}

	if a.Revenue.AnnualRevenue <= 0 || a.Revenue.NOISource != NOIFromRevenue {
		t.Errorf("revenue = %v (%s)", a.Revenue.AnnualRevenue, a.Revenue.NOISource)
	}
	if len(a.CashFlows) != 11 {
		t.Errorf("cash flows = %d years, want 11 entries", len(a.CashFlows))
	}
	if !log.HasCode(trace.CodeDSCRReconciled) {
		t.Error("missing DSCR reconciliation entry")
	}
	wantDSCR := a.Revenue.NOI / (22_000_000 * terms.DebtRatio * terms.DebtRate)
	if !near(a.Debt.DSCR, wantDSCR) {
		t.Errorf("DSCR = %v, want %v from revenue NOI", a.Debt.DSCR, wantDSCR)
	}
	if !near(a.Debt.EstimatedDSCR, 22_000_000*terms.NOIPercentage/a.Debt.AnnualDebtService) {
		t.Errorf("EstimatedDSCR = %v", a.Debt.EstimatedDSCR)
	}
	if a.TileProfile != "office" || len(a.Sensitivity) != 5 {
		t.Errorf("sensitivity = %s with %d tiles", a.TileProfile, len(a.Sensitivity))
	}
	f := a.FundingSources
	if !near(f.Debt+f.Equity+f.Grants+f.Philanthropy+f.Unallocated, 22_000_000) {
		t.Errorf("funding sources do not sum to cost: %+v", f)
	}
}

func TestAnalyzeCivicUsesNOIPercentage(t *testing.T) {
	store, cfg := config(t, types.BuildingCivic, "library")
	terms, ok := cfg.Terms(types.OwnershipGovernment)
	if !ok {
		t.Fatal("civic has no government terms")
	}
	a, err := NewAnalyzer(store, 0).Analyze(AnalysisInput{
		Config:           cfg,
		Ownership:        types.OwnershipGovernment,
		Terms:            terms,
		SquareFootage:    20_000,
		TotalProjectCost: 8_000_000,
		Modifiers:        neutralMods(types.FinishStandard),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.Revenue.AnnualRevenue != 0 || a.Revenue.NOISource != NOIFromNOIPercentage {
		t.Errorf("civic revenue = %v (%s)", a.Revenue.AnnualRevenue, a.Revenue.NOISource)
	}
	if a.Returns.PaybackAchievable || a.Returns.PaybackYears != 0 {
		t.Errorf("payback = %v achievable %v", a.Returns.PaybackYears, a.Returns.PaybackAchievable)
	}
	if a.Decision.Recommendation != DecisionNoGo {
		t.Errorf("decision = %s", a.Decision.Recommendation)
	}
}

type brokenTiles struct{}

func (brokenTiles) TileProfile(id string) (*catalog.TileProfile, error) {
	if id == "office" {
		return &catalog.TileProfile{ID: id}, nil
	}
	return nil, fmt.Errorf("no profile %s", id)
}

func TestBrokenTileProfileIsFatal(t *testing.T) {
	for _, sub := range []string{"class_a", "class_b"} {
		_, cfg := config(t, types.BuildingOffice, sub)
		terms, _ := cfg.Terms(types.OwnershipForProfit)
		_, err := NewAnalyzer(brokenTiles{}, 10).Analyze(AnalysisInput{
			Config:           cfg,
			Ownership:        types.OwnershipForProfit,
			Terms:            terms,
			SquareFootage:    10_000,
			TotalProjectCost: 4_000_000,
			Modifiers:        neutralMods(types.FinishStandard),
		}, nil)
		if !errors.IsType(err, errors.TypeScenarioBuild) {
			t.Errorf("%s: err = %v, want SCENARIO_BUILD_ERROR", sub, err)
		}
	}
}
