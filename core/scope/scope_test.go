package scope

import (
	"math"
	"testing"

	"building-cost/core/catalog"
	"building-cost/core/trace"
	"building-cost/core/trade"
	"building-cost/core/types"
	"building-cost/internal/errors"
)

func loadStore(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func build(t *testing.T, store *catalog.Store, bt types.BuildingType, sub string, sf float64, ctx Context) ([]TradeScope, trade.Breakdown) {
	t.Helper()
	cfg, err := store.Config(bt, sub)
	if err != nil {
		t.Fatal(err)
	}
	breakdown := trade.Calculate(cfg.BaseCostPerSF*sf, cfg.Trades, nil)
	ctx.SquareFootage = sf
	if ctx.FlexFinishRates == nil {
		ctx.FlexFinishRates = cfg.FlexFinishRates
	}
	scopes, err := NewBuilder(store).Build(cfg, breakdown, ctx, trace.New())
	if err != nil {
		t.Fatalf("Build(%s/%s): %v", bt, sub, err)
	}
	return scopes, breakdown
}

func TestScopeItemConsistency(t *testing.T) {
	store := loadStore(t)
	officeShare := 0.3

	tests := []struct {
		bt  types.BuildingType
		sub string
		sf  float64
		ctx Context
	}{
		{types.BuildingOffice, "class_a", 50000, Context{}},
		{types.BuildingIndustrial, "warehouse", 120000, Context{}},
		{types.BuildingIndustrial, "flex_space", 40000, Context{OfficeShare: &officeShare}},
		{types.BuildingIndustrial, "cold_storage", 60000, Context{HasBlastFreezer: true}},
		{types.BuildingIndustrial, "manufacturing", 80000, Context{}},
		{types.BuildingHealthcare, "hospital", 200000, Context{}},
		{types.BuildingHealthcare, "surgical_center", 30000, Context{}},
		{types.BuildingRestaurant, "full_service", 6000, Context{}},
		{types.BuildingCivic, "library", 25000, Context{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.bt)+"/"+tt.sub, func(t *testing.T) {
			scopes, breakdown := build(t, store, tt.bt, tt.sub, tt.sf, tt.ctx)
			if len(scopes) != len(breakdown) {
				t.Fatalf("got %d trades, breakdown has %d", len(scopes), len(breakdown))
			}
			for _, ts := range scopes {
				for _, it := range ts.Systems {
					if it.Quantity > 0 && math.Abs(it.UnitCost*it.Quantity-it.TotalCost) >= 0.01 {
						t.Errorf("%s: unit %v x qty %v != total %v", it.Key, it.UnitCost, it.Quantity, it.TotalCost)
					}
					if it.Quantity == 0 && it.UnitCost != 0 {
						t.Errorf("%s: zero quantity with unit cost %v", it.Key, it.UnitCost)
					}
					if it.ConfidenceLabel == "" {
						t.Errorf("%s: missing confidence label", it.Key)
					}
				}
				if ts.Total() > breakdown[ts.Trade]*1.0001 {
					t.Errorf("%s: items %v exceed trade %v", ts.Trade, ts.Total(), breakdown[ts.Trade])
				}
			}
		})
	}
}

func TestConditionalRescaleAndOmit(t *testing.T) {
	store := loadStore(t)
	zero := 0.0
	scopes, breakdown := build(t, store, types.BuildingIndustrial, "warehouse", 100000, Context{DockDoors: &zero})

	var structural TradeScope
	for _, ts := range scopes {
		if ts.Trade == types.TradeStructural {
			structural = ts
		}
	}
	for _, it := range structural.Systems {
		if it.Key == "dock_doors" || it.Key == "mezzanine" {
			t.Errorf("%s should be omitted at zero quantity", it.Key)
		}
	}
	// Both triggers fired; their shares moved to the remaining items
	if math.Abs(structural.Total()-breakdown[types.TradeStructural]) > 0.01 {
		t.Errorf("structural items %v, want full trade %v", structural.Total(), breakdown[types.TradeStructural])
	}
	for _, it := range structural.Systems {
		if it.Key == "tilt_up_shell" && it.ConfidenceScore >= 1 {
			t.Errorf("rescaled item kept full confidence")
		}
	}
}

func TestSharesAboveOneAreScaled(t *testing.T) {
	p := &catalog.ScopeProfile{ID: "overfull", Trades: []catalog.TradeProfile{{
		Trade: types.TradeStructural,
		Items: []catalog.ItemSpec{
			{Key: "a", Label: "A", Unit: "SF", QuantityRule: RuleSF, ShareOfTrade: 0.8},
			{Key: "b", Label: "B", Unit: "SF", QuantityRule: RuleSF, ShareOfTrade: 0.8},
		},
	}}}
	cp, err := Compile(p)
	if err != nil {
		t.Fatal(err)
	}
	items := cp.trades[types.TradeStructural].build(1000, Context{SquareFootage: 10}, p.ID, nil)
	total := 0.0
	for _, it := range items {
		total += it.TotalCost
	}
	if math.Abs(total-1000) > 1e-9 {
		t.Errorf("total = %v, want 1000", total)
	}
}

func TestCompileRuleRejectsUnknown(t *testing.T) {
	_, err := CompileRule("stair_count", nil, "stairs", "office_core")
	if !errors.IsType(err, errors.TypeUnsupportedRule) {
		t.Fatalf("err = %v, want UNSUPPORTED_QUANTITY_RULE", err)
	}
	e := err.(*errors.Error)
	if e.Context["item_key"] != "stairs" || e.Context["profile_id"] != "office_core" {
		t.Errorf("context = %v", e.Context)
	}
}

func TestQuantityRules(t *testing.T) {
	docks := 7.0
	office := 2500.0
	share := 0.25
	ctx := Context{SquareFootage: 50000}

	tests := []struct {
		name string
		rule QuantityRule
		ctx  Context
		want float64
	}{
		{"sf", SFRule{}, ctx, 50000},
		{"dock derived", DockCountRule{PerSF: 10000, Min: 1}, ctx, 5},
		{"dock override", DockCountRule{PerSF: 10000, Min: 1}, Context{SquareFootage: 50000, DockDoors: &docks}, 7},
		{"rtu floor", CountRule{Rule: RuleRTUCount, SFPerUnit: 100000, Min: 2}, ctx, 2},
		{"rtu ceil", CountRule{Rule: RuleRTUCount, SFPerUnit: 15000, Min: 1}, ctx, 4},
		{"office pct", AreaShareRule{Area: AreaOffice, Pct: 0.1}, ctx, 5000},
		{"office sf", AreaShareRule{Area: AreaOffice, Pct: 0.1}, Context{SquareFootage: 50000, OfficeSF: &office}, 2500},
		{"warehouse from share", AreaShareRule{Area: AreaWarehouse, Pct: 0.9}, Context{SquareFootage: 50000, OfficeShare: &share}, 37500},
		{"constant", ConstantRule{Value: 3}, ctx, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Quantity(tt.ctx).Value; got != tt.want {
				t.Errorf("Quantity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHealthcareUplift(t *testing.T) {
	store := loadStore(t)
	cfg, err := store.Config(types.BuildingHealthcare, "hospital")
	if err != nil {
		t.Fatal(err)
	}
	scopes, breakdown := build(t, store, types.BuildingHealthcare, "hospital", 150000, Context{})

	for _, ts := range scopes {
		if len(ts.Systems) < cfg.MinItemsPerTrade {
			t.Errorf("%s: %d items, want at least %d", ts.Trade, len(ts.Systems), cfg.MinItemsPerTrade)
		}
		if math.Abs(ts.Total()-breakdown[ts.Trade]) > 0.01 {
			t.Errorf("%s: items %v, trade %v", ts.Trade, ts.Total(), breakdown[ts.Trade])
		}
		synthetic := 0.0
		for _, it := range ts.Systems {
			if it.Source == SourceSynthetic {
				synthetic += it.TotalCost
				if it.ConfidenceLabel != "low" {
					t.Errorf("synthetic item %s labelled %s", it.Name, it.ConfidenceLabel)
				}
			}
		}
		if synthetic > breakdown[ts.Trade]*MaxDonorShare {
			t.Errorf("%s: synthetic %v exceeds donor bound", ts.Trade, synthetic)
		}
	}
}

func TestUpliftPreservesDonorTotal(t *testing.T) {
	scopes := []TradeScope{{Trade: types.TradePlumbing, Systems: []Item{
		{Key: "big", Name: "Big", Quantity: 10, TotalCost: 1000.37, UnitCost: 100.037},
		{Key: "small", Name: "Small", Quantity: 1, TotalCost: 10, UnitCost: 10},
	}}}
	out := upliftDepth(scopes, 5, map[types.Trade][]string{types.TradePlumbing: {"Med Gas"}}, nil)

	if len(out[0].Systems) != 5 {
		t.Fatalf("got %d items, want 5", len(out[0].Systems))
	}
	if math.Abs(out[0].Total()-1010.37) > 1e-9 {
		t.Errorf("total = %v, want 1010.37", out[0].Total())
	}
	if out[0].Systems[2].Name != "Med Gas" || out[0].Systems[3].Name != "Plumbing Detail 1" {
		t.Errorf("names = %s, %s", out[0].Systems[2].Name, out[0].Systems[3].Name)
	}
	if scopes[0].Systems[0].TotalCost != 1000.37 {
		t.Error("input scope was modified")
	}
}

func TestItemScaled(t *testing.T) {
	it := Item{Quantity: 4, TotalCost: 100, UnitCost: 25}
	s := it.Scaled(1.5)
	if s.TotalCost != 150 || s.UnitCost != 37.5 || it.TotalCost != 100 {
		t.Errorf("Scaled = %+v, original %+v", s, it)
	}
}

func TestValidateProfiles(t *testing.T) {
	if err := ValidateProfiles(loadStore(t)); err != nil {
		t.Fatalf("default profiles must compile: %v", err)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	r.Register(coldStorage{})
	if err := r.RegisterSafe(coldStorage{}); err == nil {
		t.Error("duplicate registration accepted")
	}
}

func TestOfficeAreaShareUnits(t *testing.T) {
	share := func(v float64) *float64 { return &v }
	tests := []struct {
		name string
		ctx  Context
		want float64
		ok   bool
	}{
		{"fraction", Context{SquareFootage: 10000, OfficeShare: share(0.25)}, 2500, true},
		{"percent", Context{SquareFootage: 10000, OfficeShare: share(25)}, 2500, true},
		{"one is whole building", Context{SquareFootage: 10000, OfficeShare: share(1)}, 10000, true},
		{"above one is percent", Context{SquareFootage: 10000, OfficeShare: share(1.5)}, 150, true},
		{"explicit area wins", Context{SquareFootage: 10000, OfficeShare: share(0.5), OfficeSF: share(1200)}, 1200, true},
		{"area capped", Context{SquareFootage: 10000, OfficeSF: share(20000)}, 10000, true},
		{"not given", Context{SquareFootage: 10000}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.ctx.OfficeArea()
			if ok != tt.ok || math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("OfficeArea() = %v, %v, want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
