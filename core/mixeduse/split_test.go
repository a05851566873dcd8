package mixeduse

import (
	"math"
	"testing"

	"building-cost/core/catalog"
	"building-cost/core/trace"
	"building-cost/core/types"
)

func testStore(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func approx(a, b float64) bool {
	return math.Abs(a-b) <= 0.05
}

func TestResolveNormalizesOverfullSplit(t *testing.T) {
	store := testStore(t)
	cfg, err := store.Config(types.BuildingMixedUse, "office_residential")
	if err != nil {
		t.Fatal(err)
	}

	split := Resolve(store, cfg, map[string]interface{}{"office": 30, "residential": 90}, nil, trace.New())

	if !split.NormalizationApplied {
		t.Error("NormalizationApplied = false, want true")
	}
	if !approx(split.Components["office"], 25) || !approx(split.Components["residential"], 75) {
		t.Errorf("split = %v, want office 25 / residential 75", split.Components)
	}
	if split.InvalidMix {
		t.Error("InvalidMix = true for a parseable split")
	}
}

func TestResolveSources(t *testing.T) {
	store := testStore(t)
	cfg, err := store.Config(types.BuildingMixedUse, "retail_residential")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		explicit   map[string]interface{}
		hint       map[string]interface{}
		wantSource string
		want       map[string]float64
		wantInv    bool
	}{
		{"default", nil, nil, SourceDefault, map[string]float64{"retail": 30, "residential": 70}, false},
		{"hint", nil, map[string]interface{}{"office": "40%", "residential": "60%"}, SourceHint, map[string]float64{"office": 40, "residential": 60}, false},
		{"explicit wins", map[string]interface{}{"hotel": 0.6, "retail": 0.4}, map[string]interface{}{"office": 100}, SourceExplicit, map[string]float64{"hotel": 60, "retail": 40}, false},
		{"single with counterpart", map[string]interface{}{"retail": "25"}, nil, SourceExplicit, map[string]float64{"retail": 25, "residential": 75}, false},
		{"unparseable", map[string]interface{}{"office": "lots"}, nil, SourceDefault, map[string]float64{"retail": 30, "residential": 70}, true},
		{"negative", map[string]interface{}{"office": -10, "residential": 110}, nil, SourceDefault, map[string]float64{"retail": 30, "residential": 70}, true},
		{"unknown component", map[string]interface{}{"stadium": 50, "office": 50}, nil, SourceDefault, map[string]float64{"retail": 30, "residential": 70}, true},
		{"zero sum", map[string]interface{}{"office": 0, "retail": 0}, nil, SourceDefault, map[string]float64{"retail": 30, "residential": 70}, true},
		{"single over 100", map[string]interface{}{"office": 140}, nil, SourceDefault, map[string]float64{"retail": 30, "residential": 70}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := trace.New()
			split := Resolve(store, cfg, tt.explicit, tt.hint, log)
			if split.Source != tt.wantSource {
				t.Errorf("Source = %s, want %s", split.Source, tt.wantSource)
			}
			if split.InvalidMix != tt.wantInv {
				t.Errorf("InvalidMix = %v, want %v", split.InvalidMix, tt.wantInv)
			}
			if tt.wantInv && !log.HasCode(trace.CodeInvalidMixedUseSplit) {
				t.Error("missing invalid_mixed_use_split warning")
			}
			if len(split.Components) != len(tt.want) {
				t.Fatalf("split = %v, want %v", split.Components, tt.want)
			}
			for k, v := range tt.want {
				if !approx(split.Components[k], v) {
					t.Errorf("%s = %v, want %v", k, split.Components[k], v)
				}
			}
		})
	}
}

func TestWeightedMultipliers(t *testing.T) {
	store := testStore(t)
	split := Resolve(store, nil, map[string]interface{}{"office": 50, "hotel": 50}, nil, nil)
	// office 1.08, hotel 1.12
	if math.Abs(split.CostMultiplier-1.10) > 1e-9 {
		t.Errorf("CostMultiplier = %v, want 1.10", split.CostMultiplier)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in          interface{}
		want        float64
		wantPercent bool
		wantErr     bool
	}{
		{30, 30, false, false},
		{0.3, 0.3, false, false},
		{"30", 30, false, false},
		{" 30 % ", 30, true, false},
		{"0.3", 0.3, false, false},
		{"abc", 0, false, true},
		{"NaN", 0, false, true},
		{true, 0, false, true},
	}
	for _, tt := range tests {
		got, pct, err := ParseValue(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseValue(%v) err = %v", tt.in, err)
			continue
		}
		if got != tt.want || pct != tt.wantPercent {
			t.Errorf("ParseValue(%v) = %v,%v want %v,%v", tt.in, got, pct, tt.want, tt.wantPercent)
		}
	}
}
