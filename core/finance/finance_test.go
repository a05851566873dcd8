package finance

import (
	"math"
	"testing"
)

func TestIRRRoundTrip(t *testing.T) {
	flows := BuildCashFlows(10_000_000, 1_000_000, 10, 0)
	if len(flows) != 11 || flows[0] != -10_000_000 || flows[10] != 1_000_000 {
		t.Fatalf("flows = %v", flows)
	}

	irr, ok := IRR(flows)
	if !ok {
		t.Fatalf("IRR did not converge, last rate %v", irr)
	}
	if npv := NPV(irr, flows); math.Abs(npv) >= 100 {
		t.Errorf("NPV(IRR=%v) = %v, want |NPV| < 100", irr, npv)
	}
	// Ten flat years without an exit exactly return the cost
	if math.Abs(irr) > 0.005 {
		t.Errorf("IRR = %v, want about 0", irr)
	}
}

func TestIRRCases(t *testing.T) {
	tests := []struct {
		name  string
		flows []float64
		check func(rate float64, ok bool) bool
	}{
		{"with exit", BuildCashFlows(10_000_000, 800_000, 10, 0.07), func(r float64, ok bool) bool { return ok && r > 0.07 && r < 0.12 }},
		{"single flow", []float64{-100}, func(r float64, ok bool) bool { return !ok }},
		{"total loss clamps", []float64{-100, 0, 0}, func(r float64, ok bool) bool { return r >= irrMinRate && r <= irrMaxRate }},
		{"huge return clamps", []float64{-1, 1000}, func(r float64, ok bool) bool { return r <= irrMaxRate }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := IRR(tt.flows)
			if !tt.check(r, ok) {
				t.Errorf("IRR = %v (converged %v)", r, ok)
			}
		})
	}
}

func TestNPV(t *testing.T) {
	if got := NPV(0.1, []float64{-100, 110}); math.Abs(got) > 1e-9 {
		t.Errorf("NPV = %v, want 0", got)
	}
	if got := NPV(0, []float64{-100, 50, 50}); got != 0 {
		t.Errorf("NPV at zero rate = %v, want 0", got)
	}
}

func TestMarketRates(t *testing.T) {
	tests := []struct {
		bt   string
		want Rates
	}{
		{"multifamily", Rates{0.055, 0.075}},
		{"industrial", Rates{0.0675, 0.08}},
		{"office", Rates{0.0675, 0.0825}},
		{"hospitality", Rates{0.085, 0.10}},
		{"Office_Tower", Rates{0.0675, 0.0825}},
		{"retail", DefaultRates},
		{"", DefaultRates},
	}
	for _, tt := range tests {
		if got := MarketRates(tt.bt); got != tt.want {
			t.Errorf("MarketRates(%q) = %+v, want %+v", tt.bt, got, tt.want)
		}
	}
}

func TestDebtMetrics(t *testing.T) {
	ds := InterestOnlyDebtService(10_000_000, 0.65, 0.068)
	if math.Abs(ds-442_000) > 1e-6 {
		t.Errorf("debt service = %v, want 442000", ds)
	}
	if got := DSCR(663_000, ds); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("DSCR = %v, want 1.5", got)
	}
	if got := DSCR(100, 0); got != 0 {
		t.Errorf("DSCR with no debt = %v, want 0", got)
	}
	if _, ok := PaybackYears(100, 0); ok {
		t.Error("payback with no cash flow reported achievable")
	}
	if y, ok := PaybackYears(100, 20); !ok || y != 5 {
		t.Errorf("payback = %v,%v want 5,true", y, ok)
	}
}
