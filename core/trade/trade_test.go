package trade

import (
	"math"
	"testing"

	"building-cost/core/types"
)

func relClose(a, b float64) bool {
	if b == 0 {
		return math.Abs(a) < 1e-9
	}
	return math.Abs(a-b)/math.Abs(b) < 1e-6
}

func TestCalculateConserves(t *testing.T) {
	tests := []struct {
		name   string
		cost   float64
		trades map[types.Trade]float64
	}{
		{"exact", 16250000, map[types.Trade]float64{
			types.TradeStructural: 0.22, types.TradeMechanical: 0.28, types.TradeElectrical: 0.18,
			types.TradePlumbing: 0.08, types.TradeFinishes: 0.24,
		}},
		{"under", 1e6, map[types.Trade]float64{types.TradeStructural: 0.4, types.TradeFinishes: 0.5}},
		{"odd cents", 1234567.89, map[types.Trade]float64{
			types.TradeStructural: 0.33, types.TradeMechanical: 0.33, types.TradeElectrical: 0.34,
		}},
		{"custom trade", 500000, map[types.Trade]float64{types.TradeStructural: 0.5, "sitework": 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Calculate(tt.cost, tt.trades, nil)
			if !relClose(b.Total(), tt.cost) {
				t.Errorf("Total() = %v, want %v", b.Total(), tt.cost)
			}
		})
	}
}

func TestCalculateProportions(t *testing.T) {
	b := Calculate(1000, map[types.Trade]float64{types.TradeStructural: 0.4, types.TradeFinishes: 0.6}, nil)
	if !relClose(b[types.TradeStructural], 400) || !relClose(b[types.TradeFinishes], 600) {
		t.Errorf("breakdown = %v", b)
	}
}

func TestOrdered(t *testing.T) {
	b := Breakdown{"sitework": 1, types.TradeFinishes: 1, types.TradeStructural: 1, types.TradePlumbing: 1}
	lines := b.Ordered()
	want := []types.Trade{types.TradeStructural, types.TradePlumbing, types.TradeFinishes, "sitework"}
	for i, l := range lines {
		if l.Trade != want[i] {
			t.Fatalf("order = %v, want %v", lines, want)
		}
	}
	if !relClose(lines[0].Percent, 0.25) {
		t.Errorf("percent = %v, want 0.25", lines[0].Percent)
	}
}

func TestScaleIsCopy(t *testing.T) {
	b := Breakdown{types.TradeStructural: 100}
	s := b.Scale(2)
	if s[types.TradeStructural] != 200 || b[types.TradeStructural] != 100 {
		t.Errorf("Scale mutated or miscomputed: orig %v scaled %v", b, s)
	}
}

func TestReconcileFlex(t *testing.T) {
	const sf = 40000.0
	trades := map[types.Trade]float64{
		types.TradeStructural: 0.32, types.TradeMechanical: 0.19, types.TradeElectrical: 0.15,
		types.TradePlumbing: 0.08, types.TradeFinishes: 0.26,
	}
	construction := 165 * sf
	b := Calculate(construction, trades, nil)

	out, r := ReconcileFlex(b, map[string]float64{"office": 95, "warehouse": 18}, sf, 0.25*sf, 1.0, construction, nil)

	wantFinishes := 10000*95.0 + 30000*18.0
	if !relClose(r.BottomUpFinishes, wantFinishes) {
		t.Errorf("bottom-up = %v, want %v", r.BottomUpFinishes, wantFinishes)
	}
	if !relClose(out.Total(), r.ConstructionAfter) {
		t.Errorf("reconciled total %v != construction after %v", out.Total(), r.ConstructionAfter)
	}
	if !relClose(r.ConstructionAfter-construction, r.Delta) {
		t.Errorf("delta = %v, want %v", r.Delta, r.ConstructionAfter-construction)
	}
	if b[types.TradeFinishes] == out[types.TradeFinishes] {
		t.Error("input breakdown was modified or finishes unchanged")
	}
}
