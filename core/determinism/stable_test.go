package determinism

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneySplitIsExact(t *testing.T) {
	tests := []struct {
		amount string
		parts  int
	}{
		{"100.00", 3},
		{"1234567.89", 7},
		{"0.05", 4},
		{"98765.4321", 5},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			m := NewMoneyFromDecimal(decimal.RequireFromString(tt.amount), "USD")
			parts := m.Split(tt.parts)
			if len(parts) != tt.parts {
				t.Fatalf("got %d parts, want %d", len(parts), tt.parts)
			}
			sum := Zero("USD")
			for _, p := range parts {
				sum = sum.Add(p)
			}
			if !sum.Amount().Equal(m.Amount()) {
				t.Errorf("parts sum to %s, want %s", sum.StringFixed(6), m.StringFixed(6))
			}
		})
	}
}

func TestHashJSONStableAcrossMapOrder(t *testing.T) {
	a := map[string]float64{"structural": 0.3, "mechanical": 0.25, "finishes": 0.45}
	b := map[string]float64{"finishes": 0.45, "structural": 0.3, "mechanical": 0.25}

	ha, err := HashJSON(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := HashJSON(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Errorf("hash differs for equal maps: %s vs %s", ha.Hex(), hb.Hex())
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a, b := USD(1200.10), USD(200.35)
	if got := a.Sub(b).StringFixed(2); got != "999.75" {
		t.Errorf("Sub = %s, want 999.75", got)
	}
	if !b.Sub(a).IsNegative() {
		t.Error("reverse difference not negative")
	}
	data, err := a.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"1200.1"` {
		t.Errorf("MarshalJSON = %s", data)
	}
}

func TestMoneyCurrencyMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("adding USD and EUR did not panic")
		}
	}()
	USD(1).Add(Zero("EUR"))
}

func TestSortedKeys(t *testing.T) {
	keys := SortedKeys(map[string]decimal.Decimal{"b": decimal.Zero, "a": decimal.Zero, "c": decimal.Zero})
	want := []string{"a", "b", "c"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}
