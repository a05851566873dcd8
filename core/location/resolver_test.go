package location

import (
	"sync"
	"testing"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewDefaultResolver(16)
	if err != nil {
		t.Fatalf("NewDefaultResolver: %v", err)
	}
	return r
}

func TestResolveForms(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		input      string
		wantState  string
		wantCity   string
		wantSource Source
		wantMult   float64
	}{
		{"Nashville, TN", "TN", "Nashville", SourceCity, 0.93},
		{"nashville, tennessee", "TN", "Nashville", SourceCity, 0.93},
		{"Nashville TN", "TN", "Nashville", SourceCity, 0.93},
		{"Salt Lake City, Utah", "UT", "Salt Lake City", SourceCity, 0.95},
		{"Franklin, TN", "TN", "Franklin", SourceState, 0.88},
		{"Texas", "TX", "", SourceState, 0.90},
		{"NC", "NC", "", SourceState, 0.88},
		{"Boise", "ID", "Boise", SourceCity, 0.93},
		{"Saint Louis, MO", "MO", "St. Louis", SourceCity, 0.99},
		{"Austin, TX, USA", "TX", "Austin", SourceCity, 0.97},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := r.Resolve(tt.input)
			if !res.Matched {
				t.Fatalf("Resolve(%q) not matched", tt.input)
			}
			if res.State != tt.wantState || res.City != tt.wantCity || res.Source != tt.wantSource {
				t.Errorf("got state=%s city=%s source=%s", res.State, res.City, res.Source)
			}
			if res.CostMultiplier != tt.wantMult {
				t.Errorf("multiplier = %v, want %v", res.CostMultiplier, tt.wantMult)
			}
		})
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	r := newTestResolver(t)
	for _, input := range []string{"Atlantis", "", "Charleston", "Portland"} {
		res := r.Resolve(input)
		if res.Matched {
			t.Errorf("Resolve(%q) matched %s, want unresolved", input, res.Display())
		}
		if res.CostMultiplier != 1.0 || res.MarketFactor != 1.0 {
			t.Errorf("Resolve(%q) multiplier = %v/%v, want 1.0", input, res.CostMultiplier, res.MarketFactor)
		}
	}
}

func TestCacheIsBounded(t *testing.T) {
	r := newTestResolver(t)
	for i := 0; i < 100; i++ {
		r.Resolve(string(rune('a'+i%26)) + "ville" + string(rune('a'+i/26)))
	}
	if r.CacheLen() > 16 {
		t.Errorf("cache grew to %d entries, bound is 16", r.CacheLen())
	}
}

func TestResolveConcurrent(t *testing.T) {
	r := newTestResolver(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if res := r.Resolve("Dallas, TX"); res.CostMultiplier != 0.94 {
					t.Errorf("multiplier = %v", res.CostMultiplier)
				}
			}
		}()
	}
	wg.Wait()
}

func TestParseDatasetRejectsUnknownFields(t *testing.T) {
	_, err := ParseDataset([]byte("states:\n  - code: TX\n    name: Texas\n    cost_multiplier: 0.9\n    colour: red\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}
