package features

import (
	"testing"

	"building-cost/core/catalog"
	"building-cost/core/trace"
	"building-cost/core/types"
)

func hospital(t *testing.T) *catalog.BuildingConfig {
	t.Helper()
	store, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := store.Config(types.BuildingHealthcare, "hospital")
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestCanonical(t *testing.T) {
	cfg := hospital(t)

	tests := []struct {
		requested string
		wantID    string
		wantBy    string
		wantOK    bool
	}{
		{"emergency_department", "emergency_department", MatchExact, true},
		{"Emergency Department", "emergency_department", MatchExact, true},
		{"er", "emergency_department", MatchAlias, true},
		{"operating-room", "surgical_suite", MatchAlias, true},
		{"rooftop_bar", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		id, by, ok := Canonical(cfg, tt.requested)
		if id != tt.wantID || by != tt.wantBy || ok != tt.wantOK {
			t.Errorf("Canonical(%q) = %q,%q,%v want %q,%q,%v", tt.requested, id, by, ok, tt.wantID, tt.wantBy, tt.wantOK)
		}
	}
}

func TestResolveDeduplicates(t *testing.T) {
	cfg := hospital(t)
	const sf = 100000.0

	single := Resolve(cfg, []string{"emergency_department"}, sf, nil)
	doubled := Resolve(cfg, []string{"emergency_department", "emergency_department", "er", "ER"}, sf, nil)

	if single.Total != 85*sf {
		t.Fatalf("single total = %v, want %v", single.Total, 85*sf)
	}
	if doubled.Total != single.Total {
		t.Errorf("duplicated request total = %v, want %v", doubled.Total, single.Total)
	}
	if len(doubled.Matched) != 1 {
		t.Errorf("matched = %d features, want 1", len(doubled.Matched))
	}
}

func TestResolveIgnoresUnknown(t *testing.T) {
	cfg := hospital(t)
	log := trace.New()

	res := Resolve(cfg, []string{"helipad", "bowling_alley"}, 1000, log)

	if res.Total != 40*1000 {
		t.Errorf("total = %v, want %v", res.Total, 40*1000)
	}
	if len(res.Ignored) != 1 || res.Ignored[0] != "bowling_alley" {
		t.Errorf("ignored = %v", res.Ignored)
	}
	infos := log.Filter(trace.KindInfo)
	if len(infos) != 1 || infos[0].Code != trace.CodeUnknownSpecialFeature {
		t.Errorf("info entries = %+v", infos)
	}
	if len(log.Warnings()) != 0 {
		t.Error("unknown feature must not warn")
	}
}
