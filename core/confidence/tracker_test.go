package confidence

import "testing"

func TestTrackerLevels(t *testing.T) {
	tests := []struct {
		name  string
		rules []string
		want  string
	}{
		{"override", nil, "high"},
		{"derived", []string{"derived_quantity"}, "medium"},
		{"synthetic", []string{"synthetic_detail"}, "low"},
		{"derived then rescaled", []string{"derived_quantity", "rescaled_share"}, "medium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker()
			for _, r := range tt.rules {
				tr.Apply(r, "test")
			}
			if got := tr.Level(); got != tt.want {
				t.Errorf("Level() = %s (%.2f), want %s", got, tr.Current(), tt.want)
			}
		})
	}
}

func TestTrackerFloorNeverRaises(t *testing.T) {
	tr := NewTracker()
	tr.Apply("synthetic_detail", "a")
	tr.Apply("synthetic_detail", "b")
	tr.Apply("synthetic_detail", "c")
	low := tr.Current()
	tr.Apply("derived_quantity", "d")
	if tr.Current() > low {
		t.Errorf("confidence rose from %.3f to %.3f", low, tr.Current())
	}
	if len(tr.Factors()) != 4 {
		t.Errorf("recorded %d decays, want 4", len(tr.Factors()))
	}
}

func TestPropagate(t *testing.T) {
	p := NewPropagator()

	tests := []struct {
		name      string
		items     []Item
		wantScore float64
		wantMin   float64
		wantLow   int
	}{
		{"empty", nil, 1.0, 1.0, 0},
		{"weighted", []Item{{"a", 1.0, 300}, {"b", 0.5, 100}}, 0.875, 0.5, 1},
		{"zero weights use minimum", []Item{{"a", 0.9, 0}, {"b", 0.7, 0}}, 0.7, 0.7, 0},
		{
			"penalty beyond allowance",
			[]Item{{"a", 0.5, 1}, {"b", 0.5, 1}, {"c", 0.5, 1}, {"d", 0.5, 1}, {"e", 0.5, 1}},
			0.46, 0.5, 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := p.Propagate(tt.items)
			if diff := r.Score - tt.wantScore; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Score = %v, want %v", r.Score, tt.wantScore)
			}
			if r.Minimum != tt.wantMin {
				t.Errorf("Minimum = %v, want %v", r.Minimum, tt.wantMin)
			}
			if len(r.LowItems) != tt.wantLow {
				t.Errorf("LowItems = %v, want %d", r.LowItems, tt.wantLow)
			}
			if r.Score > r.Weighted+1e-12 {
				t.Errorf("Score %v above weighted %v", r.Score, r.Weighted)
			}
		})
	}
}
