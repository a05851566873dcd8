package confidence

import (
	"fmt"
	"sort"
)

// Item is one scored component of a rollup, weighted by its dollars
type Item struct {
	ID     string
	Score  float64
	Weight float64
}

// Rollup is the aggregate confidence of a set of items.
// Minimum and LowItems are always reported so a low item is never hidden
// behind a high weighted score.
type Rollup struct {
	Score       float64  `json:"score"`
	Label       string   `json:"label"`
	Weighted    float64  `json:"weighted"`
	Minimum     float64  `json:"minimum"`
	Lowest      string   `json:"lowest,omitempty"`
	ItemCount   int      `json:"item_count"`
	LowItems    []string `json:"low_items,omitempty"`
	Explanation string   `json:"explanation"`
}

// Propagator combines item confidences pessimistically
type Propagator struct {
	floor              float64
	lowThreshold       float64
	minItemsForPenalty int
	additionalPenalty  float64
}

// NewPropagator creates a propagator with the default penalties
func NewPropagator() *Propagator {
	return &Propagator{
		floor:              0.05,
		lowThreshold:       0.6,
		minItemsForPenalty: 3,
		additionalPenalty:  0.02,
	}
}

// Propagate computes the cost-weighted score, then subtracts a penalty for
// every low item beyond the allowance. The score never exceeds the weighted
// mean and never drops below the floor.
func (p *Propagator) Propagate(items []Item) Rollup {
	if len(items) == 0 {
		return Rollup{Score: 1.0, Label: Label(1.0), Weighted: 1.0, Minimum: 1.0, Explanation: "no items to aggregate"}
	}

	r := Rollup{ItemCount: len(items), Minimum: 1.0}
	sum, weights := 0.0, 0.0
	for _, it := range items {
		w := it.Weight
		if w < 0 {
			w = 0
		}
		sum += it.Score * w
		weights += w
		if it.Score < r.Minimum {
			r.Minimum = it.Score
			r.Lowest = it.ID
		}
		if it.Score < p.lowThreshold {
			r.LowItems = append(r.LowItems, it.ID)
		}
	}
	sort.Strings(r.LowItems)

	if weights > 0 {
		r.Weighted = sum / weights
	} else {
		r.Weighted = r.Minimum
	}

	r.Score = r.Weighted
	if extra := len(r.LowItems) - p.minItemsForPenalty; extra > 0 {
		r.Score -= float64(extra) * p.additionalPenalty
	}
	if r.Score < p.floor {
		r.Score = p.floor
	}
	r.Label = Label(r.Score)
	r.Explanation = p.explain(r)
	return r
}

func (p *Propagator) explain(r Rollup) string {
	if len(r.LowItems) == 0 {
		return fmt.Sprintf("%d items, cost-weighted confidence %.0f%%", r.ItemCount, r.Score*100)
	}
	return fmt.Sprintf("%d items, cost-weighted confidence %.0f%%, %d low-confidence items (lowest %s at %.0f%%)",
		r.ItemCount, r.Score*100, len(r.LowItems), r.Lowest, r.Minimum*100)
}
