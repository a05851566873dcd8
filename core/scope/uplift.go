package scope

import (
	"fmt"

	"github.com/shopspring/decimal"

	"building-cost/core/confidence"
	"building-cost/core/determinism"
	"building-cost/core/trace"
	"building-cost/core/types"
)

// MaxDonorShare bounds how much of the donor item may be carved into detail items
const MaxDonorShare = 0.28

// upliftDepth brings every trade up to minItems lines by carving detail
// items out of the trade's largest item. The trade total is unchanged.
func upliftDepth(scopes []TradeScope, minItems int, labels map[types.Trade][]string, log *trace.Log) []TradeScope {
	out := make([]TradeScope, len(scopes))
	for i, ts := range scopes {
		out[i] = ts
		missing := minItems - len(ts.Systems)
		if missing <= 0 || len(ts.Systems) == 0 {
			continue
		}

		donor := 0
		for j, it := range ts.Systems {
			if it.TotalCost > ts.Systems[donor].TotalCost {
				donor = j
			}
		}
		donorItem := ts.Systems[donor]
		if donorItem.TotalCost <= 0 {
			continue
		}

		donorAmount := decimal.NewFromFloat(donorItem.TotalCost)
		carved := donorAmount.Mul(decimal.NewFromFloat(MaxDonorShare)).Truncate(2)
		parts := determinism.NewMoneyFromDecimal(carved, "USD").Split(missing)

		systems := make([]Item, len(ts.Systems), minItems)
		copy(systems, ts.Systems)
		remaining, _ := donorAmount.Sub(carved).Float64()
		systems[donor].TotalCost = remaining
		systems[donor].UnitCost = unitCost(remaining, systems[donor].Quantity)

		names := detailNames(ts.Trade, labels[ts.Trade], ts.Systems, missing)
		for k, part := range parts {
			conf := confidence.NewTracker()
			conf.Apply("synthetic_detail", "carved from "+donorItem.Key)
			systems = append(systems, newItem(
				fmt.Sprintf("%s_detail_%d", ts.Trade, k+1),
				names[k],
				ts.Trade,
				1,
				"LS",
				part.Float64(),
				SourceSynthetic,
				conf,
			))
		}
		out[i] = TradeScope{Trade: ts.Trade, Systems: systems}

		log.Step("scope_depth_uplift", "added detail items to reach the minimum line count", map[string]interface{}{
			"trade":       string(ts.Trade),
			"donor":       donorItem.Key,
			"carved":      carved.StringFixed(2),
			"added_items": missing,
		})
	}
	return out
}

// detailNames draws unused labels from the bank, numbering any shortfall
func detailNames(t types.Trade, bank []string, existing []Item, n int) []string {
	used := make(map[string]bool, len(existing))
	for _, it := range existing {
		used[it.Name] = true
	}
	names := make([]string, 0, n)
	for _, l := range bank {
		if len(names) == n {
			break
		}
		if !used[l] {
			names = append(names, l)
			used[l] = true
		}
	}
	for k := 1; len(names) < n; k++ {
		name := fmt.Sprintf("%s Detail %d", titleCase(string(t)), k)
		if !used[name] {
			names = append(names, name)
			used[name] = true
		}
	}
	return names
}
