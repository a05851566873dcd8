// Package mixeduse resolves the component split of mixed-use buildings and
// turns it into weighted cost and revenue multipliers.
package mixeduse

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"building-cost/core/catalog"
	"building-cost/core/determinism"
	"building-cost/core/trace"
	"building-cost/core/types"
)

// Source of the split that was finally used
const (
	SourceExplicit = "explicit"
	SourceHint     = "hint"
	SourceDefault  = "default"
)

const sumTolerance = 1e-6

// DefaultPair is used when a subtype declares no default split
var DefaultPair = map[string]float64{"office": 50, "residential": 50}

// ComponentSource looks up per-component multipliers
type ComponentSource interface {
	MixedUseComponent(name string) (catalog.MixedUseComponent, bool)
}

// Split is the resolved component allocation, in percent summing to 100
type Split struct {
	Components           map[string]float64 `json:"split"`
	Source               string             `json:"source"`
	NormalizationApplied bool               `json:"normalization_applied"`
	InferredCounterpart  string             `json:"inferred_counterpart,omitempty"`
	InvalidMix           bool               `json:"invalid_mix"`
	Diagnostics          []string           `json:"diagnostics,omitempty"`
	CostMultiplier       float64            `json:"cost_multiplier"`
	RevenueMultiplier    float64            `json:"revenue_multiplier"`
}

// Neutral is the split of a building that is not mixed use
func Neutral() Split {
	return Split{CostMultiplier: 1.0, RevenueMultiplier: 1.0, Source: SourceDefault}
}

// Resolve picks the split from explicit input, then the upstream hint, then
// the subtype default. Invalid input never fails; it falls back to the
// default split and is flagged with InvalidMix.
func Resolve(components ComponentSource, cfg *catalog.BuildingConfig, explicit, hint map[string]interface{}, log *trace.Log) Split {
	defaults := DefaultPair
	if cfg != nil && len(cfg.MixedUseDefault) > 0 {
		defaults = cfg.MixedUseDefault
	}

	raw, source := explicit, SourceExplicit
	if len(raw) == 0 {
		raw, source = hint, SourceHint
	}

	var split Split
	if len(raw) == 0 {
		split = Split{Components: copySplit(defaults), Source: SourceDefault}
	} else {
		parsed, diags := parse(components, raw, defaults)
		if len(diags) > 0 {
			split = Split{
				Components:  copySplit(defaults),
				Source:      SourceDefault,
				InvalidMix:  true,
				Diagnostics: diags,
			}
			log.Warn(trace.CodeInvalidMixedUseSplit, "mixed_use_split", "invalid mixed-use split, using default", map[string]interface{}{
				"input":       raw,
				"diagnostics": diags,
			})
		} else {
			split = parsed
			split.Source = source
		}
	}

	split.CostMultiplier, split.RevenueMultiplier = weighted(components, split.Components)
	log.Step("mixed_use_split", "resolved mixed-use split", map[string]interface{}{
		"split":                 split.Components,
		"source":                split.Source,
		"normalization_applied": split.NormalizationApplied,
		"cost_multiplier":       split.CostMultiplier,
		"revenue_multiplier":    split.RevenueMultiplier,
	})
	return split
}

func parse(components ComponentSource, raw map[string]interface{}, defaults map[string]float64) (Split, []string) {
	var diags []string
	values := make(map[string]float64, len(raw))
	anyPercent := false

	for _, key := range determinism.SortedKeys(raw) {
		name := types.NormalizeKey(key)
		if _, ok := components.MixedUseComponent(name); !ok {
			diags = append(diags, fmt.Sprintf("unknown component %q", key))
			continue
		}
		v, isPercent, err := ParseValue(raw[key])
		if err != nil {
			diags = append(diags, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		if v < 0 {
			diags = append(diags, fmt.Sprintf("%s: negative share %v", key, v))
			continue
		}
		anyPercent = anyPercent || isPercent
		values[name] += v
	}
	if len(diags) > 0 {
		return Split{}, diags
	}

	// All shares at or below 1 are fractions unless a percent sign said otherwise
	if !anyPercent && allFractions(values) {
		for k := range values {
			values[k] *= 100
		}
	}

	split := Split{}
	if len(values) == 1 {
		var only string
		for k := range values {
			only = k
		}
		v := values[only]
		if v > 100+sumTolerance {
			return Split{}, []string{fmt.Sprintf("%s: single component share %v exceeds 100", only, v)}
		}
		if counterpart := inferCounterpart(only, defaults); counterpart != "" && v < 100 {
			values[counterpart] = 100 - v
			split.InferredCounterpart = counterpart
		}
	}

	sum := 0.0
	for _, k := range determinism.SortedKeys(values) {
		sum += values[k]
	}
	if sum <= 0 {
		return Split{}, []string{"shares sum to zero"}
	}
	if math.Abs(sum-100) > sumTolerance {
		for k := range values {
			values[k] = values[k] * 100 / sum
		}
		split.NormalizationApplied = true
	}
	split.Components = values
	return split, nil
}

// ParseValue reads a share given as a number or as text like "30", "30%" or "0.3".
// The second return reports whether the text carried a percent sign.
func ParseValue(v interface{}) (float64, bool, error) {
	switch n := v.(type) {
	case float64:
		return n, false, nil
	case float32:
		return float64(n), false, nil
	case int:
		return float64(n), false, nil
	case int64:
		return float64(n), false, nil
	case json.Number:
		f, err := n.Float64()
		return f, false, err
	case string:
		s := strings.TrimSpace(n)
		isPercent := strings.HasSuffix(s, "%")
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, fmt.Errorf("not a number: %q", n)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false, fmt.Errorf("not a finite number: %q", n)
		}
		return f, isPercent, nil
	default:
		return 0, false, fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}

func allFractions(values map[string]float64) bool {
	for _, v := range values {
		if v > 1 {
			return false
		}
	}
	return true
}

// inferCounterpart picks the largest default component other than name
func inferCounterpart(name string, defaults map[string]float64) string {
	keys := determinism.SortedKeys(defaults)
	sort.SliceStable(keys, func(i, j int) bool { return defaults[keys[i]] > defaults[keys[j]] })
	for _, k := range keys {
		if k != name {
			return k
		}
	}
	return ""
}

func weighted(components ComponentSource, split map[string]float64) (cost, revenue float64) {
	if len(split) == 0 {
		return 1.0, 1.0
	}
	for _, k := range determinism.SortedKeys(split) {
		share := split[k] / 100
		c, ok := components.MixedUseComponent(k)
		if !ok {
			cost += share
			revenue += share
			continue
		}
		cost += share * c.CostMultiplier
		revenue += share * c.RevenueMultiplier
	}
	return cost, revenue
}

func copySplit(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
