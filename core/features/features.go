// Package features resolves requested special-feature ids against a subtype.
package features

import (
	"building-cost/core/catalog"
	"building-cost/core/trace"
	"building-cost/core/types"
)

// Resolution sources, in precedence order
const (
	MatchExact = "exact"
	MatchAlias = "alias"
)

// Match is one requested feature resolved to its canonical id
type Match struct {
	Requested string  `json:"requested"`
	ID        string  `json:"id"`
	MatchedBy string  `json:"matched_by"`
	CostPerSF float64 `json:"cost_per_sf"`
	Cost      float64 `json:"cost"`
}

// Result is the resolved feature set of one calculation
type Result struct {
	Matched []Match  `json:"matched"`
	Ignored []string `json:"ignored,omitempty"`
	Total   float64  `json:"total"`
}

// Canonical maps one requested id to its canonical id: exact match first,
// then the subtype alias table, otherwise none.
func Canonical(cfg *catalog.BuildingConfig, requested string) (id, matchedBy string, ok bool) {
	key := types.NormalizeKey(requested)
	if key == "" {
		return "", "", false
	}
	if _, ok := cfg.SpecialFeatures[key]; ok {
		return key, MatchExact, true
	}
	if target, ok := cfg.FeatureAliases[key]; ok {
		if _, ok := cfg.SpecialFeatures[target]; ok {
			return target, MatchAlias, true
		}
	}
	return "", "", false
}

// Resolve prices the requested features. Each canonical feature is counted
// once regardless of how many requested ids map to it. Unknown ids are
// ignored with an info entry.
func Resolve(cfg *catalog.BuildingConfig, requested []string, squareFootage float64, log *trace.Log) Result {
	res := Result{}
	seen := make(map[string]bool, len(requested))
	for _, req := range requested {
		id, by, ok := Canonical(cfg, req)
		if !ok {
			res.Ignored = append(res.Ignored, req)
			log.Info(trace.CodeUnknownSpecialFeature, "special_features", "feature not offered for this subtype, ignored", map[string]interface{}{
				"feature": req,
				"subtype": cfg.Subtype,
			})
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		perSF := cfg.SpecialFeatures[id]
		m := Match{Requested: req, ID: id, MatchedBy: by, CostPerSF: perSF, Cost: perSF * squareFootage}
		res.Matched = append(res.Matched, m)
		res.Total += m.Cost
	}

	if len(requested) > 0 {
		ids := make([]string, 0, len(res.Matched))
		for _, m := range res.Matched {
			ids = append(ids, m.ID)
		}
		log.Step("special_features", "priced special features", map[string]interface{}{
			"features": ids,
			"total":    res.Total,
		})
	}
	return res
}

// Scale multiplies every matched cost by f
func (r Result) Scale(f float64) Result {
	out := Result{Ignored: r.Ignored, Matched: make([]Match, len(r.Matched))}
	for i, m := range r.Matched {
		m.Cost *= f
		out.Matched[i] = m
		out.Total += m.Cost
	}
	return out
}
