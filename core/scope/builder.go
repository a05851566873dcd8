package scope

import (
	"go.uber.org/zap"

	"building-cost/core/catalog"
	"building-cost/core/confidence"
	"building-cost/core/trace"
	"building-cost/core/trade"
	"building-cost/core/types"
	"building-cost/internal/errors"
	"building-cost/internal/logging"
)

// ProfileSource looks up declarative scope profiles
type ProfileSource interface {
	ScopeProfile(id string) (*catalog.ScopeProfile, error)
	ScopeProfileIDs() []string
}

type compiledItem struct {
	spec catalog.ItemSpec
	rule QuantityRule
}

type compiledTrade struct {
	trade    types.Trade
	items    []compiledItem
	rescales []catalog.Rescale
}

// CompiledProfile is a scope profile with every quantity rule resolved
type CompiledProfile struct {
	ID     string
	trades map[types.Trade]*compiledTrade
}

// Compile resolves every quantity rule of a profile. The first unknown
// rule fails the whole profile.
func Compile(p *catalog.ScopeProfile) (*CompiledProfile, error) {
	cp := &CompiledProfile{ID: p.ID, trades: make(map[types.Trade]*compiledTrade, len(p.Trades))}
	for _, tp := range p.Trades {
		ct := &compiledTrade{trade: tp.Trade, rescales: tp.Rescales}
		for _, spec := range tp.Items {
			rule, err := CompileRule(spec.QuantityRule, spec.Params, spec.Key, p.ID)
			if err != nil {
				return nil, err
			}
			ct.items = append(ct.items, compiledItem{spec: spec, rule: rule})
		}
		cp.trades[tp.Trade] = ct
	}
	return cp, nil
}

// ValidateProfiles compiles every profile in the source
func ValidateProfiles(src ProfileSource) error {
	for _, id := range src.ScopeProfileIDs() {
		p, err := src.ScopeProfile(id)
		if err != nil {
			return err
		}
		if _, err := Compile(p); err != nil {
			return err
		}
	}
	return nil
}

// Builder produces the scope items of a calculation
type Builder struct {
	profiles   ProfileSource
	generators *Registry
	logger     *zap.Logger
}

// NewBuilder creates a builder over the given profiles and the built-in generators
func NewBuilder(profiles ProfileSource) *Builder {
	return &Builder{
		profiles:   profiles,
		generators: DefaultRegistry(),
		logger:     logging.Named("scope"),
	}
}

// Build produces trade-grouped scope items. A declared profile wins over a
// legacy generator; trades neither covers use the generic template.
func (b *Builder) Build(cfg *catalog.BuildingConfig, breakdown trade.Breakdown, ctx Context, log *trace.Log) ([]TradeScope, error) {
	var profile *CompiledProfile
	var gen Generator
	mode := SourceGeneric

	switch {
	case cfg.ScopeItemsProfile != "":
		p, err := b.profiles.ScopeProfile(cfg.ScopeItemsProfile)
		if err != nil {
			return nil, err
		}
		if profile, err = Compile(p); err != nil {
			return nil, err
		}
		mode = SourceProfile
	case cfg.ScopeGenerator != "":
		g, ok := b.generators.Get(cfg.ScopeGenerator)
		if !ok {
			return nil, errors.ProfileNotFound("scope generator", cfg.ScopeGenerator)
		}
		gen = g
		mode = SourceLegacy
	}

	var scopes []TradeScope
	for _, line := range breakdown.Ordered() {
		var items []Item
		covered := false
		if profile != nil {
			if ct, ok := profile.trades[line.Trade]; ok {
				items = ct.build(line.Amount, ctx, profile.ID, log)
				covered = true
			}
		} else if gen != nil {
			items, covered = gen.Generate(line.Trade, line.Amount, ctx)
		}
		if !covered {
			items = generic(line.Trade, line.Amount, ctx)
		}
		scopes = append(scopes, TradeScope{Trade: line.Trade, Systems: items})
	}

	if cfg.MinItemsPerTrade > 0 {
		scopes = upliftDepth(scopes, cfg.MinItemsPerTrade, cfg.DetailLabels, log)
	}

	count := 0
	for _, ts := range scopes {
		count += len(ts.Systems)
	}
	log.Step("scope_items", "generated scope items", map[string]interface{}{
		"mode":    mode,
		"profile": firstNonEmpty(cfg.ScopeItemsProfile, cfg.ScopeGenerator),
		"items":   count,
	})
	b.logger.Debug("scope built",
		zap.String("subtype", cfg.Subtype),
		zap.String("mode", mode),
		zap.Int("items", count))
	return scopes, nil
}

// build allocates one trade from the profile. Shares above 1 are scaled
// down, zero-quantity triggers hand their share to their targets, and
// omit_if_zero items with no quantity are dropped.
func (ct *compiledTrade) build(amount float64, ctx Context, profileID string, log *trace.Log) []Item {
	n := len(ct.items)
	qty := make([]Quantity, n)
	share := make([]float64, n)
	rescaled := make([]bool, n)
	index := make(map[string]int, n)

	sum := 0.0
	for i, ci := range ct.items {
		qty[i] = ci.rule.Quantity(ctx)
		share[i] = ci.spec.ShareOfTrade
		index[ci.spec.Key] = i
		sum += share[i]
	}
	if sum > 1 {
		for i := range share {
			share[i] /= sum
		}
		log.Step("scope_share_normalized", "profile shares exceeded the trade total and were scaled", map[string]interface{}{
			"profile":   profileID,
			"trade":     string(ct.trade),
			"share_sum": sum,
		})
	}

	for _, rs := range ct.rescales {
		ti, ok := index[rs.Trigger]
		if !ok || qty[ti].Value != 0 || share[ti] == 0 {
			continue
		}
		var targets []int
		weight := 0.0
		for _, key := range rs.Targets {
			if i, ok := index[key]; ok && i != ti {
				targets = append(targets, i)
				weight += share[i]
			}
		}
		if len(targets) == 0 {
			continue
		}
		moved := share[ti]
		share[ti] = 0
		for _, i := range targets {
			if weight > 0 {
				share[i] += moved * share[i] / weight
			} else {
				share[i] += moved / float64(len(targets))
			}
			rescaled[i] = true
		}
		log.Step("scope_rescale", "trigger item has no quantity, share moved to targets", map[string]interface{}{
			"profile": profileID,
			"trade":   string(ct.trade),
			"trigger": rs.Trigger,
			"targets": rs.Targets,
			"share":   moved,
		})
	}

	items := make([]Item, 0, n)
	for i, ci := range ct.items {
		if ci.spec.OmitIfZero && qty[i].Value == 0 {
			continue
		}
		conf := confidence.NewTracker()
		switch {
		case qty[i].Overridden:
		case qty[i].Derived:
			conf.Apply("derived_quantity", ci.rule.Tag())
		case ci.rule.Tag() == RuleConstant:
			conf.Apply("default_ratio", "constant quantity")
		}
		if rescaled[i] {
			conf.Apply("rescaled_share", "received a rescaled share")
		}
		it := newItem(ci.spec.Key, ci.spec.Label, ct.trade, qty[i].Value, ci.spec.Unit, amount*share[i], SourceProfile, conf)
		it.Note = ci.spec.Note
		items = append(items, it)
	}
	return items
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
