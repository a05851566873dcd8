// Package catalog - Catalog validation
// Ensures catalog integrity and enforces invariants.
package catalog

import (
	stderrors "errors"
	"fmt"
	"math"

	"building-cost/core/types"
)

// ValidationRule is a catalog validation rule applied to each building configuration
type ValidationRule func(*Store, *BuildingConfig) error

// Warning marks a validation finding that does not block loading
type Warning struct {
	Message string
}

func (w *Warning) Error() string {
	return w.Message
}

func warnf(format string, args ...interface{}) error {
	return &Warning{Message: fmt.Sprintf(format, args...)}
}

// tradeSumTolerance is how far trade percentages may drift from 1.0 before a warning
const tradeSumTolerance = 0.02

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validateBaseCost,
		validateTradeSum,
		validateProfileReferences,
		validateOwnershipPresent,
		validateFinancingRatios,
		validateCostClamp,
	}
}

// Validate checks every building configuration against the rules and
// splits findings into warnings and errors.
func (s *Store) Validate(rules []ValidationRule) (warnings []error, errs []error) {
	s.each(func(cfg *BuildingConfig) {
		for _, rule := range rules {
			err := rule(s, cfg)
			if err == nil {
				continue
			}
			wrapped := fmt.Errorf("%s/%s: %w", cfg.Type, cfg.Subtype, err)
			var w *Warning
			if stderrors.As(err, &w) {
				warnings = append(warnings, wrapped)
			} else {
				errs = append(errs, wrapped)
			}
		}
	})

	for _, bt := range s.BuildingTypes() {
		d, ok := s.typeDefaults[bt]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: missing building_type block", bt))
			continue
		}
		if _, ok := s.buildings[bt][d.DefaultSubtype]; !ok {
			errs = append(errs, fmt.Errorf("%s: default_subtype %q is not configured", bt, d.DefaultSubtype))
		}
	}

	for _, id := range s.TileProfileIDs() {
		if err := s.tileProfiles[id].Check(); err != nil {
			warnings = append(warnings, &Warning{Message: fmt.Sprintf("tile_profile %s: %v", id, err)})
		}
	}
	return warnings, errs
}

// validateBaseCost ensures a positive base cost
func validateBaseCost(_ *Store, c *BuildingConfig) error {
	if c.BaseCostPerSF <= 0 {
		return fmt.Errorf("base_cost_per_sf must be positive, got %v", c.BaseCostPerSF)
	}
	if len(c.Trades) == 0 {
		return fmt.Errorf("no trades configured")
	}
	return nil
}

// validateTradeSum flags trade percentages that drift from 1.0.
// The engine never depends on the sum, so this is a warning only.
func validateTradeSum(_ *Store, c *BuildingConfig) error {
	sum := 0.0
	for _, t := range types.StandardTrades {
		sum += c.Trades[t]
	}
	for t, v := range c.Trades {
		if types.TradeRank(t) == len(types.StandardTrades) {
			sum += v
		}
	}
	if math.Abs(sum-1.0) > tradeSumTolerance {
		return warnf("trade percentages sum to %.3f", sum)
	}
	return nil
}

// validateProfileReferences ensures referenced profiles exist
func validateProfileReferences(s *Store, c *BuildingConfig) error {
	if c.ScopeItemsProfile != "" {
		if _, err := s.ScopeProfile(c.ScopeItemsProfile); err != nil {
			return err
		}
	}
	if c.TileProfile != "" {
		if _, err := s.TileProfile(c.TileProfile); err != nil {
			return err
		}
	}
	return nil
}

// validateOwnershipPresent ensures at least one ownership type is configured
func validateOwnershipPresent(_ *Store, c *BuildingConfig) error {
	if len(c.Ownership) == 0 {
		return fmt.Errorf("no ownership types configured")
	}
	return nil
}

// validateFinancingRatios ensures ratios are fractions
func validateFinancingRatios(_ *Store, c *BuildingConfig) error {
	for _, o := range c.Ownership {
		t := o.Terms
		ratios := []struct {
			name  string
			value float64
		}{
			{"debt_ratio", t.DebtRatio},
			{"equity_ratio", t.EquityRatio},
			{"philanthropy_ratio", t.PhilanthropyRatio},
			{"grants_ratio", t.GrantsRatio},
		}
		for _, r := range ratios {
			if r.value < 0 || r.value > 1 {
				return fmt.Errorf("ownership %s: %s %v outside [0, 1]", o.Type, r.name, r.value)
			}
		}
		if t.DebtRatio+t.EquityRatio+t.PhilanthropyRatio+t.GrantsRatio > 1.0+1e-9 {
			return warnf("ownership %s: funding ratios exceed 1.0", o.Type)
		}
	}
	return nil
}

// validateCostClamp ensures the clamp band is ordered
func validateCostClamp(_ *Store, c *BuildingConfig) error {
	if c.CostClamp == nil {
		return nil
	}
	if c.CostClamp.Min < 0 {
		return fmt.Errorf("cost_clamp min %v is negative", c.CostClamp.Min)
	}
	if c.CostClamp.Max > 0 && c.CostClamp.Max < c.CostClamp.Min {
		return fmt.Errorf("cost_clamp max %v below min %v", c.CostClamp.Max, c.CostClamp.Min)
	}
	return nil
}

// Check verifies a tile profile can be turned into sensitivity scenarios
func (p *TileProfile) Check() error {
	if len(p.Tiles) == 0 {
		return fmt.Errorf("no tiles declared")
	}
	for _, t := range p.Tiles {
		if t.Label == "" {
			return fmt.Errorf("tile %s has no label", t.ID)
		}
		if t.RevenueDelta <= -1 || t.CostDelta <= -1 {
			return fmt.Errorf("tile %s removes all revenue or cost", t.ID)
		}
		if t.RevenueDelta == 0 && t.CostDelta == 0 {
			return fmt.Errorf("tile %s changes nothing", t.ID)
		}
	}
	return nil
}
