package scope

import (
	"math"

	"building-cost/internal/errors"
)

// Quantity rule tags accepted in scope profiles
const (
	RuleSF              = "sf"
	RuleDockCount       = "dock_count"
	RuleMezzSF          = "mezz_sf"
	RuleOfficeSF        = "office_sf"
	RuleWarehouseSF     = "warehouse_sf"
	RuleRTUCount        = "rtu_count"
	RuleExhaustFanCount = "exhaust_fan_count"
	RuleRestroomGroups  = "restroom_groups"
	RuleConstant        = "constant"
)

// Quantity is a resolved item quantity
type Quantity struct {
	Value float64
	// Overridden is set when the caller supplied the figure
	Overridden bool
	// Derived is set when the figure came from ratios rather than direct input
	Derived bool
}

// QuantityRule derives an item quantity from the calculation context.
// The set of rules is closed; CompileRule is the only constructor.
type QuantityRule interface {
	Tag() string
	Quantity(ctx Context) Quantity
	isQuantityRule()
}

// SFRule is the total square footage
type SFRule struct{}

// DockCountRule is one dock per PerSF square feet, at least Min
type DockCountRule struct {
	PerSF float64
	Min   float64
}

// Area names the portion of the floor area an AreaShareRule measures
type Area string

const (
	AreaMezzanine Area = "mezzanine"
	AreaOffice    Area = "office"
	AreaWarehouse Area = "warehouse"
)

// AreaShareRule is Pct of the floor area unless the caller supplied the area
type AreaShareRule struct {
	Area Area
	Pct  float64
}

// CountRule is square footage divided by SFPerUnit, rounded up, at least Min
type CountRule struct {
	Rule      string
	SFPerUnit float64
	Min       float64
}

// ConstantRule is a fixed quantity
type ConstantRule struct {
	Value float64
}

func (SFRule) isQuantityRule()        {}
func (DockCountRule) isQuantityRule() {}
func (AreaShareRule) isQuantityRule() {}
func (CountRule) isQuantityRule()     {}
func (ConstantRule) isQuantityRule()  {}

// Tag returns the profile tag
func (SFRule) Tag() string { return RuleSF }

// Tag returns the profile tag
func (DockCountRule) Tag() string { return RuleDockCount }

// Tag returns the profile tag
func (r AreaShareRule) Tag() string {
	switch r.Area {
	case AreaMezzanine:
		return RuleMezzSF
	case AreaOffice:
		return RuleOfficeSF
	default:
		return RuleWarehouseSF
	}
}

// Tag returns the profile tag
func (r CountRule) Tag() string { return r.Rule }

// Tag returns the profile tag
func (ConstantRule) Tag() string { return RuleConstant }

// Quantity returns the floor area
func (SFRule) Quantity(ctx Context) Quantity {
	return Quantity{Value: ctx.SquareFootage}
}

// Quantity returns the dock door count
func (r DockCountRule) Quantity(ctx Context) Quantity {
	if ctx.IncludeDocks != nil && !*ctx.IncludeDocks {
		return Quantity{Value: 0, Overridden: true}
	}
	if ctx.DockDoors != nil {
		return Quantity{Value: math.Max(0, *ctx.DockDoors), Overridden: true}
	}
	perSF := r.PerSF
	if perSF <= 0 {
		perSF = 10000
	}
	return Quantity{Value: math.Max(r.Min, math.Ceil(ctx.SquareFootage/perSF)), Derived: true}
}

// Quantity returns the measured area
func (r AreaShareRule) Quantity(ctx Context) Quantity {
	switch r.Area {
	case AreaMezzanine:
		if ctx.MezzanineSF != nil {
			return Quantity{Value: clampArea(*ctx.MezzanineSF, ctx.SquareFootage), Overridden: true}
		}
	case AreaOffice:
		if office, ok := ctx.OfficeArea(); ok {
			return Quantity{Value: office, Overridden: true}
		}
	case AreaWarehouse:
		if office, ok := ctx.OfficeArea(); ok {
			return Quantity{Value: ctx.SquareFootage - office, Overridden: true}
		}
	}
	return Quantity{Value: ctx.SquareFootage * r.Pct, Derived: true}
}

// Quantity returns the unit count
func (r CountRule) Quantity(ctx Context) Quantity {
	if r.SFPerUnit <= 0 {
		return Quantity{Value: r.Min, Derived: true}
	}
	return Quantity{Value: math.Max(r.Min, math.Ceil(ctx.SquareFootage/r.SFPerUnit)), Derived: true}
}

// Quantity returns the constant
func (r ConstantRule) Quantity(Context) Quantity {
	return Quantity{Value: r.Value}
}

// CompileRule turns a profile tag and its params into a QuantityRule.
// An unknown tag is a configuration defect and fails naming the item and profile.
func CompileRule(tag string, params map[string]float64, itemKey, profileID string) (QuantityRule, error) {
	switch tag {
	case RuleSF:
		return SFRule{}, nil
	case RuleDockCount:
		return DockCountRule{PerSF: param(params, "per_sf", 10000), Min: param(params, "min", 0)}, nil
	case RuleMezzSF:
		return AreaShareRule{Area: AreaMezzanine, Pct: param(params, "pct", 0)}, nil
	case RuleOfficeSF:
		return AreaShareRule{Area: AreaOffice, Pct: param(params, "pct", 0)}, nil
	case RuleWarehouseSF:
		return AreaShareRule{Area: AreaWarehouse, Pct: param(params, "pct", 1)}, nil
	case RuleRTUCount, RuleExhaustFanCount, RuleRestroomGroups:
		return CountRule{Rule: tag, SFPerUnit: param(params, "sf_per_unit", 0), Min: param(params, "min", 1)}, nil
	case RuleConstant:
		return ConstantRule{Value: param(params, "value", 1)}, nil
	default:
		return nil, errors.UnsupportedQuantityRule(tag, itemKey, profileID)
	}
}

func param(params map[string]float64, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return fallback
}

func clampArea(v, sf float64) float64 {
	return math.Min(math.Max(0, v), sf)
}
