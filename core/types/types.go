// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

import (
	"fmt"
	"strings"
)

// BuildingType is the closed set of building categories the catalog knows
type BuildingType string

const (
	BuildingHealthcare  BuildingType = "healthcare"
	BuildingMultifamily BuildingType = "multifamily"
	BuildingOffice      BuildingType = "office"
	BuildingRetail      BuildingType = "retail"
	BuildingRestaurant  BuildingType = "restaurant"
	BuildingIndustrial  BuildingType = "industrial"
	BuildingHospitality BuildingType = "hospitality"
	BuildingEducational BuildingType = "educational"
	BuildingCivic       BuildingType = "civic"
	BuildingMixedUse    BuildingType = "mixed_use"
	BuildingSpecialty   BuildingType = "specialty"
)

// AllBuildingTypes lists every building type in display order
var AllBuildingTypes = []BuildingType{
	BuildingHealthcare,
	BuildingMultifamily,
	BuildingOffice,
	BuildingRetail,
	BuildingRestaurant,
	BuildingIndustrial,
	BuildingHospitality,
	BuildingEducational,
	BuildingCivic,
	BuildingMixedUse,
	BuildingSpecialty,
}

// String returns the string representation
func (b BuildingType) String() string {
	return string(b)
}

// IsValid checks if the building type is a known type
func (b BuildingType) IsValid() bool {
	for _, t := range AllBuildingTypes {
		if t == b {
			return true
		}
	}
	return false
}

// ParseBuildingType normalizes free text ("Mixed-Use", "mixed use") into a BuildingType
func ParseBuildingType(s string) (BuildingType, error) {
	b := BuildingType(normalizeKey(s))
	if !b.IsValid() {
		return "", fmt.Errorf("unknown building type %q", s)
	}
	return b, nil
}

// ProjectClass describes the kind of construction work
type ProjectClass string

const (
	ClassGroundUp          ProjectClass = "ground_up"
	ClassAddition          ProjectClass = "addition"
	ClassRenovation        ProjectClass = "renovation"
	ClassTenantImprovement ProjectClass = "tenant_improvement"
)

// AllProjectClasses lists every project class
var AllProjectClasses = []ProjectClass{
	ClassGroundUp,
	ClassAddition,
	ClassRenovation,
	ClassTenantImprovement,
}

// String returns the string representation
func (p ProjectClass) String() string {
	return string(p)
}

// ParseProjectClass normalizes a project class; empty input means ground-up
func ParseProjectClass(s string) (ProjectClass, error) {
	if strings.TrimSpace(s) == "" {
		return ClassGroundUp, nil
	}
	p := ProjectClass(normalizeKey(s))
	for _, c := range AllProjectClasses {
		if c == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown project class %q", s)
}

// FinishLevel is a quality tier
type FinishLevel string

const (
	FinishBasic    FinishLevel = "basic"
	FinishStandard FinishLevel = "standard"
	FinishPremium  FinishLevel = "premium"
	FinishLuxury   FinishLevel = "luxury"
)

// AllFinishLevels lists the recognised finish levels
var AllFinishLevels = []FinishLevel{FinishBasic, FinishStandard, FinishPremium, FinishLuxury}

// String returns the string representation
func (f FinishLevel) String() string {
	return string(f)
}

// ParseFinishLevel reports whether the text names a known finish level.
// The second return is false for unrecognised input; callers fall back to standard.
func ParseFinishLevel(s string) (FinishLevel, bool) {
	f := FinishLevel(normalizeKey(s))
	for _, l := range AllFinishLevels {
		if l == f {
			return f, true
		}
	}
	return FinishStandard, false
}

// OwnershipType is the capital structure of the owner
type OwnershipType string

const (
	OwnershipForProfit  OwnershipType = "for_profit"
	OwnershipNonProfit  OwnershipType = "non_profit"
	OwnershipGovernment OwnershipType = "government"
	OwnershipPPP        OwnershipType = "public_private_partnership"
)

// String returns the string representation
func (o OwnershipType) String() string {
	return string(o)
}

// Trade is a construction discipline bucket
type Trade string

const (
	TradeStructural Trade = "structural"
	TradeMechanical Trade = "mechanical"
	TradeElectrical Trade = "electrical"
	TradePlumbing   Trade = "plumbing"
	TradeFinishes   Trade = "finishes"
)

// StandardTrades is the display order of trades
var StandardTrades = []Trade{TradeStructural, TradeMechanical, TradeElectrical, TradePlumbing, TradeFinishes}

// String returns the string representation
func (t Trade) String() string {
	return string(t)
}

// TradeRank orders standard trades first; unknown trades sort after them
func TradeRank(t Trade) int {
	for i, s := range StandardTrades {
		if s == t {
			return i
		}
	}
	return len(StandardTrades)
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	return s
}

// NormalizeKey lower-cases text and folds spaces and hyphens to underscores
func NormalizeKey(s string) string {
	return normalizeKey(s)
}
