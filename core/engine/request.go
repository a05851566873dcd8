package engine

import (
	"math"
	"strings"

	"building-cost/core/revenue"
	"building-cost/core/types"
	"building-cost/internal/errors"
)

// Request is one calculation. Only BuildingType and SquareFootage are required.
type Request struct {
	BuildingType    types.BuildingType  `json:"building_type" yaml:"building_type"`
	Subtype         string              `json:"subtype,omitempty" yaml:"subtype,omitempty"`
	SquareFootage   float64             `json:"square_footage" yaml:"square_footage"`
	Location        string              `json:"location,omitempty" yaml:"location,omitempty"`
	ProjectClass    string              `json:"project_class,omitempty" yaml:"project_class,omitempty"`
	Floors          int                 `json:"floors,omitempty" yaml:"floors,omitempty"`
	OwnershipType   types.OwnershipType `json:"ownership_type,omitempty" yaml:"ownership_type,omitempty"`
	FinishLevel     string              `json:"finish_level,omitempty" yaml:"finish_level,omitempty"`
	SpecialFeatures []string            `json:"special_features,omitempty" yaml:"special_features,omitempty"`

	// Mixed-use split from the caller and from upstream detection
	MixedUseSplit     map[string]interface{} `json:"mixed_use_split,omitempty" yaml:"mixed_use_split,omitempty"`
	MixedUseSplitHint map[string]interface{} `json:"mixed_use_split_hint,omitempty" yaml:"mixed_use_split_hint,omitempty"`

	// Scope quantities and flags. OfficeShare is a fraction when at most 1
	// and a percentage above 1, so 0.25 and 25 both mean a quarter.
	OfficeShare     *float64 `json:"office_share,omitempty" yaml:"office_share,omitempty"`
	OfficeSF        *float64 `json:"office_sf,omitempty" yaml:"office_sf,omitempty"`
	DockDoors       *float64 `json:"dock_doors,omitempty" yaml:"dock_doors,omitempty"`
	MezzanineSF     *float64 `json:"mezzanine_sf,omitempty" yaml:"mezzanine_sf,omitempty"`
	IncludeDocks    *bool    `json:"include_docks,omitempty" yaml:"include_docks,omitempty"`
	HasBlastFreezer bool     `json:"has_blast_freezer,omitempty" yaml:"has_blast_freezer,omitempty"`

	Revenue revenue.Overrides `json:"revenue_overrides,omitempty" yaml:"revenue_overrides,omitempty"`
}

// Validate checks the fields that cannot be defaulted
func (r *Request) Validate() error {
	if math.IsNaN(r.SquareFootage) || math.IsInf(r.SquareFootage, 0) {
		return errors.Input("square footage must be a finite number").
			WithContext("square_footage", r.SquareFootage)
	}
	if r.SquareFootage <= 0 {
		return errors.Input("square footage must be greater than zero").
			WithContext("square_footage", r.SquareFootage)
	}
	if r.Floors < 0 {
		return errors.Input("floors must not be negative").WithContext("floors", r.Floors)
	}
	if r.OfficeShare != nil {
		share := *r.OfficeShare
		if math.IsNaN(share) || share < 0 || share > 100 {
			return errors.Input("office share must be a fraction (0 to 1) or a percentage (up to 100)").
				WithContext("office_share", share)
		}
	}
	return nil
}

// Defaults for details that leave fields out
const (
	DefaultBuildingType = types.BuildingOffice
	DefaultSubtype      = "class_b"
	DefaultFinishLevel  = "standard"
)

// ProjectDetails is the structured output of an upstream description parser.
// Every field is optional.
type ProjectDetails struct {
	BuildingType      string                 `json:"building_type" yaml:"building_type"`
	Subtype           string                 `json:"subtype" yaml:"subtype"`
	SquareFootage     float64                `json:"square_footage" yaml:"square_footage"`
	Location          string                 `json:"location" yaml:"location"`
	ProjectClass      string                 `json:"project_class" yaml:"project_class"`
	Floors            int                    `json:"floors" yaml:"floors"`
	OwnershipType     string                 `json:"ownership_type" yaml:"ownership_type"`
	FinishLevel       string                 `json:"finish_level" yaml:"finish_level"`
	ServiceLevel      string                 `json:"service_level" yaml:"service_level"`
	SpecialFeatures   []string               `json:"special_features" yaml:"special_features"`
	MixedUseSplitHint map[string]interface{} `json:"mixed_use_split_hint" yaml:"mixed_use_split_hint"`
	OfficeShare       *float64               `json:"office_share" yaml:"office_share"`
}

// RequestFromDetails maps parser output to a Request. A missing building
// type means a commercial office; "commercial" is read the same way.
// Non-zero fields of overrides win over the details.
func RequestFromDetails(d ProjectDetails, overrides Request) (Request, error) {
	req := Request{
		Subtype:           d.Subtype,
		SquareFootage:     d.SquareFootage,
		Location:          strings.TrimSpace(d.Location),
		ProjectClass:      d.ProjectClass,
		Floors:            d.Floors,
		OwnershipType:     types.OwnershipType(types.NormalizeKey(d.OwnershipType)),
		FinishLevel:       firstNonEmpty(d.FinishLevel, d.ServiceLevel, DefaultFinishLevel),
		SpecialFeatures:   d.SpecialFeatures,
		MixedUseSplitHint: d.MixedUseSplitHint,
		OfficeShare:       d.OfficeShare,
	}

	switch bt := types.NormalizeKey(d.BuildingType); bt {
	case "", "commercial":
		req.BuildingType = DefaultBuildingType
		if req.Subtype == "" {
			req.Subtype = DefaultSubtype
		}
	default:
		parsed, err := types.ParseBuildingType(bt)
		if err != nil {
			return Request{}, errors.ConfigNotFound(d.BuildingType, d.Subtype)
		}
		req.BuildingType = parsed
	}

	applyOverrides(&req, overrides)
	return req, nil
}

func applyOverrides(req *Request, o Request) {
	if o.BuildingType != "" {
		req.BuildingType = o.BuildingType
		req.Subtype = o.Subtype
	} else if o.Subtype != "" {
		req.Subtype = o.Subtype
	}
	if o.SquareFootage > 0 {
		req.SquareFootage = o.SquareFootage
	}
	if o.Location != "" {
		req.Location = o.Location
	}
	if o.ProjectClass != "" {
		req.ProjectClass = o.ProjectClass
	}
	if o.Floors > 0 {
		req.Floors = o.Floors
	}
	if o.OwnershipType != "" {
		req.OwnershipType = o.OwnershipType
	}
	if o.FinishLevel != "" {
		req.FinishLevel = o.FinishLevel
	}
	if len(o.SpecialFeatures) > 0 {
		req.SpecialFeatures = o.SpecialFeatures
	}
	if len(o.MixedUseSplit) > 0 {
		req.MixedUseSplit = o.MixedUseSplit
	}
	if o.OfficeShare != nil {
		req.OfficeShare = o.OfficeShare
	}
	if o.OfficeSF != nil {
		req.OfficeSF = o.OfficeSF
	}
	if o.DockDoors != nil {
		req.DockDoors = o.DockDoors
	}
	if o.MezzanineSF != nil {
		req.MezzanineSF = o.MezzanineSF
	}
	if o.IncludeDocks != nil {
		req.IncludeDocks = o.IncludeDocks
	}
	if o.HasBlastFreezer {
		req.HasBlastFreezer = true
	}
	if o.Revenue != (revenue.Overrides{}) {
		req.Revenue = o.Revenue
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
