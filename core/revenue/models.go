// Package revenue computes annual revenue by building-type unit economics
// and the ownership analysis built on it.
package revenue

import (
	"building-cost/core/catalog"
	"building-cost/core/types"
)

// Model names
const (
	ModelHealthcare  = "healthcare"
	ModelMultifamily = "multifamily"
	ModelHospitality = "hospitality"
	ModelOffice      = "office"
	ModelDefault     = "default"
	ModelCivic       = "civic"
)

// MarketRateRevenuePerVisit switches healthcare to visit throughput
const MarketRateRevenuePerVisit = "revenue_per_visit"

const daysPerYear = 365

// Overrides are caller-supplied unit economics. Nil fields use the catalog.
type Overrides struct {
	Units       *float64 `json:"units,omitempty" yaml:"units,omitempty"`
	ADR         *float64 `json:"adr,omitempty" yaml:"adr,omitempty"`
	Occupancy   *float64 `json:"occupancy,omitempty" yaml:"occupancy,omitempty"`
	MonthlyRent *float64 `json:"monthly_rent,omitempty" yaml:"monthly_rent,omitempty"`
}

// Input is what a revenue model reads
type Input struct {
	Config        *catalog.BuildingConfig
	SquareFootage float64
	QualityFactor float64
	Overrides     Overrides
}

// OfficeProForma is the office income statement
type OfficeProForma struct {
	PGI            float64 `json:"potential_gross_income"`
	VacancyLoss    float64 `json:"vacancy_credit_loss"`
	EGI            float64 `json:"effective_gross_income"`
	Opex           float64 `json:"operating_expenses"`
	TIAmortization float64 `json:"ti_amortization"`
	LCAmortization float64 `json:"lc_amortization"`
	NOI            float64 `json:"net_operating_income"`
}

// Margin is NOI over EGI
func (p OfficeProForma) Margin() float64 {
	if p.EGI == 0 {
		return 0
	}
	return p.NOI / p.EGI
}

// Throughput is the healthcare visit capacity behind revenue
type Throughput struct {
	Rooms                 float64 `json:"rooms"`
	VisitsPerDay          float64 `json:"visits_per_day"`
	OperatingDays         float64 `json:"operating_days"`
	ReimbursementPerVisit float64 `json:"reimbursement_per_visit"`
	AnnualVisits          float64 `json:"annual_visits"`
}

// Result is the output of a revenue model before market and mixed-use factors
type Result struct {
	Model          string  `json:"model"`
	PrimaryUnit    string  `json:"primary_unit,omitempty"`
	Units          float64 `json:"units"`
	RevenuePerUnit float64 `json:"revenue_per_unit"`
	BaseRevenue    float64 `json:"base_revenue"`
	QualityFactor  float64 `json:"quality_factor"`
	OccupancyRate  float64 `json:"occupancy_rate"`

	// FullyDetermined branches already include quality and occupancy
	FullyDetermined bool            `json:"fully_determined"`
	ProForma        *OfficeProForma `json:"office_pro_forma,omitempty"`
	Throughput      *Throughput     `json:"throughput,omitempty"`
}

// Adjusted concludes revenue: base x market x quality x occupancy x mixed-use
func (r Result) Adjusted(marketFactor, mixedUseMultiplier float64) float64 {
	return r.BaseRevenue * marketFactor * r.QualityFactor * r.OccupancyRate * mixedUseMultiplier
}

// RevenueModel computes base revenue for one building-type variant
type RevenueModel interface {
	Name() string
	Compute(in Input) Result
}

// ModelFor selects the revenue model of a building type
func ModelFor(bt types.BuildingType) RevenueModel {
	switch bt {
	case types.BuildingHealthcare:
		return healthcareModel{}
	case types.BuildingMultifamily:
		return multifamilyModel{}
	case types.BuildingHospitality:
		return hospitalityModel{}
	case types.BuildingOffice:
		return officeModel{}
	case types.BuildingCivic:
		return civicModel{}
	default:
		return defaultModel{}
	}
}

func pick(override *float64, fallback float64) float64 {
	if override != nil {
		return *override
	}
	return fallback
}

func occupancyOr1(v float64) float64 {
	if v <= 0 {
		return 1.0
	}
	return v
}

func unitsFor(in Input) float64 {
	return pick(in.Overrides.Units, in.SquareFootage*in.Config.Financial.UnitsPerSF)
}

type healthcareModel struct{}

func (healthcareModel) Name() string { return ModelHealthcare }

func (healthcareModel) Compute(in Input) Result {
	f := in.Config.Financial
	units := unitsFor(in)
	if f.MarketRateType == MarketRateRevenuePerVisit && f.ReimbursementPerVisit > 0 {
		tp := &Throughput{
			Rooms:                 units,
			VisitsPerDay:          f.VisitsPerDay,
			OperatingDays:         f.OperatingDays,
			ReimbursementPerVisit: f.ReimbursementPerVisit,
		}
		tp.AnnualVisits = units * f.VisitsPerDay * f.OperatingDays
		return Result{
			Model:           ModelHealthcare,
			PrimaryUnit:     f.PrimaryUnit,
			Units:           units,
			RevenuePerUnit:  f.VisitsPerDay * f.OperatingDays * f.ReimbursementPerVisit,
			BaseRevenue:     tp.AnnualVisits * f.ReimbursementPerVisit,
			QualityFactor:   1.0,
			OccupancyRate:   1.0,
			FullyDetermined: true,
			Throughput:      tp,
		}
	}
	return Result{
		Model:          ModelHealthcare,
		PrimaryUnit:    f.PrimaryUnit,
		Units:          units,
		RevenuePerUnit: f.RevenuePerUnit,
		BaseRevenue:    units * f.RevenuePerUnit,
		QualityFactor:  in.QualityFactor,
		OccupancyRate:  occupancyOr1(pick(in.Overrides.Occupancy, f.OccupancyRate)),
	}
}

type multifamilyModel struct{}

func (multifamilyModel) Name() string { return ModelMultifamily }

func (multifamilyModel) Compute(in Input) Result {
	f := in.Config.Financial
	units := unitsFor(in)
	rent := pick(in.Overrides.MonthlyRent, f.MonthlyRent)
	return Result{
		Model:          ModelMultifamily,
		PrimaryUnit:    f.PrimaryUnit,
		Units:          units,
		RevenuePerUnit: rent * 12,
		BaseRevenue:    units * rent * 12,
		QualityFactor:  in.QualityFactor,
		OccupancyRate:  occupancyOr1(pick(in.Overrides.Occupancy, f.OccupancyRate)),
	}
}

type hospitalityModel struct{}

func (hospitalityModel) Name() string { return ModelHospitality }

// Compute applies occupancy inside the room-night formula, so the
// concluding occupancy is 1.0
func (hospitalityModel) Compute(in Input) Result {
	f := in.Config.Financial
	rooms := unitsFor(in)
	adr := pick(in.Overrides.ADR, f.ADR)
	occ := pick(in.Overrides.Occupancy, f.OccupancyRate)
	return Result{
		Model:          ModelHospitality,
		PrimaryUnit:    f.PrimaryUnit,
		Units:          rooms,
		RevenuePerUnit: adr * occ * daysPerYear,
		BaseRevenue:    rooms * adr * occ * daysPerYear,
		QualityFactor:  in.QualityFactor,
		OccupancyRate:  1.0,
	}
}

type officeModel struct{}

func (officeModel) Name() string { return ModelOffice }

func (officeModel) Compute(in Input) Result {
	f := in.Config.Financial
	sf := in.SquareFootage
	occ := occupancyOr1(pick(in.Overrides.Occupancy, f.StabilizedOccupancy))

	p := &OfficeProForma{}
	p.PGI = f.BaseRentPerSF * sf * occ
	p.VacancyLoss = p.PGI * f.VacancyCreditLoss
	p.EGI = p.PGI - p.VacancyLoss
	p.Opex = f.OpexPerSF * sf
	if f.LeaseTermYears > 0 {
		p.TIAmortization = f.TIPerSF * sf * occ / f.LeaseTermYears
	}
	p.LCAmortization = f.LeasingCommissionPct * p.PGI
	p.NOI = p.EGI - p.Opex - p.TIAmortization - p.LCAmortization

	return Result{
		Model:           ModelOffice,
		PrimaryUnit:     f.PrimaryUnit,
		Units:           sf,
		RevenuePerUnit:  f.BaseRentPerSF,
		BaseRevenue:     p.EGI,
		QualityFactor:   1.0,
		OccupancyRate:   1.0,
		FullyDetermined: true,
		ProForma:        p,
	}
}

type defaultModel struct{}

func (defaultModel) Name() string { return ModelDefault }

// Compute prices by units when the subtype has unit economics, else by area
func (defaultModel) Compute(in Input) Result {
	f := in.Config.Financial
	r := Result{
		Model:         ModelDefault,
		PrimaryUnit:   f.PrimaryUnit,
		QualityFactor: in.QualityFactor,
		OccupancyRate: occupancyOr1(pick(in.Overrides.Occupancy, f.OccupancyRate)),
	}
	if f.UnitsPerSF > 0 && f.RevenuePerUnit > 0 {
		r.Units = unitsFor(in)
		r.RevenuePerUnit = f.RevenuePerUnit
	} else {
		r.Units = in.SquareFootage
		r.RevenuePerUnit = f.RevenuePerSF
	}
	r.BaseRevenue = r.Units * r.RevenuePerUnit
	return r
}

type civicModel struct{}

func (civicModel) Name() string { return ModelCivic }

func (civicModel) Compute(in Input) Result {
	return Result{Model: ModelCivic, QualityFactor: 1.0, OccupancyRate: 1.0}
}
