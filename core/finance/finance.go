// Package finance holds the time-value and debt math used by ownership analysis.
package finance

import (
	"math"
	"strings"
)

// DefaultHoldYears is the cash-flow horizon
const DefaultHoldYears = 10

// IRR solver bounds
const (
	irrMaxIterations = 50
	irrTolerance     = 0.01
	irrMinRate       = -0.99
	irrMaxRate       = 10.0
	irrInitialGuess  = 0.10
)

// NPV discounts flows at rate; flows[0] is year 0 and is not discounted
func NPV(rate float64, flows []float64) float64 {
	npv := 0.0
	for t, cf := range flows {
		npv += cf / math.Pow(1+rate, float64(t))
	}
	return npv
}

func npvDerivative(rate float64, flows []float64) float64 {
	d := 0.0
	for t, cf := range flows {
		if t == 0 {
			continue
		}
		d -= float64(t) * cf / math.Pow(1+rate, float64(t+1))
	}
	return d
}

// IRR solves NPV(rate) = 0 by Newton-Raphson. The rate is clamped to
// [-0.99, 10] after every step; the second return reports convergence
// within 50 iterations.
func IRR(flows []float64) (float64, bool) {
	if len(flows) < 2 {
		return 0, false
	}
	rate := irrInitialGuess
	for i := 0; i < irrMaxIterations; i++ {
		npv := NPV(rate, flows)
		if math.Abs(npv) < irrTolerance {
			return rate, true
		}
		d := npvDerivative(rate, flows)
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return rate, false
		}
		rate -= npv / d
		rate = math.Max(irrMinRate, math.Min(irrMaxRate, rate))
	}
	return rate, math.Abs(NPV(rate, flows)) < irrTolerance
}

// BuildCashFlows returns year 0 = -totalCost, years 1..N = NOI, and adds the
// exit value NOI/exitCap to year N. A non-positive exitCap means no exit.
func BuildCashFlows(totalCost, noi float64, years int, exitCap float64) []float64 {
	if years <= 0 {
		years = DefaultHoldYears
	}
	flows := make([]float64, years+1)
	flows[0] = -totalCost
	for y := 1; y <= years; y++ {
		flows[y] = noi
	}
	if exitCap > 0 {
		flows[years] += noi / exitCap
	}
	return flows
}

// Rates are the market exit cap and discount rates for a building type
type Rates struct {
	ExitCap  float64 `json:"exit_cap_rate"`
	Discount float64 `json:"discount_rate"`
}

var marketRates = []struct {
	match string
	rates Rates
}{
	{"multifamily", Rates{ExitCap: 0.055, Discount: 0.075}},
	{"industrial", Rates{ExitCap: 0.0675, Discount: 0.08}},
	{"office", Rates{ExitCap: 0.0675, Discount: 0.0825}},
	{"hospitality", Rates{ExitCap: 0.085, Discount: 0.10}},
}

// DefaultRates apply when no building type matches
var DefaultRates = Rates{ExitCap: 0.07, Discount: 0.08}

// MarketRates looks up rates by substring of the building type name
func MarketRates(buildingType string) Rates {
	bt := strings.ToLower(buildingType)
	for _, m := range marketRates {
		if strings.Contains(bt, m.match) {
			return m.rates
		}
	}
	return DefaultRates
}

// InterestOnlyDebtService is the annual interest on the financed share of cost
func InterestOnlyDebtService(totalCost, debtRatio, debtRate float64) float64 {
	return totalCost * debtRatio * debtRate
}

// DSCR is NOI over annual debt service; zero debt service gives zero
func DSCR(noi, debtService float64) float64 {
	if debtService <= 0 {
		return 0
	}
	return noi / debtService
}

// PaybackYears is cost over annual cash flow; achievable is false when the
// flow is not positive
func PaybackYears(cost, annualCashFlow float64) (years float64, achievable bool) {
	if annualCashFlow <= 0 {
		return 0, false
	}
	return cost / annualCashFlow, true
}
