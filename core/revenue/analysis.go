package revenue

import (
	"go.uber.org/zap"

	"building-cost/core/catalog"
	"building-cost/core/finance"
	"building-cost/core/modifiers"
	"building-cost/core/trace"
	"building-cost/core/types"
	"building-cost/internal/errors"
	"building-cost/internal/logging"
)

// NOI sources
const (
	NOIFromRevenue       = "revenue_model"
	NOIFromNOIPercentage = "noi_percentage"
)

// Investment recommendations
const (
	DecisionGo          = "GO"
	DecisionConditional = "CONDITIONAL"
	DecisionNoGo        = "NO-GO"
)

// TileSource looks up sensitivity tile profiles
type TileSource interface {
	TileProfile(id string) (*catalog.TileProfile, error)
}

// AnalysisInput is everything the ownership analysis reads
type AnalysisInput struct {
	Config           *catalog.BuildingConfig
	Ownership        types.OwnershipType
	Terms            catalog.FinancingTerms
	SquareFootage    float64
	TotalProjectCost float64
	Modifiers        modifiers.Modifiers

	// MixedUseRevenueMultiplier is 1.0 for single-use buildings
	MixedUseRevenueMultiplier float64
	Overrides                 Overrides
}

// RevenueAnalysis is the concluded revenue and NOI
type RevenueAnalysis struct {
	Result
	MarketFactor       float64 `json:"market_factor"`
	MixedUseMultiplier float64 `json:"mixed_use_multiplier"`
	AnnualRevenue      float64 `json:"annual_revenue"`
	Margin             Margin  `json:"operating_margin"`
	NOI                float64 `json:"net_operating_income"`
	NOISource          string  `json:"noi_source"`
}

// ReturnMetrics are the equity-side returns
type ReturnMetrics struct {
	CashOnCash        float64 `json:"cash_on_cash_return"`
	PaybackYears      float64 `json:"payback_years"`
	PaybackAchievable bool    `json:"payback_achievable"`
	YieldOnCost       float64 `json:"yield_on_cost"`
	ExitCapRate       float64 `json:"exit_cap_rate"`
	DiscountRate      float64 `json:"discount_rate"`
	CapRateValue      float64 `json:"cap_rate_value"`
	NPV               float64 `json:"npv"`
	IRR               float64 `json:"irr"`
	IRRConverged      bool    `json:"irr_converged"`
	TargetROI         float64 `json:"target_roi"`
	MeetsTargetROI    bool    `json:"meets_target_roi"`
}

// DebtMetrics are the lender-side metrics. Debt is interest only.
type DebtMetrics struct {
	DebtAmount        float64 `json:"debt_amount"`
	DebtRate          float64 `json:"debt_rate"`
	AnnualDebtService float64 `json:"annual_debt_service"`
	EstimatedNOI      float64 `json:"estimated_noi"`
	EstimatedDSCR     float64 `json:"estimated_dscr"`
	DSCR              float64 `json:"dscr"`
	TargetDSCR        float64 `json:"target_dscr"`
	MeetsTargetDSCR   bool    `json:"meets_target_dscr"`
}

// FundingSources splits total cost by the financing ratios
type FundingSources struct {
	Debt         float64 `json:"debt"`
	Equity       float64 `json:"equity"`
	Philanthropy float64 `json:"philanthropy"`
	Grants       float64 `json:"grants"`
	Unallocated  float64 `json:"unallocated"`
}

// SensitivityTile is one stressed case
type SensitivityTile struct {
	ID            string  `json:"id"`
	Label         string  `json:"label"`
	RevenueDelta  float64 `json:"revenue_delta"`
	CostDelta     float64 `json:"cost_delta"`
	AnnualRevenue float64 `json:"annual_revenue"`
	TotalCost     float64 `json:"total_cost"`
	NOI           float64 `json:"noi"`
	YieldOnCost   float64 `json:"yield_on_cost"`
	DSCR          float64 `json:"dscr"`
	NPV           float64 `json:"npv"`
}

// InvestmentDecision summarises the target checks
type InvestmentDecision struct {
	Recommendation string   `json:"recommendation"`
	Feasible       bool     `json:"feasible"`
	Reasons        []string `json:"reasons,omitempty"`
}

// OwnershipAnalysis is the financial result of one calculation
type OwnershipAnalysis struct {
	OwnershipType  types.OwnershipType `json:"ownership_type"`
	TileProfile    string              `json:"tile_profile"`
	Revenue        RevenueAnalysis     `json:"revenue_analysis"`
	Returns        ReturnMetrics       `json:"return_metrics"`
	Debt           DebtMetrics         `json:"debt_metrics"`
	FundingSources FundingSources      `json:"funding_sources"`
	CashFlows      []float64           `json:"cash_flows"`
	Sensitivity    []SensitivityTile   `json:"sensitivity"`
	Decision       InvestmentDecision  `json:"investment_decision"`
}

// Analyzer runs ownership analysis over a tile source
type Analyzer struct {
	tiles     TileSource
	holdYears int
	logger    *zap.Logger
}

// NewAnalyzer creates an analyzer. A non-positive hold uses the default horizon.
func NewAnalyzer(tiles TileSource, holdYears int) *Analyzer {
	if holdYears <= 0 {
		holdYears = finance.DefaultHoldYears
	}
	return &Analyzer{tiles: tiles, holdYears: holdYears, logger: logging.Named("revenue")}
}

// Analyze computes revenue, NOI, debt, returns and sensitivity.
// A tile profile that cannot be built is a ScenarioBuild error.
func (a *Analyzer) Analyze(in AnalysisInput, log *trace.Log) (*OwnershipAnalysis, error) {
	cfg := in.Config
	total := in.TotalProjectCost
	terms := in.Terms
	mixed := in.MixedUseRevenueMultiplier
	if mixed == 0 {
		mixed = 1.0
	}

	// Revenue
	model := ModelFor(cfg.Type)
	res := model.Compute(Input{
		Config:        cfg,
		SquareFootage: in.SquareFootage,
		QualityFactor: in.Modifiers.RevenueFactor,
		Overrides:     in.Overrides,
	})
	rev := RevenueAnalysis{
		Result:             res,
		MarketFactor:       in.Modifiers.MarketFactor,
		MixedUseMultiplier: mixed,
		AnnualRevenue:      res.Adjusted(in.Modifiers.MarketFactor, mixed),
	}
	rev.Margin = ResolveMargin(cfg, in.Modifiers, res)
	log.Step("revenue", "computed annual revenue", map[string]interface{}{
		"model":            model.Name(),
		"units":            res.Units,
		"revenue_per_unit": res.RevenuePerUnit,
		"base_revenue":     res.BaseRevenue,
		"market_factor":    rev.MarketFactor,
		"quality_factor":   res.QualityFactor,
		"occupancy_rate":   res.OccupancyRate,
		"annual_revenue":   rev.AnnualRevenue,
	})

	// NOI
	estimatedNOI := total * terms.NOIPercentage
	if rev.AnnualRevenue > 0 {
		rev.NOI = rev.AnnualRevenue * rev.Margin.Pct
		rev.NOISource = NOIFromRevenue
	} else {
		rev.NOI = estimatedNOI
		rev.NOISource = NOIFromNOIPercentage
	}
	log.Step("noi", "computed net operating income", map[string]interface{}{
		"margin":        rev.Margin.Pct,
		"margin_source": rev.Margin.Source,
		"noi":           rev.NOI,
		"source":        rev.NOISource,
	})

	// Debt: estimate from noi_percentage, then reconcile with the actual NOI
	debt := DebtMetrics{
		DebtAmount:   total * terms.DebtRatio,
		DebtRate:     terms.DebtRate,
		EstimatedNOI: estimatedNOI,
		TargetDSCR:   terms.TargetDSCR,
	}
	debt.AnnualDebtService = finance.InterestOnlyDebtService(total, terms.DebtRatio, terms.DebtRate)
	debt.EstimatedDSCR = finance.DSCR(estimatedNOI, debt.AnnualDebtService)
	debt.DSCR = finance.DSCR(rev.NOI, debt.AnnualDebtService)
	debt.MeetsTargetDSCR = debt.AnnualDebtService == 0 || debt.DSCR >= terms.TargetDSCR
	log.Adjust(trace.CodeDSCRReconciled, "dscr", "DSCR reconciled with revenue-derived NOI", map[string]interface{}{
		"debt_service":   debt.AnnualDebtService,
		"estimated_noi":  estimatedNOI,
		"estimated_dscr": debt.EstimatedDSCR,
		"noi":            rev.NOI,
		"dscr":           debt.DSCR,
	})

	funding := FundingSources{
		Debt:         total * terms.DebtRatio,
		Equity:       total * terms.EquityRatio,
		Philanthropy: total * terms.PhilanthropyRatio,
		Grants:       total * terms.GrantsRatio,
	}
	funding.Unallocated = total - funding.Debt - funding.Equity - funding.Philanthropy - funding.Grants

	// Returns
	rates := finance.MarketRates(string(cfg.Type))
	flows := finance.BuildCashFlows(total, rev.NOI, a.holdYears, rates.ExitCap)
	ret := ReturnMetrics{
		ExitCapRate:  rates.ExitCap,
		DiscountRate: rates.Discount,
		TargetROI:    terms.TargetROI,
		NPV:          finance.NPV(rates.Discount, flows),
	}
	ret.IRR, ret.IRRConverged = finance.IRR(flows)
	if total > 0 {
		ret.YieldOnCost = rev.NOI / total
	}
	if rates.ExitCap > 0 {
		ret.CapRateValue = rev.NOI / rates.ExitCap
	}
	if funding.Equity > 0 {
		ret.CashOnCash = (rev.NOI - debt.AnnualDebtService) / funding.Equity
	}
	ret.PaybackYears, ret.PaybackAchievable = finance.PaybackYears(total, rev.NOI)
	ret.MeetsTargetROI = terms.TargetROI <= 0 || ret.YieldOnCost >= terms.TargetROI
	log.Step("returns", "computed return metrics", map[string]interface{}{
		"npv":           ret.NPV,
		"irr":           ret.IRR,
		"irr_converged": ret.IRRConverged,
		"yield_on_cost": ret.YieldOnCost,
		"cash_on_cash":  ret.CashOnCash,
	})

	// Sensitivity
	tileID := cfg.TileProfile
	if tileID == "" {
		tileID = catalog.DefaultTileProfile
	}
	tiles, err := a.sensitivity(tileID, rev, debt, total, terms, rates)
	if err != nil {
		a.logger.Error("tile profile could not be built", zap.String("profile", tileID), zap.Error(err))
		return nil, err
	}

	out := &OwnershipAnalysis{
		OwnershipType:  in.Ownership,
		TileProfile:    tileID,
		Revenue:        rev,
		Returns:        ret,
		Debt:           debt,
		FundingSources: funding,
		CashFlows:      flows,
		Sensitivity:    tiles,
	}
	out.Decision = decide(out)
	log.Step("investment_decision", "evaluated investment decision", map[string]interface{}{
		"recommendation": out.Decision.Recommendation,
		"reasons":        out.Decision.Reasons,
	})
	return out, nil
}

func (a *Analyzer) sensitivity(tileID string, rev RevenueAnalysis, debt DebtMetrics, total float64, terms catalog.FinancingTerms, rates finance.Rates) ([]SensitivityTile, error) {
	profile, err := a.tiles.TileProfile(tileID)
	if err != nil {
		return nil, errors.ScenarioBuild(tileID, err)
	}
	if err := profile.Check(); err != nil {
		return nil, errors.ScenarioBuild(tileID, err)
	}

	out := make([]SensitivityTile, 0, len(profile.Tiles))
	for _, t := range profile.Tiles {
		st := SensitivityTile{
			ID:            t.ID,
			Label:         t.Label,
			RevenueDelta:  t.RevenueDelta,
			CostDelta:     t.CostDelta,
			AnnualRevenue: rev.AnnualRevenue * (1 + t.RevenueDelta),
			TotalCost:     total * (1 + t.CostDelta),
		}
		if rev.NOISource == NOIFromRevenue {
			st.NOI = st.AnnualRevenue * rev.Margin.Pct
		} else {
			st.NOI = rev.NOI * (1 + t.RevenueDelta)
		}
		if st.TotalCost > 0 {
			st.YieldOnCost = st.NOI / st.TotalCost
		}
		st.DSCR = finance.DSCR(st.NOI, finance.InterestOnlyDebtService(st.TotalCost, terms.DebtRatio, terms.DebtRate))
		st.NPV = finance.NPV(rates.Discount, finance.BuildCashFlows(st.TotalCost, st.NOI, a.holdYears, rates.ExitCap))
		out = append(out, st)
	}
	return out, nil
}

func decide(a *OwnershipAnalysis) InvestmentDecision {
	var reasons []string
	if a.Revenue.NOI <= 0 {
		reasons = append(reasons, "no positive operating income")
	}
	if a.Returns.NPV < 0 {
		reasons = append(reasons, "negative NPV at market discount rate")
	}
	if !a.Debt.MeetsTargetDSCR {
		reasons = append(reasons, "DSCR below lender target")
	}
	if !a.Returns.MeetsTargetROI {
		reasons = append(reasons, "yield on cost below target ROI")
	}

	switch {
	case len(reasons) == 0:
		return InvestmentDecision{Recommendation: DecisionGo, Feasible: true}
	case a.Revenue.NOI > 0 && a.Debt.MeetsTargetDSCR:
		return InvestmentDecision{Recommendation: DecisionConditional, Feasible: true, Reasons: reasons}
	default:
		return InvestmentDecision{Recommendation: DecisionNoGo, Reasons: reasons}
	}
}
