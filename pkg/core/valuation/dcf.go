package valuation

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"stock_valuation/pkg/core/model"
	"stock_valuation/pkg/core/provider"
)

// TerminalGrowthRate is the fixed long-term growth used for the terminal
// value in every DCF run. The discount rate must strictly exceed it.
const TerminalGrowthRate = 0.03

// DCFInput holds the scalar assumptions for a DCF run.
type DCFInput struct {
	Symbol          string  `json:"symbol"`
	GrowthRate      float64 `json:"growth_rate"`
	DiscountRate    float64 `json:"discount_rate"`
	ProjectionYears int     `json:"projection_years"`
}

// DCF projects the latest free cash flow forward, discounts the projection
// and a Gordon-growth terminal value, and divides by shares outstanding to
// reach intrinsic value per share.
func DCF(ctx context.Context, p provider.DataProvider, in DCFInput) (*Result, error) {
	// Preconditions come before any fetch or computation: the terminal
	// value denominator is discountRate - terminalGrowth.
	if in.ProjectionYears < 1 {
		return nil, fmt.Errorf("%w: projection years must be >= 1, got %d", ErrInvalidAssumptions, in.ProjectionYears)
	}
	if in.DiscountRate <= TerminalGrowthRate {
		return nil, fmt.Errorf("%w: discount rate %.4f must exceed terminal growth %.4f",
			ErrInvalidAssumptions, in.DiscountRate, TerminalGrowthRate)
	}

	var (
		stmts   []model.FinancialStatement
		profile *model.CompanyProfile
		price   float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stmts, err = p.FinancialStatements(gctx, in.Symbol, model.PeriodAnnual, 1)
		return err
	})
	g.Go(func() error {
		var err error
		profile, err = p.CompanyProfile(gctx, in.Symbol)
		return err
	})
	g.Go(func() error {
		var err error
		price, err = p.CurrentPrice(gctx, in.Symbol)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, fmt.Errorf("%w: %s has no annual statements", ErrNoFinancialData, in.Symbol)
	}
	latest := &stmts[0]

	baseFCF, ok := freeCashFlow(latest)
	if !ok {
		return nil, fmt.Errorf("%w: %s reports neither free cash flow nor its components", ErrNoFinancialData, in.Symbol)
	}

	shares, err := resolveShares(profile, latest)
	if err != nil {
		return nil, err
	}

	base := dcfPerShare(baseFCF, in.GrowthRate, in.DiscountRate, in.ProjectionYears, shares)
	bearG, bullG := scenarioGrowth(in.GrowthRate)
	bearish := dcfPerShare(baseFCF, bearG, in.DiscountRate, in.ProjectionYears, shares)
	bullish := dcfPerShare(baseFCF, bullG, in.DiscountRate, in.ProjectionYears, shares)

	return &Result{
		Symbol:         in.Symbol,
		Model:          ModelDCF,
		IntrinsicValue: base,
		CurrentPrice:   price,
		Upside:         upside(base, price),
		Assumptions: map[string]float64{
			"growth_rate":          in.GrowthRate,
			"discount_rate":        in.DiscountRate,
			"terminal_growth_rate": TerminalGrowthRate,
			"projection_years":     float64(in.ProjectionYears),
			"base_free_cash_flow":  baseFCF,
			"shares_outstanding":   shares,
			"bearish_growth_rate":  bearG,
			"bullish_growth_rate":  bullG,
		},
		Scenarios: Scenario{Bearish: bearish, Base: base, Bullish: bullish},
	}, nil
}

// dcfPerShare runs one full projection: compound the base cash flow forward,
// discount every projected flow plus the terminal value, and normalize to a
// per-share figure.
func dcfPerShare(baseFCF, growth, discount float64, years int, shares float64) float64 {
	flows := make([]float64, years)
	cf := baseFCF
	for i := range flows {
		cf *= 1 + growth
		flows[i] = cf
	}

	var pv float64
	for t, f := range flows {
		pv += f / math.Pow(1+discount, float64(t+1))
	}

	terminal := flows[years-1] * (1 + TerminalGrowthRate) / (discount - TerminalGrowthRate)
	pv += terminal / math.Pow(1+discount, float64(years))

	return pv / shares
}

// freeCashFlow returns the reported figure, or derives it as operating cash
// flow minus capital expenditure when the direct line is absent.
func freeCashFlow(stmt *model.FinancialStatement) (float64, bool) {
	if fcf, ok := model.Val(stmt.FreeCashFlow); ok {
		return fcf, true
	}
	ocf, okO := model.Val(stmt.OperatingCashFlow)
	capex, okC := model.Val(stmt.CapEx)
	if !okO || !okC {
		return 0, false
	}
	return ocf - capex, true
}

// resolveShares prefers the profile share count and falls back to deriving it
// from netIncome / dilutedEPS. A reported-but-zero diluted EPS is an invalid
// assumption, distinct from the figures simply being absent.
func resolveShares(profile *model.CompanyProfile, stmt *model.FinancialStatement) (float64, error) {
	if profile != nil {
		if shares, ok := model.Val(profile.SharesOutstanding); ok && shares > 0 {
			return shares, nil
		}
	}
	ni, okNI := model.Val(stmt.NetIncome)
	eps, okEPS := model.Val(stmt.DilutedEPS)
	if !okNI || !okEPS {
		return 0, fmt.Errorf("%w: %s has no share count and no net income / diluted EPS to derive one", ErrNoFinancialData, stmt.Symbol)
	}
	if eps == 0 {
		return 0, fmt.Errorf("%w: diluted EPS is zero, cannot derive shares outstanding", ErrInvalidAssumptions)
	}
	return ni / eps, nil
}
