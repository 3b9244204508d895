package valuation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"stock_valuation/pkg/core/model"
	"stock_valuation/pkg/core/provider"
)

// DefaultDividendYield stands in for the per-share dividend when a company
// has no tracked dividend: 2% of the current price, labeled in the result's
// assumptions so it is never mistaken for a reported payout.
const DefaultDividendYield = 0.02

// DDMInput holds the scalar assumptions for a dividend discount run.
type DDMInput struct {
	Symbol             string  `json:"symbol"`
	DividendGrowthRate float64 `json:"dividend_growth_rate"`
	DiscountRate       float64 `json:"discount_rate"`
}

// DDM values the company as a Gordon-growth perpetuity of its per-share
// dividend: D * (1+g) / (r-g).
func DDM(ctx context.Context, p provider.DataProvider, in DDMInput) (*Result, error) {
	if in.DiscountRate <= in.DividendGrowthRate {
		return nil, fmt.Errorf("%w: discount rate %.4f must exceed dividend growth %.4f",
			ErrInvalidAssumptions, in.DiscountRate, in.DividendGrowthRate)
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

	assumptions := map[string]float64{
		"dividend_growth_rate": in.DividendGrowthRate,
		"discount_rate":        in.DiscountRate,
	}

	// Latest per-share dividend. DividendsPaid is negative when dividends
	// were actually paid; anything else means no tracked dividend, which
	// gets the labeled default-yield substitute instead of a silent zero.
	var dividend float64
	paid, okPaid := model.Val(latest.DividendsPaid)
	if okPaid && paid < 0 {
		shares, err := resolveShares(profile, latest)
		if err != nil {
			return nil, err
		}
		dividend = -paid / shares
		assumptions["shares_outstanding"] = shares
	} else {
		dividend = price * DefaultDividendYield
		assumptions["assumed_dividend_yield"] = DefaultDividendYield
	}
	assumptions["dividend_per_share"] = dividend

	base := gordonGrowth(dividend, in.DiscountRate, in.DividendGrowthRate)

	bearG, bullG := scenarioGrowth(in.DividendGrowthRate)
	// The perpetuity denominator is r - g; an optimistic growth bump must
	// still stay below the discount rate.
	if bullG >= in.DiscountRate {
		bullG = (in.DividendGrowthRate + in.DiscountRate) / 2
	}
	assumptions["bearish_growth_rate"] = bearG
	assumptions["bullish_growth_rate"] = bullG

	return &Result{
		Symbol:         in.Symbol,
		Model:          ModelDDM,
		IntrinsicValue: base,
		CurrentPrice:   price,
		Upside:         upside(base, price),
		Assumptions:    assumptions,
		Scenarios: Scenario{
			Bearish: gordonGrowth(dividend, in.DiscountRate, bearG),
			Base:    base,
			Bullish: gordonGrowth(dividend, in.DiscountRate, bullG),
		},
	}, nil
}

// gordonGrowth is the dividend perpetuity D * (1+g) / (r-g). Callers
// guarantee r > g.
func gordonGrowth(dividend, r, g float64) float64 {
	return dividend * (1 + g) / (r - g)
}
