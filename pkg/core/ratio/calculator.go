// Package ratio derives a point-in-time ratio snapshot from a single
// financial statement. Every output field is optional: a ratio is present only
// when all of its inputs are present and its denominator is non-zero. A
// missing input never raises an error and is never coerced to zero.
package ratio

import "stock_valuation/pkg/core/model"

// PriceBasis tells consumers whether valuation multiples were computed from a
// real market quote or from the EPS-derived placeholder price.
type PriceBasis string

const (
	PriceBasisQuote   PriceBasis = "quote"
	PriceBasisDerived PriceBasis = "derived"
	PriceBasisNone    PriceBasis = ""
)

// derivedPriceEPSMultiple is the placeholder multiple applied to EPS when no
// market quote is supplied. Multiples computed from it are tagged
// PriceBasisDerived and must not be mistaken for quote-based multiples.
const derivedPriceEPSMultiple = 15.0

// Quote is an optional market price input to the calculator.
type Quote struct {
	Price float64
}

// FinancialRatio is a pure projection of one FinancialStatement. It is never
// persisted on its own.
type FinancialRatio struct {
	Symbol     string `json:"symbol"`
	FiscalYear int    `json:"fiscal_year"`

	// Profitability
	GrossMargin     *float64 `json:"gross_margin,omitempty"`
	OperatingMargin *float64 `json:"operating_margin,omitempty"`
	NetMargin       *float64 `json:"net_margin,omitempty"`
	ReturnOnAssets  *float64 `json:"return_on_assets,omitempty"`
	ReturnOnEquity  *float64 `json:"return_on_equity,omitempty"`

	// Liquidity
	CurrentRatio *float64 `json:"current_ratio,omitempty"`
	QuickRatio   *float64 `json:"quick_ratio,omitempty"`
	CashRatio    *float64 `json:"cash_ratio,omitempty"`

	// Efficiency
	AssetTurnover       *float64 `json:"asset_turnover,omitempty"`
	InventoryTurnover   *float64 `json:"inventory_turnover,omitempty"`
	ReceivablesTurnover *float64 `json:"receivables_turnover,omitempty"`

	// Solvency
	DebtToEquity *float64 `json:"debt_to_equity,omitempty"`
	DebtToAssets *float64 `json:"debt_to_assets,omitempty"`

	// Valuation multiples (require a per-share price)
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	PBRatio       *float64 `json:"pb_ratio,omitempty"`
	PSRatio       *float64 `json:"ps_ratio,omitempty"`
	PriceToFCF    *float64 `json:"price_to_fcf,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
	PayoutRatio   *float64 `json:"payout_ratio,omitempty"`

	Price      *float64   `json:"price,omitempty"`
	PriceBasis PriceBasis `json:"price_basis,omitempty"`
}

// safeDiv returns num/den when both operands are present and den is non-zero,
// otherwise nil.
func safeDiv(num, den *float64) *float64 {
	n, okN := model.Val(num)
	d, okD := model.Val(den)
	if !okN || !okD || d == 0 {
		return nil
	}
	v := n / d
	return &v
}

// sum2 adds two optional values. The first must be present; the second
// contributes only when reported.
func sum2(a, b *float64) *float64 {
	av, ok := model.Val(a)
	if !ok {
		return nil
	}
	if bv, ok := model.Val(b); ok {
		av += bv
	}
	return &av
}

// Calculate derives the full ratio snapshot for one statement. quote may be
// nil; in that case a placeholder price of derivedPriceEPSMultiple x EPS
// stands in for the valuation multiples and the result is tagged
// PriceBasisDerived.
func Calculate(stmt *model.FinancialStatement, quote *Quote) FinancialRatio {
	r := FinancialRatio{Symbol: stmt.Symbol, FiscalYear: stmt.FiscalYear}

	// Profitability
	r.GrossMargin = safeDiv(stmt.GrossProfit, stmt.Revenue)
	r.OperatingMargin = safeDiv(stmt.OperatingIncome, stmt.Revenue)
	r.NetMargin = safeDiv(stmt.NetIncome, stmt.Revenue)
	r.ReturnOnAssets = safeDiv(stmt.NetIncome, stmt.TotalAssets)
	r.ReturnOnEquity = safeDiv(stmt.NetIncome, stmt.TotalEquity)

	// Liquidity
	r.CurrentRatio = safeDiv(stmt.CurrentAssets, stmt.CurrentLiabilities)
	if ca, ok := model.Val(stmt.CurrentAssets); ok {
		if inv, ok := model.Val(stmt.Inventory); ok {
			quick := ca - inv
			r.QuickRatio = safeDiv(&quick, stmt.CurrentLiabilities)
		}
	}
	r.CashRatio = safeDiv(sum2(stmt.Cash, stmt.ShortTermInvestments), stmt.CurrentLiabilities)

	// Efficiency
	r.AssetTurnover = safeDiv(stmt.Revenue, stmt.TotalAssets)
	r.InventoryTurnover = safeDiv(stmt.CostOfRevenue, stmt.Inventory)
	r.ReceivablesTurnover = safeDiv(stmt.Revenue, stmt.Receivables)

	// Solvency
	r.DebtToEquity = safeDiv(stmt.TotalLiabilities, stmt.TotalEquity)
	r.DebtToAssets = safeDiv(stmt.TotalLiabilities, stmt.TotalAssets)

	// Valuation multiples need a per-share price.
	price, basis := resolvePrice(stmt, quote)
	if basis == PriceBasisNone {
		return r
	}
	r.Price = &price
	r.PriceBasis = basis

	r.PERatio = safeDiv(&price, stmt.EPS)

	// Book value, sales and FCF per share need a share count, derived from
	// netIncome / dilutedEPS when the statement allows it.
	if shares, ok := model.SharesOutstanding(nil, stmt); ok && shares > 0 {
		if eq, ok := model.Val(stmt.TotalEquity); ok {
			bps := eq / shares
			r.PBRatio = safeDiv(&price, &bps)
		}
		if rev, ok := model.Val(stmt.Revenue); ok {
			sps := rev / shares
			r.PSRatio = safeDiv(&price, &sps)
		}
		if fcf, ok := model.Val(stmt.FreeCashFlow); ok {
			fps := fcf / shares
			r.PriceToFCF = safeDiv(&price, &fps)
		}
		if div, ok := model.Val(stmt.DividendsPaid); ok && div < 0 {
			dps := -div / shares
			if price != 0 {
				y := dps / price
				r.DividendYield = &y
			}
		}
	}
	if div, ok := model.Val(stmt.DividendsPaid); ok && div < 0 {
		paid := -div
		r.PayoutRatio = safeDiv(&paid, stmt.NetIncome)
	}

	return r
}

// resolvePrice picks the market quote when one was supplied, otherwise falls
// back to the EPS-derived placeholder. Returns PriceBasisNone when neither is
// available.
func resolvePrice(stmt *model.FinancialStatement, quote *Quote) (float64, PriceBasis) {
	if quote != nil && quote.Price > 0 {
		return quote.Price, PriceBasisQuote
	}
	if eps, ok := model.Val(stmt.EPS); ok && eps > 0 {
		return eps * derivedPriceEPSMultiple, PriceBasisDerived
	}
	return 0, PriceBasisNone
}
