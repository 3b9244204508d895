// Package model defines the financial data types shared by the valuation and
// screening engine. Every numeric field that can be missing from a filing is a
// *float64: nil means "not reported", which is never the same as zero.
package model

import "time"

// Period identifies the reporting cadence of a statement.
type Period string

const (
	PeriodAnnual    Period = "annual"
	PeriodQuarterly Period = "quarterly"
)

// FinancialStatement is one reported period for one company, as obtained from
// the data provider. Immutable once fetched.
type FinancialStatement struct {
	Symbol     string    `json:"symbol"`
	Period     Period    `json:"period"`
	FiscalYear int       `json:"fiscal_year"`
	Quarter    int       `json:"quarter,omitempty"` // 0 for annual statements
	Date       time.Time `json:"date"`

	// Income statement
	Revenue          *float64 `json:"revenue,omitempty"`
	CostOfRevenue    *float64 `json:"cost_of_revenue,omitempty"`
	GrossProfit      *float64 `json:"gross_profit,omitempty"`
	OperatingExpense *float64 `json:"operating_expense,omitempty"`
	OperatingIncome  *float64 `json:"operating_income,omitempty"`
	EBITDA           *float64 `json:"ebitda,omitempty"`
	NetIncome        *float64 `json:"net_income,omitempty"`
	EPS              *float64 `json:"eps,omitempty"`
	DilutedEPS       *float64 `json:"diluted_eps,omitempty"`

	// Balance sheet
	TotalAssets          *float64 `json:"total_assets,omitempty"`
	CurrentAssets        *float64 `json:"current_assets,omitempty"`
	Cash                 *float64 `json:"cash,omitempty"`
	ShortTermInvestments *float64 `json:"short_term_investments,omitempty"`
	Receivables          *float64 `json:"receivables,omitempty"`
	Inventory            *float64 `json:"inventory,omitempty"`
	TotalLiabilities     *float64 `json:"total_liabilities,omitempty"`
	CurrentLiabilities   *float64 `json:"current_liabilities,omitempty"`
	TotalEquity          *float64 `json:"total_equity,omitempty"`
	LongTermDebt         *float64 `json:"long_term_debt,omitempty"`

	// Cash flow statement
	OperatingCashFlow *float64 `json:"operating_cash_flow,omitempty"`
	CapEx             *float64 `json:"capex,omitempty"` // capital expenditure, positive spend
	FreeCashFlow      *float64 `json:"free_cash_flow,omitempty"`
	DividendsPaid     *float64 `json:"dividends_paid,omitempty"` // negative when dividends were paid
	ShareRepurchase   *float64 `json:"share_repurchase,omitempty"`
}

// CompanyProfile carries the descriptive and market data used to locate peers
// and normalize aggregate values to per-share figures.
type CompanyProfile struct {
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Exchange          string   `json:"exchange"`
	Sector            string   `json:"sector"`
	Industry          string   `json:"industry"`
	MarketCap         *float64 `json:"market_cap,omitempty"`
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty"`
}

// F wraps a literal as an optional field. Mostly used by providers and tests.
func F(v float64) *float64 { return &v }

// Val dereferences an optional field. The second return is false when the
// field is absent.
func Val(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// SharesOutstanding resolves the share count for per-share math. It prefers
// the profile figure and falls back to netIncome / dilutedEPS from the
// statement. Returns false when neither path is available or the derivation
// would divide by zero.
func SharesOutstanding(profile *CompanyProfile, stmt *FinancialStatement) (float64, bool) {
	if profile != nil {
		if shares, ok := Val(profile.SharesOutstanding); ok && shares > 0 {
			return shares, true
		}
	}
	if stmt == nil {
		return 0, false
	}
	ni, okNI := Val(stmt.NetIncome)
	eps, okEPS := Val(stmt.DilutedEPS)
	if !okNI || !okEPS || eps == 0 {
		return 0, false
	}
	return ni / eps, true
}
