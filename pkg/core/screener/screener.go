// Package screener filters a company universe against quantitative criteria
// and ranks the survivors by a composite score.
package screener

import "sort"

// Candidate is one company in the screening universe. Metric fields are
// optional: nil means the provider could not supply the figure, and a
// criteria bound on a nil field excludes the candidate.
type Candidate struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Sector   string  `json:"sector"`
	Industry string  `json:"industry"`
	Price    float64 `json:"price"`

	MarketCap      *float64 `json:"market_cap,omitempty"`
	PERatio        *float64 `json:"pe_ratio,omitempty"`
	PBRatio        *float64 `json:"pb_ratio,omitempty"`
	DividendYield  *float64 `json:"dividend_yield,omitempty"`
	ReturnOnEquity *float64 `json:"return_on_equity,omitempty"`
	DebtToEquity   *float64 `json:"debt_to_equity,omitempty"`
	PriceChange    *float64 `json:"price_change,omitempty"`   // fractional change over the provider's reference period
	AnalystRating  *float64 `json:"analyst_rating,omitempty"` // 1 (strong sell) .. 5 (strong buy)
	RevenueGrowth  *float64 `json:"revenue_growth,omitempty"` // YoY fractional growth
}

// Range is an optional [Min, Max] bound. A nil limit imposes no constraint.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r Range) specified() bool { return r.Min != nil || r.Max != nil }

// matches reports whether the optional value satisfies the bound. An
// unspecified bound always matches; a specified bound never matches an
// absent value, because absence cannot be verified against a limit.
func (r Range) matches(v *float64) bool {
	if !r.specified() {
		return true
	}
	if v == nil {
		return false
	}
	if r.Min != nil && *v < *r.Min {
		return false
	}
	if r.Max != nil && *v > *r.Max {
		return false
	}
	return true
}

// Criteria is the conjunction of every specified filter.
type Criteria struct {
	MarketCap      Range `json:"market_cap,omitempty"`
	PERatio        Range `json:"pe_ratio,omitempty"`
	PBRatio        Range `json:"pb_ratio,omitempty"`
	DividendYield  Range `json:"dividend_yield,omitempty"`
	ReturnOnEquity Range `json:"return_on_equity,omitempty"`
	DebtToEquity   Range `json:"debt_to_equity,omitempty"`
	PriceChange    Range `json:"price_change,omitempty"`
	AnalystRating  Range `json:"analyst_rating,omitempty"`
	RevenueGrowth  Range `json:"revenue_growth,omitempty"`

	Sectors    []string `json:"sectors,omitempty"`
	Industries []string `json:"industries,omitempty"`
}

// Matches applies every specified bound and set filter to the candidate.
func (c Criteria) Matches(cand Candidate) bool {
	if !c.MarketCap.matches(cand.MarketCap) ||
		!c.PERatio.matches(cand.PERatio) ||
		!c.PBRatio.matches(cand.PBRatio) ||
		!c.DividendYield.matches(cand.DividendYield) ||
		!c.ReturnOnEquity.matches(cand.ReturnOnEquity) ||
		!c.DebtToEquity.matches(cand.DebtToEquity) ||
		!c.PriceChange.matches(cand.PriceChange) ||
		!c.AnalystRating.matches(cand.AnalystRating) ||
		!c.RevenueGrowth.matches(cand.RevenueGrowth) {
		return false
	}
	if len(c.Sectors) > 0 && !contains(c.Sectors, cand.Sector) {
		return false
	}
	if len(c.Industries) > 0 && !contains(c.Industries, cand.Industry) {
		return false
	}
	return true
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Result is one screened company with its composite score.
type Result struct {
	Candidate
	Score float64 `json:"score"`
}

// Screen filters the universe, scores the survivors, sorts descending by
// score (symbol breaks ties so the ranking is deterministic regardless of
// input order) and truncates to limit. limit <= 0 means no truncation.
func Screen(universe []Candidate, criteria Criteria, limit int) []Result {
	var passed []Candidate
	for _, cand := range universe {
		if criteria.Matches(cand) {
			passed = append(passed, cand)
		}
	}

	results := score(passed)

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Symbol < results[j].Symbol
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
