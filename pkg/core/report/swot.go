package report

import "stock_valuation/pkg/core/ratio"

// SWOT thresholds. A ratio that is absent from the snapshot triggers no rule.
const (
	roeStrong           = 0.15
	roeWeak             = 0.05
	netMarginStrong     = 0.10
	currentRatioWeak    = 1.0
	currentRatioStrong  = 2.0
	debtToEquityHigh    = 2.0
	dividendYieldStrong = 0.03
	peCheap             = 15.0
	peExpensive         = 30.0
	revenueGrowthStrong = 0.10
)

// swot derives the strengths / weaknesses / opportunities / threats lists
// from the computed ratios and year-over-year revenue growth. Pure rule
// table, no free-form text.
func swot(r ratio.FinancialRatio, revGrowth *float64) (strengths, weaknesses, opportunities, threats []string) {
	if roe := r.ReturnOnEquity; roe != nil {
		if *roe > roeStrong {
			strengths = append(strengths, "return on equity above 15%")
		} else if *roe < roeWeak {
			weaknesses = append(weaknesses, "return on equity below 5%")
		}
	}
	if nm := r.NetMargin; nm != nil && *nm > netMarginStrong {
		strengths = append(strengths, "net margin above 10%")
	}
	if cr := r.CurrentRatio; cr != nil {
		if *cr < currentRatioWeak {
			weaknesses = append(weaknesses, "current ratio below 1, short-term liabilities exceed liquid assets")
		} else if *cr > currentRatioStrong {
			strengths = append(strengths, "current ratio above 2")
		}
	}
	if de := r.DebtToEquity; de != nil && *de > debtToEquityHigh {
		weaknesses = append(weaknesses, "debt-to-equity above 2")
		threats = append(threats, "high leverage raises refinancing risk")
	}
	if dy := r.DividendYield; dy != nil && *dy > dividendYieldStrong {
		strengths = append(strengths, "dividend yield above 3%")
	}
	// Multiple-based rules only fire on a real quote; the EPS-derived
	// placeholder price would make them circular.
	if r.PriceBasis == ratio.PriceBasisQuote {
		if pe := r.PERatio; pe != nil && *pe > 0 {
			if *pe < peCheap {
				opportunities = append(opportunities, "price-to-earnings below 15")
			} else if *pe > peExpensive {
				threats = append(threats, "price-to-earnings above 30")
			}
		}
	}
	if revGrowth != nil {
		if *revGrowth > revenueGrowthStrong {
			strengths = append(strengths, "revenue growing above 10% year over year")
			opportunities = append(opportunities, "sustained revenue growth")
		} else if *revGrowth < 0 {
			weaknesses = append(weaknesses, "revenue declined year over year")
			threats = append(threats, "continued revenue decline would compress earnings")
		}
	}
	return strengths, weaknesses, opportunities, threats
}
