package screener

import "sort"

// SectorSummary aggregates universe metrics for one sector.
type SectorSummary struct {
	Sector           string   `json:"sector"`
	StockCount       int      `json:"stock_count"`
	TotalMarketCap   float64  `json:"total_market_cap"`
	AvgPriceChange   *float64 `json:"avg_price_change,omitempty"`
	AvgPERatio       *float64 `json:"avg_pe_ratio,omitempty"`
	AvgDividendYield *float64 `json:"avg_dividend_yield,omitempty"`
}

// SectorPerformance groups the universe by sector and averages the metrics
// that are actually reported. Sectors are sorted by average price change,
// best first; sectors with no reported change sort last by name.
func SectorPerformance(universe []Candidate) []SectorSummary {
	type acc struct {
		count                int
		cap                  float64
		chgSum, peSum, dySum float64
		chgN, peN, dyN       int
	}
	bySector := make(map[string]*acc)
	for _, c := range universe {
		a := bySector[c.Sector]
		if a == nil {
			a = &acc{}
			bySector[c.Sector] = a
		}
		a.count++
		if mc := c.MarketCap; mc != nil {
			a.cap += *mc
		}
		if v := c.PriceChange; v != nil {
			a.chgSum += *v
			a.chgN++
		}
		if v := c.PERatio; v != nil {
			a.peSum += *v
			a.peN++
		}
		if v := c.DividendYield; v != nil {
			a.dySum += *v
			a.dyN++
		}
	}

	avg := func(sum float64, n int) *float64 {
		if n == 0 {
			return nil
		}
		v := sum / float64(n)
		return &v
	}

	out := make([]SectorSummary, 0, len(bySector))
	for sector, a := range bySector {
		out = append(out, SectorSummary{
			Sector:           sector,
			StockCount:       a.count,
			TotalMarketCap:   a.cap,
			AvgPriceChange:   avg(a.chgSum, a.chgN),
			AvgPERatio:       avg(a.peSum, a.peN),
			AvgDividendYield: avg(a.dySum, a.dyN),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		ci, cj := out[i].AvgPriceChange, out[j].AvgPriceChange
		switch {
		case ci != nil && cj != nil && *ci != *cj:
			return *ci > *cj
		case ci != nil && cj == nil:
			return true
		case ci == nil && cj != nil:
			return false
		}
		return out[i].Sector < out[j].Sector
	})
	return out
}
