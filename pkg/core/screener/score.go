package screener

// scoreMetric describes one contribution to the composite score. Metrics
// where a lower value is conventionally better (P/E, P/B, debt/equity) are
// inverted after min-max normalization.
type scoreMetric struct {
	weight      float64
	lowerBetter bool
	get         func(Candidate) *float64
}

var scoreMetrics = []scoreMetric{
	{weight: 0.25, lowerBetter: true, get: func(c Candidate) *float64 { return c.PERatio }},
	{weight: 0.15, lowerBetter: true, get: func(c Candidate) *float64 { return c.PBRatio }},
	{weight: 0.15, lowerBetter: true, get: func(c Candidate) *float64 { return c.DebtToEquity }},
	{weight: 0.15, lowerBetter: false, get: func(c Candidate) *float64 { return c.DividendYield }},
	{weight: 0.30, lowerBetter: false, get: func(c Candidate) *float64 { return c.ReturnOnEquity }},
}

// score computes the composite score for every candidate. Normalization is
// min-max over the candidates that actually report the metric; a candidate
// missing a metric simply earns nothing from it rather than being treated as
// if the value were zero.
func score(candidates []Candidate) []Result {
	type bounds struct {
		min, max float64
		seen     bool
	}
	ranges := make([]bounds, len(scoreMetrics))
	for mi, m := range scoreMetrics {
		for _, c := range candidates {
			v := m.get(c)
			if v == nil {
				continue
			}
			if !ranges[mi].seen {
				ranges[mi] = bounds{min: *v, max: *v, seen: true}
				continue
			}
			if *v < ranges[mi].min {
				ranges[mi].min = *v
			}
			if *v > ranges[mi].max {
				ranges[mi].max = *v
			}
		}
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		var total float64
		for mi, m := range scoreMetrics {
			v := m.get(c)
			if v == nil || !ranges[mi].seen {
				continue
			}
			span := ranges[mi].max - ranges[mi].min
			norm := 0.5 // every reporter shares the same value
			if span > 0 {
				norm = (*v - ranges[mi].min) / span
			}
			if m.lowerBetter {
				norm = 1 - norm
			}
			total += m.weight * norm
		}
		results = append(results, Result{Candidate: c, Score: total})
	}
	return results
}
