// Package synthetic generates a deterministic, seeded company universe and
// serves it through the DataProvider interface. It exists for demos and
// offline development only and is kept strictly outside the valuation engine
// so a generated figure can never be mistaken for a real data path.
package synthetic

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"stock_valuation/pkg/core/model"
	"stock_valuation/pkg/core/provider"
	"stock_valuation/pkg/core/screener"
)

var sectors = map[string][]string{
	"Technology":  {"Software", "Semiconductors", "IT Services"},
	"Healthcare":  {"Pharmaceuticals", "Biotechnology", "Medical Devices"},
	"Financials":  {"Banks", "Insurance", "Asset Management"},
	"Industrials": {"Machinery", "Aerospace & Defense", "Transportation"},
	"Consumer":    {"Retail", "Food & Beverage", "Automotive"},
	"Energy":      {"Oil & Gas", "Renewable Energy"},
	"Utilities":   {"Electric Utilities", "Water Utilities"},
}

type company struct {
	profile    model.CompanyProfile
	statements []model.FinancialStatement // most recent first
	price      float64
	change     float64
	rating     float64
}

// Provider is an in-memory, reproducible DataProvider implementation.
type Provider struct {
	companies map[string]*company
	order     []string
}

// NewProvider builds a universe of n companies from the seed. The same seed
// always yields the same universe.
func NewProvider(seed int64, n int) *Provider {
	rng := rand.New(rand.NewSource(seed))

	sectorNames := make([]string, 0, len(sectors))
	for s := range sectors {
		sectorNames = append(sectorNames, s)
	}
	sort.Strings(sectorNames)

	p := &Provider{companies: make(map[string]*company, n)}
	for i := 0; i < n; i++ {
		sym := symbol(rng)
		if _, dup := p.companies[sym]; dup {
			continue
		}
		sector := sectorNames[rng.Intn(len(sectorNames))]
		industries := sectors[sector]
		c := generate(rng, sym, sector, industries[rng.Intn(len(industries))])
		p.companies[sym] = c
		p.order = append(p.order, sym)
	}
	sort.Strings(p.order)
	return p
}

func symbol(rng *rand.Rand) string {
	letters := make([]byte, 4)
	for i := range letters {
		letters[i] = byte('A' + rng.Intn(26))
	}
	return string(letters)
}

func generate(rng *rand.Rand, sym, sector, industry string) *company {
	price := 5 + rng.Float64()*495
	marketCap := []float64{
		0.1e9 + rng.Float64()*0.9e9,
		1e9 + rng.Float64()*9e9,
		10e9 + rng.Float64()*90e9,
	}[rng.Intn(3)]
	shares := marketCap / price

	paysDividend := rng.Float64() < 0.4
	grossMargin := 0.2 + rng.Float64()*0.5
	netMargin := -0.05 + rng.Float64()*0.3
	growth := -0.05 + rng.Float64()*0.25

	revenue := marketCap * (0.2 + rng.Float64()*0.8)

	c := &company{
		profile: model.CompanyProfile{
			Symbol:            sym,
			Name:              sym + " Corporation",
			Exchange:          "NYSE",
			Sector:            sector,
			Industry:          industry,
			MarketCap:         model.F(marketCap),
			SharesOutstanding: model.F(shares),
		},
		price:  price,
		change: -0.25 + rng.Float64()*0.5,
		rating: 1 + rng.Float64()*4,
	}

	year := time.Now().Year() - 1
	for y := 0; y < 3; y++ {
		// Walk revenue backwards so the most recent year is the largest
		// for growing companies.
		rev := revenue / pow1p(growth, y)
		gp := rev * grossMargin
		opInc := gp * 0.5
		ni := rev * netMargin
		eps := ni / shares
		ocf := ni * 1.2
		capex := rev * 0.06

		stmt := model.FinancialStatement{
			Symbol:     sym,
			Period:     model.PeriodAnnual,
			FiscalYear: year - y,
			Date:       time.Date(year-y, 12, 31, 0, 0, 0, 0, time.UTC),

			Revenue:          model.F(rev),
			CostOfRevenue:    model.F(rev - gp),
			GrossProfit:      model.F(gp),
			OperatingIncome:  model.F(opInc),
			EBITDA:           model.F(opInc * 1.25),
			NetIncome:        model.F(ni),
			EPS:              model.F(eps),
			DilutedEPS:       model.F(eps * 0.98),

			TotalAssets:        model.F(rev * 1.8),
			CurrentAssets:      model.F(rev * 0.6),
			Cash:               model.F(rev * 0.15),
			CurrentLiabilities: model.F(rev * 0.4),
			TotalLiabilities:   model.F(rev * 1.0),
			TotalEquity:        model.F(rev * 0.8),
			LongTermDebt:       model.F(rev * 0.35),

			OperatingCashFlow: model.F(ocf),
			CapEx:             model.F(capex),
			FreeCashFlow:      model.F(ocf - capex),
		}
		// Leave inventory unreported for some companies so consumers see
		// genuine absence, not zero.
		if rng.Float64() < 0.8 {
			stmt.Inventory = model.F(rev * 0.1)
			stmt.ShortTermInvestments = model.F(rev * 0.05)
		}
		if paysDividend && ni > 0 {
			stmt.DividendsPaid = model.F(-(ni * 0.3))
		}
		c.statements = append(c.statements, stmt)
	}
	return c
}

func pow1p(g float64, n int) float64 {
	v := 1.0
	for i := 0; i < n; i++ {
		v *= 1 + g
	}
	return v
}

func (p *Provider) lookup(symbol string) (*company, error) {
	c, ok := p.companies[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", provider.ErrNotFound, symbol)
	}
	return c, nil
}

// FinancialStatements implements provider.DataProvider.
func (p *Provider) FinancialStatements(ctx context.Context, symbol string, period model.Period, limit int) ([]model.FinancialStatement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := p.lookup(symbol)
	if err != nil {
		return nil, err
	}
	stmts := c.statements
	if limit > 0 && limit < len(stmts) {
		stmts = stmts[:limit]
	}
	out := make([]model.FinancialStatement, len(stmts))
	copy(out, stmts)
	return out, nil
}

// CompanyProfile implements provider.DataProvider.
func (p *Provider) CompanyProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := p.lookup(symbol)
	if err != nil {
		return nil, err
	}
	profile := c.profile
	return &profile, nil
}

// CurrentPrice implements provider.DataProvider.
func (p *Provider) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c, err := p.lookup(symbol)
	if err != nil {
		return 0, err
	}
	return c.price, nil
}

// PeersInIndustry implements provider.DataProvider.
func (p *Provider) PeersInIndustry(ctx context.Context, industry string, limit int, excludeSymbol string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var peers []string
	for _, sym := range p.order {
		if sym == excludeSymbol {
			continue
		}
		if p.companies[sym].profile.Industry != industry {
			continue
		}
		peers = append(peers, sym)
		if limit > 0 && len(peers) == limit {
			break
		}
	}
	return peers, nil
}

// Universe implements provider.DataProvider.
func (p *Provider) Universe(ctx context.Context) ([]screener.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]screener.Candidate, 0, len(p.order))
	for _, sym := range p.order {
		c := p.companies[sym]
		latest := &c.statements[0]

		cand := screener.Candidate{
			Symbol:        sym,
			Name:          c.profile.Name,
			Sector:        c.profile.Sector,
			Industry:      c.profile.Industry,
			Price:         c.price,
			MarketCap:     c.profile.MarketCap,
			PriceChange:   model.F(c.change),
			AnalystRating: model.F(c.rating),
		}
		if eps, ok := model.Val(latest.EPS); ok && eps > 0 {
			cand.PERatio = model.F(c.price / eps)
		}
		if shares, ok := model.Val(c.profile.SharesOutstanding); ok && shares > 0 {
			if eq, ok := model.Val(latest.TotalEquity); ok && eq > 0 {
				cand.PBRatio = model.F(c.price / (eq / shares))
			}
			if div, ok := model.Val(latest.DividendsPaid); ok && div < 0 && c.price > 0 {
				cand.DividendYield = model.F((-div / shares) / c.price)
			}
		}
		if ni, okNI := model.Val(latest.NetIncome); okNI {
			if eq, okEq := model.Val(latest.TotalEquity); okEq && eq != 0 {
				cand.ReturnOnEquity = model.F(ni / eq)
			}
		}
		if tl, okL := model.Val(latest.TotalLiabilities); okL {
			if eq, okEq := model.Val(latest.TotalEquity); okEq && eq != 0 {
				cand.DebtToEquity = model.F(tl / eq)
			}
		}
		if len(c.statements) > 1 {
			curr, okC := model.Val(c.statements[0].Revenue)
			prev, okP := model.Val(c.statements[1].Revenue)
			if okC && okP && prev != 0 {
				cand.RevenueGrowth = model.F(curr/prev - 1)
			}
		}
		out = append(out, cand)
	}
	return out, nil
}

// Symbols lists the universe symbols in deterministic order.
func (p *Provider) Symbols() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}
