// Package report orchestrates the full valuation report: it pulls the
// profile, statements and ratio snapshot, fans out the three valuation
// models, auto-derives peers through the screener, and blends whatever
// succeeded into a consensus target price and a rule-based recommendation.
package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"stock_valuation/pkg/core/config"
	"stock_valuation/pkg/core/model"
	"stock_valuation/pkg/core/provider"
	"stock_valuation/pkg/core/ratio"
	"stock_valuation/pkg/core/screener"
	"stock_valuation/pkg/core/valuation"
)

// Rating is the five-level recommendation scale.
type Rating string

const (
	RatingStrongBuy  Rating = "strong_buy"
	RatingBuy        Rating = "buy"
	RatingHold       Rating = "hold"
	RatingSell       Rating = "sell"
	RatingStrongSell Rating = "strong_sell"
)

// Peer market-cap band: peers are screened to 0.2x - 5x the target's cap.
const (
	peerCapLowerMult = 0.2
	peerCapUpperMult = 5.0
)

// Valuations holds the per-model outcomes. A nil entry means the model was
// not run or failed; the failure reason is in Report.ModelErrors.
type Valuations struct {
	DCF        *valuation.Result `json:"dcf,omitempty"`
	Comparable *valuation.Result `json:"comparable,omitempty"`
	DDM        *valuation.Result `json:"ddm,omitempty"`
}

// Recommendation is the blended, rule-based output of the report.
type Recommendation struct {
	Rating        Rating   `json:"rating"`
	TargetPrice   float64  `json:"target_price"`
	Upside        float64  `json:"upside"`
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// Report is the consolidated output for one symbol.
type Report struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	GeneratedAt time.Time `json:"generated_at"`

	Profile    *model.CompanyProfile      `json:"profile"`
	Statements []model.FinancialStatement `json:"statements"`
	Ratios     ratio.FinancialRatio       `json:"ratios"`
	Valuations Valuations                 `json:"valuations"`
	Peers      []string                   `json:"peers"`

	// ModelErrors records every valuation model that was excluded from the
	// consensus, keyed by model type, so a partial report is
	// distinguishable from a complete one.
	ModelErrors map[string]string `json:"model_errors,omitempty"`

	// Recommendation is nil only when every model failed.
	Recommendation *Recommendation `json:"recommendation,omitempty"`
}

// Synthesizer builds reports. It is stateless apart from its injected
// collaborators and safe for concurrent use.
type Synthesizer struct {
	provider provider.DataProvider
	defaults config.Defaults
}

// NewSynthesizer wires a synthesizer with the given provider and assumption
// defaults.
func NewSynthesizer(p provider.DataProvider, defaults config.Defaults) *Synthesizer {
	return &Synthesizer{provider: p, defaults: defaults}
}

// Generate builds the full report for one symbol. Cancellation of ctx aborts
// every outstanding fetch. Only the absence of financial data is fatal; an
// individual model failure is recorded and excluded from the consensus.
func (s *Synthesizer) Generate(ctx context.Context, symbol string) (*Report, error) {
	var (
		stmts   []model.FinancialStatement
		profile *model.CompanyProfile
		price   float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetched, err := s.provider.FinancialStatements(gctx, symbol, model.PeriodAnnual, 3)
		if err != nil {
			return fmt.Errorf("%w: %v", valuation.ErrNoFinancialData, err)
		}
		if len(fetched) == 0 {
			return fmt.Errorf("%w: %s has no annual statements", valuation.ErrNoFinancialData, symbol)
		}
		stmts = fetched
		return nil
	})
	g.Go(func() error {
		var err error
		profile, err = s.provider.CompanyProfile(gctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		price, err = s.provider.CurrentPrice(gctx, symbol)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	latest := &stmts[0]

	ratios := ratio.Calculate(latest, &ratio.Quote{Price: price})

	peers := s.derivePeers(ctx, profile)

	rep := &Report{
		ID:          uuid.New().String(),
		Symbol:      symbol,
		GeneratedAt: time.Now().UTC(),
		Profile:     profile,
		Statements:  stmts,
		Ratios:      ratios,
		Peers:       peers,
		ModelErrors: map[string]string{},
	}

	// The three models have no data dependency on one another; run them
	// concurrently and collect partial failures without canceling siblings.
	paid, okPaid := model.Val(latest.DividendsPaid)
	runDDM := okPaid && paid < 0

	var mu sync.Mutex
	var wg sync.WaitGroup
	run := func(mt valuation.ModelType, fn func() (*valuation.Result, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := fn()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rep.ModelErrors[string(mt)] = err.Error()
				return
			}
			switch mt {
			case valuation.ModelDCF:
				rep.Valuations.DCF = res
			case valuation.ModelComparable:
				rep.Valuations.Comparable = res
			case valuation.ModelDDM:
				rep.Valuations.DDM = res
			}
		}()
	}

	run(valuation.ModelDCF, func() (*valuation.Result, error) {
		return valuation.DCF(ctx, s.provider, valuation.DCFInput{
			Symbol:          symbol,
			GrowthRate:      s.defaults.DCF.GrowthRate,
			DiscountRate:    s.defaults.DCF.DiscountRate,
			ProjectionYears: s.defaults.DCF.ProjectionYears,
		})
	})
	run(valuation.ModelComparable, func() (*valuation.Result, error) {
		return valuation.Comparable(ctx, s.provider, valuation.ComparableInput{
			Symbol: symbol,
			Peers:  peers,
		})
	})
	if runDDM {
		run(valuation.ModelDDM, func() (*valuation.Result, error) {
			return valuation.DDM(ctx, s.provider, valuation.DDMInput{
				Symbol:             symbol,
				DividendGrowthRate: s.defaults.DDM.DividendGrowthRate,
				DiscountRate:       s.defaults.DDM.DiscountRate,
			})
		})
	} else {
		mu.Lock()
		rep.ModelErrors[string(valuation.ModelDDM)] = "skipped: no dividend paid in latest statement"
		mu.Unlock()
	}
	wg.Wait()

	// A canceled request is not a degraded report. The model goroutines see
	// the cancellation as ordinary fetch errors, so check the context itself
	// after the join.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep.Recommendation = s.recommend(rep, stmts, price)
	return rep, nil
}

// derivePeers screens the universe for companies in the target's industry
// within the market-cap band. When screening yields nothing (no universe, no
// cap, thin industry) it falls back to the provider's own peer list.
func (s *Synthesizer) derivePeers(ctx context.Context, profile *model.CompanyProfile) []string {
	if profile == nil {
		return nil
	}
	limit := s.defaults.PeerLimit
	var peers []string

	if cap, ok := model.Val(profile.MarketCap); ok && profile.Industry != "" {
		if universe, err := s.provider.Universe(ctx); err == nil {
			lo := cap * peerCapLowerMult
			hi := cap * peerCapUpperMult
			criteria := screener.Criteria{
				Industries: []string{profile.Industry},
				MarketCap:  screener.Range{Min: &lo, Max: &hi},
			}
			for _, res := range screener.Screen(universe, criteria, limit+1) {
				if res.Symbol == profile.Symbol {
					continue
				}
				peers = append(peers, res.Symbol)
				if len(peers) == limit {
					break
				}
			}
		}
	}

	if len(peers) == 0 {
		if fallback, err := s.provider.PeersInIndustry(ctx, profile.Industry, limit, profile.Symbol); err == nil {
			peers = fallback
		}
	}
	return peers
}

// recommend blends the successful models into the consensus target price,
// maps the upside to the five-level rating, and attaches the rule-based SWOT
// lists. Returns nil when no model produced a value.
func (s *Synthesizer) recommend(rep *Report, stmts []model.FinancialStatement, price float64) *Recommendation {
	var sum float64
	var n int
	for _, res := range []*valuation.Result{rep.Valuations.DCF, rep.Valuations.Comparable, rep.Valuations.DDM} {
		if res != nil {
			sum += res.IntrinsicValue
			n++
		}
	}
	if n == 0 {
		return nil
	}
	target := sum / float64(n)

	var up float64
	if price != 0 {
		up = target/price - 1
	}

	rec := &Recommendation{
		Rating:      ratingFor(up),
		TargetPrice: target,
		Upside:      up,
	}
	rec.Strengths, rec.Weaknesses, rec.Opportunities, rec.Threats = swot(rep.Ratios, revenueGrowth(stmts))
	return rec
}

// ratingFor maps consensus upside to the five-level scale using the fixed
// 30 / 10 / -10 / -30 percent thresholds.
func ratingFor(upside float64) Rating {
	switch {
	case upside > 0.30:
		return RatingStrongBuy
	case upside > 0.10:
		return RatingBuy
	case upside > -0.10:
		return RatingHold
	case upside > -0.30:
		return RatingSell
	default:
		return RatingStrongSell
	}
}

// revenueGrowth is the year-over-year fractional change between the two most
// recent statements, when both report revenue.
func revenueGrowth(stmts []model.FinancialStatement) *float64 {
	if len(stmts) < 2 {
		return nil
	}
	curr, okC := model.Val(stmts[0].Revenue)
	prev, okP := model.Val(stmts[1].Revenue)
	if !okC || !okP || prev == 0 {
		return nil
	}
	g := curr/prev - 1
	return &g
}
