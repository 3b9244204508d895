package valuation

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"stock_valuation/pkg/core/model"
	"stock_valuation/pkg/core/provider"
)

// Multiple names one peer trading multiple usable by the comparable model.
type Multiple string

const (
	MultiplePE       Multiple = "pe"
	MultiplePB       Multiple = "pb"
	MultiplePS       Multiple = "ps"
	MultipleEVEBITDA Multiple = "ev_ebitda"
	MultipleEVSales  Multiple = "ev_sales"
)

// AllMultiples is the default multiple set.
var AllMultiples = []Multiple{MultiplePE, MultiplePB, MultiplePS, MultipleEVEBITDA, MultipleEVSales}

// ComparableInput selects the target, its peer group and the multiples to
// average. An empty Multiples slice means all of them.
type ComparableInput struct {
	Symbol    string     `json:"symbol"`
	Peers     []string   `json:"peers"`
	Multiples []Multiple `json:"multiples,omitempty"`
}

// snapshot bundles the per-company data the model works from.
type snapshot struct {
	stmt    *model.FinancialStatement
	profile *model.CompanyProfile
	price   float64
}

// Comparable averages each requested multiple across the peer group and
// applies it to the target's own per-share driver. The intrinsic value is the
// unweighted mean of the surviving implied values; the scenario bounds are
// their minimum and maximum rather than a separate recomputation.
func Comparable(ctx context.Context, p provider.DataProvider, in ComparableInput) (*Result, error) {
	multiples := in.Multiples
	if len(multiples) == 0 {
		multiples = AllMultiples
	}

	target, err := fetchSnapshot(ctx, p, in.Symbol)
	if err != nil {
		return nil, err
	}

	// Peer fetches are independent; fan them out. A peer that cannot be
	// fetched is dropped, not fatal — missing-peer handling happens per
	// metric below.
	peers := make([]*snapshot, len(in.Peers))
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for i, sym := range in.Peers {
		i, sym := i, sym
		g.Go(func() error {
			snap, err := fetchSnapshot(gctx, p, sym)
			if err != nil {
				return nil // skip unusable peer
			}
			mu.Lock()
			peers[i] = snap
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	assumptions := map[string]float64{"peer_count": float64(len(in.Peers))}

	var implied []float64
	for _, m := range multiples {
		var sum float64
		var n int
		for _, peer := range peers {
			if peer == nil {
				continue
			}
			if v, ok := peerMultiple(peer, m); ok && v > 0 {
				sum += v
				n++
			}
		}
		if n == 0 {
			continue // no peer has a usable value, drop the metric
		}
		avg := sum / float64(n)

		value, ok := applyMultiple(target, m, avg)
		if !ok {
			continue
		}
		assumptions["avg_"+string(m)] = avg
		assumptions["implied_"+string(m)] = value
		implied = append(implied, value)
	}

	if len(implied) == 0 {
		return nil, fmt.Errorf("%w: no usable peer value for any of %d requested multiples", ErrInsufficientPeerData, len(multiples))
	}

	var sum, min, max float64
	min, max = implied[0], implied[0]
	for _, v := range implied {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	base := sum / float64(len(implied))

	return &Result{
		Symbol:         in.Symbol,
		Model:          ModelComparable,
		IntrinsicValue: base,
		CurrentPrice:   target.price,
		Upside:         upside(base, target.price),
		Assumptions:    assumptions,
		Scenarios:      Scenario{Bearish: min, Base: base, Bullish: max},
	}, nil
}

func fetchSnapshot(ctx context.Context, p provider.DataProvider, symbol string) (*snapshot, error) {
	snap := &snapshot{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stmts, err := p.FinancialStatements(gctx, symbol, model.PeriodAnnual, 1)
		if err != nil {
			return err
		}
		if len(stmts) == 0 {
			return fmt.Errorf("%w: %s has no annual statements", ErrNoFinancialData, symbol)
		}
		snap.stmt = &stmts[0]
		return nil
	})
	g.Go(func() error {
		var err error
		snap.profile, err = p.CompanyProfile(gctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		snap.price, err = p.CurrentPrice(gctx, symbol)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// peerMultiple computes one trading multiple from a peer snapshot. Returns
// false when any required input is absent or non-positive.
func peerMultiple(s *snapshot, m Multiple) (float64, bool) {
	shares, haveShares := model.SharesOutstanding(s.profile, s.stmt)
	switch m {
	case MultiplePE:
		eps, ok := model.Val(s.stmt.EPS)
		if !ok || eps <= 0 {
			return 0, false
		}
		return s.price / eps, true
	case MultiplePB:
		eq, ok := model.Val(s.stmt.TotalEquity)
		if !ok || eq <= 0 || !haveShares || shares <= 0 {
			return 0, false
		}
		return s.price / (eq / shares), true
	case MultiplePS:
		rev, ok := model.Val(s.stmt.Revenue)
		if !ok || rev <= 0 || !haveShares || shares <= 0 {
			return 0, false
		}
		return s.price / (rev / shares), true
	case MultipleEVEBITDA:
		ebitda, ok := model.Val(s.stmt.EBITDA)
		if !ok || ebitda <= 0 {
			return 0, false
		}
		ev, ok := enterpriseValue(s, shares, haveShares)
		if !ok || ev <= 0 {
			return 0, false
		}
		return ev / ebitda, true
	case MultipleEVSales:
		rev, ok := model.Val(s.stmt.Revenue)
		if !ok || rev <= 0 {
			return 0, false
		}
		ev, ok := enterpriseValue(s, shares, haveShares)
		if !ok || ev <= 0 {
			return 0, false
		}
		return ev / rev, true
	}
	return 0, false
}

// applyMultiple turns an averaged peer multiple into an implied per-share
// value for the target. Enterprise-value multiples are brought back to equity
// by subtracting net debt before the per-share division.
func applyMultiple(s *snapshot, m Multiple, avg float64) (float64, bool) {
	shares, haveShares := model.SharesOutstanding(s.profile, s.stmt)
	switch m {
	case MultiplePE:
		eps, ok := model.Val(s.stmt.EPS)
		if !ok || eps <= 0 {
			return 0, false
		}
		return avg * eps, true
	case MultiplePB:
		eq, ok := model.Val(s.stmt.TotalEquity)
		if !ok || eq <= 0 || !haveShares || shares <= 0 {
			return 0, false
		}
		return avg * (eq / shares), true
	case MultiplePS:
		rev, ok := model.Val(s.stmt.Revenue)
		if !ok || rev <= 0 || !haveShares || shares <= 0 {
			return 0, false
		}
		return avg * (rev / shares), true
	case MultipleEVEBITDA:
		ebitda, ok := model.Val(s.stmt.EBITDA)
		if !ok || ebitda <= 0 || !haveShares || shares <= 0 {
			return 0, false
		}
		equity := avg*ebitda - netDebt(s.stmt)
		return equity / shares, true
	case MultipleEVSales:
		rev, ok := model.Val(s.stmt.Revenue)
		if !ok || rev <= 0 || !haveShares || shares <= 0 {
			return 0, false
		}
		equity := avg*rev - netDebt(s.stmt)
		return equity / shares, true
	}
	return 0, false
}

// enterpriseValue is market cap plus net debt. Market cap comes from the
// profile, or price x shares when the profile omits it.
func enterpriseValue(s *snapshot, shares float64, haveShares bool) (float64, bool) {
	cap, ok := model.Val(s.profile.MarketCap)
	if !ok {
		if !haveShares || shares <= 0 {
			return 0, false
		}
		cap = s.price * shares
	}
	return cap + netDebt(s.stmt), true
}

// netDebt is long-term debt less cash and short-term investments. Components
// a statement does not report contribute nothing to the adjustment.
func netDebt(stmt *model.FinancialStatement) float64 {
	var nd float64
	if debt, ok := model.Val(stmt.LongTermDebt); ok {
		nd += debt
	}
	if cash, ok := model.Val(stmt.Cash); ok {
		nd -= cash
	}
	if sti, ok := model.Val(stmt.ShortTermInvestments); ok {
		nd -= sti
	}
	return nd
}
