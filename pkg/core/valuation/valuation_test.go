package valuation

import (
	"context"
	"errors"
	"math"
	"testing"

	"stock_valuation/pkg/core/model"
	"stock_valuation/pkg/core/provider"
	"stock_valuation/pkg/core/screener"
)

// fakeCompany is one symbol's worth of provider data.
type fakeCompany struct {
	stmts   []model.FinancialStatement
	profile *model.CompanyProfile
	price   float64
}

type fakeProvider struct {
	companies map[string]fakeCompany
}

func (f *fakeProvider) lookup(symbol string) (fakeCompany, error) {
	c, ok := f.companies[symbol]
	if !ok {
		return fakeCompany{}, provider.ErrNotFound
	}
	return c, nil
}

func (f *fakeProvider) FinancialStatements(_ context.Context, symbol string, _ model.Period, limit int) ([]model.FinancialStatement, error) {
	c, err := f.lookup(symbol)
	if err != nil {
		return nil, err
	}
	stmts := c.stmts
	if limit > 0 && limit < len(stmts) {
		stmts = stmts[:limit]
	}
	return stmts, nil
}

func (f *fakeProvider) CompanyProfile(_ context.Context, symbol string) (*model.CompanyProfile, error) {
	c, err := f.lookup(symbol)
	if err != nil {
		return nil, err
	}
	if c.profile == nil {
		return &model.CompanyProfile{Symbol: symbol}, nil
	}
	return c.profile, nil
}

func (f *fakeProvider) CurrentPrice(_ context.Context, symbol string) (float64, error) {
	c, err := f.lookup(symbol)
	if err != nil {
		return 0, err
	}
	return c.price, nil
}

func (f *fakeProvider) PeersInIndustry(_ context.Context, _ string, _ int, _ string) ([]string, error) {
	return nil, nil
}

func (f *fakeProvider) Universe(_ context.Context) ([]screener.Candidate, error) {
	return nil, nil
}

func TestDCF_KnownValue(t *testing.T) {
	// FCF 1000, zero growth, 1 year at 10% discount, 100 shares.
	// PV = 1000/1.1 + (1000*1.03/0.07)/1.1 = 14285.714...; per share 142.857.
	p := &fakeProvider{companies: map[string]fakeCompany{
		"ACME": {
			stmts: []model.FinancialStatement{{
				Symbol:       "ACME",
				FreeCashFlow: model.F(1000),
			}},
			profile: &model.CompanyProfile{Symbol: "ACME", SharesOutstanding: model.F(100)},
			price:   100,
		},
	}}

	res, err := DCF(context.Background(), p, DCFInput{
		Symbol:          "ACME",
		GrowthRate:      0,
		DiscountRate:    0.10,
		ProjectionYears: 1,
	})
	if err != nil {
		t.Fatalf("DCF failed: %v", err)
	}
	if math.Abs(res.IntrinsicValue-142.8571) > 0.001 {
		t.Errorf("IntrinsicValue expected 142.8571, got %f", res.IntrinsicValue)
	}
	if math.Abs(res.Upside-0.428571) > 0.0001 {
		t.Errorf("Upside expected 0.428571, got %f", res.Upside)
	}
	if res.Assumptions["base_free_cash_flow"] != 1000 {
		t.Errorf("assumptions should record the base FCF, got %f", res.Assumptions["base_free_cash_flow"])
	}
}

func TestDCF_DerivesFCFFromComponents(t *testing.T) {
	p := &fakeProvider{companies: map[string]fakeCompany{
		"ACME": {
			stmts: []model.FinancialStatement{{
				Symbol:            "ACME",
				OperatingCashFlow: model.F(1200),
				CapEx:             model.F(200),
			}},
			profile: &model.CompanyProfile{Symbol: "ACME", SharesOutstanding: model.F(100)},
			price:   100,
		},
	}}

	res, err := DCF(context.Background(), p, DCFInput{
		Symbol: "ACME", GrowthRate: 0, DiscountRate: 0.10, ProjectionYears: 1,
	})
	if err != nil {
		t.Fatalf("DCF failed: %v", err)
	}
	if res.Assumptions["base_free_cash_flow"] != 1000 {
		t.Errorf("derived FCF expected 1000, got %f", res.Assumptions["base_free_cash_flow"])
	}
}

func TestDCF_InvalidAssumptionsBeforeFetch(t *testing.T) {
	// Empty provider: an invalid-assumption error proves the model bailed
	// before touching data.
	p := &fakeProvider{companies: map[string]fakeCompany{}}

	_, err := DCF(context.Background(), p, DCFInput{
		Symbol: "ACME", GrowthRate: 0.05, DiscountRate: TerminalGrowthRate, ProjectionYears: 5,
	})
	if !errors.Is(err, ErrInvalidAssumptions) {
		t.Errorf("discount == terminal growth: expected ErrInvalidAssumptions, got %v", err)
	}

	_, err = DCF(context.Background(), p, DCFInput{
		Symbol: "ACME", GrowthRate: 0.05, DiscountRate: 0.10, ProjectionYears: 0,
	})
	if !errors.Is(err, ErrInvalidAssumptions) {
		t.Errorf("zero projection years: expected ErrInvalidAssumptions, got %v", err)
	}
}

func TestDCF_ScenarioMonotonicity(t *testing.T) {
	p := &fakeProvider{companies: map[string]fakeCompany{
		"ACME": {
			stmts: []model.FinancialStatement{{
				Symbol:       "ACME",
				FreeCashFlow: model.F(1000),
			}},
			profile: &model.CompanyProfile{Symbol: "ACME", SharesOutstanding: model.F(100)},
			price:   100,
		},
	}}

	res, err := DCF(context.Background(), p, DCFInput{
		Symbol: "ACME", GrowthRate: 0.05, DiscountRate: 0.10, ProjectionYears: 5,
	})
	if err != nil {
		t.Fatalf("DCF failed: %v", err)
	}
	s := res.Scenarios
	if !(s.Bearish < s.Base && s.Base < s.Bullish) {
		t.Errorf("scenarios not ordered: bearish %f, base %f, bullish %f", s.Bearish, s.Base, s.Bullish)
	}
	if s.Base != res.IntrinsicValue {
		t.Errorf("base scenario %f should equal intrinsic value %f", s.Base, res.IntrinsicValue)
	}
}

func TestDCF_NoFinancialData(t *testing.T) {
	p := &fakeProvider{companies: map[string]fakeCompany{
		"EMPTY": {
			stmts:   []model.FinancialStatement{{Symbol: "EMPTY"}},
			profile: &model.CompanyProfile{Symbol: "EMPTY", SharesOutstanding: model.F(100)},
			price:   10,
		},
	}}

	_, err := DCF(context.Background(), p, DCFInput{
		Symbol: "EMPTY", GrowthRate: 0.05, DiscountRate: 0.10, ProjectionYears: 5,
	})
	if !errors.Is(err, ErrNoFinancialData) {
		t.Errorf("no FCF and no components: expected ErrNoFinancialData, got %v", err)
	}
}

func TestDDM_GordonRoundTrip(t *testing.T) {
	// 300 paid over 100 shares is a 3.00 dividend; V = 3*1.04/0.05 = 62.4.
	p := &fakeProvider{companies: map[string]fakeCompany{
		"DIV": {
			stmts: []model.FinancialStatement{{
				Symbol:        "DIV",
				DividendsPaid: model.F(-300),
			}},
			profile: &model.CompanyProfile{Symbol: "DIV", SharesOutstanding: model.F(100)},
			price:   50,
		},
	}}

	res, err := DDM(context.Background(), p, DDMInput{
		Symbol: "DIV", DividendGrowthRate: 0.04, DiscountRate: 0.09,
	})
	if err != nil {
		t.Fatalf("DDM failed: %v", err)
	}
	if math.Abs(res.IntrinsicValue-62.4) > 0.0001 {
		t.Errorf("IntrinsicValue expected 62.4, got %f", res.IntrinsicValue)
	}
	if _, ok := res.Assumptions["assumed_dividend_yield"]; ok {
		t.Error("a real payout must not be labeled as an assumed yield")
	}
	if res.Assumptions["dividend_per_share"] != 3 {
		t.Errorf("dividend_per_share expected 3, got %f", res.Assumptions["dividend_per_share"])
	}
}

func TestDDM_AssumedYieldFallback(t *testing.T) {
	p := &fakeProvider{companies: map[string]fakeCompany{
		"NOD": {
			stmts:   []model.FinancialStatement{{Symbol: "NOD"}},
			profile: &model.CompanyProfile{Symbol: "NOD", SharesOutstanding: model.F(100)},
			price:   50,
		},
	}}

	res, err := DDM(context.Background(), p, DDMInput{
		Symbol: "NOD", DividendGrowthRate: 0.04, DiscountRate: 0.09,
	})
	if err != nil {
		t.Fatalf("DDM failed: %v", err)
	}
	// Substitute dividend is 2% of the 50 price; V = 1*1.04/0.05 = 20.8.
	if math.Abs(res.IntrinsicValue-20.8) > 0.0001 {
		t.Errorf("IntrinsicValue expected 20.8, got %f", res.IntrinsicValue)
	}
	if res.Assumptions["assumed_dividend_yield"] != DefaultDividendYield {
		t.Error("fallback run must label the assumed yield in its assumptions")
	}
}

func TestDDM_InvalidAssumptions(t *testing.T) {
	p := &fakeProvider{companies: map[string]fakeCompany{}}
	_, err := DDM(context.Background(), p, DDMInput{
		Symbol: "DIV", DividendGrowthRate: 0.09, DiscountRate: 0.09,
	})
	if !errors.Is(err, ErrInvalidAssumptions) {
		t.Errorf("r == g: expected ErrInvalidAssumptions, got %v", err)
	}
}

func TestDDM_BullishGrowthStaysBelowDiscount(t *testing.T) {
	p := &fakeProvider{companies: map[string]fakeCompany{
		"DIV": {
			stmts: []model.FinancialStatement{{
				Symbol:        "DIV",
				DividendsPaid: model.F(-300),
			}},
			profile: &model.CompanyProfile{Symbol: "DIV", SharesOutstanding: model.F(100)},
			price:   50,
		},
	}}

	// 1.5x of 0.07 would be 0.105, above the 0.09 discount rate.
	res, err := DDM(context.Background(), p, DDMInput{
		Symbol: "DIV", DividendGrowthRate: 0.07, DiscountRate: 0.09,
	})
	if err != nil {
		t.Fatalf("DDM failed: %v", err)
	}
	bull := res.Assumptions["bullish_growth_rate"]
	if bull >= 0.09 {
		t.Errorf("bullish growth %f must stay below the discount rate", bull)
	}
	if res.Scenarios.Bullish <= res.Scenarios.Base {
		t.Errorf("bullish scenario %f should exceed base %f", res.Scenarios.Bullish, res.Scenarios.Base)
	}
}

func TestComparable_SinglePeerPE(t *testing.T) {
	p := &fakeProvider{companies: map[string]fakeCompany{
		"TGT": {
			stmts:   []model.FinancialStatement{{Symbol: "TGT", EPS: model.F(5), NetIncome: model.F(500), DilutedEPS: model.F(5)}},
			profile: &model.CompanyProfile{Symbol: "TGT", SharesOutstanding: model.F(100)},
			price:   80,
		},
		"PEER": {
			stmts:   []model.FinancialStatement{{Symbol: "PEER", EPS: model.F(4), NetIncome: model.F(400), DilutedEPS: model.F(4)}},
			profile: &model.CompanyProfile{Symbol: "PEER", SharesOutstanding: model.F(100)},
			price:   80,
		},
	}}

	res, err := Comparable(context.Background(), p, ComparableInput{
		Symbol:    "TGT",
		Peers:     []string{"PEER"},
		Multiples: []Multiple{MultiplePE},
	})
	if err != nil {
		t.Fatalf("Comparable failed: %v", err)
	}
	// Peer P/E is 20; applied to the target's EPS of 5 that implies 100.
	if math.Abs(res.IntrinsicValue-100) > 0.0001 {
		t.Errorf("IntrinsicValue expected 100, got %f", res.IntrinsicValue)
	}
	if math.Abs(res.Assumptions["avg_pe"]-20) > 0.0001 {
		t.Errorf("avg_pe expected 20, got %f", res.Assumptions["avg_pe"])
	}
}

func TestComparable_InsufficientPeerData(t *testing.T) {
	p := &fakeProvider{companies: map[string]fakeCompany{
		"TGT": {
			stmts:   []model.FinancialStatement{{Symbol: "TGT", EPS: model.F(5)}},
			profile: &model.CompanyProfile{Symbol: "TGT", SharesOutstanding: model.F(100)},
			price:   80,
		},
		"LOSS": {
			// Negative EPS never yields a usable P/E.
			stmts:   []model.FinancialStatement{{Symbol: "LOSS", EPS: model.F(-2)}},
			profile: &model.CompanyProfile{Symbol: "LOSS", SharesOutstanding: model.F(100)},
			price:   30,
		},
	}}

	_, err := Comparable(context.Background(), p, ComparableInput{
		Symbol:    "TGT",
		Peers:     []string{"LOSS"},
		Multiples: []Multiple{MultiplePE},
	})
	if !errors.Is(err, ErrInsufficientPeerData) {
		t.Errorf("expected ErrInsufficientPeerData, got %v", err)
	}

	_, err = Comparable(context.Background(), p, ComparableInput{Symbol: "TGT"})
	if !errors.Is(err, ErrInsufficientPeerData) {
		t.Errorf("zero peers: expected ErrInsufficientPeerData, got %v", err)
	}
}

func TestComparable_UnfetchablePeerSkipped(t *testing.T) {
	p := &fakeProvider{companies: map[string]fakeCompany{
		"TGT": {
			stmts:   []model.FinancialStatement{{Symbol: "TGT", EPS: model.F(5)}},
			profile: &model.CompanyProfile{Symbol: "TGT", SharesOutstanding: model.F(100)},
			price:   80,
		},
		"PEER": {
			stmts:   []model.FinancialStatement{{Symbol: "PEER", EPS: model.F(4)}},
			profile: &model.CompanyProfile{Symbol: "PEER", SharesOutstanding: model.F(100)},
			price:   80,
		},
	}}

	res, err := Comparable(context.Background(), p, ComparableInput{
		Symbol:    "TGT",
		Peers:     []string{"GHOST", "PEER"},
		Multiples: []Multiple{MultiplePE},
	})
	if err != nil {
		t.Fatalf("Comparable failed: %v", err)
	}
	if math.Abs(res.IntrinsicValue-100) > 0.0001 {
		t.Errorf("IntrinsicValue expected 100 from the one live peer, got %f", res.IntrinsicValue)
	}
}

func TestComparable_ScenarioBoundsAreMinMax(t *testing.T) {
	p := &fakeProvider{companies: map[string]fakeCompany{
		"TGT": {
			stmts: []model.FinancialStatement{{
				Symbol:     "TGT",
				EPS:        model.F(5),
				NetIncome:  model.F(500),
				DilutedEPS: model.F(5),
				Revenue:    model.F(2000),
			}},
			profile: &model.CompanyProfile{Symbol: "TGT", SharesOutstanding: model.F(100)},
			price:   80,
		},
		"PEER": {
			stmts: []model.FinancialStatement{{
				Symbol:     "PEER",
				EPS:        model.F(4),
				NetIncome:  model.F(400),
				DilutedEPS: model.F(4),
				Revenue:    model.F(1000),
			}},
			profile: &model.CompanyProfile{Symbol: "PEER", SharesOutstanding: model.F(100)},
			price:   80,
		},
	}}

	res, err := Comparable(context.Background(), p, ComparableInput{
		Symbol:    "TGT",
		Peers:     []string{"PEER"},
		Multiples: []Multiple{MultiplePE, MultiplePS},
	})
	if err != nil {
		t.Fatalf("Comparable failed: %v", err)
	}
	// Implied P/E value is 100; implied P/S is 8 * 20 = 160.
	s := res.Scenarios
	if math.Abs(s.Bearish-100) > 0.0001 || math.Abs(s.Bullish-160) > 0.0001 {
		t.Errorf("scenario bounds expected [100, 160], got [%f, %f]", s.Bearish, s.Bullish)
	}
	if math.Abs(s.Base-130) > 0.0001 {
		t.Errorf("base expected 130, got %f", s.Base)
	}
}
