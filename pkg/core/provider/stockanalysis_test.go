package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stock_valuation/pkg/core/model"
)

const quotePayload = `{
  "props": {
    "pageProps": {
      "info": {"name": "Acme Corporation", "exchange": "NYSE"},
      "quote": {"cl": 187.5, "marketCap": 2.9e12, "sharesOut": 1.55e10},
      "profile": {"sector": "Technology", "industry": "Consumer Electronics"}
    }
  }
}`

// Trailing comma after the last row: json-repair has to clean it up before
// decoding.
const financialsPayload = `{
  "props": {
    "pageProps": {
      "financialData": [
        {
          "fiscalYear": 2024,
          "date": "2024-09-28",
          "revenue": 391035,
          "grossProfit": 180683,
          "netIncome": 93736,
          "eps": 6.11,
          "epsDiluted": 6.08,
          "operatingCashFlow": 118254,
          "capex": 9447,
          "dividendsPaid": -15234
        },
        {
          "fiscalYear": 2023,
          "date": "2023-09-30",
          "revenue": 383285,
          "netIncome": 96995,
        },
      ]
    }
  }
}`

func page(payload string) string {
	return fmt.Sprintf(`<html><head>
<script id="__NEXT_DATA__" type="application/json">%s</script>
</head><body></body></html>`, payload)
}

func testProvider(t *testing.T, handler http.Handler) *StockAnalysisProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &StockAnalysisProvider{
		client:  &http.Client{Timeout: 2 * time.Second},
		baseURL: srv.URL,
	}
}

func TestFinancialStatements_ParsesEmbeddedPayload(t *testing.T) {
	p := testProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/aapl/financials/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, page(financialsPayload))
	}))

	stmts, err := p.FinancialStatements(context.Background(), "AAPL", model.PeriodAnnual, 0)
	if err != nil {
		t.Fatalf("FinancialStatements failed: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}

	latest := stmts[0]
	if latest.FiscalYear != 2024 || latest.Symbol != "AAPL" {
		t.Errorf("unexpected latest statement: FY%d %s", latest.FiscalYear, latest.Symbol)
	}
	if rev, ok := model.Val(latest.Revenue); !ok || rev != 391035 {
		t.Errorf("revenue expected 391035, got %v", latest.Revenue)
	}
	if div, ok := model.Val(latest.DividendsPaid); !ok || div != -15234 {
		t.Errorf("dividends expected -15234, got %v", latest.DividendsPaid)
	}
	// Fields the page omits stay absent.
	if latest.Inventory != nil {
		t.Error("unreported inventory must stay nil")
	}
	if stmts[1].GrossProfit != nil {
		t.Error("unreported gross profit must stay nil")
	}
	if latest.Date.Format("2006-01-02") != "2024-09-28" {
		t.Errorf("date expected 2024-09-28, got %s", latest.Date)
	}
}

func TestFinancialStatements_Limit(t *testing.T) {
	p := testProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page(financialsPayload))
	}))

	stmts, err := p.FinancialStatements(context.Background(), "AAPL", model.PeriodAnnual, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(stmts) != 1 || stmts[0].FiscalYear != 2024 {
		t.Errorf("limit 1 should keep only the most recent row, got %d", len(stmts))
	}
}

func TestCompanyProfileAndPrice(t *testing.T) {
	p := testProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page(quotePayload))
	}))

	profile, err := p.CompanyProfile(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("CompanyProfile failed: %v", err)
	}
	if profile.Symbol != "AAPL" || profile.Name != "Acme Corporation" {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if profile.Industry != "Consumer Electronics" {
		t.Errorf("industry expected Consumer Electronics, got %q", profile.Industry)
	}
	if cap, ok := model.Val(profile.MarketCap); !ok || cap != 2.9e12 {
		t.Errorf("market cap expected 2.9e12, got %v", profile.MarketCap)
	}

	price, err := p.CurrentPrice(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("CurrentPrice failed: %v", err)
	}
	if price != 187.5 {
		t.Errorf("price expected 187.5, got %f", price)
	}
}

func TestFetch_NotFound(t *testing.T) {
	p := testProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := p.CompanyProfile(context.Background(), "NOPE")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFetch_MissingPayload(t *testing.T) {
	p := testProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>rate limited</body></html>")
	}))

	_, err := p.CurrentPrice(context.Background(), "AAPL")
	if err == nil {
		t.Error("expected an error for a page without the data payload")
	}
}

func TestPeersInIndustry(t *testing.T) {
	p := testProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/industry/consumer-electronics/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `<html><body><table>
<tr><td><a href="/stocks/aapl/">Apple</a></td></tr>
<tr><td><a href="/stocks/sony/">Sony</a></td></tr>
<tr><td><a href="/stocks/gpro/">GoPro</a></td></tr>
</table></body></html>`)
	}))

	peers, err := p.PeersInIndustry(context.Background(), "Consumer Electronics", 2, "AAPL")
	if err != nil {
		t.Fatalf("PeersInIndustry failed: %v", err)
	}
	if len(peers) != 2 || peers[0] != "SONY" || peers[1] != "GPRO" {
		t.Errorf("expected [SONY GPRO], got %v", peers)
	}
}
