package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"stock_valuation/pkg/core/model"
	"stock_valuation/pkg/core/screener"
)

const (
	stockAnalysisBaseURL = "https://stockanalysis.com/stocks"
	userAgent            = "stock-valuation/1.0"
)

// StockAnalysisProvider scrapes statements, profiles and quotes from
// stockanalysis.com. It is thin plumbing around the site's embedded JSON
// payloads; all fallback and caching policy stays outside the engine.
type StockAnalysisProvider struct {
	client  *http.Client
	baseURL string
}

// NewStockAnalysisProvider builds a provider with a sane request timeout.
func NewStockAnalysisProvider() *StockAnalysisProvider {
	return &StockAnalysisProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: stockAnalysisBaseURL,
	}
}

// pageData mirrors the slice of the embedded payload we actually read.
type pageData struct {
	Props struct {
		PageProps struct {
			Info struct {
				Name     string `json:"name"`
				Exchange string `json:"exchange"`
			} `json:"info"`
			Quote struct {
				Price     float64 `json:"cl"`
				MarketCap float64 `json:"marketCap"`
				Shares    float64 `json:"sharesOut"`
			} `json:"quote"`
			Profile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"profile"`
			Statements []statementRow `json:"financialData"`
		} `json:"pageProps"`
	} `json:"props"`
}

type statementRow struct {
	FiscalYear        int      `json:"fiscalYear"`
	Date              string   `json:"date"`
	Revenue           *float64 `json:"revenue"`
	CostOfRevenue     *float64 `json:"costOfRevenue"`
	GrossProfit       *float64 `json:"grossProfit"`
	OperatingExpense  *float64 `json:"opex"`
	OperatingIncome   *float64 `json:"operatingIncome"`
	EBITDA            *float64 `json:"ebitda"`
	NetIncome         *float64 `json:"netIncome"`
	EPS               *float64 `json:"eps"`
	DilutedEPS        *float64 `json:"epsDiluted"`
	TotalAssets       *float64 `json:"totalAssets"`
	CurrentAssets     *float64 `json:"totalCurrentAssets"`
	Cash              *float64 `json:"cashAndEquivalents"`
	ShortTermInvest   *float64 `json:"shortTermInvestments"`
	Receivables       *float64 `json:"receivables"`
	Inventory         *float64 `json:"inventory"`
	TotalLiabilities  *float64 `json:"totalLiabilities"`
	CurrentLiab       *float64 `json:"totalCurrentLiabilities"`
	TotalEquity       *float64 `json:"shareholdersEquity"`
	LongTermDebt      *float64 `json:"longTermDebt"`
	OperatingCashFlow *float64 `json:"operatingCashFlow"`
	CapEx             *float64 `json:"capex"`
	FreeCashFlow      *float64 `json:"freeCashFlow"`
	DividendsPaid     *float64 `json:"dividendsPaid"`
	ShareRepurchase   *float64 `json:"buybacks"`
}

// fetchPage downloads a page and decodes its embedded JSON payload. The
// payload occasionally arrives truncated or with sloppy quoting, so it goes
// through json-repair before unmarshaling.
func (p *StockAnalysisProvider) fetchPage(ctx context.Context, url string) (*pageData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	raw := doc.Find("script#__NEXT_DATA__").First().Text()
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("parse %s: no embedded data payload", url)
	}

	repaired, err := jsonrepair.RepairJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("repair payload from %s: %w", url, err)
	}

	var data pageData
	if err := json.Unmarshal([]byte(repaired), &data); err != nil {
		return nil, fmt.Errorf("decode payload from %s: %w", url, err)
	}
	return &data, nil
}

// FinancialStatements implements DataProvider.
func (p *StockAnalysisProvider) FinancialStatements(ctx context.Context, symbol string, period model.Period, limit int) ([]model.FinancialStatement, error) {
	url := fmt.Sprintf("%s/%s/financials/", p.baseURL, strings.ToLower(symbol))
	if period == model.PeriodQuarterly {
		url += "?p=quarterly"
	}
	data, err := p.fetchPage(ctx, url)
	if err != nil {
		return nil, err
	}

	rows := data.Props.PageProps.Statements
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	stmts := make([]model.FinancialStatement, 0, len(rows))
	for _, row := range rows {
		date, _ := time.Parse("2006-01-02", row.Date)
		stmts = append(stmts, model.FinancialStatement{
			Symbol:     symbol,
			Period:     period,
			FiscalYear: row.FiscalYear,
			Date:       date,

			Revenue:          row.Revenue,
			CostOfRevenue:    row.CostOfRevenue,
			GrossProfit:      row.GrossProfit,
			OperatingExpense: row.OperatingExpense,
			OperatingIncome:  row.OperatingIncome,
			EBITDA:           row.EBITDA,
			NetIncome:        row.NetIncome,
			EPS:              row.EPS,
			DilutedEPS:       row.DilutedEPS,

			TotalAssets:          row.TotalAssets,
			CurrentAssets:        row.CurrentAssets,
			Cash:                 row.Cash,
			ShortTermInvestments: row.ShortTermInvest,
			Receivables:          row.Receivables,
			Inventory:            row.Inventory,
			TotalLiabilities:     row.TotalLiabilities,
			CurrentLiabilities:   row.CurrentLiab,
			TotalEquity:          row.TotalEquity,
			LongTermDebt:         row.LongTermDebt,

			OperatingCashFlow: row.OperatingCashFlow,
			CapEx:             row.CapEx,
			FreeCashFlow:      row.FreeCashFlow,
			DividendsPaid:     row.DividendsPaid,
			ShareRepurchase:   row.ShareRepurchase,
		})
	}
	return stmts, nil
}

// CompanyProfile implements DataProvider.
func (p *StockAnalysisProvider) CompanyProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error) {
	data, err := p.fetchPage(ctx, fmt.Sprintf("%s/%s/", p.baseURL, strings.ToLower(symbol)))
	if err != nil {
		return nil, err
	}
	pp := data.Props.PageProps
	profile := &model.CompanyProfile{
		Symbol:   strings.ToUpper(symbol),
		Name:     pp.Info.Name,
		Exchange: pp.Info.Exchange,
		Sector:   pp.Profile.Sector,
		Industry: pp.Profile.Industry,
	}
	if pp.Quote.MarketCap > 0 {
		profile.MarketCap = model.F(pp.Quote.MarketCap)
	}
	if pp.Quote.Shares > 0 {
		profile.SharesOutstanding = model.F(pp.Quote.Shares)
	}
	return profile, nil
}

// CurrentPrice implements DataProvider.
func (p *StockAnalysisProvider) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	data, err := p.fetchPage(ctx, fmt.Sprintf("%s/%s/", p.baseURL, strings.ToLower(symbol)))
	if err != nil {
		return 0, err
	}
	price := data.Props.PageProps.Quote.Price
	if price <= 0 {
		return 0, fmt.Errorf("%w: no quote for %s", ErrNotFound, symbol)
	}
	return price, nil
}

// PeersInIndustry implements DataProvider by scraping the industry screener
// page and collecting ticker links.
func (p *StockAnalysisProvider) PeersInIndustry(ctx context.Context, industry string, limit int, excludeSymbol string) ([]string, error) {
	slug := strings.ToLower(strings.ReplaceAll(industry, " ", "-"))
	url := fmt.Sprintf("%s/industry/%s/", p.baseURL, slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	var peers []string
	doc.Find("table a[href^='/stocks/']").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		sym := strings.ToUpper(strings.Trim(strings.TrimPrefix(href, "/stocks/"), "/"))
		if sym == "" || sym == strings.ToUpper(excludeSymbol) {
			return true
		}
		peers = append(peers, sym)
		return limit <= 0 || len(peers) < limit
	})
	return peers, nil
}

// Universe implements DataProvider. A scraping provider has no cheap way to
// enumerate a full screening universe, so it reports none; screening callers
// pair this provider with a universe-capable source.
func (p *StockAnalysisProvider) Universe(ctx context.Context) ([]screener.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, nil
}
