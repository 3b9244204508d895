package valuation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"stock_valuation/pkg/core/config"
	"stock_valuation/pkg/core/provider"
	"stock_valuation/pkg/core/report"
	"stock_valuation/pkg/core/store"
	"stock_valuation/pkg/core/valuation"
)

var (
	dataProvider provider.DataProvider
	defaults     config.Defaults
	synthesizer  *report.Synthesizer
	reportRepo   store.ReportRepository
)

// InitHandler wires the valuation endpoints to a data provider and engine
// defaults. repo may be nil; reports are then not persisted.
func InitHandler(p provider.DataProvider, d config.Defaults, repo store.ReportRepository) {
	dataProvider = p
	defaults = d
	synthesizer = report.NewSynthesizer(p, d)
	reportRepo = repo
}

type ModelRequest struct {
	Symbol string `json:"symbol"`
	Model  string `json:"model"`

	// Optional overrides; defaults apply when omitted.
	GrowthRate      *float64 `json:"growth_rate,omitempty"`
	DiscountRate    *float64 `json:"discount_rate,omitempty"`
	ProjectionYears *int     `json:"projection_years,omitempty"`
	DividendGrowth  *float64 `json:"dividend_growth,omitempty"`
	Peers           []string `json:"peers,omitempty"`
}

type ReportRequest struct {
	Symbol string `json:"symbol"`
}

func cors(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, valuation.ErrNoFinancialData), errors.Is(err, provider.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, valuation.ErrInvalidAssumptions):
		return http.StatusBadRequest
	case errors.Is(err, valuation.ErrInsufficientPeerData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// HandleModel runs a single valuation model for a symbol.
func HandleModel(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	var req ModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}
	fmt.Printf("[VALUATION] Model request: %s %s\n", req.Model, symbol)

	var (
		result *valuation.Result
		err    error
	)
	ctx := r.Context()
	switch valuation.ModelType(req.Model) {
	case valuation.ModelDCF:
		in := valuation.DCFInput{
			Symbol:          symbol,
			GrowthRate:      defaults.DCF.GrowthRate,
			DiscountRate:    defaults.DCF.DiscountRate,
			ProjectionYears: defaults.DCF.ProjectionYears,
		}
		if req.GrowthRate != nil {
			in.GrowthRate = *req.GrowthRate
		}
		if req.DiscountRate != nil {
			in.DiscountRate = *req.DiscountRate
		}
		if req.ProjectionYears != nil {
			in.ProjectionYears = *req.ProjectionYears
		}
		result, err = valuation.DCF(ctx, dataProvider, in)
	case valuation.ModelDDM:
		in := valuation.DDMInput{
			Symbol:             symbol,
			DividendGrowthRate: defaults.DDM.DividendGrowthRate,
			DiscountRate:       defaults.DDM.DiscountRate,
		}
		if req.DividendGrowth != nil {
			in.DividendGrowthRate = *req.DividendGrowth
		}
		if req.DiscountRate != nil {
			in.DiscountRate = *req.DiscountRate
		}
		result, err = valuation.DDM(ctx, dataProvider, in)
	case valuation.ModelComparable:
		result, err = valuation.Comparable(ctx, dataProvider, valuation.ComparableInput{
			Symbol: symbol,
			Peers:  req.Peers,
		})
	default:
		http.Error(w, fmt.Sprintf("unknown model: %q", req.Model), http.StatusBadRequest)
		return
	}
	if err != nil {
		fmt.Printf("[VALUATION] %s %s failed: %v\n", req.Model, symbol, err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleReport generates the consolidated valuation report for a symbol and,
// when a repository is configured, persists it.
func HandleReport(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}
	fmt.Printf("[VALUATION] Report request: %s\n", symbol)

	rep, err := synthesizer.Generate(r.Context(), symbol)
	if err != nil {
		fmt.Printf("[VALUATION] Report %s failed: %v\n", symbol, err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	if reportRepo != nil {
		if err := reportRepo.Save(r.Context(), rep); err != nil {
			fmt.Printf("[WARNING] Failed to persist report for %s: %v\n", symbol, err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rep)
}

// HandleStoredReport returns the last persisted report for a symbol.
func HandleStoredReport(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	if reportRepo == nil {
		http.Error(w, "report storage not configured", http.StatusNotImplemented)
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		http.Error(w, "symbol query parameter is required", http.StatusBadRequest)
		return
	}

	rep, err := reportRepo.Load(r.Context(), symbol)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if rep == nil {
		http.Error(w, fmt.Sprintf("no stored report for %s", symbol), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rep)
}
