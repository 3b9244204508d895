package screener

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"stock_valuation/pkg/core/config"
	"stock_valuation/pkg/core/provider"
	"stock_valuation/pkg/core/screener"
)

var (
	dataProvider provider.DataProvider
	presets      []config.PresetScreen
)

// InitHandler wires the screener endpoints to a universe-capable provider and
// the loaded preset screens.
func InitHandler(p provider.DataProvider, screens []config.PresetScreen) {
	dataProvider = p
	presets = screens
}

type ScreenRequest struct {
	Criteria screener.Criteria `json:"criteria"`
	Limit    int               `json:"limit"`
}

type PresetRequest struct {
	Name string `json:"name"`
}

func cors(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

// HandleScreen filters and ranks the provider universe against ad-hoc
// criteria.
func HandleScreen(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	var req ScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	universe, err := dataProvider.Universe(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	results := screener.Screen(universe, req.Criteria, req.Limit)
	fmt.Printf("[SCREENER] %d of %d candidates matched\n", len(results), len(universe))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// HandlePresets lists the configured preset screens.
func HandlePresets(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(presets)
}

// HandlePresetScreen runs a preset screen by name.
func HandlePresetScreen(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	var req PresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var preset *config.PresetScreen
	for i := range presets {
		if strings.EqualFold(presets[i].Name, req.Name) {
			preset = &presets[i]
			break
		}
	}
	if preset == nil {
		http.Error(w, fmt.Sprintf("unknown preset: %q", req.Name), http.StatusNotFound)
		return
	}

	universe, err := dataProvider.Universe(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	results := screener.Screen(universe, preset.Criteria, preset.Limit)
	fmt.Printf("[SCREENER] Preset %q: %d matches\n", preset.Name, len(results))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// HandleSectors summarizes average metrics per sector across the universe.
func HandleSectors(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	universe, err := dataProvider.Universe(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(screener.SectorPerformance(universe))
}
