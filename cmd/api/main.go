package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	apiscreener "stock_valuation/pkg/api/screener"
	apivaluation "stock_valuation/pkg/api/valuation"
	"stock_valuation/pkg/core/config"
	"stock_valuation/pkg/core/provider"
	"stock_valuation/pkg/core/store"
	"stock_valuation/pkg/core/synthetic"
)

const defaultUniverseSeed = 42

func main() {
	// Load environment variables
	godotenv.Load()

	// Engine defaults: built-in values overridden by config/engine.yaml when
	// present.
	configPath := os.Getenv("ENGINE_CONFIG")
	if configPath == "" {
		configPath = "config/engine.yaml"
	}
	defaults, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("[WARNING] %v; using built-in defaults\n", err)
	}

	screensPath := os.Getenv("SCREENS_CONFIG")
	if screensPath == "" {
		screensPath = "config/screens.hjson"
	}
	screens, err := config.LoadScreens(screensPath)
	if err != nil {
		fmt.Printf("[WARNING] %v; no preset screens available\n", err)
	} else {
		fmt.Printf("[CONFIG] Loaded %d preset screens from %s\n", len(screens), screensPath)
	}

	// Data provider selection. The synthetic universe is the default so the
	// server runs offline out of the box.
	var dp provider.DataProvider
	switch os.Getenv("DATA_PROVIDER") {
	case "stockanalysis":
		dp = provider.NewStockAnalysisProvider()
		fmt.Println("[PROVIDER] Using stockanalysis.com scraper")
	default:
		dp = synthetic.NewProvider(defaultUniverseSeed, 200)
		fmt.Println("[PROVIDER] Using synthetic universe (seed 42, 200 companies)")
	}

	// Report persistence is optional: enabled only when DATABASE_URL is set.
	var repo store.ReportRepository
	if os.Getenv("DATABASE_URL") != "" {
		pool, err := store.Connect(context.Background())
		if err != nil {
			fmt.Printf("[WARNING] Database init failed, reports will not be persisted: %v\n", err)
		} else {
			repo = store.NewReportRepo(pool)
			defer pool.Close()
			fmt.Println("[STORE] Report persistence enabled")
		}
	}

	// Valuation endpoints
	apivaluation.InitHandler(dp, defaults, repo)
	http.HandleFunc("/api/valuation/model", apivaluation.HandleModel)
	http.HandleFunc("/api/valuation/report", apivaluation.HandleReport)
	http.HandleFunc("/api/valuation/report/stored", apivaluation.HandleStoredReport)

	// Screener endpoints
	apiscreener.InitHandler(dp, screens)
	http.HandleFunc("/api/screener/run", apiscreener.HandleScreen)
	http.HandleFunc("/api/screener/presets", apiscreener.HandlePresets)
	http.HandleFunc("/api/screener/preset", apiscreener.HandlePresetScreen)
	http.HandleFunc("/api/screener/sectors", apiscreener.HandleSectors)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - POST /api/valuation/model")
	fmt.Println("  - POST /api/valuation/report")
	fmt.Println("  - GET  /api/valuation/report/stored?symbol=...")
	fmt.Println("  - POST /api/screener/run")
	fmt.Println("  - GET  /api/screener/presets")
	fmt.Println("  - POST /api/screener/preset")
	fmt.Println("  - GET  /api/screener/sectors")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
