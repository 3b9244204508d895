// Package provider defines the data-provider contract the engine computes
// over. Implementations fetch raw statements, profiles and quotes; the engine
// itself never retrieves market data.
package provider

import (
	"context"
	"errors"

	"stock_valuation/pkg/core/model"
	"stock_valuation/pkg/core/screener"
)

// ErrNotFound is returned when a provider has no record for a symbol.
var ErrNotFound = errors.New("symbol not found")

// DataProvider supplies raw inputs for valuation and screening.
// Implementations must return statements most-recent-first and must honor
// context cancellation on every call.
type DataProvider interface {
	// FinancialStatements returns up to limit statements for the symbol,
	// most recent first.
	FinancialStatements(ctx context.Context, symbol string, period model.Period, limit int) ([]model.FinancialStatement, error)

	// CompanyProfile returns descriptive and market data for the symbol.
	CompanyProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error)

	// CurrentPrice returns the latest per-share market quote.
	CurrentPrice(ctx context.Context, symbol string) (float64, error)

	// PeersInIndustry lists up to limit symbols in the industry, excluding
	// excludeSymbol.
	PeersInIndustry(ctx context.Context, industry string, limit int, excludeSymbol string) ([]string, error)

	// Universe returns the screening universe: one candidate per known
	// company with whatever metrics the provider can populate.
	Universe(ctx context.Context) ([]screener.Candidate, error)
}
