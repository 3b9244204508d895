package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stock_valuation/pkg/core/report"
)

// ReportRepository persists consolidated valuation reports. The engine never
// calls it; persistence is an edge concern wired in by the callers that want
// report history.
type ReportRepository interface {
	Save(ctx context.Context, rep *report.Report) error
	Load(ctx context.Context, symbol string) (*report.Report, error)
}

// ReportRepo is the Postgres-backed repository. One row per symbol, latest
// report wins, full report as JSONB.
type ReportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepo creates a repository over the given pool.
func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// Schema:
// CREATE TABLE IF NOT EXISTS valuation_reports (
//   symbol TEXT PRIMARY KEY,
//   report_id TEXT,
//   report_json JSONB,
//   updated_at TIMESTAMPTZ
// );

// Save upserts the report keyed by symbol.
func (r *ReportRepo) Save(ctx context.Context, rep *report.Report) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO valuation_reports (symbol, report_id, report_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol)
		DO UPDATE SET
			report_id = EXCLUDED.report_id,
			report_json = EXCLUDED.report_json,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := r.pool.Exec(ctx, query, rep.Symbol, rep.ID, jsonData, time.Now()); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Load retrieves the most recent stored report for a symbol. Returns
// (nil, nil) when none exists.
func (r *ReportRepo) Load(ctx context.Context, symbol string) (*report.Report, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	query := `SELECT report_json FROM valuation_reports WHERE symbol = $1`
	err := r.pool.QueryRow(ctx, query, symbol).Scan(&jsonData)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var rep report.Report
	if err := json.Unmarshal(jsonData, &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &rep, nil
}
