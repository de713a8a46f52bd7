package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"dcfanalyst/pkg/models"
)

// RunRecord is one persisted valuation run.
type RunRecord struct {
	RunID       string                   `json:"run_id"`
	Ticker      string                   `json:"ticker"`
	InputHash   string                   `json:"input_hash"`
	Snapshot    models.FinancialSnapshot `json:"snapshot"`
	Scenarios   models.ScenarioSet       `json:"scenarios"`
	Sensitivity models.SensitivityGrid   `json:"sensitivity"`
	CreatedAt   time.Time                `json:"created_at"`
}

// RunRepository is the persistence seam the pipeline depends on; tests
// inject an in-memory implementation.
type RunRepository interface {
	Save(ctx context.Context, rec *RunRecord) error
	Latest(ctx context.Context, ticker string) (*RunRecord, error)
}

// PGRunRepo stores runs in the valuation_runs table.
//
// Schema:
//
//	CREATE TABLE IF NOT EXISTS valuation_runs (
//	  run_id     UUID PRIMARY KEY,
//	  ticker     TEXT NOT NULL,
//	  input_hash TEXT NOT NULL,
//	  run_json   JSONB NOT NULL,
//	  created_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX IF NOT EXISTS valuation_runs_ticker_idx
//	  ON valuation_runs (ticker, created_at DESC);
type PGRunRepo struct{}

// NewPGRunRepo creates the Postgres-backed repository.
func NewPGRunRepo() *PGRunRepo {
	return &PGRunRepo{}
}

// Save persists the record, assigning a run id and timestamp if unset.
func (r *PGRunRepo) Save(ctx context.Context, rec *RunRecord) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	runJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal run %s: %w", rec.RunID, err)
	}

	query := `
		INSERT INTO valuation_runs (run_id, ticker, input_hash, run_json, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	if _, err := pool.Exec(ctx, query, rec.RunID, rec.Ticker, rec.InputHash, runJSON, rec.CreatedAt); err != nil {
		return fmt.Errorf("failed to save run %s: %w", rec.RunID, err)
	}
	return nil
}

// Latest loads the most recent run for a ticker, or nil when none exist.
func (r *PGRunRepo) Latest(ctx context.Context, ticker string) (*RunRecord, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT run_json FROM valuation_runs
		WHERE ticker = $1
		ORDER BY created_at DESC
		LIMIT 1;
	`
	var runJSON []byte
	err := pool.QueryRow(ctx, query, ticker).Scan(&runJSON)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest run for %s: %w", ticker, err)
	}

	var rec RunRecord
	if err := json.Unmarshal(runJSON, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode run for %s: %w", ticker, err)
	}
	return &rec, nil
}
