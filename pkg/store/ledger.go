// Package store keeps an optional Postgres ledger of extraction runs, so
// repeated batch jobs over a growing corpus can be audited and resumed.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS extraction_runs (
	run_id     UUID PRIMARY KEY,
	started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	ended_at   TIMESTAMPTZ,
	total      INTEGER NOT NULL,
	processed  INTEGER,
	skipped    INTEGER
);
CREATE TABLE IF NOT EXISTS extraction_filings (
	run_id      UUID NOT NULL REFERENCES extraction_runs(run_id),
	filename    TEXT NOT NULL,
	filing_type TEXT NOT NULL,
	status      TEXT NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, filename)
);`

// Ledger records batch outcomes in Postgres.
type Ledger struct {
	pool *pgxpool.Pool
}

// Open connects to the database and ensures the ledger tables exist.
func Open(ctx context.Context, databaseURL string) (*Ledger, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}
	return &Ledger{pool: pool}, nil
}

func (l *Ledger) Close() {
	l.pool.Close()
}

// BeginRun registers a new batch run.
func (l *Ledger) BeginRun(ctx context.Context, runID uuid.UUID, total int) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO extraction_runs (run_id, total) VALUES ($1, $2)`,
		runID, total)
	return err
}

// RecordFiling records the outcome for one filing within a run.
func (l *Ledger) RecordFiling(ctx context.Context, runID uuid.UUID, filename, filingType, status string) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO extraction_filings (run_id, filename, filing_type, status)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, filename) DO UPDATE SET status = EXCLUDED.status`,
		runID, filename, filingType, status)
	return err
}

// FinishRun closes out a run with its final counts.
func (l *Ledger) FinishRun(ctx context.Context, runID uuid.UUID, processed, skipped int) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE extraction_runs SET ended_at = now(), processed = $2, skipped = $3 WHERE run_id = $1`,
		runID, processed, skipped)
	return err
}
