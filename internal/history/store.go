// Package history persists finished import runs to PostgreSQL so past
// results can be reviewed after the process exits. The store is optional:
// the importer works without it and only wires it up when a database URL
// is configured.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS import_runs (
	id             UUID PRIMARY KEY,
	entity_type_id INTEGER NOT NULL,
	succeeded      INTEGER NOT NULL,
	failed         INTEGER NOT NULL,
	outcomes       JSONB NOT NULL,
	started_at     TIMESTAMPTZ NOT NULL,
	duration_ms    BIGINT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store records completed runs in an import_runs table.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database and ensures the schema exists.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect history store: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping history store: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure history schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// RecordRun inserts one finished run. Implements core.Recorder.
func (s *Store) RecordRun(ctx context.Context, result *core.RunResult) error {
	outcomes, err := json.Marshal(result.Outcomes)
	if err != nil {
		return fmt.Errorf("encode outcomes: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO import_runs (id, entity_type_id, succeeded, failed, outcomes, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		result.RunID,
		result.EntityTypeID,
		result.Succeeded,
		result.Failed,
		outcomes,
		result.StartedAt,
		result.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RunSummary is one row of the run history listing, without outcomes.
type RunSummary struct {
	RunID        string        `json:"runId"`
	EntityTypeID int           `json:"entityTypeId"`
	Succeeded    int           `json:"succeeded"`
	Failed       int           `json:"failed"`
	StartedAt    time.Time     `json:"startedAt"`
	Duration     time.Duration `json:"duration"`
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, entity_type_id, succeeded, failed, started_at, duration_ms
		FROM import_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var durationMS int64
		if err := rows.Scan(&r.RunID, &r.EntityTypeID, &r.Succeeded, &r.Failed, &r.StartedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one recorded run with its full outcome list.
func (s *Store) GetRun(ctx context.Context, runID string) (*core.RunResult, error) {
	var result core.RunResult
	var outcomes []byte
	var durationMS int64

	err := s.pool.QueryRow(ctx, `
		SELECT id, entity_type_id, succeeded, failed, outcomes, started_at, duration_ms
		FROM import_runs
		WHERE id = $1`, runID).
		Scan(&result.RunID, &result.EntityTypeID, &result.Succeeded, &result.Failed, &outcomes, &result.StartedAt, &durationMS)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	result.Duration = time.Duration(durationMS) * time.Millisecond
	if err := json.Unmarshal(outcomes, &result.Outcomes); err != nil {
		return nil, fmt.Errorf("decode outcomes: %w", err)
	}
	return &result, nil
}
