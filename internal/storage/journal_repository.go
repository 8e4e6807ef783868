// Package storage -- журнал прогонов синхронизации в Postgres.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"gomarket_sync/internal/core/models"
	"time"

	"github.com/google/uuid"
)

type JournalRepository struct {
	db *sql.DB
}

func NewJournalRepository(db *sql.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

func (r *JournalRepository) StartRun(ctx context.Context, runID uuid.UUID, startedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO marketsync.runs (run_id, started_at, status) VALUES ($1, $2, $3)`,
		runID, startedAt, models.RunStatusRunning)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", runID, err)
	}
	return nil
}

func (r *JournalRepository) RecordBatch(ctx context.Context, b models.BatchRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO marketsync.batches (run_id, target, kind, chunk, size, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		b.RunID, b.Target, b.Kind, b.Chunk, b.Size, b.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert batch %s/%s #%d: %w", b.Target, b.Kind, b.Chunk, err)
	}
	return nil
}

func (r *JournalRepository) FinishRun(ctx context.Context, runID uuid.UUID, finishedAt time.Time, runErr error) error {
	status := models.RunStatusOK
	var errText sql.NullString
	if runErr != nil {
		status = models.RunStatusFailed
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE marketsync.runs SET finished_at = $2, status = $3, error = $4 WHERE run_id = $1`,
		runID, finishedAt, status, errText)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	return nil
}
