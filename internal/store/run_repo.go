package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RunRecord summarizes one pipeline run.
type RunRecord struct {
	ID            string
	Sequence      int64
	CreatedAt     time.Time
	DocumentID    string
	UserID        string
	State         string
	Requested     int
	Accepted      int
	Rejected      int
	SuccessRatio  float64
	Elapsed       time.Duration
	Partial       bool
	PartialReason string
	ErrorCount    int
}

// RunRepo persists run summaries.
type RunRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Save inserts or replaces the summary for rec.ID.
func (r *RunRepo) Save(ctx context.Context, rec RunRecord) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx, `INSERT OR REPLACE INTO generation_runs (
			id, sequence, created_at, document_id, user_id, state,
			requested, accepted, rejected, success_ratio, elapsed_ms,
			partial, partial_reason, error_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, seqNum, rec.CreatedAt.UTC().UnixMilli(), rec.DocumentID, rec.UserID, rec.State,
		rec.Requested, rec.Accepted, rec.Rejected, rec.SuccessRatio, rec.Elapsed.Milliseconds(),
		rec.Partial, rec.PartialReason, rec.ErrorCount,
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", rec.ID, err)
	}
	return nil
}

// List returns the most recent runs first.
func (r *RunRepo) List(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, sequence, created_at, document_id, user_id, state,
			requested, accepted, rejected, success_ratio, elapsed_ms,
			partial, partial_reason, error_count
		FROM generation_runs ORDER BY sequence DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			rec       RunRecord
			createdAt int64
			elapsedMs int64
		)
		err := rows.Scan(&rec.ID, &rec.Sequence, &createdAt, &rec.DocumentID, &rec.UserID, &rec.State,
			&rec.Requested, &rec.Accepted, &rec.Rejected, &rec.SuccessRatio, &elapsedMs,
			&rec.Partial, &rec.PartialReason, &rec.ErrorCount)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(createdAt).UTC()
		rec.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}
