package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/flemzord/toolclaw/internal/memory"
)

const selectColumns = `SELECT id, input, plan, result, steps_executed, failed, created_at, duration_ns FROM executions`

// historyStore implements memory.HistoryStore backed by SQLite.
type historyStore struct {
	db  *sql.DB
	max int
}

// Append stores a record and prunes rows beyond the configured maximum.
func (h *historyStore) Append(ctx context.Context, rec memory.ExecutionRecord) error {
	planJSON, err := json.Marshal(rec.Plan)
	if err != nil {
		return fmt.Errorf("sqlite: marshal plan: %w", err)
	}

	failed := 0
	if rec.Failed {
		failed = 1
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO executions (id, input, plan, result, steps_executed, failed, created_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Input, string(planJSON), rec.Result, rec.StepsExecuted, failed,
		rec.Timestamp.UTC().Format(time.RFC3339Nano), int64(rec.Duration),
	)
	if err != nil {
		return fmt.Errorf("sqlite: append execution: %w", err)
	}
	if h.max > 0 {
		if _, err := pruneTx(ctx, tx, h.max); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Recent returns up to n of the newest records in chronological order.
func (h *historyStore) Recent(ctx context.Context, n int) ([]memory.ExecutionRecord, error) {
	query := selectColumns + ` ORDER BY seq DESC`
	var args []any
	if n > 0 {
		query += ` LIMIT ?`
		args = append(args, n)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: recent executions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recs []memory.ExecutionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: recent executions rows: %w", err)
	}

	// Reverse to chronological order.
	slices.Reverse(recs)
	return recs, nil
}

// Get returns a record by ID.
func (h *historyStore) Get(ctx context.Context, id string) (memory.ExecutionRecord, error) {
	rec, err := scanRecord(h.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return memory.ExecutionRecord{}, fmt.Errorf("%w: %s", memory.ErrRecordNotFound, id)
	}
	return rec, err
}

// Prune keeps only the keep newest records.
func (h *historyStore) Prune(ctx context.Context, keep int) (int, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin prune tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	n, err := pruneTx(ctx, tx, max(keep, 0))
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

func pruneTx(ctx context.Context, tx *sql.Tx, keep int) (int, error) {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM executions
		WHERE seq NOT IN (SELECT seq FROM executions ORDER BY seq DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("sqlite: prune executions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: prune rows affected: %w", err)
	}
	return int(n), nil
}

// Len returns the number of stored records.
func (h *historyStore) Len(ctx context.Context) (int, error) {
	var count int
	if err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM executions").Scan(&count); err != nil {
		return 0, fmt.Errorf("sqlite: count executions: %w", err)
	}
	return count, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (memory.ExecutionRecord, error) {
	var (
		rec       memory.ExecutionRecord
		planJSON  string
		failed    int
		createdAt string
		duration  int64
	)

	err := s.Scan(&rec.ID, &rec.Input, &planJSON, &rec.Result, &rec.StepsExecuted, &failed, &createdAt, &duration)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("sqlite: scan execution: %w", err)
	}

	if err := json.Unmarshal([]byte(planJSON), &rec.Plan); err != nil {
		return rec, fmt.Errorf("sqlite: unmarshal plan: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return rec, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	rec.Timestamp = ts
	rec.Failed = failed != 0
	rec.Duration = time.Duration(duration)
	return rec, nil
}
