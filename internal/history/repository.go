package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/mediauploader/internal/dbx"
)

// Repository persists and queries batch outcomes.
type Repository interface {
	SaveBatch(ctx context.Context, rec BatchRecord, failures []FailureRecord) error
	RecentBatches(ctx context.Context, limit int) ([]BatchRecord, error)
	Failures(ctx context.Context, batchID string) ([]FailureRecord, error)
}

// SQLiteRepository implements Repository over a *sql.DB.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// SaveBatch writes the batch row and its failure rows in one transaction.
func (r *SQLiteRepository) SaveBatch(ctx context.Context, rec BatchRecord, failures []FailureRecord) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO batches (id, name, folder_id, started_at, finished_at, total, succeeded, failed, cancelled)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Name, rec.FolderID, rec.StartedAt, rec.FinishedAt,
			rec.Total, rec.Succeeded, rec.Failed, boolToInt(rec.Cancelled))
		if err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}

		for _, f := range failures {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO batch_failures (batch_id, path, reason) VALUES (?, ?, ?)`,
				rec.ID, f.Path, f.Reason)
			if err != nil {
				return fmt.Errorf("insert failure: %w", err)
			}
		}
		return nil
	})
}

// RecentBatches returns the newest batches first.
func (r *SQLiteRepository) RecentBatches(ctx context.Context, limit int) ([]BatchRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, folder_id, started_at, finished_at, total, succeeded, failed, cancelled
		 FROM batches ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select batches: %w", err)
	}
	defer rows.Close()

	var out []BatchRecord
	for rows.Next() {
		var rec BatchRecord
		var cancelled int
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.FolderID, &rec.StartedAt, &rec.FinishedAt,
			&rec.Total, &rec.Succeeded, &rec.Failed, &cancelled); err != nil {
			return nil, err
		}
		rec.Cancelled = cancelled != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Failures returns the failure rows of one batch.
func (r *SQLiteRepository) Failures(ctx context.Context, batchID string) ([]FailureRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT batch_id, path, reason FROM batch_failures WHERE batch_id = ?`, batchID)
	if err != nil {
		return nil, fmt.Errorf("select failures: %w", err)
	}
	defer rows.Close()

	var out []FailureRecord
	for rows.Next() {
		var f FailureRecord
		if err := rows.Scan(&f.BatchID, &f.Path, &f.Reason); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
