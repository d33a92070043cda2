// Package history keeps a local journal of finished upload batches so past
// outcomes (including per-file failures) can be reviewed later.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/mediauploader/internal/history/migrations"
)

// BatchRecord is one finished batch.
type BatchRecord struct {
	ID         string
	Name       string
	FolderID   string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Succeeded  int
	Failed     int
	Cancelled  bool
}

// FailureRecord is one file that did not make it.
type FailureRecord struct {
	BatchID string
	Path    string
	Reason  string
}

// InitDatabase opens the sqlite journal at dsn and applies pending
// migrations.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// single writer; also keeps in-memory databases on one connection
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("apply history migrations: %w", err)
	}

	return db, nil
}
