package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flemzord/toolclaw/internal/memory"

	_ "modernc.org/sqlite" // SQLite driver registration
)

// OpenHistoryStore opens a SQLite database at the given path and returns
// a HistoryStore keeping at most maxRecords executions. The caller is
// responsible for closing the returned *sql.DB when done.
//
// The database is created with WAL mode, a 5 s busy timeout, and a single
// connection (SQLite serialises writes). The schema is migrated automatically.
func OpenHistoryStore(path string, maxRecords int) (memory.HistoryStore, *sql.DB, error) {
	cfg := Config{Path: path, MaxRecords: maxRecords}
	cfg.defaults()
	db, err := open(context.Background(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return &historyStore{db: db, max: cfg.MaxRecords}, db, nil
}

func open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", cfg.Path, err)
	}

	// SQLite handles one writer at a time; limit pool to 1 connection
	// so PRAGMAs apply consistently.
	db.SetMaxOpenConns(1)

	if cfg.walEnabled() {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: enable WAL: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.BusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
