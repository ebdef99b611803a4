package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/heartmarshall/glossync/internal/config"
	"github.com/heartmarshall/glossync/internal/domain"
)

// Open opens the local store at cfg.Path, applies pragmas and pending
// migrations, and returns a single-connection *sql.DB.
// Any failure is reported as domain.ErrStorageUnavailable.
func Open(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (*sql.DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("open store: create dir: %w: %w", domain.ErrStorageUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("open store: %w: %w", domain.ErrStorageUnavailable, err)
	}

	// One connection serializes writers; immediate transactions make drain atomic.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open store: ping: %w: %w", domain.ErrStorageUnavailable, err)
	}

	applied, err := Migrate(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open store: %w: %w", domain.ErrStorageUnavailable, err)
	}
	if applied > 0 {
		log.Info("store migrated", slog.String("path", cfg.Path), slog.Int("applied", applied))
	}

	return db, nil
}

func dsn(cfg config.StoreConfig) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Set("_txlock", "immediate")
	return "file:" + cfg.Path + "?" + q.Encode()
}
