// Package testhelper opens throwaway local stores for repository tests.
package testhelper

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/heartmarshall/glossync/internal/adapter/sqlite"
	"github.com/heartmarshall/glossync/internal/config"
)

// SetupTestDB opens a migrated store in a per-test temp dir.
// The db is closed via t.Cleanup.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := config.StoreConfig{
		Path:        filepath.Join(t.TempDir(), "glossync.db"),
		BusyTimeout: 5 * time.Second,
	}

	db, err := sqlite.Open(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("testhelper: open store: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}
