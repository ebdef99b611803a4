package sqlite_test

import (
	"context"
	"io/fs"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/glossync/internal/adapter/sqlite"
	"github.com/heartmarshall/glossync/internal/adapter/sqlite/testhelper"
	"github.com/heartmarshall/glossync/internal/config"
)

var destructive = regexp.MustCompile(`(?i)\b(DROP\s+(TABLE|COLUMN|INDEX)|RENAME\s+(TO|COLUMN)|DELETE\s+FROM)\b`)

func TestMigrations_AreAdditive(t *testing.T) {
	t.Parallel()

	files, err := fs.Glob(sqlite.Migrations(), "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		raw, err := fs.ReadFile(sqlite.Migrations(), name)
		require.NoError(t, err)
		assert.Falsef(t, destructive.Match(raw), "migration %s contains a destructive statement", name)
	}
}

func TestOpen_AppliesMigrationsOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := config.StoreConfig{Path: filepath.Join(t.TempDir(), "nested", "store.db"), BusyTimeout: time.Second}

	db, err := sqlite.Open(ctx, cfg, newTestLogger())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = sqlite.Open(ctx, cfg, newTestLogger())
	require.NoError(t, err)
	defer db.Close()

	applied, err := sqlite.Migrate(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, applied)

	for _, table := range []string{"queue_entries", "cached_entities", "id_mappings", "dead_letters", "settings", "wakeup_registrations", "http_responses"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		assert.NoErrorf(t, err, "table %s missing", table)
	}
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	t.Parallel()
	db := testhelper.SetupTestDB(t)
	ctx := context.Background()
	tx := sqlite.NewTxManager(db)

	boom := assert.AnError
	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		_, err := sqlite.QuerierFromCtx(ctx, db).ExecContext(ctx,
			"INSERT INTO settings (key, value, updated_at) VALUES ('k', 'v', 0)")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM settings").Scan(&n))
	assert.Zero(t, n)
}

func TestTxManager_NestedJoinsOuter(t *testing.T) {
	t.Parallel()
	db := testhelper.SetupTestDB(t)
	ctx := context.Background()
	tx := sqlite.NewTxManager(db)

	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		return tx.RunInTx(ctx, func(ctx context.Context) error {
			_, err := sqlite.QuerierFromCtx(ctx, db).ExecContext(ctx,
				"INSERT INTO settings (key, value, updated_at) VALUES ('k', 'v', 0)")
			return err
		})
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM settings").Scan(&n))
	assert.Equal(t, 1, n)
}
