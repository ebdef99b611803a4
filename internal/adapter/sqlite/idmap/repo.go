// Package idmap persists temporary-to-permanent identifier mappings so that a
// dependent action still holding a temporary id resolves in a later sync run.
package idmap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/glossync/internal/adapter/sqlite"
	"github.com/heartmarshall/glossync/internal/domain"
)

// Repo provides identifier-mapping persistence backed by SQLite.
type Repo struct {
	db *sql.DB
}

// New creates a new identifier-mapping repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Put records tempID -> permID. Re-recording the same temporary id overwrites it.
func (r *Repo) Put(ctx context.Context, tempID, permID string, kind domain.EntityKind, at time.Time) error {
	query, args, err := sqlite.Builder.Insert("id_mappings").
		Columns("temp_id", "perm_id", "kind", "created_at").
		Values(tempID, permID, string(kind), sqlite.Millis(at)).
		Suffix("ON CONFLICT (temp_id) DO UPDATE SET perm_id = excluded.perm_id, kind = excluded.kind").
		ToSql()
	if err != nil {
		return fmt.Errorf("idmap.Put: build: %w", err)
	}
	if _, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return sqlite.MapError(err, "idmap.Put "+tempID)
	}
	return nil
}

// All returns every recorded mapping.
func (r *Repo) All(ctx context.Context) (map[string]string, error) {
	query, args, err := sqlite.Builder.Select("temp_id", "perm_id").From("id_mappings").ToSql()
	if err != nil {
		return nil, fmt.Errorf("idmap.All: build: %w", err)
	}

	rows, err := sqlite.QuerierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sqlite.MapError(err, "idmap.All")
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var tmp, perm string
		if err := rows.Scan(&tmp, &perm); err != nil {
			return nil, sqlite.MapError(err, "idmap.All")
		}
		out[tmp] = perm
	}
	if err := rows.Err(); err != nil {
		return nil, sqlite.MapError(err, "idmap.All")
	}
	return out, nil
}

// DeleteOlderThan removes mappings recorded before cutoff and returns how many.
func (r *Repo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := sqlite.Builder.Delete("id_mappings").
		Where(sq.Lt{"created_at": sqlite.Millis(cutoff)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("idmap.DeleteOlderThan: build: %w", err)
	}

	res, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, sqlite.MapError(err, "idmap.DeleteOlderThan")
	}
	return res.RowsAffected()
}
