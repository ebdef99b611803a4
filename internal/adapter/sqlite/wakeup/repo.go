// Package wakeup persists wake-up tag registrations.
package wakeup

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/glossync/internal/adapter/sqlite"
)

// Repo provides wake-up registration persistence backed by SQLite.
type Repo struct {
	db *sql.DB
}

// New creates a new wake-up registration repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Register records tag. It reports false when the tag was already registered.
func (r *Repo) Register(ctx context.Context, tag string, at time.Time) (bool, error) {
	query, args, err := sqlite.Builder.Insert("wakeup_registrations").
		Options("OR IGNORE").
		Columns("tag", "registered_at").
		Values(tag, sqlite.Millis(at)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("wakeup.Register: build: %w", err)
	}

	res, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return false, sqlite.MapError(err, "wakeup.Register "+tag)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, sqlite.MapError(err, "wakeup.Register "+tag)
	}
	return n == 1, nil
}

// List returns registered tags in registration order.
func (r *Repo) List(ctx context.Context) ([]string, error) {
	query, args, err := sqlite.Builder.Select("tag").
		From("wakeup_registrations").
		OrderBy("registered_at", "rowid").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("wakeup.List: build: %w", err)
	}

	rows, err := sqlite.QuerierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sqlite.MapError(err, "wakeup.List")
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, sqlite.MapError(err, "wakeup.List")
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlite.MapError(err, "wakeup.List")
	}
	return tags, nil
}

// Consume removes tag and reports whether it was registered.
func (r *Repo) Consume(ctx context.Context, tag string) (bool, error) {
	query, args, err := sqlite.Builder.Delete("wakeup_registrations").Where(sq.Eq{"tag": tag}).ToSql()
	if err != nil {
		return false, fmt.Errorf("wakeup.Consume: build: %w", err)
	}

	res, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return false, sqlite.MapError(err, "wakeup.Consume "+tag)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, sqlite.MapError(err, "wakeup.Consume "+tag)
	}
	return n == 1, nil
}
