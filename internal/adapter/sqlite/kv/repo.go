// Package kv stores small named settings such as the current session token.
package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/glossync/internal/adapter/sqlite"
	"github.com/heartmarshall/glossync/internal/domain"
)

// Repo provides settings persistence backed by SQLite.
type Repo struct {
	db *sql.DB
}

// New creates a new settings repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Get returns the value for key, or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, key string) (string, error) {
	query, args, err := sqlite.Builder.Select("value").From("settings").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return "", fmt.Errorf("kv.Get: build: %w", err)
	}

	var value string
	err = sqlite.QuerierFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("kv.Get %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return "", sqlite.MapError(err, "kv.Get "+key)
	}
	return value, nil
}

// Set stores value under key.
func (r *Repo) Set(ctx context.Context, key, value string, at time.Time) error {
	query, args, err := sqlite.Builder.Insert("settings").
		Columns("key", "value", "updated_at").
		Values(key, value, sqlite.Millis(at)).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("kv.Set: build: %w", err)
	}
	if _, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return sqlite.MapError(err, "kv.Set "+key)
	}
	return nil
}

// Delete removes key. Removing a missing key is not an error.
func (r *Repo) Delete(ctx context.Context, key string) error {
	query, args, err := sqlite.Builder.Delete("settings").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("kv.Delete: build: %w", err)
	}
	if _, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return sqlite.MapError(err, "kv.Delete "+key)
	}
	return nil
}
