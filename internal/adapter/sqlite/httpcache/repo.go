// Package httpcache stores raw read responses for the cache interception layer.
package httpcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/glossync/internal/adapter/sqlite"
	"github.com/heartmarshall/glossync/internal/domain"
)

// Repo provides raw response persistence backed by SQLite.
type Repo struct {
	db *sql.DB
}

// New creates a new response repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Put inserts or replaces a response.
func (r *Repo) Put(ctx context.Context, resp domain.CachedResponse) error {
	header, err := json.Marshal(resp.Header)
	if err != nil {
		return fmt.Errorf("httpcache.Put: encode header: %w", err)
	}

	query, args, err := sqlite.Builder.Insert("http_responses").
		Columns("key", "status", "header", "body", "stored_at", "expires_at").
		Values(resp.Key, resp.StatusCode, string(header), resp.Body, sqlite.Millis(resp.StoredAt), sqlite.NullMillis(resp.ExpiresAt)).
		Suffix(`ON CONFLICT (key) DO UPDATE SET
	status = excluded.status,
	header = excluded.header,
	body = excluded.body,
	stored_at = excluded.stored_at,
	expires_at = excluded.expires_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("httpcache.Put: build: %w", err)
	}
	if _, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return sqlite.MapError(err, "httpcache.Put "+resp.Key)
	}
	return nil
}

// Get returns the stored response for key, or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, key string) (*domain.CachedResponse, error) {
	query, args, err := sqlite.Builder.Select("key", "status", "header", "body", "stored_at", "expires_at").
		From("http_responses").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("httpcache.Get: build: %w", err)
	}

	var (
		resp     domain.CachedResponse
		header   string
		storedAt int64
		expires  sql.NullInt64
	)
	err = sqlite.QuerierFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...).
		Scan(&resp.Key, &resp.StatusCode, &header, &resp.Body, &storedAt, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("httpcache.Get %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, sqlite.MapError(err, "httpcache.Get "+key)
	}

	if err := json.Unmarshal([]byte(header), &resp.Header); err != nil {
		return nil, fmt.Errorf("httpcache.Get %s: decode header: %w", key, err)
	}
	resp.StoredAt = sqlite.FromMillis(storedAt)
	if expires.Valid {
		t := sqlite.FromMillis(expires.Int64)
		resp.ExpiresAt = &t
	}
	return &resp, nil
}

// DeleteExpired removes responses that expired before cutoff.
func (r *Repo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := sqlite.Builder.Delete("http_responses").
		Where(sq.And{sq.NotEq{"expires_at": nil}, sq.Lt{"expires_at": sqlite.Millis(cutoff)}}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("httpcache.DeleteExpired: build: %w", err)
	}

	res, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, sqlite.MapError(err, "httpcache.DeleteExpired")
	}
	return res.RowsAffected()
}
