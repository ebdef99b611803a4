// Package cache implements cached-entity persistence on the local store.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/glossync/internal/adapter/sqlite"
	"github.com/heartmarshall/glossync/internal/domain"
)

var entityColumns = []string{"store", "key", "data", "last_updated", "expires_at", "synthetic"}

const upsertSuffix = `ON CONFLICT (store, key) DO UPDATE SET
	data = excluded.data,
	last_updated = excluded.last_updated,
	expires_at = excluded.expires_at,
	synthetic = excluded.synthetic`

// Repo provides CachedEntity persistence backed by SQLite.
type Repo struct {
	db *sql.DB
}

// New creates a new cached-entity repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Put inserts or replaces one entity.
func (r *Repo) Put(ctx context.Context, e domain.CachedEntity) error {
	return r.PutMany(ctx, []domain.CachedEntity{e})
}

// PutMany inserts or replaces entities in a single statement.
func (r *Repo) PutMany(ctx context.Context, entities []domain.CachedEntity) error {
	if len(entities) == 0 {
		return nil
	}

	ins := sqlite.Builder.Insert("cached_entities").Columns(entityColumns...)
	for _, e := range entities {
		if !e.Store.IsValid() {
			return fmt.Errorf("cache.Put: %w", domain.NewValidationError("store", fmt.Sprintf("unknown store %q", e.Store)))
		}
		if e.Key == "" {
			return fmt.Errorf("cache.Put: %w", domain.NewValidationError("key", "required"))
		}
		if !json.Valid(e.Data) {
			return fmt.Errorf("cache.Put %s/%s: %w", e.Store, e.Key, domain.NewValidationError("data", "must be valid JSON"))
		}
		ins = ins.Values(string(e.Store), e.Key, string(e.Data), sqlite.Millis(e.LastUpdated), sqlite.NullMillis(e.ExpiresAt), boolInt(e.Synthetic))
	}

	query, args, err := ins.Suffix(upsertSuffix).ToSql()
	if err != nil {
		return fmt.Errorf("cache.Put: build: %w", err)
	}
	if _, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return sqlite.MapError(err, "cache.Put")
	}
	return nil
}

// Get returns one entity by store and key.
func (r *Repo) Get(ctx context.Context, store domain.StoreName, key string) (*domain.CachedEntity, error) {
	query, args, err := sqlite.Builder.Select(entityColumns...).
		From("cached_entities").
		Where(sq.Eq{"store": string(store), "key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("cache.Get: build: %w", err)
	}

	row := sqlite.QuerierFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...)
	e, err := scanEntity(row)
	if err != nil {
		return nil, sqlite.MapError(err, fmt.Sprintf("cache.Get %s/%s", store, key))
	}
	return &e, nil
}

// GetAll returns every entity of a store ordered by key.
func (r *Repo) GetAll(ctx context.Context, store domain.StoreName) ([]domain.CachedEntity, error) {
	return r.list(ctx, sq.Eq{"store": string(store)}, "cache.GetAll "+string(store))
}

// GetAllByIndex returns the entities of a store whose data field index equals value.
// Only indexes declared for the store are accepted.
func (r *Repo) GetAllByIndex(ctx context.Context, store domain.StoreName, index, value string) ([]domain.CachedEntity, error) {
	if !store.HasIndex(index) {
		return nil, fmt.Errorf("cache.GetAllByIndex: %w",
			domain.NewValidationError("index", fmt.Sprintf("store %q has no index %q", store, index)))
	}
	// index is allowlisted above, so it is safe to splice into the JSON path.
	where := sq.And{
		sq.Eq{"store": string(store)},
		sq.Expr("json_extract(data, '$."+index+"') = ?", value),
	}
	return r.list(ctx, where, fmt.Sprintf("cache.GetAllByIndex %s.%s", store, index))
}

// Delete removes an entity. Deleting a missing entity is not an error.
func (r *Repo) Delete(ctx context.Context, store domain.StoreName, key string) error {
	query, args, err := sqlite.Builder.Delete("cached_entities").
		Where(sq.Eq{"store": string(store), "key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("cache.Delete: build: %w", err)
	}
	if _, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return sqlite.MapError(err, fmt.Sprintf("cache.Delete %s/%s", store, key))
	}
	return nil
}

func (r *Repo) list(ctx context.Context, where sq.Sqlizer, op string) ([]domain.CachedEntity, error) {
	query, args, err := sqlite.Builder.Select(entityColumns...).
		From("cached_entities").
		Where(where).
		OrderBy("key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}

	rows, err := sqlite.QuerierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sqlite.MapError(err, op)
	}
	defer rows.Close()

	var out []domain.CachedEntity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, sqlite.MapError(err, op)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlite.MapError(err, op)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(s scanner) (domain.CachedEntity, error) {
	var (
		e           domain.CachedEntity
		store, data string
		updated     int64
		expires     sql.NullInt64
	)
	if err := s.Scan(&store, &e.Key, &data, &updated, &expires, &e.Synthetic); err != nil {
		return domain.CachedEntity{}, err
	}
	e.Store = domain.StoreName(store)
	e.Data = json.RawMessage(data)
	e.LastUpdated = sqlite.FromMillis(updated)
	if expires.Valid {
		t := sqlite.FromMillis(expires.Int64)
		e.ExpiresAt = &t
	}
	return e, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
