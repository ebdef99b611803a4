// Package queue implements the pending-action queues on the local store.
package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/glossync/internal/adapter/sqlite"
	"github.com/heartmarshall/glossync/internal/domain"
)

var entryColumns = []string{"seq", "id", "queue", "payload", "auth_token", "refs", "attempts", "enqueued_at"}

// Repo provides pending-action queue persistence backed by SQLite.
type Repo struct {
	db *sql.DB
}

// New creates a new queue repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

// Append adds an entry to the tail of its queue and returns it with Seq set.
func (r *Repo) Append(ctx context.Context, e domain.QueueEntry) (domain.QueueEntry, error) {
	refs, err := marshalRefs(e.Refs)
	if err != nil {
		return domain.QueueEntry{}, fmt.Errorf("queue.Append: %w", err)
	}

	query, args, err := sqlite.Builder.Insert("queue_entries").
		Columns("id", "queue", "payload", "auth_token", "refs", "attempts", "enqueued_at").
		Values(e.ID, string(e.Queue), string(e.Payload), e.AuthToken, refs, e.Attempts, sqlite.Millis(e.EnqueuedAt)).
		ToSql()
	if err != nil {
		return domain.QueueEntry{}, fmt.Errorf("queue.Append: build: %w", err)
	}

	res, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return domain.QueueEntry{}, sqlite.MapError(err, "queue.Append "+e.ID)
	}
	if e.Seq, err = res.LastInsertId(); err != nil {
		return domain.QueueEntry{}, sqlite.MapError(err, "queue.Append "+e.ID)
	}
	return e, nil
}

// Restore puts previously drained entries back under their original sequence
// numbers, so they replay in their original position on the next run.
func (r *Repo) Restore(ctx context.Context, entries ...domain.QueueEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ins := sqlite.Builder.Insert("queue_entries").Columns(entryColumns...)
	for _, e := range entries {
		refs, err := marshalRefs(e.Refs)
		if err != nil {
			return fmt.Errorf("queue.Restore: %w", err)
		}
		ins = ins.Values(e.Seq, e.ID, string(e.Queue), string(e.Payload), e.AuthToken, refs, e.Attempts, sqlite.Millis(e.EnqueuedAt))
	}

	query, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("queue.Restore: build: %w", err)
	}
	if _, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return sqlite.MapError(err, "queue.Restore")
	}
	return nil
}

// Delete removes a single pending entry by id.
func (r *Repo) Delete(ctx context.Context, id string) error {
	query, args, err := sqlite.Builder.Delete("queue_entries").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("queue.Delete: build: %w", err)
	}

	res, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return sqlite.MapError(err, "queue.Delete "+id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("queue.Delete %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Drain
// ---------------------------------------------------------------------------

// Drain atomically reads every entry of the queue in enqueue order and removes
// them. Two concurrent drains never observe the same entry: the second one
// waits for the first transaction and then sees an empty queue.
func (r *Repo) Drain(ctx context.Context, q domain.QueueName) ([]domain.QueueEntry, error) {
	var entries []domain.QueueEntry

	err := sqlite.InTx(ctx, r.db, func(ctx context.Context) error {
		var err error
		entries, err = r.List(ctx, q)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		seqs := make([]int64, len(entries))
		for i, e := range entries {
			seqs[i] = e.Seq
		}

		query, args, err := sqlite.Builder.Delete("queue_entries").Where(sq.Eq{"seq": seqs}).ToSql()
		if err != nil {
			return fmt.Errorf("build: %w", err)
		}
		if _, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
			return sqlite.MapError(err, "delete")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("queue.Drain %s: %w", q, err)
	}

	return entries, nil
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// List returns the pending entries of a queue in enqueue order without removing them.
func (r *Repo) List(ctx context.Context, q domain.QueueName) ([]domain.QueueEntry, error) {
	query, args, err := sqlite.Builder.Select(entryColumns...).
		From("queue_entries").
		Where(sq.Eq{"queue": string(q)}).
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("queue.List: build: %w", err)
	}

	rows, err := sqlite.QuerierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sqlite.MapError(err, "queue.List "+string(q))
	}
	defer rows.Close()

	var entries []domain.QueueEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("queue.List %s: %w", q, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlite.MapError(err, "queue.List "+string(q))
	}
	return entries, nil
}

// Count returns the number of pending entries per queue. Every known queue is
// present in the result, empty ones with zero.
func (r *Repo) Count(ctx context.Context) (map[domain.QueueName]int, error) {
	query, args, err := sqlite.Builder.Select("queue", "COUNT(*)").
		From("queue_entries").
		GroupBy("queue").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("queue.Count: build: %w", err)
	}

	rows, err := sqlite.QuerierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sqlite.MapError(err, "queue.Count")
	}
	defer rows.Close()

	counts := make(map[domain.QueueName]int, len(domain.ReplayOrder))
	for _, q := range domain.ReplayOrder {
		counts[q] = 0
	}
	for rows.Next() {
		var (
			q string
			n int
		)
		if err := rows.Scan(&q, &n); err != nil {
			return nil, sqlite.MapError(err, "queue.Count")
		}
		counts[domain.QueueName(q)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, sqlite.MapError(err, "queue.Count")
	}
	return counts, nil
}

// Contains reports whether an entry with the given id is pending in any of
// the given queues (any queue when none are given).
func (r *Repo) Contains(ctx context.Context, id string, queues ...domain.QueueName) (bool, error) {
	b := sqlite.Builder.Select("1").From("queue_entries").Where(sq.Eq{"id": id}).Limit(1)
	if len(queues) > 0 {
		names := make([]string, len(queues))
		for i, q := range queues {
			names[i] = string(q)
		}
		b = b.Where(sq.Eq{"queue": names})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return false, fmt.Errorf("queue.Contains: build: %w", err)
	}

	var one int
	err = sqlite.QuerierFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, sqlite.MapError(err, "queue.Contains "+id)
	}
	return true, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func scanEntry(rows *sql.Rows) (domain.QueueEntry, error) {
	var (
		e          domain.QueueEntry
		queue      string
		payload    string
		refs       string
		enqueuedAt int64
	)
	if err := rows.Scan(&e.Seq, &e.ID, &queue, &payload, &e.AuthToken, &refs, &e.Attempts, &enqueuedAt); err != nil {
		return domain.QueueEntry{}, sqlite.MapError(err, "scan")
	}
	e.Queue = domain.QueueName(queue)
	e.Payload = json.RawMessage(payload)
	e.EnqueuedAt = sqlite.FromMillis(enqueuedAt)
	if err := json.Unmarshal([]byte(refs), &e.Refs); err != nil {
		return domain.QueueEntry{}, fmt.Errorf("decode refs of %s: %w", e.ID, err)
	}
	return e, nil
}

func marshalRefs(refs []domain.DomainRef) (string, error) {
	if len(refs) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(refs)
	if err != nil {
		return "", fmt.Errorf("encode refs: %w", err)
	}
	return string(raw), nil
}
