// Package deadletter stores queue entries that were given up on during replay.
package deadletter

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

// Letter is a dead-lettered queue entry.
type Letter struct {
	ID       int64             `json:"id"`
	Entry    domain.QueueEntry `json:"entry"`
	Reason   string            `json:"reason"`
	FailedAt time.Time         `json:"failed_at"`
}

var letterColumns = []string{
	"id", "entry_id", "queue", "payload", "auth_token", "refs", "attempts", "enqueued_at", "reason", "failed_at",
}

// Repo provides dead letter persistence backed by SQLite.
type Repo struct {
	db *sql.DB
}

// New creates a new dead letter repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Add stores an entry with the reason it was given up on.
func (r *Repo) Add(ctx context.Context, e domain.QueueEntry, reason string, at time.Time) error {
	refs, err := json.Marshal(e.Refs)
	if err != nil {
		return fmt.Errorf("deadletter.Add: encode refs: %w", err)
	}
	if e.Refs == nil {
		refs = []byte("[]")
	}

	query, args, err := sqlite.Builder.Insert("dead_letters").
		Columns(letterColumns[1:]...).
		Values(e.ID, string(e.Queue), string(e.Payload), e.AuthToken, string(refs), e.Attempts,
			sqlite.Millis(e.EnqueuedAt), reason, sqlite.Millis(at)).
		ToSql()
	if err != nil {
		return fmt.Errorf("deadletter.Add: build: %w", err)
	}
	if _, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return sqlite.MapError(err, "deadletter.Add "+e.ID)
	}
	return nil
}

// List returns dead letters, oldest first, optionally filtered by queue.
func (r *Repo) List(ctx context.Context, queue domain.QueueName, limit uint64) ([]Letter, error) {
	b := sqlite.Builder.Select(letterColumns...).From("dead_letters").OrderBy("id")
	if queue != "" {
		b = b.Where(sq.Eq{"queue": string(queue)})
	}
	if limit > 0 {
		b = b.Limit(limit)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("deadletter.List: build: %w", err)
	}

	rows, err := sqlite.QuerierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sqlite.MapError(err, "deadletter.List")
	}
	defer rows.Close()

	var out []Letter
	for rows.Next() {
		l, err := scanLetter(rows)
		if err != nil {
			return nil, fmt.Errorf("deadletter.List: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlite.MapError(err, "deadletter.List")
	}
	return out, nil
}

// Get returns one dead letter.
func (r *Repo) Get(ctx context.Context, id int64) (*Letter, error) {
	query, args, err := sqlite.Builder.Select(letterColumns...).From("dead_letters").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("deadletter.Get: build: %w", err)
	}

	rows, err := sqlite.QuerierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sqlite.MapError(err, fmt.Sprintf("deadletter.Get %d", id))
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, sqlite.MapError(err, fmt.Sprintf("deadletter.Get %d", id))
		}
		return nil, fmt.Errorf("deadletter.Get %d: %w", id, domain.ErrNotFound)
	}
	l, err := scanLetter(rows)
	if err != nil {
		return nil, fmt.Errorf("deadletter.Get %d: %w", id, err)
	}
	return &l, nil
}

// Delete removes a dead letter.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	query, args, err := sqlite.Builder.Delete("dead_letters").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("deadletter.Delete: build: %w", err)
	}

	res, err := sqlite.QuerierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return sqlite.MapError(err, fmt.Sprintf("deadletter.Delete %d", id))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deadletter.Delete %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Requeue moves a dead letter back to the tail of its queue with attempts reset.
// The appender must write through the context so both steps share a transaction.
func (r *Repo) Requeue(ctx context.Context, id int64, appendFn func(context.Context, domain.QueueEntry) error) (*Letter, error) {
	var letter *Letter
	err := sqlite.InTx(ctx, r.db, func(ctx context.Context) error {
		var err error
		if letter, err = r.Get(ctx, id); err != nil {
			return err
		}
		e := letter.Entry
		e.Seq = 0
		e.Attempts = 0
		if err := appendFn(ctx, e); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return fmt.Errorf("entry %s is already pending: %w", e.ID, err)
			}
			return err
		}
		return r.Delete(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("deadletter.Requeue %d: %w", id, err)
	}
	return letter, nil
}

func scanLetter(rows *sql.Rows) (Letter, error) {
	var (
		l                   Letter
		queue, payload, ref string
		enqueuedAt, failed  int64
	)
	if err := rows.Scan(&l.ID, &l.Entry.ID, &queue, &payload, &l.Entry.AuthToken, &ref,
		&l.Entry.Attempts, &enqueuedAt, &l.Reason, &failed); err != nil {
		return Letter{}, sqlite.MapError(err, "scan")
	}
	l.Entry.Queue = domain.QueueName(queue)
	l.Entry.Payload = json.RawMessage(payload)
	l.Entry.EnqueuedAt = sqlite.FromMillis(enqueuedAt)
	l.FailedAt = sqlite.FromMillis(failed)
	if err := json.Unmarshal([]byte(ref), &l.Entry.Refs); err != nil {
		return Letter{}, fmt.Errorf("decode refs: %w", err)
	}
	return l, nil
}
