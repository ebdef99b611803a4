// Package queue records offline mutations in the pending-action queues and
// knows how to turn each queued payload into a backend request.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/heartmarshall/glossync/internal/domain"
	"github.com/heartmarshall/glossync/pkg/ctxutil"
)

// TempIDPrefix marks client-generated identifiers.
const TempIDPrefix = "tmp-"

type entryRepo interface {
	Append(ctx context.Context, e domain.QueueEntry) (domain.QueueEntry, error)
	Restore(ctx context.Context, entries ...domain.QueueEntry) error
	Drain(ctx context.Context, q domain.QueueName) ([]domain.QueueEntry, error)
	List(ctx context.Context, q domain.QueueName) ([]domain.QueueEntry, error)
	Count(ctx context.Context) (map[domain.QueueName]int, error)
}

type entityRepo interface {
	Put(ctx context.Context, e domain.CachedEntity) error
}

type wakeupRegistry interface {
	RegisterWakeup(ctx context.Context, tag domain.WakeupTag) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides the per-family queue operations.
type Service struct {
	tx       txManager
	entries  entryRepo
	entities entityRepo
	wakeups  wakeupRegistry
	clock    clockwork.Clock
	log      *slog.Logger
}

// NewService creates a new queue service.
func NewService(
	log *slog.Logger,
	tx txManager,
	entries entryRepo,
	entities entityRepo,
	wakeups wakeupRegistry,
	clock clockwork.Clock,
) *Service {
	return &Service{
		tx:       tx,
		entries:  entries,
		entities: entities,
		wakeups:  wakeups,
		clock:    clock,
		log:      log.With("service", "queue"),
	}
}

// syntheticFunc builds the optimistic cached row for a new entry.
type syntheticFunc func(id string, payload []byte, now time.Time) (domain.CachedEntity, error)

type enqueueRequest struct {
	queue     domain.QueueName
	clientID  string
	payload   any
	refs      []domain.DomainRef
	synthetic syntheticFunc
}

// enqueue appends one entry, and its synthetic row when the family creates
// one, in a single transaction. It never touches the network.
func (s *Service) enqueue(ctx context.Context, req enqueueRequest) (domain.QueueEntry, error) {
	token, ok := ctxutil.TokenFromCtx(ctx)
	if !ok {
		return domain.QueueEntry{}, domain.ErrAuthMissing
	}

	raw, err := json.Marshal(req.payload)
	if err != nil {
		return domain.QueueEntry{}, fmt.Errorf("marshal %s payload: %w", req.queue, err)
	}

	id := req.clientID
	if id == "" {
		id = TempIDPrefix + uuid.NewString()
	}
	now := s.clock.Now().UTC()

	entry := domain.QueueEntry{
		ID:         id,
		Queue:      req.queue,
		Payload:    raw,
		AuthToken:  token,
		Refs:       req.refs,
		EnqueuedAt: now,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		stored, err := s.entries.Append(ctx, entry)
		if err != nil {
			return err
		}
		entry = stored

		if req.synthetic == nil {
			return nil
		}
		row, err := req.synthetic(id, raw, now)
		if err != nil {
			return err
		}
		return s.entities.Put(ctx, row)
	})
	if err != nil {
		return domain.QueueEntry{}, storageError(req.queue, err)
	}

	s.log.InfoContext(ctx, "action queued",
		slog.String("queue", req.queue.String()),
		slog.String("entry_id", entry.ID),
		slog.Int64("seq", entry.Seq),
	)

	tag := tagFor(req.queue)
	if err := s.wakeups.RegisterWakeup(ctx, tag); err != nil {
		s.log.WarnContext(ctx, "register wake-up",
			slog.String("tag", tag.String()),
			slog.String("error", err.Error()),
		)
	}

	return entry, nil
}

// storageError keeps duplicates distinguishable and folds everything else
// into domain.ErrStorageUnavailable.
func storageError(q domain.QueueName, err error) error {
	switch {
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrStorageUnavailable),
		errors.Is(err, domain.ErrValidation):
		return fmt.Errorf("enqueue %s: %w", q, err)
	default:
		return fmt.Errorf("enqueue %s: %w: %w", q, domain.ErrStorageUnavailable, err)
	}
}

// drain removes every entry of q and decodes it. Entries whose payload
// cannot be decoded are put back so the orchestrator can dead-letter them.
func drain[T any](ctx context.Context, s *Service, q domain.QueueName) ([]domain.Pending[T], error) {
	entries, err := s.entries.Drain(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("drain %s: %w", q, err)
	}

	out := make([]domain.Pending[T], 0, len(entries))
	var malformed []domain.QueueEntry
	for _, e := range entries {
		p, err := domain.DecodePayload[T](e)
		if err != nil {
			s.log.ErrorContext(ctx, "malformed queue entry",
				slog.String("queue", q.String()),
				slog.String("entry_id", e.ID),
				slog.String("error", err.Error()),
			)
			malformed = append(malformed, e)
			continue
		}
		out = append(out, domain.Pending[T]{Entry: e, Payload: p})
	}

	if len(malformed) > 0 {
		if err := s.entries.Restore(ctx, malformed...); err != nil {
			return out, fmt.Errorf("restore malformed %s entries: %w", q, err)
		}
	}
	return out, nil
}

// List returns the pending entries of q without removing them.
func (s *Service) List(ctx context.Context, q domain.QueueName) ([]domain.QueueEntry, error) {
	entries, err := s.entries.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", q, err)
	}
	return entries, nil
}

// Counts returns the number of pending entries per queue.
func (s *Service) Counts(ctx context.Context) (map[domain.QueueName]int, error) {
	counts, err := s.entries.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count queues: %w", err)
	}
	return counts, nil
}
