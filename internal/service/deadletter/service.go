// Package deadletter manages queue entries that replay gave up on.
package deadletter

import (
	"context"
	"fmt"
	"log/slog"

	dlrepo "github.com/heartmarshall/glossync/internal/adapter/sqlite/deadletter"
	"github.com/heartmarshall/glossync/internal/domain"
)

type letterRepo interface {
	List(ctx context.Context, queue domain.QueueName, limit uint64) ([]dlrepo.Letter, error)
	Requeue(ctx context.Context, id int64, appendFn func(context.Context, domain.QueueEntry) error) (*dlrepo.Letter, error)
	Delete(ctx context.Context, id int64) error
}

type entryRepo interface {
	Append(ctx context.Context, e domain.QueueEntry) (domain.QueueEntry, error)
}

// Service lists, requeues and deletes dead letters.
type Service struct {
	letters letterRepo
	entries entryRepo
	log     *slog.Logger
}

// NewService creates a dead letter service.
func NewService(log *slog.Logger, letters letterRepo, entries entryRepo) *Service {
	return &Service{letters: letters, entries: entries, log: log.With("service", "deadletter")}
}

// List returns dead letters, oldest first. An empty queue means all queues.
func (s *Service) List(ctx context.Context, queue domain.QueueName, limit uint64) ([]dlrepo.Letter, error) {
	if queue != "" && !queue.IsValid() {
		return nil, domain.NewValidationError("queue", "unknown queue")
	}
	return s.letters.List(ctx, queue, limit)
}

// Requeue appends the letter's entry to the tail of its queue with attempts
// reset, and removes the letter.
func (s *Service) Requeue(ctx context.Context, id int64) (*domain.QueueEntry, error) {
	var requeued domain.QueueEntry
	letter, err := s.letters.Requeue(ctx, id, func(ctx context.Context, e domain.QueueEntry) error {
		stored, err := s.entries.Append(ctx, e)
		requeued = stored
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("requeue dead letter: %w", err)
	}

	s.log.InfoContext(ctx, "dead letter requeued",
		slog.Int64("letter_id", id),
		slog.String("queue", letter.Entry.Queue.String()),
		slog.String("entry_id", letter.Entry.ID),
		slog.Int64("seq", requeued.Seq),
	)
	return &requeued, nil
}

// Delete discards a dead letter.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.letters.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete dead letter: %w", err)
	}
	s.log.InfoContext(ctx, "dead letter deleted", slog.Int64("letter_id", id))
	return nil
}
