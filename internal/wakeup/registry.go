// Package wakeup runs deferred sync work when connectivity returns and
// notifies attached client sessions.
package wakeup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/heartmarshall/glossync/internal/domain"
)

type registrationStore interface {
	Register(ctx context.Context, tag string, at time.Time) (bool, error)
	List(ctx context.Context) ([]string, error)
	Consume(ctx context.Context, tag string) (bool, error)
}

// Registry persists wake-up registrations. Registering a tag twice is a no-op.
type Registry struct {
	store registrationStore
	clock clockwork.Clock
	log   *slog.Logger
}

// NewRegistry creates a Registry.
func NewRegistry(store registrationStore, clock clockwork.Clock, logger *slog.Logger) *Registry {
	return &Registry{store: store, clock: clock, log: logger.With("service", "wakeup")}
}

// RegisterWakeup records that tag should run on the next online transition.
func (r *Registry) RegisterWakeup(ctx context.Context, tag domain.WakeupTag) error {
	if !tag.IsValid() {
		return domain.NewValidationError("tag", fmt.Sprintf("unknown wake-up tag %q", tag))
	}
	added, err := r.store.Register(ctx, tag.String(), r.clock.Now())
	if err != nil {
		return fmt.Errorf("wakeup.RegisterWakeup %s: %w", tag, err)
	}
	if added {
		r.log.DebugContext(ctx, "wake-up registered", slog.String("tag", tag.String()))
	}
	return nil
}

// Pending lists registered tags in registration order.
func (r *Registry) Pending(ctx context.Context) ([]domain.WakeupTag, error) {
	raw, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("wakeup.Pending: %w", err)
	}
	tags := make([]domain.WakeupTag, 0, len(raw))
	for _, s := range raw {
		tag := domain.WakeupTag(s)
		if !tag.IsValid() {
			r.log.WarnContext(ctx, "ignoring unknown wake-up tag", slog.String("tag", s))
			continue
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Consume removes tag and reports whether it was registered.
func (r *Registry) Consume(ctx context.Context, tag domain.WakeupTag) (bool, error) {
	ok, err := r.store.Consume(ctx, tag.String())
	if err != nil {
		return false, fmt.Errorf("wakeup.Consume %s: %w", tag, err)
	}
	return ok, nil
}
