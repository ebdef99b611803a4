// Package orchestrator replays pending-action queues against the backend in
// a fixed order, rewriting temporary identifiers as creations succeed.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/heartmarshall/glossync/internal/auth"
	"github.com/heartmarshall/glossync/internal/config"
	"github.com/heartmarshall/glossync/internal/domain"
)

type entryRepo interface {
	Drain(ctx context.Context, q domain.QueueName) ([]domain.QueueEntry, error)
	Restore(ctx context.Context, entries ...domain.QueueEntry) error
	Contains(ctx context.Context, id string, queues ...domain.QueueName) (bool, error)
}

type mappingRepo interface {
	All(ctx context.Context) (map[string]string, error)
	Put(ctx context.Context, tempID, permID string, kind domain.EntityKind, at time.Time) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type deadLetterRepo interface {
	Add(ctx context.Context, e domain.QueueEntry, reason string, at time.Time) error
}

type entityRepo interface {
	Delete(ctx context.Context, store domain.StoreName, key string) error
}

type credentials interface {
	Current(ctx context.Context) (auth.Credential, error)
}

type sender interface {
	Send(ctx context.Context, req domain.ReplayRequest, token string) (*domain.ReplayResponse, error)
}

type publisher interface {
	Publish(msg domain.Message)
}

// RequestBuilder interprets queued payloads. Implemented by the queue service.
type RequestBuilder interface {
	BuildRequest(e domain.QueueEntry) (domain.ReplayRequest, error)
	PermanentID(e domain.QueueEntry, body []byte) (string, bool)
	Creates(q domain.QueueName) (domain.EntityKind, bool)
	SyntheticStore(q domain.QueueName) (domain.StoreName, bool)
	CreationQueues(kind domain.EntityKind) []domain.QueueName
}

// Deps groups the orchestrator's collaborators.
type Deps struct {
	Entries     entryRepo
	Mappings    mappingRepo
	DeadLetters deadLetterRepo
	Entities    entityRepo
	Credentials credentials
	Sender      sender
	Builder     RequestBuilder
	Publisher   publisher
	Clock       clockwork.Clock
}

// Orchestrator runs sync passes. Runs are serialized; a run is never
// cancelled midway.
type Orchestrator struct {
	cfg config.SyncConfig
	d   Deps
	log *slog.Logger

	mu sync.Mutex
}

// New creates an Orchestrator.
func New(cfg config.SyncConfig, d Deps, logger *slog.Logger) *Orchestrator {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	return &Orchestrator{cfg: cfg, d: d, log: logger.With("service", "orchestrator")}
}

// runState is the per-run bookkeeping.
type runState struct {
	ids *IdentifierMap
	// failed holds temporary ids of creations that were given up on in this run.
	failed map[string]bool
}

// Run replays every queue in the fixed order.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	return o.run(ctx, domain.ReplayOrder)
}

// RunQueues replays only the given queues, still in the fixed order.
func (o *Orchestrator) RunQueues(ctx context.Context, queues ...domain.QueueName) (Result, error) {
	return o.run(ctx, domain.OrderQueues(queues...))
}

func (o *Orchestrator) run(ctx context.Context, queues []domain.QueueName) (Result, error) {
	ctx = context.WithoutCancel(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()

	var res Result
	start := o.d.Clock.Now()

	if _, err := o.d.Credentials.Current(ctx); err != nil {
		if errors.Is(err, domain.ErrAuthMissing) {
			o.log.InfoContext(ctx, "sync skipped, no usable credential")
			return res, err
		}
		return res, fmt.Errorf("orchestrator: check auth: %w", err)
	}

	seed, err := o.d.Mappings.All(ctx)
	if err != nil {
		return res, fmt.Errorf("orchestrator: load id mappings: %w", err)
	}
	st := &runState{ids: NewIdentifierMap(seed), failed: make(map[string]bool)}

	for _, q := range queues {
		entries, err := o.d.Entries.Drain(ctx, q)
		if err != nil {
			return res, fmt.Errorf("orchestrator: drain %s: %w", q, err)
		}
		if len(entries) == 0 {
			continue
		}

		var qr QueueResult
		for _, e := range entries {
			o.replayEntry(ctx, st, e, &qr)
		}
		res.add(q, qr)
	}

	o.log.InfoContext(ctx, "sync finished",
		slog.Int("replayed", res.Replayed),
		slog.Int("failed", res.Failed),
		slog.Int("deferred", res.Deferred),
		slog.Int("dead_lettered", res.DeadLettered),
		slog.Int("dropped", res.Dropped),
		slog.Duration("duration", o.d.Clock.Since(start)),
	)

	if res.Synced && o.d.Publisher != nil {
		o.d.Publisher.Publish(domain.Message{
			Type:   domain.MessageSyncCompleted,
			Queues: res.replayedQueues(),
			At:     o.d.Clock.Now(),
		})
	}
	return res, nil
}

func (o *Orchestrator) replayEntry(ctx context.Context, st *runState, e domain.QueueEntry, qr *QueueResult) {
	log := o.log.With(
		slog.String("queue", e.Queue.String()),
		slog.String("entry_id", e.ID),
		slog.Int("attempt", e.Attempts+1),
	)

	rewritten, err := st.ids.Rewrite(e)
	if err != nil {
		o.reject(ctx, st, e, err.Error(), qr)
		return
	}
	e = rewritten

	switch o.dependencyState(ctx, st, e) {
	case depFailed:
		o.reject(ctx, st, e, "unresolved dependency", qr)
		return
	case depPending:
		if err := o.d.Entries.Restore(ctx, e); err != nil {
			log.ErrorContext(ctx, "restore deferred entry", slog.String("error", err.Error()))
		}
		log.DebugContext(ctx, "entry deferred, dependency still pending")
		qr.Deferred++
		return
	}

	req, err := o.d.Builder.BuildRequest(e)
	if err != nil {
		o.reject(ctx, st, e, "malformed payload: "+err.Error(), qr)
		return
	}

	resp, rerr := o.send(ctx, e, req)
	if rerr != nil {
		log.WarnContext(ctx, "replay failed",
			slog.Int("status", rerr.StatusCode),
			slog.Bool("permanent", rerr.Permanent),
			slog.String("error", rerr.Err.Error()),
		)
		o.reconcile(ctx, st, e, rerr, qr)
		return
	}

	qr.Replayed++
	log.DebugContext(ctx, "entry replayed", slog.Int("status", resp.StatusCode))

	if kind, ok := o.d.Builder.Creates(e.Queue); ok {
		o.recordCreation(ctx, st, e, kind, resp.Body)
	}
}

type depState int

const (
	depResolved depState = iota
	depPending
	depFailed
)

// dependencyState checks refs that are still unmapped after rewriting.
func (o *Orchestrator) dependencyState(ctx context.Context, st *runState, e domain.QueueEntry) depState {
	state := depResolved
	for _, ref := range e.Refs {
		if st.failed[ref.ID] {
			return depFailed
		}
		creators := o.d.Builder.CreationQueues(ref.Kind)
		if len(creators) == 0 {
			continue
		}
		pending, err := o.d.Entries.Contains(ctx, ref.ID, creators...)
		if err != nil {
			o.log.WarnContext(ctx, "check pending dependency",
				slog.String("entry_id", e.ID), slog.String("error", err.Error()))
			pending = true
		}
		if pending {
			state = depPending
		}
	}
	return state
}

func (o *Orchestrator) recordCreation(ctx context.Context, st *runState, e domain.QueueEntry, kind domain.EntityKind, body []byte) {
	permID, ok := o.d.Builder.PermanentID(e, body)
	if !ok {
		o.log.WarnContext(ctx, "creation response has no id",
			slog.String("queue", e.Queue.String()), slog.String("entry_id", e.ID))
		return
	}

	st.ids.Set(e.ID, permID)
	if err := o.d.Mappings.Put(ctx, e.ID, permID, kind, o.d.Clock.Now()); err != nil {
		o.log.ErrorContext(ctx, "persist id mapping",
			slog.String("temp_id", e.ID), slog.String("error", err.Error()))
	}

	o.discardSynthetic(ctx, e)

	o.log.InfoContext(ctx, "identifier resolved",
		slog.String("temp_id", e.ID), slog.String("perm_id", permID), slog.String("kind", string(kind)))
}

// discardSynthetic removes the optimistic row a creation entry wrote under
// its temporary id.
func (o *Orchestrator) discardSynthetic(ctx context.Context, e domain.QueueEntry) {
	store, ok := o.d.Builder.SyntheticStore(e.Queue)
	if !ok {
		return
	}
	if err := o.d.Entities.Delete(ctx, store, e.ID); err != nil {
		o.log.WarnContext(ctx, "delete synthetic row",
			slog.String("store", store.String()), slog.String("key", e.ID), slog.String("error", err.Error()))
	}
}

// PruneMappings deletes id mappings older than the configured retention.
func (o *Orchestrator) PruneMappings(ctx context.Context) (int64, error) {
	if o.cfg.IDMapRetention <= 0 {
		return 0, nil
	}
	n, err := o.d.Mappings.DeleteOlderThan(ctx, o.d.Clock.Now().Add(-o.cfg.IDMapRetention))
	if err != nil {
		return 0, fmt.Errorf("orchestrator: prune id mappings: %w", err)
	}
	return n, nil
}
