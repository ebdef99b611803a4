package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/glossync/internal/domain"
)

type runner interface {
	Run(ctx context.Context) (Result, error)
	RunQueues(ctx context.Context, queues ...domain.QueueName) (Result, error)
}

// Trigger starts sync runs. Concurrent callers asking for the same set of
// queues share one run.
type Trigger struct {
	runner runner
	log    *slog.Logger
	group  singleflight.Group
	wg     sync.WaitGroup
}

// NewTrigger creates a Trigger.
func NewTrigger(r runner, logger *slog.Logger) *Trigger {
	return &Trigger{runner: r, log: logger.With("service", "sync_trigger")}
}

// Sync runs every queue, joining a run already in flight.
func (t *Trigger) Sync(ctx context.Context) (Result, error) {
	v, err, shared := t.group.Do("all", func() (any, error) {
		return t.runner.Run(ctx)
	})
	if shared {
		t.log.DebugContext(ctx, "joined in-flight sync")
	}
	res, _ := v.(Result)
	return res, err
}

// SyncQueues runs only the given queues.
func (t *Trigger) SyncQueues(ctx context.Context, queues ...domain.QueueName) (Result, error) {
	ordered := domain.OrderQueues(queues...)
	if len(ordered) == 0 {
		return Result{}, nil
	}
	key := make([]string, len(ordered))
	for i, q := range ordered {
		key[i] = q.String()
	}
	v, err, _ := t.group.Do(strings.Join(key, ","), func() (any, error) {
		return t.runner.RunQueues(ctx, ordered...)
	})
	res, _ := v.(Result)
	return res, err
}

// Request starts a full run in the background.
func (t *Trigger) Request() {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx := context.Background()
		res, err := t.Sync(ctx)
		switch {
		case errors.Is(err, domain.ErrAuthMissing):
			t.log.InfoContext(ctx, "background sync skipped", slog.String("reason", err.Error()))
		case err != nil:
			t.log.ErrorContext(ctx, "background sync failed", slog.String("error", err.Error()))
		case res.Synced:
			t.log.InfoContext(ctx, "background sync done", slog.Int("replayed", res.Replayed))
		}
	}()
}

// OnOnline is the network monitor callback.
func (t *Trigger) OnOnline() { t.Request() }

// Wait blocks until background runs have finished.
func (t *Trigger) Wait() { t.wg.Wait() }
