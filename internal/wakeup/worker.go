package wakeup

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/heartmarshall/glossync/internal/domain"
	"github.com/heartmarshall/glossync/internal/service/orchestrator"
)

type registry interface {
	Pending(ctx context.Context) ([]domain.WakeupTag, error)
	Consume(ctx context.Context, tag domain.WakeupTag) (bool, error)
}

type replayer interface {
	SyncQueues(ctx context.Context, queues ...domain.QueueName) (orchestrator.Result, error)
}

type publisher interface {
	Publish(msg domain.Message)
}

// Worker handles registered wake-up tags on online transitions. Each tag is
// consumed before its handler runs, so overlapping triggers run it once.
type Worker struct {
	registry registry
	replayer replayer
	broker   publisher
	clock    clockwork.Clock
	log      *slog.Logger

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewWorker creates a Worker.
func NewWorker(reg registry, rep replayer, broker publisher, clock clockwork.Clock, logger *slog.Logger) *Worker {
	return &Worker{
		registry: reg,
		replayer: rep,
		broker:   broker,
		clock:    clock,
		log:      logger.With("service", "wakeup_worker"),
	}
}

// OnOnline starts Wake in the background. Subscribe it to the network monitor
// when no foreground sync runs on reconnect.
func (w *Worker) OnOnline() { w.start(true) }

// NotifyOnline consumes pending tags and publishes their messages without the
// direct replays. Subscribe it instead of OnOnline when a full foreground sync
// already runs on the same transition.
func (w *Worker) NotifyOnline() { w.start(false) }

func (w *Worker) start(replay bool) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if _, err := w.wake(context.Background(), replay); err != nil {
			w.log.Error("wake-up failed", slog.String("error", err.Error()))
		}
	}()
}

// Wait blocks until background wake-ups started by OnOnline have finished.
func (w *Worker) Wait() {
	w.wg.Wait()
}

// Wake handles every pending tag and returns how many ran. A call made while
// another is in flight returns immediately.
func (w *Worker) Wake(ctx context.Context) (int, error) {
	return w.wake(ctx, true)
}

func (w *Worker) wake(ctx context.Context, replay bool) (int, error) {
	if !w.running.CompareAndSwap(false, true) {
		return 0, nil
	}
	defer w.running.Store(false)

	tags, err := w.registry.Pending(ctx)
	if err != nil {
		return 0, err
	}

	ran := 0
	for _, tag := range tags {
		ok, err := w.registry.Consume(ctx, tag)
		if err != nil {
			w.log.ErrorContext(ctx, "consume wake-up", slog.String("tag", tag.String()), slog.String("error", err.Error()))
			continue
		}
		if !ok {
			continue
		}
		w.handle(ctx, tag, replay)
		ran++
	}
	return ran, nil
}

func (w *Worker) handle(ctx context.Context, tag domain.WakeupTag, replay bool) {
	queues := tag.DirectQueues()
	if replay && len(queues) > 0 {
		res, err := w.replayer.SyncQueues(ctx, queues...)
		switch {
		case errors.Is(err, domain.ErrAuthMissing):
			w.log.InfoContext(ctx, "wake-up replay skipped, no credential", slog.String("tag", tag.String()))
		case err != nil:
			w.log.ErrorContext(ctx, "wake-up replay", slog.String("tag", tag.String()), slog.String("error", err.Error()))
		default:
			w.log.InfoContext(ctx, "wake-up replay",
				slog.String("tag", tag.String()),
				slog.Int("replayed", res.Replayed),
				slog.Int("failed", res.Failed),
			)
		}
	}

	w.broker.Publish(domain.Message{
		Type:   tag.Message(),
		Tag:    tag.String(),
		Queues: queues,
		At:     w.clock.Now(),
	})
}
