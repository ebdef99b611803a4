package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/heartmarshall/glossync/internal/config"
	"github.com/heartmarshall/glossync/internal/domain"
)

// statusCoder is implemented by transport errors that carry an HTTP status.
type statusCoder interface {
	HTTPStatus() int
}

// classify returns the status code carried by err (0 if none) and whether
// the failure is permanent. Network errors, 408, 429 and 5xx are transient.
func classify(err error) (int, bool) {
	var sc statusCoder
	if !errors.As(err, &sc) {
		return 0, false
	}
	code := sc.HTTPStatus()
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= 500:
		return code, false
	case code >= 400:
		return code, true
	default:
		return code, false
	}
}

func (o *Orchestrator) newBackOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(o.cfg.RetryInitialInterval),
		backoff.WithMaxInterval(o.cfg.RetryMaxInterval),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(b, o.cfg.RetryAttempts), ctx)
}

// send replays one request with in-run retries for transient failures.
func (o *Orchestrator) send(ctx context.Context, e domain.QueueEntry, req domain.ReplayRequest) (*domain.ReplayResponse, *domain.ReplayError) {
	req.IdempotencyKey = e.ID

	op := func() (*domain.ReplayResponse, error) {
		resp, err := o.d.Sender.Send(ctx, req, e.AuthToken)
		if err != nil {
			if _, permanent := classify(err); permanent {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return resp, nil
	}
	notify := func(err error, wait time.Duration) {
		o.log.DebugContext(ctx, "replay retry scheduled",
			slog.String("queue", e.Queue.String()),
			slog.String("entry_id", e.ID),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()),
		)
	}

	resp, err := backoff.RetryNotifyWithData(op, o.newBackOff(ctx), notify)
	if err == nil {
		return resp, nil
	}
	code, permanent := classify(err)
	return nil, &domain.ReplayError{
		Queue:      e.Queue,
		EntryID:    e.ID,
		StatusCode: code,
		Permanent:  permanent,
		Err:        err,
	}
}

// reconcile applies the failure policy to an entry whose replay failed.
func (o *Orchestrator) reconcile(ctx context.Context, st *runState, e domain.QueueEntry, rerr *domain.ReplayError, qr *QueueResult) {
	qr.Failed++

	if o.cfg.FailurePolicy == config.FailurePolicyDrop {
		o.drop(ctx, st, e, rerr.Error(), qr)
		return
	}

	if rerr.Responded() {
		e.Attempts++
	}
	if rerr.Permanent || e.Attempts >= o.cfg.MaxAttempts {
		o.deadLetter(ctx, st, e, rerr.Error(), qr)
		return
	}

	if err := o.d.Entries.Restore(ctx, e); err != nil {
		o.log.ErrorContext(ctx, "restore failed entry",
			slog.String("queue", e.Queue.String()), slog.String("entry_id", e.ID), slog.String("error", err.Error()))
	}
}

// reject handles entries that cannot be sent at all.
func (o *Orchestrator) reject(ctx context.Context, st *runState, e domain.QueueEntry, reason string, qr *QueueResult) {
	qr.Failed++
	if o.cfg.FailurePolicy == config.FailurePolicyDrop {
		o.drop(ctx, st, e, reason, qr)
		return
	}
	o.deadLetter(ctx, st, e, reason, qr)
}

func (o *Orchestrator) drop(ctx context.Context, st *runState, e domain.QueueEntry, reason string, qr *QueueResult) {
	qr.Dropped++
	st.markFailed(o.d.Builder, e)
	o.discardSynthetic(ctx, e)
	o.log.WarnContext(ctx, "entry dropped",
		slog.String("queue", e.Queue.String()), slog.String("entry_id", e.ID), slog.String("reason", reason))
}

func (o *Orchestrator) deadLetter(ctx context.Context, st *runState, e domain.QueueEntry, reason string, qr *QueueResult) {
	if err := o.d.DeadLetters.Add(ctx, e, reason, o.d.Clock.Now()); err != nil {
		o.log.ErrorContext(ctx, "dead-letter entry, restoring",
			slog.String("queue", e.Queue.String()), slog.String("entry_id", e.ID), slog.String("error", err.Error()))
		if rerr := o.d.Entries.Restore(ctx, e); rerr != nil {
			o.log.ErrorContext(ctx, "restore entry", slog.String("entry_id", e.ID), slog.String("error", rerr.Error()))
		}
		return
	}
	qr.DeadLettered++
	st.markFailed(o.d.Builder, e)
	o.discardSynthetic(ctx, e)
	o.log.WarnContext(ctx, "entry dead-lettered",
		slog.String("queue", e.Queue.String()),
		slog.String("entry_id", e.ID),
		slog.Int("attempts", e.Attempts),
		slog.String("reason", reason),
	)
}

// markFailed records a creation that was given up on, so its dependents
// are not sent with a temporary id.
func (s *runState) markFailed(b RequestBuilder, e domain.QueueEntry) {
	if _, ok := b.Creates(e.Queue); ok {
		s.failed[e.ID] = true
	}
}
