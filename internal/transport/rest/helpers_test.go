package rest

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/heartmarshall/glossync/internal/domain"
	"github.com/heartmarshall/glossync/internal/service/orchestrator"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingTrigger struct {
	requests atomic.Int32

	result  orchestrator.Result
	err     error
	queues  []domain.QueueName
	fullRun bool
}

func (c *countingTrigger) Request() { c.requests.Add(1) }

func (c *countingTrigger) Sync(context.Context) (orchestrator.Result, error) {
	c.fullRun = true
	return c.result, c.err
}

func (c *countingTrigger) SyncQueues(_ context.Context, queues ...domain.QueueName) (orchestrator.Result, error) {
	c.queues = queues
	return c.result, c.err
}
