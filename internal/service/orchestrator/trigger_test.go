package orchestrator

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/glossync/internal/domain"
)

type blockingRunner struct {
	runs    atomic.Int32
	release chan struct{}
	started chan struct{}
	queues  [][]domain.QueueName
	mu      sync.Mutex
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{release: make(chan struct{}), started: make(chan struct{}, 8)}
}

func (r *blockingRunner) Run(context.Context) (Result, error) {
	r.runs.Add(1)
	r.started <- struct{}{}
	<-r.release
	return Result{Synced: true, Replayed: 1}, nil
}

func (r *blockingRunner) RunQueues(_ context.Context, queues ...domain.QueueName) (Result, error) {
	r.mu.Lock()
	r.queues = append(r.queues, queues)
	r.mu.Unlock()
	return Result{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTrigger_Sync_CoalescesConcurrentCallers(t *testing.T) {
	t.Parallel()
	r := newBlockingRunner()
	tr := NewTrigger(r, discardLogger())

	var wg sync.WaitGroup
	results := make([]Result, 3)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = tr.Sync(context.Background())
	}()
	<-r.started

	for i := 1; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = tr.Sync(context.Background())
		}()
	}
	// let the late callers reach the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(r.release)
	wg.Wait()

	assert.Equal(t, int32(1), r.runs.Load())
	for _, res := range results {
		assert.True(t, res.Synced)
	}
}

func TestTrigger_SyncQueues_OrdersQueues(t *testing.T) {
	t.Parallel()
	r := newBlockingRunner()
	tr := NewTrigger(r, discardLogger())

	_, err := tr.SyncQueues(context.Background(), domain.QueueCommentVotes, domain.QueueTermVotes)
	require.NoError(t, err)

	_, err = tr.SyncQueues(context.Background())
	require.NoError(t, err)

	r.mu.Lock()
	defer r.mu.Unlock()
	require.Len(t, r.queues, 1, "an empty queue set does not run")
	assert.Equal(t, []domain.QueueName{domain.QueueTermVotes, domain.QueueCommentVotes}, r.queues[0])
}

func TestTrigger_OnOnline_RunsInBackground(t *testing.T) {
	t.Parallel()
	r := newBlockingRunner()
	tr := NewTrigger(r, discardLogger())

	tr.OnOnline()
	<-r.started
	close(r.release)
	tr.Wait()

	assert.Equal(t, int32(1), r.runs.Load())
}
