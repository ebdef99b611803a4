package deadletter_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dlrepo "github.com/heartmarshall/glossync/internal/adapter/sqlite/deadletter"
	queuerepo "github.com/heartmarshall/glossync/internal/adapter/sqlite/queue"
	"github.com/heartmarshall/glossync/internal/adapter/sqlite/testhelper"
	"github.com/heartmarshall/glossync/internal/domain"
	"github.com/heartmarshall/glossync/internal/service/deadletter"
)

func newService(t *testing.T) (*deadletter.Service, *dlrepo.Repo, *queuerepo.Repo) {
	t.Helper()
	db := testhelper.SetupTestDB(t)
	letters := dlrepo.New(db)
	entries := queuerepo.New(db)
	return deadletter.NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), letters, entries), letters, entries
}

func deadEntry(id string) domain.QueueEntry {
	return domain.QueueEntry{
		Seq:        7,
		ID:         id,
		Queue:      domain.QueueTermVotes,
		Payload:    json.RawMessage(`{"term_id":"t-1","direction":"up"}`),
		AuthToken:  "tok",
		Attempts:   5,
		EnqueuedAt: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestService_Requeue(t *testing.T) {
	t.Parallel()
	svc, letters, entries := newService(t)
	ctx := context.Background()

	require.NoError(t, letters.Add(ctx, deadEntry("v1"), "status 500", time.Now()))
	list, err := svc.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got, err := svc.Requeue(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.ID)
	assert.Zero(t, got.Attempts)

	pending, err := entries.List(ctx, domain.QueueTermVotes)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Zero(t, pending[0].Attempts)

	list, err = svc.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_Requeue_AlreadyPending(t *testing.T) {
	t.Parallel()
	svc, letters, entries := newService(t)
	ctx := context.Background()

	_, err := entries.Append(ctx, deadEntry("v1"))
	require.NoError(t, err)
	require.NoError(t, letters.Add(ctx, deadEntry("v1"), "status 500", time.Now()))
	list, err := svc.List(ctx, domain.QueueTermVotes, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.Requeue(ctx, list[0].ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	list, err = svc.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1, "letter kept when requeue fails")
}

func TestService_Delete_NotFound(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t)

	err := svc.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_List_UnknownQueue(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t)

	_, err := svc.List(context.Background(), "pending-nothing", 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
