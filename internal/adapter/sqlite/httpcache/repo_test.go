package httpcache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/glossync/internal/adapter/sqlite/httpcache"
	"github.com/heartmarshall/glossync/internal/adapter/sqlite/testhelper"
	"github.com/heartmarshall/glossync/internal/domain"
)

func TestRepo_PutGet(t *testing.T) {
	t.Parallel()
	repo := httpcache.New(testhelper.SetupTestDB(t))
	ctx := context.Background()

	exp := time.Now().UTC().Add(time.Minute).Truncate(time.Millisecond)
	in := domain.CachedResponse{
		Key:        "https://api.test/api/terms/t1",
		StatusCode: 200,
		Header:     map[string][]string{"Content-Type": {"application/json"}},
		Body:       []byte(`{"id":"t1"}`),
		StoredAt:   time.Now().UTC().Truncate(time.Millisecond),
		ExpiresAt:  &exp,
	}
	require.NoError(t, repo.Put(ctx, in))

	got, err := repo.Get(ctx, in.Key)
	require.NoError(t, err)
	assert.Equal(t, 200, got.StatusCode)
	assert.Equal(t, in.Body, got.Body)
	assert.Equal(t, "application/json", got.Header["Content-Type"][0])
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, got.ExpiresAt.Equal(exp))

	_, err = repo.Get(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRepo_DeleteExpired(t *testing.T) {
	t.Parallel()
	repo := httpcache.New(testhelper.SetupTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()
	past := now.Add(-time.Hour)

	require.NoError(t, repo.Put(ctx, domain.CachedResponse{Key: "old", StatusCode: 200, Body: []byte("{}"), StoredAt: past, ExpiresAt: &past}))
	require.NoError(t, repo.Put(ctx, domain.CachedResponse{Key: "forever", StatusCode: 200, Body: []byte("{}"), StoredAt: past}))

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.Get(ctx, "forever")
	assert.NoError(t, err)
}
