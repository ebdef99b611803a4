package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/glossync/internal/adapter/sqlite/testhelper"
	wakeuprepo "github.com/heartmarshall/glossync/internal/adapter/sqlite/wakeup"
	"github.com/heartmarshall/glossync/internal/domain"
	"github.com/heartmarshall/glossync/internal/wakeup"
)

func TestWakeupHandler_Register(t *testing.T) {
	t.Parallel()

	registry := wakeup.NewRegistry(wakeuprepo.New(testhelper.SetupTestDB(t)), clockwork.NewFakeClock(), newTestLogger())
	h := NewWakeupHandler(registry, newTestLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /wakeups/{tag}", h.Register)

	for range 2 {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/wakeups/comment-sync", nil))
		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.JSONEq(t, `{"tag":"comment-sync"}`, rec.Body.String())
	}

	tags, err := registry.Pending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.WakeupTag{domain.TagCommentSync}, tags)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/wakeups/periodic", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
