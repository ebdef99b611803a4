package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/glossync/pkg/ctxutil"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
	}{
		{name: "reuses client id", incoming: "client-req-17"},
		{name: "generates uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var inCtx string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				inCtx = ctxutil.RequestIDFromCtx(r.Context())
				w.WriteHeader(http.StatusAccepted)
			})

			req := httptest.NewRequest(http.MethodPost, "/queues/pending-term-votes", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()

			RequestID()(handler).ServeHTTP(rec, req)

			require.Equal(t, http.StatusAccepted, rec.Code)
			header := rec.Header().Get(RequestIDHeader)
			assert.Equal(t, inCtx, header)
			if tt.incoming != "" {
				assert.Equal(t, tt.incoming, header)
				return
			}
			_, err := uuid.Parse(header)
			assert.NoError(t, err)
		})
	}
}
