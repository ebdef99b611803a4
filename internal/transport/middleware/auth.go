package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/heartmarshall/glossync/internal/auth"
	"github.com/heartmarshall/glossync/pkg/ctxutil"
)

type credentialSource interface {
	Current(ctx context.Context) (auth.Credential, error)
}

// TokenCapture puts the caller's bearer token into the request context so
// queued actions can carry it. Requests without an Authorization header fall
// back to the stored session credential. Tokens are never validated here.
func TokenCapture(creds credentialSource) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := extractBearerToken(r); token != "" {
				ctx = ctxutil.WithToken(ctx, token)
				if c, err := auth.Inspect(token); err == nil && c.Subject != "" {
					ctx = ctxutil.WithSubject(ctx, c.Subject)
				}
			} else if c, err := creds.Current(ctx); err == nil {
				ctx = ctxutil.WithToken(ctx, c.Token)
				if c.Subject != "" {
					ctx = ctxutil.WithSubject(ctx, c.Subject)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}
