package middleware

import (
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"

	"github.com/heartmarshall/glossync/pkg/ctxutil"
)

// Logger returns middleware that logs each HTTP request with method, path,
// status code, duration, bytes written, and the request id.
func Logger(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", m.Code),
				slog.Duration("duration", m.Duration),
				slog.Int64("bytes", m.Written),
				slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
			}
			if sub := ctxutil.SubjectFromCtx(r.Context()); sub != "" {
				attrs = append(attrs, slog.String("subject", sub))
			}
			if c := w.Header().Get("X-Cache"); c != "" {
				attrs = append(attrs, slog.String("cache", c))
			}

			level := slog.LevelInfo
			if m.Code >= 500 {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "http.request", attrs...)
		})
	}
}
