package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/heartmarshall/glossync/internal/adapter/backend"
	"github.com/heartmarshall/glossync/internal/config"
	"github.com/heartmarshall/glossync/internal/domain"
	"github.com/heartmarshall/glossync/pkg/ctxutil"
)

// NewProxy forwards /api/ requests to the owning backend service through
// transport, which is normally the read-path cache interceptor.
func NewProxy(cfg config.BackendConfig, transport http.RoundTripper, logger *slog.Logger) (http.Handler, error) {
	log := logger.With("handler", "proxy")

	targets := make(map[string]*url.URL, 3)
	for _, svc := range []string{domain.ServiceGlossary, domain.ServiceGamification, domain.ServiceUsers} {
		u, err := url.Parse(cfg.ServiceURL(svc))
		if err != nil {
			return nil, fmt.Errorf("proxy: parse %s url: %w", svc, err)
		}
		targets[svc] = u
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(targets[backend.ServiceForPath(pr.In.URL.Path)])
			pr.Out.Host = pr.Out.URL.Host
			if pr.Out.Header.Get("Authorization") == "" {
				if token, ok := ctxutil.TokenFromCtx(pr.In.Context()); ok {
					pr.Out.Header.Set("Authorization", "Bearer "+token)
				}
			}
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.WarnContext(r.Context(), "backend unreachable",
				slog.String("path", r.URL.Path), slog.String("error", err.Error()))
			writeError(w, http.StatusBadGateway, "backend unreachable and no cached copy")
		},
	}, nil
}
