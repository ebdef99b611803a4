package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jonboulle/clockwork"

	"github.com/heartmarshall/glossync/internal/domain"
)

// HeaderCache reports where a response was served from: MISS, HIT or STALE.
const HeaderCache = "X-Cache"

const maxCachedBody = 8 << 20

type responseStore interface {
	Put(ctx context.Context, resp domain.CachedResponse) error
	Get(ctx context.Context, key string) (*domain.CachedResponse, error)
}

type entityStore interface {
	PutMany(ctx context.Context, entities []domain.CachedEntity) error
}

type onlineChecker interface {
	IsOnline() bool
}

// Options tunes the interceptor.
type Options struct {
	MemoryEntries  int
	MemoryTTL      time.Duration
	RefreshTimeout time.Duration
}

// Interceptor is an http.RoundTripper that caches GET responses for matching
// routes. It never writes to queue stores.
type Interceptor struct {
	next      http.RoundTripper
	routes    []Route
	responses responseStore
	entities  entityStore
	online    onlineChecker
	clock     clockwork.Clock
	log       *slog.Logger
	memory    *expirable.LRU[string, domain.CachedResponse]
	refresh   time.Duration

	wg sync.WaitGroup
}

// NewInterceptor wraps next with the cache policies of routes.
func NewInterceptor(
	next http.RoundTripper,
	routes []Route,
	responses responseStore,
	entities entityStore,
	online onlineChecker,
	clock clockwork.Clock,
	logger *slog.Logger,
	opts Options,
) *Interceptor {
	if opts.MemoryEntries <= 0 {
		opts.MemoryEntries = 256
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = 15 * time.Second
	}
	return &Interceptor{
		next:      next,
		routes:    routes,
		responses: responses,
		entities:  entities,
		online:    online,
		clock:     clock,
		log:       logger.With("service", "cache"),
		memory:    expirable.NewLRU[string, domain.CachedResponse](opts.MemoryEntries, nil, opts.MemoryTTL),
		refresh:   opts.RefreshTimeout,
	}
}

// Wait blocks until background stores and refreshes have finished.
func (i *Interceptor) Wait() {
	i.wg.Wait()
}

// RoundTrip implements http.RoundTripper.
func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return i.next.RoundTrip(req)
	}
	route, match := matchRoute(i.routes, req.URL.Path)
	if route == nil || route.Policy == PolicyNetworkOnly {
		return i.next.RoundTrip(req)
	}

	key := cacheKey(req)
	cached := i.lookup(req.Context(), key)

	switch route.Policy {
	case PolicyCacheFirst:
		if cached != nil && cached.Fresh(i.clock.Now()) {
			return cachedResponse(req, cached, "HIT"), nil
		}
		return i.fromNetwork(req, route, match, key, cached)

	default:
		if cached != nil && !i.online.IsOnline() {
			if route.Policy == PolicyStaleWhileRevalidate {
				i.revalidate(req, route, match, key)
			}
			return cachedResponse(req, cached, "STALE"), nil
		}
		return i.fromNetwork(req, route, match, key, cached)
	}
}

// fromNetwork fetches req and falls back to cached on a network error or 5xx.
func (i *Interceptor) fromNetwork(req *http.Request, route *Route, match []string, key string, cached *domain.CachedResponse) (*http.Response, error) {
	resp, err := i.next.RoundTrip(req)
	if err != nil {
		if cached != nil {
			i.log.DebugContext(req.Context(), "serving stale after network error",
				slog.String("route", route.Name), slog.String("error", err.Error()))
			if route.Policy == PolicyStaleWhileRevalidate {
				i.revalidate(req, route, match, key)
			}
			return cachedResponse(req, cached, "STALE"), nil
		}
		return nil, err
	}

	if resp.StatusCode >= 500 && cached != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return cachedResponse(req, cached, "STALE"), nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCachedBody+1))
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("cache: read body: %w", err)
	}
	resp.Header.Set(HeaderCache, "MISS")

	if len(body) > maxCachedBody {
		// Too large to cache: hand back the prefix followed by the unread rest.
		resp.Body = prefixedBody{Reader: io.MultiReader(bytes.NewReader(body), resp.Body), Closer: resp.Body}
		return resp, nil
	}

	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	i.store(route, match, key, resp.StatusCode, resp.Header.Clone(), body)
	return resp, nil
}

type prefixedBody struct {
	io.Reader
	io.Closer
}

// revalidate refreshes key in the background. The response is only stored.
func (i *Interceptor) revalidate(req *http.Request, route *Route, match []string, key string) {
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), i.refresh)
		defer cancel()

		out := req.Clone(ctx)
		resp, err := i.next.RoundTrip(out)
		if err != nil {
			i.log.DebugContext(ctx, "background refresh failed",
				slog.String("route", route.Name), slog.String("error", err.Error()))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxCachedBody+1))
		if err != nil || len(body) > maxCachedBody {
			return
		}
		i.persist(ctx, route, match, key, resp.StatusCode, resp.Header, body)
	}()
}

func (i *Interceptor) store(route *Route, match []string, key string, status int, header http.Header, body []byte) {
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		i.persist(context.Background(), route, match, key, status, header, body)
	}()
}

func (i *Interceptor) persist(ctx context.Context, route *Route, match []string, key string, status int, header http.Header, body []byte) {
	now := i.clock.Now()
	var expiresAt *time.Time
	if route.MaxAge > 0 {
		exp := now.Add(route.MaxAge)
		expiresAt = &exp
	}

	header.Del(HeaderCache)
	resp := domain.CachedResponse{
		Key:        key,
		StatusCode: status,
		Header:     header,
		Body:       body,
		StoredAt:   now,
		ExpiresAt:  expiresAt,
	}
	i.memory.Add(key, resp)
	if err := i.responses.Put(ctx, resp); err != nil {
		i.log.WarnContext(ctx, "store cached response", slog.String("route", route.Name), slog.String("error", err.Error()))
	}

	if route.Mirror == nil {
		return
	}
	entities, err := route.Mirror(match, body, now, expiresAt)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", domain.ErrDeserializationFailed, route.Name, err)
		i.log.WarnContext(ctx, "mirror response", slog.String("route", route.Name), slog.String("error", err.Error()))
		return
	}
	if len(entities) == 0 {
		return
	}
	if err := i.entities.PutMany(ctx, entities); err != nil {
		i.log.WarnContext(ctx, "mirror entities", slog.String("route", route.Name), slog.String("error", err.Error()))
	}
}

func (i *Interceptor) lookup(ctx context.Context, key string) *domain.CachedResponse {
	if resp, ok := i.memory.Get(key); ok {
		return &resp
	}
	resp, err := i.responses.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			i.log.WarnContext(ctx, "load cached response", slog.String("error", err.Error()))
		}
		return nil
	}
	i.memory.Add(key, *resp)
	return resp
}

func cacheKey(req *http.Request) string {
	return req.Method + " " + req.URL.RequestURI()
}

func cachedResponse(req *http.Request, cached *domain.CachedResponse, source string) *http.Response {
	header := http.Header(cached.Header).Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set(HeaderCache, source)
	header.Set("Content-Length", strconv.Itoa(len(cached.Body)))

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", cached.StatusCode, http.StatusText(cached.StatusCode)),
		StatusCode:    cached.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(cached.Body)),
		ContentLength: int64(len(cached.Body)),
		Request:       req,
	}
}
