// Package backend talks to the glossary backend services over HTTP.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/heartmarshall/glossync/internal/config"
	"github.com/heartmarshall/glossync/internal/domain"
)

const maxBodyBytes = 4 << 20

// Client sends replay requests and health probes to the backend services.
type Client struct {
	cfg        config.BackendConfig
	httpClient *http.Client
	clock      clockwork.Clock
	log        *slog.Logger
}

// NewClient creates a Client whose requests time out after cfg.RequestTimeout.
func NewClient(cfg config.BackendConfig, logger *slog.Logger) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.RequestTimeout}, clockwork.NewRealClock(), logger)
}

// NewClientWithHTTP creates a Client with a custom http.Client and clock (for testing).
func NewClientWithHTTP(cfg config.BackendConfig, hc *http.Client, clock clockwork.Clock, logger *slog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: hc,
		clock:      clock,
		log:        logger.With("adapter", "backend"),
	}
}

// URLFor returns the base URL of a backend service.
func (c *Client) URLFor(service string) string {
	return c.cfg.ServiceURL(service)
}

// Send issues a replay request carrying token as a bearer credential.
// A non-2xx answer is returned as *StatusError.
func (c *Client) Send(ctx context.Context, r domain.ReplayRequest, token string) (*domain.ReplayResponse, error) {
	reqURL := c.URLFor(r.Service) + r.Path

	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("backend: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if len(r.Body) > 0 {
		ct := r.ContentType
		if ct == "" {
			ct = "application/json"
		}
		req.Header.Set("Content-Type", ct)
	}
	if r.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", r.IdempotencyKey)
	}

	c.log.DebugContext(ctx, "backend request", slog.String("method", r.Method), slog.String("url", reqURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: %s %s: %w", r.Method, r.Path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("backend: read body: %w", err)
	}

	c.log.DebugContext(ctx, "backend response",
		slog.String("method", r.Method),
		slog.String("url", reqURL),
		slog.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: r.Method, Path: r.Path, Code: resp.StatusCode, Body: respBody}
	}

	return &domain.ReplayResponse{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// Ping probes the glossary service health endpoint and returns the round-trip
// time. Any HTTP answer, whatever its status, means the backend is reachable.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	reqURL := c.URLFor(domain.ServiceGlossary) + c.cfg.HealthPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("backend: create probe: %w", err)
	}

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("backend: probe: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()

	return c.clock.Since(start), nil
}

// ServiceForPath picks the backend service that serves an /api path.
func ServiceForPath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/xp"), strings.HasSuffix(path, "/xp"):
		return domain.ServiceGamification
	case strings.HasPrefix(path, "/api/users"):
		return domain.ServiceUsers
	default:
		return domain.ServiceGlossary
	}
}
