package rest

import (
	"context"
	"net/http"
	"time"
)

// storePinger defines the minimal interface for store health checks.
type storePinger interface {
	PingContext(ctx context.Context) error
}

type networkState interface {
	IsOnline() bool
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	store   storePinger
	network networkState
	version string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(store storePinger, network networkState, version string) *HealthHandler {
	return &HealthHandler{store: store, network: network, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe. Pings the local store: 200 if OK, 503 if not.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.store.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "down",
			Timestamp: time.Now(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Health is the full health check. Being offline is reported but does not
// make the agent unhealthy.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	components := make(map[string]CompStatus)
	overallStatus := "ok"

	start := time.Now()
	err := h.store.PingContext(ctx)
	latency := time.Since(start)

	if err != nil {
		components["store"] = CompStatus{Status: "down"}
		overallStatus = "down"
	} else {
		components["store"] = CompStatus{
			Status:  "ok",
			Latency: latency.String(),
		}
	}

	if h.network.IsOnline() {
		components["network"] = CompStatus{Status: "online"}
	} else {
		components["network"] = CompStatus{Status: "offline"}
	}

	status := http.StatusOK
	if overallStatus != "ok" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:     overallStatus,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}
