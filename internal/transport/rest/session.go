package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/glossync/internal/auth"
)

type credentialStore interface {
	Current(ctx context.Context) (auth.Credential, error)
	Set(ctx context.Context, token string) (auth.Credential, error)
	Clear(ctx context.Context) error
}

// SessionHandler manages the stored session credential used for sync runs.
type SessionHandler struct {
	creds   credentialStore
	trigger syncRequester
	network networkState
	log     *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(creds credentialStore, trigger syncRequester, network networkState, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{creds: creds, trigger: trigger, network: network, log: logger.With("handler", "session")}
}

type setSessionRequest struct {
	Token string `json:"token"`
}

// Get handles GET /session. The token itself is never returned.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.creds.Current(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Set handles PUT /session. A new credential may unblock pending actions,
// so a sync is requested when online.
func (h *SessionHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req setSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	c, err := h.creds.Set(r.Context(), req.Token)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if h.network.IsOnline() {
		h.trigger.Request()
	}
	writeJSON(w, http.StatusOK, c)
}

// Clear handles DELETE /session.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.creds.Clear(r.Context()); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
