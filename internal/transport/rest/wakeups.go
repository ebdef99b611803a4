package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/glossync/internal/domain"
)

type wakeupRegistry interface {
	RegisterWakeup(ctx context.Context, tag domain.WakeupTag) error
}

// WakeupHandler registers wake-up tags for the next online transition.
type WakeupHandler struct {
	registry wakeupRegistry
	log      *slog.Logger
}

// NewWakeupHandler creates a WakeupHandler.
func NewWakeupHandler(registry wakeupRegistry, logger *slog.Logger) *WakeupHandler {
	return &WakeupHandler{registry: registry, log: logger.With("handler", "wakeup")}
}

// Register handles POST /wakeups/{tag}. Registering a tag twice is a no-op.
func (h *WakeupHandler) Register(w http.ResponseWriter, r *http.Request) {
	tag, err := domain.ParseWakeupTag(r.PathValue("tag"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if err := h.registry.RegisterWakeup(r.Context(), tag); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"tag": tag.String()})
}
