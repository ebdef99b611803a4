package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	dlrepo "github.com/heartmarshall/glossync/internal/adapter/sqlite/deadletter"
	"github.com/heartmarshall/glossync/internal/domain"
)

type deadLetterService interface {
	List(ctx context.Context, queue domain.QueueName, limit uint64) ([]dlrepo.Letter, error)
	Requeue(ctx context.Context, id int64) (*domain.QueueEntry, error)
	Delete(ctx context.Context, id int64) error
}

// DeadLetterHandler serves dead letter management.
type DeadLetterHandler struct {
	svc deadLetterService
	log *slog.Logger
}

// NewDeadLetterHandler creates a DeadLetterHandler.
func NewDeadLetterHandler(svc deadLetterService, logger *slog.Logger) *DeadLetterHandler {
	return &DeadLetterHandler{svc: svc, log: logger.With("handler", "deadletter")}
}

// List handles GET /dead-letters?queue=&limit=.
func (h *DeadLetterHandler) List(w http.ResponseWriter, r *http.Request) {
	var queue domain.QueueName
	if raw := r.URL.Query().Get("queue"); raw != "" {
		q, err := domain.ParseQueueName(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		queue = q
	}

	var limit uint64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	letters, err := h.svc.List(r.Context(), queue, limit)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if letters == nil {
		letters = []dlrepo.Letter{}
	}
	writeJSON(w, http.StatusOK, letters)
}

// Requeue handles POST /dead-letters/{id}/requeue.
func (h *DeadLetterHandler) Requeue(w http.ResponseWriter, r *http.Request) {
	id, ok := letterID(w, r)
	if !ok {
		return
	}
	entry, err := h.svc.Requeue(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /dead-letters/{id}.
func (h *DeadLetterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := letterID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func letterID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid dead letter id")
		return 0, false
	}
	return id, true
}
