package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/glossync/internal/domain"
)

type queueService interface {
	Enqueue(ctx context.Context, q domain.QueueName, body []byte) (*domain.QueueEntry, error)
	List(ctx context.Context, q domain.QueueName) ([]domain.QueueEntry, error)
	Counts(ctx context.Context) (map[domain.QueueName]int, error)
}

type syncRequester interface {
	Request()
}

// QueueHandler serves the pending-action queues.
type QueueHandler struct {
	svc     queueService
	trigger syncRequester
	network networkState
	log     *slog.Logger
}

// NewQueueHandler creates a QueueHandler.
func NewQueueHandler(svc queueService, trigger syncRequester, network networkState, logger *slog.Logger) *QueueHandler {
	return &QueueHandler{svc: svc, trigger: trigger, network: network, log: logger.With("handler", "queue")}
}

type enqueueResponse struct {
	ID         string           `json:"id"`
	Queue      domain.QueueName `json:"queue"`
	EnqueuedAt time.Time        `json:"enqueued_at"`
}

// Counts handles GET /queues.
func (h *QueueHandler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Counts(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	out := make(map[domain.QueueName]int, len(domain.ReplayOrder))
	for _, q := range domain.ReplayOrder {
		out[q] = counts[q]
	}
	writeJSON(w, http.StatusOK, out)
}

// List handles GET /queues/{queue}.
func (h *QueueHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := domain.ParseQueueName(r.PathValue("queue"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	entries, err := h.svc.List(r.Context(), q)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if entries == nil {
		entries = []domain.QueueEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Enqueue handles POST /queues/{queue}. The action is stored locally and
// acknowledged; a sync is requested only when the network is up.
func (h *QueueHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	q, err := domain.ParseQueueName(r.PathValue("queue"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	entry, err := h.svc.Enqueue(r.Context(), q, body)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	if h.network.IsOnline() {
		h.trigger.Request()
	}

	writeJSON(w, http.StatusAccepted, enqueueResponse{
		ID:         entry.ID,
		Queue:      entry.Queue,
		EnqueuedAt: entry.EnqueuedAt,
	})
}
