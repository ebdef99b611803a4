package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/glossync/internal/domain"
	"github.com/heartmarshall/glossync/internal/service/orchestrator"
)

type syncer interface {
	Sync(ctx context.Context) (orchestrator.Result, error)
	SyncQueues(ctx context.Context, queues ...domain.QueueName) (orchestrator.Result, error)
}

// SyncHandler runs the orchestrator on demand.
type SyncHandler struct {
	trigger syncer
	log     *slog.Logger
}

// NewSyncHandler creates a SyncHandler.
func NewSyncHandler(trigger syncer, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{trigger: trigger, log: logger.With("handler", "sync")}
}

// Sync handles POST /sync. Repeated ?queue= parameters limit the run.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var queues []domain.QueueName
	for _, raw := range r.URL.Query()["queue"] {
		q, err := domain.ParseQueueName(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		queues = append(queues, q)
	}

	var (
		res orchestrator.Result
		err error
	)
	if len(queues) > 0 {
		res, err = h.trigger.SyncQueues(r.Context(), queues...)
	} else {
		res, err = h.trigger.Sync(r.Context())
	}
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
