package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/glossync/internal/domain"
)

type entityStore interface {
	GetAll(ctx context.Context, store domain.StoreName) ([]domain.CachedEntity, error)
	Get(ctx context.Context, store domain.StoreName, key string) (*domain.CachedEntity, error)
	GetAllByIndex(ctx context.Context, store domain.StoreName, index, value string) ([]domain.CachedEntity, error)
	Delete(ctx context.Context, store domain.StoreName, key string) error
}

// CacheHandler reads the durable entity stores, including synthetic rows.
type CacheHandler struct {
	entities entityStore
	log      *slog.Logger
}

// NewCacheHandler creates a CacheHandler.
func NewCacheHandler(entities entityStore, logger *slog.Logger) *CacheHandler {
	return &CacheHandler{entities: entities, log: logger.With("handler", "cache")}
}

// GetAll handles GET /cache/{store}.
func (h *CacheHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	store, err := domain.ParseStoreName(r.PathValue("store"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	list, err := h.entities.GetAll(r.Context(), store)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeEntities(w, list)
}

// Get handles GET /cache/{store}/{key}.
func (h *CacheHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, err := domain.ParseStoreName(r.PathValue("store"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	e, err := h.entities.Get(r.Context(), store, r.PathValue("key"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// GetByIndex handles GET /cache/{store}/by/{index}/{value}.
func (h *CacheHandler) GetByIndex(w http.ResponseWriter, r *http.Request) {
	store, err := domain.ParseStoreName(r.PathValue("store"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	index := r.PathValue("index")
	if !store.HasIndex(index) {
		handleError(w, r, h.log, domain.NewValidationError("index", "store has no index "+index))
		return
	}
	list, err := h.entities.GetAllByIndex(r.Context(), store, index, r.PathValue("value"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeEntities(w, list)
}

// Delete handles DELETE /cache/{store}/{key}.
func (h *CacheHandler) Delete(w http.ResponseWriter, r *http.Request) {
	store, err := domain.ParseStoreName(r.PathValue("store"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if err := h.entities.Delete(r.Context(), store, r.PathValue("key")); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeEntities(w http.ResponseWriter, list []domain.CachedEntity) {
	if list == nil {
		list = []domain.CachedEntity{}
	}
	writeJSON(w, http.StatusOK, list)
}
