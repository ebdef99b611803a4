package rest

import (
	"net/http"

	"github.com/heartmarshall/glossync/internal/transport/middleware"
)

// Handlers groups every handler served on the loopback API.
type Handlers struct {
	Health      *HealthHandler
	Queue       *QueueHandler
	Sync        *SyncHandler
	Session     *SessionHandler
	Network     *NetworkHandler
	Cache       *CacheHandler
	DeadLetters *DeadLetterHandler
	Wakeups     *WakeupHandler
	Events      *EventsHandler
	Proxy       http.Handler
}

// NewRouter registers all routes and wraps them in the middleware chain.
func NewRouter(h Handlers, chain middleware.Middleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	mux.HandleFunc("GET /queues", h.Queue.Counts)
	mux.HandleFunc("GET /queues/{queue}", h.Queue.List)
	mux.HandleFunc("POST /queues/{queue}", h.Queue.Enqueue)

	mux.HandleFunc("POST /sync", h.Sync.Sync)

	mux.HandleFunc("GET /session", h.Session.Get)
	mux.HandleFunc("PUT /session", h.Session.Set)
	mux.HandleFunc("DELETE /session", h.Session.Clear)

	mux.HandleFunc("GET /network", h.Network.Status)
	mux.HandleFunc("PUT /network", h.Network.Report)

	mux.HandleFunc("GET /cache/{store}", h.Cache.GetAll)
	mux.HandleFunc("GET /cache/{store}/{key}", h.Cache.Get)
	mux.HandleFunc("GET /cache/{store}/by/{index}/{value}", h.Cache.GetByIndex)
	mux.HandleFunc("DELETE /cache/{store}/{key}", h.Cache.Delete)

	mux.HandleFunc("GET /dead-letters", h.DeadLetters.List)
	mux.HandleFunc("POST /dead-letters/{id}/requeue", h.DeadLetters.Requeue)
	mux.HandleFunc("DELETE /dead-letters/{id}", h.DeadLetters.Delete)

	mux.HandleFunc("POST /wakeups/{tag}", h.Wakeups.Register)

	mux.HandleFunc("GET /events", h.Events.Stream)

	if h.Proxy != nil {
		mux.Handle("/api/", h.Proxy)
	}

	return chain(mux)
}
