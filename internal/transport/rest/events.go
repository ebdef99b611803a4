package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/heartmarshall/glossync/internal/domain"
	"github.com/heartmarshall/glossync/internal/transport/middleware"
)

const (
	eventsWriteWait  = 10 * time.Second
	eventsPongWait   = 60 * time.Second
	eventsPingPeriod = eventsPongWait * 9 / 10
)

type messageBroker interface {
	Subscribe() (<-chan domain.Message, func())
}

// EventsHandler streams wake-up and sync messages to attached sessions.
type EventsHandler struct {
	broker   messageBroker
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewEventsHandler creates an EventsHandler. Only loopback origins may attach.
func NewEventsHandler(broker messageBroker, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     loopbackOrigin,
		},
		log: logger.With("handler", "events"),
	}
}

// Stream handles GET /events.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.DebugContext(r.Context(), "websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	msgs, cancel := h.broker.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go h.readPump(conn, closed)

	ticker := time.NewTicker(eventsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgs:
			_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// readPump discards client frames and signals when the peer goes away.
func (h *EventsHandler) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	_ = conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read", slog.String("error", err.Error()))
			}
			return
		}
	}
}

func loopbackOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || middleware.IsLoopbackOrigin(origin)
}
