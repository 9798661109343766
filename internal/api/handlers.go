package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"codesync/internal/hub"
	"codesync/internal/models"
	"codesync/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Handlers struct {
	log      *zap.Logger
	hub      *hub.Hub
	registry *session.Registry
}

func NewHandlers(log *zap.Logger, h *hub.Hub, registry *session.Registry) *Handlers {
	return &Handlers{log: log, hub: h, registry: registry}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("Server is running!"))
}

func (h *Handlers) KeepAlive(w http.ResponseWriter, _ *http.Request) {
	h.log.Info("keep-alive route accessed")
	_, _ = w.Write([]byte("Server is alive"))
}

// RoomStatus serves a read-only snapshot of one room.
func (h *Handlers) RoomStatus(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	room, ok := h.registry.Get(roomID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(room.Status())
}

// WS upgrades the connection and runs the session's read loop. Each inbound
// frame is handled to completion before the next one for this connection is
// read; the deferred unregister is the only cleanup path for both explicit
// leaves and abrupt disconnects.
func (h *Handlers) WS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := session.NewClient(conn, h.log)
	h.hub.Register(client)
	go client.WritePump()
	defer func() {
		h.hub.Unregister(client)
		client.Close()
	}()

	client.ConfigureRead()
	for {
		var frame models.WSFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read error", zap.String("sessionId", client.SessionID), zap.Error(err))
			}
			return
		}
		h.hub.HandleFrame(client, frame)
	}
}
