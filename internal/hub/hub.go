package hub

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"codesync/internal/metrics"
	"codesync/internal/models"
	"codesync/internal/presence"
	"codesync/internal/session"
)

// Hub dispatches client frames onto the room layer. It owns the process-wide
// connection table used for signaling addressing and global chat, and tracks
// which room each session currently belongs to (at most one).
type Hub struct {
	log      *zap.Logger
	registry *session.Registry
	broker   *presence.Broker // nil when presence is disabled

	mu          sync.Mutex
	connections map[string]*session.Client
	sessionRoom map[string]string
}

func New(log *zap.Logger, registry *session.Registry, broker *presence.Broker) *Hub {
	return &Hub{
		log:         log,
		registry:    registry,
		broker:      broker,
		connections: make(map[string]*session.Client),
		sessionRoom: make(map[string]string),
	}
}

// Register adds a freshly connected session to the connection table.
func (h *Hub) Register(c *session.Client) {
	h.mu.Lock()
	h.connections[c.SessionID] = c
	h.mu.Unlock()
	metrics.SessionsConnected.Inc()
	h.log.Info("session connected", zap.String("sessionId", c.SessionID))
}

// Unregister handles transport disconnect: the session leaves its room (same
// cleanup path as an explicit leave) and drops out of the connection table
// before any further event for it could be processed.
func (h *Hub) Unregister(c *session.Client) {
	h.mu.Lock()
	_, known := h.connections[c.SessionID]
	delete(h.connections, c.SessionID)
	roomID := h.sessionRoom[c.SessionID]
	delete(h.sessionRoom, c.SessionID)
	h.mu.Unlock()

	if !known {
		return
	}
	metrics.SessionsConnected.Dec()

	if roomID != "" {
		h.leaveRoom(roomID, c.SessionID)
	}
	h.log.Info("session disconnected", zap.String("sessionId", c.SessionID))
}

// HandleFrame decodes and dispatches one inbound frame. A payload that does
// not decode gets an error frame back; unknown types are logged and ignored.
func (h *Hub) HandleFrame(c *session.Client, frame models.WSFrame) {
	switch frame.Type {
	case models.TypeCreateRoom:
		h.createRoom(c)
	case models.TypeJoinRoom:
		var req models.JoinRoomRequest
		if h.decode(c, frame, &req) {
			h.joinRoom(c, req)
		}
	case models.TypeCodeChange:
		var req models.CodeChange
		if h.decode(c, frame, &req) {
			h.codeChange(c, req)
		}
	case models.TypeCursorChange:
		var req models.CursorChange
		if h.decode(c, frame, &req) {
			h.cursorChange(c, req)
		}
	case models.TypeSendingSignal:
		var req models.SignalRequest
		if h.decode(c, frame, &req) {
			h.sendingSignal(c, req)
		}
	case models.TypeReturnSignal:
		var req models.SignalRequest
		if h.decode(c, frame, &req) {
			h.returningSignal(c, req)
		}
	case models.TypeToggleVideo:
		var req models.ToggleRequest
		if h.decode(c, frame, &req) {
			h.toggleMedia(c, "video", req)
		}
	case models.TypeToggleAudio:
		var req models.ToggleRequest
		if h.decode(c, frame, &req) {
			h.toggleMedia(c, "audio", req)
		}
	case models.TypeChatMessage:
		var req models.ChatMessage
		if h.decode(c, frame, &req) {
			h.chat(c, req)
		}
	default:
		h.log.Debug("unknown frame type",
			zap.String("sessionId", c.SessionID),
			zap.String("type", frame.Type))
	}
}

func (h *Hub) createRoom(c *session.Client) {
	room := h.registry.Create(c.SessionID)
	metrics.RoomsActive.Set(float64(h.registry.Count()))
	c.Send(models.WSFrame{Type: models.TypeRoomCreated, Data: models.RoomCreated{RoomID: room.ID}})
}

func (h *Hub) joinRoom(c *session.Client, req models.JoinRoomRequest) {
	// A session belongs to at most one room; a re-join vacates the old one.
	h.mu.Lock()
	prev := h.sessionRoom[c.SessionID]
	delete(h.sessionRoom, c.SessionID)
	h.mu.Unlock()
	if prev != "" && prev != req.RoomID {
		h.leaveRoom(prev, c.SessionID)
	}

	room, ok := h.registry.Get(req.RoomID)
	if !ok {
		c.Send(models.WSFrame{Type: models.TypeRoomNotFound})
		return
	}
	if !room.Join(c, req.DisplayName) {
		// Room was torn down between lookup and join.
		c.Send(models.WSFrame{Type: models.TypeRoomNotFound})
		return
	}

	h.mu.Lock()
	h.sessionRoom[c.SessionID] = room.ID
	h.mu.Unlock()

	h.broker.Publish(presence.Event{
		Type:        "user-joined",
		RoomID:      room.ID,
		SessionID:   c.SessionID,
		DisplayName: req.DisplayName,
	})
	h.log.Info("member joined",
		zap.String("roomId", room.ID),
		zap.String("sessionId", c.SessionID),
		zap.String("displayName", req.DisplayName))
}

// leaveRoom is the shared cleanup path for disconnects and explicit leaves.
func (h *Hub) leaveRoom(roomID, sessionID string) {
	room, ok := h.registry.Get(roomID)
	if !ok {
		return
	}
	removed, remaining := room.Leave(sessionID)
	if !removed {
		return
	}
	if remaining == 0 {
		h.registry.DeleteIfEmpty(roomID)
		metrics.RoomsActive.Set(float64(h.registry.Count()))
	}
	h.broker.Publish(presence.Event{
		Type:      "user-left",
		RoomID:    roomID,
		SessionID: sessionID,
	})
	h.log.Info("member left",
		zap.String("roomId", roomID),
		zap.String("sessionId", sessionID),
		zap.Int("remaining", remaining))
}

func (h *Hub) codeChange(c *session.Client, req models.CodeChange) {
	room, ok := h.registry.Get(req.RoomID)
	if !ok {
		h.logStale("code_change", req.RoomID, c.SessionID)
		return
	}
	if !room.ApplyEdit(c.SessionID, req.Content, req.CursorPosition) {
		h.logStale("code_change", req.RoomID, c.SessionID)
	}
}

func (h *Hub) cursorChange(c *session.Client, req models.CursorChange) {
	room, ok := h.registry.Get(req.RoomID)
	if !ok {
		h.logStale("cursor_position_change", req.RoomID, c.SessionID)
		return
	}
	if !room.ApplyCursorMove(c.SessionID, req.CursorPosition) {
		h.logStale("cursor_position_change", req.RoomID, c.SessionID)
	}
}

func (h *Hub) toggleMedia(c *session.Client, kind string, req models.ToggleRequest) {
	room, ok := h.registry.Get(req.RoomID)
	if !ok {
		h.logStale("toggle_"+kind, req.RoomID, c.SessionID)
		return
	}
	if !room.ToggleMedia(c.SessionID, kind, req.Enabled) {
		h.logStale("toggle_"+kind, req.RoomID, c.SessionID)
		return
	}
	h.broker.Publish(presence.Event{
		Type:      "media-toggled",
		RoomID:    room.ID,
		SessionID: c.SessionID,
		Kind:      kind,
		Enabled:   req.Enabled,
	})
}

// sendingSignal forwards the caller's opaque handshake payload to the target
// session, tagged with the caller's identity and display name. Addressing is
// by session id over the global connection table, not room-scoped.
func (h *Hub) sendingSignal(c *session.Client, req models.SignalRequest) {
	target, ok := h.lookup(req.TargetSessionID)
	if !ok {
		h.dropSignal("sending_signal", c.SessionID, req.TargetSessionID)
		return
	}
	target.Send(models.WSFrame{Type: models.TypeUserJoinedSignal, Data: models.UserJoinedWithSignal{
		Signal:          req.Signal,
		CallerSessionID: c.SessionID,
		DisplayName:     h.displayName(c.SessionID),
	}})
	metrics.SignalsRelayed.Inc()
}

// returningSignal forwards the answering payload back to the original caller.
func (h *Hub) returningSignal(c *session.Client, req models.SignalRequest) {
	target, ok := h.lookup(req.TargetSessionID)
	if !ok {
		h.dropSignal("returning_signal", c.SessionID, req.TargetSessionID)
		return
	}
	target.Send(models.WSFrame{Type: models.TypeReturnedSignal, Data: models.ReturnedSignal{
		Signal:    req.Signal,
		SessionID: c.SessionID,
	}})
	metrics.SignalsRelayed.Inc()
}

// chat broadcasts to every connected session process-wide, sender included.
// Not room-scoped: reproduces the observed contract, see DESIGN.md.
func (h *Hub) chat(c *session.Client, req models.ChatMessage) {
	frame := models.WSFrame{Type: models.TypeReceiveMessage, Data: models.ReceiveMessage{
		SessionID:   c.SessionID,
		DisplayName: req.DisplayName,
		Text:        req.Text,
	}}

	h.mu.Lock()
	targets := make([]*session.Client, 0, len(h.connections))
	for _, conn := range h.connections {
		targets = append(targets, conn)
	}
	h.mu.Unlock()

	for _, t := range targets {
		t.Send(frame)
	}
	metrics.ChatMessages.Inc()
}

// OnRemotePresence logs membership events from other service instances.
func (h *Hub) OnRemotePresence(event presence.Event) {
	h.log.Info("remote presence event",
		zap.String("instanceId", event.InstanceID),
		zap.String("type", event.Type),
		zap.String("roomId", event.RoomID),
		zap.String("sessionId", event.SessionID))
}

// SetBroker wires the presence broker after construction, resolving the
// broker <-> hub callback cycle.
func (h *Hub) SetBroker(b *presence.Broker) { h.broker = b }

func (h *Hub) lookup(sessionID string) (*session.Client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.connections[sessionID]
	return c, ok
}

// displayName resolves the sender's name through its current room membership.
func (h *Hub) displayName(sessionID string) string {
	h.mu.Lock()
	roomID := h.sessionRoom[sessionID]
	h.mu.Unlock()
	if roomID == "" {
		return ""
	}
	room, ok := h.registry.Get(roomID)
	if !ok {
		return ""
	}
	return room.DisplayName(sessionID)
}

// logStale records an expected race: a mutating event from a session that is
// no longer a member. Dropped silently, never surfaced to other clients.
func (h *Hub) logStale(event, roomID, sessionID string) {
	h.log.Debug("stale session event ignored",
		zap.String("event", event),
		zap.String("roomId", roomID),
		zap.String("sessionId", sessionID))
}

// dropSignal records a destination that vanished mid-handshake. Normal race,
// not an error; the endpoints own handshake timeout recovery.
func (h *Hub) dropSignal(event, from, to string) {
	metrics.SignalsDropped.Inc()
	h.log.Debug("signaling destination gone",
		zap.String("event", event),
		zap.String("from", from),
		zap.String("to", to))
}

// decode converts a frame's loosely typed data into a concrete payload via a
// JSON round-trip. A payload that does not fit the expected shape is rejected
// with an error frame to the sender.
func (h *Hub) decode(c *session.Client, frame models.WSFrame, out any) bool {
	b, err := json.Marshal(frame.Data)
	if err == nil {
		err = json.Unmarshal(b, out)
	}
	if err != nil {
		h.log.Warn("malformed frame payload",
			zap.String("sessionId", c.SessionID),
			zap.String("type", frame.Type),
			zap.Error(err))
		c.Send(models.WSFrame{Type: models.TypeError, Data: models.ErrorMessage{
			Message: "malformed " + frame.Type + " payload",
		}})
		return false
	}
	return true
}
