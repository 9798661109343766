package session

import (
	"sort"
	"sync"
	"time"

	"codesync/internal/models"
)

// Member is one participant's state inside a room.
type Member struct {
	SessionID    string
	DisplayName  string
	VideoEnabled bool
	AudioEnabled bool
	Cursor       *models.CursorPosition

	client  *Client
	joinSeq int
}

// Room holds the authoritative document state and the member roster.
//
// Every mutating method broadcasts its notifications inside the same critical
// section as the state change. Combined with the per-client FIFO send queue,
// this keeps delivery order to each member equal to the order in which the
// room processed the mutations.
type Room struct {
	ID            string
	HostSessionID string
	CreatedAt     time.Time

	mu      sync.Mutex
	members map[string]*Member
	nextSeq int
	closed  bool

	content string
	cursor  *models.CursorPosition
}

func NewRoom(id, hostSessionID string) *Room {
	return &Room{
		ID:            id,
		HostSessionID: hostSessionID,
		CreatedAt:     time.Now(),
		members:       make(map[string]*Member),
	}
}

// Join adds the client as a member, sends it the current document state and
// roster, introduces it pairwise to every existing member (signal == null in
// both directions), and notifies the rest of the room. A session already in
// the room only gets its state re-sent. Returns false if the room has already
// been torn down.
func (r *Room) Join(c *Client, displayName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}

	// A session re-sending join for a room it already occupies gets its state
	// re-sent; running introductions again would pair members twice.
	if m, ok := r.members[c.SessionID]; ok {
		m.DisplayName = displayName
		c.Send(models.WSFrame{Type: models.TypeInitialRoomData, Data: models.InitialRoomData{
			DocumentContent: r.content,
			CursorPosition:  r.cursor,
			Members:         r.rosterLocked(),
		}})
		return true
	}

	existing := r.orderedMembers()

	m := &Member{
		SessionID:    c.SessionID,
		DisplayName:  displayName,
		VideoEnabled: true,
		AudioEnabled: true,
		client:       c,
		joinSeq:      r.nextSeq,
	}
	r.nextSeq++
	r.members[c.SessionID] = m

	c.Send(models.WSFrame{Type: models.TypeInitialRoomData, Data: models.InitialRoomData{
		DocumentContent: r.content,
		CursorPosition:  r.cursor,
		Members:         r.rosterLocked(),
	}})

	for _, peer := range existing {
		peer.client.Send(models.WSFrame{Type: models.TypeUserJoinedSignal, Data: models.UserJoinedWithSignal{
			CallerSessionID: c.SessionID,
			DisplayName:     displayName,
		}})
		c.Send(models.WSFrame{Type: models.TypeUserJoinedSignal, Data: models.UserJoinedWithSignal{
			CallerSessionID: peer.SessionID,
			DisplayName:     peer.DisplayName,
		}})
	}

	r.broadcastLocked(c.SessionID, models.WSFrame{Type: models.TypeUserJoined, Data: models.UserJoined{
		SessionID:   c.SessionID,
		DisplayName: displayName,
		Members:     r.rosterLocked(),
	}})
	return true
}

// Leave removes the member and notifies the remainder. Idempotent: a session
// already gone yields removed == false and no broadcast. remaining is the
// member count after removal.
func (r *Room) Leave(sessionID string) (removed bool, remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[sessionID]; !ok {
		return false, len(r.members)
	}
	delete(r.members, sessionID)
	if len(r.members) > 0 {
		r.broadcastLocked(sessionID, models.WSFrame{Type: models.TypeUserLeft, Data: models.UserLeft{
			SessionID: sessionID,
			Members:   r.rosterLocked(),
		}})
	}
	return true, len(r.members)
}

// ApplyEdit overwrites the document with the sender's content, last writer
// wins, and rebroadcasts to every other member. Returns false without any
// mutation if the session is not a current member.
func (r *Room) ApplyEdit(sessionID, content string, cursor *models.CursorPosition) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[sessionID]
	if !ok {
		return false
	}
	r.content = content
	r.cursor = cursor
	m.Cursor = cursor
	r.broadcastLocked(sessionID, models.WSFrame{Type: models.TypeReceiveCode, Data: models.ReceiveCodeChange{
		Content:        content,
		CursorPosition: cursor,
		SessionID:      sessionID,
	}})
	return true
}

// ApplyCursorMove updates only the member's cursor and rebroadcasts it.
func (r *Room) ApplyCursorMove(sessionID string, cursor *models.CursorPosition) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[sessionID]
	if !ok {
		return false
	}
	m.Cursor = cursor
	r.cursor = cursor
	r.broadcastLocked(sessionID, models.WSFrame{Type: models.TypeReceiveCursor, Data: models.ReceiveCursorPosition{
		SessionID:      sessionID,
		CursorPosition: cursor,
	}})
	return true
}

// ToggleMedia flips the member's video or audio flag and notifies the others.
func (r *Room) ToggleMedia(sessionID, kind string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[sessionID]
	if !ok {
		return false
	}
	switch kind {
	case "video":
		m.VideoEnabled = enabled
	case "audio":
		m.AudioEnabled = enabled
	default:
		return false
	}
	r.broadcastLocked(sessionID, models.WSFrame{Type: models.TypeMediaToggled, Data: models.MediaToggled{
		SessionID: sessionID,
		Kind:      kind,
		Enabled:   enabled,
	}})
	return true
}

// DisplayName returns the member's display name, or "" if absent.
func (r *Room) DisplayName(sessionID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.members[sessionID]; ok {
		return m.DisplayName
	}
	return ""
}

// MemberCount returns the current roster size.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Document returns the current document content.
func (r *Room) Document() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content
}

// Status returns the read-only snapshot served over HTTP.
func (r *Room) Status() models.RoomStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.RoomStatus{
		ID:            r.ID,
		HostSessionID: r.HostSessionID,
		MemberCount:   len(r.members),
		Members:       r.rosterLocked(),
		CreatedAt:     r.CreatedAt,
	}
}

// markClosed flags the room as torn down so a racing Join cannot resurrect it
// after the registry dropped it. Returns false if members remain.
func (r *Room) markClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) > 0 {
		return false
	}
	r.closed = true
	return true
}

// orderedMembers returns members sorted by join order. Callers must hold r.mu.
func (r *Room) orderedMembers() []*Member {
	out := make([]*Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].joinSeq < out[j].joinSeq })
	return out
}

// rosterLocked projects the roster in join order. Callers must hold r.mu.
func (r *Room) rosterLocked() []models.MemberInfo {
	members := r.orderedMembers()
	out := make([]models.MemberInfo, 0, len(members))
	for _, m := range members {
		out = append(out, models.MemberInfo{
			SessionID:      m.SessionID,
			DisplayName:    m.DisplayName,
			VideoEnabled:   m.VideoEnabled,
			AudioEnabled:   m.AudioEnabled,
			CursorPosition: m.Cursor,
		})
	}
	return out
}

// broadcastLocked enqueues the frame to every member except sender. Callers
// must hold r.mu; Send only enqueues, so no network write happens under the
// lock.
func (r *Room) broadcastLocked(senderSessionID string, frame models.WSFrame) {
	for _, m := range r.orderedMembers() {
		if m.SessionID == senderSessionID {
			continue
		}
		m.client.Send(frame)
	}
}
