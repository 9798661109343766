package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRoomNotFound is returned for operations against a room id that does not
// exist (never created, or already torn down).
var ErrRoomNotFound = errors.New("room not found")

// Registry is the process-wide map of active rooms.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	log   *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{rooms: make(map[string]*Room), log: log}
}

// Create allocates a room under a fresh UUID and returns it. Room ids are
// never reused; on the practically impossible collision a new id is drawn.
func (g *Registry) Create(hostSessionID string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	for {
		id := uuid.New().String()
		if _, exists := g.rooms[id]; exists {
			continue
		}
		r := NewRoom(id, hostSessionID)
		g.rooms[id] = r
		g.log.Info("room created", zap.String("roomId", id), zap.String("host", hostSessionID))
		return r
	}
}

func (g *Registry) Get(id string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[id]
	return r, ok
}

// DeleteIfEmpty removes the room if its membership is still zero, closing it
// against concurrent joins. Returns true if the room was removed.
func (g *Registry) DeleteIfEmpty(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[id]
	if !ok {
		return false
	}
	if !r.markClosed() {
		// A new member slipped in between the last leave and this call.
		return false
	}
	delete(g.rooms, id)
	g.log.Info("room deleted", zap.String("roomId", id))
	return true
}

// Count returns the number of active rooms.
func (g *Registry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
