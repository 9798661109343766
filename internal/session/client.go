package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"codesync/internal/models"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. SDP payloads stay well under this.
	maxMessageSize = 64 * 1024

	// Outbound queue depth per connection.
	sendQueueSize = 256
)

// Client wraps one WebSocket connection. All outbound frames go through a
// buffered queue drained by a single writer goroutine, so delivery order to a
// given client matches enqueue order.
type Client struct {
	SessionID string

	conn *websocket.Conn
	log  *zap.Logger

	mu     sync.Mutex
	send   chan models.WSFrame
	closed bool
	hook   func(models.WSFrame)
}

func NewClient(conn *websocket.Conn, log *zap.Logger) *Client {
	return &Client{
		SessionID: uuid.New().String(),
		conn:      conn,
		log:       log,
		send:      make(chan models.WSFrame, sendQueueSize),
	}
}

// SetSendHook replaces the queued WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(models.WSFrame)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

// Send enqueues a frame for delivery. It never blocks; if the client's queue
// is full the frame is dropped and logged, so a slow consumer cannot stall a
// room's event handling.
func (c *Client) Send(frame models.WSFrame) {
	c.mu.Lock()
	if c.hook != nil {
		hook := c.hook
		c.mu.Unlock()
		hook(frame)
		return
	}
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	// The enqueue stays under the mutex so Close cannot slip in between the
	// closed check and the channel send.
	select {
	case c.send <- frame:
	default:
		c.log.Warn("dropping frame, send queue full",
			zap.String("sessionId", c.SessionID),
			zap.String("type", frame.Type))
	}
}

// Close stops the writer goroutine. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// WritePump drains the outbound queue onto the connection. Run it in its own
// goroutine; it is the only writer on the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				c.log.Debug("write failed", zap.String("sessionId", c.SessionID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ConfigureRead applies read limits and the pong handler. Call once before
// entering the read loop.
func (c *Client) ConfigureRead() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}
