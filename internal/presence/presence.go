package presence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channel = "codesync:presence"

// Event describes a membership change on one service instance, published so
// other instances gain presence visibility. Rooms themselves stay pinned to a
// single instance; this channel carries observability, not room state.
type Event struct {
	Type        string    `json:"type"` // "user-joined", "user-left", "media-toggled"
	RoomID      string    `json:"roomId"`
	SessionID   string    `json:"sessionId"`
	DisplayName string    `json:"displayName,omitempty"`
	Kind        string    `json:"kind,omitempty"`
	Enabled     bool      `json:"enabled,omitempty"`
	InstanceID  string    `json:"instanceId"`
	Timestamp   time.Time `json:"timestamp"`
}

// Broker publishes local membership events to Redis and relays remote ones to
// a handler. A nil *Broker is valid and inert, so callers need no branching
// when presence is not configured.
type Broker struct {
	rdb        *redis.Client
	instanceID string
	log        *zap.Logger
	onRemote   func(Event)
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewBroker(redisAddr string, log *zap.Logger, onRemote func(Event)) *Broker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		rdb:        redis.NewClient(&redis.Options{Addr: redisAddr}),
		instanceID: uuid.New().String(),
		log:        log,
		onRemote:   onRemote,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// InstanceID returns this broker's unique instance identifier.
func (b *Broker) InstanceID() string {
	if b == nil {
		return ""
	}
	return b.instanceID
}

// Publish sends the event to the presence channel. Fire and forget: Redis
// being unreachable never fails the room operation that triggered the event.
func (b *Broker) Publish(event Event) {
	if b == nil {
		return
	}
	event.InstanceID = b.instanceID
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		b.log.Error("failed to marshal presence event", zap.Error(err))
		return
	}
	if err := b.rdb.Publish(b.ctx, channel, data).Err(); err != nil {
		b.log.Warn("failed to publish presence event", zap.Error(err))
	}
}

// Run subscribes to the presence channel and dispatches remote events until
// Close is called. Events published by this instance are ignored.
func (b *Broker) Run() {
	if b == nil {
		return
	}
	pubsub := b.rdb.Subscribe(b.ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	b.log.Info("subscribed to presence events", zap.String("instanceId", b.instanceID))

	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.log.Warn("failed to unmarshal presence event", zap.Error(err))
				continue
			}
			if event.InstanceID == b.instanceID {
				continue
			}
			if b.onRemote != nil {
				b.onRemote(event)
			}
		}
	}
}

// Close stops the subscriber loop and releases the Redis client.
func (b *Broker) Close() {
	if b == nil {
		return
	}
	b.cancel()
	_ = b.rdb.Close()
}
