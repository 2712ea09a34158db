package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-casefile-be/internal/model"
	"ai-casefile-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisChannel carries notification envelopes between instances so a player
// connected to one replica still receives events produced on another.
const redisChannel = "casefile_notifications"

type envelope struct {
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

// Hub tracks live websocket connections per user. A user may hold several
// connections at once (multiple tabs or devices), each one gets the message.
type Hub struct {
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// rdb is optional; without it delivery stays instance-local.
	rdb    *redis.Client
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.listenRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "client connected", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			current := h.clients[client.UserID]
			remaining := current[:0]
			for _, c := range current {
				if c == client {
					close(client.Send)
					continue
				}
				remaining = append(remaining, c)
			}
			if len(remaining) == 0 {
				delete(h.clients, client.UserID)
			} else {
				h.clients[client.UserID] = remaining
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "client disconnected", map[string]interface{}{"user_id": client.UserID})
		}
	}
}

// Send pushes a notification to every live connection of one user, locally
// and, via redis, on any other instance holding connections for them.
func (h *Hub) Send(userID uuid.UUID, notification model.Notification) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})
	if err != nil {
		h.logger.Error("Hub", "failed to encode notification", map[string]interface{}{"error": err.Error()})
		return
	}

	// With redis in play every instance, this one included, delivers off the
	// subscription; delivering locally as well would double up the message.
	if h.rdb == nil {
		h.deliverLocal(userID, data)
		return
	}

	raw, _ := json.Marshal(envelope{TargetUserID: userID.String(), Message: data})
	if err := h.rdb.Publish(context.Background(), redisChannel, raw).Err(); err != nil {
		h.logger.Warn("Hub", "redis publish failed, delivering locally only", map[string]interface{}{"error": err.Error()})
		h.deliverLocal(userID, data)
	}
}

func (h *Hub) deliverLocal(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.clients[userID]...)
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// Slow consumer, drop the connection rather than block the hub.
			h.logger.Warn("Hub", "send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
			h.unregister <- client
		}
	}
}

func (h *Hub) listenRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			h.logger.Warn("Hub", "malformed redis envelope", map[string]interface{}{"error": err.Error()})
			continue
		}
		uid, err := uuid.Parse(env.TargetUserID)
		if err != nil {
			continue
		}
		h.deliverLocal(uid, env.Message)
	}
}
