package devserver

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Hub fans pushed events out to every connected websocket client. When a
// redis client is supplied, each event is also mirrored to a stream so other
// server instances (or offline consumers) can pick it up.
type Hub struct {
	log    zerolog.Logger
	mirror *redis.Client
	stream string

	mu    sync.Mutex
	conns map[*websocket.Conn]*client
}

// client pairs a connection with its write lock. Broadcasts come from
// arbitrary handler goroutines and gorilla allows one writer per connection
// at a time, so every write goes through the lock.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func NewHub(log zerolog.Logger, mirror *redis.Client, stream string) *Hub {
	return &Hub{
		log:    log,
		mirror: mirror,
		stream: stream,
		conns:  make(map[*websocket.Conn]*client),
	}
}

func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = &client{conn: conn}
	h.mu.Unlock()
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// Broadcast delivers one named event to all connected clients. A client that
// fails to accept the write is dropped; delivery is best effort and
// at-most-once per connection.
func (h *Hub) Broadcast(event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("encode event failed")
		return
	}
	envelope, err := json.Marshal(map[string]json.RawMessage{
		"event": json.RawMessage(`"` + event + `"`),
		"data":  payload,
	})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("encode envelope failed")
		return
	}

	h.mu.Lock()
	clients := make([]*client, 0, len(h.conns))
	for _, cl := range h.conns {
		clients = append(clients, cl)
	}
	h.mu.Unlock()

	for _, cl := range clients {
		if err := cl.write(envelope); err != nil {
			h.log.Warn().Err(err).Msg("drop unresponsive socket client")
			h.Unregister(cl.conn)
		}
	}

	h.mirrorEvent(event, payload)
}

func (h *Hub) mirrorEvent(event string, payload []byte) {
	if h.mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := h.mirror.XAdd(ctx, &redis.XAddArgs{
		Stream: h.stream,
		Values: map[string]any{
			"event": event,
			"data":  string(payload),
		},
	}).Err()
	if err != nil {
		h.log.Warn().Err(err).Str("event", event).Msg("mirror event to stream failed")
	}
}

// Close drops every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[*websocket.Conn]*client)
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}
