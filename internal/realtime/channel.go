// Package realtime maintains the live-updates connection: one websocket per
// authenticated session, carrying named {event, data} envelopes. The channel
// is an explicitly constructed value owned by whoever drives the session
// lifecycle; it holds no global state.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"patientcall/internal/config"
	"patientcall/internal/credstore"
)

// Handler consumes the raw data block of one pushed event.
type Handler func(data json.RawMessage)

type Channel struct {
	url    string
	creds  *credstore.Store
	dialer *websocket.Dialer
	log    zerolog.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	handlers map[string]Handler
}

func NewChannel(cfg config.SocketConfig, creds *credstore.Store, log zerolog.Logger) *Channel {
	return &Channel{
		url:   wsURL(cfg.URL),
		creds: creds,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		log:      log,
		handlers: make(map[string]Handler),
	}
}

// wsURL rewrites the configured base URL to the websocket endpoint.
func wsURL(base string) string {
	u := strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}

// Connect establishes the connection using the persisted token. A missing
// token is a silent no-op: the channel only means something for an
// authenticated session. Connection failures are logged, not raised; there is
// no automatic retry at this layer; reconnection policy belongs to the
// caller's lifecycle.
func (c *Channel) Connect(ctx context.Context) {
	token, err := c.creds.Token()
	if err != nil {
		c.log.Error().Err(err).Msg("socket connect: read token failed")
		return
	}
	if token == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, _, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		c.log.Error().Err(err).Str("url", c.url).Msg("socket connect failed")
		return
	}

	c.conn = conn
	c.log.Debug().Str("url", c.url).Msg("socket connected")
	go c.readLoop(conn)
}

func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Disconnect tears the connection down and releases it. Safe to call when
// already disconnected.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
		c.log.Debug().Msg("socket disconnected")
	}
}

// On registers the handler for a named event. Registration is single-slot:
// re-subscribing overwrites the previous handler, so the last screen to mount
// wins. Use Off to release the slot.
func (c *Channel) On(event string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if handler == nil {
		delete(c.handlers, event)
		return
	}
	c.handlers[event] = handler
}

func (c *Channel) Off(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, event)
}

// readLoop dispatches envelopes until the connection dies. Handlers run on
// the read goroutine, so events for the same request arrive in connection
// order; no guarantee beyond last-applied-wins is made.
func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			c.mu.Lock()
			active := c.conn == conn
			if active {
				c.conn = nil
			}
			c.mu.Unlock()
			if active {
				c.log.Warn().Err(err).Msg("socket read failed, connection dropped")
			}
			return
		}

		c.mu.Lock()
		handler := c.handlers[env.Event]
		c.mu.Unlock()

		if handler != nil {
			handler(env.Data)
		}
	}
}

// Typed subscriptions; decode failures are logged and the event dropped.

func (c *Channel) OnNewRequest(fn func(NewRequestEvent)) {
	c.On(EventNewRequest, func(data json.RawMessage) {
		var ev NewRequestEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			c.log.Warn().Err(err).Str("event", EventNewRequest).Msg("bad event payload")
			return
		}
		fn(ev)
	})
}

func (c *Channel) OnRequestAssigned(fn func(AssignmentEvent)) {
	c.On(EventRequestAssigned, func(data json.RawMessage) {
		var ev AssignmentEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			c.log.Warn().Err(err).Str("event", EventRequestAssigned).Msg("bad event payload")
			return
		}
		fn(ev)
	})
}

func (c *Channel) OnRequestStatusUpdated(fn func(StatusUpdateEvent)) {
	c.On(EventRequestStatusUpdated, func(data json.RawMessage) {
		var ev StatusUpdateEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			c.log.Warn().Err(err).Str("event", EventRequestStatusUpdated).Msg("bad event payload")
			return
		}
		fn(ev)
	})
}

func (c *Channel) OnNurseRegistered(fn func()) {
	c.On(EventNurseRegistered, func(json.RawMessage) {
		fn()
	})
}
