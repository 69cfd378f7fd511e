/*
Package chat contains the real-time core of the server: connection registry,
room membership, presence tracking, and the event router that fans chat
events out to the right subset of live connections.

This file defines the Client struct, one live WebSocket connection. It owns
the read and write pumps, the buffered outbound queue, and the connection's
lifecycle state.
*/
package chat

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"mchat/internal/pkg/logx"
	"mchat/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// capacity of the per-connection outbound queue.
	sendQueueSize = 256
)

// ConnState is the lifecycle state of a connection.
type ConnState int

const (
	// StateConnecting means the transport handshake completed but no
	// setup event arrived yet; the connection holds no user identity.
	StateConnecting ConnState = iota

	// StateActive means the connection is bound to a user identity.
	StateActive

	// StateClosed is terminal; the connection is purged from all registries.
	StateClosed
)

// Client represents one live WebSocket connection admitted by the Hub.
type Client struct {
	// ID uniquely identifies this connection across its lifetime.
	ID string

	hub *Hub

	// underlying WebSocket connection; only the pumps touch it.
	conn *websocket.Conn

	// pongWait is how long the read pump waits for client traffic or a
	// pong before declaring the connection dead.
	pongWait time.Duration

	// mu guards userID, state, and the send channel's open/closed status.
	mu sync.Mutex

	// userID is the identity bound at setup time; "" until then.
	userID string

	state ConnState

	// send queues marshaled frames for the write pump.
	send chan []byte

	logger zerolog.Logger
}

// NewClient wraps a freshly upgraded WebSocket connection. The connection
// starts in StateConnecting and holds no user identity until setup.
func NewClient(hub *Hub, conn *websocket.Conn, pongWait time.Duration) *Client {
	id := randx.ConnID()

	return &Client{
		ID:       id,
		hub:      hub,
		conn:     conn,
		pongWait: pongWait,
		state:    StateConnecting,
		send:     make(chan []byte, sendQueueSize),
		logger:   logx.Logger().With().Str("conn_id", id).Logger(),
	}
}

// UserID returns the bound user identity, or "" before setup.
func (c *Client) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// State returns the connection's lifecycle state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// bindUser records the identity announced by the setup event and moves
// the connection to StateActive. Closed connections stay closed.
func (c *Client) bindUser(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return false
	}

	c.userID = userID
	c.state = StateActive
	c.logger = c.logger.With().Str("user_id", userID).Logger()
	return true
}

// close marks the connection terminal and closes the send queue. It
// reports whether this call performed the transition, so teardown runs
// exactly once even when transport close races explicit disconnect.
func (c *Client) close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return false
	}

	c.state = StateClosed
	close(c.send)
	return true
}

// Enqueue marshals the event and queues it for the write pump. Sends are
// fire-and-forget: a closed connection or a full queue drops the frame
// with a log line and never aborts the caller's fanout.
func (c *Client) Enqueue(evt Event) error {
	frame, err := json.Marshal(evt)
	if err != nil {
		c.logger.Error().Err(err).Str("event_type", string(evt.Type)).Msg("Error marshaling outbound event")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		c.logger.Debug().Str("event_type", string(evt.Type)).Msg("Dropping event for closed connection")
		return fmt.Errorf("connection closed")
	}

	select {
	case c.send <- frame:
		return nil
	default:
		c.logger.Warn().
			Str("event_type", string(evt.Type)).
			Int("queue_len", len(c.send)).
			Msg("Send queue full, dropping event")
		return fmt.Errorf("send queue full")
	}
}

// ReadPump reads frames from the WebSocket connection and hands them to
// the Hub's router. It enforces the heartbeat deadline and triggers
// teardown when the transport dies.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Disconnect(c)

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in ReadPump")
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(c.pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Unexpected connection close")
			}
			break
		}

		c.hub.Dispatch(c, frame)
	}
}

// WritePump drains the send queue to the WebSocket connection and keeps
// the heartbeat alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pongWait * 9 / 10)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				// Teardown closed the queue.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}
