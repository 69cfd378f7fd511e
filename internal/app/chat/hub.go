/*
Package chat contains the real-time core of the server: connection registry,
room membership, presence tracking, and the event router that fans chat
events out to the right subset of live connections.

This file defines the Hub, which owns connection admission and teardown,
routes inbound events against the registry and room table, and broadcasts
presence changes to every connection.
*/
package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"mchat/internal/pkg/logx"
)

// Hub is the orchestration core. Every connection's read pump feeds
// Dispatch concurrently; the registry and room table each carry their own
// lock, and fanout always iterates copies taken under those locks.
type Hub struct {
	registry *Registry
	rooms    *Rooms

	// mu protects conns, the set of every admitted connection. Presence
	// notifications go to all of them, bound to a user or not.
	mu    sync.Mutex
	conns map[*Client]struct{}

	// pongWait is handed to each admitted client's read pump; the
	// transport layer detects dead connections with it.
	pongWait time.Duration

	logger zerolog.Logger
}

// NewHub wires the router to its registries. Both are injected so tests
// can exercise the hub against isolated state.
func NewHub(registry *Registry, rooms *Rooms, pongWait time.Duration) *Hub {
	return &Hub{
		registry: registry,
		rooms:    rooms,
		conns:    make(map[*Client]struct{}),
		pongWait: pongWait,
		logger:   logx.Logger().With().Str("component", "Hub").Logger(),
	}
}

// Admit wraps an upgraded WebSocket connection into a tracked Client.
// The caller starts the pumps. The connection stays anonymous until its
// setup event arrives.
func (h *Hub) Admit(conn *websocket.Conn) *Client {
	client := NewClient(h, conn, h.pongWait)

	h.mu.Lock()
	h.conns[client] = struct{}{}
	total := len(h.conns)
	h.mu.Unlock()

	h.logger.Info().
		Str("conn_id", client.ID).
		Int("total_conns", total).
		Msg("Connection admitted")

	return client
}

// Dispatch routes one inbound frame from a connection. Malformed frames
// are logged and dropped; nothing a client sends can take the router down.
func (h *Hub) Dispatch(c *Client, frame []byte) {
	var evt Event
	if err := json.Unmarshal(frame, &evt); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return
	}

	switch evt.Type {
	case EventSetup:
		h.handleSetup(c, evt.Payload)

	case EventJoinRoom:
		h.handleJoinRoom(c, evt.Payload)

	case EventTypingStart:
		h.handleTyping(c, evt.Payload, EventTyping)

	case EventTypingStop:
		h.handleTyping(c, evt.Payload, EventStopTyping)

	case EventNewMessage:
		h.handleNewMessage(c, evt.Payload)

	default:
		c.logger.Warn().Str("event_type", string(evt.Type)).Msg("Client sent unsupported event type")
	}
}

// handleSetup binds the connection to the announced user identity, joins
// it to the user's private identity room, fires a presence notification,
// and acknowledges the originating connection.
func (h *Hub) handleSetup(c *Client, payload json.RawMessage) {
	var setup SetupPayload
	if err := json.Unmarshal(payload, &setup); err != nil || setup.UserID == "" {
		c.logger.Warn().Err(err).Msg("Setup event missing user identity")
		return
	}

	if !c.bindUser(setup.UserID) {
		return
	}

	// A connection re-announcing as a different user leaves the old
	// identity room, so messages for the old user stop reaching it.
	if prev := h.registry.Owner(c); prev != "" && prev != setup.UserID {
		h.rooms.Leave(prev, c)
	}

	cameOnline := h.registry.Associate(setup.UserID, c)

	// The private identity room makes "send to user" just another room
	// fanout: every connection of a user joins the room named after them.
	h.rooms.Join(setup.UserID, c)

	h.broadcastPresence()

	ack, err := NewEvent(EventConnected, nil)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build connected ack")
		return
	}
	_ = c.Enqueue(ack)

	c.logger.Info().Bool("came_online", cameOnline).Msg("Connection bound to user")
}

// handleJoinRoom subscribes the connection to a conversation room.
func (h *Hub) handleJoinRoom(c *Client, payload json.RawMessage) {
	var roomID string
	if err := json.Unmarshal(payload, &roomID); err != nil || roomID == "" {
		c.logger.Warn().Err(err).Msg("Join event missing room identity")
		return
	}

	h.rooms.Join(roomID, c)
	c.logger.Debug().Str("room_id", roomID).Msg("Connection joined room")
}

// handleTyping relays a typing signal to every other connection in the
// room. An empty room is a silent no-op.
func (h *Hub) handleTyping(c *Client, payload json.RawMessage, signal EventType) {
	var roomID string
	if err := json.Unmarshal(payload, &roomID); err != nil || roomID == "" {
		c.logger.Warn().Err(err).Msg("Typing event missing room identity")
		return
	}

	evt, err := NewEvent(signal, roomID)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build typing event")
		return
	}

	for _, member := range h.rooms.MembersOf(roomID) {
		if member == c {
			continue
		}
		_ = member.Enqueue(evt)
	}
}

// handleNewMessage fans a message out to the private room of every chat
// participant except the sender, so all of each recipient's connections
// receive it. The original payload is forwarded verbatim.
func (h *Hub) handleNewMessage(c *Client, payload json.RawMessage) {
	var msg MessagePayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid message payload")
		return
	}

	if len(msg.Chat.Users) == 0 {
		c.logger.Warn().Msg("Message payload has no chat user list, dropping")
		return
	}

	evt := Event{Type: EventMessageReceived, Payload: payload}

	for _, recipient := range msg.Chat.Users {
		if recipient.ID == "" || recipient.ID == msg.Sender.ID {
			continue
		}

		for _, member := range h.rooms.MembersOf(recipient.ID) {
			_ = member.Enqueue(evt)
		}
	}
}

// Disconnect tears a connection down: both registries are purged, the
// send queue closes, and a presence notification goes to the remaining
// connections. Safe to call more than once; transport close and
// explicit teardown may race.
func (h *Hub) Disconnect(c *Client) {
	if !c.close() {
		return
	}

	wentOffline := h.registry.Disassociate(c)
	h.rooms.LeaveAll(c)

	h.mu.Lock()
	delete(h.conns, c)
	total := len(h.conns)
	h.mu.Unlock()

	h.broadcastPresence()

	c.logger.Info().
		Bool("went_offline", wentOffline).
		Int("total_conns", total).
		Msg("Connection torn down")
}

// broadcastPresence sends the full online set to every admitted
// connection. Snapshots are taken under the registry lock, delivery
// happens outside every lock, and dead connections are skipped.
func (h *Hub) broadcastPresence() {
	online := h.registry.Snapshot()

	evt, err := NewEvent(EventOnlineUsers, online)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to build presence event")
		return
	}

	h.mu.Lock()
	targets := make([]*Client, 0, len(h.conns))
	for c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		_ = c.Enqueue(evt)
	}
}

// ConnCount reports how many connections are currently admitted.
func (h *Hub) ConnCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Shutdown tears down every remaining connection. Called once during
// server shutdown, after the HTTP listener stops accepting upgrades.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	remaining := make([]*Client, 0, len(h.conns))
	for c := range h.conns {
		remaining = append(remaining, c)
	}
	h.mu.Unlock()

	for _, c := range remaining {
		h.Disconnect(c)
	}

	h.logger.Info().Msg("Hub shutdown complete")
}
