/*
Package chat contains the real-time core of the server: connection registry,
room membership, presence tracking, and the event router that fans chat
events out to the right subset of live connections.

This file defines the wire-level event envelope and the payload structures
exchanged with clients over the WebSocket connection.
*/
package chat

import (
	"encoding/json"
)

// EventType identifies the kind of an inbound or outbound event.
type EventType string

// Inbound event types sent by clients.
const (
	// EventSetup binds the connection to a user identity.
	EventSetup EventType = "setup"

	// EventJoinRoom subscribes the connection to a conversation room.
	EventJoinRoom EventType = "join-room"

	// EventTypingStart signals that the sender started typing in a room.
	EventTypingStart EventType = "typing-start"

	// EventTypingStop signals that the sender stopped typing in a room.
	EventTypingStop EventType = "typing-stop"

	// EventNewMessage carries a freshly saved chat message for fanout.
	EventNewMessage EventType = "new-message"
)

// Outbound event types emitted by the server.
const (
	// EventConnected acknowledges a successful setup to the originating connection.
	EventConnected EventType = "connected"

	// EventOnlineUsers broadcasts the full online user set to every connection.
	EventOnlineUsers EventType = "online-users"

	// EventTyping notifies room peers that someone is typing.
	EventTyping EventType = "typing"

	// EventStopTyping notifies room peers that typing stopped.
	EventStopTyping EventType = "stop-typing"

	// EventMessageReceived delivers a message to a recipient's private room.
	EventMessageReceived EventType = "message-received"
)

// Event is the tagged envelope for every frame on the wire.
// The payload stays raw until the router knows which type to decode.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SetupPayload carries the user identity announced by the client after
// the transport handshake.
type SetupPayload struct {
	UserID string `json:"userID"`
}

// UserRef is a minimal reference to a user inside a message payload.
type UserRef struct {
	ID string `json:"id"`
}

// ChatRef describes the conversation a message belongs to, including the
// participant list the router fans the message out to.
type ChatRef struct {
	Users []UserRef `json:"users"`
}

// MessagePayload is the subset of a new-message payload the router needs
// for addressing. The original raw payload is forwarded verbatim to
// recipients, so unknown fields survive the round trip.
type MessagePayload struct {
	Chat   ChatRef `json:"chat"`
	Sender UserRef `json:"sender"`
}

// NewEvent builds an outbound event, marshaling the payload.
func NewEvent(eventType EventType, payload any) (Event, error) {
	if payload == nil {
		return Event{Type: eventType}, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw}, nil
}
