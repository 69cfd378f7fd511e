/*
Package chat contains the real-time core of the server: connection registry,
room membership, presence tracking, and the event router that fans chat
events out to the right subset of live connections.

This file defines Rooms, the membership table grouping connections into
conversation rooms. Membership is transient: connections re-join rooms on
every session, and the only pruning path is connection teardown.
*/
package chat

import (
	"sync"
)

// Rooms maps room identities to the connections currently joined to them.
// A reverse index from connection to rooms keeps LeaveAll proportional to
// the rooms the connection actually joined.
type Rooms struct {
	// mu protects both maps. Held only for map mutation, never across sends.
	mu sync.Mutex

	// members maps a room ID to the set of joined connections.
	members map[string]map[*Client]struct{}

	// joined maps a connection to the set of rooms it belongs to.
	joined map[*Client]map[string]struct{}
}

// NewRooms returns an empty membership table.
func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[*Client]struct{}),
		joined:  make(map[*Client]map[string]struct{}),
	}
}

// Join adds the connection to the room. Idempotent.
func (rt *Rooms) Join(roomID string, c *Client) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	set, ok := rt.members[roomID]
	if !ok {
		set = make(map[*Client]struct{})
		rt.members[roomID] = set
	}
	set[c] = struct{}{}

	rooms, ok := rt.joined[c]
	if !ok {
		rooms = make(map[string]struct{})
		rt.joined[c] = rooms
	}
	rooms[roomID] = struct{}{}
}

// MembersOf returns a copy of the room's connection set; empty if the
// room has no members. Callers iterate the copy outside the lock, so a
// slow recipient never blocks membership changes.
func (rt *Rooms) MembersOf(roomID string) []*Client {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	set := rt.members[roomID]
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// Leave removes the connection from a single room. Unknown rooms and
// non-members are a no-op.
func (rt *Rooms) Leave(roomID string, c *Client) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	set := rt.members[roomID]
	delete(set, c)
	if len(set) == 0 {
		delete(rt.members, roomID)
	}

	rooms := rt.joined[c]
	delete(rooms, roomID)
	if len(rooms) == 0 {
		delete(rt.joined, c)
	}
}

// LeaveAll removes the connection from every room it joined. Called once
// during teardown; calling it for an unknown connection is a no-op.
func (rt *Rooms) LeaveAll(c *Client) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	for roomID := range rt.joined[c] {
		set := rt.members[roomID]
		delete(set, c)
		if len(set) == 0 {
			delete(rt.members, roomID)
		}
	}
	delete(rt.joined, c)
}
