/*
Package chat contains the real-time core of the server: connection registry,
room membership, presence tracking, and the event router that fans chat
events out to the right subset of live connections.

This file defines the Registry, which maps user identities to their live
connections. A user with at least one registered connection is online;
multi-device users hold several connections under the same identity.
*/
package chat

import (
	"sync"
)

// Registry tracks which connections belong to which user identity.
// It keeps a reverse index from connection to user so teardown, which only
// knows the connection handle, never scans the whole user table.
type Registry struct {
	// mu protects both maps. Held only for map mutation, never across sends.
	mu sync.Mutex

	// conns maps a user ID to the set of live connections bound to it.
	conns map[string]map[*Client]struct{}

	// owners maps a connection back to the user ID it is bound to.
	owners map[*Client]string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]map[*Client]struct{}),
		owners: make(map[*Client]string),
	}
}

// Associate binds the connection to userID. It is idempotent for a
// connection already bound to the same user. If the connection was bound
// to a different user, the old binding is removed first so the reverse
// index never holds a stale entry.
// It reports whether the online set changed.
func (reg *Registry) Associate(userID string, c *Client) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	changed := false

	if prev, ok := reg.owners[c]; ok {
		if prev == userID {
			return false
		}
		// Re-binding to a different user: the old user may drop offline.
		changed = reg.removeLocked(prev, c)
	}

	set, ok := reg.conns[userID]
	if !ok {
		set = make(map[*Client]struct{})
		reg.conns[userID] = set
	}
	set[c] = struct{}{}
	reg.owners[c] = userID

	// First connection for this user means the online set grew.
	return changed || len(set) == 1
}

// Disassociate removes the connection from whichever user owns it.
// Unknown connections are a no-op, which makes the call idempotent and
// safe to race with explicit teardown.
// It reports whether the user left the online set.
func (reg *Registry) Disassociate(c *Client) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	userID, ok := reg.owners[c]
	if !ok {
		return false
	}

	return reg.removeLocked(userID, c)
}

// removeLocked drops the connection from userID's set and the reverse
// index. Caller holds mu. Reports whether the user's set became empty.
func (reg *Registry) removeLocked(userID string, c *Client) bool {
	delete(reg.owners, c)

	set, ok := reg.conns[userID]
	if !ok {
		return false
	}

	delete(set, c)
	if len(set) == 0 {
		delete(reg.conns, userID)
		return true
	}
	return false
}

// Snapshot returns the current online user set. Order is arbitrary.
func (reg *Registry) Snapshot() []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	online := make([]string, 0, len(reg.conns))
	for userID := range reg.conns {
		online = append(online, userID)
	}
	return online
}

// ConnectionsOf returns a copy of the live connection set bound to userID.
func (reg *Registry) ConnectionsOf(userID string) []*Client {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	set := reg.conns[userID]
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// Owner returns the user ID bound to the connection, or "" if unbound.
func (reg *Registry) Owner(c *Client) string {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	return reg.owners[c]
}
