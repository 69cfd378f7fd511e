package chat

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(NewRegistry(), NewRooms(), time.Minute)
}

// admit adds a connection without a transport; the pumps never run, so
// tests read queued frames straight off the send channel.
func admit(h *Hub) *Client {
	return h.Admit(nil)
}

func dispatch(t *testing.T, h *Hub, c *Client, eventType EventType, payload any) {
	t.Helper()

	evt, err := NewEvent(eventType, payload)
	require.NoError(t, err)

	frame, err := json.Marshal(evt)
	require.NoError(t, err)

	h.Dispatch(c, frame)
}

func setup(t *testing.T, h *Hub, c *Client, userID string) {
	t.Helper()
	dispatch(t, h, c, EventSetup, SetupPayload{UserID: userID})
}

// drain empties the client's send queue and returns the decoded events.
func drain(t *testing.T, c *Client) []Event {
	t.Helper()

	var events []Event
	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return events
			}
			var evt Event
			require.NoError(t, json.Unmarshal(frame, &evt))
			events = append(events, evt)
		default:
			return events
		}
	}
}

func eventsOfType(events []Event, eventType EventType) []Event {
	var out []Event
	for _, evt := range events {
		if evt.Type == eventType {
			out = append(out, evt)
		}
	}
	return out
}

func TestHub_SetupBindsUserAndAcks(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	c := admit(h)
	req.Equal(StateConnecting, c.State())

	setup(t, h, c, "u1")

	req.Equal(StateActive, c.State())
	req.Equal("u1", c.UserID())

	events := drain(t, c)
	req.Len(eventsOfType(events, EventConnected), 1)

	presence := eventsOfType(events, EventOnlineUsers)
	req.Len(presence, 1)

	var online []string
	req.NoError(json.Unmarshal(presence[0].Payload, &online))
	req.Equal([]string{"u1"}, online)
}

func TestHub_SetupMissingUserIDDropped(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	c := admit(h)
	dispatch(t, h, c, EventSetup, map[string]string{"bogus": "x"})

	req.Equal(StateConnecting, c.State())
	req.Empty(drain(t, c))
}

func TestHub_InvalidFrameIgnored(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	c := admit(h)
	h.Dispatch(c, []byte("{not json"))
	h.Dispatch(c, []byte(`{"type":"no-such-event"}`))

	req.Empty(drain(t, c))
	req.Equal(1, h.ConnCount())
}

func TestHub_PresenceBroadcastReachesEveryConnection(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	c1 := admit(h)
	c2 := admit(h)

	setup(t, h, c1, "u1")
	drain(t, c1)
	drain(t, c2)

	setup(t, h, c2, "u2")

	// Both connections see the updated online set, setup sender or not.
	for _, c := range []*Client{c1, c2} {
		presence := eventsOfType(drain(t, c), EventOnlineUsers)
		req.Len(presence, 1)

		var online []string
		req.NoError(json.Unmarshal(presence[0].Payload, &online))
		req.ElementsMatch([]string{"u1", "u2"}, online)
	}
}

// TestHub_SecondDeviceSetupBroadcastsPresence: every setup notifies the
// online set, even when the user was already online on another device.
func TestHub_SecondDeviceSetupBroadcastsPresence(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	c1 := admit(h)
	setup(t, h, c1, "u1")
	drain(t, c1)

	c2 := admit(h)
	setup(t, h, c2, "u1")

	for _, c := range []*Client{c1, c2} {
		presence := eventsOfType(drain(t, c), EventOnlineUsers)
		req.Len(presence, 1)

		var online []string
		req.NoError(json.Unmarshal(presence[0].Payload, &online))
		req.Equal([]string{"u1"}, online)
	}

	// Dropping one device keeps u1 online but still notifies.
	h.Disconnect(c2)

	presence := eventsOfType(drain(t, c1), EventOnlineUsers)
	req.Len(presence, 1)

	var online []string
	req.NoError(json.Unmarshal(presence[0].Payload, &online))
	req.Equal([]string{"u1"}, online)
}

// TestHub_RebindLeavesOldIdentityRoom: a connection that re-announces as
// a different user stops receiving messages addressed to the old one.
func TestHub_RebindLeavesOldIdentityRoom(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	c := admit(h)
	setup(t, h, c, "old")
	setup(t, h, c, "new")

	req.Equal("new", h.registry.Owner(c))
	req.Empty(h.rooms.MembersOf("old"))

	sender := admit(h)
	setup(t, h, sender, "s")
	drain(t, c)
	drain(t, sender)

	dispatch(t, h, sender, EventNewMessage, messagePayload("s", "s", "old"))
	req.Empty(eventsOfType(drain(t, c), EventMessageReceived))

	dispatch(t, h, sender, EventNewMessage, messagePayload("s", "s", "new"))
	req.Len(eventsOfType(drain(t, c), EventMessageReceived), 1)
}

func TestHub_TypingExcludesSender(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	x := admit(h)
	y := admit(h)
	z := admit(h)

	for _, c := range []*Client{x, y, z} {
		dispatch(t, h, c, EventJoinRoom, "r1")
	}

	dispatch(t, h, x, EventTypingStart, "r1")

	req.Empty(eventsOfType(drain(t, x), EventTyping))
	req.Len(eventsOfType(drain(t, y), EventTyping), 1)
	req.Len(eventsOfType(drain(t, z), EventTyping), 1)

	dispatch(t, h, x, EventTypingStop, "r1")

	req.Empty(eventsOfType(drain(t, x), EventStopTyping))
	req.Len(eventsOfType(drain(t, y), EventStopTyping), 1)
	req.Len(eventsOfType(drain(t, z), EventStopTyping), 1)
}

func TestHub_TypingInEmptyRoomIsNoop(t *testing.T) {
	h := newTestHub()
	c := admit(h)

	dispatch(t, h, c, EventTypingStart, "empty-room")

	require.Empty(t, drain(t, c))
}

func messagePayload(senderID string, userIDs ...string) map[string]any {
	users := make([]map[string]string, 0, len(userIDs))
	for _, id := range userIDs {
		users = append(users, map[string]string{"id": id})
	}

	return map[string]any{
		"chat":    map[string]any{"users": users},
		"sender":  map[string]string{"id": senderID},
		"content": "hello",
	}
}

func TestHub_NewMessageFanout(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	sender := admit(h)
	a1 := admit(h)
	a2 := admit(h)
	b := admit(h)

	setup(t, h, sender, "s")
	setup(t, h, a1, "a")
	setup(t, h, a2, "a")
	setup(t, h, b, "b")

	for _, c := range []*Client{sender, a1, a2, b} {
		drain(t, c)
	}

	dispatch(t, h, sender, EventNewMessage, messagePayload("s", "s", "a", "b"))

	// Every connection of each non-sender participant gets exactly one
	// copy; the sender gets none.
	req.Empty(eventsOfType(drain(t, sender), EventMessageReceived))

	for _, c := range []*Client{a1, a2, b} {
		received := eventsOfType(drain(t, c), EventMessageReceived)
		req.Len(received, 1)

		var msg MessagePayload
		req.NoError(json.Unmarshal(received[0].Payload, &msg))
		req.Equal("s", msg.Sender.ID)

		// The payload passes through verbatim, extra fields included.
		var full map[string]any
		req.NoError(json.Unmarshal(received[0].Payload, &full))
		req.Equal("hello", full["content"])
	}
}

func TestHub_NewMessageWithoutUserListDropped(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	sender := admit(h)
	peer := admit(h)

	setup(t, h, sender, "s")
	setup(t, h, peer, "p")
	drain(t, sender)
	drain(t, peer)

	dispatch(t, h, sender, EventNewMessage, map[string]any{
		"sender":  map[string]string{"id": "s"},
		"content": "orphan",
	})

	req.Empty(eventsOfType(drain(t, peer), EventMessageReceived))
}

func TestHub_DisconnectPurgesRoomsAndPresence(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	c1 := admit(h)
	c2 := admit(h)

	setup(t, h, c1, "u1")
	setup(t, h, c2, "u2")

	dispatch(t, h, c1, EventJoinRoom, "r1")
	dispatch(t, h, c2, EventJoinRoom, "r1")
	drain(t, c1)
	drain(t, c2)

	h.Disconnect(c1)

	req.Equal(StateClosed, c1.State())
	req.Equal(1, h.ConnCount())

	// Typing in the room no longer reaches the departed connection.
	dispatch(t, h, c2, EventTypingStart, "r1")
	req.Empty(h.rooms.MembersOf("u1"))

	// Remaining connection saw the presence change.
	presence := eventsOfType(drain(t, c2), EventOnlineUsers)
	req.Len(presence, 1)

	var online []string
	req.NoError(json.Unmarshal(presence[0].Payload, &online))
	req.Equal([]string{"u2"}, online)
}

func TestHub_DisconnectIdempotent(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	c := admit(h)
	setup(t, h, c, "u1")

	h.Disconnect(c)
	h.Disconnect(c)

	req.Equal(0, h.ConnCount())
	req.Empty(h.registry.Snapshot())
}

func TestHub_EnqueueToClosedConnectionFailsSoft(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	c := admit(h)
	h.Disconnect(c)

	evt, err := NewEvent(EventConnected, nil)
	req.NoError(err)
	req.Error(c.Enqueue(evt))
}

// TestHub_StaleConnectionInFanoutSkipped closes one room member between
// snapshot and delivery; the broadcast still reaches everyone else.
func TestHub_StaleConnectionInFanoutSkipped(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	sender := admit(h)
	alive := admit(h)
	stale := admit(h)

	setup(t, h, sender, "s")
	setup(t, h, alive, "a")
	setup(t, h, stale, "b")

	h.Disconnect(stale)

	drain(t, sender)
	drain(t, alive)

	dispatch(t, h, sender, EventNewMessage, messagePayload("s", "s", "a", "b"))

	req.Len(eventsOfType(drain(t, alive), EventMessageReceived), 1)
}

// TestHub_ConcurrentSetups runs setups from many goroutines and checks
// the final online set lost no update.
func TestHub_ConcurrentSetups(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	const n = 16
	clients := make([]*Client, n)
	for i := range clients {
		clients[i] = admit(h)
	}

	var wg sync.WaitGroup
	for i, c := range clients {
		wg.Add(1)
		go func(i int, c *Client) {
			defer wg.Done()
			setup(t, h, c, fmt.Sprintf("user-%d", i))
		}(i, c)
	}
	wg.Wait()

	req.Len(h.registry.Snapshot(), n)
}

// TestHub_DirectMessageScenario walks the end-to-end flow: two users
// connect, set up, share a room, and one messages the other.
func TestHub_DirectMessageScenario(t *testing.T) {
	req := require.New(t)
	h := newTestHub()

	c1 := admit(h)
	setup(t, h, c1, "u1")
	dispatch(t, h, c1, EventJoinRoom, "r1")

	c2 := admit(h)
	setup(t, h, c2, "u2")
	dispatch(t, h, c2, EventJoinRoom, "r1")

	drain(t, c1)
	drain(t, c2)

	dispatch(t, h, c1, EventNewMessage, messagePayload("u1", "u1", "u2"))

	req.Len(eventsOfType(drain(t, c2), EventMessageReceived), 1)
	req.Empty(eventsOfType(drain(t, c1), EventMessageReceived))
}
