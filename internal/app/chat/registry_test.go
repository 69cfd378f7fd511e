package chat

import (
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewRegistry()
}

func bareClient() *Client {
	hub := NewHub(NewRegistry(), NewRooms(), 0)
	return NewClient(hub, nil, 0)
}

func sorted(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func TestRegistry_AssociateSnapshot(t *testing.T) {
	req := require.New(t)
	reg := newTestRegistry()

	c1 := bareClient()
	c2 := bareClient()

	req.True(reg.Associate("u1", c1))
	req.True(reg.Associate("u2", c2))

	req.Equal([]string{"u1", "u2"}, sorted(reg.Snapshot()))
	req.Equal("u1", reg.Owner(c1))
}

func TestRegistry_MultiDeviceCountsOnce(t *testing.T) {
	req := require.New(t)
	reg := newTestRegistry()

	c1 := bareClient()
	c2 := bareClient()

	req.True(reg.Associate("u1", c1))
	// Second device for the same user does not change the online set.
	req.False(reg.Associate("u1", c2))

	req.Equal([]string{"u1"}, reg.Snapshot())

	// User stays online until the last connection goes.
	req.False(reg.Disassociate(c1))
	req.Equal([]string{"u1"}, reg.Snapshot())

	req.True(reg.Disassociate(c2))
	req.Empty(reg.Snapshot())
}

func TestRegistry_AssociateIdempotent(t *testing.T) {
	req := require.New(t)
	reg := newTestRegistry()

	c := bareClient()

	req.True(reg.Associate("u1", c))
	req.False(reg.Associate("u1", c))

	req.Equal([]string{"u1"}, reg.Snapshot())
	req.Len(reg.ConnectionsOf("u1"), 1)
}

func TestRegistry_DisassociateIdempotent(t *testing.T) {
	req := require.New(t)
	reg := newTestRegistry()

	c := bareClient()
	reg.Associate("u1", c)

	req.True(reg.Disassociate(c))
	req.False(reg.Disassociate(c))

	req.Empty(reg.Snapshot())
	req.Empty(reg.Owner(c))
}

func TestRegistry_DisassociateUnknownIsNoop(t *testing.T) {
	req := require.New(t)
	reg := newTestRegistry()

	req.False(reg.Disassociate(bareClient()))
	req.Empty(reg.Snapshot())
}

func TestRegistry_Rebind(t *testing.T) {
	req := require.New(t)
	reg := newTestRegistry()

	c := bareClient()
	reg.Associate("u1", c)

	// Re-binding the connection to a different user drops the old one.
	req.True(reg.Associate("u2", c))

	req.Equal([]string{"u2"}, reg.Snapshot())
	req.Equal("u2", reg.Owner(c))
}

// TestRegistry_SnapshotInvariantRandomized drives random associate and
// disassociate sequences and checks the online set always equals the set
// of users holding at least one live connection.
func TestRegistry_SnapshotInvariantRandomized(t *testing.T) {
	req := require.New(t)
	reg := newTestRegistry()
	rng := rand.New(rand.NewSource(42))

	users := []string{"u1", "u2", "u3", "u4"}
	clients := make([]*Client, 12)
	for i := range clients {
		clients[i] = bareClient()
	}

	expected := make(map[*Client]string)

	for i := 0; i < 500; i++ {
		c := clients[rng.Intn(len(clients))]

		if rng.Intn(2) == 0 {
			userID := users[rng.Intn(len(users))]
			reg.Associate(userID, c)
			expected[c] = userID
		} else {
			reg.Disassociate(c)
			delete(expected, c)
		}

		want := make(map[string]struct{})
		for _, userID := range expected {
			want[userID] = struct{}{}
		}

		got := reg.Snapshot()
		req.Len(got, len(want))
		for _, userID := range got {
			_, ok := want[userID]
			req.True(ok, "snapshot contains offline user %s", userID)
		}
	}
}

// TestRegistry_ConcurrentAssociates checks no update is lost when
// different users associate in parallel.
func TestRegistry_ConcurrentAssociates(t *testing.T) {
	req := require.New(t)
	reg := newTestRegistry()

	const n = 32
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		userID := string(rune('a' + i%26))
		c := bareClient()

		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Associate(userID, c)
		}()
	}

	wg.Wait()

	// 26 distinct user identities across 32 connections.
	req.Len(reg.Snapshot(), 26)
}
