package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRooms_JoinIdempotent(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()

	c := bareClient()

	rooms.Join("r1", c)
	rooms.Join("r1", c)

	req.Len(rooms.MembersOf("r1"), 1)
}

func TestRooms_MembersOfEmptyRoom(t *testing.T) {
	require.Empty(t, NewRooms().MembersOf("ghost"))
}

func TestRooms_MembersOfReturnsCopy(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()

	c := bareClient()
	rooms.Join("r1", c)

	members := rooms.MembersOf("r1")
	members[0] = nil

	req.Equal(c, rooms.MembersOf("r1")[0])
}

func TestRooms_LeaveSingleRoom(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()

	c := bareClient()
	other := bareClient()

	rooms.Join("r1", c)
	rooms.Join("r1", other)
	rooms.Join("r2", c)

	rooms.Leave("r1", c)

	req.Equal([]*Client{other}, rooms.MembersOf("r1"))
	req.Equal([]*Client{c}, rooms.MembersOf("r2"))

	// Leaving a room never joined is a no-op.
	rooms.Leave("ghost", c)
	req.Equal([]*Client{c}, rooms.MembersOf("r2"))
}

func TestRooms_LeaveAll(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()

	c := bareClient()
	other := bareClient()

	rooms.Join("r1", c)
	rooms.Join("r2", c)
	rooms.Join("r2", other)

	rooms.LeaveAll(c)

	req.Empty(rooms.MembersOf("r1"))
	req.Equal([]*Client{other}, rooms.MembersOf("r2"))

	// Unknown connection is a no-op.
	rooms.LeaveAll(c)
	req.Equal([]*Client{other}, rooms.MembersOf("r2"))
}
