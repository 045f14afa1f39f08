package chat

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identified(t *testing.T, r *Registry, id, name string) *Connection {
	t.Helper()
	_, err := r.Register(id, "", &recordingSink{})
	require.NoError(t, err)
	conn, err := r.SetUsername(id, name)
	require.NoError(t, err)
	return conn
}

func TestManagerDefaultRoomAlwaysExists(t *testing.T) {
	m := NewManager(&Presence{}, time.Minute)

	room, ok := m.Lookup("", false)
	require.True(t, ok)
	assert.Equal(t, DefaultRoomID, room.ID)
	assert.False(t, room.Private)
	assert.Equal(t, 1, m.Len())

	assert.Equal(t, 0, m.Sweep(time.Now().Add(24*time.Hour)))
	assert.Equal(t, 1, m.Len())
}

func TestManagerJoinRequiresUsername(t *testing.T) {
	r := NewRegistry(32)
	m := NewManager(&Presence{}, time.Minute)
	conn, err := r.Register("c1", "", &recordingSink{})
	require.NoError(t, err)

	_, _, err = m.Join(conn, "")
	require.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestManagerPrivateRoomCreatedOnFirstReference(t *testing.T) {
	r := NewRegistry(32)
	m := NewManager(&Presence{}, time.Minute)

	_, ok := m.Lookup("42", true)
	require.False(t, ok)

	conn := identified(t, r, "c1", "Ubeyt")
	room, history, err := m.Join(conn, "42")
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.True(t, room.Private)

	again, ok := m.Lookup("42", true)
	require.True(t, ok)
	assert.Same(t, room, again)
	assert.Equal(t, 2, m.Len())
}

func TestManagerPrivateRoomNamedPublicIsDistinct(t *testing.T) {
	r := NewRegistry(32)
	m := NewManager(&Presence{}, time.Minute)
	conn := identified(t, r, "c1", "Ubeyt")

	room, _, err := m.Join(conn, DefaultRoomID)
	require.NoError(t, err)
	assert.True(t, room.Private)
	assert.NotSame(t, m.Default(), room)
}

func TestManagerRejoiningSameRoomIsNoop(t *testing.T) {
	r := NewRegistry(32)
	m := NewManager(&Presence{}, time.Minute)
	conn := identified(t, r, "c1", "Ubeyt")

	_, _, err := m.Join(conn, "42")
	require.NoError(t, err)
	room, _, err := m.Join(conn, "42")
	require.NoError(t, err)

	assert.Equal(t, []string{"Ubeyt"}, room.Members())
}

func TestManagerMemberSetFollowsJoinsAndLeaves(t *testing.T) {
	r := NewRegistry(32)
	m := NewManager(&Presence{}, time.Minute)

	conns := make([]*Connection, 5)
	for i := range conns {
		conns[i] = identified(t, r, fmt.Sprintf("c%d", i), fmt.Sprintf("user%d", i))
		_, _, err := m.Join(conns[i], "room")
		require.NoError(t, err)
	}
	m.Leave(conns[1])
	m.Leave(conns[3])
	_, removed := m.Leave(conns[3])
	assert.False(t, removed)
	_, _, err := m.Join(conns[1], "room")
	require.NoError(t, err)

	room, _ := m.Lookup("room", true)
	assert.Equal(t, []string{"user0", "user2", "user4", "user1"}, room.Members())
}

func TestManagerConcurrentJoinsProduceConsistentMembers(t *testing.T) {
	r := NewRegistry(32)
	m := NewManager(&Presence{}, time.Minute)

	const n = 64
	conns := make([]*Connection, n)
	for i := range conns {
		conns[i] = identified(t, r, fmt.Sprintf("c%d", i), fmt.Sprintf("user%d", i))
	}

	var wg sync.WaitGroup
	for _, conn := range conns {
		wg.Add(1)
		go func(conn *Connection) {
			defer wg.Done()
			_, _, err := m.Join(conn, "42")
			assert.NoError(t, err)
		}(conn)
	}
	wg.Wait()

	room, ok := m.Lookup("42", true)
	require.True(t, ok)
	members := room.Members()
	require.Len(t, members, n)

	seen := map[string]bool{}
	for _, name := range members {
		assert.False(t, seen[name], "duplicate member %s", name)
		seen[name] = true
	}
	for _, conn := range conns {
		assert.Same(t, room, conn.Room())
	}
}

func TestManagerJoinerReceivesFullPriorHistory(t *testing.T) {
	r := NewRegistry(32)
	m := NewManager(&Presence{}, time.Minute)
	relay := NewRelay(false, 0)

	sender := identified(t, r, "c1", "Ubeyt")
	_, _, err := m.Join(sender, "42")
	require.NoError(t, err)
	for _, body := range []string{"one", "two", "three"} {
		_, err := relay.Send(sender, body)
		require.NoError(t, err)
	}

	joiner := identified(t, r, "c2", "Lidia")
	_, history, err := m.Join(joiner, "42")
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, body := range []string{"one", "two", "three"} {
		assert.Equal(t, body, history[i].Body)
		assert.Equal(t, i+1, history[i].Seq)
	}

	// later messages never rewrite what the joiner already saw
	_, err = relay.Send(sender, "four")
	require.NoError(t, err)
	room, _ := m.Lookup("42", true)
	assert.Equal(t, history, room.History()[:3])
}

func TestManagerEmptyRoomRetainedUntilSwept(t *testing.T) {
	r := NewRegistry(32)
	ttl := 30 * time.Minute
	m := NewManager(&Presence{}, ttl)
	relay := NewRelay(false, 0)

	conn := identified(t, r, "c1", "Ubeyt")
	_, _, err := m.Join(conn, "42")
	require.NoError(t, err)
	_, err = relay.Send(conn, "kept")
	require.NoError(t, err)
	m.Leave(conn)

	room, ok := m.Lookup("42", true)
	require.True(t, ok)
	assert.Equal(t, 0, room.Len())
	assert.Len(t, room.History(), 1)

	assert.Equal(t, 0, m.Sweep(time.Now()))
	_, ok = m.Lookup("42", true)
	assert.True(t, ok)

	assert.Equal(t, 1, m.Sweep(time.Now().Add(ttl+time.Second)))
	_, ok = m.Lookup("42", true)
	assert.False(t, ok)
}

func TestManagerSweepKeepsOccupiedRooms(t *testing.T) {
	r := NewRegistry(32)
	m := NewManager(&Presence{}, time.Minute)
	conn := identified(t, r, "c1", "Ubeyt")
	_, _, err := m.Join(conn, "42")
	require.NoError(t, err)

	assert.Equal(t, 0, m.Sweep(time.Now().Add(time.Hour)))
	_, ok := m.Lookup("42", true)
	assert.True(t, ok)
}

func TestManagerJoinAfterSweepCreatesFreshRoom(t *testing.T) {
	r := NewRegistry(32)
	m := NewManager(&Presence{}, time.Minute)
	relay := NewRelay(false, 0)

	conn := identified(t, r, "c1", "Ubeyt")
	old, _, err := m.Join(conn, "42")
	require.NoError(t, err)
	_, err = relay.Send(conn, "old")
	require.NoError(t, err)
	m.Leave(conn)
	require.Equal(t, 1, m.Sweep(time.Now().Add(time.Hour)))

	fresh, history, err := m.Join(conn, "42")
	require.NoError(t, err)
	assert.NotSame(t, old, fresh)
	assert.Empty(t, history)
}

func TestManagerRoomsListing(t *testing.T) {
	r := NewRegistry(32)
	m := NewManager(&Presence{}, time.Minute)
	a := identified(t, r, "a", "A")
	b := identified(t, r, "b", "B")
	_, _, err := m.Join(a, "zeta")
	require.NoError(t, err)
	_, _, err = m.Join(b, "alpha")
	require.NoError(t, err)

	rooms := m.Rooms()
	require.Len(t, rooms, 3)
	assert.Equal(t, DefaultRoomID, rooms[0].RoomID)
	assert.False(t, rooms[0].Private)
	assert.Equal(t, "alpha", rooms[1].RoomID)
	assert.Equal(t, "zeta", rooms[2].RoomID)
	assert.Equal(t, 1, rooms[2].Members)
}
