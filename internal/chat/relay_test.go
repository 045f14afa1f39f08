package chat

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayValidatesBody(t *testing.T) {
	r := NewRegistry(32)
	m := NewManager(&Presence{}, time.Minute)
	relay := NewRelay(false, 8)
	conn := identified(t, r, "c1", "Ubeyt")
	_, _, err := m.Join(conn, "")
	require.NoError(t, err)

	_, err = relay.Send(conn, "   ")
	require.ErrorIs(t, err, ErrEmptyMessage)

	_, err = relay.Send(conn, strings.Repeat("x", 9))
	require.ErrorIs(t, err, ErrMessageTooLong)

	assert.Empty(t, m.Default().History())
}

func TestRelaySlowMemberDoesNotFailSend(t *testing.T) {
	r := NewRegistry(32)
	m := NewManager(&Presence{}, time.Minute)
	relay := NewRelay(false, 0)

	sender := identified(t, r, "c1", "Ubeyt")
	_, _, err := m.Join(sender, "42")
	require.NoError(t, err)

	slowSink := &recordingSink{}
	_, err = r.Register("slow", "", slowSink)
	require.NoError(t, err)
	slow, err := r.SetUsername("slow", "Slow")
	require.NoError(t, err)
	_, _, err = m.Join(slow, "42")
	require.NoError(t, err)

	fastSink := &recordingSink{}
	_, err = r.Register("fast", "", fastSink)
	require.NoError(t, err)
	fast, err := r.SetUsername("fast", "Fast")
	require.NoError(t, err)
	_, _, err = m.Join(fast, "42")
	require.NoError(t, err)

	slowSink.mu.Lock()
	slowSink.full = true
	slowSink.mu.Unlock()

	msg, err := relay.Send(sender, "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, msg.Seq)
	require.Len(t, fastSink.messages(), 1)
	assert.Empty(t, slowSink.messages())
}

func TestRelayConcurrentSendsKeepPerRoomOrder(t *testing.T) {
	r := NewRegistry(32)
	m := NewManager(&Presence{}, time.Minute)
	relay := NewRelay(false, 0)

	const senders = 8
	const perSender = 25

	listenerSink := &recordingSink{}
	_, err := r.Register("listener", "", listenerSink)
	require.NoError(t, err)
	listener, err := r.SetUsername("listener", "Listener")
	require.NoError(t, err)
	_, _, err = m.Join(listener, "42")
	require.NoError(t, err)

	conns := make([]*Connection, senders)
	for i := range conns {
		conns[i] = identified(t, r, fmt.Sprintf("s%d", i), fmt.Sprintf("sender%d", i))
		_, _, err := m.Join(conns[i], "42")
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for _, conn := range conns {
		wg.Add(1)
		go func(conn *Connection) {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				_, err := relay.Send(conn, fmt.Sprintf("%s-%d", conn.Username(), j))
				assert.NoError(t, err)
			}
		}(conn)
	}
	wg.Wait()

	room, _ := m.Lookup("42", true)
	history := room.History()
	require.Len(t, history, senders*perSender)
	for i, msg := range history {
		assert.Equal(t, i+1, msg.Seq)
	}

	// the listener saw every message exactly once and in history order
	got := listenerSink.messages()
	require.Len(t, got, len(history))
	for i := range got {
		assert.Equal(t, history[i], got[i])
	}
}

func TestRelayDoesNotLeakAcrossRooms(t *testing.T) {
	r := NewRegistry(32)
	m := NewManager(&Presence{}, time.Minute)
	relay := NewRelay(false, 0)

	a := identified(t, r, "a", "A")
	_, _, err := m.Join(a, "one")
	require.NoError(t, err)

	otherSink := &recordingSink{}
	_, err = r.Register("b", "", otherSink)
	require.NoError(t, err)
	b, err := r.SetUsername("b", "B")
	require.NoError(t, err)
	_, _, err = m.Join(b, "two")
	require.NoError(t, err)

	_, err = relay.Send(a, "private to one")
	require.NoError(t, err)

	assert.Empty(t, otherSink.messages())
	two, _ := m.Lookup("two", true)
	assert.Empty(t, two.History())
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{err: nil, code: ""},
		{err: ErrInvalidName, code: "invalid_name"},
		{err: fmt.Errorf("%w: empty", ErrInvalidName), code: "invalid_name"},
		{err: ErrAlreadySet, code: "already_set"},
		{err: ErrNotLoggedIn, code: "not_logged_in"},
		{err: ErrNotInRoom, code: "not_in_room"},
		{err: ErrEmptyMessage, code: "empty_message"},
		{err: ErrMessageTooLong, code: "message_too_long"},
		{err: assert.AnError, code: "bad_request"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, ErrorCode(tt.err))
	}
}
