package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trading_hub/internal/realtime/domain"
	"trading_hub/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records requests, frames are pushed by the test
type fakeConn struct {
	mu     sync.Mutex
	sent   []domain.WSRequest
	frames chan Frame
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{frames: make(chan Frame, 16), closed: make(chan struct{})}
}

func (c *fakeConn) Send(req domain.WSRequest) error {
	select {
	case <-c.closed:
		return errors.New("closed")
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, req)
	return nil
}

func (c *fakeConn) Receive() (Frame, error) {
	select {
	case f := <-c.frames:
		return f, nil
	case <-c.closed:
		return Frame{}, errors.New("connection reset")
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) Sent() []domain.WSRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.WSRequest(nil), c.sent...)
}

func (c *fakeConn) count(action domain.Action) int {
	n := 0
	for _, r := range c.Sent() {
		if r.Action == string(action) {
			n++
		}
	}
	return n
}

type fakeTransport struct {
	conns chan *fakeConn
}

func (t *fakeTransport) Dial(ctx context.Context) (Conn, error) {
	select {
	case c := <-t.conns:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func startSession(t *testing.T) (*Store, *Session, *fakeTransport, context.CancelFunc) {
	t.Helper()
	logger.SetNewNop()
	store := NewStore("me")
	transport := &fakeTransport{conns: make(chan *fakeConn, 2)}
	session := NewSession(store, transport, 20*time.Millisecond, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = session.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return store, session, transport, cancel
}

func snapshotFrame(t *testing.T, users ...string) Frame {
	return event(t, domain.OnlineUsers, domain.PresenceSnapshot{UserIDs: users})
}

func TestSession_SnapshotRetryUntilReady(t *testing.T) {
	store, _, transport, _ := startSession(t)
	conn := newFakeConn()
	transport.conns <- conn

	require.Eventually(t, func() bool { return store.State() == AwaitingSnapshot }, time.Second, 5*time.Millisecond)
	assert.True(t, store.PresenceStale())

	// snapshot request re-sent while unanswered
	require.Eventually(t, func() bool { return conn.count(domain.GetUsers) >= 3 }, time.Second, 5*time.Millisecond)

	conn.frames <- snapshotFrame(t, "me", "u1")
	require.Eventually(t, func() bool { return store.State() == Ready }, time.Second, 5*time.Millisecond)
	assert.False(t, store.PresenceStale())
	assert.Equal(t, []string{"me", "u1"}, store.OnlineUsers())

	sent := conn.count(domain.GetUsers)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, sent, conn.count(domain.GetUsers), "retry stops once ready")
}

func TestSession_ReconnectRejoinsActiveRoom(t *testing.T) {
	store, session, transport, _ := startSession(t)

	first := newFakeConn()
	transport.conns <- first
	require.Eventually(t, func() bool { return store.State() == AwaitingSnapshot }, time.Second, 5*time.Millisecond)
	first.frames <- snapshotFrame(t, "me")
	require.Eventually(t, func() bool { return store.State() == Ready }, time.Second, 5*time.Millisecond)

	first.frames <- event(t, domain.NotifyUnread, domain.Notification{RoomID: "A", UnreadCount: 3})
	require.Eventually(t, func() bool { return store.Unread("A") == 3 }, time.Second, 5*time.Millisecond)

	require.NoError(t, session.EnterRoom("A"))
	assert.Equal(t, 0, store.Unread("A"), "badge cleared before any round trip")
	assert.Equal(t, 1, first.count(domain.JoinRoom))

	first.frames <- event(t, domain.NewMessage, domain.ChatMessage{ID: "m1", RoomID: "A"})
	require.Eventually(t, func() bool { return len(store.Messages("A")) == 1 }, time.Second, 5*time.Millisecond)

	// transport drops
	_ = first.Close()
	require.Eventually(t, func() bool { return store.State() != Ready }, time.Second, time.Millisecond)
	assert.True(t, store.PresenceStale())

	second := newFakeConn()
	transport.conns <- second
	require.Eventually(t, func() bool { return second.count(domain.GetUsers) >= 1 }, time.Second, 5*time.Millisecond)

	sent := second.Sent()
	assert.Equal(t, domain.WSRequest{Action: string(domain.JoinRoom), RoomID: "A"}, sent[0], "re-join before snapshot")
	assert.Len(t, store.Messages("A"), 1, "loaded messages retained")

	second.frames <- snapshotFrame(t, "me")
	require.Eventually(t, func() bool { return store.State() == Ready }, time.Second, 5*time.Millisecond)
}

func TestSession_EnterRoomSwitchesRooms(t *testing.T) {
	store, session, transport, _ := startSession(t)
	conn := newFakeConn()
	transport.conns <- conn
	require.Eventually(t, func() bool { return store.State() == AwaitingSnapshot }, time.Second, 5*time.Millisecond)

	require.NoError(t, session.EnterRoom("A"))
	require.NoError(t, session.EnterRoom("B"))
	require.NoError(t, session.LeaveRoom())
	require.NoError(t, session.SetStatus(domain.StatusAway))

	var got []domain.WSRequest
	for _, r := range conn.Sent() {
		if r.Action != string(domain.GetUsers) {
			got = append(got, r)
		}
	}
	assert.Equal(t, []domain.WSRequest{
		{Action: string(domain.JoinRoom), RoomID: "A"},
		{Action: string(domain.LeaveRoom), RoomID: "A"},
		{Action: string(domain.JoinRoom), RoomID: "B"},
		{Action: string(domain.LeaveRoom), RoomID: "B"},
		{Action: string(domain.SetStatus), Status: "AWAY"},
	}, got)
	assert.Empty(t, store.ActiveRoom())
}

func TestSession_OfflineNavigation(t *testing.T) {
	logger.SetNewNop()
	store := NewStore("me")
	session := NewSession(store, &fakeTransport{conns: make(chan *fakeConn)}, 0, 0)

	assert.NoError(t, session.EnterRoom("A"))
	assert.Equal(t, "A", store.ActiveRoom())
	assert.ErrorIs(t, session.SetStatus(domain.StatusAway), ErrNotConnected)
	assert.Equal(t, Disconnected, store.State())
}
