package client

import (
	"testing"

	"trading_hub/internal/realtime/domain"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(t *testing.T, action domain.Action, payload interface{}) Frame {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return Frame{Action: action, Success: true, Payload: b}
}

func TestStore_Presence(t *testing.T) {
	s := NewStore("me")

	require.NoError(t, s.Apply(event(t, domain.OnlineUsers, domain.PresenceSnapshot{
		UserIDs:  []string{"me", "u1"},
		Statuses: map[string]domain.Status{"u1": domain.StatusAway},
	})))
	assert.Equal(t, []string{"me", "u1"}, s.OnlineUsers())
	st, _ := s.Status("u1")
	assert.Equal(t, domain.StatusAway, st)
	st, _ = s.Status("me")
	assert.Equal(t, domain.StatusOnline, st)

	require.NoError(t, s.Apply(event(t, domain.UserOnline, domain.UserPresence{UserID: "u2", Status: domain.StatusDoNotDisturb})))
	require.NoError(t, s.Apply(event(t, domain.StatusChanged, domain.UserPresence{UserID: "u1", Status: domain.StatusOnline})))
	require.NoError(t, s.Apply(event(t, domain.UserOffline, domain.UserPresence{UserID: "me"})))

	assert.Equal(t, []string{"u1", "u2"}, s.OnlineUsers())
	st, _ = s.Status("u1")
	assert.Equal(t, domain.StatusOnline, st)
	_, ok := s.Status("me")
	assert.False(t, ok)

	// a later snapshot is authoritative
	require.NoError(t, s.Apply(event(t, domain.OnlineUsers, domain.PresenceSnapshot{UserIDs: []string{"u3"}})))
	assert.Equal(t, []string{"u3"}, s.OnlineUsers())
	assert.False(t, s.IsOnline("u1"))
}

func TestStore_UnreadBadges(t *testing.T) {
	s := NewStore("me")
	s.SetActiveRoom("A")

	require.NoError(t, s.Apply(event(t, domain.NotifyUnread, domain.Notification{RoomID: "B", UnreadCount: 2})))
	require.NoError(t, s.Apply(event(t, domain.NotifyUnread, domain.Notification{RoomID: "A", UnreadCount: 5})))
	assert.Equal(t, 2, s.Unread("B"))
	assert.Equal(t, 0, s.Unread("A"), "viewing room A")

	// duplicate delivery keeps the server count
	require.NoError(t, s.Apply(event(t, domain.NotifyUnread, domain.Notification{RoomID: "B", UnreadCount: 2})))
	assert.Equal(t, 2, s.Unread("B"))

	prev := s.SetActiveRoom("B")
	assert.Equal(t, "A", prev)
	assert.Equal(t, 0, s.Unread("B"), "cleared on navigation")

	s.SetUnread(map[string]int{"B": 9, "C": 1, "D": 0})
	assert.Equal(t, 0, s.Unread("B"))
	assert.Equal(t, 1, s.Unread("C"))
	assert.Equal(t, map[string]int{"C": 1}, s.UnreadCounts())
}

func TestStore_DirectMessages(t *testing.T) {
	s := NewStore("me")
	require.NoError(t, s.Apply(event(t, domain.DMActivated, domain.DMSummary{RoomID: "dm-2", PeerID: "u2", PeerName: "Bob"})))
	require.NoError(t, s.Apply(event(t, domain.DMActivated, domain.DMSummary{RoomID: "dm-1", PeerID: "u1", PeerName: "Al"})))
	require.NoError(t, s.Apply(event(t, domain.DMHidden, domain.DMRef{RoomID: "dm-2"})))

	assert.Equal(t, []domain.DMSummary{{RoomID: "dm-1", PeerID: "u1", PeerName: "Al"}}, s.DMs())
}

func TestStore_Messages(t *testing.T) {
	s := NewStore("me")
	s.LoadMessages("A", []domain.ChatMessage{{ID: "m1", RoomID: "A", Content: "gm"}})

	m2 := domain.ChatMessage{ID: "m2", RoomID: "A", Content: "wen moon"}
	require.NoError(t, s.Apply(event(t, domain.NewMessage, m2)))
	require.NoError(t, s.Apply(event(t, domain.NewMessage, m2)))
	assert.Len(t, s.Messages("A"), 2, "applied once")

	require.NoError(t, s.Apply(event(t, domain.MessageEdited, domain.ChatMessage{ID: "m1", RoomID: "A", Content: "gm all", EditedAt: 10})))
	require.NoError(t, s.Apply(event(t, domain.MessageDeleted, domain.MessageRef{ID: "m2", RoomID: "A"})))
	require.NoError(t, s.Apply(event(t, domain.MessageDeleted, domain.MessageRef{ID: "m2", RoomID: "A"})))

	msgs := s.Messages("A")
	require.Len(t, msgs, 1)
	assert.Equal(t, "gm all", msgs[0].Content)
}

func TestStore_IgnoresFailuresAndReportsBadPayload(t *testing.T) {
	s := NewStore("me")
	var seen []domain.Action
	s.OnChange(func(a domain.Action) { seen = append(seen, a) })

	assert.NoError(t, s.Apply(Frame{Action: domain.JoinRoom, Success: false, Error: "not a room member"}))
	assert.Error(t, s.Apply(Frame{Action: domain.UserOnline, Success: true, Payload: []byte(`"oops"`)}))
	assert.NoError(t, s.Apply(event(t, domain.UserOnline, domain.UserPresence{UserID: "u1"})))

	assert.Equal(t, []domain.Action{domain.UserOnline}, seen)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "awaiting-snapshot", AwaitingSnapshot.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "State(9)", State(9).String())
}
