package app

import (
	"context"
	"errors"
	"testing"

	"trading_hub/internal/realtime/domain"
	"trading_hub/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type presenceFixture struct {
	registry *ConnectionRegistry
	hub      *Hub
	repo     *MockStatusRepository
	tracker  *PresenceTracker
	observer *recordingSink
}

// observer is a connection of another user that watches broadcasts
func newPresenceFixture() *presenceFixture {
	logger.SetNewNop()
	f := &presenceFixture{
		registry: NewConnectionRegistry(),
		repo:     new(MockStatusRepository),
		observer: newRecordingSink("obs", "watcher"),
	}
	f.hub = NewHub(f.registry, NewRoomRouter(), nil, 0)
	f.tracker = NewPresenceTracker(f.registry, f.hub, f.repo)
	f.registry.Register("watcher", "obs", f.observer)
	return f
}

func TestPresenceTracker_Transitions(t *testing.T) {
	ctx := context.Background()
	f := newPresenceFixture()
	f.repo.On("FindStatus", mock.Anything, "u1").Return(domain.Status(""), nil).Once()

	f.tracker.Connect(ctx, "u1", newRecordingSink("c1", "u1"))
	f.tracker.Connect(ctx, "u1", newRecordingSink("c2", "u1"))
	assert.Equal(t, 1, f.observer.Count(domain.UserOnline), "0->1 only")

	last, _ := f.observer.Last()
	assert.Equal(t, domain.UserPresence{UserID: "u1", Status: domain.StatusOnline}, last.Payload)

	f.tracker.Disconnect("c1")
	assert.Equal(t, 0, f.observer.Count(domain.UserOffline), "2->1 silent")

	f.tracker.Disconnect("c2")
	f.tracker.Disconnect("c2")
	assert.Equal(t, 1, f.observer.Count(domain.UserOffline))

	_, online := f.tracker.Status("u1")
	assert.False(t, online)
	f.repo.AssertExpectations(t)
}

func TestPresenceTracker_PersistedStatusOnConnect(t *testing.T) {
	f := newPresenceFixture()
	f.repo.On("FindStatus", mock.Anything, "u1").Return(domain.StatusAway, nil)

	f.tracker.Connect(context.Background(), "u1", newRecordingSink("c1", "u1"))

	status, online := f.tracker.Status("u1")
	assert.True(t, online)
	assert.Equal(t, domain.StatusAway, status)

	snap := f.tracker.Snapshot()
	assert.Equal(t, []string{"u1", "watcher"}, snap.UserIDs)
	assert.Equal(t, domain.StatusAway, snap.Statuses["u1"])
	assert.Equal(t, domain.StatusOnline, snap.Statuses["watcher"])
}

func TestPresenceTracker_LookupFailureDefaultsOnline(t *testing.T) {
	f := newPresenceFixture()
	f.repo.On("FindStatus", mock.Anything, "u1").Return(domain.Status(""), errors.New("pg down"))

	f.tracker.Connect(context.Background(), "u1", newRecordingSink("c1", "u1"))

	last, ok := f.observer.Last()
	assert.True(t, ok)
	assert.Equal(t, domain.UserOnline, last.Action)
	assert.Equal(t, domain.UserPresence{UserID: "u1", Status: domain.StatusOnline}, last.Payload)
}

// the user disconnected while the status lookup was in flight
func TestPresenceTracker_OnlineSuppressedAfterQuickDisconnect(t *testing.T) {
	f := newPresenceFixture()
	f.repo.On("FindStatus", mock.Anything, "u1").Run(func(mock.Arguments) {
		f.tracker.Disconnect("c1")
	}).Return(domain.StatusAway, nil)

	f.tracker.Connect(context.Background(), "u1", newRecordingSink("c1", "u1"))

	assert.Equal(t, 0, f.observer.Count(domain.UserOnline))
	assert.Equal(t, 1, f.observer.Count(domain.UserOffline))
	assert.NotContains(t, f.tracker.Snapshot().UserIDs, "u1")
}

func TestPresenceTracker_SetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("persist then broadcast", func(t *testing.T) {
		f := newPresenceFixture()
		f.repo.On("FindStatus", mock.Anything, "u1").Return(domain.Status(""), nil)
		f.repo.On("SaveStatus", mock.Anything, "u1", domain.StatusDoNotDisturb).Return(nil)
		f.tracker.Connect(ctx, "u1", newRecordingSink("c1", "u1"))

		status, err := f.tracker.SetStatus(ctx, "u1", "do_not_disturb")
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusDoNotDisturb, status)

		last, _ := f.observer.Last()
		assert.Equal(t, domain.StatusChanged, last.Action)
		assert.Equal(t, domain.UserPresence{UserID: "u1", Status: domain.StatusDoNotDisturb}, last.Payload)
		assert.Equal(t, domain.StatusDoNotDisturb, f.tracker.Snapshot().Statuses["u1"])
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newPresenceFixture()
		_, err := f.tracker.SetStatus(ctx, "u1", "BUSY")
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
		assert.Empty(t, f.observer.Events())
		f.repo.AssertNotCalled(t, "SaveStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("persistence failure skips broadcast", func(t *testing.T) {
		f := newPresenceFixture()
		f.repo.On("SaveStatus", mock.Anything, "u1", domain.StatusAway).Return(errors.New("pg down"))

		_, err := f.tracker.SetStatus(ctx, "u1", "AWAY")
		assert.Error(t, err)
		assert.Equal(t, 0, f.observer.Count(domain.StatusChanged))
	})
}

// blockingLookup makes FindStatus for userID wait until release is closed
func blockingLookup(repo *MockStatusRepository, userID string, stored domain.Status) (started, release chan struct{}) {
	started = make(chan struct{})
	release = make(chan struct{})
	repo.On("FindStatus", mock.Anything, userID).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(stored, nil).Once()
	return started, release
}

func TestPresenceTracker_StatusSetDuringLookupWins(t *testing.T) {
	ctx := context.Background()
	f := newPresenceFixture()
	started, release := blockingLookup(f.repo, "u1", domain.StatusDoNotDisturb)
	f.repo.On("SaveStatus", mock.Anything, "u1", domain.StatusAway).Return(nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.tracker.Connect(ctx, "u1", newRecordingSink("c1", "u1"))
	}()
	<-started

	_, err := f.tracker.SetStatus(ctx, "u1", "AWAY")
	assert.NoError(t, err)
	close(release)
	<-done

	status, online := f.tracker.Status("u1")
	assert.True(t, online)
	assert.Equal(t, domain.StatusAway, status)
	assert.Equal(t, domain.StatusAway, f.tracker.Snapshot().Statuses["u1"])

	last, _ := f.observer.Last()
	assert.Equal(t, domain.UserOnline, last.Action)
	assert.Equal(t, domain.UserPresence{UserID: "u1", Status: domain.StatusAway}, last.Payload)
}

// c1 lookup is slow, c1 closes and c2 opens a new online period before it returns
func TestPresenceTracker_StaleLookupAfterReconnect(t *testing.T) {
	ctx := context.Background()
	f := newPresenceFixture()
	started, release := blockingLookup(f.repo, "u1", domain.StatusAway)
	f.repo.On("FindStatus", mock.Anything, "u1").Return(domain.StatusOnline, nil).Once()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.tracker.Connect(ctx, "u1", newRecordingSink("c1", "u1"))
	}()
	<-started

	f.tracker.Disconnect("c1")
	f.tracker.Connect(ctx, "u1", newRecordingSink("c2", "u1"))
	close(release)
	<-done

	assert.Equal(t, 1, f.observer.Count(domain.UserOnline), "one online per 0->1")
	assert.Equal(t, 1, f.observer.Count(domain.UserOffline))

	status, online := f.tracker.Status("u1")
	assert.True(t, online)
	assert.Equal(t, domain.StatusOnline, status, "stale lookup is not cached")
	f.repo.AssertExpectations(t)
}
