package app

import (
	"context"

	"trading_hub/internal/realtime/domain"

	"github.com/stretchr/testify/mock"
)

// MockStatusRepository Mock StatusRepository
type MockStatusRepository struct {
	mock.Mock
}

// EnsureSchema mock create table
func (m *MockStatusRepository) EnsureSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// FindStatus mock find persisted status
func (m *MockStatusRepository) FindStatus(ctx context.Context, userID string) (domain.Status, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Status), args.Error(1)
}

// SaveStatus mock persist status
func (m *MockStatusRepository) SaveStatus(ctx context.Context, userID string, status domain.Status) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

// MockUnreadRepository Mock UnreadRepository
type MockUnreadRepository struct {
	mock.Mock
}

// AutoMigrate mock migrate
func (m *MockUnreadRepository) AutoMigrate() error {
	args := m.Called()
	return args.Error(0)
}

// Increment mock counter upsert
func (m *MockUnreadRepository) Increment(ctx context.Context, userID, roomID string) (int, error) {
	args := m.Called(ctx, userID, roomID)
	return args.Int(0), args.Error(1)
}

// Reset mock counter delete
func (m *MockUnreadRepository) Reset(ctx context.Context, userID, roomID string) error {
	args := m.Called(ctx, userID, roomID)
	return args.Error(0)
}

// ListByUser mock list counters
func (m *MockUnreadRepository) ListByUser(ctx context.Context, userID string) ([]domain.UnreadCounter, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.UnreadCounter), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRoomMemberRepository Mock RoomMemberRepository
type MockRoomMemberRepository struct {
	mock.Mock
}

// AutoMigrate mock migrate
func (m *MockRoomMemberRepository) AutoMigrate() error {
	args := m.Called()
	return args.Error(0)
}

// Members mock room members
func (m *MockRoomMemberRepository) Members(ctx context.Context, roomID string) ([]string, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// IsMember mock membership check
func (m *MockRoomMemberRepository) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

// MockDMRepository Mock DMRepository
type MockDMRepository struct {
	mock.Mock
}

// AutoMigrate mock migrate
func (m *MockDMRepository) AutoMigrate() error {
	args := m.Called()
	return args.Error(0)
}

// Save mock upsert visibility
func (m *MockDMRepository) Save(ctx context.Context, v *domain.DMVisibility) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

// SetHidden mock toggle hidden
func (m *MockDMRepository) SetHidden(ctx context.Context, userID, roomID string, hidden bool) (bool, error) {
	args := m.Called(ctx, userID, roomID, hidden)
	return args.Bool(0), args.Error(1)
}

// HiddenIn mock hidden rows of a room
func (m *MockDMRepository) HiddenIn(ctx context.Context, roomID string) ([]domain.DMVisibility, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.DMVisibility), args.Error(1)
	}
	return nil, args.Error(1)
}

// Visible mock visible rows of a user
func (m *MockDMRepository) Visible(ctx context.Context, userID string) ([]domain.DMVisibility, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.DMVisibility), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Insert mock insert msg
func (m *MockMessageRepository) Insert(ctx context.Context, msg *domain.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindByID mock find msg
func (m *MockMessageRepository) FindByID(ctx context.Context, roomID, messageID string) (*domain.ChatMessage, error) {
	args := m.Called(ctx, roomID, messageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateContent mock edit msg
func (m *MockMessageRepository) UpdateContent(ctx context.Context, msg *domain.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MarkDeleted mock delete msg
func (m *MockMessageRepository) MarkDeleted(ctx context.Context, roomID, messageID string) error {
	args := m.Called(ctx, roomID, messageID)
	return args.Error(0)
}

// FindBefore mock paged history
func (m *MockMessageRepository) FindBefore(ctx context.Context, roomID string, before int64, limit int64) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, roomID, before, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockEventMirror Mock EventMirror
type MockEventMirror struct {
	mock.Mock
}

// Publish mock publish
func (m *MockEventMirror) Publish(ctx context.Context, evt domain.MirroredEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

// Close mock close
func (m *MockEventMirror) Close() error {
	args := m.Called()
	return args.Error(0)
}
