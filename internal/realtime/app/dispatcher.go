package app

import (
	"context"
	"fmt"

	"trading_hub/internal/realtime/domain"
	"trading_hub/internal/realtime/repository"
	"trading_hub/pkg"
	errprocess "trading_hub/pkg/err"

	"go.uber.org/zap"
)

// NotificationDispatcher only writer of unread counters
type NotificationDispatcher struct {
	hub     *Hub
	members repository.RoomMemberRepository
	unread  repository.UnreadRepository
}

// NewNotificationDispatcher create NotificationDispatcher
func NewNotificationDispatcher(hub *Hub, members repository.RoomMemberRepository, unread repository.UnreadRepository) *NotificationDispatcher {
	return &NotificationDispatcher{
		hub:     hub,
		members: members,
		unread:  unread,
	}
}

// Recipients persisted members minus the sender minus users with a connection joined to the room
func (d *NotificationDispatcher) Recipients(ctx context.Context, msg *domain.ChatMessage, activeConnIDs []string) ([]string, error) {
	members, err := d.members.Members(ctx, msg.RoomID)
	if err != nil {
		return nil, fmt.Errorf("room members: %w", err)
	}

	active := d.hub.ActiveUsers(activeConnIDs)
	active[msg.SenderID] = struct{}{}

	return pkg.Subtract(members, active), nil
}

// Dispatch increment the counter of every inactive member and notify them.
// Stops at the first counter failure, recipients already notified are returned with the error.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, msg *domain.ChatMessage, activeConnIDs []string) ([]string, error) {
	recipients, err := d.Recipients(ctx, msg, activeConnIDs)
	if err != nil {
		return nil, err
	}

	notified := make([]string, 0, len(recipients))
	for _, userID := range recipients {
		count, err := d.unread.Increment(ctx, userID, msg.RoomID)
		if err != nil {
			return notified, errprocess.Wrap("increment unread", err, zap.String("userID", userID), zap.String("roomID", msg.RoomID))
		}

		d.hub.EmitToUser(userID, domain.Event(domain.NotifyUnread, domain.Notification{
			RoomID:      msg.RoomID,
			UnreadCount: count,
			MessageID:   msg.ID,
			Sender:      domain.Sender{ID: msg.SenderID, Name: msg.SenderName},
		}))
		notified = append(notified, userID)
	}
	return notified, nil
}

// Reset the user entered the room
func (d *NotificationDispatcher) Reset(ctx context.Context, userID, roomID string) error {
	if err := d.unread.Reset(ctx, userID, roomID); err != nil {
		return fmt.Errorf("reset unread: %w", err)
	}
	return nil
}

// Counts room -> unread of one user
func (d *NotificationDispatcher) Counts(ctx context.Context, userID string) (map[string]int, error) {
	counters, err := d.unread.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list unread: %w", err)
	}
	counts := make(map[string]int, len(counters))
	for _, c := range counters {
		counts[c.RoomID] = c.Count
	}
	return counts, nil
}
