package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trading_hub/internal/realtime/domain"
	"trading_hub/internal/realtime/repository"
	errprocess "trading_hub/pkg/err"
	"trading_hub/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// MessageUseCase 負責處理聊天訊息, persist first then deliver
type MessageUseCase struct {
	msgRepo    repository.MessageRepository
	members    repository.RoomMemberRepository
	fanout     *MessageFanout
	dispatcher *NotificationDispatcher
	dms        *DirectMessageUseCase
	now        func() time.Time
}

// NewMessageUseCase create MessageUseCase, dms may be nil
func NewMessageUseCase(
	msgRepo repository.MessageRepository,
	members repository.RoomMemberRepository,
	fanout *MessageFanout,
	dispatcher *NotificationDispatcher,
	dms *DirectMessageUseCase,
) *MessageUseCase {
	return &MessageUseCase{
		msgRepo:    msgRepo,
		members:    members,
		fanout:     fanout,
		dispatcher: dispatcher,
		dms:        dms,
		now:        time.Now,
	}
}

func (uc *MessageUseCase) checkMember(ctx context.Context, roomID, userID string) error {
	ok, err := uc.members.IsMember(ctx, roomID, userID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return domain.ErrNotRoomMember
	}
	return nil
}

// Send persist a message, deliver newMessage to the room and notify inactive members.
// A notification failure is returned together with the already delivered message.
func (uc *MessageUseCase) Send(ctx context.Context, roomID, senderID, senderName, content string) (*domain.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrEmptyContent
	}
	if err := uc.checkMember(ctx, roomID, senderID); err != nil {
		return nil, err
	}

	msg := &domain.ChatMessage{
		ID:         uuid.New().String(),
		RoomID:     roomID,
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
		CreatedAt:  uc.now().UnixMilli(),
	}
	if err := uc.msgRepo.Insert(ctx, msg); err != nil {
		return nil, errprocess.Wrap("insert message", err, zap.String("roomID", roomID), zap.String("senderID", senderID))
	}

	active := uc.fanout.Created(msg)

	if uc.dms != nil {
		if err := uc.dms.OnMessage(ctx, msg); err != nil {
			logger.Log.Warn("dm reactivation failed", zap.String("roomID", roomID), zap.Error(err))
		}
	}

	notified, err := uc.dispatcher.Dispatch(ctx, msg, active)
	if err != nil {
		return msg, err
	}
	logger.Log.Debug("message delivered",
		zap.String("roomID", roomID),
		zap.Int("active", len(active)),
		zap.Int("notified", len(notified)),
	)
	return msg, nil
}

func (uc *MessageUseCase) ownMessage(ctx context.Context, roomID, messageID, userID string) (*domain.ChatMessage, error) {
	msg, err := uc.msgRepo.FindByID(ctx, roomID, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != userID {
		return nil, domain.ErrNotMessageOwner
	}
	return msg, nil
}

// Edit sender only, delivers messageEdited
func (uc *MessageUseCase) Edit(ctx context.Context, roomID, messageID, userID, content string) (*domain.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrEmptyContent
	}
	msg, err := uc.ownMessage(ctx, roomID, messageID, userID)
	if err != nil {
		return nil, err
	}

	msg.Content = content
	msg.EditedAt = uc.now().UnixMilli()
	if err := uc.msgRepo.UpdateContent(ctx, msg); err != nil {
		return nil, fmt.Errorf("update message: %w", err)
	}
	uc.fanout.Edited(msg)
	return msg, nil
}

// Delete sender only, delivers messageDeleted
func (uc *MessageUseCase) Delete(ctx context.Context, roomID, messageID, userID string) error {
	if _, err := uc.ownMessage(ctx, roomID, messageID, userID); err != nil {
		return err
	}
	if err := uc.msgRepo.MarkDeleted(ctx, roomID, messageID); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	uc.fanout.Deleted(domain.MessageRef{ID: messageID, RoomID: roomID})
	return nil
}

// EnterRoom the user's client confirmed it is viewing the room, clears the counter
func (uc *MessageUseCase) EnterRoom(ctx context.Context, roomID, userID string) error {
	if err := uc.checkMember(ctx, roomID, userID); err != nil {
		return err
	}
	return uc.dispatcher.Reset(ctx, userID, roomID)
}

// History newest first page of messages strictly before `before` (unix milli, 0 = now)
func (uc *MessageUseCase) History(ctx context.Context, roomID, userID string, before int64, limit int) ([]domain.ChatMessage, error) {
	if err := uc.checkMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	if before <= 0 {
		before = uc.now().UnixMilli() + 1
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return uc.msgRepo.FindBefore(ctx, roomID, before, int64(limit))
}
