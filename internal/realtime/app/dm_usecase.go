package app

import (
	"context"
	"fmt"

	"trading_hub/internal/realtime/domain"
	"trading_hub/internal/realtime/repository"
)

// DirectMessageUseCase keep each user's direct message list in sync across tabs
type DirectMessageUseCase struct {
	dmRepo repository.DMRepository
	hub    *Hub
}

// NewDirectMessageUseCase create DirectMessageUseCase
func NewDirectMessageUseCase(dmRepo repository.DMRepository, hub *Hub) *DirectMessageUseCase {
	return &DirectMessageUseCase{dmRepo: dmRepo, hub: hub}
}

// Activate show the conversation in userID's list and tell every tab of userID
func (uc *DirectMessageUseCase) Activate(ctx context.Context, userID string, dm domain.DMSummary) error {
	if err := uc.dmRepo.Save(ctx, &domain.DMVisibility{
		UserID:   userID,
		RoomID:   dm.RoomID,
		PeerID:   dm.PeerID,
		PeerName: dm.PeerName,
	}); err != nil {
		return fmt.Errorf("activate dm: %w", err)
	}
	uc.hub.EmitToUser(userID, domain.Event(domain.DMActivated, dm))
	return nil
}

// Hide remove the conversation from userID's list
func (uc *DirectMessageUseCase) Hide(ctx context.Context, userID, roomID string) error {
	found, err := uc.dmRepo.SetHidden(ctx, userID, roomID, true)
	if err != nil {
		return fmt.Errorf("hide dm: %w", err)
	}
	if !found {
		if err := uc.dmRepo.Save(ctx, &domain.DMVisibility{UserID: userID, RoomID: roomID, Hidden: true}); err != nil {
			return fmt.Errorf("hide dm: %w", err)
		}
	}
	uc.hub.EmitToUser(userID, domain.Event(domain.DMHidden, domain.DMRef{RoomID: roomID}))
	return nil
}

// List visible conversations of userID
func (uc *DirectMessageUseCase) List(ctx context.Context, userID string) ([]domain.DMSummary, error) {
	rows, err := uc.dmRepo.Visible(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list dm: %w", err)
	}
	list := make([]domain.DMSummary, 0, len(rows))
	for _, r := range rows {
		list = append(list, r.Summary())
	}
	return list, nil
}

// OnMessage a new message re-activates the conversation for recipients who hid it
func (uc *DirectMessageUseCase) OnMessage(ctx context.Context, msg *domain.ChatMessage) error {
	hidden, err := uc.dmRepo.HiddenIn(ctx, msg.RoomID)
	if err != nil {
		return fmt.Errorf("hidden dm: %w", err)
	}
	for _, v := range hidden {
		if v.UserID == msg.SenderID {
			continue
		}
		if _, err := uc.dmRepo.SetHidden(ctx, v.UserID, v.RoomID, false); err != nil {
			return fmt.Errorf("reactivate dm: %w", err)
		}
		uc.hub.EmitToUser(v.UserID, domain.Event(domain.DMActivated, v.Summary()))
	}
	return nil
}
