package repository

import (
	"context"

	"trading_hub/internal/realtime/domain"

	"gorm.io/gorm"
)

// RoomMemberRepository definition persisted room membership reads
type RoomMemberRepository interface {
	AutoMigrate() error
	Members(ctx context.Context, roomID string) ([]string, error)
	IsMember(ctx context.Context, roomID, userID string) (bool, error)
}

type roomMemberRepository struct {
	db *gorm.DB
}

// NewRoomMemberRepository create RoomMemberRepository
func NewRoomMemberRepository(db *gorm.DB) RoomMemberRepository {
	return &roomMemberRepository{db: db}
}

func (r *roomMemberRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.RoomMember{})
}

func (r *roomMemberRepository) Members(ctx context.Context, roomID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&domain.RoomMember{}).
		Where("room_id = ?", roomID).
		Order("joined_at ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *roomMemberRepository) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&domain.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
