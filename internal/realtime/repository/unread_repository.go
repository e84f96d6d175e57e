package repository

import (
	"context"
	"time"

	"trading_hub/internal/realtime/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnreadRepository definition persisted (user, room) unread counters
type UnreadRepository interface {
	AutoMigrate() error
	// Increment creates the counter at 1 or adds 1, returning the new count
	Increment(ctx context.Context, userID, roomID string) (int, error)
	Reset(ctx context.Context, userID, roomID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.UnreadCounter, error)
}

type unreadRepository struct {
	db *gorm.DB
}

// NewUnreadRepository create UnreadRepository
func NewUnreadRepository(db *gorm.DB) UnreadRepository {
	return &unreadRepository{db: db}
}

func (r *unreadRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.UnreadCounter{})
}

// Increment upsert in one transaction, ON CONFLICT keeps concurrent increments from losing counts
func (r *unreadRepository) Increment(ctx context.Context, userID, roomID string) (int, error) {
	var counter domain.UnreadCounter
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "room_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count":      gorm.Expr("unread_counters.count + 1"),
				"updated_at": now,
			}),
		}).Create(&domain.UnreadCounter{UserID: userID, RoomID: roomID, Count: 1, UpdatedAt: now}).Error
		if err != nil {
			return err
		}
		return tx.Where("user_id = ? AND room_id = ?", userID, roomID).First(&counter).Error
	})
	if err != nil {
		return 0, err
	}
	return counter.Count, nil
}

func (r *unreadRepository) Reset(ctx context.Context, userID, roomID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND room_id = ?", userID, roomID).
		Delete(&domain.UnreadCounter{}).Error
}

func (r *unreadRepository) ListByUser(ctx context.Context, userID string) ([]domain.UnreadCounter, error) {
	var counters []domain.UnreadCounter
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND count > 0", userID).
		Order("updated_at DESC").
		Find(&counters).Error; err != nil {
		return nil, err
	}
	return counters, nil
}
