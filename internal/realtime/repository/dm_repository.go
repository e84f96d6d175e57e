package repository

import (
	"context"
	"time"

	"trading_hub/internal/realtime/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DMRepository definition direct message list visibility per user
type DMRepository interface {
	AutoMigrate() error
	Save(ctx context.Context, v *domain.DMVisibility) error
	// SetHidden returns false when the user has no row for the room
	SetHidden(ctx context.Context, userID, roomID string, hidden bool) (bool, error)
	HiddenIn(ctx context.Context, roomID string) ([]domain.DMVisibility, error)
	Visible(ctx context.Context, userID string) ([]domain.DMVisibility, error)
}

type dmRepository struct {
	db *gorm.DB
}

// NewDMRepository create DMRepository
func NewDMRepository(db *gorm.DB) DMRepository {
	return &dmRepository{db: db}
}

func (r *dmRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.DMVisibility{})
}

func (r *dmRepository) Save(ctx context.Context, v *domain.DMVisibility) error {
	v.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "room_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"peer_id", "peer_name", "hidden", "updated_at"}),
	}).Create(v).Error
}

func (r *dmRepository) SetHidden(ctx context.Context, userID, roomID string, hidden bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.DMVisibility{}).
		Where("user_id = ? AND room_id = ?", userID, roomID).
		Updates(map[string]interface{}{"hidden": hidden, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *dmRepository) HiddenIn(ctx context.Context, roomID string) ([]domain.DMVisibility, error) {
	var rows []domain.DMVisibility
	if err := r.db.WithContext(ctx).Where("room_id = ? AND hidden = ?", roomID, true).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *dmRepository) Visible(ctx context.Context, userID string) ([]domain.DMVisibility, error) {
	var rows []domain.DMVisibility
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND hidden = ?", userID, false).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
