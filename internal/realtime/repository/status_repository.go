package repository

import (
	"context"
	"errors"
	"fmt"

	"trading_hub/internal/realtime/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// StatusRepository definition persisted explicit presence status
type StatusRepository interface {
	EnsureSchema(ctx context.Context) error
	// FindStatus returns "" when the user never chose a status
	FindStatus(ctx context.Context, userID string) (domain.Status, error)
	SaveStatus(ctx context.Context, userID string, status domain.Status) error
}

type statusRepository struct {
	db *pgxpool.Pool
}

// NewStatusRepository create a StatusRepository
func NewStatusRepository(db *pgxpool.Pool) StatusRepository {
	return &statusRepository{db: db}
}

func (r *statusRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS member_status (
        member_id  TEXT PRIMARY KEY,
        status     TEXT NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )`)
	return err
}

func (r *statusRepository) FindStatus(ctx context.Context, userID string) (domain.Status, error) {
	var status string
	err := r.db.QueryRow(ctx, "SELECT status FROM member_status WHERE member_id = $1", userID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("find status: %w", err)
	}
	return domain.Status(status), nil
}

func (r *statusRepository) SaveStatus(ctx context.Context, userID string, status domain.Status) error {
	_, err := r.db.Exec(ctx, `
      INSERT INTO member_status(member_id, status, updated_at) VALUES ($1, $2, now())
      ON CONFLICT (member_id) DO UPDATE SET status = EXCLUDED.status, updated_at = now()
    `, userID, string(status))
	if err != nil {
		return fmt.Errorf("save status: %w", err)
	}
	return nil
}
