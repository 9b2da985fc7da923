package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/domain/repositories"
)

// inviteRepository implements the InviteRepository interface
type inviteRepository struct {
	db *gorm.DB
}

// NewInviteRepository creates a new invite repository
func NewInviteRepository(db *gorm.DB) repositories.InviteRepository {
	return &inviteRepository{db: db}
}

// Create creates a new invite
func (r *inviteRepository) Create(ctx context.Context, invite *entities.InterviewInvite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

// FindByID retrieves an invite by ID
func (r *inviteRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.InterviewInvite, error) {
	var invite entities.InterviewInvite
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invite, nil
}

// FindByTokenID retrieves an invite by its token jti
func (r *inviteRepository) FindByTokenID(ctx context.Context, tokenID string) (*entities.InterviewInvite, error) {
	var invite entities.InterviewInvite
	if err := r.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invite, nil
}

// Consume atomically marks an unconsumed invite as consumed. The WHERE clause
// on consumed_at guarantees only one caller wins when the same token races.
func (r *inviteRepository) Consume(ctx context.Context, tokenID string, sessionID uuid.UUID) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&entities.InterviewInvite{}).
		Where("token_id = ? AND consumed_at IS NULL", tokenID).
		Updates(map[string]interface{}{
			"consumed_at": now,
			"session_id":  sessionID,
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByInterview retrieves invites issued for an interview
func (r *inviteRepository) ListByInterview(ctx context.Context, interviewID uuid.UUID) ([]*entities.InterviewInvite, error) {
	var invites []*entities.InterviewInvite
	err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("created_at DESC").
		Find(&invites).Error
	return invites, err
}
