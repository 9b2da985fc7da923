package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/domain/repositories"
)

// attemptRepository implements the AttemptRepository interface
type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository creates a new recording attempt repository
func NewAttemptRepository(db *gorm.DB) repositories.AttemptRepository {
	return &attemptRepository{db: db}
}

// Create creates a new recording attempt
func (r *attemptRepository) Create(ctx context.Context, attempt *entities.RecordingAttempt) error {
	if attempt == nil {
		return errors.New("attempt cannot be nil")
	}
	return r.db.WithContext(ctx).Create(attempt).Error
}

// FindByID retrieves an attempt by ID
func (r *attemptRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.RecordingAttempt, error) {
	var attempt entities.RecordingAttempt
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

// Update updates an existing attempt
func (r *attemptRepository) Update(ctx context.Context, attempt *entities.RecordingAttempt) error {
	if attempt == nil {
		return errors.New("attempt cannot be nil")
	}
	return r.db.WithContext(ctx).Save(attempt).Error
}

// FindLatestBySessionAndQuestion retrieves the most recent attempt for a question
func (r *attemptRepository) FindLatestBySessionAndQuestion(ctx context.Context, sessionID, questionID uuid.UUID) (*entities.RecordingAttempt, error) {
	var attempt entities.RecordingAttempt
	if err := r.db.WithContext(ctx).
		Where("session_id = ? AND question_id = ?", sessionID, questionID).
		Order("started_at DESC").
		First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

// ListBySession retrieves all attempts of a session ordered by start time
func (r *attemptRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.RecordingAttempt, error) {
	var attempts []*entities.RecordingAttempt
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("started_at ASC").
		Find(&attempts).Error
	return attempts, err
}
