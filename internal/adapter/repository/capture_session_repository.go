package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/domain/repositories"
)

// captureSessionRepository implements the CaptureSessionRepository interface
type captureSessionRepository struct {
	db *gorm.DB
}

// NewCaptureSessionRepository creates a new capture session repository
func NewCaptureSessionRepository(db *gorm.DB) repositories.CaptureSessionRepository {
	return &captureSessionRepository{db: db}
}

// Create creates a new session
func (r *captureSessionRepository) Create(ctx context.Context, session *entities.InterviewSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// FindByID retrieves a session by ID
func (r *captureSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.InterviewSession, error) {
	var session entities.InterviewSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// Update updates an existing session
func (r *captureSessionRepository) Update(ctx context.Context, session *entities.InterviewSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

// ListByInterview retrieves sessions of an interview with pagination
func (r *captureSessionRepository) ListByInterview(ctx context.Context, interviewID uuid.UUID, limit, offset int) ([]*entities.InterviewSession, int64, error) {
	var sessions []*entities.InterviewSession
	var total int64

	base := r.db.WithContext(ctx).Model(&entities.InterviewSession{}).Where("interview_id = ?", interviewID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// ListByApplicant retrieves sessions of an applicant
func (r *captureSessionRepository) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]*entities.InterviewSession, error) {
	var sessions []*entities.InterviewSession
	err := r.db.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}
