package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/domain/repositories"
)

// submissionRepository implements the SubmissionRepository interface
type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission record repository
func NewSubmissionRepository(db *gorm.DB) repositories.SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create creates a new submission record
func (r *submissionRepository) Create(ctx context.Context, record *entities.SubmissionRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByID retrieves a submission record by ID
func (r *submissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.SubmissionRecord, error) {
	var record entities.SubmissionRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Update updates an existing submission record
func (r *submissionRepository) Update(ctx context.Context, record *entities.SubmissionRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	return r.db.WithContext(ctx).Save(record).Error
}

// ListBySession retrieves all submission records of a session
func (r *submissionRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.SubmissionRecord, error) {
	var records []*entities.SubmissionRecord
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

// ListByStatus retrieves submission records with a given status
func (r *submissionRepository) ListByStatus(ctx context.Context, status entities.SubmissionStatus, limit int) ([]*entities.SubmissionRecord, error) {
	var records []*entities.SubmissionRecord
	if limit == 0 {
		limit = 100
	}
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
