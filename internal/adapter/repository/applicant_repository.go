package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/domain/repositories"
)

// applicantRepository implements the ApplicantRepository interface
type applicantRepository struct {
	db *gorm.DB
}

// NewApplicantRepository creates a new applicant repository
func NewApplicantRepository(db *gorm.DB) repositories.ApplicantRepository {
	return &applicantRepository{db: db}
}

// Create creates a new applicant
func (r *applicantRepository) Create(ctx context.Context, applicant *entities.Applicant) error {
	return r.db.WithContext(ctx).Create(applicant).Error
}

// FindByID retrieves an applicant by ID
func (r *applicantRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Applicant, error) {
	var applicant entities.Applicant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&applicant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &applicant, nil
}

// FindByEmail retrieves an applicant by email
func (r *applicantRepository) FindByEmail(ctx context.Context, email string) (*entities.Applicant, error) {
	var applicant entities.Applicant
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&applicant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &applicant, nil
}

// Update updates an existing applicant
func (r *applicantRepository) Update(ctx context.Context, applicant *entities.Applicant) error {
	return r.db.WithContext(ctx).Save(applicant).Error
}

// List retrieves applicants with pagination
func (r *applicantRepository) List(ctx context.Context, limit, offset int) ([]*entities.Applicant, int64, error) {
	var applicants []*entities.Applicant
	var total int64

	if err := r.db.WithContext(ctx).Model(&entities.Applicant{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&applicants).Error; err != nil {
		return nil, 0, err
	}
	return applicants, total, nil
}
