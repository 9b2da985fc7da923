package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/domain/repositories"
)

// interviewRepository implements the InterviewRepository interface
type interviewRepository struct {
	db *gorm.DB
}

// NewInterviewRepository creates a new interview repository
func NewInterviewRepository(db *gorm.DB) repositories.InterviewRepository {
	return &interviewRepository{db: db}
}

// Create creates a new interview
func (r *interviewRepository) Create(ctx context.Context, interview *entities.Interview) error {
	return r.db.WithContext(ctx).Create(interview).Error
}

// FindByID retrieves an interview by its ID
func (r *interviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Interview, error) {
	var interview entities.Interview
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&interview).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &interview, nil
}

// FindByIDWithQuestions retrieves an interview with its questions ordered by position
func (r *interviewRepository) FindByIDWithQuestions(ctx context.Context, id uuid.UUID) (*entities.Interview, error) {
	var interview entities.Interview
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("interview_questions.position ASC")
		}).
		Where("id = ?", id).
		First(&interview).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &interview, nil
}

// Update updates an existing interview
func (r *interviewRepository) Update(ctx context.Context, interview *entities.Interview) error {
	return r.db.WithContext(ctx).Save(interview).Error
}

// Delete deletes an interview
func (r *interviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entities.Interview{}, id).Error
}

// List retrieves interviews with filters and pagination
func (r *interviewRepository) List(ctx context.Context, filters repositories.InterviewFilters) ([]*entities.Interview, int64, error) {
	var interviews []*entities.Interview
	var total int64

	query := r.db.WithContext(ctx).Model(&entities.Interview{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Search != "" {
		searchPattern := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortOrder := filters.SortOrder
	if sortOrder == "" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&interviews).Error; err != nil {
		return nil, 0, err
	}
	return interviews, total, nil
}

// AddQuestion appends a question to an interview
func (r *interviewRepository) AddQuestion(ctx context.Context, question *entities.InterviewQuestion) error {
	return r.db.WithContext(ctx).Create(question).Error
}

// ListQuestions retrieves the questions of an interview ordered by position
func (r *interviewRepository) ListQuestions(ctx context.Context, interviewID uuid.UUID) ([]*entities.InterviewQuestion, error) {
	var questions []*entities.InterviewQuestion
	err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("position ASC").
		Find(&questions).Error
	return questions, err
}

// FindQuestionByID retrieves a single question
func (r *interviewRepository) FindQuestionByID(ctx context.Context, questionID uuid.UUID) (*entities.InterviewQuestion, error) {
	var question entities.InterviewQuestion
	err := r.db.WithContext(ctx).
		Where("id = ?", questionID).
		First(&question).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &question, nil
}
