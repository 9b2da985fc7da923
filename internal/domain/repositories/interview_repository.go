package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
)

// InterviewRepository defines the interface for interview data access
type InterviewRepository interface {
	// Create creates a new interview
	Create(ctx context.Context, interview *entities.Interview) error

	// FindByID retrieves an interview by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Interview, error)

	// FindByIDWithQuestions retrieves an interview with its questions ordered by position
	FindByIDWithQuestions(ctx context.Context, id uuid.UUID) (*entities.Interview, error)

	// Update updates an existing interview
	Update(ctx context.Context, interview *entities.Interview) error

	// Delete deletes an interview
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves interviews with filters and pagination
	List(ctx context.Context, filters InterviewFilters) ([]*entities.Interview, int64, error)

	// AddQuestion appends a question to an interview
	AddQuestion(ctx context.Context, question *entities.InterviewQuestion) error

	// ListQuestions retrieves the questions of an interview ordered by position
	ListQuestions(ctx context.Context, interviewID uuid.UUID) ([]*entities.InterviewQuestion, error)

	// FindQuestionByID retrieves a single question
	FindQuestionByID(ctx context.Context, questionID uuid.UUID) (*entities.InterviewQuestion, error)
}

// InterviewFilters represents filter options for listing interviews
type InterviewFilters struct {
	Status    *entities.InterviewStatus
	Search    string // Search in title, description
	Limit     int
	Offset    int
	SortBy    string // "created_at", "title"
	SortOrder string // "asc", "desc"
}
