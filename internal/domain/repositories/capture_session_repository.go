package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
)

// CaptureSessionRepository defines the interface for capture session data access
type CaptureSessionRepository interface {
	// Create creates a new session
	Create(ctx context.Context, session *entities.InterviewSession) error

	// FindByID retrieves a session by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.InterviewSession, error)

	// Update updates an existing session
	Update(ctx context.Context, session *entities.InterviewSession) error

	// ListByInterview retrieves sessions of an interview with pagination
	ListByInterview(ctx context.Context, interviewID uuid.UUID, limit, offset int) ([]*entities.InterviewSession, int64, error)

	// ListByApplicant retrieves sessions of an applicant
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]*entities.InterviewSession, error)
}
