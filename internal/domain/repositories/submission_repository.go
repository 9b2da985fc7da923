package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
)

// SubmissionRepository defines the interface for submission record data access
type SubmissionRepository interface {
	// Create creates a new submission record
	Create(ctx context.Context, record *entities.SubmissionRecord) error

	// FindByID retrieves a submission record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.SubmissionRecord, error)

	// Update updates an existing submission record
	Update(ctx context.Context, record *entities.SubmissionRecord) error

	// ListBySession retrieves all submission records of a session
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.SubmissionRecord, error)

	// ListByStatus retrieves submission records with a given status
	ListByStatus(ctx context.Context, status entities.SubmissionStatus, limit int) ([]*entities.SubmissionRecord, error)
}
