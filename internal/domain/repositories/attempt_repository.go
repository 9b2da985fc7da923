package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
)

// AttemptRepository defines the interface for recording attempt data access
type AttemptRepository interface {
	// Create creates a new recording attempt
	Create(ctx context.Context, attempt *entities.RecordingAttempt) error

	// FindByID retrieves an attempt by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.RecordingAttempt, error)

	// Update updates an existing attempt
	Update(ctx context.Context, attempt *entities.RecordingAttempt) error

	// FindLatestBySessionAndQuestion retrieves the most recent attempt for a question
	FindLatestBySessionAndQuestion(ctx context.Context, sessionID, questionID uuid.UUID) (*entities.RecordingAttempt, error)

	// ListBySession retrieves all attempts of a session ordered by start time
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*entities.RecordingAttempt, error)
}
