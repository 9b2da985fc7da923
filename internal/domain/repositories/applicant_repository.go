package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
)

// ApplicantRepository defines the interface for applicant data access
type ApplicantRepository interface {
	// Create creates a new applicant
	Create(ctx context.Context, applicant *entities.Applicant) error

	// FindByID retrieves an applicant by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Applicant, error)

	// FindByEmail retrieves an applicant by email
	FindByEmail(ctx context.Context, email string) (*entities.Applicant, error)

	// Update updates an existing applicant
	Update(ctx context.Context, applicant *entities.Applicant) error

	// List retrieves applicants with pagination
	List(ctx context.Context, limit, offset int) ([]*entities.Applicant, int64, error)
}
