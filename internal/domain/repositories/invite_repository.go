package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
)

// InviteRepository defines the interface for invite data access
type InviteRepository interface {
	// Create creates a new invite
	Create(ctx context.Context, invite *entities.InterviewInvite) error

	// FindByID retrieves an invite by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.InterviewInvite, error)

	// FindByTokenID retrieves an invite by its token jti
	FindByTokenID(ctx context.Context, tokenID string) (*entities.InterviewInvite, error)

	// Consume atomically marks an unconsumed invite as consumed and records the
	// session it produced. Returns false when the invite was already consumed.
	Consume(ctx context.Context, tokenID string, sessionID uuid.UUID) (bool, error)

	// ListByInterview retrieves invites issued for an interview
	ListByInterview(ctx context.Context, interviewID uuid.UUID) ([]*entities.InterviewInvite, error)
}
