package entities

import (
	"time"

	"github.com/google/uuid"
)

// InterviewInvite represents a single-use invite token issued to an applicant.
// The raw JWT is never stored; only its sha256 hash and its jti.
type InterviewInvite struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	InterviewID uuid.UUID  `json:"interview_id" gorm:"type:uuid;not null;index"`
	ApplicantID uuid.UUID  `json:"applicant_id" gorm:"type:uuid;not null;index"`
	TokenID     string     `json:"-" gorm:"column:token_id;type:varchar(64);uniqueIndex;not null"`
	TokenHash   string     `json:"-" gorm:"column:token_hash;type:varchar(64);not null"`
	ExpiresAt   time.Time  `json:"expires_at" gorm:"type:timestamp;not null;index"`
	ConsumedAt  *time.Time `json:"consumed_at,omitempty" gorm:"type:timestamp"`
	SessionID   *uuid.UUID `json:"session_id,omitempty" gorm:"type:uuid"` // session created when the invite was consumed
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (InterviewInvite) TableName() string {
	return "interview_invites"
}

// NewInterviewInvite creates a new invite bound to a token id and hash
func NewInterviewInvite(interviewID, applicantID uuid.UUID, tokenID, tokenHash string, expiresAt time.Time) *InterviewInvite {
	return &InterviewInvite{
		ID:          uuid.New(),
		InterviewID: interviewID,
		ApplicantID: applicantID,
		TokenID:     tokenID,
		TokenHash:   tokenHash,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now(),
	}
}

// IsExpired checks if the invite is past its expiry
func (i *InterviewInvite) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// IsConsumed checks if the invite was already exchanged for a session
func (i *InterviewInvite) IsConsumed() bool {
	return i.ConsumedAt != nil
}

// IsValid checks if the invite can still be consumed
func (i *InterviewInvite) IsValid() bool {
	if i == nil {
		return false
	}
	return !i.IsExpired() && !i.IsConsumed()
}

// Consume marks the invite as used and records the session it produced
func (i *InterviewInvite) Consume(sessionID uuid.UUID) {
	now := time.Now()
	i.ConsumedAt = &now
	i.SessionID = &sessionID
}
