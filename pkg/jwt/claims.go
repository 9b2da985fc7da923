package jwt

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// InviteClaims carries the identity baked into an interview invite link.
// The registered ID (jti) makes the invite consumable exactly once.
type InviteClaims struct {
	ApplicantID uuid.UUID `json:"applicant_id"`
	InterviewID uuid.UUID `json:"interview_id"`
	jwt.RegisteredClaims
}

// SessionClaims authorizes follow-up calls for one capture session.
type SessionClaims struct {
	SessionID   uuid.UUID `json:"session_id"`
	ApplicantID uuid.UUID `json:"applicant_id"`
	InterviewID uuid.UUID `json:"interview_id"`
	jwt.RegisteredClaims
}
