package entities

import "errors"

// Domain errors
var (
	// Interview errors
	ErrInterviewNotFound  = errors.New("interview not found")
	ErrInterviewNotActive = errors.New("interview not active")
	ErrQuestionNotFound   = errors.New("question not found")

	// Applicant errors
	ErrApplicantNotFound = errors.New("applicant not found")

	// Invite errors
	ErrInviteNotFound = errors.New("invite not found")
	ErrInviteExpired  = errors.New("invite expired")
	ErrInviteConsumed = errors.New("invite already consumed")

	// Session errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionCompleted = errors.New("session already completed")
	ErrStageRegression  = errors.New("session stages only move forward")
	ErrInvalidToken     = errors.New("invalid token")

	// Attempt errors
	ErrAttemptNotFound   = errors.New("recording attempt not found")
	ErrAttemptNotStopped = errors.New("recording attempt not stopped")

	// Generic errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid request")
)
