package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden access")
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrConflict      = errors.New("resource conflict")
	ErrInternalError = errors.New("internal server error")
)

// Capture token errors
var (
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenInvalid    = errors.New("token invalid")
	ErrInviteConsumed  = errors.New("invite already consumed")
	ErrSessionNotFound = errors.New("session not found")
)

// Capture flow errors
var (
	ErrSessionCompleted  = errors.New("session already completed")
	ErrNotOnQuestion     = errors.New("session is not on a question")
	ErrAttemptNotStopped = errors.New("current attempt has not stopped")
	ErrAttemptInFlight   = errors.New("an attempt is already recording")
)

// Recording errors
var (
	ErrControllerStopped         = errors.New("controller already stopped")
	ErrControllerNotRecording    = errors.New("controller is not recording")
	ErrDeviceAcquisitionFailed   = errors.New("failed to acquire audio device")
	ErrTranscriptionUnavailable  = errors.New("streaming transcription unavailable")
	ErrRecordingAlreadyReleased  = errors.New("recording controller already released")
	ErrRecordingArtifactMissing  = errors.New("recording produced no artifact")
	ErrRecordingStartInterrupted = errors.New("recording start interrupted")
)

// Submission errors
var (
	ErrSubmissionExhausted = errors.New("all candidate payload shapes rejected")
	ErrNoAnswerTable       = errors.New("interview has no answer table configured")
)

// LiveKit errors
var (
	ErrLivekitConnection = errors.New("failed to connect to LiveKit")
	ErrLivekitToken      = errors.New("failed to generate LiveKit token")
	ErrLivekitRoom       = errors.New("LiveKit room error")
)

// Interview errors
var (
	ErrInterviewNotFound       = errors.New("interview not found")
	ErrInterviewNotActive      = errors.New("interview is not active")
	ErrInterviewHasNoQuestions = errors.New("interview has no questions")
	ErrQuestionNotFound        = errors.New("question not found")
	ErrApplicantNotFound       = errors.New("applicant not found")
)
