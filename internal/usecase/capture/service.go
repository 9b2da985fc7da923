package capture

import (
	"context"

	"github.com/google/uuid"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/cache"
)

// Service defines the interface for the answer capture use case. It owns the
// forward-only session flow welcome → question(i) → thank_you and the one
// live recording controller per session.
type Service interface {
	// BeginSession exchanges a one-time invite token for a capture session
	BeginSession(ctx context.Context, input BeginSessionInput) (*BeginSessionOutput, error)

	// GetSession returns a session with its current question and latest attempt
	GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionView, error)

	// Advance moves the session forward: welcome → question 0, or question i →
	// question i+1 / thank_you once the current attempt has stopped with an
	// artifact. Advancing past a question hands the stop-time transcript to
	// the submission engine; submission failures never block the candidate.
	Advance(ctx context.Context, sessionID uuid.UUID) (*SessionView, error)

	// StartAnswer begins recording a fresh attempt for the current question
	StartAnswer(ctx context.Context, sessionID uuid.UUID) (*Snapshot, error)

	// StopAnswer stops the live attempt and persists its final state
	StopAnswer(ctx context.Context, sessionID uuid.UUID) (*StopResult, error)

	// ForwardAudio pushes one PCM frame into the live attempt
	ForwardAudio(ctx context.Context, sessionID uuid.UUID, pcm []byte) error

	// Live returns the cached read-model for the session's current attempt
	Live(ctx context.Context, sessionID uuid.UUID) (*cache.LiveSnapshot, error)

	// AttachListener subscribes to the session's capture events
	AttachListener(sessionID uuid.UUID) (uuid.UUID, <-chan CaptureEvent)

	// DetachListener removes a listener and closes its channel
	DetachListener(sessionID, listenerID uuid.UUID)
}

// BeginSessionInput carries the raw invite token presented by the candidate
type BeginSessionInput struct {
	Token string
}

// RoomAccess is the candidate's entry into the interview room, present only
// when room provisioning succeeded.
type RoomAccess struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Token string `json:"token"`
}

// BeginSessionOutput is the result of consuming an invite
type BeginSessionOutput struct {
	Session      *entities.InterviewSession
	Interview    *entities.Interview
	SessionToken string
	Room         *RoomAccess
}

// SessionView is the read model for one session: the row plus the current
// question and its latest attempt when the session is on a question.
type SessionView struct {
	Session  *entities.InterviewSession
	Question *entities.InterviewQuestion
	Attempt  *entities.RecordingAttempt
}

// BackfillQueue enqueues async transcription work for degraded attempts
type BackfillQueue interface {
	Enqueue(ctx context.Context, attemptID, sessionID uuid.UUID, audioURL string) error
}

// RecordingLog persists room egress recordings for operator review
type RecordingLog interface {
	Create(ctx context.Context, recording *entities.SessionRecording) error
}

// Ensure CaptureService implements Service interface
var _ Service = (*CaptureService)(nil)
