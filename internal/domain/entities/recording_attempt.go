package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AttemptState represents the lifecycle state of a recording attempt
type AttemptState string

const (
	AttemptStateRecording AttemptState = "recording" // Device and stream are live
	AttemptStateStopped   AttemptState = "stopped"   // Stopped with a usable result
	AttemptStateFailed    AttemptState = "failed"    // Never produced a usable result
)

// StopReason records why a recording attempt ended
type StopReason string

const (
	StopReasonManual  StopReason = "manual"  // Candidate pressed stop
	StopReasonTimeout StopReason = "timeout" // Hit the hard time limit
	StopReasonError   StopReason = "error"   // Aborted by a fatal error
)

// TranscriptSource records where an attempt's transcript text came from
type TranscriptSource string

const (
	TranscriptSourceLive     TranscriptSource = "live"     // Streaming recognition during the attempt
	TranscriptSourceBackfill TranscriptSource = "backfill" // Async transcription of the stored audio
	TranscriptSourceNone     TranscriptSource = "none"     // Degraded attempt with no transcript yet
)

// RecordingAttempt represents one answer recording for one question.
// The transcript columns hold the stop-time value copy; later updates to the
// live accumulator never touch a stopped attempt.
type RecordingAttempt struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionID  uuid.UUID    `json:"session_id" gorm:"type:uuid;not null;index"`
	QuestionID uuid.UUID    `json:"question_id" gorm:"type:uuid;not null;index"`
	State      AttemptState `json:"state" gorm:"type:varchar(20);not null;default:'recording';index"`
	Degraded   bool         `json:"degraded" gorm:"default:false"` // true when streaming recognition was unavailable

	StartedAt       time.Time   `json:"started_at" gorm:"not null;default:now()"`
	StoppedAt       *time.Time  `json:"stopped_at,omitempty" gorm:"type:timestamp"`
	StopReason      *StopReason `json:"stop_reason,omitempty" gorm:"type:varchar(20)"`
	DurationSeconds *int        `json:"duration_seconds,omitempty" gorm:"type:integer"`

	TranscriptText   *string          `json:"transcript_text,omitempty" gorm:"type:text"`
	TranscriptSource TranscriptSource `json:"transcript_source" gorm:"type:varchar(20);not null;default:'none'"`

	AuthenticityScore   *int    `json:"authenticity_score,omitempty" gorm:"type:integer"`
	AuthenticityVerdict *string `json:"authenticity_verdict,omitempty" gorm:"type:varchar(20)"`
	Assessed            bool    `json:"assessed" gorm:"default:false"`

	ArtifactObjectKey *string `json:"artifact_object_key,omitempty" gorm:"type:text"`
	ArtifactURL       *string `json:"artifact_url,omitempty" gorm:"type:text"`
	ArtifactBytes     *int64  `json:"artifact_bytes,omitempty"`

	FailureMessage *string        `json:"failure_message,omitempty" gorm:"type:text"`
	Metadata       datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb;default:'{}'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (RecordingAttempt) TableName() string {
	return "recording_attempts"
}

// NewRecordingAttempt creates an attempt in the recording state
func NewRecordingAttempt(sessionID, questionID uuid.UUID, degraded bool) *RecordingAttempt {
	return &RecordingAttempt{
		ID:               uuid.New(),
		SessionID:        sessionID,
		QuestionID:       questionID,
		State:            AttemptStateRecording,
		Degraded:         degraded,
		TranscriptSource: TranscriptSourceNone,
		StartedAt:        time.Now(),
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
}

// IsStopped checks if the attempt has a final result
func (a *RecordingAttempt) IsStopped() bool {
	return a.State == AttemptStateStopped
}

// MarkAsStopped records the stop reason and duration
func (a *RecordingAttempt) MarkAsStopped(reason StopReason, durationSeconds int) {
	now := time.Now()
	a.State = AttemptStateStopped
	a.StopReason = &reason
	a.DurationSeconds = &durationSeconds
	a.StoppedAt = &now
	a.UpdatedAt = now
}

// MarkAsFailed records a fatal error on the attempt
func (a *RecordingAttempt) MarkAsFailed(message string) {
	now := time.Now()
	reason := StopReasonError
	a.State = AttemptStateFailed
	a.StopReason = &reason
	a.FailureMessage = &message
	a.StoppedAt = &now
	a.UpdatedAt = now
}

// AttachTranscript stores the transcript value copy and its source
func (a *RecordingAttempt) AttachTranscript(text string, source TranscriptSource) {
	a.TranscriptText = &text
	a.TranscriptSource = source
	a.UpdatedAt = time.Now()
}

// AttachAssessment stores the authenticity result for the attempt
func (a *RecordingAttempt) AttachAssessment(score int, verdict string, assessed bool) {
	a.AuthenticityScore = &score
	a.AuthenticityVerdict = &verdict
	a.Assessed = assessed
	a.UpdatedAt = time.Now()
}

// AttachArtifact stores the uploaded audio artifact location
func (a *RecordingAttempt) AttachArtifact(objectKey, url string, size int64) {
	a.ArtifactObjectKey = &objectKey
	a.ArtifactURL = &url
	a.ArtifactBytes = &size
	a.UpdatedAt = time.Now()
}
