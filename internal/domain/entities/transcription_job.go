package entities

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TranscriptionJobStatus represents the status of a backfill transcription job
type TranscriptionJobStatus string

const (
	TranscriptionJobStatusPending         TranscriptionJobStatus = "pending"          // Waiting to be submitted to AssemblyAI
	TranscriptionJobStatusSubmitted       TranscriptionJobStatus = "submitted"        // Submitted, waiting for the transcript webhook
	TranscriptionJobStatusProcessing      TranscriptionJobStatus = "processing"       // Provider still working, webhook or poll
	TranscriptionJobStatusTranscriptReady TranscriptionJobStatus = "transcript_ready" // Transcript stored, waiting for finalize
	TranscriptionJobStatusFinalizing      TranscriptionJobStatus = "finalizing"       // Scoring and attaching to the attempt
	TranscriptionJobStatusCompleted       TranscriptionJobStatus = "completed"        // All processing done
	TranscriptionJobStatusFailed          TranscriptionJobStatus = "failed"           // Processing failed
	TranscriptionJobStatusRetrying        TranscriptionJobStatus = "retrying"         // Retrying after failure
	TranscriptionJobStatusCancelled       TranscriptionJobStatus = "cancelled"        // Job was cancelled
)

// TranscriptionJob represents a backfill transcription of a stored answer recording.
// Jobs exist only for degraded attempts that ended without a live transcript.
type TranscriptionJob struct {
	ID            uuid.UUID              `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AttemptID     uuid.UUID              `json:"attempt_id" gorm:"type:uuid;not null;index"`
	SessionID     uuid.UUID              `json:"session_id" gorm:"type:uuid;not null;index"`
	Status        TranscriptionJobStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'pending'"`
	ExternalJobID *string                `json:"external_job_id,omitempty" gorm:"type:varchar(255);index"` // AssemblyAI transcript ID (nullable)
	AudioURL      string                 `json:"audio_url" gorm:"type:text;not null"`

	TranscriptText *string  `json:"transcript_text,omitempty" gorm:"type:text"`
	Confidence     *float64 `json:"confidence,omitempty"`
	AudioDuration  *float64 `json:"audio_duration,omitempty"` // seconds

	// Processing details
	StartedAt         *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	CompletedAt       *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`
	WebhookReceivedAt *time.Time `json:"webhook_received_at,omitempty" gorm:"type:timestamp"`
	RetryCount        int        `json:"retry_count" gorm:"type:integer;default:0"`
	MaxRetries        int        `json:"max_retries" gorm:"type:integer;default:3"`
	LastError         *string    `json:"last_error,omitempty" gorm:"type:text"`

	// Metadata
	Metadata TranscriptionJobMetadata `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TranscriptionJobMetadata stores additional metadata for transcription jobs
type TranscriptionJobMetadata struct {
	DurationSeconds  int                    `json:"duration_seconds,omitempty"`
	Language         string                 `json:"language,omitempty"`
	ProcessingTimeMs int64                  `json:"processing_time_ms,omitempty"`
	ErrorDetails     map[string]interface{} `json:"error_details,omitempty"`
	WebhookAttempts  int                    `json:"webhook_attempts,omitempty"`
}

// Scan implements sql.Scanner interface for GORM
func (m *TranscriptionJobMetadata) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, &m)
}

// Value implements driver.Valuer interface for GORM
func (m TranscriptionJobMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// NewTranscriptionJob creates a new backfill job for an attempt
func NewTranscriptionJob(attemptID, sessionID uuid.UUID, audioURL string) *TranscriptionJob {
	return &TranscriptionJob{
		ID:         uuid.New(),
		AttemptID:  attemptID,
		SessionID:  sessionID,
		Status:     TranscriptionJobStatusPending,
		AudioURL:   audioURL,
		RetryCount: 0,
		MaxRetries: 3,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// IsRetryable checks if job can be retried
func (j *TranscriptionJob) IsRetryable() bool {
	return j.RetryCount < j.MaxRetries && j.Status == TranscriptionJobStatusFailed
}

// CanBeSubmitted checks if job is ready to be submitted
func (j *TranscriptionJob) CanBeSubmitted() bool {
	return j.Status == TranscriptionJobStatusPending || (j.Status == TranscriptionJobStatusFailed && j.IsRetryable())
}

// MarkAsSubmitted marks job as submitted to AssemblyAI
func (j *TranscriptionJob) MarkAsSubmitted(externalJobID string) {
	j.Status = TranscriptionJobStatusSubmitted
	j.ExternalJobID = &externalJobID
	now := time.Now()
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkAsProcessing marks job as being polled after a missed webhook
func (j *TranscriptionJob) MarkAsProcessing() {
	j.Status = TranscriptionJobStatusProcessing
	j.UpdatedAt = time.Now()
}

// MarkAsTranscriptReady stores the transcript and readies the job for finalize
func (j *TranscriptionJob) MarkAsTranscriptReady(text string, confidence, audioDuration *float64) {
	now := time.Now()
	j.Status = TranscriptionJobStatusTranscriptReady
	j.TranscriptText = &text
	j.Confidence = confidence
	j.AudioDuration = audioDuration
	j.WebhookReceivedAt = &now
	j.UpdatedAt = now
}

// MarkAsFinalizing marks job as being scored and attached to its attempt
func (j *TranscriptionJob) MarkAsFinalizing() {
	j.Status = TranscriptionJobStatusFinalizing
	j.UpdatedAt = time.Now()
}

// MarkAsCompleted marks job as completed successfully
func (j *TranscriptionJob) MarkAsCompleted() {
	j.Status = TranscriptionJobStatusCompleted
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed marks job as failed with error message
func (j *TranscriptionJob) MarkAsFailed(errMsg string) {
	j.Status = TranscriptionJobStatusFailed
	j.LastError = &errMsg
	j.UpdatedAt = time.Now()
}

// IncrementRetry increments retry count and marks for retry
func (j *TranscriptionJob) IncrementRetry(errMsg string) {
	j.RetryCount++
	j.Status = TranscriptionJobStatusRetrying
	j.LastError = &errMsg
	j.UpdatedAt = time.Now()
}

// MarkAsCancelled marks job as cancelled
func (j *TranscriptionJob) MarkAsCancelled() {
	j.Status = TranscriptionJobStatusCancelled
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// TableName specifies the table name for GORM
func (TranscriptionJob) TableName() string {
	return "transcription_jobs"
}
