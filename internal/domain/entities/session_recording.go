package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RecordingStatus represents the status of a session room recording
type RecordingStatus string

const (
	RecordingStatusRecording  RecordingStatus = "recording"
	RecordingStatusProcessing RecordingStatus = "processing"
	RecordingStatusCompleted  RecordingStatus = "completed"
	RecordingStatusFailed     RecordingStatus = "failed"
	RecordingStatusDeleted    RecordingStatus = "deleted"
)

// SessionRecording represents the LiveKit composite egress covering a whole
// capture session, kept for operator review alongside per-answer artifacts.
type SessionRecording struct {
	ID                    uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionID             uuid.UUID       `json:"session_id" gorm:"type:uuid;not null;index"`
	RoomName              string          `json:"room_name" gorm:"type:varchar(255);not null;index"`
	LivekitEgressID       *string         `json:"livekit_egress_id,omitempty" gorm:"type:varchar(255);unique"`
	Status                RecordingStatus `json:"status" gorm:"type:varchar(20);not null;default:'recording';index"`
	FileURL               *string         `json:"file_url,omitempty" gorm:"type:text"`
	FilePath              *string         `json:"file_path,omitempty" gorm:"type:text"`
	FileSize              *int64          `json:"file_size,omitempty"`
	FileFormat            string          `json:"file_format" gorm:"type:varchar(20);default:'mp4'"`
	Duration              *int            `json:"duration,omitempty"` // seconds
	StartedAt             time.Time       `json:"started_at" gorm:"not null;default:now()"`
	CompletedAt           *time.Time      `json:"completed_at,omitempty"`
	ProcessingStartedAt   *time.Time      `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time      `json:"processing_completed_at,omitempty"`
	ProcessingError       *string         `json:"processing_error,omitempty" gorm:"type:text"`
	Metadata              datatypes.JSON  `json:"metadata,omitempty" gorm:"type:jsonb;default:'{}'"`
	CreatedAt             time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt             time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (SessionRecording) TableName() string {
	return "session_recordings"
}

// NewSessionRecording creates a recording row for a started egress
func NewSessionRecording(sessionID uuid.UUID, roomName string) *SessionRecording {
	return &SessionRecording{
		ID:        uuid.New(),
		SessionID: sessionID,
		RoomName:  roomName,
		Status:    RecordingStatusRecording,
		StartedAt: time.Now(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// IsCompleted checks if recording is completed
func (r *SessionRecording) IsCompleted() bool {
	return r.Status == RecordingStatusCompleted
}

// IsFailed checks if recording failed
func (r *SessionRecording) IsFailed() bool {
	return r.Status == RecordingStatusFailed
}

// MarkAsProcessing marks recording as processing
func (r *SessionRecording) MarkAsProcessing() {
	r.Status = RecordingStatusProcessing
	now := time.Now()
	r.ProcessingStartedAt = &now
	r.UpdatedAt = now
}

// MarkAsCompleted marks recording as completed with its stored file
func (r *SessionRecording) MarkAsCompleted(fileURL, filePath string, fileSize int64, duration int) {
	now := time.Now()
	r.Status = RecordingStatusCompleted
	r.FileURL = &fileURL
	r.FilePath = &filePath
	r.FileSize = &fileSize
	r.Duration = &duration
	r.CompletedAt = &now
	r.ProcessingCompletedAt = &now
	r.UpdatedAt = now
}

// MarkAsFailed marks recording as failed
func (r *SessionRecording) MarkAsFailed(errorMsg string) {
	now := time.Now()
	r.Status = RecordingStatusFailed
	r.ProcessingError = &errorMsg
	r.ProcessingCompletedAt = &now
	r.UpdatedAt = now
}
