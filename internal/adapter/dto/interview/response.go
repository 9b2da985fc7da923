package interview

import (
	"time"
)

// InterviewResponse represents an interview in operator responses
type InterviewResponse struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title"`
	Description     *string                `json:"description,omitempty"`
	Status          string                 `json:"status"`
	TablestoreTable string                 `json:"tablestore_table"`
	Questions       []*QuestionResponse    `json:"questions,omitempty"`
	Settings        map[string]interface{} `json:"settings,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// QuestionResponse represents an interview question in operator responses
type QuestionResponse struct {
	ID               string    `json:"id"`
	InterviewID      string    `json:"interview_id"`
	Position         int       `json:"position"`
	Prompt           string    `json:"prompt"`
	TimeLimitSeconds *int      `json:"time_limit_seconds,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ApplicantResponse represents an applicant in operator responses
type ApplicantResponse struct {
	ID          string  `json:"id"`
	FullName    string  `json:"full_name"`
	Email       string  `json:"email"`
	ExternalRef *string `json:"external_ref,omitempty"`
}

// InviteResponse is returned after creating an invite. Token is the signed
// invite JWT and is only ever returned here; the database keeps its hash.
type InviteResponse struct {
	ID        string             `json:"id"`
	Interview string             `json:"interview_id"`
	Applicant *ApplicantResponse `json:"applicant"`
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	CreatedAt time.Time          `json:"created_at"`
}

// SessionSummaryResponse represents one capture session in operator lists
type SessionSummaryResponse struct {
	ID            string     `json:"id"`
	InterviewID   string     `json:"interview_id"`
	ApplicantID   string     `json:"applicant_id"`
	Stage         string     `json:"stage"`
	QuestionIndex int        `json:"question_index"`
	QuestionCount int        `json:"question_count"`
	RoomName      *string    `json:"room_name,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// SubmissionResponse is the tablestore submission telemetry for one attempt
type SubmissionResponse struct {
	ID          string                   `json:"id"`
	Status      string                   `json:"status"`
	TargetTable string                   `json:"target_table"`
	AnswerField *string                  `json:"answer_field,omitempty"`
	ShapesTried int                      `json:"shapes_tried"`
	AnswerChars int                      `json:"answer_chars"`
	Rejections  []map[string]interface{} `json:"rejections,omitempty"`
	SubmittedAt *time.Time               `json:"submitted_at,omitempty"`
}

// TranscriptionJobResponse is the backfill state for a degraded attempt
type TranscriptionJobResponse struct {
	ID            string     `json:"id"`
	Status        string     `json:"status"`
	ExternalJobID *string    `json:"external_job_id,omitempty"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastError     *string    `json:"last_error,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// AttemptResponse represents a recording attempt with its assessment,
// artifact, submission telemetry and backfill state
type AttemptResponse struct {
	ID                  string                    `json:"id"`
	SessionID           string                    `json:"session_id"`
	QuestionID          string                    `json:"question_id"`
	State               string                    `json:"state"`
	Degraded            bool                      `json:"degraded"`
	StartedAt           time.Time                 `json:"started_at"`
	StoppedAt           *time.Time                `json:"stopped_at,omitempty"`
	StopReason          *string                   `json:"stop_reason,omitempty"`
	DurationSeconds     *int                      `json:"duration_seconds,omitempty"`
	TranscriptText      *string                   `json:"transcript_text,omitempty"`
	TranscriptSource    string                    `json:"transcript_source"`
	AuthenticityScore   *int                      `json:"authenticity_score,omitempty"`
	AuthenticityVerdict *string                   `json:"authenticity_verdict,omitempty"`
	Assessed            bool                      `json:"assessed"`
	ArtifactObjectKey   *string                   `json:"artifact_object_key,omitempty"`
	ArtifactURL         *string                   `json:"artifact_url,omitempty"`
	ArtifactBytes       *int64                    `json:"artifact_bytes,omitempty"`
	FailureMessage      *string                   `json:"failure_message,omitempty"`
	Submission          *SubmissionResponse       `json:"submission,omitempty"`
	TranscriptionJob    *TranscriptionJobResponse `json:"transcription_job,omitempty"`
}

// InterviewListResponse represents a paginated list of interviews
type InterviewListResponse struct {
	Interviews []*InterviewResponse `json:"interviews"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
}

// SessionListResponse represents a paginated list of capture sessions
type SessionListResponse struct {
	Sessions   []*SessionSummaryResponse `json:"sessions"`
	Total      int64                     `json:"total"`
	Page       int                       `json:"page"`
	PageSize   int                       `json:"page_size"`
	TotalPages int                       `json:"total_pages"`
}

// AttemptListResponse represents a session's attempts with telemetry
type AttemptListResponse struct {
	Attempts []*AttemptResponse `json:"attempts"`
	Total    int                `json:"total"`
}

// RecordingResponse represents a session room recording in operator responses
type RecordingResponse struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"session_id"`
	RoomName    string     `json:"room_name"`
	Status      string     `json:"status"`
	FileURL     *string    `json:"file_url,omitempty"`
	FileSize    *int64     `json:"file_size,omitempty"`
	Duration    *int       `json:"duration,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
