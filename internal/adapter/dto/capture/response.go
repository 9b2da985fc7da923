package capture

import (
	"time"
)

// SessionResponse represents a capture session in responses
type SessionResponse struct {
	ID            string     `json:"id"`
	InterviewID   string     `json:"interview_id"`
	Stage         string     `json:"stage"`
	QuestionIndex int        `json:"question_index"`
	QuestionCount int        `json:"question_count"`
	RoomName      *string    `json:"room_name,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// QuestionResponse represents the question currently facing the applicant
type QuestionResponse struct {
	ID               string `json:"id"`
	Position         int    `json:"position"`
	Prompt           string `json:"prompt"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
}

// InterviewSummaryResponse is the applicant-facing view of an interview
type InterviewSummaryResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// RoomAccessResponse carries the LiveKit credentials for the browser client
type RoomAccessResponse struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Token string `json:"token"`
}

// BeginSessionResponse is returned after an invite token is consumed.
// Room is absent when room provisioning failed; the session still runs.
type BeginSessionResponse struct {
	Session      *SessionResponse          `json:"session"`
	Interview    *InterviewSummaryResponse `json:"interview"`
	SessionToken string                    `json:"session_token"`
	Room         *RoomAccessResponse       `json:"room,omitempty"`
}

// AssessmentResponse represents an authenticity read over transcript text
type AssessmentResponse struct {
	Score    int      `json:"score"`
	Verdict  string   `json:"verdict"`
	Assessed bool     `json:"assessed"`
	Signals  []string `json:"signals,omitempty"`
}

// AttemptSnapshotResponse is the in-flight state of one recording attempt
type AttemptSnapshotResponse struct {
	AttemptID        string              `json:"attempt_id"`
	State            string              `json:"state"`
	ElapsedSeconds   int                 `json:"elapsed_seconds"`
	TimeLimitSeconds int                 `json:"time_limit_seconds"`
	WarningIssued    bool                `json:"warning_issued"`
	Degraded         bool                `json:"degraded"`
	FullText         string              `json:"full_text"`
	FinalizedText    string              `json:"finalized_text"`
	Interim          string              `json:"interim,omitempty"`
	Assessment       *AssessmentResponse `json:"assessment,omitempty"`
}

// SegmentResponse is one committed transcript segment
type SegmentResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
	AudioStart int     `json:"audio_start,omitempty"`
	AudioEnd   int     `json:"audio_end,omitempty"`
}

// ArtifactResponse describes the stored answer audio
type ArtifactResponse struct {
	ObjectKey       string  `json:"object_key"`
	URL             string  `json:"url"`
	Bytes           int64   `json:"bytes"`
	DurationSeconds float64 `json:"duration_seconds"`
	SampleRate      int     `json:"sample_rate"`
	Format          string  `json:"format"`
}

// StopAnswerResponse is the final outcome of one recording attempt
type StopAnswerResponse struct {
	AttemptID      string              `json:"attempt_id"`
	Reason         string              `json:"reason"`
	ElapsedSeconds int                 `json:"elapsed_seconds"`
	WarningIssued  bool                `json:"warning_issued"`
	Degraded       bool                `json:"degraded"`
	FinalizedText  string              `json:"finalized_text"`
	Segments       []SegmentResponse   `json:"segments"`
	Assessment     *AssessmentResponse `json:"assessment,omitempty"`
	Artifact       *ArtifactResponse   `json:"artifact,omitempty"`
}

// AttemptStateResponse is the stored state of the latest attempt for the
// session's current question. Live progress comes from the stream or the
// live endpoint, not from here.
type AttemptStateResponse struct {
	ID               string              `json:"id"`
	State            string              `json:"state"`
	Degraded         bool                `json:"degraded"`
	StartedAt        time.Time           `json:"started_at"`
	StoppedAt        *time.Time          `json:"stopped_at,omitempty"`
	StopReason       *string             `json:"stop_reason,omitempty"`
	DurationSeconds  *int                `json:"duration_seconds,omitempty"`
	TranscriptText   *string             `json:"transcript_text,omitempty"`
	TranscriptSource string              `json:"transcript_source"`
	Assessment       *AssessmentResponse `json:"assessment,omitempty"`
}

// SessionStateResponse is the read model for one session: the row plus the
// current question and its latest attempt when the session is on a question
type SessionStateResponse struct {
	Session  *SessionResponse      `json:"session"`
	Question *QuestionResponse     `json:"question,omitempty"`
	Attempt  *AttemptStateResponse `json:"attempt,omitempty"`
}
