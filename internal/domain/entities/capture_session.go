package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SessionStage represents where a capture session is in its forward-only flow
type SessionStage string

const (
	SessionStageWelcome  SessionStage = "welcome"   // Intro screen, nothing recorded yet
	SessionStageQuestion SessionStage = "question"  // Answering question at QuestionIndex
	SessionStageThankYou SessionStage = "thank_you" // All questions answered, session closed
)

// InterviewSession represents one applicant's pass through an interview.
// Stages only move forward; there is no way back to an earlier question.
type InterviewSession struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	InterviewID   uuid.UUID      `json:"interview_id" gorm:"type:uuid;not null;index"`
	ApplicantID   uuid.UUID      `json:"applicant_id" gorm:"type:uuid;not null;index"`
	InviteID      *uuid.UUID     `json:"invite_id,omitempty" gorm:"type:uuid"`
	Stage         SessionStage   `json:"stage" gorm:"type:varchar(20);not null;default:'welcome';index"`
	QuestionIndex int            `json:"question_index" gorm:"type:integer;not null;default:0"`
	QuestionCount int            `json:"question_count" gorm:"type:integer;not null"`
	RoomName      *string        `json:"room_name,omitempty" gorm:"type:varchar(255)"` // LiveKit room backing this session
	StartedAt     *time.Time     `json:"started_at,omitempty" gorm:"type:timestamp"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty" gorm:"type:timestamp"`
	Metadata      datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb;default:'{}'"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (InterviewSession) TableName() string {
	return "interview_sessions"
}

// NewInterviewSession creates a session at the welcome stage
func NewInterviewSession(interviewID, applicantID uuid.UUID, questionCount int) *InterviewSession {
	return &InterviewSession{
		ID:            uuid.New(),
		InterviewID:   interviewID,
		ApplicantID:   applicantID,
		Stage:         SessionStageWelcome,
		QuestionIndex: 0,
		QuestionCount: questionCount,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

// IsCompleted checks if the session reached the thank-you stage
func (s *InterviewSession) IsCompleted() bool {
	return s.Stage == SessionStageThankYou
}

// OnQuestion checks if the session is currently on a question
func (s *InterviewSession) OnQuestion() bool {
	return s.Stage == SessionStageQuestion
}

// LastQuestion checks if the current question is the final one
func (s *InterviewSession) LastQuestion() bool {
	return s.QuestionIndex >= s.QuestionCount-1
}

// BeginQuestions moves the session from welcome to the first question
func (s *InterviewSession) BeginQuestions() bool {
	if s.Stage != SessionStageWelcome {
		return false
	}
	now := time.Now()
	s.Stage = SessionStageQuestion
	s.QuestionIndex = 0
	s.StartedAt = &now
	s.UpdatedAt = now
	return true
}

// NextQuestion advances to the following question, or to thank-you after the last one
func (s *InterviewSession) NextQuestion() bool {
	if s.Stage != SessionStageQuestion {
		return false
	}
	if s.LastQuestion() {
		s.finish()
		return true
	}
	s.QuestionIndex++
	s.UpdatedAt = time.Now()
	return true
}

func (s *InterviewSession) finish() {
	now := time.Now()
	s.Stage = SessionStageThankYou
	s.CompletedAt = &now
	s.UpdatedAt = now
}
