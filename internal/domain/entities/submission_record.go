package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SubmissionStatus represents the outcome of an adaptive submission
type SubmissionStatus string

const (
	SubmissionStatusPending    SubmissionStatus = "pending"
	SubmissionStatusSucceeded  SubmissionStatus = "succeeded"
	SubmissionStatusBestEffort SubmissionStatus = "best_effort_failed" // All candidate shapes rejected; flow continued anyway
)

// SubmissionRecord captures one adaptive submission to the answer tablestore,
// including which payload shape won and the rejections collected on the way.
type SubmissionRecord struct {
	ID          uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AttemptID   *uuid.UUID       `json:"attempt_id,omitempty" gorm:"type:uuid;index"`
	SessionID   uuid.UUID        `json:"session_id" gorm:"type:uuid;not null;index"`
	InterviewID uuid.UUID        `json:"interview_id" gorm:"type:uuid;not null;index"`
	ApplicantID uuid.UUID        `json:"applicant_id" gorm:"type:uuid;not null;index"`
	QuestionID  uuid.UUID        `json:"question_id" gorm:"type:uuid;not null"`
	TargetTable string           `json:"target_table" gorm:"type:varchar(255);not null"`
	Status      SubmissionStatus `json:"status" gorm:"type:varchar(30);not null;default:'pending';index"`

	AnswerField *string        `json:"answer_field,omitempty" gorm:"type:varchar(100)"` // field name of the accepted shape
	ShapesTried int            `json:"shapes_tried" gorm:"type:integer;default:0"`
	AnswerChars int            `json:"answer_chars" gorm:"type:integer;default:0"`
	Rejections  datatypes.JSON `json:"rejections,omitempty" gorm:"type:jsonb;default:'[]'"` // diagnostics only, never shown to the candidate

	SubmittedAt *time.Time `json:"submitted_at,omitempty" gorm:"type:timestamp"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (SubmissionRecord) TableName() string {
	return "submission_records"
}

// NewSubmissionRecord creates a pending submission record
func NewSubmissionRecord(sessionID, interviewID, applicantID, questionID uuid.UUID, table string, answerChars int) *SubmissionRecord {
	return &SubmissionRecord{
		ID:          uuid.New(),
		SessionID:   sessionID,
		InterviewID: interviewID,
		ApplicantID: applicantID,
		QuestionID:  questionID,
		TargetTable: table,
		Status:      SubmissionStatusPending,
		AnswerChars: answerChars,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// MarkAsSucceeded records the accepted shape
func (r *SubmissionRecord) MarkAsSucceeded(answerField string, shapesTried int) {
	now := time.Now()
	r.Status = SubmissionStatusSucceeded
	r.AnswerField = &answerField
	r.ShapesTried = shapesTried
	r.SubmittedAt = &now
	r.UpdatedAt = now
}

// MarkAsBestEffortFailed records exhaustion of all candidate shapes
func (r *SubmissionRecord) MarkAsBestEffortFailed(shapesTried int, rejections datatypes.JSON) {
	now := time.Now()
	r.Status = SubmissionStatusBestEffort
	r.ShapesTried = shapesTried
	r.Rejections = rejections
	r.SubmittedAt = &now
	r.UpdatedAt = now
}
