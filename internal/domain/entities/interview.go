package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// InterviewStatus represents the lifecycle status of an interview
type InterviewStatus string

const (
	InterviewStatusDraft    InterviewStatus = "draft"
	InterviewStatusActive   InterviewStatus = "active"
	InterviewStatusArchived InterviewStatus = "archived"
)

// Interview represents a structured interview with an ordered list of questions
type Interview struct {
	ID              uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title           string              `json:"title" gorm:"type:varchar(255);not null"`
	Description     *string             `json:"description,omitempty" gorm:"type:text"`
	Status          InterviewStatus     `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	TablestoreTable string              `json:"tablestore_table" gorm:"type:varchar(255);not null"`
	Questions       []InterviewQuestion `json:"questions,omitempty" gorm:"foreignKey:InterviewID"`
	Settings        datatypes.JSON      `json:"settings,omitempty" gorm:"type:jsonb;default:'{}'"`
	CreatedAt       time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Interview) TableName() string {
	return "interviews"
}

// NewInterview creates a new interview in draft status
func NewInterview(title, tablestoreTable string) *Interview {
	return &Interview{
		ID:              uuid.New(),
		Title:           title,
		Status:          InterviewStatusDraft,
		TablestoreTable: tablestoreTable,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

// IsActive checks if the interview accepts capture sessions
func (i *Interview) IsActive() bool {
	return i.Status == InterviewStatusActive
}

// Activate marks the interview as active
func (i *Interview) Activate() {
	i.Status = InterviewStatusActive
	i.UpdatedAt = time.Now()
}

// Archive marks the interview as archived
func (i *Interview) Archive() {
	i.Status = InterviewStatusArchived
	i.UpdatedAt = time.Now()
}

// QuestionAt returns the question at the given zero-based position
func (i *Interview) QuestionAt(position int) *InterviewQuestion {
	for idx := range i.Questions {
		if i.Questions[idx].Position == position {
			return &i.Questions[idx]
		}
	}
	return nil
}

// InterviewQuestion represents one prompt within an interview, ordered by Position
type InterviewQuestion struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	InterviewID uuid.UUID `json:"interview_id" gorm:"type:uuid;not null;index"`
	Position    int       `json:"position" gorm:"type:integer;not null"`
	Prompt      string    `json:"prompt" gorm:"type:text;not null"`
	TimeLimit   *int      `json:"time_limit,omitempty" gorm:"type:integer"` // seconds, overrides the capture default
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (InterviewQuestion) TableName() string {
	return "interview_questions"
}

// NewInterviewQuestion creates a question at the given position
func NewInterviewQuestion(interviewID uuid.UUID, position int, prompt string) *InterviewQuestion {
	return &InterviewQuestion{
		ID:          uuid.New(),
		InterviewID: interviewID,
		Position:    position,
		Prompt:      prompt,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}
