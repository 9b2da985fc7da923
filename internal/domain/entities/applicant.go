package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Applicant represents a candidate invited to one or more interviews
type Applicant struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FullName    string         `json:"full_name" gorm:"type:varchar(255);not null"`
	Email       string         `json:"email" gorm:"type:varchar(255);not null;index"`
	ExternalRef *string        `json:"external_ref,omitempty" gorm:"type:varchar(255);index"` // ATS identifier when provided
	Metadata    datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb;default:'{}'"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Applicant) TableName() string {
	return "applicants"
}

// NewApplicant creates a new applicant
func NewApplicant(fullName, email string) *Applicant {
	return &Applicant{
		ID:        uuid.New(),
		FullName:  fullName,
		Email:     email,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
