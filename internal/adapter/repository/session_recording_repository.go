package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
)

// SessionRecordingRepository handles session room recording data operations
type SessionRecordingRepository struct {
	db *gorm.DB
}

// NewSessionRecordingRepository creates a new session recording repository
func NewSessionRecordingRepository(db *gorm.DB) *SessionRecordingRepository {
	return &SessionRecordingRepository{db: db}
}

// Create creates a new session recording
func (r *SessionRecordingRepository) Create(ctx context.Context, recording *entities.SessionRecording) error {
	if recording == nil {
		return errors.New("recording cannot be nil")
	}
	return r.db.WithContext(ctx).Create(recording).Error
}

// FindByID retrieves a session recording by ID
func (r *SessionRecordingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.SessionRecording, error) {
	var recording entities.SessionRecording
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&recording).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recording, nil
}

// FindBySessionID retrieves all recordings for a session
func (r *SessionRecordingRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*entities.SessionRecording, error) {
	var recordings []*entities.SessionRecording
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("started_at DESC").
		Find(&recordings).Error; err != nil {
		return nil, err
	}
	return recordings, nil
}

// FindByEgressID retrieves a session recording by LiveKit egress ID
func (r *SessionRecordingRepository) FindByEgressID(ctx context.Context, egressID string) (*entities.SessionRecording, error) {
	var recording entities.SessionRecording
	if err := r.db.WithContext(ctx).
		Where("livekit_egress_id = ?", egressID).
		First(&recording).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recording, nil
}

// Update updates a session recording
func (r *SessionRecordingRepository) Update(ctx context.Context, recording *entities.SessionRecording) error {
	if recording == nil {
		return errors.New("recording cannot be nil")
	}
	return r.db.WithContext(ctx).Save(recording).Error
}

// UpdateStatus updates session recording status
func (r *SessionRecordingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.RecordingStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.SessionRecording{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// FindPendingProcessing finds recordings that never got a completion webhook
func (r *SessionRecordingRepository) FindPendingProcessing(ctx context.Context) ([]*entities.SessionRecording, error) {
	var recordings []*entities.SessionRecording
	if err := r.db.WithContext(ctx).
		Where("status = ? OR status = ?", entities.RecordingStatusRecording, entities.RecordingStatusProcessing).
		Where("created_at > NOW() - INTERVAL '24 hours'"). // Only recent recordings
		Order("created_at ASC").
		Find(&recordings).Error; err != nil {
		return nil, err
	}
	return recordings, nil
}
