package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
)

// TranscriptionJobRepository handles backfill transcription job data operations
type TranscriptionJobRepository struct {
	db *gorm.DB
}

// NewTranscriptionJobRepository creates a new transcription job repository
func NewTranscriptionJobRepository(db *gorm.DB) *TranscriptionJobRepository {
	return &TranscriptionJobRepository{db: db}
}

// GetDB exposes the underlying handle for atomic claim queries in the workers
func (r *TranscriptionJobRepository) GetDB() *gorm.DB {
	return r.db
}

// CreateJob creates a new transcription job
func (r *TranscriptionJobRepository) CreateJob(ctx context.Context, job *entities.TranscriptionJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// GetJobByID retrieves a transcription job by ID
func (r *TranscriptionJobRepository) GetJobByID(ctx context.Context, jobID uuid.UUID) (*entities.TranscriptionJob, error) {
	var job entities.TranscriptionJob
	if err := r.db.WithContext(ctx).Where("id = ?", jobID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// GetJobByExternalID retrieves a transcription job by external job ID (AssemblyAI transcript ID)
func (r *TranscriptionJobRepository) GetJobByExternalID(ctx context.Context, externalID string) (*entities.TranscriptionJob, error) {
	var job entities.TranscriptionJob
	if err := r.db.WithContext(ctx).Where("external_job_id = ?", externalID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// GetJobByAttemptID retrieves the latest transcription job for an attempt
func (r *TranscriptionJobRepository) GetJobByAttemptID(ctx context.Context, attemptID uuid.UUID) (*entities.TranscriptionJob, error) {
	var job entities.TranscriptionJob
	if err := r.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("created_at DESC").
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// ListJobsByStatus retrieves all transcription jobs with a specific status
func (r *TranscriptionJobRepository) ListJobsByStatus(ctx context.Context, status entities.TranscriptionJobStatus, limit int) ([]entities.TranscriptionJob, error) {
	var jobs []entities.TranscriptionJob
	if limit == 0 {
		limit = 100
	}
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateJob updates a transcription job
func (r *TranscriptionJobRepository) UpdateJob(ctx context.Context, job *entities.TranscriptionJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionJob{}).
		Where("id = ?", job.ID).
		Save(job).Error
}

// UpdateJobStatus updates the status of a transcription job
func (r *TranscriptionJobRepository) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status entities.TranscriptionJobStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionJob{}).
		Where("id = ?", jobID).
		Update("status", status).Error
}

// MarkJobAsSubmitted marks a job as submitted with external ID
func (r *TranscriptionJobRepository) MarkJobAsSubmitted(ctx context.Context, jobID uuid.UUID, externalID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":          entities.TranscriptionJobStatusSubmitted,
			"external_job_id": externalID,
			"started_at":      now,
			"updated_at":      now,
		}).Error
}

// MarkJobAsTranscriptReady stores the transcript text and readies the job for finalize
func (r *TranscriptionJobRepository) MarkJobAsTranscriptReady(ctx context.Context, jobID uuid.UUID, text string, confidence, audioDuration *float64) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":              entities.TranscriptionJobStatusTranscriptReady,
			"transcript_text":     text,
			"confidence":          confidence,
			"audio_duration":      audioDuration,
			"webhook_received_at": now,
			"updated_at":          now,
		}).Error
}

// MarkJobAsCompleted marks a job as completed
func (r *TranscriptionJobRepository) MarkJobAsCompleted(ctx context.Context, jobID uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       entities.TranscriptionJobStatusCompleted,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

// MarkJobAsFailed marks a job as failed with error message
func (r *TranscriptionJobRepository) MarkJobAsFailed(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     entities.TranscriptionJobStatusFailed,
			"last_error": errMsg,
			"updated_at": now,
		}).Error
}

// IncrementRetryCount increments the retry count
func (r *TranscriptionJobRepository) IncrementRetryCount(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.TranscriptionJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"retry_count": gorm.Expr("retry_count + 1"),
			"status":      entities.TranscriptionJobStatusRetrying,
			"last_error":  errMsg,
			"updated_at":  now,
		}).Error
}

// GetJobsForProcessing retrieves jobs that are ready to be submitted
func (r *TranscriptionJobRepository) GetJobsForProcessing(ctx context.Context, limit int) ([]entities.TranscriptionJob, error) {
	var jobs []entities.TranscriptionJob
	if limit == 0 {
		limit = 10
	}
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []entities.TranscriptionJobStatus{entities.TranscriptionJobStatusPending, entities.TranscriptionJobStatusRetrying}).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetFailedJobs retrieves jobs that failed and can be retried
func (r *TranscriptionJobRepository) GetFailedJobs(ctx context.Context, limit int) ([]entities.TranscriptionJob, error) {
	var jobs []entities.TranscriptionJob
	if limit == 0 {
		limit = 10
	}
	if err := r.db.WithContext(ctx).
		Where("status = ? AND retry_count < max_retries", entities.TranscriptionJobStatusFailed).
		Order("updated_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
