package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflowdev/interview-assistant/internal/adapter/repository"
	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/domain/repositories"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/media"
	"github.com/hireflowdev/interview-assistant/internal/usecase/authenticity"
	pkgai "github.com/hireflowdev/interview-assistant/pkg/ai"
	"github.com/hireflowdev/interview-assistant/pkg/config"
	"github.com/hireflowdev/interview-assistant/pkg/jobcontext"
)

// Worker cadence. The backfill is a review aid, not a candidate-facing path,
// so sweeps favor low churn over latency.
const (
	pendingSweepInterval  = 15 * time.Second
	finalizeSweepInterval = 15 * time.Second
	zombieSweepInterval   = 5 * time.Minute
	timeoutSweepInterval  = 2 * time.Minute
	deadJobSweepInterval  = 10 * time.Minute

	zombieCutoff  = 10 * time.Minute
	webhookCutoff = 10 * time.Minute

	presignExpiry = time.Hour
)

// Scorer assesses a backfilled transcript the same way the live path does
type Scorer interface {
	Score(text string) authenticity.Assessment
}

// Service transcribes the stored audio of degraded attempts after the fact.
// The resulting text is attached to the attempt for reviewer context; the
// answer row already submitted to the tablestore is never touched again.
type Service interface {
	// Enqueue registers a stored recording for asynchronous transcription.
	Enqueue(ctx context.Context, attemptID, sessionID uuid.UUID, audioURL string) error
	// SubmitJob sends one claimed job to the transcription provider.
	SubmitJob(ctx context.Context, jobID uuid.UUID) error
	// HandleWebhook processes a transcript status webhook.
	HandleWebhook(ctx context.Context, payload []byte, authHeader string) error
	// JobForAttempt returns the latest backfill job for an attempt.
	JobForAttempt(ctx context.Context, attemptID uuid.UUID) (*entities.TranscriptionJob, error)
	StartWorkerPool(ctx context.Context, workerCount int) error
	StopWorkerPool() error
}

type transcribeService struct {
	jobRepo     *repository.TranscriptionJobRepository
	attemptRepo repositories.AttemptRepository
	scorer      Scorer
	client      *pkgai.AssemblyAIClient
	artifacts   media.ArtifactStore
	cfg         *config.Config
	logger      *zap.Logger

	submitSemaphore     chan struct{} // limit concurrent provider submissions
	workerStopChan      chan struct{}
	workerWg            sync.WaitGroup
	isWorkerPoolRunning bool
	workerMutex         sync.Mutex
}

// NewService constructs the backfill transcription service. artifacts may be
// nil; stored URLs are then submitted as-is instead of being re-presigned.
func NewService(
	jobRepo *repository.TranscriptionJobRepository,
	attemptRepo repositories.AttemptRepository,
	scorer Scorer,
	client *pkgai.AssemblyAIClient,
	artifacts media.ArtifactStore,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &transcribeService{
		jobRepo:         jobRepo,
		attemptRepo:     attemptRepo,
		scorer:          scorer,
		client:          client,
		artifacts:       artifacts,
		cfg:             cfg,
		logger:          logger,
		submitSemaphore: make(chan struct{}, 2),
		workerStopChan:  make(chan struct{}),
	}
}

// Enqueue creates the job row; the pending sweep submits it. Creation is kept
// cheap because the caller runs on the recording teardown path.
func (s *transcribeService) Enqueue(ctx context.Context, attemptID, sessionID uuid.UUID, audioURL string) error {
	if audioURL == "" {
		return fmt.Errorf("audio URL is required")
	}

	job := entities.NewTranscriptionJob(attemptID, sessionID, audioURL)
	if err := s.jobRepo.CreateJob(ctx, job); err != nil {
		return fmt.Errorf("failed to create transcription job: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("🔄 Transcription job queued",
			zap.String("job_id", job.ID.String()),
			zap.String("attempt_id", attemptID.String()),
		)
	}
	return nil
}

// JobForAttempt returns the latest backfill job for an attempt
func (s *transcribeService) JobForAttempt(ctx context.Context, attemptID uuid.UUID) (*entities.TranscriptionJob, error) {
	return s.jobRepo.GetJobByAttemptID(ctx, attemptID)
}

// SubmitJob sends one job to AssemblyAI with retry. The job must already be
// claimed (status submitted) by the caller.
func (s *transcribeService) SubmitJob(ctx context.Context, jobID uuid.UUID) error {
	if s.client == nil {
		return fmt.Errorf("assemblyai client not configured")
	}

	job, err := s.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to get transcription job: %w", err)
	}
	if job == nil {
		return fmt.Errorf("transcription job not found: %s", jobID)
	}

	// Block here if two submissions are already in flight.
	s.submitSemaphore <- struct{}{}
	defer func() { <-s.submitSemaphore }()

	audioURL := s.freshAudioURL(ctx, job)
	webhookURL := s.webhookURL()

	if s.logger != nil {
		s.logger.Info("📤 Submitting recording for transcription",
			zap.String("job_id", job.ID.String()),
			zap.String("attempt_id", job.AttemptID.String()),
			zap.Int("retry_count", job.RetryCount),
		)
	}

	var transcriptID string
	submitFn := func() error {
		id, err := s.client.SubmitTranscription(ctx, audioURL, webhookURL)
		if err != nil {
			return err
		}
		transcriptID = id

		// The webhook can arrive within seconds; the external id must be on
		// the row before it does.
		if err := s.jobRepo.MarkJobAsSubmitted(ctx, job.ID, transcriptID); err != nil {
			return fmt.Errorf("failed to record external transcript id: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(submitFn, backoff.WithContext(bo, ctx)); err != nil {
		s.failOrRetry(ctx, job, fmt.Sprintf("failed to submit to AssemblyAI: %v", err))
		if s.logger != nil {
			s.logger.Error("❌ Failed to submit transcription after retries",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Info("✅ Transcription job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("transcript_id", transcriptID),
		)
	}
	return nil
}

// HandleWebhook processes a transcript status webhook from AssemblyAI
func (s *transcribeService) HandleWebhook(ctx context.Context, payload []byte, authHeader string) error {
	if s.client == nil {
		return fmt.Errorf("assemblyai client not configured")
	}
	if !s.client.VerifyWebhookAuth(authHeader) {
		if s.logger != nil {
			s.logger.Warn("⚠️ Rejected transcription webhook with bad auth header")
		}
		return fmt.Errorf("invalid webhook auth header")
	}

	var body map[string]interface{}
	if err := json.Unmarshal(payload, &body); err != nil {
		return fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	transcriptID, _ := body["transcript_id"].(string)
	if transcriptID == "" {
		transcriptID, _ = body["id"].(string)
	}
	if transcriptID == "" {
		return fmt.Errorf("transcript id missing in webhook")
	}
	status, _ := body["status"].(string)

	if s.logger != nil {
		s.logger.Info("📥 Received transcription webhook",
			zap.String("transcript_id", transcriptID),
			zap.String("status", status),
		)
	}

	job, err := s.jobRepo.GetJobByExternalID(ctx, transcriptID)
	if err != nil {
		return fmt.Errorf("failed to find transcription job: %w", err)
	}
	if job == nil {
		return fmt.Errorf("no transcription job for transcript %s", transcriptID)
	}

	switch status {
	case "completed":
		if err := s.storeTranscript(ctx, job, transcriptID); err != nil {
			if s.logger != nil {
				s.logger.Error("❌ Failed to store completed transcript",
					zap.String("job_id", job.ID.String()),
					zap.Error(err),
				)
			}
			return err
		}

	case "error":
		errMsg := fmt.Sprintf("assemblyai error: %v", body["error"])
		s.failOrRetry(ctx, job, errMsg)
		if s.logger != nil {
			s.logger.Error("❌ Transcription provider reported error",
				zap.String("job_id", job.ID.String()),
				zap.String("error", errMsg),
			)
		}

	case "queued", "processing":
		if err := s.jobRepo.UpdateJobStatus(ctx, job.ID, entities.TranscriptionJobStatusProcessing); err != nil && s.logger != nil {
			s.logger.Error("❌ Failed to update job status", zap.Error(err))
		}
	}

	return nil
}

// storeTranscript fetches the full transcript and parks it on the job row.
// The finalize sweep attaches it to the attempt.
func (s *transcribeService) storeTranscript(ctx context.Context, job *entities.TranscriptionJob, transcriptID string) error {
	transcript, err := s.client.GetTranscript(ctx, transcriptID)
	if err != nil {
		return fmt.Errorf("failed to fetch transcript: %w", err)
	}

	text := ""
	if transcript.Text != nil {
		text = *transcript.Text
	}

	if err := s.jobRepo.MarkJobAsTranscriptReady(ctx, job.ID, text, transcript.Confidence, transcript.AudioDuration); err != nil {
		return fmt.Errorf("failed to store transcript: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("✅ Backfill transcript stored",
			zap.String("job_id", job.ID.String()),
			zap.String("transcript_id", transcriptID),
			zap.Int("text_length", len(text)),
		)
	}
	return nil
}

// finalizeJob scores the stored text and attaches both to the attempt row.
// The tablestore answer row keeps the stop-time copy; nothing is re-submitted.
func (s *transcribeService) finalizeJob(ctx context.Context, job *entities.TranscriptionJob) error {
	attempt, err := s.attemptRepo.FindByID(ctx, job.AttemptID)
	if err != nil {
		return fmt.Errorf("failed to load attempt: %w", err)
	}
	if attempt == nil {
		return fmt.Errorf("attempt %s not found", job.AttemptID)
	}

	// A live transcript outranks the backfill; leave the attempt untouched.
	if attempt.TranscriptSource == entities.TranscriptSourceLive {
		if s.logger != nil {
			s.logger.Info("⏭️ Attempt already has a live transcript, skipping backfill attach",
				zap.String("job_id", job.ID.String()),
				zap.String("attempt_id", attempt.ID.String()),
			)
		}
		return nil
	}

	text := ""
	if job.TranscriptText != nil {
		text = *job.TranscriptText
	}

	attempt.AttachTranscript(text, entities.TranscriptSourceBackfill)
	assessment := s.scorer.Score(text)
	if assessment.Assessed {
		attempt.AttachAssessment(assessment.Score, string(assessment.Verdict), true)
	}

	if err := s.attemptRepo.Update(ctx, attempt); err != nil {
		return fmt.Errorf("failed to update attempt: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("✅ Backfill transcript attached to attempt",
			zap.String("job_id", job.ID.String()),
			zap.String("attempt_id", attempt.ID.String()),
			zap.Int("text_length", len(text)),
			zap.Bool("assessed", assessment.Assessed),
			zap.String("verdict", string(assessment.Verdict)),
		)
	}
	return nil
}

// StartWorkerPool starts the background sweeps and workerCount finalize workers
func (s *transcribeService) StartWorkerPool(ctx context.Context, workerCount int) error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool already running")
	}
	s.isWorkerPoolRunning = true
	s.workerStopChan = make(chan struct{})

	if s.logger != nil {
		s.logger.Info("🚀 Starting transcription worker pool",
			zap.Int("worker_count", workerCount),
		)
	}

	for i := 0; i < workerCount; i++ {
		s.workerWg.Add(1)
		go s.finalizeWorker(ctx, i)
	}

	s.workerWg.Add(1)
	go s.pendingJobWorker(ctx)

	s.workerWg.Add(1)
	go s.cleanupZombieJobs(ctx)

	s.workerWg.Add(1)
	go s.webhookTimeoutWorker(ctx)

	s.workerWg.Add(1)
	go s.deadJobReporter(ctx)

	return nil
}

// StopWorkerPool gracefully stops all worker goroutines
func (s *transcribeService) StopWorkerPool() error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if !s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool not running")
	}

	if s.logger != nil {
		s.logger.Info("🛑 Stopping transcription worker pool...")
	}

	close(s.workerStopChan)
	s.workerWg.Wait()
	s.isWorkerPoolRunning = false

	if s.logger != nil {
		s.logger.Info("✅ Transcription worker pool stopped")
	}
	return nil
}

// pendingJobWorker claims pending and retrying jobs and submits them
func (s *transcribeService) pendingJobWorker(parentCtx context.Context) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(pendingSweepInterval)
	defer ticker.Stop()

	if s.logger != nil {
		s.logger.Info("👷 Pending transcription worker started")
	}

	for {
		select {
		case <-s.workerStopChan:
			if s.logger != nil {
				s.logger.Info("👷 Pending transcription worker stopping")
			}
			return

		case <-ticker.C:
			jobs, err := s.jobRepo.GetJobsForProcessing(parentCtx, 5)
			if err != nil {
				if s.logger != nil {
					s.logger.Error("❌ Failed to poll pending jobs", zap.Error(err))
				}
				continue
			}

			for i := range jobs {
				job := jobs[i]

				// Conditional update is the claim: only one worker flips the
				// status it just observed.
				result := s.jobRepo.GetDB().WithContext(parentCtx).
					Model(&entities.TranscriptionJob{}).
					Where("id = ? AND status = ?", job.ID, job.Status).
					Updates(map[string]interface{}{
						"status":     entities.TranscriptionJobStatusSubmitted,
						"started_at": time.Now(),
						"updated_at": time.Now(),
					})

				if result.Error != nil {
					if s.logger != nil {
						s.logger.Error("❌ Failed to claim job",
							zap.String("job_id", job.ID.String()),
							zap.Error(result.Error),
						)
					}
					continue
				}
				if result.RowsAffected == 0 {
					continue
				}

				if err := s.SubmitJob(parentCtx, job.ID); err != nil {
					if s.logger != nil {
						s.logger.Error("❌ Failed to submit claimed job",
							zap.String("job_id", job.ID.String()),
							zap.Error(err),
						)
					}
					// SubmitJob already routed the job to failed or retrying.
				}
			}
		}
	}
}

// finalizeWorker claims transcript_ready jobs and attaches their text
func (s *transcribeService) finalizeWorker(parentCtx context.Context, workerID int) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(finalizeSweepInterval)
	defer ticker.Stop()

	if s.logger != nil {
		s.logger.Info("👷 Finalize worker started", zap.Int("worker_id", workerID))
	}

	for {
		select {
		case <-s.workerStopChan:
			if s.logger != nil {
				s.logger.Info("👷 Finalize worker stopping", zap.Int("worker_id", workerID))
			}
			return

		case <-ticker.C:
			jobs, err := s.jobRepo.ListJobsByStatus(parentCtx, entities.TranscriptionJobStatusTranscriptReady, 1)
			if err != nil {
				if s.logger != nil {
					s.logger.Error("❌ Failed to poll ready jobs",
						zap.Int("worker_id", workerID),
						zap.Error(err),
					)
				}
				continue
			}
			if len(jobs) == 0 {
				continue
			}
			job := jobs[0]

			result := s.jobRepo.GetDB().WithContext(parentCtx).
				Model(&entities.TranscriptionJob{}).
				Where("id = ? AND status = ?", job.ID, entities.TranscriptionJobStatusTranscriptReady).
				Updates(map[string]interface{}{
					"status":     entities.TranscriptionJobStatusFinalizing,
					"updated_at": time.Now(),
				})

			if result.Error != nil {
				if s.logger != nil {
					s.logger.Error("❌ Failed to claim job",
						zap.String("job_id", job.ID.String()),
						zap.Error(result.Error),
					)
				}
				continue
			}
			if result.RowsAffected == 0 {
				continue
			}

			// Bound the job with a timeout and panic recovery; transient
			// provider errors retry in-process before the job row fails.
			jobCtx, cancel := jobcontext.JobBegin(parentCtx, job.ID, "finalize_transcript", workerID)
			err = jobcontext.JobEnd(jobCtx, func(ctx context.Context) error {
				return s.finalizeJob(ctx, &job)
			})
			cancel()

			if err != nil {
				if s.logger != nil {
					s.logger.Error("❌ Finalize failed",
						zap.String("job_id", job.ID.String()),
						zap.Error(err),
					)
				}
				if markErr := s.jobRepo.MarkJobAsFailed(parentCtx, job.ID, err.Error()); markErr != nil && s.logger != nil {
					s.logger.Error("❌ Failed to mark job as failed", zap.Error(markErr))
				}
				continue
			}

			if err := s.jobRepo.MarkJobAsCompleted(parentCtx, job.ID); err != nil && s.logger != nil {
				s.logger.Error("❌ Failed to mark job as completed", zap.Error(err))
			}
		}
	}
}

// cleanupZombieJobs resets jobs stuck in finalizing back to transcript_ready
func (s *transcribeService) cleanupZombieJobs(parentCtx context.Context) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(zombieSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.workerStopChan:
			return

		case <-ticker.C:
			jobs, err := s.jobRepo.ListJobsByStatus(parentCtx, entities.TranscriptionJobStatusFinalizing, 0)
			if err != nil {
				continue
			}

			for _, job := range jobs {
				if job.UpdatedAt.Before(time.Now().Add(-zombieCutoff)) {
					if s.logger != nil {
						s.logger.Warn("🧹 Resetting zombie finalize job",
							zap.String("job_id", job.ID.String()),
							zap.Time("updated_at", job.UpdatedAt),
						)
					}
					if err := s.jobRepo.UpdateJobStatus(parentCtx, job.ID, entities.TranscriptionJobStatusTranscriptReady); err != nil && s.logger != nil {
						s.logger.Error("❌ Failed to reset zombie job", zap.Error(err))
					}
				}
			}
		}
	}
}

// webhookTimeoutWorker polls the provider for jobs whose webhook never arrived
func (s *transcribeService) webhookTimeoutWorker(parentCtx context.Context) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(timeoutSweepInterval)
	defer ticker.Stop()

	if s.logger != nil {
		s.logger.Info("👷 Webhook timeout worker started")
	}

	for {
		select {
		case <-s.workerStopChan:
			if s.logger != nil {
				s.logger.Info("👷 Webhook timeout worker stopping")
			}
			return

		case <-ticker.C:
			var stuckJobs []entities.TranscriptionJob
			cutoffTime := time.Now().Add(-webhookCutoff)
			waiting := []entities.TranscriptionJobStatus{
				entities.TranscriptionJobStatusSubmitted,
				entities.TranscriptionJobStatusProcessing,
			}

			if err := s.jobRepo.GetDB().WithContext(parentCtx).
				Where("status IN ? AND updated_at < ?", waiting, cutoffTime).
				Find(&stuckJobs).Error; err != nil {
				if s.logger != nil {
					s.logger.Error("❌ Failed to query stuck jobs", zap.Error(err))
				}
				continue
			}

			if len(stuckJobs) == 0 {
				continue
			}

			if s.logger != nil {
				s.logger.Warn("⏰ Jobs stuck waiting for a webhook",
					zap.Int("count", len(stuckJobs)),
				)
			}

			for i := range stuckJobs {
				s.recoverStuckJob(parentCtx, &stuckJobs[i])
			}
		}
	}
}

// recoverStuckJob polls one job's transcript and routes it forward
func (s *transcribeService) recoverStuckJob(ctx context.Context, job *entities.TranscriptionJob) {
	if job.ExternalJobID == nil || *job.ExternalJobID == "" {
		if s.logger != nil {
			s.logger.Warn("⚠️ Stuck job has no external id, marking as failed",
				zap.String("job_id", job.ID.String()),
			)
		}
		s.failOrRetry(ctx, job, "no external transcript id")
		return
	}
	transcriptID := *job.ExternalJobID

	transcript, err := s.client.GetTranscript(ctx, transcriptID)
	if err != nil {
		// Could be a transient API error; the next sweep retries.
		if s.logger != nil {
			s.logger.Error("❌ Failed to poll transcript",
				zap.String("transcript_id", transcriptID),
				zap.Error(err),
			)
		}
		return
	}

	switch transcript.Status {
	case "completed":
		if s.logger != nil {
			s.logger.Info("✅ Transcript completed (webhook missed), storing now",
				zap.String("job_id", job.ID.String()),
				zap.String("transcript_id", transcriptID),
			)
		}
		if err := s.storeTranscript(ctx, job, transcriptID); err != nil {
			s.failOrRetry(ctx, job, fmt.Sprintf("failed to store polled transcript: %v", err))
		}

	case "error":
		errMsg := "assemblyai transcription failed"
		if transcript.Error != nil {
			errMsg = fmt.Sprintf("assemblyai error: %s", *transcript.Error)
		}
		s.failOrRetry(ctx, job, errMsg)

	case "queued", "processing":
		// Still working; push the timeout window forward.
		s.jobRepo.GetDB().WithContext(ctx).
			Model(&entities.TranscriptionJob{}).
			Where("id = ?", job.ID).
			Update("updated_at", time.Now())

	default:
		if s.logger != nil {
			s.logger.Warn("⚠️ Unknown transcript status",
				zap.String("job_id", job.ID.String()),
				zap.String("status", transcript.Status),
			)
		}
	}
}

// deadJobReporter logs jobs that exhausted their retries
func (s *transcribeService) deadJobReporter(parentCtx context.Context) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(deadJobSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.workerStopChan:
			return

		case <-ticker.C:
			var deadJobs []entities.TranscriptionJob
			if err := s.jobRepo.GetDB().WithContext(parentCtx).
				Where("status = ? AND retry_count >= max_retries", entities.TranscriptionJobStatusFailed).
				Find(&deadJobs).Error; err != nil {
				continue
			}

			for _, job := range deadJobs {
				errMsg := ""
				if job.LastError != nil {
					errMsg = *job.LastError
				}
				if s.logger != nil {
					s.logger.Warn("💀 Dead transcription job",
						zap.String("job_id", job.ID.String()),
						zap.String("attempt_id", job.AttemptID.String()),
						zap.Int("retry_count", job.RetryCount),
						zap.String("last_error", errMsg),
					)
				}
			}
		}
	}
}

// failOrRetry routes a failed job back to the pending sweep while it has
// retries left, and parks it as failed once they run out.
func (s *transcribeService) failOrRetry(ctx context.Context, job *entities.TranscriptionJob, errMsg string) {
	if job.RetryCount+1 < job.MaxRetries {
		if err := s.jobRepo.IncrementRetryCount(ctx, job.ID, errMsg); err != nil && s.logger != nil {
			s.logger.Error("❌ Failed to schedule retry", zap.Error(err))
		}
		return
	}
	if err := s.jobRepo.MarkJobAsFailed(ctx, job.ID, errMsg); err != nil && s.logger != nil {
		s.logger.Error("❌ Failed to mark job as failed", zap.Error(err))
	}
}

// freshAudioURL re-presigns the attempt's artifact when possible; stored URLs
// may have expired by submit time.
func (s *transcribeService) freshAudioURL(ctx context.Context, job *entities.TranscriptionJob) string {
	if s.artifacts == nil {
		return job.AudioURL
	}

	attempt, err := s.attemptRepo.FindByID(ctx, job.AttemptID)
	if err != nil || attempt == nil || attempt.ArtifactObjectKey == nil {
		return job.AudioURL
	}

	fresh, err := s.artifacts.GetFileURL(ctx, *attempt.ArtifactObjectKey, presignExpiry)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to presign artifact, using stored URL",
				zap.String("attempt_id", attempt.ID.String()),
				zap.Error(err),
			)
		}
		return job.AudioURL
	}
	return fresh
}

// webhookURL is where AssemblyAI delivers transcript status updates
func (s *transcribeService) webhookURL() string {
	if s.cfg.AssemblyAI.WebhookBaseURL != "" {
		return s.cfg.AssemblyAI.WebhookBaseURL
	}
	return s.cfg.Server.PublicBaseURL + "/v1/webhooks/transcription"
}
