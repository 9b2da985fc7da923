package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/domain/repositories"
	usecaseErrors "github.com/hireflowdev/interview-assistant/internal/usecase/errors"
	"github.com/hireflowdev/interview-assistant/pkg/jwt"
)

// Service defines the operator-facing interview management use case:
// interview and question setup, invite issuing, and session review.
type Service interface {
	// CreateInterview creates a draft interview
	CreateInterview(ctx context.Context, input CreateInterviewInput) (*entities.Interview, error)

	// GetInterview returns an interview with its questions
	GetInterview(ctx context.Context, id uuid.UUID) (*entities.Interview, error)

	// ListInterviews returns interviews matching the filters plus a total count
	ListInterviews(ctx context.Context, filters repositories.InterviewFilters) ([]*entities.Interview, int64, error)

	// ActivateInterview opens an interview for capture sessions
	ActivateInterview(ctx context.Context, id uuid.UUID) (*entities.Interview, error)

	// AddQuestion appends a question to an interview
	AddQuestion(ctx context.Context, input AddQuestionInput) (*entities.InterviewQuestion, error)

	// CreateInvite issues a single-use invite token for an applicant
	CreateInvite(ctx context.Context, input CreateInviteInput) (*InviteOutput, error)

	// ListSessions returns an interview's capture sessions plus a total count
	ListSessions(ctx context.Context, interviewID uuid.UUID, limit, offset int) ([]*entities.InterviewSession, int64, error)

	// ListAttempts returns a session's attempts with submission telemetry
	// and backfill state
	ListAttempts(ctx context.Context, sessionID uuid.UUID) ([]*AttemptDetail, error)

	// ListRecordings returns a session's room recordings
	ListRecordings(ctx context.Context, sessionID uuid.UUID) ([]*entities.SessionRecording, error)
}

// CreateInterviewInput carries the fields for a new interview
type CreateInterviewInput struct {
	Title           string
	Description     *string
	TablestoreTable string
	Settings        map[string]interface{}
}

// AddQuestionInput carries the fields for a new question. Position is
// assigned by the service; questions keep arrival order.
type AddQuestionInput struct {
	InterviewID      uuid.UUID
	Prompt           string
	TimeLimitSeconds *int
}

// CreateInviteInput carries the fields for a new invite
type CreateInviteInput struct {
	InterviewID    uuid.UUID
	ApplicantName  string
	ApplicantEmail string
	ExternalRef    *string
}

// InviteOutput is the result of issuing an invite. Token is the signed JWT;
// it is returned once and only its hash is stored.
type InviteOutput struct {
	Invite    *entities.InterviewInvite
	Applicant *entities.Applicant
	Token     string
}

// AttemptDetail joins one attempt with its submission telemetry and, for
// degraded attempts, the transcription backfill job.
type AttemptDetail struct {
	Attempt    *entities.RecordingAttempt
	Submission *entities.SubmissionRecord
	Job        *entities.TranscriptionJob
}

// BackfillLookup reads transcription job state for degraded attempts
type BackfillLookup interface {
	JobForAttempt(ctx context.Context, attemptID uuid.UUID) (*entities.TranscriptionJob, error)
}

// RecordingLog reads session room recordings for operator review
type RecordingLog interface {
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*entities.SessionRecording, error)
}

type interviewService struct {
	interviewRepo  repositories.InterviewRepository
	applicantRepo  repositories.ApplicantRepository
	inviteRepo     repositories.InviteRepository
	sessionRepo    repositories.CaptureSessionRepository
	attemptRepo    repositories.AttemptRepository
	submissionRepo repositories.SubmissionRepository
	backfill       BackfillLookup
	recordings     RecordingLog
	tokens         *jwt.Manager
	logger         *zap.Logger
}

// NewService creates the interview management service. backfill and
// recordings may be nil when those subsystems are not configured.
func NewService(
	interviewRepo repositories.InterviewRepository,
	applicantRepo repositories.ApplicantRepository,
	inviteRepo repositories.InviteRepository,
	sessionRepo repositories.CaptureSessionRepository,
	attemptRepo repositories.AttemptRepository,
	submissionRepo repositories.SubmissionRepository,
	backfill BackfillLookup,
	recordings RecordingLog,
	tokens *jwt.Manager,
	logger *zap.Logger,
) Service {
	return &interviewService{
		interviewRepo:  interviewRepo,
		applicantRepo:  applicantRepo,
		inviteRepo:     inviteRepo,
		sessionRepo:    sessionRepo,
		attemptRepo:    attemptRepo,
		submissionRepo: submissionRepo,
		backfill:       backfill,
		recordings:     recordings,
		tokens:         tokens,
		logger:         logger,
	}
}

// CreateInterview creates a draft interview
func (s *interviewService) CreateInterview(ctx context.Context, input CreateInterviewInput) (*entities.Interview, error) {
	if input.Title == "" || input.TablestoreTable == "" {
		return nil, usecaseErrors.ErrInvalidInput
	}

	interview := entities.NewInterview(input.Title, input.TablestoreTable)
	interview.Description = input.Description

	if input.Settings != nil {
		raw, err := json.Marshal(input.Settings)
		if err != nil {
			return nil, fmt.Errorf("failed to encode settings: %w", err)
		}
		interview.Settings = datatypes.JSON(raw)
	}

	if err := s.interviewRepo.Create(ctx, interview); err != nil {
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("📋 Interview created",
			zap.String("interview_id", interview.ID.String()),
			zap.String("title", interview.Title),
			zap.String("tablestore_table", interview.TablestoreTable),
		)
	}
	return interview, nil
}

// GetInterview returns an interview with its questions
func (s *interviewService) GetInterview(ctx context.Context, id uuid.UUID) (*entities.Interview, error) {
	interview, err := s.interviewRepo.FindByIDWithQuestions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load interview: %w", err)
	}
	if interview == nil {
		return nil, usecaseErrors.ErrInterviewNotFound
	}
	return interview, nil
}

// ListInterviews returns interviews matching the filters plus a total count
func (s *interviewService) ListInterviews(ctx context.Context, filters repositories.InterviewFilters) ([]*entities.Interview, int64, error) {
	return s.interviewRepo.List(ctx, filters)
}

// ActivateInterview opens an interview for capture sessions. An interview
// without questions cannot be activated; sessions would have nothing to ask.
func (s *interviewService) ActivateInterview(ctx context.Context, id uuid.UUID) (*entities.Interview, error) {
	interview, err := s.interviewRepo.FindByIDWithQuestions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load interview: %w", err)
	}
	if interview == nil {
		return nil, usecaseErrors.ErrInterviewNotFound
	}
	if len(interview.Questions) == 0 {
		return nil, usecaseErrors.ErrInterviewHasNoQuestions
	}

	interview.Activate()
	if err := s.interviewRepo.Update(ctx, interview); err != nil {
		return nil, fmt.Errorf("failed to update interview: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("✅ Interview activated",
			zap.String("interview_id", interview.ID.String()),
			zap.Int("questions", len(interview.Questions)),
		)
	}
	return interview, nil
}

// AddQuestion appends a question to an interview
func (s *interviewService) AddQuestion(ctx context.Context, input AddQuestionInput) (*entities.InterviewQuestion, error) {
	if input.Prompt == "" {
		return nil, usecaseErrors.ErrInvalidInput
	}

	interview, err := s.interviewRepo.FindByID(ctx, input.InterviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interview: %w", err)
	}
	if interview == nil {
		return nil, usecaseErrors.ErrInterviewNotFound
	}

	existing, err := s.interviewRepo.ListQuestions(ctx, input.InterviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	question := entities.NewInterviewQuestion(input.InterviewID, len(existing), input.Prompt)
	question.TimeLimit = input.TimeLimitSeconds

	if err := s.interviewRepo.AddQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to add question: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("❓ Question added",
			zap.String("interview_id", input.InterviewID.String()),
			zap.String("question_id", question.ID.String()),
			zap.Int("position", question.Position),
		)
	}
	return question, nil
}

// CreateInvite issues a single-use invite token. The applicant row is
// reused when the email is already known. Draft interviews accept invites;
// BeginSession enforces that the interview is active by then.
func (s *interviewService) CreateInvite(ctx context.Context, input CreateInviteInput) (*InviteOutput, error) {
	if input.ApplicantName == "" || input.ApplicantEmail == "" {
		return nil, usecaseErrors.ErrInvalidInput
	}

	interview, err := s.interviewRepo.FindByID(ctx, input.InterviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interview: %w", err)
	}
	if interview == nil {
		return nil, usecaseErrors.ErrInterviewNotFound
	}

	applicant, err := s.applicantRepo.FindByEmail(ctx, input.ApplicantEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to look up applicant: %w", err)
	}
	if applicant == nil {
		applicant = entities.NewApplicant(input.ApplicantName, input.ApplicantEmail)
		applicant.ExternalRef = input.ExternalRef
		if err := s.applicantRepo.Create(ctx, applicant); err != nil {
			return nil, fmt.Errorf("failed to create applicant: %w", err)
		}
	}

	token, jti, err := s.tokens.GenerateInviteToken(applicant.ID, interview.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign invite token: %w", err)
	}
	hash, err := s.tokens.HashToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to hash invite token: %w", err)
	}

	invite := entities.NewInterviewInvite(interview.ID, applicant.ID, jti, hash,
		time.Now().Add(s.tokens.GetInviteExpiry()))
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("✉️ Invite issued",
			zap.String("interview_id", interview.ID.String()),
			zap.String("applicant_id", applicant.ID.String()),
			zap.Time("expires_at", invite.ExpiresAt),
		)
	}
	return &InviteOutput{Invite: invite, Applicant: applicant, Token: token}, nil
}

// ListSessions returns an interview's capture sessions plus a total count
func (s *interviewService) ListSessions(ctx context.Context, interviewID uuid.UUID, limit, offset int) ([]*entities.InterviewSession, int64, error) {
	interview, err := s.interviewRepo.FindByID(ctx, interviewID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load interview: %w", err)
	}
	if interview == nil {
		return nil, 0, usecaseErrors.ErrInterviewNotFound
	}
	return s.sessionRepo.ListByInterview(ctx, interviewID, limit, offset)
}

// ListAttempts returns a session's attempts with their submission telemetry
// and, for degraded attempts, the backfill job state.
func (s *interviewService) ListAttempts(ctx context.Context, sessionID uuid.UUID) ([]*AttemptDetail, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, usecaseErrors.ErrSessionNotFound
	}

	attempts, err := s.attemptRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	submissions, err := s.submissionRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	byAttempt := make(map[uuid.UUID]*entities.SubmissionRecord, len(submissions))
	for _, record := range submissions {
		if record.AttemptID != nil {
			byAttempt[*record.AttemptID] = record
		}
	}

	details := make([]*AttemptDetail, 0, len(attempts))
	for _, attempt := range attempts {
		detail := &AttemptDetail{
			Attempt:    attempt,
			Submission: byAttempt[attempt.ID],
		}
		if attempt.Degraded && s.backfill != nil {
			job, err := s.backfill.JobForAttempt(ctx, attempt.ID)
			if err != nil && s.logger != nil {
				s.logger.Warn("⚠️ Failed to load backfill job",
					zap.String("attempt_id", attempt.ID.String()),
					zap.Error(err),
				)
			}
			detail.Job = job
		}
		details = append(details, detail)
	}
	return details, nil
}

// ListRecordings returns a session's room recordings
func (s *interviewService) ListRecordings(ctx context.Context, sessionID uuid.UUID) ([]*entities.SessionRecording, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, usecaseErrors.ErrSessionNotFound
	}
	if s.recordings == nil {
		return nil, nil
	}
	return s.recordings.FindBySessionID(ctx, sessionID)
}
