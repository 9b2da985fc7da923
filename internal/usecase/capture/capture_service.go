package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/domain/repositories"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/cache"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/external/assemblyai"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/external/livekit"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/external/tablestore"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/media"
	usecaseErrors "github.com/hireflowdev/interview-assistant/internal/usecase/errors"
	"github.com/hireflowdev/interview-assistant/internal/usecase/submission"
	"github.com/hireflowdev/interview-assistant/pkg/config"
	"github.com/hireflowdev/interview-assistant/pkg/jwt"
)

// finalizeTimeout bounds attempt persistence when finalize is not driven by a
// caller request (auto-stop at the time limit).
const finalizeTimeout = 30 * time.Second

// CaptureService handles the answer capture business logic
type CaptureService struct {
	sessionRepo   repositories.CaptureSessionRepository
	attemptRepo   repositories.AttemptRepository
	inviteRepo    repositories.InviteRepository
	interviewRepo repositories.InterviewRepository
	applicantRepo repositories.ApplicantRepository
	recordings    RecordingLog

	tokens   *jwt.Manager
	devices  media.DeviceFactory
	streams  assemblyai.StreamFactory
	scorer   Scorer
	engine   submission.Service
	store    tablestore.Client
	rooms    livekit.Client
	live     *cache.LiveStore
	backfill BackfillQueue

	cfg    *config.Config
	clk    clock.Clock
	logger *zap.Logger

	mu       sync.RWMutex
	runtimes map[uuid.UUID]*sessionRuntime
	events   *broadcaster
}

// sessionRuntime is the in-memory side of one session: the live controller,
// the row backing it, and which attempts were already finalized.
type sessionRuntime struct {
	sessionID uuid.UUID

	mu         sync.Mutex
	controller *Controller
	attempt    *entities.RecordingAttempt
	questionIx int
	finalized  map[uuid.UUID]bool
}

// NewCaptureService creates a new capture service. rooms, live, and backfill
// may be nil; the matching behaviors are then skipped.
func NewCaptureService(
	sessionRepo repositories.CaptureSessionRepository,
	attemptRepo repositories.AttemptRepository,
	inviteRepo repositories.InviteRepository,
	interviewRepo repositories.InterviewRepository,
	applicantRepo repositories.ApplicantRepository,
	recordings RecordingLog,
	tokens *jwt.Manager,
	devices media.DeviceFactory,
	streams assemblyai.StreamFactory,
	scorer Scorer,
	engine submission.Service,
	store tablestore.Client,
	rooms livekit.Client,
	live *cache.LiveStore,
	backfill BackfillQueue,
	cfg *config.Config,
	clk clock.Clock,
	logger *zap.Logger,
) *CaptureService {
	if clk == nil {
		clk = clock.New()
	}
	return &CaptureService{
		sessionRepo:   sessionRepo,
		attemptRepo:   attemptRepo,
		inviteRepo:    inviteRepo,
		interviewRepo: interviewRepo,
		applicantRepo: applicantRepo,
		recordings:    recordings,
		tokens:        tokens,
		devices:       devices,
		streams:       streams,
		scorer:        scorer,
		engine:        engine,
		store:         store,
		rooms:         rooms,
		live:          live,
		backfill:      backfill,
		cfg:           cfg,
		clk:           clk,
		logger:        logger,
		runtimes:      make(map[uuid.UUID]*sessionRuntime),
		events:        newBroadcaster(),
	}
}

// BeginSession exchanges a one-time invite token for a capture session
func (s *CaptureService) BeginSession(ctx context.Context, input BeginSessionInput) (*BeginSessionOutput, error) {
	claims, err := s.tokens.ValidateInviteToken(input.Token)
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return nil, usecaseErrors.ErrTokenExpired
		}
		return nil, usecaseErrors.ErrTokenInvalid
	}

	invite, err := s.inviteRepo.FindByTokenID(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invite: %w", err)
	}
	if invite == nil {
		return nil, usecaseErrors.ErrTokenInvalid
	}

	hash, err := s.tokens.HashToken(input.Token)
	if err != nil || hash != invite.TokenHash {
		return nil, usecaseErrors.ErrTokenInvalid
	}
	if invite.ApplicantID != claims.ApplicantID || invite.InterviewID != claims.InterviewID {
		return nil, usecaseErrors.ErrTokenInvalid
	}
	if invite.IsConsumed() {
		return nil, usecaseErrors.ErrInviteConsumed
	}
	if invite.IsExpired() {
		return nil, usecaseErrors.ErrTokenExpired
	}

	interview, err := s.interviewRepo.FindByIDWithQuestions(ctx, claims.InterviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interview: %w", err)
	}
	if interview == nil {
		return nil, usecaseErrors.ErrInterviewNotFound
	}
	if !interview.IsActive() {
		return nil, usecaseErrors.ErrInterviewNotActive
	}
	if len(interview.Questions) == 0 {
		return nil, usecaseErrors.ErrQuestionNotFound
	}

	applicant, err := s.applicantRepo.FindByID(ctx, claims.ApplicantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load applicant: %w", err)
	}
	if applicant == nil {
		return nil, usecaseErrors.ErrApplicantNotFound
	}

	session := entities.NewInterviewSession(interview.ID, applicant.ID, len(interview.Questions))
	session.InviteID = &invite.ID

	// The conditional update is the one-time authority: of two racing
	// requests carrying the same token exactly one passes this gate.
	consumed, err := s.inviteRepo.Consume(ctx, claims.ID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to consume invite: %w", err)
	}
	if !consumed {
		return nil, usecaseErrors.ErrInviteConsumed
	}

	room := s.provisionRoom(ctx, session, applicant)

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to create session after invite consumption",
				zap.String("invite_id", invite.ID.String()),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	sessionToken, err := s.tokens.GenerateSessionToken(session.ID, applicant.ID, interview.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	s.mu.Lock()
	s.runtimes[session.ID] = &sessionRuntime{
		sessionID: session.ID,
		finalized: make(map[uuid.UUID]bool),
	}
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("✅ Capture session started",
			zap.String("session_id", session.ID.String()),
			zap.String("interview_id", interview.ID.String()),
			zap.String("applicant_id", applicant.ID.String()),
			zap.Int("question_count", session.QuestionCount),
			zap.Bool("room", room != nil),
		)
	}
	s.publishState(session)

	return &BeginSessionOutput{
		Session:      session,
		Interview:    interview,
		SessionToken: sessionToken,
		Room:         room,
	}, nil
}

// GetSession returns a session with its current question and latest attempt
func (s *CaptureService) GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.viewOf(ctx, session)
}

// Advance moves the session forward through its stages
func (s *CaptureService) Advance(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsCompleted() {
		return nil, usecaseErrors.ErrSessionCompleted
	}

	switch session.Stage {
	case entities.SessionStageWelcome:
		session.BeginQuestions()

	case entities.SessionStageQuestion:
		question, err := s.currentQuestion(ctx, session)
		if err != nil {
			return nil, err
		}

		attempt, err := s.attemptRepo.FindLatestBySessionAndQuestion(ctx, session.ID, question.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load attempt: %w", err)
		}
		if attempt == nil || !attempt.IsStopped() {
			return nil, usecaseErrors.ErrAttemptNotStopped
		}
		if attempt.ArtifactObjectKey == nil {
			return nil, usecaseErrors.ErrRecordingArtifactMissing
		}

		s.submitAnswer(ctx, session, question, attempt)
		session.NextQuestion()
	}

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("🔄 Session advanced",
			zap.String("session_id", session.ID.String()),
			zap.String("stage", string(session.Stage)),
			zap.Int("question_index", session.QuestionIndex),
		)
	}
	s.publishState(session)

	if session.IsCompleted() {
		s.completeSession(ctx, session)
		return &SessionView{Session: session}, nil
	}
	return s.viewOf(ctx, session)
}

// StartAnswer begins recording a fresh attempt for the current question
func (s *CaptureService) StartAnswer(ctx context.Context, sessionID uuid.UUID) (*Snapshot, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsCompleted() {
		return nil, usecaseErrors.ErrSessionCompleted
	}
	if !session.OnQuestion() {
		return nil, usecaseErrors.ErrNotOnQuestion
	}

	question, err := s.currentQuestion(ctx, session)
	if err != nil {
		return nil, err
	}

	rt := s.runtime(sessionID)
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.controller != nil && rt.controller.Snapshot().State == StateRecording {
		return nil, usecaseErrors.ErrAttemptInFlight
	}

	attempt := entities.NewRecordingAttempt(session.ID, question.ID, false)
	device := s.devices.NewDevice(attempt.ID.String())
	stream := s.streams.NewStream(attempt.ID.String())

	ctrl := NewController(attempt.ID, device, stream, s.scorer,
		s.controllerConfig(question), s.clk,
		s.hooksFor(session.ID, question.Position, rt), s.logger)

	if err := ctrl.Start(ctx); err != nil {
		attempt.MarkAsFailed(err.Error())
		if persistErr := s.attemptRepo.Create(ctx, attempt); persistErr != nil && s.logger != nil {
			s.logger.Error("❌ Failed to persist failed attempt",
				zap.String("attempt_id", attempt.ID.String()),
				zap.Error(persistErr),
			)
		}
		return nil, err
	}

	snap := ctrl.Snapshot()
	attempt.Degraded = snap.Degraded
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		_, _ = ctrl.Stop(ctx, entities.StopReasonError)
		return nil, fmt.Errorf("failed to persist attempt: %w", err)
	}

	rt.controller = ctrl
	rt.attempt = attempt
	rt.questionIx = question.Position

	s.putLive(sessionID, question.Position, snap)
	s.events.publish(CaptureEvent{
		Kind:          EventAttemptUpdate,
		SessionID:     sessionID,
		Stage:         session.Stage,
		QuestionIndex: question.Position,
		Snapshot:      &snap,
		At:            s.clk.Now(),
	})

	if s.logger != nil {
		s.logger.Info("🎙️ Answer recording started",
			zap.String("session_id", sessionID.String()),
			zap.String("attempt_id", attempt.ID.String()),
			zap.Int("question_index", question.Position),
			zap.Bool("degraded", attempt.Degraded),
		)
	}
	return &snap, nil
}

// StopAnswer stops the live attempt and persists its final state
func (s *CaptureService) StopAnswer(ctx context.Context, sessionID uuid.UUID) (*StopResult, error) {
	rt := s.lookupRuntime(sessionID)
	if rt == nil {
		return nil, usecaseErrors.ErrControllerNotRecording
	}

	rt.mu.Lock()
	ctrl := rt.controller
	rt.mu.Unlock()
	if ctrl == nil {
		return nil, usecaseErrors.ErrControllerNotRecording
	}

	result, err := ctrl.Stop(ctx, entities.StopReasonManual)
	if result == nil {
		return nil, err
	}
	if err != nil && s.logger != nil {
		// The attempt still stopped; the artifact may be missing and the
		// candidate retries via StartAnswer.
		s.logger.Error("❌ Recording teardown failed",
			zap.String("session_id", sessionID.String()),
			zap.String("attempt_id", result.AttemptID.String()),
			zap.Error(err),
		)
	}

	s.finalizeAttempt(ctx, rt, result)

	rt.mu.Lock()
	questionIx := rt.questionIx
	rt.mu.Unlock()
	s.events.publish(CaptureEvent{
		Kind:          EventAttemptStop,
		SessionID:     sessionID,
		Stage:         entities.SessionStageQuestion,
		QuestionIndex: questionIx,
		Result:        result,
		At:            s.clk.Now(),
	})
	return result, nil
}

// ForwardAudio pushes one PCM frame into the live attempt
func (s *CaptureService) ForwardAudio(ctx context.Context, sessionID uuid.UUID, pcm []byte) error {
	rt := s.lookupRuntime(sessionID)
	if rt == nil {
		return usecaseErrors.ErrControllerNotRecording
	}

	rt.mu.Lock()
	ctrl := rt.controller
	rt.mu.Unlock()
	if ctrl == nil {
		return usecaseErrors.ErrControllerNotRecording
	}
	return ctrl.ForwardAudio(ctx, pcm)
}

// Live returns the cached read-model for the session's current attempt
func (s *CaptureService) Live(ctx context.Context, sessionID uuid.UUID) (*cache.LiveSnapshot, error) {
	if s.live == nil {
		return nil, usecaseErrors.ErrNotFound
	}

	if rt := s.lookupRuntime(sessionID); rt != nil {
		rt.mu.Lock()
		attempt := rt.attempt
		rt.mu.Unlock()
		if attempt != nil {
			if snap, ok := s.live.Get(attempt.ID.String()); ok {
				return snap, nil
			}
		}
	}

	// No runtime for this session (restart or another instance); derive the
	// latest attempt from the rows instead.
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.OnQuestion() {
		return nil, usecaseErrors.ErrNotFound
	}
	question, err := s.currentQuestion(ctx, session)
	if err != nil {
		return nil, err
	}
	attempt, err := s.attemptRepo.FindLatestBySessionAndQuestion(ctx, session.ID, question.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}
	if attempt == nil {
		return nil, usecaseErrors.ErrNotFound
	}
	if snap, ok := s.live.Get(attempt.ID.String()); ok {
		return snap, nil
	}
	return nil, usecaseErrors.ErrNotFound
}

// AttachListener subscribes to the session's capture events
func (s *CaptureService) AttachListener(sessionID uuid.UUID) (uuid.UUID, <-chan CaptureEvent) {
	return s.events.attach(sessionID)
}

// DetachListener removes a listener and closes its channel
func (s *CaptureService) DetachListener(sessionID, listenerID uuid.UUID) {
	s.events.detach(sessionID, listenerID)
}

// provisionRoom creates the interview room, candidate token, and session
// recording egress. Everything here is best-effort; capture proceeds without
// a room.
func (s *CaptureService) provisionRoom(ctx context.Context, session *entities.InterviewSession, applicant *entities.Applicant) *RoomAccess {
	if s.rooms == nil {
		return nil
	}

	roomName := fmt.Sprintf("interview-%s", session.ID)
	if _, err := s.rooms.CreateInterviewRoom(ctx, roomName, session.ID); err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Interview room unavailable, continuing without one",
				zap.String("session_id", session.ID.String()),
				zap.Error(err),
			)
		}
		return nil
	}

	token, err := s.rooms.CandidateToken(roomName, applicant.ID, applicant.FullName)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to issue room token, continuing without a room",
				zap.String("session_id", session.ID.String()),
				zap.Error(err),
			)
		}
		return nil
	}

	session.RoomName = &roomName

	egressID, err := s.rooms.StartSessionRecording(ctx, roomName)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Session recording unavailable",
				zap.String("room_name", roomName),
				zap.Error(err),
			)
		}
	} else if s.recordings != nil {
		rec := entities.NewSessionRecording(session.ID, roomName)
		rec.LivekitEgressID = &egressID
		if err := s.recordings.Create(ctx, rec); err != nil && s.logger != nil {
			s.logger.Warn("⚠️ Failed to persist session recording row",
				zap.String("egress_id", egressID),
				zap.Error(err),
			)
		}
	}

	return &RoomAccess{Name: roomName, URL: s.rooms.URL(), Token: token}
}

// submitAnswer hands the stop-time transcript copy to the submission engine.
// The outcome is telemetry; the candidate's flow never depends on it.
func (s *CaptureService) submitAnswer(ctx context.Context, session *entities.InterviewSession, question *entities.InterviewQuestion, attempt *entities.RecordingAttempt) {
	answerText := ""
	if attempt.TranscriptText != nil {
		answerText = *attempt.TranscriptText
	}

	result := s.engine.Submit(ctx, submission.SubmitAnswerInput{
		SessionID:   session.ID,
		AttemptID:   &attempt.ID,
		ApplicantID: session.ApplicantID,
		QuestionID:  question.ID,
		InterviewID: session.InterviewID,
		AnswerText:  answerText,
	})

	if s.logger == nil {
		return
	}
	if result.Outcome == submission.OutcomeSuccess {
		s.logger.Info("📤 Answer submitted",
			zap.String("session_id", session.ID.String()),
			zap.String("question_id", question.ID.String()),
			zap.String("answer_field", result.AnswerField),
			zap.Int("shapes_tried", result.ShapesTried),
		)
	} else {
		s.logger.Warn("⚠️ Answer submission exhausted every payload shape",
			zap.String("session_id", session.ID.String()),
			zap.String("question_id", question.ID.String()),
			zap.Int("shapes_tried", result.ShapesTried),
		)
	}
}

// completeSession runs the after-last-question work: the tablestore
// completion patch, room teardown, and runtime cleanup. All best-effort.
func (s *CaptureService) completeSession(ctx context.Context, session *entities.InterviewSession) {
	s.markInterviewComplete(ctx, session)

	if s.rooms != nil && session.RoomName != nil {
		if err := s.rooms.DeleteRoom(ctx, *session.RoomName); err != nil && s.logger != nil {
			s.logger.Warn("⚠️ Failed to tear down interview room",
				zap.String("room_name", *session.RoomName),
				zap.Error(err),
			)
		}
	}

	s.events.closeSession(session.ID)
	s.mu.Lock()
	delete(s.runtimes, session.ID)
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("✅ Capture session completed",
			zap.String("session_id", session.ID.String()),
		)
	}
}

// markInterviewComplete patches the applicant's row in the tablestore, keyed
// by the ATS reference when one exists. The local session row is the source
// of truth; this write is telemetry for the hiring pipeline.
func (s *CaptureService) markInterviewComplete(ctx context.Context, session *entities.InterviewSession) {
	if s.store == nil {
		return
	}

	key := session.ApplicantID.String()
	applicant, err := s.applicantRepo.FindByID(ctx, session.ApplicantID)
	if err == nil && applicant != nil && applicant.ExternalRef != nil && *applicant.ExternalRef != "" {
		key = *applicant.ExternalRef
	}

	patch := tablestore.Record{"interview_status": "completed"}
	if _, err := s.store.Update(ctx, s.cfg.Tablestore.ApplicantsCollection, key, patch); err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to mark interview complete in tablestore",
				zap.String("applicant", key),
				zap.Error(err),
			)
		}
		return
	}
	if s.logger != nil {
		s.logger.Info("✅ Interview marked complete in tablestore",
			zap.String("applicant", key),
		)
	}
}

// finalizeAttempt persists the stop-time value copy exactly once per attempt,
// whether the stop came from the candidate or from the time limit.
func (s *CaptureService) finalizeAttempt(ctx context.Context, rt *sessionRuntime, result *StopResult) {
	rt.mu.Lock()
	if rt.finalized[result.AttemptID] {
		rt.mu.Unlock()
		return
	}
	rt.finalized[result.AttemptID] = true
	attempt := rt.attempt
	sessionID := rt.sessionID
	rt.mu.Unlock()

	if attempt == nil || attempt.ID != result.AttemptID {
		loaded, err := s.attemptRepo.FindByID(ctx, result.AttemptID)
		if err != nil || loaded == nil {
			if s.logger != nil {
				s.logger.Error("❌ Attempt row missing at finalize",
					zap.String("attempt_id", result.AttemptID.String()),
					zap.Error(err),
				)
			}
			return
		}
		attempt = loaded
	}

	attempt.MarkAsStopped(result.Reason, result.ElapsedSeconds)
	if !result.Degraded {
		attempt.AttachTranscript(result.FinalizedText, entities.TranscriptSourceLive)
	}
	if result.Assessment.Assessed {
		attempt.AttachAssessment(result.Assessment.Score, string(result.Assessment.Verdict), true)
	}
	if result.Artifact != nil {
		attempt.AttachArtifact(result.Artifact.ObjectKey, result.Artifact.URL, result.Artifact.Bytes)
	}

	if err := s.attemptRepo.Update(ctx, attempt); err != nil && s.logger != nil {
		s.logger.Error("❌ Failed to persist stopped attempt",
			zap.String("attempt_id", attempt.ID.String()),
			zap.Error(err),
		)
	}

	if result.Degraded && result.Artifact != nil && s.backfill != nil {
		if err := s.backfill.Enqueue(ctx, attempt.ID, sessionID, result.Artifact.URL); err != nil {
			if s.logger != nil {
				s.logger.Error("❌ Failed to enqueue transcription backfill",
					zap.String("attempt_id", attempt.ID.String()),
					zap.Error(err),
				)
			}
		} else if s.logger != nil {
			s.logger.Info("🔄 Transcription backfill enqueued",
				zap.String("attempt_id", attempt.ID.String()),
			)
		}
	}
}

// hooksFor wires one controller's lifecycle into the live read-model and the
// session's event channel. Hooks run on the controller goroutine.
func (s *CaptureService) hooksFor(sessionID uuid.UUID, questionIx int, rt *sessionRuntime) Hooks {
	return Hooks{
		OnUpdate: func(snap Snapshot) {
			s.putLive(sessionID, questionIx, snap)
			s.events.publish(CaptureEvent{
				Kind:          EventAttemptUpdate,
				SessionID:     sessionID,
				Stage:         entities.SessionStageQuestion,
				QuestionIndex: questionIx,
				Snapshot:      &snap,
				At:            s.clk.Now(),
			})
		},
		OnWarning: func(snap Snapshot) {
			s.events.publish(CaptureEvent{
				Kind:          EventWarning,
				SessionID:     sessionID,
				Stage:         entities.SessionStageQuestion,
				QuestionIndex: questionIx,
				Snapshot:      &snap,
				At:            s.clk.Now(),
			})
		},
		OnAutoStop: func(result *StopResult) {
			ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
			defer cancel()
			s.finalizeAttempt(ctx, rt, result)
			s.events.publish(CaptureEvent{
				Kind:          EventAutoStop,
				SessionID:     sessionID,
				Stage:         entities.SessionStageQuestion,
				QuestionIndex: questionIx,
				Result:        result,
				At:            s.clk.Now(),
			})
		},
	}
}

// putLive writes the attempt snapshot into the interviewer read-model
func (s *CaptureService) putLive(sessionID uuid.UUID, questionIx int, snap Snapshot) {
	if s.live == nil {
		return
	}

	ls := &cache.LiveSnapshot{
		SessionID:      sessionID.String(),
		AttemptID:      snap.AttemptID.String(),
		QuestionIndex:  questionIx,
		State:          string(snap.State),
		ElapsedSeconds: snap.ElapsedSeconds,
		WarningIssued:  snap.WarningIssued,
		Degraded:       snap.Degraded,
		Text:           snap.FullText,
	}
	if snap.Assessment.Assessed {
		score := snap.Assessment.Score
		ls.Score = &score
		ls.Verdict = string(snap.Assessment.Verdict)
	}
	s.live.Put(ls)
}

func (s *CaptureService) publishState(session *entities.InterviewSession) {
	s.events.publish(CaptureEvent{
		Kind:          EventSessionState,
		SessionID:     session.ID,
		Stage:         session.Stage,
		QuestionIndex: session.QuestionIndex,
		At:            s.clk.Now(),
	})
}

func (s *CaptureService) viewOf(ctx context.Context, session *entities.InterviewSession) (*SessionView, error) {
	view := &SessionView{Session: session}
	if !session.OnQuestion() {
		return view, nil
	}

	question, err := s.currentQuestion(ctx, session)
	if err != nil {
		return nil, err
	}
	view.Question = question

	attempt, err := s.attemptRepo.FindLatestBySessionAndQuestion(ctx, session.ID, question.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}
	view.Attempt = attempt
	return view, nil
}

func (s *CaptureService) loadSession(ctx context.Context, sessionID uuid.UUID) (*entities.InterviewSession, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, usecaseErrors.ErrSessionNotFound
	}
	return session, nil
}

func (s *CaptureService) currentQuestion(ctx context.Context, session *entities.InterviewSession) (*entities.InterviewQuestion, error) {
	interview, err := s.interviewRepo.FindByIDWithQuestions(ctx, session.InterviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interview: %w", err)
	}
	if interview == nil {
		return nil, usecaseErrors.ErrInterviewNotFound
	}

	question := interview.QuestionAt(session.QuestionIndex)
	if question == nil {
		return nil, usecaseErrors.ErrQuestionNotFound
	}
	return question, nil
}

// runtime returns the session's runtime, creating it when absent (a restart
// loses runtimes; sessions resume on their next StartAnswer).
func (s *CaptureService) runtime(sessionID uuid.UUID) *sessionRuntime {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.runtimes[sessionID]
	if !ok {
		rt = &sessionRuntime{
			sessionID: sessionID,
			finalized: make(map[uuid.UUID]bool),
		}
		s.runtimes[sessionID] = rt
	}
	return rt
}

func (s *CaptureService) lookupRuntime(sessionID uuid.UUID) *sessionRuntime {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runtimes[sessionID]
}

// controllerConfig builds the controller tunables, letting a question's own
// time limit override the capture default.
func (s *CaptureService) controllerConfig(question *entities.InterviewQuestion) Config {
	cfg := Config{
		TimeLimitSeconds: s.cfg.Capture.TimeLimitSeconds,
		WarningFraction:  s.cfg.Capture.WarningFraction,
		Debounce:         time.Duration(s.cfg.Capture.DebounceSeconds) * time.Second,
		DebounceChars:    s.cfg.Capture.DebounceChars,
		MinAssessChars:   s.cfg.Capture.MinAssessChars,
	}
	if question.TimeLimit != nil && *question.TimeLimit > 0 {
		cfg.TimeLimitSeconds = *question.TimeLimit
	}
	return cfg
}
