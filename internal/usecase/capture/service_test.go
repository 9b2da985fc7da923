package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/domain/repositories"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/cache"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/external/assemblyai"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/external/livekit"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/external/tablestore"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/media"
	"github.com/hireflowdev/interview-assistant/internal/usecase/authenticity"
	usecaseErrors "github.com/hireflowdev/interview-assistant/internal/usecase/errors"
	"github.com/hireflowdev/interview-assistant/internal/usecase/submission"
	"github.com/hireflowdev/interview-assistant/pkg/config"
	"github.com/hireflowdev/interview-assistant/pkg/jwt"
)

// --- in-memory repository fakes ---

type fakeSessionRepo struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*entities.InterviewSession
	createErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{rows: make(map[uuid.UUID]*entities.InterviewSession)}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *entities.InterviewSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.rows[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.InterviewSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id], nil
}

func (f *fakeSessionRepo) Update(_ context.Context, s *entities.InterviewSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) ListByInterview(_ context.Context, _ uuid.UUID, _, _ int) ([]*entities.InterviewSession, int64, error) {
	return nil, 0, nil
}

func (f *fakeSessionRepo) ListByApplicant(_ context.Context, _ uuid.UUID) ([]*entities.InterviewSession, error) {
	return nil, nil
}

type fakeAttemptRepo struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*entities.RecordingAttempt
	order   []uuid.UUID
	updates map[uuid.UUID]int
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{
		rows:    make(map[uuid.UUID]*entities.RecordingAttempt),
		updates: make(map[uuid.UUID]int),
	}
}

func (f *fakeAttemptRepo) Create(_ context.Context, a *entities.RecordingAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[a.ID] = a
	f.order = append(f.order, a.ID)
	return nil
}

func (f *fakeAttemptRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.RecordingAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id], nil
}

func (f *fakeAttemptRepo) Update(_ context.Context, a *entities.RecordingAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[a.ID] = a
	f.updates[a.ID]++
	return nil
}

func (f *fakeAttemptRepo) FindLatestBySessionAndQuestion(_ context.Context, sessionID, questionID uuid.UUID) (*entities.RecordingAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.order) - 1; i >= 0; i-- {
		a := f.rows[f.order[i]]
		if a != nil && a.SessionID == sessionID && a.QuestionID == questionID {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAttemptRepo) ListBySession(_ context.Context, sessionID uuid.UUID) ([]*entities.RecordingAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.RecordingAttempt
	for _, id := range f.order {
		if a := f.rows[id]; a != nil && a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttemptRepo) updateCount(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates[id]
}

type fakeInviteRepo struct {
	mu   sync.Mutex
	rows map[string]*entities.InterviewInvite // keyed by token jti
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{rows: make(map[string]*entities.InterviewInvite)}
}

func (f *fakeInviteRepo) Create(_ context.Context, inv *entities.InterviewInvite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[inv.TokenID] = inv
	return nil
}

func (f *fakeInviteRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.InterviewInvite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.rows {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, nil
}

func (f *fakeInviteRepo) FindByTokenID(_ context.Context, tokenID string) (*entities.InterviewInvite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[tokenID], nil
}

func (f *fakeInviteRepo) Consume(_ context.Context, tokenID string, sessionID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv := f.rows[tokenID]
	if inv == nil || inv.ConsumedAt != nil {
		return false, nil
	}
	inv.Consume(sessionID)
	return true, nil
}

func (f *fakeInviteRepo) ListByInterview(_ context.Context, _ uuid.UUID) ([]*entities.InterviewInvite, error) {
	return nil, nil
}

type fakeInterviewRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entities.Interview
}

func newFakeInterviewRepo() *fakeInterviewRepo {
	return &fakeInterviewRepo{rows: make(map[uuid.UUID]*entities.Interview)}
}

func (f *fakeInterviewRepo) Create(_ context.Context, iv *entities.Interview) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[iv.ID] = iv
	return nil
}

func (f *fakeInterviewRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id], nil
}

func (f *fakeInterviewRepo) FindByIDWithQuestions(_ context.Context, id uuid.UUID) (*entities.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id], nil
}

func (f *fakeInterviewRepo) Update(_ context.Context, iv *entities.Interview) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[iv.ID] = iv
	return nil
}

func (f *fakeInterviewRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

func (f *fakeInterviewRepo) List(_ context.Context, _ repositories.InterviewFilters) ([]*entities.Interview, int64, error) {
	return nil, 0, nil
}

func (f *fakeInterviewRepo) AddQuestion(_ context.Context, q *entities.InterviewQuestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if iv := f.rows[q.InterviewID]; iv != nil {
		iv.Questions = append(iv.Questions, *q)
	}
	return nil
}

func (f *fakeInterviewRepo) ListQuestions(_ context.Context, interviewID uuid.UUID) ([]*entities.InterviewQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	iv := f.rows[interviewID]
	if iv == nil {
		return nil, nil
	}
	out := make([]*entities.InterviewQuestion, 0, len(iv.Questions))
	for i := range iv.Questions {
		out = append(out, &iv.Questions[i])
	}
	return out, nil
}

func (f *fakeInterviewRepo) FindQuestionByID(_ context.Context, questionID uuid.UUID) (*entities.InterviewQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, iv := range f.rows {
		for i := range iv.Questions {
			if iv.Questions[i].ID == questionID {
				return &iv.Questions[i], nil
			}
		}
	}
	return nil, nil
}

type fakeApplicantRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entities.Applicant
}

func newFakeApplicantRepo() *fakeApplicantRepo {
	return &fakeApplicantRepo{rows: make(map[uuid.UUID]*entities.Applicant)}
}

func (f *fakeApplicantRepo) Create(_ context.Context, a *entities.Applicant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[a.ID] = a
	return nil
}

func (f *fakeApplicantRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Applicant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id], nil
}

func (f *fakeApplicantRepo) FindByEmail(_ context.Context, email string) (*entities.Applicant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeApplicantRepo) Update(_ context.Context, a *entities.Applicant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[a.ID] = a
	return nil
}

func (f *fakeApplicantRepo) List(_ context.Context, _, _ int) ([]*entities.Applicant, int64, error) {
	return nil, 0, nil
}

// --- infrastructure fakes ---

type fakeDeviceFactory struct {
	mu       sync.Mutex
	devices  map[string]*fakeDevice
	startErr error
}

func newFakeDeviceFactory() *fakeDeviceFactory {
	return &fakeDeviceFactory{devices: make(map[string]*fakeDevice)}
}

func (f *fakeDeviceFactory) NewDevice(attemptID string) media.Device {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := newFakeDevice()
	d.startErr = f.startErr
	d.artifact = &media.Artifact{
		ObjectKey:  "attempts/" + attemptID + ".wav",
		URL:        "https://storage.local/attempts/" + attemptID + ".wav",
		Bytes:      64000,
		SampleRate: 16000,
		Format:     "wav",
	}
	f.devices[attemptID] = d
	return d
}

func (f *fakeDeviceFactory) device(attemptID string) *fakeDevice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.devices[attemptID]
}

type fakeStreamFactory struct {
	mu       sync.Mutex
	streams  []*fakeStream
	startErr error
}

func (f *fakeStreamFactory) NewStream(_ string) assemblyai.Stream {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := newFakeStream()
	s.startErr = f.startErr
	f.streams = append(f.streams, s)
	return s
}

func (f *fakeStreamFactory) last() *fakeStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.streams) == 0 {
		return nil
	}
	return f.streams[len(f.streams)-1]
}

type fakeEngine struct {
	mu     sync.Mutex
	inputs []submission.SubmitAnswerInput
	result *submission.SubmissionResult
}

func (f *fakeEngine) Submit(_ context.Context, input submission.SubmitAnswerInput) *submission.SubmissionResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	if f.result != nil {
		return f.result
	}
	return &submission.SubmissionResult{
		Outcome:     submission.OutcomeSuccess,
		AnswerField: "answer_text",
		ShapesTried: 1,
	}
}

func (f *fakeEngine) submitted() []submission.SubmitAnswerInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]submission.SubmitAnswerInput, len(f.inputs))
	copy(out, f.inputs)
	return out
}

type recordedPatch struct {
	collection string
	id         string
	patch      tablestore.Record
}

type fakeTablestore struct {
	mu      sync.Mutex
	patches []recordedPatch
}

func (f *fakeTablestore) List(_ context.Context, _ string, _ map[string]string, _ int) ([]tablestore.Record, error) {
	return nil, nil
}

func (f *fakeTablestore) Create(_ context.Context, _ string, rec tablestore.Record) (tablestore.Record, error) {
	return rec, nil
}

func (f *fakeTablestore) Update(_ context.Context, collection string, id string, patch tablestore.Record) (tablestore.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, recordedPatch{collection: collection, id: id, patch: patch})
	return patch, nil
}

func (f *fakeTablestore) recorded() []recordedPatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedPatch, len(f.patches))
	copy(out, f.patches)
	return out
}

type fakeRooms struct {
	mu        sync.Mutex
	created   []string
	deleted   []string
	egresses  []string
	createErr error
	tokenErr  error
	recordErr error
}

func (f *fakeRooms) CreateInterviewRoom(_ context.Context, roomName string, _ uuid.UUID) (*livekit.RoomInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, roomName)
	return &livekit.RoomInfo{Name: roomName, SID: "RM_fake"}, nil
}

func (f *fakeRooms) DeleteRoom(_ context.Context, roomName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, roomName)
	return nil
}

func (f *fakeRooms) CandidateToken(roomName string, _ uuid.UUID, _ string) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "candidate-token-" + roomName, nil
}

func (f *fakeRooms) ObserverToken(_, _, _ string) (string, error) {
	return "observer-token", nil
}

func (f *fakeRooms) StartSessionRecording(_ context.Context, roomName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return "", f.recordErr
	}
	egressID := "EG_" + roomName
	f.egresses = append(f.egresses, egressID)
	return egressID, nil
}

func (f *fakeRooms) StopSessionRecording(_ context.Context, _ string) error {
	return nil
}

func (f *fakeRooms) URL() string {
	return "wss://livekit.local"
}

func (f *fakeRooms) deletedRooms() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.deleted))
	copy(out, f.deleted)
	return out
}

type fakeRecordingLog struct {
	mu   sync.Mutex
	rows []*entities.SessionRecording
}

func (f *fakeRecordingLog) Create(_ context.Context, rec *entities.SessionRecording) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, rec)
	return nil
}

type backfillJob struct {
	attemptID uuid.UUID
	sessionID uuid.UUID
	audioURL  string
}

type fakeBackfill struct {
	mu   sync.Mutex
	jobs []backfillJob
}

func (f *fakeBackfill) Enqueue(_ context.Context, attemptID, sessionID uuid.UUID, audioURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, backfillJob{attemptID: attemptID, sessionID: sessionID, audioURL: audioURL})
	return nil
}

func (f *fakeBackfill) queued() []backfillJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]backfillJob, len(f.jobs))
	copy(out, f.jobs)
	return out
}

// --- test environment ---

type captureEnv struct {
	clk        *clock.Mock
	tokens     *jwt.Manager
	sessions   *fakeSessionRepo
	attempts   *fakeAttemptRepo
	invites    *fakeInviteRepo
	interviews *fakeInterviewRepo
	applicants *fakeApplicantRepo
	recordings *fakeRecordingLog
	devices    *fakeDeviceFactory
	streams    *fakeStreamFactory
	engine     *fakeEngine
	store      *fakeTablestore
	rooms      *fakeRooms
	live       *cache.LiveStore
	backfill   *fakeBackfill
	cfg        *config.Config

	interview *entities.Interview
	applicant *entities.Applicant
	token     string

	svc *CaptureService
}

func newCaptureEnv(t *testing.T) *captureEnv {
	t.Helper()

	interview := entities.NewInterview("Backend Engineer Screen", "answers")
	interview.Activate()
	q0 := entities.NewInterviewQuestion(interview.ID, 0, "Tell me about a production incident you debugged.")
	q1 := entities.NewInterviewQuestion(interview.ID, 1, "How do you decide what to test first?")
	interview.Questions = []entities.InterviewQuestion{*q0, *q1}

	applicant := entities.NewApplicant("Ada Quinn", "ada@example.com")

	tokens := jwt.NewManager("invite-secret", "session-secret", time.Hour, time.Hour)
	inviteToken, jti, err := tokens.GenerateInviteToken(applicant.ID, interview.ID)
	require.NoError(t, err)
	hash, err := tokens.HashToken(inviteToken)
	require.NoError(t, err)
	invite := entities.NewInterviewInvite(interview.ID, applicant.ID, jti, hash, time.Now().Add(time.Hour))

	env := &captureEnv{
		clk:        clock.NewMock(),
		tokens:     tokens,
		sessions:   newFakeSessionRepo(),
		attempts:   newFakeAttemptRepo(),
		invites:    newFakeInviteRepo(),
		interviews: newFakeInterviewRepo(),
		applicants: newFakeApplicantRepo(),
		recordings: &fakeRecordingLog{},
		devices:    newFakeDeviceFactory(),
		streams:    &fakeStreamFactory{},
		engine:     &fakeEngine{},
		store:      &fakeTablestore{},
		rooms:      &fakeRooms{},
		live:       cache.NewLiveStore(cache.NewMemoryStore(), nil),
		backfill:   &fakeBackfill{},
		cfg: &config.Config{
			Capture: config.CaptureConfig{
				TimeLimitSeconds: 300,
				WarningFraction:  0.8,
				DebounceSeconds:  2,
				DebounceChars:    50,
				MinAssessChars:   20,
				SampleRate:       16000,
			},
			Tablestore: config.TablestoreConfig{
				AnswersCollection:    "answers",
				ApplicantsCollection: "applicants",
			},
		},
		interview: interview,
		applicant: applicant,
		token:     inviteToken,
	}
	env.interviews.rows[interview.ID] = interview
	env.applicants.rows[applicant.ID] = applicant
	env.invites.rows[invite.TokenID] = invite

	env.svc = env.newService()
	return env
}

// newService builds a service over the env's stores. Tests use a second
// instance to simulate another process sharing the same backends.
func (env *captureEnv) newService() *CaptureService {
	var rooms livekit.Client
	if env.rooms != nil {
		rooms = env.rooms
	}
	var store tablestore.Client
	if env.store != nil {
		store = env.store
	}
	var backfill BackfillQueue
	if env.backfill != nil {
		backfill = env.backfill
	}
	var recordings RecordingLog
	if env.recordings != nil {
		recordings = env.recordings
	}

	return NewCaptureService(
		env.sessions,
		env.attempts,
		env.invites,
		env.interviews,
		env.applicants,
		recordings,
		env.tokens,
		env.devices,
		env.streams,
		authenticity.NewScorer(),
		env.engine,
		store,
		rooms,
		env.live,
		backfill,
		env.cfg,
		env.clk,
		nil,
	)
}

func (env *captureEnv) begin(t *testing.T) *BeginSessionOutput {
	t.Helper()
	out, err := env.svc.BeginSession(context.Background(), BeginSessionInput{Token: env.token})
	require.NoError(t, err)
	return out
}

func waitEvent(t *testing.T, ch <-chan CaptureEvent, pred func(CaptureEvent) bool) CaptureEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatal("event channel closed while waiting")
				return CaptureEvent{}
			}
			if pred(ev) {
				return ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for capture event")
			return CaptureEvent{}
		}
	}
}

func waitChannelClosed(t *testing.T, ch <-chan CaptureEvent) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event channel was not closed")
			return
		}
	}
}

func attemptUpdateWithText(text string) func(CaptureEvent) bool {
	return func(ev CaptureEvent) bool {
		return ev.Kind == EventAttemptUpdate && ev.Snapshot != nil && ev.Snapshot.FinalizedText == text
	}
}

// --- tests ---

func TestCaptureService_FullInterviewFlow(t *testing.T) {
	env := newCaptureEnv(t)
	ctx := context.Background()

	out := env.begin(t)
	session := out.Session
	require.NotNil(t, session)
	assert.Equal(t, entities.SessionStageWelcome, session.Stage)
	assert.Equal(t, 2, session.QuestionCount)

	// The invite burned on first use.
	claims, err := env.tokens.ValidateSessionToken(out.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, session.ID, claims.SessionID)
	_, err = env.svc.BeginSession(ctx, BeginSessionInput{Token: env.token})
	assert.ErrorIs(t, err, usecaseErrors.ErrInviteConsumed)

	// Room provisioned alongside the session.
	require.NotNil(t, out.Room)
	assert.Equal(t, "interview-"+session.ID.String(), out.Room.Name)
	assert.Equal(t, "wss://livekit.local", out.Room.URL)
	assert.NotEmpty(t, out.Room.Token)
	require.NotNil(t, session.RoomName)
	require.Len(t, env.recordings.rows, 1)
	require.NotNil(t, env.recordings.rows[0].LivekitEgressID)

	listenerID, events := env.svc.AttachListener(session.ID)
	defer env.svc.DetachListener(session.ID, listenerID)

	// Welcome -> first question.
	view, err := env.svc.Advance(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.SessionStageQuestion, view.Session.Stage)
	assert.Equal(t, 0, view.Session.QuestionIndex)
	require.NotNil(t, view.Question)
	assert.Equal(t, 0, view.Question.Position)
	assert.Nil(t, view.Attempt)
	waitEvent(t, events, func(ev CaptureEvent) bool {
		return ev.Kind == EventSessionState && ev.Stage == entities.SessionStageQuestion
	})

	// Answer the first question.
	snap, err := env.svc.StartAnswer(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, StateRecording, snap.State)
	assert.False(t, snap.Degraded)
	firstAttemptID := snap.AttemptID

	require.NoError(t, env.svc.ForwardAudio(ctx, session.ID, []byte{0, 1}))
	device := env.devices.device(firstAttemptID.String())
	require.NotNil(t, device)
	assert.Equal(t, 1, device.frameCount())

	answer := "Um so I think I checked the logs first and uh basically found the bug in the cache layer."
	env.streams.last().emitFinal(answer)
	waitEvent(t, events, attemptUpdateWithText(answer))

	result, err := env.svc.StopAnswer(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StopReasonManual, result.Reason)
	assert.Equal(t, answer, result.FinalizedText)
	require.True(t, result.Assessment.Assessed)
	assert.Equal(t, authenticity.VerdictHuman, result.Assessment.Verdict)
	assert.LessOrEqual(t, result.Assessment.Score, 40)

	// The stop-time value copy is on the row.
	row, err := env.attempts.FindByID(ctx, firstAttemptID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.True(t, row.IsStopped())
	require.NotNil(t, row.TranscriptText)
	assert.Equal(t, answer, *row.TranscriptText)
	assert.Equal(t, entities.TranscriptSourceLive, row.TranscriptSource)
	require.NotNil(t, row.AuthenticityVerdict)
	assert.Equal(t, "human", *row.AuthenticityVerdict)
	require.NotNil(t, row.ArtifactObjectKey)
	assert.Equal(t, "attempts/"+firstAttemptID.String()+".wav", *row.ArtifactObjectKey)

	// Stopping again replays the same result instead of failing.
	again, err := env.svc.StopAnswer(ctx, session.ID)
	require.NoError(t, err)
	assert.Same(t, result, again)
	assert.Equal(t, 1, env.attempts.updateCount(firstAttemptID))

	// First question -> second question, answer submitted on the way.
	view, err = env.svc.Advance(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Session.QuestionIndex)
	require.NotNil(t, view.Question)
	assert.Equal(t, 1, view.Question.Position)

	submitted := env.engine.submitted()
	require.Len(t, submitted, 1)
	assert.Equal(t, answer, submitted[0].AnswerText)
	assert.Equal(t, env.interview.Questions[0].ID, submitted[0].QuestionID)
	assert.Equal(t, env.applicant.ID, submitted[0].ApplicantID)
	require.NotNil(t, submitted[0].AttemptID)
	assert.Equal(t, firstAttemptID, *submitted[0].AttemptID)

	// Answer the second question.
	snap, err = env.svc.StartAnswer(ctx, session.ID)
	require.NoError(t, err)
	secondAnswer := "Honestly I start with the riskiest path and um write a quick regression test."
	env.streams.last().emitFinal(secondAnswer)
	waitEvent(t, events, attemptUpdateWithText(secondAnswer))

	_, err = env.svc.StopAnswer(ctx, session.ID)
	require.NoError(t, err)

	// Second question -> thank-you.
	view, err = env.svc.Advance(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.SessionStageThankYou, view.Session.Stage)
	assert.True(t, view.Session.IsCompleted())
	assert.Nil(t, view.Question)

	submitted = env.engine.submitted()
	require.Len(t, submitted, 2)
	assert.Equal(t, secondAnswer, submitted[1].AnswerText)
	assert.Equal(t, env.interview.Questions[1].ID, submitted[1].QuestionID)

	// Completion patched the applicant row and tore the room down.
	patches := env.store.recorded()
	require.Len(t, patches, 1)
	assert.Equal(t, "applicants", patches[0].collection)
	assert.Equal(t, env.applicant.ID.String(), patches[0].id)
	assert.Equal(t, "completed", patches[0].patch["interview_status"])
	assert.Equal(t, []string{"interview-" + session.ID.String()}, env.rooms.deletedRooms())

	// Listener closed, runtime gone, session refuses further work.
	waitChannelClosed(t, events)
	_, err = env.svc.Advance(ctx, session.ID)
	assert.ErrorIs(t, err, usecaseErrors.ErrSessionCompleted)
	_, err = env.svc.StartAnswer(ctx, session.ID)
	assert.ErrorIs(t, err, usecaseErrors.ErrSessionCompleted)
	_, err = env.svc.StopAnswer(ctx, session.ID)
	assert.ErrorIs(t, err, usecaseErrors.ErrControllerNotRecording)

	// No degraded attempts, so nothing queued for backfill.
	assert.Empty(t, env.backfill.queued())
}

func TestCaptureService_DegradedCaptureNeverBlocksProgress(t *testing.T) {
	env := newCaptureEnv(t)
	env.streams.startErr = usecaseErrors.ErrTranscriptionUnavailable
	ctx := context.Background()

	session := env.begin(t).Session
	_, err := env.svc.Advance(ctx, session.ID)
	require.NoError(t, err)

	snap, err := env.svc.StartAnswer(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, snap.Degraded)
	attemptID := snap.AttemptID

	require.NoError(t, env.svc.ForwardAudio(ctx, session.ID, []byte{1, 2, 3}))

	result, err := env.svc.StopAnswer(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Empty(t, result.FinalizedText)
	assert.False(t, result.Assessment.Assessed)

	// No transcript on the row, but the audio artifact is queued for
	// asynchronous transcription.
	row, err := env.attempts.FindByID(ctx, attemptID)
	require.NoError(t, err)
	assert.True(t, row.Degraded)
	assert.Nil(t, row.TranscriptText)
	assert.Equal(t, entities.TranscriptSourceNone, row.TranscriptSource)
	assert.False(t, row.Assessed)
	require.NotNil(t, row.ArtifactURL)

	jobs := env.backfill.queued()
	require.Len(t, jobs, 1)
	assert.Equal(t, attemptID, jobs[0].attemptID)
	assert.Equal(t, session.ID, jobs[0].sessionID)
	assert.Equal(t, *row.ArtifactURL, jobs[0].audioURL)

	// The empty answer still goes to the submission engine; the flow moves on.
	view, err := env.svc.Advance(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Session.QuestionIndex)

	submitted := env.engine.submitted()
	require.Len(t, submitted, 1)
	assert.Empty(t, submitted[0].AnswerText)
}

func TestCaptureService_AutoStopFinalizesExactlyOnce(t *testing.T) {
	env := newCaptureEnv(t)
	limit := 5
	env.interview.Questions[0].TimeLimit = &limit
	ctx := context.Background()

	session := env.begin(t).Session
	listenerID, events := env.svc.AttachListener(session.ID)
	defer env.svc.DetachListener(session.ID, listenerID)

	_, err := env.svc.Advance(ctx, session.ID)
	require.NoError(t, err)

	snap, err := env.svc.StartAnswer(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.TimeLimitSeconds, "question override beats the capture default")
	attemptID := snap.AttemptID

	answer := "um I was paged for the uh checkout latency spike."
	env.streams.last().emitFinal(answer)
	waitEvent(t, events, attemptUpdateWithText(answer))

	for i := 1; i <= 3; i++ {
		env.clk.Add(time.Second)
		waitEvent(t, events, func(ev CaptureEvent) bool {
			return ev.Kind == EventAttemptUpdate && ev.Snapshot != nil && ev.Snapshot.ElapsedSeconds == i
		})
	}

	env.clk.Add(time.Second)
	warn := waitEvent(t, events, func(ev CaptureEvent) bool { return ev.Kind == EventWarning })
	require.NotNil(t, warn.Snapshot)
	assert.Equal(t, 4, warn.Snapshot.ElapsedSeconds)

	env.clk.Add(time.Second)
	stop := waitEvent(t, events, func(ev CaptureEvent) bool { return ev.Kind == EventAutoStop })
	require.NotNil(t, stop.Result)
	assert.Equal(t, entities.StopReasonTimeout, stop.Result.Reason)
	assert.Equal(t, 5, stop.Result.ElapsedSeconds)
	assert.True(t, stop.Result.WarningIssued)

	// The hard stop already persisted the value copy.
	row, err := env.attempts.FindByID(ctx, attemptID)
	require.NoError(t, err)
	assert.True(t, row.IsStopped())
	require.NotNil(t, row.StopReason)
	assert.Equal(t, entities.StopReasonTimeout, *row.StopReason)
	require.NotNil(t, row.DurationSeconds)
	assert.Equal(t, 5, *row.DurationSeconds)
	require.NotNil(t, row.TranscriptText)
	assert.Equal(t, answer, *row.TranscriptText)
	assert.Equal(t, 1, env.attempts.updateCount(attemptID))

	// A manual stop arriving after the timeout replays the same outcome
	// without touching the row again.
	replay, err := env.svc.StopAnswer(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StopReasonTimeout, replay.Reason)
	assert.Equal(t, 1, env.attempts.updateCount(attemptID))

	// Advance accepts the timed-out attempt like any stopped one.
	view, err := env.svc.Advance(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Session.QuestionIndex)
}

func TestCaptureService_BeginSessionRejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, env *captureEnv) string
		wantErr error
	}{
		{
			name: "garbage token",
			setup: func(_ *testing.T, _ *captureEnv) string {
				return "not-a-jwt"
			},
			wantErr: usecaseErrors.ErrTokenInvalid,
		},
		{
			name: "expired token",
			setup: func(t *testing.T, env *captureEnv) string {
				expired := jwt.NewManager("invite-secret", "session-secret", -time.Minute, time.Hour)
				token, _, err := expired.GenerateInviteToken(env.applicant.ID, env.interview.ID)
				require.NoError(t, err)
				return token
			},
			wantErr: usecaseErrors.ErrTokenExpired,
		},
		{
			name: "token without invite row",
			setup: func(t *testing.T, env *captureEnv) string {
				token, _, err := env.tokens.GenerateInviteToken(env.applicant.ID, env.interview.ID)
				require.NoError(t, err)
				return token
			},
			wantErr: usecaseErrors.ErrTokenInvalid,
		},
		{
			name: "hash mismatch",
			setup: func(_ *testing.T, env *captureEnv) string {
				for _, inv := range env.invites.rows {
					inv.TokenHash = "0000000000000000000000000000000000000000000000000000000000000000"
				}
				return env.token
			},
			wantErr: usecaseErrors.ErrTokenInvalid,
		},
		{
			name: "consumed invite",
			setup: func(_ *testing.T, env *captureEnv) string {
				for _, inv := range env.invites.rows {
					inv.Consume(uuid.New())
				}
				return env.token
			},
			wantErr: usecaseErrors.ErrInviteConsumed,
		},
		{
			name: "expired invite row",
			setup: func(_ *testing.T, env *captureEnv) string {
				for _, inv := range env.invites.rows {
					inv.ExpiresAt = time.Now().Add(-time.Minute)
				}
				return env.token
			},
			wantErr: usecaseErrors.ErrTokenExpired,
		},
		{
			name: "interview missing",
			setup: func(_ *testing.T, env *captureEnv) string {
				delete(env.interviews.rows, env.interview.ID)
				return env.token
			},
			wantErr: usecaseErrors.ErrInterviewNotFound,
		},
		{
			name: "interview not active",
			setup: func(_ *testing.T, env *captureEnv) string {
				env.interview.Status = entities.InterviewStatusDraft
				return env.token
			},
			wantErr: usecaseErrors.ErrInterviewNotActive,
		},
		{
			name: "interview without questions",
			setup: func(_ *testing.T, env *captureEnv) string {
				env.interview.Questions = nil
				return env.token
			},
			wantErr: usecaseErrors.ErrQuestionNotFound,
		},
		{
			name: "applicant missing",
			setup: func(_ *testing.T, env *captureEnv) string {
				delete(env.applicants.rows, env.applicant.ID)
				return env.token
			},
			wantErr: usecaseErrors.ErrApplicantNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCaptureEnv(t)
			token := tt.setup(t, env)

			_, err := env.svc.BeginSession(context.Background(), BeginSessionInput{Token: token})
			assert.ErrorIs(t, err, tt.wantErr)

			// A rejected exchange must not burn an unconsumed invite.
			if !errors.Is(tt.wantErr, usecaseErrors.ErrInviteConsumed) {
				for _, inv := range env.invites.rows {
					if inv.TokenHash != "0000000000000000000000000000000000000000000000000000000000000000" {
						assert.Nil(t, inv.SessionID)
					}
				}
			}
		})
	}
}

func TestCaptureService_RoomFailureIsNotFatal(t *testing.T) {
	env := newCaptureEnv(t)
	env.rooms.createErr = errors.New("livekit down")
	ctx := context.Background()

	out := env.begin(t)
	assert.Nil(t, out.Room)
	assert.Nil(t, out.Session.RoomName)
	assert.Empty(t, env.recordings.rows)

	// The interview proceeds roomless.
	view, err := env.svc.Advance(ctx, out.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.SessionStageQuestion, view.Session.Stage)
}

func TestCaptureService_RecordingEgressFailureKeepsRoom(t *testing.T) {
	env := newCaptureEnv(t)
	env.rooms.recordErr = errors.New("egress unavailable")

	out := env.begin(t)
	require.NotNil(t, out.Room)
	require.NotNil(t, out.Session.RoomName)
	assert.Empty(t, env.recordings.rows, "no recording row without an egress")
}

func TestCaptureService_AdvanceGuards(t *testing.T) {
	env := newCaptureEnv(t)
	ctx := context.Background()

	session := env.begin(t).Session
	_, err := env.svc.Advance(ctx, session.ID)
	require.NoError(t, err)
	q0 := env.interview.Questions[0]

	// No attempt yet.
	_, err = env.svc.Advance(ctx, session.ID)
	assert.ErrorIs(t, err, usecaseErrors.ErrAttemptNotStopped)

	// Attempt still recording.
	_, err = env.svc.StartAnswer(ctx, session.ID)
	require.NoError(t, err)
	_, err = env.svc.Advance(ctx, session.ID)
	assert.ErrorIs(t, err, usecaseErrors.ErrAttemptNotStopped)
	_, err = env.svc.StopAnswer(ctx, session.ID)
	require.NoError(t, err)

	// A stopped retry without an artifact blocks until the audio is safe.
	orphan := entities.NewRecordingAttempt(session.ID, q0.ID, false)
	orphan.MarkAsStopped(entities.StopReasonManual, 12)
	require.NoError(t, env.attempts.Create(ctx, orphan))
	_, err = env.svc.Advance(ctx, session.ID)
	assert.ErrorIs(t, err, usecaseErrors.ErrRecordingArtifactMissing)

	orphan.AttachArtifact("attempts/orphan.wav", "https://storage.local/attempts/orphan.wav", 1024)
	view, err := env.svc.Advance(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Session.QuestionIndex)
}

func TestCaptureService_StartAnswerGuards(t *testing.T) {
	env := newCaptureEnv(t)
	ctx := context.Background()

	_, err := env.svc.StartAnswer(ctx, uuid.New())
	assert.ErrorIs(t, err, usecaseErrors.ErrSessionNotFound)

	session := env.begin(t).Session
	_, err = env.svc.StartAnswer(ctx, session.ID)
	assert.ErrorIs(t, err, usecaseErrors.ErrNotOnQuestion, "welcome stage records nothing")

	_, err = env.svc.Advance(ctx, session.ID)
	require.NoError(t, err)
	_, err = env.svc.StartAnswer(ctx, session.ID)
	require.NoError(t, err)

	_, err = env.svc.StartAnswer(ctx, session.ID)
	assert.ErrorIs(t, err, usecaseErrors.ErrAttemptInFlight)

	_, err = env.svc.StopAnswer(ctx, session.ID)
	require.NoError(t, err)

	// After a stop the candidate may record a fresh take.
	snap, err := env.svc.StartAnswer(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, StateRecording, snap.State)
}

func TestCaptureService_LiveSnapshotSurvivesRestart(t *testing.T) {
	env := newCaptureEnv(t)
	ctx := context.Background()

	session := env.begin(t).Session
	listenerID, events := env.svc.AttachListener(session.ID)
	defer env.svc.DetachListener(session.ID, listenerID)

	_, err := env.svc.Advance(ctx, session.ID)
	require.NoError(t, err)
	_, err = env.svc.StartAnswer(ctx, session.ID)
	require.NoError(t, err)

	text := "I bisected the release commits."
	env.streams.last().emitFinal(text)
	waitEvent(t, events, attemptUpdateWithText(text))

	// Hot path: the runtime knows the live attempt.
	snap, err := env.svc.Live(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID.String(), snap.SessionID)
	assert.Equal(t, text, snap.Text)
	assert.Equal(t, "recording", snap.State)

	// Cold path: a second instance with no runtime derives the attempt from
	// the rows and reads the same snapshot.
	other := env.newService()
	snap2, err := other.Live(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.AttemptID, snap2.AttemptID)
	assert.Equal(t, text, snap2.Text)

	_, err = env.svc.StopAnswer(ctx, session.ID)
	require.NoError(t, err)

	// After the stop the snapshot reflects the final state.
	snap3, err := env.svc.Live(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "stopped", snap3.State)
}

func TestCaptureService_LiveUnknownSession(t *testing.T) {
	env := newCaptureEnv(t)

	_, err := env.svc.Live(context.Background(), uuid.New())
	assert.ErrorIs(t, err, usecaseErrors.ErrSessionNotFound)

	session := env.begin(t).Session
	_, err = env.svc.Live(context.Background(), session.ID)
	assert.ErrorIs(t, err, usecaseErrors.ErrNotFound, "welcome stage has no live attempt")
}
