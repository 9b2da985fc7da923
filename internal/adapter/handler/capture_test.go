package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/cache"
	"github.com/hireflowdev/interview-assistant/internal/usecase/authenticity"
	captureUsecase "github.com/hireflowdev/interview-assistant/internal/usecase/capture"
	usecaseErrors "github.com/hireflowdev/interview-assistant/internal/usecase/errors"
	pkgvalidator "github.com/hireflowdev/interview-assistant/pkg/validator"
)

// fakeCaptureService satisfies captureUsecase.Service with injectable
// behavior per method; unset methods return zero values.
type fakeCaptureService struct {
	beginFn   func(ctx context.Context, input captureUsecase.BeginSessionInput) (*captureUsecase.BeginSessionOutput, error)
	getFn     func(ctx context.Context, sessionID uuid.UUID) (*captureUsecase.SessionView, error)
	advanceFn func(ctx context.Context, sessionID uuid.UUID) (*captureUsecase.SessionView, error)
	startFn   func(ctx context.Context, sessionID uuid.UUID) (*captureUsecase.Snapshot, error)
	stopFn    func(ctx context.Context, sessionID uuid.UUID) (*captureUsecase.StopResult, error)
	liveFn    func(ctx context.Context, sessionID uuid.UUID) (*cache.LiveSnapshot, error)
}

func (f *fakeCaptureService) BeginSession(ctx context.Context, input captureUsecase.BeginSessionInput) (*captureUsecase.BeginSessionOutput, error) {
	if f.beginFn == nil {
		return nil, nil
	}
	return f.beginFn(ctx, input)
}

func (f *fakeCaptureService) GetSession(ctx context.Context, sessionID uuid.UUID) (*captureUsecase.SessionView, error) {
	if f.getFn == nil {
		return nil, nil
	}
	return f.getFn(ctx, sessionID)
}

func (f *fakeCaptureService) Advance(ctx context.Context, sessionID uuid.UUID) (*captureUsecase.SessionView, error) {
	if f.advanceFn == nil {
		return nil, nil
	}
	return f.advanceFn(ctx, sessionID)
}

func (f *fakeCaptureService) StartAnswer(ctx context.Context, sessionID uuid.UUID) (*captureUsecase.Snapshot, error) {
	if f.startFn == nil {
		return nil, nil
	}
	return f.startFn(ctx, sessionID)
}

func (f *fakeCaptureService) StopAnswer(ctx context.Context, sessionID uuid.UUID) (*captureUsecase.StopResult, error) {
	if f.stopFn == nil {
		return nil, nil
	}
	return f.stopFn(ctx, sessionID)
}

func (f *fakeCaptureService) ForwardAudio(context.Context, uuid.UUID, []byte) error {
	return nil
}

func (f *fakeCaptureService) Live(ctx context.Context, sessionID uuid.UUID) (*cache.LiveSnapshot, error) {
	if f.liveFn == nil {
		return nil, nil
	}
	return f.liveFn(ctx, sessionID)
}

func (f *fakeCaptureService) AttachListener(uuid.UUID) (uuid.UUID, <-chan captureUsecase.CaptureEvent) {
	ch := make(chan captureUsecase.CaptureEvent)
	close(ch)
	return uuid.New(), ch
}

func (f *fakeCaptureService) DetachListener(uuid.UUID, uuid.UUID) {}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = pkgvalidator.New()
	return e
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestBeginSession_ReturnsSessionAndToken(t *testing.T) {
	interview := entities.NewInterview("Backend Screen", "answers")
	session := entities.NewInterviewSession(interview.ID, uuid.New(), 3)

	svc := &fakeCaptureService{
		beginFn: func(_ context.Context, input captureUsecase.BeginSessionInput) (*captureUsecase.BeginSessionOutput, error) {
			assert.Equal(t, "invite-jwt", input.Token)
			return &captureUsecase.BeginSessionOutput{
				Session:      session,
				Interview:    interview,
				SessionToken: "session-jwt",
				Room:         &captureUsecase.RoomAccess{Name: "interview-x", URL: "ws://lk", Token: "room-jwt"},
			}, nil
		},
	}
	h := NewCaptureHandler(svc, 300)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/v1/capture/begin", strings.NewReader(`{"token":"invite-jwt"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.BeginSession(e.NewContext(req, rec)))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "session-jwt", body["session_token"])
	sess := body["session"].(map[string]interface{})
	assert.Equal(t, session.ID.String(), sess["id"])
	assert.Equal(t, "welcome", sess["stage"])
	room := body["room"].(map[string]interface{})
	assert.Equal(t, "room-jwt", room["token"])
}

func TestBeginSession_MissingTokenFailsValidation(t *testing.T) {
	h := NewCaptureHandler(&fakeCaptureService{}, 300)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/v1/capture/begin", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.BeginSession(e.NewContext(req, rec)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", decodeBody(t, rec)["error"])
}

func TestBeginSession_InvalidTokenMapsTo401(t *testing.T) {
	svc := &fakeCaptureService{
		beginFn: func(context.Context, captureUsecase.BeginSessionInput) (*captureUsecase.BeginSessionOutput, error) {
			return nil, usecaseErrors.ErrTokenInvalid
		},
	}
	h := NewCaptureHandler(svc, 300)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/v1/capture/begin", strings.NewReader(`{"token":"bad"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.BeginSession(e.NewContext(req, rec)))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_invite_token", decodeBody(t, rec)["error"])
}

func TestBeginSession_ConsumedInviteMapsTo409(t *testing.T) {
	svc := &fakeCaptureService{
		beginFn: func(context.Context, captureUsecase.BeginSessionInput) (*captureUsecase.BeginSessionOutput, error) {
			return nil, usecaseErrors.ErrInviteConsumed
		},
	}
	h := NewCaptureHandler(svc, 300)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/v1/capture/begin", strings.NewReader(`{"token":"used"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.BeginSession(e.NewContext(req, rec)))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invite_consumed", decodeBody(t, rec)["error"])
}

func TestGetSession_RejectsMalformedID(t *testing.T) {
	h := NewCaptureHandler(&fakeCaptureService{}, 300)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/capture/sessions/:id")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	require.NoError(t, h.GetSession(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_session_id", decodeBody(t, rec)["error"])
}

func TestGetSession_NotFoundMapsTo404(t *testing.T) {
	svc := &fakeCaptureService{
		getFn: func(context.Context, uuid.UUID) (*captureUsecase.SessionView, error) {
			return nil, usecaseErrors.ErrSessionNotFound
		},
	}
	h := NewCaptureHandler(svc, 300)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/capture/sessions/:id")
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	require.NoError(t, h.GetSession(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "session_not_found", decodeBody(t, rec)["error"])
}

func TestGetSession_IncludesQuestionWithPerQuestionLimit(t *testing.T) {
	interviewID := uuid.New()
	session := entities.NewInterviewSession(interviewID, uuid.New(), 2)
	session.BeginQuestions()
	question := entities.NewInterviewQuestion(interviewID, 0, "Tell me about a project")
	limit := 120
	question.TimeLimit = &limit

	svc := &fakeCaptureService{
		getFn: func(_ context.Context, sessionID uuid.UUID) (*captureUsecase.SessionView, error) {
			assert.Equal(t, session.ID, sessionID)
			return &captureUsecase.SessionView{Session: session, Question: question}, nil
		},
	}
	h := NewCaptureHandler(svc, 300)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/capture/sessions/:id")
	c.SetParamNames("id")
	c.SetParamValues(session.ID.String())

	require.NoError(t, h.GetSession(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	q := body["question"].(map[string]interface{})
	assert.Equal(t, "Tell me about a project", q["prompt"])
	assert.Equal(t, float64(120), q["time_limit_seconds"])
	sess := body["session"].(map[string]interface{})
	assert.Equal(t, "question", sess["stage"])
}

func TestAdvance_OpenAttemptMapsTo409(t *testing.T) {
	svc := &fakeCaptureService{
		advanceFn: func(context.Context, uuid.UUID) (*captureUsecase.SessionView, error) {
			return nil, usecaseErrors.ErrAttemptNotStopped
		},
	}
	h := NewCaptureHandler(svc, 300)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/capture/sessions/:id/advance")
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	require.NoError(t, h.Advance(c))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "attempt_not_stopped", decodeBody(t, rec)["error"])
}

func TestAdvance_ReturnsNextState(t *testing.T) {
	interviewID := uuid.New()
	session := entities.NewInterviewSession(interviewID, uuid.New(), 2)
	session.BeginQuestions()
	session.NextQuestion()
	question := entities.NewInterviewQuestion(interviewID, 1, "Describe an incident")

	svc := &fakeCaptureService{
		advanceFn: func(context.Context, uuid.UUID) (*captureUsecase.SessionView, error) {
			return &captureUsecase.SessionView{Session: session, Question: question}, nil
		},
	}
	h := NewCaptureHandler(svc, 300)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/capture/sessions/:id/advance")
	c.SetParamNames("id")
	c.SetParamValues(session.ID.String())

	require.NoError(t, h.Advance(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	sess := body["session"].(map[string]interface{})
	assert.Equal(t, float64(1), sess["question_index"])
	q := body["question"].(map[string]interface{})
	assert.Equal(t, float64(300), q["time_limit_seconds"])
}

func TestStartAnswer_ReturnsSnapshot(t *testing.T) {
	attemptID := uuid.New()
	svc := &fakeCaptureService{
		startFn: func(context.Context, uuid.UUID) (*captureUsecase.Snapshot, error) {
			return &captureUsecase.Snapshot{
				AttemptID:        attemptID,
				State:            captureUsecase.StateRecording,
				TimeLimitSeconds: 300,
				Assessment:       authenticity.Assessment{Verdict: authenticity.VerdictUncertain},
			}, nil
		},
	}
	h := NewCaptureHandler(svc, 300)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/capture/sessions/:id/answer/start")
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	require.NoError(t, h.StartAnswer(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, attemptID.String(), body["attempt_id"])
	assert.Equal(t, "recording", body["state"])
}

func TestStartAnswer_InFlightAttemptMapsTo409(t *testing.T) {
	svc := &fakeCaptureService{
		startFn: func(context.Context, uuid.UUID) (*captureUsecase.Snapshot, error) {
			return nil, usecaseErrors.ErrAttemptInFlight
		},
	}
	h := NewCaptureHandler(svc, 300)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/capture/sessions/:id/answer/start")
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	require.NoError(t, h.StartAnswer(c))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "attempt_in_flight", decodeBody(t, rec)["error"])
}

func TestStartAnswer_DeviceFailureMapsTo503(t *testing.T) {
	svc := &fakeCaptureService{
		startFn: func(context.Context, uuid.UUID) (*captureUsecase.Snapshot, error) {
			return nil, usecaseErrors.ErrDeviceAcquisitionFailed
		},
	}
	h := NewCaptureHandler(svc, 300)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/capture/sessions/:id/answer/start")
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	require.NoError(t, h.StartAnswer(c))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "device_unavailable", decodeBody(t, rec)["error"])
}

func TestStopAnswer_ReturnsFinalResult(t *testing.T) {
	attemptID := uuid.New()
	svc := &fakeCaptureService{
		stopFn: func(context.Context, uuid.UUID) (*captureUsecase.StopResult, error) {
			return &captureUsecase.StopResult{
				AttemptID:      attemptID,
				Reason:         entities.StopReasonManual,
				ElapsedSeconds: 42,
				FinalizedText:  "I led the migration to the new queue.",
				Assessment:     authenticity.Assessment{Score: 12, Verdict: authenticity.VerdictHuman, Assessed: true},
			}, nil
		},
	}
	h := NewCaptureHandler(svc, 300)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/capture/sessions/:id/answer/stop")
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	require.NoError(t, h.StopAnswer(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "manual", body["reason"])
	assert.Equal(t, "I led the migration to the new queue.", body["finalized_text"])
	assessment := body["assessment"].(map[string]interface{})
	assert.Equal(t, "human", assessment["verdict"])
}

func TestStopAnswer_NoActiveAttemptMapsTo409(t *testing.T) {
	svc := &fakeCaptureService{
		stopFn: func(context.Context, uuid.UUID) (*captureUsecase.StopResult, error) {
			return nil, usecaseErrors.ErrControllerNotRecording
		},
	}
	h := NewCaptureHandler(svc, 300)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/capture/sessions/:id/answer/stop")
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	require.NoError(t, h.StopAnswer(c))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "no_active_attempt", decodeBody(t, rec)["error"])
}

func TestLive_MissingSnapshotMapsTo404(t *testing.T) {
	svc := &fakeCaptureService{
		liveFn: func(context.Context, uuid.UUID) (*cache.LiveSnapshot, error) {
			return nil, usecaseErrors.ErrNotFound
		},
	}
	h := NewCaptureHandler(svc, 300)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/capture/sessions/:id/live")
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	require.NoError(t, h.Live(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no_live_state", decodeBody(t, rec)["error"])
}
