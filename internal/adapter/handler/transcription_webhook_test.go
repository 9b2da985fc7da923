package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	pkgai "github.com/hireflowdev/interview-assistant/pkg/ai"
)

// fakeTranscribeService satisfies transcribe.Service; only HandleWebhook is
// injectable because the handler never touches the rest.
type fakeTranscribeService struct {
	webhookFn func(ctx context.Context, payload []byte, authHeader string) error
}

func (f *fakeTranscribeService) Enqueue(context.Context, uuid.UUID, uuid.UUID, string) error {
	return nil
}

func (f *fakeTranscribeService) SubmitJob(context.Context, uuid.UUID) error { return nil }

func (f *fakeTranscribeService) HandleWebhook(ctx context.Context, payload []byte, authHeader string) error {
	if f.webhookFn == nil {
		return nil
	}
	return f.webhookFn(ctx, payload, authHeader)
}

func (f *fakeTranscribeService) JobForAttempt(context.Context, uuid.UUID) (*entities.TranscriptionJob, error) {
	return nil, nil
}

func (f *fakeTranscribeService) StartWorkerPool(context.Context, int) error { return nil }

func (f *fakeTranscribeService) StopWorkerPool() error { return nil }

func TestTranscriptionWebhook_ForwardsPayloadAndSecret(t *testing.T) {
	payload := `{"transcript_id":"aai-transcript-1","status":"completed"}`

	var gotPayload []byte
	var gotAuth string
	svc := &fakeTranscribeService{
		webhookFn: func(_ context.Context, body []byte, authHeader string) error {
			gotPayload = body
			gotAuth = authHeader
			return nil
		},
	}
	h := NewTranscriptionWebhookHandler(svc, zap.NewNop())

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/transcription", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(pkgai.WebhookAuthHeaderName, "hook-secret")
	rec := httptest.NewRecorder()

	require.NoError(t, h.HandleTranscriptionWebhook(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, payload, string(gotPayload))
	assert.Equal(t, "hook-secret", gotAuth)

	body := decodeBody(t, rec)
	assert.Equal(t, "OK", body["code"])
	assert.Equal(t, "ok", body["data"].(map[string]interface{})["status"])
}

func TestTranscriptionWebhook_ProcessingErrorMapsTo500(t *testing.T) {
	svc := &fakeTranscribeService{
		webhookFn: func(_ context.Context, _ []byte, _ string) error {
			return fmt.Errorf("no job for transcript aai-transcript-9")
		},
	}
	h := NewTranscriptionWebhookHandler(svc, zap.NewNop())

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/transcription",
		strings.NewReader(`{"transcript_id":"aai-transcript-9","status":"error"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.HandleTranscriptionWebhook(e.NewContext(req, rec)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "PROCESSING_FAILED", body["code"])
	assert.Contains(t, body["info"], "no job for transcript")
}
