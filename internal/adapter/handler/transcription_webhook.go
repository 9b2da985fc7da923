package handler

import (
	"io"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/hireflowdev/interview-assistant/errors"
	"github.com/hireflowdev/interview-assistant/internal/usecase/transcribe"
	pkgai "github.com/hireflowdev/interview-assistant/pkg/ai"
)

// TranscriptionWebhookHandler handles transcript status webhooks from AssemblyAI
type TranscriptionWebhookHandler struct {
	svc    transcribe.Service
	logger *zap.Logger
}

// NewTranscriptionWebhookHandler creates a new handler
func NewTranscriptionWebhookHandler(svc transcribe.Service, logger *zap.Logger) *TranscriptionWebhookHandler {
	return &TranscriptionWebhookHandler{svc: svc, logger: logger}
}

// HandleTranscriptionWebhook receives webhooks from AssemblyAI
// @Summary      Transcription webhook
// @Description  Receives transcript status callbacks from AssemblyAI for backfill jobs
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Router       /webhooks/transcription [post]
func (h *TranscriptionWebhookHandler) HandleTranscriptionWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	// AssemblyAI echoes back the auth header registered at submit time
	authHeader := c.Request().Header.Get(pkgai.WebhookAuthHeaderName)

	if err := h.svc.HandleWebhook(c.Request().Context(), body, authHeader); err != nil {
		if h.logger != nil {
			h.logger.Error("transcription webhook handler error", zap.Error(err))
		}
		return HandleError(h.logger, c, errors.ErrProcessingFailed(err))
	}
	return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ok"})
}
