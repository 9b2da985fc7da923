package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	"github.com/livekit/protocol/webhook"
	"go.uber.org/zap"

	"github.com/hireflowdev/interview-assistant/internal/adapter/repository"
)

// LiveKitWebhookHandler handles room and egress events from the LiveKit server
type LiveKitWebhookHandler struct {
	recordingRepo *repository.SessionRecordingRepository
	apiKey        string
	apiSecret     string
	logger        *zap.Logger
}

// NewLiveKitWebhookHandler creates a new webhook handler
func NewLiveKitWebhookHandler(recordingRepo *repository.SessionRecordingRepository, apiKey, apiSecret string, logger *zap.Logger) *LiveKitWebhookHandler {
	return &LiveKitWebhookHandler{
		recordingRepo: recordingRepo,
		apiKey:        apiKey,
		apiSecret:     apiSecret,
		logger:        logger,
	}
}

// HandleLiveKitWebhook receives webhook events from LiveKit
// @Summary      LiveKit webhook
// @Description  Receives room and egress events from the LiveKit server with JWT signature validation
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Router       /webhooks/livekit [post]
func (h *LiveKitWebhookHandler) HandleLiveKitWebhook(c echo.Context) error {
	bodyBytes, err := io.ReadAll(c.Request().Body)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to read webhook body", zap.Error(err))
		}
		return c.JSON(400, map[string]interface{}{"error": "failed to read body"})
	}
	// ReceiveWebhookEvent consumes the body, so restore it first
	c.Request().Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	event, err := h.parseEvent(c, bodyBytes)
	if err != nil {
		return c.JSON(400, map[string]interface{}{"error": "invalid webhook format"})
	}

	if h.logger != nil {
		h.logger.Info("🔔 LiveKit webhook event", zap.String("event", event.Event))
	}

	switch event.Event {
	case "egress_updated", "egress_ended":
		return h.handleEgressEvent(c, bodyBytes)
	case "room_finished":
		// Session completion is driven by the capture flow, not room
		// lifecycle; the recording row resolves on egress_ended.
		if h.logger != nil && event.Room != nil {
			h.logger.Info("🏁 Room finished", zap.String("room_name", event.Room.Name))
		}
	default:
		if h.logger != nil {
			h.logger.Debug("unhandled webhook event", zap.String("event", event.Event))
		}
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ok"})
}

// parseEvent validates the webhook signature when an Authorization header is
// present, falling back to plain JSON parsing for unsigned local deployments.
func (h *LiveKitWebhookHandler) parseEvent(c echo.Context, bodyBytes []byte) (*livekit.WebhookEvent, error) {
	authHeader := c.Request().Header.Get("Authorization")

	if authHeader != "" {
		provider := auth.NewSimpleKeyProvider(h.apiKey, h.apiSecret)
		event, err := webhook.ReceiveWebhookEvent(c.Request(), provider)
		if err == nil {
			return event, nil
		}
		if h.logger != nil {
			h.logger.Warn("⚠️ Webhook signature validation failed, parsing without validation",
				zap.Error(err),
			)
		}
	} else if h.logger != nil {
		h.logger.Warn("⚠️ Webhook has no authorization header, parsing without validation")
	}

	var event livekit.WebhookEvent
	if err := json.Unmarshal(bodyBytes, &event); err != nil {
		if h.logger != nil {
			h.logger.Error("failed to parse webhook JSON", zap.Error(err))
		}
		return nil, err
	}
	return &event, nil
}

// handleEgressEvent resolves the session recording row a room egress belongs
// to and advances its status. Egress payloads are parsed from the raw JSON
// because protojson enum and int64 encodings vary across LiveKit versions.
func (h *LiveKitWebhookHandler) handleEgressEvent(c echo.Context, rawBody []byte) error {
	ctx := c.Request().Context()

	var rawEvent map[string]interface{}
	if err := json.Unmarshal(rawBody, &rawEvent); err != nil {
		if h.logger != nil {
			h.logger.Error("failed to parse egress webhook JSON", zap.Error(err))
		}
		return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ok", "error": "invalid JSON"})
	}

	egressInfo := mapField(rawEvent, "egress_info", "egressInfo")
	if egressInfo == nil {
		if h.logger != nil {
			h.logger.Warn("⚠️ egress_info missing in webhook")
		}
		return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ok", "error": "egress_info missing"})
	}

	egressID := stringField(egressInfo, "egress_id", "egressId")
	if egressID == "" {
		if h.logger != nil {
			h.logger.Warn("⚠️ egress id missing in webhook")
		}
		return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ok"})
	}

	recording, err := h.recordingRepo.FindByEgressID(ctx, egressID)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to load recording for egress",
				zap.String("egress_id", egressID),
				zap.Error(err),
			)
		}
		return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ok"})
	}
	if recording == nil {
		if h.logger != nil {
			h.logger.Warn("⚠️ No recording row for egress", zap.String("egress_id", egressID))
		}
		return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ok"})
	}

	status := stringField(egressInfo, "status")

	switch {
	case strings.Contains(status, "FAILED"), strings.Contains(status, "ABORTED"):
		errMsg := stringField(egressInfo, "error")
		if errMsg == "" {
			errMsg = "egress " + strings.ToLower(status)
		}
		recording.MarkAsFailed(errMsg)
		if err := h.recordingRepo.Update(ctx, recording); err != nil && h.logger != nil {
			h.logger.Error("failed to update recording", zap.Error(err))
		}
		if h.logger != nil {
			h.logger.Warn("❌ Session recording failed",
				zap.String("recording_id", recording.ID.String()),
				zap.String("egress_id", egressID),
				zap.String("error", errMsg),
			)
		}

	case strings.Contains(status, "ENDING"):
		recording.MarkAsProcessing()
		if err := h.recordingRepo.Update(ctx, recording); err != nil && h.logger != nil {
			h.logger.Error("failed to update recording", zap.Error(err))
		}

	default:
		location, objectKey, size, durationSec := egressFileResult(egressInfo)
		if location == "" {
			// egress_updated fires mid-recording without file results
			if h.logger != nil {
				h.logger.Debug("egress event without file result",
					zap.String("egress_id", egressID),
					zap.String("status", status),
				)
			}
			return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ok"})
		}

		recording.MarkAsCompleted(location, objectKey, size, durationSec)
		if err := h.recordingRepo.Update(ctx, recording); err != nil {
			if h.logger != nil {
				h.logger.Error("failed to update recording", zap.Error(err))
			}
			return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ok"})
		}
		if h.logger != nil {
			h.logger.Info("✅ Session recording stored",
				zap.String("recording_id", recording.ID.String()),
				zap.String("egress_id", egressID),
				zap.String("object_key", objectKey),
				zap.Int64("size", size),
				zap.Int("duration_seconds", durationSec),
			)
		}
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ok", "event": "egress"})
}

// egressFileResult extracts the stored file's location, object key, size, and
// duration from an egress info payload. It checks the single file field first
// and then the file_results list.
func egressFileResult(egressInfo map[string]interface{}) (string, string, int64, int) {
	candidates := make([]map[string]interface{}, 0, 4)
	if file := mapField(egressInfo, "file"); file != nil {
		candidates = append(candidates, file)
	}
	for _, key := range []string{"file_results", "fileResults"} {
		results, ok := egressInfo[key].([]interface{})
		if !ok {
			continue
		}
		for _, result := range results {
			if m, ok := result.(map[string]interface{}); ok {
				candidates = append(candidates, m)
			}
		}
	}

	for _, file := range candidates {
		location := strings.TrimSpace(stringField(file, "location"))
		if location == "" {
			continue
		}

		objectKey := stringField(file, "filename")
		if objectKey == "" {
			if idx := strings.LastIndex(location, "/"); idx >= 0 && idx+1 < len(location) {
				objectKey = location[idx+1:]
			} else {
				objectKey = location
			}
		}

		size := int64Field(file, "size")
		durationSec := int(int64Field(file, "duration") / int64(time.Second))
		return location, objectKey, size, durationSec
	}

	return "", "", 0, 0
}

// mapField returns the first matching key holding a JSON object.
func mapField(m map[string]interface{}, keys ...string) map[string]interface{} {
	for _, key := range keys {
		if val, ok := m[key].(map[string]interface{}); ok {
			return val
		}
	}
	return nil
}

// stringField returns the first matching key holding a string.
func stringField(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if val, ok := m[key].(string); ok {
			return val
		}
	}
	return ""
}

// int64Field reads a numeric field that protojson may encode as either a
// JSON number or a quoted int64.
func int64Field(m map[string]interface{}, keys ...string) int64 {
	for _, key := range keys {
		switch val := m[key].(type) {
		case float64:
			return int64(val)
		case string:
			if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
				return parsed
			}
		}
	}
	return 0
}
