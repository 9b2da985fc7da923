package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	capturedto "github.com/hireflowdev/interview-assistant/internal/adapter/dto/capture"
	"github.com/hireflowdev/interview-assistant/internal/adapter/presenter"
	captureUsecase "github.com/hireflowdev/interview-assistant/internal/usecase/capture"
	usecaseErrors "github.com/hireflowdev/interview-assistant/internal/usecase/errors"
)

// Capture handles the applicant-facing capture flow
type Capture struct {
	captureService   captureUsecase.Service
	defaultTimeLimit int
}

// NewCaptureHandler creates a new capture handler
func NewCaptureHandler(captureService captureUsecase.Service, defaultTimeLimitSeconds int) *Capture {
	return &Capture{
		captureService:   captureService,
		defaultTimeLimit: defaultTimeLimitSeconds,
	}
}

// BeginSession handles POST /capture/begin
// @Summary      Begin a capture session
// @Description  Exchanges a one-time invite token for a capture session and a session token
// @Tags         Capture
// @Accept       json
// @Produce      json
// @Param        request  body      capture.BeginSessionRequest  true  "Invite token"
// @Success      201      {object}  capture.BeginSessionResponse  "Session created"
// @Failure      400      {object}  map[string]interface{}  "Invalid request or validation failed"
// @Failure      401      {object}  map[string]interface{}  "Invite token invalid or expired"
// @Failure      409      {object}  map[string]interface{}  "Invite already consumed or interview not active"
// @Failure      500      {object}  map[string]interface{}  "Failed to begin session"
// @Router       /capture/begin [post]
func (h *Capture) BeginSession(c echo.Context) error {
	var req capturedto.BeginSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": err.Error(),
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "validation_failed",
			"message": err.Error(),
		})
	}

	input := captureUsecase.BeginSessionInput{Token: req.Token}

	output, err := h.captureService.BeginSession(c.Request().Context(), input)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := "failed_to_begin_session"

		switch {
		case errors.Is(err, usecaseErrors.ErrTokenInvalid):
			statusCode = http.StatusUnauthorized
			errorCode = "invalid_invite_token"
		case errors.Is(err, usecaseErrors.ErrTokenExpired):
			statusCode = http.StatusUnauthorized
			errorCode = "invite_token_expired"
		case errors.Is(err, usecaseErrors.ErrInviteConsumed):
			statusCode = http.StatusConflict
			errorCode = "invite_consumed"
		case errors.Is(err, usecaseErrors.ErrInterviewNotFound):
			statusCode = http.StatusNotFound
			errorCode = "interview_not_found"
		case errors.Is(err, usecaseErrors.ErrInterviewNotActive):
			statusCode = http.StatusConflict
			errorCode = "interview_not_active"
		case errors.Is(err, usecaseErrors.ErrQuestionNotFound):
			statusCode = http.StatusConflict
			errorCode = "interview_has_no_questions"
		case errors.Is(err, usecaseErrors.ErrApplicantNotFound):
			statusCode = http.StatusNotFound
			errorCode = "applicant_not_found"
		}

		return c.JSON(statusCode, map[string]interface{}{
			"error":   errorCode,
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, presenter.ToBeginSessionResponse(output))
}

// GetSession handles GET /capture/sessions/:id
// @Summary      Get session state
// @Description  Gets the session stage, current question, and latest attempt state
// @Tags         Capture
// @Produce      json
// @Security     SessionToken
// @Param        id   path      string  true  "Session ID (UUID)"
// @Success      200  {object}  capture.SessionStateResponse  "Session state"
// @Failure      400  {object}  map[string]interface{}  "Invalid session ID"
// @Failure      404  {object}  map[string]interface{}  "Session not found"
// @Router       /capture/sessions/{id} [get]
func (h *Capture) GetSession(c echo.Context) error {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_session_id",
			"message": "session ID must be a valid UUID",
		})
	}

	view, err := h.captureService.GetSession(c.Request().Context(), sessionID)
	if err != nil {
		if errors.Is(err, usecaseErrors.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error":   "session_not_found",
				"message": err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "failed_to_get_session",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, presenter.ToSessionStateResponse(view, h.defaultTimeLimit))
}

// Advance handles POST /capture/sessions/:id/advance
// @Summary      Advance the session
// @Description  Moves the session forward one stage; past a question it submits the stop-time answer first
// @Tags         Capture
// @Produce      json
// @Security     SessionToken
// @Param        id   path      string  true  "Session ID (UUID)"
// @Success      200  {object}  capture.SessionStateResponse  "Session state after advancing"
// @Failure      400  {object}  map[string]interface{}  "Invalid session ID"
// @Failure      404  {object}  map[string]interface{}  "Session not found"
// @Failure      409  {object}  map[string]interface{}  "Session completed or current attempt still open"
// @Failure      500  {object}  map[string]interface{}  "Failed to advance session"
// @Router       /capture/sessions/{id}/advance [post]
func (h *Capture) Advance(c echo.Context) error {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_session_id",
			"message": "session ID must be a valid UUID",
		})
	}

	view, err := h.captureService.Advance(c.Request().Context(), sessionID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := "failed_to_advance_session"

		switch {
		case errors.Is(err, usecaseErrors.ErrSessionNotFound):
			statusCode = http.StatusNotFound
			errorCode = "session_not_found"
		case errors.Is(err, usecaseErrors.ErrSessionCompleted):
			statusCode = http.StatusConflict
			errorCode = "session_completed"
		case errors.Is(err, usecaseErrors.ErrAttemptNotStopped):
			statusCode = http.StatusConflict
			errorCode = "attempt_not_stopped"
		case errors.Is(err, usecaseErrors.ErrRecordingArtifactMissing):
			statusCode = http.StatusConflict
			errorCode = "attempt_missing_artifact"
		case errors.Is(err, usecaseErrors.ErrQuestionNotFound):
			statusCode = http.StatusNotFound
			errorCode = "question_not_found"
		}

		return c.JSON(statusCode, map[string]interface{}{
			"error":   errorCode,
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, presenter.ToSessionStateResponse(view, h.defaultTimeLimit))
}

// StartAnswer handles POST /capture/sessions/:id/answer/start
// @Summary      Start recording an answer
// @Description  Begins a fresh recording attempt for the session's current question
// @Tags         Capture
// @Produce      json
// @Security     SessionToken
// @Param        id   path      string  true  "Session ID (UUID)"
// @Success      201  {object}  capture.AttemptSnapshotResponse  "Recording attempt started"
// @Failure      400  {object}  map[string]interface{}  "Invalid session ID"
// @Failure      404  {object}  map[string]interface{}  "Session not found"
// @Failure      409  {object}  map[string]interface{}  "Session not on a question or attempt already recording"
// @Failure      500  {object}  map[string]interface{}  "Recording failed to start"
// @Router       /capture/sessions/{id}/answer/start [post]
func (h *Capture) StartAnswer(c echo.Context) error {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_session_id",
			"message": "session ID must be a valid UUID",
		})
	}

	snapshot, err := h.captureService.StartAnswer(c.Request().Context(), sessionID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := "recording_start_failed"

		switch {
		case errors.Is(err, usecaseErrors.ErrSessionNotFound):
			statusCode = http.StatusNotFound
			errorCode = "session_not_found"
		case errors.Is(err, usecaseErrors.ErrSessionCompleted):
			statusCode = http.StatusConflict
			errorCode = "session_completed"
		case errors.Is(err, usecaseErrors.ErrNotOnQuestion):
			statusCode = http.StatusConflict
			errorCode = "not_on_question"
		case errors.Is(err, usecaseErrors.ErrAttemptInFlight):
			statusCode = http.StatusConflict
			errorCode = "attempt_in_flight"
		case errors.Is(err, usecaseErrors.ErrQuestionNotFound):
			statusCode = http.StatusNotFound
			errorCode = "question_not_found"
		case errors.Is(err, usecaseErrors.ErrDeviceAcquisitionFailed):
			statusCode = http.StatusServiceUnavailable
			errorCode = "device_unavailable"
		}

		return c.JSON(statusCode, map[string]interface{}{
			"error":   errorCode,
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, presenter.ToAttemptSnapshotResponse(snapshot))
}

// StopAnswer handles POST /capture/sessions/:id/answer/stop
// @Summary      Stop recording an answer
// @Description  Stops the live attempt and returns its final transcript, assessment, and artifact
// @Tags         Capture
// @Produce      json
// @Security     SessionToken
// @Param        id   path      string  true  "Session ID (UUID)"
// @Success      200  {object}  capture.StopAnswerResponse  "Final attempt result"
// @Failure      400  {object}  map[string]interface{}  "Invalid session ID"
// @Failure      404  {object}  map[string]interface{}  "Session not found"
// @Failure      409  {object}  map[string]interface{}  "No attempt is recording"
// @Failure      500  {object}  map[string]interface{}  "Failed to stop recording"
// @Router       /capture/sessions/{id}/answer/stop [post]
func (h *Capture) StopAnswer(c echo.Context) error {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_session_id",
			"message": "session ID must be a valid UUID",
		})
	}

	result, err := h.captureService.StopAnswer(c.Request().Context(), sessionID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := "failed_to_stop_recording"

		switch {
		case errors.Is(err, usecaseErrors.ErrSessionNotFound):
			statusCode = http.StatusNotFound
			errorCode = "session_not_found"
		case errors.Is(err, usecaseErrors.ErrControllerNotRecording):
			statusCode = http.StatusConflict
			errorCode = "no_active_attempt"
		}

		return c.JSON(statusCode, map[string]interface{}{
			"error":   errorCode,
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, presenter.ToStopAnswerResponse(result))
}

// Live handles GET /capture/sessions/:id/live
// @Summary      Get the live attempt snapshot
// @Description  Returns the cached read-model for the session's current attempt
// @Tags         Capture
// @Produce      json
// @Security     SessionToken
// @Param        id   path      string  true  "Session ID (UUID)"
// @Success      200  {object}  cache.LiveSnapshot  "Live attempt snapshot"
// @Failure      400  {object}  map[string]interface{}  "Invalid session ID"
// @Failure      404  {object}  map[string]interface{}  "No live state for this session"
// @Router       /capture/sessions/{id}/live [get]
func (h *Capture) Live(c echo.Context) error {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_session_id",
			"message": "session ID must be a valid UUID",
		})
	}

	snapshot, err := h.captureService.Live(c.Request().Context(), sessionID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := "failed_to_get_live_state"

		switch {
		case errors.Is(err, usecaseErrors.ErrSessionNotFound):
			statusCode = http.StatusNotFound
			errorCode = "session_not_found"
		case errors.Is(err, usecaseErrors.ErrNotFound):
			statusCode = http.StatusNotFound
			errorCode = "no_live_state"
		}

		return c.JSON(statusCode, map[string]interface{}{
			"error":   errorCode,
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, snapshot)
}
