package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	interviewdto "github.com/hireflowdev/interview-assistant/internal/adapter/dto/interview"
	"github.com/hireflowdev/interview-assistant/internal/adapter/presenter"
	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/domain/repositories"
	usecaseErrors "github.com/hireflowdev/interview-assistant/internal/usecase/errors"
	interviewUsecase "github.com/hireflowdev/interview-assistant/internal/usecase/interview"
)

// Interview handles operator-facing interview management requests
type Interview struct {
	interviewService interviewUsecase.Service
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(interviewService interviewUsecase.Service) *Interview {
	return &Interview{
		interviewService: interviewService,
	}
}

// CreateInterview handles POST /interviews
// @Summary      Create an interview
// @Description  Creates a draft interview bound to a tablestore answer table
// @Tags         Interviews
// @Accept       json
// @Produce      json
// @Param        request  body      interview.CreateInterviewRequest  true  "Interview creation request"
// @Success      201      {object}  interview.InterviewResponse  "Interview created"
// @Failure      400      {object}  map[string]interface{}  "Invalid request or validation failed"
// @Failure      500      {object}  map[string]interface{}  "Failed to create interview"
// @Router       /interviews [post]
func (h *Interview) CreateInterview(c echo.Context) error {
	var req interviewdto.CreateInterviewRequest
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

	input := interviewUsecase.CreateInterviewInput{
		Title:           req.Title,
		Description:     req.Description,
		TablestoreTable: req.TablestoreTable,
		Settings:        req.Settings,
	}

	interview, err := h.interviewService.CreateInterview(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, usecaseErrors.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error":   "invalid_request",
				"message": err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "failed_to_create_interview",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, presenter.ToInterviewResponse(interview))
}

// GetInterview handles GET /interviews/:id
// @Summary      Get interview details
// @Description  Gets an interview with its ordered questions
// @Tags         Interviews
// @Produce      json
// @Param        id   path      string  true  "Interview ID (UUID)"
// @Success      200  {object}  interview.InterviewResponse  "Interview details"
// @Failure      400  {object}  map[string]interface{}  "Invalid interview ID"
// @Failure      404  {object}  map[string]interface{}  "Interview not found"
// @Router       /interviews/{id} [get]
func (h *Interview) GetInterview(c echo.Context) error {
	interviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_interview_id",
			"message": "interview ID must be a valid UUID",
		})
	}

	interview, err := h.interviewService.GetInterview(c.Request().Context(), interviewID)
	if err != nil {
		if errors.Is(err, usecaseErrors.ErrInterviewNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error":   "interview_not_found",
				"message": err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "failed_to_get_interview",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, presenter.ToInterviewResponse(interview))
}

// ListInterviews handles GET /interviews
// @Summary      List interviews
// @Description  Gets a paginated list of interviews with optional filters
// @Tags         Interviews
// @Produce      json
// @Param        page       query     int     false  "Page number (default: 1)"
// @Param        page_size  query     int     false  "Items per page (default: 20)"
// @Param        status     query     string  false  "Status filter (draft/active/archived)"
// @Param        search     query     string  false  "Search in title and description"
// @Param        sort_by    query     string  false  "Sort field (created_at/title)"
// @Param        sort_order query     string  false  "Sort order (asc/desc)"
// @Success      200        {object}  interview.InterviewListResponse  "List of interviews"
// @Failure      400        {object}  map[string]interface{}  "Invalid request"
// @Failure      500        {object}  map[string]interface{}  "Failed to list interviews"
// @Router       /interviews [get]
func (h *Interview) ListInterviews(c echo.Context) error {
	var req interviewdto.ListInterviewsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": err.Error(),
		})
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	filters := repositories.InterviewFilters{
		Search:    req.Search,
		Limit:     req.PageSize,
		Offset:    (req.Page - 1) * req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.Status != nil {
		status := entities.InterviewStatus(*req.Status)
		filters.Status = &status
	}

	interviews, total, err := h.interviewService.ListInterviews(c.Request().Context(), filters)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "failed_to_list_interviews",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, presenter.ToInterviewListResponse(interviews, total, req.Page, req.PageSize))
}

// ActivateInterview handles POST /interviews/:id/activate
// @Summary      Activate an interview
// @Description  Opens an interview for capture sessions; requires at least one question
// @Tags         Interviews
// @Produce      json
// @Param        id   path      string  true  "Interview ID (UUID)"
// @Success      200  {object}  interview.InterviewResponse  "Interview activated"
// @Failure      400  {object}  map[string]interface{}  "Invalid interview ID"
// @Failure      404  {object}  map[string]interface{}  "Interview not found"
// @Failure      409  {object}  map[string]interface{}  "Interview has no questions"
// @Router       /interviews/{id}/activate [post]
func (h *Interview) ActivateInterview(c echo.Context) error {
	interviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_interview_id",
			"message": "interview ID must be a valid UUID",
		})
	}

	interview, err := h.interviewService.ActivateInterview(c.Request().Context(), interviewID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := "failed_to_activate_interview"

		switch {
		case errors.Is(err, usecaseErrors.ErrInterviewNotFound):
			statusCode = http.StatusNotFound
			errorCode = "interview_not_found"
		case errors.Is(err, usecaseErrors.ErrInterviewHasNoQuestions):
			statusCode = http.StatusConflict
			errorCode = "interview_has_no_questions"
		}

		return c.JSON(statusCode, map[string]interface{}{
			"error":   errorCode,
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, presenter.ToInterviewResponse(interview))
}

// AddQuestion handles POST /interviews/:id/questions
// @Summary      Add a question
// @Description  Appends a question to an interview; position follows arrival order
// @Tags         Interviews
// @Accept       json
// @Produce      json
// @Param        id       path      string  true  "Interview ID (UUID)"
// @Param        request  body      interview.AddQuestionRequest  true  "Question to append"
// @Success      201      {object}  interview.QuestionResponse  "Question added"
// @Failure      400      {object}  map[string]interface{}  "Invalid request or validation failed"
// @Failure      404      {object}  map[string]interface{}  "Interview not found"
// @Router       /interviews/{id}/questions [post]
func (h *Interview) AddQuestion(c echo.Context) error {
	interviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_interview_id",
			"message": "interview ID must be a valid UUID",
		})
	}

	var req interviewdto.AddQuestionRequest
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

	input := interviewUsecase.AddQuestionInput{
		InterviewID:      interviewID,
		Prompt:           req.Prompt,
		TimeLimitSeconds: req.TimeLimitSeconds,
	}

	question, err := h.interviewService.AddQuestion(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, usecaseErrors.ErrInterviewNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error":   "interview_not_found",
				"message": err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "failed_to_add_question",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, presenter.ToInterviewQuestionResponse(question))
}

// CreateInvite handles POST /interviews/:id/invites
// @Summary      Invite an applicant
// @Description  Issues a single-use invite token; the token appears only in this response
// @Tags         Interviews
// @Accept       json
// @Produce      json
// @Param        id       path      string  true  "Interview ID (UUID)"
// @Param        request  body      interview.CreateInviteRequest  true  "Applicant to invite"
// @Success      201      {object}  interview.InviteResponse  "Invite issued"
// @Failure      400      {object}  map[string]interface{}  "Invalid request or validation failed"
// @Failure      404      {object}  map[string]interface{}  "Interview not found"
// @Router       /interviews/{id}/invites [post]
func (h *Interview) CreateInvite(c echo.Context) error {
	interviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_interview_id",
			"message": "interview ID must be a valid UUID",
		})
	}

	var req interviewdto.CreateInviteRequest
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

	input := interviewUsecase.CreateInviteInput{
		InterviewID:    interviewID,
		ApplicantName:  req.ApplicantName,
		ApplicantEmail: req.ApplicantEmail,
		ExternalRef:    req.ExternalRef,
	}

	output, err := h.interviewService.CreateInvite(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, usecaseErrors.ErrInterviewNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error":   "interview_not_found",
				"message": err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "failed_to_create_invite",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, presenter.ToInviteResponse(output.Invite, output.Applicant, output.Token))
}

// ListSessions handles GET /interviews/:id/sessions
// @Summary      List capture sessions
// @Description  Gets a paginated list of an interview's capture sessions
// @Tags         Interviews
// @Produce      json
// @Param        id         path      string  true   "Interview ID (UUID)"
// @Param        page       query     int     false  "Page number (default: 1)"
// @Param        page_size  query     int     false  "Items per page (default: 20)"
// @Success      200        {object}  interview.SessionListResponse  "List of sessions"
// @Failure      400        {object}  map[string]interface{}  "Invalid interview ID"
// @Failure      404        {object}  map[string]interface{}  "Interview not found"
// @Router       /interviews/{id}/sessions [get]
func (h *Interview) ListSessions(c echo.Context) error {
	interviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_interview_id",
			"message": "interview ID must be a valid UUID",
		})
	}

	var req interviewdto.ListSessionsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": err.Error(),
		})
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	sessions, total, err := h.interviewService.ListSessions(c.Request().Context(), interviewID,
		req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		if errors.Is(err, usecaseErrors.ErrInterviewNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error":   "interview_not_found",
				"message": err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "failed_to_list_sessions",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, presenter.ToSessionListResponse(sessions, total, req.Page, req.PageSize))
}

// ListAttempts handles GET /sessions/:id/attempts
// @Summary      List session attempts
// @Description  Gets a session's recording attempts with assessments, submission telemetry, and backfill state
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID (UUID)"
// @Success      200  {object}  interview.AttemptListResponse  "List of attempts"
// @Failure      400  {object}  map[string]interface{}  "Invalid session ID"
// @Failure      404  {object}  map[string]interface{}  "Session not found"
// @Router       /sessions/{id}/attempts [get]
func (h *Interview) ListAttempts(c echo.Context) error {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_session_id",
			"message": "session ID must be a valid UUID",
		})
	}

	details, err := h.interviewService.ListAttempts(c.Request().Context(), sessionID)
	if err != nil {
		if errors.Is(err, usecaseErrors.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error":   "session_not_found",
				"message": err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "failed_to_list_attempts",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, presenter.ToAttemptListResponse(details))
}

// ListRecordings handles GET /sessions/:id/recordings
// @Summary      List session recordings
// @Description  Gets the room recordings captured for a session
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID (UUID)"
// @Success      200  {array}   interview.RecordingResponse  "List of recordings"
// @Failure      400  {object}  map[string]interface{}  "Invalid session ID"
// @Failure      404  {object}  map[string]interface{}  "Session not found"
// @Router       /sessions/{id}/recordings [get]
func (h *Interview) ListRecordings(c echo.Context) error {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_session_id",
			"message": "session ID must be a valid UUID",
		})
	}

	recordings, err := h.interviewService.ListRecordings(c.Request().Context(), sessionID)
	if err != nil {
		if errors.Is(err, usecaseErrors.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error":   "session_not_found",
				"message": err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "failed_to_list_recordings",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, presenter.ToRecordingListResponse(recordings))
}
