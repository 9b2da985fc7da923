package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/hireflowdev/interview-assistant/pkg/config"
	pkgmw "github.com/hireflowdev/interview-assistant/pkg/middleware"
)

// Router holds all handlers
type Router struct {
	cfg                  *config.Config
	captureHandler       *Capture
	streamHandler        *Stream
	interviewHandler     *Interview
	artifactsHandler     *Artifacts
	transcriptionWebhook *TranscriptionWebhookHandler
	livekitWebhook       *LiveKitWebhookHandler
	captureTokenMW       echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	captureHandler *Capture,
	streamHandler *Stream,
	interviewHandler *Interview,
	artifactsHandler *Artifacts,
	transcriptionWebhook *TranscriptionWebhookHandler,
	livekitWebhook *LiveKitWebhookHandler,
	captureTokenMW echo.MiddlewareFunc,
) *Router {
	return &Router{
		cfg:                  cfg,
		captureHandler:       captureHandler,
		streamHandler:        streamHandler,
		interviewHandler:     interviewHandler,
		artifactsHandler:     artifactsHandler,
		transcriptionWebhook: transcriptionWebhook,
		livekitWebhook:       livekitWebhook,
		captureTokenMW:       captureTokenMW,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// Swagger UI; docs are generated with swag init
	if !rt.cfg.IsProduction() {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// API v1 group
	v1 := e.Group("/v1")

	// Setup route groups
	rt.setupCaptureRoutes(v1)
	rt.setupInterviewRoutes(v1)
	rt.setupStorageRoutes(v1)
	rt.setupWebhookRoutes(v1)
}

// setupCaptureRoutes configures the applicant-facing capture routes. Begin is
// public and exchanges an invite token for a session; everything under
// /capture/sessions runs behind the session token it returns.
func (rt *Router) setupCaptureRoutes(g *echo.Group) {
	captureGroup := g.Group("/capture")

	if rt.captureHandler == nil {
		captureGroup.POST("/begin", rt.notImplemented)
		return
	}

	captureGroup.POST("/begin", rt.captureHandler.BeginSession)

	sessionGroup := captureGroup.Group("/sessions")
	if rt.captureTokenMW != nil {
		sessionGroup.Use(rt.captureTokenMW)
	}
	sessionGroup.Use(pkgmw.RequireSessionOwnership())

	sessionGroup.GET("/:id", rt.captureHandler.GetSession)
	sessionGroup.POST("/:id/advance", rt.captureHandler.Advance)
	sessionGroup.POST("/:id/answer/start", rt.captureHandler.StartAnswer)
	sessionGroup.POST("/:id/answer/stop", rt.captureHandler.StopAnswer)
	sessionGroup.GET("/:id/live", rt.captureHandler.Live)

	if rt.streamHandler != nil {
		sessionGroup.GET("/:id/stream", rt.streamHandler.Serve)
	}
}

// setupInterviewRoutes configures the operator-facing interview routes
func (rt *Router) setupInterviewRoutes(g *echo.Group) {
	interviewGroup := g.Group("/interviews")
	sessionGroup := g.Group("/sessions")

	if rt.interviewHandler != nil {
		interviewGroup.POST("", rt.interviewHandler.CreateInterview)
		interviewGroup.GET("", rt.interviewHandler.ListInterviews)
		interviewGroup.GET("/:id", rt.interviewHandler.GetInterview)
		interviewGroup.POST("/:id/activate", rt.interviewHandler.ActivateInterview)
		interviewGroup.POST("/:id/questions", rt.interviewHandler.AddQuestion)
		interviewGroup.POST("/:id/invites", rt.interviewHandler.CreateInvite)
		interviewGroup.GET("/:id/sessions", rt.interviewHandler.ListSessions)

		sessionGroup.GET("/:id/attempts", rt.interviewHandler.ListAttempts)
		sessionGroup.GET("/:id/recordings", rt.interviewHandler.ListRecordings)
	} else {
		// Placeholder routes when handler is not initialized
		interviewGroup.POST("", rt.notImplemented)
		interviewGroup.GET("", rt.notImplemented)
		interviewGroup.GET("/:id", rt.notImplemented)
		interviewGroup.POST("/:id/activate", rt.notImplemented)
		interviewGroup.POST("/:id/questions", rt.notImplemented)
		interviewGroup.POST("/:id/invites", rt.notImplemented)
		interviewGroup.GET("/:id/sessions", rt.notImplemented)
		sessionGroup.GET("/:id/attempts", rt.notImplemented)
		sessionGroup.GET("/:id/recordings", rt.notImplemented)
	}
}

// setupStorageRoutes configures artifact store routes
func (rt *Router) setupStorageRoutes(g *echo.Group) {
	storageGroup := g.Group("/storage")

	if rt.artifactsHandler != nil {
		storageGroup.GET("/artifacts", rt.artifactsHandler.ListArtifacts)
		storageGroup.GET("/artifacts/url", rt.artifactsHandler.ArtifactURL)
		storageGroup.POST("/verify", rt.artifactsHandler.VerifyStorage)
	}
}

// setupWebhookRoutes configures provider callback routes
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	webhookGroup := g.Group("/webhooks")

	if rt.transcriptionWebhook != nil {
		webhookGroup.POST("/transcription", rt.transcriptionWebhook.HandleTranscriptionWebhook)
	}
	if rt.livekitWebhook != nil {
		webhookGroup.POST("/livekit", rt.livekitWebhook.HandleLiveKitWebhook)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in main.go",
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
