package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/hireflowdev/interview-assistant/pkg/validator"

	"github.com/hireflowdev/interview-assistant/internal/adapter/handler"
	"github.com/hireflowdev/interview-assistant/internal/adapter/repository"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/cache"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/database"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/external/assemblyai"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/external/livekit"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/external/tablestore"
	httpmw "github.com/hireflowdev/interview-assistant/internal/infrastructure/http/middleware"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/media"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/storage"
	"github.com/hireflowdev/interview-assistant/internal/usecase/authenticity"
	"github.com/hireflowdev/interview-assistant/internal/usecase/capture"
	"github.com/hireflowdev/interview-assistant/internal/usecase/interview"
	"github.com/hireflowdev/interview-assistant/internal/usecase/submission"
	"github.com/hireflowdev/interview-assistant/internal/usecase/transcribe"
	pkgai "github.com/hireflowdev/interview-assistant/pkg/ai"
	"github.com/hireflowdev/interview-assistant/pkg/config"
	"github.com/hireflowdev/interview-assistant/pkg/jwt"
	pkglogger "github.com/hireflowdev/interview-assistant/pkg/logger"
)

// @title           Interview Assistant API
// @version         1.0
// @description     API for capturing structured interview answers with live transcription, authenticity assessment, and adaptive answer submission
// @termsOfService  https://api.hireflow.dev/terms

// @contact.name   API Support
// @contact.url    https://api.hireflow.dev/support
// @contact.email  support@hireflow.dev

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      api.hireflow.dev
// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the capture session token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	// Initialize structured logger
	logger, err := pkglogger.New(cfg.Log, cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run migrations only when explicitly enabled in config.
	// Production deployments should manage schema via scripts/migrate.go.
	if cfg.Database.AutoMigrate {
		if cfg.IsProduction() {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE and run scripts/migrate.go instead.")
		}
		log.Println("🔄 Applying sql-migrate migrations (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping startup migrations; use scripts/migrate.go in CI/CD/production")
	}

	// Initialize the live snapshot store. Redis is preferred so multiple
	// API replicas see the same snapshots; a missing Redis falls back to
	// an in-process store good enough for a single instance.
	log.Println("📦 Connecting to Redis...")
	var kv cache.Store
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Printf("⚠️  Redis unavailable, using in-memory live store: %v", err)
		kv = cache.NewMemoryStore()
	} else {
		defer redisClient.Close()
		kv = cache.NewRedisStore(redisClient, logger)
	}
	liveStore := cache.NewLiveStore(kv, logger)

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	interviewRepo := repository.NewInterviewRepository(db)
	applicantRepo := repository.NewApplicantRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	sessionRepo := repository.NewCaptureSessionRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	jobRepo := repository.NewTranscriptionJobRepository(db)
	recordingRepo := repository.NewSessionRecordingRepository(db)

	// Initialize artifact storage
	log.Println("🗄️  Initializing artifact storage...")
	artifactStore, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize artifact storage: %v", err)
	}

	// Initialize external clients
	log.Println("🎥 Initializing LiveKit client...")
	livekitClient := livekit.NewClient(&cfg.LiveKit, &cfg.Storage)
	if cfg.LiveKit.UseMock {
		log.Println("⚠️  LiveKit running in MOCK mode (no real server needed)")
	} else {
		log.Printf("✅ LiveKit connected to: %s", cfg.LiveKit.Host)
	}

	log.Println("🗂️  Initializing tablestore client...")
	tablestoreClient := tablestore.NewClient(&cfg.Tablestore, logger)

	log.Println("🎙️  Initializing transcription components...")
	asmClient := pkgai.NewAssemblyAIClient(&cfg.AssemblyAI)
	streamFactory := assemblyai.NewStreamFactory(&cfg.AssemblyAI, logger)
	if cfg.AssemblyAI.APIKey == "" && !cfg.AssemblyAI.UseMock {
		log.Println("⚠️  AssemblyAI API key missing; capture runs in degraded audio-only mode")
	}

	// Initialize JWT manager
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(
		cfg.JWT.InviteSecret,
		cfg.JWT.SessionSecret,
		cfg.JWT.InviteExpiry,
		cfg.JWT.SessionExpiry,
	)

	// Initialize usecase services
	log.Println("🧮 Initializing authenticity scorer...")
	scorer := authenticity.NewScorer()

	log.Println("📤 Initializing submission engine...")
	engine := submission.NewEngine(tablestoreClient, submissionRepo, &cfg.Tablestore, &cfg.Submission, logger)

	log.Println("🔁 Initializing backfill transcription service...")
	transcribeService := transcribe.NewService(jobRepo, attemptRepo, scorer, asmClient, artifactStore, cfg, logger)
	if err := transcribeService.StartWorkerPool(context.Background(), 2); err != nil {
		log.Fatalf("Failed to start transcription workers: %v", err)
	}

	log.Println("🎬 Initializing capture service...")
	deviceFactory := media.NewWavDeviceFactory(artifactStore, cfg.Capture.SampleRate, logger)
	captureService := capture.NewCaptureService(
		sessionRepo,
		attemptRepo,
		inviteRepo,
		interviewRepo,
		applicantRepo,
		recordingRepo,
		jwtManager,
		deviceFactory,
		streamFactory,
		scorer,
		engine,
		tablestoreClient,
		livekitClient,
		liveStore,
		transcribeService,
		cfg,
		nil,
		logger,
	)

	log.Println("📋 Initializing interview service...")
	interviewService := interview.NewService(
		interviewRepo,
		applicantRepo,
		inviteRepo,
		sessionRepo,
		attemptRepo,
		submissionRepo,
		transcribeService,
		recordingRepo,
		jwtManager,
		logger,
	)

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	captureHandler := handler.NewCaptureHandler(captureService, cfg.Capture.TimeLimitSeconds)
	streamHandler := handler.NewStreamHandler(captureService, logger)
	interviewHandler := handler.NewInterviewHandler(interviewService)
	transcriptionWebhook := handler.NewTranscriptionWebhookHandler(transcribeService, logger)
	livekitWebhook := handler.NewLiveKitWebhookHandler(recordingRepo, cfg.LiveKit.APIKey, cfg.LiveKit.APISecret, logger)

	artifactsHandler, err := handler.NewArtifactsHandler(cfg, logger)
	if err != nil {
		log.Printf("⚠️  Artifact endpoints disabled: %v", err)
		artifactsHandler = nil
	}

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")

	captureTokenMW := httpmw.EchoCaptureToken(jwtManager)

	router := handler.NewRouter(cfg, captureHandler, streamHandler, interviewHandler, artifactsHandler, transcriptionWebhook, livekitWebhook, captureTokenMW)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	if err := transcribeService.StopWorkerPool(); err != nil {
		log.Printf("⚠️  Worker pool shutdown: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
