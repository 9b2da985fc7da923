package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Storage    StorageConfig
	LiveKit    LiveKitConfig
	Capture    CaptureConfig
	Log        LogConfig
	AssemblyAI AssemblyAIConfig
	Tablestore TablestoreConfig
	Submission SubmissionConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	PublicBaseURL   string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds signing configuration for capture tokens.
// Invite tokens gate entry into a capture session; session tokens
// authorize follow-up calls for one session.
type JWTConfig struct {
	InviteSecret  string
	SessionSecret string
	InviteExpiry  time.Duration
	SessionExpiry time.Duration
}

// StorageConfig holds artifact storage configuration
type StorageConfig struct {
	Type            string // "minio" or "s3"
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	PublicURL       string
}

// LiveKitConfig holds interview room configuration
type LiveKitConfig struct {
	Host      string
	APIKey    string
	APISecret string
	UseMock   bool
}

// CaptureConfig holds recording session tunables
type CaptureConfig struct {
	TimeLimitSeconds int
	WarningFraction  float64
	DebounceSeconds  int
	DebounceChars    int
	MinAssessChars   int
	SampleRate       int
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Console    bool
}

// AssemblyAIConfig holds transcription provider configuration.
// An empty APIKey means live transcription is unavailable and capture
// runs in audio-only degraded mode.
type AssemblyAIConfig struct {
	APIKey         string `envconfig:"API_KEY"`
	BaseURL        string `envconfig:"BASE_URL" default:"https://api.assemblyai.com"`
	SampleRate     int    `envconfig:"SAMPLE_RATE" default:"16000"`
	WebhookSecret  string `envconfig:"WEBHOOK_SECRET"`
	WebhookBaseURL string `envconfig:"WEBHOOK_BASE_URL"`
	UseMock        bool   `envconfig:"USE_MOCK" default:"false"`
}

// TablestoreConfig holds the generic tabular backend configuration
type TablestoreConfig struct {
	BaseURL              string `envconfig:"BASE_URL"`
	APIToken             string `envconfig:"API_TOKEN"`
	AnswersCollection    string `envconfig:"ANSWERS_COLLECTION" default:"answers"`
	ApplicantsCollection string `envconfig:"APPLICANTS_COLLECTION" default:"applicants"`
	TimeoutSeconds       int    `envconfig:"TIMEOUT_SECONDS" default:"15"`
	MaxRetries           int    `envconfig:"MAX_RETRIES" default:"3"`
	UseMock              bool   `envconfig:"USE_MOCK" default:"false"`
}

// SubmissionConfig holds answer submission tunables.
// FieldPreference is the ordered list of column names tried for the
// answer text; deployments tune it without code changes.
type SubmissionConfig struct {
	FieldPreference []string      `envconfig:"FIELD_PREFERENCE" default:"answer,response,answer_text,text,content,transcript"`
	DiscoveryLimit  int           `envconfig:"DISCOVERY_LIMIT" default:"5"`
	SubmitTimeout   time.Duration `envconfig:"SUBMIT_TIMEOUT" default:"30s"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "interview_assistant"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", "redis_password"),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			InviteSecret:  getEnv("JWT_INVITE_SECRET", "your-invite-secret-change-in-production"),
			SessionSecret: getEnv("JWT_SESSION_SECRET", "your-session-secret-change-in-production"),
			InviteExpiry:  getEnvAsDuration("JWT_INVITE_EXPIRY", "168h"),
			SessionExpiry: getEnvAsDuration("JWT_SESSION_EXPIRY", "4h"),
		},
		Storage: StorageConfig{
			Type:            getEnv("STORAGE_TYPE", "minio"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "interview-artifacts"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
			PublicURL:       getEnv("STORAGE_PUBLIC_URL", ""),
		},
		LiveKit: LiveKitConfig{
			Host:      getEnv("LIVEKIT_HOST", "http://localhost:7880"),
			APIKey:    getEnv("LIVEKIT_API_KEY", ""),
			APISecret: getEnv("LIVEKIT_API_SECRET", ""),
			UseMock:   getEnvAsBool("LIVEKIT_USE_MOCK", true),
		},
		Capture: CaptureConfig{
			TimeLimitSeconds: getEnvAsInt("CAPTURE_TIME_LIMIT_SECONDS", 300),
			WarningFraction:  getEnvAsFloat("CAPTURE_WARNING_FRACTION", 0.8),
			DebounceSeconds:  getEnvAsInt("CAPTURE_DEBOUNCE_SECONDS", 2),
			DebounceChars:    getEnvAsInt("CAPTURE_DEBOUNCE_CHARS", 50),
			MinAssessChars:   getEnvAsInt("CAPTURE_MIN_ASSESS_CHARS", 20),
			SampleRate:       getEnvAsInt("CAPTURE_SAMPLE_RATE", 16000),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 28),
			Console:    getEnvAsBool("LOG_CONSOLE", true),
		},
	}

	// Newer integration sections are parsed with envconfig so lists and
	// durations come straight from struct tags.
	if err := envconfig.Process("ASSEMBLYAI", &config.AssemblyAI); err != nil {
		return nil, fmt.Errorf("failed to parse ASSEMBLYAI_* environment: %w", err)
	}
	if err := envconfig.Process("TABLESTORE", &config.Tablestore); err != nil {
		return nil, fmt.Errorf("failed to parse TABLESTORE_* environment: %w", err)
	}
	if err := envconfig.Process("SUBMISSION", &config.Submission); err != nil {
		return nil, fmt.Errorf("failed to parse SUBMISSION_* environment: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !c.Tablestore.UseMock && c.Tablestore.BaseURL == "" {
		return fmt.Errorf("TABLESTORE_BASE_URL is required unless TABLESTORE_USE_MOCK=true")
	}
	if c.Capture.TimeLimitSeconds <= 0 {
		return fmt.Errorf("CAPTURE_TIME_LIMIT_SECONDS must be positive")
	}
	if c.Capture.WarningFraction <= 0 || c.Capture.WarningFraction > 1 {
		return fmt.Errorf("CAPTURE_WARNING_FRACTION must be in (0, 1]")
	}
	if c.Capture.DebounceChars <= 0 {
		return fmt.Errorf("CAPTURE_DEBOUNCE_CHARS must be positive")
	}
	if len(c.Submission.FieldPreference) == 0 {
		return fmt.Errorf("SUBMISSION_FIELD_PREFERENCE must list at least one field name")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
