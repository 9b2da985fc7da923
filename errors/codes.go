package errors

// ErrorCode identifies an error class across API responses and logs.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// General codes
const (
	ErrorCode_INTERNAL          ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT  ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_NOT_FOUND         ErrorCode = "NOT_FOUND"
	ErrorCode_ALREADY_EXISTS    ErrorCode = "ALREADY_EXISTS"
	ErrorCode_PERMISSION_DENIED ErrorCode = "PERMISSION_DENIED"
	ErrorCode_UNAUTHENTICATED   ErrorCode = "UNAUTHENTICATED"
	ErrorCode_FORBIDDEN         ErrorCode = "FORBIDDEN"
	ErrorCode_HTTP_OK           ErrorCode = "OK"
)

// Capture token codes
const (
	ErrorCode_TOKEN_INVALID   ErrorCode = "TOKEN_INVALID"
	ErrorCode_TOKEN_EXPIRED   ErrorCode = "TOKEN_EXPIRED"
	ErrorCode_INVITE_CONSUMED ErrorCode = "INVITE_CONSUMED"
)

// Capture session codes
const (
	ErrorCode_SESSION_NOT_FOUND     ErrorCode = "SESSION_NOT_FOUND"
	ErrorCode_SESSION_INVALID_STAGE ErrorCode = "SESSION_INVALID_STAGE"
	ErrorCode_SESSION_COMPLETED     ErrorCode = "SESSION_COMPLETED"
	ErrorCode_ADVANCE_BLOCKED       ErrorCode = "ADVANCE_BLOCKED"
)

// Recording codes
const (
	ErrorCode_ATTEMPT_NOT_FOUND       ErrorCode = "ATTEMPT_NOT_FOUND"
	ErrorCode_ATTEMPT_INVALID_STATE   ErrorCode = "ATTEMPT_INVALID_STATE"
	ErrorCode_DEVICE_UNAVAILABLE      ErrorCode = "DEVICE_UNAVAILABLE"
	ErrorCode_RECORDING_START_FAILED  ErrorCode = "RECORDING_START_FAILED"
	ErrorCode_RECORDING_STOP_FAILED   ErrorCode = "RECORDING_STOP_FAILED"
	ErrorCode_ARTIFACT_UPLOAD_FAILED  ErrorCode = "ARTIFACT_UPLOAD_FAILED"
	ErrorCode_TRANSCRIPTION_FAILED    ErrorCode = "TRANSCRIPTION_FAILED"
	ErrorCode_TRANSCRIPTION_JOB_STATE ErrorCode = "TRANSCRIPTION_JOB_STATE"
)

// Integration codes
const (
	ErrorCode_INTEGRATION_LIVEKIT_FAILED      ErrorCode = "INTEGRATION_LIVEKIT_FAILED"
	ErrorCode_INTEGRATION_STORAGE_FAILED      ErrorCode = "INTEGRATION_STORAGE_FAILED"
	ErrorCode_INTEGRATION_CACHE_FAILED        ErrorCode = "INTEGRATION_CACHE_FAILED"
	ErrorCode_INTEGRATION_TABLESTORE_FAILED   ErrorCode = "INTEGRATION_TABLESTORE_FAILED"
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED ErrorCode = "INTEGRATION_EXTERNAL_API_FAILED"
)

// Database codes
const (
	ErrorCode_DB_CONNECTION_FAILED    ErrorCode = "DB_CONNECTION_FAILED"
	ErrorCode_DB_QUERY_FAILED         ErrorCode = "DB_QUERY_FAILED"
	ErrorCode_DB_TRANSACTION_FAILED   ErrorCode = "DB_TRANSACTION_FAILED"
	ErrorCode_DB_CONSTRAINT_VIOLATION ErrorCode = "DB_CONSTRAINT_VIOLATION"
)

// Payload codes
const (
	ErrorCode_INVALID_PAYLOAD   ErrorCode = "INVALID_PAYLOAD"
	ErrorCode_MISSING_AUDIO_URL ErrorCode = "MISSING_AUDIO_URL"
	ErrorCode_PROCESSING_FAILED ErrorCode = "PROCESSING_FAILED"
	ErrorCode_WEBHOOK_SIGNATURE ErrorCode = "WEBHOOK_SIGNATURE"
)
