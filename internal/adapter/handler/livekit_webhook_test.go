package handler

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hireflowdev/interview-assistant/internal/adapter/repository"
)

func newMockRecordingRepo(t *testing.T) (*repository.SessionRecordingRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return repository.NewSessionRecordingRepository(gdb), mock
}

func postLiveKitWebhook(t *testing.T, h *LiveKitWebhookHandler, payload string) *httptest.ResponseRecorder {
	t.Helper()

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/livekit", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.HandleLiveKitWebhook(e.NewContext(req, rec)))
	return rec
}

func TestLiveKitWebhook_MalformedBodyReturns400(t *testing.T) {
	h := NewLiveKitWebhookHandler(nil, "lk-key", "lk-secret", zap.NewNop())

	rec := postLiveKitWebhook(t, h, "{not json")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid webhook format", decodeBody(t, rec)["error"])
}

func TestLiveKitWebhook_RoomFinishedAcknowledged(t *testing.T) {
	h := NewLiveKitWebhookHandler(nil, "lk-key", "lk-secret", zap.NewNop())

	rec := postLiveKitWebhook(t, h, `{"event":"room_finished","room":{"name":"interview-room-1"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "OK", body["code"])
	assert.Equal(t, "ok", body["data"].(map[string]interface{})["status"])
}

func TestLiveKitWebhook_EgressEndedStoresFileResult(t *testing.T) {
	repo, mock := newMockRecordingRepo(t)
	h := NewLiveKitWebhookHandler(repo, "lk-key", "lk-secret", zap.NewNop())

	recordingID := uuid.New()
	sessionID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "session_id", "room_name", "livekit_egress_id", "status",
		"file_format", "started_at", "created_at", "updated_at",
	}).AddRow(
		recordingID.String(), sessionID.String(), "interview-room-1", "EG_123",
		"recording", "mp4", now, now, now,
	)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "session_recordings" WHERE livekit_egress_id = $1`,
	)).
		WithArgs("EG_123", 1).
		WillReturnRows(rows)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "session_recordings" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// LiveKit reports duration in nanoseconds and may quote int64 values.
	payload := `{
		"event": "egress_ended",
		"egress_info": {
			"egress_id": "EG_123",
			"status": "EGRESS_COMPLETE",
			"file": {
				"location": "https://store.example.com/recordings/interview-room-1.mp4",
				"filename": "recordings/interview-room-1.mp4",
				"size": "2048",
				"duration": "90000000000"
			}
		}
	}`

	rec := postLiveKitWebhook(t, h, payload)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "egress", body["data"].(map[string]interface{})["event"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLiveKitWebhook_EgressFailureMarksRecordingFailed(t *testing.T) {
	repo, mock := newMockRecordingRepo(t)
	h := NewLiveKitWebhookHandler(repo, "lk-key", "lk-secret", zap.NewNop())

	recordingID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "session_id", "room_name", "livekit_egress_id", "status",
		"file_format", "started_at", "created_at", "updated_at",
	}).AddRow(
		recordingID.String(), uuid.New().String(), "interview-room-2", "EG_456",
		"recording", "mp4", now, now, now,
	)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "session_recordings" WHERE livekit_egress_id = $1`,
	)).
		WithArgs("EG_456", 1).
		WillReturnRows(rows)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "session_recordings" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payload := `{
		"event": "egress_ended",
		"egress_info": {
			"egress_id": "EG_456",
			"status": "EGRESS_FAILED",
			"error": "disk full"
		}
	}`

	rec := postLiveKitWebhook(t, h, payload)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Unknown egress IDs are acknowledged so LiveKit stops retrying; there is
// nothing to update on our side.
func TestLiveKitWebhook_UnknownEgressAcknowledged(t *testing.T) {
	repo, mock := newMockRecordingRepo(t)
	h := NewLiveKitWebhookHandler(repo, "lk-key", "lk-secret", zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "session_recordings" WHERE livekit_egress_id = $1`,
	)).
		WithArgs("EG_999", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	payload := `{
		"event": "egress_ended",
		"egress_info": {
			"egress_id": "EG_999",
			"status": "EGRESS_COMPLETE"
		}
	}`

	rec := postLiveKitWebhook(t, h, payload)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["data"].(map[string]interface{})["status"])
	require.NoError(t, mock.ExpectationsWereMet())
}
