package tablestore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflowdev/interview-assistant/pkg/config"
)

func newTestClient(t *testing.T, handler http.Handler) Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return NewClient(&config.TablestoreConfig{
		BaseURL:        ts.URL,
		APIToken:       "test-token",
		TimeoutSeconds: 5,
		MaxRetries:     2,
	}, nil)
}

func TestClient_Create_SendsBearerToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/collections/answers/records", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var rec map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		rec["id"] = "rec-1"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rec)
	}))

	created, err := client.Create(context.Background(), "answers", Record{"answer": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "rec-1", created["id"])
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestClient_Create_SchemaRejectionNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": `unknown field "transcript" was referenced`})
	}))

	_, err := client.Create(context.Background(), "answers", Record{"transcript": "x"})
	require.Error(t, err)

	var rej *RejectionError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, RejectionUnknownField, rej.Kind)
	assert.Equal(t, "transcript", rej.Field)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must not be retried")
}

func TestClient_Create_RetriesGatewayErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "rec-2"})
	}))

	created, err := client.Create(context.Background(), "answers", Record{"answer": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "rec-2", created["id"])
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_List_BuildsFilterParams(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "app-1", r.URL.Query().Get("filter[applicant_id]"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(listResponse{Records: []Record{
			{"id": "a", "answer_text": "first"},
		}})
	}))

	records, err := client.List(context.Background(), "answers", map[string]string{"applicant_id": "app-1"}, 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "first", records[0]["answer_text"])
}

func TestMockClient_FiltersAndUpdates(t *testing.T) {
	mock := NewMockClient()
	ctx := context.Background()

	created, err := mock.Create(ctx, "applicants", Record{"name": "Dana", "interview_id": "int-1"})
	require.NoError(t, err)
	id, ok := created["id"].(string)
	require.True(t, ok)

	_, err = mock.Create(ctx, "applicants", Record{"name": "Riley", "interview_id": "int-2"})
	require.NoError(t, err)

	matched, err := mock.List(ctx, "applicants", map[string]string{"interview_id": "int-1"}, 0)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Dana", matched[0]["name"])

	updated, err := mock.Update(ctx, "applicants", id, Record{"status": "completed"})
	require.NoError(t, err)
	assert.Equal(t, "completed", updated["status"])

	_, err = mock.Update(ctx, "applicants", "missing", Record{})
	var rej *RejectionError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, 404, rej.StatusCode)
}
