package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireflowdev/interview-assistant/pkg/config"
)

func TestSubmitTranscription_Success(t *testing.T) {
	var got TranscribeRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2/transcript", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"id": "transcript-123", "status": "queued"})
	}))
	defer ts.Close()

	client := NewAssemblyAIClient(&config.AssemblyAIConfig{
		APIKey:        "test-key",
		BaseURL:       ts.URL,
		WebhookSecret: "hook-secret",
	})

	id, err := client.SubmitTranscription(context.Background(),
		"https://storage.local/attempts/a1.wav", "https://api.local/v1/webhooks/transcriptions")
	require.NoError(t, err)
	assert.Equal(t, "transcript-123", id)

	assert.Equal(t, "https://storage.local/attempts/a1.wav", got.AudioURL)
	assert.Equal(t, "https://api.local/v1/webhooks/transcriptions", got.WebhookURL)
	assert.Equal(t, WebhookAuthHeaderName, got.WebhookAuthHeaderName)
	assert.Equal(t, "hook-secret", got.WebhookAuthHeaderValue)
}

func TestSubmitTranscription_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := NewAssemblyAIClient(&config.AssemblyAIConfig{APIKey: "bad-key", BaseURL: ts.URL})

	_, err := client.SubmitTranscription(context.Background(), "https://storage.local/a.wav", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestGetTranscript_Completed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v2/transcript/transcript-123", r.URL.Path)

		text := "I checked the logs first."
		confidence := 0.94
		duration := 42.5
		json.NewEncoder(w).Encode(Transcript{
			ID:            "transcript-123",
			Status:        "completed",
			Text:          &text,
			Confidence:    &confidence,
			AudioDuration: &duration,
		})
	}))
	defer ts.Close()

	client := NewAssemblyAIClient(&config.AssemblyAIConfig{APIKey: "test-key", BaseURL: ts.URL})

	tr, err := client.GetTranscript(context.Background(), "transcript-123")
	require.NoError(t, err)
	assert.Equal(t, "completed", tr.Status)
	require.NotNil(t, tr.Text)
	assert.Equal(t, "I checked the logs first.", *tr.Text)
	require.NotNil(t, tr.Confidence)
	assert.InDelta(t, 0.94, *tr.Confidence, 1e-9)
}

func TestVerifyWebhookAuth(t *testing.T) {
	withSecret := NewAssemblyAIClient(&config.AssemblyAIConfig{WebhookSecret: "hook-secret"})
	assert.True(t, withSecret.VerifyWebhookAuth("hook-secret"))
	assert.False(t, withSecret.VerifyWebhookAuth("wrong"))
	assert.False(t, withSecret.VerifyWebhookAuth(""))

	// No configured secret: local setups accept unauthenticated webhooks.
	open := NewAssemblyAIClient(&config.AssemblyAIConfig{})
	assert.True(t, open.VerifyWebhookAuth(""))
}
