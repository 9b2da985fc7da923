package ai

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/hireflowdev/interview-assistant/pkg/config"
)

// WebhookAuthHeaderName is the header AssemblyAI echoes back on completion
// webhooks when a secret is configured at submit time.
const WebhookAuthHeaderName = "X-Webhook-Secret"

// AssemblyAIClient is a minimal client for the async transcription API.
// The realtime streaming path uses the official SDK; this client covers the
// backfill flow: submit a stored recording, receive a webhook, poll when the
// webhook never arrives.
type AssemblyAIClient struct {
	apiKey        string
	baseURL       string
	webhookSecret string
	client        *http.Client
}

// NewAssemblyAIClient creates an AssemblyAI client using the provided config.
// If cfg is nil, falls back to environment variables.
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig) *AssemblyAIClient {
	var apiKey, baseURL, webhookSecret string
	if cfg != nil {
		apiKey = cfg.APIKey
		baseURL = cfg.BaseURL
		webhookSecret = cfg.WebhookSecret
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}
	if baseURL == "" {
		baseURL = "https://api.assemblyai.com"
	}
	return &AssemblyAIClient{
		apiKey:        apiKey,
		baseURL:       baseURL,
		webhookSecret: webhookSecret,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
}

// TranscribeRequest is the payload for POST /v2/transcript
type TranscribeRequest struct {
	AudioURL               string `json:"audio_url"`
	LanguageDetection      bool   `json:"language_detection,omitempty"`
	WebhookURL             string `json:"webhook_url,omitempty"`
	WebhookAuthHeaderName  string `json:"webhook_auth_header_name,omitempty"`
	WebhookAuthHeaderValue string `json:"webhook_auth_header_value,omitempty"`
}

// Transcript is the subset of the transcript resource the backfill flow reads
type Transcript struct {
	ID            string   `json:"id"`
	Status        string   `json:"status"` // queued, processing, completed, error
	Text          *string  `json:"text,omitempty"`
	Confidence    *float64 `json:"confidence,omitempty"`
	AudioDuration *float64 `json:"audio_duration,omitempty"` // seconds
	Error         *string  `json:"error,omitempty"`
}

// SubmitTranscription asks AssemblyAI to transcribe a stored audio URL and
// deliver the result to webhookURL. Returns the transcript id immediately;
// completion arrives out of band.
func (c *AssemblyAIClient) SubmitTranscription(ctx context.Context, audioURL, webhookURL string) (string, error) {
	payload := TranscribeRequest{
		AudioURL:          audioURL,
		LanguageDetection: true,
		WebhookURL:        webhookURL,
	}
	if c.webhookSecret != "" {
		payload.WebhookAuthHeaderName = WebhookAuthHeaderName
		payload.WebhookAuthHeaderValue = c.webhookSecret
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/transcript", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("assemblyai returned status %d", resp.StatusCode)
	}

	var tr Transcript
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}
	if tr.ID == "" {
		return "", fmt.Errorf("assemblyai response missing transcript id")
	}
	return tr.ID, nil
}

// GetTranscript fetches the current state of a transcript. Used by the
// webhook-timeout sweep to recover jobs whose completion webhook was lost.
func (c *AssemblyAIClient) GetTranscript(ctx context.Context, transcriptID string) (*Transcript, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/transcript/"+transcriptID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("assemblyai returned status %d", resp.StatusCode)
	}

	var tr Transcript
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// VerifyWebhookAuth checks the auth header AssemblyAI sends back with
// completion webhooks. Returns true when no secret is configured so
// development setups without a public URL still work.
func (c *AssemblyAIClient) VerifyWebhookAuth(headerValue string) bool {
	if c.webhookSecret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(c.webhookSecret), []byte(headerValue)) == 1
}
