package assemblyai

import (
	"context"
	"fmt"
	"sync"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	usecaseErrors "github.com/hireflowdev/interview-assistant/internal/usecase/errors"
	"github.com/hireflowdev/interview-assistant/internal/usecase/transcript"
	"github.com/hireflowdev/interview-assistant/pkg/config"
)

// The realtime socket expects 16 kHz mono s16le PCM, the same raw format
// the audio device buffers for the WAV artifact.
const liveSampleRate = 16000

// Stream is a live speech-to-text session for one recording attempt.
// Start opens the session, Send forwards PCM frames, and Events yields
// recognition updates until Stop closes the session.
type Stream interface {
	Start(ctx context.Context) error
	Send(ctx context.Context, pcm []byte) error
	Events() <-chan transcript.Event
	Stop(ctx context.Context) error
}

// StreamFactory builds a fresh stream per recording attempt
type StreamFactory interface {
	NewStream(attemptID string) Stream
}

// NewStreamFactory creates a stream factory. With UseMock the factory
// produces canned transcripts for local development; otherwise streams
// connect to the AssemblyAI realtime API.
func NewStreamFactory(cfg *config.AssemblyAIConfig, logger *zap.Logger) StreamFactory {
	if cfg != nil && cfg.UseMock {
		return &mockFactory{logger: logger}
	}
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	return &realFactory{apiKey: apiKey, logger: logger}
}

// realFactory builds streams against the AssemblyAI realtime API
type realFactory struct {
	apiKey string
	logger *zap.Logger
}

func (f *realFactory) NewStream(attemptID string) Stream {
	return &realStream{
		apiKey:    f.apiKey,
		attemptID: attemptID,
		logger:    f.logger,
		events:    make(chan transcript.Event, 256),
	}
}

// realStream adapts one realtime websocket session to the Stream interface.
// SDK callbacks run on the socket reader goroutine; emit serializes them
// against close so a late callback can never hit a closed channel.
type realStream struct {
	apiKey    string
	attemptID string
	logger    *zap.Logger

	client *aai.RealTimeClient
	events chan transcript.Event

	mu     sync.Mutex
	closed bool
}

// Start connects the realtime session. Connection failures are wrapped in
// ErrTranscriptionUnavailable so callers can fall back to audio-only capture
// instead of aborting the attempt.
func (s *realStream) Start(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("%w: no API key configured", usecaseErrors.ErrTranscriptionUnavailable)
	}

	transcriber := &aai.RealTimeTranscriber{
		OnSessionBegins: func(event aai.SessionBegins) {
			if s.logger != nil {
				s.logger.Info("🎙️ Live transcription session opened",
					zap.String("attempt_id", s.attemptID),
				)
			}
		},
		OnSessionTerminated: func(event aai.SessionTerminated) {
			if s.logger != nil {
				s.logger.Debug("Live transcription session terminated",
					zap.String("attempt_id", s.attemptID),
				)
			}
			s.closeEvents()
		},
		OnPartialTranscript: func(event aai.PartialTranscript) {
			text := event.Text
			s.emit(transcript.Event{Interim: &text})
		},
		OnFinalTranscript: func(event aai.FinalTranscript) {
			s.emit(transcript.Event{
				Finals: []transcript.Segment{{
					Text:       event.Text,
					Confidence: event.Confidence,
					AudioStart: int(event.AudioStart),
					AudioEnd:   int(event.AudioEnd),
				}},
			})
		},
		OnError: func(err error) {
			if s.logger != nil {
				s.logger.Warn("⚠️ Live transcription error",
					zap.String("attempt_id", s.attemptID),
					zap.Error(err),
				)
			}
		},
	}

	s.client = aai.NewRealTimeClientWithOptions(
		aai.WithRealTimeAPIKey(s.apiKey),
		aai.WithRealTimeSampleRate(liveSampleRate),
		aai.WithRealTimeTranscriber(transcriber),
	)

	if err := s.client.Connect(ctx); err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to connect live transcription",
				zap.String("attempt_id", s.attemptID),
				zap.Error(err),
			)
		}
		return fmt.Errorf("%w: %v", usecaseErrors.ErrTranscriptionUnavailable, err)
	}
	return nil
}

// Send forwards a PCM frame to the realtime session
func (s *realStream) Send(ctx context.Context, pcm []byte) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed || s.client == nil {
		return fmt.Errorf("stream is closed")
	}
	return s.client.Send(ctx, pcm)
}

// Events yields recognition updates. The channel closes once the session
// terminates.
func (s *realStream) Events() <-chan transcript.Event {
	return s.events
}

// Stop disconnects the session, waiting for the provider to flush any
// in-flight final transcript before the socket closes.
func (s *realStream) Stop(ctx context.Context) error {
	if s.client == nil {
		s.closeEvents()
		return nil
	}
	err := s.client.Disconnect(ctx, true)
	s.closeEvents()
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Live transcription disconnect failed",
				zap.String("attempt_id", s.attemptID),
				zap.Error(err),
			)
		}
		return err
	}
	return nil
}

func (s *realStream) emit(ev transcript.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
		// Avoid stalling the socket reader if the consumer stops draining.
	}
}

func (s *realStream) closeEvents() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

// mockFactory builds canned streams for local development
type mockFactory struct {
	logger *zap.Logger
}

func (f *mockFactory) NewStream(attemptID string) Stream {
	return &mockStream{
		attemptID: attemptID,
		logger:    f.logger,
		events:    make(chan transcript.Event, 16),
	}
}

// mockStream emits a deterministic transcript keyed off the number of audio
// frames received, so local capture shows live text without a provider key.
type mockStream struct {
	attemptID string
	logger    *zap.Logger
	events    chan transcript.Event

	mu     sync.Mutex
	sends  int
	closed bool
}

var mockPhrases = []string{
	"I started by reading the error logs to narrow down the failing service.",
	"Then I reproduced the issue locally with a smaller dataset.",
	"Once I had a fix I added a regression test before deploying.",
}

// Start (mock) always succeeds
func (m *mockStream) Start(ctx context.Context) error {
	if m.logger != nil {
		m.logger.Info("🎙️ Mock transcription session opened",
			zap.String("attempt_id", m.attemptID),
		)
	}
	return nil
}

// Send (mock) counts frames and emits a partial every 25 sends and a final
// every 50, cycling through the canned phrases.
func (m *mockStream) Send(ctx context.Context, pcm []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("stream is closed")
	}

	m.sends++
	phrase := mockPhrases[(m.sends/50)%len(mockPhrases)]
	switch {
	case m.sends%50 == 0:
		m.emitLocked(transcript.Event{
			Finals: []transcript.Segment{{Text: phrase, Confidence: 0.95}},
		})
	case m.sends%25 == 0:
		half := phrase[:len(phrase)/2]
		m.emitLocked(transcript.Event{Interim: &half})
	}
	return nil
}

// Events (mock) yields the canned recognition updates
func (m *mockStream) Events() <-chan transcript.Event {
	return m.events
}

// Stop (mock) closes the event channel
func (m *mockStream) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}

func (m *mockStream) emitLocked(ev transcript.Event) {
	select {
	case m.events <- ev:
	default:
	}
}
