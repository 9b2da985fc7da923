package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/external/assemblyai"
	"github.com/hireflowdev/interview-assistant/internal/infrastructure/media"
	"github.com/hireflowdev/interview-assistant/internal/usecase/authenticity"
	usecaseErrors "github.com/hireflowdev/interview-assistant/internal/usecase/errors"
	"github.com/hireflowdev/interview-assistant/internal/usecase/transcript"
)

// State models one recording attempt's lifecycle
type State string

const (
	StateIdle      State = "idle"      // created, device not yet acquired
	StateRecording State = "recording" // device and stream live, timer ticking
	StateStopped   State = "stopped"   // artifact produced, assessment final
	StateFailed    State = "failed"    // acquisition failed, attempt must be retried
)

// teardownTimeout bounds device/stream release when stop is not driven by a
// caller-supplied context (auto-stop at the time limit).
const teardownTimeout = 30 * time.Second

// Config holds the per-attempt recording tunables
type Config struct {
	TimeLimitSeconds int
	WarningFraction  float64
	Debounce         time.Duration
	DebounceChars    int
	MinAssessChars   int
}

func (c Config) withDefaults() Config {
	if c.TimeLimitSeconds <= 0 {
		c.TimeLimitSeconds = 300
	}
	if c.WarningFraction <= 0 || c.WarningFraction > 1 {
		c.WarningFraction = 0.8
	}
	if c.Debounce <= 0 {
		c.Debounce = 2 * time.Second
	}
	if c.DebounceChars <= 0 {
		c.DebounceChars = 50
	}
	if c.MinAssessChars <= 0 {
		c.MinAssessChars = 20
	}
	return c
}

// Scorer evaluates a finalized transcript
type Scorer interface {
	Score(text string) authenticity.Assessment
}

// Hooks receive controller lifecycle notifications. They are invoked from the
// controller's own goroutine and must not call back into the controller.
type Hooks struct {
	OnUpdate   func(Snapshot)
	OnWarning  func(Snapshot)
	OnAutoStop func(*StopResult)
}

// Snapshot is the live read model exposed while an attempt records
type Snapshot struct {
	AttemptID        uuid.UUID               `json:"attempt_id"`
	State            State                   `json:"state"`
	ElapsedSeconds   int                     `json:"elapsed_seconds"`
	TimeLimitSeconds int                     `json:"time_limit_seconds"`
	WarningIssued    bool                    `json:"warning_issued"`
	Degraded         bool                    `json:"degraded"`
	FullText         string                  `json:"full_text"`
	FinalizedText    string                  `json:"finalized_text"`
	Interim          string                  `json:"interim,omitempty"`
	Assessment       authenticity.Assessment `json:"assessment"`
}

// StopResult is the final outcome of one recording attempt. FinalizedText
// carries only committed segments; the interim hypothesis at stop time is
// display-only and never persisted.
type StopResult struct {
	AttemptID      uuid.UUID               `json:"attempt_id"`
	Reason         entities.StopReason     `json:"reason"`
	ElapsedSeconds int                     `json:"elapsed_seconds"`
	WarningIssued  bool                    `json:"warning_issued"`
	Degraded       bool                    `json:"degraded"`
	FinalizedText  string                  `json:"finalized_text"`
	Segments       []transcript.Segment    `json:"segments"`
	Assessment     authenticity.Assessment `json:"assessment"`
	Artifact       *media.Artifact         `json:"artifact,omitempty"`
}

// Controller owns the lifecycle of one recording attempt: it acquires the
// audio device and transcription stream together, drives the countdown
// ticker, folds recognition events into the transcript, debounces
// authenticity scoring, and enforces the hard time limit.
//
// All timer and recognition handling runs on a single goroutine so ordering
// and cancellation stay explicit: a stop processed by the loop shuts the
// ticker and any pending debounce down before the loop exits, which is what
// makes the stop-time assessment authoritative.
type Controller struct {
	attemptID uuid.UUID
	cfg       Config
	device    media.Device
	stream    assemblyai.Stream
	scorer    Scorer
	clk       clock.Clock
	hooks     Hooks
	logger    *zap.Logger

	// loop-owned; touched only by the run goroutine once recording starts
	acc           *transcript.Accumulator
	events        <-chan transcript.Event
	ticker        *clock.Ticker
	debounce      *clock.Timer
	lastScoredLen int

	cmds chan stopCmd
	done chan struct{}

	warnSendOnce sync.Once

	// shared mirror read by Snapshot and ForwardAudio
	mu            sync.RWMutex
	state         State
	started       bool
	elapsed       int
	warningIssued bool
	degraded      bool
	fullText      string
	finalizedText string
	interim       string
	assessment    authenticity.Assessment
	stopResult    *StopResult
	stopErr       error
}

type stopCmd struct {
	ctx    context.Context
	reason entities.StopReason
	reply  chan stopReply
}

type stopReply struct {
	result *StopResult
	err    error
}

// NewController creates an idle controller for one attempt. A nil stream
// starts the attempt in degraded audio-only mode; a nil clk uses wall time.
func NewController(
	attemptID uuid.UUID,
	device media.Device,
	stream assemblyai.Stream,
	scorer Scorer,
	cfg Config,
	clk clock.Clock,
	hooks Hooks,
	logger *zap.Logger,
) *Controller {
	if clk == nil {
		clk = clock.New()
	}
	return &Controller{
		attemptID:  attemptID,
		cfg:        cfg.withDefaults(),
		device:     device,
		stream:     stream,
		scorer:     scorer,
		clk:        clk,
		hooks:      hooks,
		logger:     logger,
		acc:        transcript.NewAccumulator(),
		cmds:       make(chan stopCmd),
		done:       make(chan struct{}),
		state:      StateIdle,
		assessment: authenticity.Assessment{Score: 0, Verdict: authenticity.VerdictUncertain, Assessed: false},
	}
}

// Start acquires the audio device and the transcription stream concurrently
// and begins the elapsed-time ticker at zero. A device failure is fatal for
// the attempt. A stream failure wrapped in ErrTranscriptionUnavailable
// degrades the attempt to audio-only capture; any other stream failure is
// fatal.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return usecaseErrors.ErrAttemptInFlight
	}
	c.started = true
	c.mu.Unlock()

	var (
		wg        sync.WaitGroup
		deviceErr error
		streamErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		deviceErr = c.device.Start(ctx)
	}()

	if c.stream != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			streamErr = c.stream.Start(ctx)
		}()
	} else {
		streamErr = usecaseErrors.ErrTranscriptionUnavailable
	}

	wg.Wait()

	if deviceErr != nil {
		if c.stream != nil && streamErr == nil {
			_ = c.stream.Stop(ctx)
		}
		c.setState(StateFailed)
		if c.logger != nil {
			c.logger.Error("❌ Failed to acquire audio device",
				zap.String("attempt_id", c.attemptID.String()),
				zap.Error(deviceErr),
			)
		}
		return fmt.Errorf("%w: %v", usecaseErrors.ErrDeviceAcquisitionFailed, deviceErr)
	}

	degraded := false
	if streamErr != nil {
		if !errors.Is(streamErr, usecaseErrors.ErrTranscriptionUnavailable) {
			_, _ = c.device.Stop(ctx)
			c.setState(StateFailed)
			if c.logger != nil {
				c.logger.Error("❌ Failed to acquire transcription stream",
					zap.String("attempt_id", c.attemptID.String()),
					zap.Error(streamErr),
				)
			}
			return fmt.Errorf("failed to acquire transcription stream: %w", streamErr)
		}
		degraded = true
		if c.logger != nil {
			c.logger.Warn("⚠️ Transcription unavailable, capturing audio only",
				zap.String("attempt_id", c.attemptID.String()),
				zap.Error(streamErr),
			)
		}
	} else {
		c.events = c.stream.Events()
	}

	c.mu.Lock()
	c.state = StateRecording
	c.degraded = degraded
	c.mu.Unlock()

	c.ticker = c.clk.Ticker(time.Second)
	go c.run()

	if c.logger != nil {
		c.logger.Info("▶️ Recording started",
			zap.String("attempt_id", c.attemptID.String()),
			zap.Int("time_limit_seconds", c.cfg.TimeLimitSeconds),
			zap.Bool("degraded", degraded),
		)
	}
	c.publish(c.hooks.OnUpdate)
	return nil
}

// ForwardAudio pushes one PCM frame to the device and, when live
// transcription is up, to the stream. It bypasses the event loop so the
// audio hot path never waits on timer or scoring work.
func (c *Controller) ForwardAudio(ctx context.Context, pcm []byte) error {
	c.mu.RLock()
	state := c.state
	degraded := c.degraded
	c.mu.RUnlock()

	if state != StateRecording {
		return usecaseErrors.ErrControllerNotRecording
	}

	if err := c.device.Write(pcm); err != nil {
		return fmt.Errorf("failed to buffer audio frame: %w", err)
	}

	if !degraded && c.stream != nil {
		if err := c.stream.Send(ctx, pcm); err != nil {
			// Audio capture continues; the transcript just stops growing.
			c.warnSendOnce.Do(func() {
				if c.logger != nil {
					c.logger.Warn("⚠️ Dropping transcription frames",
						zap.String("attempt_id", c.attemptID.String()),
						zap.Error(err),
					)
				}
			})
		}
	}
	return nil
}

// Stop halts the attempt: it cancels the ticker and any pending debounced
// scoring, releases the stream and the device, runs the final authoritative
// assessment, and transitions to Stopped. Stop is idempotent; repeat calls
// return the same result.
func (c *Controller) Stop(ctx context.Context, reason entities.StopReason) (*StopResult, error) {
	c.mu.RLock()
	state := c.state
	result := c.stopResult
	stopErr := c.stopErr
	c.mu.RUnlock()

	switch state {
	case StateStopped:
		return result, stopErr
	case StateIdle, StateFailed:
		return nil, usecaseErrors.ErrControllerNotRecording
	}

	cmd := stopCmd{ctx: ctx, reason: reason, reply: make(chan stopReply, 1)}
	select {
	case c.cmds <- cmd:
		r := <-cmd.reply
		return r.result, r.err
	case <-c.done:
		// The loop stopped on its own (time limit); replay its result.
		c.mu.RLock()
		defer c.mu.RUnlock()
		if c.stopResult == nil {
			return nil, usecaseErrors.ErrControllerNotRecording
		}
		return c.stopResult, c.stopErr
	}
}

// Snapshot returns the current live read model
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Result returns the stop result once the attempt has stopped
func (c *Controller) Result() (*StopResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stopResult, c.stopResult != nil
}

// Done closes once the controller's loop has exited
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// run is the controller's event loop. It owns the accumulator, the ticker,
// and the debounce timer, so every ordering rule between ticks, recognition
// events, scoring, and stop lives in one select.
func (c *Controller) run() {
	defer close(c.done)

	for {
		var debounceC <-chan time.Time
		if c.debounce != nil {
			debounceC = c.debounce.C
		}

		select {
		case cmd := <-c.cmds:
			result, err := c.doStop(cmd.ctx, cmd.reason)
			cmd.reply <- stopReply{result: result, err: err}
			return

		case <-c.ticker.C:
			if autoStopped := c.handleTick(); autoStopped {
				return
			}

		case ev, ok := <-c.events:
			if !ok {
				c.events = nil
				if c.logger != nil {
					c.logger.Warn("⚠️ Transcription stream ended mid-recording",
						zap.String("attempt_id", c.attemptID.String()),
					)
				}
				continue
			}
			c.handleEvent(ev)

		case <-debounceC:
			c.debounce = nil
			c.handleDebounce()
		}
	}
}

// handleTick advances the elapsed counter, issues the one-time warning, and
// auto-stops at the hard limit. Returns true when the tick stopped the
// attempt, which ends the loop.
func (c *Controller) handleTick() bool {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return false
	}
	c.elapsed++
	elapsed := c.elapsed

	warned := false
	if !c.warningIssued && float64(elapsed) >= c.cfg.WarningFraction*float64(c.cfg.TimeLimitSeconds) {
		c.warningIssued = true
		warned = true
	}
	c.mu.Unlock()

	if warned {
		if c.logger != nil {
			c.logger.Warn("⚠️ Recording time limit approaching",
				zap.String("attempt_id", c.attemptID.String()),
				zap.Int("elapsed_seconds", elapsed),
				zap.Int("time_limit_seconds", c.cfg.TimeLimitSeconds),
			)
		}
		c.publish(c.hooks.OnWarning)
	}

	if elapsed >= c.cfg.TimeLimitSeconds {
		ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
		defer cancel()
		result, err := c.doStop(ctx, entities.StopReasonTimeout)
		if err != nil && c.logger != nil {
			c.logger.Error("❌ Auto-stop teardown failed",
				zap.String("attempt_id", c.attemptID.String()),
				zap.Error(err),
			)
		}
		if c.hooks.OnAutoStop != nil && result != nil {
			c.hooks.OnAutoStop(result)
		}
		return true
	}

	c.publish(c.hooks.OnUpdate)
	return false
}

// handleEvent folds one recognition event into the transcript and
// (re)schedules the debounced scorer whenever committed text has grown past
// the threshold since the last computation.
func (c *Controller) handleEvent(ev transcript.Event) {
	c.mu.RLock()
	recording := c.state == StateRecording
	c.mu.RUnlock()
	if !recording {
		return
	}

	c.acc.Apply(ev)
	c.syncTranscript()

	if c.acc.FinalizedLen() > c.lastScoredLen+c.cfg.DebounceChars {
		if c.debounce != nil {
			c.debounce.Stop()
		}
		c.debounce = c.clk.Timer(c.cfg.Debounce)
	}

	c.publish(c.hooks.OnUpdate)
}

// handleDebounce scores the transcript as committed right now, not as it was
// when the timer was scheduled.
func (c *Controller) handleDebounce() {
	c.mu.RLock()
	recording := c.state == StateRecording
	c.mu.RUnlock()
	if !recording {
		return
	}

	text := c.acc.FinalizedText()
	assessment := c.scorer.Score(text)
	c.lastScoredLen = len(text)

	c.mu.Lock()
	c.assessment = assessment
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Debug("🧮 Authenticity assessment updated",
			zap.String("attempt_id", c.attemptID.String()),
			zap.Int("score", assessment.Score),
			zap.String("verdict", string(assessment.Verdict)),
			zap.Int("text_length", len(text)),
		)
	}
	c.publish(c.hooks.OnUpdate)
}

// doStop runs on the loop goroutine. Ticker and debounce are cancelled
// before teardown so no tick or stale scoring can fire after the stop is
// observed by the caller; the loop exits immediately after.
func (c *Controller) doStop(ctx context.Context, reason entities.StopReason) (*StopResult, error) {
	c.mu.Lock()
	if c.state == StateStopped {
		result := c.stopResult
		err := c.stopErr
		c.mu.Unlock()
		return result, err
	}
	c.state = StateStopped
	elapsed := c.elapsed
	warningIssued := c.warningIssued
	degraded := c.degraded
	c.mu.Unlock()

	c.ticker.Stop()
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}

	// Events already queued arrived before the stop; fold them in so the
	// persisted transcript matches everything the candidate saw.
	c.drainQueuedEvents()

	var stopErr error
	if c.stream != nil && !degraded {
		if err := c.stream.Stop(ctx); err != nil && c.logger != nil {
			c.logger.Warn("⚠️ Failed to close transcription stream",
				zap.String("attempt_id", c.attemptID.String()),
				zap.Error(err),
			)
		}
	}

	artifact, err := c.device.Stop(ctx)
	if err != nil {
		stopErr = fmt.Errorf("failed to release audio device: %w", err)
		if c.logger != nil {
			c.logger.Error("❌ Failed to release audio device",
				zap.String("attempt_id", c.attemptID.String()),
				zap.Error(err),
			)
		}
	}

	// Final authoritative assessment; any debounced computation was
	// cancelled above rather than merely overwritten.
	text := c.acc.FinalizedText()
	assessment := c.currentAssessment()
	if len(text) > c.cfg.MinAssessChars {
		assessment = c.scorer.Score(text)
		c.lastScoredLen = len(text)
	}

	result := &StopResult{
		AttemptID:      c.attemptID,
		Reason:         reason,
		ElapsedSeconds: elapsed,
		WarningIssued:  warningIssued,
		Degraded:       degraded,
		FinalizedText:  text,
		Segments:       c.acc.Segments(),
		Assessment:     assessment,
		Artifact:       artifact,
	}

	c.mu.Lock()
	c.assessment = assessment
	c.fullText = c.acc.FullText()
	c.finalizedText = text
	c.interim = c.acc.Interim()
	c.stopResult = result
	c.stopErr = stopErr
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("🛑 Recording stopped",
			zap.String("attempt_id", c.attemptID.String()),
			zap.String("reason", string(reason)),
			zap.Int("elapsed_seconds", elapsed),
			zap.Int("transcript_chars", len(text)),
			zap.Int("score", assessment.Score),
			zap.String("verdict", string(assessment.Verdict)),
			zap.Bool("degraded", degraded),
		)
	}
	c.publish(c.hooks.OnUpdate)

	return result, stopErr
}

// drainQueuedEvents applies recognition events buffered ahead of the stop,
// preserving arrival order, without waiting for new ones.
func (c *Controller) drainQueuedEvents() {
	for c.events != nil {
		select {
		case ev, ok := <-c.events:
			if !ok {
				c.events = nil
				return
			}
			c.acc.Apply(ev)
		default:
			return
		}
	}
}

func (c *Controller) syncTranscript() {
	c.mu.Lock()
	c.fullText = c.acc.FullText()
	c.finalizedText = c.acc.FinalizedText()
	c.interim = c.acc.Interim()
	c.mu.Unlock()
}

func (c *Controller) currentAssessment() authenticity.Assessment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.assessment
}

func (c *Controller) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		AttemptID:        c.attemptID,
		State:            c.state,
		ElapsedSeconds:   c.elapsed,
		TimeLimitSeconds: c.cfg.TimeLimitSeconds,
		WarningIssued:    c.warningIssued,
		Degraded:         c.degraded,
		FullText:         c.fullText,
		FinalizedText:    c.finalizedText,
		Interim:          c.interim,
		Assessment:       c.assessment,
	}
}

func (c *Controller) publish(hook func(Snapshot)) {
	if hook == nil {
		return
	}
	c.mu.RLock()
	snap := c.snapshotLocked()
	c.mu.RUnlock()
	hook(snap)
}
