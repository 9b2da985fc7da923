package media

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hireflowdev/interview-assistant/pkg/audio"
)

const artifactURLExpiry = 24 * time.Hour

// WavDevice buffers PCM audio for one recording attempt and, on stop, wraps
// it in a WAV container and uploads it to object storage.
type WavDevice struct {
	store      ArtifactStore
	objectKey  string
	sampleRate int
	logger     *zap.Logger

	mu      sync.Mutex
	started bool
	closed  bool
	buf     bytes.Buffer
}

// NewWavDevice creates a device writing to the given object key
func NewWavDevice(store ArtifactStore, objectKey string, sampleRate int, logger *zap.Logger) *WavDevice {
	return &WavDevice{
		store:      store,
		objectKey:  objectKey,
		sampleRate: sampleRate,
		logger:     logger,
	}
}

// Start acquires the device
func (d *WavDevice) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return fmt.Errorf("device already released")
	}
	if d.started {
		return fmt.Errorf("device already started")
	}
	d.started = true

	if d.logger != nil {
		d.logger.Debug("🎙️ Audio device acquired",
			zap.String("object_key", d.objectKey),
			zap.Int("sample_rate", d.sampleRate),
		)
	}
	return nil
}

// Write appends a PCM frame to the attempt buffer
func (d *WavDevice) Write(pcm []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started || d.closed {
		return fmt.Errorf("device not recording")
	}
	_, err := d.buf.Write(pcm)
	return err
}

// Stop releases the device, uploads the WAV artifact and returns its location
func (d *WavDevice) Stop(ctx context.Context) (*Artifact, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, fmt.Errorf("device already released")
	}
	d.closed = true
	pcm := d.buf.Bytes()
	d.mu.Unlock()

	wav, err := audio.WriteWAV(pcm, d.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to encode WAV: %w", err)
	}

	if err := d.store.UploadFile(ctx, d.objectKey, bytes.NewReader(wav), int64(len(wav)), "audio/wav"); err != nil {
		return nil, fmt.Errorf("failed to upload artifact: %w", err)
	}

	url, err := d.store.GetFileURL(ctx, d.objectKey, artifactURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve artifact URL: %w", err)
	}

	artifact := &Artifact{
		ObjectKey:       d.objectKey,
		URL:             url,
		Bytes:           int64(len(wav)),
		DurationSeconds: audio.Duration(pcm, d.sampleRate),
		SampleRate:      d.sampleRate,
		Format:          "wav",
	}

	if d.logger != nil {
		d.logger.Info("📤 Audio artifact uploaded",
			zap.String("object_key", artifact.ObjectKey),
			zap.Int64("bytes", artifact.Bytes),
			zap.Float64("duration_seconds", artifact.DurationSeconds),
		)
	}
	return artifact, nil
}

// WavDeviceFactory builds WavDevices against one artifact store
type WavDeviceFactory struct {
	store      ArtifactStore
	sampleRate int
	logger     *zap.Logger
}

// NewWavDeviceFactory creates a factory uploading to the given store
func NewWavDeviceFactory(store ArtifactStore, sampleRate int, logger *zap.Logger) *WavDeviceFactory {
	return &WavDeviceFactory{store: store, sampleRate: sampleRate, logger: logger}
}

// NewDevice builds a device for one attempt
func (f *WavDeviceFactory) NewDevice(attemptID string) Device {
	objectKey := fmt.Sprintf("answers/%s.wav", attemptID)
	return NewWavDevice(f.store, objectKey, f.sampleRate, f.logger)
}
