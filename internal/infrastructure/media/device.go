package media

import (
	"context"
	"io"
	"time"
)

// Artifact is the stored audio produced by a stopped device.
type Artifact struct {
	ObjectKey       string  `json:"object_key"`
	URL             string  `json:"url"`
	Bytes           int64   `json:"bytes"`
	DurationSeconds float64 `json:"duration_seconds"`
	SampleRate      int     `json:"sample_rate"`
	Format          string  `json:"format"`
}

// Device is an audio sink with start/stop semantics. Start acquires the
// device, Write accepts PCM frames while recording, and Stop releases the
// device and yields the stored artifact. Write must be safe to call
// concurrently with Stop; writes after Stop fail.
type Device interface {
	Start(ctx context.Context) error
	Write(pcm []byte) error
	Stop(ctx context.Context) (*Artifact, error)
}

// DeviceFactory builds a fresh device per recording attempt
type DeviceFactory interface {
	NewDevice(attemptID string) Device
}

// ArtifactStore is the subset of the object storage client the device needs
type ArtifactStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}
