package media

import (
	"context"
	"fmt"
	"sync"
)

// MockDevice is an in-memory Device for tests and local development.
// StartErr and StopErr inject acquisition and release failures.
type MockDevice struct {
	StartErr error
	StopErr  error

	mu      sync.Mutex
	started bool
	closed  bool
	data    []byte
}

// NewMockDevice creates a mock device
func NewMockDevice() *MockDevice {
	return &MockDevice{}
}

// Start acquires the mock device
func (d *MockDevice) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.StartErr != nil {
		return d.StartErr
	}
	d.started = true
	return nil
}

// Write buffers a PCM frame
func (d *MockDevice) Write(pcm []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started || d.closed {
		return fmt.Errorf("device not recording")
	}
	d.data = append(d.data, pcm...)
	return nil
}

// Stop releases the device and returns a synthetic artifact
func (d *MockDevice) Stop(ctx context.Context) (*Artifact, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, fmt.Errorf("device already released")
	}
	d.closed = true

	if d.StopErr != nil {
		return nil, d.StopErr
	}

	return &Artifact{
		ObjectKey:       "mock/artifact.wav",
		URL:             "https://storage.local/mock/artifact.wav",
		Bytes:           int64(len(d.data)),
		DurationSeconds: float64(len(d.data)) / float64(2*16000),
		SampleRate:      16000,
		Format:          "wav",
	}, nil
}

// Written returns the PCM bytes captured so far
func (d *MockDevice) Written() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]byte, len(d.data))
	copy(out, d.data)
	return out
}

// MockDeviceFactory returns a preconfigured mock device per attempt
type MockDeviceFactory struct {
	mu      sync.Mutex
	devices map[string]*MockDevice

	StartErr error
}

// NewMockDeviceFactory creates a factory of mock devices
func NewMockDeviceFactory() *MockDeviceFactory {
	return &MockDeviceFactory{devices: make(map[string]*MockDevice)}
}

// NewDevice builds a mock device and remembers it by attempt ID
func (f *MockDeviceFactory) NewDevice(attemptID string) Device {
	f.mu.Lock()
	defer f.mu.Unlock()

	dev := NewMockDevice()
	dev.StartErr = f.StartErr
	f.devices[attemptID] = dev
	return dev
}

// Device returns the mock built for an attempt
func (f *MockDeviceFactory) Device(attemptID string) *MockDevice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.devices[attemptID]
}
