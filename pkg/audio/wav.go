package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Raw capture format: 16-bit little-endian mono PCM.
const (
	pcmFormat      = 1
	numChannels    = 1
	bitsPerSample  = 16
	bytesPerSample = bitsPerSample / 8
	frameSize      = numChannels * bytesPerSample
)

// WriteWAV renders raw 16-bit mono PCM into a WAV container. Trailing
// partial frames are dropped so the data chunk stays frame-aligned.
func WriteWAV(pcm []byte, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	if rem := len(pcm) % frameSize; rem != 0 {
		pcm = pcm[:len(pcm)-rem]
	}

	byteRate := sampleRate * frameSize

	var buf bytes.Buffer
	buf.Write([]byte("RIFF"))
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.Write([]byte("WAVE"))

	buf.Write([]byte("fmt "))
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(pcmFormat))
	binary.Write(&buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(frameSize))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.Write([]byte("data"))
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes(), nil
}

// Duration returns the playback duration in seconds of raw PCM at the
// given sample rate.
func Duration(pcm []byte, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	frames := len(pcm) / frameSize
	return float64(frames) / float64(sampleRate)
}
