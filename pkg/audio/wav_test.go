package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteWAV_Header(t *testing.T) {
	pcm := make([]byte, 32000) // one second at 16kHz mono 16-bit

	wav, err := WriteWAV(pcm, 16000)
	require.NoError(t, err)

	require.Equal(t, "RIFF", string(wav[0:4]))
	require.Equal(t, "WAVE", string(wav[8:12]))
	require.Equal(t, "fmt ", string(wav[12:16]))
	require.Equal(t, "data", string(wav[36:40]))

	require.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]), "mono")
	require.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]))
	require.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	require.Len(t, wav, 44+len(pcm))
}

func TestWriteWAV_DropsPartialFrame(t *testing.T) {
	pcm := make([]byte, 101) // odd length, last byte is a partial frame

	wav, err := WriteWAV(pcm, 16000)
	require.NoError(t, err)
	require.Equal(t, uint32(100), binary.LittleEndian.Uint32(wav[40:44]))
}

func TestWriteWAV_RejectsBadRate(t *testing.T) {
	_, err := WriteWAV(nil, 0)
	require.Error(t, err)
}

func TestDuration(t *testing.T) {
	require.InDelta(t, 1.0, Duration(make([]byte, 32000), 16000), 1e-9)
	require.InDelta(t, 0.5, Duration(make([]byte, 16000), 16000), 1e-9)
	require.Zero(t, Duration(make([]byte, 100), 0))
}
