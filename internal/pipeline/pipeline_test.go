package pipeline

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vaani/internal/transcript"
	"vaani/internal/whisper"
)

type stubEngine struct {
	result transcript.Result
	err    error
	calls  int
	last   whisper.Request
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Transcribe(_ context.Context, req whisper.Request) (transcript.Result, error) {
	s.calls++
	s.last = req
	return s.result, s.err
}

func writeToneWAV(t *testing.T, dir string) string {
	t.Helper()

	samples := make([]int16, 16000)
	for i := range samples {
		samples[i] = int16(0.25 * 32767 * math.Sin(2*math.Pi*440*float64(i)/16000.0))
	}
	path := filepath.Join(dir, "tone.wav")
	require.NoError(t, os.WriteFile(path, makePCM16WAV(samples, 16000), 0o644))
	return path
}

func TestProcessTranscribesWAVDirectly(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{result: transcript.Result{
		Language: "hi",
		Segments: []transcript.Segment{
			{Index: 1, StartMs: 0, EndMs: 1000, Text: "नमस्ते"},
			{Index: 2, StartMs: 1000, EndMs: 2000, Text: "(silence)", NoSpeechProb: 0.95},
		},
	}}

	p := &Processor{
		Engine:      engine,
		Language:    "hi",
		ModelPath:   "/models/ggml-small.bin",
		SilenceGate: true,
	}

	wav := writeToneWAV(t, t.TempDir())
	result, err := p.Process(context.Background(), wav)
	require.NoError(t, err)
	require.Equal(t, 1, engine.calls)
	require.Equal(t, wav, engine.last.AudioPath)
	require.Equal(t, "hi", engine.last.Language)

	// High no-speech segments are filtered out.
	require.Len(t, result.Segments, 1)
	require.Equal(t, "नमस्ते", result.Segments[0].Text)
}

func TestProcessSkipsSilentAudio(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{}
	p := &Processor{Engine: engine, Language: "hi", SilenceGate: true}

	silent := filepath.Join(t.TempDir(), "silent.wav")
	require.NoError(t, os.WriteFile(silent, makePCM16WAV(make([]int16, 16000), 16000), 0o644))

	result, err := p.Process(context.Background(), silent)
	require.NoError(t, err)
	require.Zero(t, engine.calls)
	require.True(t, result.IsEmpty())
	require.Equal(t, "hi", result.Language)
}

func TestProcessGateDisabled(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{result: transcript.Result{Language: "hi"}}
	p := &Processor{Engine: engine, Language: "hi"}

	silent := filepath.Join(t.TempDir(), "silent.wav")
	require.NoError(t, os.WriteFile(silent, makePCM16WAV(make([]int16, 8000), 16000), 0o644))

	_, err := p.Process(context.Background(), silent)
	require.NoError(t, err)
	require.Equal(t, 1, engine.calls)
}

func TestProcessZeroThresholdUsesDefault(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{result: transcript.Result{
		Language: "hi",
		Segments: []transcript.Segment{
			{Index: 1, StartMs: 0, EndMs: 1000, Text: "नमस्ते", NoSpeechProb: 0.5},
			{Index: 2, StartMs: 1000, EndMs: 2000, Text: "(silence)", NoSpeechProb: 0.95},
		},
	}}
	p := &Processor{Engine: engine, Language: "hi", NoSpeechThreshold: 0}

	wav := writeToneWAV(t, t.TempDir())
	result, err := p.Process(context.Background(), wav)
	require.NoError(t, err)

	// 0 means unset, so the 0.6 default applies instead of dropping all.
	require.Len(t, result.Segments, 1)
	require.Equal(t, "नमस्ते", result.Segments[0].Text)
}

func TestProcessMissingMedia(t *testing.T) {
	t.Parallel()

	p := &Processor{Engine: &stubEngine{}}
	_, err := p.Process(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	require.Error(t, err)
}

func TestProcessPassesPromptThrough(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{}
	p := &Processor{
		Engine:        engine,
		Language:      "hi",
		InitialPrompt: "यह एक बातचीत है।",
	}

	wav := writeToneWAV(t, t.TempDir())
	_, err := p.Process(context.Background(), wav)
	require.NoError(t, err)
	require.Equal(t, "यह एक बातचीत है।", engine.last.InitialPrompt)
}

func makePCM16WAV(samples []int16, sampleRate int) []byte {
	dataSize := len(samples) * 2
	out := make([]byte, 44+dataSize)

	copy(out, "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], 1)
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(out[32:], 2)
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))

	for i, sample := range samples {
		binary.LittleEndian.PutUint16(out[44+i*2:], uint16(sample))
	}

	return out
}
