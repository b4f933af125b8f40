package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Extraction defaults match what Whisper models expect as input.
const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1
)

var ErrFFmpegNotFound = errors.New("ffmpeg not found in PATH")

type Extractor struct {
	FFmpegPath  string
	FFprobePath string
	Logger      *zap.Logger
}

type ExtractRequest struct {
	InputPath  string
	OutputPath string
	SampleRate int
	Channels   int
}

type ProbeInfo struct {
	Duration time.Duration
}

func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe", Logger: logger}
}

func (e *Extractor) Available() bool {
	_, err := exec.LookPath(e.FFmpegPath)
	return err == nil
}

// ExtractAudio demuxes the audio track of a media file into a mono PCM WAV
// at the target sample rate and returns the output path.
func (e *Extractor) ExtractAudio(ctx context.Context, req ExtractRequest) (string, error) {
	if strings.TrimSpace(req.InputPath) == "" {
		return "", errors.New("input path is required")
	}
	if _, err := os.Stat(req.InputPath); err != nil {
		return "", fmt.Errorf("input media not found: %w", err)
	}
	if !e.Available() {
		return "", ErrFFmpegNotFound
	}

	outputPath := req.OutputPath
	if strings.TrimSpace(outputPath) == "" {
		outputPath = filepath.Join(os.TempDir(), fmt.Sprintf("vaani-extract-%d.wav", time.Now().UnixNano()))
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("create extraction directory: %w", err)
	}

	args := ExtractArgs(req.InputPath, outputPath, req.SampleRate, req.Channels)

	cmd := exec.CommandContext(ctx, e.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.Logger.Debug("running ffmpeg", zap.Strings("args", args))
	started := time.Now()
	if err := cmd.Run(); err != nil {
		_ = os.Remove(outputPath)
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("ffmpeg audio extraction failed: %w (%s)", err, detail)
		}
		return "", fmt.Errorf("ffmpeg audio extraction failed: %w", err)
	}
	e.Logger.Debug("ffmpeg finished", zap.Duration("elapsed", time.Since(started)), zap.String("output", outputPath))

	return outputPath, nil
}

// ExtractArgs builds the ffmpeg argument list for audio extraction.
func ExtractArgs(inputPath, outputPath string, sampleRate, channels int) []string {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if channels <= 0 {
		channels = DefaultChannels
	}

	return []string{
		"-nostdin", "-hide_banner", "-loglevel", "error",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", "pcm_s16le",
		outputPath,
	}
}

// Probe reports container-level metadata via ffprobe.
func (e *Extractor) Probe(ctx context.Context, path string) (ProbeInfo, error) {
	if _, err := exec.LookPath(e.FFprobePath); err != nil {
		return ProbeInfo{}, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed != "" {
			return ProbeInfo{}, fmt.Errorf("ffprobe failed: %w (%s)", err, trimmed)
		}
		return ProbeInfo{}, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbeOutput(string(out))
}

func parseProbeOutput(out string) (ProbeInfo, error) {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" || strings.EqualFold(trimmed, "N/A") {
		return ProbeInfo{}, errors.New("ffprobe reported no duration")
	}

	seconds, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return ProbeInfo{}, fmt.Errorf("parse ffprobe duration %q: %w", trimmed, err)
	}

	return ProbeInfo{Duration: time.Duration(seconds * float64(time.Second))}, nil
}

// IsWAV reports whether the file already looks like a WAV container, in
// which case extraction can be skipped.
func IsWAV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav")
}
