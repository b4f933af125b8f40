package pipeline

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"vaani/internal/audio"
	"vaani/internal/media"
	"vaani/internal/transcript"
	"vaani/internal/whisper"
)

// Processor runs the full media-to-transcript flow: audio extraction,
// silence gate, engine transcription, and no-speech filtering.
type Processor struct {
	Extractor *media.Extractor
	Engine    whisper.Engine

	ModelPath     string
	Language      string
	InitialPrompt string

	// NoSpeechThreshold filters segments whose no-speech probability meets
	// or exceeds it. Zero or negative means "use the default"; a literal
	// zero threshold would drop every segment, so it is not honored.
	NoSpeechThreshold    float64
	SilenceGate          bool
	SilenceThresholdDBFS float64

	Logger *zap.Logger
}

func (p *Processor) Process(ctx context.Context, mediaPath string) (transcript.Result, error) {
	if _, err := os.Stat(mediaPath); err != nil {
		return transcript.Result{}, fmt.Errorf("media file not found: %w", err)
	}

	wavPath := mediaPath
	if !media.IsWAV(mediaPath) {
		extracted, err := p.Extractor.ExtractAudio(ctx, media.ExtractRequest{InputPath: mediaPath})
		if err != nil {
			return transcript.Result{}, err
		}
		defer func() {
			if err := os.Remove(extracted); err != nil {
				p.log().Warn("failed to remove extracted audio", zap.String("path", extracted), zap.Error(err))
			}
		}()
		wavPath = extracted
	}

	if p.gateSilent(wavPath) {
		return transcript.Result{Language: p.Language}, nil
	}

	result, err := p.Engine.Transcribe(ctx, whisper.Request{
		AudioPath:     wavPath,
		ModelPath:     p.ModelPath,
		Language:      p.Language,
		InitialPrompt: p.InitialPrompt,
	})
	if err != nil {
		return transcript.Result{}, err
	}

	threshold := p.NoSpeechThreshold
	if threshold <= 0 {
		threshold = transcript.DefaultNoSpeechThreshold
	}

	return result.DropNoSpeech(threshold), nil
}

func (p *Processor) gateSilent(wavPath string) bool {
	if !p.SilenceGate {
		return false
	}

	metrics, err := audio.Analyze(wavPath)
	if err != nil {
		p.log().Warn("silence gate analysis failed; continuing transcription",
			zap.String("audio", wavPath), zap.Error(err))
		return false
	}

	threshold := p.SilenceThresholdDBFS
	if threshold == 0 {
		threshold = audio.DefaultSilenceThresholdDBFS
	}

	if !metrics.SilentBelow(threshold) {
		return false
	}

	p.log().Info("audio considered silent; skipping transcription",
		zap.String("audio", wavPath),
		zap.Float64("rms_dbfs", metrics.RMSdBFS),
		zap.Float64("peak_dbfs", metrics.PeakdBFS),
		zap.Float64("threshold_dbfs", threshold))
	return true
}

func (p *Processor) log() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
