package whisper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vaani/internal/transcript"
)

// OpenAIEngine transcribes through the hosted Whisper API. Unlike the local
// engine it reports per-segment no-speech probabilities, so the silence
// filter operates on real values.
type OpenAIEngine struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIEngine(apiKey string, logger *zap.Logger) (*OpenAIEngine, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("OpenAI API key is required for the openai engine")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAIEngine{
		client: openai.NewClient(apiKey),
		model:  openai.Whisper1,
		logger: logger,
	}, nil
}

func (e *OpenAIEngine) Name() string {
	return "openai"
}

func (e *OpenAIEngine) Transcribe(ctx context.Context, req Request) (transcript.Result, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return transcript.Result{}, errors.New("audio path is required")
	}

	audioReq := openai.AudioRequest{
		Model:    e.model,
		FilePath: req.AudioPath,
		Prompt:   req.InitialPrompt,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if lang := strings.TrimSpace(req.Language); lang != "" && lang != "auto" {
		audioReq.Language = lang
	}

	started := time.Now()
	resp, err := e.client.CreateTranscription(ctx, audioReq)
	if err != nil {
		return transcript.Result{}, fmt.Errorf("openai transcription failed: %w", err)
	}
	e.logger.Debug("openai transcription finished",
		zap.Duration("elapsed", time.Since(started)),
		zap.String("language", resp.Language),
		zap.Int("segments", len(resp.Segments)))

	return mapAudioResponse(resp), nil
}

func mapAudioResponse(resp openai.AudioResponse) transcript.Result {
	result := transcript.Result{
		Language: resp.Language,
		Segments: make([]transcript.Segment, 0, len(resp.Segments)),
	}

	for i, seg := range resp.Segments {
		result.Segments = append(result.Segments, transcript.Segment{
			Index:        i + 1,
			StartMs:      secondsToMs(seg.Start),
			EndMs:        secondsToMs(seg.End),
			Text:         strings.TrimSpace(seg.Text),
			NoSpeechProb: seg.NoSpeechProb,
		})
	}

	return result
}

// secondsToMs converts fractional seconds without float drift on the
// millisecond boundary.
func secondsToMs(seconds float64) int64 {
	return decimal.NewFromFloat(seconds).Mul(decimal.NewFromInt(1000)).Round(0).IntPart()
}
