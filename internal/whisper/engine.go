package whisper

import (
	"context"

	"vaani/internal/transcript"
)

// DefaultLanguage forces Hindi decoding unless the caller overrides it.
const DefaultLanguage = "hi"

type Request struct {
	AudioPath     string
	ModelPath     string
	Language      string
	InitialPrompt string
}

type Engine interface {
	Name() string
	Transcribe(ctx context.Context, req Request) (transcript.Result, error)
}
