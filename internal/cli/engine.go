package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"vaani/internal/download"
	"vaani/internal/pipeline"
	"vaani/internal/platform"
	"vaani/internal/whisper"
)

// buildProcessor assembles the extraction-and-transcription pipeline from
// the selected engine and flags.
func (a *appState) buildProcessor(ctx context.Context) (*pipeline.Processor, error) {
	engine, modelPath, err := a.resolveEngine(ctx)
	if err != nil {
		return nil, err
	}

	return &pipeline.Processor{
		Extractor:            a.extractor(),
		Engine:               engine,
		ModelPath:            modelPath,
		Language:             a.language,
		InitialPrompt:        a.prompt,
		NoSpeechThreshold:    a.noSpeechThreshold,
		SilenceGate:          a.silenceGate,
		SilenceThresholdDBFS: a.silenceDBFS,
		Logger:               a.log(),
	}, nil
}

func (a *appState) resolveEngine(ctx context.Context) (whisper.Engine, string, error) {
	switch a.engine {
	case "local":
		return a.localEngine(ctx)
	case "openai":
		engine, err := whisper.NewOpenAIEngine(os.Getenv("OPENAI_API_KEY"), a.log())
		return engine, "", err
	case "", "auto":
		engine, modelPath, err := a.localEngine(ctx)
		if err == nil {
			return engine, modelPath, nil
		}
		if errors.Is(err, whisper.ErrLocalEngineNotFound) && os.Getenv("OPENAI_API_KEY") != "" {
			a.log().Info("whisper-cli not found, falling back to the OpenAI engine")
			remote, remoteErr := whisper.NewOpenAIEngine(os.Getenv("OPENAI_API_KEY"), a.log())
			return remote, "", remoteErr
		}
		return nil, "", err
	default:
		return nil, "", fmt.Errorf("unknown engine %q (supported: auto, local, openai)", a.engine)
	}
}

func (a *appState) localEngine(ctx context.Context) (whisper.Engine, string, error) {
	engine, err := whisper.NewLocalEngine(a.log())
	if err != nil {
		return nil, "", err
	}

	model, err := a.ensureModelAvailable(ctx)
	if err != nil {
		return nil, "", err
	}

	return engine, model.Path, nil
}

func (a *appState) modelStorageDir() (string, error) {
	dir, err := platform.ResolveModelDir(a.modelDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) ensureModelAvailable(ctx context.Context) (whisper.ResolvedModel, error) {
	modelDir, err := a.modelStorageDir()
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	resolved, err := whisper.ResolveModel(a.model, modelDir)
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	if !resolved.NeedsDownload {
		return resolved, nil
	}

	if !a.autoDownload {
		return whisper.ResolvedModel{}, fmt.Errorf("model %q is missing at %s; run `vaani setup --model %s` or use --auto-download=true", resolved.Name, resolved.Path, resolved.Name)
	}

	a.log().Info("model not found, downloading", zap.String("model", resolved.Name), zap.String("destination", resolved.Path))
	if err := download.Fetch(ctx, download.Options{
		URL:            resolved.URL,
		Destination:    resolved.Path,
		ExpectedSHA256: resolved.SHA256,
		NoProgress:     a.noProgress,
		Logger:         a.log(),
	}); err != nil {
		return whisper.ResolvedModel{}, fmt.Errorf("download model %q: %w", resolved.Name, err)
	}

	resolved.NeedsDownload = false
	return resolved, nil
}
