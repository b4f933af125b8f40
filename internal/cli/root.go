package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"vaani/internal/audio"
	"vaani/internal/logging"
	"vaani/internal/media"
	"vaani/internal/transcript"
	"vaani/internal/version"
	"vaani/internal/whisper"
)

type appState struct {
	verbose    bool
	jsonLogs   bool
	noProgress bool

	model        string
	modelDir     string
	language     string
	prompt       string
	engine       string
	autoDownload bool

	noSpeechThreshold float64
	silenceGate       bool
	silenceDBFS       float64

	logger *zap.Logger
	now    func() time.Time
	out    io.Writer

	processFn func(ctx context.Context, mediaPath string) (transcript.Result, error)
	extractFn func(ctx context.Context, inputPath, outputPath string) (string, error)
}

func NewRootCmd() *cobra.Command {
	app := &appState{
		model:             whisper.DefaultModel,
		language:          whisper.DefaultLanguage,
		engine:            "auto",
		autoDownload:      true,
		noSpeechThreshold: transcript.DefaultNoSpeechThreshold,
		silenceGate:       true,
		silenceDBFS:       audio.DefaultSilenceThresholdDBFS,
		now:               time.Now,
		out:               os.Stdout,
	}

	cmd := &cobra.Command{
		Use:           "vaani",
		Short:         "Turn video and audio media into Hindi transcripts with FFmpeg and Whisper",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := logging.New(app.verbose, app.jsonLogs)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.logger = logger
			app.language = sanitizeLanguage(app.language)
			return nil
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)

	cmd.AddCommand(newTranscribeCmd(app))
	cmd.AddCommand(newExtractCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newModelsCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.PersistentFlags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.PersistentFlags().BoolVar(&app.jsonLogs, "json-logs", app.jsonLogs, "Enable JSON logging")
}

func bindProgressFlag(cmd *cobra.Command, app *appState) {
	cmd.PersistentFlags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
}

func bindModelFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.model, "model", app.model, "Model name or ggml model file path")
	cmd.Flags().StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where models are stored")
	cmd.Flags().BoolVar(&app.autoDownload, "auto-download", app.autoDownload, "Automatically download missing models")
}

func bindTranscriptionFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.language, "language", app.language, "Language code for transcription (hi|auto|en|...)")
	cmd.Flags().StringVar(&app.prompt, "prompt", app.prompt, "Initial prompt steering the transcription vocabulary")
	cmd.Flags().StringVar(&app.engine, "engine", app.engine, "Transcription engine: auto|local|openai")
	cmd.Flags().Float64Var(&app.noSpeechThreshold, "no-speech-threshold", app.noSpeechThreshold, "Drop segments with no-speech probability at or above this value (0 uses the default)")
	cmd.Flags().BoolVar(&app.silenceGate, "silence-gate", app.silenceGate, "Detect near-silent audio and skip transcription")
	cmd.Flags().Float64Var(&app.silenceDBFS, "silence-threshold-dbfs", app.silenceDBFS, "Silence gate threshold in dBFS")
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) extractor() *media.Extractor {
	return media.NewExtractor(a.log())
}

func sanitizeLanguage(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	if trimmed == "" {
		return whisper.DefaultLanguage
	}
	return trimmed
}
