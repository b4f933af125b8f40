package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vaani/internal/transcript"
)

func newTranscribeCmd(app *appState) *cobra.Command {
	var (
		formatFlag string
		outputFlag string
	)

	cmd := &cobra.Command{
		Use:   "transcribe <media-file>",
		Short: "Extract audio from a media file and transcribe it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaPath := filepath.Clean(args[0])

			processFn := app.processFn
			if processFn == nil {
				processFn = app.processMedia
			}

			result, err := processFn(cmd.Context(), mediaPath)
			if err != nil {
				return err
			}

			if result.IsEmpty() {
				app.log().Warn("no speech detected in media; transcript is empty")
			}

			if strings.EqualFold(formatFlag, "all") {
				return app.writeAllFormats(result, mediaPath, outputFlag)
			}

			format, err := transcript.ParseFormat(formatFlag)
			if err != nil {
				return err
			}

			rendered, err := transcript.Render(result, format, app.now())
			if err != nil {
				return err
			}

			if outputFlag == "" {
				fmt.Fprintln(app.outWriter(), rendered)
				return nil
			}

			return app.writeOutput(outputFlag, rendered)
		},
	}

	bindModelFlags(cmd, app)
	bindTranscriptionFlags(cmd, app)
	cmd.Flags().StringVar(&formatFlag, "format", "txt", "Output format: json|srt|txt|all")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file (or directory with --format all); stdout when omitted")
	return cmd
}

func (a *appState) processMedia(ctx context.Context, mediaPath string) (transcript.Result, error) {
	proc, err := a.buildProcessor(ctx)
	if err != nil {
		return transcript.Result{}, err
	}

	a.log().Info("transcribing...",
		zap.String("media", mediaPath),
		zap.String("engine", proc.Engine.Name()),
		zap.String("language", a.language))

	stopSpinner := startSpinner(a.progressEnabled(), "Transcribing")
	started := time.Now()
	result, err := proc.Process(ctx, mediaPath)
	stopSpinner()
	if err != nil {
		a.log().Warn("transcription failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return transcript.Result{}, err
	}

	a.log().Info("transcription finished",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("segments", len(result.Segments)))
	return result, nil
}

// writeAllFormats mirrors the batch behavior: one file per format named
// after the media stem.
func (a *appState) writeAllFormats(result transcript.Result, mediaPath, outputDir string) error {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	for _, format := range transcript.Formats() {
		rendered, err := transcript.Render(result, format, a.now())
		if err != nil {
			return err
		}

		outPath := filepath.Join(outputDir, stem+format.Extension())
		if err := os.WriteFile(outPath, []byte(rendered+"\n"), 0o644); err != nil {
			return fmt.Errorf("write %s output: %w", format, err)
		}
		fmt.Fprintln(a.outWriter(), outPath)
	}

	return nil
}

func (a *appState) writeOutput(path, rendered string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(rendered+"\n"), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintln(a.outWriter(), path)
	return nil
}
