package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vaani/internal/media"
)

func newExtractCmd(app *appState) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "extract <media-file>",
		Short: "Extract a mono 16 kHz WAV audio track from a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extractFn := app.extractFn
			if extractFn == nil {
				extractFn = app.extractAudio
			}

			outPath, err := extractFn(cmd.Context(), filepath.Clean(args[0]), outputFlag)
			if err != nil {
				return err
			}

			fmt.Fprintln(app.outWriter(), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output WAV path; defaults to <media-stem>.wav next to the input")
	return cmd
}

func (a *appState) extractAudio(ctx context.Context, inputPath, outputPath string) (string, error) {
	if outputPath == "" {
		stem := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		outputPath = stem + ".wav"
	}

	return a.extractor().ExtractAudio(ctx, media.ExtractRequest{
		InputPath:  inputPath,
		OutputPath: outputPath,
	})
}
