package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vaani/internal/whisper"
)

func newSetupCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Check external tools and pre-download the transcription model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := app.outWriter()

			if app.extractor().Available() {
				fmt.Fprintln(out, "ffmpeg: ok")
			} else {
				fmt.Fprintln(out, "ffmpeg: NOT FOUND (install ffmpeg to transcribe non-WAV media)")
			}

			engine, err := whisper.NewLocalEngine(app.log())
			switch {
			case err == nil:
				fmt.Fprintf(out, "whisper-cli: ok (%s)\n", engine.Executable)
			case errors.Is(err, whisper.ErrLocalEngineNotFound):
				fmt.Fprintln(out, "whisper-cli: NOT FOUND")
				if os.Getenv("OPENAI_API_KEY") != "" {
					fmt.Fprintln(out, "openai engine: available via OPENAI_API_KEY")
					return nil
				}
				return err
			default:
				return err
			}

			model, err := app.ensureModelAvailable(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "model: ok (%s)\n", model.Path)

			return nil
		},
	}

	bindModelFlags(cmd, app)
	return cmd
}
