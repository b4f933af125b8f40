package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"vaani/internal/platform"
	"vaani/internal/whisper"
)

func newModelsCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List known Whisper models and their local download state",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			modelDir, err := platform.ResolveModelDir(app.modelDir)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(app.outWriter(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFILE\tSTATE")
			for _, name := range whisper.ModelNames() {
				model, _ := whisper.LookupModel(name)
				state := "not downloaded"
				if _, err := os.Stat(filepath.Join(modelDir, model.FileName)); err == nil {
					state = "downloaded"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", model.Name, model.FileName, state)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where models are stored")
	return cmd
}
