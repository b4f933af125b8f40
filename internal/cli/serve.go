package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vaani/internal/config"
	"vaani/internal/platform"
	"vaani/internal/server"
	"vaani/internal/store"
)

func newServeCmd(app *appState) *cobra.Command {
	var portFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the transcription HTTP backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if portFlag != "" {
				cfg.Port = portFlag
			}

			// Flags win over environment; env fills in whatever the
			// user did not pass explicitly.
			if !cmd.Flags().Changed("engine") {
				app.engine = cfg.Engine
			}
			if !cmd.Flags().Changed("model") {
				app.model = cfg.Model
			}
			if !cmd.Flags().Changed("language") {
				app.language = sanitizeLanguage(cfg.Language)
			}
			if !cmd.Flags().Changed("prompt") {
				app.prompt = cfg.InitialPrompt
			}
			if !cmd.Flags().Changed("no-speech-threshold") {
				app.noSpeechThreshold = cfg.NoSpeechThreshold
			}
			if !cmd.Flags().Changed("silence-threshold-dbfs") {
				app.silenceDBFS = cfg.SilenceThresholdDBFS
			}

			proc, err := app.buildProcessor(cmd.Context())
			if err != nil {
				return err
			}
			if !proc.Extractor.Available() {
				app.log().Warn("ffmpeg not found in PATH; only WAV uploads will transcribe")
			}

			uploadDir, err := platform.ResolveUploadDir(cfg.DataDir)
			if err != nil {
				return err
			}

			dbPath := cfg.DBPath
			if dbPath == "" {
				dataDir := filepath.Dir(uploadDir)
				dbPath = filepath.Join(dataDir, "vaani.db")
			}

			db, err := store.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open store at %s: %w", dbPath, err)
			}
			defer db.Close()

			app.log().Info("starting backend",
				zap.String("port", cfg.Port),
				zap.String("db", dbPath),
				zap.String("engine", proc.Engine.Name()),
				zap.String("language", app.language))

			srv := server.New(cfg, store.NewRepo(db), proc, uploadDir, app.log())
			return srv.Run()
		},
	}

	cmd.Flags().StringVar(&portFlag, "port", "", "Listen port (overrides VAANI_PORT)")
	bindModelFlags(cmd, app)
	bindTranscriptionFlags(cmd, app)
	return cmd
}
