package server

import (
	"context"
	"os"

	"go.uber.org/zap"

	"vaani/internal/store"
)

// enqueue runs the transcription job in the background. The request only
// registers the record; clients poll GET /api/v1/transcriptions/:id.
func (s *Server) enqueue(rec store.Record) {
	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		s.process(rec)
	}()
}

func (s *Server) process(rec store.Record) {
	ctx := context.Background()
	log := s.logger.With(zap.String("id", rec.ID), zap.String("name", rec.Name))

	if err := s.repo.SetStatus(ctx, rec.ID, store.StatusProcessing); err != nil {
		log.Error("mark processing", zap.Error(err))
		return
	}

	// Per-upload language override on a copy of the shared processor.
	proc := *s.proc
	if rec.Language != "" {
		proc.Language = rec.Language
	}

	result, err := proc.Process(ctx, rec.MediaPath)
	if err != nil {
		log.Warn("transcription failed", zap.Error(err))
		if markErr := s.repo.MarkFailed(ctx, rec.ID, err.Error()); markErr != nil {
			log.Error("mark failed", zap.Error(markErr))
		}
		return
	}

	var durationMs int64
	if info, err := proc.Extractor.Probe(ctx, rec.MediaPath); err == nil {
		durationMs = info.Duration.Milliseconds()
	} else {
		log.Debug("probe duration", zap.Error(err))
	}

	if err := s.repo.SaveResult(ctx, rec.ID, result, durationMs); err != nil {
		log.Error("save result", zap.Error(err))
		if markErr := s.repo.MarkFailed(ctx, rec.ID, "failed to persist transcript"); markErr != nil {
			log.Error("mark failed", zap.Error(markErr))
		}
		return
	}

	if err := os.Remove(rec.MediaPath); err != nil {
		log.Debug("remove uploaded media", zap.Error(err))
	}

	log.Info("transcription completed", zap.Int("segments", len(result.Segments)))
}
