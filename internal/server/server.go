package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vaani/internal/config"
	"vaani/internal/pipeline"
	"vaani/internal/store"
)

type Server struct {
	cfg       config.Config
	repo      *store.Repo
	proc      *pipeline.Processor
	uploadDir string
	logger    *zap.Logger

	router *gin.Engine
	jobs   sync.WaitGroup
}

func New(cfg config.Config, repo *store.Repo, proc *pipeline.Processor, uploadDir string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:       cfg,
		repo:      repo,
		proc:      proc,
		uploadDir: uploadDir,
		logger:    logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = 32 << 20

	router.GET("/healthz", s.health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/transcriptions", s.createTranscription)
		v1.GET("/transcriptions", s.listTranscriptions)
		v1.GET("/transcriptions/:id", s.getTranscription)
		v1.GET("/transcriptions/:id/export", s.exportTranscription)
	}

	s.router = router
	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

// Wait blocks until all in-flight transcription jobs have finished.
func (s *Server) Wait() {
	s.jobs.Wait()
}

// Run serves until SIGINT/SIGTERM, then drains in-flight jobs.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("backend listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down, draining transcription jobs")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("http shutdown", zap.Error(err))
	}

	s.jobs.Wait()
	return nil
}
