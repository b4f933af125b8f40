package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vaani/internal/store"
	"vaani/internal/transcript"
)

func respondOK(c *gin.Context, status int, data gin.H) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondErr(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func (s *Server) health(c *gin.Context) {
	respondOK(c, http.StatusOK, gin.H{
		"ffmpeg": s.proc.Extractor.Available(),
		"engine": s.proc.Engine.Name(),
	})
}

func (s *Server) createTranscription(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondErr(c, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}

	if s.cfg.MaxUploadBytes > 0 && file.Size > s.cfg.MaxUploadBytes {
		respondErr(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("upload exceeds limit of %d bytes", s.cfg.MaxUploadBytes))
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		base := filepath.Base(file.Filename)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	language := strings.TrimSpace(c.DefaultPostForm("language", s.proc.Language))

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		s.logger.Error("create upload dir", zap.Error(err))
		respondErr(c, http.StatusInternalServerError, "failed to store upload")
		return
	}

	id := uuid.NewString()
	mediaPath := filepath.Join(s.uploadDir, id+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, mediaPath); err != nil {
		s.logger.Error("save upload", zap.Error(err))
		respondErr(c, http.StatusInternalServerError, "failed to store upload")
		return
	}

	hash, err := hashFile(mediaPath)
	if err != nil {
		_ = os.Remove(mediaPath)
		s.logger.Error("hash upload", zap.Error(err))
		respondErr(c, http.StatusInternalServerError, "failed to hash upload")
		return
	}

	if existing, err := s.repo.GetByHash(c.Request.Context(), hash); err == nil {
		_ = os.Remove(mediaPath)
		respondOK(c, http.StatusOK, gin.H{"transcription": existing, "deduplicated": true})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		_ = os.Remove(mediaPath)
		s.logger.Error("dedupe lookup", zap.Error(err))
		respondErr(c, http.StatusInternalServerError, "failed to check for existing transcription")
		return
	}

	rec := store.Record{
		ID:        id,
		Name:      name,
		Hash:      hash,
		Status:    store.StatusPending,
		Language:  language,
		MediaPath: mediaPath,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(c.Request.Context(), rec); err != nil {
		_ = os.Remove(mediaPath)
		// A concurrent upload of the same content can slip past the
		// GetByHash check and lose the insert race on blake3_hash.
		if errors.Is(err, store.ErrDuplicateHash) {
			if existing, lookupErr := s.repo.GetByHash(c.Request.Context(), hash); lookupErr == nil {
				respondOK(c, http.StatusOK, gin.H{"transcription": existing, "deduplicated": true})
				return
			}
		}
		s.logger.Error("persist transcription", zap.Error(err))
		respondErr(c, http.StatusInternalServerError, "failed to persist transcription")
		return
	}

	s.enqueue(rec)
	respondOK(c, http.StatusAccepted, gin.H{"transcription": rec, "deduplicated": false})
}

func (s *Server) listTranscriptions(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	records, err := s.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.logger.Error("list transcriptions", zap.Error(err))
		respondErr(c, http.StatusInternalServerError, "failed to list transcriptions")
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"items":  records,
		"limit":  limit,
		"offset": offset,
		"count":  len(records),
	})
}

func (s *Server) getTranscription(c *gin.Context) {
	rec, result, ok := s.loadRecord(c)
	if !ok {
		return
	}

	data := gin.H{"transcription": rec}
	if rec.Status == store.StatusCompleted {
		data["segments"] = result.Segments
		data["full_text"] = result.FullText()
	}

	respondOK(c, http.StatusOK, data)
}

func (s *Server) exportTranscription(c *gin.Context) {
	rec, result, ok := s.loadRecord(c)
	if !ok {
		return
	}
	if rec.Status != store.StatusCompleted {
		respondErr(c, http.StatusConflict, fmt.Sprintf("transcription is %s, not completed", rec.Status))
		return
	}

	format, err := transcript.ParseFormat(c.DefaultQuery("format", "json"))
	if err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	rendered, err := transcript.Render(result, format, time.Now())
	if err != nil {
		s.logger.Error("render transcript", zap.Error(err))
		respondErr(c, http.StatusInternalServerError, "failed to render transcript")
		return
	}

	contentType := "text/plain; charset=utf-8"
	if format == transcript.FormatJSON {
		contentType = "application/json; charset=utf-8"
	}

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", rec.Name+format.Extension()))
	c.Data(http.StatusOK, contentType, []byte(rendered))
}

func (s *Server) loadRecord(c *gin.Context) (store.Record, transcript.Result, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		respondErr(c, http.StatusBadRequest, "invalid transcription id")
		return store.Record{}, transcript.Result{}, false
	}

	rec, err := s.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondErr(c, http.StatusNotFound, "transcription not found")
		return store.Record{}, transcript.Result{}, false
	}
	if err != nil {
		s.logger.Error("load transcription", zap.Error(err))
		respondErr(c, http.StatusInternalServerError, "failed to load transcription")
		return store.Record{}, transcript.Result{}, false
	}

	var result transcript.Result
	if rec.Status == store.StatusCompleted {
		result, err = s.repo.Result(c.Request.Context(), rec.ID)
		if err != nil {
			s.logger.Error("load transcript segments", zap.Error(err))
			respondErr(c, http.StatusInternalServerError, "failed to load transcript segments")
			return store.Record{}, transcript.Result{}, false
		}
	}

	return rec, result, true
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload for hashing: %w", err)
	}
	defer f.Close()

	return store.HashReader(f)
}
