package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vantage/internal/cap"
	"vantage/internal/objstore"
	"vantage/internal/pdftext"
	"vantage/internal/pipeline"
	"vantage/internal/types"
)

// Uploaded text shorter than this cannot be a real syllabus.
const minUploadTextLen = 100

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

func errorBody(code, message string) gin.H {
	return gin.H{"error": true, "code": code, "message": message}
}

// handleUpload accepts a multipart PDF, extracts its text, stores the
// document in the session, and archives the original when object storage is
// configured.
func (s *Server) handleUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", `No file provided. Include a "file" field in the form data.`))
		return
	}
	defer file.Close()

	filename := header.Filename
	if filename == "" {
		filename = "upload.pdf"
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", "Only PDF files are accepted. Got: "+filename))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("UPLOAD_FAILED", "Failed to read upload: "+err.Error()))
		return
	}

	rawText, err := pdftext.Extract(data)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorBody("UPLOAD_FAILED", "PDF text extraction failed: "+err.Error()))
		return
	}
	if len(strings.TrimSpace(rawText)) < minUploadTextLen {
		c.JSON(http.StatusUnprocessableEntity, errorBody("VALIDATION_ERROR", "PDF text is too short (under 100 characters). Please upload a complete syllabus."))
		return
	}

	syllabusID := uuid.NewString()
	s.sessions.Put(syllabusID, types.Document{
		RawText:    rawText,
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
	})

	if s.archive != nil {
		// Archival is best-effort; the pipeline only needs the session copy.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := s.archive.Put(ctx, syllabusID, filename, data, "application/pdf"); err != nil {
				slog.Warn("archive upload failed", "syllabusId", syllabusID, "error", err)
			}
		}()
	}

	c.JSON(http.StatusOK, gin.H{
		"syllabusId": syllabusID,
		"filename":   filename,
		"wordCount":  pdftext.WordCount(rawText),
	})
}

type translateRequest struct {
	SyllabusID string            `json:"syllabusId"`
	CAPProfile *types.CAPProfile `json:"capProfile"`
	SessionID  string            `json:"sessionId"`
}

// handleTranslate runs the two-pass pipeline for an uploaded document, or
// serves a cached result. ?syllabusName=<name> serves pre-cached demo entries
// without a session.
func (s *Server) handleTranslate(c *gin.Context) {
	if name := strings.TrimSpace(c.Query("syllabusName")); name != "" {
		if cached, ok := s.cache.Read(name); ok {
			c.JSON(http.StatusOK, applyHorizon(c, cached))
			return
		}
		c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "No cached syllabus named "+name))
		return
	}

	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", "Invalid JSON body: "+err.Error()))
		return
	}
	if strings.TrimSpace(req.SyllabusID) == "" {
		c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", "syllabusId is required"))
		return
	}

	// Replay-safe: a completed run is served from cache as-is.
	if cached, ok := s.cache.Read(req.SyllabusID); ok {
		c.JSON(http.StatusOK, applyHorizon(c, cached))
		return
	}

	doc, ok := s.sessions.Get(req.SyllabusID)
	if !ok {
		c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "Unknown syllabusId. Upload the document first."))
		return
	}

	profile := types.DefaultCAPProfile()
	switch {
	case req.CAPProfile != nil:
		profile = *req.CAPProfile
	case strings.TrimSpace(req.SessionID) != "":
		if p, err := s.profiles.Get(c.Request.Context(), req.SessionID); err == nil {
			profile = p
		}
	}

	ctx := withProgress(c.Request.Context(), s.progress, req.SyllabusID)
	result, err := s.pipe.Run(ctx, doc.RawText, profile)
	if err != nil {
		s.progress.Publish(req.SyllabusID, "error", err.Error())
		if errors.Is(err, pipeline.ErrInputTooShort) {
			c.JSON(http.StatusUnprocessableEntity, errorBody("VALIDATION_ERROR", err.Error()))
			return
		}
		slog.Error("pipeline failed", "syllabusId", req.SyllabusID, "error", err)
		c.JSON(http.StatusBadGateway, errorBody("AI_PIPELINE_ERROR", err.Error()))
		return
	}
	s.progress.Publish(req.SyllabusID, "done", "")

	if err := s.cache.Write(req.SyllabusID, result); err != nil {
		// Caching is write-through convenience; the run already succeeded.
		slog.Warn("result cache write failed", "syllabusId", req.SyllabusID, "error", err)
	}

	c.JSON(http.StatusOK, applyHorizon(c, result))
}

// applyHorizon narrows the task list to ?horizon=24h|72h|1week|2weeks when
// the caller asks for it. The full result stays cached; filtering only shapes
// this response.
func applyHorizon(c *gin.Context, result *types.PipelineResult) *types.PipelineResult {
	horizon := strings.TrimSpace(c.Query("horizon"))
	if horizon == "" {
		return result
	}
	filtered := *result
	filtered.Tasks = pipeline.FilterByHorizon(result.Tasks, horizon, time.Now())
	return &filtered
}

// handleOriginalDocument serves the archived upload for a syllabus id. Only
// available when object storage is configured; the session copy holds text,
// not the original bytes.
func (s *Server) handleOriginalDocument(c *gin.Context) {
	if s.archive == nil {
		c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "Document archival is not enabled."))
		return
	}
	syllabusID := c.Param("id")

	key, err := s.archive.FindKey(c.Request.Context(), syllabusID)
	if errors.Is(err, objstore.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "No archived document for this syllabusId."))
		return
	}
	if err != nil {
		slog.Error("archive lookup failed", "syllabusId", syllabusID, "error", err)
		c.JSON(http.StatusBadGateway, errorBody("STORE_ERROR", "Archive lookup failed."))
		return
	}

	data, err := s.archive.Get(c.Request.Context(), key)
	if err != nil {
		slog.Error("archive fetch failed", "key", key, "error", err)
		c.JSON(http.StatusBadGateway, errorBody("STORE_ERROR", "Archive fetch failed."))
		return
	}

	filename := key[strings.LastIndex(key, "/")+1:]
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (s *Server) handleCAPQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": cap.Questions})
}

type capSubmitRequest struct {
	Answers []cap.Answer `json:"answers"`
}

// handleCAPSubmit builds a profile from onboarding answers and stores it
// under a fresh session id.
func (s *Server) handleCAPSubmit(c *gin.Context) {
	var req capSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("VALIDATION_ERROR", "Invalid JSON body: "+err.Error()))
		return
	}

	profile := cap.Build(req.Answers, time.Now())
	sessionID := uuid.NewString()
	if err := s.profiles.Save(c.Request.Context(), sessionID, profile); err != nil {
		slog.Error("profile save failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorBody("STORE_ERROR", "Failed to save profile."))
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "capProfile": profile})
}
