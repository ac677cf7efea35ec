// Package server exposes the pipeline over HTTP. Validation failures are
// answered before any generation call; pipeline failures surface with the
// underlying message for operator visibility.
package server

import (
	"github.com/gin-gonic/gin"

	"vantage/internal/cache/results"
	"vantage/internal/objstore"
	"vantage/internal/pipeline"
	"vantage/internal/profilestore"
	"vantage/internal/session"
)

// Server wires the HTTP surface to the pipeline and its stores. Archive may
// be nil when object storage is not configured.
type Server struct {
	pipe     *pipeline.Pipeline
	sessions *session.Store
	cache    *results.DiskStore
	profiles *profilestore.Store
	archive  *objstore.S3Store
	progress *ProgressHub
}

func New(pipe *pipeline.Pipeline, sessions *session.Store, cache *results.DiskStore, profiles *profilestore.Store, archive *objstore.S3Store) *Server {
	return &Server{
		pipe:     pipe,
		sessions: sessions,
		cache:    cache,
		profiles: profiles,
		archive:  archive,
		progress: NewProgressHub(),
	}
}

// Router builds the gin engine with all API routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		api.GET("/health", s.handleHealth)

		api.POST("/syllabus/upload", s.handleUpload)
		api.POST("/syllabus/translate", s.handleTranslate)
		api.GET("/syllabus/:id/progress", s.handleProgress)
		api.GET("/syllabus/:id/document", s.handleOriginalDocument)

		api.GET("/cap", s.handleCAPQuestions)
		api.POST("/cap", s.handleCAPSubmit)
	}

	return r
}
