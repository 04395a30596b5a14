// Package httpapi exposes the upload intake and search over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/karmanotes/pipeline/internal/core/ports/driving"
)

// Server is the HTTP API. Uploads are acknowledged with 202 as soon as
// the record is stored; conversion happens in the background.
type Server struct {
	engine *gin.Engine
	intake driving.IntakeService
	search driving.SearchService
	srv    *http.Server
}

// NewServer creates the API server around the intake and search
// services.
func NewServer(intake driving.IntakeService, search driving.SearchService) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine: engine,
		intake: intake,
		search: search,
	}
	s.routes()
	return s
}

// Handler returns the underlying handler, for tests and custom servers.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves the API on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, draining in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) routes() {
	s.engine.GET("/healthcheck", s.handleHealthcheck)

	api := s.engine.Group("/api")
	api.POST("/upload", s.handleUpload)
	api.POST("/documents/:id/convert", s.handleConvert)
	api.GET("/search", s.handleSearch)
}
