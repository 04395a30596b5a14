package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/karmanotes/pipeline/internal/core/domain"
	"github.com/karmanotes/pipeline/internal/core/ports/driving"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// uploadRequest is the upload intake payload.
type uploadRequest struct {
	CourseID  string   `json:"course_id" binding:"required"`
	Name      string   `json:"name" binding:"required"`
	SourceURL string   `json:"source_url" binding:"required"`
	MIMEType  string   `json:"mime_type" binding:"required"`
	Tags      []string `json:"tags"`
	LicenseID string   `json:"license_id"`
}

// uploadResponse acknowledges an accepted upload.
type uploadResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
	Slug  string `json:"slug"`
}

func (s *Server) handleHealthcheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleUpload accepts an upload and queues its conversion. The 202
// acknowledges intake only; the note appears once conversion finishes.
func (s *Server) handleUpload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	doc, err := s.intake.Upload(c.Request.Context(), driving.UploadRequest{
		CourseID:   req.CourseID,
		Name:       req.Name,
		SourceURL:  req.SourceURL,
		MIMEType:   req.MIMEType,
		Tags:       req.Tags,
		LicenseID:  req.LicenseID,
		UploaderIP: c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, uploadResponse{
		ID:    doc.ID,
		State: string(doc.State),
		Slug:  doc.Slug,
	})
}

// handleConvert re-queues conversion for an unprocessed document.
func (s *Server) handleConvert(c *gin.Context) {
	if err := s.intake.Reconvert(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// searchResult is one search hit in the response.
type searchResult struct {
	ID       string  `json:"id"`
	CourseID string  `json:"course_id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Score    float64 `json:"score"`
	Snippet  string  `json:"snippet"`
}

func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "q parameter is required"})
		return
	}

	opts := domain.SearchOptions{
		CourseID: c.Query("course_id"),
		Limit:    intQuery(c, "limit"),
		Offset:   intQuery(c, "offset"),
	}

	results, err := s.search.Search(c.Request.Context(), query, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]searchResult, 0, len(results))
	for _, r := range results {
		out = append(out, searchResult{
			ID:       r.Note.ID,
			CourseID: r.Note.CourseID,
			Name:     r.Note.Name,
			Slug:     r.Note.Slug,
			Score:    r.Score,
			Snippet:  r.Snippet,
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrAlreadyProcessed),
		errors.Is(err, domain.ErrFailedTerminal):
		status = http.StatusConflict
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}

func intQuery(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}
