package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/panbanda/relic/pkg/compare"
	"github.com/panbanda/relic/pkg/models"
	"github.com/panbanda/relic/pkg/report"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// DocumentRequest is one artifact submitted for analysis. A zero
// lines_of_code lets the server count lines itself.
type DocumentRequest struct {
	Path        string `json:"path" binding:"required"`
	Content     string `json:"content"`
	LinesOfCode int    `json:"lines_of_code" binding:"gte=0"`
	Technology  string `json:"technology"`
}

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	Documents []DocumentRequest `json:"documents" binding:"required,min=1,dive"`
}

// CompareRequest is the body of POST /api/v1/compare. Both reports are
// validated against the report schema.
type CompareRequest struct {
	Base json.RawMessage `json:"base" binding:"required"`
	Head json.RawMessage `json:"head" binding:"required"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: s.version})
}

// limitBody caps request bodies at the configured maximum file size.
func (s *Server) limitBody() gin.HandlerFunc {
	limit := s.svc.Config().Analysis.MaxFileSize
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: "request body exceeds analysis.max_file_size",
				Code:  "BODY_TOO_LARGE",
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// bindJSON decodes the body into req, writing the error response itself.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: "request body exceeds analysis.max_file_size",
			Code:  "BODY_TOO_LARGE",
		})
		return false
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
	return false
}

// handleAnalyze analyzes every submitted document and returns a report.
// Documents rejected by the size cap are reported as skipped.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if !bindJSON(c, &req) {
		return
	}

	docs := make([]models.SourceDocument, 0, len(req.Documents))
	for _, d := range req.Documents {
		tech, err := models.ParseTechnology(d.Technology)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "UNSUPPORTED_TECHNOLOGY"})
			return
		}
		docs = append(docs, models.SourceDocument{
			Path:        d.Path,
			Content:     d.Content,
			LinesOfCode: d.LinesOfCode,
			Technology:  tech,
		})
	}

	var (
		files   []models.FileMetrics
		skipped []report.Skipped
	)
	for _, doc := range docs {
		fm, err := s.svc.AnalyzeSource(doc)
		switch {
		case errors.Is(err, models.ErrFileTooLarge):
			s.metrics.filesSkipped.Inc()
			skipped = append(skipped, report.Skipped{Path: doc.Path, Reason: "file too large"})
			continue
		case err != nil:
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_DOCUMENT"})
			return
		}
		s.metrics.filesAnalyzed.WithLabelValues(string(fm.Technology), string(fm.OverallLevel())).Inc()
		files = append(files, fm)
	}

	paths := make([]string, 0, len(docs))
	for _, d := range docs {
		paths = append(paths, d.Path)
	}
	c.JSON(http.StatusOK, report.Build(files, report.Options{Paths: paths, Skipped: skipped}))
}

// handleCompare diffs a base and a head report.
func (s *Server) handleCompare(c *gin.Context) {
	var req CompareRequest
	if !bindJSON(c, &req) {
		return
	}

	base, err := report.Unmarshal(req.Base)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "base: " + err.Error(), Code: "INVALID_REPORT"})
		return
	}
	head, err := report.Unmarshal(req.Head)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "head: " + err.Error(), Code: "INVALID_REPORT"})
		return
	}

	c.JSON(http.StatusOK, compare.Reports(base, head))
}
