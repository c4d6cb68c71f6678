// Package httpapi serves the analysis engine over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/panbanda/relic/internal/service/analysis"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP front end of an analysis service.
type Server struct {
	svc     *analysis.Service
	engine  *gin.Engine
	metrics *metrics
	version string
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version reported by /healthz.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a server and registers its routes.
func New(svc *analysis.Service, opts ...Option) *Server {
	s := &Server{
		svc:     svc,
		version: "dev",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.metrics = newMetrics(svc)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.metrics.instrument(), s.logRequests())
	s.routes()
	return s
}

// routes registers:
//
//	GET  /healthz          liveness and version
//	GET  /metrics          Prometheus exposition
//	POST /api/v1/analyze   analyze submitted documents
//	POST /api/v1/compare   diff two reports
func (s *Server) routes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/analyze", s.limitBody(), s.handleAnalyze)
		v1.POST("/compare", s.handleCompare)
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
