// Package server exposes the dashboard over a JSON HTTP API built on gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fjacquet/finance-dashboard/internal/importer"
	"fjacquet/finance-dashboard/internal/logging"
	"fjacquet/finance-dashboard/internal/models"
	"fjacquet/finance-dashboard/internal/report"
	"fjacquet/finance-dashboard/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Importer is the part of the import orchestrator the API drives.
type Importer interface {
	Plan(ctx context.Context, f importer.File, existing []models.Transaction) (*importer.Result, error)
	Import(ctx context.Context, f importer.File, existing []models.Transaction, c importer.Confirmer) (*importer.Result, error)
}

// Options are the dependencies of a Server.
type Options struct {
	Store          store.Store
	Importer       Importer
	Reports        *report.Generator
	Logger         logging.Logger
	AllowedOrigins []string
	// MaxUploadBytes caps the request body of uploads; 0 means 10 MiB.
	MaxUploadBytes int64
	Delimiter      rune
}

// Server serves the HTTP API.
type Server struct {
	store     store.Store
	importer  Importer
	reports   *report.Generator
	logger    logging.Logger
	maxUpload int64
	delimiter rune
	engine    *gin.Engine
}

// New builds the router. Store and Importer are required.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.NewDiscardLogger()
	}
	if opts.Reports == nil {
		opts.Reports = report.NewGenerator(opts.Logger)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}

	s := &Server{
		store:     opts.Store,
		importer:  opts.Importer,
		reports:   opts.Reports,
		logger:    opts.Logger.WithField(logging.FieldComponent, "server"),
		maxUpload: opts.MaxUploadBytes,
		delimiter: opts.Delimiter,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  opts.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding"},
			ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
			MaxAge:        12 * time.Hour,
		}))
	}
	s.routes(r)
	s.engine = r
	return s
}

func (s *Server) routes(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/health", s.health)

	api.GET("/transactions", s.listTransactions)
	api.GET("/transactions/export", s.exportTransactions)
	api.DELETE("/transactions/:id", s.deleteTransaction)

	api.GET("/summary/:by", s.summary)
	api.GET("/stats", s.stats)

	api.POST("/import/preview", s.previewImport)
	api.POST("/import", s.commitImport)

	api.GET("/categories", s.listCategories)
	api.POST("/categories", s.createCategory)
	api.PUT("/categories/:id", s.updateCategory)
	api.DELETE("/categories/:id", s.deleteCategory)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", logging.F("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []logging.Field{
			logging.F("method", c.Request.Method),
			logging.F("path", c.FullPath()),
			logging.F("status", c.Writer.Status()),
			logging.F(logging.FieldDuration, time.Since(start).String()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Warn("Request failed", fields...)
			return
		}
		s.logger.Debug("Request served", fields...)
	}
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
