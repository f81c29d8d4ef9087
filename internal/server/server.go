// Package server exposes market basket analysis over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/KaramelBytes/basketloom-cli/internal/archive"
	"github.com/KaramelBytes/basketloom-cli/internal/cache"
	"github.com/KaramelBytes/basketloom-cli/internal/config"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	cfg      *config.Global
	store    archive.Store
	parses   *cache.ParseCache
	datasets *registry
	log      *logrus.Logger
	version  string
}

// New wires a server. store may be nil, in which case analyses are not
// archived and the /analyses endpoints answer 404.
func New(cfg *config.Global, store archive.Store, parses *cache.ParseCache, log *logrus.Logger, version string) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		parses:   parses,
		datasets: newRegistry(),
		log:      log,
		version:  version,
	}
}

// Router creates and configures the Gin router.
func (s *Server) Router() *gin.Engine {
	if s.cfg.ServerEnvironment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = maxUploadBytes

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware(s.log))
	router.Use(CORSMiddleware(s.cfg.AllowedOrigins))
	if s.cfg.RateLimitPerSec > 0 {
		router.Use(RateLimitMiddleware(rate.NewLimiter(rate.Limit(s.cfg.RateLimitPerSec), s.cfg.RateLimitBurst)))
	}
	router.Use(TimeoutMiddleware(s.cfg.RequestTimeout()))

	router.GET("/health", s.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		datasets := v1.Group("/datasets")
		{
			datasets.POST("", s.UploadDataset)
			datasets.GET("", s.ListDatasets)
			datasets.GET("/:id", s.GetDataset)
			datasets.DELETE("/:id", s.DeleteDataset)
			datasets.POST("/:id/associations", s.AnalyzeDataset)
			datasets.GET("/:id/associations.csv", s.ExportCSV)
		}
		analyses := v1.Group("/analyses")
		{
			analyses.GET("", s.ListAnalyses)
			analyses.GET("/:id", s.GetAnalysis)
		}
	}

	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// HealthCheck returns the health status of the API.
func (s *Server) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "basketloom",
		"version": s.version,
	})
}
