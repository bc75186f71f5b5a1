package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/fileserver/internal/api/http"
	"github.com/GriffinCanCode/fileserver/internal/api/middleware"
	"github.com/GriffinCanCode/fileserver/internal/infrastructure/config"
	"github.com/GriffinCanCode/fileserver/internal/infrastructure/logging"
	"github.com/GriffinCanCode/fileserver/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/fileserver/internal/storage"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	storage *storage.Service
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// Option configures a Server
type Option func(*Server)

// WithLogger replaces the logger built from configuration
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{config: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewFromLevel(cfg.Logging.Level, cfg.Logging.Development)
	}
	logger := s.logger

	logger.Info("Initializing File Server",
		zap.String("addr", cfg.Addr()),
		zap.String("home", cfg.Home()),
	)

	// Initialize metrics first (storage reports into them)
	s.metrics = monitoring.NewMetrics(monitoring.NewRegistry())

	svc, err := storage.New(cfg,
		storage.WithLogger(logger.Component("storage")),
		storage.WithObserver(s.metrics),
		storage.WithMaxDepth(cfg.Storage.MaxDepth),
		storage.WithChunkSize(cfg.Storage.ChunkSize),
		storage.WithPermissions(cfg.Storage.DirPerm, cfg.Storage.FilePerm),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	s.storage = svc

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Component("http")))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.CORS(middleware.CORSConfigForOrigins(cfg.CORS.Origins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := api.NewHandlers(svc,
		api.WithMetrics(s.metrics),
		api.WithLogger(logger.Component("http")),
		api.WithMaxUploadBytes(cfg.Upload.MaxBytes),
	)
	handlers.Register(router, middleware.Gzip(gzip.DefaultCompression))

	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	s.router = router
	s.http = &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Storage returns the storage service backing the API
func (s *Server) Storage() *storage.Service {
	return s.storage
}

// Run starts the HTTP server on the configured address. It returns nil
// after a graceful Shutdown.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	return ignoreClosed(s.http.ListenAndServe())
}

// Serve accepts connections on l until Shutdown
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", l.Addr().String()))
	return ignoreClosed(s.http.Serve(l))
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error("Graceful shutdown failed", zap.Error(err))
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	// Sync logger before exit
	_ = s.logger.Sync()
	return nil
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
