package http

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/fileserver/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/fileserver/internal/storage"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// FileStore is the storage surface the handlers need
type FileStore interface {
	CreateDirectory(ctx context.Context, p string) error
	ListDirectory(ctx context.Context, p string) (*storage.FileList, error)
	SaveFile(ctx context.Context, p string, r io.Reader) (storage.FileInfo, error)
	LoadFileAsResource(ctx context.Context, p string) (*storage.Resource, error)
	Delete(ctx context.Context, p string) error
	DeleteAll(ctx context.Context, p string) error
	Ping() error
}

// Handlers contains all HTTP handlers
type Handlers struct {
	store     FileStore
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	maxUpload int64
}

// Option configures Handlers
type Option func(*Handlers)

// WithMetrics exposes metric totals on the health endpoint
func WithMetrics(m *monitoring.Metrics) Option {
	return func(h *Handlers) { h.metrics = m }
}

// WithLogger sets the handler logger
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handlers) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMaxUploadBytes caps request bodies on upload. Zero means unlimited.
func WithMaxUploadBytes(n int64) Option {
	return func(h *Handlers) { h.maxUpload = n }
}

// NewHandlers creates a new handler set
func NewHandlers(store FileStore, opts ...Option) *Handlers {
	h := &Handlers{
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the file routes on r. listMiddleware runs only on the
// listing route.
func (h *Handlers) Register(r gin.IRouter, listMiddleware ...gin.HandlerFunc) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	files := r.Group("/services/files")
	files.POST("/createdir/*path", h.CreateDirectory)
	files.POST("/upload/*path", h.Upload)
	files.GET("/download/*path", h.Download)
	list := append(append([]gin.HandlerFunc{}, listMiddleware...), h.List)
	files.GET("/list/*path", list...)
	files.DELETE("/delete/*path", h.Delete)
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "File Server",
		"version": Version,
	})
}

// Health reports whether the home directory is reachable
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{"status": "healthy"}
	status := http.StatusOK

	if err := h.store.Ping(); err != nil {
		h.logger.Error("Storage health check failed", zap.Error(err))
		body["status"] = "unhealthy"
		body["error"] = "storage unavailable"
		status = http.StatusServiceUnavailable
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}

	c.JSON(status, body)
}

// pathParam returns the wildcard path without its leading slash
func pathParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("path"), "/")
}
