package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig defines CORS configuration options.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig returns CORS configuration for the file API.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Accept",
			"Origin",
			"Cache-Control",
			"Range",
			"X-Requested-With",
			RequestIDHeader,
		},
		ExposeHeaders: []string{
			"Content-Disposition",
			"Content-Length",
			"Content-Range",
			RequestIDHeader,
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
}

// CORSConfigForOrigins returns the default configuration restricted to
// origins. Credentials are only allowed for explicit origins.
func CORSConfigForOrigins(origins []string) CORSConfig {
	cfg := DefaultCORSConfig()
	if len(origins) == 0 {
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = !containsWildcard(origins)
	return cfg
}

// CORS creates a CORS middleware with the provided configuration.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	if containsWildcard(cfg.AllowOrigins) {
		return cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    cfg.AllowMethods,
			AllowHeaders:    cfg.AllowHeaders,
			ExposeHeaders:   cfg.ExposeHeaders,
			MaxAge:          cfg.MaxAge,
		})
	}
	return cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
