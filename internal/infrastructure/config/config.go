package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LogConfig       `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Upload    UploadConfig    `yaml:"upload"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" yaml:"port"`
	Host            string        `envconfig:"HOST" yaml:"host"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
}

// StorageConfig holds file storage configuration.
type StorageConfig struct {
	Home      string      `envconfig:"FILE_SERVER_HOME" yaml:"home"`
	MaxDepth  int         `envconfig:"STORAGE_MAX_DEPTH" yaml:"max_depth"`
	ChunkSize int         `envconfig:"STORAGE_CHUNK_SIZE" yaml:"chunk_size"`
	DirPerm   os.FileMode `envconfig:"STORAGE_DIR_PERM" yaml:"dir_perm"`
	FilePerm  os.FileMode `envconfig:"STORAGE_FILE_PERM" yaml:"file_perm"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" yaml:"rps"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" yaml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" yaml:"enabled"`
}

// CORSConfig holds allowed origins.
type CORSConfig struct {
	Origins []string `envconfig:"CORS_ORIGINS" yaml:"origins"`
}

// UploadConfig holds upload limits. Zero means unlimited.
type UploadConfig struct {
	MaxBytes int64 `envconfig:"UPLOAD_MAX_BYTES" yaml:"max_bytes"`
}

// Home implements storage.HomeProvider.
func (c *Config) Home() string {
	return c.Storage.Home
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Load loads configuration from environment variables on top of Default.
// Variables that are not set keep their default value.
func Load() (*Config, error) {
	cfg := Default()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads a YAML file on top of Default, then applies environment
// variables. An empty path behaves like Load.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Load()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 15 * time.Second,
		},
		Storage: StorageConfig{
			Home:      "/tmp/fileserver",
			MaxDepth:  64,
			ChunkSize: 32 * 1024,
			DirPerm:   0o755,
			FilePerm:  0o644,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
	}
}
