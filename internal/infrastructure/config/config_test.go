package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())

	// Storage config
	assert.Equal(t, "/tmp/fileserver", cfg.Storage.Home)
	assert.Equal(t, "/tmp/fileserver", cfg.Home())
	assert.Equal(t, 64, cfg.Storage.MaxDepth)
	assert.Equal(t, 32*1024, cfg.Storage.ChunkSize)
	assert.Equal(t, os.FileMode(0o755), cfg.Storage.DirPerm)
	assert.Equal(t, os.FileMode(0o644), cfg.Storage.FilePerm)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.Zero(t, cfg.Upload.MaxBytes)
}

func TestLoadOrDefault(t *testing.T) {
	// Should return default when no env vars set
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":               "9000",
		"HOST":               "127.0.0.1",
		"SHUTDOWN_TIMEOUT":   "3s",
		"FILE_SERVER_HOME":   "/srv/files",
		"STORAGE_MAX_DEPTH":  "8",
		"STORAGE_CHUNK_SIZE": "4096",
		"STORAGE_DIR_PERM":   "0700",
		"STORAGE_FILE_PERM":  "0600",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "false",
		"CORS_ORIGINS":       "http://a.example,http://b.example",
		"UPLOAD_MAX_BYTES":   "1048576",
	}

	for key, value := range envVars {
		err := os.Setenv(key, value)
		require.NoError(t, err)
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "/srv/files", cfg.Home())
	assert.Equal(t, 8, cfg.Storage.MaxDepth)
	assert.Equal(t, 4096, cfg.Storage.ChunkSize)
	assert.Equal(t, os.FileMode(0o700), cfg.Storage.DirPerm)
	assert.Equal(t, os.FileMode(0o600), cfg.Storage.FilePerm)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)

	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORS.Origins)
	assert.Equal(t, int64(1048576), cfg.Upload.MaxBytes)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	err := os.Setenv("PORT", "3000")
	require.NoError(t, err)
	defer os.Unsetenv("PORT")

	err = os.Setenv("LOG_LEVEL", "warn")
	require.NoError(t, err)
	defer os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	require.NoError(t, err)

	// Verify overridden values
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Verify default values still apply
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "/tmp/fileserver", cfg.Storage.Home)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadInvalidValue(t *testing.T) {
	err := os.Setenv("STORAGE_MAX_DEPTH", "deep")
	require.NoError(t, err)
	defer os.Unsetenv("STORAGE_MAX_DEPTH")

	_, err = Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 64, cfg.Storage.MaxDepth)
}

func TestServerConfig(t *testing.T) {
	tests := []struct {
		name     string
		port     string
		host     string
		wantPort string
		wantHost string
	}{
		{
			name:     "default values",
			wantPort: "8000",
			wantHost: "0.0.0.0",
		},
		{
			name:     "custom port",
			port:     "9000",
			wantPort: "9000",
			wantHost: "0.0.0.0",
		},
		{
			name:     "custom host",
			host:     "localhost",
			wantPort: "8000",
			wantHost: "localhost",
		},
		{
			name:     "custom port and host",
			port:     "3000",
			host:     "127.0.0.1",
			wantPort: "3000",
			wantHost: "127.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clean environment
			os.Unsetenv("PORT")
			os.Unsetenv("HOST")

			if tt.port != "" {
				err := os.Setenv("PORT", tt.port)
				require.NoError(t, err)
				defer os.Unsetenv("PORT")
			}
			if tt.host != "" {
				err := os.Setenv("HOST", tt.host)
				require.NoError(t, err)
				defer os.Unsetenv("HOST")
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantPort, cfg.Server.Port)
			assert.Equal(t, tt.wantHost, cfg.Server.Host)
		})
	}
}

func TestLoggingConfig(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		dev       string
		wantLevel string
		wantDev   bool
	}{
		{
			name:      "default values",
			wantLevel: "info",
			wantDev:   false,
		},
		{
			name:      "debug level",
			level:     "debug",
			wantLevel: "debug",
			wantDev:   false,
		},
		{
			name:      "development mode",
			dev:       "true",
			wantLevel: "info",
			wantDev:   true,
		},
		{
			name:      "error level production",
			level:     "error",
			dev:       "false",
			wantLevel: "error",
			wantDev:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("LOG_LEVEL")
			os.Unsetenv("LOG_DEV")

			if tt.level != "" {
				err := os.Setenv("LOG_LEVEL", tt.level)
				require.NoError(t, err)
				defer os.Unsetenv("LOG_LEVEL")
			}
			if tt.dev != "" {
				err := os.Setenv("LOG_DEV", tt.dev)
				require.NoError(t, err)
				defer os.Unsetenv("LOG_DEV")
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantLevel, cfg.Logging.Level)
			assert.Equal(t, tt.wantDev, cfg.Logging.Development)
		})
	}
}

func TestRateLimitConfig(t *testing.T) {
	tests := []struct {
		name        string
		rps         string
		burst       string
		enabled     string
		wantRPS     int
		wantBurst   int
		wantEnabled bool
	}{
		{
			name:        "default values",
			wantRPS:     100,
			wantBurst:   200,
			wantEnabled: true,
		},
		{
			name:        "high limits",
			rps:         "1000",
			burst:       "2000",
			wantRPS:     1000,
			wantBurst:   2000,
			wantEnabled: true,
		},
		{
			name:        "disabled",
			enabled:     "false",
			wantRPS:     100,
			wantBurst:   200,
			wantEnabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("RATE_LIMIT_RPS")
			os.Unsetenv("RATE_LIMIT_BURST")
			os.Unsetenv("RATE_LIMIT_ENABLED")

			if tt.rps != "" {
				err := os.Setenv("RATE_LIMIT_RPS", tt.rps)
				require.NoError(t, err)
				defer os.Unsetenv("RATE_LIMIT_RPS")
			}
			if tt.burst != "" {
				err := os.Setenv("RATE_LIMIT_BURST", tt.burst)
				require.NoError(t, err)
				defer os.Unsetenv("RATE_LIMIT_BURST")
			}
			if tt.enabled != "" {
				err := os.Setenv("RATE_LIMIT_ENABLED", tt.enabled)
				require.NoError(t, err)
				defer os.Unsetenv("RATE_LIMIT_ENABLED")
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantRPS, cfg.RateLimit.RequestsPerSecond)
			assert.Equal(t, tt.wantBurst, cfg.RateLimit.Burst)
			assert.Equal(t, tt.wantEnabled, cfg.RateLimit.Enabled)
		})
	}
}

func TestLoadFile(t *testing.T) {
	writeConfig := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "fileserver.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("file values over defaults", func(t *testing.T) {
		path := writeConfig(t, `
server:
  port: "9100"
storage:
  home: /data
  max_depth: 10
logging:
  level: debug
cors:
  origins:
    - http://localhost:3000
`)

		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, "9100", cfg.Server.Port)
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, "/data", cfg.Home())
		assert.Equal(t, 10, cfg.Storage.MaxDepth)
		assert.Equal(t, 32*1024, cfg.Storage.ChunkSize)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.Origins)
	})

	t.Run("environment over file", func(t *testing.T) {
		path := writeConfig(t, `
storage:
  home: /data
`)
		err := os.Setenv("FILE_SERVER_HOME", "/override")
		require.NoError(t, err)
		defer os.Unsetenv("FILE_SERVER_HOME")

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "/override", cfg.Home())
	})

	t.Run("empty path", func(t *testing.T) {
		cfg, err := LoadFile("")
		require.NoError(t, err)
		assert.Equal(t, "8000", cfg.Server.Port)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := writeConfig(t, "server: [unterminated")

		_, err := LoadFile(path)
		assert.Error(t, err)
	})
}
