// Package config provides 12-factor configuration management for the file server.
//
// Configuration starts from Default, is optionally overlaid with a YAML file,
// and is finally overridden by environment variables. CLI flags in cmd/server
// override all of them.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, shutdown timeout)
//   - Storage: home directory, listing depth guard, copy chunk size, modes
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - CORS: Allowed origins
//   - Upload: Request body cap
//
// Example Usage:
//
//	cfg, err := config.LoadFile(*configPath)
//	svc, err := storage.New(cfg)
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT
//   - FILE_SERVER_HOME, STORAGE_MAX_DEPTH, STORAGE_CHUNK_SIZE, STORAGE_DIR_PERM, STORAGE_FILE_PERM
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CORS_ORIGINS (comma separated)
//   - UPLOAD_MAX_BYTES
package config
