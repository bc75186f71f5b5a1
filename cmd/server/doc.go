// Package main is the entry point for the file server.
//
// The server exposes a single home directory over HTTP. Every path in a
// request is resolved relative to that directory and rejected when it
// would escape it, including through symbolic links.
//
// The server provides:
//   - REST API under /services/files (createdir, upload, download, list, delete)
//   - Health and Prometheus metrics endpoints
//   - Request IDs, structured request logs, CORS and per-IP rate limiting
//
// Configuration:
//   - Defaults, then an optional YAML file (-config)
//   - Environment variables (12-factor)
//   - CLI flags (override everything)
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -home /srv/files
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
