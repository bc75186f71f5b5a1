// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Subsystems receive a named child logger via Component, e.g. the storage
// service logs under "storage" and the HTTP layer under "http".
//
// Example Usage:
//
//	logger := logging.NewFromLevel(cfg.Logging.Level, cfg.Logging.Development)
//	svc, err := storage.New(cfg, storage.WithLogger(logger.Component("storage")))
//	logger.Info("Server starting", zap.String("addr", cfg.Addr()))
package logging
