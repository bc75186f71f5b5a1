/*
Package monitoring provides metrics collection for the file server.

# Overview

Metrics are registered on an injected Prometheus registry rather than the
global default, so every server (and every test) owns its collectors.

# Features

- HTTP request metrics (latency, throughput, size) labelled by route
- Storage operation counts by op and error kind
- Storage operation latency
- Bytes saved and loaded
- Uptime

# Usage

	metrics := monitoring.NewMetrics(monitoring.NewRegistry())

	// Storage reports through storage.Observer
	svc, err := storage.New(cfg, storage.WithObserver(metrics))

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
