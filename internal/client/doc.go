// Package client provides an HTTP client for the file server API.
//
// Requests pass through a token bucket limiter and a circuit breaker.
// Reads and directory creation are retried on transport errors and 5xx
// responses; uploads and deletes are sent once. Errors the server reports
// with a storage kind come back as *storage.Error, so callers can match them
// with errors.Is against storage.ErrNotFound and the other sentinels.
package client
