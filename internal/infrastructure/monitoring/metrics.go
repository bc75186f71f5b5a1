package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/GriffinCanCode/fileserver/internal/storage"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Storage metrics
	StorageOps      *prometheus.CounterVec
	StorageDuration *prometheus.HistogramVec
	StorageBytes    *prometheus.CounterVec

	registry  *prometheus.Registry
	startTime time.Time

	// Snapshot for the health endpoint
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON responses
type MetricsSnapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	StorageOps    int64   `json:"storage_ops"`
	StorageErrors int64   `json:"storage_errors"`
	BytesSaved    int64   `json:"bytes_saved"`
	BytesLoaded   int64   `json:"bytes_loaded"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector registered on reg. A nil reg gets
// a fresh registry, so tests can build as many collectors as they like.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileserver_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fileserver_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fileserver_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fileserver_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),

		// Storage metrics
		StorageOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileserver_storage_operations_total",
				Help: "Total number of storage operations by outcome",
			},
			[]string{"op", "result"},
		),
		StorageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fileserver_storage_operation_duration_seconds",
				Help:    "Storage operation duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 5, 30},
			},
			[]string{"op"},
		),
		StorageBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileserver_storage_bytes_total",
				Help: "Bytes moved by storage operations",
			},
			[]string{"op"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "fileserver_uptime_seconds",
			Help: "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// ObserveOperation implements storage.Observer
func (m *Metrics) ObserveOperation(op string, err error, duration time.Duration) {
	result := "ok"
	if err != nil {
		result = storage.KindOf(err).String()
	}
	m.StorageOps.WithLabelValues(op, result).Inc()
	m.StorageDuration.WithLabelValues(op).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.StorageOps++
	if err != nil {
		m.snapshot.StorageErrors++
	}
	m.mu.Unlock()
}

// ObserveBytes implements storage.Observer
func (m *Metrics) ObserveBytes(op string, n int64) {
	m.StorageBytes.WithLabelValues(op).Add(float64(n))

	m.mu.Lock()
	switch op {
	case "saveFile":
		m.snapshot.BytesSaved += n
	case "loadFileAsResource":
		m.snapshot.BytesLoaded += n
	}
	m.mu.Unlock()
}

// Snapshot returns a copy of the running totals
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}

var _ storage.Observer = (*Metrics)(nil)
