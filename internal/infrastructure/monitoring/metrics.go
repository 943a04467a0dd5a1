package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Storage metrics
	SavesTotal       *prometheus.CounterVec
	SaveDuration     *prometheus.HistogramVec
	BytesWritten     *prometheus.CounterVec
	ChunkWrites      *prometheus.CounterVec
	DeletesTotal     *prometheus.CounterVec
	ScanErrors       prometheus.Counter
	EphemeralHandles prometheus.Gauge
	EphemeralBytes   prometheus.Gauge

	// Bridge metrics
	BreakerState *prometheus.GaugeVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time
}

// NewMetrics creates a new metrics collector on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aurora_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aurora_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aurora_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aurora_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),

		// Storage metrics
		SavesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aurora_storage_saves_total",
				Help: "Total number of saves by strategy and status",
			},
			[]string{"strategy", "status"},
		),
		SaveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aurora_storage_save_duration_seconds",
				Help:    "Save duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15, 60},
			},
			[]string{"strategy"},
		),
		BytesWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aurora_storage_bytes_written_total",
				Help: "Total bytes accepted by successful saves",
			},
			[]string{"strategy"},
		),
		ChunkWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aurora_storage_chunk_writes_total",
				Help: "Chunk writes issued to the bridge by operation",
			},
			[]string{"op"},
		),
		DeletesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aurora_storage_deletes_total",
				Help: "Delete requests by result",
			},
			[]string{"result"},
		),
		ScanErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "aurora_storage_scan_errors_total",
				Help: "Entries skipped during inventory scans",
			},
		),
		EphemeralHandles: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "aurora_storage_ephemeral_handles",
				Help: "Number of live ephemeral handles",
			},
		),
		EphemeralBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "aurora_storage_ephemeral_bytes",
				Help: "Bytes held by live ephemeral handles",
			},
		),

		// Bridge metrics
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aurora_bridge_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "aurora_uptime_seconds",
			Help: "Backend uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

// RecordSave records a finished save
func (m *Metrics) RecordSave(strategy, status string, duration time.Duration, size int64) {
	if m == nil {
		return
	}
	m.SavesTotal.WithLabelValues(strategy, status).Inc()
	m.SaveDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	if status == "success" {
		m.BytesWritten.WithLabelValues(strategy).Add(float64(size))
	}
}

// IncChunkWrite counts one chunk written via op (writeFile or appendFile)
func (m *Metrics) IncChunkWrite(op string) {
	if m == nil {
		return
	}
	m.ChunkWrites.WithLabelValues(op).Inc()
}

// IncDelete counts a delete outcome
func (m *Metrics) IncDelete(result string) {
	if m == nil {
		return
	}
	m.DeletesTotal.WithLabelValues(result).Inc()
}

// IncScanErrors counts a skipped scan entry
func (m *Metrics) IncScanErrors() {
	if m == nil {
		return
	}
	m.ScanErrors.Inc()
}

// SetEphemeral sets the live ephemeral handle count and the bytes they hold
func (m *Metrics) SetEphemeral(count int, bytes int64) {
	if m == nil {
		return
	}
	m.EphemeralHandles.Set(float64(count))
	m.EphemeralBytes.Set(float64(bytes))
}

// SetBreakerState records a breaker state as its numeric value
func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}
