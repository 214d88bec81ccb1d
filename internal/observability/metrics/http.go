package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	ingestionsTotal    *prometheus.CounterVec
	ingestionDuration  *prometheus.HistogramVec
	ingestionsInFlight prometheus.Gauge
	analyzedChunks     *prometheus.HistogramVec
	failedChunksTotal  *prometheus.CounterVec
	duplicatesTotal    *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetdocs",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fleetdocs",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fleetdocs",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	ingestionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetdocs",
			Subsystem: "ingest",
			Name:      "ingestions_total",
			Help:      "Total completed ingestions by outcome.",
		},
		[]string{"service", "category", "outcome"},
	)
	ingestionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fleetdocs",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "End-to-end ingestion duration in seconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "category"},
	)
	ingestionsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fleetdocs",
			Subsystem: "ingest",
			Name:      "in_flight",
			Help:      "Number of ingestions currently being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	analyzedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fleetdocs",
			Subsystem: "ingest",
			Name:      "analyzed_chunks",
			Help:      "Distribution of chunks analyzed per document.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "category"},
	)
	failedChunksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetdocs",
			Subsystem: "ingest",
			Name:      "failed_chunks_total",
			Help:      "Total chunks whose analysis failed inside otherwise successful ingestions.",
		},
		[]string{"service", "category"},
	)
	duplicatesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetdocs",
			Subsystem: "ingest",
			Name:      "duplicates_total",
			Help:      "Total ingestions rejected as duplicates.",
		},
		[]string{"service", "category"},
	)
	for _, collector := range []prometheus.Collector{
		requestTotal, requestDuration, requestInFlight,
		ingestionsTotal, ingestionDuration, ingestionsInFlight,
		analyzedChunks, failedChunksTotal, duplicatesTotal,
	} {
		registry.MustRegister(collector)
	}

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		ingestionsTotal:    ingestionsTotal,
		ingestionDuration:  ingestionDuration,
		ingestionsInFlight: ingestionsInFlight,
		analyzedChunks:     analyzedChunks,
		failedChunksTotal:  failedChunksTotal,
		duplicatesTotal:    duplicatesTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/ingestions/"):
		return "/v1/ingestions/{ingestion_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) IngestionStarted() {
	m.ingestionsInFlight.Inc()
}

func (m *HTTPServerMetrics) IngestionFinished(service, category, outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.ingestionsInFlight.Dec()
	m.ingestionsTotal.WithLabelValues(service, category, outcome).Inc()
	m.ingestionDuration.WithLabelValues(service, category).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordAnalysis(service, category string, chunks, failedChunks int) {
	if chunks > 0 {
		m.analyzedChunks.WithLabelValues(service, category).Observe(float64(chunks))
	}
	if failedChunks > 0 {
		m.failedChunksTotal.WithLabelValues(service, category).Add(float64(failedChunks))
	}
}

func (m *HTTPServerMetrics) RecordDuplicate(service, category string) {
	m.duplicatesTotal.WithLabelValues(service, category).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
