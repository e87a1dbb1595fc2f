package metrics

import (
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

	scoreRunsTotal   *prometheus.CounterVec
	scoreRunDuration *prometheus.HistogramVec
	scoreValues      *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobfit",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jobfit",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jobfit",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	scoreRunsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobfit",
			Subsystem: "scoring",
			Name:      "runs_total",
			Help:      "Total completed scoring runs by status and candidate document source.",
		},
		[]string{"service", "status", "source"},
	)
	scoreRunDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jobfit",
			Subsystem: "scoring",
			Name:      "run_duration_seconds",
			Help:      "End-to-end scoring run duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"service", "status"},
	)
	scoreValues := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jobfit",
			Subsystem: "scoring",
			Name:      "score",
			Help:      "Distribution of final scores on successful runs.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		scoreRunsTotal,
		scoreRunDuration,
		scoreValues,
	)

	return &HTTPServerMetrics{
		registry:         registry,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		requestInFlight:  requestInFlight,
		scoreRunsTotal:   scoreRunsTotal,
		scoreRunDuration: scoreRunDuration,
		scoreValues:      scoreValues,
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
	case strings.HasPrefix(path, "/v1/score/history/"):
		return "/v1/score/history/{profile_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordScoreRun(service, status, source string, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	if source == "" {
		source = "none"
	}
	m.scoreRunsTotal.WithLabelValues(service, status, source).Inc()
	m.scoreRunDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordScoreValue(service string, score int) {
	m.scoreValues.WithLabelValues(service).Observe(float64(score))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
