package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	cleanupTotal    *prometheus.CounterVec
	cleanupDuration *prometheus.HistogramVec
	cleanupInFlight prometheus.Gauge
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	cleanupTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobfit",
			Subsystem: "worker",
			Name:      "cleanup_total",
			Help:      "Total processed cleanup jobs by status.",
		},
		[]string{"service", "status"},
	)
	cleanupDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jobfit",
			Subsystem: "worker",
			Name:      "cleanup_duration_seconds",
			Help:      "Cleanup job duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	cleanupInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jobfit",
			Subsystem: "worker",
			Name:      "cleanup_in_flight",
			Help:      "Number of in-flight cleanup jobs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(cleanupTotal, cleanupDuration, cleanupInFlight)

	return &WorkerMetrics{
		registry:        registry,
		cleanupTotal:    cleanupTotal,
		cleanupDuration: cleanupDuration,
		cleanupInFlight: cleanupInFlight,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartCleanup() {
	m.cleanupInFlight.Inc()
}

func (m *WorkerMetrics) FinishCleanup(service string, duration time.Duration, err error) {
	m.cleanupInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.cleanupTotal.WithLabelValues(service, status).Inc()
	m.cleanupDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}
