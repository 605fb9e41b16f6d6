package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	allocations     *prometheus.HistogramVec
	retries         *prometheus.CounterVec
	service         string
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "match_process_total",
			Help:      "Queued match requests processed by outcome.",
		},
		[]string{"service", "outcome"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "match_process_duration_seconds",
			Help:      "Queued match processing duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "outcome"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "match_process_in_flight",
			Help:      "Number of in-flight queued matches.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	allocations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "match_allocations",
			Help:      "Allocations stored or replayed per queued match.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 50},
		},
		[]string{"service"},
	)

	retries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "retries_total",
			Help:      "Retries scheduled by the resilience executor by operation.",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, allocations, retries)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		allocations:     allocations,
		retries:         retries,
		service:         service,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartMatch() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishMatch(service, outcome string, allocations int, duration time.Duration) {
	m.processInFlight.Dec()

	if outcome == "" {
		outcome = "unknown"
	}
	m.processTotal.WithLabelValues(service, outcome).Inc()
	m.processDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
	if outcome != OutcomeError {
		m.allocations.WithLabelValues(service).Observe(float64(allocations))
	}
}

func (m *WorkerMetrics) RecordRetry(operation string) {
	m.retries.WithLabelValues(m.service, operation).Inc()
}
