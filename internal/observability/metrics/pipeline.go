package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics tracks document analysis runs.
type PipelineMetrics struct {
	registry *prometheus.Registry

	analyzeTotal    *prometheus.CounterVec
	analyzeDuration *prometheus.HistogramVec
	analyzeInFlight prometheus.Gauge
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	analyzeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "documind",
			Subsystem: "pipeline",
			Name:      "analyze_total",
			Help:      "Total pipeline runs by outcome.",
		},
		[]string{"service", "outcome"},
	)
	analyzeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "documind",
			Subsystem: "pipeline",
			Name:      "analyze_duration_seconds",
			Help:      "Pipeline run duration in seconds by outcome.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service", "outcome"},
	)
	analyzeInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "documind",
			Subsystem: "pipeline",
			Name:      "analyze_in_flight",
			Help:      "Number of in-flight pipeline runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(analyzeTotal, analyzeDuration, analyzeInFlight)

	return &PipelineMetrics{
		registry:        registry,
		analyzeTotal:    analyzeTotal,
		analyzeDuration: analyzeDuration,
		analyzeInFlight: analyzeInFlight,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartRun() {
	m.analyzeInFlight.Inc()
}

func (m *PipelineMetrics) FinishRun(service string, duration time.Duration, err error) {
	m.analyzeInFlight.Dec()

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	m.analyzeTotal.WithLabelValues(service, outcome).Inc()
	m.analyzeDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
}
