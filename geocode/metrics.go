package geocode

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricJobsTotal      = "geocode_jobs_total"
	MetricJobsDuration   = "geocode_jobs_duration_seconds"
	MetricJobErrorsTotal = "geocode_job_errors_total"
	MetricQueueDepth     = "geocode_queue_depth"
)

// Job outcomes used as the status label.
const (
	StatusLocated  = "located"
	StatusNoResult = "no_result"
	StatusSkipped  = "skipped"
	StatusFailure  = "failure"
	StatusDropped  = "dropped"
)

// Error types used as the error_type label.
const (
	ErrorTypeLookup    = "lookup"
	ErrorTypeStore     = "store"
	ErrorTypeQueueFull = "queue_full"
)

// Metrics contains Prometheus metrics for geocoding jobs.
type Metrics struct {
	jobsTotal    *prometheus.CounterVec
	jobsDuration prometheus.Histogram
	jobErrors    *prometheus.CounterVec
	queueDepth   prometheus.Gauge
}

// NewMetrics creates the collectors without registering them.
func NewMetrics() *Metrics {
	return &Metrics{
		jobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricJobsTotal,
				Help: "Total number of venue geocoding jobs by outcome",
			},
			[]string{"status"},
		),
		jobsDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricJobsDuration,
				Help:    "Histogram of venue geocoding job duration in seconds, retries included",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 120.0},
			},
		),
		jobErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricJobErrorsTotal,
				Help: "Total number of geocoding errors by error type, each retry attempt counted",
			},
			[]string{"error_type"},
		),
		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: MetricQueueDepth,
				Help: "Number of geocoding jobs waiting in the queue",
			},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) IncJobsTotal(status string) {
	m.jobsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveJobDuration(seconds float64) {
	m.jobsDuration.Observe(seconds)
}

func (m *Metrics) IncJobErrors(errorType string) {
	m.jobErrors.WithLabelValues(errorType).Inc()
}

func (m *Metrics) SetQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}

// Collectors returns all Prometheus collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.jobsTotal,
		m.jobsDuration,
		m.jobErrors,
		m.queueDepth,
	}
}
