package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// SummaryMetrics contains Prometheus metrics for text generation requests.
type SummaryMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec

	collectors []prometheus.Collector
}

// NewSummaryMetrics creates and registers summary metrics.
func NewSummaryMetrics(registry *prometheus.Registry) (*SummaryMetrics, error) {
	m := &SummaryMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register summary metrics: %w", err)
	}
	return m, nil
}

func (m *SummaryMetrics) initMetrics() {
	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_requests_total",
			Help: "Total number of text generation requests",
		},
		[]string{"operation", "status"}, // status: success, error, cache_hit
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summary_request_duration_seconds",
			Help:    "Time taken by the text generator",
			Buckets: prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount10),
		},
		[]string{"operation"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_errors_total",
			Help: "Total number of failed text generation requests",
		},
		[]string{"operation", "error_type"},
	)

	m.collectors = []prometheus.Collector{m.requestsTotal, m.requestDuration, m.errorsTotal}
}

// Describe implements the prometheus.Collector interface.
func (m *SummaryMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements the prometheus.Collector interface.
func (m *SummaryMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

// RecordOperation implements Recorder.
func (m *SummaryMetrics) RecordOperation(operation, status string) {
	m.requestsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration implements Recorder.
func (m *SummaryMetrics) RecordDuration(operation string, seconds float64) {
	m.requestDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError implements Recorder.
func (m *SummaryMetrics) RecordError(operation, errorType string) {
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
}
