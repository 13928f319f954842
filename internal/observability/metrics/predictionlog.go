package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PredictionLogMetrics contains Prometheus metrics for prediction log storage.
type PredictionLogMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
	rejectedRowsTotal prometheus.Counter

	collectors []prometheus.Collector
}

// NewPredictionLogMetrics creates and registers prediction log metrics.
func NewPredictionLogMetrics(registry *prometheus.Registry) (*PredictionLogMetrics, error) {
	m := &PredictionLogMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register prediction log metrics: %w", err)
	}
	return m, nil
}

func (m *PredictionLogMetrics) initMetrics() {
	m.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictionlog_operations_total",
			Help: "Total number of prediction log operations",
		},
		[]string{"operation", "status"},
	)

	m.operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "predictionlog_operation_duration_seconds",
			Help:    "Time taken by prediction log operations",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15),
		},
		[]string{"operation"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictionlog_errors_total",
			Help: "Total number of prediction log errors by category",
		},
		[]string{"operation", "error_type"},
	)

	m.rejectedRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "predictionlog_rejected_rows_total",
		Help: "Total number of malformed rows skipped while reading the log",
	})

	m.collectors = []prometheus.Collector{
		m.operationsTotal,
		m.operationDuration,
		m.errorsTotal,
		m.rejectedRowsTotal,
	}
}

// Describe implements the prometheus.Collector interface.
func (m *PredictionLogMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements the prometheus.Collector interface.
func (m *PredictionLogMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

// RecordOperation implements Recorder.
func (m *PredictionLogMetrics) RecordOperation(operation, status string) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration implements Recorder.
func (m *PredictionLogMetrics) RecordDuration(operation string, seconds float64) {
	m.operationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError implements Recorder.
func (m *PredictionLogMetrics) RecordError(operation, errorType string) {
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordRejectedRows adds count skipped rows.
func (m *PredictionLogMetrics) RecordRejectedRows(count int) {
	if count > 0 {
		m.rejectedRowsTotal.Add(float64(count))
	}
}
