package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// DetectionMetrics contains Prometheus metrics for image classification.
type DetectionMetrics struct {
	predictionsTotal  *prometheus.CounterVec
	confidence        *prometheus.HistogramVec
	detectorDuration  prometheus.Histogram
	detectorErrors    *prometheus.CounterVec
	imageBytes        prometheus.Histogram
	imageDecodeErrors prometheus.Counter

	collectors []prometheus.Collector
}

// NewDetectionMetrics creates and registers detection metrics.
func NewDetectionMetrics(registry *prometheus.Registry) (*DetectionMetrics, error) {
	m := &DetectionMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register detection metrics: %w", err)
	}
	return m, nil
}

func (m *DetectionMetrics) initMetrics() {
	m.predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detection_predictions_total",
			Help: "Total number of classifications by predicted class",
		},
		[]string{"class"},
	)

	m.confidence = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "detection_confidence",
			Help:    "Confidence of the winning detection",
			Buckets: prometheus.LinearBuckets(ConfidenceBucketWidth, ConfidenceBucketWidth, ConfidenceBucketCount),
		},
		[]string{"class"},
	)

	m.detectorDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "detection_detector_duration_seconds",
		Help:    "Round-trip time of detector calls",
		Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount12),
	})

	m.detectorErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detection_detector_errors_total",
			Help: "Total number of failed detector calls by category",
		},
		[]string{"error_type"},
	)

	m.imageBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "detection_image_size_bytes",
		Help:    "Size of uploaded images",
		Buckets: prometheus.ExponentialBuckets(1024, 4, BucketCount10),
	})

	m.imageDecodeErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "detection_image_decode_errors_total",
		Help: "Total number of uploads that could not be decoded as images",
	})

	m.collectors = []prometheus.Collector{
		m.predictionsTotal,
		m.confidence,
		m.detectorDuration,
		m.detectorErrors,
		m.imageBytes,
		m.imageDecodeErrors,
	}
}

// Describe implements the prometheus.Collector interface.
func (m *DetectionMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements the prometheus.Collector interface.
func (m *DetectionMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

// RecordPrediction counts one classification result.
func (m *DetectionMetrics) RecordPrediction(class string, confidence float64) {
	m.predictionsTotal.WithLabelValues(class).Inc()
	m.confidence.WithLabelValues(class).Observe(confidence)
}

// RecordDetectorCall records one detector round trip. errorType is empty on success.
func (m *DetectionMetrics) RecordDetectorCall(seconds float64, errorType string) {
	m.detectorDuration.Observe(seconds)
	if errorType != "" {
		m.detectorErrors.WithLabelValues(errorType).Inc()
	}
}

// RecordImage records the size of an upload and whether it decoded.
func (m *DetectionMetrics) RecordImage(sizeBytes int, decoded bool) {
	m.imageBytes.Observe(float64(sizeBytes))
	if !decoded {
		m.imageDecodeErrors.Inc()
	}
}
