// Package observability provides Prometheus metrics for the WasteNet-Go application.
// Error telemetry is handled in the telemetry package.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wastenet/wastenet-go/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry      *prometheus.Registry
	PredictionLog *metrics.PredictionLogMetrics
	Detection     *metrics.DetectionMetrics
	Summary       *metrics.SummaryMetrics
	MQTT          *metrics.MQTTMetrics
	HTTP          *metrics.HTTPMetrics
}

// NewMetrics creates a registry and registers every collector on it.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register Go collector: %w", err)
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("failed to register process collector: %w", err)
	}

	logMetrics, err := metrics.NewPredictionLogMetrics(registry)
	if err != nil {
		return nil, err
	}

	detectionMetrics, err := metrics.NewDetectionMetrics(registry)
	if err != nil {
		return nil, err
	}

	summaryMetrics, err := metrics.NewSummaryMetrics(registry)
	if err != nil {
		return nil, err
	}

	mqttMetrics, err := metrics.NewMQTTMetrics(registry)
	if err != nil {
		return nil, err
	}

	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		registry:      registry,
		PredictionLog: logMetrics,
		Detection:     detectionMetrics,
		Summary:       summaryMetrics,
		MQTT:          mqttMetrics,
		HTTP:          httpMetrics,
	}, nil
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the exposition handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

// RegisterHandlers registers the metrics endpoint with mux.
func (m *Metrics) RegisterHandlers(mux *http.ServeMux) {
	mux.Handle("/metrics", m.Handler())
}
