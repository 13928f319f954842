// Package metrics provides custom Prometheus metrics for the WasteNet-Go application.
package metrics

// Recorder defines a minimal interface for recording metrics.
// Components depend on this abstraction rather than on concrete metric types.
type Recorder interface {
	// RecordOperation records an operation with its status ("success", "error").
	RecordOperation(operation, status string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError records an error occurrence with its category.
	RecordError(operation, errorType string)
}

var (
	_ Recorder = (*PredictionLogMetrics)(nil)
	_ Recorder = (*SummaryMetrics)(nil)
)
