// Package metrics provides constants used across metric definitions.
package metrics

import "time"

// Operation names recorded through the Recorder interface.
const (
	// OpAppend is a prediction log append.
	OpAppend = "append"
	// OpReadAll is a full prediction log scan.
	OpReadAll = "read_all"
	// OpDetect is one detector round trip.
	OpDetect = "detect"
	// OpSummarize is a summary generation request.
	OpSummarize = "summarize"
	// OpChat is a free-form chat request.
	OpChat = "chat"
)

// Status values.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusCacheHit = "cache_hit"
)

// Histogram bucket parameters.
const (
	// BucketStart1ms is the starting bucket for 1ms histograms.
	BucketStart1ms = 0.001
	// BucketStart10ms is the starting bucket for 10ms histograms (10ms to ~40s range).
	BucketStart10ms = 0.01
	// BucketStart100ms is the starting bucket for 100ms histograms (100ms to ~100s range).
	BucketStart100ms = 0.1
	// BucketStart64B is the starting bucket for 64 byte histograms.
	BucketStart64B = 64.0

	// BucketFactor2 is the common exponential growth factor.
	BucketFactor2 = 2

	// BucketCount10 defines 10 exponential buckets.
	BucketCount10 = 10
	// BucketCount12 defines 12 exponential buckets.
	BucketCount12 = 12
	// BucketCount15 defines 15 exponential buckets.
	BucketCount15 = 15

	// ConfidenceBucketWidth splits [0, 1] into tenths.
	ConfidenceBucketWidth = 0.1
	// ConfidenceBucketCount covers 0.1 through 1.0.
	ConfidenceBucketCount = 10
)

// ShutdownTimeout is the timeout for graceful shutdown of the metrics endpoint.
const ShutdownTimeout = 5 * time.Second
