// Package predictionlog is the append-only log of classifications. Every stored
// row carries the timestamp, the predicted class and confidence, the image name
// and the English weekday and month names derived from the timestamp.
package predictionlog

import (
	"time"

	"github.com/wastenet/wastenet-go/internal/detection"
)

// TimestampLayout is the on-disk timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

// Column names in storage order.
const (
	ColTimestamp      = "timestamp"
	ColPredictedClass = "predicted_class"
	ColConfidence     = "confidence"
	ColImageName      = "image_name"
	ColDayOfWeek      = "day_of_week"
	ColMonth          = "month"
)

// Header is the fixed column header of the log.
var Header = []string{ColTimestamp, ColPredictedClass, ColConfidence, ColImageName, ColDayOfWeek, ColMonth}

// Entry is what a caller hands to Append. The store stamps the time.
type Entry struct {
	PredictedClass string
	Confidence     float64
	ImageName      string
}

// EntryFromResult converts a classification into a log entry.
func EntryFromResult(result detection.Result, imageName string) Entry {
	return Entry{
		PredictedClass: result.Label,
		Confidence:     result.Confidence,
		ImageName:      imageName,
	}
}

// Record is one stored row.
type Record struct {
	Timestamp      time.Time `json:"timestamp"`
	PredictedClass string    `json:"predictedClass"`
	Confidence     float64   `json:"confidence"`
	ImageName      string    `json:"imageName"`
	DayOfWeek      string    `json:"dayOfWeek"`
	Month          string    `json:"month"`
}

// NewRecord stamps e with ts truncated to whole seconds and derives the
// weekday and month names.
func NewRecord(ts time.Time, e Entry) Record {
	ts = ts.Truncate(time.Second)
	return Record{
		Timestamp:      ts,
		PredictedClass: e.PredictedClass,
		Confidence:     e.Confidence,
		ImageName:      e.ImageName,
		DayOfWeek:      ts.Weekday().String(),
		Month:          ts.Month().String(),
	}
}
