package mqtt

import (
	"time"

	"github.com/wastenet/wastenet-go/internal/detection"
	"github.com/wastenet/wastenet-go/internal/predictionlog"
)

// PredictionEventDTO is the payload published for every classification.
type PredictionEventDTO struct {
	Timestamp      string      `json:"timestamp"` // RFC3339
	PredictedClass string      `json:"predictedClass"`
	Confidence     float64     `json:"confidence"`
	ImageName      string      `json:"imageName"`
	DayOfWeek      string      `json:"dayOfWeek"`
	Month          string      `json:"month"`
	Box            *[4]float64 `json:"box,omitempty"`
}

// NewPredictionEventDTO builds the payload from a stored record and the
// detection box, which is nil for "No detection".
func NewPredictionEventDTO(rec predictionlog.Record, box *detection.Box) *PredictionEventDTO {
	dto := &PredictionEventDTO{
		Timestamp:      rec.Timestamp.Format(time.RFC3339),
		PredictedClass: rec.PredictedClass,
		Confidence:     rec.Confidence,
		ImageName:      rec.ImageName,
		DayOfWeek:      rec.DayOfWeek,
		Month:          rec.Month,
	}
	if box != nil {
		b := [4]float64(*box)
		dto.Box = &b
	}
	return dto
}
