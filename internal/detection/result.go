// Package detection reduces the raw output of an object detector to the single
// classification recorded for an uploaded image.
package detection

import (
	"fmt"
	"math"

	"github.com/wastenet/wastenet-go/internal/errors"
)

// NoDetection is the label reported when the detector found nothing.
const NoDetection = "No detection"

// Box is a bounding box [x1, y1, x2, y2] in image pixel coordinates.
type Box [4]float64

// RawDetection is one candidate emitted by the detector for one image.
// Box ordering (x1 <= x2, y1 <= y2) is not checked.
type RawDetection struct {
	ClassIndex int
	Confidence float64
	Box        Box
}

// Result is the canonical classification of one image.
// Box is nil exactly when Label is NoDetection.
type Result struct {
	Label      string
	Confidence float64
	Box        *Box
}

// IsDetection reports whether the result carries an actual detection.
func (r Result) IsDetection() bool {
	return r.Box != nil
}

// Empty returns the sentinel result used when there are no detections.
func Empty() Result {
	return Result{Label: NoDetection, Confidence: 0.0}
}

// ErrUnknownClass is returned when a detection references a class index the
// model's label table does not contain. It indicates a model/label mismatch.
var ErrUnknownClass = errors.NewStd("class index not in label table")

// ClassNames maps a model class index to its human-readable label.
type ClassNames map[int]string

// Lookup returns the label for index.
func (c ClassNames) Lookup(index int) (string, bool) {
	name, ok := c[index]
	return name, ok
}

// ClassNamesFromSlice builds a table from a positional label list.
func ClassNamesFromSlice(labels []string) ClassNames {
	names := make(ClassNames, len(labels))
	for i, label := range labels {
		names[i] = label
	}
	return names
}

// Reduce collapses dets to the single highest-confidence detection.
//
// An empty slice yields the NoDetection sentinel. When several detections share
// the maximum confidence the earliest one wins. Candidates with a NaN confidence
// are ignored; if none remain the result is NoDetection. A class index missing
// from names returns an error wrapping ErrUnknownClass.
func Reduce(dets []RawDetection, names ClassNames) (Result, error) {
	best := -1
	for i := range dets {
		if math.IsNaN(dets[i].Confidence) {
			continue
		}
		if best < 0 || dets[i].Confidence > dets[best].Confidence {
			best = i
		}
	}
	if best < 0 {
		return Empty(), nil
	}

	winner := dets[best]
	label, ok := names.Lookup(winner.ClassIndex)
	if !ok {
		return Result{}, errors.New(fmt.Errorf("%w: index %d, table has %d labels",
			ErrUnknownClass, winner.ClassIndex, len(names))).
			Component("detection").
			Category(errors.CategoryValidation).
			Priority(errors.PriorityHigh).
			Context("operation", "reduce_detections").
			Context("class_index", winner.ClassIndex).
			Build()
	}

	box := winner.Box
	return Result{
		Label:      label,
		Confidence: winner.Confidence,
		Box:        &box,
	}, nil
}

// MustReduce is like Reduce but panics on a class index outside the table.
func MustReduce(dets []RawDetection, names ClassNames) Result {
	result, err := Reduce(dets, names)
	if err != nil {
		panic(err)
	}
	return result
}
