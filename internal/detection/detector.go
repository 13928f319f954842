package detection

import "context"

// Detections is what a detector returns for one image: the candidates in the
// model's output order plus the model's label table.
type Detections struct {
	Items      []RawDetection
	ClassNames ClassNames
}

// Detector runs object detection on an encoded image.
type Detector interface {
	Detect(ctx context.Context, image []byte) (Detections, error)
}

// Classify runs d on image and reduces the output to a single Result.
func Classify(ctx context.Context, d Detector, image []byte) (Result, error) {
	dets, err := d.Detect(ctx, image)
	if err != nil {
		return Result{}, err
	}
	return Reduce(dets.Items, dets.ClassNames)
}
