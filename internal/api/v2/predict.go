package api

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wastenet/wastenet-go/internal/detection"
	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/imageutil"
	"github.com/wastenet/wastenet-go/internal/logger"
	"github.com/wastenet/wastenet-go/internal/predictionlog"
)

// uploadField is the multipart field carrying the image or log file.
const uploadField = "file"

// PredictionResponse is the body returned by POST /api/predict.
type PredictionResponse struct {
	Prediction string         `json:"prediction"`
	Confidence float64        `json:"confidence"`
	Box        *detection.Box `json:"box"`
}

// Predict handles POST /api/predict: normalize the uploaded image, classify it,
// append the result to the prediction log and return it.
func (c *Controller) Predict(ctx echo.Context) error {
	if c.Detector == nil {
		return c.HandleError(ctx, nil, "Detector is not configured", http.StatusServiceUnavailable)
	}

	fileHeader, err := ctx.FormFile(uploadField)
	if err != nil {
		return c.HandleError(ctx, err, "An image must be uploaded in the 'file' field", http.StatusBadRequest)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to open uploaded image", http.StatusBadRequest)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to read uploaded image", http.StatusBadRequest)
	}

	img, err := imageutil.Normalize(bytes.NewReader(data), c.imageOptions)
	if c.metrics != nil {
		c.metrics.Detection.RecordImage(len(data), err == nil)
	}
	if err != nil {
		return c.HandleError(ctx, err, "Uploaded file is not a supported image", http.StatusBadRequest)
	}

	reqCtx := ctx.Request().Context()

	start := time.Now()
	result, err := detection.Classify(reqCtx, c.Detector, img.Data)
	if c.metrics != nil {
		errType := ""
		if err != nil {
			errType = errorType(err)
		}
		c.metrics.Detection.RecordDetectorCall(time.Since(start).Seconds(), errType)
	}
	if err != nil {
		if errors.Is(err, detection.ErrUnknownClass) {
			return c.HandleError(ctx, err, "Detector returned a class outside its label table", http.StatusInternalServerError)
		}
		return c.HandleError(ctx, err, "Object detection failed", statusForError(err))
	}

	rec, err := c.Store.Append(reqCtx, predictionlog.EntryFromResult(result, imageName(fileHeader.Filename)))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to record prediction", http.StatusInternalServerError)
	}

	if c.metrics != nil {
		c.metrics.Detection.RecordPrediction(result.Label, result.Confidence)
	}

	if c.publisher != nil {
		if err := c.publisher.PublishPrediction(reqCtx, rec, result.Box); err != nil {
			c.logger.Warn("failed to publish prediction",
				logger.String("image", rec.ImageName),
				logger.Error(err))
		}
	}

	c.logger.Debug("image classified",
		logger.String("image", rec.ImageName),
		logger.String("class", result.Label),
		logger.Float64("confidence", result.Confidence),
		logger.Int("width", img.Width),
		logger.Int("height", img.Height))

	return ctx.JSON(http.StatusOK, PredictionResponse{
		Prediction: result.Label,
		Confidence: result.Confidence,
		Box:        result.Box,
	})
}

// imageName keeps the base of the client file name, or invents one.
func imageName(uploaded string) string {
	name := filepath.Base(filepath.Clean("/" + uploaded))
	if name == "/" || name == "." || name == "" {
		return uuid.NewString() + ".jpg"
	}
	return name
}
