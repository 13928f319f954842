// Package api implements the JSON endpoints of the WasteNet-Go HTTP API.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wastenet/wastenet-go/internal/analytics"
	"github.com/wastenet/wastenet-go/internal/detection"
	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/imageutil"
	"github.com/wastenet/wastenet-go/internal/logger"
	"github.com/wastenet/wastenet-go/internal/observability"
	"github.com/wastenet/wastenet-go/internal/predictionlog"
)

// Summarizer produces the natural-language parts of the API.
// *summary.Requester satisfies it.
type Summarizer interface {
	Summarize(ctx context.Context, result analytics.Result, records []predictionlog.Record) string
	Answer(ctx context.Context, question string) (string, error)
}

// PredictionPublisher forwards stored predictions, e.g. to MQTT.
type PredictionPublisher interface {
	PublishPrediction(ctx context.Context, rec predictionlog.Record, box *detection.Box) error
}

// Controller manages the API routes and handlers
type Controller struct {
	Echo  *echo.Echo
	Group *echo.Group

	Store      predictionlog.Store
	Detector   detection.Detector
	Summarizer Summarizer

	publisher    PredictionPublisher
	metrics      *observability.Metrics
	imageOptions imageutil.Options
	location     *time.Location
	diskPath     string
	version      string
	startTime    time.Time
	logger       logger.Logger
}

// Option is a functional option for configuring the Controller.
type Option func(*Controller)

// WithPublisher forwards every stored prediction to p.
func WithPublisher(p PredictionPublisher) Option {
	return func(c *Controller) { c.publisher = p }
}

// WithMetrics records request outcomes on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithImageOptions sets upload normalization.
func WithImageOptions(opts imageutil.Options) Option {
	return func(c *Controller) { c.imageOptions = opts }
}

// WithLocation sets the zone uploaded logs are parsed in.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithDiskPath sets the path whose filesystem usage the health endpoint reports.
func WithDiskPath(path string) Option {
	return func(c *Controller) { c.diskPath = path }
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(version string) Option {
	return func(c *Controller) { c.version = version }
}

// WithLogger sets the controller logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.logger = log
		}
	}
}

// New creates the API controller and registers its routes under /api.
func New(e *echo.Echo, store predictionlog.Store, detector detection.Detector, summarizer Summarizer, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, errors.Newf("prediction log store is required").
			Component("api").
			Category(errors.CategoryConfiguration).
			Build()
	}

	c := &Controller{
		Echo:         e,
		Store:        store,
		Detector:     detector,
		Summarizer:   summarizer,
		imageOptions: imageutil.DefaultOptions(),
		location:     time.Local,
		diskPath:     ".",
		startTime:    time.Now(),
		logger:       logger.NewSlogLogger(nil, logger.LogLevelInfo, nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Module("api")

	c.initRoutes()
	return c, nil
}

func (c *Controller) initRoutes() {
	c.Group = c.Echo.Group("/api")

	c.Group.GET("/health", c.HealthCheck)
	c.Group.POST("/predict", c.Predict)
	c.Group.POST("/analyze", c.Analyze)
	c.Group.GET("/analytics", c.GetAnalytics)
	c.Group.POST("/chat", c.Chat)
	c.Group.GET("/log", c.ExportLog)
}

// ErrorResponse represents a standardized error response for the API
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // Unique identifier for tracking this error
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int, correlationID string) *ErrorResponse {
	if correlationID == "" {
		correlationID = generateCorrelationID()
	}

	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	}
}

// generateCorrelationID returns a short random identifier.
func generateCorrelationID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// HandleError constructs and returns an appropriate error response
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	correlationID := ctx.Response().Header().Get(echo.HeaderXRequestID)
	errorResp := NewErrorResponse(err, message, code, correlationID)

	fields := []logger.Field{
		logger.String("correlation_id", errorResp.CorrelationID),
		logger.String("message", message),
		logger.Int("code", code),
		logger.String("path", ctx.Request().URL.Path),
		logger.String("method", ctx.Request().Method),
		logger.String("ip", ctx.RealIP()),
	}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}

	if code >= http.StatusInternalServerError {
		c.logger.Error("API error", fields...)
	} else {
		c.logger.Warn("API request rejected", fields...)
	}

	return ctx.JSON(code, errorResp)
}

// statusForError maps an error category onto an HTTP status.
func statusForError(err error) int {
	var ee *errors.EnhancedError
	if !errors.As(err, &ee) {
		return http.StatusInternalServerError
	}
	switch errors.ErrorCategory(ee.GetCategory()) {
	case errors.CategoryImageDecode, errors.CategoryFileParsing:
		return http.StatusBadRequest
	case errors.CategoryDetection, errors.CategoryNetwork:
		return http.StatusBadGateway
	case errors.CategoryTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorType(err error) string {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		return ee.GetCategory()
	}
	return string(errors.CategoryGeneric)
}
