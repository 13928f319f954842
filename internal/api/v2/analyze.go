package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wastenet/wastenet-go/internal/analytics"
	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/logger"
	"github.com/wastenet/wastenet-go/internal/predictionlog"
)

// AnalyzeResponse is the body returned by POST /api/analyze.
type AnalyzeResponse struct {
	MonthlyData  analytics.Table `json:"monthlyData"`
	DailyData    analytics.Table `json:"dailyData"`
	Summary      string          `json:"summary"`
	RejectedRows int             `json:"rejectedRows"`
}

// AnalyticsResponse is the body returned by GET /api/analytics.
type AnalyticsResponse struct {
	MonthlyData  analytics.Table `json:"monthlyData"`
	DailyData    analytics.Table `json:"dailyData"`
	Total        int             `json:"total"`
	RejectedRows int             `json:"rejectedRows"`
}

// Analyze handles POST /api/analyze. An uploaded log in the 'file' field is
// analyzed instead of the server's own log. The summary degrades to an error
// text when the text generator fails; storage failures are hard errors.
func (c *Controller) Analyze(ctx echo.Context) error {
	snap, status, err := c.loadSnapshot(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to read prediction log", status)
	}

	result := analytics.Aggregate(snap.Records)

	summaryText := ""
	if c.Summarizer != nil {
		summaryText = c.Summarizer.Summarize(ctx.Request().Context(), result, snap.Records)
	}

	return ctx.JSON(http.StatusOK, AnalyzeResponse{
		MonthlyData:  result.Monthly,
		DailyData:    result.Daily,
		Summary:      summaryText,
		RejectedRows: len(snap.Rejected),
	})
}

// GetAnalytics handles GET /api/analytics over the server's own log.
func (c *Controller) GetAnalytics(ctx echo.Context) error {
	snap, err := c.Store.ReadAll(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to read prediction log", statusForError(err))
	}

	result := analytics.Aggregate(snap.Records)
	return ctx.JSON(http.StatusOK, AnalyticsResponse{
		MonthlyData:  result.Monthly,
		DailyData:    result.Daily,
		Total:        result.Total,
		RejectedRows: len(snap.Rejected),
	})
}

// loadSnapshot returns the uploaded log when present, else the stored one.
// Only a request without a file falls back to the stored log; a body that
// fails to parse is rejected.
func (c *Controller) loadSnapshot(ctx echo.Context) (*predictionlog.Snapshot, int, error) {
	fileHeader, err := ctx.FormFile(uploadField)
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			return nil, http.StatusBadRequest, errors.New(err).
				Component("api").
				Category(errors.CategoryFileParsing).
				Context("operation", "read_uploaded_log").
				Build()
		}
		snap, err := c.Store.ReadAll(ctx.Request().Context())
		if err != nil {
			return nil, statusForError(err), err
		}
		return snap, http.StatusOK, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	defer func() { _ = file.Close() }()

	snap, err := predictionlog.ParseCSV(file, c.location)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	if len(snap.Rejected) > 0 {
		c.logger.Warn("uploaded log has malformed rows",
			logger.String("file", fileHeader.Filename),
			logger.Int("rejected", len(snap.Rejected)))
		if c.metrics != nil {
			c.metrics.PredictionLog.RecordRejectedRows(len(snap.Rejected))
		}
	}
	return snap, http.StatusOK, nil
}
