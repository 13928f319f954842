package analysis

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wastenet/wastenet-go/internal/analytics"
	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/logger"
	"github.com/wastenet/wastenet-go/internal/predictionlog"
)

// AnalyzeOptions selects the log to analyze and whether to summarize it.
type AnalyzeOptions struct {
	// LogPath names a CSV log to read instead of the configured store.
	LogPath string
	Summary bool
}

// AnalyzeLog aggregates a prediction log and prints the monthly and daily
// tables, optionally followed by a generated summary.
func AnalyzeLog(ctx context.Context, c *Components, opts AnalyzeOptions, w io.Writer) error {
	snap, err := loadSnapshot(ctx, c, opts.LogPath)
	if err != nil {
		return err
	}

	if len(snap.Rejected) > 0 {
		c.Logger.Warn("prediction log has malformed rows", logger.Int("rejected", len(snap.Rejected)))
		for _, rowErr := range snap.Rejected {
			c.Logger.Debug("rejected row", logger.Int("line", rowErr.Line), logger.String("reason", rowErr.Reason))
		}
	}

	result := analytics.Aggregate(snap.Records)

	var sb strings.Builder
	sb.WriteString(renderCounts("Predictions per month", result.Monthly))
	sb.WriteString(renderCounts("Predictions per day of week", result.Daily))
	fmt.Fprintf(&sb, "\n%d predictions", result.Total)
	if len(snap.Rejected) > 0 {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf(", %d malformed rows skipped", len(snap.Rejected))))
	}
	sb.WriteString("\n")

	if opts.Summary && c.Summarizer != nil {
		text := c.Summarizer.Summarize(ctx, result, snap.Records)
		sb.WriteString(titleStyle.Render("Summary"))
		sb.WriteString("\n")
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	_, err = io.WriteString(w, sb.String())
	return err
}

func loadSnapshot(ctx context.Context, c *Components, path string) (*predictionlog.Snapshot, error) {
	if path == "" {
		return c.Store.ReadAll(ctx)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component("analysis").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	defer func() { _ = f.Close() }()

	loc, err := c.Settings.Location()
	if err != nil {
		return nil, err
	}
	return predictionlog.ParseCSV(f, loc)
}
