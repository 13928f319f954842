package api

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wastenet/wastenet-go/internal/logger"
	"github.com/wastenet/wastenet-go/internal/predictionlog"
)

// ExportLog handles GET /api/log, streaming the log in its CSV form.
func (c *Controller) ExportLog(ctx echo.Context) error {
	resp := ctx.Response()

	// The CSV store streams its file as-is, other backends are rendered.
	if w, ok := c.Store.(io.WriterTo); ok {
		resp.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		resp.Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+predictionlog.DefaultCSVPath+`"`)
		resp.WriteHeader(http.StatusOK)
		if _, err := w.WriteTo(resp); err != nil {
			c.logger.Error("log export interrupted", logger.Error(err))
		}
		return nil
	}

	snap, err := c.Store.ReadAll(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to read prediction log", statusForError(err))
	}

	resp.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	resp.Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+predictionlog.DefaultCSVPath+`"`)
	resp.WriteHeader(http.StatusOK)
	return predictionlog.WriteCSV(resp, snap.Records)
}
