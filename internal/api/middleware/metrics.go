package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wastenet/wastenet-go/internal/observability/metrics"
)

// NewHTTPMetrics records every request on m, labelled by route pattern.
func NewHTTPMetrics(m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			m.RecordHTTPRequest(c.Request().Method, path, c.Response().Status,
				time.Since(start).Seconds(), c.Response().Size)
			return nil
		}
	}
}
