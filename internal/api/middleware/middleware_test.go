package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastenet/wastenet-go/internal/logger"
	"github.com/wastenet/wastenet-go/internal/observability/metrics"
)

func TestRequestIDAndLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.NewSlogLogger(buf, logger.LogLevelDebug, time.UTC)

	e := echo.New()
	e.Use(NewRequestID())
	e.Use(NewRequestLogger(log))
	e.GET("/api/health", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody))
	require.Equal(t, http.StatusNoContent, rec.Code)

	requestID := rec.Header().Get(echo.HeaderXRequestID)
	require.Len(t, requestID, 36)

	scanner := bufio.NewScanner(buf)
	require.True(t, scanner.Scan(), "one log line expected")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))

	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "/api/health", entry["uri"])
	assert.InDelta(t, http.StatusNoContent, entry["status"], 0)
	assert.Equal(t, requestID, entry["request_id"])
	assert.Equal(t, requestID, entry["trace_id"])
}

func TestRequestLoggerSkipper(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.NewSlogLogger(buf, logger.LogLevelDebug, time.UTC)

	e := echo.New()
	e.Use(NewRequestLoggerWithSkipper(log, func(c echo.Context) bool {
		return c.Request().URL.Path == "/metrics"
	}))
	e.GET("/metrics", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Zero(t, buf.Len())
}

func TestHTTPMetricsLabelsByRoute(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := metrics.NewHTTPMetrics(registry)
	require.NoError(t, err)

	e := echo.New()
	e.Use(NewHTTPMetrics(m))
	e.GET("/items/:id", func(c echo.Context) error { return c.String(http.StatusOK, c.Param("id")) })

	for _, path := range []string{"/items/1", "/items/2", "/nowhere"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, http.NoBody))
	}

	count, err := testutil.GatherAndCount(registry, "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per route and status")

	families, err := registry.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["path"] == "/items/:id" {
				found = true
				assert.InDelta(t, 2, metric.GetCounter().GetValue(), 0)
			}
		}
	}
	assert.True(t, found)
}

func TestBodyLimit(t *testing.T) {
	e := echo.New()
	e.Use(NewBodyLimit(16))
	e.POST("/upload", func(c echo.Context) error { return c.NoContent(http.StatusAccepted) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("small")))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	e := echo.New()
	e.Use(NewCORS([]string{"http://localhost:3000"}))
	e.GET("/api/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	req = httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody)
	req.Header.Set(echo.HeaderOrigin, "http://evil.example")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
