package api

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wastenet/wastenet-go/internal/conf"
	"github.com/wastenet/wastenet-go/internal/observability"
	"github.com/wastenet/wastenet-go/internal/predictionlog"
)

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	s := &conf.Settings{Version: "1.2.3"}
	s.Main.Timezone = "UTC"
	s.WebServer.Listen = "127.0.0.1:0"
	s.WebServer.CORSOrigins = []string{"http://localhost:3000"}
	s.WebServer.MaxUploadSize = 1024
	s.PredictionLog.Backend = predictionlog.BackendCSV
	s.PredictionLog.CSVPath = filepath.Join(t.TempDir(), predictionlog.DefaultCSVPath)
	return s
}

func newTestServer(t *testing.T, opts ...ServerOption) (*Server, *conf.Settings) {
	t.Helper()
	settings := testSettings(t)
	store := predictionlog.NewCSVStore(settings.PredictionLog.CSVPath, predictionlog.WithLocation(time.UTC))
	require.NoError(t, store.EnsureExists(t.Context()))

	srv, err := New(settings, append([]ServerOption{WithStore(store)}, opts...)...)
	require.NoError(t, err)
	return srv, settings
}

func TestNewRejectsBadListenAddress(t *testing.T) {
	settings := testSettings(t)
	settings.WebServer.Listen = "no-port"

	_, err := New(settings, WithStore(predictionlog.NewCSVStore(settings.PredictionLog.CSVPath)))
	require.Error(t, err)
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(testSettings(t))
	require.Error(t, err)
}

func TestServerRoutesAndMiddleware(t *testing.T) {
	m, err := observability.NewMetrics()
	require.NoError(t, err)
	srv, _ := newTestServer(t, WithMetrics(m))

	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Contains(t, rec.Body.String(), `"version":"1.2.3"`)

	req := httptest.NewRequest(http.MethodOptions, "/api/predict", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	big := strings.Repeat("x", 4096)
	req = httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")

	require.NotNil(t, srv.APIController())
}

func TestServeStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv, _ := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/api/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test probe
		if err != nil {
			return false
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	http.DefaultClient.CloseIdleConnections()
}

func TestConfigFromSettings(t *testing.T) {
	settings := testSettings(t)
	cfg := ConfigFromSettings(settings)

	assert.Equal(t, "127.0.0.1:0", cfg.Listen)
	assert.Equal(t, int64(1024), cfg.BodyLimit)
	assert.Equal(t, DefaultWriteTimeout, cfg.WriteTimeout)
	require.NoError(t, cfg.Validate())

	cfg.ReadTimeout = 0
	require.Error(t, cfg.Validate())
}

func TestDiskPath(t *testing.T) {
	srv, settings := newTestServer(t)
	assert.Equal(t, filepath.Dir(settings.PredictionLog.CSVPath), srv.diskPath())

	settings.PredictionLog.Backend = predictionlog.BackendSQLite
	settings.PredictionLog.SQLite.Path = "/var/lib/wastenet/predictions.db"
	assert.Equal(t, "/var/lib/wastenet", srv.diskPath())

	settings.PredictionLog.Backend = predictionlog.BackendMySQL
	assert.Equal(t, ".", srv.diskPath())
}
