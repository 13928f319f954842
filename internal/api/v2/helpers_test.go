package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wastenet/wastenet-go/internal/analytics"
	"github.com/wastenet/wastenet-go/internal/detection"
	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/predictionlog"
)

var wasteClasses = detection.ClassNamesFromSlice([]string{"plastic", "glass", "metal", "paper"})

// stubDetector returns a fixed answer.
type stubDetector struct {
	dets  detection.Detections
	err   error
	calls int
	mu    sync.Mutex
}

func (s *stubDetector) Detect(context.Context, []byte) (detection.Detections, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.dets, s.err
}

// mockSummarizer is a testify mock for Summarizer.
type mockSummarizer struct {
	mock.Mock
}

func (m *mockSummarizer) Summarize(ctx context.Context, result analytics.Result, records []predictionlog.Record) string {
	return m.Called(ctx, result, records).String(0)
}

func (m *mockSummarizer) Answer(ctx context.Context, question string) (string, error) {
	args := m.Called(ctx, question)
	return args.String(0), args.Error(1)
}

// recordingPublisher captures published predictions.
type recordingPublisher struct {
	mu      sync.Mutex
	records []predictionlog.Record
	boxes   []*detection.Box
	err     error
}

func (p *recordingPublisher) PublishPrediction(_ context.Context, rec predictionlog.Record, box *detection.Box) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, rec)
	p.boxes = append(p.boxes, box)
	return p.err
}

// failingStore fails every operation with a storage error.
type failingStore struct{}

func storageError() error {
	return errors.Newf("disk full").Component("predictionlog").Category(errors.CategoryFileIO).Build()
}

func (failingStore) EnsureExists(context.Context) error { return storageError() }
func (failingStore) Append(context.Context, predictionlog.Entry) (predictionlog.Record, error) {
	return predictionlog.Record{}, storageError()
}
func (failingStore) ReadAll(context.Context) (*predictionlog.Snapshot, error) {
	return nil, storageError()
}
func (failingStore) Close() error { return nil }

// stepClock starts at start and advances one minute per call.
func stepClock(start time.Time) predictionlog.Clock {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Minute)
		return now
	}
}

type testEnv struct {
	echo       *echo.Echo
	controller *Controller
	store      *predictionlog.CSVStore
	detector   *stubDetector
	summarizer *mockSummarizer
	publisher  *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := predictionlog.NewCSVStore(
		filepath.Join(t.TempDir(), predictionlog.DefaultCSVPath),
		predictionlog.WithClock(stepClock(time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC))),
		predictionlog.WithLocation(time.UTC),
	)
	require.NoError(t, store.EnsureExists(t.Context()))

	env := &testEnv{
		echo:       echo.New(),
		store:      store,
		detector:   &stubDetector{},
		summarizer: &mockSummarizer{},
		publisher:  &recordingPublisher{},
	}

	c, err := New(env.echo, store, env.detector, env.summarizer,
		WithPublisher(env.publisher),
		WithLocation(time.UTC),
		WithDiskPath(t.TempDir()),
		WithVersion("test"))
	require.NoError(t, err)
	env.controller = c
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.echo.ServeHTTP(rec, req)
	return rec
}

// pngImage renders a small solid image.
func pngImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := range 24 {
		for x := range 32 {
			img.Set(x, y, color.RGBA{R: 40, G: 160, B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// uploadRequest builds a multipart request carrying data in the "file" field.
func uploadRequest(t *testing.T, target, filename string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}
