// Package analysis assembles the classification pipeline from settings and
// runs it as a service or from the command line.
package analysis

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wastenet/wastenet-go/internal/conf"
	"github.com/wastenet/wastenet-go/internal/detection"
	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/httpclient"
	"github.com/wastenet/wastenet-go/internal/logger"
	"github.com/wastenet/wastenet-go/internal/observability"
	"github.com/wastenet/wastenet-go/internal/predictionlog"
	"github.com/wastenet/wastenet-go/internal/summary"
)

// Components are the collaborators shared by every entry point.
type Components struct {
	Settings   *conf.Settings
	Logger     logger.Logger
	Metrics    *observability.Metrics // nil outside the service
	Store      predictionlog.Store
	Detector   detection.Detector
	Summarizer *summary.Requester

	httpClient *httpclient.Client
}

// NewLogger builds the central logger from the logging section. The debug
// flag lowers the default level.
func NewLogger(settings *conf.Settings) (*logger.CentralLogger, error) {
	cfg := settings.Logging
	if settings.Debug {
		cfg.DefaultLevel = "debug"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = settings.Main.Timezone
	}
	return logger.NewCentralLogger(&cfg)
}

// NewComponents opens the prediction log and builds the detector and
// summarizer. A summarizer whose generator cannot be constructed answers
// every request with the construction error.
func NewComponents(ctx context.Context, settings *conf.Settings, log logger.Logger, m *observability.Metrics) (*Components, error) {
	c := &Components{
		Settings: settings,
		Logger:   log,
		Metrics:  m,
		httpClient: httpclient.New(&httpclient.Config{
			DefaultTimeout: settings.Detector.Timeout,
			UserAgent:      userAgent(settings),
		}),
	}

	store, err := openStore(ctx, settings, log, m)
	if err != nil {
		return nil, err
	}
	c.Store = store

	c.Detector = detection.NewRemoteDetector(c.httpClient, settings.Detector.URL, settings.Detector.Timeout, log.Module("detection"))
	c.Summarizer = newSummarizer(ctx, settings, log, m)

	log.Debug("components ready",
		logger.String("backend", settings.PredictionLog.Backend),
		logger.String("detector", settings.Detector.URL),
		logger.String("provider", settings.Summary.Provider))

	return c, nil
}

// Close releases the prediction log and idle detector connections.
func (c *Components) Close() error {
	if c.httpClient != nil {
		c.httpClient.Close()
	}
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

func openStore(ctx context.Context, settings *conf.Settings, log logger.Logger, m *observability.Metrics) (predictionlog.Store, error) {
	loc, err := settings.Location()
	if err != nil {
		return nil, errors.New(fmt.Errorf("invalid timezone %q: %w", settings.Main.Timezone, err)).
			Component("analysis").
			Category(errors.CategoryConfiguration).
			Build()
	}

	opts := []predictionlog.Option{
		predictionlog.WithLocation(loc),
		predictionlog.WithLogger(log.Module("predictionlog")),
		predictionlog.WithFsync(settings.PredictionLog.Fsync),
	}
	if m != nil {
		opts = append(opts, predictionlog.WithRecorder(m.PredictionLog))
	}

	store, err := predictionlog.Open(settings.PredictionLogConfig(), opts...)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureExists(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func newSummarizer(ctx context.Context, settings *conf.Settings, log logger.Logger, m *observability.Metrics) *summary.Requester {
	opts := []summary.Option{summary.WithLogger(log.Module("summary"))}
	if m != nil {
		opts = append(opts, summary.WithRecorder(m.Summary))
	}

	gen, err := summary.NewGenerator(ctx, settings.ProviderConfig(), &http.Client{})
	if err != nil {
		log.Warn("text generator unavailable, summaries will report the error",
			logger.String("provider", settings.Summary.Provider),
			logger.Error(err))
		gen = unavailableGenerator{err: err}
	}
	return summary.NewRequester(gen, settings.SummaryConfig(), opts...)
}

// unavailableGenerator fails every call with the error that prevented
// building the real generator.
type unavailableGenerator struct {
	err error
}

func (g unavailableGenerator) Generate(context.Context, string) (string, error) {
	return "", g.err
}

func userAgent(settings *conf.Settings) string {
	if settings.Version == "" {
		return "WasteNet-Go"
	}
	return "WasteNet-Go/" + settings.Version
}

// RunWithComponents builds the logger and components, calls fn and releases
// everything afterwards. It backs the one-shot CLI commands.
func RunWithComponents(ctx context.Context, settings *conf.Settings, fn func(ctx context.Context, c *Components) error) error {
	cl, err := NewLogger(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = cl.Close() }()

	log := cl.Module("cli")
	c, err := NewComponents(ctx, settings, log, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Warn("failed to close prediction log", logger.Error(err))
		}
	}()

	return fn(ctx, c)
}
