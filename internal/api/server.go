package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	gommonlog "github.com/labstack/gommon/log"

	mw "github.com/wastenet/wastenet-go/internal/api/middleware"
	v2 "github.com/wastenet/wastenet-go/internal/api/v2"
	"github.com/wastenet/wastenet-go/internal/conf"
	"github.com/wastenet/wastenet-go/internal/detection"
	"github.com/wastenet/wastenet-go/internal/logger"
	"github.com/wastenet/wastenet-go/internal/observability"
	"github.com/wastenet/wastenet-go/internal/predictionlog"
)

// Server is the main HTTP server for WasteNet-Go.
// It manages the Echo framework instance, middleware, and all HTTP routes.
type Server struct {
	echo     *echo.Echo
	config   *Config
	settings *conf.Settings
	logger   logger.Logger

	// Dependencies
	store      predictionlog.Store
	detector   detection.Detector
	summarizer v2.Summarizer
	publisher  v2.PredictionPublisher
	metrics    *observability.Metrics

	apiController *v2.Controller
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(log logger.Logger) ServerOption {
	return func(s *Server) { s.logger = log }
}

// WithStore sets the prediction log.
func WithStore(store predictionlog.Store) ServerOption {
	return func(s *Server) { s.store = store }
}

// WithDetector sets the object detector.
func WithDetector(d detection.Detector) ServerOption {
	return func(s *Server) { s.detector = d }
}

// WithSummarizer sets the text generation front end.
func WithSummarizer(sum v2.Summarizer) ServerOption {
	return func(s *Server) { s.summarizer = sum }
}

// WithPublisher sets the prediction event publisher.
func WithPublisher(p v2.PredictionPublisher) ServerOption {
	return func(s *Server) { s.publisher = p }
}

// WithMetrics sets the observability metrics for the server.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// New creates a new HTTP server with the given settings and options.
func New(settings *conf.Settings, opts ...ServerOption) (*Server, error) {
	config := ConfigFromSettings(settings)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	s := &Server{
		config:   config,
		settings: settings,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	s.logger = s.logger.Module("server")

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	// requests are logged through the application logger
	s.echo.Logger.SetLevel(gommonlog.OFF)

	s.echo.Server.ReadTimeout = config.ReadTimeout
	s.echo.Server.WriteTimeout = config.WriteTimeout
	s.echo.Server.IdleTimeout = config.IdleTimeout

	s.setupMiddleware()

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}

	s.logger.Info("HTTP server initialized",
		logger.String("address", config.Listen),
		logger.Bool("debug", config.Debug))

	return s, nil
}

// setupMiddleware configures the Echo middleware stack.
func (s *Server) setupMiddleware() {
	s.echo.Use(echomw.Recover())
	s.echo.Use(mw.NewRequestID())
	s.echo.Use(mw.NewRequestLogger(s.logger))
	if s.metrics != nil {
		s.echo.Use(mw.NewHTTPMetrics(s.metrics.HTTP))
	}
	s.echo.Use(mw.NewCORS(s.config.AllowedOrigins))
	s.echo.Use(mw.NewBodyLimit(s.config.BodyLimit))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() error {
	opts := []v2.Option{
		v2.WithLogger(s.logger),
		v2.WithVersion(s.settings.Version),
		v2.WithImageOptions(s.settings.ImageOptions()),
		v2.WithDiskPath(s.diskPath()),
	}
	if loc, err := s.settings.Location(); err == nil {
		opts = append(opts, v2.WithLocation(loc))
	}
	if s.publisher != nil {
		opts = append(opts, v2.WithPublisher(s.publisher))
	}
	if s.metrics != nil {
		opts = append(opts, v2.WithMetrics(s.metrics))
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	controller, err := v2.New(s.echo, s.store, s.detector, s.summarizer, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize API v2: %w", err)
	}
	s.apiController = controller
	return nil
}

// diskPath is the directory holding the file-backed log.
func (s *Server) diskPath() string {
	switch s.settings.PredictionLog.Backend {
	case predictionlog.BackendSQLite:
		return dirOf(s.settings.PredictionLog.SQLite.Path)
	case predictionlog.BackendMySQL:
		return "."
	default:
		return dirOf(s.settings.PredictionLog.CSVPath)
	}
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.echo.Listener = ln

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", logger.String("address", ln.Addr().String()))
		if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		s.logger.Error("error during server shutdown", logger.Error(err))
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Echo returns the underlying Echo instance.
// This is useful for testing or advanced configuration.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// APIController returns the JSON API controller.
func (s *Server) APIController() *v2.Controller {
	return s.apiController
}

func dirOf(path string) string {
	if path == "" {
		return "."
	}
	return filepath.Dir(path)
}
