// Package telemetry provides opt-in, privacy-filtered error reporting to Sentry.
package telemetry

import (
	"fmt"
	"runtime"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/logger"
)

// Config controls Sentry reporting.
type Config struct {
	Enabled     bool
	DSN         string
	Environment string
	Release     string
	SampleRate  float64
	Debug       bool

	// Transport overrides the HTTP transport, used by tests.
	Transport sentry.Transport
}

// PlatformInfo holds privacy-safe platform information for telemetry
type PlatformInfo struct {
	OS           string `json:"os"`
	Architecture string `json:"arch"`
	NumCPU       int    `json:"num_cpu"`
	GoVersion    string `json:"go_version"`
}

func collectPlatformInfo() PlatformInfo {
	return PlatformInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		NumCPU:       runtime.NumCPU(),
		GoVersion:    runtime.Version(),
	}
}

// Init initializes the Sentry SDK and installs the error reporter. It is a
// no-op unless cfg.Enabled is set.
func Init(cfg Config, log logger.Logger) error {
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	log = log.Module("telemetry")

	if !cfg.Enabled {
		log.Info("sentry telemetry is disabled (opt-in required)")
		errors.SetTelemetryReporter(nil)
		return nil
	}
	if cfg.DSN == "" && cfg.Transport == nil {
		return errors.Newf("sentry is enabled but no DSN is configured").
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}
	environment := cfg.Environment
	if environment == "" {
		environment = "production"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		SampleRate:       sampleRate,
		Debug:            cfg.Debug,
		AttachStacktrace: false,
		Environment:      environment,
		ServerName:       "",
		Release:          fmt.Sprintf("wastenet-go@%s", cfg.Release),
		Transport:        cfg.Transport,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}

	platform := collectPlatformInfo()
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("os", platform.OS)
		scope.SetTag("arch", platform.Architecture)
		scope.SetContext("platform", map[string]any{
			"num_cpu":    platform.NumCPU,
			"go_version": platform.GoVersion,
		})
	})

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	log.Info("sentry telemetry initialized", logger.String("environment", environment))
	return nil
}

// Flush waits up to timeout for buffered events to be sent.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// applyPrivacyFilters strips host and user identifying data from an event.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}

	for k := range event.Extra {
		if k != "error_type" && k != "component" {
			delete(event.Extra, k)
		}
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	return event
}
