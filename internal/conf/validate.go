// conf/validate.go

package conf

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validators := []func(*Settings) []string{
		validateMainSettings,
		validatePredictionLogSettings,
		validateDetectorSettings,
		validateSummarySettings,
		validateWebServerSettings,
		validateMQTTSettings,
		validateTelemetrySettings,
	}
	for _, validate := range validators {
		ve.Errors = append(ve.Errors, validate(settings)...)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateMainSettings(settings *Settings) []string {
	if _, err := settings.Location(); err != nil {
		return []string{fmt.Sprintf("invalid main timezone %q: %v", settings.Main.Timezone, err)}
	}
	return nil
}

func validatePredictionLogSettings(settings *Settings) []string {
	var errs []string
	pl := settings.PredictionLog

	switch strings.ToLower(pl.Backend) {
	case "", "csv":
		if pl.CSVPath == "" {
			errs = append(errs, "predictionlog csvpath is required for the csv backend")
		}
	case "sqlite":
		if pl.SQLite.Path == "" {
			errs = append(errs, "predictionlog sqlite path is required for the sqlite backend")
		}
	case "mysql":
		if pl.MySQL.Host == "" {
			errs = append(errs, "predictionlog mysql host is required for the mysql backend")
		}
		if pl.MySQL.Port < 1 || pl.MySQL.Port > 65535 {
			errs = append(errs, fmt.Sprintf("predictionlog mysql port must be between 1 and 65535, got %d", pl.MySQL.Port))
		}
		if pl.MySQL.Database == "" {
			errs = append(errs, "predictionlog mysql database is required for the mysql backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("predictionlog backend must be csv, sqlite or mysql, got %q", pl.Backend))
	}

	return errs
}

func validateDetectorSettings(settings *Settings) []string {
	var errs []string
	d := settings.Detector

	if err := validateAbsoluteURL(d.URL); err != nil {
		errs = append(errs, fmt.Sprintf("detector url: %v", err))
	}
	if d.Timeout < 0 {
		errs = append(errs, "detector timeout must not be negative")
	}
	if d.MaxImageEdge < 0 {
		errs = append(errs, "detector maximageedge must not be negative")
	}
	if d.JPEGQuality < 1 || d.JPEGQuality > 100 {
		errs = append(errs, fmt.Sprintf("detector jpegquality must be between 1 and 100, got %d", d.JPEGQuality))
	}

	return errs
}

func validateSummarySettings(settings *Settings) []string {
	var errs []string
	s := settings.Summary

	switch strings.ToLower(s.Provider) {
	case "", "gemini":
	case "ollama":
		if err := validateAbsoluteURL(s.OllamaURL); err != nil {
			errs = append(errs, fmt.Sprintf("summary ollamaurl: %v", err))
		}
	default:
		errs = append(errs, fmt.Sprintf("summary provider must be gemini or ollama, got %q", s.Provider))
	}

	if s.RateLimit < 0 {
		errs = append(errs, "summary ratelimit must not be negative")
	}
	if s.RateLimit > 0 && s.Burst < 1 {
		errs = append(errs, "summary burst must be at least 1 when rate limiting is enabled")
	}
	if s.Timeout < 0 || s.CacheTTL < 0 {
		errs = append(errs, "summary timeout and cachettl must not be negative")
	}
	if s.MaxRows < 0 {
		errs = append(errs, "summary maxrows must not be negative")
	}

	return errs
}

func validateWebServerSettings(settings *Settings) []string {
	var errs []string
	w := settings.WebServer

	if _, _, err := net.SplitHostPort(w.Listen); err != nil {
		errs = append(errs, fmt.Sprintf("webserver listen address %q: %v", w.Listen, err))
	}
	if w.MaxUploadSize <= 0 {
		errs = append(errs, "webserver maxuploadsize must be positive")
	}

	return errs
}

func validateMQTTSettings(settings *Settings) []string {
	m := settings.MQTT
	if !m.Enabled {
		return nil
	}

	var errs []string
	if err := validateAbsoluteURL(m.Broker); err != nil {
		errs = append(errs, fmt.Sprintf("mqtt broker: %v", err))
	}
	if m.Topic == "" {
		errs = append(errs, "mqtt topic is required when mqtt is enabled")
	}
	return errs
}

func validateTelemetrySettings(settings *Settings) []string {
	var errs []string
	t := settings.Telemetry

	if t.Prometheus.Enabled {
		if _, _, err := net.SplitHostPort(t.Prometheus.Listen); err != nil {
			errs = append(errs, fmt.Sprintf("telemetry prometheus listen address %q: %v", t.Prometheus.Listen, err))
		}
	}
	if t.Sentry.Enabled && t.Sentry.DSN == "" {
		errs = append(errs, "telemetry sentry dsn is required when sentry is enabled")
	}

	return errs
}

func validateAbsoluteURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", raw)
	}
	return nil
}

// timeoutOrDefault returns d, or fallback when d is zero.
func timeoutOrDefault(d, fallback time.Duration) time.Duration {
	if d == 0 {
		return fallback
	}
	return d
}
