package conf

import (
	"github.com/wastenet/wastenet-go/internal/imageutil"
	"github.com/wastenet/wastenet-go/internal/mqtt"
	"github.com/wastenet/wastenet-go/internal/predictionlog"
	"github.com/wastenet/wastenet-go/internal/summary"
	"github.com/wastenet/wastenet-go/internal/telemetry"
)

// PredictionLogConfig maps the predictionlog section onto predictionlog.Config.
func (s *Settings) PredictionLogConfig() predictionlog.Config {
	pl := s.PredictionLog
	return predictionlog.Config{
		Backend:    pl.Backend,
		CSVPath:    pl.CSVPath,
		SQLitePath: pl.SQLite.Path,
		MySQL: predictionlog.MySQLConfig{
			Host:     pl.MySQL.Host,
			Port:     pl.MySQL.Port,
			Username: pl.MySQL.Username,
			Password: pl.MySQL.Password,
			Database: pl.MySQL.Database,
		},
	}
}

// ImageOptions maps the detector section onto image normalization options.
func (s *Settings) ImageOptions() imageutil.Options {
	opts := imageutil.DefaultOptions()
	opts.MaxEdge = s.Detector.MaxImageEdge
	if s.Detector.JPEGQuality > 0 {
		opts.JPEGQuality = s.Detector.JPEGQuality
	}
	return opts
}

// SummaryConfig maps the summary section onto summary.Config.
func (s *Settings) SummaryConfig() summary.Config {
	d := summary.DefaultConfig()
	return summary.Config{
		Timeout:   timeoutOrDefault(s.Summary.Timeout, d.Timeout),
		RateLimit: s.Summary.RateLimit,
		Burst:     s.Summary.Burst,
		CacheTTL:  s.Summary.CacheTTL,
		MaxRows:   s.Summary.MaxRows,
	}
}

// ProviderConfig maps the summary section onto the generator selection.
func (s *Settings) ProviderConfig() summary.ProviderConfig {
	return summary.ProviderConfig{
		Provider:  s.Summary.Provider,
		Model:     s.Summary.Model,
		APIKey:    s.Summary.APIKey,
		Endpoint:  s.Summary.Endpoint,
		OllamaURL: s.Summary.OllamaURL,
	}
}

// MQTTConfig maps the mqtt section onto the client configuration.
func (s *Settings) MQTTConfig() mqtt.Config {
	cfg := mqtt.DefaultConfig()
	cfg.Broker = s.MQTT.Broker
	cfg.ClientID = s.Main.Name
	cfg.Username = s.MQTT.Username
	cfg.Password = s.MQTT.Password
	cfg.Topic = s.MQTT.Topic
	cfg.Retain = s.MQTT.Retain
	return cfg
}

// SentryConfig maps the telemetry section onto telemetry.Config.
func (s *Settings) SentryConfig() telemetry.Config {
	return telemetry.Config{
		Enabled: s.Telemetry.Sentry.Enabled,
		DSN:     s.Telemetry.Sentry.DSN,
		Debug:   s.Telemetry.Sentry.Debug,
		Release: s.Version,
	}
}
