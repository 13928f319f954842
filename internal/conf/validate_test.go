package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	return &Settings{
		Main: MainSettings{Name: "wastenet-go", Timezone: "UTC"},
		PredictionLog: PredictionLogSettings{
			Backend: "csv",
			CSVPath: "predictions_log.csv",
			MySQL:   MySQLSettings{Host: "localhost", Port: 3306, Database: "wastenet"},
		},
		Detector: DetectorSettings{
			URL:          "http://localhost:5000/detect",
			Timeout:      30 * time.Second,
			MaxImageEdge: 1280,
			JPEGQuality:  90,
		},
		Summary: SummarySettings{
			Provider:  "gemini",
			OllamaURL: "http://localhost:11434",
			RateLimit: 0.5,
			Burst:     2,
			MaxRows:   500,
		},
		WebServer: WebServerSettings{Listen: ":8080", MaxUploadSize: 1 << 20},
		MQTT:      MQTTSettings{Broker: "tcp://localhost:1883", Topic: "wastenet/predictions"},
		Telemetry: TelemetrySettings{Prometheus: PrometheusSettings{Listen: "0.0.0.0:8090"}},
	}
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{name: "valid", mutate: func(*Settings) {}},
		{
			name:    "unknown backend",
			mutate:  func(s *Settings) { s.PredictionLog.Backend = "postgres" },
			wantErr: "predictionlog backend",
		},
		{
			name:    "mysql without database",
			mutate:  func(s *Settings) { s.PredictionLog.Backend = "mysql"; s.PredictionLog.MySQL.Database = "" },
			wantErr: "mysql database",
		},
		{
			name:    "sqlite without path",
			mutate:  func(s *Settings) { s.PredictionLog.Backend = "sqlite" },
			wantErr: "sqlite path",
		},
		{
			name:    "relative detector url",
			mutate:  func(s *Settings) { s.Detector.URL = "/detect" },
			wantErr: "detector url",
		},
		{
			name:    "bad timezone",
			mutate:  func(s *Settings) { s.Main.Timezone = "Mars/Olympus" },
			wantErr: "timezone",
		},
		{
			name:    "unknown provider",
			mutate:  func(s *Settings) { s.Summary.Provider = "openai" },
			wantErr: "summary provider",
		},
		{
			name:    "rate limit without burst",
			mutate:  func(s *Settings) { s.Summary.Burst = 0 },
			wantErr: "burst",
		},
		{
			name:    "bad listen address",
			mutate:  func(s *Settings) { s.WebServer.Listen = "8080" },
			wantErr: "webserver listen",
		},
		{
			name:    "mqtt enabled without topic",
			mutate:  func(s *Settings) { s.MQTT.Enabled = true; s.MQTT.Topic = "" },
			wantErr: "mqtt topic",
		},
		{
			name:   "mqtt disabled ignores broker",
			mutate: func(s *Settings) { s.MQTT.Broker = "" },
		},
		{
			name:    "sentry without dsn",
			mutate:  func(s *Settings) { s.Telemetry.Sentry.Enabled = true },
			wantErr: "sentry dsn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(s)

			err := ValidateSettings(s)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSettingsCollectsAllErrors(t *testing.T) {
	s := validSettings()
	s.Detector.JPEGQuality = 0
	s.WebServer.MaxUploadSize = 0
	s.Summary.MaxRows = -1

	err := ValidateSettings(s)
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 3)
}

func TestSettingsAdapters(t *testing.T) {
	s := validSettings()
	s.Version = "1.2.3"
	s.PredictionLog.Backend = "mysql"
	s.PredictionLog.MySQL.Username = "waste"
	s.Summary.Timeout = 0
	s.Detector.MaxImageEdge = 0

	logCfg := s.PredictionLogConfig()
	assert.Equal(t, "mysql", logCfg.Backend)
	assert.Equal(t, "waste", logCfg.MySQL.Username)
	assert.Equal(t, 3306, logCfg.MySQL.Port)

	sumCfg := s.SummaryConfig()
	assert.Equal(t, 60*time.Second, sumCfg.Timeout, "zero timeout falls back to the default")
	assert.Equal(t, 500, sumCfg.MaxRows)

	assert.Equal(t, "gemini", s.ProviderConfig().Provider)

	imgOpts := s.ImageOptions()
	assert.Equal(t, 0, imgOpts.MaxEdge)
	assert.Equal(t, 90, imgOpts.JPEGQuality)

	mqttCfg := s.MQTTConfig()
	assert.Equal(t, "wastenet-go", mqttCfg.ClientID)
	assert.Equal(t, "wastenet/predictions", mqttCfg.Topic)

	assert.Equal(t, "1.2.3", s.SentryConfig().Release)
}
