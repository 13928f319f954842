// config.go: settings for the WasteNet-Go application and functions to load and save them.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/wastenet/wastenet-go/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// MainSettings contains general application settings.
type MainSettings struct {
	Name     string // node name, used as the MQTT client id
	Timezone string // "Local", "UTC" or an IANA name; prediction timestamps are written in it
}

// SQLiteSettings configures the SQLite log backend.
type SQLiteSettings struct {
	Path string
}

// MySQLSettings configures the MySQL log backend.
type MySQLSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

// PredictionLogSettings selects where classifications are stored.
type PredictionLogSettings struct {
	Backend string // csv, sqlite or mysql
	CSVPath string
	Fsync   bool // sync the CSV file after every append
	SQLite  SQLiteSettings
	MySQL   MySQLSettings
}

// DetectorSettings configures the remote object detector.
type DetectorSettings struct {
	URL          string
	Timeout      time.Duration
	MaxImageEdge int // longest edge after normalization, 0 disables resizing
	JPEGQuality  int
}

// SummarySettings configures the text generator used for summaries and chat.
type SummarySettings struct {
	Provider  string // gemini or ollama
	Model     string
	APIKey    string
	Endpoint  string // Gemini API base URL override
	OllamaURL string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
	CacheTTL  time.Duration
	MaxRows   int // raw rows included in the summary prompt
}

// WebServerSettings configures the HTTP API.
type WebServerSettings struct {
	Listen        string
	CORSOrigins   []string
	MaxUploadSize int64 // bytes
}

// MQTTSettings configures prediction event publishing.
type MQTTSettings struct {
	Enabled  bool
	Broker   string
	Topic    string
	Username string
	Password string
	Retain   bool
}

// PrometheusSettings configures the metrics endpoint.
type PrometheusSettings struct {
	Enabled bool
	Listen  string
}

// SentrySettings configures opt-in error reporting.
type SentrySettings struct {
	Enabled bool
	DSN     string
	Debug   bool
}

// TelemetrySettings groups metrics and error reporting.
type TelemetrySettings struct {
	Prometheus PrometheusSettings
	Sentry     SentrySettings
}

// Settings contains all configuration options for the application.
type Settings struct {
	Debug   bool
	Version string `yaml:"-" mapstructure:"-"` // build version, runtime value

	Main          MainSettings
	Logging       logger.LoggingConfig
	PredictionLog PredictionLogSettings
	Detector      DetectorSettings
	Summary       SummarySettings
	WebServer     WebServerSettings
	MQTT          MQTTSettings
	Telemetry     TelemetrySettings
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a new
// Settings instance. A missing configuration file is created from the
// embedded default.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := configureEnvironmentVariables(); err != nil {
		return err
	}

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config into dir and reads it.
func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")

	defaultConfig, err := getDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, defaultConfig, 0o600); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	viper.SetConfigFile(configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() ([]byte, error) {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return nil, fmt.Errorf("error reading embedded config: %w", err)
	}
	return data, nil
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig writes settings to configPath atomically.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer func() { _ = os.Remove(tempFileName) }()

	if _, err := tempFile.Write(yamlData); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}
	return nil
}

// Location resolves Main.Timezone.
func (s *Settings) Location() (*time.Location, error) {
	switch s.Main.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	default:
		return time.LoadLocation(s.Main.Timezone)
	}
}
