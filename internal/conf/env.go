// env.go - Environment variable configuration and validation for WasteNet-Go
package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every automatically bound environment variable.
const EnvPrefix = "WASTENET"

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVars   []string           // Environment variable names, first match wins
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"detector.url", []string{"WASTENET_DETECTOR_URL"}, validateEnvURL},
		{"detector.timeout", []string{"WASTENET_DETECTOR_TIMEOUT"}, nil},

		{"predictionlog.backend", []string{"WASTENET_PREDICTIONLOG_BACKEND"}, validateEnvBackend},
		{"predictionlog.csvpath", []string{"WASTENET_PREDICTIONLOG_CSVPATH"}, nil},
		{"predictionlog.mysql.password", []string{"WASTENET_PREDICTIONLOG_MYSQL_PASSWORD"}, nil},

		{"summary.provider", []string{"WASTENET_SUMMARY_PROVIDER"}, nil},
		{"summary.apikey", []string{"WASTENET_SUMMARY_APIKEY", "GEMINI_API_KEY"}, nil},
		{"summary.ollamaurl", []string{"WASTENET_SUMMARY_OLLAMAURL"}, validateEnvURL},

		{"webserver.listen", []string{"WASTENET_WEBSERVER_LISTEN"}, nil},

		{"mqtt.enabled", []string{"WASTENET_MQTT_ENABLED"}, validateEnvBool},
		{"mqtt.password", []string{"WASTENET_MQTT_PASSWORD"}, nil},

		{"telemetry.sentry.dsn", []string{"WASTENET_SENTRY_DSN"}, nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		args := append([]string{binding.ConfigKey}, binding.EnvVars...)
		if err := viper.BindEnv(args...); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVars[0], err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		for _, name := range binding.EnvVars {
			if value := os.Getenv(name); value != "" {
				if err := binding.Validate(value); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", name, value, err))
				}
				break
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

// validateEnvBool validates boolean environment variables
func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

// validateEnvURL requires an absolute http(s) or tcp URL.
func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be an absolute URL")
	}
	return nil
}

func validateEnvBackend(value string) error {
	switch strings.ToLower(value) {
	case "csv", "sqlite", "mysql":
		return nil
	default:
		return fmt.Errorf("must be csv, sqlite or mysql")
	}
}

// loadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored and set variables are never overridden.
func loadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("error loading %s: %w", path, err)
		}
	}
	return nil
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables() error {
	if err := loadDotEnv(".env"); err != nil {
		return err
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return bindEnvVars()
}
