package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// isolate points the config search path at a fresh home directory and resets viper.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	viper.Reset()
	t.Cleanup(viper.Reset)
	return home
}

func TestLoadCreatesDefaultConfig(t *testing.T) {
	home := isolate(t)

	settings, err := Load()
	require.NoError(t, err)

	configPath := filepath.Join(home, ".config", appDirName, "config.yaml")
	_, err = os.Stat(configPath)
	require.NoError(t, err, "default config should be written on first run")

	assert.Equal(t, "wastenet-go", settings.Main.Name)
	assert.Equal(t, "csv", settings.PredictionLog.Backend)
	assert.Equal(t, "predictions_log.csv", settings.PredictionLog.CSVPath)
	assert.Equal(t, 30*time.Second, settings.Detector.Timeout)
	assert.Equal(t, 1280, settings.Detector.MaxImageEdge)
	assert.Equal(t, "gemini", settings.Summary.Provider)
	assert.Equal(t, 10*time.Minute, settings.Summary.CacheTTL)
	assert.Equal(t, ":8080", settings.WebServer.Listen)
	assert.Equal(t, []string{"http://localhost:3000", "http://192.168.50.211:3000"}, settings.WebServer.CORSOrigins)
	assert.Equal(t, "info", settings.Logging.DefaultLevel)
	require.NotNil(t, settings.Logging.Console)
	assert.True(t, settings.Logging.Console.Enabled)
	assert.False(t, settings.MQTT.Enabled)

	assert.Same(t, settings, GetSettings())
}

func TestLoadReadsExistingConfig(t *testing.T) {
	home := isolate(t)

	dir := filepath.Join(home, ".config", appDirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
predictionlog:
  backend: sqlite
  sqlite:
    path: /var/lib/wastenet/log.db
summary:
  provider: ollama
  model: llama3
`), 0o600))

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", settings.PredictionLog.Backend)
	assert.Equal(t, "/var/lib/wastenet/log.db", settings.PredictionLog.SQLite.Path)
	assert.Equal(t, "ollama", settings.Summary.Provider)
	assert.Equal(t, "llama3", settings.Summary.Model)
	// unspecified keys keep their defaults
	assert.Equal(t, 500, settings.Summary.MaxRows)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("WASTENET_DETECTOR_URL", "http://detector.internal:9000/v1/detect")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("WASTENET_WEBSERVER_MAXUPLOADSIZE", "1024")

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://detector.internal:9000/v1/detect", settings.Detector.URL)
	assert.Equal(t, "test-key", settings.Summary.APIKey)
	assert.Equal(t, int64(1024), settings.WebServer.MaxUploadSize)
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("WASTENET_PREDICTIONLOG_BACKEND", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WASTENET_PREDICTIONLOG_BACKEND")
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	home := isolate(t)

	dir := filepath.Join(home, ".config", appDirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
detector:
  jpegquality: 0
`), 0o600))

	_, err := Load()
	require.Error(t, err)

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 1)
}

func TestSaveYAMLConfigRoundTrip(t *testing.T) {
	isolate(t)

	settings, err := Load()
	require.NoError(t, err)
	settings.Summary.Model = "gemini-1.5-pro"
	settings.MQTT.Enabled = true

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveYAMLConfig(path, settings))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	summarySection, ok := doc["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "gemini-1.5-pro", summarySection["model"])
	assert.NotContains(t, doc, "version")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should be cleaned up")
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WASTENET_DOTENV_PROBE=from-file\n"), 0o600))
	t.Setenv("WASTENET_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("WASTENET_DOTENV_PROBE"))

	require.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("WASTENET_DOTENV_PROBE"))
}
