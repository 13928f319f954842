package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastenet/wastenet-go/internal/conf"
)

func loadSettings(t *testing.T) *conf.Settings {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	settings, err := conf.Load()
	require.NoError(t, err)
	return settings
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := RootCommand(loadSettings(t))

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "classify", "analyze", "chat", "version"})

	for _, flag := range []string{"debug", "timezone", "backend", "csvpath", "detector"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	root := RootCommand(loadSettings(t))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "wastenet-go")
	assert.Contains(t, out.String(), "config.yaml")
}

func TestAnalyzeCommandReadsLogFile(t *testing.T) {
	settings := loadSettings(t)
	settings.Logging.Console.Enabled = false
	dir := t.TempDir()

	logPath := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(logPath, []byte(
		"timestamp,predicted_class,confidence,image_name,day_of_week,month\n"+
			"2024-05-06 09:15:00,paper,0.61,x.jpg,Monday,May\n"), 0o600))

	root := RootCommand(settings)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"analyze", "--csvpath", filepath.Join(dir, "store.csv"), "--log", logPath})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "May")
	assert.Contains(t, out.String(), "paper")
	assert.Contains(t, out.String(), "1 predictions")
}

func TestInvalidFlagValueFailsValidation(t *testing.T) {
	root := RootCommand(loadSettings(t))
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"analyze", "--backend", "parquet"})

	require.Error(t, root.Execute())
}

func TestClassifyRejectsUnknownFormat(t *testing.T) {
	root := RootCommand(loadSettings(t))
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"classify", "--format", "xml", t.TempDir()})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}
