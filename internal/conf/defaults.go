// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "wastenet-go")
	viper.SetDefault("main.timezone", "Local")

	viper.SetDefault("logging.default_level", "info")
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", true)
	viper.SetDefault("logging.console.level", "info")
	viper.SetDefault("logging.file_output.enabled", false)
	viper.SetDefault("logging.file_output.path", "logs/wastenet.log")
	viper.SetDefault("logging.file_output.level", "info")

	viper.SetDefault("predictionlog.backend", "csv")
	viper.SetDefault("predictionlog.csvpath", "predictions_log.csv")
	viper.SetDefault("predictionlog.fsync", false)
	viper.SetDefault("predictionlog.sqlite.path", "predictions.db")
	viper.SetDefault("predictionlog.mysql.host", "localhost")
	viper.SetDefault("predictionlog.mysql.port", 3306)
	viper.SetDefault("predictionlog.mysql.username", "")
	viper.SetDefault("predictionlog.mysql.password", "")
	viper.SetDefault("predictionlog.mysql.database", "wastenet")

	viper.SetDefault("detector.url", "http://localhost:5000/detect")
	viper.SetDefault("detector.timeout", 30*time.Second)
	viper.SetDefault("detector.maximageedge", 1280)
	viper.SetDefault("detector.jpegquality", 90)

	viper.SetDefault("summary.provider", "gemini")
	viper.SetDefault("summary.model", "gemini-1.5-flash")
	viper.SetDefault("summary.apikey", "")
	viper.SetDefault("summary.endpoint", "")
	viper.SetDefault("summary.ollamaurl", "http://localhost:11434")
	viper.SetDefault("summary.timeout", 60*time.Second)
	viper.SetDefault("summary.ratelimit", 0.5)
	viper.SetDefault("summary.burst", 2)
	viper.SetDefault("summary.cachettl", 10*time.Minute)
	viper.SetDefault("summary.maxrows", 500)

	viper.SetDefault("webserver.listen", ":8080")
	viper.SetDefault("webserver.corsorigins", []string{"http://localhost:3000", "http://192.168.50.211:3000"})
	viper.SetDefault("webserver.maxuploadsize", 20<<20)

	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic", "wastenet/predictions")
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
	viper.SetDefault("mqtt.retain", false)

	viper.SetDefault("telemetry.prometheus.enabled", false)
	viper.SetDefault("telemetry.prometheus.listen", "0.0.0.0:8090")
	viper.SetDefault("telemetry.sentry.enabled", false)
	viper.SetDefault("telemetry.sentry.dsn", "")
	viper.SetDefault("telemetry.sentry.debug", false)
}
