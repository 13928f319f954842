package serve

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wastenet/wastenet-go/internal/analysis"
	"github.com/wastenet/wastenet-go/internal/conf"
)

// Command creates the command running the HTTP API service.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the classification API",
		Long:  "Serve the prediction, analytics and chat API until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := analysis.NewLogger(settings)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = cl.Close() }()

			return analysis.Serve(cmd.Context(), settings, cl.Module("main"))
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
	}

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Listen, "listen", viper.GetString("webserver.listen"), "Listen address of the HTTP API")
	cmd.Flags().BoolVar(&settings.Telemetry.Prometheus.Enabled, "telemetry", viper.GetBool("telemetry.prometheus.enabled"), "Enable Prometheus telemetry endpoint")
	cmd.Flags().StringVar(&settings.Telemetry.Prometheus.Listen, "telemetry-listen", viper.GetString("telemetry.prometheus.listen"), "Listen address of the telemetry endpoint")
	cmd.Flags().BoolVar(&settings.MQTT.Enabled, "mqtt", viper.GetBool("mqtt.enabled"), "Publish predictions to the MQTT broker")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
