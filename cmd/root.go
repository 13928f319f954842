// Package cmd assembles the wastenet command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wastenet/wastenet-go/cmd/analyze"
	"github.com/wastenet/wastenet-go/cmd/chat"
	"github.com/wastenet/wastenet-go/cmd/classify"
	"github.com/wastenet/wastenet-go/cmd/serve"
	"github.com/wastenet/wastenet-go/cmd/version"
	"github.com/wastenet/wastenet-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wastenet",
		Short:         "WasteNet-Go waste image classification service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
	}

	rootCmd.AddCommand(
		serve.Command(settings),
		classify.Command(settings),
		analyze.Command(settings),
		chat.Command(settings),
		version.Command(),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// flags have been written into settings by now
		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Main.Timezone, "timezone", viper.GetString("main.timezone"), "Timezone prediction timestamps are written in")
	rootCmd.PersistentFlags().StringVar(&settings.PredictionLog.Backend, "backend", viper.GetString("predictionlog.backend"), "Prediction log backend: csv, sqlite or mysql")
	rootCmd.PersistentFlags().StringVar(&settings.PredictionLog.CSVPath, "csvpath", viper.GetString("predictionlog.csvpath"), "Path of the CSV prediction log")
	rootCmd.PersistentFlags().StringVar(&settings.Detector.URL, "detector", viper.GetString("detector.url"), "URL of the object detection service")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
