package classify

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wastenet/wastenet-go/internal/analysis"
	"github.com/wastenet/wastenet-go/internal/conf"
)

// Command creates the command classifying image files.
func Command(settings *conf.Settings) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "classify [image or directory...]",
		Short: "Classify image files",
		Long:  "Classify images with the detection service and append the results to the prediction log.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != analysis.FormatTable && format != analysis.FormatCSV {
				return fmt.Errorf("unsupported output format %q", format)
			}
			return analysis.RunWithComponents(cmd.Context(), settings, func(ctx context.Context, c *analysis.Components) error {
				return analysis.ClassifyImages(ctx, c, args, format, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", analysis.FormatTable, "Output format: table, csv")

	return cmd
}
