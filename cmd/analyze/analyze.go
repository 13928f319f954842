package analyze

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/wastenet/wastenet-go/internal/analysis"
	"github.com/wastenet/wastenet-go/internal/conf"
)

// Command creates the command aggregating the prediction log.
func Command(settings *conf.Settings) *cobra.Command {
	var opts analysis.AnalyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Show prediction statistics",
		Long:  "Count predictions per month and day of week, optionally with a generated summary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.RunWithComponents(cmd.Context(), settings, func(ctx context.Context, c *analysis.Components) error {
				return analysis.AnalyzeLog(ctx, c, opts, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&opts.LogPath, "log", "", "Analyze this CSV log instead of the configured store")
	cmd.Flags().BoolVarP(&opts.Summary, "summary", "s", false, "Append a generated summary")

	return cmd
}
