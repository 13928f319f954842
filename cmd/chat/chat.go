package chat

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wastenet/wastenet-go/internal/analysis"
	"github.com/wastenet/wastenet-go/internal/conf"
)

// Command creates the command answering waste management questions.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask a waste management question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return analysis.RunWithComponents(cmd.Context(), settings, func(ctx context.Context, c *analysis.Components) error {
				return analysis.Ask(ctx, c, question, cmd.OutOrStdout())
			})
		},
	}
}
