package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wastenet/wastenet-go/internal/buildinfo"
	"github.com/wastenet/wastenet-go/internal/conf"
)

// Command creates the command printing build metadata.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildinfo.Current()
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wastenet-go %s (built %s)\nconfig: %s\n",
				info.GetVersion(), info.GetBuildDate(), configPath())
			return err
		},
	}
}

func configPath() string {
	path, err := conf.FindConfigFile()
	if err != nil {
		return "none"
	}
	return path
}
