package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the top-level lockdiff command.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "lockdiff",
		Short:        "Detect package changes in dependency lockfiles",
		Long:         "lockdiff compares a lockfile with a previous revision and reports installed, removed and updated packages.",
		SilenceUsage: true,
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	return cmd
}
