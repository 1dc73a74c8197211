package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emenda-labs/lockdiff/pkg/shellarg"
)

// NewEscapeCmd creates the "escape" command, which prints each argument
// quoted for a shell command line, one per line.
func NewEscapeCmd() *cobra.Command {
	var osName string

	cmd := &cobra.Command{
		Use:   "escape ARG...",
		Short: "Quote arguments for a shell command line",
		Long:  "Quote arguments for a linux or windows shell. Without --os the convention of this host is used.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := shellarg.ParseOS(osName)
			if err != nil {
				return err
			}
			for _, a := range args {
				fmt.Fprintln(cmd.OutOrStdout(), shellarg.Escape(a, target))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&osName, "os", "", "Target OS: linux or windows")

	return cmd
}
