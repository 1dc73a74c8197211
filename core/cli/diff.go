package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/emenda-labs/lockdiff/core/config"
)

// DiffOptions holds the arguments and flags of "diff".
type DiffOptions struct {
	Current  string
	Previous string
	Format   string
	Output   string
}

// DiffRunFunc is the function signature for the diff command handler.
type DiffRunFunc func(ctx context.Context, opts DiffOptions) error

// NewDiffCmd creates the "diff" command.
func NewDiffCmd(runFunc DiffRunFunc) *cobra.Command {
	var opts DiffOptions

	cmd := &cobra.Command{
		Use:   "diff CURRENT PREVIOUS",
		Short: "Compare two lockfiles on disk",
		Long:  "Print the packages installed, removed and updated between two lockfile snapshots.",
		Args:  cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			opts.Current, opts.Previous = args[0], args[1]
			return validateDiffFlags(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFunc(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", config.FormatComposer, "Lockfile format: composer or gomod")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "json", "Output format: json or yaml")

	return cmd
}

func validateDiffFlags(opts DiffOptions) error {
	if !slices.Contains([]string{config.FormatComposer, config.FormatGoMod}, opts.Format) {
		return fmt.Errorf("--format must be composer or gomod, got %q", opts.Format)
	}
	if opts.Output != "json" && opts.Output != "yaml" {
		return fmt.Errorf("--output must be json or yaml, got %q", opts.Output)
	}
	return nil
}
