package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"

	"github.com/emenda-labs/lockdiff/core/config"
)

// CommitChangesRunFunc is the function signature for the commit-changes
// command handler. It is injected by the wiring layer (cmd/lockdiff/main.go).
type CommitChangesRunFunc func(ctx context.Context, cfg config.Config) error

// NewCommitChangesCmd creates the "commit-changes" command.
func NewCommitChangesCmd(runFunc CommitChangesRunFunc) *cobra.Command {
	var cfg config.Config

	cmd := &cobra.Command{
		Use:   "commit-changes",
		Short: "Record package changes made to the lockfile",
		Long: "Compare the working tree lockfile with its content at a revision and record " +
			"a change for every installed, removed or updated package of the selected types.",
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			if err := validateRepoPath(loaded.RepoPath); err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFunc(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String(config.KeyRepo, ".", "Path to the repository")
	cmd.Flags().String(config.KeyLockfile, "", "Lockfile path relative to the repository (default depends on --format)")
	cmd.Flags().String(config.KeyRevision, "HEAD", "Revision to compare the lockfile against")
	cmd.Flags().String(config.KeyFormat, config.FormatComposer, "Lockfile format: composer or gomod")
	cmd.Flags().StringSlice(config.KeyTypes, nil, "Package types that produce change records (default wordpress-plugin)")
	cmd.Flags().StringP(config.KeyOutput, "o", "json", "Output format: json or yaml")
	cmd.Flags().String(config.KeyGitBinary, "", "Run this git executable instead of reading the repository directly")

	return cmd
}

// ErrInvalidRepoPath is returned when --repo is not an existing directory.
var ErrInvalidRepoPath = zerr.New("invalid repo path")

func validateRepoPath(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s does not exist", ErrInvalidRepoPath, path)
	case err != nil:
		return fmt.Errorf("%w: %w", ErrInvalidRepoPath, err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidRepoPath, path)
	}
	return nil
}
