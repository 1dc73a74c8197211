package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/emenda-labs/lockdiff/core/cli"
	"github.com/emenda-labs/lockdiff/core/commit"
	"github.com/emenda-labs/lockdiff/core/config"
	"github.com/emenda-labs/lockdiff/core/driver"
	gitdriver "github.com/emenda-labs/lockdiff/drivers/git"
	"github.com/emenda-labs/lockdiff/drivers/report"
	"github.com/emenda-labs/lockdiff/pkg/lockfile"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "lockdiff",
	})

	runCommitChanges := func(ctx context.Context, cfg config.Config) error {
		if cfg.Verbose {
			logger.SetLevel(log.DebugLevel)
		}
		if cfg.File != "" {
			logger.Debug("using config file", "path", cfg.File)
		}

		var reader driver.RevisionReader = gitdriver.NewRepository()
		if cfg.GitBinary != "" {
			reader = gitdriver.NewBinary(cfg.GitBinary, logger)
		}

		format, err := report.ParseFormat(cfg.Output)
		if err != nil {
			return err
		}
		recorder, err := report.NewWriter(os.Stdout, format)
		if err != nil {
			return err
		}

		_, err = commit.Run(ctx, commit.Deps{
			Reader:   reader,
			Recorder: recorder,
			Logger:   logger,
		}, commit.OptionsFromConfig(cfg))
		return err
	}

	runDiff := func(ctx context.Context, opts cli.DiffOptions) error {
		parse, err := commit.ParserFor(opts.Format)
		if err != nil {
			return err
		}
		format, err := report.ParseFormat(opts.Output)
		if err != nil {
			return err
		}

		current, err := os.ReadFile(opts.Current)
		if err != nil {
			return fmt.Errorf("reading current lockfile: %w", err)
		}
		previous, err := os.ReadFile(opts.Previous)
		if err != nil {
			return fmt.Errorf("reading previous lockfile: %w", err)
		}

		cs, err := lockfile.DiffWith(parse, string(current), string(previous))
		if err != nil {
			return err
		}

		if cs.Empty() {
			logger.Info("lockfiles have the same packages", "current", opts.Current, "previous", opts.Previous)
		}

		return report.Encode(os.Stdout, format, cs.Summary())
	}

	root := cli.NewRootCmd(version)
	root.AddCommand(cli.NewCommitChangesCmd(runCommitChanges))
	root.AddCommand(cli.NewDiffCmd(runDiff))
	root.AddCommand(cli.NewEscapeCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
