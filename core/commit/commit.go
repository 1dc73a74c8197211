// Package commit detects the package changes of a lockfile against a
// revision and hands the resulting change records to a recorder.
package commit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"go.trai.ch/zerr"

	"github.com/emenda-labs/lockdiff/core/changespec"
	"github.com/emenda-labs/lockdiff/core/config"
	"github.com/emenda-labs/lockdiff/core/driver"
	"github.com/emenda-labs/lockdiff/pkg/lockfile"
)

// ErrMissingDependency is returned when Deps lacks a reader or recorder.
var ErrMissingDependency = zerr.New("missing dependency")

// emptyLockfiles are what a lockfile looks like before it was ever committed.
var emptyLockfiles = map[string]string{
	config.FormatComposer: `{"packages": []}`,
	config.FormatGoMod:    "module placeholder\n",
}

// Deps are the collaborators of Run. They are always passed in explicitly.
type Deps struct {
	Reader   driver.RevisionReader
	Recorder driver.Recorder
	Logger   *log.Logger

	// ReadFile reads the working tree lockfile. Defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)
}

// Options select the lockfile and the revision to compare against.
type Options struct {
	RepoPath string
	Lockfile string
	Revision string
	Format   string
	Types    []string
}

// OptionsFromConfig maps resolved configuration onto Options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		RepoPath: cfg.RepoPath,
		Lockfile: cfg.Lockfile,
		Revision: cfg.Revision,
		Format:   cfg.Format,
		Types:    cfg.Types,
	}
}

// ParserFor returns the lockfile parser of a config format name.
func ParserFor(format string) (lockfile.Parser, error) {
	switch format {
	case config.FormatComposer, "":
		return lockfile.ParseComposer, nil
	case config.FormatGoMod:
		return lockfile.ParseGoMod, nil
	default:
		return nil, fmt.Errorf("%w: format %q", config.ErrInvalidConfig, format)
	}
}

// Run compares the working tree lockfile with its content at
// opts.Revision, builds change records for the selected package types and
// passes them to deps.Recorder. The recorder is skipped when there is
// nothing to record. The returned spec is what was (or would have been)
// recorded.
func Run(ctx context.Context, deps Deps, opts Options) (changespec.ChangeSpec, error) {
	if deps.Reader == nil || deps.Recorder == nil {
		return changespec.ChangeSpec{}, ErrMissingDependency
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	readFile := deps.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	if opts.Revision == "" {
		opts.Revision = "HEAD"
	}
	if opts.Lockfile == "" {
		opts.Lockfile = config.DefaultLockfile(opts.Format)
	}

	parse, err := ParserFor(opts.Format)
	if err != nil {
		return changespec.ChangeSpec{}, err
	}
	keep, err := changespec.NewTypeFilter(opts.Types...)
	if err != nil {
		return changespec.ChangeSpec{}, err
	}

	current, err := readFile(filepath.Join(opts.RepoPath, opts.Lockfile))
	if err != nil {
		return changespec.ChangeSpec{}, fmt.Errorf("reading %s: %w", opts.Lockfile, err)
	}

	previous, err := deps.Reader.ReadFileAtRevision(ctx, opts.RepoPath, opts.Revision, opts.Lockfile)
	if err != nil {
		if !errors.Is(err, driver.ErrFileNotInRevision) {
			return changespec.ChangeSpec{}, fmt.Errorf("reading %s at %s: %w", opts.Lockfile, opts.Revision, err)
		}
		logger.Info("lockfile not present at revision, treating every package as installed",
			"lockfile", opts.Lockfile, "revision", opts.Revision)
		previous = emptyLockfiles[opts.Format]
		if previous == "" {
			previous = emptyLockfiles[config.FormatComposer]
		}
	}

	cs, err := lockfile.DiffWith(parse, string(current), previous)
	if err != nil {
		return changespec.ChangeSpec{}, err
	}

	spec := changespec.ChangeSpec{Lockfile: opts.Lockfile, Revision: opts.Revision}
	if cs.Empty() {
		logger.Info("lockfile unchanged", "lockfile", opts.Lockfile, "revision", opts.Revision)
		return spec, nil
	}
	logger.Debug("lockfile diff",
		"installed", len(cs.Installed), "removed", len(cs.Removed), "updated", len(cs.Updated))

	spec.Changes = changespec.Build(cs, keep)

	if len(spec.Changes) == 0 {
		logger.Info("no changes to record", "lockfile", opts.Lockfile, "revision", opts.Revision)
		return spec, nil
	}

	for _, c := range spec.Changes {
		logger.Debug("change", "action", c.Action, "package", c.Package, "version", c.Version, "old_version", c.OldVersion)
	}

	if err := deps.Recorder.Record(ctx, spec); err != nil {
		return spec, fmt.Errorf("recording changes: %w", err)
	}
	logger.Info("recorded changes", "count", len(spec.Changes))

	return spec, nil
}
