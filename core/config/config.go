// Package config resolves lockdiff settings from defaults, an optional
// .lockdiff config file in the repository, LOCKDIFF_* environment variables
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.trai.ch/zerr"

	"github.com/emenda-labs/lockdiff/core/changespec"
)

// ErrInvalidConfig is returned when a resolved setting has an unsupported value.
var ErrInvalidConfig = zerr.New("invalid configuration")

// Keys double as flag names.
const (
	KeyRepo      = "repo"
	KeyLockfile  = "lockfile"
	KeyRevision  = "rev"
	KeyFormat    = "format"
	KeyTypes     = "type"
	KeyOutput    = "output"
	KeyGitBinary = "git-binary"
	KeyVerbose   = "verbose"
)

const (
	FormatComposer = "composer"
	FormatGoMod    = "gomod"
)

var (
	formats = []string{FormatComposer, FormatGoMod}
	outputs = []string{"json", "yaml"}
)

// Config holds the settings of a commit-changes run.
type Config struct {
	RepoPath  string
	Lockfile  string
	Revision  string
	Format    string
	Types     []string
	Output    string
	GitBinary string
	Verbose   bool

	// File is the config file that was read, if any.
	File string
}

// Load resolves the configuration. flags may be nil.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	v.SetDefault(KeyRepo, ".")
	v.SetDefault(KeyRevision, "HEAD")
	v.SetDefault(KeyFormat, FormatComposer)
	v.SetDefault(KeyTypes, []string{changespec.PluginType})
	v.SetDefault(KeyOutput, "json")

	v.SetEnvPrefix("LOCKDIFF")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("binding flags: %w", err)
		}
	}

	v.SetConfigName(".lockdiff")
	v.AddConfigPath(v.GetString(KeyRepo))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("%w: reading config file: %w", ErrInvalidConfig, err)
		}
	}

	cfg := Config{
		RepoPath:  v.GetString(KeyRepo),
		Lockfile:  v.GetString(KeyLockfile),
		Revision:  v.GetString(KeyRevision),
		Format:    v.GetString(KeyFormat),
		Types:     splitList(v.GetStringSlice(KeyTypes)),
		Output:    v.GetString(KeyOutput),
		GitBinary: v.GetString(KeyGitBinary),
		Verbose:   v.GetBool(KeyVerbose),
		File:      v.ConfigFileUsed(),
	}
	if cfg.Lockfile == "" {
		cfg.Lockfile = DefaultLockfile(cfg.Format)
	}

	return cfg, cfg.Validate()
}

// splitList accepts both whitespace separated values (how viper splits
// environment strings) and comma separated ones (how --type is written).
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// DefaultLockfile returns the conventional lockfile name of a format.
func DefaultLockfile(format string) string {
	if format == FormatGoMod {
		return "go.mod"
	}
	return "composer.lock"
}

// Validate checks that every setting has a supported value.
func (c Config) Validate() error {
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf("%w: format %q, expected one of %s", ErrInvalidConfig, c.Format, strings.Join(formats, ", "))
	}
	if !slices.Contains(outputs, c.Output) {
		return fmt.Errorf("%w: output %q, expected one of %s", ErrInvalidConfig, c.Output, strings.Join(outputs, ", "))
	}
	if c.Revision == "" {
		return fmt.Errorf("%w: empty revision", ErrInvalidConfig)
	}
	if len(c.Types) == 0 {
		return fmt.Errorf("%w: no package types", ErrInvalidConfig)
	}
	return nil
}
