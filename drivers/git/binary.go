package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/emenda-labs/lockdiff/core/driver"
	"github.com/emenda-labs/lockdiff/pkg/shellarg"
)

var _ driver.RevisionReader = (*Binary)(nil)

// Binary implements driver.RevisionReader by running "git show" through
// the platform shell.
type Binary struct {
	path   string
	os     shellarg.OS
	logger *log.Logger
}

// NewBinary creates a RevisionReader that runs the git executable at
// gitPath. The command line is quoted for the host shell.
func NewBinary(gitPath string, logger *log.Logger) *Binary {
	if gitPath == "" {
		gitPath = "git"
	}
	if logger == nil {
		logger = log.Default()
	}
	target := shellarg.OSLinux
	if runtime.GOOS == "windows" {
		target = shellarg.OSWindows
	}
	return &Binary{path: gitPath, os: target, logger: logger}
}

// args returns the git invocation that shows path at revision. The "./"
// prefix makes git resolve path against the working directory rather than
// the worktree root.
func (b *Binary) args(revision, path string) []string {
	return []string{b.path, "show", revision + ":./" + filepath.ToSlash(path)}
}

// CommandLine returns the shell command line that shows path at revision.
func (b *Binary) CommandLine(revision, path string) string {
	return shellarg.Join(b.args(revision, path), b.os)
}

// displayCommand renders argv for humans, quoting only where needed.
func displayCommand(argv []string) string {
	words := make([]string, len(argv))
	for i, a := range argv {
		words[i] = shellarg.QuoteMinimal(a)
	}
	return strings.Join(words, " ")
}

// ReadFileAtRevision runs "git show REV:./path" in repoPath.
func (b *Binary) ReadFileAtRevision(ctx context.Context, repoPath, revision, path string) (string, error) {
	line := b.CommandLine(revision, path)

	var cmd *exec.Cmd
	if b.os == shellarg.OSWindows {
		cmd = exec.CommandContext(ctx, "cmd", "/C", line)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", line)
	}
	cmd.Dir = repoPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	b.logger.Debug("running git", "dir", repoPath, "argv", displayCommand(b.args(revision, path)))

	if err := cmd.Run(); err != nil {
		output := strings.TrimSpace(shellarg.GetOutput(stdout.String(), stderr.String()))
		if isMissingPath(output) {
			return "", fmt.Errorf("%w: %s at %s", driver.ErrFileNotInRevision, path, revision)
		}
		return "", fmt.Errorf("git show %s:%s failed: %s (%w)", revision, path, output, err)
	}

	return stdout.String(), nil
}

// isMissingPath recognizes git's messages for a path absent from a revision.
func isMissingPath(output string) bool {
	return strings.Contains(output, "does not exist in") ||
		strings.Contains(output, "exists on disk, but not in")
}
