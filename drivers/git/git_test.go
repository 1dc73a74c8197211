package git

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emenda-labs/lockdiff/core/commit"
	"github.com/emenda-labs/lockdiff/core/driver"
	"github.com/emenda-labs/lockdiff/drivers/report"
	"github.com/emenda-labs/lockdiff/pkg/shellarg"
)

// commitFile writes content to name in the worktree of repo and commits it.
func commitFile(t *testing.T, repo *gogit.Repository, dir, name, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)

	_, err = wt.Add(name)
	require.NoError(t, err)

	_, err = wt.Commit("update "+name, &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

// setupRepo creates a repository with two commits of composer.lock.
func setupRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	commitFile(t, repo, dir, "composer.lock", `{"packages": []}`)
	commitFile(t, repo, dir, "composer.lock", `{"packages": [{"name": "a/a", "version": "1.0"}]}`)

	return dir
}

func TestRepository_ReadFileAtRevision(t *testing.T) {
	dir := setupRepo(t)
	r := NewRepository()

	head, err := r.ReadFileAtRevision(context.Background(), dir, "HEAD", "composer.lock")
	require.NoError(t, err)
	assert.Contains(t, head, `"a/a"`)

	parent, err := r.ReadFileAtRevision(context.Background(), dir, "HEAD~1", "composer.lock")
	require.NoError(t, err)
	assert.Equal(t, `{"packages": []}`, parent)
}

// setupNestedRepo creates a repository whose root and site/ directory hold
// different composer.lock files. It returns the root and site/ paths.
func setupNestedRepo(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	site := filepath.Join(dir, "site")
	require.NoError(t, os.Mkdir(site, 0o755))

	commitFile(t, repo, dir, "composer.lock", rootLock)
	commitFile(t, repo, dir, "site/composer.lock", siteLock)

	return dir, site
}

const (
	rootLock = `{"packages": [{"name": "root/only", "version": "1.0"}]}`
	siteLock = `{"packages": [{"name": "wpackagist-plugin/akismet", "version": "4.1", "type": "wordpress-plugin"}]}`
)

func TestRepository_ReadsRelativeToSubdirectory(t *testing.T) {
	dir, site := setupNestedRepo(t)
	r := NewRepository()

	got, err := r.ReadFileAtRevision(context.Background(), site, "HEAD", "composer.lock")
	require.NoError(t, err)
	assert.Equal(t, siteLock, got)

	got, err = r.ReadFileAtRevision(context.Background(), dir, "HEAD", "site/composer.lock")
	require.NoError(t, err)
	assert.Equal(t, siteLock, got)

	got, err = r.ReadFileAtRevision(context.Background(), site, "HEAD", "../composer.lock")
	require.NoError(t, err)
	assert.Equal(t, rootLock, got)

	_, err = r.ReadFileAtRevision(context.Background(), dir, "HEAD", "../composer.lock")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the worktree")
}

func TestRun_SubdirectoryLockfileUnchanged(t *testing.T) {
	_, site := setupNestedRepo(t)

	var out bytes.Buffer
	w, err := report.NewWriter(&out, report.FormatJSON)
	require.NoError(t, err)

	spec, err := commit.Run(context.Background(),
		commit.Deps{Reader: NewRepository(), Recorder: w, Logger: log.New(io.Discard)},
		commit.Options{RepoPath: site, Lockfile: "composer.lock", Types: []string{"wordpress-plugin"}},
	)
	require.NoError(t, err)
	assert.Empty(t, spec.Changes)
	assert.Zero(t, out.Len())
}

func TestRepository_MissingFile(t *testing.T) {
	dir := setupRepo(t)

	_, err := NewRepository().ReadFileAtRevision(context.Background(), dir, "HEAD", "go.mod")
	require.ErrorIs(t, err, driver.ErrFileNotInRevision)
}

func TestRepository_Errors(t *testing.T) {
	dir := setupRepo(t)
	r := NewRepository()

	_, err := r.ReadFileAtRevision(context.Background(), dir, "no-such-branch", "composer.lock")
	require.Error(t, err)
	assert.NotErrorIs(t, err, driver.ErrFileNotInRevision)

	_, err = r.ReadFileAtRevision(context.Background(), t.TempDir(), "HEAD", "composer.lock")
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.ReadFileAtRevision(ctx, dir, "HEAD", "composer.lock")
	require.ErrorIs(t, err, context.Canceled)
}

func TestBinary_CommandLine(t *testing.T) {
	b := &Binary{path: "/usr/bin/git", os: shellarg.OSLinux}
	assert.Equal(t, `'/usr/bin/git' 'show' 'HEAD:./composer.lock'`, b.CommandLine("HEAD", "composer.lock"))
	assert.Equal(t, `'/usr/bin/git' 'show' 'it'\''s:./a b/composer.lock'`, b.CommandLine("it's", "a b/composer.lock"))

	w := &Binary{path: `C:\Program Files\Git\bin\git.exe`, os: shellarg.OSWindows}
	assert.Equal(t, `"C:\\Program Files\\Git\\bin\\git.exe" "show" "HEAD:./composer.lock"`, w.CommandLine("HEAD", "composer.lock"))
}

func TestBinary_ReadFileAtRevision(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	gitPath, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git binary not available")
	}

	dir := setupRepo(t)
	b := NewBinary(gitPath, nil)

	parent, err := b.ReadFileAtRevision(context.Background(), dir, "HEAD~1", "composer.lock")
	require.NoError(t, err)
	assert.Equal(t, `{"packages": []}`, parent)

	_, err = b.ReadFileAtRevision(context.Background(), dir, "HEAD", "missing.lock")
	require.ErrorIs(t, err, driver.ErrFileNotInRevision)

	_, err = b.ReadFileAtRevision(context.Background(), dir, "no-such-branch", "composer.lock")
	require.Error(t, err)
	assert.NotErrorIs(t, err, driver.ErrFileNotInRevision)
}

func TestBinary_ReadsRelativeToSubdirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	gitPath, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git binary not available")
	}

	_, site := setupNestedRepo(t)

	got, err := NewBinary(gitPath, nil).ReadFileAtRevision(context.Background(), site, "HEAD", "composer.lock")
	require.NoError(t, err)
	assert.Equal(t, siteLock, got)
}

func TestDisplayCommand(t *testing.T) {
	b := &Binary{path: "/usr/bin/git", os: shellarg.OSLinux}
	assert.Equal(t, "/usr/bin/git show HEAD:./composer.lock", displayCommand(b.args("HEAD", "composer.lock")))
	assert.Equal(t, `/usr/bin/git show "it's:./a b/composer.lock"`, displayCommand(b.args("it's", "a b/composer.lock")))
}

func TestBinary_LogsArgv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	gitPath, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git binary not available")
	}

	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	dir := setupRepo(t)
	_, err = NewBinary(gitPath, logger).ReadFileAtRevision(context.Background(), dir, "HEAD", "composer.lock")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "running git")
	assert.Contains(t, buf.String(), "show HEAD:./composer.lock")
}

func TestIsMissingPath(t *testing.T) {
	assert.True(t, isMissingPath("fatal: path 'x.lock' does not exist in 'HEAD'"))
	assert.True(t, isMissingPath("fatal: path 'x.lock' exists on disk, but not in 'HEAD'"))
	assert.False(t, isMissingPath("fatal: invalid object name 'nope'."))
}
