package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/emenda-labs/lockdiff/core/driver"
)

var _ driver.RevisionReader = (*Repository)(nil)

// Repository implements driver.RevisionReader with go-git, so no git
// binary is needed.
type Repository struct{}

// NewRepository creates a go-git backed RevisionReader.
func NewRepository() *Repository {
	return &Repository{}
}

// ReadFileAtRevision opens the repository containing repoPath, resolves
// revision (any form go-git understands, e.g. HEAD, HEAD~1, a tag or a hash)
// and returns the content of path in that commit's tree. path is relative to
// repoPath, which may be a subdirectory of the worktree.
func (r *Repository) ReadFileAtRevision(ctx context.Context, repoPath, revision, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo, err := gogit.PlainOpenWithOptions(repoPath, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("opening repository at %s: %w", repoPath, err)
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return "", fmt.Errorf("resolving revision %s: %w", revision, err)
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return "", fmt.Errorf("loading commit %s: %w", hash, err)
	}

	treePath, err := worktreePath(repo, repoPath, path)
	if err != nil {
		return "", err
	}

	file, err := commit.File(treePath)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", fmt.Errorf("%w: %s at %s", driver.ErrFileNotInRevision, path, revision)
		}
		return "", fmt.Errorf("reading %s at %s: %w", path, revision, err)
	}

	contents, err := file.Contents()
	if err != nil {
		return "", fmt.Errorf("reading %s at %s: %w", path, revision, err)
	}

	return contents, nil
}

// worktreePath converts path, relative to dir, into a slash separated path
// relative to the root of repo's worktree.
func worktreePath(repo *gogit.Repository, dir, path string) (string, error) {
	wt, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, gogit.ErrIsBareRepository) {
			return filepath.ToSlash(path), nil
		}
		return "", fmt.Errorf("opening worktree: %w", err)
	}

	root, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		return "", fmt.Errorf("resolving worktree root: %w", err)
	}
	abs, err := filepath.Abs(filepath.Join(dir, path))
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(resolved, filepath.Base(abs))
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the worktree %s", abs, root)
	}
	return filepath.ToSlash(rel), nil
}
