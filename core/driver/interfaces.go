package driver

import (
	"context"

	"go.trai.ch/zerr"

	"github.com/emenda-labs/lockdiff/core/changespec"
)

// ErrFileNotInRevision is returned by a RevisionReader when the requested
// file does not exist at the requested revision.
var ErrFileNotInRevision = zerr.New("file does not exist at revision")

// RevisionReader reads files from version control history.
//
//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks
type RevisionReader interface {
	// ReadFileAtRevision returns the content of path (relative to the
	// repository root) as of revision, like "git show REV:path".
	ReadFileAtRevision(ctx context.Context, repoPath, revision, path string) (string, error)
}

// Recorder consumes the change records produced for a lockfile commit.
type Recorder interface {
	// Record stores or reports the change records. It is not called when a
	// commit produced no records.
	Record(ctx context.Context, spec changespec.ChangeSpec) error
}
