package changespec

import (
	"path"

	"github.com/emenda-labs/lockdiff/pkg/lockfile"
)

// TypeFilter selects the package types that produce change records.
type TypeFilter map[string]struct{}

// NewTypeFilter returns a filter accepting exactly the given package types.
func NewTypeFilter(types ...string) (TypeFilter, error) {
	f := make(TypeFilter, len(types))
	for _, t := range types {
		if t != "" {
			f[t] = struct{}{}
		}
	}
	if len(f) == 0 {
		return nil, ErrNoTypes
	}
	return f, nil
}

// Keep reports whether p has one of the selected types.
func (f TypeFilter) Keep(p lockfile.Package) bool {
	_, ok := f[p.Type]
	return ok
}

// Build turns a lockfile change set into change records. Packages the
// filter rejects are dropped before any record is built. Installs come
// first, then deletes, then updates, each in package name order.
func Build(cs lockfile.ChangeSet, keep TypeFilter) []Change {
	var changes []Change

	for _, p := range filter(cs.Installed, keep) {
		changes = append(changes, newChange(ActionInstall, p))
	}

	for _, p := range filter(cs.Removed, keep) {
		c := newChange(ActionDelete, p)
		c.OldVersion, c.Version = c.Version, ""
		changes = append(changes, c)
	}

	for _, p := range filter(cs.Updated, keep) {
		c := newChange(ActionUpdate, p)
		if old, ok := cs.Previous[p.Name]; ok {
			c.OldVersion = old.Version
			c.Direction = lockfile.Direction(old.Version, p.Version)
		}
		changes = append(changes, c)
	}

	return changes
}

func filter(pkgs []lockfile.Package, keep TypeFilter) []lockfile.Package {
	out := make([]lockfile.Package, 0, len(pkgs))
	for _, p := range pkgs {
		if keep.Keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func newChange(action Action, p lockfile.Package) Change {
	return Change{
		Action:   action,
		Package:  p.Name,
		Name:     path.Base(p.Name),
		Type:     p.Type,
		Version:  p.Version,
		Homepage: p.Homepage,
	}
}
