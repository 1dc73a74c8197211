package lockfile

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/mod/semver"
)

// Diff parses two composer.lock snapshots and classifies their differences.
func Diff(current, previous string) (ChangeSet, error) {
	return DiffWith(ParseComposer, current, previous)
}

// DiffWith is Diff for an arbitrary lockfile format.
func DiffWith(parse Parser, current, previous string) (ChangeSet, error) {
	cur, err := parse(current)
	if err != nil {
		return ChangeSet{}, fmt.Errorf("parsing current lockfile: %w", err)
	}

	prev, err := parse(previous)
	if err != nil {
		return ChangeSet{}, fmt.Errorf("parsing previous lockfile: %w", err)
	}

	return Compare(cur, prev), nil
}

// Compare classifies the differences between two parsed snapshots.
// Installed and removed are keyed only on package names. A package is
// updated when both snapshots list it with different version strings; no
// semantic version ordering is applied.
func Compare(current, previous PackageSet) ChangeSet {
	cs := ChangeSet{Previous: make(map[string]Package)}

	for name, p := range current {
		old, ok := previous[name]
		switch {
		case !ok:
			cs.Installed = append(cs.Installed, p)
		case old.Version != p.Version:
			cs.Updated = append(cs.Updated, p)
			cs.Previous[name] = old
		}
	}

	for name, p := range previous {
		if _, ok := current[name]; !ok {
			cs.Removed = append(cs.Removed, p)
		}
	}

	sortByName(cs.Installed)
	sortByName(cs.Removed)
	sortByName(cs.Updated)

	return cs
}

func sortByName(pkgs []Package) {
	slices.SortFunc(pkgs, func(a, b Package) int {
		return cmp.Compare(a.Name, b.Name)
	})
}

// Direction describes a version change as "upgrade", "downgrade" or
// "changed" when either version is not semver.
func Direction(oldVersion, newVersion string) string {
	o, n := canonical(oldVersion), canonical(newVersion)
	if !semver.IsValid(o) || !semver.IsValid(n) {
		return "changed"
	}

	switch c := semver.Compare(n, o); {
	case c > 0:
		return "upgrade"
	case c < 0:
		return "downgrade"
	default:
		return "changed"
	}
}

// canonical adds the "v" prefix semver expects; composer versions
// usually come without it.
func canonical(v string) string {
	if v == "" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
