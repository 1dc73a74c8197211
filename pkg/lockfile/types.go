package lockfile

import "go.trai.ch/zerr"

// ErrParse is returned when lockfile text is not a well-formed document or
// lacks its package list.
var ErrParse = zerr.New("cannot parse lockfile")

// Package is a single dependency entry in a lockfile snapshot.
type Package struct {
	Name     string `json:"name" yaml:"name"`
	Version  string `json:"version" yaml:"version"`
	Type     string `json:"type" yaml:"type"`
	Homepage string `json:"homepage,omitempty" yaml:"homepage,omitempty"`
}

// PackageSet maps package names to their records for one snapshot.
type PackageSet map[string]Package

// ChangeSet classifies the differences between two snapshots.
// Each slice is sorted by package name.
type ChangeSet struct {
	Installed []Package `json:"installed" yaml:"installed"`
	Removed   []Package `json:"removed" yaml:"removed"`
	// Updated holds the current record of every package whose version changed.
	Updated []Package `json:"updated" yaml:"updated"`

	// Previous maps each updated package name to its record in the
	// previous snapshot.
	Previous map[string]Package `json:"-" yaml:"-"`
}

// Empty reports whether the snapshots had no differences.
func (c ChangeSet) Empty() bool {
	return len(c.Installed) == 0 && len(c.Removed) == 0 && len(c.Updated) == 0
}

// Update is an updated package together with the version it replaced.
type Update struct {
	Package         `yaml:",inline"`
	PreviousVersion string `json:"previous_version" yaml:"previous_version"`
}

// Summary is the printable form of a ChangeSet.
type Summary struct {
	Installed []Package `json:"installed" yaml:"installed"`
	Removed   []Package `json:"removed" yaml:"removed"`
	Updated   []Update  `json:"updated" yaml:"updated"`
}

// Summary pairs every updated package with its previous version.
func (c ChangeSet) Summary() Summary {
	s := Summary{
		Installed: nonNil(c.Installed),
		Removed:   nonNil(c.Removed),
		Updated:   make([]Update, 0, len(c.Updated)),
	}
	for _, p := range c.Updated {
		s.Updated = append(s.Updated, Update{Package: p, PreviousVersion: c.Previous[p.Name].Version})
	}
	return s
}

func nonNil(pkgs []Package) []Package {
	if pkgs == nil {
		return []Package{}
	}
	return pkgs
}

// Parser turns raw lockfile text into a PackageSet.
type Parser func(text string) (PackageSet, error)
