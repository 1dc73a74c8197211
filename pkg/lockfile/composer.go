package lockfile

import (
	"encoding/json"
	"fmt"
)

// composerLock mirrors the parts of a composer.lock document we read.
// packages-dev is ignored.
type composerLock struct {
	Packages *[]composerPackage `json:"packages"`
}

type composerPackage struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Type     string `json:"type"`
	Homepage string `json:"homepage"`
}

// ParseComposer parses the runtime packages of a composer.lock file.
// When a name appears more than once the last entry wins.
func ParseComposer(text string) (PackageSet, error) {
	var lock composerLock
	if err := json.Unmarshal([]byte(text), &lock); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if lock.Packages == nil {
		return nil, fmt.Errorf("%w: missing \"packages\" list", ErrParse)
	}

	set := make(PackageSet, len(*lock.Packages))
	for i, p := range *lock.Packages {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: package #%d has no name", ErrParse, i)
		}
		set[p.Name] = Package{
			Name:     p.Name,
			Version:  p.Version,
			Type:     p.Type,
			Homepage: p.Homepage,
		}
	}

	return set, nil
}
