package lockfile

import (
	"fmt"

	"golang.org/x/mod/modfile"
)

const (
	// TypeModule is the package type of a direct go.mod requirement.
	TypeModule = "module"

	// TypeIndirectModule is the package type of an "// indirect" requirement.
	TypeIndirectModule = "indirect-module"
)

// ParseGoMod parses the text of a go.mod file into a PackageSet.
// Every require directive becomes a package. A replace directive whose
// target carries a version overrides the required version, since that is
// the version the build actually resolves.
func ParseGoMod(text string) (PackageSet, error) {
	f, err := modfile.Parse("go.mod", []byte(text), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if f.Module == nil {
		return nil, fmt.Errorf("%w: missing module directive", ErrParse)
	}

	set := make(PackageSet, len(f.Require))
	for _, req := range f.Require {
		typ := TypeModule
		if req.Indirect {
			typ = TypeIndirectModule
		}
		set[req.Mod.Path] = Package{
			Name:    req.Mod.Path,
			Version: req.Mod.Version,
			Type:    typ,
		}
	}

	for _, rep := range f.Replace {
		p, ok := set[rep.Old.Path]
		if !ok || rep.New.Version == "" {
			continue
		}
		if rep.Old.Version != "" && rep.Old.Version != p.Version {
			continue
		}
		p.Version = rep.New.Version
		set[rep.Old.Path] = p
	}

	return set, nil
}
