package changespec

import "go.trai.ch/zerr"

// ErrNoTypes is returned when a TypeFilter is built without any package type.
var ErrNoTypes = zerr.New("no package types selected")

// Action is what happened to a package between two lockfile snapshots.
type Action string

const (
	ActionInstall Action = "install"
	ActionDelete  Action = "delete"
	ActionUpdate  Action = "update"
)

// PluginType is the composer package type that produces change records by default.
const PluginType = "wordpress-plugin"

// Change describes a single recorded package change.
type Change struct {
	Action     Action `json:"action" yaml:"action"`
	Package    string `json:"package" yaml:"package"`
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	OldVersion string `json:"old_version,omitempty" yaml:"old_version,omitempty"`
	Direction  string `json:"direction,omitempty" yaml:"direction,omitempty"`
	Homepage   string `json:"homepage,omitempty" yaml:"homepage,omitempty"`
}

// ChangeSpec is the full set of change records for one lockfile commit.
type ChangeSpec struct {
	Lockfile string   `json:"lockfile" yaml:"lockfile"`
	Revision string   `json:"revision" yaml:"revision"`
	Changes  []Change `json:"changes" yaml:"changes"`
}
