// Package component defines the closed set of configuration components a
// profile can manage: the settings file plus the agents, hooks and commands
// directories under the live Claude config root.
package component

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/ccprof/pkg/errors"
	"github.com/arthur-debert/ccprof/pkg/paths"
)

// Component identifies one managed unit of configuration
type Component string

// The full, closed set of component kinds
const (
	Settings Component = "settings"
	Agents   Component = "agents"
	Hooks    Component = "hooks"
	Commands Component = "commands"
)

// attributes holds the per-kind lookup table. The set is closed and known at
// build time, so a table keyed on the tag replaces any dynamic dispatch.
type attributes struct {
	displayName  string
	isFile       bool
	storageName  string
	backupPrefix string
}

var table = map[Component]attributes{
	Settings: {displayName: "Settings", isFile: true, storageName: "settings.json", backupPrefix: "settings.json"},
	Agents:   {displayName: "Agents", isFile: false, storageName: "agents", backupPrefix: "agents"},
	Hooks:    {displayName: "Hooks", isFile: false, storageName: "hooks", backupPrefix: "hooks"},
	Commands: {displayName: "Commands", isFile: false, storageName: "commands", backupPrefix: "commands"},
}

// All returns every component kind in stable order
func All() []Component {
	return []Component{Settings, Agents, Hooks, Commands}
}

// Parse maps a user-supplied name onto a component kind
func Parse(s string) (Component, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "settings", "settings.json":
		return Settings, nil
	case "agents":
		return Agents, nil
	case "hooks":
		return Hooks, nil
	case "commands":
		return Commands, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput,
		"unknown component %q (valid: settings, agents, hooks, commands)", s)
}

// ParseSet parses a list of names into a component set, rejecting duplicates
// silently (a set has no duplicates) and unknown names loudly.
func ParseSet(names []string) (Set, error) {
	set := Set{}
	for _, name := range names {
		c, err := Parse(name)
		if err != nil {
			return nil, err
		}
		set[c] = struct{}{}
	}
	return set, nil
}

// String returns the stable identifier used in manifests and CLI args
func (c Component) String() string {
	return string(c)
}

// DisplayName returns the user-friendly name
func (c Component) DisplayName() string {
	return table[c].displayName
}

// IsFile reports whether the component is a single file (vs a directory)
func (c Component) IsFile() bool {
	return table[c].isFile
}

// BackupPrefix returns the filename prefix used for this kind's backup entries
func (c Component) BackupPrefix() string {
	return table[c].backupPrefix
}

// LivePath returns the component's live path under the Claude config root
func (c Component) LivePath(p *paths.Paths) string {
	if c == Settings {
		return p.ClaudeSettings()
	}
	return filepath.Join(p.ClaudeDir(), table[c].storageName)
}

// StoragePath returns the component's materialized copy location inside a
// profile's storage directory
func (c Component) StoragePath(p *paths.Paths, profile string) string {
	return filepath.Join(p.ProfileDir(profile), table[c].storageName)
}

// FromBackupName resolves the component kind a backup entry belongs to,
// based on its filename prefix. Longest prefix wins so "settings.json."
// entries are never mistaken for a bare kind.
func FromBackupName(name string) (Component, bool) {
	for _, c := range All() {
		if strings.HasPrefix(name, c.BackupPrefix()+".") {
			return c, true
		}
	}
	return "", false
}

// Set is an unordered collection of component kinds
type Set map[Component]struct{}

// NewSet builds a Set from the given kinds
func NewSet(components ...Component) Set {
	set := Set{}
	for _, c := range components {
		set[c] = struct{}{}
	}
	return set
}

// Contains reports membership
func (s Set) Contains(c Component) bool {
	_, ok := s[c]
	return ok
}

// Add inserts a kind into the set
func (s Set) Add(c Component) {
	s[c] = struct{}{}
}

// Sorted returns the members in the stable All() order
func (s Set) Sorted() []Component {
	members := make([]Component, 0, len(s))
	for _, c := range All() {
		if s.Contains(c) {
			members = append(members, c)
		}
	}
	return members
}

// Names returns the sorted identifier strings, for display and serialization
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for _, c := range s.Sorted() {
		names = append(names, c.String())
	}
	sort.Strings(names)
	return names
}

// Difference returns the members of s not present in other
func (s Set) Difference(other Set) Set {
	diff := Set{}
	for c := range s {
		if !other.Contains(c) {
			diff.Add(c)
		}
	}
	return diff
}
