// Package paths provides centralized path handling for ccprof.
// A Paths instance is the single source of truth for every filesystem
// location the tool touches, computed from one home directory root.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/ccprof/pkg/errors"
)

// Environment variable names
const (
	// EnvCcprofHome overrides the home directory used to locate both the
	// managed storage area and the live Claude config. Primarily for tests.
	EnvCcprofHome = "CCPROF_HOME"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed directory and file names.
// IMPORTANT: These constants define ccprof's on-disk layout and are NOT
// user-configurable. They must remain consistent across installations.
const (
	// BaseDirName is the managed storage area under the home directory
	BaseDirName = ".claude-profiles"

	// ProfilesDirName holds one subdirectory per profile
	ProfilesDirName = "profiles"

	// BackupsDirName holds timestamped backup entries
	BackupsDirName = "backups"

	// StateFileName records the active profile
	StateFileName = "state.json"

	// ManifestFileName is the per-profile metadata record
	ManifestFileName = "metadata.json"

	// ClaudeDirName is the live config root the underlying tool reads from
	ClaudeDirName = ".claude"

	// SettingsFileName is the live settings file under the Claude dir
	SettingsFileName = "settings.json"
)

// Paths provides centralized path management for ccprof
type Paths struct {
	home string
}

// New creates a Paths instance rooted at the user's home directory,
// honoring the CCPROF_HOME override.
func New() (*Paths, error) {
	if home := os.Getenv(EnvCcprofHome); home != "" {
		return NewWithHome(home), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		if home = os.Getenv(EnvHome); home == "" {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to determine home directory")
		}
	}
	return NewWithHome(home), nil
}

// NewWithHome creates a Paths instance rooted at an explicit home directory
func NewWithHome(home string) *Paths {
	return &Paths{home: filepath.Clean(home)}
}

// Home returns the home directory this instance is rooted at
func (p *Paths) Home() string {
	return p.home
}

// BaseDir returns the managed storage area: <home>/.claude-profiles
func (p *Paths) BaseDir() string {
	return filepath.Join(p.home, BaseDirName)
}

// ProfilesDir returns <home>/.claude-profiles/profiles
func (p *Paths) ProfilesDir() string {
	return filepath.Join(p.BaseDir(), ProfilesDirName)
}

// BackupsDir returns <home>/.claude-profiles/backups
func (p *Paths) BackupsDir() string {
	return filepath.Join(p.BaseDir(), BackupsDirName)
}

// StateFile returns <home>/.claude-profiles/state.json
func (p *Paths) StateFile() string {
	return filepath.Join(p.BaseDir(), StateFileName)
}

// ClaudeDir returns the live config root: <home>/.claude
func (p *Paths) ClaudeDir() string {
	return filepath.Join(p.home, ClaudeDirName)
}

// ClaudeSettings returns the live settings file: <home>/.claude/settings.json
func (p *Paths) ClaudeSettings() string {
	return filepath.Join(p.ClaudeDir(), SettingsFileName)
}

// ProfileDir returns the storage directory for a named profile
func (p *Paths) ProfileDir(name string) string {
	return filepath.Join(p.ProfilesDir(), name)
}

// ProfileManifest returns the manifest path for a named profile
func (p *Paths) ProfileManifest(name string) string {
	return filepath.Join(p.ProfileDir(name), ManifestFileName)
}

// EnsureDirs creates the base, profiles and backups directories if missing
func (p *Paths) EnsureDirs() error {
	for _, dir := range []string{p.BaseDir(), p.ProfilesDir(), p.BackupsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory %s", dir)
		}
	}
	return nil
}

// IsInProfiles reports whether path lives inside the managed profiles
// directory. Symlink chains are fully resolved where possible, so a link
// whose target is itself a link into storage still counts as managed.
func (p *Paths) IsInProfiles(path string) bool {
	abs := path
	if !filepath.IsAbs(abs) {
		var err error
		if abs, err = filepath.Abs(abs); err != nil {
			return false
		}
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	root := p.ProfilesDir()
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	rel, err := filepath.Rel(root, filepath.Clean(abs))
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}
