// Package status classifies the filesystem state of a live component path.
// Link-ness is checked before existence: a stat on a symlink follows the
// link, so Readlink has to come first or broken links would read as missing.
package status

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/ccprof/pkg/paths"
)

// Kind enumerates the possible states of a live path
type Kind int

const (
	// Missing means nothing occupies the path
	Missing Kind = iota
	// RegularFile means a real (non-link) file occupies the path
	RegularFile
	// RegularDirectory means a real (non-link) directory occupies the path
	RegularDirectory
	// Symlink means a link whose resolved target exists
	Symlink
	// BrokenSymlink means a link whose resolved target does not exist
	BrokenSymlink
)

// Status is the classification of a live path, with the resolved absolute
// link target for the symlink kinds.
type Status struct {
	Kind   Kind
	Target string
}

// String returns a short human-readable description
func (s Status) String() string {
	switch s.Kind {
	case Missing:
		return "missing"
	case RegularFile:
		return "regular file"
	case RegularDirectory:
		return "directory"
	case Symlink:
		return fmt.Sprintf("symlink -> %s", s.Target)
	case BrokenSymlink:
		return fmt.Sprintf("broken symlink -> %s", s.Target)
	}
	return "unknown"
}

// IsLink reports whether the path is occupied by a symlink, broken or not
func (s Status) IsLink() bool {
	return s.Kind == Symlink || s.Kind == BrokenSymlink
}

// Detect classifies the current state of path without following links.
func Detect(path string) Status {
	if target, err := os.Readlink(path); err == nil {
		// Relative targets resolve against the link's parent directory
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		target = filepath.Clean(target)

		if _, err := os.Stat(target); err == nil {
			return Status{Kind: Symlink, Target: target}
		}
		return Status{Kind: BrokenSymlink, Target: target}
	}

	info, err := os.Stat(path)
	if err != nil {
		return Status{Kind: Missing}
	}
	if info.IsDir() {
		return Status{Kind: RegularDirectory}
	}
	return Status{Kind: RegularFile}
}

// NeedsBackup decides whether the current occupant of a live path holds user
// data that must be archived before being replaced. Real files and
// directories always do. A symlink only does when its resolved target lives
// outside managed storage: a link ccprof itself created is simply re-pointed
// and the underlying stored copy is untouched. Missing paths and dangling
// links hold nothing worth preserving.
func NeedsBackup(s Status, p *paths.Paths) bool {
	switch s.Kind {
	case RegularFile, RegularDirectory:
		return true
	case Symlink:
		return !p.IsInProfiles(s.Target)
	default:
		return false
	}
}
