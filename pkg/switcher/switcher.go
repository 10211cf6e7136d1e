// Package switcher implements profile activation: converging each managed
// live path to a symlink into the selected profile's storage, archiving
// whatever user data occupies the path first.
package switcher

import (
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/ccprof/pkg/backup"
	"github.com/arthur-debert/ccprof/pkg/component"
	"github.com/arthur-debert/ccprof/pkg/errors"
	"github.com/arthur-debert/ccprof/pkg/logging"
	"github.com/arthur-debert/ccprof/pkg/paths"
	"github.com/arthur-debert/ccprof/pkg/profile"
	"github.com/arthur-debert/ccprof/pkg/state"
	"github.com/arthur-debert/ccprof/pkg/status"
)

// Switcher activates profiles
type Switcher struct {
	paths    *paths.Paths
	store    *profile.Store
	backups  *backup.Engine
	lockWait time.Duration
	now      func() time.Time
}

// New creates a Switcher
func New(p *paths.Paths, store *profile.Store, backups *backup.Engine) *Switcher {
	return &Switcher{
		paths:    p,
		store:    store,
		backups:  backups,
		lockWait: state.DefaultLockWait,
		now:      time.Now,
	}
}

// SetLockWait adjusts how long the ledger update waits for the state lock
func (s *Switcher) SetLockWait(wait time.Duration) {
	s.lockWait = wait
}

// Activate switches the live configuration to the named profile.
//
// Preconditions are checked before any mutation: the profile must exist, its
// manifest must parse, and every managed component must have a storage copy.
// The per-component loop is then applied independently per component; a
// failure partway leaves earlier components switched and later ones not.
// There is no rollback: each replaced occupant was already backed up, so a
// partial activation is recoverable, and the error names the component that
// failed so the user can fix and re-run.
//
// Only after every component is switched does the state ledger record the
// new active profile.
func (s *Switcher) Activate(name string) error {
	logger := logging.GetLogger("switcher")

	info, err := s.store.Get(name)
	if err != nil {
		return err
	}
	if len(info.MissingComponents) > 0 {
		err := errors.Newf(errors.ErrProfileCorrupt,
			"profile %q is corrupted: %d managed component(s) missing on disk; run 'ccprof doctor' for details",
			name, len(info.MissingComponents))
		for _, c := range info.MissingComponents {
			err = err.WithDetail(c.String(), c.StoragePath(s.paths, name))
		}
		return err
	}

	for _, c := range info.Manifest.ManagedComponents.Sorted() {
		if err := s.switchComponent(c, name); err != nil {
			return err
		}
	}

	err = state.WithLock(s.paths.StateFile(), s.lockWait, func(st *state.State) error {
		profileName := name
		st.DefaultProfile = &profileName
		now := s.now().UTC()
		st.UpdatedAt = &now
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info().Str("profile", name).Msg("Activated profile")
	return nil
}

// switchComponent converges one live path to a symlink into the profile's
// storage: detect, back up if the occupant holds foreign user data, remove
// the occupant, link. Removal never precedes a needed backup.
func (s *Switcher) switchComponent(c component.Component, name string) error {
	logger := logging.GetLogger("switcher")

	live := c.LivePath(s.paths)
	storage := c.StoragePath(s.paths, name)

	st := status.Detect(live)
	logger.Debug().
		Str("component", c.String()).
		Str("live", live).
		Str("status", st.String()).
		Msg("Switching component")

	if status.NeedsBackup(st, s.paths) {
		if err := s.backups.Backup(c, live); err != nil {
			return errors.Wrapf(err, errors.ErrBackupCreate,
				"refusing to replace %s for component %s without a backup", live, c.DisplayName())
		}
	}

	switch {
	case st.Kind == status.Missing:
		// Nothing to remove
	case st.IsLink():
		// Unlink only the link, whatever it points at
		if err := os.Remove(live); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess,
				"failed to unlink %s for component %s", live, c.DisplayName())
		}
	case st.Kind == status.RegularDirectory:
		if err := os.RemoveAll(live); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess,
				"failed to remove directory %s for component %s", live, c.DisplayName())
		}
	default:
		if err := os.Remove(live); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess,
				"failed to remove file %s for component %s", live, c.DisplayName())
		}
	}

	if err := os.MkdirAll(filepath.Dir(live), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate,
			"failed to create parent directory for %s", live)
	}
	if err := os.Symlink(storage, live); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate,
			"failed to link %s to %s for component %s", live, storage, c.DisplayName())
	}
	return nil
}
