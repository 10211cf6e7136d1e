// Package profile implements CRUD over named profile directories under the
// managed profiles root, including manifest persistence and the one-time
// legacy upgrade for manifest-less profiles found on disk.
package profile

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/arthur-debert/ccprof/pkg/component"
	"github.com/arthur-debert/ccprof/pkg/errors"
	"github.com/arthur-debert/ccprof/pkg/fsutil"
	"github.com/arthur-debert/ccprof/pkg/logging"
	"github.com/arthur-debert/ccprof/pkg/paths"
	"github.com/arthur-debert/ccprof/pkg/state"
	"github.com/arthur-debert/ccprof/pkg/status"
)

// Store manages the on-disk profile collection
type Store struct {
	paths    *paths.Paths
	lockWait time.Duration
	now      func() time.Time
}

// Info describes one profile as found on disk
type Info struct {
	Name     string
	Manifest *component.Manifest
	// MissingComponents lists managed kinds whose storage copy is absent,
	// a corruption condition surfaced by diagnostics
	MissingComponents []component.Component
}

// NewStore creates a Store over the given paths
func NewStore(p *paths.Paths) *Store {
	return &Store{paths: p, lockWait: state.DefaultLockWait, now: time.Now}
}

// SetLockWait adjusts how long ledger updates wait for the state lock
func (s *Store) SetLockWait(wait time.Duration) {
	s.lockWait = wait
}

// Exists reports whether a profile directory of that name is on disk
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.paths.ProfileDir(name))
	return err == nil && info.IsDir()
}

// Create makes a new profile by copying the requested live components into
// storage and writing a manifest. Every requested component must have a live
// source on disk: a kind the user explicitly selected but that does not
// exist is a hard error, so profiles never silently lack components the
// user thought they captured. No filesystem mutation happens before all
// sources are verified.
func (s *Store) Create(name string, components component.Set) error {
	logger := logging.GetLogger("profile")

	if err := paths.ValidateProfileName(name); err != nil {
		return err
	}
	if len(components) == 0 {
		return errors.New(errors.ErrInvalidInput, "a profile must manage at least one component")
	}
	if s.Exists(name) {
		return errors.Newf(errors.ErrProfileExists, "profile %q already exists", name)
	}

	// Verify all sources before touching the filesystem
	for _, c := range components.Sorted() {
		live := c.LivePath(s.paths)
		if _, err := os.Stat(live); err != nil {
			return errors.Newf(errors.ErrNotFound,
				"component %s has no live source at %s; remove it from the selection or create it first",
				c.DisplayName(), live)
		}
	}

	if err := s.paths.EnsureDirs(); err != nil {
		return err
	}

	profileDir := s.paths.ProfileDir(name)
	if err := os.MkdirAll(profileDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create profile directory %s", profileDir)
	}

	for _, c := range components.Sorted() {
		if err := s.copyIn(c, name); err != nil {
			return err
		}
	}

	now := s.now().UTC()
	manifest := &component.Manifest{
		Version:           component.ManifestVersion,
		CreatedAt:         now,
		UpdatedAt:         now,
		ManagedComponents: components,
	}
	if err := manifest.WriteManifest(profileDir); err != nil {
		return err
	}

	logger.Info().
		Str("profile", name).
		Strs("components", components.Names()).
		Msg("Created profile")
	return nil
}

// copyIn copies a component's live source into a profile's storage path,
// validating JSON for the settings file.
func (s *Store) copyIn(c component.Component, name string) error {
	live := c.LivePath(s.paths)
	storage := c.StoragePath(s.paths, name)

	var err error
	if c.IsFile() {
		err = fsutil.CopyFile(live, storage)
	} else {
		err = fsutil.CopyTree(live, storage)
	}
	if err != nil {
		return err
	}

	if c == component.Settings {
		if err := ValidateJSONFile(storage); err != nil {
			return err
		}
	}
	return nil
}

// UpdateComponents changes which kinds a profile manages. Additions are
// copied in from their live sources (hard error when a source is absent);
// removals delete the storage copy. The manifest is rewritten with a bumped
// UpdatedAt.
func (s *Store) UpdateComponents(name string, newSet component.Set) error {
	logger := logging.GetLogger("profile")

	if !s.Exists(name) {
		return errors.Newf(errors.ErrProfileNotFound, "profile %q does not exist", name)
	}
	if len(newSet) == 0 {
		return errors.New(errors.ErrInvalidInput, "a profile must manage at least one component")
	}

	profileDir := s.paths.ProfileDir(name)
	manifest, err := s.readManifestOrUpgrade(name)
	if err != nil {
		return err
	}

	added := newSet.Difference(manifest.ManagedComponents)
	removed := manifest.ManagedComponents.Difference(newSet)

	// Verify sources for all additions before any mutation
	for _, c := range added.Sorted() {
		live := c.LivePath(s.paths)
		if _, err := os.Stat(live); err != nil {
			return errors.Newf(errors.ErrNotFound,
				"component %s has no live source at %s", c.DisplayName(), live)
		}
	}

	for _, c := range added.Sorted() {
		if err := s.copyIn(c, name); err != nil {
			return err
		}
	}

	for _, c := range removed.Sorted() {
		storage := c.StoragePath(s.paths, name)
		if err := os.RemoveAll(storage); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove storage copy %s", storage)
		}
	}

	manifest.ManagedComponents = newSet
	manifest.UpdatedAt = s.now().UTC()
	if err := manifest.WriteManifest(profileDir); err != nil {
		return err
	}

	logger.Info().
		Str("profile", name).
		Strs("added", added.Names()).
		Strs("removed", removed.Names()).
		Msg("Updated profile components")
	return nil
}

// Remove deletes a profile's directory. The currently active profile cannot
// be removed; the caller must switch away first.
func (s *Store) Remove(name string) error {
	if !s.Exists(name) {
		return errors.Newf(errors.ErrProfileNotFound, "profile %q does not exist", name)
	}

	st, err := state.Read(s.paths.StateFile())
	if err == nil && st.ActiveProfile() == name {
		return errors.Newf(errors.ErrProfileActive,
			"cannot remove %q because it is the active profile; switch to another profile first", name)
	}

	profileDir := s.paths.ProfileDir(name)
	if err := os.RemoveAll(profileDir); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove profile directory %s", profileDir)
	}

	logger := logging.GetLogger("profile")
	logger.Info().Str("profile", name).Msg("Removed profile")
	return nil
}

// Rename moves a profile directory to a new name. When the renamed profile
// is active, the state ledger and every live symlink that pointed into the
// old storage path are updated to the new name, keeping rename and
// activation state consistent.
func (s *Store) Rename(oldName, newName string) error {
	logger := logging.GetLogger("profile")

	if err := paths.ValidateProfileName(newName); err != nil {
		return err
	}
	if !s.Exists(oldName) {
		return errors.Newf(errors.ErrProfileNotFound, "profile %q does not exist", oldName)
	}
	if s.Exists(newName) {
		return errors.Newf(errors.ErrProfileExists, "profile %q already exists", newName)
	}

	oldDir := s.paths.ProfileDir(oldName)
	newDir := s.paths.ProfileDir(newName)
	if err := os.Rename(oldDir, newDir); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to rename %s to %s", oldDir, newDir)
	}

	st, err := state.Read(s.paths.StateFile())
	if err == nil && st.ActiveProfile() == oldName {
		if err := s.relink(newName); err != nil {
			return err
		}
		err := state.WithLock(s.paths.StateFile(), s.lockWait, func(st *state.State) error {
			name := newName
			st.DefaultProfile = &name
			now := s.now().UTC()
			st.UpdatedAt = &now
			return nil
		})
		if err != nil {
			return err
		}
	}

	logger.Info().Str("from", oldName).Str("to", newName).Msg("Renamed profile")
	return nil
}

// relink re-points the managed live symlinks of a profile at its storage
// paths under the profile's (new) name. Only occupants that are already
// symlinks into managed storage are touched: a regular file or directory the
// user put in place since activation holds uncaptured data, and replacing it
// here would destroy it without a backup. Such occupants are left alone and
// surface later through the status check or a fresh activation, which does
// run the backup policy.
func (s *Store) relink(name string) error {
	manifest, err := s.readManifestOrUpgrade(name)
	if err != nil {
		return err
	}

	for _, c := range manifest.ManagedComponents.Sorted() {
		live := c.LivePath(s.paths)
		storage := c.StoragePath(s.paths, name)

		st := status.Detect(live)
		if !st.IsLink() || !s.paths.IsInProfiles(st.Target) {
			continue
		}

		if err := os.Remove(live); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to unlink %s", live)
		}
		if err := os.Symlink(storage, live); err != nil {
			return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s to %s", live, storage)
		}
	}
	return nil
}

// List enumerates profiles under the profiles root, sorted by name. A
// directory without a manifest but holding a settings copy is a legacy
// profile; it gets a manifest synthesized and persisted on the spot.
func (s *Store) List() ([]Info, error) {
	if err := s.paths.EnsureDirs(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.paths.ProfilesDir())
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read profiles directory %s", s.paths.ProfilesDir())
	}

	var infos []Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := s.Get(entry.Name())
		if err != nil {
			// Directories that are neither valid nor legacy profiles are
			// skipped rather than failing the whole listing.
			if errors.IsErrorCode(err, errors.ErrProfileNotFound) {
				continue
			}
			return nil, err
		}
		infos = append(infos, *info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Get loads one profile's manifest (running the legacy upgrade if needed)
// and audits that every managed component has a materialized storage copy.
func (s *Store) Get(name string) (*Info, error) {
	if !s.Exists(name) {
		return nil, errors.Newf(errors.ErrProfileNotFound, "profile %q does not exist", name)
	}

	manifest, err := s.readManifestOrUpgrade(name)
	if err != nil {
		return nil, err
	}

	info := &Info{Name: name, Manifest: manifest}
	for _, c := range manifest.ManagedComponents.Sorted() {
		if _, err := os.Stat(c.StoragePath(s.paths, name)); err != nil {
			info.MissingComponents = append(info.MissingComponents, c)
		}
	}
	return info, nil
}

// readManifestOrUpgrade reads a profile's manifest, synthesizing and
// persisting one for legacy manifest-less profiles. The synthesized managed
// set is whatever components are materialized on disk; a settings copy is
// the minimum marker that makes a bare directory count as a profile.
func (s *Store) readManifestOrUpgrade(name string) (*component.Manifest, error) {
	profileDir := s.paths.ProfileDir(name)

	manifest, err := component.ReadManifest(profileDir)
	if err == nil {
		return manifest, nil
	}
	if !errors.IsErrorCode(err, errors.ErrNotFound) {
		return nil, errors.Wrapf(err, errors.ErrProfileCorrupt, "profile %q has an unreadable manifest", name)
	}

	managed := component.Set{}
	for _, c := range component.All() {
		if _, err := os.Stat(c.StoragePath(s.paths, name)); err == nil {
			managed.Add(c)
		}
	}
	if !managed.Contains(component.Settings) {
		return nil, errors.Newf(errors.ErrProfileNotFound,
			"directory %q is not a profile (no manifest and no settings copy)", name)
	}

	now := s.now().UTC()
	manifest = &component.Manifest{
		Version:           component.ManifestVersion,
		CreatedAt:         now,
		UpdatedAt:         now,
		ManagedComponents: managed,
		Migration: &component.MigrationInfo{
			OriginalVersion: "pre-manifest",
			MigrationDate:   now,
		},
	}
	if err := manifest.WriteManifest(profileDir); err != nil {
		return nil, err
	}

	logger := logging.GetLogger("profile")
	logger.Info().
		Str("profile", name).
		Strs("components", managed.Names()).
		Msg("Upgraded legacy profile")
	return manifest, nil
}

// ValidateJSONFile checks that a file parses as JSON
func ValidateJSONFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", path)
	}

	var v interface{}
	if err := json.Unmarshal(content, &v); err != nil {
		return errors.Wrapf(err, errors.ErrProfileCorrupt, "invalid JSON in %s", path)
	}
	return nil
}
