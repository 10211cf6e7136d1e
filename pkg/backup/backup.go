// Package backup archives live components into timestamped entries before
// the switcher replaces them, and keeps the per-kind entry count bounded.
package backup

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/ccprof/pkg/component"
	"github.com/arthur-debert/ccprof/pkg/errors"
	"github.com/arthur-debert/ccprof/pkg/fsutil"
	"github.com/arthur-debert/ccprof/pkg/logging"
	"github.com/arthur-debert/ccprof/pkg/paths"
)

// DefaultMaxBackups is the retention cap per component kind
const DefaultMaxBackups = 10

// BackupSuffix terminates every backup entry name
const BackupSuffix = ".bak"

// timestampLayout formats the UTC creation time embedded in entry names.
// Second granularity: two backups of the same kind within one second collide
// on name, a known limitation of the format.
const timestampLayout = "20060102_150405"

// Engine creates, lists, restores and rotates backup entries
type Engine struct {
	paths      *paths.Paths
	maxBackups int
	now        func() time.Time
}

// Entry describes one backup on disk
type Entry struct {
	// ID is the entry's filename, e.g. "settings.json.20240115_103045.bak"
	ID        string
	Component component.Component
	ModTime   time.Time
	Size      int64
	IsDir     bool
}

// New creates an Engine storing entries under the given paths' backups dir
func New(p *paths.Paths, maxBackups int) *Engine {
	if maxBackups <= 0 {
		maxBackups = DefaultMaxBackups
	}
	return &Engine{paths: p, maxBackups: maxBackups, now: time.Now}
}

// Backup archives the live occupant of livePath into a timestamped entry for
// the given component kind, then rotates that kind's entries. The live
// original is never touched: callers remove it only after Backup returns nil.
// Rotation failures are logged and do not fail the backup, since the entry
// just written is worth more than strict cap enforcement.
func (e *Engine) Backup(c component.Component, livePath string) error {
	logger := logging.GetLogger("backup")

	info, err := os.Stat(livePath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrBackupCreate, "cannot back up %s", livePath)
	}

	backupsDir := e.paths.BackupsDir()
	if err := os.MkdirAll(backupsDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create backups directory %s", backupsDir)
	}

	name := c.BackupPrefix() + "." + e.now().UTC().Format(timestampLayout) + BackupSuffix
	backupPath := filepath.Join(backupsDir, name)

	if info.IsDir() {
		err = fsutil.CopyTree(livePath, backupPath)
	} else {
		err = fsutil.CopyFile(livePath, backupPath)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrBackupCreate, "failed to archive %s", livePath)
	}

	logger.Info().
		Str("component", c.String()).
		Str("source", livePath).
		Str("backup", name).
		Msg("Backed up component")

	if err := e.rotate(c); err != nil {
		logger.Warn().Err(err).
			Str("component", c.String()).
			Msg("Backup rotation failed, keeping all entries")
	}
	return nil
}

// rotate evicts the oldest entries of a kind beyond the retention cap
func (e *Engine) rotate(c component.Component) error {
	return e.evict(c, e.maxBackups)
}

// Clean evicts entries of every kind beyond the given keep count
func (e *Engine) Clean(keep int) (int, error) {
	if keep < 0 {
		return 0, errors.New(errors.ErrInvalidInput, "keep count cannot be negative")
	}

	removedTotal := 0
	for _, c := range component.All() {
		before, err := e.countEntries(c)
		if err != nil {
			return removedTotal, err
		}
		if err := e.evict(c, keep); err != nil {
			return removedTotal, err
		}
		if before > keep {
			removedTotal += before - keep
		}
	}
	return removedTotal, nil
}

// evict removes the oldest entries of a kind until at most keep remain
func (e *Engine) evict(c component.Component, keep int) error {
	entries, err := e.entriesFor(c)
	if err != nil {
		return err
	}
	if len(entries) <= keep {
		return nil
	}

	// Oldest first
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ModTime.Before(entries[j].ModTime)
	})

	for _, entry := range entries[:len(entries)-keep] {
		path := filepath.Join(e.paths.BackupsDir(), entry.ID)
		var err error
		if entry.IsDir {
			err = os.RemoveAll(path)
		} else {
			err = os.Remove(path)
		}
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove old backup %s", entry.ID)
		}
	}
	return nil
}

// List returns every backup entry, most recent first
func (e *Engine) List() ([]Entry, error) {
	var all []Entry
	for _, c := range component.All() {
		entries, err := e.entriesFor(c)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].ModTime.After(all[j].ModTime)
	})
	return all, nil
}

// Restore copies a backup entry back onto its component's live path,
// replacing whatever occupies it. Restoration deliberately skips the backup
// step: restoring a backup of a backup would chain forever.
func (e *Engine) Restore(id string) error {
	backupPath := filepath.Join(e.paths.BackupsDir(), id)

	info, err := os.Stat(backupPath)
	if err != nil {
		return errors.Newf(errors.ErrBackupNotFound,
			"backup %q not found (use 'ccprof backup list' to see available backups)", id)
	}

	c, ok := component.FromBackupName(id)
	if !ok {
		return errors.Newf(errors.ErrInvalidInput,
			"cannot determine component kind from backup name %q", id)
	}

	livePath := c.LivePath(e.paths)

	// Remove the current occupant; a symlink is unlinked, not followed
	if fi, lerr := os.Lstat(livePath); lerr == nil {
		if fi.IsDir() {
			err = os.RemoveAll(livePath)
		} else {
			err = os.Remove(livePath)
		}
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", livePath)
		}
	}

	if err := os.MkdirAll(filepath.Dir(livePath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(livePath))
	}

	if info.IsDir() {
		err = fsutil.CopyTree(backupPath, livePath)
	} else {
		err = fsutil.CopyFile(backupPath, livePath)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "failed to restore %s to %s", id, livePath)
	}

	logger := logging.GetLogger("backup")
	logger.Info().
		Str("backup", id).
		Str("target", livePath).
		Msg("Restored backup")
	return nil
}

// entriesFor lists the on-disk entries belonging to one component kind
func (e *Engine) entriesFor(c component.Component) ([]Entry, error) {
	backupsDir := e.paths.BackupsDir()
	dirEntries, err := os.ReadDir(backupsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read backups directory %s", backupsDir)
	}

	prefix := c.BackupPrefix() + "."
	var entries []Entry
	for _, de := range dirEntries {
		name := de.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, BackupSuffix) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat backup %s", name)
		}
		size, err := fsutil.TreeSize(filepath.Join(backupsDir, name))
		if err != nil {
			size = 0
		}
		entries = append(entries, Entry{
			ID:        name,
			Component: c,
			ModTime:   info.ModTime(),
			Size:      size,
			IsDir:     de.IsDir(),
		})
	}
	return entries, nil
}

// countEntries returns how many entries exist for one kind
func (e *Engine) countEntries(c component.Component) (int, error) {
	entries, err := e.entriesFor(c)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
