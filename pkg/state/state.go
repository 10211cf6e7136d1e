// Package state persists the single record of which profile is active.
// The record lives in state.json under the managed storage area; mutation
// goes through an exclusive advisory flock so two concurrent invocations
// cannot interleave a read-modify-write.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/arthur-debert/ccprof/pkg/errors"
	"github.com/arthur-debert/ccprof/pkg/logging"
)

// DefaultLockWait bounds how long a mutation waits for the flock before
// giving up. A crashed process holding the lock would otherwise block every
// future activation forever.
const DefaultLockWait = 30 * time.Second

// lockPollInterval paces the non-blocking lock retries
const lockPollInterval = 100 * time.Millisecond

// State is the persistent record stored in state.json
type State struct {
	// DefaultProfile names the currently active profile, if any
	DefaultProfile *string `json:"default_profile,omitempty"`
	// UpdatedAt records the last profile switch
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ActiveProfile returns the active profile name, or "" when none is set
func (s State) ActiveProfile() string {
	if s.DefaultProfile == nil {
		return ""
	}
	return *s.DefaultProfile
}

// Read loads the state record without taking the lock. A missing or empty
// file yields the zero state; unparseable content is reported as STATE_PARSE
// so corruption is never silently discarded outside the lock path.
func Read(path string) (State, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, errors.Wrapf(err, errors.ErrFileAccess, "failed to read state file %s", path)
	}

	if strings.TrimSpace(string(content)) == "" {
		return State{}, nil
	}

	var s State
	if err := json.Unmarshal(content, &s); err != nil {
		return State{}, errors.Wrapf(err, errors.ErrStateParse, "failed to parse state file %s", path)
	}
	return s, nil
}

// Write atomically replaces the state file: write to a temp file in the same
// directory, flush it durably, then rename over the target.
func Write(path string, s State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create state directory")
	}

	content, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrStateWrite, "failed to serialize state")
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrStateWrite, "failed to create temp state file %s", tmpPath)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, errors.ErrStateWrite, "failed to write temp state file %s", tmpPath)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, errors.ErrStateWrite, "failed to flush temp state file %s", tmpPath)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrStateWrite, "failed to close temp state file %s", tmpPath)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, errors.ErrStateWrite, "failed to replace state file %s", path)
	}
	return nil
}

// WithLock runs a read-modify-write cycle on the state file under an
// exclusive flock. The mutator receives the current state (zero state when
// the file is missing, empty or unreadable) and its result is written back
// before the lock is released. The lock release is deferred so every exit
// path, including mutator errors, releases it.
//
// Because the lock pins the open descriptor to the live inode, replacing the
// file by rename would silently drop the lock; the write instead truncates
// the locked file in place, which the exclusive lock makes safe.
func WithLock(path string, wait time.Duration, fn func(*State) error) error {
	if wait <= 0 {
		wait = DefaultLockWait
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create state directory")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to open state file %s", path)
	}
	defer func() { _ = f.Close() }()

	if err := acquireLock(f, wait); err != nil {
		return err
	}
	// Best-effort release; the close above would drop it anyway
	defer func() { _ = unix.Flock(int(f.Fd()), unix.LOCK_UN) }()

	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read state file %s", path)
	}

	var s State
	if strings.TrimSpace(string(content)) != "" {
		if err := json.Unmarshal(content, &s); err != nil {
			// Under the exclusive lock a corrupt record degrades to the
			// zero state so the mutation can repair it.
			logger := logging.GetLogger("state")
			logger.Warn().Err(err).
				Str("path", path).
				Msg("Corrupt state file, starting from empty state")
			s = State{}
		}
	}

	if err := fn(&s); err != nil {
		return err
	}

	serialized, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrStateWrite, "failed to serialize state")
	}

	if err := f.Truncate(0); err != nil {
		return errors.Wrapf(err, errors.ErrStateWrite, "failed to truncate state file %s", path)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return errors.Wrapf(err, errors.ErrStateWrite, "failed to seek state file %s", path)
	}
	if _, err := f.Write(serialized); err != nil {
		return errors.Wrapf(err, errors.ErrStateWrite, "failed to write state file %s", path)
	}
	if err := f.Sync(); err != nil {
		return errors.Wrapf(err, errors.ErrStateWrite, "failed to flush state file %s", path)
	}
	return nil
}

// acquireLock takes an exclusive flock on f, polling non-blocking attempts
// until the wait budget runs out.
func acquireLock(f *os.File, wait time.Duration) error {
	deadline := time.Now().Add(wait)
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return nil
		}
		if err != unix.EWOULDBLOCK && err != unix.EAGAIN {
			return errors.Wrapf(err, errors.ErrLockAcquire, "failed to lock state file %s", f.Name())
		}
		if time.Now().After(deadline) {
			return errors.Newf(errors.ErrLockAcquire,
				"timed out after %s waiting for lock on %s (another ccprof process may be stuck; remove the lock holder and retry)",
				wait, f.Name())
		}
		time.Sleep(lockPollInterval)
	}
}
