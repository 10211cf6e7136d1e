// Package testutil provides an isolated on-disk test environment wiring the
// paths, store, backup engine and switcher together against a temp home.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/ccprof/pkg/backup"
	"github.com/arthur-debert/ccprof/pkg/component"
	"github.com/arthur-debert/ccprof/pkg/paths"
	"github.com/arthur-debert/ccprof/pkg/profile"
	"github.com/arthur-debert/ccprof/pkg/switcher"
)

// Env is a fully wired ccprof instance rooted at a temp home directory
type Env struct {
	Home     string
	Paths    *paths.Paths
	Store    *profile.Store
	Backups  *backup.Engine
	Switcher *switcher.Switcher

	t *testing.T
}

// NewEnv creates an isolated environment with the managed storage area and
// the live Claude dir already present.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	home := t.TempDir()
	p := paths.NewWithHome(home)
	require.NoError(t, p.EnsureDirs())
	require.NoError(t, os.MkdirAll(p.ClaudeDir(), 0755))

	store := profile.NewStore(p)
	backups := backup.New(p, backup.DefaultMaxBackups)
	sw := switcher.New(p, store, backups)

	t.Setenv(paths.EnvCcprofHome, home)

	return &Env{
		Home:     home,
		Paths:    p,
		Store:    store,
		Backups:  backups,
		Switcher: sw,
		t:        t,
	}
}

// WriteLiveSettings writes the live settings file
func (e *Env) WriteLiveSettings(content string) {
	e.t.Helper()
	require.NoError(e.t, os.WriteFile(e.Paths.ClaudeSettings(), []byte(content), 0644))
}

// WriteLiveDir populates a directory component's live path with files
// (relative path -> content).
func (e *Env) WriteLiveDir(c component.Component, files map[string]string) {
	e.t.Helper()
	root := c.LivePath(e.Paths)
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(e.t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(e.t, os.WriteFile(path, []byte(content), 0644))
	}
}

// ReadFile reads a file, failing the test on error
func (e *Env) ReadFile(path string) string {
	e.t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(e.t, err)
	return string(content)
}

// BackupCount counts backup entries for one component kind
func (e *Env) BackupCount(c component.Component) int {
	e.t.Helper()
	entries, err := e.Backups.List()
	require.NoError(e.t, err)
	count := 0
	for _, entry := range entries {
		if entry.Component == c {
			count++
		}
	}
	return count
}
