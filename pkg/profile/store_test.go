package profile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/ccprof/pkg/component"
	"github.com/arthur-debert/ccprof/pkg/errors"
	"github.com/arthur-debert/ccprof/pkg/state"
	"github.com/arthur-debert/ccprof/pkg/testutil"
)

func TestCreate(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{"a":1}`)
	env.WriteLiveDir(component.Agents, map[string]string{"helper.md": "agent"})

	set := component.NewSet(component.Settings, component.Agents)
	require.NoError(t, env.Store.Create("full-profile", set))

	profileDir := env.Paths.ProfileDir("full-profile")
	assert.Equal(t, `{"a":1}`, env.ReadFile(filepath.Join(profileDir, "settings.json")))
	assert.Equal(t, "agent", env.ReadFile(filepath.Join(profileDir, "agents", "helper.md")))

	manifest, err := component.ReadManifest(profileDir)
	require.NoError(t, err)
	assert.True(t, manifest.ManagedComponents.Contains(component.Settings))
	assert.True(t, manifest.ManagedComponents.Contains(component.Agents))
	assert.False(t, manifest.ManagedComponents.Contains(component.Hooks))
}

func TestCreateInvalidName(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{}`)

	err := env.Store.Create("bad name", component.NewSet(component.Settings))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestCreateEmptyComponentSet(t *testing.T) {
	env := testutil.NewEnv(t)

	err := env.Store.Create("work", component.Set{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestCreateDuplicate(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{}`)

	require.NoError(t, env.Store.Create("work", component.NewSet(component.Settings)))
	err := env.Store.Create("work", component.NewSet(component.Settings))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProfileExists))
}

func TestCreateAbsentSourceIsHardError(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{}`)
	// No live agents directory

	err := env.Store.Create("work", component.NewSet(component.Settings, component.Agents))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.Contains(t, err.Error(), "Agents")

	// Failed precondition leaves no half-created profile behind
	assert.False(t, env.Store.Exists("work"))
}

func TestCreateRejectsInvalidSettingsJSON(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{not json`)

	err := env.Store.Create("work", component.NewSet(component.Settings))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProfileCorrupt))
}

func TestUpdateComponentsAdd(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{}`)
	env.WriteLiveDir(component.Hooks, map[string]string{"pre.sh": "#!/bin/sh"})

	require.NoError(t, env.Store.Create("work", component.NewSet(component.Settings)))
	require.NoError(t, env.Store.UpdateComponents("work", component.NewSet(component.Settings, component.Hooks)))

	assert.Equal(t, "#!/bin/sh", env.ReadFile(filepath.Join(env.Paths.ProfileDir("work"), "hooks", "pre.sh")))

	info, err := env.Store.Get("work")
	require.NoError(t, err)
	assert.True(t, info.Manifest.ManagedComponents.Contains(component.Hooks))
	assert.True(t, info.Manifest.UpdatedAt.After(info.Manifest.CreatedAt) ||
		info.Manifest.UpdatedAt.Equal(info.Manifest.CreatedAt))
}

func TestUpdateComponentsRemove(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{}`)
	env.WriteLiveDir(component.Agents, map[string]string{"a.md": "a"})

	require.NoError(t, env.Store.Create("work", component.NewSet(component.Settings, component.Agents)))
	require.NoError(t, env.Store.UpdateComponents("work", component.NewSet(component.Settings)))

	_, err := os.Stat(component.Agents.StoragePath(env.Paths, "work"))
	assert.True(t, os.IsNotExist(err))

	info, err := env.Store.Get("work")
	require.NoError(t, err)
	assert.False(t, info.Manifest.ManagedComponents.Contains(component.Agents))
}

func TestUpdateComponentsAbsentSourceIsHardError(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{}`)

	require.NoError(t, env.Store.Create("work", component.NewSet(component.Settings)))

	err := env.Store.UpdateComponents("work", component.NewSet(component.Settings, component.Commands))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestUpdateComponentsEmptySetRejected(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{}`)
	require.NoError(t, env.Store.Create("work", component.NewSet(component.Settings)))

	err := env.Store.UpdateComponents("work", component.Set{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRemove(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{}`)
	require.NoError(t, env.Store.Create("work", component.NewSet(component.Settings)))

	require.NoError(t, env.Store.Remove("work"))
	assert.False(t, env.Store.Exists("work"))
}

func TestRemoveMissing(t *testing.T) {
	env := testutil.NewEnv(t)
	err := env.Store.Remove("nope")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProfileNotFound))
}

func TestRemoveActiveProfileRejected(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{}`)
	require.NoError(t, env.Store.Create("work", component.NewSet(component.Settings)))
	require.NoError(t, env.Switcher.Activate("work"))

	err := env.Store.Remove("work")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProfileActive))
	assert.True(t, env.Store.Exists("work"))
}

func TestRename(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{}`)
	require.NoError(t, env.Store.Create("old-name", component.NewSet(component.Settings)))

	require.NoError(t, env.Store.Rename("old-name", "new-name"))

	assert.False(t, env.Store.Exists("old-name"))
	assert.True(t, env.Store.Exists("new-name"))
}

func TestRenameCollision(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{}`)
	require.NoError(t, env.Store.Create("a", component.NewSet(component.Settings)))
	require.NoError(t, env.Store.Create("b", component.NewSet(component.Settings)))

	err := env.Store.Rename("a", "b")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProfileExists))
}

func TestRenameMissing(t *testing.T) {
	env := testutil.NewEnv(t)
	err := env.Store.Rename("ghost", "new")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProfileNotFound))
}

func TestRenameActiveProfileRepointsLinksAndLedger(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{"v":1}`)
	require.NoError(t, env.Store.Create("work", component.NewSet(component.Settings)))
	require.NoError(t, env.Switcher.Activate("work"))

	require.NoError(t, env.Store.Rename("work", "work-renamed"))

	// Ledger follows the rename
	st, err := state.Read(env.Paths.StateFile())
	require.NoError(t, err)
	assert.Equal(t, "work-renamed", st.ActiveProfile())

	// Live symlink points at the new storage path and still resolves
	target, err := os.Readlink(env.Paths.ClaudeSettings())
	require.NoError(t, err)
	assert.Equal(t, component.Settings.StoragePath(env.Paths, "work-renamed"), target)
	assert.Equal(t, `{"v":1}`, env.ReadFile(env.Paths.ClaudeSettings()))
}

func TestRenameActiveProfileLeavesForeignOccupantAlone(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{"v":1}`)
	require.NoError(t, env.Store.Create("work", component.NewSet(component.Settings)))
	require.NoError(t, env.Switcher.Activate("work"))

	// The user replaced the managed symlink with an uncaptured regular file
	require.NoError(t, os.Remove(env.Paths.ClaudeSettings()))
	require.NoError(t, os.WriteFile(env.Paths.ClaudeSettings(), []byte(`{"precious":"uncaptured"}`), 0644))

	require.NoError(t, env.Store.Rename("work", "work-renamed"))

	// The regular file survives untouched; no link was forced over it
	fi, err := os.Lstat(env.Paths.ClaudeSettings())
	require.NoError(t, err)
	assert.Zero(t, fi.Mode()&os.ModeSymlink)
	assert.Equal(t, `{"precious":"uncaptured"}`, env.ReadFile(env.Paths.ClaudeSettings()))

	// The rename itself still went through, ledger included
	st, err := state.Read(env.Paths.StateFile())
	require.NoError(t, err)
	assert.Equal(t, "work-renamed", st.ActiveProfile())
	assert.True(t, env.Store.Exists("work-renamed"))
}

func TestListEmpty(t *testing.T) {
	env := testutil.NewEnv(t)
	infos, err := env.Store.List()
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestListSorted(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{}`)
	require.NoError(t, env.Store.Create("zeta", component.NewSet(component.Settings)))
	require.NoError(t, env.Store.Create("alpha", component.NewSet(component.Settings)))

	infos, err := env.Store.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, "zeta", infos[1].Name)
}

func TestListUpgradesLegacyProfile(t *testing.T) {
	env := testutil.NewEnv(t)

	// A manifest-less directory holding a settings copy is a legacy profile
	legacyDir := env.Paths.ProfileDir("legacy")
	require.NoError(t, os.MkdirAll(legacyDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(legacyDir, "settings.json"), []byte(`{}`), 0644))

	infos, err := env.Store.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "legacy", infos[0].Name)
	require.NotNil(t, infos[0].Manifest.Migration)
	assert.True(t, infos[0].Manifest.ManagedComponents.Contains(component.Settings))

	// The synthesized manifest was persisted: upgrade happens once
	manifest, err := component.ReadManifest(legacyDir)
	require.NoError(t, err)
	assert.NotNil(t, manifest.Migration)

	// Idempotent on a second listing
	infos, err = env.Store.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
}

func TestListSkipsNonProfileDirectories(t *testing.T) {
	env := testutil.NewEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Join(env.Paths.ProfilesDir(), "random-junk"), 0755))

	infos, err := env.Store.List()
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestGetReportsMissingComponents(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{}`)
	env.WriteLiveDir(component.Hooks, map[string]string{"h.sh": "x"})
	require.NoError(t, env.Store.Create("work", component.NewSet(component.Settings, component.Hooks)))

	require.NoError(t, os.RemoveAll(component.Hooks.StoragePath(env.Paths, "work")))

	info, err := env.Store.Get("work")
	require.NoError(t, err)
	require.Len(t, info.MissingComponents, 1)
	assert.Equal(t, component.Hooks, info.MissingComponents[0])
}

func TestGetCorruptManifest(t *testing.T) {
	env := testutil.NewEnv(t)
	env.WriteLiveSettings(`{}`)
	require.NoError(t, env.Store.Create("work", component.NewSet(component.Settings)))

	require.NoError(t, os.WriteFile(env.Paths.ProfileManifest("work"), []byte("{broken"), 0644))

	_, err := env.Store.Get("work")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProfileCorrupt))
}
