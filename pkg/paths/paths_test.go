package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	p := NewWithHome("/home/alice")

	assert.Equal(t, "/home/alice/.claude-profiles", p.BaseDir())
	assert.Equal(t, "/home/alice/.claude-profiles/profiles", p.ProfilesDir())
	assert.Equal(t, "/home/alice/.claude-profiles/backups", p.BackupsDir())
	assert.Equal(t, "/home/alice/.claude-profiles/state.json", p.StateFile())
	assert.Equal(t, "/home/alice/.claude", p.ClaudeDir())
	assert.Equal(t, "/home/alice/.claude/settings.json", p.ClaudeSettings())
	assert.Equal(t, "/home/alice/.claude-profiles/profiles/work", p.ProfileDir("work"))
	assert.Equal(t, "/home/alice/.claude-profiles/profiles/work/metadata.json", p.ProfileManifest("work"))
}

func TestNewHonorsEnvOverride(t *testing.T) {
	t.Setenv(EnvCcprofHome, "/custom/home")

	p, err := New()
	require.NoError(t, err)
	assert.Equal(t, "/custom/home", p.Home())
}

func TestEnsureDirs(t *testing.T) {
	home := t.TempDir()
	p := NewWithHome(home)

	require.NoError(t, p.EnsureDirs())

	for _, dir := range []string{p.BaseDir(), p.ProfilesDir(), p.BackupsDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// Idempotent
	require.NoError(t, p.EnsureDirs())
}

func TestIsInProfiles(t *testing.T) {
	home := t.TempDir()
	p := NewWithHome(home)
	require.NoError(t, p.EnsureDirs())

	assert.True(t, p.IsInProfiles(filepath.Join(p.ProfilesDir(), "work", "settings.json")))
	assert.True(t, p.IsInProfiles(p.ProfilesDir()))
	assert.False(t, p.IsInProfiles(filepath.Join(home, "elsewhere")))
	assert.False(t, p.IsInProfiles(p.BackupsDir()))
}

func TestIsInProfilesResolvesSymlinkChains(t *testing.T) {
	home := t.TempDir()
	p := NewWithHome(home)
	require.NoError(t, p.EnsureDirs())

	stored := filepath.Join(p.ProfileDir("work"), "settings.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(stored), 0755))
	require.NoError(t, os.WriteFile(stored, []byte("{}"), 0644))

	// A link outside storage that points at a link into storage still
	// resolves as managed.
	inner := filepath.Join(home, "inner-link")
	require.NoError(t, os.Symlink(stored, inner))
	outer := filepath.Join(home, "outer-link")
	require.NoError(t, os.Symlink(inner, outer))

	assert.True(t, p.IsInProfiles(outer))
}

func TestValidateProfileName(t *testing.T) {
	tests := []struct {
		name        string
		profile     string
		wantErr     bool
		errContains string
	}{
		{name: "simple", profile: "work", wantErr: false},
		{name: "hyphenated", profile: "my-profile", wantErr: false},
		{name: "underscored digits", profile: "test_123", wantErr: false},
		{name: "empty", profile: "", wantErr: true, errContains: "cannot be empty"},
		{name: "space", profile: "invalid name", wantErr: true, errContains: "alphanumeric"},
		{name: "slash", profile: "test/profile", wantErr: true, errContains: "alphanumeric"},
		{name: "traversal", profile: "..", wantErr: true},
		{name: "leading dot", profile: ".hidden", wantErr: true, errContains: "cannot start"},
		{name: "leading hyphen", profile: "-flag", wantErr: true, errContains: "cannot start"},
		{name: "emoji", profile: "emoji😊", wantErr: true},
		{name: "too long", profile: repeat('a', 65), wantErr: true, errContains: "longer than"},
		{name: "max length", profile: repeat('a', 64), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfileName(tt.profile)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func repeat(c byte, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = c
	}
	return string(b)
}
