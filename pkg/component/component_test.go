package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/ccprof/pkg/paths"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Component
		wantErr bool
	}{
		{input: "settings", want: Settings},
		{input: "settings.json", want: Settings},
		{input: "Settings", want: Settings},
		{input: " agents ", want: Agents},
		{input: "hooks", want: Hooks},
		{input: "commands", want: Commands},
		{input: "bogus", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSet(t *testing.T) {
	set, err := ParseSet([]string{"settings", "agents", "settings"})
	require.NoError(t, err)
	assert.Len(t, set, 2)
	assert.True(t, set.Contains(Settings))
	assert.True(t, set.Contains(Agents))

	_, err = ParseSet([]string{"settings", "nope"})
	require.Error(t, err)
}

func TestAttributes(t *testing.T) {
	assert.True(t, Settings.IsFile())
	assert.False(t, Agents.IsFile())
	assert.Equal(t, "Settings", Settings.DisplayName())
	assert.Equal(t, "settings.json", Settings.BackupPrefix())
	assert.Equal(t, "hooks", Hooks.BackupPrefix())
}

func TestPathsPerKind(t *testing.T) {
	p := paths.NewWithHome("/home/alice")

	assert.Equal(t, "/home/alice/.claude/settings.json", Settings.LivePath(p))
	assert.Equal(t, "/home/alice/.claude/agents", Agents.LivePath(p))
	assert.Equal(t, "/home/alice/.claude-profiles/profiles/work/settings.json", Settings.StoragePath(p, "work"))
	assert.Equal(t, "/home/alice/.claude-profiles/profiles/work/commands", Commands.StoragePath(p, "work"))
}

func TestFromBackupName(t *testing.T) {
	c, ok := FromBackupName("settings.json.20240115_103045.bak")
	require.True(t, ok)
	assert.Equal(t, Settings, c)

	c, ok = FromBackupName("agents.20240115_103045.bak")
	require.True(t, ok)
	assert.Equal(t, Agents, c)

	_, ok = FromBackupName("random-file.bak")
	assert.False(t, ok)
}

func TestSetSortedAndNames(t *testing.T) {
	set := NewSet(Commands, Settings)
	assert.Equal(t, []Component{Settings, Commands}, set.Sorted())
	assert.Equal(t, []string{"commands", "settings"}, set.Names())
}

func TestSetDifference(t *testing.T) {
	a := NewSet(Settings, Agents, Hooks)
	b := NewSet(Agents)

	diff := a.Difference(b)
	assert.True(t, diff.Contains(Settings))
	assert.True(t, diff.Contains(Hooks))
	assert.False(t, diff.Contains(Agents))
}
