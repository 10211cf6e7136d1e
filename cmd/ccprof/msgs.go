package ccprof

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "A profile switcher for Claude Code"
	MsgListShort       = "List all profiles"
	MsgCurrentShort    = "Show the active profile"
	MsgInspectShort    = "Show a profile's details"
	MsgAddShort        = "Create a profile from the current live configuration"
	MsgUseShort        = "Switch to a profile"
	MsgRemoveShort     = "Remove a profile"
	MsgRenameShort     = "Rename a profile"
	MsgDoctorShort     = "Diagnose common problems"
	MsgBackupShort     = "Manage backups of replaced configuration"
	MsgBackupListShort = "List saved backups, newest first"
	MsgBackupRestore   = "Restore a backup to the live configuration"
	MsgBackupClean     = "Trim old backups, keeping the most recent per kind"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgNoProfiles      = "No profiles found. Create one with 'ccprof add <name>'."
	MsgNoActiveProfile = "No active profile."
	MsgNoBackups       = "No backups found."
	MsgSwitchedFormat  = "Switched to profile '%s'.\n"
	MsgCreatedFormat   = "Created profile '%s' managing: %s\n"
	MsgRemovedFormat   = "Removed profile '%s'.\n"
	MsgRenamedFormat   = "Renamed profile '%s' to '%s'.\n"
	MsgRestoredFormat  = "Restored backup '%s'.\n"
	MsgCleanedFormat   = "Removed %d old backup(s).\n"
	MsgDoctorAllGood   = "No problems found."
	MsgDoctorProblems  = "Problems detected. See the failures above."

	// Error messages
	MsgErrLoadConfig       = "failed to load configuration: %w"
	MsgErrRemoveNeedsForce = "refusing to remove '%s' without --force"

	// Flag descriptions
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagColor      = "Color output: always, auto, or never"
	MsgFlagComponents = "Comma-separated components to capture (settings,agents,hooks,commands)"
	MsgFlagForce      = "Remove without confirmation"
	MsgFlagKeep       = "Number of backups to keep per kind"
)

// Long messages
const (
	MsgRootLong = `ccprof manages named configuration profiles for Claude Code.

A profile is a saved copy of your ~/.claude configuration (settings.json
plus optional agents, hooks, and commands directories). Switching profiles
replaces the live files with symlinks into ccprof's storage, backing up
anything it would overwrite.`

	MsgAddLong = `Create a profile by copying the current live configuration into
ccprof's storage. By default only settings.json is captured; use
--components to capture more. Every requested component must exist.`

	MsgUseLong = `Switch the live configuration to a profile. Each managed component
is replaced with a symlink into the profile's storage. Regular files and
directories found in the way are backed up first; symlinks already managed
by ccprof are replaced without a backup.`

	MsgCompletionLong = `To load completions:

Bash:
  $ source <(ccprof completion bash)

Zsh:
  $ ccprof completion zsh > "${fpath[1]}/_ccprof"

Fish:
  $ ccprof completion fish | source

PowerShell:
  PS> ccprof completion powershell | Out-String | Invoke-Expression
`
)
