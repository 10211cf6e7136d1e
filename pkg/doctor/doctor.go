// Package doctor runs read-only diagnostics over the managed directories,
// the state ledger, the live settings symlink, and every profile on disk.
// It never mutates anything: legacy profiles are reported, not upgraded.
package doctor

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/arthur-debert/ccprof/pkg/component"
	"github.com/arthur-debert/ccprof/pkg/errors"
	"github.com/arthur-debert/ccprof/pkg/logging"
	"github.com/arthur-debert/ccprof/pkg/paths"
	"github.com/arthur-debert/ccprof/pkg/profile"
	"github.com/arthur-debert/ccprof/pkg/state"
	"github.com/arthur-debert/ccprof/pkg/status"
)

// CheckStatus grades one diagnostic finding
type CheckStatus int

const (
	StatusOK CheckStatus = iota
	StatusInfo
	StatusWarn
	StatusFail
)

func (s CheckStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInfo:
		return "info"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Check is one diagnostic finding
type Check struct {
	Section string
	Name    string
	Status  CheckStatus
	Detail  string
}

// Report collects all findings from a doctor run
type Report struct {
	Checks []Check
}

func (r *Report) add(section, name string, st CheckStatus, format string, args ...interface{}) {
	r.Checks = append(r.Checks, Check{
		Section: section,
		Name:    name,
		Status:  st,
		Detail:  fmt.Sprintf(format, args...),
	})
}

// HasFailures reports whether any check failed outright
func (r *Report) HasFailures() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}

// Run executes all diagnostics and returns the report
func Run(p *paths.Paths) *Report {
	logger := logging.GetLogger("doctor")

	report := &Report{}
	checkDirectories(p, report)
	checkState(p, report)
	checkSettingsLink(p, report)
	checkProfiles(p, report)

	logger.Debug().
		Int("checks", len(report.Checks)).
		Bool("failures", report.HasFailures()).
		Msg("Doctor run complete")
	return report
}

func checkDirectories(p *paths.Paths, report *Report) {
	const section = "Directories"

	if _, err := os.Stat(p.BaseDir()); err == nil {
		report.add(section, "base directory", StatusOK, "exists: %s", p.BaseDir())
	} else {
		report.add(section, "base directory", StatusFail, "missing: %s", p.BaseDir())
	}

	// A missing Claude directory just means Claude Code was never run here
	if _, err := os.Stat(p.ClaudeDir()); err == nil {
		report.add(section, "claude directory", StatusOK, "exists: %s", p.ClaudeDir())
	} else {
		report.add(section, "claude directory", StatusWarn, "missing: %s", p.ClaudeDir())
	}
}

func checkState(p *paths.Paths, report *Report) {
	const section = "State File"

	// Read treats a missing file as the zero state, so absence has to be
	// checked separately to tell a fresh install apart from a readable file.
	if _, err := os.Stat(p.StateFile()); err != nil {
		report.add(section, "state file", StatusWarn, "missing (fresh install?)")
		return
	}

	st, err := state.Read(p.StateFile())
	if err != nil {
		report.add(section, "state file", StatusFail, "corrupt: %v", err)
		return
	}

	report.add(section, "state file", StatusOK, "readable")

	active := st.ActiveProfile()
	if active == "" {
		report.add(section, "active profile", StatusInfo, "no active profile set")
		return
	}
	if _, err := os.Stat(p.ProfileDir(active)); err == nil {
		report.add(section, "active profile", StatusOK, "%q, directory exists", active)
	} else {
		report.add(section, "active profile", StatusFail, "%q, directory missing", active)
	}
}

func checkSettingsLink(p *paths.Paths, report *Report) {
	const section = "Settings Symlink"

	st := status.Detect(p.ClaudeSettings())
	switch st.Kind {
	case status.Missing:
		report.add(section, "settings.json", StatusWarn, "missing")
	case status.RegularFile:
		report.add(section, "settings.json", StatusInfo, "regular file (not managed)")
	case status.RegularDirectory:
		report.add(section, "settings.json", StatusFail, "is a directory, expected a file")
	case status.Symlink:
		if p.IsInProfiles(st.Target) {
			report.add(section, "settings.json", StatusOK, "symlink into profile storage: %s", st.Target)
		} else {
			report.add(section, "settings.json", StatusWarn, "symlink to external target: %s", st.Target)
		}
	case status.BrokenSymlink:
		report.add(section, "settings.json", StatusFail, "broken symlink to %s", st.Target)
	}
}

func checkProfiles(p *paths.Paths, report *Report) {
	const section = "Profiles"

	entries, err := os.ReadDir(p.ProfilesDir())
	if err != nil {
		if os.IsNotExist(err) {
			report.add(section, "profiles", StatusWarn, "no profiles directory")
		} else {
			report.add(section, "profiles", StatusFail, "failed to list profiles: %v", err)
		}
		return
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		report.add(section, "profiles", StatusWarn, "no profiles found")
		return
	}
	sort.Strings(names)

	for _, name := range names {
		checkOneProfile(p, name, report)
	}
}

// checkOneProfile audits a single profile directory without going through
// the store, because the store's legacy upgrade writes a manifest and the
// doctor must stay read-only.
func checkOneProfile(p *paths.Paths, name string, report *Report) {
	const section = "Profiles"
	profileDir := p.ProfileDir(name)

	manifest, err := component.ReadManifest(profileDir)
	if err != nil {
		if !errors.IsErrorCode(err, errors.ErrNotFound) {
			report.add(section, name, StatusFail, "unreadable manifest: %v", err)
			return
		}
		// No manifest: valid legacy profile, or junk
		settingsCopy := component.Settings.StoragePath(p, name)
		if _, statErr := os.Stat(settingsCopy); statErr != nil {
			report.add(section, name, StatusFail, "no manifest and no settings copy")
			return
		}
		if jsonErr := profile.ValidateJSONFile(settingsCopy); jsonErr != nil {
			report.add(section, name, StatusFail, "invalid settings.json: %v", jsonErr)
			return
		}
		report.add(section, name, StatusWarn, "legacy profile (no manifest); will be upgraded on next use")
		return
	}

	var missing []string
	for _, c := range manifest.ManagedComponents.Sorted() {
		if _, err := os.Stat(c.StoragePath(p, name)); err != nil {
			missing = append(missing, c.DisplayName())
		}
	}
	if len(missing) > 0 {
		report.add(section, name, StatusWarn, "missing components: %s", strings.Join(missing, ", "))
		return
	}

	if manifest.ManagedComponents.Contains(component.Settings) {
		if err := profile.ValidateJSONFile(component.Settings.StoragePath(p, name)); err != nil {
			report.add(section, name, StatusFail, "invalid settings.json: %v", err)
			return
		}
	}
	report.add(section, name, StatusOK, "all managed components present")
}
