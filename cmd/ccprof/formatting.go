package ccprof

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/ccprof/pkg/doctor"
)

// applyColorMode configures pterm color output from the --color flag value
// (always, auto, never). Auto enables color only when stdout is a terminal.
func applyColorMode(mode string) {
	switch mode {
	case "always":
		pterm.EnableColor()
	case "never":
		pterm.DisableColor()
	default:
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			pterm.EnableColor()
		} else {
			pterm.DisableColor()
		}
	}
}

func formatBold(s string) string {
	return pterm.Bold.Sprint(s)
}

// checkIcon maps a diagnostic status to a rendered marker
func checkIcon(st doctor.CheckStatus) string {
	switch st {
	case doctor.StatusOK:
		return pterm.Green("✓")
	case doctor.StatusInfo:
		return pterm.Cyan("·")
	case doctor.StatusWarn:
		return pterm.Yellow("!")
	case doctor.StatusFail:
		return pterm.Red("✗")
	default:
		return "?"
	}
}

// activeMarker renders the active-profile indicator in listings
func activeMarker(active bool) string {
	if active {
		return pterm.Green("*")
	}
	return " "
}
