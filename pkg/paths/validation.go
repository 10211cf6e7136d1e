package paths

import (
	"github.com/arthur-debert/ccprof/pkg/errors"
)

// MaxProfileNameLength bounds profile names to keep them filesystem-friendly
const MaxProfileNameLength = 64

// ValidateProfileName ensures a profile name is safe to use as a directory
// name under the profiles root. Names must:
// - Not be empty
// - Not exceed MaxProfileNameLength characters
// - Contain only ASCII alphanumerics, hyphens and underscores
// - Not begin with a dot or a hyphen
func ValidateProfileName(name string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "profile name cannot be empty")
	}

	if len(name) > MaxProfileNameLength {
		return errors.Newf(errors.ErrInvalidInput,
			"profile name cannot be longer than %d characters", MaxProfileNameLength)
	}

	if name[0] == '.' || name[0] == '-' {
		return errors.Newf(errors.ErrInvalidInput,
			"profile name cannot start with %q", string(name[0]))
	}

	for _, c := range name {
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_' {
			continue
		}
		return errors.Newf(errors.ErrInvalidInput,
			"invalid profile name %q: only alphanumeric characters, hyphens (-) and underscores (_) are allowed", name)
	}

	return nil
}
