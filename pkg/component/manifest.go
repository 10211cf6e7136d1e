package component

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/ccprof/pkg/errors"
	"github.com/arthur-debert/ccprof/pkg/paths"
)

// ManifestVersion is the schema version written into new manifests
const ManifestVersion = "1.0.0"

// Manifest is the per-profile metadata record persisted as metadata.json
// inside the profile directory.
type Manifest struct {
	Version           string         `json:"version"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	ManagedComponents Set            `json:"managed_components"`
	Migration         *MigrationInfo `json:"migration,omitempty"`
}

// MigrationInfo stamps a manifest that was synthesized for a legacy
// (manifest-less) profile found on disk.
type MigrationInfo struct {
	OriginalVersion string    `json:"original_version"`
	MigrationDate   time.Time `json:"migration_date"`
}

// MarshalJSON serializes the set as a sorted array of identifier strings
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

// UnmarshalJSON parses an array of identifier strings
func (s *Set) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set := Set{}
	for _, name := range names {
		c, err := Parse(name)
		if err != nil {
			return err
		}
		set.Add(c)
	}
	*s = set
	return nil
}

// ReadManifest loads the manifest from a profile directory. A missing
// manifest yields a NOT_FOUND error so callers can run the legacy upgrade;
// unparseable content yields MANIFEST_PARSE.
func ReadManifest(profileDir string) (*Manifest, error) {
	path := filepath.Join(profileDir, paths.ManifestFileName)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNotFound, "no manifest at %s", path)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read manifest from %s", path)
	}

	var m Manifest
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to parse manifest from %s", path)
	}
	if m.ManagedComponents == nil {
		m.ManagedComponents = Set{}
	}
	return &m, nil
}

// WriteManifest persists the manifest into a profile directory
func (m *Manifest) WriteManifest(profileDir string) error {
	path := filepath.Join(profileDir, paths.ManifestFileName)

	content, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrManifestWrite, "failed to serialize manifest")
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrManifestWrite, "failed to write manifest to %s", path)
	}
	return nil
}
