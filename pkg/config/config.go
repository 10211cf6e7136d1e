// Package config loads the optional ccprof configuration file. All values
// have defaults; a missing file is not an error.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/ccprof/pkg/errors"
)

// ConfigFileName is the TOML file looked up under the XDG config dir
const ConfigFileName = "config.toml"

// EnvConfigPath overrides the config file location, primarily for tests
const EnvConfigPath = "CCPROF_CONFIG"

// Config holds the user-tunable knobs
type Config struct {
	Backup BackupConfig `toml:"backup"`
	Lock   LockConfig   `toml:"lock"`
}

// BackupConfig tunes the backup engine
type BackupConfig struct {
	// MaxBackups is the retention cap per component kind during rotation
	MaxBackups int `toml:"max_backups"`
	// CleanKeep is the default keep count for 'ccprof backup clean'
	CleanKeep int `toml:"clean_keep"`
}

// LockConfig tunes the state-file lock
type LockConfig struct {
	// WaitSeconds bounds how long a mutation waits for the state lock
	WaitSeconds int `toml:"wait_seconds"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Backup: BackupConfig{
			MaxBackups: 10,
			CleanKeep:  5,
		},
		Lock: LockConfig{
			WaitSeconds: 30,
		},
	}
}

// Path returns the config file location: $CCPROF_CONFIG if set, else
// <xdg config home>/ccprof/config.toml.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, "ccprof", ConfigFileName)
}

// Load reads the config file, overlaying it on the defaults. A missing file
// yields the defaults; unreadable or unparseable content is an error.
func Load() (Config, error) {
	cfg := Default()

	path := Path()
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read config file %s", path)
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", path)
	}

	// Out-of-range values fall back to defaults rather than breaking
	// rotation or locking semantics.
	if cfg.Backup.MaxBackups <= 0 {
		cfg.Backup.MaxBackups = Default().Backup.MaxBackups
	}
	if cfg.Backup.CleanKeep < 0 {
		cfg.Backup.CleanKeep = Default().Backup.CleanKeep
	}
	if cfg.Lock.WaitSeconds <= 0 {
		cfg.Lock.WaitSeconds = Default().Lock.WaitSeconds
	}

	return cfg, nil
}
