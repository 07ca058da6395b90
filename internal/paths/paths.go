// Package paths resolves where pantry keeps its config file and its
// database.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user platform directories.
const AppName = "pantry"

// DefaultDataDirName is the working-directory-relative data directory used
// when nothing else is configured.
const DefaultDataDirName = ".pantry-db"

// Environment overrides.
const (
	EnvConfigDir = "PANTRY_CONFIG_DIR"
	EnvDataDir   = "PANTRY_DATA_DIR"
)

// Overridden in tests.
var (
	homeDir       = os.UserHomeDir
	userConfigDir = os.UserConfigDir
	workingDir    = os.Getwd
)

// DefaultConfigDir returns the per-user config directory:
// $XDG_CONFIG_HOME/pantry or ~/.config/pantry on Linux, and
// os.UserConfigDir()/pantry elsewhere.
func DefaultConfigDir() (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// ResolveConfigDir applies flag > PANTRY_CONFIG_DIR > DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	if dir, ok := firstSet(flag, os.Getenv(EnvConfigDir)); ok {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir applies flag > config.yaml data_dir > PANTRY_DATA_DIR >
// $(CWD)/.pantry-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir, ok := firstSet(flag, configValue, os.Getenv(EnvDataDir)); ok {
		return filepath.Abs(dir)
	}
	cwd, err := workingDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

func firstSet(values ...string) (string, bool) {
	for _, v := range values {
		if v != "" {
			return v, true
		}
	}
	return "", false
}
