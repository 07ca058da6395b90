package types

import (
	"errors"
	"path/filepath"
)

// Config holds backend selection and parameters for opening a Store.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// DatabaseFileName is the name of the SQLite file inside DataDir.
const DatabaseFileName = "database.sqlite"

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure. An empty DataDir is valid and means the
// current working directory.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// DatabasePath returns the location of the SQLite file for this config.
func (c Config) DatabasePath() string {
	dir := c.DataDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, DatabaseFileName)
}
