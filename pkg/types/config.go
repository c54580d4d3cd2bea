// Configuration for opening an almanac store.
package types

import (
	"errors"
	"time"
)

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
	DBFile  string `json:"db_file" yaml:"db_file"`

	// BusyTimeout bounds how long a connection waits on a locked database.
	BusyTimeout time.Duration `json:"busy_timeout" yaml:"busy_timeout"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Defaults applied when a Config field is left empty.
const (
	DefaultDBFile      = "game_data.db"
	DefaultBusyTimeout = 5 * time.Second
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDBFileInvalid  = errors.New("db file must be a file name, not a path")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	for _, r := range c.DBFile {
		if r == '/' || r == '\\' {
			return ErrDBFileInvalid
		}
	}
	return nil
}

// GetDBFile returns the database file name, falling back to DefaultDBFile.
func (c Config) GetDBFile() string {
	if c.DBFile == "" {
		return DefaultDBFile
	}
	return c.DBFile
}

// GetBusyTimeout returns the busy timeout, falling back to DefaultBusyTimeout.
func (c Config) GetBusyTimeout() time.Duration {
	if c.BusyTimeout <= 0 {
		return DefaultBusyTimeout
	}
	return c.BusyTimeout
}
