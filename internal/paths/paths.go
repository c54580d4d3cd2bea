// Package paths resolves the configuration and data directories of the
// almanac command.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName is the directory name used under platform config and data roots.
const appName = "almanac"

// DefaultDataDirName is the CWD-relative data directory used when nothing
// else selects one.
const DefaultDataDirName = ".almanac-db"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "ALMANAC_CONFIG_DIR"
	EnvDataDir   = "ALMANAC_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// xdgDir describes one XDG base directory and its fallback under $HOME.
type xdgDir struct {
	env      string
	fallback []string
}

var xdgConfig = xdgDir{env: "XDG_CONFIG_HOME", fallback: []string{".config"}}

// platformAppDir returns <root>/almanac for the XDG directory on Linux and
// os.UserConfigDir elsewhere (Application Support on macOS, %APPDATA% on
// Windows).
func platformAppDir(d xdgDir) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
	if root := os.Getenv(d.env); root != "" {
		return filepath.Join(root, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, d.fallback...), appName)...), nil
}

// DefaultConfigDir returns the platform-specific configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/almanac (fallback ~/.config/almanac)
// macOS:   ~/Library/Application Support/almanac
// Windows: %APPDATA%/almanac
func DefaultConfigDir() (string, error) {
	return platformAppDir(xdgConfig)
}

// ResolveConfigDir returns the configuration directory: flag, then
// ALMANAC_CONFIG_DIR, then DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory: flag, then the configured
// value, then ALMANAC_DATA_DIR, then ./.almanac-db.
func ResolveDataDir(flag, configured string) (string, error) {
	for _, dir := range []string{flag, configured, os.Getenv(EnvDataDir)} {
		if dir != "" {
			return filepath.Abs(dir)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}
