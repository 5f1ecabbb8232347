package commands

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/deskbell/internal/core/config"
)

// Flags are the global options shared by every subcommand.
type Flags struct {
	LogLevel     string
	LogFile      string
	ConfigPath   string
	DataDir      string
	ProfilerPort int

	// Config is loaded in the root Before hook.
	Config *config.Config
}

const appDir = "deskbell"

// xdgPath resolves name under the directory in env, or under fallback
// (relative to the home directory) when env is unset.
func xdgPath(env string, fallback []string, name ...string) string {
	base := os.Getenv(env)
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(append([]string{home}, fallback...)...)
	}
	return filepath.Join(append([]string{base, appDir}, name...)...)
}

// DefaultConfigPath is $XDG_CONFIG_HOME/deskbell/config.yaml.
func DefaultConfigPath() string {
	return xdgPath("XDG_CONFIG_HOME", []string{".config"}, "config.yaml")
}

// DefaultDataDir is $XDG_DATA_HOME/deskbell, holding the database.
func DefaultDataDir() string {
	return xdgPath("XDG_DATA_HOME", []string{".local", "share"})
}

// DefaultLogFile is $XDG_STATE_HOME/deskbell/deskbell.log, or
// ~/Library/Logs/deskbell/deskbell.log on macOS when XDG_STATE_HOME is unset.
func DefaultLogFile() string {
	if runtime.GOOS == "darwin" && os.Getenv("XDG_STATE_HOME") == "" {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Logs", appDir, "deskbell.log")
	}
	return xdgPath("XDG_STATE_HOME", []string{".local", "state"}, "deskbell.log")
}
