package commands

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/taskpilot/internal/core/config"
)

// Flags holds the global flag values shared by every command.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	Owner      string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// OwnerID returns the --owner flag when set, otherwise the configured owner.
func (f *Flags) OwnerID() string {
	if f.Owner != "" {
		return f.Owner
	}
	if f.Config != nil {
		return f.Config.Owner
	}
	return config.DefaultConfig().Owner
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "taskpilot", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "taskpilot")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/taskpilot/taskpilot.log
// On Linux: $XDG_STATE_HOME/taskpilot/taskpilot.log (defaults to ~/.local/state/taskpilot/taskpilot.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "taskpilot", "taskpilot.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "taskpilot", "taskpilot.log")
	}

	return filepath.Join(home, ".local", "state", "taskpilot", "taskpilot.log")
}
