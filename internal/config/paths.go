// Package config provides configuration management for histmcp.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/mitchellh/go-homedir"
)

// Paths holds the directories histmcp reads and writes.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/histmcp)
	ConfigDir string

	// DataDir is the directory for data files (~/.local/share/histmcp)
	DataDir string
}

// DefaultPaths returns the default paths based on XDG Base Directory spec.
// On Windows, it uses %APPDATA% instead.
func DefaultPaths() *Paths {
	home := homeDir()

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}

		return &Paths{
			ConfigDir: filepath.Join(appData, "histmcp"),
			DataDir:   filepath.Join(localAppData, "histmcp"),
		}
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	return &Paths{
		ConfigDir: filepath.Join(configHome, "histmcp"),
		DataDir:   filepath.Join(dataHome, "histmcp"),
	}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// SnapshotFile returns the default path for SQLite history snapshots.
func (p *Paths) SnapshotFile() string {
	return filepath.Join(p.DataDir, "history.db")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := homedir.Dir()
	if err != nil {
		if runtime.GOOS == "windows" {
			return os.Getenv("USERPROFILE")
		}
		return os.Getenv("HOME")
	}
	return home
}
