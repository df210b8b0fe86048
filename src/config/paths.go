package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDirName = "nexus"

// DefaultDatabasePath returns the default sqlite location under the XDG
// state directory.
func DefaultDatabasePath() string {
	return filepath.Join(xdg.StateHome, appDirName, "nexus.db")
}

// DefaultConfigPath returns the default config file location under the XDG
// config directory.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appDirName, "config.json")
}
