// Package config loads focuslab settings from the TOML config file, .env
// files and FOCUSLAB_* environment variables, in increasing priority.
package config

import (
	"os"
	"path/filepath"
)

// AppName names the config and data directories.
const AppName = "focuslab"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// Dir returns the focuslab config directory.
func Dir() string {
	return filepath.Join(XDGConfigHome(), AppName)
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// DefaultEnvPath returns the .env file read from the config directory.
func DefaultEnvPath() string {
	return filepath.Join(Dir(), ".env")
}
