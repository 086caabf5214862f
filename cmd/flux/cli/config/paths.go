// Package config provides configuration management for the flux CLI.
package config

import (
	"os"
	"path/filepath"
)

// Dir returns the flux config directory.
// Uses XDG_CONFIG_HOME/flux, defaulting to ~/.config/flux.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "flux"), nil
}
