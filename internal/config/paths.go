// Package config loads spice's settings and resolves where its files live.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const appName = "spice"

// ExpandPath resolves a leading ~ and any $VAR references in path.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}

// Dir returns the directory holding config.yaml and the Sheets token,
// honoring XDG_CONFIG_HOME.
func Dir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDatabasePath returns where the ledger lives when database.path is
// unset, honoring XDG_DATA_HOME.
func DefaultDatabasePath() (string, error) {
	dir, err := xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName+".db"), nil
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, fallback, appName), nil
}
