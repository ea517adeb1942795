package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvVar names the environment variable that overrides discovery.
const EnvVar = "MEDIAHUB_CONFIG"

// ErrNotFound is returned by Discover when no candidate file exists.
var ErrNotFound = errors.New("config not found")

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./config.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "mediahub", "config.toml")
}

// SearchPaths lists the files Discover checks after the environment override.
func SearchPaths() []string {
	return []string{
		"./config.toml",
		DefaultPath(),
		"/etc/mediahub/config.toml",
	}
}

// Discover finds the config file using the standard search order:
//  1. MEDIAHUB_CONFIG environment variable
//  2. ./config.toml (current directory)
//  3. $XDG_CONFIG_HOME/mediahub/config.toml
//  4. /etc/mediahub/config.toml
func Discover() (string, error) {
	if envPath := os.Getenv(EnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvVar, envPath, err)
		}
		return envPath, nil
	}

	paths := SearchPaths()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w, checked: %s", ErrNotFound, strings.Join(paths, ", "))
}

// Resolve returns explicit when set and falls back to Discover otherwise.
func Resolve(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return Discover()
}
