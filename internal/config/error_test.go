package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError_Empty(t *testing.T) {
	e := &ConfigError{Path: "/etc/mediahub/config.toml"}
	assert.False(t, e.HasErrors())
	assert.Empty(t, e.Error())
}

func TestConfigError_MissingVars(t *testing.T) {
	e := &ConfigError{
		Path:    "/etc/mediahub/config.toml",
		Missing: []string{"API_KEY", "SECRET"},
	}
	assert.True(t, e.HasErrors())
	got := e.Error()
	assert.Contains(t, got, "/etc/mediahub/config.toml")
	assert.Contains(t, got, "missing environment variables: API_KEY, SECRET")
	assert.NotContains(t, got, "validation failed")
}

func TestConfigError_Both(t *testing.T) {
	e := &ConfigError{
		Missing: []string{"API_KEY"},
		Errors:  []string{"server.port: bad", "database.path: required"},
	}
	got := e.Error()
	assert.Contains(t, got, "API_KEY")
	assert.Contains(t, got, "validation failed:")
	assert.Contains(t, got, "  - server.port: bad")
	assert.Contains(t, got, "  - database.path: required")
}
