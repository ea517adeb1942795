package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 8080
log_level = "debug"

[database]
path = "/var/lib/mediahub/mediahub.db"

[plugins]
dir = "/opt/mediahub/plugins"
builtins = ["seacms", "metube"]

[tasks]
retention = "12h"
sweep_interval = "30m"

[downloads]
poll_interval = "10s"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "/var/lib/mediahub/mediahub.db", cfg.Database.Path)
	assert.Equal(t, "/opt/mediahub/plugins", cfg.Plugins.Dir)
	assert.Equal(t, []string{"seacms", "metube"}, cfg.Plugins.Builtins)
	assert.Equal(t, 12*time.Hour, cfg.Tasks.Retention)
	assert.Equal(t, 30*time.Minute, cfg.Tasks.SweepInterval)
	assert.Equal(t, 10*time.Second, cfg.Downloads.PollInterval)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[server]\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultLogLevel, cfg.Server.LogLevel)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultPluginDir, cfg.Plugins.Dir)
	assert.True(t, cfg.Plugins.DiscoverOnStart)
	assert.Empty(t, cfg.Plugins.Builtins)
	assert.True(t, cfg.Search.Rank)
	assert.Equal(t, DefaultSearchFanout, cfg.Search.Concurrency)
	assert.Equal(t, DefaultSearchTimeout, cfg.Search.Timeout)
	assert.Equal(t, DefaultTaskRetention, cfg.Tasks.Retention)
	assert.Equal(t, DefaultSweepInterval, cfg.Tasks.SweepInterval)
	assert.Equal(t, DefaultPollInterval, cfg.Downloads.PollInterval)
	assert.Equal(t, DefaultEventRetention, cfg.Events.Retention)
}

func TestLoad_ExplicitFalseIsKept(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[plugins]
discover_on_start = false

[search]
rank = false

[events]
retention = "0s"
`))
	require.NoError(t, err)
	assert.False(t, cfg.Plugins.DiscoverOnStart)
	assert.False(t, cfg.Search.Rank)
	assert.Zero(t, cfg.Events.Retention)
}

func TestLoad_SubstitutesEnv(t *testing.T) {
	t.Setenv("MEDIAHUB_TEST_DB", "/tmp/env.db")

	cfg, err := Load(writeConfig(t, `
[database]
path = "${MEDIAHUB_TEST_DB}"

[server]
log_level = "${MEDIAHUB_TEST_UNSET_LEVEL:-warn}"
`))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
}

func TestLoad_MissingEnvVar(t *testing.T) {
	path := writeConfig(t, `
[database]
path = "${MEDIAHUB_TEST_NONEXISTENT_DB}"
`)

	_, err := Load(path)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr), "expected *ConfigError, got %v", err)
	assert.Equal(t, []string{"MEDIAHUB_TEST_NONEXISTENT_DB"}, cfgErr.Missing)
	assert.Equal(t, path, cfgErr.Path)
}

func TestLoad_ValidationError(t *testing.T) {
	_, err := Load(writeConfig(t, "[server]\nport = 99999\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestLoad_ParseError(t *testing.T) {
	_, err := Load(writeConfig(t, "[server\nport = "))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadWithoutValidation(t *testing.T) {
	cfg, err := LoadWithoutValidation(writeConfig(t, `
[server]
port = 99999

[database]
path = "${MEDIAHUB_TEST_NONEXISTENT_DB}"
`))
	require.NoError(t, err)
	assert.Equal(t, 99999, cfg.Server.Port)
	assert.Equal(t, "${MEDIAHUB_TEST_NONEXISTENT_DB}", cfg.Database.Path)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.Validate())
	assert.True(t, cfg.Plugins.DiscoverOnStart)
	assert.Equal(t, "0.0.0.0:8484", cfg.Addr())
}
