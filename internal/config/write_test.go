package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mediahub", "config.toml")
	require.NoError(t, WriteDefault(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[server]")
	assert.Contains(t, string(content), "[plugins]")
	assert.Contains(t, string(content), "${MEDIAHUB_LOG_LEVEL:-info}")
}

func TestWriteDefault_Loads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
	assert.Equal(t, Default().Tasks, cfg.Tasks)
	assert.Len(t, cfg.Plugins.Builtins, 6)
}

func TestConfig_WriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 9000
	cfg.Plugins.Builtins = []string{"metube"}

	path := filepath.Join(t.TempDir(), "out", "config.toml")
	require.NoError(t, cfg.Write(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", got.Addr())
	assert.Equal(t, []string{"metube"}, got.Plugins.Builtins)
	assert.Equal(t, cfg.Tasks.Retention, got.Tasks.Retention)
}
