package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediahub/internal/config"
	"github.com/vmunix/mediahub/internal/plugin"
)

const demoScript = `
plugin.register{
  type = "search",
  name = "demo",
  version = "0.1.0",
  search = function(keyword, config)
    return { { title = keyword, url = "https://demo.example/1" } }
  end,
}
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "data", "mediahub.db")
	cfg.Plugins.Dir = "/plugins"
	return cfg
}

func listPlugins(t *testing.T, h http.Handler, typ plugin.Type) []plugin.Info {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/plugins/"+string(typ), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var infos []plugin.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	return infos
}

func names(infos []plugin.Info) []string {
	out := make([]string, 0, len(infos))
	for _, i := range infos {
		out = append(out, i.Name)
	}
	return out
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestBuildApp_DiscoversScriptsAndBuiltins(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/plugins/search/demo_plugin.lua", []byte(demoScript), 0o644))

	cfg := testConfig(t)
	cfg.Plugins.DiscoverOnStart = true
	cfg.Plugins.Builtins = []string{"m3u8", "metube"}

	a, err := buildApp(context.Background(), cfg, fs, newLogger(&bytes.Buffer{}, "error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, err = os.Stat(cfg.Database.Path)
	require.NoError(t, err, "database directory is created")

	assert.Equal(t, []string{"demo"}, names(listPlugins(t, a.handler, plugin.TypeSearch)))
	assert.Equal(t, []string{"metube"}, names(listPlugins(t, a.handler, plugin.TypeDownload)))
	assert.Equal(t, []string{"m3u8"}, names(listPlugins(t, a.handler, plugin.TypeParser)))
}

func TestBuildApp_BuiltinsOnlyWithoutDiscovery(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/plugins/search/demo_plugin.lua", []byte(demoScript), 0o644))

	cfg := testConfig(t)
	cfg.Plugins.DiscoverOnStart = false
	cfg.Plugins.Builtins = []string{"seacms"}

	a, err := buildApp(context.Background(), cfg, fs, newLogger(&bytes.Buffer{}, "error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Equal(t, []string{"seacms"}, names(listPlugins(t, a.handler, plugin.TypeSearch)))
	assert.Empty(t, listPlugins(t, a.handler, plugin.TypeDownload))
}

func TestBuildApp_UnknownBuiltin(t *testing.T) {
	cfg := testConfig(t)
	cfg.Plugins.Builtins = []string{"nope"}

	_, err := buildApp(context.Background(), cfg, afero.NewMemMapFs(), newLogger(&bytes.Buffer{}, "error"))
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrNotFound)
}

func TestBuildApp_LegacyMigrationFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Plugins.DiscoverOnStart = false
	cfg.Plugins.Builtins = []string{"metube"}

	db, err := openDB(ctx, cfg.Database.Path)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		`INSERT INTO plugin_configs (key, value, updated_at) VALUES (?, ?, ?)`,
		"search:seacms", "{not json", time.Now())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	var logs bytes.Buffer
	a, err := buildApp(ctx, cfg, afero.NewMemMapFs(), newLogger(&logs, "warn"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Contains(t, logs.String(), "legacy config migration failed")
	assert.Equal(t, []string{"metube"}, names(listPlugins(t, a.handler, plugin.TypeDownload)))
}

func TestLoadConfig_Explicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, config.WriteDefault(path))

	cfg, resolved, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, _, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}
