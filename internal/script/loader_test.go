package script

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/mediahub/internal/configstore"
	"github.com/vmunix/mediahub/internal/migrations"
	"github.com/vmunix/mediahub/internal/plugin"
)

const searchScript = `
plugin.register{
  type = "search",
  name = "demo",
  version = "1.2.0",
  description = "demo search",
  config_schema = {
    { name = "base_url", type = "text", default = "https://demo.example" },
  },
  search = function(keyword, config)
    if keyword == "" then
      return nil, "empty keyword"
    end
    if keyword == "explode" then
      error("boom")
    end
    return {
      {
        title = keyword .. " one",
        url = config.base_url .. "/1",
        episodes = {
          { episode_name = "01", play_url = "https://cdn.example/1.m3u8", is_m3u8 = true },
        },
      },
      { title = keyword .. " two", url = config.base_url .. "/2", platform = "mirror" },
    }
  end,
}
`

const downloadScript = `
local jobs = {}

plugin.register{
  type = "download",
  protocols = { "http", "https" },
  web_ui_url = "http://fetch.local",
  download = function(task, config)
    if string.find(task.url, "reject", 1, true) then
      return nil, "rejected by daemon"
    end
    local id = "job-" .. task.id
    jobs[id] = 25
    return { client_id = id }
  end,
  progress = function(id, config)
    local p = jobs[id]
    if p == nil then
      return nil, "unknown job"
    end
    return { progress = p, status = "downloading" }
  end,
}
`

const parserScript = `
plugin.register{
  type = "parser",
  config_schema = {
    { name = "prefix", type = "text", default = "https://jx.example/?url=" },
  },
  parse_url = function(url, config)
    if not string.find(url, ".m3u8", 1, true) then
      return {}
    end
    return { { name = "jx", url = config.prefix .. url } }
  end,
}
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeScript(t *testing.T, fs afero.Fs, typ plugin.Type, name, src string) {
	t.Helper()
	path := filepath.Join("plugins", string(typ), name+Suffix)
	require.NoError(t, afero.WriteFile(fs, path, []byte(src), 0o644))
}

func newTestLoader(t *testing.T) (*Loader, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return NewLoader(fs, "plugins", testLogger()), fs
}

func load(t *testing.T, l *Loader, typ plugin.Type, name string) plugin.Provider {
	t.Helper()
	p, err := l.Load(context.Background(), typ, name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.(io.Closer).Close() })
	p.SetConfig(plugin.Normalize(p.ConfigSchema(), nil, testLogger()))
	return p
}

func TestLoader_Search(t *testing.T) {
	l, fs := newTestLoader(t)
	writeScript(t, fs, plugin.TypeSearch, "demo", searchScript)

	p := load(t, l, plugin.TypeSearch, "demo")
	assert.Equal(t, "demo", p.Name())
	assert.Equal(t, "1.2.0", p.Version())
	assert.Equal(t, "demo search", p.Description())
	require.Len(t, p.ConfigSchema(), 1)
	assert.Equal(t, plugin.KindText, p.ConfigSchema()[0].Kind)

	s, ok := p.(plugin.Searcher)
	require.True(t, ok)
	results, err := s.Search(context.Background(), "cats")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "cats one", results[0].Title)
	assert.Equal(t, "https://demo.example/1", results[0].URL)
	assert.Equal(t, "demo", results[0].Platform)
	assert.Equal(t, "mirror", results[1].Platform)
	require.Len(t, results[0].Episodes, 1)
	assert.True(t, results[0].Episodes[0].IsM3U8)
	assert.Equal(t, "https://cdn.example/1.m3u8", results[0].Episodes[0].PlayURL)
}

func TestLoader_SearchUsesConfig(t *testing.T) {
	l, fs := newTestLoader(t)
	writeScript(t, fs, plugin.TypeSearch, "demo", searchScript)
	p := load(t, l, plugin.TypeSearch, "demo")

	p.SetConfig(plugin.Config{"base_url": "https://other.example"})
	results, err := p.(plugin.Searcher).Search(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "https://other.example/1", results[0].URL)
}

func TestLoader_SearchErrors(t *testing.T) {
	l, fs := newTestLoader(t)
	writeScript(t, fs, plugin.TypeSearch, "demo", searchScript)
	s := load(t, l, plugin.TypeSearch, "demo").(plugin.Searcher)

	_, err := s.Search(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty keyword")

	_, err = s.Search(context.Background(), "explode")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	_, err = s.VideoInfo(context.Background(), "https://demo.example/1")
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestLoader_Download(t *testing.T) {
	l, fs := newTestLoader(t)
	writeScript(t, fs, plugin.TypeDownload, "fetch", downloadScript)
	p := load(t, l, plugin.TypeDownload, "fetch")

	d, ok := p.(plugin.Downloader)
	require.True(t, ok)
	assert.Equal(t, []string{"http", "https"}, d.SupportedProtocols())
	assert.Equal(t, "http://fetch.local", d.WebUIURL())

	task := &plugin.DownloadTask{ID: "t1", URL: "https://example.com/a.mp4", Status: plugin.DownloadPending}
	require.NoError(t, d.Download(context.Background(), task))
	assert.Equal(t, plugin.DownloadDownloading, task.Status)
	assert.Equal(t, "job-t1", task.ClientID())

	prog, err := d.Progress(context.Background(), "job-t1")
	require.NoError(t, err)
	assert.Equal(t, 25.0, prog.Progress)
	assert.Equal(t, "downloading", prog.Status)

	rejected := &plugin.DownloadTask{ID: "t2", URL: "https://example.com/reject.mp4", Status: plugin.DownloadPending}
	err = d.Download(context.Background(), rejected)
	require.Error(t, err)
	assert.Equal(t, plugin.DownloadFailed, rejected.Status)

	records, err := d.Downloads(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)

	require.ErrorIs(t, d.Cancel(context.Background(), "job-t1"), ErrUnsupported)
}

func TestLoader_Parser(t *testing.T) {
	l, fs := newTestLoader(t)
	writeScript(t, fs, plugin.TypeParser, "jx", parserScript)
	p, ok := load(t, l, plugin.TypeParser, "jx").(plugin.Parser)
	require.True(t, ok)

	links := p.ParseURL("https://cdn.example/1.m3u8")
	assert.Equal(t, []plugin.ParsedLink{{Name: "jx", URL: "https://jx.example/?url=https://cdn.example/1.m3u8"}}, links)
	assert.Empty(t, p.ParseURL("https://cdn.example/1.mp4"))
}

func TestLoader_RejectsInvalidScripts(t *testing.T) {
	tests := []struct {
		name string
		typ  plugin.Type
		src  string
		want error
	}{
		{"noregister", plugin.TypeSearch, `local x = 1`, plugin.ErrNoProvider},
		{"twice", plugin.TypeSearch, `
local def = { type = "search", search = function() return {} end }
plugin.register(def)
plugin.register(def)`, plugin.ErrAmbiguousProvider},
		{"wrongtype", plugin.TypeSearch, `plugin.register{ type = "parser", parse_url = function() return {} end }`, plugin.ErrTypeMismatch},
		{"nofunc", plugin.TypeSearch, `plugin.register{ type = "search" }`, ErrInvalidDefinition},
		{"noprotocols", plugin.TypeDownload, `plugin.register{ type = "download", download = function() end, progress = function() end }`, ErrInvalidDefinition},
		{"renamed", plugin.TypeParser, `plugin.register{ type = "parser", name = "other", parse_url = function() return {} end }`, ErrInvalidDefinition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, fs := newTestLoader(t)
			writeScript(t, fs, tt.typ, tt.name, tt.src)

			_, err := l.Load(context.Background(), tt.typ, tt.name)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoader_SyntaxAndRuntimeErrors(t *testing.T) {
	l, fs := newTestLoader(t)
	writeScript(t, fs, plugin.TypeSearch, "syntax", `plugin.register{ type = `)
	writeScript(t, fs, plugin.TypeSearch, "raises", `error("cannot start")`)

	_, err := l.Load(context.Background(), plugin.TypeSearch, "syntax")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse script")

	_, err = l.Load(context.Background(), plugin.TypeSearch, "raises")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot start")
}

func TestLoader_MissingScript(t *testing.T) {
	l, _ := newTestLoader(t)

	_, err := l.Load(context.Background(), plugin.TypeSearch, "ghost")
	require.ErrorIs(t, err, plugin.ErrNotFound)
}

func TestLoader_LoadReadsCurrentFile(t *testing.T) {
	l, fs := newTestLoader(t)
	writeScript(t, fs, plugin.TypeParser, "jx", `plugin.register{ type = "parser", version = "1.0.0", parse_url = function() return {} end }`)
	first := load(t, l, plugin.TypeParser, "jx")

	writeScript(t, fs, plugin.TypeParser, "jx", `plugin.register{ type = "parser", version = "2.0.0", parse_url = function() return {} end }`)
	second := load(t, l, plugin.TypeParser, "jx")

	assert.Equal(t, "1.0.0", first.Version())
	assert.Equal(t, "2.0.0", second.Version())
}

func TestLoader_Candidates(t *testing.T) {
	l, fs := newTestLoader(t)
	writeScript(t, fs, plugin.TypeSearch, "zeta", searchScript)
	writeScript(t, fs, plugin.TypeSearch, "alpha", searchScript)
	require.NoError(t, afero.WriteFile(fs, "plugins/search/notes.txt", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "plugins/search/common.lua", []byte("x"), 0o644))

	names, err := l.Candidates(context.Background(), plugin.TypeSearch)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)

	names, err = l.Candidates(context.Background(), plugin.TypeParser)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestProvider_ClosedState(t *testing.T) {
	l, fs := newTestLoader(t)
	writeScript(t, fs, plugin.TypeSearch, "demo", searchScript)
	p, err := l.Load(context.Background(), plugin.TypeSearch, "demo")
	require.NoError(t, err)

	require.NoError(t, p.(io.Closer).Close())
	_, err = p.(plugin.Searcher).Search(context.Background(), "x")
	require.ErrorIs(t, err, ErrClosed)
}

func TestRegistry_DiscoverScripts(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Apply(ctx, db))

	l, fs := newTestLoader(t)
	writeScript(t, fs, plugin.TypeSearch, "demo", searchScript)
	writeScript(t, fs, plugin.TypeSearch, "template", searchScript)
	writeScript(t, fs, plugin.TypeSearch, "broken", `plugin.register{`)
	writeScript(t, fs, plugin.TypeDownload, "fetch", downloadScript)
	writeScript(t, fs, plugin.TypeParser, "jx", parserScript)

	store := configstore.New(db)
	require.NoError(t, store.Set(ctx, plugin.TypeSearch, "demo", plugin.Config{"base_url": "https://stored.example"}))

	reg := plugin.NewRegistry(store, l, testLogger())
	t.Cleanup(func() { _ = reg.Close() })

	res := reg.Discover(ctx)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Contains(t, res.Errors, "search:broken")
	assert.Equal(t, []string{"demo"}, reg.Names(plugin.TypeSearch))

	s, err := reg.Searcher("demo")
	require.NoError(t, err)
	results, err := s.Search(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, "https://stored.example/1", results[0].URL)

	resolved, err := reg.ResolveLinks(ctx, results[0].Episodes)
	require.NoError(t, err)
	assert.Equal(t, 1, resolved.ParsersActive)
	require.Len(t, resolved.Episodes[0].ParsedURLs, 1)

	d, err := reg.SelectDownloader(ctx, "https://example.com/a.mp4")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "fetch", d.Name())
}
