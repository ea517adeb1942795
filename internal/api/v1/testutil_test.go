package v1

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/mediahub/internal/configstore"
	"github.com/vmunix/mediahub/internal/download"
	"github.com/vmunix/mediahub/internal/events"
	"github.com/vmunix/mediahub/internal/migrations"
	"github.com/vmunix/mediahub/internal/plugin"
	"github.com/vmunix/mediahub/internal/search"
	"github.com/vmunix/mediahub/internal/tasks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "open db")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Apply(context.Background(), db), "apply schema")
	return db
}

type fakeSearcher struct {
	name    string
	results []plugin.SearchResult
	err     error

	mu  sync.Mutex
	cfg plugin.Config
}

func (f *fakeSearcher) Name() string        { return f.name }
func (f *fakeSearcher) Version() string     { return "1.0.0" }
func (f *fakeSearcher) Description() string { return f.name + " catalog" }
func (f *fakeSearcher) ConfigSchema() []plugin.ConfigField {
	return []plugin.ConfigField{
		{Key: "api_key", Kind: plugin.KindPassword},
		{Key: "max_results", Kind: plugin.KindNumber, Default: 10},
	}
}

func (f *fakeSearcher) SetConfig(cfg plugin.Config) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = cfg
}

func (f *fakeSearcher) config() plugin.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

func (f *fakeSearcher) Search(context.Context, string) ([]plugin.SearchResult, error) {
	return f.results, f.err
}

func (f *fakeSearcher) VideoInfo(_ context.Context, u string) (*plugin.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &plugin.SearchResult{Title: "info", URL: u, Platform: f.name}, nil
}

type fakeDownloader struct {
	name      string
	protocols []string
	reject    error
	listErr   error
	records   []plugin.DownloadRecord
	webUI     string

	mu        sync.Mutex
	cancelled []string
}

func (f *fakeDownloader) Name() string                       { return f.name }
func (f *fakeDownloader) Version() string                    { return "1.0.0" }
func (f *fakeDownloader) Description() string                { return "" }
func (f *fakeDownloader) ConfigSchema() []plugin.ConfigField { return nil }
func (f *fakeDownloader) SetConfig(plugin.Config)            {}
func (f *fakeDownloader) SupportedProtocols() []string       { return f.protocols }
func (f *fakeDownloader) WebUIURL() string                   { return f.webUI }

func (f *fakeDownloader) Download(_ context.Context, task *plugin.DownloadTask) error {
	if f.reject != nil {
		return f.reject
	}
	task.Status = plugin.DownloadDownloading
	task.SetClientID(f.name + "-" + task.ID)
	return nil
}

func (f *fakeDownloader) Progress(context.Context, string) (*plugin.Progress, error) {
	return &plugin.Progress{Status: "downloading"}, nil
}

func (f *fakeDownloader) Cancel(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeDownloader) Downloads(context.Context) ([]plugin.DownloadRecord, error) {
	return f.records, f.listErr
}

// prefixParser resolves every URL to prefix+url.
type prefixParser struct {
	name   string
	prefix string
}

func (p *prefixParser) Name() string                       { return p.name }
func (p *prefixParser) Version() string                    { return "1.0.0" }
func (p *prefixParser) Description() string                { return "" }
func (p *prefixParser) ConfigSchema() []plugin.ConfigField { return nil }
func (p *prefixParser) SetConfig(plugin.Config)            {}
func (p *prefixParser) ParseURL(u string) []plugin.ParsedLink {
	return []plugin.ParsedLink{{Name: p.name, URL: p.prefix + u}}
}

type harness struct {
	registry  *plugin.Registry
	builtins  *plugin.Builtins
	tasks     *tasks.Manager
	downloads *download.Manager
	events    *events.EventLog
	handler   http.Handler
}

func newHarness(t *testing.T, providers ...plugin.Provider) *harness {
	t.Helper()
	ctx := context.Background()
	db := setupTestDB(t)
	logger := testLogger()

	eventLog := events.NewEventLog(db)
	bus := events.NewBus(eventLog, logger)
	t.Cleanup(func() { _ = bus.Close() })

	builtins := plugin.NewBuiltins()
	registry := plugin.NewRegistry(configstore.New(db), builtins, logger)
	registry.SetPublisher(bus)
	for _, p := range providers {
		require.NoError(t, registry.Register(ctx, p))
	}

	taskManager := tasks.NewManager(tasks.Options{}, logger)
	downloadManager := download.NewManager(registry, download.NewStore(db), logger)
	downloadManager.SetPublisher(bus)

	srv, err := New(ServerDeps{
		Registry:  registry,
		Search:    search.NewPool(registry, search.Options{}, logger),
		Tasks:     taskManager,
		Downloads: downloadManager,
		EventLog:  eventLog,
	}, "test", logger)
	require.NoError(t, err)

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	return &harness{
		registry:  registry,
		builtins:  builtins,
		tasks:     taskManager,
		downloads: downloadManager,
		events:    eventLog,
		handler:   mux,
	}
}

// do sends a request; body may be nil, a string or any JSON-encodable value.
func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
	resp := decode[errorResponse](t, w)
	require.Equal(t, code, resp.Code)
	require.NotEmpty(t, resp.Error)
}

var errUpstream = errors.New("upstream exploded")
