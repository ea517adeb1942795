package download

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/mediahub/internal/configstore"
	"github.com/vmunix/mediahub/internal/migrations"
	"github.com/vmunix/mediahub/internal/plugin"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Apply(context.Background(), db))
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDownloader accepts every URL unless reject is set and reports progress
// from the progress map.
type fakeDownloader struct {
	name      string
	protocols []string
	reject    error
	listErr   error
	records   []plugin.DownloadRecord
	webUI     string
	panicMsg  string // every provider call panics with it when set

	mu        sync.Mutex
	config    plugin.Config
	progress  map[string]*plugin.Progress
	cancelled []string
	seq       int
}

func newFakeDownloader(name string, protocols ...string) *fakeDownloader {
	return &fakeDownloader{name: name, protocols: protocols, progress: make(map[string]*plugin.Progress)}
}

func (f *fakeDownloader) Name() string        { return f.name }
func (f *fakeDownloader) Version() string     { return "1.0.0" }
func (f *fakeDownloader) Description() string { return "" }
func (f *fakeDownloader) ConfigSchema() []plugin.ConfigField {
	return []plugin.ConfigField{{Key: "download_path", Kind: plugin.KindText}}
}

func (f *fakeDownloader) SetConfig(cfg plugin.Config) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.config = cfg
}

func (f *fakeDownloader) SupportedProtocols() []string { return f.protocols }
func (f *fakeDownloader) WebUIURL() string             { return f.webUI }

func (f *fakeDownloader) maybePanic() {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
}

func (f *fakeDownloader) Download(_ context.Context, task *plugin.DownloadTask) error {
	f.maybePanic()
	if f.reject != nil {
		task.Status = plugin.DownloadFailed
		return f.reject
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := fmt.Sprintf("%s-%d", f.name, f.seq)
	task.Status = plugin.DownloadDownloading
	task.SetClientID(id)
	f.progress[id] = &plugin.Progress{Status: "downloading"}
	return nil
}

func (f *fakeDownloader) setProgress(id string, pct float64, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress[id] = &plugin.Progress{Progress: pct, Status: status}
}

func (f *fakeDownloader) Progress(_ context.Context, id string) (*plugin.Progress, error) {
	f.maybePanic()
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.progress[id]
	if !ok {
		return nil, errors.New("unknown id")
	}
	c := *p
	return &c, nil
}

func (f *fakeDownloader) Cancel(_ context.Context, id string) error {
	f.maybePanic()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeDownloader) Downloads(context.Context) ([]plugin.DownloadRecord, error) {
	f.maybePanic()
	return f.records, f.listErr
}

type fixture struct {
	registry *plugin.Registry
	configs  *configstore.Store
	store    *Store
	manager  *Manager
}

func newFixture(t *testing.T, downloaders ...*fakeDownloader) *fixture {
	t.Helper()
	db := setupTestDB(t)
	configs := configstore.New(db)
	reg := plugin.NewRegistry(configs, nil, testLogger())
	for _, d := range downloaders {
		require.NoError(t, reg.Register(context.Background(), d))
	}
	store := NewStore(db)
	return &fixture{
		registry: reg,
		configs:  configs,
		store:    store,
		manager:  NewManager(reg, store, testLogger()),
	}
}
