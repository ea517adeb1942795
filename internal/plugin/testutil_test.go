package plugin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory ConfigStore.
type memStore struct {
	mu      sync.Mutex
	configs map[string]Config
	setErr  error
}

func newMemStore() *memStore {
	return &memStore{configs: make(map[string]Config)}
}

func (s *memStore) Get(_ context.Context, t Type, name string) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configs[Key(t, name)].Clone(), nil
}

func (s *memStore) Set(_ context.Context, t Type, name string, cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.configs[Key(t, name)] = cfg.Clone()
	return nil
}

func (s *memStore) IsEnabled(ctx context.Context, t Type, name string) (bool, error) {
	cfg, _ := s.Get(ctx, t, name)
	return cfg.Enabled(), nil
}

func (s *memStore) SetEnabled(_ context.Context, t Type, name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.configs[Key(t, name)].Clone()
	cfg[EnabledKey] = enabled
	s.configs[Key(t, name)] = cfg
	return nil
}

func (s *memStore) Delete(_ context.Context, t Type, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configs, Key(t, name))
	return nil
}

// base implements Provider for the fakes below.
type base struct {
	name    string
	version string
	schema  []ConfigField

	mu     sync.Mutex
	config Config
	closed bool
}

func (b *base) Name() string                { return b.name }
func (b *base) Version() string             { return b.version }
func (b *base) Description() string         { return b.name + " provider" }
func (b *base) ConfigSchema() []ConfigField { return b.schema }

func (b *base) SetConfig(cfg Config) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.config = cfg
}

func (b *base) Config() Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.config
}

func (b *base) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

type fakeSearcher struct {
	base
	results []SearchResult
	err     error
}

func newFakeSearcher(name string) *fakeSearcher {
	return &fakeSearcher{base: base{name: name, version: "1.0.0"}}
}

func (f *fakeSearcher) Search(context.Context, string) ([]SearchResult, error) {
	return f.results, f.err
}

func (f *fakeSearcher) VideoInfo(_ context.Context, url string) (*SearchResult, error) {
	return &SearchResult{URL: url, Platform: f.name}, nil
}

type fakeDownloader struct {
	base
	protocols []string
}

func newFakeDownloader(name string, protocols ...string) *fakeDownloader {
	return &fakeDownloader{base: base{name: name, version: "1.0.0"}, protocols: protocols}
}

func (f *fakeDownloader) SupportedProtocols() []string { return f.protocols }

func (f *fakeDownloader) Download(_ context.Context, task *DownloadTask) error {
	task.Status = DownloadDownloading
	task.SetClientID(f.name + "-1")
	return nil
}

func (f *fakeDownloader) Progress(context.Context, string) (*Progress, error) {
	return &Progress{Progress: 50, Status: string(DownloadDownloading)}, nil
}

func (f *fakeDownloader) Cancel(context.Context, string) error { return nil }

func (f *fakeDownloader) Downloads(context.Context) ([]DownloadRecord, error) { return nil, nil }

func (f *fakeDownloader) WebUIURL() string { return "http://" + f.name }

type fakeParser struct {
	base
	parse func(url string) []ParsedLink
}

func newFakeParser(name string, parse func(url string) []ParsedLink) *fakeParser {
	return &fakeParser{base: base{name: name, version: "1.0.0"}, parse: parse}
}

func (f *fakeParser) ParseURL(url string) []ParsedLink { return f.parse(url) }

// hybrid satisfies both Searcher and Parser.
type hybrid struct {
	fakeSearcher
}

func (h *hybrid) ParseURL(string) []ParsedLink { return nil }

// bare implements only the shared Provider methods.
type bare struct {
	base
}

// mapLoader loads providers from factories and fails for names listed in broken.
type mapLoader struct {
	factories map[Type]map[string]Factory
	broken    map[string]bool
	loads     map[string]int
}

func newMapLoader() *mapLoader {
	return &mapLoader{
		factories: make(map[Type]map[string]Factory),
		broken:    make(map[string]bool),
		loads:     make(map[string]int),
	}
}

func (l *mapLoader) add(t Type, name string, f Factory) {
	if l.factories[t] == nil {
		l.factories[t] = make(map[string]Factory)
	}
	l.factories[t][name] = f
}

func (l *mapLoader) Load(_ context.Context, t Type, name string) (Provider, error) {
	l.loads[Key(t, name)]++
	if l.broken[name] {
		return nil, errors.New("syntax error")
	}
	f, ok := l.factories[t][name]
	if !ok {
		return nil, ErrNotFound
	}
	return f(), nil
}

func (l *mapLoader) Candidates(_ context.Context, t Type) ([]string, error) {
	var names []string
	for name := range l.factories[t] {
		names = append(names, name)
	}
	for name := range l.broken {
		if _, ok := l.factories[t][name]; !ok && t == TypeSearch {
			names = append(names, name)
		}
	}
	return names, nil
}
