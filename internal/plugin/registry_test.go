package plugin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/mediahub/internal/events"
)

func newTestRegistry(t *testing.T) (*Registry, *memStore) {
	t.Helper()
	store := newMemStore()
	r := NewRegistry(store, nil, testLogger())
	t.Cleanup(func() { _ = r.Close() })
	return r, store
}

func TestShapeOf(t *testing.T) {
	tests := []struct {
		name    string
		p       Provider
		want    Type
		wantErr error
	}{
		{"searcher", newFakeSearcher("s"), TypeSearch, nil},
		{"downloader", newFakeDownloader("d"), TypeDownload, nil},
		{"parser", newFakeParser("p", nil), TypeParser, nil},
		{"none", &bare{base: base{name: "b"}}, "", ErrNoProvider},
		{"two shapes", &hybrid{fakeSearcher: fakeSearcher{base: base{name: "h"}}}, "", ErrAmbiguousProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShapeOf(tt.p)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseType(t *testing.T) {
	got, err := ParseType(" Download ")
	require.NoError(t, err)
	assert.Equal(t, TypeDownload, got)

	_, err = ParseType("indexer")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestRegistry_RegisterLastWriteWins(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)

	first := newFakeSearcher("alpha")
	second := newFakeSearcher("alpha")
	second.version = "2.0.0"

	require.NoError(t, r.Register(ctx, first))
	require.NoError(t, r.Register(ctx, second))

	got, err := r.Searcher("alpha")
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Equal(t, []string{"alpha"}, r.Names(TypeSearch))
	assert.True(t, first.closed, "replaced instance should be released")
}

func TestRegistry_RegisterKeepsPositionOnOverwrite(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)

	require.NoError(t, r.Register(ctx, newFakeSearcher("a")))
	require.NoError(t, r.Register(ctx, newFakeSearcher("b")))
	require.NoError(t, r.Register(ctx, newFakeSearcher("a")))

	assert.Equal(t, []string{"a", "b"}, r.Names(TypeSearch))
}

func TestRegistry_RegisterAppliesStoredConfig(t *testing.T) {
	ctx := context.Background()
	r, store := newTestRegistry(t)
	require.NoError(t, store.Set(ctx, TypeSearch, "yt", Config{"max_results": "25"}))

	s := newFakeSearcher("yt")
	s.schema = []ConfigField{
		{Key: "max_results", Kind: KindNumber, Default: 10},
		{Key: "api_key", Kind: KindPassword, Default: ""},
	}
	require.NoError(t, r.Register(ctx, s))

	cfg := s.Config()
	assert.Equal(t, 25, cfg["max_results"])
	assert.Equal(t, "", cfg["api_key"])
}

func TestRegistry_RegisterAppliesDefaultsWithoutStoredConfig(t *testing.T) {
	r, _ := newTestRegistry(t)

	s := newFakeSearcher("yt")
	s.schema = []ConfigField{{Key: "max_results", Kind: KindNumber, Default: 10}}
	require.NoError(t, r.Register(context.Background(), s))

	assert.Equal(t, 10, s.Config()["max_results"])
}

func TestRegistry_RegisterAsTypeMismatch(t *testing.T) {
	r, _ := newTestRegistry(t)

	err := r.RegisterAs(context.Background(), TypeDownload, newFakeSearcher("s"))
	require.ErrorIs(t, err, ErrTypeMismatch)

	err = r.RegisterAs(context.Background(), Type("indexer"), newFakeSearcher("s"))
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestRegistry_Unregister(t *testing.T) {
	ctx := context.Background()
	r, store := newTestRegistry(t)
	require.NoError(t, store.Set(ctx, TypeParser, "m3u8", Config{"k": "v"}))
	require.NoError(t, r.Register(ctx, newFakeParser("m3u8", nil)))

	assert.True(t, r.Unregister(ctx, TypeParser, "m3u8"))
	assert.False(t, r.Unregister(ctx, TypeParser, "m3u8"))

	_, err := r.Parser("m3u8")
	require.ErrorIs(t, err, ErrNotFound)

	cfg, _ := store.Get(ctx, TypeParser, "m3u8")
	assert.Equal(t, "v", cfg.String("k"), "persisted config survives unregister")
}

func TestRegistry_LookupNotFound(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Searcher("missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.Downloader("missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.Get(Type("bogus"), "x")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestRegistry_ToggleKeepsProviderListed(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)
	require.NoError(t, r.Register(ctx, newFakeDownloader("metube", "http", "https", "m3u8")))
	require.NoError(t, r.Register(ctx, newFakeDownloader("qbittorrent", "magnet", "torrent")))

	require.NoError(t, r.SetEnabled(ctx, TypeDownload, "metube", false))

	enabled, err := r.Enabled(ctx, TypeDownload)
	require.NoError(t, err)
	assert.Equal(t, []string{"qbittorrent"}, enabled)

	infos, err := r.List(ctx, TypeDownload)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "metube", infos[0].Name)
	assert.False(t, infos[0].Enabled)
	assert.Equal(t, []string{"http", "https", "m3u8"}, infos[0].SupportedProtocols)
	assert.True(t, infos[1].Enabled)

	_, err = r.Downloader("metube")
	require.NoError(t, err, "disabled provider stays registered")
}

func TestRegistry_SetEnabledUnknownProvider(t *testing.T) {
	r, _ := newTestRegistry(t)

	err := r.SetEnabled(context.Background(), TypeSearch, "missing", false)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_SetConfigAppliesAndPersists(t *testing.T) {
	ctx := context.Background()
	r, store := newTestRegistry(t)
	s := newFakeSearcher("yt")
	s.schema = []ConfigField{
		{Key: "max_results", Kind: KindNumber, Default: 10},
		{Key: "use_proxy", Kind: KindBoolean, Default: false},
	}
	require.NoError(t, r.Register(ctx, s))

	require.NoError(t, r.SetConfig(ctx, TypeSearch, "yt", Config{"max_results": 3.0, "use_proxy": "true"}))

	assert.Equal(t, 3, s.Config()["max_results"])
	assert.Equal(t, true, s.Config()["use_proxy"])

	stored, _ := store.Get(ctx, TypeSearch, "yt")
	assert.Equal(t, 3, stored["max_results"])
}

func TestRegistry_SetConfigReflectedInList(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)
	require.NoError(t, r.Register(ctx, newFakeSearcher("yt")))

	require.NoError(t, r.SetConfig(ctx, TypeSearch, "yt", Config{EnabledKey: false}))

	infos, err := r.List(ctx, TypeSearch)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.False(t, infos[0].Enabled)
}

func TestRegistry_SetConfigKeepsStoredEnabledFlag(t *testing.T) {
	ctx := context.Background()
	r, store := newTestRegistry(t)
	require.NoError(t, r.Register(ctx, newFakeSearcher("yt")))
	require.NoError(t, r.SetEnabled(ctx, TypeSearch, "yt", false))

	require.NoError(t, r.SetConfig(ctx, TypeSearch, "yt", Config{"api_key": "k"}))

	enabled, _ := store.IsEnabled(ctx, TypeSearch, "yt")
	assert.False(t, enabled)
}

func TestRegistry_SetConfigStoreFailureLeavesProviderUntouched(t *testing.T) {
	ctx := context.Background()
	r, store := newTestRegistry(t)
	s := newFakeSearcher("yt")
	s.schema = []ConfigField{{Key: "max_results", Kind: KindNumber, Default: 10}}
	require.NoError(t, r.Register(ctx, s))

	store.setErr = assert.AnError
	err := r.SetConfig(ctx, TypeSearch, "yt", Config{"max_results": 50})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 10, s.Config()["max_results"])
}

func TestRegistry_SetConfigUnknownProvider(t *testing.T) {
	r, _ := newTestRegistry(t)

	err := r.SetConfig(context.Background(), TypeParser, "missing", Config{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_PublishesLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)
	bus := events.NewBus(nil, testLogger())
	defer bus.Close()
	r.SetPublisher(bus)
	ch := bus.SubscribeAll(10)

	require.NoError(t, r.Register(ctx, newFakeParser("m3u8", nil)))
	r.Unregister(ctx, TypeParser, "m3u8")

	var got []string
	timeout := time.After(time.Second)
	for len(got) < 2 {
		select {
		case e := <-ch:
			got = append(got, e.EventType())
			assert.Equal(t, "parser:m3u8", e.EntityID())
		case <-timeout:
			t.Fatal("timeout waiting for events")
		}
	}
	assert.Equal(t, []string{events.EventPluginRegistered, events.EventPluginUnregistered}, got)
}

func TestRegistry_ListAll(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)
	require.NoError(t, r.Register(ctx, newFakeSearcher("yt")))
	require.NoError(t, r.Register(ctx, newFakeParser("m3u8", nil)))

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all[TypeSearch], 1)
	assert.Empty(t, all[TypeDownload])
	assert.Len(t, all[TypeParser], 1)
}
