package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectDownloader(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)
	require.NoError(t, r.Register(ctx, newFakeDownloader("hls", "m3u8")))
	require.NoError(t, r.Register(ctx, newFakeDownloader("web", "http", "https")))
	require.NoError(t, r.Register(ctx, newFakeDownloader("bt", "magnet", "torrent")))

	tests := []struct {
		locator string
		want    string
	}{
		{"magnet:?xt=urn:btih:abc", "bt"},
		{"https://example.com/file.torrent", "bt"},
		{"https://cdn.example.com/video/index.m3u8", "hls"},
		{"https://cdn.example.com/video/index.M3U8?token=1", "hls"},
		{"https://example.com/watch?v=1", "web"},
	}
	for _, tt := range tests {
		t.Run(tt.locator, func(t *testing.T) {
			d, err := r.SelectDownloader(ctx, tt.locator)
			require.NoError(t, err)
			require.NotNil(t, d)
			assert.Equal(t, tt.want, d.Name())
		})
	}
}

func TestSelectDownloader_RegistrationOrderBreaksTies(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)
	require.NoError(t, r.Register(ctx, newFakeDownloader("a", "m3u8")))
	require.NoError(t, r.Register(ctx, newFakeDownloader("b", "http", "m3u8")))

	for i := 0; i < 5; i++ {
		d, err := r.SelectDownloader(ctx, "https://x/y.m3u8")
		require.NoError(t, err)
		assert.Equal(t, "a", d.Name())
	}
}

func TestSelectDownloader_NoMatch(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)
	require.NoError(t, r.Register(ctx, newFakeDownloader("web", "http", "https")))

	d, err := r.SelectDownloader(ctx, "magnet:?xt=urn:btih:abc")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestSelectDownloader_SkipsDisabled(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)
	require.NoError(t, r.Register(ctx, newFakeDownloader("first", "http")))
	require.NoError(t, r.Register(ctx, newFakeDownloader("second", "https")))
	require.NoError(t, r.SetEnabled(ctx, TypeDownload, "first", false))

	d, err := r.SelectDownloader(ctx, "https://example.com/a.mp4")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "second", d.Name())
}
