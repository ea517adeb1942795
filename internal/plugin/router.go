package plugin

import (
	"context"
	"slices"
	"strings"
)

// Protocol tokens advertised by download providers.
const (
	ProtoHTTP    = "http"
	ProtoHTTPS   = "https"
	ProtoM3U8    = "m3u8"
	ProtoMagnet  = "magnet"
	ProtoTorrent = "torrent"
)

// SelectDownloader picks the first enabled download provider, in registration
// order, able to handle locator:
//
//  1. magnet links and .torrent files go to a magnet or torrent provider
//  2. anything containing .m3u8 goes to an m3u8 provider
//  3. everything else goes to an http or https provider
//
// A nil Downloader with a nil error means no provider is suitable.
func (r *Registry) SelectDownloader(ctx context.Context, locator string) (Downloader, error) {
	providers, err := r.EnabledDownloaders(ctx)
	if err != nil {
		return nil, err
	}
	want := protocolsFor(locator)
	for _, d := range providers {
		protos := d.SupportedProtocols()
		for _, p := range want {
			if slices.Contains(protos, p) {
				r.log.Debug("download provider selected", "plugin", d.Name(), "protocol", p)
				return d, nil
			}
		}
	}
	r.log.Debug("no suitable download provider", "locator", locator)
	return nil, nil
}

func protocolsFor(locator string) []string {
	lower := strings.ToLower(locator)
	switch {
	case strings.HasPrefix(lower, "magnet:") || strings.HasSuffix(lower, ".torrent"):
		return []string{ProtoMagnet, ProtoTorrent}
	case strings.Contains(lower, ".m3u8"):
		return []string{ProtoM3U8}
	default:
		return []string{ProtoHTTP, ProtoHTTPS}
	}
}
