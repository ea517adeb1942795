// Package providers wires the built-in providers into a plugin.Builtins table.
package providers

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/vmunix/mediahub/internal/plugin"
	"github.com/vmunix/mediahub/internal/providers/m3u8"
	"github.com/vmunix/mediahub/internal/providers/metube"
	"github.com/vmunix/mediahub/internal/providers/qbittorrent"
	"github.com/vmunix/mediahub/internal/providers/sabnzbd"
	"github.com/vmunix/mediahub/internal/providers/seacms"
	"github.com/vmunix/mediahub/internal/providers/youtube"
)

type builtin struct {
	typ     plugin.Type
	name    string
	factory func(log *slog.Logger) plugin.Provider
}

// builtins is in registration order; download router tie-breaks follow it.
var builtins = []builtin{
	{plugin.TypeParser, m3u8.Name, func(l *slog.Logger) plugin.Provider { return m3u8.New(l) }},
	{plugin.TypeSearch, seacms.Name, func(l *slog.Logger) plugin.Provider { return seacms.New(l) }},
	{plugin.TypeSearch, youtube.Name, func(l *slog.Logger) plugin.Provider { return youtube.New("", l) }},
	{plugin.TypeDownload, metube.Name, func(l *slog.Logger) plugin.Provider { return metube.New(l) }},
	{plugin.TypeDownload, qbittorrent.Name, func(l *slog.Logger) plugin.Provider { return qbittorrent.New(l) }},
	{plugin.TypeDownload, sabnzbd.Name, func(l *slog.Logger) plugin.Provider { return sabnzbd.New(l) }},
}

// Names lists every built-in provider name.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for _, b := range builtins {
		names = append(names, b.name)
	}
	return names
}

// Register adds the factories named in enabled to table. An empty enabled
// list registers every built-in.
func Register(table *plugin.Builtins, enabled []string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	known := Names()
	for _, name := range enabled {
		if !slices.Contains(known, name) {
			return fmt.Errorf("unknown builtin provider %q: %w", name, plugin.ErrNotFound)
		}
	}
	for _, b := range builtins {
		if len(enabled) > 0 && !slices.Contains(enabled, b.name) {
			continue
		}
		if err := table.Add(b.typ, b.name, func() plugin.Provider { return b.factory(log) }); err != nil {
			return err
		}
	}
	return nil
}
