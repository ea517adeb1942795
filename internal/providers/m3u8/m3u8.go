// Package m3u8 is a parser provider that turns an m3u8 play URL into one
// resolved link per configured resolver endpoint.
package m3u8

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/vmunix/mediahub/internal/plugin"
)

// Name is the provider name.
const Name = "m3u8"

// KeyParsers is the config key holding the resolver list.
const KeyParsers = "parsers_list"

// Parser prefixes each enabled resolver's parser_url to the play URL.
type Parser struct {
	mu  sync.RWMutex
	cfg plugin.Config
	log *slog.Logger
}

// New returns an unconfigured parser.
func New(log *slog.Logger) *Parser {
	if log == nil {
		log = slog.Default()
	}
	return &Parser{cfg: plugin.Config{}, log: log.With("component", "m3u8")}
}

func (p *Parser) Name() string        { return Name }
func (p *Parser) Version() string     { return "1.0.0" }
func (p *Parser) Description() string { return "m3u8 link resolver with configurable resolver endpoints" }

func (p *Parser) ConfigSchema() []plugin.ConfigField {
	return []plugin.ConfigField{
		{
			Key:         KeyParsers,
			Label:       "Resolvers",
			Kind:        plugin.KindList,
			Required:    true,
			Description: "Resolver endpoints; the play URL is appended to parser_url",
			Default:     []any{},
			Fields: []plugin.ConfigField{
				{Key: "name", Label: "Name", Kind: plugin.KindText, Default: ""},
				{Key: "parser_url", Label: "Resolver URL", Kind: plugin.KindText, Default: ""},
				{Key: "enabled", Label: "Enabled", Kind: plugin.KindBoolean, Default: true},
			},
		},
	}
}

func (p *Parser) SetConfig(cfg plugin.Config) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
}

// ParseURL returns nil for anything that is not an m3u8 URL.
func (p *Parser) ParseURL(url string) []plugin.ParsedLink {
	if !strings.Contains(strings.ToLower(url), ".m3u8") {
		return nil
	}
	p.mu.RLock()
	resolvers := p.cfg.List(KeyParsers)
	p.mu.RUnlock()

	var links []plugin.ParsedLink
	for _, r := range resolvers {
		if _, set := r["enabled"]; set && !r.Bool("enabled") {
			continue
		}
		prefix := r.String("parser_url")
		if prefix == "" {
			continue
		}
		name := r.String("name")
		if name == "" {
			name = "unnamed"
		}
		links = append(links, plugin.ParsedLink{Name: name, URL: prefix + url})
	}
	p.log.Debug("m3u8 resolved", "resolvers", len(links))
	return links
}
