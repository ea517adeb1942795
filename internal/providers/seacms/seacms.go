// Package seacms is a search provider for SeaCMS-compatible resource sites.
// Each configured site exposes an XML collection API; sites are queried
// concurrently and merged in configuration order.
package seacms

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/vmunix/mediahub/internal/plugin"
	"github.com/vmunix/mediahub/internal/providers/httpx"
)

// Name is the provider name.
const Name = "seacms"

// Config keys.
const (
	KeySites    = "resource_sites_list"
	KeyOnlyM3U8 = "only_m3u8"
	KeyUseProxy = "use_proxy"
	KeyProxyURL = "proxy_url"
	KeyTimeout  = "timeout"
)

const shortDescriptionLen = 100

// Searcher queries every enabled resource site.
type Searcher struct {
	mu  sync.RWMutex
	cfg plugin.Config
	log *slog.Logger
}

// New returns an unconfigured searcher.
func New(log *slog.Logger) *Searcher {
	if log == nil {
		log = slog.Default()
	}
	return &Searcher{cfg: plugin.Config{}, log: log.With("component", "seacms")}
}

func (s *Searcher) Name() string        { return Name }
func (s *Searcher) Version() string     { return "2.0.0" }
func (s *Searcher) Description() string { return "SeaCMS resource site search (multiple sites)" }

func (s *Searcher) ConfigSchema() []plugin.ConfigField {
	return []plugin.ConfigField{
		{
			Key:         KeySites,
			Label:       "Resource sites",
			Kind:        plugin.KindList,
			Required:    true,
			Default:     []any{},
			Description: "SeaCMS-compatible collection APIs",
			Fields: []plugin.ConfigField{
				{Key: "name", Label: "Site name", Kind: plugin.KindText, Default: ""},
				{Key: "api_url", Label: "API URL", Kind: plugin.KindText, Default: ""},
				{Key: "url_prefix", Label: "URL prefix to strip", Kind: plugin.KindText, Default: ""},
				{Key: "url_suffix", Label: "URL suffix to strip, e.g. $hym3u8", Kind: plugin.KindText, Default: ""},
				{Key: "enabled", Label: "Enabled", Kind: plugin.KindBoolean, Default: true},
			},
		},
		{Key: KeyOnlyM3U8, Label: "Only m3u8 sources", Kind: plugin.KindBoolean, Default: true},
		{Key: KeyUseProxy, Label: "Use proxy", Kind: plugin.KindBoolean, Default: false},
		{Key: KeyProxyURL, Label: "Proxy URL", Kind: plugin.KindText, Default: "", Description: "e.g. http://127.0.0.1:7890"},
		{Key: KeyTimeout, Label: "Request timeout (seconds)", Kind: plugin.KindNumber, Default: 30},
	}
}

func (s *Searcher) SetConfig(cfg plugin.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func (s *Searcher) config() plugin.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

type site struct {
	name   string
	apiURL string
	prefix string
	suffix string
}

func enabledSites(cfg plugin.Config) []site {
	var out []site
	for _, item := range cfg.List(KeySites) {
		if _, set := item["enabled"]; set && !item.Bool("enabled") {
			continue
		}
		s := site{
			name:   item.String("name"),
			apiURL: strings.TrimSpace(item.String("api_url")),
			prefix: strings.TrimSpace(item.String("url_prefix")),
			suffix: strings.TrimSpace(item.String("url_suffix")),
		}
		if s.apiURL == "" {
			continue
		}
		if s.name == "" {
			s.name = "unknown"
		}
		out = append(out, s)
	}
	return out
}

// Search queries all enabled sites concurrently. A failing site is logged
// and skipped; an error is returned only when every site failed.
func (s *Searcher) Search(ctx context.Context, keyword string) ([]plugin.SearchResult, error) {
	cfg := s.config()
	sites := enabledSites(cfg)
	if len(sites) == 0 {
		s.log.Warn("no resource sites configured or all disabled")
		return nil, nil
	}

	proxy := ""
	if cfg.Bool(KeyUseProxy) {
		proxy = cfg.String(KeyProxyURL)
	}
	client, err := httpx.NewClient(time.Duration(cfg.Int(KeyTimeout))*time.Second, proxy)
	if err != nil {
		return nil, err
	}
	onlyM3U8 := cfg.Bool(KeyOnlyM3U8)

	perSite := make([][]plugin.SearchResult, len(sites))
	errs := make([]error, len(sites))
	var wg sync.WaitGroup
	for i, st := range sites {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			results, err := s.searchSite(ctx, client, st, keyword, onlyM3U8)
			if err != nil {
				s.log.Warn("site search failed", "site", st.name, "error", err)
				errs[i] = fmt.Errorf("%s: %w", st.name, err)
				return
			}
			s.log.Debug("site search complete", "site", st.name, "results", len(results),
				"duration_ms", time.Since(start).Milliseconds())
			perSite[i] = results
		}()
	}
	wg.Wait()

	var all []plugin.SearchResult
	failed := 0
	for i := range sites {
		if errs[i] != nil {
			failed++
			continue
		}
		all = append(all, perSite[i]...)
	}
	if failed == len(sites) {
		return nil, errors.Join(errs...)
	}
	s.log.Info("search complete", "keyword", keyword, "sites", len(sites), "failed", failed, "results", len(all))
	return all, nil
}

func (s *Searcher) searchSite(ctx context.Context, client *http.Client, st site, keyword string, onlyM3U8 bool) ([]plugin.SearchResult, error) {
	u, err := url.Parse(st.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	q := u.Query()
	q.Set("ac", "detail")
	q.Set("wd", keyword)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	body, err := httpx.Do(client, req)
	if err != nil {
		return nil, err
	}

	var doc rss
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	return convert(doc.List.Videos, st, onlyM3U8), nil
}

// VideoInfo returns the play URL as a bare result; collection APIs expose
// details only by video id.
func (s *Searcher) VideoInfo(_ context.Context, playURL string) (*plugin.SearchResult, error) {
	return &plugin.SearchResult{Title: playURL, URL: playURL, Platform: Name}, nil
}

type rss struct {
	XMLName xml.Name `xml:"rss"`
	List    struct {
		Videos []video `xml:"video"`
	} `xml:"list"`
}

type video struct {
	ID          string `xml:"id"`
	Last        string `xml:"last"`
	Name        string `xml:"name"`
	Pic         string `xml:"pic"`
	Note        string `xml:"note"`
	Description string `xml:"des"`
	Sources     []struct {
		Flag string `xml:"flag,attr"`
		Data string `xml:",chardata"`
	} `xml:"dl>dd"`
}

func convert(videos []video, st site, onlyM3U8 bool) []plugin.SearchResult {
	var results []plugin.SearchResult
	for _, v := range videos {
		if len(v.Sources) == 0 {
			continue
		}
		var episodes []plugin.Episode
		m3u8Count := 0
		for _, src := range v.Sources {
			flag := src.Flag
			if flag == "" {
				flag = "unknown"
			}
			for _, ep := range parseEpisodes(src.Data, flag, st) {
				if onlyM3U8 && !ep.IsM3U8 {
					continue
				}
				if ep.IsM3U8 {
					m3u8Count++
				}
				episodes = append(episodes, ep)
			}
		}
		if onlyM3U8 && m3u8Count == 0 {
			continue
		}

		mainURL := ""
		if len(episodes) > 0 {
			mainURL = episodes[0].PlayURL
		}
		desc := strings.TrimSpace(v.Description)
		videoID := v.ID
		if videoID == "" {
			videoID = v.Last
		}
		results = append(results, plugin.SearchResult{
			Title:       strings.TrimSpace(v.Name),
			URL:         mainURL,
			Thumbnail:   strings.TrimSpace(v.Pic),
			Platform:    st.name,
			Description: shorten(desc, shortDescriptionLen),
			Episodes:    episodes,
			Metadata: map[string]any{
				"video_id":         videoID,
				"note":             strings.TrimSpace(v.Note),
				"full_description": desc,
				"episode_count":    len(episodes),
				"has_m3u8":         m3u8Count > 0,
				"m3u8_count":       m3u8Count,
			},
		})
	}
	return results
}

// parseEpisodes splits "name$url#name$url" play data. Entries without a
// separator are dropped.
func parseEpisodes(data, flag string, st site) []plugin.Episode {
	var out []plugin.Episode
	for _, entry := range strings.Split(strings.TrimSpace(data), "#") {
		name, raw, ok := strings.Cut(entry, "$")
		if !ok {
			continue
		}
		playURL := cleanURL(strings.TrimSpace(raw), st)
		if playURL == "" {
			continue
		}
		out = append(out, plugin.Episode{
			Name:    strings.TrimSpace(name),
			PlayURL: playURL,
			Flag:    flag,
			IsM3U8:  strings.Contains(strings.ToLower(playURL), ".m3u8"),
		})
	}
	return out
}

func cleanURL(u string, st site) string {
	if st.suffix != "" {
		u = strings.TrimSuffix(u, st.suffix)
	}
	if st.prefix != "" {
		u = strings.TrimPrefix(u, st.prefix)
	}
	return u
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
