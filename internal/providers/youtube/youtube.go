// Package youtube is a search provider backed by the YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vmunix/mediahub/internal/plugin"
	"github.com/vmunix/mediahub/internal/providers/httpx"
)

// Name is the provider name.
const Name = "youtube"

// DefaultAPIBase is the Data API v3 root.
const DefaultAPIBase = "https://www.googleapis.com/youtube/v3"

// Config keys.
const (
	KeyAPIKey     = "api_key"
	KeyMaxResults = "max_results"
	KeyUseProxy   = "use_proxy"
	KeyProxyURL   = "proxy_url"
)

var (
	// ErrNoAPIKey is returned when no api_key is configured.
	ErrNoAPIKey = errors.New("youtube api_key not configured")

	// ErrVideoNotFound is returned when a video id does not resolve.
	ErrVideoNotFound = errors.New("youtube video not found")
)

// Searcher searches YouTube videos.
type Searcher struct {
	apiBase string
	mu      sync.RWMutex
	cfg     plugin.Config
	log     *slog.Logger
}

// New returns an unconfigured searcher. apiBase may be empty for the public API.
func New(apiBase string, log *slog.Logger) *Searcher {
	if log == nil {
		log = slog.Default()
	}
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &Searcher{
		apiBase: strings.TrimSuffix(apiBase, "/"),
		cfg:     plugin.Config{},
		log:     log.With("component", "youtube"),
	}
}

func (s *Searcher) Name() string        { return Name }
func (s *Searcher) Version() string     { return "1.0.0" }
func (s *Searcher) Description() string { return "YouTube video search" }

func (s *Searcher) ConfigSchema() []plugin.ConfigField {
	return []plugin.ConfigField{
		{Key: KeyAPIKey, Label: "API key", Kind: plugin.KindPassword, Required: true, Description: "YouTube Data API v3 key"},
		{Key: KeyMaxResults, Label: "Max results", Kind: plugin.KindNumber, Default: 10},
		{Key: KeyUseProxy, Label: "Use proxy", Kind: plugin.KindBoolean, Default: false},
		{Key: KeyProxyURL, Label: "Proxy URL", Kind: plugin.KindText, Default: "", Description: "e.g. http://127.0.0.1:7890"},
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

type thumbnail struct {
	URL string `json:"url"`
}

type snippet struct {
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	ChannelTitle string               `json:"channelTitle"`
	PublishedAt  string               `json:"publishedAt"`
	Thumbnails   map[string]thumbnail `json:"thumbnails"`
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet snippet `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID             string  `json:"id"`
		Snippet        snippet `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// Search queries the search endpoint for videos matching keyword.
func (s *Searcher) Search(ctx context.Context, keyword string) ([]plugin.SearchResult, error) {
	cfg := s.config()
	key := cfg.String(KeyAPIKey)
	if key == "" {
		return nil, ErrNoAPIKey
	}
	maxResults := cfg.Int(KeyMaxResults)
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{
		"part":       {"snippet"},
		"q":          {keyword},
		"maxResults": {strconv.Itoa(maxResults)},
		"key":        {key},
		"type":       {"video"},
	}
	var resp searchResponse
	if err := s.get(ctx, cfg, "/search", params, &resp); err != nil {
		return nil, err
	}

	results := make([]plugin.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		results = append(results, toResult(item.ID.VideoID, item.Snippet, ""))
	}
	return results, nil
}

// VideoInfo looks up a single video by its watch or short URL.
func (s *Searcher) VideoInfo(ctx context.Context, videoURL string) (*plugin.SearchResult, error) {
	cfg := s.config()
	key := cfg.String(KeyAPIKey)
	if key == "" {
		return nil, ErrNoAPIKey
	}
	id := VideoID(videoURL)
	if id == "" {
		return nil, fmt.Errorf("%w: no video id in %q", ErrVideoNotFound, videoURL)
	}

	params := url.Values{
		"part": {"snippet,contentDetails"},
		"id":   {id},
		"key":  {key},
	}
	var resp videosResponse
	if err := s.get(ctx, cfg, "/videos", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, id)
	}
	item := resp.Items[0]
	r := toResult(item.ID, item.Snippet, item.ContentDetails.Duration)
	return &r, nil
}

func (s *Searcher) get(ctx context.Context, cfg plugin.Config, path string, params url.Values, out any) error {
	proxy := ""
	if cfg.Bool(KeyUseProxy) {
		proxy = cfg.String(KeyProxyURL)
	}
	client, err := httpx.NewClient(httpx.DefaultTimeout, proxy)
	if err != nil {
		return err
	}
	start := time.Now()
	if err := httpx.GetJSON(ctx, client, s.apiBase+path+"?"+params.Encode(), out); err != nil {
		s.log.Debug("api request failed", "path", path, "error", err)
		return fmt.Errorf("youtube %s: %w", path, err)
	}
	s.log.Debug("api request complete", "path", path, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func toResult(id string, sn snippet, duration string) plugin.SearchResult {
	thumb := ""
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := sn.Thumbnails[size]; ok && t.URL != "" {
			thumb = t.URL
			break
		}
	}
	return plugin.SearchResult{
		Title:       sn.Title,
		URL:         "https://www.youtube.com/watch?v=" + id,
		Thumbnail:   thumb,
		Duration:    duration,
		Platform:    Name,
		Description: sn.Description,
		Metadata: map[string]any{
			"video_id":     id,
			"channel":      sn.ChannelTitle,
			"published_at": sn.PublishedAt,
		},
	}
}

// VideoID extracts the video id from watch, short, embed and youtu.be URLs.
func VideoID(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtu.be":
		return strings.Trim(u.Path, "/")
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				id, _, _ := strings.Cut(rest, "/")
				return id
			}
		}
	}
	return ""
}
