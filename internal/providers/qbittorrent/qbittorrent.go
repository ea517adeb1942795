// Package qbittorrent is a download provider for magnet links and torrent
// files, speaking the qBittorrent WebUI API v2.
package qbittorrent

import (
	"context"
	"encoding/base32"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/vmunix/mediahub/internal/plugin"
	"github.com/vmunix/mediahub/internal/providers/httpx"
)

// Name is the provider name.
const Name = "qbittorrent"

// Config keys.
const (
	KeyHost         = "host"
	KeyUsername     = "username"
	KeyPassword     = "password"
	KeyDownloadPath = "download_path"
	KeyCategory     = "category"
)

const (
	defaultHost = "http://localhost:8080"
	// tagPrefix marks client ids that name a tag rather than an info hash.
	tagPrefix   = "tag:"
	// infiniteETA is what qBittorrent reports when no ETA is known.
	infiniteETA = 8640000
)

var (
	// ErrLoginFailed is returned when the WebUI rejects the credentials.
	ErrLoginFailed = errors.New("qbittorrent login failed")

	// ErrRejected is returned when qBittorrent refuses a torrent.
	ErrRejected = errors.New("qbittorrent rejected torrent")

	// ErrTorrentNotFound is returned when no torrent matches a client id.
	ErrTorrentNotFound = errors.New("torrent not found")
)

// Downloader manages torrents on one qBittorrent instance. The WebUI session
// cookie is kept in a jar and renewed on 403.
type Downloader struct {
	httpClient *http.Client
	mu         sync.RWMutex
	cfg        plugin.Config
	loginMu    sync.Mutex
	loggedIn   bool
	log        *slog.Logger
}

// New returns an unconfigured downloader.
func New(log *slog.Logger) *Downloader {
	if log == nil {
		log = slog.Default()
	}
	jar, _ := cookiejar.New(nil)
	return &Downloader{
		httpClient: &http.Client{Timeout: httpx.DefaultTimeout, Jar: jar},
		cfg:        plugin.Config{},
		log:        log.With("component", "qbittorrent"),
	}
}

func (d *Downloader) Name() string        { return Name }
func (d *Downloader) Version() string     { return "1.0.0" }
func (d *Downloader) Description() string { return "qBittorrent downloader for magnet links and torrents" }

func (d *Downloader) ConfigSchema() []plugin.ConfigField {
	return []plugin.ConfigField{
		{Key: KeyHost, Label: "qBittorrent URL", Kind: plugin.KindText, Default: defaultHost, Required: true},
		{Key: KeyUsername, Label: "Username", Kind: plugin.KindText, Default: "admin", Required: true},
		{Key: KeyPassword, Label: "Password", Kind: plugin.KindPassword, Required: true},
		{Key: KeyDownloadPath, Label: "Download path", Kind: plugin.KindText, Default: "/downloads/torrents"},
		{Key: KeyCategory, Label: "Category", Kind: plugin.KindText, Default: ""},
	}
}

// SetConfig replaces the config and drops the current session.
func (d *Downloader) SetConfig(cfg plugin.Config) {
	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()

	d.loginMu.Lock()
	d.loggedIn = false
	d.loginMu.Unlock()
}

func (d *Downloader) config() plugin.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

func (d *Downloader) host() string {
	h := d.config().String(KeyHost)
	if h == "" {
		h = defaultHost
	}
	return strings.TrimRight(h, "/")
}

func (d *Downloader) SupportedProtocols() []string {
	return []string{plugin.ProtoMagnet, plugin.ProtoTorrent}
}

func (d *Downloader) WebUIURL() string { return d.host() }

func (d *Downloader) login(ctx context.Context) error {
	d.loginMu.Lock()
	defer d.loginMu.Unlock()
	if d.loggedIn {
		return nil
	}
	cfg := d.config()
	form := url.Values{
		"username": {cfg.String(KeyUsername)},
		"password": {cfg.String(KeyPassword)},
	}
	body, err := d.postForm(ctx, "/api/v2/auth/login", form)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if strings.TrimSpace(string(body)) != "Ok." {
		return ErrLoginFailed
	}
	d.loggedIn = true
	d.log.Debug("logged in")
	return nil
}

func (d *Downloader) postForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.host()+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", d.host())
	return httpx.Do(d.httpClient, req)
}

func (d *Downloader) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	target := d.host() + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Referer", d.host())
	return httpx.Do(d.httpClient, req)
}

// call logs in if needed and runs fn, retrying once with a fresh session on 403.
func (d *Downloader) call(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	if err := d.login(ctx); err != nil {
		return nil, err
	}
	body, err := fn()
	var se *httpx.StatusError
	if errors.As(err, &se) && se.Code == http.StatusForbidden {
		d.loginMu.Lock()
		d.loggedIn = false
		d.loginMu.Unlock()
		if err := d.login(ctx); err != nil {
			return nil, err
		}
		return fn()
	}
	return body, err
}

// Download adds task.URL. The info hash from a magnet link becomes the
// client id; torrent files are tagged with the task id and looked up by tag.
func (d *Downloader) Download(ctx context.Context, task *plugin.DownloadTask) error {
	cfg := d.config()
	savePath := task.SavePath
	if savePath == "" {
		savePath = cfg.String(KeyDownloadPath)
	}
	tag := "mediahub-" + task.ID
	form := url.Values{
		"urls":     {task.URL},
		"savepath": {savePath},
		"category": {cfg.String(KeyCategory)},
		"tags":     {tag},
	}

	body, err := d.call(ctx, func() ([]byte, error) {
		return d.postForm(ctx, "/api/v2/torrents/add", form)
	})
	if err != nil {
		task.Status = plugin.DownloadFailed
		return fmt.Errorf("qbittorrent add: %w", err)
	}
	if strings.TrimSpace(string(body)) == "Fails." {
		task.Status = plugin.DownloadFailed
		return ErrRejected
	}

	clientID := InfoHash(task.URL)
	if clientID == "" {
		clientID = tagPrefix + tag
		if t, err := d.lookup(ctx, clientID); err == nil {
			clientID = t.Hash
		}
	}
	task.Status = plugin.DownloadDownloading
	task.SetClientID(clientID)
	d.log.Info("torrent added", "task_id", task.ID, "client_id", clientID)
	return nil
}

type torrent struct {
	Hash      string  `json:"hash"`
	Name      string  `json:"name"`
	State     string  `json:"state"`
	Progress  float64 `json:"progress"`
	Size      int64   `json:"size"`
	DLSpeed   int64   `json:"dlspeed"`
	ETA       int64   `json:"eta"`
	MagnetURI string  `json:"magnet_uri"`
	SavePath  string  `json:"save_path"`
	AddedOn   int64   `json:"added_on"`
}

func (d *Downloader) info(ctx context.Context, params url.Values) ([]torrent, error) {
	body, err := d.call(ctx, func() ([]byte, error) {
		return d.get(ctx, "/api/v2/torrents/info", params)
	})
	if err != nil {
		return nil, fmt.Errorf("qbittorrent info: %w", err)
	}
	var torrents []torrent
	if err := json.Unmarshal(body, &torrents); err != nil {
		return nil, fmt.Errorf("decode torrents: %w", err)
	}
	return torrents, nil
}

func (d *Downloader) lookup(ctx context.Context, clientID string) (*torrent, error) {
	params := url.Values{"hashes": {clientID}}
	if tag, ok := strings.CutPrefix(clientID, tagPrefix); ok {
		params = url.Values{"tag": {tag}}
	}
	torrents, err := d.info(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(torrents) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTorrentNotFound, clientID)
	}
	return &torrents[0], nil
}

// Progress reports the torrent's completion as a percentage.
func (d *Downloader) Progress(ctx context.Context, clientID string) (*plugin.Progress, error) {
	t, err := d.lookup(ctx, clientID)
	if errors.Is(err, ErrTorrentNotFound) {
		return &plugin.Progress{Status: "unknown", Error: err.Error()}, nil
	}
	if err != nil {
		return nil, err
	}
	p := &plugin.Progress{Progress: t.Progress * 100, Status: MapState(t.State)}
	if p.Status == string(plugin.DownloadFailed) {
		p.Error = t.State
	}
	return p, nil
}

// Cancel deletes the torrent together with its files.
func (d *Downloader) Cancel(ctx context.Context, clientID string) error {
	hash := clientID
	if strings.HasPrefix(clientID, tagPrefix) {
		t, err := d.lookup(ctx, clientID)
		if err != nil {
			return err
		}
		hash = t.Hash
	}
	form := url.Values{"hashes": {hash}, "deleteFiles": {"true"}}
	if _, err := d.call(ctx, func() ([]byte, error) {
		return d.postForm(ctx, "/api/v2/torrents/delete", form)
	}); err != nil {
		return fmt.Errorf("qbittorrent delete: %w", err)
	}
	d.log.Info("torrent deleted", "hash", hash)
	return nil
}

// Downloads lists every torrent on the instance.
func (d *Downloader) Downloads(ctx context.Context) ([]plugin.DownloadRecord, error) {
	torrents, err := d.info(ctx, nil)
	if err != nil {
		return nil, err
	}
	records := make([]plugin.DownloadRecord, 0, len(torrents))
	for _, t := range torrents {
		eta := t.ETA
		if eta < 0 || eta >= infiniteETA {
			eta = 0
		}
		r := plugin.DownloadRecord{
			ID:       t.Hash,
			Platform: Name,
			Title:    t.Name,
			URL:      t.MagnetURI,
			Status:   MapState(t.State),
			Progress: t.Progress * 100,
			Size:     t.Size,
			Speed:    t.DLSpeed,
			ETA:      eta,
			SavePath: t.SavePath,
		}
		if t.AddedOn > 0 {
			r.CreatedAt = time.Unix(t.AddedOn, 0).UTC()
		}
		records = append(records, r)
	}
	return records, nil
}

// MapState maps a qBittorrent torrent state onto the shared status words.
// Seeding states count as completed.
func MapState(state string) string {
	switch state {
	case "downloading", "stalledDL", "checkingDL", "forcedDL", "metaDL", "forcedMetaDL", "moving", "checkingResumeData":
		return string(plugin.DownloadDownloading)
	case "uploading", "stalledUP", "checkingUP", "forcedUP", "queuedUP", "pausedUP", "stoppedUP":
		return string(plugin.DownloadCompleted)
	case "queuedDL", "allocating":
		return string(plugin.DownloadPending)
	case "pausedDL", "stoppedDL":
		return "paused"
	case "error", "missingFiles":
		return string(plugin.DownloadFailed)
	default:
		return string(plugin.DownloadDownloading)
	}
}

// InfoHash returns the lowercase hex info hash of a magnet link, or "" for
// anything else.
func InfoHash(locator string) string {
	u, err := url.Parse(locator)
	if err != nil || !strings.EqualFold(u.Scheme, "magnet") {
		return ""
	}
	for _, xt := range u.Query()["xt"] {
		raw, ok := strings.CutPrefix(strings.ToLower(xt), "urn:btih:")
		if !ok {
			continue
		}
		switch len(raw) {
		case 40:
			if _, err := hex.DecodeString(raw); err == nil {
				return raw
			}
		case 32:
			b, err := base32.StdEncoding.DecodeString(strings.ToUpper(raw))
			if err == nil {
				return hex.EncodeToString(b)
			}
		}
	}
	return ""
}
