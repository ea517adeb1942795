// Package metube is a download provider that hands URLs to a MeTube
// instance (yt-dlp web frontend).
package metube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/vmunix/mediahub/internal/plugin"
	"github.com/vmunix/mediahub/internal/providers/httpx"
)

// Name is the provider name.
const Name = "metube"

// Config keys.
const (
	KeyURL          = "metube_url"
	KeyQuality      = "default_quality"
	KeyDownloadPath = "download_path"
)

const (
	defaultURL  = "http://localhost:8081"
	defaultPath = "/downloads"
)

var (
	// ErrRejected is returned when MeTube refuses a URL.
	ErrRejected = errors.New("metube rejected download")

	// ErrDownloadNotFound is returned when an id is in neither queue nor history.
	ErrDownloadNotFound = errors.New("download not found in metube")
)

// Downloader talks to the MeTube HTTP API.
type Downloader struct {
	httpClient *http.Client
	mu         sync.RWMutex
	cfg        plugin.Config
	log        *slog.Logger
	now        func() time.Time
}

// New returns an unconfigured downloader.
func New(log *slog.Logger) *Downloader {
	if log == nil {
		log = slog.Default()
	}
	return &Downloader{
		httpClient: &http.Client{Timeout: httpx.DefaultTimeout},
		cfg:        plugin.Config{},
		log:        log.With("component", "metube"),
		now:        time.Now,
	}
}

func (d *Downloader) Name() string        { return Name }
func (d *Downloader) Version() string     { return "1.0.0" }
func (d *Downloader) Description() string { return "MeTube downloader for YouTube, m3u8 and direct links" }

func (d *Downloader) ConfigSchema() []plugin.ConfigField {
	return []plugin.ConfigField{
		{Key: KeyURL, Label: "MeTube URL", Kind: plugin.KindText, Default: defaultURL, Required: true},
		{Key: KeyQuality, Label: "Default quality", Kind: plugin.KindSelect, Default: "best",
			Options: []string{"best", "1080p", "720p", "480p"}},
		{Key: KeyDownloadPath, Label: "Download path", Kind: plugin.KindText, Default: defaultPath, Required: true},
	}
}

func (d *Downloader) SetConfig(cfg plugin.Config) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg = cfg
}

func (d *Downloader) baseURL() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u := d.cfg.String(KeyURL)
	if u == "" {
		u = defaultURL
	}
	return strings.TrimRight(u, "/")
}

func (d *Downloader) quality() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if q := d.cfg.String(KeyQuality); q != "" {
		return q
	}
	return "best"
}

func (d *Downloader) SupportedProtocols() []string {
	return []string{plugin.ProtoHTTP, plugin.ProtoHTTPS, plugin.ProtoM3U8}
}

func (d *Downloader) WebUIURL() string { return d.baseURL() }

type addRequest struct {
	URL              string `json:"url"`
	Quality          string `json:"quality"`
	Format           string `json:"format"`
	Folder           string `json:"folder,omitempty"`
	CustomNamePrefix string `json:"custom_name_prefix,omitempty"`
}

type addResponse struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
	ID     string `json:"id"`
}

// Download submits task.URL. MeTube keys its queue by URL unless it returns
// an id, so the URL doubles as the client id.
func (d *Downloader) Download(ctx context.Context, task *plugin.DownloadTask) error {
	payload := addRequest{
		URL:              task.URL,
		Quality:          d.quality(),
		Format:           "any",
		CustomNamePrefix: d.namePrefix(task.Title),
	}
	if task.SavePath != "" && task.SavePath != defaultPath {
		payload.Folder = task.SavePath
	}

	base := d.baseURL()
	d.log.Info("submitting download", "task_id", task.ID, "url", task.URL)

	req, err := newJSONRequest(ctx, http.MethodPost, base+"/add", payload)
	if err != nil {
		task.Status = plugin.DownloadFailed
		return err
	}
	body, err := httpx.Do(d.httpClient, req)
	if err != nil {
		task.Status = plugin.DownloadFailed
		return fmt.Errorf("metube add: %w", err)
	}

	var resp addResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		lower := strings.ToLower(string(body))
		if strings.Contains(lower, "error") || strings.Contains(lower, "fail") {
			task.Status = plugin.DownloadFailed
			return fmt.Errorf("%w: %s", ErrRejected, strings.TrimSpace(string(body)))
		}
		d.log.Warn("non-json add response, assuming accepted", "task_id", task.ID)
	}
	if resp.Status == "error" {
		task.Status = plugin.DownloadFailed
		return fmt.Errorf("%w: %s", ErrRejected, resp.Msg)
	}

	id := resp.ID
	if id == "" {
		id = task.URL
	}
	task.Status = plugin.DownloadDownloading
	task.SetClientID(id)
	d.log.Info("download accepted", "task_id", task.ID, "client_id", id)
	return nil
}

func (d *Downloader) namePrefix(title string) string {
	safe := strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(" -_.", r) {
			return r
		}
		return -1
	}, title))
	stamp := d.now().Format("20060102_150405")
	if safe == "" {
		return stamp
	}
	return stamp + "_" + safe
}

type entry struct {
	ID      string   `json:"id"`
	URL     string   `json:"url"`
	Title   string   `json:"title"`
	Status  string   `json:"status"`
	Msg     string   `json:"msg"`
	Error   string   `json:"error"`
	Percent *float64 `json:"percent"`
	Speed   *float64 `json:"speed"`
	ETA     *float64 `json:"eta"`
	Folder  string   `json:"folder"`
}

func (e entry) matches(id string) bool {
	return e.ID == id || e.URL == id
}

type history struct {
	Queue   []entry `json:"queue"`
	Pending []entry `json:"pending"`
	Done    []entry `json:"done"`
}

func (d *Downloader) history(ctx context.Context) (*history, error) {
	var h history
	if err := httpx.GetJSON(ctx, d.httpClient, d.baseURL()+"/history", &h); err != nil {
		return nil, fmt.Errorf("metube history: %w", err)
	}
	return &h, nil
}

const (
	whereQueue = "queue"
	whereDone  = "done"
)

func (h *history) find(id string) (entry, string, bool) {
	for _, e := range slices.Concat(h.Pending, h.Queue) {
		if e.matches(id) {
			return e, whereQueue, true
		}
	}
	for _, e := range h.Done {
		if e.matches(id) {
			return e, whereDone, true
		}
	}
	return entry{}, "", false
}

// Progress looks clientID up in the queue, then in the finished list.
func (d *Downloader) Progress(ctx context.Context, clientID string) (*plugin.Progress, error) {
	h, err := d.history(ctx)
	if err != nil {
		return nil, err
	}
	e, where, ok := h.find(clientID)
	if !ok {
		return &plugin.Progress{Status: "unknown", Error: ErrDownloadNotFound.Error()}, nil
	}
	if where == whereDone {
		if mapStatus(e.Status) == string(plugin.DownloadFailed) {
			return &plugin.Progress{Status: string(plugin.DownloadFailed), Error: e.errorText()}, nil
		}
		return &plugin.Progress{Progress: 100, Status: string(plugin.DownloadCompleted)}, nil
	}
	return &plugin.Progress{Progress: deref(e.Percent), Status: mapStatus(e.Status)}, nil
}

func (e entry) errorText() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Msg
}

// Cancel deletes clientID from whichever list holds it.
func (d *Downloader) Cancel(ctx context.Context, clientID string) error {
	h, err := d.history(ctx)
	if err != nil {
		return err
	}
	e, where, ok := h.find(clientID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrDownloadNotFound, clientID)
	}
	id := e.ID
	if id == "" {
		id = e.URL
	}
	req, err := newJSONRequest(ctx, http.MethodPost, d.baseURL()+"/delete", map[string]any{
		"ids":   []string{id},
		"where": where,
	})
	if err != nil {
		return err
	}
	if _, err := httpx.Do(d.httpClient, req); err != nil {
		return fmt.Errorf("metube delete: %w", err)
	}
	d.log.Info("download deleted", "client_id", clientID, "where", where)
	return nil
}

// Downloads lists queued and finished entries, queue first.
func (d *Downloader) Downloads(ctx context.Context) ([]plugin.DownloadRecord, error) {
	h, err := d.history(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]plugin.DownloadRecord, 0, len(h.Pending)+len(h.Queue)+len(h.Done))
	for _, e := range slices.Concat(h.Pending, h.Queue) {
		records = append(records, e.record(mapStatus(e.Status), deref(e.Percent)))
	}
	for _, e := range h.Done {
		status := mapStatus(e.Status)
		progress := 100.0
		if status == string(plugin.DownloadFailed) {
			progress = deref(e.Percent)
		} else {
			status = string(plugin.DownloadCompleted)
		}
		records = append(records, e.record(status, progress))
	}
	return records, nil
}

func (e entry) record(status string, progress float64) plugin.DownloadRecord {
	id := e.ID
	if id == "" {
		id = e.URL
	}
	title := e.Title
	if title == "" {
		title = e.URL
	}
	return plugin.DownloadRecord{
		ID:       id,
		Platform: Name,
		Title:    title,
		URL:      e.URL,
		Status:   status,
		Progress: progress,
		Speed:    int64(deref(e.Speed)),
		ETA:      int64(deref(e.ETA)),
		SavePath: e.Folder,
	}
}

func mapStatus(s string) string {
	switch s {
	case "pending", "preparing":
		return string(plugin.DownloadPending)
	case "finished":
		return string(plugin.DownloadCompleted)
	case "error":
		return string(plugin.DownloadFailed)
	default:
		return string(plugin.DownloadDownloading)
	}
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func newJSONRequest(ctx context.Context, method, url string, payload any) (*http.Request, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
