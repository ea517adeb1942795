// Package sabnzbd is a download provider for NZB URLs backed by SABnzbd.
// It advertises only the nzb protocol, so the router never picks it; callers
// name it explicitly.
package sabnzbd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vmunix/mediahub/internal/plugin"
	"github.com/vmunix/mediahub/internal/providers/httpx"
)

// Name is the provider name.
const Name = "sabnzbd"

// ProtoNZB is the protocol token this provider advertises.
const ProtoNZB = "nzb"

// Config keys.
const (
	KeyHost     = "host"
	KeyAPIKey   = "api_key"
	KeyCategory = "category"
)

var (
	// ErrInvalidAPIKey is returned when SABnzbd rejects the api key.
	ErrInvalidAPIKey = errors.New("sabnzbd: invalid api key")

	// ErrDownloadNotFound is returned when an nzo id is in neither queue nor history.
	ErrDownloadNotFound = errors.New("sabnzbd: download not found")
)

// Downloader interacts with SABnzbd.
type Downloader struct {
	httpClient *http.Client
	mu         sync.RWMutex
	cfg        plugin.Config
	log        *slog.Logger
}

// New returns an unconfigured downloader.
func New(log *slog.Logger) *Downloader {
	if log == nil {
		log = slog.Default()
	}
	return &Downloader{
		httpClient: &http.Client{Timeout: httpx.DefaultTimeout},
		cfg:        plugin.Config{},
		log:        log.With("component", "sabnzbd"),
	}
}

func (d *Downloader) Name() string        { return Name }
func (d *Downloader) Version() string     { return "1.0.0" }
func (d *Downloader) Description() string { return "SABnzbd usenet downloader" }

func (d *Downloader) ConfigSchema() []plugin.ConfigField {
	return []plugin.ConfigField{
		{Key: KeyHost, Label: "SABnzbd URL", Kind: plugin.KindText, Default: "http://localhost:8085", Required: true},
		{Key: KeyAPIKey, Label: "API key", Kind: plugin.KindPassword, Required: true},
		{Key: KeyCategory, Label: "Category", Kind: plugin.KindText, Default: ""},
	}
}

func (d *Downloader) SetConfig(cfg plugin.Config) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg = cfg
}

func (d *Downloader) config() plugin.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

func (d *Downloader) SupportedProtocols() []string { return []string{ProtoNZB} }

func (d *Downloader) WebUIURL() string {
	return strings.TrimSuffix(d.config().String(KeyHost), "/")
}

// Download sends an NZB URL to SABnzbd.
func (d *Downloader) Download(ctx context.Context, task *plugin.DownloadTask) error {
	cfg := d.config()
	d.log.Debug("adding nzb", "task_id", task.ID, "category", cfg.String(KeyCategory))

	var resp addResponse
	err := d.doRequest(ctx, "addurl", url.Values{
		"mode": {"addurl"},
		"name": {task.URL},
		"cat":  {cfg.String(KeyCategory)},
	}, &resp)
	if err == nil && !resp.Status {
		if isAPIKeyError(resp.Error) {
			err = ErrInvalidAPIKey
		} else {
			err = fmt.Errorf("sabnzbd add failed: %s", resp.Error)
		}
	}
	if err == nil && len(resp.NzoIDs) == 0 {
		err = errors.New("sabnzbd returned no nzo_id")
	}
	if err != nil {
		task.Status = plugin.DownloadFailed
		return err
	}

	task.Status = plugin.DownloadDownloading
	task.SetClientID(resp.NzoIDs[0])
	d.log.Debug("nzb added", "task_id", task.ID, "nzo_id", resp.NzoIDs[0])
	return nil
}

// Progress checks the queue first, then history.
func (d *Downloader) Progress(ctx context.Context, clientID string) (*plugin.Progress, error) {
	queue, err := d.getQueue(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range queue {
		if r.ID == clientID {
			return &plugin.Progress{Progress: r.Progress, Status: r.Status}, nil
		}
	}

	history, err := d.getHistory(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range history {
		if r.ID == clientID {
			p := &plugin.Progress{Progress: r.Progress, Status: r.Status}
			if r.Status == string(plugin.DownloadFailed) {
				p.Error = "sabnzbd reported failure"
			}
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDownloadNotFound, clientID)
}

// Downloads returns queue items followed by history items.
func (d *Downloader) Downloads(ctx context.Context) ([]plugin.DownloadRecord, error) {
	queue, err := d.getQueue(ctx)
	if err != nil {
		return nil, err
	}
	history, err := d.getHistory(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]plugin.DownloadRecord, 0, len(queue)+len(history))
	result = append(result, queue...)
	result = append(result, history...)
	return result, nil
}

// Cancel removes a download from the queue.
func (d *Downloader) Cancel(ctx context.Context, clientID string) error {
	d.log.Debug("removing download", "client_id", clientID)

	var resp statusResponse
	if err := d.doRequest(ctx, "queue/delete", url.Values{
		"mode":  {"queue"},
		"name":  {"delete"},
		"value": {clientID},
	}, &resp); err != nil {
		return err
	}
	if !resp.Status {
		return fmt.Errorf("sabnzbd remove failed")
	}
	d.log.Debug("download removed", "client_id", clientID)
	return nil
}

func (d *Downloader) getQueue(ctx context.Context) ([]plugin.DownloadRecord, error) {
	var resp queueResponse
	if err := d.doRequest(ctx, "queue", url.Values{"mode": {"queue"}}, &resp); err != nil {
		return nil, err
	}

	// Only the first (active) slot gets the queue-level speed
	queueSpeed := parseSpeed(resp.Queue.Speed)

	items := make([]plugin.DownloadRecord, 0, len(resp.Queue.Slots))
	for i, slot := range resp.Queue.Slots {
		var speed int64
		if i == 0 {
			speed = queueSpeed
		}
		items = append(items, plugin.DownloadRecord{
			ID:       slot.NzoID,
			Platform: Name,
			Title:    slot.Filename,
			Status:   mapQueueStatus(slot.Status),
			Progress: parseFloat(slot.Percentage),
			Size:     int64(parseFloat(slot.MB) * 1024 * 1024),
			Speed:    speed,
			ETA:      int64(parseTimeLeft(slot.TimeLeft).Seconds()),
		})
	}
	return items, nil
}

func (d *Downloader) getHistory(ctx context.Context) ([]plugin.DownloadRecord, error) {
	var resp historyResponse
	if err := d.doRequest(ctx, "history", url.Values{"mode": {"history"}}, &resp); err != nil {
		return nil, err
	}

	items := make([]plugin.DownloadRecord, 0, len(resp.History.Slots))
	for _, slot := range resp.History.Slots {
		status := mapHistoryStatus(slot.Status)
		progress := 100.0
		if status != string(plugin.DownloadCompleted) {
			progress = 0
		}
		items = append(items, plugin.DownloadRecord{
			ID:       slot.NzoID,
			Platform: Name,
			Title:    slot.Name,
			Status:   status,
			Progress: progress,
			Size:     slot.Bytes,
			SavePath: slot.Storage,
		})
	}
	return items, nil
}

// doRequest performs a GET against the SABnzbd API with the key and json
// output added to params.
func (d *Downloader) doRequest(ctx context.Context, mode string, params url.Values, result any) error {
	cfg := d.config()
	start := time.Now()
	params.Set("apikey", cfg.String(KeyAPIKey))
	params.Set("output", "json")
	reqURL := strings.TrimSuffix(cfg.String(KeyHost), "/") + "/api?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	body, err := httpx.Do(d.httpClient, req)
	if err != nil {
		d.log.Debug("api request failed", "mode", mode, "error", err)
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	d.log.Debug("api request complete", "mode", mode, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

type addResponse struct {
	Status bool     `json:"status"`
	NzoIDs []string `json:"nzo_ids"`
	Error  string   `json:"error"`
}

type statusResponse struct {
	Status bool `json:"status"`
}

type queueResponse struct {
	Queue struct {
		Speed string      `json:"speed"` // e.g. "5.2 M"
		Slots []queueSlot `json:"slots"`
	} `json:"queue"`
}

type queueSlot struct {
	NzoID      string `json:"nzo_id"`
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	Percentage string `json:"percentage"`
	MB         string `json:"mb"`
	TimeLeft   string `json:"timeleft"`
}

type historyResponse struct {
	History struct {
		Slots []historySlot `json:"slots"`
	} `json:"history"`
}

type historySlot struct {
	NzoID   string `json:"nzo_id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Bytes   int64  `json:"bytes"`
	Storage string `json:"storage"`
}

func mapQueueStatus(s string) string {
	switch s {
	case "Queued", "Propagating":
		return string(plugin.DownloadPending)
	case "Paused":
		return "paused"
	default:
		return string(plugin.DownloadDownloading)
	}
}

func mapHistoryStatus(s string) string {
	switch s {
	case "Completed":
		return string(plugin.DownloadCompleted)
	case "Failed":
		return string(plugin.DownloadFailed)
	default:
		// post-processing: extracting, verifying, repairing
		return string(plugin.DownloadDownloading)
	}
}

func isAPIKeyError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "api key") || strings.Contains(lower, "apikey")
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// parseSpeed parses "5.2 M", "1.5 K" or "500 B" to bytes per second.
func parseSpeed(s string) int64 {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return 0
	}
	val, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) > 1 {
		switch strings.ToUpper(parts[1]) {
		case "M":
			val *= 1024 * 1024
		case "K":
			val *= 1024
		}
	}
	return int64(val)
}

// parseTimeLeft parses "h:mm:ss".
func parseTimeLeft(s string) time.Duration {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0
	}
	hours, _ := strconv.Atoi(parts[0])
	minutes, _ := strconv.Atoi(parts[1])
	seconds, _ := strconv.Atoi(parts[2])
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
}
