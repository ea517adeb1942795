package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/vmunix/mediahub/internal/events"
	"github.com/vmunix/mediahub/internal/plugin"
)

// DefaultSavePath is used when a provider has no download_path configured.
const DefaultSavePath = "/downloads"

// PlatformAll selects every enabled provider in Downloads.
const PlatformAll = "all"

// Providers is the part of the plugin registry the manager needs.
type Providers interface {
	SelectDownloader(ctx context.Context, locator string) (plugin.Downloader, error)
	Downloader(name string) (plugin.Downloader, error)
	EnabledDownloaders(ctx context.Context) ([]plugin.Downloader, error)
	Config(ctx context.Context, t plugin.Type, name string) (plugin.Config, error)
}

// Publisher receives download events.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Request asks for one URL to be downloaded. Plugin is optional; without it
// the router picks a provider from the URL.
type Request struct {
	URL      string         `json:"url"`
	Title    string         `json:"title"`
	Plugin   string         `json:"plugin,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Listing is the aggregated provider view returned by Downloads. Errors maps
// a provider name to its failure.
type Listing struct {
	Records   []plugin.DownloadRecord `json:"downloads"`
	Platforms []PlatformInfo          `json:"platforms"`
	Errors    map[string]string       `json:"errors,omitempty"`
}

// PlatformInfo describes one provider in a Listing.
type PlatformInfo struct {
	Name     string `json:"name"`
	WebUIURL string `json:"web_ui_url,omitempty"`
	Count    int    `json:"count"`
}

// Manager orchestrates download operations.
type Manager struct {
	providers Providers
	store     *Store
	bus       Publisher
	log       *slog.Logger
}

// NewManager creates a new download manager.
func NewManager(providers Providers, store *Store, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		providers: providers,
		store:     store,
		log:       log.With("component", "download"),
	}
}

// SetPublisher attaches an event publisher. Pass nil to disable events.
func (m *Manager) SetPublisher(p Publisher) {
	m.bus = p
}

// Store returns the task store.
func (m *Manager) Store() *Store {
	return m.store
}

// Dispatch creates a task for req, hands it to a provider and persists the
// provider's verdict. A rejected task is still stored, as failed.
func (m *Manager) Dispatch(ctx context.Context, req Request) (*plugin.DownloadTask, error) {
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}

	d, err := m.pick(ctx, req)
	if err != nil {
		return nil, err
	}
	name := d.Name()

	task := &plugin.DownloadTask{
		ID:         uuid.NewString(),
		URL:        req.URL,
		Title:      lo.Ternary(req.Title != "", req.Title, titleFromURL(req.URL)),
		Status:     plugin.DownloadPending,
		PluginName: name,
		SavePath:   m.savePath(ctx, name),
		Metadata:   maps.Clone(req.Metadata),
	}
	if err := m.store.Add(ctx, task); err != nil {
		return nil, err
	}

	dlErr := guard(name, func() error { return d.Download(ctx, task) })
	if dlErr != nil {
		task.Status = plugin.DownloadFailed
	} else if task.Status == plugin.DownloadPending {
		task.Status = plugin.DownloadDownloading
	}
	if err := m.store.Update(ctx, task); err != nil {
		m.log.Error("persist dispatched task failed", "task_id", task.ID, "plugin", name, "error", err)
	}

	if dlErr != nil {
		m.log.Warn("download rejected", "task_id", task.ID, "plugin", name, "url", req.URL, "error", dlErr)
		m.publish(ctx, &events.DownloadFailed{
			BaseEvent: events.NewBaseEvent(events.EventDownloadFailed, events.EntityDownload, task.ID),
			Plugin:    name,
			Reason:    dlErr.Error(),
		})
		return task, fmt.Errorf("%w: %s: %w", ErrDownloadRejected, name, dlErr)
	}

	m.log.Info("download dispatched", "task_id", task.ID, "plugin", name, "client_id", task.ClientID())
	m.publish(ctx, &events.DownloadCreated{
		BaseEvent: events.NewBaseEvent(events.EventDownloadCreated, events.EntityDownload, task.ID),
		Plugin:    name,
		URL:       task.URL,
		Title:     task.Title,
		ClientID:  task.ClientID(),
	})
	return task, nil
}

func (m *Manager) pick(ctx context.Context, req Request) (plugin.Downloader, error) {
	if req.Plugin == "" {
		d, err := m.providers.SelectDownloader(ctx, req.URL)
		if err != nil {
			return nil, fmt.Errorf("select provider: %w", err)
		}
		if d == nil {
			return nil, fmt.Errorf("%w for %s", ErrNoSuitableProvider, req.URL)
		}
		return d, nil
	}

	d, err := m.providers.Downloader(req.Plugin)
	if err != nil {
		return nil, err
	}
	cfg, err := m.providers.Config(ctx, plugin.TypeDownload, req.Plugin)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", req.Plugin, err)
	}
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: %s", ErrProviderDisabled, req.Plugin)
	}
	return d, nil
}

func (m *Manager) savePath(ctx context.Context, name string) string {
	cfg, err := m.providers.Config(ctx, plugin.TypeDownload, name)
	if err != nil {
		m.log.Warn("load provider config failed, using default save path", "plugin", name, "error", err)
		return DefaultSavePath
	}
	if p := cfg.String("download_path"); p != "" {
		return p
	}
	return DefaultSavePath
}

func titleFromURL(u string) string {
	locator, query, _ := strings.Cut(u, "?")
	if strings.HasPrefix(strings.ToLower(locator), "magnet:") {
		if q, err := url.ParseQuery(query); err == nil && q.Get("dn") != "" {
			return q.Get("dn")
		}
		return u
	}
	trimmed := strings.TrimRight(locator, "/")
	if base := path.Base(trimmed); base != "." && base != "/" && base != "" {
		return base
	}
	return u
}

// Downloads lists provider-native records. PlatformAll (or "") aggregates
// every enabled provider; a failing provider is reported in Listing.Errors
// and does not hide the others.
func (m *Manager) Downloads(ctx context.Context, platform string) (*Listing, error) {
	if platform != "" && platform != PlatformAll {
		d, err := m.providers.Downloader(platform)
		if err != nil {
			return nil, err
		}
		records, err := listOne(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("list %s downloads: %w", platform, err)
		}
		records = withPlatform(records, platform)
		return &Listing{
			Records:   records,
			Platforms: []PlatformInfo{platformInfo(d, len(records))},
		}, nil
	}

	providers, err := m.providers.EnabledDownloaders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}

	perProvider := make([][]plugin.DownloadRecord, len(providers))
	errs := make([]error, len(providers))
	var wg sync.WaitGroup
	for i, d := range providers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, err := listOne(ctx, d)
			if err != nil {
				m.log.Warn("provider listing failed", "plugin", d.Name(), "error", err)
				errs[i] = err
				return
			}
			perProvider[i] = withPlatform(records, d.Name())
		}()
	}
	wg.Wait()

	listing := &Listing{
		Records:   lo.Flatten(perProvider),
		Platforms: make([]PlatformInfo, 0, len(providers)),
	}
	for i, d := range providers {
		listing.Platforms = append(listing.Platforms, platformInfo(d, len(perProvider[i])))
	}
	for i, err := range errs {
		if err == nil {
			continue
		}
		if listing.Errors == nil {
			listing.Errors = make(map[string]string)
		}
		listing.Errors[providers[i].Name()] = err.Error()
	}
	return listing, nil
}

func listOne(ctx context.Context, d plugin.Downloader) (records []plugin.DownloadRecord, err error) {
	err = guard(d.Name(), func() error {
		records, err = d.Downloads(ctx)
		return err
	})
	return records, err
}

func platformInfo(d plugin.Downloader, count int) PlatformInfo {
	info := PlatformInfo{Name: d.Name(), Count: count}
	_ = guard(info.Name, func() error {
		info.WebUIURL = d.WebUIURL()
		return nil
	})
	return info
}

// guard runs one provider call and converts a panic into ErrProviderPanic.
func guard(name string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s: %v", ErrProviderPanic, name, rec)
		}
	}()
	return fn()
}

func withPlatform(records []plugin.DownloadRecord, name string) []plugin.DownloadRecord {
	return lo.Map(records, func(r plugin.DownloadRecord, _ int) plugin.DownloadRecord {
		if r.Platform == "" {
			r.Platform = name
		}
		return r
	})
}

// Cancel asks provider platform to cancel clientID. A stored task for that
// client id is marked failed.
func (m *Manager) Cancel(ctx context.Context, platform, clientID string) error {
	if platform == "" || clientID == "" {
		return fmt.Errorf("%w: platform and client id are required", ErrInvalidRequest)
	}
	d, err := m.providers.Downloader(platform)
	if err != nil {
		return err
	}
	if err := guard(platform, func() error { return d.Cancel(ctx, clientID) }); err != nil {
		return fmt.Errorf("cancel %s/%s: %w", platform, clientID, err)
	}
	m.log.Info("download cancelled", "plugin", platform, "client_id", clientID)

	task, err := m.store.FindByClientID(ctx, platform, clientID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if task.Status.IsTerminal() {
		return nil
	}
	if err := m.store.Transition(ctx, task, plugin.DownloadFailed); err != nil {
		return err
	}
	m.publish(ctx, &events.DownloadFailed{
		BaseEvent: events.NewBaseEvent(events.EventDownloadFailed, events.EntityDownload, task.ID),
		Plugin:    platform,
		Reason:    "cancelled",
	})
	return nil
}

// Tasks lists stored tasks.
func (m *Manager) Tasks(ctx context.Context, f Filter) ([]*plugin.DownloadTask, int, error) {
	return m.store.List(ctx, f)
}

// Refresh polls providers for the progress of every active task and
// persists changes. It returns the last error seen and keeps going past
// individual failures.
func (m *Manager) Refresh(ctx context.Context) error {
	tasks, _, err := m.store.List(ctx, Filter{Active: true})
	if err != nil {
		return fmt.Errorf("list active: %w", err)
	}
	m.log.Debug("refresh started", "active_downloads", len(tasks))

	var lastErr error
	for _, t := range tasks {
		if err := m.refreshOne(ctx, t); err != nil {
			m.log.Error("refresh error", "task_id", t.ID, "plugin", t.PluginName, "error", err)
			lastErr = err
		}
	}
	return lastErr
}

func (m *Manager) refreshOne(ctx context.Context, t *plugin.DownloadTask) error {
	clientID := t.ClientID()
	if clientID == "" {
		return nil
	}
	d, err := m.providers.Downloader(t.PluginName)
	if errors.Is(err, plugin.ErrNotFound) {
		m.log.Debug("provider gone, skipping refresh", "task_id", t.ID, "plugin", t.PluginName)
		return nil
	}
	if err != nil {
		return err
	}
	var p *plugin.Progress
	err = guard(t.PluginName, func() error {
		p, err = d.Progress(ctx, clientID)
		return err
	})
	if err == nil && p == nil {
		err = errors.New("empty progress")
	}
	if err != nil {
		return fmt.Errorf("progress %s: %w", clientID, err)
	}

	to, known := mapStatus(p.Status)
	changedProgress := p.Progress != t.Progress
	t.Progress = p.Progress

	if known && to != t.Status && t.Status.CanTransitionTo(to) {
		m.log.Info("download status changed", "task_id", t.ID, "status", to, "prev", t.Status)
		if err := m.store.Transition(ctx, t, to); err != nil {
			return err
		}
		m.publishStatus(ctx, t, p)
		return nil
	}
	if changedProgress {
		if err := m.store.Update(ctx, t); err != nil {
			return err
		}
		m.publish(ctx, &events.DownloadProgressed{
			BaseEvent: events.NewBaseEvent(events.EventDownloadProgressed, events.EntityDownload, t.ID),
			Progress:  p.Progress,
			Status:    p.Status,
		})
	}
	return nil
}

func (m *Manager) publishStatus(ctx context.Context, t *plugin.DownloadTask, p *plugin.Progress) {
	base := func(typ string) events.BaseEvent {
		return events.NewBaseEvent(typ, events.EntityDownload, t.ID)
	}
	switch t.Status {
	case plugin.DownloadCompleted:
		m.publish(ctx, &events.DownloadCompleted{BaseEvent: base(events.EventDownloadCompleted), Plugin: t.PluginName})
	case plugin.DownloadFailed:
		m.publish(ctx, &events.DownloadFailed{BaseEvent: base(events.EventDownloadFailed), Plugin: t.PluginName, Reason: p.Error})
	default:
		m.publish(ctx, &events.DownloadProgressed{BaseEvent: base(events.EventDownloadProgressed), Progress: p.Progress, Status: p.Status})
	}
}

// mapStatus maps a provider status word onto the task state machine.
// Paused and unknown states report known=false and leave the task as is.
func mapStatus(s string) (plugin.DownloadStatus, bool) {
	switch strings.ToLower(s) {
	case "pending", "queued":
		return plugin.DownloadPending, true
	case "downloading":
		return plugin.DownloadDownloading, true
	case "completed", "finished", "done":
		return plugin.DownloadCompleted, true
	case "failed", "error":
		return plugin.DownloadFailed, true
	default:
		return "", false
	}
}

func (m *Manager) publish(ctx context.Context, e events.Event) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(ctx, e); err != nil {
		m.log.Warn("publish event failed", "type", e.EventType(), "error", err)
	}
}
