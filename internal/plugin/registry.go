package plugin

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vmunix/mediahub/internal/events"
)

// Publisher receives registry lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Info describes a registered provider with its live enabled state.
type Info struct {
	Type               Type          `json:"type"`
	Name               string        `json:"name"`
	Version            string        `json:"version"`
	Description        string        `json:"description"`
	ConfigSchema       []ConfigField `json:"config_schema"`
	Enabled            bool          `json:"enabled"`
	SupportedProtocols []string      `json:"supported_protocols,omitempty"`
}

// Registry owns the live provider instances, one ordered table per type.
type Registry struct {
	tables map[Type]*table
	store  ConfigStore
	loader Loader
	bus    Publisher
	log    *slog.Logger
}

// NewRegistry creates a registry backed by store. loader may be nil, in which
// case hot load, discovery and reload always fail.
func NewRegistry(store ConfigStore, loader Loader, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	r := &Registry{
		tables: make(map[Type]*table, len(Types)),
		store:  store,
		loader: loader,
		log:    log,
	}
	for _, t := range Types {
		r.tables[t] = newTable()
	}
	return r
}

// SetPublisher attaches an event publisher. Pass nil to disable events.
func (r *Registry) SetPublisher(p Publisher) {
	r.bus = p
}

// Register infers the capability type of p and registers it.
func (r *Registry) Register(ctx context.Context, p Provider) error {
	t, err := ShapeOf(p)
	if err != nil {
		return err
	}
	return r.RegisterAs(ctx, t, p)
}

// RegisterAs inserts p under its name, overwriting any previous provider of
// the same name. Stored config is loaded, normalized and applied before the
// provider becomes visible.
func (r *Registry) RegisterAs(ctx context.Context, t Type, p Provider) error {
	tbl, ok := r.tables[t]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if !Implements(p, t) {
		return fmt.Errorf("%s as %s: %w", p.Name(), t, ErrTypeMismatch)
	}
	name := p.Name()

	stored, err := r.store.Get(ctx, t, name)
	if err != nil {
		r.log.Warn("load stored config failed, using defaults", "type", t, "plugin", name, "error", err)
		stored = Config{}
	}
	p.SetConfig(Normalize(p.ConfigSchema(), stored, r.log))

	old := tbl.put(name, p)
	if old != nil && old != p {
		closeProvider(old, r.log)
	}

	r.log.Info("plugin registered", "type", t, "plugin", name, "version", p.Version(), "replaced", old != nil)
	r.publish(ctx, events.NewPluginRegistered(string(t), name, p.Version(), old != nil))
	return nil
}

// Unregister removes a provider. Persisted config is left untouched.
func (r *Registry) Unregister(ctx context.Context, t Type, name string) bool {
	tbl, ok := r.tables[t]
	if !ok {
		return false
	}
	p, removed := tbl.remove(name)
	if !removed {
		return false
	}
	closeProvider(p, r.log)
	r.log.Info("plugin unregistered", "type", t, "plugin", name)
	r.publish(ctx, events.NewPluginUnregistered(string(t), name))
	return true
}

// Get returns the provider registered under (t, name).
func (r *Registry) Get(t Type, name string) (Provider, error) {
	tbl, ok := r.tables[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	p, ok := tbl.get(name)
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", t, name, ErrNotFound)
	}
	return p, nil
}

// Searcher returns the named search provider.
func (r *Registry) Searcher(name string) (Searcher, error) {
	p, err := r.Get(TypeSearch, name)
	if err != nil {
		return nil, err
	}
	return p.(Searcher), nil
}

// Downloader returns the named download provider.
func (r *Registry) Downloader(name string) (Downloader, error) {
	p, err := r.Get(TypeDownload, name)
	if err != nil {
		return nil, err
	}
	return p.(Downloader), nil
}

// Parser returns the named parser provider.
func (r *Registry) Parser(name string) (Parser, error) {
	p, err := r.Get(TypeParser, name)
	if err != nil {
		return nil, err
	}
	return p.(Parser), nil
}

// Names returns registered provider names of type t in registration order.
func (r *Registry) Names(t Type) []string {
	tbl, ok := r.tables[t]
	if !ok {
		return nil
	}
	return tbl.names()
}

// List describes every provider of type t. Enabled state is read from the
// store on each call.
func (r *Registry) List(ctx context.Context, t Type) ([]Info, error) {
	tbl, ok := r.tables[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	providers := tbl.snapshot()
	out := make([]Info, 0, len(providers))
	for _, p := range providers {
		enabled, err := r.store.IsEnabled(ctx, t, p.Name())
		if err != nil {
			return nil, fmt.Errorf("enabled state %s: %w", Key(t, p.Name()), err)
		}
		info := Info{
			Type:         t,
			Name:         p.Name(),
			Version:      p.Version(),
			Description:  p.Description(),
			ConfigSchema: p.ConfigSchema(),
			Enabled:      enabled,
		}
		if d, ok := p.(Downloader); ok {
			info.SupportedProtocols = d.SupportedProtocols()
		}
		out = append(out, info)
	}
	return out, nil
}

// ListAll describes providers of every type keyed by type.
func (r *Registry) ListAll(ctx context.Context) (map[Type][]Info, error) {
	out := make(map[Type][]Info, len(Types))
	for _, t := range Types {
		infos, err := r.List(ctx, t)
		if err != nil {
			return nil, err
		}
		out[t] = infos
	}
	return out, nil
}

// Enabled returns the names of enabled providers of type t in registration order.
func (r *Registry) Enabled(ctx context.Context, t Type) ([]string, error) {
	providers, err := r.enabled(ctx, t)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	return names, nil
}

// EnabledSearchers returns enabled search providers in registration order.
func (r *Registry) EnabledSearchers(ctx context.Context) ([]Searcher, error) {
	providers, err := r.enabled(ctx, TypeSearch)
	if err != nil {
		return nil, err
	}
	out := make([]Searcher, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.(Searcher))
	}
	return out, nil
}

// EnabledDownloaders returns enabled download providers in registration order.
func (r *Registry) EnabledDownloaders(ctx context.Context) ([]Downloader, error) {
	providers, err := r.enabled(ctx, TypeDownload)
	if err != nil {
		return nil, err
	}
	out := make([]Downloader, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.(Downloader))
	}
	return out, nil
}

// EnabledParsers returns enabled parser providers in registration order.
func (r *Registry) EnabledParsers(ctx context.Context) ([]Parser, error) {
	providers, err := r.enabled(ctx, TypeParser)
	if err != nil {
		return nil, err
	}
	out := make([]Parser, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.(Parser))
	}
	return out, nil
}

func (r *Registry) enabled(ctx context.Context, t Type) ([]Provider, error) {
	tbl, ok := r.tables[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	var out []Provider
	for _, p := range tbl.snapshot() {
		on, err := r.store.IsEnabled(ctx, t, p.Name())
		if err != nil {
			return nil, fmt.Errorf("enabled state %s: %w", Key(t, p.Name()), err)
		}
		if on {
			out = append(out, p)
		}
	}
	return out, nil
}

// Config returns the stored config of a registered provider.
func (r *Registry) Config(ctx context.Context, t Type, name string) (Config, error) {
	if _, err := r.Get(t, name); err != nil {
		return nil, err
	}
	return r.store.Get(ctx, t, name)
}

// SetConfig validates cfg against the provider's schema, persists it and then
// applies it to the live instance. If the write fails the live provider keeps
// its previous config. An omitted _enabled flag keeps the stored value.
func (r *Registry) SetConfig(ctx context.Context, t Type, name string, cfg Config) error {
	p, err := r.Get(t, name)
	if err != nil {
		return err
	}
	normalized := Normalize(p.ConfigSchema(), cfg, r.log.With("plugin", name))
	if _, ok := cfg[EnabledKey]; !ok {
		stored, err := r.store.Get(ctx, t, name)
		if err != nil {
			return fmt.Errorf("load config %s: %w", Key(t, name), err)
		}
		if v, ok := stored[EnabledKey]; ok {
			normalized[EnabledKey] = v
		}
	}
	if err := r.store.Set(ctx, t, name, normalized); err != nil {
		return fmt.Errorf("persist config %s: %w", Key(t, name), err)
	}
	p.SetConfig(normalized.Clone())
	r.log.Info("plugin config updated", "type", t, "plugin", name)
	return nil
}

// SetEnabled toggles a registered provider without re-registering it.
func (r *Registry) SetEnabled(ctx context.Context, t Type, name string, enabled bool) error {
	if _, err := r.Get(t, name); err != nil {
		return err
	}
	if err := r.store.SetEnabled(ctx, t, name, enabled); err != nil {
		return fmt.Errorf("set enabled %s: %w", Key(t, name), err)
	}
	r.log.Info("plugin toggled", "type", t, "plugin", name, "enabled", enabled)
	return nil
}

// Close releases every registered provider that holds resources.
func (r *Registry) Close() error {
	for _, t := range Types {
		for _, p := range r.tables[t].clear() {
			closeProvider(p, r.log)
		}
	}
	return nil
}

func (r *Registry) publish(ctx context.Context, e events.Event) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(ctx, e); err != nil {
		r.log.Warn("publish event failed", "type", e.EventType(), "error", err)
	}
}

func closeProvider(p Provider, log *slog.Logger) {
	c, ok := p.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn("close provider failed", "plugin", p.Name(), "error", err)
	}
}
