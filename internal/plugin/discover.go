package plugin

import (
	"context"
	"fmt"
	"time"
)

// DiscoverResult counts hot-load outcomes of a scan or reload.
type DiscoverResult struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Errors    map[string]string `json:"errors,omitempty"`
}

func (d *DiscoverResult) record(t Type, name string, err error) {
	if err == nil {
		d.Succeeded++
		return
	}
	d.Failed++
	if d.Errors == nil {
		d.Errors = make(map[string]string)
	}
	d.Errors[Key(t, name)] = err.Error()
}

// HotLoad loads the current definition of (t, name) and registers it,
// replacing any instance already registered under that name.
func (r *Registry) HotLoad(ctx context.Context, t Type, name string) error {
	if _, ok := r.tables[t]; !ok {
		return fmt.Errorf("%w: %w: %q", ErrLoadFailed, ErrUnknownType, t)
	}
	if r.loader == nil {
		return fmt.Errorf("%w: %s: no loader configured", ErrLoadFailed, Key(t, name))
	}
	p, err := r.loader.Load(ctx, t, name)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoadFailed, Key(t, name), err)
	}
	if !Implements(p, t) {
		closeProvider(p, r.log)
		return fmt.Errorf("%w: %s: %w", ErrLoadFailed, Key(t, name), ErrTypeMismatch)
	}
	if p.Name() != name {
		closeProvider(p, r.log)
		return fmt.Errorf("%w: %s: unit declares name %q", ErrLoadFailed, Key(t, name), p.Name())
	}
	if err := r.RegisterAs(ctx, t, p); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoadFailed, Key(t, name), err)
	}
	return nil
}

// Discover asks the loader for candidates of every type and hot-loads each
// one. Template and example units are skipped. A failing candidate is
// counted and logged and never stops the scan.
func (r *Registry) Discover(ctx context.Context) DiscoverResult {
	var res DiscoverResult
	d, ok := r.loader.(Discoverer)
	if !ok {
		r.log.Warn("loader does not support discovery")
		return res
	}
	start := time.Now()
	for _, t := range Types {
		names, err := d.Candidates(ctx, t)
		if err != nil {
			r.log.Warn("list candidates failed", "type", t, "error", err)
		}
		for _, name := range names {
			if IsTemplateName(name) {
				r.log.Debug("skipping template unit", "type", t, "plugin", name)
				continue
			}
			err := r.HotLoad(ctx, t, name)
			if err != nil {
				r.log.Warn("plugin load failed", "type", t, "plugin", name, "error", err)
			}
			res.record(t, name, err)
		}
	}
	r.log.Info("discovery complete", "succeeded", res.Succeeded, "failed", res.Failed,
		"duration_ms", time.Since(start).Milliseconds())
	return res
}

// ReloadAll snapshots the registered names, clears every table and
// hot-loads each name again from its current definition.
func (r *Registry) ReloadAll(ctx context.Context) DiscoverResult {
	snapshot := make(map[Type][]string, len(Types))
	for _, t := range Types {
		snapshot[t] = r.tables[t].names()
	}
	for _, t := range Types {
		for _, p := range r.tables[t].clear() {
			closeProvider(p, r.log)
		}
	}

	var res DiscoverResult
	for _, t := range Types {
		for _, name := range snapshot[t] {
			err := r.HotLoad(ctx, t, name)
			if err != nil {
				r.log.Warn("plugin reload failed", "type", t, "plugin", name, "error", err)
			}
			res.record(t, name, err)
		}
	}
	r.log.Info("reload complete", "succeeded", res.Succeeded, "failed", res.Failed)
	return res
}
