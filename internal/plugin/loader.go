package plugin

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Loader resolves the code unit for (t, name) and returns a fresh provider.
// It returns an error wrapping ErrNotFound when it has no unit of that name.
type Loader interface {
	Load(ctx context.Context, t Type, name string) (Provider, error)
}

// Discoverer enumerates candidate provider names per type.
type Discoverer interface {
	Candidates(ctx context.Context, t Type) ([]string, error)
}

// Factory constructs a new provider instance.
type Factory func() Provider

// Builtins is a table of compiled-in provider factories.
type Builtins struct {
	mu        sync.RWMutex
	factories map[Type]map[string]Factory
	order     map[Type][]string
}

// NewBuiltins creates an empty factory table.
func NewBuiltins() *Builtins {
	return &Builtins{
		factories: make(map[Type]map[string]Factory),
		order:     make(map[Type][]string),
	}
}

// Add registers a factory. Each (t, name) may have exactly one factory.
func (b *Builtins) Add(t Type, name string, f Factory) error {
	if _, err := ParseType(string(t)); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.factories[t] == nil {
		b.factories[t] = make(map[string]Factory)
	}
	if _, exists := b.factories[t][name]; exists {
		return fmt.Errorf("builtin %s: %w", Key(t, name), ErrAmbiguousProvider)
	}
	b.factories[t][name] = f
	b.order[t] = append(b.order[t], name)
	return nil
}

// Load implements Loader.
func (b *Builtins) Load(_ context.Context, t Type, name string) (Provider, error) {
	b.mu.RLock()
	f, ok := b.factories[t][name]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("builtin %s: %w", Key(t, name), ErrNotFound)
	}
	p := f()
	if p == nil {
		return nil, fmt.Errorf("builtin %s: %w", Key(t, name), ErrNoProvider)
	}
	if p.Name() != name {
		return nil, fmt.Errorf("builtin %s returned provider %q: %w", Key(t, name), p.Name(), ErrTypeMismatch)
	}
	return p, nil
}

// Candidates implements Discoverer.
func (b *Builtins) Candidates(_ context.Context, t Type) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.order[t]), nil
}

// ChainLoader tries each loader in order. The first loader that does not
// report ErrNotFound wins.
type ChainLoader []Loader

// Load implements Loader.
func (c ChainLoader) Load(ctx context.Context, t Type, name string) (Provider, error) {
	for _, l := range c {
		p, err := l.Load(ctx, t, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return p, err
	}
	return nil, fmt.Errorf("%s: %w", Key(t, name), ErrNotFound)
}

// Candidates merges the candidates of every chained Discoverer, keeping the
// first occurrence of each name.
func (c ChainLoader) Candidates(ctx context.Context, t Type) ([]string, error) {
	var out []string
	var errs []error
	for _, l := range c {
		d, ok := l.(Discoverer)
		if !ok {
			continue
		}
		names, err := d.Candidates(ctx, t)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, n := range names {
			if !slices.Contains(out, n) {
				out = append(out, n)
			}
		}
	}
	return out, errors.Join(errs...)
}

// IsTemplateName reports whether a candidate is a template or example unit
// that discovery must skip.
func IsTemplateName(name string) bool {
	n := strings.ToLower(name)
	switch {
	case n == "", n == "template", n == "example", n == "plugin":
		return true
	case strings.HasPrefix(n, "_"),
		strings.HasPrefix(n, "template_"),
		strings.HasPrefix(n, "example_"),
		strings.HasSuffix(n, "_template"),
		strings.HasSuffix(n, "_example"):
		return true
	}
	return false
}
