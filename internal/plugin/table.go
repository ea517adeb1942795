package plugin

import (
	"slices"
	"sync"
)

// table is an insertion-ordered name -> provider map.
type table struct {
	mu    sync.RWMutex
	order []string
	items map[string]Provider
}

func newTable() *table {
	return &table{items: make(map[string]Provider)}
}

// put inserts or overwrites by name. An overwrite keeps the original position
// and returns the replaced provider.
func (t *table) put(name string, p Provider) Provider {
	t.mu.Lock()
	defer t.mu.Unlock()
	old, exists := t.items[name]
	if !exists {
		t.order = append(t.order, name)
	}
	t.items[name] = p
	return old
}

func (t *table) remove(name string) (Provider, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.items[name]
	if !ok {
		return nil, false
	}
	delete(t.items, name)
	t.order = slices.DeleteFunc(t.order, func(n string) bool { return n == name })
	return p, true
}

func (t *table) get(name string) (Provider, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.items[name]
	return p, ok
}

// snapshot returns providers in registration order.
func (t *table) snapshot() []Provider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Provider, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.items[name])
	}
	return out
}

func (t *table) names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.order)
}

// clear empties the table and returns what it held.
func (t *table) clear() []Provider {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Provider, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.items[name])
	}
	t.order = nil
	t.items = make(map[string]Provider)
	return out
}
