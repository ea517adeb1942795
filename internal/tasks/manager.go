// Package tasks runs search requests in the background and keeps their
// results in memory until they expire.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/mediahub/internal/events"
	"github.com/vmunix/mediahub/internal/plugin"
)

// Defaults for Options.
const (
	DefaultRetention     = 24 * time.Hour
	DefaultSweepInterval = time.Hour
)

// Progress milestones reported while a task runs.
const (
	progressSearching = 10
	progressDone      = 100
)

var (
	// ErrNotFound is returned when no task exists under an id.
	ErrNotFound = errors.New("search task not found")

	// ErrSearchPanic indicates the provider panicked during a task.
	ErrSearchPanic = errors.New("search provider panicked")
)

// SearchTask is a snapshot of one background search.
type SearchTask struct {
	ID              string                `json:"task_id"`
	PluginName      string                `json:"plugin_name"`
	Keyword         string                `json:"keyword"`
	Status          Status                `json:"status"`
	CreatedAt       time.Time             `json:"created_at"`
	StartedAt       *time.Time            `json:"started_at,omitempty"`
	CompletedAt     *time.Time            `json:"completed_at,omitempty"`
	Results         []plugin.SearchResult `json:"results"`
	Error           string                `json:"error,omitempty"`
	Progress        int                   `json:"progress"`
	ProgressMessage string                `json:"progress_message"`
}

func (t *SearchTask) clone() SearchTask {
	c := *t
	c.Results = slices.Clone(t.Results)
	if t.StartedAt != nil {
		ts := *t.StartedAt
		c.StartedAt = &ts
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	return c
}

// Publisher receives task transition events.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Options tunes expiry. Zero values take the defaults.
type Options struct {
	Retention     time.Duration
	SweepInterval time.Duration
}

// Manager owns every search task. All methods are safe for concurrent use.
type Manager struct {
	mu    sync.RWMutex
	tasks map[string]*SearchTask

	opts      Options
	bus       Publisher
	log       *slog.Logger
	now       func() time.Time
	sweepOnce sync.Once
}

// NewManager creates an empty manager.
func NewManager(opts Options, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	return &Manager{
		tasks: make(map[string]*SearchTask),
		opts:  opts,
		log:   log.With("component", "tasks"),
		now:   time.Now,
	}
}

// SetPublisher attaches an event publisher. Pass nil to disable events.
func (m *Manager) SetPublisher(p Publisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bus = p
}

// Create records a pending task and returns its id. It never blocks on the search.
func (m *Manager) Create(pluginName, keyword string) string {
	id := uuid.NewString()
	m.mu.Lock()
	m.tasks[id] = &SearchTask{
		ID:              id,
		PluginName:      pluginName,
		Keyword:         keyword,
		Status:          StatusPending,
		CreatedAt:       m.now(),
		Results:         []plugin.SearchResult{},
		ProgressMessage: "queued",
	}
	m.mu.Unlock()
	m.log.Debug("task created", "task_id", id, "plugin", pluginName, "keyword", keyword)
	return id
}

// Submit creates a task and runs it in a new goroutine. The search outlives
// ctx cancellation so a finished HTTP request does not abort it.
func (m *Manager) Submit(ctx context.Context, s plugin.Searcher, keyword string) string {
	id := m.Create(s.Name(), keyword)
	go m.Execute(context.WithoutCancel(ctx), id, s, keyword)
	return id
}

// Execute runs the search for task id to completion. A task that has been
// swept in the meantime is left alone; its late writes are dropped.
func (m *Manager) Execute(ctx context.Context, id string, s plugin.Searcher, keyword string) {
	ok := m.transition(ctx, id, StatusRunning, func(t *SearchTask) {
		if t.StartedAt == nil {
			ts := m.now()
			t.StartedAt = &ts
		}
		t.Progress = progressSearching
		t.ProgressMessage = "searching"
	})
	if !ok {
		return
	}

	results, err := m.search(ctx, s, keyword)
	if err != nil {
		m.log.Warn("search task failed", "task_id", id, "plugin", s.Name(), "error", err)
		m.transition(ctx, id, StatusFailed, func(t *SearchTask) {
			ts := m.now()
			t.CompletedAt = &ts
			t.Error = err.Error()
			t.ProgressMessage = "failed"
		})
		return
	}

	m.transition(ctx, id, StatusCompleted, func(t *SearchTask) {
		ts := m.now()
		t.CompletedAt = &ts
		if results == nil {
			results = []plugin.SearchResult{}
		}
		t.Results = results
		t.Progress = progressDone
		t.ProgressMessage = "completed"
	})
	m.log.Info("search task completed", "task_id", id, "plugin", s.Name(), "results", len(results))
}

func (m *Manager) search(ctx context.Context, s plugin.Searcher, keyword string) (results []plugin.SearchResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			results, err = nil, fmt.Errorf("%w: %v", ErrSearchPanic, rec)
		}
	}()
	return s.Search(ctx, keyword)
}

// transition moves task id to status `to` and applies mutate under the lock.
// It reports false when the task is gone or the move is not allowed.
func (m *Manager) transition(ctx context.Context, id string, to Status, mutate func(*SearchTask)) bool {
	m.mu.Lock()
	t, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		m.log.Debug("task gone, dropping update", "task_id", id, "to", to)
		return false
	}
	from := t.Status
	if !from.CanTransitionTo(to) {
		m.mu.Unlock()
		m.log.Warn("invalid task transition", "task_id", id, "from", from, "to", to)
		return false
	}
	t.Status = to
	mutate(t)
	pluginName, errMsg, bus := t.PluginName, t.Error, m.bus
	m.mu.Unlock()

	if bus != nil {
		e := &events.SearchTaskTransitioned{
			BaseEvent: events.NewBaseEvent(events.EventSearchTaskTransitioned, events.EntitySearchTask, id),
			Plugin:    pluginName,
			From:      string(from),
			To:        string(to),
			Error:     errMsg,
		}
		if err := bus.Publish(ctx, e); err != nil {
			m.log.Warn("publish event failed", "task_id", id, "error", err)
		}
	}
	return true
}

// Get returns a copy of task id.
func (m *Manager) Get(id string) (SearchTask, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return SearchTask{}, false
	}
	return t.clone(), true
}

// List returns copies of every task, newest first.
func (m *Manager) List() []SearchTask {
	m.mu.RLock()
	out := make([]SearchTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t.clone())
	}
	m.mu.RUnlock()
	slices.SortFunc(out, func(a, b SearchTask) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// Len reports how many tasks are held.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tasks)
}

// Sweep deletes every task created more than the retention period before
// now, whatever its status, and returns how many were removed.
func (m *Manager) Sweep(now time.Time) int {
	cutoff := now.Add(-m.opts.Retention)
	m.mu.Lock()
	before := len(m.tasks)
	maps.DeleteFunc(m.tasks, func(_ string, t *SearchTask) bool {
		return t.CreatedAt.Before(cutoff)
	})
	removed := before - len(m.tasks)
	m.mu.Unlock()
	if removed > 0 {
		m.log.Info("expired tasks swept", "removed", removed)
	}
	return removed
}

// StartSweeper starts the periodic sweep. Only the first call has an effect.
// The sweeper stops when ctx is cancelled.
func (m *Manager) StartSweeper(ctx context.Context) {
	m.sweepOnce.Do(func() {
		go m.runSweeper(ctx)
	})
}

func (m *Manager) runSweeper(ctx context.Context) {
	ticker := time.NewTicker(m.opts.SweepInterval)
	defer ticker.Stop()
	m.log.Debug("sweeper started", "interval", m.opts.SweepInterval, "retention", m.opts.Retention)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(m.now())
		}
	}
}
