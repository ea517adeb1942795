package v1

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vmunix/mediahub/internal/download"
	"github.com/vmunix/mediahub/internal/events"
	"github.com/vmunix/mediahub/internal/plugin"
	"github.com/vmunix/mediahub/internal/search"
	"github.com/vmunix/mediahub/internal/tasks"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// Registry is the plugin registry surface the API exposes.
type Registry interface {
	ListAll(ctx context.Context) (map[plugin.Type][]plugin.Info, error)
	List(ctx context.Context, t plugin.Type) ([]plugin.Info, error)
	Config(ctx context.Context, t plugin.Type, name string) (plugin.Config, error)
	SetConfig(ctx context.Context, t plugin.Type, name string, cfg plugin.Config) error
	SetEnabled(ctx context.Context, t plugin.Type, name string, enabled bool) error
	HotLoad(ctx context.Context, t plugin.Type, name string) error
	Unregister(ctx context.Context, t plugin.Type, name string) bool
	Discover(ctx context.Context) plugin.DiscoverResult
	ReloadAll(ctx context.Context) plugin.DiscoverResult
	Searcher(name string) (plugin.Searcher, error)
	ResolveResults(ctx context.Context, results []plugin.SearchResult) ([]plugin.SearchResult, int, error)
}

// Searcher runs fan-out searches.
type Searcher interface {
	Search(ctx context.Context, keyword string, names ...string) (*search.Result, error)
}

// TaskManager runs searches in the background.
type TaskManager interface {
	Submit(ctx context.Context, s plugin.Searcher, keyword string) string
	Get(id string) (tasks.SearchTask, bool)
	Len() int
}

// DownloadManager dispatches and tracks downloads.
type DownloadManager interface {
	Dispatch(ctx context.Context, req download.Request) (*plugin.DownloadTask, error)
	Downloads(ctx context.Context, platform string) (*download.Listing, error)
	Cancel(ctx context.Context, platform, clientID string) error
	Tasks(ctx context.Context, f download.Filter) ([]*plugin.DownloadTask, int, error)
}

// EventLog reads persisted events.
type EventLog interface {
	Recent(ctx context.Context, limit int) ([]events.RawEvent, error)
	Since(ctx context.Context, t time.Time) ([]events.RawEvent, error)
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Registry Registry
	Search   Searcher
	Tasks    TaskManager

	// Optional dependencies (nil if not configured)
	Downloads DownloadManager
	EventLog  EventLog
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Registry == nil {
		return fmt.Errorf("%w: registry", ErrMissingDependency)
	}
	if d.Search == nil {
		return fmt.Errorf("%w: search pool", ErrMissingDependency)
	}
	if d.Tasks == nil {
		return fmt.Errorf("%w: task manager", ErrMissingDependency)
	}
	return nil
}
