package events

// Entity types
const (
	EntityPlugin     = "plugin"
	EntitySearchTask = "search_task"
	EntityDownload   = "download"
)

// Event type constants
const (
	EventPluginRegistered       = "plugin.registered"
	EventPluginUnregistered     = "plugin.unregistered"
	EventSearchTaskTransitioned = "search_task.transitioned"
	EventDownloadCreated        = "download.created"
	EventDownloadProgressed     = "download.progressed"
	EventDownloadCompleted      = "download.completed"
	EventDownloadFailed         = "download.failed"
)

// PluginRegistered is emitted when a provider enters the registry.
type PluginRegistered struct {
	BaseEvent
	PluginType string `json:"plugin_type"`
	Name       string `json:"name"`
	Version    string `json:"version"`
	Replaced   bool   `json:"replaced"`
}

// NewPluginRegistered builds a PluginRegistered event keyed by "type:name".
func NewPluginRegistered(pluginType, name, version string, replaced bool) *PluginRegistered {
	return &PluginRegistered{
		BaseEvent:  NewBaseEvent(EventPluginRegistered, EntityPlugin, pluginType+":"+name),
		PluginType: pluginType,
		Name:       name,
		Version:    version,
		Replaced:   replaced,
	}
}

// PluginUnregistered is emitted when a provider leaves the registry.
type PluginUnregistered struct {
	BaseEvent
	PluginType string `json:"plugin_type"`
	Name       string `json:"name"`
}

// NewPluginUnregistered builds a PluginUnregistered event.
func NewPluginUnregistered(pluginType, name string) *PluginUnregistered {
	return &PluginUnregistered{
		BaseEvent:  NewBaseEvent(EventPluginUnregistered, EntityPlugin, pluginType+":"+name),
		PluginType: pluginType,
		Name:       name,
	}
}

// SearchTaskTransitioned is emitted on every search task state change.
type SearchTaskTransitioned struct {
	BaseEvent
	Plugin string `json:"plugin"`
	From   string `json:"from"`
	To     string `json:"to"`
	Error  string `json:"error,omitempty"`
}

// DownloadCreated is emitted when a download task is dispatched to a provider.
type DownloadCreated struct {
	BaseEvent
	Plugin   string `json:"plugin"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	ClientID string `json:"client_id,omitempty"`
}

// DownloadProgressed is emitted when a poll observes new progress.
type DownloadProgressed struct {
	BaseEvent
	Progress float64 `json:"progress"` // 0.0 - 100.0
	Status   string  `json:"status"`
}

// DownloadCompleted is emitted when a provider reports completion.
type DownloadCompleted struct {
	BaseEvent
	Plugin string `json:"plugin"`
}

// DownloadFailed is emitted when a provider rejects or fails a download.
type DownloadFailed struct {
	BaseEvent
	Plugin string `json:"plugin"`
	Reason string `json:"reason"`
}
