package v1

import (
	"time"

	"github.com/vmunix/mediahub/internal/plugin"
	"github.com/vmunix/mediahub/internal/tasks"
)

// pluginConfigResponse is the response for plugin config reads and writes.
type pluginConfigResponse struct {
	Type   plugin.Type   `json:"type"`
	Name   string        `json:"name"`
	Config plugin.Config `json:"config"`
}

// toggleResponse is the response for POST /plugins/{type}/{name}/toggle.
type toggleResponse struct {
	Type    plugin.Type `json:"type"`
	Name    string      `json:"name"`
	Enabled bool        `json:"enabled"`
}

// searchResponse is the response for synchronous searches.
type searchResponse struct {
	Keyword       string                `json:"keyword"`
	Results       []plugin.SearchResult `json:"results"`
	Total         int                   `json:"total"`
	ParsersActive int                   `json:"parsers_active"`
	Errors        map[string]string     `json:"errors,omitempty"`
}

// searchTaskResponse is a task snapshot with its result links resolved
// against the parsers enabled at read time.
type searchTaskResponse struct {
	tasks.SearchTask
	ParsersActive int `json:"parsers_active"`
}

// createTaskRequest is the body of POST /search/tasks.
type createTaskRequest struct {
	Plugin  string `json:"plugin"`
	Keyword string `json:"keyword"`
}

// createTaskResponse is the response for POST /search/tasks.
type createTaskResponse struct {
	TaskID string       `json:"task_id"`
	Status tasks.Status `json:"status"`
}

// cancelRequest is the body of POST /downloads/cancel.
type cancelRequest struct {
	Platform   string `json:"platform"`
	DownloadID string `json:"download_id"`
}

// downloadTaskResponse is the API representation of a stored download task.
type downloadTaskResponse struct {
	ID        string                `json:"id"`
	URL       string                `json:"url"`
	Title     string                `json:"title"`
	Status    plugin.DownloadStatus `json:"status"`
	Progress  float64               `json:"progress"`
	Plugin    string                `json:"plugin"`
	ClientID  string                `json:"client_id,omitempty"`
	SavePath  string                `json:"save_path"`
	Metadata  map[string]any        `json:"metadata,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// listDownloadTasksResponse is the response for GET /downloads/tasks.
type listDownloadTasksResponse struct {
	Items  []downloadTaskResponse `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

// EventResponse is the API representation of a logged event.
type EventResponse struct {
	ID         int64  `json:"id"`
	EventType  string `json:"event_type"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Payload    any    `json:"payload,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

// listEventsResponse is the response for GET /events.
type listEventsResponse struct {
	Items []EventResponse `json:"items"`
	Total int             `json:"total"`
}

// statusResponse is the response for GET /status.
type statusResponse struct {
	Status      string                 `json:"status"`
	Version     string                 `json:"version"`
	Plugins     map[plugin.Type]counts `json:"plugins"`
	SearchTasks int                    `json:"search_tasks"`
	Downloaders map[string]string      `json:"downloaders,omitempty"`
}

type counts struct {
	Registered int `json:"registered"`
	Enabled    int `json:"enabled"`
}
