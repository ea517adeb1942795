package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/mediahub/internal/plugin"
	"github.com/vmunix/mediahub/internal/tasks"
)

// Client wraps HTTP calls to the mediahub server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new mediahub API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func (c *Client) do(method, path string, query url.Values, body, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, u, reader)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
	}
	return apiErr
}

func (c *Client) get(path string, query url.Values, result any) error {
	return c.do(http.MethodGet, path, query, nil, result)
}

func (c *Client) post(path string, body, result any) error {
	return c.do(http.MethodPost, path, nil, body, result)
}

// API response types (mirror server types)

type StatusResponse struct {
	Status      string                       `json:"status"`
	Version     string                       `json:"version"`
	Plugins     map[plugin.Type]PluginCounts `json:"plugins"`
	SearchTasks int                          `json:"search_tasks"`
	Downloaders map[string]string            `json:"downloaders,omitempty"`
}

type PluginCounts struct {
	Registered int `json:"registered"`
	Enabled    int `json:"enabled"`
}

type PluginConfigResponse struct {
	Type   plugin.Type   `json:"type"`
	Name   string        `json:"name"`
	Config plugin.Config `json:"config"`
}

type ToggleResponse struct {
	Type    plugin.Type `json:"type"`
	Name    string      `json:"name"`
	Enabled bool        `json:"enabled"`
}

type DiscoverResponse struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Errors    map[string]string `json:"errors,omitempty"`
}

type SearchResponse struct {
	Keyword       string                `json:"keyword"`
	Results       []plugin.SearchResult `json:"results"`
	Total         int                   `json:"total"`
	ParsersActive int                   `json:"parsers_active"`
	Errors        map[string]string     `json:"errors,omitempty"`
}

type CreateTaskResponse struct {
	TaskID string       `json:"task_id"`
	Status tasks.Status `json:"status"`
}

type DownloadRequest struct {
	URL      string         `json:"url"`
	Title    string         `json:"title"`
	Plugin   string         `json:"plugin,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type DownloadTaskResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Progress  float64   `json:"progress"`
	Plugin    string    `json:"plugin"`
	ClientID  string    `json:"client_id,omitempty"`
	SavePath  string    `json:"save_path"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListDownloadTasksResponse struct {
	Items  []DownloadTaskResponse `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

type DownloadsResponse struct {
	Downloads []plugin.DownloadRecord `json:"downloads"`
	Platforms []PlatformInfo          `json:"platforms"`
	Errors    map[string]string       `json:"errors,omitempty"`
}

type PlatformInfo struct {
	Name     string `json:"name"`
	WebUIURL string `json:"web_ui_url,omitempty"`
	Count    int    `json:"count"`
}

type EventResponse struct {
	ID         int64           `json:"id"`
	EventType  string          `json:"event_type"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt string          `json:"occurred_at"`
}

type ListEventsResponse struct {
	Items []EventResponse `json:"items"`
	Total int             `json:"total"`
}

// Status

func (c *Client) Status(check bool) (*StatusResponse, error) {
	var q url.Values
	if check {
		q = url.Values{"check": {"true"}}
	}
	var resp StatusResponse
	if err := c.get("/api/v1/status", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Plugins

func (c *Client) Plugins() (map[plugin.Type][]plugin.Info, error) {
	var resp map[plugin.Type][]plugin.Info
	if err := c.get("/api/v1/plugins", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) PluginsOfType(t plugin.Type) ([]plugin.Info, error) {
	var resp []plugin.Info
	if err := c.get(pluginPath(t), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) PluginConfig(t plugin.Type, name string) (*PluginConfigResponse, error) {
	var resp PluginConfigResponse
	if err := c.get(pluginPath(t, name, "config"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SetPluginConfig(t plugin.Type, name string, cfg plugin.Config) (*PluginConfigResponse, error) {
	var resp PluginConfigResponse
	if err := c.post(pluginPath(t, name, "config"), cfg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) TogglePlugin(t plugin.Type, name string, enabled bool) (*ToggleResponse, error) {
	var resp ToggleResponse
	q := url.Values{"enabled": {strconv.FormatBool(enabled)}}
	if err := c.do(http.MethodPost, pluginPath(t, name, "toggle"), q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) LoadPlugin(t plugin.Type, name string) (*plugin.Info, error) {
	var resp plugin.Info
	if err := c.post(pluginPath(t, name, "load"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UnloadPlugin(t plugin.Type, name string) error {
	return c.do(http.MethodDelete, pluginPath(t, name), nil, nil, nil)
}

func (c *Client) DiscoverPlugins() (*DiscoverResponse, error) {
	var resp DiscoverResponse
	if err := c.post("/api/v1/plugins/discover", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ReloadPlugins() (*DiscoverResponse, error) {
	var resp DiscoverResponse
	if err := c.post("/api/v1/plugins/reload", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func pluginPath(t plugin.Type, parts ...string) string {
	segs := []string{"/api/v1/plugins", url.PathEscape(string(t))}
	for _, p := range parts {
		segs = append(segs, url.PathEscape(p))
	}
	return strings.Join(segs, "/")
}

// Search

func (c *Client) Search(keyword string, plugins []string) (*SearchResponse, error) {
	q := url.Values{"keyword": {keyword}}
	if len(plugins) > 0 {
		q.Set("plugins", strings.Join(plugins, ","))
	}
	var resp SearchResponse
	if err := c.get("/api/v1/search", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SearchOne(name, keyword string) (*SearchResponse, error) {
	var resp SearchResponse
	q := url.Values{"keyword": {keyword}}
	if err := c.get("/api/v1/search/"+url.PathEscape(name), q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) VideoInfo(name, videoURL string) (*plugin.SearchResult, error) {
	var resp plugin.SearchResult
	q := url.Values{"url": {videoURL}}
	if err := c.get("/api/v1/video/"+url.PathEscape(name), q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateSearchTask(pluginName, keyword string) (*CreateTaskResponse, error) {
	var resp CreateTaskResponse
	body := map[string]string{"plugin": pluginName, "keyword": keyword}
	if err := c.post("/api/v1/search/tasks", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SearchTask(id string) (*tasks.SearchTask, error) {
	var resp tasks.SearchTask
	if err := c.get("/api/v1/search/tasks/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WaitSearchTask polls a task until it is terminal or timeout elapses.
func (c *Client) WaitSearchTask(id string, interval, timeout time.Duration) (*tasks.SearchTask, error) {
	deadline := time.Now().Add(timeout)
	for {
		task, err := c.SearchTask(id)
		if err != nil {
			return nil, err
		}
		if task.Status.IsTerminal() {
			return task, nil
		}
		if time.Now().After(deadline) {
			return task, fmt.Errorf("task %s still %s after %s", id, task.Status, timeout)
		}
		time.Sleep(interval)
	}
}

// Downloads

func (c *Client) Download(req DownloadRequest) (*DownloadTaskResponse, error) {
	var resp DownloadTaskResponse
	if err := c.post("/api/v1/downloads", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Downloads(platform string) (*DownloadsResponse, error) {
	var q url.Values
	if platform != "" {
		q = url.Values{"platform": {platform}}
	}
	var resp DownloadsResponse
	if err := c.get("/api/v1/downloads", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CancelDownload(platform, id string) error {
	body := map[string]string{"platform": platform, "download_id": id}
	return c.post("/api/v1/downloads/cancel", body, nil)
}

// TaskQuery filters the stored download tasks.
type TaskQuery struct {
	Plugin string
	Status string
	Active bool
	Limit  int
	Offset int
}

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	if q.Plugin != "" {
		v.Set("plugin", q.Plugin)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Active {
		v.Set("active", "true")
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

func (c *Client) DownloadTasks(q TaskQuery) (*ListDownloadTasksResponse, error) {
	var resp ListDownloadTasksResponse
	if err := c.get("/api/v1/downloads/tasks", q.values(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Events

func (c *Client) Events(limit int) (*ListEventsResponse, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var resp ListEventsResponse
	if err := c.get("/api/v1/events", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

