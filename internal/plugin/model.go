package plugin

import "time"

// SearchResult is one hit from a Searcher.
type SearchResult struct {
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	Thumbnail   string         `json:"thumbnail,omitempty"`
	Duration    string         `json:"duration,omitempty"`
	Platform    string         `json:"platform"`
	Description string         `json:"description,omitempty"`
	Episodes    []Episode      `json:"episodes,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Episode is a playable unit of a search result.
type Episode struct {
	Name       string       `json:"episode_name"`
	PlayURL    string       `json:"play_url"`
	Flag       string       `json:"flag,omitempty"`
	IsM3U8     bool         `json:"is_m3u8"`
	ParsedURLs []ParsedLink `json:"parsed_urls,omitempty"`
}

// ParsedLink is a resolved link produced by a Parser.
type ParsedLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DownloadStatus tracks a download task.
type DownloadStatus string

const (
	DownloadPending     DownloadStatus = "pending"
	DownloadDownloading DownloadStatus = "downloading"
	DownloadCompleted   DownloadStatus = "completed"
	DownloadFailed      DownloadStatus = "failed"
)

// validDownloadTransitions defines allowed state transitions.
var validDownloadTransitions = map[DownloadStatus][]DownloadStatus{
	DownloadPending:     {DownloadDownloading, DownloadFailed},
	DownloadDownloading: {DownloadCompleted, DownloadFailed},
	DownloadCompleted:   {}, // terminal
	DownloadFailed:      {}, // terminal
}

// CanTransitionTo returns true if transitioning from s to target is valid.
func (s DownloadStatus) CanTransitionTo(target DownloadStatus) bool {
	for _, v := range validDownloadTransitions[s] {
		if v == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true for completed and failed.
func (s DownloadStatus) IsTerminal() bool {
	return s == DownloadCompleted || s == DownloadFailed
}

// MetaClientID is the metadata key a Downloader stores its native id under.
const MetaClientID = "client_id"

// DownloadTask is a unit of download work handed to a Downloader.
type DownloadTask struct {
	ID         string         `json:"id"`
	URL        string         `json:"url"`
	Title      string         `json:"title"`
	Status     DownloadStatus `json:"status"`
	Progress   float64        `json:"progress"`
	PluginName string         `json:"plugin_name"`
	SavePath   string         `json:"save_path"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ClientID returns the provider-native id recorded on accept.
func (t *DownloadTask) ClientID() string {
	if t.Metadata == nil {
		return ""
	}
	id, _ := t.Metadata[MetaClientID].(string)
	return id
}

// SetClientID records the provider-native id.
func (t *DownloadTask) SetClientID(id string) {
	if t.Metadata == nil {
		t.Metadata = make(map[string]any)
	}
	t.Metadata[MetaClientID] = id
}

// Progress is a provider's view of one download. Status is the provider's
// own vocabulary mapped onto pending, downloading, completed, failed or paused.
type Progress struct {
	Progress float64 `json:"progress"`
	Status   string  `json:"status"`
	Error    string  `json:"error,omitempty"`
}

// DownloadRecord is a provider-native listing entry.
type DownloadRecord struct {
	ID        string    `json:"id"`
	Platform  string    `json:"platform"`
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"`
	Status    string    `json:"status"`
	Progress  float64   `json:"progress"`
	Size      int64     `json:"size,omitempty"`
	Speed     int64     `json:"speed,omitempty"`
	ETA       int64     `json:"eta,omitempty"`
	SavePath  string    `json:"save_path,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}
