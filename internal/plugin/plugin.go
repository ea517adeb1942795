// Package plugin defines the provider capability contract and the registry
// that owns live provider instances.
package plugin

import (
	"context"
	"fmt"
	"strings"
)

//go:generate mockgen -source=plugin.go -destination=mocks/mock_plugin.go -package=mocks

// Type is a capability category.
type Type string

const (
	TypeSearch   Type = "search"
	TypeDownload Type = "download"
	TypeParser   Type = "parser"
)

// Types lists every capability type in a stable order.
var Types = []Type{TypeSearch, TypeDownload, TypeParser}

// ParseType converts a string to a Type.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeSearch, TypeDownload, TypeParser:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// FieldKind is the value kind of a config field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindPassword FieldKind = "password"
	KindNumber   FieldKind = "number"
	KindBoolean  FieldKind = "boolean"
	KindSelect   FieldKind = "select"
	KindList     FieldKind = "list"
)

// ConfigField declares one entry of a provider's config schema.
// Fields is only meaningful for KindList and describes each list item.
type ConfigField struct {
	Key         string        `json:"name"`
	Label       string        `json:"label"`
	Kind        FieldKind     `json:"type"`
	Default     any           `json:"default,omitempty"`
	Required    bool          `json:"required"`
	Options     []string      `json:"options,omitempty"`
	Description string        `json:"description,omitempty"`
	Fields      []ConfigField `json:"fields,omitempty"`
}

// Provider is the part of the contract shared by every capability.
type Provider interface {
	Name() string
	Version() string
	Description() string
	ConfigSchema() []ConfigField
	// SetConfig replaces the working configuration. Callers merge with
	// stored values before calling; providers never merge.
	SetConfig(cfg Config)
}

// Searcher finds videos on a catalog.
type Searcher interface {
	Provider
	Search(ctx context.Context, keyword string) ([]SearchResult, error)
	VideoInfo(ctx context.Context, url string) (*SearchResult, error)
}

// Downloader hands work to an external download daemon.
type Downloader interface {
	Provider
	SupportedProtocols() []string
	// Download submits the task. On accept the provider moves the task to
	// DownloadDownloading and records its native id in Metadata[MetaClientID].
	// On reject it marks the task failed and returns an error.
	Download(ctx context.Context, task *DownloadTask) error
	Progress(ctx context.Context, clientID string) (*Progress, error)
	Cancel(ctx context.Context, clientID string) error
	Downloads(ctx context.Context) ([]DownloadRecord, error)
	WebUIURL() string
}

// Parser turns a play URL into resolved links. It must not do network I/O
// and returns nil for input it does not handle.
type Parser interface {
	Provider
	ParseURL(url string) []ParsedLink
}

// ConfigStore persists provider config keyed by (type, name).
type ConfigStore interface {
	// Get returns an empty Config when nothing is stored.
	Get(ctx context.Context, t Type, name string) (Config, error)
	Set(ctx context.Context, t Type, name string, cfg Config) error
	// IsEnabled defaults to true unless the stored config sets _enabled=false.
	IsEnabled(ctx context.Context, t Type, name string) (bool, error)
	SetEnabled(ctx context.Context, t Type, name string, enabled bool) error
	Delete(ctx context.Context, t Type, name string) error
}

// ShapeOf reports which capability a provider implements.
func ShapeOf(p Provider) (Type, error) {
	var found []Type
	if _, ok := p.(Searcher); ok {
		found = append(found, TypeSearch)
	}
	if _, ok := p.(Downloader); ok {
		found = append(found, TypeDownload)
	}
	if _, ok := p.(Parser); ok {
		found = append(found, TypeParser)
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%s: %w", p.Name(), ErrNoProvider)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%s implements %v: %w", p.Name(), found, ErrAmbiguousProvider)
	}
}

// Implements reports whether p satisfies capability t.
func Implements(p Provider, t Type) bool {
	switch t {
	case TypeSearch:
		_, ok := p.(Searcher)
		return ok
	case TypeDownload:
		_, ok := p.(Downloader)
		return ok
	case TypeParser:
		_, ok := p.(Parser)
		return ok
	}
	return false
}

// Key returns the composite store key for a provider.
func Key(t Type, name string) string {
	return string(t) + ":" + name
}
