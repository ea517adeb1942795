package events

import (
	"encoding/json"
	"fmt"
)

// EventFactory creates a new zero-value event of a specific type.
type EventFactory func() Event

// Registry maps event types to their factories for deserialization.
type Registry struct {
	factories map[string]EventFactory
}

// NewRegistry creates an empty event registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]EventFactory)}
}

// Register adds an event type to the registry.
func (r *Registry) Register(eventType string, factory EventFactory) {
	r.factories[eventType] = factory
}

// Unmarshal decodes a persisted event into its concrete type.
func (r *Registry) Unmarshal(raw RawEvent) (Event, error) {
	factory, ok := r.factories[raw.EventType]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", raw.EventType)
	}
	event := factory()
	if err := json.Unmarshal([]byte(raw.Payload), event); err != nil {
		return nil, fmt.Errorf("unmarshal event payload: %w", err)
	}
	return event, nil
}

// DefaultRegistry returns a registry with every event type of this package.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(EventPluginRegistered, func() Event { return &PluginRegistered{} })
	r.Register(EventPluginUnregistered, func() Event { return &PluginUnregistered{} })
	r.Register(EventSearchTaskTransitioned, func() Event { return &SearchTaskTransitioned{} })
	r.Register(EventDownloadCreated, func() Event { return &DownloadCreated{} })
	r.Register(EventDownloadProgressed, func() Event { return &DownloadProgressed{} })
	r.Register(EventDownloadCompleted, func() Event { return &DownloadCompleted{} })
	r.Register(EventDownloadFailed, func() Event { return &DownloadFailed{} })
	return r
}

// Known reports whether eventType has a registered factory.
func (r *Registry) Known(eventType string) bool {
	_, ok := r.factories[eventType]
	return ok
}
