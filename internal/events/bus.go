package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Bus is the in-process pub/sub hub.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event // eventType -> channels
	allSubs     []chan Event
	log         *EventLog // may be nil
	logger      *slog.Logger
	closed      bool
}

// NewBus creates an event bus. Pass a nil EventLog to disable persistence.
func NewBus(log *EventLog, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subscribers: make(map[string][]chan Event),
		log:         log,
		logger:      logger,
	}
}

// Publish persists e and delivers it to subscribers. Delivery never blocks;
// a full subscriber channel drops the event.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return nil
	}
	subs := slices.Concat(b.subscribers[e.EventType()], b.allSubs)
	b.mu.RUnlock()

	if b.log != nil {
		if _, err := b.log.Append(ctx, e); err != nil {
			// delivery continues without persistence
			b.logger.Error("failed to persist event", "type", e.EventType(), "error", err)
		}
	}

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
			b.logger.Warn("subscriber channel full, dropping event",
				"type", e.EventType(),
				"entity_type", e.EntityType(),
				"entity_id", e.EntityID())
		}
	}
	return nil
}

// Subscribe returns a channel for events of one type.
func (b *Bus) Subscribe(eventType string, bufferSize int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, bufferSize)
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	return ch
}

// SubscribeAll returns a channel for every event.
func (b *Bus) SubscribeAll(bufferSize int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, bufferSize)
	b.allSubs = append(b.allSubs, ch)
	return ch
}

// Unsubscribe removes and closes a subscription channel.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	match := func(sub chan Event) bool { return sub == ch }
	for eventType, subs := range b.subscribers {
		if i := slices.IndexFunc(subs, match); i >= 0 {
			close(subs[i])
			b.subscribers[eventType] = slices.Delete(subs, i, i+1)
			return
		}
	}
	if i := slices.IndexFunc(b.allSubs, match); i >= 0 {
		close(b.allSubs[i])
		b.allSubs = slices.Delete(b.allSubs, i, i+1)
	}
}

// Close shuts the bus down and closes every subscriber channel.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	for _, ch := range b.allSubs {
		close(ch)
	}
	b.subscribers = nil
	b.allSubs = nil
	return nil
}
