// Package events is a small in-process broadcast hub that feeds the
// dashboard WebSocket endpoint with capture activity.
package events

import (
	"sync"
	"time"
)

// Kind classifies an event.
type Kind string

const (
	RecordCreated Kind = "record_created"
	RecordUpdated Kind = "record_updated"
)

// Event is one capture activity notification.
type Event struct {
	Kind        Kind      `json:"kind"`
	RecordID    string    `json:"record_id"`
	LogicalType string    `json:"logical_type"`
	ActorID     string    `json:"actor_id"`
	At          time.Time `json:"at"`
}

// Hub fans events out to subscribers. Publish never blocks: a
// subscriber that falls behind misses events rather than stalling the
// capture flow.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber. The returned cancel func must
// be called when the subscriber goes away.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan Event, 16)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber with room in its buffer.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount returns the number of attached subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
