// Package watch fans out collection-change notifications. Subscribers
// re-read the collection on notification; the hub never carries data,
// only the fact that a collection changed.
package watch

import (
	"sync"
	"time"
)

// Collection names emitted by the persistence layer.
const (
	CollectionQuotes   = "quotes"
	CollectionProjects = "projects"
	CollectionUsers    = "users"
)

// Event signals that a collection changed.
type Event struct {
	Collection string    `json:"collection"`
	At         time.Time `json:"at"`
}

// Hub is an in-process broadcast of change events. A nil Hub is valid and
// drops all notifications.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned cancel func must be called
// to release the subscription.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Changed notifies all subscribers that a collection changed. Slow
// subscribers with full buffers miss the event; they catch up on the next
// re-read.
func (h *Hub) Changed(collection string) {
	if h == nil {
		return
	}
	ev := Event{Collection: collection, At: time.Now()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
