package sse

import (
	"sync"
)

// Event is one server-sent event pushed to a site's manager feed.
type Event struct {
	SiteID string
	Event  string
	Data   interface{}
}

// Hub fans events out to the live subscribers of each site.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a listener for a site's feed and returns the event
// channel and a cleanup function.
func (h *Hub) Subscribe(siteID string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	if h.subscribers[siteID] == nil {
		h.subscribers[siteID] = make(map[chan Event]struct{})
	}
	h.subscribers[siteID][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[siteID], ch)
		close(ch)
		if len(h.subscribers[siteID]) == 0 {
			delete(h.subscribers, siteID)
		}
	}

	return ch, cleanup
}

// Publish sends an event to every subscriber of the site. Slow subscribers
// are skipped rather than blocked on.
func (h *Hub) Publish(siteID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[siteID]; ok {
		for ch := range subs {
			select {
			case ch <- event:
			default:
			}
		}
	}
}
