package respond

import (
	"log/slog"
	"sync"
)

// Event types delivered to session watchers.
const (
	EventResponse = "response"
	EventClosed   = "closed"
)

// Event is one broadcast to session watchers.
type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Response  *Response `json:"response,omitempty"`
}

const subscriberBuffer = 16

// Hub fans session events out to live subscribers. Slow subscribers drop
// events rather than block the publisher.
type Hub struct {
	subscribers map[string]map[chan Event]struct{}
	mu          sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a watcher on one session. The returned cancel func
// must be called exactly once; the channel is closed by it.
func (h *Hub) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.subscribers[sessionID] == nil {
		h.subscribers[sessionID] = make(map[chan Event]struct{})
	}
	h.subscribers[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers[sessionID], ch)
			if len(h.subscribers[sessionID]) == 0 {
				delete(h.subscribers, sessionID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of its session.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[ev.SessionID] {
		select {
		case ch <- ev:
		default:
			slog.Warn("dropping event for slow subscriber", "session_id", ev.SessionID, "type", ev.Type)
		}
	}
}

// Watchers reports how many subscribers a session currently has.
func (h *Hub) Watchers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[sessionID])
}
