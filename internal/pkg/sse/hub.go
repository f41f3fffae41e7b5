package sse

import (
	"sync"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/tracking"
)

// AdminChannel receives the events of every company.
const AdminChannel = "admin"

// CompanyChannel is the channel of a single company's live events.
func CompanyChannel(companyID string) string {
	return "company:" + companyID
}

// Event represents an SSE event to be sent to subscribers
type Event struct {
	Channel string
	Event   string
	Data    interface{}
}

// Hub manages SSE subscribers and event broadcasting
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	buffer      int
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		buffer:      32,
	}
}

// Subscribe registers a new subscriber on channel and returns the event channel and cleanup function
func (h *Hub) Subscribe(channel string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer)

	if h.subscribers[channel] == nil {
		h.subscribers[channel] = make(map[chan Event]struct{})
	}
	h.subscribers[channel][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[channel], ch)
			close(ch)
			if len(h.subscribers[channel]) == 0 {
				delete(h.subscribers, channel)
			}
		})
	}

	return ch, cleanup
}

// Broadcast sends an event to all subscribers of a channel
func (h *Hub) Broadcast(channel string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.Channel = channel
	if subs, ok := h.subscribers[channel]; ok {
		for ch := range subs {
			select {
			case ch <- event:
			default:
				// Slow subscriber, drop rather than block the publisher.
			}
		}
	}
}

// Publish implements tracking.Publisher. Events go to the company channel and the admin channel.
func (h *Hub) Publish(companyID string, eventType string, event tracking.LiveEvent) {
	msg := Event{Event: eventType, Data: event}
	if companyID != "" {
		h.Broadcast(CompanyChannel(companyID), msg)
	}
	h.Broadcast(AdminChannel, msg)
}

// SubscriberCount returns the number of active subscribers on a channel
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[channel]; ok {
		return len(subs)
	}
	return 0
}

// TotalSubscribers returns the total number of active subscribers across all channels
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}

var _ tracking.Publisher = (*Hub)(nil)
