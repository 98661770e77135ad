// Package inventory feeds the inventory-browsing view: the item catalog
// behind the details panel and the highlight sets marking resources that
// are pending approval or on open orders.
package inventory

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Highlight kinds pushed to the browsing view.
const (
	KindPendingApproval = "pending_approval"
	KindOpenOrder       = "open_order"
)

// HighlightEvent carries one refreshed highlight set. An empty Codes slice
// clears the set for that department and kind.
type HighlightEvent struct {
	Department string   `json:"department"`
	Kind       string   `json:"kind"`
	Codes      []string `json:"codes"`
}

// Subscriber is one connected view waiting for highlight events.
type Subscriber struct {
	ID     string
	Events chan HighlightEvent
}

// Hub fans highlight events out to subscribed views and keeps the latest
// set per department so late subscribers can catch up from a snapshot.
type Hub struct {
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	pending     map[string][]string
	openOrders  map[string][]string
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger,
		subscribers: make(map[string]*Subscriber),
		pending:     make(map[string][]string),
		openOrders:  make(map[string][]string),
	}
}

// Subscribe registers a view and returns its subscriber handle. The event
// channel is buffered; a slow consumer drops events rather than blocking
// publishers.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{ID: uuid.NewString(), Events: make(chan HighlightEvent, 16)}
	h.mu.Lock()
	h.subscribers[sub.ID] = sub
	h.mu.Unlock()
	h.logger.Debug("highlight subscriber registered", slog.String("id", sub.ID))
	return sub
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subscribers[id]; ok {
		close(sub.Events)
		delete(h.subscribers, id)
	}
}

// PublishPendingItems replaces the pending-approval highlight set for a
// department and notifies subscribers.
func (h *Hub) PublishPendingItems(department string, codes []string) {
	h.publish(h.pending, department, KindPendingApproval, codes)
}

// PublishOpenOrderItems replaces the open-order highlight set for a
// department and notifies subscribers.
func (h *Hub) PublishOpenOrderItems(department string, codes []string) {
	h.publish(h.openOrders, department, KindOpenOrder, codes)
}

// HighlightSets is the current snapshot for one department.
type HighlightSets struct {
	Pending    []string `json:"pending_approval"`
	OpenOrders []string `json:"open_order"`
}

// Snapshot returns the latest highlight sets for a department.
func (h *Hub) Snapshot(department string) HighlightSets {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HighlightSets{
		Pending:    append([]string(nil), h.pending[department]...),
		OpenOrders: append([]string(nil), h.openOrders[department]...),
	}
}

func (h *Hub) publish(sets map[string][]string, department, kind string, codes []string) {
	event := HighlightEvent{Department: department, Kind: kind, Codes: codes}
	h.mu.Lock()
	sets[department] = append([]string(nil), codes...)
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subscribers {
		select {
		case sub.Events <- event:
		default:
			h.logger.Warn("highlight subscriber buffer full, dropping event",
				slog.String("id", sub.ID))
		}
	}
}
