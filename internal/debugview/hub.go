package debugview

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Hub fans published snapshots out to debug subscribers. Publish is called
// from the game loop; subscribers live on HTTP goroutines.
type Hub struct {
	mu          sync.RWMutex
	last        []byte
	subscribers map[chan []byte]struct{}
	log         *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[chan []byte]struct{}),
		log:         log,
	}
}

// Publish encodes s once and offers it to every subscriber. Slow subscribers
// miss frames rather than stall the game loop.
func (h *Hub) Publish(s Snapshot) {
	data, err := json.Marshal(s)
	if err != nil {
		h.log.Error("encode debug snapshot", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.last = data
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers {
		select {
		case ch <- data:
		default:
		}
	}
}

// Last returns the most recently published snapshot, or nil.
func (h *Hub) Last() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

// Subscribe registers a new subscriber channel.
func (h *Hub) Subscribe() chan []byte {
	ch := make(chan []byte, 16)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes ch.
func (h *Hub) Unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
