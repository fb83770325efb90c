package live

import (
	"sync"

	"github.com/rogerio-castellano/inventory-dashboard/internal/inventory"
)

// Update is what SSE clients receive after each recompute.
type Update struct {
	Event     string                      `json:"event"`
	Dashboard inventory.DashboardSnapshot `json:"dashboard"`
}

// Hub fans updates out to subscribers. Each update fully supersedes the previous
// one, so a slow subscriber loses its oldest pending update rather than blocking.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan Update
	nextID int
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 4
	}
	return &Hub{subs: map[int]chan Update{}, buffer: buffer}
}

func (h *Hub) Subscribe() (<-chan Update, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Update, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			h.mu.Unlock()
		})
	}
}

func (h *Hub) Broadcast(u Update) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- u:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
