package control

import "sync"

// Hub fans snapshots out to listeners. Snapshots are delivered in the order
// they were enqueued, one at a time, even when a listener publishes again from
// inside its callback or several goroutines publish at once.
type Hub struct {
	mu        sync.Mutex
	listeners []subscription
	nextID    int
	queue     []Status
	draining  bool
	closed    bool
}

type subscription struct {
	id       int
	listener Listener
}

// Subscribe adds a listener and returns its removal function.
func (h *Hub) Subscribe(l Listener) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || l == nil {
		return func() {}
	}

	h.nextID++
	id := h.nextID
	h.listeners = append(h.listeners, subscription{id: id, listener: l})

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, s := range h.listeners {
				if s.id == id {
					h.listeners = append(h.listeners[:i:i], h.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish enqueues s and delivers everything pending.
func (h *Hub) Publish(s Status) {
	h.enqueue(s)
	h.flush()
}

func (h *Hub) enqueue(s Status) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.queue = append(h.queue, s)
	}
}

// flush delivers the queue on the calling goroutine unless another goroutine
// is already draining it.
func (h *Hub) flush() {
	h.mu.Lock()
	if h.draining {
		h.mu.Unlock()
		return
	}
	h.draining = true

	for len(h.queue) > 0 && !h.closed {
		next := h.queue[0]
		h.queue = h.queue[1:]
		listeners := make([]subscription, len(h.listeners))
		copy(listeners, h.listeners)
		h.mu.Unlock()

		for _, s := range listeners {
			s.listener(next)
		}

		h.mu.Lock()
	}

	h.draining = false
	h.mu.Unlock()
}

// Close drops all listeners and pending snapshots.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.listeners = nil
	h.queue = nil
}
