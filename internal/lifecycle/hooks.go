// Package lifecycle implements the disconnect hook list from spec.md
// §4.7: callbacks invoked on the pump thread when a stream subscriber is
// evicted. Hooks run after stream_clients has been released, honoring
// the global lock order stream_clients → hook-local locks → registry.
package lifecycle

import "sync"

// DisconnectHandler is invoked with the evicted connection's id.
type DisconnectHandler func(connID uint64)

// Hooks is an append-only list of disconnect handlers. Registration
// happens at startup alongside endpoint registration; Fire is called by
// the pump after evicting a subscriber.
type Hooks struct {
	mu       sync.Mutex
	handlers []DisconnectHandler
}

// New returns an empty hook list.
func New() *Hooks {
	return &Hooks{}
}

// OnDisconnect registers handler to run on every future eviction.
func (h *Hooks) OnDisconnect(handler DisconnectHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = append(h.handlers, handler)
}

// Fire runs every registered handler for connID, in registration order,
// on the calling goroutine (the pump thread). Handlers must not block
// and must not acquire the stream_clients lock.
func (h *Hooks) Fire(connID uint64) {
	h.mu.Lock()
	handlers := h.handlers
	h.mu.Unlock()
	for _, handler := range handlers {
		handler(connID)
	}
}
