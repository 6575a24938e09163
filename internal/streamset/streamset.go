// Package streamset implements the stream_clients subscription set from
// spec.md §3: a mapping from stream command id to the set of connections
// subscribed to it. The set is guarded by a single mutex held only for
// set-copy, insert, and remove — never across I/O, per spec.md §5's
// global lock order (stream_clients before any other lock).
package streamset

import (
	"sync"

	"golang.org/x/sys/unix"
)

// Subscriber is a connection that has completed the WebSocket upgrade
// for a stream channel and is now owned by the broadcast pump rather
// than by any reactor worker. It keeps the raw, non-blocking descriptor
// — not a stdlib net.Conn — so the pump can observe EAGAIN directly
// instead of having the Go runtime's poller mask it (spec.md §4.4's
// drop-on-backpressure policy depends on seeing that error).
type Subscriber struct {
	ID uint64
	fd int

	// writeMu serializes writes against concurrent eviction-time Close.
	writeMu sync.Mutex
}

// NewSubscriber wraps an already-upgraded, already-non-blocking
// descriptor for insertion into a Set.
func NewSubscriber(id uint64, fd int) *Subscriber {
	return &Subscriber{ID: id, fd: fd}
}

// Write sends b in one syscall.
func (s *Subscriber) Write(b []byte) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return unix.Write(s.fd, b)
}

// Close closes the underlying descriptor.
func (s *Subscriber) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return unix.Close(s.fd)
}

// Set is the process-wide stream_clients table.
type Set struct {
	mu     sync.Mutex
	byChan map[byte]map[uint64]*Subscriber
}

// New returns an empty subscription set.
func New() *Set {
	return &Set{byChan: make(map[byte]map[uint64]*Subscriber)}
}

// Insert adds sub to channel id's subscriber set. This is the only path
// by which a connection leaves reactor ownership and enters pump
// ownership (spec.md §3 invariant).
func (s *Set) Insert(id byte, sub *Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byChan[id]
	if !ok {
		m = make(map[uint64]*Subscriber)
		s.byChan[id] = m
	}
	m[sub.ID] = sub
}

// Snapshot copies the current subscriber set for channel id into a
// local slice and releases the lock before returning, so the caller can
// iterate and write without holding stream_clients.
func (s *Set) Snapshot(id byte) []*Subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.byChan[id]
	if len(m) == 0 {
		return nil
	}
	out := make([]*Subscriber, 0, len(m))
	for _, sub := range m {
		out = append(out, sub)
	}
	return out
}

// Remove deletes the given subscriber ids from channel id's set. It does
// not close connections or fire disconnect hooks — that is the pump's
// job: it closes a subscriber when its write fails, before calling
// Remove, and fires hooks after Remove has released this lock.
func (s *Set) Remove(id byte, ids ...uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.byChan[id]
	if m == nil {
		return
	}
	for _, connID := range ids {
		delete(m, connID)
	}
}

// Contains reports whether connID is currently subscribed to channel id.
// Exposed for tests asserting the no-double-ownership invariant.
func (s *Set) Contains(id byte, connID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.byChan[id]
	if m == nil {
		return false
	}
	_, ok := m[connID]
	return ok
}
