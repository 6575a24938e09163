// Package snapshot implements the single-slot shared world snapshot
// buffer from spec.md §3: the simulation driver publishes, the stream
// producer reads. The mutex is held only for the duration of the
// assignment or copy, never across the physics step or a network write.
package snapshot

import "sync"

// Slot holds the latest published payload and whether anything has ever
// been published.
type Slot struct {
	mu       sync.Mutex
	payload  []byte
	hasValue bool
}

// New returns an empty slot with no published value yet.
func New() *Slot {
	return &Slot{}
}

// Publish replaces the slot's contents. Called once per tick by the
// simulation driver, the sole writer.
func (s *Slot) Publish(payload []byte) {
	s.mu.Lock()
	s.payload = payload
	s.hasValue = true
	s.mu.Unlock()
}

// Take returns the most recently published payload. ok is false only
// when the simulation driver has never published — the stream producer
// treats that as "nothing to send this tick" per spec.md §4.6. The same
// snapshot may be returned across multiple ticks if the driver has not
// published again; that is by design — readers observe the most recent
// completed snapshot, not a one-shot queue.
func (s *Slot) Take() (payload []byte, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasValue {
		return nil, false
	}
	return s.payload, true
}

// TryTake is Take without blocking: it returns ok=false both when
// nothing has been published yet and when the slot's mutex is
// momentarily held by a concurrent Publish. The stream producer uses
// this so a busy writer can never stall the broadcast pump (spec.md
// §4.6, §9 "try-lock in stream producer").
func (s *Slot) TryTake() (payload []byte, ok bool) {
	if !s.mu.TryLock() {
		return nil, false
	}
	defer s.mu.Unlock()
	if !s.hasValue {
		return nil, false
	}
	return s.payload, true
}
