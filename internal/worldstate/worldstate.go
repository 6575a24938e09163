// Package worldstate is the minimal concrete stand-in for the "entity
// registry" external collaborator spec.md names only by interface
// (§1 Out of scope). It owns the process-wide registry lock described in
// §3 and §5: a single mutex serializing all access to entity storage,
// consulted by gameplay handlers and by the simulation driver, with
// try-lock semantics available to the pump's stream producer so it
// never blocks on a writer.
package worldstate

import "sync"

// Handle names one live entity. It doubles as the rigid-body handle: the
// simulator's Create takes this handle rather than minting its own,
// keeping the mapping between the two collaborators trivial.
type Handle uint64

// Pose is the transform written back after each physics step.
type Pose struct {
	X, Y, Z          float64
	QX, QY, QZ, QW   float64
}

// Registry is the shared, lockable entity store.
type Registry struct {
	mu     sync.Mutex
	poses  map[Handle]Pose
	active map[Handle]bool
	owner  map[Handle]uint64 // entity -> owning connection id, for disconnect cleanup
	next   uint64
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		poses:  make(map[Handle]Pose),
		active: make(map[Handle]bool),
		owner:  make(map[Handle]uint64),
	}
}

// Lock acquires the registry lock. Handlers and the simulation driver
// follow the documented order: registry → (no further locks).
func (r *Registry) Lock() { r.mu.Lock() }

// Unlock releases the registry lock.
func (r *Registry) Unlock() { r.mu.Unlock() }

// TryLock attempts to acquire the registry lock without blocking. The
// primary stream producer does not take this lock at all: it reads the
// snapshot slot with snapshot.Slot.TryTake instead.
func (r *Registry) TryLock() bool { return r.mu.TryLock() }

// CreateLocked allocates a new entity owned by connID. Caller must hold
// the lock.
func (r *Registry) CreateLocked(connID uint64) Handle {
	r.next++
	h := Handle(r.next)
	r.poses[h] = Pose{}
	r.active[h] = true
	r.owner[h] = connID
	return h
}

// DestroyLocked removes an entity. Caller must hold the lock.
func (r *Registry) DestroyLocked(h Handle) {
	delete(r.poses, h)
	delete(r.active, h)
	delete(r.owner, h)
}

// SetPoseLocked writes back a transform. Caller must hold the lock.
func (r *Registry) SetPoseLocked(h Handle, p Pose) {
	if _, ok := r.active[h]; ok {
		r.poses[h] = p
	}
}

// PoseLocked reads a transform. Caller must hold the lock.
func (r *Registry) PoseLocked(h Handle) (Pose, bool) {
	p, ok := r.poses[h]
	return p, ok
}

// ActiveLocked returns every active entity handle. Caller must hold the
// lock. The simulation driver uses this to build a snapshot of only
// active bodies (spec.md §4.6).
func (r *Registry) ActiveLocked() []Handle {
	out := make([]Handle, 0, len(r.active))
	for h, on := range r.active {
		if on {
			out = append(out, h)
		}
	}
	return out
}

// EntitiesOwnedByLocked returns every entity owned by connID. Caller
// must hold the lock. Used by disconnect hooks to release a departed
// connection's entities.
func (r *Registry) EntitiesOwnedByLocked(connID uint64) []Handle {
	var out []Handle
	for h, owner := range r.owner {
		if owner == connID {
			out = append(out, h)
		}
	}
	return out
}
