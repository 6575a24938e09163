// Package rigidbody is the minimal concrete stand-in for the
// "rigid-body simulator" external collaborator spec.md names only by
// interface (§1 Out of scope): step(dt), body position/rotation
// getters, create/destroy body. A real physics engine is explicitly out
// of scope; this is a trivial Euler integrator, just enough for the
// simulation driver in internal/simdriver to have something real to
// advance each tick.
package rigidbody

import (
	"sync"

	"corehub/internal/worldstate"
)

// body holds the integration state for one rigid body.
type body struct {
	x, y, z          float64
	vx, vy, vz       float64
	qx, qy, qz, qw   float64
}

// Simulator advances a flat set of bodies under straight-line motion.
// Every method takes the simulator's own mutex. The simulation driver
// calls Step with the registry lock released, per spec.md §4.6; the
// disconnect hook in cmd/server calls Destroy while holding it.
type Simulator struct {
	mu     sync.Mutex
	bodies map[worldstate.Handle]*body
}

// New returns an empty simulator.
func New() *Simulator {
	return &Simulator{bodies: make(map[worldstate.Handle]*body)}
}

// Create allocates a body at the origin with zero velocity and unit
// rotation, keyed by the caller-supplied handle (the entity registry's
// handle, so the two collaborators share identity).
func (s *Simulator) Create(h worldstate.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[h] = &body{qw: 1}
}

// Destroy removes a body.
func (s *Simulator) Destroy(h worldstate.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bodies, h)
}

// SetVelocity sets a body's linear velocity, used by gameplay handlers
// to steer an entity between ticks.
func (s *Simulator) SetVelocity(h worldstate.Handle, vx, vy, vz float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bodies[h]; ok {
		b.vx, b.vy, b.vz = vx, vy, vz
	}
}

// Step advances every body by dt seconds of straight-line motion. It
// takes its own lock only around the iteration, and is the one call the
// simulation driver makes with the registry lock released (spec.md
// §4.6's "no lock across the physics step").
func (s *Simulator) Step(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bodies {
		b.x += b.vx * dt
		b.y += b.vy * dt
		b.z += b.vz * dt
	}
}

// Position returns a body's current position.
func (s *Simulator) Position(h worldstate.Handle) (x, y, z float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bodies[h]
	if !ok {
		return 0, 0, 0
	}
	return b.x, b.y, b.z
}

// Rotation returns a body's current orientation quaternion.
func (s *Simulator) Rotation(h worldstate.Handle) (x, y, z, w float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bodies[h]
	if !ok {
		return 0, 0, 0, 1
	}
	return b.qx, b.qy, b.qz, b.qw
}
