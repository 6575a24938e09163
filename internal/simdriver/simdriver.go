// Package simdriver implements the fixed-tick simulation driver from
// spec.md §4.6: a dedicated thread that advances the rigid-body
// simulator at a fixed rate (60 Hz unless configured otherwise) under an explicit lock-release discipline,
// then publishes a snapshot of every active body to the shared
// world-snapshot slot, and a producer function the primary stream
// channel registers to read it back.
package simdriver

import (
	"encoding/binary"
	"math"
	"time"

	"corehub/internal/rigidbody"
	"corehub/internal/snapshot"
	"corehub/internal/worldstate"
)

const bodyRecordWidth = 8 + 8*3 + 8*4 // handle + position + quaternion

const tickRate = 60

// Driver owns the simulation thread. One instance per process, spawned
// by the entry point rather than by the server (spec.md §4.6: "a thread
// spawned by the process entry point, not by the server").
type Driver struct {
	world *worldstate.Registry
	sim   *rigidbody.Simulator
	slot  *snapshot.Slot
	rate  int

	stop chan struct{}
	done chan struct{}
}

// New builds a driver advancing sim, guarded by world's registry lock,
// publishing into slot at rateHz (defaults to 60).
func New(world *worldstate.Registry, sim *rigidbody.Simulator, slot *snapshot.Slot, rateHz int) *Driver {
	if rateHz < 1 {
		rateHz = tickRate
	}
	return &Driver{
		world: world,
		sim:   sim,
		slot:  slot,
		rate:  rateHz,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Run drives the simulation loop until Stop is called.
func (d *Driver) Run() {
	defer close(d.done)
	dt := 1.0 / float64(d.rate)
	period := time.Second / time.Duration(d.rate)
	deadline := time.Now().Add(period)
	for {
		select {
		case <-d.stop:
			return
		default:
		}
		d.tick(dt)
		now := time.Now()
		if wait := deadline.Sub(now); wait > 0 {
			time.Sleep(wait)
		}
		deadline = deadline.Add(period)
		if deadline.Before(now) {
			deadline = now.Add(period)
		}
	}
}

// Stop signals the loop to exit and waits for it to do so.
func (d *Driver) Stop() {
	close(d.stop)
	<-d.done
}

// Producer returns the stream producer function the primary stream
// channel registers. It never blocks: a momentarily busy slot or an
// empty slot (nothing published yet) both yield an empty payload, which
// the pump treats as "nothing to send this tick" (spec.md §4.6).
func (d *Driver) Producer() func() []byte {
	return func() []byte {
		payload, ok := d.slot.TryTake()
		if !ok {
			return nil
		}
		return payload
	}
}

// tick implements spec.md §4.6's split: full lock for reads/writes, no
// lock across the physics step.
func (d *Driver) tick(dt float64) {
	d.world.Lock()
	handles := d.world.ActiveLocked()
	d.world.Unlock()

	d.sim.Step(dt)

	d.world.Lock()
	for _, h := range handles {
		x, y, z := d.sim.Position(h)
		qx, qy, qz, qw := d.sim.Rotation(h)
		d.world.SetPoseLocked(h, worldstate.Pose{X: x, Y: y, Z: z, QX: qx, QY: qy, QZ: qz, QW: qw})
	}
	active := d.world.ActiveLocked()
	payload := encodeSnapshot(d.world, active)
	d.world.Unlock()

	d.slot.Publish(payload)
}

// encodeSnapshot packs one fixed-width record per active body. Caller
// must hold the registry lock.
func encodeSnapshot(world *worldstate.Registry, active []worldstate.Handle) []byte {
	buf := make([]byte, 0, len(active)*bodyRecordWidth)
	for _, h := range active {
		pose, ok := world.PoseLocked(h)
		if !ok {
			continue
		}
		var rec [bodyRecordWidth]byte
		binary.LittleEndian.PutUint64(rec[0:8], uint64(h))
		putFloat64(rec[8:16], pose.X)
		putFloat64(rec[16:24], pose.Y)
		putFloat64(rec[24:32], pose.Z)
		putFloat64(rec[32:40], pose.QX)
		putFloat64(rec[40:48], pose.QY)
		putFloat64(rec[48:56], pose.QZ)
		putFloat64(rec[56:64], pose.QW)
		buf = append(buf, rec[:]...)
	}
	return buf
}

func putFloat64(dst []byte, v float64) {
	binary.LittleEndian.PutUint64(dst, math.Float64bits(v))
}
