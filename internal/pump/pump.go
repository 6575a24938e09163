// Package pump implements the single broadcast pump thread (spec.md
// §4.4): on a fixed cadence (60 Hz unless configured otherwise) it snapshots each stream channel's
// subscriber set, invokes the producer once, frames the payload once,
// and fans the same bytes out to every subscriber non-blockingly,
// evicting on short write or error and preserving on EAGAIN.
package pump

import (
	"time"

	"golang.org/x/sys/unix"

	"corehub/internal/lifecycle"
	"corehub/internal/registry"
	"corehub/internal/streamset"
	"corehub/internal/wsframe"
)

// Pump owns the broadcast loop. One instance per process, started after
// every reactor worker per spec.md §3's invariant.
type Pump struct {
	registry *registry.Registry
	streams  *streamset.Set
	hooks    *lifecycle.Hooks
	rate     int

	stop chan struct{}
	done chan struct{}
}

// New builds a pump that reads producers from reg, writes to subscribers
// tracked in streams, and fires hooks on eviction.
func New(reg *registry.Registry, streams *streamset.Set, hooks *lifecycle.Hooks, rateHz int) *Pump {
	if rateHz < 1 {
		rateHz = 60
	}
	return &Pump{
		registry: reg,
		streams:  streams,
		hooks:    hooks,
		rate:     rateHz,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run drives the pump loop until Stop is called. It is meant to be
// launched with `go p.Run()`.
func (p *Pump) Run() {
	defer close(p.done)
	period := time.Second / time.Duration(p.rate)
	deadline := time.Now().Add(period)
	for {
		select {
		case <-p.stop:
			return
		default:
		}
		p.tick()
		now := time.Now()
		if d := deadline.Sub(now); d > 0 {
			time.Sleep(d)
		}
		deadline = deadline.Add(period)
		// A long tick (GC pause, slow producer) can push the deadline
		// into the past; resync instead of firing a burst of ticks.
		if deadline.Before(now) {
			deadline = now.Add(period)
		}
	}
}

// Stop signals the loop to exit and blocks until it has.
func (p *Pump) Stop() {
	close(p.stop)
	<-p.done
}

func (p *Pump) tick() {
	for _, id := range p.registry.StreamIDs() {
		p.tickChannel(id)
	}
}

func (p *Pump) tickChannel(id byte) {
	subs := p.streams.Snapshot(id)
	if len(subs) == 0 {
		return
	}

	producer, ok := p.registry.Stream(id)
	if !ok {
		return
	}
	payload := producer()
	if len(payload) == 0 {
		return
	}
	frame := wsframe.Frame(payload)

	var evicted []uint64
	for _, sub := range subs {
		if !p.sendOne(sub, frame) {
			evicted = append(evicted, sub.ID)
		}
	}
	if len(evicted) == 0 {
		return
	}

	p.streams.Remove(id, evicted...)
	for _, connID := range evicted {
		p.hooks.Fire(connID)
	}
}

// sendOne writes frame to sub in one syscall. EAGAIN preserves the
// subscriber (transient backpressure, spec.md §4.4 step 5); a short
// write or any other error evicts it.
func (p *Pump) sendOne(sub *streamset.Subscriber, frame []byte) bool {
	n, err := sub.Write(frame)
	if err != nil {
		if err == unix.EAGAIN {
			return true
		}
		sub.Close()
		return false
	}
	if n != len(frame) {
		sub.Close()
		return false
	}
	return true
}
