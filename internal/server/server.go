// Package server composes the core engine's pieces — registry,
// dispatcher, reactor pool, and broadcast pump — into the single object
// the entry point starts and stops. It does not own the simulation
// driver: spec.md §4.6 spawns that thread from the process entry point,
// independently of the server.
package server

import (
	"corehub/internal/config"
	"corehub/internal/dispatch"
	"corehub/internal/lifecycle"
	"corehub/internal/pump"
	"corehub/internal/reactor"
	"corehub/internal/registry"
	"corehub/internal/streamset"
)

// Server owns the reactor pool and the broadcast pump.
type Server struct {
	Registry *registry.Registry
	Streams  *streamset.Set
	Hooks    *lifecycle.Hooks

	reactor *reactor.Pool
	pump    *pump.Pump
}

// New wires the dispatcher, reactor pool, and pump from cfg. reg must
// have every command and stream registered already; New calls
// reg.Start(), after which further registration panics (spec.md §4.3).
func New(cfg config.Config, reg *registry.Registry, streams *streamset.Set, hooks *lifecycle.Hooks) *Server {
	reg.Start()

	h := dispatch.New(reg, streams, cfg.BodyRetries, cfg.BodyRetryDelay, cfg.UpgradeSendBuffer)
	pool := reactor.New(cfg.Port, cfg.Backlog, cfg.Workers, cfg.ReadScratch, h)
	p := pump.New(reg, streams, hooks, cfg.PumpRate)

	return &Server{
		Registry: reg,
		Streams:  streams,
		Hooks:    hooks,
		reactor:  pool,
		pump:     p,
	}
}

// Start spawns every reactor worker, then the broadcast pump — spec.md
// §3's invariant that the pump starts only after all workers exist.
func (s *Server) Start() {
	s.reactor.Start()
	go s.pump.Run()
}

// Stop tears down the reactor workers first, waits for them to exit,
// then stops the pump — the mirror image of Start, per the same
// invariant.
func (s *Server) Stop() {
	s.reactor.Stop()
	s.reactor.Wait()
	s.pump.Stop()
}
