// Command server is the process entry point: it loads configuration,
// opens the relational store, wires the external collaborator stand-ins
// (entity registry, rigid-body simulator), registers the demonstration
// command and stream endpoints, and starts the reactor pool, broadcast
// pump, and simulation driver. The simulation driver is spawned here
// directly rather than by the server, per spec.md §4.6.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"corehub/internal/applog"
	"corehub/internal/config"
	"corehub/internal/handlers"
	"corehub/internal/lifecycle"
	"corehub/internal/registry"
	"corehub/internal/rigidbody"
	"corehub/internal/server"
	"corehub/internal/simdriver"
	"corehub/internal/snapshot"
	"corehub/internal/store"
	"corehub/internal/streamset"
	"corehub/internal/worldstate"
)

// worldStreamID names the primary stream channel: the simulation
// driver's per-tick snapshot of active bodies.
const worldStreamID byte = 'W'

func main() {
	cfg := config.FromEnv()

	db, err := store.Open(cfg.StorePath)
	if err != nil {
		applog.Error("server: open store", err)
		os.Exit(1)
	}
	defer db.Close()

	world := worldstate.New()
	sim := rigidbody.New()
	slot := snapshot.New()
	driver := simdriver.New(world, sim, slot, cfg.TickRate)

	reg := registry.New()
	streams := streamset.New()
	hooks := lifecycle.New()

	reg.RegisterCommand('1', "weather", 24, "date:u32", "date:u32,temp_c:i32,summary:char[16]", handlers.Weather(db))
	reg.RegisterCommand('2', "user", 0, "id:u64", "name:bytes", handlers.User(db))
	reg.RegisterStream(worldStreamID, "world_snapshot", 0, "handle:u64,pos:f64[3],quat:f64[4]", driver.Producer())

	hooks.OnDisconnect(func(connID uint64) {
		world.Lock()
		owned := world.EntitiesOwnedByLocked(connID)
		for _, h := range owned {
			world.DestroyLocked(h)
			sim.Destroy(h)
		}
		world.Unlock()
	})

	srv := server.New(cfg, reg, streams, hooks)
	srv.Start()
	go driver.Run()

	applog.Info("server", "listening")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	applog.Info("server", "shutting down")
	srv.Stop()
	driver.Stop()
}
