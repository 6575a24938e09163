// Package config resolves runtime tunables once at startup. There is no
// hot-reload and no runtime registration, matching the rule that
// commands, streams, and contracts are fixed before the reactor starts.
package config

import (
	"os"
	"strconv"
	"time"
)

const (
	// DefaultPort is the single TCP port that serves raw, HTTP, and
	// WebSocket-upgrade traffic.
	DefaultPort = 8081

	// DefaultBacklog is the accept backlog passed to listen on each
	// worker listener.
	DefaultBacklog = 1024

	// DefaultTickRate is the simulation driver's fixed tick frequency in Hz.
	DefaultTickRate = 60

	// DefaultPumpRate is the broadcast pump's fixed cadence in Hz.
	DefaultPumpRate = 60

	// DefaultReadScratch is the size of the per-event read buffer.
	DefaultReadScratch = 8 << 10

	// DefaultUpgradeSendBuffer is the enlarged send buffer applied to a
	// socket once it is handed off to the broadcast pump.
	DefaultUpgradeSendBuffer = 128 << 10

	// DefaultBodyRetries bounds the Content-Length body-collection spin.
	DefaultBodyRetries = 10

	// DefaultBodyRetryDelay is the sleep between body-collection retries.
	DefaultBodyRetryDelay = 100 * time.Microsecond
)

// Config captures every tunable the core reads at startup.
type Config struct {
	Port              int
	Workers           int
	Backlog           int
	TickRate          int
	PumpRate          int
	ReadScratch       int
	UpgradeSendBuffer int
	BodyRetries       int
	BodyRetryDelay    time.Duration
	StorePath         string
}

// FromEnv resolves a Config from the process environment, falling back
// to the package defaults for anything unset or malformed.
func FromEnv() Config {
	return Config{
		Port:              envInt("COREHUB_PORT", DefaultPort),
		Workers:           envInt("COREHUB_WORKERS", 0), // 0 means hardware-concurrency
		Backlog:           envInt("COREHUB_BACKLOG", DefaultBacklog),
		TickRate:          envInt("COREHUB_TICK_RATE", DefaultTickRate),
		PumpRate:          envInt("COREHUB_PUMP_RATE", DefaultPumpRate),
		ReadScratch:       envInt("COREHUB_READ_SCRATCH", DefaultReadScratch),
		UpgradeSendBuffer: envInt("COREHUB_UPGRADE_SNDBUF", DefaultUpgradeSendBuffer),
		BodyRetries:       envInt("COREHUB_BODY_RETRIES", DefaultBodyRetries),
		BodyRetryDelay:    DefaultBodyRetryDelay,
		StorePath:         envString("COREHUB_STORE_PATH", "corehub.db"),
	}
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envString(name, fallback string) string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	return raw
}
