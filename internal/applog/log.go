// Package applog provides zero-fuss, allocation-light logging for
// connection lifecycle and startup/shutdown events.
//
// The core never logs on a hot path: the broadcast pump and the
// simulation driver stay silent every tick. Logging belongs to cold
// paths only — accept, bind failure, upgrade, eviction, shutdown.
package applog

import (
	"os"
	"time"
)

// Info writes an informational line of the form
// "HH:MM:SS.mmm PREFIX: message" (UTC timestamp first).
func Info(prefix, message string) {
	write(prefix, message)
}

// Warn writes a warning line. Used for recoverable per-connection errors.
func Warn(prefix, message string) {
	write(prefix, message)
}

// Error writes an error line, optionally including an underlying error.
func Error(prefix string, err error) {
	if err == nil {
		write(prefix, "")
		return
	}
	write(prefix, err.Error())
}

func write(prefix, message string) {
	stamp := time.Now().UTC().Format("15:04:05.000")
	var line string
	if message == "" {
		line = stamp + " " + prefix + "\n"
	} else {
		line = stamp + " " + prefix + ": " + message + "\n"
	}
	os.Stderr.WriteString(line)
}
