package reactor

import (
	"golang.org/x/sys/unix"
)

// Conn is a reactor-owned connection: a raw, non-blocking socket
// descriptor the worker reads and writes directly with syscalls. It is
// never wrapped in net.Conn while the reactor owns it, so the reactor's
// own poller — not the Go runtime's — is what decides when it is
// serviced.
type Conn struct {
	fd int
}

// NewConn wraps an already-accepted, already-non-blocking descriptor.
// worker.acceptAll is the only production caller; exported so
// internal/dispatch's tests can drive a Handler against a real
// socketpair without reaching into package-private fields.
func NewConn(fd int) *Conn { return &Conn{fd: fd} }

// ID returns the connection identifier handlers and lifecycle hooks see
// — the descriptor itself, per spec.md §3's "file descriptor or opaque
// handle".
func (c *Conn) ID() uint64 { return uint64(c.fd) }

// Read performs one non-blocking read directly on the descriptor. Used
// by the dispatcher's bounded Content-Length retry loop (spec.md §4.2)
// to pull additional body bytes within the same event.
func (c *Conn) Read(buf []byte) (int, error) {
	return unix.Read(c.fd, buf)
}

// Write performs one non-blocking write directly on the descriptor.
func (c *Conn) Write(buf []byte) (int, error) {
	return unix.Write(c.fd, buf)
}

// SetSendBuffer enlarges the socket's send buffer, used when a
// connection is upgraded into a stream subscriber (spec.md §4.2 step 2,
// 128 KiB).
func (c *Conn) SetSendBuffer(bytes int) error {
	return unix.SetsockoptInt(c.fd, unix.SOL_SOCKET, unix.SO_SNDBUF, bytes)
}

// Fd returns the raw descriptor for hand-off to the broadcast pump. The
// dispatcher inserts it into the subscriber set and returns
// ActionHandoff; the worker then deregisters it from its poller and
// forgets this *Conn without closing it, so ownership transfers in
// full once HandleData returns. The pump keeps writing
// to this fd directly with non-blocking syscalls; it is never wrapped
// in a stdlib net.Conn, which would hide EAGAIN behind the Go runtime's
// own poller and defeat the drop-on-backpressure policy (spec.md §4.4).
func (c *Conn) Fd() int { return c.fd }

// Close closes the descriptor directly. Only valid while the reactor
// still owns the connection (not after it has been handed off via Fd).
func (c *Conn) Close() error {
	return unix.Close(c.fd)
}
