// Package reactor implements the multi-acceptor reactor pool: W worker
// threads, each with its own readiness poller, all bound to the same
// port via SO_REUSEPORT so the kernel spreads accept load across them
// (spec.md §4.1, §9). Each worker owns the connections it accepts for
// their lifetime, except those handed off to the broadcast pump after a
// WebSocket upgrade.
//
// The poller itself is platform-specific (epoll on Linux, kqueue on
// Darwin/BSD) and lives in poller_linux.go / poller_darwin.go, mirroring
// the teacher's main_linux.go / main_darwin.go build-tag split.
package reactor

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// listen opens a fresh non-blocking listening socket bound to port,
// with address and port reuse enabled so every worker can bind the
// same port independently (spec.md §4.1 step 1).
func listen(port, backlog int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("reactor: socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("reactor: SO_REUSEADDR: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("reactor: SO_REUSEPORT: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port}); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("reactor: bind: %w", err)
	}
	if backlog < 1 {
		backlog = 1
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("reactor: listen: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("reactor: set nonblock: %w", err)
	}
	return fd, nil
}
