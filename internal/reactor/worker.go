package reactor

import (
	"golang.org/x/sys/unix"

	"corehub/internal/applog"
)

// worker owns one listening socket, one poller, and every connection it
// has accepted and not yet closed or handed off (spec.md §4.1).
type worker struct {
	id          int
	lfd         int
	wakeFD      int // read end; Pool.Stop writes a byte here to break wait()
	backend     pollerBackend
	conns       map[int]*Conn
	readScratch int
	dispatcher  Dispatcher
	stop        <-chan struct{}
}

func (w *worker) run() {
	for {
		select {
		case <-w.stop:
			return
		default:
		}
		ready, err := w.backend.wait()
		if err != nil {
			applog.Error("reactor: poll wait", err)
			return
		}
		for _, fd := range ready {
			switch fd {
			case w.lfd:
				w.acceptAll()
			case w.wakeFD:
				return
			default:
				w.service(fd)
			}
		}
	}
}

// acceptAll drains every pending connection off the listener (spec.md
// §4.1 step 3: "drain all pending accepts"). accept failures are
// logged and retried on the next poll wake, never fatal to the worker.
func (w *worker) acceptAll() {
	for {
		cfd, _, err := unix.Accept4(w.lfd, unix.SOCK_NONBLOCK)
		if err != nil {
			if err == unix.EAGAIN {
				return
			}
			applog.Error("reactor: accept", err)
			return
		}
		unix.SetsockoptInt(cfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
		if err := w.backend.addReadable(cfd, true); err != nil {
			unix.Close(cfd)
			continue
		}
		w.conns[cfd] = NewConn(cfd)
	}
}

// service reads everything currently available on fd and hands it to
// the dispatcher. Reading stops on EAGAIN (drained) or a short read
// (likely drained); either EOF or EAGAIN-with-nothing-read closes the
// connection per spec.md §4.1 cases (i) and (ii).
func (w *worker) service(fd int) {
	c, ok := w.conns[fd]
	if !ok {
		return
	}

	scratch := make([]byte, w.readScratch)
	var data []byte
	gotAny := false
	for {
		n, err := unix.Read(fd, scratch)
		if err != nil {
			if err == unix.EAGAIN {
				if !gotAny {
					w.closeConn(fd)
					return
				}
				break
			}
			w.closeConn(fd)
			return
		}
		if n == 0 {
			w.closeConn(fd)
			return
		}
		gotAny = true
		data = append(data, scratch[:n]...)
		if n < len(scratch) {
			break
		}
	}

	outcome := w.dispatcher.HandleData(c, data)
	switch outcome.Action {
	case ActionHandoff:
		w.backend.removeFD(fd)
		delete(w.conns, fd)
	default:
		if len(outcome.Reply) > 0 {
			writeAll(c, outcome.Reply)
		}
		w.closeConn(fd)
	}
}

func (w *worker) closeConn(fd int) {
	w.backend.removeFD(fd)
	if c, ok := w.conns[fd]; ok {
		c.Close()
		delete(w.conns, fd)
	}
}

// writeAll loops a non-blocking write until buf is fully sent or an
// error (other than EAGAIN) occurs. Reply bodies here are small enough
// (HTTP headers, fixed-width handler responses) that this rarely spins
// more than once.
func writeAll(c *Conn, buf []byte) error {
	for len(buf) > 0 {
		n, err := c.Write(buf)
		if err != nil {
			if err == unix.EAGAIN {
				continue
			}
			return err
		}
		buf = buf[n:]
	}
	return nil
}
