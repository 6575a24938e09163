//go:build darwin

package reactor

import "golang.org/x/sys/unix"

// kqueueBackend is the Darwin/BSD readiness poller, one per worker.
type kqueueBackend struct {
	kq     int
	events []unix.Kevent_t
}

func newPollerBackend() (pollerBackend, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	return &kqueueBackend{kq: kq, events: make([]unix.Kevent_t, 256)}, nil
}

func (b *kqueueBackend) addReadable(fd int, edgeTriggered bool) error {
	flags := unix.EV_ADD | unix.EV_ENABLE
	if edgeTriggered {
		flags |= unix.EV_CLEAR
	}
	change := unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: uint16(flags)}
	_, err := unix.Kevent(b.kq, []unix.Kevent_t{change}, nil, nil)
	return err
}

func (b *kqueueBackend) removeFD(fd int) error {
	change := unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_DELETE}
	_, err := unix.Kevent(b.kq, []unix.Kevent_t{change}, nil, nil)
	return err
}

func (b *kqueueBackend) wait() ([]int, error) {
	for {
		n, err := unix.Kevent(b.kq, nil, b.events, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		ready := make([]int, n)
		for i := 0; i < n; i++ {
			ready[i] = int(b.events[i].Ident)
		}
		return ready, nil
	}
}

func (b *kqueueBackend) close() error {
	return unix.Close(b.kq)
}
