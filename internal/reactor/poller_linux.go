//go:build linux

package reactor

import "golang.org/x/sys/unix"

// epollBackend is the Linux readiness poller, one per worker.
type epollBackend struct {
	epfd   int
	events []unix.EpollEvent
}

func newPollerBackend() (pollerBackend, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollBackend{epfd: epfd, events: make([]unix.EpollEvent, 256)}, nil
}

func (b *epollBackend) addReadable(fd int, edgeTriggered bool) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if edgeTriggered {
		ev.Events |= unix.EPOLLET
	}
	return unix.EpollCtl(b.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (b *epollBackend) removeFD(fd int) error {
	return unix.EpollCtl(b.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (b *epollBackend) wait() ([]int, error) {
	for {
		n, err := unix.EpollWait(b.epfd, b.events, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		ready := make([]int, n)
		for i := 0; i < n; i++ {
			ready[i] = int(b.events[i].Fd)
		}
		return ready, nil
	}
}

func (b *epollBackend) close() error {
	return unix.Close(b.epfd)
}
