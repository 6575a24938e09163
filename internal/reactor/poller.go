package reactor

// pollerBackend abstracts the OS readiness primitive. One implementation
// per OS satisfies it: epollBackend (poller_linux.go) or kqueueBackend
// (poller_darwin.go) — only one of those files compiles per target,
// selected by its build tag, same as the teacher's main_linux.go /
// main_darwin.go split.
type pollerBackend interface {
	// addReadable registers fd for readable-event notification.
	// edgeTriggered arms the platform's edge-triggered mode for
	// accepted connections; listener sockets register level-triggered
	// (spec.md §4.1 step 2).
	addReadable(fd int, edgeTriggered bool) error
	removeFD(fd int) error
	// wait blocks until at least one registered fd is readable and
	// returns their descriptors.
	wait() ([]int, error)
	close() error
}
