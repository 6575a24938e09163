package reactor

import (
	"runtime"
	"sync"

	"golang.org/x/sys/unix"

	"corehub/internal/applog"
)

// Pool is the reactor pool: W workers, each independently bound to the
// same port via SO_REUSEPORT (spec.md §4.1, §9 "shared listener across
// workers").
type Pool struct {
	port        int
	backlog     int
	workers     int
	readScratch int
	dispatcher  Dispatcher

	wg      sync.WaitGroup
	stop    chan struct{}
	mu      sync.Mutex
	wakeFDs []int // write end of each worker's wake pipe, for Stop
}

// New builds a pool. workers <= 0 defaults to hardware concurrency,
// matching spec.md §4.1's "W = max(1, hardware-concurrency)".
func New(port, backlog, workers, readScratch int, d Dispatcher) *Pool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if readScratch < 1 {
		readScratch = 8 << 10
	}
	return &Pool{
		port:        port,
		backlog:     backlog,
		workers:     workers,
		readScratch: readScratch,
		dispatcher:  d,
		stop:        make(chan struct{}),
	}
}

// Start spawns all workers. Each binds its own listener independently;
// a bind failure aborts only that worker (spec.md §4.1 "Failure modes").
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}
}

// Stop signals every worker to exit and wakes each one out of its
// blocking poll wait by writing to its wake pipe — a self-pipe, the
// standard way to interrupt an epoll_wait/kevent that would otherwise
// block indefinitely with no registered traffic.
func (p *Pool) Stop() {
	close(p.stop)
	p.mu.Lock()
	fds := p.wakeFDs
	p.mu.Unlock()
	for _, fd := range fds {
		unix.Write(fd, []byte{0})
	}
}

// Wait blocks until every worker has exited.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) runWorker(id int) {
	defer p.wg.Done()

	lfd, err := listen(p.port, p.backlog)
	if err != nil {
		applog.Error("reactor: worker bind failed", err)
		return
	}
	defer unix.Close(lfd)

	backend, err := newPollerBackend()
	if err != nil {
		applog.Error("reactor: poller create failed", err)
		return
	}
	defer backend.close()

	if err := backend.addReadable(lfd, false); err != nil {
		applog.Error("reactor: register listener failed", err)
		return
	}

	wakeR, wakeW, err := pipe2()
	if err != nil {
		applog.Error("reactor: wake pipe create failed", err)
		return
	}
	defer unix.Close(wakeR)
	defer unix.Close(wakeW)
	if err := backend.addReadable(wakeR, false); err != nil {
		applog.Error("reactor: register wake pipe failed", err)
		return
	}
	p.mu.Lock()
	p.wakeFDs = append(p.wakeFDs, wakeW)
	p.mu.Unlock()

	w := &worker{
		id:          id,
		lfd:         lfd,
		wakeFD:      wakeR,
		backend:     backend,
		conns:       make(map[int]*Conn),
		readScratch: p.readScratch,
		dispatcher:  p.dispatcher,
		stop:        p.stop,
	}
	w.run()
}

// pipe2 returns a non-blocking pipe. unix.Pipe2's O_NONBLOCK flag is
// Linux-only, so both ends are set non-blocking explicitly afterward to
// keep this portable to the Darwin/BSD build.
func pipe2() (r, w int, err error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return -1, -1, err
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return -1, -1, err
	}
	if err := unix.SetNonblock(fds[1], true); err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return -1, -1, err
	}
	return fds[0], fds[1], nil
}
