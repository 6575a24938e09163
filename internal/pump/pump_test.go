package pump

import (
	"bytes"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"corehub/internal/lifecycle"
	"corehub/internal/registry"
	"corehub/internal/streamset"
)

func socketpair(t *testing.T) (local, peer int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		t.Fatalf("set nonblock: %v", err)
	}
	if err := unix.SetNonblock(fds[1], true); err != nil {
		t.Fatalf("set nonblock: %v", err)
	}
	t.Cleanup(func() { unix.Close(fds[1]) })
	return fds[0], fds[1]
}

func TestTickDeliversFrameToSubscriber(t *testing.T) {
	reg := registry.New()
	reg.RegisterStream('W', "world", 0, "", func() []byte { return []byte("hello") })
	reg.Start()

	streams := streamset.New()
	local, peer := socketpair(t)
	sub := streamset.NewSubscriber(1, local)
	streams.Insert('W', sub)

	p := New(reg, streams, lifecycle.New(), 60)
	p.tick()

	buf := make([]byte, 64)
	deadline := time.Now().Add(time.Second)
	var n int
	var err error
	for time.Now().Before(deadline) {
		n, err = unix.Read(peer, buf)
		if err == nil {
			break
		}
		if err == unix.EAGAIN {
			time.Sleep(time.Millisecond)
			continue
		}
		t.Fatalf("read: %v", err)
	}
	if err != nil {
		t.Fatalf("never received a frame: %v", err)
	}
	if !bytes.HasSuffix(buf[:n], []byte("hello")) {
		t.Fatalf("frame payload = %q, want suffix %q", buf[:n], "hello")
	}
	if buf[0] != 0x82 {
		t.Fatalf("frame opcode byte = %#x, want 0x82", buf[0])
	}
}

func TestTickSkipsEmptyPayload(t *testing.T) {
	reg := registry.New()
	reg.RegisterStream('W', "world", 0, "", func() []byte { return nil })
	reg.Start()

	streams := streamset.New()
	local, peer := socketpair(t)
	streams.Insert('W', streamset.NewSubscriber(1, local))

	p := New(reg, streams, lifecycle.New(), 60)
	p.tick()

	buf := make([]byte, 16)
	_, err := unix.Read(peer, buf)
	if err != unix.EAGAIN {
		t.Fatalf("expected EAGAIN (nothing sent), got %v", err)
	}
}

func TestTickEvictsOnClosedPeer(t *testing.T) {
	reg := registry.New()
	reg.RegisterStream('W', "world", 0, "", func() []byte { return []byte("hello") })
	reg.Start()

	streams := streamset.New()
	local, peer := socketpair(t)
	unix.Close(peer) // peer gone before the pump ever writes

	streams.Insert('W', streamset.NewSubscriber(42, local))

	var fired []uint64
	hooks := lifecycle.New()
	hooks.OnDisconnect(func(connID uint64) { fired = append(fired, connID) })

	p := New(reg, streams, hooks, 60)
	// A few ticks: the first write may succeed into the socket buffer
	// before the peer's close is observed as ECONNRESET/EPIPE.
	for i := 0; i < 5 && streams.Contains('W', 42); i++ {
		p.tick()
	}

	if streams.Contains('W', 42) {
		t.Fatal("expected subscriber to be evicted after peer closed")
	}
	if len(fired) != 1 || fired[0] != 42 {
		t.Fatalf("disconnect hooks fired = %v, want [42]", fired)
	}
}
