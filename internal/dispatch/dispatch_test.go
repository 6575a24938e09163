package dispatch

import (
	"bytes"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"corehub/internal/reactor"
	"corehub/internal/registry"
	"corehub/internal/streamset"
)

// newConnPair returns a *reactor.Conn wrapping one end of a connected,
// non-blocking socketpair, and the raw peer fd a test drives directly —
// standing in for "the other side of the TCP connection" without a real
// listener.
func newConnPair(t *testing.T) (*reactor.Conn, int) {
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
	return reactor.NewConn(fds[0]), fds[1]
}

func readAll(t *testing.T, fd int) []byte {
	t.Helper()
	var out []byte
	buf := make([]byte, 4096)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN {
				if len(out) > 0 {
					return out
				}
				time.Sleep(time.Millisecond)
				continue
			}
			return out
		}
		if n == 0 {
			return out
		}
		out = append(out, buf[:n]...)
	}
	return out
}

func newTestHandler() (*Handler, *registry.Registry, *streamset.Set) {
	reg := registry.New()
	reg.RegisterCommand('1', "echo", 0, "", "", func(connID uint64, req []byte) []byte {
		return append([]byte("echo:"), req...)
	})
	reg.RegisterStream('W', "world", 0, "", func() []byte { return nil })
	reg.Start()
	streams := streamset.New()
	return New(reg, streams, 10, time.Microsecond, 128<<10), reg, streams
}

func TestRawCommandDispatch(t *testing.T) {
	h, _, _ := newTestHandler()
	conn, peer := newConnPair(t)
	defer conn.Close()

	outcome := h.HandleData(conn, append([]byte{'1'}, []byte("hi")...))
	if outcome.Action != reactor.ActionClose {
		t.Fatalf("action = %v, want ActionClose", outcome.Action)
	}
	if string(outcome.Reply) != "echo:hi" {
		t.Fatalf("reply = %q, want %q", outcome.Reply, "echo:hi")
	}
	_ = peer
}

func TestRawUnknownCommandCloses(t *testing.T) {
	h, _, _ := newTestHandler()
	conn, _ := newConnPair(t)
	defer conn.Close()

	outcome := h.HandleData(conn, []byte{'9'})
	if outcome.Action != reactor.ActionClose {
		t.Fatalf("action = %v, want ActionClose", outcome.Action)
	}
	if len(outcome.Reply) != 0 {
		t.Fatalf("expected empty reply for unknown raw id, got %q", outcome.Reply)
	}
}

func TestHTTPHealthCheck(t *testing.T) {
	h, _, _ := newTestHandler()
	conn, _ := newConnPair(t)
	defer conn.Close()

	req := []byte("GET / HTTP/1.1\r\n\r\n")
	outcome := h.HandleData(conn, req)
	if !bytes.Contains(outcome.Reply, []byte("200 OK")) {
		t.Fatalf("expected 200 OK, got %q", outcome.Reply)
	}
	if !bytes.Contains(outcome.Reply, []byte(`{"status":"ok"}`)) {
		t.Fatalf("expected health body, got %q", outcome.Reply)
	}
}

func TestHTTPCommandDispatch(t *testing.T) {
	h, _, _ := newTestHandler()
	conn, _ := newConnPair(t)
	defer conn.Close()

	req := []byte("GET /1 HTTP/1.1\r\n\r\n")
	outcome := h.HandleData(conn, req)
	if !bytes.Contains(outcome.Reply, []byte("200 OK")) {
		t.Fatalf("expected 200 OK, got %q", outcome.Reply)
	}
	if !bytes.Contains(outcome.Reply, []byte("echo:")) {
		t.Fatalf("expected handler body, got %q", outcome.Reply)
	}
}

func TestHTTPUnknownCommandNotFound(t *testing.T) {
	h, _, _ := newTestHandler()
	conn, _ := newConnPair(t)
	defer conn.Close()

	req := []byte("GET /9 HTTP/1.1\r\n\r\n")
	outcome := h.HandleData(conn, req)
	if !bytes.Contains(outcome.Reply, []byte("404 Not Found")) {
		t.Fatalf("expected 404, got %q", outcome.Reply)
	}
}

func TestHTTPOptionsPreflight(t *testing.T) {
	h, _, _ := newTestHandler()
	conn, _ := newConnPair(t)
	defer conn.Close()

	req := []byte("OPTIONS /1 HTTP/1.1\r\n\r\n")
	outcome := h.HandleData(conn, req)
	if !bytes.Contains(outcome.Reply, []byte("204 No Content")) {
		t.Fatalf("expected 204, got %q", outcome.Reply)
	}
	if !bytes.Contains(outcome.Reply, []byte("Access-Control-Allow-Methods")) {
		t.Fatalf("expected CORS headers, got %q", outcome.Reply)
	}
}

func TestIntrospectionOverHTTP(t *testing.T) {
	h, reg, _ := newTestHandler()
	conn, _ := newConnPair(t)
	defer conn.Close()

	req := []byte("GET /? HTTP/1.1\r\n\r\n")
	outcome := h.HandleData(conn, req)
	if !bytes.Contains(outcome.Reply, []byte("200 OK")) {
		t.Fatalf("expected 200 OK, got %q", outcome.Reply)
	}
	want := reg.ContractImage()
	if !bytes.HasSuffix(outcome.Reply, want) {
		t.Fatalf("expected reply to end with contract image of length %d", len(want))
	}
}

func TestWebSocketUpgradeOnStreamHandsOff(t *testing.T) {
	h, _, streams := newTestHandler()
	conn, peer := newConnPair(t)
	t.Cleanup(func() { unix.Close(conn.Fd()) })

	req := []byte("GET /W HTTP/1.1\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n\r\n")
	outcome := h.HandleData(conn, req)
	if outcome.Action != reactor.ActionHandoff {
		t.Fatalf("action = %v, want ActionHandoff", outcome.Action)
	}
	if !streams.Contains('W', conn.ID()) {
		t.Fatal("expected connection inserted into stream_clients['W']")
	}

	resp := readAll(t, peer)
	if !bytes.Contains(resp, []byte("101 Switching Protocols")) {
		t.Fatalf("expected 101 response, got %q", resp)
	}
	if !bytes.Contains(resp, []byte("s3pPLMBiTxaQ9kYGzzhZRbK+xOo=")) {
		t.Fatalf("expected matching accept key, got %q", resp)
	}
}

func TestWebSocketUpgradeOnUnknownStreamCloses(t *testing.T) {
	h, _, streams := newTestHandler()
	conn, peer := newConnPair(t)
	defer conn.Close()

	req := []byte("GET /Z HTTP/1.1\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n\r\n")
	outcome := h.HandleData(conn, req)
	if outcome.Action != reactor.ActionClose {
		t.Fatalf("action = %v, want ActionClose", outcome.Action)
	}
	if !bytes.Contains(outcome.Reply, []byte("101 Switching Protocols")) {
		t.Fatalf("expected handshake to still complete, got %q", outcome.Reply)
	}
	if streams.Contains('Z', conn.ID()) {
		t.Fatal("unregistered stream id must not be inserted into stream_clients")
	}
	_ = peer
}
