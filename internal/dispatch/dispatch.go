package dispatch

import (
	"time"

	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/sys/unix"

	"corehub/internal/reactor"
	"corehub/internal/registry"
	"corehub/internal/streamset"
	"corehub/internal/wsframe"
)

// Handler implements reactor.Dispatcher: it classifies inbound bytes as
// raw binary, HTTP, or WebSocket upgrade traffic and routes each to the
// registry, per spec.md §4.2's dispatch rules. One Handler is shared by
// every reactor worker; it holds no per-connection state of its own.
type Handler struct {
	registry *registry.Registry
	streams  *streamset.Set

	bodyRetries    int
	bodyRetryDelay time.Duration
	sendBuffer     int
}

// New builds a Handler wired to reg for command/stream lookup and
// contract introspection, and to streams for upgrading connections into
// pump-owned subscribers.
func New(reg *registry.Registry, streams *streamset.Set, bodyRetries int, bodyRetryDelay time.Duration, sendBuffer int) *Handler {
	return &Handler{
		registry:       reg,
		streams:        streams,
		bodyRetries:    bodyRetries,
		bodyRetryDelay: bodyRetryDelay,
		sendBuffer:     sendBuffer,
	}
}

type healthStatus struct {
	Status string `json:"status"`
}

var (
	healthBody  = mustMarshalHealth()
	optionsResp = []byte("HTTP/1.1 204 No Content\r\n" +
		"Access-Control-Allow-Origin: *\r\n" +
		"Access-Control-Allow-Methods: POST, GET, OPTIONS\r\n" +
		"Access-Control-Allow-Headers: Content-Type\r\n" +
		"Connection: close\r\n\r\n")
)

// mustMarshalHealth encodes the id-0 health body once at package init
// time with sonnet, the encoding/json-compatible decoder/encoder the
// teacher's syncharvester package uses for its hot JSON path.
func mustMarshalHealth() []byte {
	b, err := sonnet.Marshal(healthStatus{Status: "ok"})
	if err != nil {
		return []byte(`{"status":"ok"}`)
	}
	return b
}

// HandleData is the single entry point the reactor calls with one
// event's worth of bytes. It never blocks except for the bounded
// Content-Length retry loop below.
func (h *Handler) HandleData(conn *reactor.Conn, data []byte) reactor.Outcome {
	if !isHTTP(data) {
		return h.handleRaw(conn, data)
	}
	return h.handleHTTP(conn, data)
}

func (h *Handler) handleRaw(conn *reactor.Conn, data []byte) reactor.Outcome {
	id, body, ok := commandIDFromRaw(data)
	if !ok {
		return reactor.Outcome{Action: reactor.ActionClose}
	}
	if id == registry.IntrospectionID {
		return reactor.Outcome{Reply: h.registry.ContractImage(), Action: reactor.ActionClose}
	}
	cmd, ok := h.registry.Command(id)
	if !ok {
		return reactor.Outcome{Action: reactor.ActionClose}
	}
	reply := cmd(conn.ID(), body)
	return reactor.Outcome{Reply: reply, Action: reactor.ActionClose}
}

func (h *Handler) handleHTTP(conn *reactor.Conn, data []byte) reactor.Outcome {
	if isOptions(data) {
		return reactor.Outcome{Reply: optionsResp, Action: reactor.ActionClose}
	}

	headers, bodyStart, haveHeaders := headerSection(data)
	if !haveHeaders {
		return reactor.Outcome{Reply: buildNotFound(), Action: reactor.ActionClose}
	}

	if hasUpgradeHeader(headers) {
		return h.handleUpgrade(conn, data, headers)
	}

	id, ok := commandIDFromHTTP(data)
	if !ok {
		return reactor.Outcome{Reply: buildNotFound(), Action: reactor.ActionClose}
	}

	body := h.collectBody(conn, data[bodyStart:], headers)

	switch {
	case id == registry.HealthID:
		return reactor.Outcome{Reply: buildResponse(200, "OK", "application/json", healthBody), Action: reactor.ActionClose}
	case id == registry.IntrospectionID:
		return reactor.Outcome{Reply: buildResponse(200, "OK", "application/octet-stream", h.registry.ContractImage()), Action: reactor.ActionClose}
	}

	cmd, ok := h.registry.Command(id)
	if !ok {
		return reactor.Outcome{Reply: buildNotFound(), Action: reactor.ActionClose}
	}
	reply := cmd(conn.ID(), body)
	return reactor.Outcome{Reply: buildResponse(200, "OK", "application/octet-stream", reply), Action: reactor.ActionClose}
}

// collectBody returns the body bytes already present in the initial
// read, extended — honoring Content-Length — by additional non-blocking
// reads directly off the connection with a bounded spin-sleep retry
// budget (spec.md §4.2, the system's one bounded wait).
func (h *Handler) collectBody(conn *reactor.Conn, body []byte, headers []byte) []byte {
	want, ok := contentLength(headers)
	if !ok || len(body) >= want {
		return body
	}
	buf := make([]byte, want)
	copy(buf, body)
	have := len(body)
	scratch := make([]byte, want-have)
	retries := 0
	for have < want && retries <= h.bodyRetries {
		n, err := conn.Read(scratch[:want-have])
		if err != nil {
			if err == unix.EAGAIN {
				retries++
				time.Sleep(h.bodyRetryDelay)
				continue
			}
			break
		}
		if n == 0 {
			break
		}
		copy(buf[have:], scratch[:n])
		have += n
	}
	return buf[:have]
}

func (h *Handler) handleUpgrade(conn *reactor.Conn, data, headers []byte) reactor.Outcome {
	key, ok := headerValue(headers, "Sec-WebSocket-Key")
	if !ok {
		return reactor.Outcome{Action: reactor.ActionClose}
	}
	accept := wsframe.AcceptKey(key)
	resp := buildUpgradeResponse(accept)

	id, ok := commandIDFromHTTP(data)
	if !ok || !h.registry.IsStream(id) {
		return reactor.Outcome{Reply: resp, Action: reactor.ActionClose}
	}

	if err := writeAllDirect(conn, resp); err != nil {
		return reactor.Outcome{Action: reactor.ActionClose}
	}
	if err := conn.SetSendBuffer(h.sendBuffer); err != nil {
		return reactor.Outcome{Action: reactor.ActionClose}
	}
	h.streams.Insert(id, streamset.NewSubscriber(conn.ID(), conn.Fd()))
	return reactor.Outcome{Action: reactor.ActionHandoff}
}

func writeAllDirect(conn *reactor.Conn, buf []byte) error {
	for len(buf) > 0 {
		n, err := conn.Write(buf)
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
