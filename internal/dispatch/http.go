// Package dispatch classifies inbound bytes as HTTP, raw binary command,
// or WebSocket upgrade traffic on the single listening port, and routes
// each to the registered command or stream, per spec.md §4.2. Parsing
// is done by hand, byte-by-byte, in the same zero-dependency style the
// teacher's utils.go scanners use for its JSON fast path — no
// net/http, since the same port also carries raw binary frames net/http
// cannot coexist with.
package dispatch

import "bytes"

var (
	prefixGet     = []byte("GET ")
	prefixPost    = []byte("POST ")
	prefixOptions = []byte("OPTIONS ")
	spaceSlash    = []byte(" /")
	headerEnd     = []byte("\r\n\r\n")
)

// isHTTP reports whether buf opens with one of the three recognized
// HTTP methods. Anything else is classified as a raw binary command
// (spec.md §4.2).
func isHTTP(buf []byte) bool {
	return bytes.HasPrefix(buf, prefixGet) ||
		bytes.HasPrefix(buf, prefixPost) ||
		bytes.HasPrefix(buf, prefixOptions)
}

// isOptions reports whether buf is an OPTIONS preflight request.
func isOptions(buf []byte) bool {
	return bytes.HasPrefix(buf, prefixOptions)
}

// commandIDFromHTTP extracts the single-byte command id from an HTTP
// request line: the byte immediately following the first " /" sequence.
// A bare "/" (next byte is a space) denotes id 0.
func commandIDFromHTTP(buf []byte) (id byte, ok bool) {
	idx := bytes.Index(buf, spaceSlash)
	if idx < 0 {
		return 0, false
	}
	pos := idx + 2
	if pos >= len(buf) {
		return 0, false
	}
	if buf[pos] == ' ' {
		return 0, true
	}
	return buf[pos], true
}

// commandIDFromRaw extracts the command id from a raw binary request:
// simply the first byte.
func commandIDFromRaw(buf []byte) (id byte, body []byte, ok bool) {
	if len(buf) == 0 {
		return 0, nil, false
	}
	return buf[0], buf[1:], true
}

// headerSection returns the header bytes (everything before the blank
// line) and the offset where the body begins, or ok=false if the
// terminating blank line has not arrived yet.
func headerSection(buf []byte) (headers []byte, bodyStart int, ok bool) {
	idx := bytes.Index(buf, headerEnd)
	if idx < 0 {
		return nil, 0, false
	}
	return buf[:idx], idx + len(headerEnd), true
}

// headerValue performs a case-insensitive search for "name:" within
// headers and returns the trimmed value up to the next CRLF.
func headerValue(headers []byte, name string) (string, bool) {
	lower := bytes.ToLower(headers)
	key := append([]byte(toLower(name)), ':')
	idx := bytes.Index(lower, key)
	if idx < 0 {
		return "", false
	}
	rest := headers[idx+len(key):]
	end := bytes.IndexByte(rest, '\r')
	if end < 0 {
		end = len(rest)
	}
	return string(bytes.TrimSpace(rest[:end])), true
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// hasUpgradeHeader reports whether the headers request a WebSocket
// upgrade, matched case-insensitively per spec.md §4.2.
func hasUpgradeHeader(headers []byte) bool {
	v, ok := headerValue(headers, "Upgrade")
	if !ok {
		return false
	}
	return toLower(v) == "websocket"
}

// contentLength parses the Content-Length header, if present.
func contentLength(headers []byte) (int, bool) {
	v, ok := headerValue(headers, "Content-Length")
	if !ok {
		return 0, false
	}
	n := 0
	for _, c := range []byte(v) {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
