package dispatch

import (
	"fmt"
)

// buildResponse assembles a full HTTP response with the headers every
// response in this system carries: permissive CORS, a content type,
// Content-Length, and Connection: close (spec.md §4.2 "HTTP response
// discipline"). Keep-alive is never offered.
func buildResponse(status int, statusText, contentType string, body []byte) []byte {
	head := fmt.Sprintf("HTTP/1.1 %d %s\r\n"+
		"Access-Control-Allow-Origin: *\r\n"+
		"Content-Type: %s\r\n"+
		"Content-Length: %d\r\n"+
		"Connection: close\r\n\r\n",
		status, statusText, contentType, len(body))
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head...)
	out = append(out, body...)
	return out
}

func buildNotFound() []byte {
	return buildResponse(404, "Not Found", "application/octet-stream", nil)
}

// buildUpgradeResponse emits the 101 Switching Protocols reply that
// completes the RFC 6455 opening handshake (spec.md §4.2 step 2).
func buildUpgradeResponse(acceptKey string) []byte {
	return []byte("HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + acceptKey + "\r\n\r\n")
}
