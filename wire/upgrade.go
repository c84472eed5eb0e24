package wire

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Upgrader is shared by both gateways (order-entry and market-data). The
// handshake itself — computing Sec-WebSocket-Accept from the client's key —
// is spec.md §6's one concretely-specified external contract; gorilla's
// Upgrader performs exactly that formula internally, so there is nothing
// left to hand-roll.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	// WriteWait bounds how long a single outbound frame write may block.
	WriteWait = 10 * time.Second
	// PongWait is how long the server waits for a pong before considering
	// the peer dead.
	PongWait = 60 * time.Second
	// PingPeriod must stay below PongWait so a ping always lands before the
	// peer's read deadline expires.
	PingPeriod = (PongWait * 9) / 10
	// MaxFrameBytes bounds a single inbound frame, matching the schema's
	// expectation that requests are small control messages, not payloads.
	MaxFrameBytes = 8192
)

// Upgrade promotes an HTTP request to a WebSocket connection using the
// shared Upgrader, applying the read-side limits every caller needs.
func Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(MaxFrameBytes)
	_ = conn.SetReadDeadline(time.Now().Add(PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(PongWait))
	})
	return conn, nil
}
