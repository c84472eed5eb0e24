package engine

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"lobcore/session"
	"lobcore/wire"
)

// ServeOrderEntry upgrades r to a WebSocket connection and runs the
// order-entry session loop (spec.md §4.5): handshake, then read A/X/C
// frames and dispatch each under the engine's lock until the client
// disconnects or the engine stops.
func (e *Engine) ServeOrderEntry(w http.ResponseWriter, r *http.Request) {
	conn, err := wire.Upgrade(w, r)
	if err != nil {
		e.Log.Warn().Err(err).Msg("order-entry upgrade failed")
		return
	}

	s := session.New()
	s.Handshaken = true
	e.Sessions.Add(s)
	e.Log.Info().Str("trader_id", s.TraderID.String()).Msg("order-entry client connected")

	done := make(chan struct{})
	go e.writePump(conn, s, done)

	defer func() {
		close(done)
		e.Sessions.Remove(s.TraderID)
		_ = conn.Close()
		e.Log.Info().Str("trader_id", s.TraderID.String()).Msg("order-entry client disconnected")
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		env, err := wire.DecodeEnvelope(raw)
		if err != nil {
			continue
		}

		switch env.MessageType {
		case wire.TypeAdd:
			req, err := wire.DecodeAddOrModify(raw)
			if err != nil {
				continue
			}
			e.Lock()
			session.HandleAdd(s, req, e, e.Sessions, e.Queue, e.Now())
			e.Unlock()
		case wire.TypeCancel:
			req, err := wire.DecodeCancel(raw)
			if err != nil {
				continue
			}
			e.Lock()
			session.HandleCancel(s, req, e, e.Queue, e.Now())
			e.Unlock()
		case wire.TypeConfig:
			e.Lock()
			session.HandleConfigure(s)
			e.Unlock()
		default:
			// Not an order-entry message type; dropped per spec.md §7's
			// "malformed frame" handling (an unknown type on this gateway
			// is treated the same as a schema failure).
		}
	}
}

// ServeMarketData upgrades r to a WebSocket connection and runs the
// market-data subscription loop (spec.md §4.6): handshake, then read
// subscribe/unsubscribe frames until disconnect.
func (e *Engine) ServeMarketData(w http.ResponseWriter, r *http.Request) {
	conn, err := wire.Upgrade(w, r)
	if err != nil {
		e.Log.Warn().Err(err).Msg("market-data upgrade failed")
		return
	}

	s := session.New()
	s.Handshaken = true
	e.Sessions.Add(s)
	e.Log.Info().Str("trader_id", s.TraderID.String()).Msg("market-data client connected")

	done := make(chan struct{})
	go e.writePump(conn, s, done)

	defer func() {
		close(done)
		e.Sessions.Remove(s.TraderID)
		_ = conn.Close()
		e.Log.Info().Str("trader_id", s.TraderID.String()).Msg("market-data client disconnected")
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		env, err := wire.DecodeEnvelope(raw)
		if err != nil {
			continue
		}

		switch env.MessageType {
		case wire.TypeSubscribe:
			req, err := wire.DecodeSubscribe(raw)
			if err != nil {
				continue
			}
			e.Lock()
			session.HandleSubscribe(s, req, e)
			e.Unlock()
		case wire.TypeUnsubscribe:
			req, err := wire.DecodeSubscribe(raw)
			if err != nil {
				continue
			}
			e.Lock()
			session.HandleUnsubscribe(s, req)
			e.Unlock()
		default:
		}
	}
}

// writePump drains a session's outbox onto its socket outside the engine's
// lock (spec.md §9(c)) and keeps the connection alive with periodic pings.
func (e *Engine) writePump(conn *websocket.Conn, s *session.Session, done <-chan struct{}) {
	ticker := time.NewTicker(wire.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-e.stop:
			return
		case msg := <-s.Outbox():
			_ = conn.SetWriteDeadline(time.Now().Add(wire.WriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wire.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
