package engine

import (
	"encoding/json"
	"time"

	"lobcore/marketdata"
	"lobcore/metrics"
)

// DisplayStyle selects what, if anything, the dispatcher logs after each
// drain pass (config.Config.Display, SPEC_FULL.md "Display modes").
type DisplayStyle string

const (
	DisplayNone     DisplayStyle = "NONE"
	DisplayBook     DisplayStyle = "BOOK"
	DisplayMessages DisplayStyle = "MESSAGES"
)

// RunDispatcher is C8's dedicated worker loop (spec.md §4.6): wake on an
// interval, drain the whole event queue under the lock, fan it out to every
// ready subscriber, then release. Returns when the engine is stopped.
func (e *Engine) RunDispatcher(pollInterval time.Duration, display DisplayStyle) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			e.dispatchOnce(display)
		}
	}
}

func (e *Engine) dispatchOnce(display DisplayStyle) {
	e.Lock()
	defer e.Unlock()

	subs := e.subscriberSnapshot()
	defer func() { metrics.Get().QueueDepth.Set(float64(e.Queue.Len())) }()
	marketdata.DrainOnceObserved(e.Queue, subs, func(ev marketdata.Event) {
		switch display {
		case DisplayMessages:
			var m map[string]any
			if json.Unmarshal(ev.Payload, &m) == nil {
				e.Log.Info().Str("instrument", ev.Instrument).Str("topic", ev.Topic).Interface("message", m).Msg("market data event")
			}
		case DisplayBook:
			if book, ok := e.Lookup(ev.Instrument); ok {
				bid, hasBid := book.GetBestBid()
				ask, hasAsk := book.GetBestAsk()
				e.Log.Info().Str("instrument", ev.Instrument).
					Int64("best_bid", bid).Bool("has_bid", hasBid).
					Int64("best_ask", ask).Bool("has_ask", hasAsk).
					Msg("book state")
			}
		}
	})
}

func (e *Engine) subscriberSnapshot() []marketdata.Subscriber {
	sessions := e.Sessions.All()
	out := make([]marketdata.Subscriber, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s)
	}
	return out
}
