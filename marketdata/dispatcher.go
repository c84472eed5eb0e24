package marketdata

// Subscriber is the narrow view the dispatcher needs of a connected
// session. *session.Session satisfies this structurally — this package
// never imports session, so session is free to depend on marketdata (for
// Event) without creating an import cycle.
type Subscriber interface {
	Ready() bool
	Subscribes(instrument, topic string) bool
	Send(raw []byte) error
}

// DrainOnce pops every event currently queued and fans each out to every
// subscriber whose subscriptions match, exactly per spec.md §4.6's
// dispatcher pseudocode. Must be called with the engine's lock held — the
// queue and the subscriber registry are both protected by it.
func DrainOnce(q *Queue, subscribers []Subscriber) {
	DrainOnceObserved(q, subscribers, nil)
}

// DrainOnceObserved is DrainOnce plus a callback invoked once per drained
// event regardless of subscriber match, used to drive the optional
// BOOK/MESSAGES display modes without duplicating the fan-out loop.
func DrainOnceObserved(q *Queue, subscribers []Subscriber, observe func(Event)) {
	for !q.Empty() {
		ev := q.Pop()
		if observe != nil {
			observe(ev)
		}
		for _, s := range subscribers {
			if !s.Ready() {
				continue
			}
			if !s.Subscribes(ev.Instrument, ev.Topic) {
				continue
			}
			_ = s.Send(ev.Payload)
		}
	}
}
