// Package session implements per-client order-entry state and the request
// handlers that drive it (spec.md §4.5, component C7).
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"lobcore/domain"
	"lobcore/metrics"
)

// ErrOutboxFull is returned by Send when a session's outbound queue is
// saturated. The handlers discard it and move on — a slow client never
// blocks the holder of the engine's lock (spec.md §9(c)).
var ErrOutboxFull = errors.New("session: outbox full")

const outboxCapacity = 256

// Session is per-connected-client state (spec.md §3 "Session"): handshake
// and subscription bookkeeping, plus the set of order ids this client
// currently owns in the book. Every field here is read and written only
// while the engine's single lock is held.
type Session struct {
	TraderID     domain.TraderID
	Encoding     int
	Handshaken   bool
	SnapshotSent bool

	// Orders this session currently owns in the book, keyed by order id.
	Orders map[domain.OrderID]*domain.Order
	// CanceledOrders remembers ids this session has explicitly canceled, so
	// a duplicate cancel can be told apart from "never owned" if ever needed.
	CanceledOrders map[domain.OrderID]bool

	// Subscriptions maps instrument -> set of topics (orderBookL2, trade).
	Subscriptions map[string]map[string]bool

	outbox chan []byte
}

// New creates a session for a newly accepted connection, assigning it a
// fresh trader id (spec.md §3: "trader_id (opaque UUID assigned at
// accept)").
func New() *Session {
	return &Session{
		TraderID:       uuid.New(),
		Orders:         make(map[domain.OrderID]*domain.Order),
		CanceledOrders: make(map[domain.OrderID]bool),
		Subscriptions:  make(map[string]map[string]bool),
		outbox:         make(chan []byte, outboxCapacity),
	}
}

// Outbox returns the channel a per-session writer goroutine should drain.
// Draining happens outside the engine's lock — only the enqueue in Send
// happens while the lock is held.
func (s *Session) Outbox() <-chan []byte {
	return s.outbox
}

// Send enqueues a raw frame for this session's writer goroutine. Never
// blocks: a full outbox means the client isn't keeping up, and the right
// response is to drop the message and let the read loop's failure (or a
// future disconnect) clean the session up, not to stall every other client
// waiting on the shared lock.
func (s *Session) Send(raw []byte) error {
	select {
	case s.outbox <- raw:
		return nil
	default:
		return ErrOutboxFull
	}
}

// Subscribe adds topic:instrument subscriptions.
func (s *Session) Subscribe(instrument, topic string) {
	topics, ok := s.Subscriptions[instrument]
	if !ok {
		topics = make(map[string]bool)
		s.Subscriptions[instrument] = topics
	}
	topics[topic] = true
}

// Unsubscribe removes a topic:instrument subscription, pruning the
// instrument entry entirely once its last topic is gone.
func (s *Session) Unsubscribe(instrument, topic string) {
	topics, ok := s.Subscriptions[instrument]
	if !ok {
		return
	}
	delete(topics, topic)
	if len(topics) == 0 {
		delete(s.Subscriptions, instrument)
	}
}

// Subscribes reports whether this session is subscribed to topic on
// instrument. Satisfies marketdata.Subscriber structurally.
func (s *Session) Subscribes(instrument, topic string) bool {
	topics, ok := s.Subscriptions[instrument]
	if !ok {
		return false
	}
	return topics[topic]
}

// Ready reports whether the dispatcher may deliver to this session: it must
// have completed the handshake and received its first book snapshot
// (spec.md §4.6).
func (s *Session) Ready() bool {
	return s.Handshaken && s.SnapshotSent
}

// OwnsOrder reports whether order id is currently tracked as belonging to
// this session.
func (s *Session) OwnsOrder(id domain.OrderID) bool {
	_, ok := s.Orders[id]
	return ok
}

// Registry is the set of currently connected sessions, keyed by trader id
// (spec.md §5: "the subscriber registry"). The gateways call Add and Remove
// on connect and disconnect without holding the engine's single lock; the
// embedded mutex is what guards the map against those concurrent calls.
type Registry struct {
	mu       sync.Mutex
	sessions map[domain.TraderID]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.TraderID]*Session)}
}

// Add registers a newly accepted session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.TraderID] = s
	metrics.Get().SessionsActive.Set(float64(len(r.sessions)))
}

// Remove deregisters a session on disconnect. Resting orders it owned
// survive in the book untouched (spec.md §3 "Lifecycle").
func (r *Registry) Remove(id domain.TraderID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	metrics.Get().SessionsActive.Set(float64(len(r.sessions)))
}

// Get looks a session up by trader id, used to deliver a passive trade
// message to its owner (spec.md §9: "owner references are looked up, never
// held").
func (r *Registry) Get(id domain.TraderID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// All returns a snapshot slice of every registered session, used by the
// dispatcher's per-drain-pass fan-out.
func (r *Registry) All() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
