// Package engine is the shared-state coordinator (spec.md §5, component
// C10): the single process-wide lock, the stop signal, the instrument
// registry, and the session registry every gateway and the simulator share.
package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"lobcore/marketdata"
	"lobcore/orderbook"
	"lobcore/session"
)

// Engine ties the matching core (orderbook), the public feed (marketdata),
// and client state (session) together behind one lock. Every mutation of a
// book, every event-queue push, and every session-bookkeeping change must
// happen while holding this lock (spec.md §5 "Lock discipline") — that is
// what gives the whole system its single linearized event order.
type Engine struct {
	mu sync.Mutex

	// books is an immutable map[string]*orderbook.OrderBook, swapped via
	// copy-on-write. Reads (Lookup) never take booksMu; only creating a new
	// symbol does. Adapted from the teacher's ExchangeEngine.GetEngine —
	// kept here because instrument registration is read-mostly and doesn't
	// need to participate in the single lock's ordering guarantee (see
	// DESIGN.md).
	books   atomic.Value
	booksMu sync.Mutex

	Queue     *marketdata.Queue
	Sessions  *session.Registry
	Log       zerolog.Logger
	tickSizes map[string]int64

	stop chan struct{}
}

// New creates an Engine with an empty instrument registry.
func New(log zerolog.Logger) *Engine {
	e := &Engine{
		Queue:     marketdata.NewQueue(),
		Sessions:  session.NewRegistry(),
		Log:       log,
		tickSizes: make(map[string]int64),
		stop:      make(chan struct{}),
	}
	e.books.Store(make(map[string]*orderbook.OrderBook))
	return e
}

// Lock acquires the engine's single lock. Callers must pair every Lock with
// a deferred Unlock and perform all book operations, session bookkeeping,
// and event-queue pushes for one request inside that critical section
// (spec.md §5).
func (e *Engine) Lock() { e.mu.Lock() }

// Unlock releases the engine's single lock.
func (e *Engine) Unlock() { e.mu.Unlock() }

// Now returns the engine-local clock used to timestamp matching steps
// (spec.md §3 "timestamp (engine-local microsecond clock at acceptance)").
func (e *Engine) Now() time.Time { return time.Now() }

// Lookup resolves instrument to its order book. Satisfies
// session.BookRegistry structurally.
func (e *Engine) Lookup(instrument string) (*orderbook.OrderBook, bool) {
	books := e.books.Load().(map[string]*orderbook.OrderBook)
	b, ok := books[instrument]
	return b, ok
}

// RegisterSymbol creates (idempotently) an order book for instrument at the
// given tick size, and returns it.
func (e *Engine) RegisterSymbol(instrument string, tickSize int64) *orderbook.OrderBook {
	if b, ok := e.Lookup(instrument); ok {
		return b
	}

	e.booksMu.Lock()
	defer e.booksMu.Unlock()

	books := e.books.Load().(map[string]*orderbook.OrderBook)
	if b, ok := books[instrument]; ok {
		return b
	}

	book := orderbook.NewOrderBook(instrument, tickSize)
	next := make(map[string]*orderbook.OrderBook, len(books)+1)
	for k, v := range books {
		next[k] = v
	}
	next[instrument] = book
	e.books.Store(next)
	e.tickSizes[instrument] = tickSize
	return book
}

// Instruments returns every registered symbol.
func (e *Engine) Instruments() []string {
	books := e.books.Load().(map[string]*orderbook.OrderBook)
	out := make([]string, 0, len(books))
	for k := range books {
		out = append(out, k)
	}
	return out
}

// TickSize returns the configured tick size for instrument, or 1 if unknown.
func (e *Engine) TickSize(instrument string) int64 {
	if t, ok := e.tickSizes[instrument]; ok {
		return t
	}
	return 1
}

// Stop signals every loop sharing this engine (gateways, dispatcher,
// simulator generators) to shut down (spec.md §5 "Cancellation").
func (e *Engine) Stop() {
	close(e.stop)
}

// StopCh returns the channel that closes when Stop is called.
func (e *Engine) StopCh() <-chan struct{} {
	return e.stop
}

// Stopped reports whether Stop has been called, without blocking.
func (e *Engine) Stopped() bool {
	select {
	case <-e.stop:
		return true
	default:
		return false
	}
}
