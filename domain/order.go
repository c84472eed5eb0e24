package domain

import (
	"time"

	"github.com/google/uuid"
)

// TraderID identifies the owner of an order. A simulated order has no owner
// (OwnerID is the nil pointer) and never participates in self-match prevention.
type TraderID = uuid.UUID

// OrderID is the book-assigned, strictly increasing identifier of an order.
// Assigned once, on acceptance, by OrderBook.ProcessOrder; never reused.
type OrderID = int64

// Order is a single limit or market order, either in flight through the
// matching step or resting on a ladder.
//
// Hot fields (touched on every matching step) are grouped first; cold fields
// used only for bookkeeping/logging come last. This mirrors the teacher's
// cache-line grouping without the sync.Pool recycling it used alongside it —
// see DESIGN.md for why pooling was dropped.
type Order struct {
	ID         OrderID
	Price      int64 // ticks; ignored for market orders
	Quantity   int64 // remaining quantity; resting invariant: > 0
	Side       Side
	Type       OrderType
	Instrument string

	Owner     *TraderID // nil for simulated orders
	Timestamp time.Time
}

// Clone returns a shallow copy. OrderBook.ModifyOrder re-inserts a clone on
// a price change, so a pointer to the pre-modify order held elsewhere is not
// rewritten underneath its holder. ProcessOrder does not clone: it returns
// the same order it was given, which is the live resting order if any
// quantity rests.
func (o *Order) Clone() *Order {
	cp := *o
	return &cp
}

// IsSimulated reports whether the order was generated by the event simulator
// (synthetic owner == nil per spec.md §3/§4.7).
func (o *Order) IsSimulated() bool {
	return o.Owner == nil
}
