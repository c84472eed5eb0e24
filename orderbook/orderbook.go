// Package orderbook implements the matching core: price-ordered ladders
// (C1/C2), the order book and its process-order algorithm (C3), and the
// transaction/message projections derived from a matching step (C4).
//
// Nothing here is safe for concurrent use on its own — every exported method
// is expected to run under the single lock the engine package holds for the
// whole system (spec.md §5). That's intentional: giving OrderBook its own
// lock would let one instrument's book get out of step with the shared
// event-queue ordering the rest of the system depends on.
package orderbook

import (
	"errors"
	"time"

	"lobcore/domain"
)

// ErrUnknownSymbol names the failure of an operation on an instrument that
// has no book. No function in this module returns it: the engine's symbol
// registry (Engine.Lookup) reports an unknown instrument with a false
// second return value.
var ErrUnknownSymbol = errors.New("orderbook: unknown symbol")

// ErrOrderNotOwned names a cancel attempted by a session that does not own
// the order id. No function in this module returns it: the session package
// checks ownership with Session.OwnsOrder and answers with an `R` reply, and
// OrderBook has no notion of ownership beyond the order's Owner field.
var ErrOrderNotOwned = errors.New("orderbook: order not owned by caller")

// OrderBook owns one bid ladder and one ask ladder for a single instrument,
// plus the order-id counter and the book-local clock (spec.md §3
// "OrderBook", component C3).
type OrderBook struct {
	Instrument string
	TickSize   int64

	bids *ladder
	asks *ladder

	nextOrderID int64
	lastTime    time.Time
}

// NewOrderBook creates an empty book for instrument, ticking at tickSize.
func NewOrderBook(instrument string, tickSize int64) *OrderBook {
	return &OrderBook{
		Instrument: instrument,
		TickSize:   tickSize,
		bids:       newLadder(true),
		asks:       newLadder(false),
	}
}

func (b *OrderBook) sideLadder(s domain.Side) *ladder {
	if s == domain.SideBuy {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) oppositeLadder(s domain.Side) *ladder {
	return b.sideLadder(s.Opposite())
}

// GetBestBid returns the highest resting buy price, or false if no bids rest.
func (b *OrderBook) GetBestBid() (int64, bool) { return b.bids.bestPrice() }

// GetBestAsk returns the lowest resting sell price, or false if no asks rest.
func (b *OrderBook) GetBestAsk() (int64, bool) { return b.asks.bestPrice() }

// GetOrder looks an order up by id on either side. Returns nil if unknown.
func (b *OrderBook) GetOrder(id domain.OrderID) *domain.Order {
	if o := b.bids.getOrder(id); o != nil {
		return o
	}
	return b.asks.getOrder(id)
}

// OrderExists reports whether id currently rests on side.
func (b *OrderBook) OrderExists(side domain.Side, id domain.OrderID) bool {
	return b.sideLadder(side).orderExists(id)
}

// GetDepth returns up to levels price rows per side, best-price first.
func (b *OrderBook) GetDepth(levels int) (bids, asks []levelSnapshot) {
	return b.bids.depth(levels), b.asks.depth(levels)
}

// AllRestingOrders returns every order resting on both sides, bids then
// asks, each side best-price-then-arrival first. Used to build a fresh
// subscriber's book snapshot (spec.md §4.6).
func (b *OrderBook) AllRestingOrders() (bids, asks []*domain.Order) {
	return b.bids.allOrders(), b.asks.allOrders()
}

// crosses reports whether a resting order at restingPrice would match an
// incoming order of the given side/type/price. Market orders cross at any
// price; limit orders cross only within their own limit.
func crosses(side domain.Side, orderType domain.OrderType, price, restingPrice int64) bool {
	if orderType == domain.OrderTypeMarket {
		return true
	}
	if side == domain.SideBuy {
		return restingPrice <= price
	}
	return restingPrice >= price
}

// selfMatchPrevention cancels every resting order on the opposite side that
// belongs to incoming's owner and would otherwise match it, before any
// matching happens (spec.md §4.3 step 2). A nil owner (simulated order)
// never triggers SMP.
func (b *OrderBook) selfMatchPrevention(incoming *domain.Order, now time.Time) []domain.SelfMatchCancel {
	if incoming.Owner == nil {
		return nil
	}
	opposite := b.oppositeLadder(incoming.Side)
	candidates := opposite.allOrders()

	var cancels []domain.SelfMatchCancel
	for _, resting := range candidates {
		if resting.Owner == nil || *resting.Owner != *incoming.Owner {
			continue
		}
		if !crosses(incoming.Side, incoming.Type, incoming.Price, resting.Price) {
			continue
		}
		cancels = append(cancels, domain.SelfMatchCancel{
			OrderID:    resting.ID,
			Instrument: resting.Instrument,
			Side:       resting.Side,
			Quantity:   resting.Quantity,
			Price:      resting.Price,
			Timestamp:  now,
			Owner:      resting.Owner,
		})
		opposite.removeByID(resting.ID)
	}
	return cancels
}

// matchAgainstQueue drains q against an incoming order with qtyIn remaining,
// exactly per spec.md §4.3's match-against-queue pseudocode: a partial fill
// of the head keeps its queue position (time priority survives a quantity
// decrease), a full fill removes it, and the traded price is always the
// resting (passive) side's price.
func (b *OrderBook) matchAgainstQueue(incoming *domain.Order, opposite *ladder, q *priceLevelQueue, qtyIn int64, now time.Time) (int64, []Transaction) {
	var trades []Transaction

	for qtyIn > 0 && !q.empty() {
		headElem := q.orders.Front()
		head := headElem.Value.(*domain.Order)

		var traded, passiveRemaining int64
		switch {
		case qtyIn < head.Quantity:
			traded = qtyIn
			passiveRemaining = head.Quantity - qtyIn
			q.setQuantity(headElem, passiveRemaining, now)
			qtyIn = 0
		case qtyIn == head.Quantity:
			traded = head.Quantity
			passiveRemaining = 0
			opposite.removeByID(head.ID)
			qtyIn = 0
		default:
			traded = head.Quantity
			passiveRemaining = 0
			opposite.removeByID(head.ID)
			qtyIn -= traded
		}

		trades = append(trades, Transaction{
			AggressorID:              incoming.ID,
			AggressorSide:            incoming.Side,
			AggressorOrderType:       incoming.Type,
			PassiveID:                head.ID,
			PassiveOwner:             head.Owner,
			PassiveSide:              incoming.Side.Opposite(),
			PassiveQuantityRemaining: passiveRemaining,
			TradedPrice:              head.Price,
			TradedQuantity:           traded,
			Instrument:               incoming.Instrument,
			Timestamp:                now,
		})
	}

	return qtyIn, trades
}

// processMarket matches a market order against the opposite ladder until
// either it is fully filled or the ladder runs dry. A market order never
// rests: unfilled residual quantity is silently dropped (spec.md §4.3 step 3,
// §9 open behavior (a)).
func (b *OrderBook) processMarket(incoming *domain.Order, now time.Time) TransactionList {
	opposite := b.oppositeLadder(incoming.Side)
	var trades TransactionList
	qty := incoming.Quantity

	for qty > 0 {
		q := opposite.bestLevel()
		if q == nil {
			break
		}
		remaining, ts := b.matchAgainstQueue(incoming, opposite, q, qty, now)
		trades = append(trades, ts...)
		qty = remaining
	}

	incoming.Quantity = qty
	return trades
}

// processLimit matches a limit order against the opposite ladder while the
// best opposite price still crosses the order's limit, then rests any
// residual quantity on the order's own side (spec.md §4.3 step 4).
func (b *OrderBook) processLimit(incoming *domain.Order, now time.Time) TransactionList {
	opposite := b.oppositeLadder(incoming.Side)
	var trades TransactionList
	qty := incoming.Quantity

	for qty > 0 {
		bestPrice, ok := opposite.bestPrice()
		if !ok {
			break
		}
		if !crosses(incoming.Side, domain.OrderTypeLimit, incoming.Price, bestPrice) {
			break
		}
		q := opposite.priceListAt(bestPrice)
		remaining, ts := b.matchAgainstQueue(incoming, opposite, q, qty, now)
		trades = append(trades, ts...)
		qty = remaining
	}

	incoming.Quantity = qty
	if qty > 0 {
		b.sideLadder(incoming.Side).insert(incoming)
	}
	return trades
}

// ProcessOrder is the heart of the engine (spec.md §4.3): it assigns the
// order its id and timestamp, runs self-match prevention, matches it against
// resting liquidity under strict price-time priority, and rests any
// residual quantity. Returns the transactions produced, the order as it
// ended up (quantity reflects whatever wasn't matched or dropped), and any
// self-match-prevention cancels that had to happen first.
//
// Callers must already hold the engine's single lock (spec.md §5) — this
// method performs no locking of its own.
func (b *OrderBook) ProcessOrder(in *domain.Order, now time.Time) (TransactionList, *domain.Order, []domain.SelfMatchCancel) {
	b.nextOrderID++
	in.ID = b.nextOrderID
	in.Timestamp = now
	b.lastTime = now

	smpCancels := b.selfMatchPrevention(in, now)

	var trades TransactionList
	switch in.Type {
	case domain.OrderTypeMarket:
		trades = b.processMarket(in, now)
	case domain.OrderTypeLimit:
		trades = b.processLimit(in, now)
	}

	return trades, in, smpCancels
}

// CancelOrder removes order id from side if present; a miss is not an error
// (spec.md §4.3 cancel_order — "callers that need rejection check ownership
// first", which session.Session does before ever calling this).
func (b *OrderBook) CancelOrder(side domain.Side, id domain.OrderID, now time.Time) {
	b.lastTime = now
	b.sideLadder(side).removeByID(id)
}

// OrderUpdate carries the fields modify_order may change on a resting
// order. A Price change causes the order to lose time priority (removed and
// reinserted at the tail of its new price's queue) per spec.md §9 open
// behavior (b). At an unchanged price the quantity changes in place, with
// the level's volume kept in step: a decrease keeps the order's queue
// position, an increase moves it to the tail.
type OrderUpdate struct {
	Price    int64
	Quantity int64
}

// ModifyOrder applies update to the resting order id on side, if it exists.
// A miss is silently ignored, matching cancel_order's contract.
func (b *OrderBook) ModifyOrder(side domain.Side, id domain.OrderID, update OrderUpdate, now time.Time) {
	b.lastTime = now
	l := b.sideLadder(side)
	existing := l.getOrder(id)
	if existing == nil {
		return
	}

	if update.Price != existing.Price {
		l.removeByID(id)
		updated := existing.Clone()
		updated.Price = update.Price
		updated.Quantity = update.Quantity
		updated.Timestamp = now
		l.insert(updated)
		return
	}

	l.priceListAt(existing.Price).setQuantity(l.byID[id].elem, update.Quantity, now)
}

// RandomRestingOrderAt returns the id of a uniformly random resting order at
// price on side, using pick (typically rand.Intn) to choose among however
// many orders rest there. Returns false if the level doesn't exist or is
// empty. Used by the simulator's random-cancel generator (spec.md §4.7 step
// 4) — kept rand-free itself so OrderBook stays deterministic to test.
func (b *OrderBook) RandomRestingOrderAt(side domain.Side, price int64, pick func(n int) int) (domain.OrderID, bool) {
	l := b.sideLadder(side)
	if !l.priceExists(price) {
		return 0, false
	}
	q := l.priceListAt(price)
	if q.empty() {
		return 0, false
	}
	ids := make([]domain.OrderID, 0, q.length())
	for e := q.orders.Front(); e != nil; e = e.Next() {
		ids = append(ids, e.Value.(*domain.Order).ID)
	}
	return ids[pick(len(ids))], true
}

// NoCrossedBook reports whether the book's core invariant holds: the best
// bid must be strictly below the best ask whenever both sides are occupied
// (spec.md §8).
func (b *OrderBook) NoCrossedBook() bool {
	bid, okBid := b.GetBestBid()
	ask, okAsk := b.GetBestAsk()
	if !okBid || !okAsk {
		return true
	}
	return bid < ask
}
