package orderbook

import (
	"container/list"
	"errors"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"

	"lobcore/domain"
)

// ErrOrderNotFound names a lookup of an id the ladder does not know about.
// No function in this package returns it: ladder and book lookups report a
// miss with a nil order, and cancel/modify of an unknown id are no-ops.
var ErrOrderNotFound = errors.New("orderbook: order not found")

// ladderEntry is the id-index's record of where an order lives: its price
// (to find the queue) and its list.Element handle (for O(1) removal within
// the queue). Keeping this off domain.Order keeps the order type free of
// orderbook-internal plumbing (spec.md §9: "an order-id -> (price,
// queue-node) index" belongs to the ladder, not the order).
type ladderEntry struct {
	price int64
	elem  *list.Element
}

// ladder is one side of the book (bids or asks): a price-ordered mapping to
// a priceLevelQueue at each occupied price, plus an id index for
// get/remove-by-id (spec.md §4.2, component C2). The id index is a hash map,
// so finding an order by id is O(1); removal then looks its price level up
// in the red-black tree in O(log n).
//
// The teacher's price_tree.go/price_tree_sharded.go explored both a
// hashmap+linked-list "best price is a pointer" design and a bucket-sharded
// red-black tree. This keeps the red-black tree directly (no bucket layer —
// see DESIGN.md) because it meets the O(log n) contract spec.md asks for
// without needing the bucket-id indirection, which only pays for itself at
// price-level counts this engine never promises to hit.
type ladder struct {
	descending bool // true for bids (best = max), false for asks (best = min)
	levels     *rbt.Tree[int64, *priceLevelQueue]
	byID       map[domain.OrderID]ladderEntry
}

func newLadder(descending bool) *ladder {
	var cmp func(a, b int64) int
	if descending {
		cmp = func(a, b int64) int {
			switch {
			case a > b:
				return -1
			case a < b:
				return 1
			default:
				return 0
			}
		}
	} else {
		cmp = func(a, b int64) int {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		}
	}
	return &ladder{
		descending: descending,
		levels:     rbt.NewWith[int64, *priceLevelQueue](cmp),
		byID:       make(map[domain.OrderID]ladderEntry),
	}
}

// insert adds order at the tail of the queue for order.Price, creating the
// level if it does not exist yet.
func (l *ladder) insert(o *domain.Order) {
	q, ok := l.levels.Get(o.Price)
	if !ok {
		q = newPriceLevelQueue(o.Price)
		l.levels.Put(o.Price, q)
	}
	elem := q.append(o)
	l.byID[o.ID] = ladderEntry{price: o.Price, elem: elem}
}

// removeByID removes the order by id, deleting its price level if that was
// the level's last order. No-op (not an error) if the id is unknown — this
// matches spec.md §4.3's cancel_order contract, which silently succeeds on
// an id the book has already removed.
func (l *ladder) removeByID(id domain.OrderID) {
	entry, ok := l.byID[id]
	if !ok {
		return
	}
	q, ok := l.levels.Get(entry.price)
	if !ok {
		delete(l.byID, id)
		return
	}
	q.remove(entry.elem)
	delete(l.byID, id)
	if q.empty() {
		l.levels.Remove(entry.price)
	}
}

func (l *ladder) orderExists(id domain.OrderID) bool {
	_, ok := l.byID[id]
	return ok
}

// getOrder returns the live order for id, or nil if unknown.
func (l *ladder) getOrder(id domain.OrderID) *domain.Order {
	entry, ok := l.byID[id]
	if !ok {
		return nil
	}
	return entry.elem.Value.(*domain.Order)
}

// bestLevel returns the queue at the best price (highest for bids, lowest
// for asks), or nil if the ladder is empty.
func (l *ladder) bestLevel() *priceLevelQueue {
	node := l.levels.Left()
	if node == nil {
		return nil
	}
	return node.Value
}

// bestPrice returns the best price, and false if the ladder is empty.
func (l *ladder) bestPrice() (int64, bool) {
	best := l.bestLevel()
	if best == nil {
		return 0, false
	}
	return best.price, true
}

func (l *ladder) priceExists(price int64) bool {
	_, ok := l.levels.Get(price)
	return ok
}

func (l *ladder) priceListAt(price int64) *priceLevelQueue {
	q, _ := l.levels.Get(price)
	return q
}

func (l *ladder) empty() bool {
	return l.levels.Empty()
}

func (l *ladder) size() int {
	return l.levels.Size()
}

// levelSnapshot is one row of market depth, used by GetDepth and the
// subscriber snapshot stream (marketdata package).
type levelSnapshot struct {
	Price  int64
	Volume int64
	Orders int
}

// depth returns up to maxLevels price levels in best-first order.
func (l *ladder) depth(maxLevels int) []levelSnapshot {
	if maxLevels <= 0 {
		return nil
	}
	out := make([]levelSnapshot, 0, maxLevels)
	it := l.levels.Iterator()
	// gods' red-black tree iterates ascending by key; for bids (descending
	// comparator) that's already best-first since the comparator inverted
	// the ordering, so a plain forward iteration is correct for both sides.
	for it.Next() && len(out) < maxLevels {
		q := it.Value()
		out = append(out, levelSnapshot{Price: q.price, Volume: q.volume, Orders: q.length()})
	}
	return out
}

// allOrders walks every resting order across the whole ladder in best-price,
// then arrival, order — used to build a subscriber's initial snapshot
// (spec.md §4.6).
func (l *ladder) allOrders() []*domain.Order {
	var out []*domain.Order
	it := l.levels.Iterator()
	for it.Next() {
		q := it.Value()
		for e := q.orders.Front(); e != nil; e = e.Next() {
			out = append(out, e.Value.(*domain.Order))
		}
	}
	return out
}
