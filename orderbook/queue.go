package orderbook

import (
	"container/list"
	"time"

	"lobcore/domain"
)

// priceLevelQueue is the FIFO of resting orders at exactly one price
// (spec.md §4.1, component C1). Arrival order is preserved by container/list;
// volume is maintained incrementally so callers never have to sum the queue.
type priceLevelQueue struct {
	price  int64
	orders *list.List // front = earliest arrival = next to trade
	volume int64
}

func newPriceLevelQueue(price int64) *priceLevelQueue {
	return &priceLevelQueue{
		price:  price,
		orders: list.New(),
	}
}

// append adds an order to the tail of the queue and returns the list.Element
// handle the caller (the ladder's id index) must retain for O(1) removal.
func (q *priceLevelQueue) append(o *domain.Order) *list.Element {
	elem := q.orders.PushBack(o)
	q.volume += o.Quantity
	return elem
}

// remove deletes the order behind elem from the queue in O(1).
func (q *priceLevelQueue) remove(elem *list.Element) {
	o := elem.Value.(*domain.Order)
	q.orders.Remove(elem)
	q.volume -= o.Quantity
}

func (q *priceLevelQueue) headOrder() *domain.Order {
	front := q.orders.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*domain.Order)
}

func (q *priceLevelQueue) length() int {
	return q.orders.Len()
}

func (q *priceLevelQueue) empty() bool {
	return q.orders.Len() == 0
}

// setQuantity updates a resting order's quantity and adjusts the cached
// volume to match. When the quantity increases, the order loses time
// priority and is moved to the tail — per spec.md §4.1, a size increase must
// re-queue behind every order already resting at the price, while a decrease
// (the only direction matching ever applies) keeps the order's position.
func (q *priceLevelQueue) setQuantity(elem *list.Element, newQuantity int64, now time.Time) {
	o := elem.Value.(*domain.Order)
	delta := newQuantity - o.Quantity
	q.volume += delta
	o.Quantity = newQuantity

	if delta > 0 {
		q.orders.MoveToBack(elem)
		o.Timestamp = now
	}
}
