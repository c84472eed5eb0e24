package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobcore/domain"
)

func newTestOrder(id domain.OrderID, price, qty int64) *domain.Order {
	return &domain.Order{ID: id, Price: price, Quantity: qty, Instrument: "AAPL"}
}

func TestLadderBestPriceDescendingForBids(t *testing.T) {
	l := newLadder(true)
	l.insert(newTestOrder(1, 100, 5))
	l.insert(newTestOrder(2, 105, 5))
	l.insert(newTestOrder(3, 98, 5))

	price, ok := l.bestPrice()
	require.True(t, ok)
	assert.EqualValues(t, 105, price)
}

func TestLadderBestPriceAscendingForAsks(t *testing.T) {
	l := newLadder(false)
	l.insert(newTestOrder(1, 100, 5))
	l.insert(newTestOrder(2, 105, 5))
	l.insert(newTestOrder(3, 98, 5))

	price, ok := l.bestPrice()
	require.True(t, ok)
	assert.EqualValues(t, 98, price)
}

func TestLadderRemoveByIDDeletesEmptyLevel(t *testing.T) {
	l := newLadder(false)
	l.insert(newTestOrder(1, 100, 5))

	l.removeByID(1)

	assert.False(t, l.orderExists(1))
	assert.False(t, l.priceExists(100))
	assert.True(t, l.empty())
}

func TestLadderRemoveByIDUnknownIsNoOp(t *testing.T) {
	l := newLadder(false)
	assert.NotPanics(t, func() {
		l.removeByID(999)
	})
}

func TestLadderRemoveByIDKeepsLevelWhenOthersRemain(t *testing.T) {
	l := newLadder(false)
	l.insert(newTestOrder(1, 100, 5))
	l.insert(newTestOrder(2, 100, 3))

	l.removeByID(1)

	assert.True(t, l.priceExists(100))
	q := l.priceListAt(100)
	require.NotNil(t, q)
	assert.EqualValues(t, 3, q.volume)
}

func TestLadderGetOrderReturnsLiveOrder(t *testing.T) {
	l := newLadder(false)
	l.insert(newTestOrder(1, 100, 5))

	o := l.getOrder(1)
	require.NotNil(t, o)
	assert.EqualValues(t, 100, o.Price)

	assert.Nil(t, l.getOrder(42))
}

func TestLadderAllOrdersBestPriceThenArrival(t *testing.T) {
	l := newLadder(true) // bids: descending
	l.insert(newTestOrder(1, 100, 5))
	l.insert(newTestOrder(2, 105, 5))
	l.insert(newTestOrder(3, 105, 3))

	all := l.allOrders()
	require.Len(t, all, 3)
	assert.EqualValues(t, 2, all[0].ID, "best price (105) first")
	assert.EqualValues(t, 3, all[1].ID, "within 105, arrival order preserved")
	assert.EqualValues(t, 1, all[2].ID)
}

func TestLadderDepthRespectsMaxLevels(t *testing.T) {
	l := newLadder(false)
	l.insert(newTestOrder(1, 100, 5))
	l.insert(newTestOrder(2, 101, 5))
	l.insert(newTestOrder(3, 102, 5))

	depth := l.depth(2)
	require.Len(t, depth, 2)
	assert.EqualValues(t, 100, depth[0].Price)
	assert.EqualValues(t, 101, depth[1].Price)
}

func TestLadderDepthZeroReturnsNil(t *testing.T) {
	l := newLadder(false)
	l.insert(newTestOrder(1, 100, 5))
	assert.Nil(t, l.depth(0))
}
