package simulate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobcore/domain"
	"lobcore/marketdata"
	"lobcore/orderbook"
	"lobcore/session"
)

type fakeHost struct {
	book *orderbook.OrderBook
	stop chan struct{}
}

func newFakeHost(book *orderbook.OrderBook) *fakeHost {
	return &fakeHost{book: book, stop: make(chan struct{})}
}

func (h *fakeHost) Lock()                    {}
func (h *fakeHost) Unlock()                  {}
func (h *fakeHost) Now() time.Time           { return time.Now() }
func (h *fakeHost) StopCh() <-chan struct{}  { return h.stop }
func (h *fakeHost) Lookup(instrument string) (*orderbook.OrderBook, bool) {
	return h.book, true
}

func TestStepAddRestsNonCrossingOrder(t *testing.T) {
	book := orderbook.NewOrderBook("AAPL", 1)
	book.ProcessOrder(&domain.Order{Side: domain.SideSell, Type: domain.OrderTypeLimit, Price: 105, Quantity: 5, Instrument: "AAPL"}, time.Now())

	host := newFakeHost(book)
	queue := marketdata.NewQueue()
	registry := session.NewRegistry()

	g := &Generator{Type: EventAdd, Side: domain.SideBuy, Level: 2, TickSize: 1}
	g.step(host, registry, queue, "AAPL")

	bid, ok := book.GetBestBid()
	require.True(t, ok)
	assert.EqualValues(t, 103, bid)
	assert.False(t, queue.Empty())
}

func TestStepCancelRemovesAnExistingRestingOrder(t *testing.T) {
	book := orderbook.NewOrderBook("AAPL", 1)
	book.ProcessOrder(&domain.Order{Side: domain.SideBuy, Type: domain.OrderTypeLimit, Price: 100, Quantity: 5, Instrument: "AAPL"}, time.Now())

	host := newFakeHost(book)
	queue := marketdata.NewQueue()
	registry := session.NewRegistry()

	g := &Generator{Type: EventCancel, Side: domain.SideBuy, Level: 0, TickSize: 1}
	g.step(host, registry, queue, "AAPL")

	_, ok := book.GetBestBid()
	assert.False(t, ok)
	assert.False(t, queue.Empty())
}

func TestStepCancelOnEmptyLevelIsNoOp(t *testing.T) {
	book := orderbook.NewOrderBook("AAPL", 1)
	host := newFakeHost(book)
	queue := marketdata.NewQueue()
	registry := session.NewRegistry()

	g := &Generator{Type: EventCancel, Side: domain.SideBuy, Level: 5, TickSize: 1}
	assert.NotPanics(t, func() {
		g.step(host, registry, queue, "AAPL")
	})
	assert.True(t, queue.Empty())
}

func TestStepMarketNotifiesPassiveOwnerAndPublishesTrade(t *testing.T) {
	book := orderbook.NewOrderBook("AAPL", 1)

	owner := session.New()
	registry := session.NewRegistry()
	registry.Add(owner)

	ownerID := owner.TraderID
	book.ProcessOrder(&domain.Order{Side: domain.SideSell, Type: domain.OrderTypeLimit, Price: 100, Quantity: 50, Instrument: "AAPL", Owner: &ownerID}, time.Now())

	host := newFakeHost(book)
	queue := marketdata.NewQueue()

	g := &Generator{Type: EventMarket, Side: domain.SideBuy, TickSize: 1}

	// Market quantity is randomized; loop until we observe a fill (almost
	// certain within a handful of draws since geometric(0.05) has mean 20).
	var delivered bool
	for i := 0; i < 50 && !delivered; i++ {
		g.step(host, registry, queue, "AAPL")
		select {
		case raw := <-owner.Outbox():
			var msg map[string]any
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, "E", msg["message-type"])
			delivered = true
		default:
		}
	}
	assert.True(t, delivered, "expected at least one Executed delivered to the passive owner")
}
