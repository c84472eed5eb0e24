package simulate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobcore/domain"
	"lobcore/orderbook"
)

func TestNextIntervalIsPositiveAndFinite(t *testing.T) {
	g := &Generator{ArrivalRate: 1.0}
	for i := 0; i < 20; i++ {
		d := g.nextInterval()
		assert.GreaterOrEqual(t, d, time.Duration(0))
	}
}

func TestPegPriceBuyPegsOffBestAsk(t *testing.T) {
	book := orderbook.NewOrderBook("AAPL", 1)
	book.ProcessOrder(&domain.Order{Side: domain.SideSell, Type: domain.OrderTypeLimit, Price: 105, Quantity: 5, Instrument: "AAPL"}, time.Now())

	g := &Generator{Side: domain.SideBuy, Level: 3, TickSize: 1}
	assert.EqualValues(t, 102, g.pegPrice(book))
}

func TestPegPriceBuyFallsBackToBestBidWhenAskEmpty(t *testing.T) {
	book := orderbook.NewOrderBook("AAPL", 1)
	book.ProcessOrder(&domain.Order{Side: domain.SideBuy, Type: domain.OrderTypeLimit, Price: 100, Quantity: 5, Instrument: "AAPL"}, time.Now())

	g := &Generator{Side: domain.SideBuy, Level: 2, TickSize: 1}
	assert.EqualValues(t, 98, g.pegPrice(book))
}

func TestPegPriceSellPegsOffBestBid(t *testing.T) {
	book := orderbook.NewOrderBook("AAPL", 1)
	book.ProcessOrder(&domain.Order{Side: domain.SideBuy, Type: domain.OrderTypeLimit, Price: 100, Quantity: 5, Instrument: "AAPL"}, time.Now())

	g := &Generator{Side: domain.SideSell, Level: 3, TickSize: 1}
	assert.EqualValues(t, 103, g.pegPrice(book))
}

func TestRandomLimitQuantityIsInRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		q := randomLimitQuantity()
		require.GreaterOrEqual(t, q, int64(1))
		require.LessOrEqual(t, q, int64(10))
	}
}

func TestRandomMarketQuantityIsAtLeastOne(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.GreaterOrEqual(t, randomMarketQuantity(), int64(1))
	}
}
