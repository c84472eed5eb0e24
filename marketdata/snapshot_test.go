package marketdata

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobcore/domain"
	"lobcore/orderbook"
)

func TestBuildSnapshotOrdersBidsThenAsks(t *testing.T) {
	book := orderbook.NewOrderBook("AAPL", 1)
	now := time.Unix(0, 0)

	book.ProcessOrder(&domain.Order{Side: domain.SideBuy, Type: domain.OrderTypeLimit, Price: 100, Quantity: 5, Instrument: "AAPL"}, now)
	book.ProcessOrder(&domain.Order{Side: domain.SideBuy, Type: domain.OrderTypeLimit, Price: 101, Quantity: 3, Instrument: "AAPL"}, now)
	book.ProcessOrder(&domain.Order{Side: domain.SideSell, Type: domain.OrderTypeLimit, Price: 105, Quantity: 7, Instrument: "AAPL"}, now)

	rows := BuildSnapshot("AAPL", book)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, 1, r.Snapshot)
		assert.Equal(t, "AAPL", r.Instrument)
	}
	// bids first, best bid (101) before 100; then the ask.
	assert.Equal(t, int64(101), rows[0].Price)
	assert.Equal(t, int64(100), rows[1].Price)
	assert.Equal(t, int64(105), rows[2].Price)
}

func TestEncodeSnapshotProducesOneJSONFramePerRow(t *testing.T) {
	book := orderbook.NewOrderBook("AAPL", 1)
	now := time.Unix(0, 0)
	book.ProcessOrder(&domain.Order{Side: domain.SideBuy, Type: domain.OrderTypeLimit, Price: 100, Quantity: 5, Instrument: "AAPL"}, now)
	book.ProcessOrder(&domain.Order{Side: domain.SideSell, Type: domain.OrderTypeLimit, Price: 105, Quantity: 7, Instrument: "AAPL"}, now)

	frames, err := EncodeSnapshot("AAPL", book)
	require.NoError(t, err)
	require.Len(t, frames, 2)

	var m map[string]any
	require.NoError(t, json.Unmarshal(frames[0], &m))
	assert.EqualValues(t, 1, m["snapshot"])
	assert.Equal(t, "AAPL", m["instrument"])
}
