package engine

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return New(zerolog.Nop())
}

func TestRegisterSymbolIsIdempotent(t *testing.T) {
	e := newTestEngine()
	a := e.RegisterSymbol("AAPL", 1)
	b := e.RegisterSymbol("AAPL", 1)
	assert.Same(t, a, b)
	assert.ElementsMatch(t, []string{"AAPL"}, e.Instruments())
}

func TestLookupUnknownSymbol(t *testing.T) {
	e := newTestEngine()
	_, ok := e.Lookup("AAPL")
	assert.False(t, ok)
}

func TestSeedPopulatesBothSides(t *testing.T) {
	e := newTestEngine()
	e.Seed(SeedParams{
		Instrument:     "AAPL",
		TickSize:       1,
		InitialBestBid: 99,
		InitialBestAsk: 101,
		InitialLevels:  3,
		InitialOrders:  2,
		InitialVolume:  10,
	})

	book, ok := e.Lookup("AAPL")
	require.True(t, ok)

	bid, ok := book.GetBestBid()
	require.True(t, ok)
	assert.EqualValues(t, 99, bid)

	ask, ok := book.GetBestAsk()
	require.True(t, ok)
	assert.EqualValues(t, 101, ask)

	bids, asks := book.GetDepth(10)
	assert.Len(t, bids, 3)
	assert.Len(t, asks, 3)
	for _, lvl := range bids {
		assert.EqualValues(t, 20, lvl.Volume) // 2 orders * 10 each
	}
}

func TestStopClosesStopCh(t *testing.T) {
	e := newTestEngine()
	assert.False(t, e.Stopped())
	e.Stop()
	assert.True(t, e.Stopped())
	select {
	case <-e.StopCh():
	default:
		t.Fatal("StopCh should be closed after Stop")
	}
}
