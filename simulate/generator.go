// Package simulate is the stochastic event simulator (spec.md §4.7,
// component C9): independent generators that add, cancel, and market-order
// against a book at exponential inter-arrival times, pegged to its current
// best quotes. Grounded on the source's EventGenerator
// (event_generator.py) and its event_generation_loop driver.
package simulate

import (
	"math"
	"math/rand"
	"time"

	"lobcore/domain"
	"lobcore/orderbook"
)

// EventType distinguishes the three kinds of synthetic event a Generator
// produces.
type EventType int

const (
	EventAdd EventType = iota
	EventCancel
	EventMarket
)

// Generator is one independent event source: a fixed event type, side, and
// (for Add/Cancel) price level, producing events at its own exponential
// inter-arrival rate. A population of these runs concurrently, one goroutine
// each, all serialized through the shared engine lock at match time.
type Generator struct {
	Type        EventType
	Side        domain.Side
	Level       int     // price level this generator targets; unused for Market
	ArrivalRate float64 // mean events per second of the exponential inter-arrival
	TickSize    int64
}

// nextInterval draws a random inter-arrival delay ~Exp(ArrivalRate). The
// source sleeps in 10ms increments so it can poll a stop flag; a single
// timer selected against the host's stop channel gets the same cancellable
// sleep with no polling loop.
func (g *Generator) nextInterval() time.Duration {
	return time.Duration(rand.ExpFloat64() / g.ArrivalRate * float64(time.Second))
}

// pegPrice computes the level-pegged price for an Add or Cancel event: an
// offset of Level ticks from the opposite side's best quote, falling back to
// the same side's best quote when the opposite side is empty (spec.md §4.7
// steps 3-4). By construction this price never crosses: an Add always rests.
func (g *Generator) pegPrice(book *orderbook.OrderBook) int64 {
	peg := int64(g.Level) * g.TickSize
	bestBid, hasBid := book.GetBestBid()
	bestAsk, hasAsk := book.GetBestAsk()

	if g.Side == domain.SideBuy {
		if !hasAsk {
			return bestBid - peg
		}
		return bestAsk - peg
	}
	if !hasBid {
		return bestAsk + peg
	}
	return bestBid + peg
}

// randomLimitQuantity draws a Uniform{1..10} order size for an Add event.
func randomLimitQuantity() int64 {
	return int64(1 + rand.Intn(10))
}

// randomMarketQuantity draws max(Geometric(0.05), 1) for a Market event,
// matching the source's numpy geometric(0.05) draw via inverse transform
// sampling.
func randomMarketQuantity() int64 {
	const p = 0.05
	u := rand.Float64()
	n := int64(math.Ceil(math.Log(1-u) / math.Log(1-p)))
	if n < 1 {
		return 1
	}
	return n
}
