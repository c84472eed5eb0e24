package engine

import "lobcore/domain"

// SeedParams configures the initial book population run at startup when
// simulation is enabled (SPEC_FULL.md "Initial book seeding", grounded on
// the source's main.py seeding loop).
type SeedParams struct {
	Instrument     string
	TickSize       int64
	InitialBestBid int64
	InitialBestAsk int64
	InitialLevels  int
	InitialOrders  int
	InitialVolume  int64
}

// Seed registers instrument's book if necessary and populates it with
// InitialOrders resting orders at each of InitialLevels price levels on
// both sides, pegged off InitialBestBid/InitialBestAsk. Every seeded order
// carries a nil owner, exactly like the simulator's own orders, so it never
// triggers SMP and is never tied to a disconnecting client.
func (e *Engine) Seed(p SeedParams) {
	book := e.RegisterSymbol(p.Instrument, p.TickSize)

	e.Lock()
	defer e.Unlock()

	now := e.Now()
	for price := p.InitialBestAsk; price < p.InitialBestAsk+int64(p.InitialLevels); price++ {
		for i := 0; i < p.InitialOrders; i++ {
			book.ProcessOrder(&domain.Order{
				Side:       domain.SideSell,
				Type:       domain.OrderTypeLimit,
				Price:      price,
				Quantity:   p.InitialVolume,
				Instrument: p.Instrument,
			}, now)
		}
	}
	for price := p.InitialBestBid; price > p.InitialBestBid-int64(p.InitialLevels); price-- {
		for i := 0; i < p.InitialOrders; i++ {
			book.ProcessOrder(&domain.Order{
				Side:       domain.SideBuy,
				Type:       domain.OrderTypeLimit,
				Price:      price,
				Quantity:   p.InitialVolume,
				Instrument: p.Instrument,
			}, now)
		}
	}
}
