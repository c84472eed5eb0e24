package simulate

import (
	"math"

	"lobcore/domain"
)

// Levels is the number of distinct price levels Add and Cancel generators
// run at, per side (spec.md §4.7: n_levels = 15).
const Levels = 15

// Population builds the full generator set described in spec.md §4.7: Add
// and Cancel at every level on both sides (4*Levels generators, rates
// decaying away from the touch), plus one Buy-Market and one Sell-Market
// generator at a flat rate.
func Population(tickSize int64) []*Generator {
	gens := make([]*Generator, 0, 4*Levels+2)
	sides := []domain.Side{domain.SideBuy, domain.SideSell}

	for level := 1; level <= Levels; level++ {
		addRate := 1.10 * math.Exp(-0.08*float64(level-1))
		cancelRate := 1.0 * math.Exp(-0.10*float64(level-1))
		for _, side := range sides {
			gens = append(gens, &Generator{Type: EventAdd, Side: side, Level: level, ArrivalRate: addRate, TickSize: tickSize})
			gens = append(gens, &Generator{Type: EventCancel, Side: side, Level: level, ArrivalRate: cancelRate, TickSize: tickSize})
		}
	}

	gens = append(gens,
		&Generator{Type: EventMarket, Side: domain.SideBuy, ArrivalRate: 0.5, TickSize: tickSize},
		&Generator{Type: EventMarket, Side: domain.SideSell, ArrivalRate: 0.5, TickSize: tickSize},
	)
	return gens
}
