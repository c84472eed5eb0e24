package engine

import "lobcore/simulate"

// RunSimulator starts the full population of stochastic event generators
// against instrument (spec.md §4.7): 4*simulate.Levels+2 goroutines, each
// independently sleeping, matching, and publishing under the engine's lock.
// Only meaningful after RegisterSymbol (or Seed) has created the book.
func (e *Engine) RunSimulator(instrument string) {
	tick := e.TickSize(instrument)
	simulate.RunAll(simulate.Population(tick), e, e.Sessions, e.Queue, instrument)
}
