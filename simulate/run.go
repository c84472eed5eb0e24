package simulate

import (
	"encoding/json"
	"math/rand"
	"time"

	"lobcore/domain"
	"lobcore/marketdata"
	"lobcore/metrics"
	"lobcore/orderbook"
	"lobcore/session"
	"lobcore/wire"
)

// Host is the slice of the engine a Generator needs: the single lock, the
// engine clock, the stop signal, and symbol lookup. Defined here (rather
// than imported from engine) so this package has no dependency on engine —
// engine depends on simulate, not the other way around. *engine.Engine
// satisfies this structurally.
type Host interface {
	Lock()
	Unlock()
	Now() time.Time
	StopCh() <-chan struct{}
	Lookup(instrument string) (*orderbook.OrderBook, bool)
}

func publish(q *marketdata.Queue, instrument, topic string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	q.Push(marketdata.Event{Instrument: instrument, Topic: topic, Payload: raw})
}

func send(s *session.Session, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = s.Send(raw)
}

// RunAll launches one goroutine per generator against instrument; each stops
// on its own once host's stop channel closes.
func RunAll(gens []*Generator, host Host, registry *session.Registry, queue *marketdata.Queue, instrument string) {
	for _, g := range gens {
		go g.Run(host, registry, queue, instrument)
	}
}

// Run drives one generator forever: sleep, acquire the host's lock, produce
// one event against instrument's book, publish whatever it caused, release
// (spec.md §4.7's generator loop).
func (g *Generator) Run(host Host, registry *session.Registry, queue *marketdata.Queue, instrument string) {
	for {
		timer := time.NewTimer(g.nextInterval())
		select {
		case <-host.StopCh():
			timer.Stop()
			return
		case <-timer.C:
		}

		host.Lock()
		g.step(host, registry, queue, instrument)
		host.Unlock()
	}
}

// step must be called with host's lock held.
func (g *Generator) step(host Host, registry *session.Registry, queue *marketdata.Queue, instrument string) {
	book, ok := host.Lookup(instrument)
	if !ok {
		return
	}
	now := host.Now()

	switch g.Type {
	case EventAdd:
		g.stepAdd(book, queue, instrument, now)
	case EventCancel:
		g.stepCancel(book, queue, instrument, now)
	case EventMarket:
		g.stepMarket(book, registry, queue, instrument, now)
	}
}

// stepAdd rests a new limit order pegged away from the touch; by
// construction (see pegPrice) it never crosses, so no trade bookkeeping is
// needed — only the public add (spec.md §4.7 step 3).
func (g *Generator) stepAdd(book *orderbook.OrderBook, queue *marketdata.Queue, instrument string, now time.Time) {
	order := &domain.Order{
		Side:       g.Side,
		Type:       domain.OrderTypeLimit,
		Price:      g.pegPrice(book),
		Quantity:   randomLimitQuantity(),
		Instrument: instrument,
	}
	_, placed, _ := book.ProcessOrder(order, now)
	if placed.Quantity == 0 {
		return
	}
	publish(queue, instrument, wire.TopicOrderBookL2, wire.Added{
		MessageType: wire.TypeAdd,
		OrderID:     placed.ID,
		Instrument:  instrument,
		OrderType:   wire.OrderTypeToWire(domain.OrderTypeLimit),
		Quantity:    placed.Quantity,
		Price:       placed.Price,
		Side:        wire.SideToWire(g.Side),
		Timestamp:   wire.EpochMicros(placed.Timestamp),
		Snapshot:    0,
	})
}

// stepCancel picks a uniformly random resting order at the pegged level and
// cancels it, if one exists (spec.md §4.7 step 4).
func (g *Generator) stepCancel(book *orderbook.OrderBook, queue *marketdata.Queue, instrument string, now time.Time) {
	price := g.pegPrice(book)
	id, ok := book.RandomRestingOrderAt(g.Side, price, rand.Intn)
	if !ok {
		return
	}
	existing := book.GetOrder(id)
	if existing == nil {
		return
	}
	book.CancelOrder(g.Side, id, now)
	publish(queue, instrument, wire.TopicOrderBookL2, wire.Canceled{
		MessageType: wire.TypeCancel,
		OrderID:     id,
		Instrument:  instrument,
		Side:        wire.SideToWire(g.Side),
		Price:       existing.Price,
		Timestamp:   wire.EpochMicros(now),
	})
}

// stepMarket submits a market order and relays every consequence exactly as
// a real client's would be: passive owners get a direct Executed, the
// aggressor side (simulated, so ownerless) is published rather than sent,
// and every passive remove/modify goes to the public feed (spec.md §4.7
// step 5, mirroring event_generation_loop's MARKET_ORDER branch).
func (g *Generator) stepMarket(book *orderbook.OrderBook, registry *session.Registry, queue *marketdata.Queue, instrument string, now time.Time) {
	order := &domain.Order{
		Side:       g.Side,
		Type:       domain.OrderTypeMarket,
		Quantity:   randomMarketQuantity(),
		Instrument: instrument,
	}
	trades, _, _ := book.ProcessOrder(order, now)

	for _, t := range trades {
		metrics.Get().RecordTrade(t.Instrument, t.TradedQuantity)
	}

	for _, pm := range trades.PassiveMessages() {
		if pm.Owner == nil {
			continue
		}
		owner, ok := registry.Get(*pm.Owner)
		if !ok {
			continue
		}
		send(owner, wire.Executed{
			MessageType: wire.TypeExecuted,
			OrderType:   wire.OrderTypeToWire(pm.Message.OrderType),
			OrderID:     pm.Message.OrderID,
			Side:        wire.SideToWire(pm.Message.Side),
			Price:       pm.Message.Price,
			Quantity:    pm.Message.Quantity,
			Instrument:  pm.Message.Instrument,
			Timestamp:   wire.EpochMicros(pm.Message.Timestamp),
		})
	}

	for _, msg := range trades.AggressorMessages() {
		publish(queue, msg.Instrument, wire.TopicTrade, wire.Executed{
			MessageType: wire.TypeExecuted,
			OrderType:   wire.OrderTypeToWire(msg.OrderType),
			OrderID:     msg.OrderID,
			Side:        wire.SideToWire(msg.Side),
			Price:       msg.Price,
			Quantity:    msg.Quantity,
			Instrument:  msg.Instrument,
			Timestamp:   wire.EpochMicros(msg.Timestamp),
		})
	}

	for _, rm := range trades.RemoveOrModifyMessages() {
		if rm.Remove {
			publish(queue, rm.Instrument, wire.TopicOrderBookL2, wire.Canceled{
				MessageType: wire.TypeCancel,
				OrderID:     rm.OrderID,
				Instrument:  rm.Instrument,
				Side:        wire.SideToWire(rm.Side),
				Price:       rm.Price,
				Timestamp:   wire.EpochMicros(rm.Timestamp),
			})
			continue
		}
		publish(queue, rm.Instrument, wire.TopicOrderBookL2, wire.Modified{
			MessageType: wire.TypeModify,
			OrderID:     rm.OrderID,
			Instrument:  rm.Instrument,
			Side:        wire.SideToWire(rm.Side),
			Price:       rm.Price,
			Quantity:    rm.NewQuantity,
			Timestamp:   wire.EpochMicros(rm.Timestamp),
		})
	}
}
