package session

import (
	"encoding/json"
	"time"

	"lobcore/domain"
	"lobcore/marketdata"
	"lobcore/metrics"
	"lobcore/orderbook"
	"lobcore/wire"
)

// BookRegistry resolves an instrument symbol to its order book. Defined
// here (rather than imported from engine) so this package has no dependency
// on engine — engine depends on session, not the other way around.
type BookRegistry interface {
	Lookup(instrument string) (*orderbook.OrderBook, bool)
}

func send(s *Session, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = s.Send(raw)
}

func publish(q *marketdata.Queue, instrument, topic string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	q.Push(marketdata.Event{Instrument: instrument, Topic: topic, Payload: raw})
}

// HandleAdd implements spec.md §4.5 step 3's `A` dispatch: enter a new
// order, or modify an existing one the session's book already knows by id.
// Must be called with the engine's single lock held.
func HandleAdd(s *Session, req wire.AddOrModifyRequest, books BookRegistry, registry *Registry, queue *marketdata.Queue, now time.Time) {
	book, ok := books.Lookup(req.Instrument)
	if !ok {
		metrics.Get().RecordRejected(req.Instrument, "Invalid symbol")
		send(s, wire.Rejected{
			MessageType: wire.TypeRejected,
			Instrument:  req.Instrument,
			Side:        req.Side,
			Quantity:    req.Quantity,
			Price:       req.Price,
			OrderType:   req.OrderType,
			Reason:      "Invalid symbol",
			Timestamp:   wire.EpochMicros(now),
		})
		return
	}

	side, _ := wire.SideFromWire(req.Side)
	orderType, _ := wire.OrderTypeFromWire(req.OrderType)

	if req.OrderID != nil {
		if existing := book.GetOrder(*req.OrderID); existing != nil {
			book.ModifyOrder(existing.Side, existing.ID, orderbook.OrderUpdate{
				Price:    req.Price,
				Quantity: req.Quantity,
			}, now)
			s.Orders[existing.ID] = book.GetOrder(existing.ID)
			send(s, wire.Accepted{
				MessageType: wire.TypeAccepted,
				Instrument:  req.Instrument,
				OrderType:   req.OrderType,
				Side:        req.Side,
				Quantity:    req.Quantity,
				Price:       req.Price,
				OrderID:     existing.ID,
				Timestamp:   wire.EpochMicros(now),
			})
			return
		}
	}

	requested := req.Quantity
	order := &domain.Order{
		Side:       side,
		Type:       orderType,
		Price:      req.Price,
		Quantity:   req.Quantity,
		Instrument: req.Instrument,
		Owner:      &s.TraderID,
	}
	trades, placed, smpCancels := book.ProcessOrder(order, now)
	metrics.Get().RecordAccepted(req.Instrument, req.Side, req.OrderType)

	for _, cancel := range smpCancels {
		metrics.Get().RecordSMPCancel(cancel.Instrument)
		delete(s.Orders, cancel.OrderID)
		send(s, wire.Canceled{
			MessageType: wire.TypeCancel,
			OrderID:     cancel.OrderID,
			Instrument:  cancel.Instrument,
			Side:        wire.SideToWire(cancel.Side),
			Quantity:    cancel.Quantity,
			Price:       cancel.Price,
			Timestamp:   wire.EpochMicros(cancel.Timestamp),
			Reason:      "Self-Match-Prevention",
		})
		publish(queue, cancel.Instrument, wire.TopicOrderBookL2, wire.Canceled{
			MessageType: wire.TypeCancel,
			OrderID:     cancel.OrderID,
			Instrument:  cancel.Instrument,
			Side:        wire.SideToWire(cancel.Side),
			Price:       cancel.Price,
			Timestamp:   wire.EpochMicros(cancel.Timestamp),
		})
	}

	send(s, wire.Accepted{
		MessageType: wire.TypeAccepted,
		Instrument:  req.Instrument,
		OrderType:   req.OrderType,
		Side:        req.Side,
		Quantity:    requested,
		Price:       req.Price,
		OrderID:     placed.ID,
		Timestamp:   wire.EpochMicros(placed.Timestamp),
	})

	if placed.Quantity > 0 {
		s.Orders[placed.ID] = placed
	}

	for _, msg := range trades.AggressorMessages() {
		metrics.Get().RecordTrade(msg.Instrument, msg.Quantity)
		send(s, wire.Executed{
			MessageType: wire.TypeExecuted,
			OrderType:   wire.OrderTypeToWire(msg.OrderType),
			OrderID:     msg.OrderID,
			Side:        wire.SideToWire(msg.Side),
			Price:       msg.Price,
			Quantity:    msg.Quantity,
			Instrument:  msg.Instrument,
			Timestamp:   wire.EpochMicros(msg.Timestamp),
		})
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

	for _, t := range trades {
		if t.FullyConsumed() && t.PassiveOwner != nil {
			if owner, ok := registry.Get(*t.PassiveOwner); ok {
				delete(owner.Orders, t.PassiveID)
			}
		}
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

	if placed.Quantity > 0 {
		publish(queue, req.Instrument, wire.TopicOrderBookL2, wire.Added{
			MessageType: wire.TypeAdd,
			OrderID:     placed.ID,
			Instrument:  req.Instrument,
			OrderType:   wire.OrderTypeToWire(domain.OrderTypeLimit),
			Quantity:    placed.Quantity,
			Price:       placed.Price,
			Side:        req.Side,
			Timestamp:   wire.EpochMicros(placed.Timestamp),
			Snapshot:    0,
		})
	}
}

// HandleCancel implements spec.md §4.5 step 3's `X` dispatch.
func HandleCancel(s *Session, req wire.CancelRequest, books BookRegistry, queue *marketdata.Queue, now time.Time) {
	book, ok := books.Lookup(req.Instrument)
	if !ok {
		send(s, wire.Rejected{MessageType: wire.TypeRejected, Instrument: req.Instrument, Reason: "Invalid symbol", Timestamp: wire.EpochMicros(now)})
		return
	}
	if !s.OwnsOrder(req.OrderID) {
		send(s, wire.Rejected{MessageType: wire.TypeRejected, Instrument: req.Instrument, Reason: "Not your order", Timestamp: wire.EpochMicros(now)})
		return
	}
	existing := book.GetOrder(req.OrderID)
	if existing == nil {
		send(s, wire.Rejected{MessageType: wire.TypeRejected, Instrument: req.Instrument, Reason: "OrderId not found", Timestamp: wire.EpochMicros(now)})
		return
	}

	book.CancelOrder(existing.Side, req.OrderID, now)
	delete(s.Orders, req.OrderID)
	s.CanceledOrders[req.OrderID] = true
	metrics.Get().RecordCancel(req.Instrument)

	send(s, wire.Canceled{
		MessageType: wire.TypeCancel,
		OrderID:     req.OrderID,
		Instrument:  req.Instrument,
		Side:        wire.SideToWire(existing.Side),
		Quantity:    existing.Quantity,
		Price:       existing.Price,
		Timestamp:   wire.EpochMicros(now),
		Reason:      "Client request",
	})
	publish(queue, req.Instrument, wire.TopicOrderBookL2, wire.Canceled{
		MessageType: wire.TypeCancel,
		OrderID:     req.OrderID,
		Instrument:  req.Instrument,
		Side:        wire.SideToWire(existing.Side),
		Price:       existing.Price,
		Timestamp:   wire.EpochMicros(now),
	})
}

// HandleConfigure implements spec.md §4.5 step 3's `C` dispatch: acknowledge
// with no state change.
func HandleConfigure(s *Session) {
	send(s, wire.ConfigAck{MessageType: wire.TypeConfig})
}

// HandleSubscribe implements the `subscribe` request: records each
// topic:symbol pair and, the first time this session subscribes to
// orderBookL2 on any instrument, streams a full book snapshot before any
// live delta can reach it (spec.md §4.6 "Snapshot protocol").
func HandleSubscribe(s *Session, req wire.SubscribeRequest, books BookRegistry) {
	alreadySent := s.SnapshotSent
	sentSnapshot := false
	subs := wire.ParseSubscriptionArgs(req.Args)
	for _, sub := range subs {
		s.Subscribe(sub.Instrument, sub.Topic)
		if sub.Topic != wire.TopicOrderBookL2 || alreadySent {
			continue
		}
		book, ok := books.Lookup(sub.Instrument)
		if !ok {
			continue
		}
		frames, err := marketdata.EncodeSnapshot(sub.Instrument, book)
		if err != nil {
			continue
		}
		for _, frame := range frames {
			_ = s.Send(frame)
		}
		sentSnapshot = true
	}
	if sentSnapshot {
		s.SnapshotSent = true
	}
}

// HandleUnsubscribe implements the `unsubscribe` request.
func HandleUnsubscribe(s *Session, req wire.SubscribeRequest) {
	for _, sub := range wire.ParseSubscriptionArgs(req.Args) {
		s.Unsubscribe(sub.Instrument, sub.Topic)
	}
}
