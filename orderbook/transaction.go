package orderbook

import (
	"time"

	"lobcore/domain"
)

// Transaction is one match produced by a single process-order step
// (spec.md §3 "Transaction"). The passive side's price is always the traded
// price (§4.3's match-against-queue rule: the taker's limit is never
// improved on, because ladder ordering already guarantees the taker cannot
// sweep past it).
type Transaction struct {
	AggressorID        domain.OrderID
	AggressorSide      domain.Side
	AggressorOrderType domain.OrderType

	PassiveID               domain.OrderID
	PassiveOwner            *domain.TraderID
	PassiveSide             domain.Side
	PassiveQuantityRemaining int64

	TradedPrice    int64
	TradedQuantity int64
	Instrument     string
	Timestamp      time.Time
}

// FullyConsumed reports whether the passive order was entirely filled by
// this transaction and therefore no longer rests in the book.
func (t Transaction) FullyConsumed() bool {
	return t.PassiveQuantityRemaining == 0
}

// TransactionList is the ordered sequence of Transactions produced by one
// ProcessOrder call, in match order: best price first, FIFO within a price
// (spec.md §3 "TransactionList").
type TransactionList []Transaction

func (l TransactionList) IsEmpty() bool {
	return len(l) == 0
}

// TradeMessage is the wire-agnostic projection of one "E" (executed)
// message, addressed either to the aggressor or to one passive owner.
type TradeMessage struct {
	OrderID    domain.OrderID
	OrderType  domain.OrderType
	Side       domain.Side
	Price      int64
	Quantity   int64
	Instrument string
	Timestamp  time.Time
}

// RemoveOrModifyMessage is the public-feed projection of one transaction's
// effect on the passive order: a full remove ("X") or a quantity modify
// ("M"), per spec.md §4.4.
type RemoveOrModifyMessage struct {
	OrderID     domain.OrderID
	Side        domain.Side
	Price       int64
	Instrument  string
	Timestamp   time.Time
	Remove      bool  // true => "X", false => "M"
	NewQuantity int64 // valid only when !Remove
}

// AggressorMessages returns one trade message per transaction, addressed to
// the aggressor (spec.md §4.4).
func (l TransactionList) AggressorMessages() []TradeMessage {
	msgs := make([]TradeMessage, 0, len(l))
	for _, t := range l {
		msgs = append(msgs, TradeMessage{
			OrderID:    t.AggressorID,
			OrderType:  t.AggressorOrderType,
			Side:       t.AggressorSide,
			Price:      t.TradedPrice,
			Quantity:   t.TradedQuantity,
			Instrument: t.Instrument,
			Timestamp:  t.Timestamp,
		})
	}
	return msgs
}

// PassiveMessage pairs a trade message with the owner it must be delivered
// to; owner == nil means the passive order was simulated and the message is
// dropped rather than delivered (spec.md §4.4, §9 "owner references are
// looked up, never held").
type PassiveMessage struct {
	Owner   *domain.TraderID
	Message TradeMessage
}

// PassiveMessages returns one trade message per transaction, addressed to
// each passive owner. Always order-type LMT, since only resting (hence
// limit) orders can be the passive side.
func (l TransactionList) PassiveMessages() []PassiveMessage {
	msgs := make([]PassiveMessage, 0, len(l))
	for _, t := range l {
		msgs = append(msgs, PassiveMessage{
			Owner: t.PassiveOwner,
			Message: TradeMessage{
				OrderID:    t.PassiveID,
				OrderType:  domain.OrderTypeLimit,
				Side:       t.PassiveSide,
				Price:      t.TradedPrice,
				Quantity:   t.TradedQuantity,
				Instrument: t.Instrument,
				Timestamp:  t.Timestamp,
			},
		})
	}
	return msgs
}

// RemoveOrModifyMessages returns one message per transaction describing what
// happened to the passive order: full remove or a quantity modify.
func (l TransactionList) RemoveOrModifyMessages() []RemoveOrModifyMessage {
	msgs := make([]RemoveOrModifyMessage, 0, len(l))
	for _, t := range l {
		msgs = append(msgs, RemoveOrModifyMessage{
			OrderID:     t.PassiveID,
			Side:        t.PassiveSide,
			Price:       t.TradedPrice,
			Instrument:  t.Instrument,
			Timestamp:   t.Timestamp,
			Remove:      t.FullyConsumed(),
			NewQuantity: t.PassiveQuantityRemaining,
		})
	}
	return msgs
}

// TotalTraded sums TradedQuantity across the list; used by the conservation
// invariant in tests (spec.md §8).
func (l TransactionList) TotalTraded() int64 {
	var sum int64
	for _, t := range l {
		sum += t.TradedQuantity
	}
	return sum
}
