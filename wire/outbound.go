package wire

import (
	"strings"
	"time"
)

// Outbound message-type discriminants (spec.md §6).
const (
	TypeAccepted = "Y"
	TypeRejected = "R"
	TypeExecuted = "E"
	TypeModify   = "M"
	// TypeCancel ("X") and TypeAdd ("A") are shared with the inbound side;
	// see the constants in inbound.go.
)

// Topics a subscription can name (spec.md §6).
const (
	TopicOrderBookL2 = "orderBookL2"
	TopicTrade       = "trade"
)

// Accepted is the `Y` reply to a successfully entered or modified order.
type Accepted struct {
	MessageType string `json:"message-type"`
	Instrument  string `json:"instrument"`
	OrderType   string `json:"order-type"`
	Side        string `json:"side"`
	Quantity    int64  `json:"quantity"`
	Price       int64  `json:"price,omitempty"`
	OrderID     int64  `json:"order-id"`
	Timestamp   int64  `json:"timestamp"`
}

// Rejected is the `R` reply to a request the engine refused.
type Rejected struct {
	MessageType string `json:"message-type"`
	Instrument  string `json:"instrument"`
	Side        string `json:"side,omitempty"`
	Quantity    int64  `json:"quantity,omitempty"`
	Price       int64  `json:"price,omitempty"`
	OrderType   string `json:"order-type,omitempty"`
	Reason      string `json:"reason"`
	Timestamp   int64  `json:"timestamp"`
}

// Executed is the `E` message sent for each trade, once to the aggressor and
// once to each passive owner (spec.md §4.4).
type Executed struct {
	MessageType string `json:"message-type"`
	OrderType   string `json:"order-type"`
	OrderID     int64  `json:"order-id"`
	Side        string `json:"side"`
	Price       int64  `json:"price"`
	Quantity    int64  `json:"quantity"`
	Instrument  string `json:"instrument"`
	Timestamp   int64  `json:"timestamp"`
}

// Canceled is the `X` message for both an owner-initiated cancel and an
// SMP-triggered cancel, and for the public remove derived from a full fill.
type Canceled struct {
	MessageType string `json:"message-type"`
	OrderID     int64  `json:"order-id"`
	Instrument  string `json:"instrument"`
	Side        string `json:"side"`
	Quantity    int64  `json:"quantity,omitempty"`
	Price       int64  `json:"price"`
	Timestamp   int64  `json:"timestamp"`
	Reason      string `json:"reason,omitempty"`
}

// Modified is the public `M` message for a partial fill that leaves the
// passive order resting with a smaller quantity.
type Modified struct {
	MessageType string `json:"message-type"`
	OrderID     int64  `json:"order-id"`
	Instrument  string `json:"instrument"`
	Side        string `json:"side"`
	Price       int64  `json:"price"`
	Quantity    int64  `json:"quantity"`
	Timestamp   int64  `json:"timestamp"`
}

// ConfigAck is the `C` reply: spec.md §4.5 step 3 calls for an
// acknowledgement with no state change.
type ConfigAck struct {
	MessageType string `json:"message-type"`
}

// Added is the public `A` message for a residual order resting after
// matching, and for each row of a fresh subscriber's book snapshot (in which
// case Snapshot is 1).
type Added struct {
	MessageType string `json:"message-type"`
	OrderID     int64  `json:"order-id"`
	Instrument  string `json:"instrument"`
	OrderType   string `json:"order-type"`
	Quantity    int64  `json:"quantity"`
	Price       int64  `json:"price"`
	Side        string `json:"side"`
	Timestamp   int64  `json:"timestamp"`
	Snapshot    int    `json:"snapshot"`
}

// EpochMicros converts t to the wire's integer microsecond timestamp,
// matching the source's engine-local microsecond clock (spec.md §3).
func EpochMicros(t time.Time) int64 {
	return t.UnixMicro()
}

// Subscription is one parsed "topic:symbol" pair from a subscribe/unsubscribe
// request's args.
type Subscription struct {
	Topic      string
	Instrument string
}

// ParseSubscriptionArgs splits each "topic:symbol" arg, skipping any that
// don't have exactly one colon or name an unknown topic.
func ParseSubscriptionArgs(args []string) []Subscription {
	subs := make([]Subscription, 0, len(args))
	for _, a := range args {
		parts := strings.SplitN(a, ":", 2)
		if len(parts) != 2 {
			continue
		}
		topic, instrument := parts[0], parts[1]
		if topic != TopicOrderBookL2 && topic != TopicTrade {
			continue
		}
		subs = append(subs, Subscription{Topic: topic, Instrument: instrument})
	}
	return subs
}
