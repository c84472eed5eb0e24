// Package wire implements the public frame schema: decoding inbound client
// requests (C5) and encoding outbound engine events (C6), plus the WebSocket
// upgrade helper both gateways (order-entry and market-data) share.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"lobcore/domain"
)

// Inbound message-type discriminants (spec.md §6).
const (
	TypeAdd         = "A"
	TypeCancel      = "X"
	TypeConfig      = "C"
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
)

// Order-type wire tokens.
const (
	WireOrderTypeLimit  = "LMT"
	WireOrderTypeMarket = "MKT"
)

// Side wire tokens.
const (
	WireSideBuy  = "B"
	WireSideSell = "S"
)

// ErrMalformedFrame is returned for any frame that fails schema validation.
// Per spec.md §7, the caller's response to this is to drop the frame
// silently — it is never turned into an `R` reply, since the client sent
// something the engine could not even identify.
var ErrMalformedFrame = errors.New("wire: malformed frame")

// Envelope is the minimal shape every inbound frame must satisfy, just
// enough to dispatch on message-type before parsing the rest (mirrors the
// source's MessageFactory.create, which switches on the same field).
type Envelope struct {
	MessageType string `json:"message-type"`
}

// AddOrModifyRequest is the decoded `A` frame: enter a new order, or modify
// an existing one if OrderID is non-nil and already known to the book.
type AddOrModifyRequest struct {
	Instrument string `json:"instrument"`
	OrderType  string `json:"order-type"`
	Side       string `json:"side"`
	Quantity   int64  `json:"quantity"`
	Price      int64  `json:"price,omitempty"`
	OrderID    *int64 `json:"order-id,omitempty"`
}

// CancelRequest is the decoded `X` frame.
type CancelRequest struct {
	Instrument string `json:"instrument"`
	OrderID    int64  `json:"order-id"`
}

// ConfigRequest is the decoded `C` frame. The payload carries no fields this
// engine acts on (spec.md §4.5 step 3: "Acknowledge; no state change").
type ConfigRequest struct {
	Payload map[string]any `json:"-"`
}

// SubscribeRequest is the decoded `subscribe`/`unsubscribe` frame. Each arg
// is a "topic:symbol" pair, e.g. "orderBookL2:AAPL".
type SubscribeRequest struct {
	Args []string `json:"args"`
}

// DecodeEnvelope extracts just the message-type from a raw frame, without
// validating the rest of the schema. Returns ErrMalformedFrame if the frame
// is not even a JSON object with a message-type string.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.MessageType == "" {
		return Envelope{}, ErrMalformedFrame
	}
	return env, nil
}

// DecodeAddOrModify validates and lifts an `A` frame.
func DecodeAddOrModify(raw []byte) (AddOrModifyRequest, error) {
	var req AddOrModifyRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return AddOrModifyRequest{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if req.Instrument == "" {
		return AddOrModifyRequest{}, fmt.Errorf("%w: missing instrument", ErrMalformedFrame)
	}
	if req.OrderType != WireOrderTypeLimit && req.OrderType != WireOrderTypeMarket {
		return AddOrModifyRequest{}, fmt.Errorf("%w: unknown order-type %q", ErrMalformedFrame, req.OrderType)
	}
	if req.Side != WireSideBuy && req.Side != WireSideSell {
		return AddOrModifyRequest{}, fmt.Errorf("%w: unknown side %q", ErrMalformedFrame, req.Side)
	}
	if req.Quantity < 1 {
		return AddOrModifyRequest{}, fmt.Errorf("%w: quantity must be >= 1", ErrMalformedFrame)
	}
	if req.OrderType == WireOrderTypeLimit && req.Price <= 0 {
		return AddOrModifyRequest{}, fmt.Errorf("%w: limit order requires a positive price", ErrMalformedFrame)
	}
	return req, nil
}

// DecodeCancel validates and lifts an `X` frame.
func DecodeCancel(raw []byte) (CancelRequest, error) {
	var req CancelRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return CancelRequest{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if req.Instrument == "" {
		return CancelRequest{}, fmt.Errorf("%w: missing instrument", ErrMalformedFrame)
	}
	return req, nil
}

// DecodeSubscribe validates and lifts a `subscribe`/`unsubscribe` frame.
func DecodeSubscribe(raw []byte) (SubscribeRequest, error) {
	var req SubscribeRequest
	if err := json.Unmarshal(raw, &req); err != nil || len(req.Args) == 0 {
		return SubscribeRequest{}, fmt.Errorf("%w: missing args", ErrMalformedFrame)
	}
	return req, nil
}

// SideFromWire maps a wire side token to domain.Side.
func SideFromWire(s string) (domain.Side, error) {
	switch s {
	case WireSideBuy:
		return domain.SideBuy, nil
	case WireSideSell:
		return domain.SideSell, nil
	default:
		return 0, fmt.Errorf("%w: unknown side %q", ErrMalformedFrame, s)
	}
}

// OrderTypeFromWire maps a wire order-type token to domain.OrderType.
func OrderTypeFromWire(t string) (domain.OrderType, error) {
	switch t {
	case WireOrderTypeLimit:
		return domain.OrderTypeLimit, nil
	case WireOrderTypeMarket:
		return domain.OrderTypeMarket, nil
	default:
		return 0, fmt.Errorf("%w: unknown order-type %q", ErrMalformedFrame, t)
	}
}

// SideToWire is the inverse of SideFromWire, used by the encoder.
func SideToWire(s domain.Side) string {
	if s == domain.SideBuy {
		return WireSideBuy
	}
	return WireSideSell
}

// OrderTypeToWire is the inverse of OrderTypeFromWire.
func OrderTypeToWire(t domain.OrderType) string {
	if t == domain.OrderTypeMarket {
		return WireOrderTypeMarket
	}
	return WireOrderTypeLimit
}
