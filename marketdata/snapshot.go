package marketdata

import (
	"encoding/json"

	"lobcore/domain"
	"lobcore/orderbook"
	"lobcore/wire"
)

// BuildSnapshot renders every resting order on both sides of book as a
// sequence of wire Added frames marked Snapshot: 1, bids then asks, each
// side in best-price-then-arrival order (spec.md §4.6 "Snapshot protocol",
// §8 "Snapshot replay" round-trip law).
func BuildSnapshot(instrument string, book *orderbook.OrderBook) []wire.Added {
	bids, asks := book.AllRestingOrders()
	out := make([]wire.Added, 0, len(bids)+len(asks))
	for _, o := range bids {
		out = append(out, snapshotRow(instrument, o))
	}
	for _, o := range asks {
		out = append(out, snapshotRow(instrument, o))
	}
	return out
}

func snapshotRow(instrument string, o *domain.Order) wire.Added {
	return wire.Added{
		MessageType: wire.TypeAdd,
		OrderID:     o.ID,
		Instrument:  instrument,
		OrderType:   wire.OrderTypeToWire(domain.OrderTypeLimit),
		Quantity:    o.Quantity,
		Price:       o.Price,
		Side:        wire.SideToWire(o.Side),
		Timestamp:   wire.EpochMicros(o.Timestamp),
		Snapshot:    1,
	}
}

// EncodeSnapshot renders a snapshot as a slice of already-JSON-encoded
// frames, ready to push onto a session's outbox one at a time.
func EncodeSnapshot(instrument string, book *orderbook.OrderBook) ([][]byte, error) {
	rows := BuildSnapshot(instrument, book)
	frames := make([][]byte, 0, len(rows))
	for _, row := range rows {
		b, err := json.Marshal(row)
		if err != nil {
			return nil, err
		}
		frames = append(frames, b)
	}
	return frames, nil
}
