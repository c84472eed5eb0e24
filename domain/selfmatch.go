package domain

import "time"

// SelfMatchCancel records a resting order canceled because a newly arriving
// order from the same owner would otherwise have matched it (spec.md §3, §4.3
// step 2). Carries the canceled order's full attributes so the caller can
// build both the owner-facing cancel notice and the public remove message
// without looking the order up again — by the time the caller sees this, the
// order is already gone from the book.
type SelfMatchCancel struct {
	OrderID    OrderID
	Instrument string
	Side       Side
	Quantity   int64
	Price      int64
	Timestamp  time.Time
	Owner      *TraderID
}
