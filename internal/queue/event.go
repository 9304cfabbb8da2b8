// Package queue defines message payloads exchanged over the message broker.
package queue

// SeatStatusChangedEvent is the out-of-process form of a seat status
// change.  It mirrors the in-process bus event with enough denormalized
// detail for downstream consumers to log or notify without querying the
// service.
type SeatStatusChangedEvent struct {
	SeatID       string `json:"seat_id"`
	SeatNumber   uint32 `json:"seat_number"`
	Status       string `json:"status"`
	OccupantID   string `json:"occupant_id,omitempty"`
	OccupantName string `json:"occupant_name,omitempty"`
	ChangedAt    string `json:"changed_at"`
}
