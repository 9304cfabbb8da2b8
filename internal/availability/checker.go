// Package availability answers whether a seat can be booked for a given
// date and time interval.  The answer is advisory: it is computed from the
// state visible at call time and may be stale by the time the booking is
// submitted, so the conflict guard re-verifies it authoritatively.
package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/studyhall/seatadmin/internal/model"
	"github.com/studyhall/seatadmin/internal/store"
)

// ErrInvalidInterval is returned when the requested end time is not
// strictly after the start time.  It is a local validation failure and is
// raised before any state is inspected.
var ErrInvalidInterval = errors.New("availability: end time must be after start time")

// Reason explains a negative availability decision.
type Reason string

const (
	// ReasonSeatOccupied: the seat carries an occupant the checker cannot
	// prove is gone during the requested interval (e.g. an administrative
	// reservation with no booking record).
	ReasonSeatOccupied Reason = "SeatOccupied"
	// ReasonSeatUnderMaintenance: the seat is out of bookable rotation.
	ReasonSeatUnderMaintenance Reason = "SeatUnderMaintenance"
	// ReasonIntervalOverlap: an active booking overlaps the request.
	ReasonIntervalOverlap Reason = "IntervalOverlap"
)

// Request is one candidate seat/date/interval/shift combination.  The
// shift is carried for display and audit; it never gates the decision.
type Request struct {
	SeatID string
	Date   string
	Start  model.ClockTime
	End    model.ClockTime
	Shift  model.ShiftID
}

// Decision is the checker's answer.  Reason is set iff Available is false.
type Decision struct {
	Available bool   `json:"available"`
	Reason    Reason `json:"reason,omitempty"`
}

// BookingSource yields the active bookings currently known for a seat.
type BookingSource interface {
	ActiveForSeat(seatID string) []model.Booking
}

// Checker reads seat state and active bookings without ever mutating
// either.
type Checker struct {
	seats    *store.SeatStore
	bookings BookingSource
}

// New returns a Checker over the given seat store and booking source.
func New(seats *store.SeatStore, bookings BookingSource) *Checker {
	return &Checker{seats: seats, bookings: bookings}
}

// Check decides whether the requested combination may be booked.
//
// The interval is validated first; end <= start fails with
// ErrInvalidInterval before any lookup.  A seat under maintenance is never
// bookable.  An occupied or pre-booked seat remains bookable for a later,
// non-overlapping slot: only an active booking whose half-open interval
// overlaps the request blocks it.  A seat that carries an occupant with no
// booking record at all (an administrative reservation) is reported
// occupied, since no interval exists to prove the request clear.
func (c *Checker) Check(ctx context.Context, req Request) (Decision, error) {
	if req.End <= req.Start {
		return Decision{}, fmt.Errorf("%w: %s >= %s", ErrInvalidInterval, req.Start, req.End)
	}
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	seat, err := c.seats.Get(req.SeatID)
	if err != nil {
		return Decision{}, err
	}
	if seat.Status == model.SeatMaintenance {
		return Decision{Reason: ReasonSeatUnderMaintenance}, nil
	}
	active := c.bookings.ActiveForSeat(req.SeatID)
	for i := range active {
		if active[i].Overlaps(req.Date, req.Start, req.End) {
			return Decision{Reason: ReasonIntervalOverlap}, nil
		}
	}
	// Occupant present but no booking explains it: nothing proves the seat
	// clear for the requested interval.
	if seat.Status.RequiresOccupant() && len(active) == 0 {
		return Decision{Reason: ReasonSeatOccupied}, nil
	}
	return Decision{Available: true}, nil
}
