// Package booking contains the authoritative side of the seat-rental
// core: the active-booking registry, the conflict guard that owns all
// booking-driven seat mutation, and the submission flow state machine.
package booking

import (
	"errors"
	"fmt"

	"github.com/studyhall/seatadmin/internal/availability"
)

// ErrBookingConflict is the authoritative rejection raised at submit
// time when another booking already holds an overlapping interval.  It
// can occur even after a positive advisory check; surface it to the user
// as "seat was taken by someone else".
var ErrBookingConflict = errors.New("booking: seat was taken by a competing booking")

// ErrBookingNotFound is returned when cancelling or completing a booking
// that is not in the active registry.
var ErrBookingNotFound = errors.New("booking: not found")

// ErrTimeout marks a check or submission that did not resolve within the
// configured bound.  It is transient; the flow returns to Draft and the
// caller may retry.
var ErrTimeout = errors.New("booking: operation timed out")

// ErrSuperseded is returned to a submission whose draft was edited while
// the availability confirmation was in flight.  The stale result has been
// discarded; the flow is already evaluating the newer draft.
var ErrSuperseded = errors.New("booking: submission superseded by a newer draft")

// ErrNotDraft is returned when Submit is called on a flow that is not in
// the Draft state (e.g. a second Submit racing the first on the same
// flow instance).
var ErrNotDraft = errors.New("booking: flow is not in draft state")

// RejectedError carries the advisory reason a submission was rejected
// before reaching the authoritative check.
type RejectedError struct {
	Reason availability.Reason
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("booking: rejected (%s)", e.Reason)
}

// ValidationError reports a field-level failure from the Validating step.
// The flow returns to Draft and no state was touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("booking: invalid %s: %s", e.Field, e.Message)
}
