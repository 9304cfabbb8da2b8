// Package repository implements the booking persistence collaborator on
// MySQL. These sentinel values allow higher layers to distinguish
// failure scenarios without inspecting driver errors: ErrConflict marks
// an insert the database itself refused (the collaborator re-validates
// independently of the in-memory guard), ErrBookingNotFound a status
// update against a row that does not exist.
package repository

import "errors"

// ErrConflict is returned when the database rejects a booking because an
// equivalent row already exists. The guard treats it the same as a local
// overlap: the booking is refused and nothing is mutated.
var ErrConflict = errors.New("repository: conflicting booking record")

// ErrBookingNotFound is returned when updating the status of a booking
// that has no persisted record.
var ErrBookingNotFound = errors.New("repository: booking not found")
