package model

import "time"

// BookingStatus tracks the lifecycle of a booking record.
//
// Values:
//  BookingActive    – the booking holds its seat for its interval.
//  BookingCompleted – the interval has been served; the seat is released.
//  BookingCancelled – the booking was withdrawn; the seat is released.
type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking records one student holding one seat for a half-open time
// interval on a single civil date.  For any seat, no two active bookings
// may overlap; the conflict guard is the only code path allowed to add
// one.
//
// Fields:
//  ID        – unique booking identifier (UUID).
//  StudentID – the student the seat is booked for.
//  SeatID    – the seat being booked.
//  Date      – civil date of the interval, formatted per DateLayout.
//  Start     – interval start, inclusive.
//  End       – interval end, exclusive; strictly after Start.
//  Shift     – display label for the slot; does not gate availability.
//  Status    – active, completed or cancelled.
//  CreatedAt – when the booking was committed.
type Booking struct {
	ID        string        `json:"id"`
	StudentID string        `json:"student_id"`
	SeatID    string        `json:"seat_id"`
	Date      string        `json:"date"`
	Start     ClockTime     `json:"start_time"`
	End       ClockTime     `json:"end_time"`
	Shift     ShiftID       `json:"shift"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// Overlaps reports whether the booking's interval overlaps the half-open
// interval [start, end) on the given date.  Two intervals on the same date
// overlap iff s1 < e2 && s2 < e1; touching endpoints do not overlap.
func (b *Booking) Overlaps(date string, start, end ClockTime) bool {
	if b.Date != date {
		return false
	}
	return b.Start < end && start < b.End
}
