package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/studyhall/seatadmin/internal/bus"
	"github.com/studyhall/seatadmin/internal/model"
	"github.com/studyhall/seatadmin/internal/store"
)

// Persister is the booking persistence collaborator.  It re-validates on
// its own and may reject a booking independently of the local guard; any
// such rejection is handled as a conflict regardless of origin.
type Persister interface {
	CreateBooking(ctx context.Context, b *model.Booking) error
	UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) error
}

// Guard is the single choke point through which booking-driven seat
// mutation is allowed.  Commit re-checks the no-overlap invariant against
// all active bookings under one lock and then performs the seat
// transition, the booking record and the notification as one logical
// unit, so a seat marked occupied without a booking record (or the
// reverse) is structurally impossible.
type Guard struct {
	mu        sync.Mutex
	seats     *store.SeatStore
	registry  *Registry
	persister Persister
	bus       *bus.Bus
	log       *zap.Logger
	now       func() time.Time
}

// NewGuard wires the guard to the authoritative seat store, the active
// booking registry, the persistence collaborator and the notification
// bus.
func NewGuard(seats *store.SeatStore, registry *Registry, persister Persister, b *bus.Bus, log *zap.Logger) *Guard {
	return &Guard{
		seats:     seats,
		registry:  registry,
		persister: persister,
		bus:       b,
		log:       log,
		now:       time.Now,
	}
}

// Commit is the authoritative, submit-time enforcement of the no-overlap
// invariant.  It recomputes overlap against every active booking for the
// seat — not just whatever the advisory check saw — and rejects with
// ErrBookingConflict on any hit, mutating nothing.  On success the seat
// moves to occupied (interval already underway) or pre-booked (future
// start), the booking record is created, and the change is published.
func (g *Guard) Commit(ctx context.Context, b *model.Booking, occupant *model.Student) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, existing := range g.registry.ActiveForSeat(b.SeatID) {
		if existing.Overlaps(b.Date, b.Start, b.End) {
			return fmt.Errorf("%w: overlaps booking %s", ErrBookingConflict, existing.ID)
		}
	}
	seat, err := g.seats.Get(b.SeatID)
	if err != nil {
		return err
	}
	if seat.Status == model.SeatMaintenance {
		return fmt.Errorf("%w: seat %s is under maintenance", ErrBookingConflict, b.SeatID)
	}
	// An occupant with no booking behind it means an administrative
	// reservation; the guard will not silently displace it.
	if seat.Status.RequiresOccupant() && len(g.registry.ActiveForSeat(b.SeatID)) == 0 {
		return fmt.Errorf("%w: seat %s is reserved", ErrBookingConflict, b.SeatID)
	}

	status, err := g.statusFor(b)
	if err != nil {
		return err
	}
	if status == model.SeatPreBooked && seat.Status.RequiresOccupant() {
		// An earlier booking already labels the seat; the advance booking
		// queues behind it without changing the display.
		status = seat.Status
		occupant = seat.Occupant
	}
	b.Status = model.BookingActive
	b.CreatedAt = g.now().UTC()

	if err := g.persister.CreateBooking(ctx, b); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		// Collaborator rejections are conflicts regardless of origin.
		return fmt.Errorf("%w: persistence rejected: %v", ErrBookingConflict, err)
	}
	if _, err := g.seats.SetStatus(b.SeatID, status, occupant); err != nil {
		// Undo the record so store and collaborator cannot diverge.
		if cErr := g.persister.UpdateBookingStatus(ctx, b.ID, model.BookingCancelled); cErr != nil {
			g.log.Error("failed to undo booking record after seat transition failure",
				zap.String("booking_id", b.ID), zap.Error(cErr))
		}
		return err
	}
	g.registry.add(*b, occupant)
	g.bus.Publish(bus.SeatStatusChanged{SeatID: b.SeatID, Status: status, Occupant: occupant})
	return nil
}

// Release finalises an active booking as completed or cancelled and frees
// its seat through the same transition-and-publish path a commit uses.
// When other active bookings remain on the seat, the seat is re-labelled
// for the next one instead of being freed.
func (g *Guard) Release(ctx context.Context, bookingID string, final model.BookingStatus) error {
	if final != model.BookingCompleted && final != model.BookingCancelled {
		return fmt.Errorf("booking: %q is not a terminal status", final)
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	b, ok := g.registry.Get(bookingID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
	}
	if err := g.persister.UpdateBookingStatus(ctx, bookingID, final); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return err
	}
	_, remaining, _ := g.registry.remove(bookingID)

	status := model.SeatAvailable
	var occupant *model.Student
	if len(remaining) > 0 {
		next := remaining[0]
		occupant = next.occupant
		status = model.SeatPreBooked
		if g.covers(next.booking) {
			status = model.SeatOccupied
		}
	}
	if _, err := g.seats.SetStatus(b.SeatID, status, occupant); err != nil {
		return err
	}
	g.bus.Publish(bus.SeatStatusChanged{SeatID: b.SeatID, Status: status, Occupant: occupant})
	return nil
}

// statusFor decides the post-commit seat status: pre-booked when the
// booking starts in the future, occupied otherwise.
func (g *Guard) statusFor(b *model.Booking) (model.SeatStatus, error) {
	day, err := time.Parse(model.DateLayout, b.Date)
	if err != nil {
		return "", &ValidationError{Field: "date", Message: err.Error()}
	}
	start := day.Add(time.Duration(b.Start) * time.Minute)
	if start.After(g.now().UTC()) {
		return model.SeatPreBooked, nil
	}
	return model.SeatOccupied, nil
}

// covers reports whether the booking's interval contains the current
// instant.
func (g *Guard) covers(b model.Booking) bool {
	now := g.now().UTC()
	if now.Format(model.DateLayout) != b.Date {
		return false
	}
	minute := model.ClockTime(now.Hour()*60 + now.Minute())
	return b.Start <= minute && minute < b.End
}
