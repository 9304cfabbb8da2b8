// Package store holds the in-memory seat collection backing one rendered
// seat map view.  All mutation goes through SetStatus so the status/occupant
// invariant is enforced in exactly one place; ad hoc writes from call sites
// are not possible.
package store

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/studyhall/seatadmin/internal/bus"
	"github.com/studyhall/seatadmin/internal/model"
)

// ErrSeatNotFound is returned when a seat ID is not part of this view.
var ErrSeatNotFound = errors.New("store: seat not found")

// ErrInvalidTransition is returned when a requested status and occupant
// combination breaks the invariant that a seat carries an occupant exactly
// when its status requires one.  It indicates a programming error in the
// caller and is logged as such rather than silently swallowed.
var ErrInvalidTransition = errors.New("store: status and occupant do not agree")

// Filter narrows the result of List.  The zero value matches every seat.
type Filter struct {
	OnlyAvailable bool
	Zone          model.SeatZone
}

// SeatStore is the source of truth for one seat map view.  Mutations are
// applied synchronously under a lock, so readers never observe a partial
// update.  Independent views converge by following the notification bus.
type SeatStore struct {
	mu    sync.RWMutex
	order []string
	seats map[string]*model.Seat
	log   *zap.Logger
}

// New builds a store from a generated seat layout.  The input order is
// preserved for List so views render rows deterministically.
func New(seats []model.Seat, log *zap.Logger) *SeatStore {
	s := &SeatStore{
		order: make([]string, 0, len(seats)),
		seats: make(map[string]*model.Seat, len(seats)),
		log:   log,
	}
	for i := range seats {
		seat := seats[i]
		s.order = append(s.order, seat.ID)
		s.seats[seat.ID] = &seat
	}
	return s
}

// Get returns a copy of the seat with the given ID.
func (s *SeatStore) Get(id string) (model.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seat, ok := s.seats[id]
	if !ok {
		return model.Seat{}, fmt.Errorf("%w: %s", ErrSeatNotFound, id)
	}
	return *seat, nil
}

// SetStatus transitions a seat to the given status with the given occupant.
// The status/occupant invariant is validated before anything is written, so
// a rejected call leaves the seat untouched.  The updated seat is returned
// by value.
func (s *SeatStore) SetStatus(id string, status model.SeatStatus, occupant *model.Student) (model.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, ok := s.seats[id]
	if !ok {
		return model.Seat{}, fmt.Errorf("%w: %s", ErrSeatNotFound, id)
	}
	if err := checkTransition(status, occupant); err != nil {
		s.log.Error("rejected seat transition",
			zap.String("seat_id", id),
			zap.String("status", string(status)),
			zap.Bool("occupant", occupant != nil),
			zap.Error(err))
		return model.Seat{}, err
	}
	seat.Status = status
	seat.Occupant = occupant
	return *seat, nil
}

// List returns copies of the seats matching the filter, in layout order.
func (s *SeatStore) List(f Filter) []model.Seat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Seat, 0, len(s.order))
	for _, id := range s.order {
		seat := s.seats[id]
		if f.OnlyAvailable && seat.Status != model.SeatAvailable {
			continue
		}
		if f.Zone != "" && seat.Zone != f.Zone {
			continue
		}
		out = append(out, *seat)
	}
	return out
}

// Apply folds a SeatStatusChanged event into the store.  Applying an event
// the store already reflects is a no-op, so redelivery is harmless.  Events
// for seats outside this view are ignored; an event that would break the
// invariant is reported and dropped rather than applied.
func (s *SeatStore) Apply(ev bus.SeatStatusChanged) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, ok := s.seats[ev.SeatID]
	if !ok {
		return
	}
	if seat.Status == ev.Status && sameStudent(seat.Occupant, ev.Occupant) {
		return
	}
	if err := checkTransition(ev.Status, ev.Occupant); err != nil {
		s.log.Error("dropped invalid seat status event",
			zap.String("seat_id", ev.SeatID),
			zap.String("status", string(ev.Status)),
			zap.Error(err))
		return
	}
	seat.Status = ev.Status
	seat.Occupant = ev.Occupant
}

// Follow subscribes the store to a bus so it mirrors every seat status
// change published after the call.  The caller owns the subscription and
// must unsubscribe when the view is torn down.
func (s *SeatStore) Follow(b *bus.Bus) bus.Subscription {
	return b.Subscribe(s.Apply)
}

func checkTransition(status model.SeatStatus, occupant *model.Student) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}
	if status.RequiresOccupant() && occupant == nil {
		return fmt.Errorf("%w: %s requires an occupant", ErrInvalidTransition, status)
	}
	if !status.RequiresOccupant() && occupant != nil {
		return fmt.Errorf("%w: %s must not carry an occupant", ErrInvalidTransition, status)
	}
	return nil
}

func sameStudent(a, b *model.Student) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}
