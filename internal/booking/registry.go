package booking

import (
	"sort"
	"sync"

	"github.com/studyhall/seatadmin/internal/model"
)

// entry pairs an active booking with the student reference attached when
// it was committed, so a seat can be re-labelled with the right occupant
// when an earlier booking on it is released.
type entry struct {
	booking  model.Booking
	occupant *model.Student
}

// Registry is the in-memory index of active bookings, keyed by seat.  It
// backs both the advisory checker and the conflict guard.  Entries enter
// through the guard's commit path and leave through release; the registry
// itself never decides anything.
type Registry struct {
	mu     sync.RWMutex
	bySeat map[string][]*entry
	byID   map[string]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bySeat: make(map[string][]*entry),
		byID:   make(map[string]*entry),
	}
}

// ActiveForSeat returns copies of the active bookings for a seat.
func (r *Registry) ActiveForSeat(seatID string) []model.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.bySeat[seatID]
	out := make([]model.Booking, len(entries))
	for i, e := range entries {
		out[i] = e.booking
	}
	return out
}

// Get returns a copy of an active booking by ID.
func (r *Registry) Get(id string) (model.Booking, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	if !ok {
		return model.Booking{}, false
	}
	return e.booking, true
}

// Load seeds the registry with already-active bookings, e.g. from the
// persistence collaborator at startup.  Occupants are reconstructed from
// the booking's student ID alone when no richer reference is available.
func (r *Registry) Load(bookings []model.Booking, occupants map[string]*model.Student) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range bookings {
		b := bookings[i]
		occ := occupants[b.StudentID]
		if occ == nil {
			occ = &model.Student{ID: b.StudentID}
		}
		r.put(&entry{booking: b, occupant: occ})
	}
}

func (r *Registry) put(e *entry) {
	r.byID[e.booking.ID] = e
	r.bySeat[e.booking.SeatID] = append(r.bySeat[e.booking.SeatID], e)
}

func (r *Registry) add(b model.Booking, occupant *model.Student) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(&entry{booking: b, occupant: occupant})
}

// remove drops a booking from the index and reports the remaining active
// entries on the same seat, ordered by start so callers can find the next
// occupant cheaply.
func (r *Registry) remove(id string) (removed entry, remaining []entry, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, found := r.byID[id]
	if !found {
		return entry{}, nil, false
	}
	delete(r.byID, id)
	seatEntries := r.bySeat[e.booking.SeatID]
	kept := seatEntries[:0]
	for _, se := range seatEntries {
		if se.booking.ID != id {
			kept = append(kept, se)
		}
	}
	if len(kept) == 0 {
		delete(r.bySeat, e.booking.SeatID)
	} else {
		r.bySeat[e.booking.SeatID] = kept
	}
	remaining = make([]entry, len(kept))
	for i, se := range kept {
		remaining[i] = *se
	}
	sort.Slice(remaining, func(i, j int) bool {
		if remaining[i].booking.Date != remaining[j].booking.Date {
			return remaining[i].booking.Date < remaining[j].booking.Date
		}
		return remaining[i].booking.Start < remaining[j].booking.Start
	})
	return *e, remaining, true
}
