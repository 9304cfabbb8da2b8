// Package bus is the in-process publish/subscribe channel that keeps
// independently rendered seat map views in sync.  The component that
// commits a booking publishes a SeatStatusChanged event; every currently
// subscribed view applies it to its own seat store without a shared store
// instance or a server round trip.
package bus

import (
	"sync"

	"go.uber.org/zap"

	"github.com/studyhall/seatadmin/internal/model"
)

// SeatStatusChanged announces that a seat moved to a new status.  The
// occupant is set exactly when the new status requires one.
type SeatStatusChanged struct {
	SeatID   string           `json:"seat_id"`
	Status   model.SeatStatus `json:"status"`
	Occupant *model.Student   `json:"occupant,omitempty"`
}

// Handler receives published events.  Handlers run synchronously on the
// publisher's goroutine and should return quickly.
type Handler func(SeatStatusChanged)

// Subscription identifies one registered handler so it can be removed on
// view teardown.  A subscription left registered after its view is gone
// keeps receiving events against dead state, so callers must unsubscribe.
type Subscription struct {
	id uint64
}

type subscriber struct {
	id uint64
	fn Handler
}

// Bus delivers each published event to all currently subscribed handlers
// in subscription order, at most once per handler per publish.  There is
// no replay: a handler subscribed after an event never sees it.
type Bus struct {
	mu   sync.Mutex
	seq  uint64
	subs []subscriber
	log  *zap.Logger
}

// New returns an empty bus.  One bus is constructed at application start
// and shared process-wide.
func New(log *zap.Logger) *Bus {
	return &Bus{log: log}
}

// Subscribe registers a handler and returns its subscription token.
func (b *Bus) Subscribe(fn Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.subs = append(b.subs, subscriber{id: b.seq, fn: fn})
	return Subscription{id: b.seq}
}

// Unsubscribe removes a previously registered handler.  Removing an
// already removed subscription is a no-op.
func (b *Bus) Unsubscribe(s Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.id == s.id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event synchronously to every handler subscribed at
// the moment of the call.  The subscriber list is snapshotted first, so
// handlers may subscribe or unsubscribe during delivery without corrupting
// the iteration.  A handler that panics is reported and skipped; delivery
// continues to the remaining handlers.
func (b *Bus) Publish(ev SeatStatusChanged) {
	b.mu.Lock()
	snapshot := make([]subscriber, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, sub := range snapshot {
		b.deliver(sub, ev)
	}
}

func (b *Bus) deliver(sub subscriber, ev SeatStatusChanged) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("seat status handler panicked",
				zap.Uint64("subscription", sub.id),
				zap.String("seat_id", ev.SeatID),
				zap.Any("panic", r))
		}
	}()
	sub.fn(ev)
}
