package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/studyhall/seatadmin/internal/availability"
	"github.com/studyhall/seatadmin/internal/model"
)

func draftFor(seatID string) Draft {
	return Draft{
		StudentID:   "ST-1",
		StudentName: "Alice",
		SeatID:      seatID,
		Date:        "2024-04-15",
		StartTime:   "09:00",
		EndTime:     "11:00",
		Shift:       "morning",
	}
}

func newFlowFixture(t *testing.T) (*Flow, *guardFixture) {
	t.Helper()
	fx := newGuardFixture(t)
	checker := availability.New(fx.seats, fx.registry)
	f := NewFlow(checker, fx.guard, time.Second, zap.NewNop())
	return f, fx
}

func TestSubmitHappyPath(t *testing.T) {
	f, fx := newFlowFixture(t)
	f.SetDraft(draftFor("S-12"))

	b, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.State() != StateCommitted {
		t.Fatalf("state = %s, want committed", f.State())
	}
	if b.SeatID != "S-12" || b.Status != model.BookingActive || b.ID == "" {
		t.Fatalf("booking = %+v", b)
	}

	seat, err := fx.seats.Get("S-12")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if seat.Status != model.SeatOccupied || seat.Occupant == nil || seat.Occupant.Name != "Alice" {
		t.Fatalf("seat after submit: %+v", seat)
	}
	events := fx.events.all()
	if len(events) != 1 || events[0].SeatID != "S-12" || events[0].Status != model.SeatOccupied {
		t.Fatalf("events = %+v, want one occupied event for S-12", events)
	}
}

func TestSubmitValidationFailureReturnsToDraft(t *testing.T) {
	f, fx := newFlowFixture(t)
	d := draftFor("S-12")
	d.StudentName = "" // required field missing
	f.SetDraft(d)

	_, err := f.Submit(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if f.State() != StateDraft {
		t.Fatalf("state = %s, want draft", f.State())
	}
	// validation failures never touch the seat store
	seat, _ := fx.seats.Get("S-12")
	if seat.Status != model.SeatAvailable {
		t.Fatalf("seat mutated by failed validation: %+v", seat)
	}
	if len(fx.events.all()) != 0 {
		t.Fatal("event published by failed validation")
	}
}

func TestSubmitInvalidIntervalIsLocal(t *testing.T) {
	f, _ := newFlowFixture(t)
	d := draftFor("S-12")
	d.StartTime = "11:00"
	d.EndTime = "09:00"
	f.SetDraft(d)

	_, err := f.Submit(context.Background())
	if !errors.Is(err, availability.ErrInvalidInterval) {
		t.Fatalf("err = %v, want ErrInvalidInterval", err)
	}
	if f.State() != StateDraft {
		t.Fatalf("state = %s, want draft", f.State())
	}
}

func TestSubmitBadClockStringRejected(t *testing.T) {
	f, _ := newFlowFixture(t)
	d := draftFor("S-12")
	d.StartTime = "9 o'clock"
	f.SetDraft(d)

	_, err := f.Submit(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "start_time" {
		t.Fatalf("err = %v, want ValidationError on start_time", err)
	}
}

func TestSubmitAdvisoryRejection(t *testing.T) {
	f, fx := newFlowFixture(t)
	// occupy the seat first through the guard
	if err := fx.guard.Commit(context.Background(), testBooking(t, "b-1", "S-12", "09:00", "11:00"), occupant); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	d := draftFor("S-12")
	d.StartTime = "10:00"
	d.EndTime = "12:00"
	f.SetDraft(d)

	_, err := f.Submit(context.Background())
	var rej *RejectedError
	if !errors.As(err, &rej) || rej.Reason != availability.ReasonIntervalOverlap {
		t.Fatalf("err = %v, want RejectedError(IntervalOverlap)", err)
	}
	if f.State() != StateRejected {
		t.Fatalf("state = %s, want rejected", f.State())
	}
}

func TestSubmitTouchingIntervalCommits(t *testing.T) {
	f, fx := newFlowFixture(t)
	if err := fx.guard.Commit(context.Background(), testBooking(t, "b-1", "S-12", "09:00", "11:00"), occupant); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	d := draftFor("S-12")
	d.StartTime = "11:00"
	d.EndTime = "13:00"
	f.SetDraft(d)

	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if f.State() != StateCommitted {
		t.Fatalf("state = %s, want committed", f.State())
	}
}

// slowChecker blocks until released, modelling a delayed collaborator.
type slowChecker struct {
	inner   AvailabilityService
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *slowChecker) Check(ctx context.Context, req availability.Request) (availability.Decision, error) {
	s.once.Do(func() { close(s.entered) })
	select {
	case <-s.release:
	case <-ctx.Done():
		return availability.Decision{}, ctx.Err()
	}
	return s.inner.Check(ctx, req)
}

func TestSubmitStaleCheckDiscarded(t *testing.T) {
	fx := newGuardFixture(t)
	sc := &slowChecker{
		inner:   availability.New(fx.seats, fx.registry),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	f := NewFlow(sc, fx.guard, time.Second, zap.NewNop())
	f.SetDraft(draftFor("S-12"))

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()

	<-sc.entered
	// staff switches the candidate seat while the check is in flight
	f.SetDraft(draftFor("S-5"))
	close(sc.release)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("stale submission err = %v, want ErrSuperseded", err)
	}
	// the stale result did not move the flow off the fresh draft
	if f.State() != StateDraft {
		t.Fatalf("state = %s, want draft for the new candidate", f.State())
	}
	seatA, _ := fx.seats.Get("S-12")
	if seatA.Status != model.SeatAvailable {
		t.Fatalf("stale check mutated seat S-12: %+v", seatA)
	}
	if len(fx.events.all()) != 0 {
		t.Fatal("stale submission published an event")
	}

	// the fresh draft submits normally afterwards
	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("Submit of new draft: %v", err)
	}
	seatB, _ := fx.seats.Get("S-5")
	if seatB.Status != model.SeatOccupied {
		t.Fatalf("seat S-5 after submit: %+v", seatB)
	}
}

func TestSubmitTimeoutReturnsToDraft(t *testing.T) {
	fx := newGuardFixture(t)
	sc := &slowChecker{
		inner:   availability.New(fx.seats, fx.registry),
		entered: make(chan struct{}),
		release: make(chan struct{}), // never released: the check hangs
	}
	f := NewFlow(sc, fx.guard, 20*time.Millisecond, zap.NewNop())
	f.SetDraft(draftFor("S-12"))

	_, err := f.Submit(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if f.State() != StateDraft {
		t.Fatalf("state = %s, want draft (retryable)", f.State())
	}
}

func TestSubmitRequiresDraftState(t *testing.T) {
	f, _ := newFlowFixture(t)
	f.SetDraft(draftFor("S-12"))
	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := f.Submit(context.Background()); !errors.Is(err, ErrNotDraft) {
		t.Fatalf("second Submit err = %v, want ErrNotDraft", err)
	}
}

func TestTwoFlowsRacingSameSeat(t *testing.T) {
	fx := newGuardFixture(t)
	checker := availability.New(fx.seats, fx.registry)
	f1 := NewFlow(checker, fx.guard, time.Second, zap.NewNop())
	f2 := NewFlow(checker, fx.guard, time.Second, zap.NewNop())
	f1.SetDraft(draftFor("S-12"))
	d2 := draftFor("S-12")
	d2.StudentID = "ST-2"
	d2.StudentName = "Bo"
	d2.StartTime = "10:00"
	d2.EndTime = "12:00"
	f2.SetDraft(d2)

	errs := make(chan error, 2)
	for _, f := range []*Flow{f1, f2} {
		go func(f *Flow) {
			_, err := f.Submit(context.Background())
			errs <- err
		}(f)
	}

	committed, conflicted := 0, 0
	for i := 0; i < 2; i++ {
		err := <-errs
		switch {
		case err == nil:
			committed++
		case errors.Is(err, ErrBookingConflict):
			conflicted++
		default:
			var rej *RejectedError
			if errors.As(err, &rej) {
				// the slower flow may already fail its advisory check
				conflicted++
				continue
			}
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if committed != 1 || conflicted != 1 {
		t.Fatalf("committed=%d conflicted=%d, want exactly one winner", committed, conflicted)
	}
	if got := len(fx.registry.ActiveForSeat("S-12")); got != 1 {
		t.Fatalf("registry holds %d bookings, want 1", got)
	}
}
