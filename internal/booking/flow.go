package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studyhall/seatadmin/internal/availability"
	"github.com/studyhall/seatadmin/internal/model"
)

// State names a step of the booking submission flow.  Steps always run in
// order; none may be skipped.
type State string

const (
	StateDraft      State = "draft"
	StateValidating State = "validating"
	StateAwaiting   State = "awaiting-availability-confirmation"
	StateSubmitting State = "submitting"
	StateCommitted  State = "committed"
	StateRejected   State = "rejected"
)

// Draft is the raw booking form input as submitted by staff.  Times are
// 24-hour "HH:MM" strings and the date is ISO-8601; nothing is trusted
// until the Validating step has parsed it.
type Draft struct {
	StudentID    string `json:"student_id" validate:"required"`
	StudentName  string `json:"student_name" validate:"required"`
	StudentPhone string `json:"student_phone,omitempty"`
	SeatID       string `json:"seat_id" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	Shift        string `json:"shift" validate:"required"`
}

// AvailabilityService is the advisory checker as seen by the flow.  In
// production it is the in-process Checker; it may equally be a remote
// collaborator, which is why the flow treats the call as slow, cancellable
// and possibly stale.
type AvailabilityService interface {
	Check(ctx context.Context, req availability.Request) (availability.Decision, error)
}

var validate = validator.New()

// Flow drives one booking submission from Draft through Committed or
// Rejected.  Editing the draft while the availability confirmation is in
// flight bumps a generation counter; a check result carrying a stale
// generation is discarded and never applied, which closes the classic
// stale-response window without timers.
type Flow struct {
	mu         sync.Mutex
	state      State
	generation uint64
	draft      Draft

	checker AvailabilityService
	guard   *Guard
	timeout time.Duration
	log     *zap.Logger
}

// NewFlow returns a flow in the Draft state.  The timeout bounds both the
// availability confirmation and the submission commit; an operation that
// does not resolve in time fails with ErrTimeout and the flow returns to
// Draft.
func NewFlow(checker AvailabilityService, guard *Guard, timeout time.Duration, log *zap.Logger) *Flow {
	return &Flow{
		state:   StateDraft,
		checker: checker,
		guard:   guard,
		timeout: timeout,
		log:     log,
	}
}

// SetDraft replaces the candidate input and returns the flow to Draft.
// Any submission still awaiting its availability confirmation is
// superseded: its result will be discarded on arrival.
func (f *Flow) SetDraft(d Draft) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	f.draft = d
	f.state = StateDraft
}

// State reports the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submit runs the full sequence for the current draft:
// Validating → AwaitingAvailabilityConfirmation → Submitting → terminal.
// On success the committed booking is returned.  Validation and timeout
// failures return the flow to Draft; advisory and authoritative rejections
// leave it Rejected until the caller re-enters a draft.
func (f *Flow) Submit(ctx context.Context) (*model.Booking, error) {
	f.mu.Lock()
	if f.state != StateDraft {
		f.mu.Unlock()
		return nil, ErrNotDraft
	}
	gen := f.generation
	d := f.draft
	f.state = StateValidating
	f.mu.Unlock()

	req, occupant, err := buildRequest(d)
	if err != nil {
		// Local failure: back to Draft, nothing was touched.
		f.advance(gen, StateDraft)
		return nil, err
	}

	if !f.advance(gen, StateAwaiting) {
		return nil, ErrSuperseded
	}
	checkCtx, cancel := context.WithTimeout(ctx, f.timeout)
	decision, err := f.checker.Check(checkCtx, req)
	cancel()
	// The draft may have changed while the check was in flight; a stale
	// result must not influence the flow regardless of what it says.
	if f.superseded(gen) {
		return nil, ErrSuperseded
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			f.advance(gen, StateDraft)
			return nil, ErrTimeout
		}
		f.advance(gen, StateDraft)
		return nil, err
	}
	if !decision.Available {
		f.advance(gen, StateRejected)
		return nil, &RejectedError{Reason: decision.Reason}
	}

	if !f.advance(gen, StateSubmitting) {
		return nil, ErrSuperseded
	}
	b := &model.Booking{
		ID:        uuid.NewString(),
		StudentID: d.StudentID,
		SeatID:    req.SeatID,
		Date:      req.Date,
		Start:     req.Start,
		End:       req.End,
		Shift:     req.Shift,
	}
	commitCtx, cancel := context.WithTimeout(ctx, f.timeout)
	err = f.guard.Commit(commitCtx, b, occupant)
	cancel()
	if err != nil {
		switch {
		case errors.Is(err, ErrTimeout):
			f.advance(gen, StateDraft)
		case errors.Is(err, ErrBookingConflict):
			f.advance(gen, StateRejected)
		default:
			f.advance(gen, StateRejected)
		}
		return nil, err
	}
	f.advance(gen, StateCommitted)
	f.log.Info("booking committed",
		zap.String("booking_id", b.ID),
		zap.String("seat_id", b.SeatID),
		zap.String("date", b.Date),
		zap.String("interval", b.Start.String()+"-"+b.End.String()))
	return b, nil
}

// advance moves the flow to the given state unless the draft generation
// changed underneath the submission, in which case nothing is applied.
func (f *Flow) advance(gen uint64, s State) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		return false
	}
	f.state = s
	return true
}

func (f *Flow) superseded(gen uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return gen != f.generation
}

// buildRequest is the Validating step: field presence, time parsing, shift
// lookup and the strict start < end rule.  It performs no I/O and never
// touches the seat store.
func buildRequest(d Draft) (availability.Request, *model.Student, error) {
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return availability.Request{}, nil, &ValidationError{
				Field:   strings.ToLower(fe.Field()),
				Message: "failed " + fe.Tag() + " validation",
			}
		}
		return availability.Request{}, nil, err
	}
	start, err := model.ParseClock(d.StartTime)
	if err != nil {
		return availability.Request{}, nil, &ValidationError{Field: "start_time", Message: err.Error()}
	}
	end, err := model.ParseClock(d.EndTime)
	if err != nil {
		return availability.Request{}, nil, &ValidationError{Field: "end_time", Message: err.Error()}
	}
	if end <= start {
		return availability.Request{}, nil, availability.ErrInvalidInterval
	}
	shift, ok := model.ShiftByID(model.ShiftID(d.Shift))
	if !ok {
		return availability.Request{}, nil, &ValidationError{Field: "shift", Message: "unknown shift " + d.Shift}
	}
	req := availability.Request{
		SeatID: d.SeatID,
		Date:   d.Date,
		Start:  start,
		End:    end,
		Shift:  shift.ID,
	}
	occupant := &model.Student{ID: d.StudentID, Name: d.StudentName, Phone: d.StudentPhone}
	return req, occupant, nil
}
