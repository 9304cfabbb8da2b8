package availability

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/studyhall/seatadmin/internal/layout"
	"github.com/studyhall/seatadmin/internal/model"
	"github.com/studyhall/seatadmin/internal/store"
)

// fakeBookings is a hand-rolled BookingSource seeded per test.
type fakeBookings struct {
	bySeat map[string][]model.Booking
}

func (f *fakeBookings) ActiveForSeat(seatID string) []model.Booking {
	return f.bySeat[seatID]
}

func (f *fakeBookings) add(b model.Booking) {
	if f.bySeat == nil {
		f.bySeat = map[string][]model.Booking{}
	}
	f.bySeat[b.SeatID] = append(f.bySeat[b.SeatID], b)
}

func clock(t *testing.T, s string) model.ClockTime {
	t.Helper()
	v, err := model.ParseClock(s)
	if err != nil {
		t.Fatalf("ParseClock(%q): %v", s, err)
	}
	return v
}

func newChecker(t *testing.T) (*Checker, *store.SeatStore, *fakeBookings) {
	t.Helper()
	seats, err := layout.Generate(layout.Geometry{Rows: 3, LeftCols: 2, RightCols: 2})
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	ss := store.New(seats, zap.NewNop())
	fb := &fakeBookings{}
	return New(ss, fb), ss, fb
}

func TestCheckRejectsInvalidInterval(t *testing.T) {
	c, _, _ := newChecker(t)
	for _, tc := range []struct{ start, end string }{
		{"11:00", "09:00"},
		{"09:00", "09:00"},
	} {
		req := Request{SeatID: "S-1", Date: "2024-04-15", Start: clock(t, tc.start), End: clock(t, tc.end)}
		if _, err := c.Check(context.Background(), req); !errors.Is(err, ErrInvalidInterval) {
			t.Errorf("Check(%s-%s) err = %v, want ErrInvalidInterval", tc.start, tc.end, err)
		}
	}
}

func TestCheckUnknownSeat(t *testing.T) {
	c, _, _ := newChecker(t)
	req := Request{SeatID: "S-99", Date: "2024-04-15", Start: clock(t, "09:00"), End: clock(t, "11:00")}
	if _, err := c.Check(context.Background(), req); !errors.Is(err, store.ErrSeatNotFound) {
		t.Fatalf("err = %v, want ErrSeatNotFound", err)
	}
}

func TestCheckFreeSeatIsAvailable(t *testing.T) {
	c, _, _ := newChecker(t)
	req := Request{SeatID: "S-12", Date: "2024-04-15", Start: clock(t, "09:00"), End: clock(t, "11:00"), Shift: model.ShiftMorning}
	d, err := c.Check(context.Background(), req)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !d.Available {
		t.Fatalf("free seat unavailable: %+v", d)
	}
}

func TestCheckMaintenanceSeat(t *testing.T) {
	c, ss, _ := newChecker(t)
	if _, err := ss.SetStatus("S-4", model.SeatMaintenance, nil); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	req := Request{SeatID: "S-4", Date: "2024-04-15", Start: clock(t, "09:00"), End: clock(t, "11:00")}
	d, err := c.Check(context.Background(), req)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if d.Available || d.Reason != ReasonSeatUnderMaintenance {
		t.Fatalf("decision = %+v, want SeatUnderMaintenance", d)
	}
}

func TestCheckOverlapRules(t *testing.T) {
	c, ss, fb := newChecker(t)
	occupant := &model.Student{ID: "ST-1", Name: "Alice"}
	if _, err := ss.SetStatus("S-12", model.SeatOccupied, occupant); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	fb.add(model.Booking{
		ID: "b-1", StudentID: "ST-1", SeatID: "S-12",
		Date: "2024-04-15", Start: clock(t, "09:00"), End: clock(t, "11:00"),
		Status: model.BookingActive,
	})

	cases := []struct {
		name      string
		start     string
		end       string
		available bool
		reason    Reason
	}{
		{"overlapping request", "10:00", "12:00", false, ReasonIntervalOverlap},
		{"contained request", "09:30", "10:30", false, ReasonIntervalOverlap},
		{"touching end is free (half-open)", "11:00", "13:00", true, ""},
		{"touching start is free (half-open)", "07:00", "09:00", true, ""},
		{"other date is free", "10:00", "12:00", true, ""},
	}
	for _, tc := range cases {
		date := "2024-04-15"
		if tc.name == "other date is free" {
			date = "2024-04-16"
		}
		req := Request{SeatID: "S-12", Date: date, Start: clock(t, tc.start), End: clock(t, tc.end)}
		d, err := c.Check(context.Background(), req)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if d.Available != tc.available || d.Reason != tc.reason {
			t.Errorf("%s: decision = %+v, want available=%v reason=%q", tc.name, d, tc.available, tc.reason)
		}
	}
}

func TestCheckReservedSeatWithoutBookingIsOccupied(t *testing.T) {
	c, ss, _ := newChecker(t)
	occupant := &model.Student{ID: "ST-2", Name: "Bo"}
	if _, err := ss.SetStatus("S-6", model.SeatReserved, occupant); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	req := Request{SeatID: "S-6", Date: "2024-04-15", Start: clock(t, "09:00"), End: clock(t, "11:00")}
	d, err := c.Check(context.Background(), req)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if d.Available || d.Reason != ReasonSeatOccupied {
		t.Fatalf("decision = %+v, want SeatOccupied", d)
	}
}
