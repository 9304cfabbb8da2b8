package model

// ShiftID identifies an entry in the fixed shift catalog.
type ShiftID string

const (
	ShiftMorning         ShiftID = "morning"
	ShiftEvening         ShiftID = "evening"
	ShiftEveningLate     ShiftID = "evening-late"
	ShiftFullDay         ShiftID = "full-day"
	ShiftFullDayExtended ShiftID = "full-day-extended"
)

// Shift is a named time-range label layered over explicit booking start
// and end times.  Shifts are a display convenience; they never gate
// availability on their own.
type Shift struct {
	ID    ShiftID   `json:"id"`
	Name  string    `json:"name"`
	Start ClockTime `json:"start_time"`
	End   ClockTime `json:"end_time"`
}

// shiftCatalog is the fixed set of shifts the facility offers.
var shiftCatalog = []Shift{
	{ID: ShiftMorning, Name: "Morning", Start: 8 * 60, End: 12 * 60},
	{ID: ShiftEvening, Name: "Evening", Start: 16 * 60, End: 20 * 60},
	{ID: ShiftEveningLate, Name: "Late Evening", Start: 18 * 60, End: 22 * 60},
	{ID: ShiftFullDay, Name: "Full Day", Start: 8 * 60, End: 20 * 60},
	{ID: ShiftFullDayExtended, Name: "Full Day Extended", Start: 8 * 60, End: 22 * 60},
}

// Shifts returns the shift catalog in display order.  The returned slice
// is a copy; callers may not mutate the catalog.
func Shifts() []Shift {
	out := make([]Shift, len(shiftCatalog))
	copy(out, shiftCatalog)
	return out
}

// ShiftByID looks a shift up by its identifier.
func ShiftByID(id ShiftID) (Shift, bool) {
	for _, s := range shiftCatalog {
		if s.ID == id {
			return s, true
		}
	}
	return Shift{}, false
}
