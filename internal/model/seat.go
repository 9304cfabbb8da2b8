package model

// SeatStatus enumerates the occupancy states a seat can be in.  A seat
// starts `available` when the layout is generated and moves between
// states only through the booking flow or an administrative override.
//
// Values:
//  SeatAvailable   – the seat is free and bookable.
//  SeatOccupied    – a booking is in effect right now.
//  SeatPreBooked   – a booking exists for a future interval.
//  SeatReserved    – held for a student by an administrative override.
//  SeatMaintenance – removed from bookable rotation; no occupant.
type SeatStatus string

const (
	SeatAvailable   SeatStatus = "available"
	SeatOccupied    SeatStatus = "occupied"
	SeatPreBooked   SeatStatus = "pre-booked"
	SeatReserved    SeatStatus = "reserved"
	SeatMaintenance SeatStatus = "maintenance"
)

// Valid reports whether s is one of the known seat statuses.
func (s SeatStatus) Valid() bool {
	switch s {
	case SeatAvailable, SeatOccupied, SeatPreBooked, SeatReserved, SeatMaintenance:
		return true
	}
	return false
}

// RequiresOccupant reports whether a seat in this status must carry an
// occupant reference.  Statuses outside this set must carry none; the
// seat store rejects any combination that breaks the rule.
func (s SeatStatus) RequiresOccupant() bool {
	switch s {
	case SeatOccupied, SeatPreBooked, SeatReserved:
		return true
	}
	return false
}

// SeatZone is a categorical placement tag.  It affects layout rendering
// only and plays no part in booking decisions.
type SeatZone string

const (
	ZoneLeft  SeatZone = "left"
	ZoneRight SeatZone = "right"
)

// Seat is a bookable physical unit in the facility.  Its identifier is
// stable for the lifetime of the facility; the display number is derived
// from the grid position when the layout is generated.
//
// Fields:
//  ID       – stable identifier, unique within the facility.
//  Number   – display label following the physical seating chart.
//  Status   – current occupancy status.
//  Occupant – the student holding the seat; nil unless Status requires one.
//  Zone     – left or right bank placement tag.
type Seat struct {
	ID       string     `json:"id"`
	Number   uint32     `json:"number"`
	Status   SeatStatus `json:"status"`
	Occupant *Student   `json:"occupant,omitempty"`
	Zone     SeatZone   `json:"zone"`
}
