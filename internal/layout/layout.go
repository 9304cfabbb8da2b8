// Package layout builds the physical seat grid for a facility.  The grid
// is a fixed geometry of rows split into a left and a right bank; seat
// numbering follows the printed seating chart, which snakes across rows.
package layout

import (
	"errors"
	"fmt"

	"github.com/studyhall/seatadmin/internal/model"
)

// ErrConfiguration is returned when the requested geometry cannot describe
// a real seating chart.  It is fatal at startup and not retryable.
var ErrConfiguration = errors.New("layout: invalid geometry")

// Geometry describes the seat grid for one facility type: the number of
// rows and the width of each zone.  Every row has LeftCols seats in the
// left bank followed by RightCols seats in the right bank.
type Geometry struct {
	Rows      int
	LeftCols  int
	RightCols int
}

// Width returns the number of seats per row.
func (g Geometry) Width() int { return g.LeftCols + g.RightCols }

// Generate produces the ordered seat list for the geometry.  Seats are
// emitted row by row, left to right, all initialized available with no
// occupant.  Numbering is serpentine and continues across rows: odd rows
// number right-to-left, even rows left-to-right, so a 2-row, 4-wide grid
// reads 4,3,2,1 on row one and 5,6,7,8 on row two.
//
// Generate is a pure function of its input: identical geometry yields an
// identical seat sequence.
func Generate(g Geometry) ([]model.Seat, error) {
	if g.Rows <= 0 || g.LeftCols <= 0 || g.RightCols <= 0 {
		return nil, fmt.Errorf("%w: rows=%d left=%d right=%d", ErrConfiguration, g.Rows, g.LeftCols, g.RightCols)
	}
	width := g.Width()
	seats := make([]model.Seat, 0, g.Rows*width)
	for row := 1; row <= g.Rows; row++ {
		base := (row - 1) * width
		for col := 1; col <= width; col++ {
			num := base + col
			if row%2 == 1 { // odd rows count from the right edge
				num = base + width - col + 1
			}
			zone := model.ZoneLeft
			if col > g.LeftCols {
				zone = model.ZoneRight
			}
			seats = append(seats, model.Seat{
				ID:     SeatID(num),
				Number: uint32(num),
				Status: model.SeatAvailable,
				Zone:   zone,
			})
		}
	}
	return seats, nil
}

// SeatID derives the stable seat identifier for a seat number.  The layout
// is fixed per facility, so the number-to-ID mapping never changes.
func SeatID(number int) string {
	return fmt.Sprintf("S-%d", number)
}
