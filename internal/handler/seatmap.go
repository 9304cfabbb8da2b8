package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/studyhall/seatadmin/internal/layout"
	"github.com/studyhall/seatadmin/internal/model"
	"github.com/studyhall/seatadmin/internal/store"
)

// SeatMapHandler serves read-only views of the seat map for the dashboard.
type SeatMapHandler struct {
	Seats *store.SeatStore
	Geo   layout.Geometry
}

func NewSeatMapHandler(seats *store.SeatStore, geo layout.Geometry) *SeatMapHandler {
	return &SeatMapHandler{Seats: seats, Geo: geo}
}

// GetSeats handles GET /v1/seats and returns the flat seat list in layout
// order.  Use ?available=true to keep only bookable seats and ?zone=left
// or ?zone=right to restrict to one bank.
func (h *SeatMapHandler) GetSeats(c echo.Context) error {
	var f store.Filter
	if strings.EqualFold(c.QueryParam("available"), "true") {
		f.OnlyAvailable = true
	}
	switch strings.ToLower(c.QueryParam("zone")) {
	case "":
	case "left":
		f.Zone = model.ZoneLeft
	case "right":
		f.Zone = model.ZoneRight
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "zone must be left or right"})
	}
	seats := h.Seats.List(f)
	return c.JSON(http.StatusOK, echo.Map{"seats": seats, "count": len(seats)})
}

// GetSeatLayout handles GET /v1/seats/layout and returns the seat map
// grouped into rows the way the floor plan shows it, each row split into
// its left and right banks.
func (h *SeatMapHandler) GetSeatLayout(c echo.Context) error {
	seats := h.Seats.List(store.Filter{})
	width := h.Geo.Width()

	type rowView struct {
		Row   int          `json:"row"`
		Left  []model.Seat `json:"left"`
		Right []model.Seat `json:"right"`
	}
	rows := make([]rowView, 0, h.Geo.Rows)
	for i := 0; i < len(seats); i += width {
		end := i + width
		if end > len(seats) {
			end = len(seats)
		}
		row := seats[i:end]
		split := h.Geo.LeftCols
		if split > len(row) {
			split = len(row)
		}
		rows = append(rows, rowView{
			Row:   i/width + 1,
			Left:  row[:split],
			Right: row[split:],
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"rows": rows})
}

// GetSeat handles GET /v1/seats/:id and returns a single seat.
func (h *SeatMapHandler) GetSeat(c echo.Context) error {
	seat, err := h.Seats.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrSeatNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load seat"})
	}
	return c.JSON(http.StatusOK, seat)
}

// GetShifts handles GET /v1/shifts and returns the fixed shift catalog so
// the booking form can populate its shift selector.
func GetShifts(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"shifts": model.Shifts()})
}
