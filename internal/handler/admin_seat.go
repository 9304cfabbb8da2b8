package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studyhall/seatadmin/internal/bus"
	"github.com/studyhall/seatadmin/internal/model"
	"github.com/studyhall/seatadmin/internal/store"
)

// AdminSeatHandler bundles dependencies for the administrative seat
// override endpoint.  Overrides bypass the booking flow entirely: staff
// can reserve a seat for a walk-in, mark it under maintenance or force it
// back to available.
type AdminSeatHandler struct {
	Seats *store.SeatStore
	Bus   *bus.Bus
}

func NewAdminSeatHandler(seats *store.SeatStore, b *bus.Bus) *AdminSeatHandler {
	return &AdminSeatHandler{Seats: seats, Bus: b}
}

type seatStatusReq struct {
	Status   string         `json:"status"`
	Occupant *model.Student `json:"occupant,omitempty"`
}

// UpdateSeatStatus handles PUT /v1/seats/:id/status.  The store enforces
// the occupant rule: occupied, pre-booked and reserved require an
// occupant, the rest forbid one.  A successful override is published on
// the event bus so every seat map view and the broker pick it up.
func (h *AdminSeatHandler) UpdateSeatStatus(c echo.Context) error {
	var req seatStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status := model.SeatStatus(req.Status)
	if !status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown seat status"})
	}

	seat, err := h.Seats.SetStatus(c.Param("id"), status, req.Occupant)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrSeatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		case errors.Is(err, store.ErrInvalidTransition):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "status and occupant do not agree"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update seat"})
		}
	}

	h.Bus.Publish(bus.SeatStatusChanged{
		SeatID:   seat.ID,
		Status:   seat.Status,
		Occupant: seat.Occupant,
	})
	return c.JSON(http.StatusOK, seat)
}
