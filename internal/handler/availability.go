package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studyhall/seatadmin/internal/availability"
	"github.com/studyhall/seatadmin/internal/model"
	"github.com/studyhall/seatadmin/internal/store"
)

// AvailabilityHandler exposes the advisory availability check so the
// booking form can warn staff before they submit.  The answer reflects
// the state at the moment of the check; the conflict guard re-checks at
// commit time regardless.
type AvailabilityHandler struct {
	Checker *availability.Checker
}

func NewAvailabilityHandler(checker *availability.Checker) *AvailabilityHandler {
	return &AvailabilityHandler{Checker: checker}
}

type availabilityReq struct {
	SeatID    string `json:"seat_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Shift     string `json:"shift"`
}

// CheckAvailability handles POST /v1/availability/check.
func (h *AvailabilityHandler) CheckAvailability(c echo.Context) error {
	var req availabilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	start, err := model.ParseClock(req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be HH:MM"})
	}
	end, err := model.ParseClock(req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be HH:MM"})
	}

	decision, err := h.Checker.Check(c.Request().Context(), availability.Request{
		SeatID: req.SeatID,
		Date:   req.Date,
		Start:  start,
		End:    end,
		Shift:  model.ShiftID(req.Shift),
	})
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidInterval):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end time must be after start time"})
		case errors.Is(err, store.ErrSeatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability check failed"})
		}
	}
	return c.JSON(http.StatusOK, decision)
}
