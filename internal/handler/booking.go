package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/studyhall/seatadmin/internal/availability"
	"github.com/studyhall/seatadmin/internal/booking"
	"github.com/studyhall/seatadmin/internal/model"
	"github.com/studyhall/seatadmin/internal/repository"
	"github.com/studyhall/seatadmin/internal/store"
)

// BookingHandler bundles dependencies for the booking endpoints.  Each
// create request runs its own submission flow; the shared conflict guard
// serialises the final commit across all of them.
type BookingHandler struct {
	Checker *availability.Checker
	Guard   *booking.Guard
	Repo    *repository.BookingRepo
	Timeout time.Duration
	Log     *zap.Logger
}

func NewBookingHandler(checker *availability.Checker, guard *booking.Guard, repo *repository.BookingRepo, timeout time.Duration, log *zap.Logger) *BookingHandler {
	return &BookingHandler{Checker: checker, Guard: guard, Repo: repo, Timeout: timeout, Log: log}
}

// CreateBooking handles POST /v1/bookings.  The request body is the raw
// booking form; it is validated, confirmed against current availability
// and committed through the conflict guard.  A competing booking that
// wins the seat first yields 409.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var draft booking.Draft
	if err := c.Bind(&draft); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	flow := booking.NewFlow(h.Checker, h.Guard, h.Timeout, h.Log)
	flow.SetDraft(draft)
	b, err := flow.Submit(c.Request().Context())
	if err != nil {
		var ve *booking.ValidationError
		var re *booking.RejectedError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Message, "field": ve.Field})
		case errors.Is(err, availability.ErrInvalidInterval):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end time must be after start time"})
		case errors.As(err, &re):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat not available", "reason": re.Reason})
		case errors.Is(err, booking.ErrBookingConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat was taken by a competing booking"})
		case errors.Is(err, store.ErrSeatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		case errors.Is(err, booking.ErrTimeout):
			return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "booking timed out, please retry"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create booking"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"booking": b, "state": flow.State()})
}

// CancelBooking handles POST /v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	return h.release(c, model.BookingCancelled)
}

// CompleteBooking handles POST /v1/bookings/:id/complete and is used when
// a student's slot has been served.
func (h *BookingHandler) CompleteBooking(c echo.Context) error {
	return h.release(c, model.BookingCompleted)
}

func (h *BookingHandler) release(c echo.Context, final model.BookingStatus) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	if err := h.Guard.Release(ctx, c.Param("id"), final); err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, booking.ErrTimeout):
			return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "release timed out, please retry"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not release booking"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "status": final})
}

// GetSeatBookings handles GET /v1/seats/:id/bookings and returns the full
// booking history for a seat from the database, newest first.
func (h *BookingHandler) GetSeatBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bookings, err := h.Repo.ListBySeat(ctx, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings, "count": len(bookings)})
}
