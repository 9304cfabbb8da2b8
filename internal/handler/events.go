package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studyhall/seatadmin/internal/bus"
)

// EventsHandler streams seat status changes to dashboard clients over
// Server-Sent Events.  Each connected client gets its own bus
// subscription; a client that cannot keep up drops events rather than
// stalling the bus.
type EventsHandler struct {
	Bus *bus.Bus
}

func NewEventsHandler(b *bus.Bus) *EventsHandler {
	return &EventsHandler{Bus: b}
}

// StreamSeatEvents handles GET /v1/events/seats.  Events are emitted with
// the event name "seat-status-changed" and a JSON payload matching the
// bus event.  The stream stays open until the client disconnects.
func (h *EventsHandler) StreamSeatEvents(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	// Buffered so a slow client sheds events instead of blocking the
	// publisher.
	events := make(chan bus.SeatStatusChanged, 16)
	sub := h.Bus.Subscribe(func(ev bus.SeatStatusChanged) {
		select {
		case events <- ev:
		default:
		}
	})
	defer h.Bus.Unsubscribe(sub)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := res.Write([]byte("event: seat-status-changed\ndata: ")); err != nil {
				return nil
			}
			if _, err := res.Write(payload); err != nil {
				return nil
			}
			if _, err := res.Write([]byte("\n\n")); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
