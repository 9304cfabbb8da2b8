package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/studyhall/seatadmin/internal/config"
	"github.com/studyhall/seatadmin/internal/handler"
	"github.com/studyhall/seatadmin/internal/middleware"
)

// Handlers collects every handler the router wires up.
type Handlers struct {
	SeatMap      *handler.SeatMapHandler
	AdminSeat    *handler.AdminSeatHandler
	Availability *handler.AvailabilityHandler
	Booking      *handler.BookingHandler
	Events       *handler.EventsHandler
}

// RegisterRoutes registers all routes on the provided Echo instance.
//
// Read-only seat map views are public so wall displays can render without
// credentials; they sit behind the Redis response cache when one is
// configured.  Everything that mutates state lives under the staff group,
// which requires a valid staff JWT and is rate limited.
func RegisterRoutes(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Public read-only views.
	pub := e.Group("/v1")
	pub.GET("/seats", h.SeatMap.GetSeats, cache)
	pub.GET("/seats/layout", h.SeatMap.GetSeatLayout, cache)
	pub.GET("/seats/:id", h.SeatMap.GetSeat)
	pub.GET("/shifts", handler.GetShifts, cache)
	// The event stream must never be cached or buffered.
	pub.GET("/events/seats", h.Events.StreamSeatEvents)

	// Staff endpoints: everything that checks or changes state.
	staff := e.Group("/v1")
	staff.Use(middleware.StaffAuth(cfg.JWTSecret))
	staff.Use(limit)
	staff.POST("/availability/check", h.Availability.CheckAvailability)
	staff.POST("/bookings", h.Booking.CreateBooking)
	staff.POST("/bookings/:id/cancel", h.Booking.CancelBooking)
	staff.POST("/bookings/:id/complete", h.Booking.CompleteBooking)
	staff.GET("/seats/:id/bookings", h.Booking.GetSeatBookings)
	staff.PUT("/seats/:id/status", h.AdminSeat.UpdateSeatStatus)
}
