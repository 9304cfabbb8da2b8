package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/studyhall/seatadmin/internal/availability"
	"github.com/studyhall/seatadmin/internal/booking"
	"github.com/studyhall/seatadmin/internal/bus"
	"github.com/studyhall/seatadmin/internal/config"
	"github.com/studyhall/seatadmin/internal/database"
	"github.com/studyhall/seatadmin/internal/handler"
	"github.com/studyhall/seatadmin/internal/layout"
	"github.com/studyhall/seatadmin/internal/model"
	"github.com/studyhall/seatadmin/internal/queue"
	"github.com/studyhall/seatadmin/internal/repository"
	"github.com/studyhall/seatadmin/internal/router"
	queue_publisher "github.com/studyhall/seatadmin/internal/service"
	"github.com/studyhall/seatadmin/internal/store"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()

	// The seat map is generated, never stored; the geometry is the single
	// source of truth for IDs, numbering and zones.
	seats, err := layout.Generate(layout.Geometry{
		Rows:      cfg.SeatRows,
		LeftCols:  cfg.SeatLeftCols,
		RightCols: cfg.SeatRightCols,
	})
	if err != nil {
		logger.Fatal("seat layout", zap.Error(err))
	}
	seatStore := store.New(seats, logger)
	eventBus := bus.New(logger)

	repo := repository.NewBookingRepo(db)
	registry := booking.NewRegistry()

	// Warm the registry and re-label seats from bookings that were active
	// when the process last stopped.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	active, err := repo.ListActive(ctx)
	cancel()
	if err != nil {
		logger.Fatal("load active bookings", zap.Error(err))
	}
	registry.Load(active, nil)
	restoreSeats(seatStore, active, logger)
	logger.Info("booking registry warmed", zap.Int("active", len(active)))

	guard := booking.NewGuard(seatStore, registry, repo, eventBus, logger)
	checker := availability.New(seatStore, registry)

	// Forward seat changes to RabbitMQ and run the audit log consumer.
	queue_publisher.Bridge(eventBus, seatStore, logger)
	go func() {
		if err := queue.StartSeatStatusConsumer(logger); err != nil {
			logger.Warn("seat status consumer stopped", zap.Error(err))
		}
	}()

	// Redis is optional; nil disables response caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, cache and rate limiting disabled")
	}

	e := echo.New()
	e.HideBanner = true
	geo := layout.Geometry{Rows: cfg.SeatRows, LeftCols: cfg.SeatLeftCols, RightCols: cfg.SeatRightCols}
	router.RegisterRoutes(e, router.Handlers{
		SeatMap:      handler.NewSeatMapHandler(seatStore, geo),
		AdminSeat:    handler.NewAdminSeatHandler(seatStore, eventBus),
		Availability: handler.NewAvailabilityHandler(checker),
		Booking:      handler.NewBookingHandler(checker, guard, repo, cfg.FlowTimeout, logger),
		Events:       handler.NewEventsHandler(eventBus),
	}, cfg, rdb)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" || env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// restoreSeats replays active bookings onto the freshly generated seat
// map.  A booking whose interval covers the current moment marks its seat
// occupied; a future one marks it pre-booked.  When both exist on a seat
// the occupied label wins.
func restoreSeats(s *store.SeatStore, active []model.Booking, logger *zap.Logger) {
	now := time.Now()
	for _, b := range active {
		status := model.SeatPreBooked
		if coversNow(b, now) {
			status = model.SeatOccupied
		}
		if cur, err := s.Get(b.SeatID); err == nil && cur.Status == model.SeatOccupied {
			continue
		}
		if _, err := s.SetStatus(b.SeatID, status, &model.Student{ID: b.StudentID}); err != nil {
			logger.Warn("could not restore seat",
				zap.String("seat_id", b.SeatID),
				zap.String("booking_id", b.ID),
				zap.Error(err))
		}
	}
}

func coversNow(b model.Booking, now time.Time) bool {
	day, err := time.Parse(model.DateLayout, b.Date)
	if err != nil {
		return false
	}
	start := day.Add(time.Duration(b.Start) * time.Minute)
	end := day.Add(time.Duration(b.End) * time.Minute)
	return !now.Before(start) && now.Before(end)
}
