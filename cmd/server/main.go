package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/yuri-shui/FlightBooking/internal/config"
	"github.com/yuri-shui/FlightBooking/internal/database"
	"github.com/yuri-shui/FlightBooking/internal/handler"
	"github.com/yuri-shui/FlightBooking/internal/middleware"
	"github.com/yuri-shui/FlightBooking/internal/queue"
	"github.com/yuri-shui/FlightBooking/internal/repository"
	"github.com/yuri-shui/FlightBooking/internal/router"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting and caching.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable, rate limiting and caching disabled")
	}

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	flightRepo := repository.NewFlightRepo(db)
	reservationRepo := repository.NewReservationRepo(db)

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	searchHandler := handler.NewSearchHandler(flightRepo)
	reservationHandler := handler.NewReservationHandler(reservationRepo, flightRepo)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterSearch(e, searchHandler, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterReservations(e, reservationHandler, cfg.JWTSecret)

	// Background consumer appends confirmed bookings to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
