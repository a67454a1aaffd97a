package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/database"
	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/logger"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/router"
	"github.com/iliyamo/hotel-booking/internal/scheduler"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	lg := logger.New("hotel-booking", cfg.LogLevel, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		lg.Fatalf("db open: %v", err)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			lg.Fatalf("db migrate: %v", err)
		}
		lg.Info("schema applied")
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		lg.Warnf("redis unreachable at %s; rate limiting and idempotency disabled", cfg.Redis.Addr)
	} else {
		defer rdb.Close()
	}

	opts := booking.Options{ReleaseRoomsOnCancel: cfg.CancelReleasesRooms, Logger: lg}
	if cfg.Events.Enabled {
		pub := queue.NewPublisher(cfg.Events.URL, cfg.Events.Exchange)
		defer pub.Close()
		opts.Publisher = pub

		if cfg.Events.RunConsumer {
			cons := &queue.Consumer{
				URL:      cfg.Events.URL,
				Exchange: cfg.Events.Exchange,
				Queue:    cfg.Events.Queue,
				LogFile:  cfg.Events.LogFile,
				Logger:   lg,
			}
			go func() {
				if err := cons.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					lg.Errorf("booking consumer: %v", err)
				}
			}()
		}
	}

	bookingRepo := repository.NewBookingRepo(db)
	svc := booking.NewService(bookingRepo, opts)

	var sched gocron.Scheduler
	if cfg.NoShow.Enabled {
		sched, err = scheduler.Start(cfg.NoShow, &scheduler.NoShowSweeper{
			Due:     bookingRepo,
			Setter:  svc,
			ActorID: cfg.NoShow.ActorID,
			Now:     time.Now,
			Logger:  lg,
		})
		if err != nil {
			lg.Fatalf("scheduler: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger = lg
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e, router.Handlers{
		Auth:        handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)),
		Hotels:      handler.NewHotelHandler(repository.NewHotelRepo(db)),
		Bookings:    handler.NewBookingHandler(svc),
		Inventory:   handler.NewInventoryHandler(repository.NewInventoryRepo(db)),
		Ready:       handler.Ready(db),
		JWTSecret:   cfg.JWTSecret,
		RateLimit:   middleware.NewTokenBucket(cfg.RateLimit, rdb),
		Idempotency: middleware.NewIdempotency(cfg.Idempotency, rdb),
	})

	addr := ":" + cfg.Port
	go func() {
		lg.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if sched != nil {
		if err := sched.Shutdown(); err != nil {
			lg.Warnf("scheduler shutdown: %v", err)
		}
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Errorf("server shutdown: %v", err)
	}
}
