package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"

	"github.com/robertarktes/restaurant-reservations/internal/adapters/crdb"
	redisadapter "github.com/robertarktes/restaurant-reservations/internal/adapters/redis"
	"github.com/robertarktes/restaurant-reservations/internal/booking"
	"github.com/robertarktes/restaurant-reservations/internal/config"
	httphandler "github.com/robertarktes/restaurant-reservations/internal/http"
	"github.com/robertarktes/restaurant-reservations/internal/observability"
	"github.com/robertarktes/restaurant-reservations/internal/rateLimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger()

	pool, err := pgxpool.New(context.Background(), cfg.CRDBDSN)
	if err != nil {
		log.Fatalf("failed to connect to crdb: %v", err)
	}
	defer pool.Close()
	repo := crdb.NewRepository(pool)
	if err := repo.Migrate(context.Background()); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	restaurants := crdb.NewRestaurants(repo)
	sectors := crdb.NewSectors(repo)
	tables := crdb.NewTables(repo)
	reservationRepo := crdb.NewReservations(repo)
	idempotencyKeys := crdb.NewIdempotencyKeys(repo)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	locker := redisadapter.NewLocker(redisClient, cfg.LockTTL)
	rl := rateLimit.NewRateLimiter(redisadapter.NewCache(redisClient))

	scheduler := booking.NewScheduler(restaurants, sectors, tables, reservationRepo, idempotencyKeys, locker, logger)
	availability := booking.NewAvailability(restaurants, sectors, tables, reservationRepo)
	reservations := booking.NewReservations(restaurants, reservationRepo)

	handlers := httphandler.NewHandlers(availability, scheduler, reservations, restaurants, sectors, logger)
	r := httphandler.SetupRouter(handlers, logger, rl)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	logger.Info("Server exiting")
}
