// Command server wires configuration, stores, engine services and the HTTP
// router, then runs the server with graceful shutdown. Business logic lives
// in the internal packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"quarters/internal/audit"
	"quarters/internal/clock"
	"quarters/internal/housing/handler"
	"quarters/internal/housing/metrics"
	"quarters/internal/housing/service"
	allocstore "quarters/internal/housing/store/allocation"
	registrantstore "quarters/internal/housing/store/registrant"
	roomstore "quarters/internal/housing/store/room"
	"quarters/internal/platform/config"
	"quarters/internal/platform/httpserver"
	"quarters/internal/platform/logger"
	pg "quarters/internal/platform/postgres"
	platformredis "quarters/internal/platform/redis"
	"quarters/internal/platform/token"
	"quarters/internal/policy"
	httptransport "quarters/internal/transport/http"
	"quarters/migrations"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		registrants service.RegistrantDirectory
		rooms       service.RoomDirectory
		allocations service.AllocationStore
		recorder    audit.Recorder = audit.NewMemoryRecorder()
	)

	if cfg.DatabaseURL != "" {
		pool, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := migrations.Apply(ctx, pool); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}

		registrants = registrantstore.NewPostgresStore(pool)
		rooms = roomstore.NewPostgresStore(pool)
		allocations = allocstore.NewPostgresStore(pool)
		recorder = audit.NewPostgresRecorder(pool)
	} else {
		log.Warn("QUARTERS_DATABASE_URL not set, running on in-memory stores")
		roomMem := roomstore.NewMemoryStore()
		registrants = registrantstore.NewMemoryStore()
		rooms = roomMem
		allocations = allocstore.NewMemoryStore(roomMem)
	}

	var policies policy.Store = policy.NewMemoryStore(cfg.DefaultAgeGap)
	if redisClient, err := platformredis.New(ctx, cfg.RedisURL); err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	} else if redisClient != nil {
		defer redisClient.Close()
		policies = policy.NewRedisStore(redisClient, cfg.DefaultAgeGap)
	}

	clk := clock.System()
	engineMetrics := metrics.New()

	gate := service.NewEligibilityGate(registrants, allocations, clk)
	registry := service.NewRoomRegistry(rooms, allocations)
	allocator := service.NewAllocator(service.AllocatorConfig{
		Gate:        gate,
		Registry:    registry,
		Registrants: registrants,
		Rooms:       rooms,
		Allocations: allocations,
		Clock:       clk,
		Logger:      log,
		Metrics:     engineMetrics,
		Audit:       recorder,
	})
	guard := service.NewVerificationGuard(registrants, rooms, allocations, clk, log, recorder)

	h := handler.New(allocator, guard, registry, policies, log)
	validator := token.NewValidator(cfg.JWTSigningKey)
	router := httptransport.NewRouter(h, validator, log)

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting quarters", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
