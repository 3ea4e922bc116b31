// Package main is the entry point for the Tripboard API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/tripboard/internal/broker/amqp"
	"github.com/pkordes/tripboard/internal/broker/kafka"
	"github.com/pkordes/tripboard/internal/cache/rediscache"
	"github.com/pkordes/tripboard/internal/config"
	"github.com/pkordes/tripboard/internal/handler"
	"github.com/pkordes/tripboard/internal/middleware"
	"github.com/pkordes/tripboard/internal/overview"
	"github.com/pkordes/tripboard/internal/repo"
	"github.com/pkordes/tripboard/internal/service"
	"github.com/pkordes/tripboard/internal/worker"
	"github.com/pkordes/tripboard/migrations"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	// --- Trip document store ----------------------------------------------
	docs, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- Overview service -------------------------------------------------
	opts := []service.OverviewOption{service.WithLogger(logger)}

	if cfg.RedisAddr != "" {
		cache := rediscache.New(cfg.RedisAddr)
		defer cache.Close()
		if err := cache.Ping(ctx); err != nil {
			// The snapshot cache is optional; run without it.
			slog.Warn("redis unavailable, snapshot cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			opts = append(opts, service.WithSnapshotCache(cache, cfg.CacheTTL))
			slog.Info("snapshot cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL.String())
		}
	}

	switch cfg.EventsBackend {
	case config.EventsKafka:
		producer := kafka.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()
		opts = append(opts, service.WithEvents(producer, cfg.EventsTopic))
		slog.Info("publishing refresh events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.EventsTopic)
	case config.EventsAMQP:
		publisher, err := amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer publisher.Close()
		opts = append(opts, service.WithEvents(publisher, cfg.EventsTopic))
		slog.Info("publishing refresh events to amqp", "exchange", cfg.AMQPExchange, "routing_key", cfg.EventsTopic)
	}

	board := overview.NewBoard()
	overviewSvc := service.NewOverviewService(docs, board, opts...)
	tripSvc := service.NewTripService(docs)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → MaxBody.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", handler.NewServer(tripSvc, overviewSvc).Routes())

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr, "data_backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.RefreshInterval > 0 {
		g.Go(func() error {
			return worker.NewRefresher(overviewSvc, cfg.RefreshInterval).Run(gctx)
		})
	}

	// Graceful shutdown: wait for a signal (or a failed goroutine), then give
	// in-flight requests up to 15 seconds to complete.
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStore returns the trip document repo chosen by DATA_BACKEND, applying
// migrations first for postgres.
func openStore(ctx context.Context, cfg config.Config) (repo.TripDocRepo, func(), error) {
	if cfg.DataBackend == config.BackendMemory {
		slog.Warn("using in-memory trip store; data is lost on restart")
		return repo.NewMemoryTripDocRepo(), func() {}, nil
	}

	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	applied, err := migrations.Up(ctx, sqlDB)
	_ = sqlDB.Close()
	if err != nil {
		return nil, nil, err
	}
	slog.Info("migrations applied", "count", applied)

	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	slog.Info("database connection established")

	return repo.NewTripDocRepo(pool), pool.Close, nil
}
