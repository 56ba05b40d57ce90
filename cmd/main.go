// jobmate-hiring-service
//
// Employer-side hiring pipeline for job applications.
// Exposes a REST API (and the same operations over gRPC) used by the
// Gateway to implement:
//   - apply / withdraw                         — application lifecycle
//   - status, hiring stage, score              — pipeline updates
//   - notes with one level of replies          — team discussion
//   - interview rounds with feedback           — auto-complete on first feedback
//   - team assignment                          — replace semantics
//   - job and employer pipeline listings       — filters, sorting, paging
//
// Keeps jobs.applications_count in sync (recount on every create/delete plus
// a periodic cron sweep). Publishes application events to Redis and ingests
// EVENT_APPLICATION_ASSESSED from the AI service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"jobmate/hiring-service/internal/config"
	"jobmate/hiring-service/internal/db"
	"jobmate/hiring-service/internal/events"
	"jobmate/hiring-service/internal/grpcserver"
	"jobmate/hiring-service/internal/hiring"
	"jobmate/hiring-service/internal/httpapi"
	"jobmate/hiring-service/internal/memstore"
	"jobmate/hiring-service/internal/ratelimit"
	"jobmate/hiring-service/internal/scheduler"
	"jobmate/hiring-service/internal/seed"
	"jobmate/hiring-service/internal/store/postgres"
)

const version = "1.0.0"

// backend is the data layer selected by STORE_DRIVER.
type backend interface {
	hiring.Store
	hiring.JobDirectory
	hiring.UserDirectory
}

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})).
		With("service", "hiring-service"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Store ───────────────────────────────────────────────────────────────
	var store backend
	switch cfg.StoreDriver {
	case config.DriverMemory:
		mem := memstore.New()
		if cfg.SeedFile != "" {
			fixture, err := seed.LoadFile(cfg.SeedFile)
			if err != nil {
				fatal("seed fixture", err)
			}
			if err := fixture.Apply(ctx, mem); err != nil {
				fatal("seed fixture", err)
			}
			slog.Info("fixture loaded", "users", len(fixture.Users), "jobs", len(fixture.Jobs))
		}
		store = mem
		slog.Info("using in-memory store")
	default:
		slog.Info("connecting to PostgreSQL")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, 0)
		if err != nil {
			fatal("PostgreSQL", err)
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			fatal("PostgreSQL migrate", err)
		}
		store = postgres.New(pool)
		slog.Info("PostgreSQL connected")
	}

	// ── Redis ────────────────────────────────────────────────────────────────
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		slog.Info("connecting to Redis")
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			fatal("Redis", err)
		}
		defer rdb.Close()
		slog.Info("Redis connected")
	} else {
		slog.Warn("REDIS_URL not set: events, assessment ingestion and rate limiting disabled")
	}

	// ── Service ──────────────────────────────────────────────────────────────
	svc := hiring.NewService(store, store, store, events.NewPublisher(rdb),
		hiring.Policy{InterviewSetsStatus: cfg.InterviewSetsStatus})

	listener := events.NewAssessmentListener(rdb, svc)
	go func() {
		if err := listener.Run(ctx); err != nil {
			slog.Error("assessment listener stopped", "err", err)
		}
	}()

	sched := scheduler.New(svc.Counter(), cfg.RecountInterval)
	if err := sched.Start(ctx); err != nil {
		fatal("scheduler", err)
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)

	var limiter httpapi.Limiter
	if rl := ratelimit.NewRedisLimiter(rdb, cfg.ApplyRateLimit, cfg.ApplyRateWindow, "hiring:apply"); rl != nil {
		limiter = rl
	}
	httpapi.NewHandler(svc, limiter).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP listening", "version", version, "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("HTTP server", err)
		}
	}()

	// ── gRPC server ──────────────────────────────────────────────────────────
	grpcSrv := grpcserver.NewGRPCServer(svc)
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
		if err != nil {
			fatal("gRPC listen", err)
		}
		go func() {
			slog.Info("gRPC listening", "addr", lis.Addr().String())
			if err := grpcSrv.Serve(lis); err != nil {
				fatal("gRPC server", err)
			}
		}()
	}

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown error", "err", err)
	}
	grpcSrv.GracefulStop()
	sched.Stop()
	cancel()
	slog.Info("stopped")
}

func fatal(what string, err error) {
	slog.Error(what, "err", err)
	os.Exit(1)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "hiring-service",
		"version": version,
	})
}
