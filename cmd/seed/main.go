// seed upserts the users and jobs of a YAML fixture into PostgreSQL.
//
// Usage:
//
//	DATABASE_URL=postgres://… go run ./cmd/seed fixtures/dev.yaml
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"jobmate/hiring-service/internal/config"
	"jobmate/hiring-service/internal/db"
	"jobmate/hiring-service/internal/hiring"
	"jobmate/hiring-service/internal/seed"
	"jobmate/hiring-service/internal/store/postgres"
)

func main() {
	if len(os.Args) != 2 {
		slog.Error("usage: seed <fixture.yaml>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("config error", err)
	}
	if cfg.StoreDriver != config.DriverPostgres {
		slog.Error("seed writes to PostgreSQL; unset STORE_DRIVER or set it to postgres")
		os.Exit(2)
	}

	fixture, err := seed.LoadFile(os.Args[1])
	if err != nil {
		fatal("load fixture", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, 2)
	if err != nil {
		fatal("PostgreSQL", err)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		fatal("migrate", err)
	}

	store := postgres.New(pool)
	if err := fixture.Apply(ctx, store); err != nil {
		fatal("apply fixture", err)
	}
	// Counters of re-seeded jobs may be stale.
	if failed, err := hiring.NewCounter(store, store).RecountAll(ctx); err != nil || failed > 0 {
		slog.Warn("recount after seed incomplete", "failedJobs", failed, "err", err)
	}
	slog.Info("seed complete", "users", len(fixture.Users), "jobs", len(fixture.Jobs))
}

func fatal(what string, err error) {
	slog.Error(what, "err", err)
	os.Exit(1)
}
