package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sproutlab/sprout-api/internal/config"
	"github.com/sproutlab/sprout-api/internal/platform/postgres"
	"github.com/sproutlab/sprout-api/internal/store"
	"github.com/sproutlab/sprout-api/internal/store/memory"
)

// dataStores groups the three persistence interfaces the services
// depend on, plus the underlying connection when one exists.
type dataStores struct {
	jobs    store.JobStore
	unified store.UnifiedJobStore
	diaries store.DiaryStore

	// db is nil in memory mode.
	db *sql.DB
}

// setupStores connects to Postgres and runs migrations, or falls back
// to the in-memory store when no database URL is configured. Memory
// mode loses all job records on restart.
func setupStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dataStores, error) {
	if cfg.Database.URL == "" {
		logger.Warn("no database URL configured, using in-memory store",
			"durability", "records lost on restart")
		mem := memory.New()
		return &dataStores{jobs: mem, unified: mem, diaries: mem}, nil
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database connection established")

	jobs := postgres.NewJobStore(db, logger)
	return &dataStores{
		jobs:    jobs,
		unified: postgres.NewUnifiedJobStore(db, jobs, logger),
		diaries: postgres.NewDiaryStore(db, logger),
		db:      db,
	}, nil
}
