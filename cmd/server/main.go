// Package main implements the entry point for the Sprout API server,
// which runs AI-backed background jobs for the gardening companion:
// seed packet analysis, plant research, growing guides, character
// portraits and the daily garden diary.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/sproutlab/sprout-api/internal/config"
	"github.com/sproutlab/sprout-api/internal/platform/logger"
)

func main() {
	// A missing .env file is fine; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_configured", cfg.Database.URL != "")

	ctx := context.Background()

	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
