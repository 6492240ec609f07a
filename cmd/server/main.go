// Package main implements the entry point for the daytask API server,
// which manages users' day-scoped task lists behind an authenticated
// HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/daytask/daytask-api/internal/config"
	"github.com/daytask/daytask-api/internal/platform/logger"
)

// main is the entry point for the daytask-api server.
// It initializes configuration, sets up logging, establishes the database
// connection, wires dependencies, and starts the HTTP server. When a
// -migrate flag is given it applies migrations and exits instead.
func main() {
	migrateCmd := flag.String(
		"migrate",
		"",
		"Run database migrations instead of serving (up, down, status)",
	)
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

// run performs the full application lifecycle so main stays a thin shell
// around a testable function.
func run(migrateCmd string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if migrateCmd != "" {
		defer func() {
			if err := db.Close(); err != nil {
				appLogger.Error("Error closing database connection", "error", err)
			}
		}()
		return runMigrations(db, migrateCmd, appLogger)
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
