// Package main implements the entry point for the Avatales API server,
// which manages family accounts, story characters, AI story generation
// and learning goals for children.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dschilow/Avatales-Backend-sub001/internal/config"
	"github.com/dschilow/Avatales-Backend-sub001/internal/platform/logger"
	"github.com/dschilow/Avatales-Backend-sub001/internal/platform/postgres"
)

func main() {
	migrate := flag.String("migrate", "", "run schema migrations (up, down or status) and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logger.Setup(cfg.Server)

	db, err := openDatabase(cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if *migrate != "" {
		if err := runMigrations(db, *migrate); err != nil {
			appLogger.Error("migration failed", "direction", *migrate, "error", err)
			os.Exit(1)
		}
		appLogger.Info("migrations completed", "direction", *migrate)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		appLogger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer app.cleanup()

	if err := app.Run(ctx); err != nil {
		appLogger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// runMigrations dispatches the -migrate flag to the embedded goose
// migrations.
func runMigrations(db *sql.DB, direction string) error {
	switch direction {
	case "up":
		return postgres.MigrateUp(db)
	case "down":
		return postgres.MigrateDown(db)
	case "status":
		return postgres.MigrationStatus(db)
	default:
		return fmt.Errorf("unknown migration direction %q (want up, down or status)", direction)
	}
}
