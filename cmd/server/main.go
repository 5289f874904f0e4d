package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/facturacion/internal/config"
	"github.com/diewo77/facturacion/internal/db"
	"github.com/diewo77/facturacion/internal/logger"
	"github.com/diewo77/facturacion/internal/metrics"
	"github.com/diewo77/facturacion/internal/store"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	ctx := context.Background()

	dbConn, err := db.Open(cfg.Database, cfg.App.Dev)
	if err != nil {
		logger.Error(ctx, "database connection failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close(dbConn) }()

	if *migrateOnlyFlag {
		if err := migrate(cfg, dbConn); err != nil {
			logger.Error(ctx, "migration failed", "error", err)
			os.Exit(1)
		}
		logger.Info(ctx, "migrations completed")
		return
	}

	if *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			logger.Error(ctx, "seeding failed", "error", err)
			os.Exit(1)
		}
		logger.Info(ctx, "seeding completed")
		return
	}

	if err := migrate(cfg, dbConn); err != nil {
		logger.Error(ctx, "migration failed", "error", err)
		os.Exit(1)
	}
	if cfg.App.Seed {
		if err := db.Seed(dbConn); err != nil {
			logger.Error(ctx, "seeding failed", "error", err)
			os.Exit(1)
		}
	}

	appHandler := NewApp(store.NewGormStore(dbConn), metrics.New())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      appHandler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "error during shutdown", "error", err)
	}
	logger.Info(ctx, "server stopped gracefully")
}

// migrate applies the SQL migrations on postgres when MIGRATIONS is set, AutoMigrate otherwise.
func migrate(cfg *config.Config, conn *gorm.DB) error {
	if cfg.App.Migrations && cfg.Database.Driver == "postgres" {
		return db.RunSQLMigrations(cfg.Database.URL(), cfg.App.MigrationsDir)
	}
	return db.Migrate(conn)
}
