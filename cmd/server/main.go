// Package main implements the entry point for the homeroom API server:
// flashcard authoring and spaced repetition review scheduling for
// homeschooling families.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/homeroomhq/homeroom-api/internal/config"
	"github.com/homeroomhq/homeroom-api/internal/platform/logger"
	"github.com/homeroomhq/homeroom-api/internal/platform/postgres"
)

func main() {
	// A missing .env file is fine in production; env vars come from the
	// process environment there.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	ctx := context.Background()

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to set up database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	if err := postgres.MigrateUp(ctx, db, appLogger); err != nil {
		appLogger.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app, err := newApplication(ctx, cfg, db, appLogger)
	if err != nil {
		appLogger.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := runServer(ctx, app); err != nil {
		appLogger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runServer starts the HTTP server and blocks until shutdown completes.
func runServer(ctx context.Context, app *application) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverCtx, cancelServer := context.WithCancel(ctx)
	defer cancelServer()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		app.logger.Info("starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error("server failed", slog.String("error", err.Error()))
			cancelServer()
		}
	}()

	select {
	case <-shutdownCh:
		app.logger.Info("shutdown signal received")
	case <-serverCtx.Done():
		app.logger.Info("server context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("server shutdown completed")
	return nil
}
