/*
main.go - Application entry point

PURPOSE:
  Starts the YogiTrack studio server: attendance check-in, class
  balances, reports and the catalog API.

STARTUP SEQUENCE:
  1. Load .env files and read configuration from the environment
  2. Parse command-line flags (they override the environment)
  3. Open the SQLite store
  4. Optionally seed demo data
  5. Build service, handler and router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: $PORT or 8080)
  -db      SQLite database path (default: $DB_PATH or yogitrack.db)
           Use ":memory:" for in-memory database
  -seed    Load the demo data before serving

ENVIRONMENT:
  PORT, DB_PATH, SEED_ON_START, APP_ENV, DEMO_SEED_TOKEN,
  CORS_ORIGINS, STATIC_DIR, LOG_LEVEL

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection

SEE ALSO:
  - api/server.go: Router configuration
  - config/env.go: Environment handling
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yogitrack/studio/api"
	"github.com/yogitrack/studio/config"
	"github.com/yogitrack/studio/logging"
	"github.com/yogitrack/studio/seed"
	"github.com/yogitrack/studio/store/sqlite"
	"github.com/yogitrack/studio/studio"
)

func main() {
	log := logging.NewLoggerWithService("yogitrack")
	config.LoadEnv(log.Logger)
	log.Logger.SetLevel(config.GetLogLevel())
	cfg := config.FromEnv()

	// Flags
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.BoolVar(&cfg.SeedOnStart, "seed", cfg.SeedOnStart, "Load demo data before serving")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer store.Close()

	if cfg.SeedOnStart {
		data, err := seed.Demo()
		if err != nil {
			log.WithError(err).Fatal("Failed to read demo data")
		}
		if _, err := seed.Load(context.Background(), store, data, seed.ModuleAll, log); err != nil {
			log.WithError(err).Fatal("Failed to seed database")
		}
	}

	metrics := api.NewMetrics()
	svc := studio.NewService(store,
		studio.WithLogger(log),
		studio.WithHooks(metrics.Hooks()),
	)
	handler := api.NewHandler(svc, cfg, log, metrics)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithFields(logging.Fields{
			"port":    cfg.Port,
			"db":      cfg.DBPath,
			"app_env": cfg.AppEnv,
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}
