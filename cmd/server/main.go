/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the household payroll server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment), apply flag overrides
  2. Build the zap logger and Sentry client
  3. Initialize SQLite store (goose migrations run here)
  4. Create payroll service
  5. Seed the admin PIN when none is stored and ADMIN_PIN_BOOTSTRAP is set
  6. Create API handler and router
  7. Start the payment scheduler
  8. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides HTTP_ADDR)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/diaristas.db"

  # Run with in-memory database and a known admin PIN
  ADMIN_PIN_BOOTSTRAP=1234 ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

ENVIRONMENT:
  See config/config.go. HTTP_ADDR, DB_PATH, LOG_LEVEL, ENV, SENTRY_DSN,
  TIMEZONE, SCHEDULER_ENABLED, SCHEDULER_INTERVAL, CORS_ORIGINS, STATIC_DIR,
  ADMIN_PIN_BOOTSTRAP.

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Payment scheduler
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/household-payroll/api"
	"github.com/warp/household-payroll/config"
	"github.com/warp/household-payroll/logging"
	"github.com/warp/household-payroll/observability"
	"github.com/warp/household-payroll/payroll"
	"github.com/warp/household-payroll/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	// Flags
	port := flag.Int("port", 0, "HTTP server port (overrides HTTP_ADDR)")
	dbPath := flag.String("db", "", "SQLite database path (overrides DB_PATH)")
	flag.Parse()
	if *port != 0 {
		cfg.HTTPAddr = fmt.Sprintf(":%d", *port)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	log, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		stdlog.Fatalf("Failed to build logger: %v", err)
	}
	defer log.Sync()

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Environment, cfg.Release)
	if err != nil {
		log.Warn("sentry disabled", zap.Error(err))
	}
	defer flush()

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to initialize database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer store.Close()

	svc := payroll.NewService(store, cfg.Location())

	if err := bootstrapAdminPIN(context.Background(), svc, cfg.AdminPINBootstrap); err != nil {
		log.Fatal("failed to seed admin PIN", zap.Error(err))
	}

	// Initialize handler
	handler := api.NewHandler(svc, log)
	handler.CORSOrigins = cfg.CORSOrigins
	handler.StaticDir = cfg.StaticDir

	scheduler := api.NewPaymentScheduler(svc, log)
	scheduler.CheckInterval = cfg.SchedulerInterval
	scheduler.Enabled = cfg.SchedulerEnabled
	scheduler.Start()
	defer scheduler.Stop()

	// Create server
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server starting",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("db", cfg.DBPath),
			zap.String("env", cfg.Environment),
			zap.String("timezone", cfg.Timezone),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("server stopped")
}

// bootstrapAdminPIN stores pin as the admin PIN unless one is already set.
func bootstrapAdminPIN(ctx context.Context, svc *payroll.Service, pin string) error {
	if pin == "" {
		return nil
	}
	current, err := svc.Store.AdminPIN(ctx)
	if err != nil {
		return err
	}
	if current != "" {
		return nil
	}
	if err := svc.SetAdminPIN(ctx, pin); err != nil {
		return fmt.Errorf("ADMIN_PIN_BOOTSTRAP: %w", err)
	}
	return nil
}
