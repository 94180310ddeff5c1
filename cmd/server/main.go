/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Initialize SQLite store
  3. Resolve the statutory state: stored snapshot, else provisions file,
     else embedded defaults
  4. Seed the default company if the store has none
  5. Configure HTTP router and start server

COMMAND-LINE FLAGS:
  -port         HTTP server port (overrides APP_PORT)
  -db           SQLite database path (overrides DB_PATH)
                Use ":memory:" for in-memory database
  -provisions   Provisions YAML (overrides PROVISIONS_FILE); when set, its
                state replaces the stored snapshot

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment variables
  - provisions/defaults.yaml: Embedded statutory defaults
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/provisions"
	"github.com/warp/payroll-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags
	port := flag.Int("port", cfg.App.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.Database.Path, "SQLite database path")
	provisionsFile := flag.String("provisions", cfg.Payroll.ProvisionsFile, "provisions YAML file")
	flag.Parse()

	logger := api.NewLogger(os.Stdout, cfg.App.Env, cfg.App.SlogLevel())
	slog.SetDefault(logger)
	if !cfg.EnvLoaded {
		logger.Debug("no .env file, using environment variables")
	}

	// Initialize store
	st, err := sqlite.New(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	state, err := bootstrap(ctx, st, *provisionsFile, logger)
	if err != nil {
		return err
	}

	handler := api.NewHandler(st, state, logger)
	handler.BatchConcurrency = cfg.Payroll.BatchConcurrency

	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		LogLevel:       cfg.App.SlogLevel(),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.Int("port", *port), slog.Int("stateYear", state.Year))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// bootstrap returns the state to serve and makes sure a default company
// exists. An explicit provisions file always wins over the stored snapshot.
func bootstrap(ctx context.Context, st *sqlite.Store, provisionsFile string, logger *slog.Logger) (provisions.State, error) {
	var (
		p   provisions.Provisions
		err error
	)
	if provisionsFile != "" {
		p, err = provisions.LoadFile(provisionsFile)
	} else {
		p, err = provisions.Default()
	}
	if err != nil {
		return provisions.State{}, fmt.Errorf("failed to load provisions: %w", err)
	}

	stored, err := st.LoadState(ctx)
	if err != nil {
		return provisions.State{}, fmt.Errorf("failed to load stored state: %w", err)
	}

	state := p.State
	switch {
	case stored != nil && provisionsFile == "":
		if err := stored.Validate(); err != nil {
			return provisions.State{}, fmt.Errorf("stored state is invalid: %w", err)
		}
		state = *stored
		logger.Info("using stored statutory state", slog.Int("year", state.Year))
	default:
		if err := st.SaveState(ctx, state); err != nil {
			return provisions.State{}, fmt.Errorf("failed to save state: %w", err)
		}
		logger.Info("statutory state loaded", slog.Int("year", state.Year), slog.String("source", sourceName(provisionsFile)))
	}

	existing, err := st.GetCompany(ctx, p.Company.ID)
	if err != nil {
		return provisions.State{}, err
	}
	if existing == nil {
		if err := st.SaveCompany(ctx, p.Company); err != nil {
			return provisions.State{}, fmt.Errorf("failed to seed company: %w", err)
		}
		logger.Info("seeded company", slog.String("companyId", p.Company.ID))
	}
	return state, nil
}

func sourceName(file string) string {
	if file == "" {
		return "embedded"
	}
	return file
}
