/*
Package main is the entry point for the lia server.

It is responsible for loading configuration, initializing the global logging
system, opening the persistence backend, ensuring the root account exists,
starting the push-event hub, and gracefully handling operating system interrupt
signals (SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"lia/internal/app/events"
	"lia/internal/app/groceries"
	"lia/internal/app/store"
	"lia/internal/app/store/memory"
	"lia/internal/app/store/postgres"
	"lia/internal/configs"
	"lia/internal/handler"
	"lia/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("store_mode", cfg.StoreMode).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the persistence backend
	dataStore, err := openStore(cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open data store")
	}
	defer dataStore.Close()

	if err := ensureRootUser(ctx, dataStore, cfg); err != nil {
		logx.Fatal(err, "Failed to ensure root account")
	}

	// Initialize push-event hub and product-search client
	hub := events.NewHub()
	search := groceries.NewClient(cfg.SearchURL)

	deps := &handler.AppDeps{
		Store:  dataStore,
		Hub:    hub,
		Search: search,
		Config: cfg,
	}

	// Setup HTTP server and routes
	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("lia server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	hub.Shutdown()

	logx.Info("Server gracefully stopped.")
}

// openStore creates the persistence backend selected by STORE_MODE.
func openStore(cfg *configs.AppConfig) (store.Store, error) {
	if cfg.StoreMode == "memory" {
		logx.Info("Using in-memory store; data will not survive restarts")
		return memory.NewStore(), nil
	}

	pool, err := postgres.NewPool(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	return postgres.NewStore(pool), nil
}

// ensureRootUser creates the admin root account on first start. With
// RECREATE_ROOT set, an existing root account is replaced, which resets its
// password to the configured one.
func ensureRootUser(ctx context.Context, dataStore store.Store, cfg *configs.AppConfig) error {
	existing, err := dataStore.GetUserByUsername(ctx, cfg.RootUser)
	if err == nil {
		if !cfg.RecreateRoot {
			return nil
		}

		logx.Info("Recreating root account", "username", cfg.RootUser)
		if err := dataStore.DeleteUser(ctx, existing.ID); err != nil {
			return fmt.Errorf("failed to delete existing root account: %w", err)
		}
	} else if err != store.ErrNotFound {
		return fmt.Errorf("failed to look up root account: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.RootPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash root password: %w", err)
	}

	if _, err := dataStore.CreateUser(ctx, cfg.RootUser, string(hashedPassword), true); err != nil {
		return fmt.Errorf("failed to create root account: %w", err)
	}

	logx.Info("Root account ready", "username", cfg.RootUser)
	return nil
}
