package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/api"
	"github.com/shorebytelabs/nailsbyabri/internal/capacity"
	"github.com/shorebytelabs/nailsbyabri/internal/config"
	"github.com/shorebytelabs/nailsbyabri/internal/promo"
	"github.com/shorebytelabs/nailsbyabri/internal/repository/postgres"
	"github.com/shorebytelabs/nailsbyabri/internal/service"
	"github.com/shorebytelabs/nailsbyabri/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting order API server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := postgres.RunMigrations(db, "migrations"); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories and services
	repos := postgres.NewRepositories(db, cfg, logger)
	admission := capacity.NewAdmissionControl(repos.Capacity, logger)
	validator := promo.NewValidator(repos.PromoCode, repos.Shape, logger)
	store := storage.NewClient(cfg.Storage, logger)
	orders := service.NewOrderService(repos, admission, logger)
	drafts := service.NewDraftService(repos, orders, validator, store, logger)

	// Initialize router
	router := api.NewRouter(cfg, repos, &api.Services{
		Drafts:    drafts,
		Orders:    orders,
		Admission: admission,
	}, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Capacity windows: ensure current and next week exist on startup, then hourly
	windowCtx, cancelWindows := context.WithCancel(context.Background())
	defer cancelWindows()
	go service.RunCapacityWindowLoop(windowCtx, cfg, repos, logger)
	logger.Info("Capacity window job started (runs on startup and hourly)")

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
