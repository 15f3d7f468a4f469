package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openmes/batch-record-api/internal/router"
	"github.com/openmes/batch-record-api/internal/system/config"
	"github.com/openmes/batch-record-api/internal/system/database"
	"github.com/openmes/batch-record-api/internal/system/database/provider"
	"github.com/openmes/batch-record-api/internal/system/log"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	logger := log.GetLogger()

	logger.Info("Starting Batch Record API Server...",
		log.String("version", version),
		log.String("build_date", buildDate),
	)

	// Priority: CONFIG_PATH env var, then the default lookup paths inside Load.
	configPath := os.Getenv("CONFIG_PATH")

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", log.Error(err))
	}
	config.SetGlobal(cfg)

	log.SetLevel(cfg.Logging.Level)
	if cfg.Logging.Format == "text" {
		log.SetTextFormat()
	}

	logger.Info("Configuration loaded successfully",
		log.String("config_path", configPath),
		log.String("log_level", cfg.Logging.Level),
	)

	db, err := database.Initialize(&cfg.Database.BatchRecord)
	if err != nil {
		logger.Fatal("Failed to initialize database", log.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.HealthCheck(ctx); err != nil {
		logger.Fatal("Database health check failed", log.Error(err))
	}
	logger.Info("Database connection established successfully")

	provider.InitDBProvider(db)

	registry, err := buildStoreRegistry()
	if err != nil {
		logger.Fatal("Failed to initialize stores", log.Error(err))
	}

	ginRouter := router.SetupRouter(cfg, registry, db)

	server := &http.Server{
		Addr:           cfg.Server.GetServerAddress(),
		Handler:        ginRouter,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		logger.Info("Starting HTTP server...",
			log.String("hostname", cfg.Server.Hostname),
			log.Int("port", cfg.Server.Port),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", log.Error(err))
		}
	}()

	logger.Info("Server is running", log.String("address", cfg.Server.GetServerAddress()))

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", log.Error(err))
	}

	if closer := provider.GetDBProviderCloser(); closer != nil {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close database provider", log.Error(err))
		}
	}

	logger.Info("Server exited gracefully")
}
