package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipstack/clipstack/internal/config"
	"github.com/clipstack/clipstack/internal/database"
	"github.com/clipstack/clipstack/internal/logger"
	"github.com/clipstack/clipstack/internal/server"
)

func main() {
	fmt.Println("=====================================")
	fmt.Println("  ClipStack - Video Editing Engine   ")
	fmt.Println("=====================================")

	configPath := os.Getenv("CLIPSTACK_CONFIG_PATH")
	if configPath == "" {
		if _, err := os.Stat("./clipstack.yaml"); err == nil {
			configPath = "./clipstack.yaml"
		}
	}

	if err := config.Load(configPath); err != nil {
		logger.Warn("Failed to load configuration from %s: %v, using defaults", configPath, err)
	} else if configPath != "" {
		logger.Info("Configuration loaded from: %s", configPath)
	} else {
		logger.Info("Using default configuration")
	}

	if configPath != "" {
		configWatcher, err := config.WatchFile(configPath)
		if err != nil {
			logger.Warn("Configuration hot reload disabled: %v", err)
		} else {
			defer configWatcher.Close()
		}
	}

	cfg := config.Get()
	logger.InfoStructured("Configuration active",
		logger.String("database", cfg.Database.Type),
		logger.Int("port", cfg.Server.Port),
		logger.Float("pixels_per_second", cfg.Timeline.PixelsPerSecond),
		logger.Bool("cors", cfg.Server.EnableCORS),
	)

	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if database.GetDB() == nil {
		log.Fatal("Failed to initialize database")
	}

	r := server.SetupRouter()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down gracefully...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error: %v", err)
		}
		if err := server.ShutdownModules(); err != nil {
			logger.Error("Module shutdown error: %v", err)
		}
		if err := server.ShutdownEventBus(); err != nil {
			logger.Error("Event bus shutdown error: %v", err)
		}
	}()

	logger.Info("Server starting on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
