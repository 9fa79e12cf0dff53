// Package server wires the application together: event bus, module system,
// HTTP routes, and the websocket preview hub.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/clipstack/clipstack/internal/config"
	"github.com/clipstack/clipstack/internal/database"
	"github.com/clipstack/clipstack/internal/events"
	"github.com/clipstack/clipstack/internal/logger"
	"github.com/clipstack/clipstack/internal/middleware"
	"github.com/clipstack/clipstack/internal/modules/assetmodule"
	"github.com/clipstack/clipstack/internal/modules/editormodule"
	"github.com/clipstack/clipstack/internal/modules/modulemanager"
	"github.com/clipstack/clipstack/internal/modules/projectmodule"
	"github.com/clipstack/clipstack/internal/modules/timelinemodule"
)

var (
	systemEventBus events.EventBus
	previewHub     *PreviewHub
	assetModule    *assetmodule.Module
)

// SetupRouter configures and returns the main router
func SetupRouter() *gin.Engine {
	r := gin.Default()
	cfg := config.Get()

	if cfg.Server.EnableCORS {
		r.Use(corsMiddleware())
	}
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorLogger())

	if err := initializeEventBus(); err != nil {
		logger.Error("Failed to initialize event bus: %v", err)
	}
	if err := initializeModules(); err != nil {
		logger.Error("Failed to initialize modules: %v", err)
	}

	r.GET("/api/health", healthHandler)
	modulemanager.RegisterRoutes(r)

	previewHub = NewPreviewHub(cfg.Preview.DebounceInterval, hclog.New(&hclog.LoggerOptions{Name: "preview-hub"}))
	if systemEventBus != nil {
		filter := events.EventFilter{Types: []events.EventType{
			events.EventEditUpdated,
			events.EventTimelineItemTrimmed,
			events.EventTimelineItemMoved,
		}}
		if _, err := systemEventBus.Subscribe(context.Background(), filter, previewHub.HandleEvent); err != nil {
			logger.Error("Failed to subscribe preview hub: %v", err)
		}
	}
	r.GET("/ws/preview/:projectID", previewHub.HandleWS)

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthChecker is implemented by modules that can report their own health
type healthChecker interface {
	HealthCheck() error
}

func healthHandler(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if systemEventBus != nil {
		if err := systemEventBus.Health(); err != nil {
			status["status"] = "degraded"
			status["event_bus"] = err.Error()
		}
	}

	modules := gin.H{}
	for _, module := range modulemanager.ListModules() {
		checker, ok := module.(healthChecker)
		if !ok {
			continue
		}
		if err := checker.HealthCheck(); err != nil {
			status["status"] = "degraded"
			modules[module.ID()] = err.Error()
		} else {
			modules[module.ID()] = "ok"
		}
	}
	if len(modules) > 0 {
		status["modules"] = modules
	}

	c.JSON(http.StatusOK, status)
}

// initializeEventBus starts the system event bus with database persistence
func initializeEventBus() error {
	if systemEventBus != nil {
		return nil
	}

	db := database.GetDB()
	var storage events.EventStorage
	if db != nil {
		if err := events.Migrate(db); err != nil {
			return err
		}
		storage = events.NewDatabaseEventStorage(db)
	}

	busConfig := events.DefaultEventBusConfig()
	busConfig.EnablePersistence = storage != nil

	bus := events.NewEventBus(busConfig, hclog.New(&hclog.LoggerOptions{Name: "event-bus"}), storage)
	if err := bus.Start(context.Background()); err != nil {
		return err
	}

	systemEventBus = bus
	events.SetGlobalEventBus(bus)

	event := events.NewEvent(events.EventSystemStarted, "system", "System started", "")
	return bus.PublishAsync(event)
}

// initializeModules registers and loads all modules
func initializeModules() error {
	db := database.GetDB()

	assetModule = assetmodule.NewModule(db, systemEventBus)
	modulemanager.Register(timelinemodule.NewModule(db, systemEventBus))
	modulemanager.Register(editormodule.NewModule(db, systemEventBus))
	modulemanager.Register(assetModule)
	modulemanager.Register(projectmodule.NewModule(db, systemEventBus))

	return modulemanager.LoadAll(db)
}

// ShutdownEventBus stops the event bus gracefully
func ShutdownEventBus() error {
	if systemEventBus == nil {
		return nil
	}

	event := events.NewEvent(events.EventSystemStopped, "system", "System stopping", "")
	_ = systemEventBus.PublishAsync(event)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return systemEventBus.Stop(ctx)
}

// ShutdownModules stops module background work (asset watcher, preview hub)
func ShutdownModules() error {
	if previewHub != nil {
		previewHub.Close()
	}
	if assetModule != nil {
		return assetModule.Shutdown()
	}
	return nil
}
