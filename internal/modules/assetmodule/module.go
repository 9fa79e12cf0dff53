// Package assetmodule is the media asset registry: durations, audio track
// presence, and display metadata, resolved for the timeline and compositor
// before any trim or composition math runs.
package assetmodule

import (
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/clipstack/clipstack/internal/base"
	"github.com/clipstack/clipstack/internal/config"
	"github.com/clipstack/clipstack/internal/events"
	"github.com/clipstack/clipstack/internal/services"
)

const (
	ModuleID   = "system.assets"
	ModuleName = "Asset Registry"
)

// Module is the asset registry module
type Module struct {
	*base.BaseModule
	logger  hclog.Logger
	service *Service
	watcher *Watcher
}

// NewModule creates the asset module
func NewModule(db *gorm.DB, eventBus events.EventBus) *Module {
	m := &Module{
		BaseModule: base.NewBaseModule(ModuleID, ModuleName, "1.0.0", true),
		logger:     hclog.New(&hclog.LoggerOptions{Name: "asset-module"}),
	}
	m.SetDB(db)
	m.SetEventBus(eventBus)
	return m
}

// RegisterServices exposes the asset service before Init runs
func (m *Module) RegisterServices() error {
	m.service = NewService(m.GetDB(), config.Get().Assets, m.GetEventBus(), m.logger)
	services.RegisterService(services.AssetServiceName, m.service)
	return nil
}

// Migrate creates the asset tables
func (m *Module) Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Asset{})
}

// Init starts the directory watcher when configured
func (m *Module) Init() error {
	cfg := config.Get().Assets
	if cfg.WatchEnabled && cfg.WatchDir != "" {
		watcher, err := NewWatcher(m.service, cfg.WatchDir, m.logger)
		if err != nil {
			m.logger.Warn("asset watcher unavailable", "dir", cfg.WatchDir, "error", err)
		} else {
			m.watcher = watcher
			m.logger.Info("watching asset directory", "dir", cfg.WatchDir)
		}
	}

	m.SetInitialized(true)
	return nil
}

// Shutdown stops the watcher
func (m *Module) Shutdown() error {
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}

// Service returns the asset service
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes registers the asset HTTP API
func (m *Module) RegisterRoutes(router *gin.Engine) {
	registerRoutes(router, m.service)
}
