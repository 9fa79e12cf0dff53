// Package timelinemodule owns the editing timeline: tracks, items, drag and
// trim interaction, snapping, and playhead state. Timelines live in memory
// per project; persistence is handled by the project module from snapshots.
package timelinemodule

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
	ModuleID   = "system.timeline"
	ModuleName = "Timeline Engine"
)

// Module is the timeline engine module
type Module struct {
	*base.BaseModule
	logger  hclog.Logger
	service *Service
}

// NewModule creates the timeline module
func NewModule(db *gorm.DB, eventBus events.EventBus) *Module {
	m := &Module{
		BaseModule: base.NewBaseModule(ModuleID, ModuleName, "1.0.0", true),
		logger:     hclog.New(&hclog.LoggerOptions{Name: "timeline-module"}),
	}
	m.SetDB(db)
	m.SetEventBus(eventBus)
	return m
}

// RegisterServices exposes the timeline service before Init runs
func (m *Module) RegisterServices() error {
	m.service = NewService(config.Get().Timeline, m.GetEventBus(), m.logger)
	services.RegisterService(services.TimelineServiceName, m.service)
	return nil
}

// Migrate is a no-op; timeline state is in-memory and persisted as project
// snapshots by the project module.
func (m *Module) Migrate(db *gorm.DB) error {
	return nil
}

// Init initializes the module
func (m *Module) Init() error {
	m.logger.Info("timeline module initialized")
	m.SetInitialized(true)
	return nil
}

// Service returns the timeline service
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes registers the timeline HTTP API
func (m *Module) RegisterRoutes(router *gin.Engine) {
	registerRoutes(router, m.service)
}
