// Package editormodule owns the edit descriptor and the composition
// pipeline: the non-destructive edit state per project and the pure
// translation of that state into renderable composition plans.
package editormodule

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/clipstack/clipstack/internal/base"
	"github.com/clipstack/clipstack/internal/events"
	"github.com/clipstack/clipstack/internal/services"
)

const (
	ModuleID   = "system.editor"
	ModuleName = "Edit Compositor"
)

// Module is the editor module
type Module struct {
	*base.BaseModule
	logger  hclog.Logger
	service *Service
}

// NewModule creates the editor module
func NewModule(db *gorm.DB, eventBus events.EventBus) *Module {
	m := &Module{
		BaseModule: base.NewBaseModule(ModuleID, ModuleName, "1.0.0", true),
		logger:     hclog.New(&hclog.LoggerOptions{Name: "editor-module"}),
	}
	m.SetDB(db)
	m.SetEventBus(eventBus)
	return m
}

// RegisterServices exposes the editor service before Init runs
func (m *Module) RegisterServices() error {
	m.service = NewService(m.GetEventBus(), m.logger)
	services.RegisterService(services.EditorServiceName, m.service)
	return nil
}

// Migrate is a no-op; descriptors are persisted as part of projects
func (m *Module) Migrate(db *gorm.DB) error {
	return nil
}

// Init subscribes the descriptor to committed timeline trims
func (m *Module) Init() error {
	if eventBus := m.GetEventBus(); eventBus != nil {
		filter := events.EventFilter{Types: []events.EventType{events.EventTimelineItemTrimmed}}
		if _, err := eventBus.Subscribe(context.Background(), filter, m.service.handleItemTrimmed); err != nil {
			return err
		}
	}

	m.logger.Info("editor module initialized")
	m.SetInitialized(true)
	return nil
}

// Service returns the editor service
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes registers the edit HTTP API
func (m *Module) RegisterRoutes(router *gin.Engine) {
	registerRoutes(router, m.service)
}
