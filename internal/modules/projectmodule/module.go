// Package projectmodule persists editing sessions: the timeline snapshot and
// edit descriptor per project, saved and restored on demand.
package projectmodule

import (
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/clipstack/clipstack/internal/base"
	"github.com/clipstack/clipstack/internal/events"
	"github.com/clipstack/clipstack/internal/services"
)

const (
	ModuleID   = "system.projects"
	ModuleName = "Project Store"
)

// Module is the project persistence module
type Module struct {
	*base.BaseModule
	logger  hclog.Logger
	service *Service
}

// NewModule creates the project module
func NewModule(db *gorm.DB, eventBus events.EventBus) *Module {
	m := &Module{
		BaseModule: base.NewBaseModule(ModuleID, ModuleName, "1.0.0", false),
		logger:     hclog.New(&hclog.LoggerOptions{Name: "project-module"}),
	}
	m.SetDB(db)
	m.SetEventBus(eventBus)
	return m
}

// RegisterServices exposes the project service before Init runs
func (m *Module) RegisterServices() error {
	m.service = NewService(m.GetDB(), m.GetEventBus(), m.logger)
	services.RegisterService(services.ProjectServiceName, m.service)
	return nil
}

// Migrate creates the project tables
func (m *Module) Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Project{})
}

// Init initializes the module
func (m *Module) Init() error {
	m.SetInitialized(true)
	return nil
}

// Service returns the project service
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes registers the project HTTP API
func (m *Module) RegisterRoutes(router *gin.Engine) {
	registerRoutes(router, m.service)
}
