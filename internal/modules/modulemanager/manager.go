// Package modulemanager handles module registration and lifecycle.
package modulemanager

import (
	"fmt"
	"sync"

	"github.com/clipstack/clipstack/internal/base"
	"github.com/clipstack/clipstack/internal/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Module defines the interface that all modules must implement
type Module interface {
	ID() string                // Unique identifier for the module
	Name() string              // Display name for the module
	Core() bool                // Whether this is a core module (cannot be disabled)
	Migrate(db *gorm.DB) error // Run database migrations
	Init() error               // Initialize the module
}

// RouteRegistrar is an optional interface for modules that need to register routes
type RouteRegistrar interface {
	RegisterRoutes(router *gin.Engine)
}

// ServiceRegistrar is an optional interface for modules that expose services
// before general initialization runs
type ServiceRegistrar interface {
	RegisterServices() error
}

// ModuleRegistry manages module registration and initialization
type ModuleRegistry struct {
	modules         map[string]Module
	order           []string
	disabledModules map[string]bool
	mu              sync.RWMutex
	initialized     bool
}

// Registry is the global module registry
var Registry = &ModuleRegistry{
	modules:         make(map[string]Module),
	disabledModules: make(map[string]bool),
}

// Register adds a module to the registry
func Register(m Module) {
	Registry.Register(m)
}

// Register adds a module to the registry
func (r *ModuleRegistry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		logger.Warn("Module %s (%s) registered after initialization", m.Name(), m.ID())
	}

	if _, exists := r.modules[m.ID()]; !exists {
		r.order = append(r.order, m.ID())
	}
	r.modules[m.ID()] = m
	logger.Info("Module registered: %s (%s)", m.Name(), m.ID())
}

// LoadAll initializes all registered modules
func LoadAll(db *gorm.DB) error {
	return Registry.LoadAll(db)
}

// LoadAll initializes all registered modules in registration order.
// Service registration happens in a first phase so modules can look each
// other up during Init regardless of ordering.
func (r *ModuleRegistry) LoadAll(db *gorm.DB) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		logger.Warn("Module system already initialized")
		return nil
	}

	var enabled []Module
	for _, id := range r.order {
		module := r.modules[id]
		if r.disabledModules[id] {
			if module.Core() {
				return fmt.Errorf("attempted to disable core module: %s", id)
			}
			logger.Warn("Skipping module %s (disabled)", module.Name())
			continue
		}
		enabled = append(enabled, module)
	}

	logger.Info("Loading %d modules...", len(enabled))

	// Phase 1: service registration
	for _, module := range enabled {
		if registrar, ok := module.(ServiceRegistrar); ok {
			if err := registrar.RegisterServices(); err != nil {
				return base.NewModuleError("SERVICE_REGISTRATION", fmt.Sprintf("failed to register services for %s", module.Name()), err)
			}
		}
	}

	// Phase 2: migrate and initialize
	for i, module := range enabled {
		logger.Info("[%d/%d] Initializing module: %s", i+1, len(enabled), module.Name())

		if err := module.Migrate(db); err != nil {
			return base.NewModuleError("MODULE_MIGRATION", fmt.Sprintf("failed to migrate %s", module.Name()), err)
		}

		if err := module.Init(); err != nil {
			return base.NewModuleError("MODULE_INIT", fmt.Sprintf("failed to initialize %s", module.Name()), err)
		}

		logger.Info("Module loaded: %s", module.Name())
	}

	r.initialized = true
	return nil
}

// DisableModule marks a module as disabled (for development/testing only)
func DisableModule(id string) {
	Registry.DisableModule(id)
}

// DisableModule marks a module as disabled
func (r *ModuleRegistry) DisableModule(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	module, exists := r.modules[id]
	if exists && module.Core() {
		logger.Error("Cannot disable core module: %s", id)
		return
	}

	r.disabledModules[id] = true
	logger.Info("Module disabled: %s", id)
}

// GetModule returns a module by ID
func GetModule(id string) (Module, bool) {
	return Registry.GetModule(id)
}

// GetModule returns a module by ID
func (r *ModuleRegistry) GetModule(id string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	module, exists := r.modules[id]
	return module, exists
}

// ListModules returns all registered modules in registration order
func ListModules() []Module {
	return Registry.ListModules()
}

// ListModules returns all registered modules in registration order
func (r *ModuleRegistry) ListModules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	modules := make([]Module, 0, len(r.modules))
	for _, id := range r.order {
		modules = append(modules, r.modules[id])
	}
	return modules
}

// RegisterRoutes registers routes for all modules that implement RouteRegistrar
func RegisterRoutes(router *gin.Engine) {
	Registry.RegisterRoutes(router)
}

// RegisterRoutes registers routes for all modules that implement RouteRegistrar
func (r *ModuleRegistry) RegisterRoutes(router *gin.Engine) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		module := r.modules[id]
		if routeRegistrar, ok := module.(RouteRegistrar); ok {
			logger.Info("Registering routes for module: " + module.Name())
			routeRegistrar.RegisterRoutes(router)
		}
	}
}
