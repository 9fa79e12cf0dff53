// Package services provides the registry used for inter-module communication.
//
// Modules expose their functionality by registering a service implementation
// during initialization; other modules look services up through the registry
// instead of importing each other directly. This keeps API boundaries clear
// and avoids circular dependencies.
package services

import (
	"fmt"
	"sync"
)

// Well-known service names
const (
	TimelineServiceName = "timeline"
	EditorServiceName   = "editor"
	AssetServiceName    = "assets"
	ProjectServiceName  = "projects"
)

// ServiceRegistry holds registered service implementations by name
type ServiceRegistry struct {
	mu       sync.RWMutex
	services map[string]interface{}
}

var globalRegistry = &ServiceRegistry{
	services: make(map[string]interface{}),
}

// RegisterService registers a service with the given name
func RegisterService[T any](name string, service T) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	globalRegistry.services[name] = service
}

// GetService retrieves a service by name with type safety
func GetService[T any](name string) (T, error) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	var zero T

	service, exists := globalRegistry.services[name]
	if !exists {
		return zero, fmt.Errorf("service '%s' not found", name)
	}

	typedService, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("service '%s' has wrong type", name)
	}

	return typedService, nil
}

// MustGetService retrieves a service and panics if not found (for initialization)
func MustGetService[T any](name string) T {
	service, err := GetService[T](name)
	if err != nil {
		panic(fmt.Sprintf("Required service not available: %v", err))
	}
	return service
}

// ListServices returns all registered service names
func ListServices() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	names := make([]string, 0, len(globalRegistry.services))
	for name := range globalRegistry.services {
		names = append(names, name)
	}
	return names
}

// Reset clears the registry (used by tests)
func Reset() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.services = make(map[string]interface{})
}
