// Package berth is a small dependency-injection container with a typed,
// synchronous event bus.
//
// Managed objects are declared by modules at bootstrap, looked up by name or by
// type, and released together when the container is closed:
//
//	err := berth.Run(ctx, berth.NewInitializer(berth.WithModules(vehicle.Module("dependent"))),
//	    func(ctx context.Context, c berth.Container) error {
//	        v, err := berth.Select[vehicle.Vehicle](c).Get()
//	        if err != nil {
//	            return err
//	        }
//	        v.Move()
//	        return nil
//	    })
package berth

import (
	"context"

	"github.com/xraph/go-utils/log"
)

// Container provides dependency injection with lifecycle management.
type Container interface {
	// Register adds a service factory under a unique name.
	Register(name string, factory Factory, opts ...RegisterOption) error

	// Resolve returns the service registered under name.
	Resolve(name string) (any, error)

	// Has checks if a service is registered.
	Has(name string) bool

	// IsStarted reports whether a service has been started.
	IsStarted(name string) bool

	// Services returns all registered service names in registration order.
	Services() []string

	// BeginScope creates a new scope for scoped services.
	BeginScope() Scope

	// Start starts all services in dependency order.
	Start(ctx context.Context) error

	// Stop stops all services in reverse dependency order.
	Stop(ctx context.Context) error

	// Health checks all instantiated singletons.
	Health(ctx context.Context) error

	// Inspect returns diagnostic information about a service.
	Inspect(name string) ServiceInfo

	// Use adds middleware to the container.
	Use(middleware Middleware)

	// Close releases every container-managed resource. Only the first call
	// does any work.
	Close(ctx context.Context) error
}

// Scope represents a lifetime scope for scoped services.
type Scope interface {
	// Resolve returns a service by name from this scope.
	Resolve(name string) (any, error)

	// End disposes all scoped instances.
	End() error
}

// Factory creates a service instance.
type Factory func(c Container) (any, error)

// ServiceInfo contains diagnostic information.
type ServiceInfo struct {
	Name         string
	Type         string
	Lifecycle    string
	Dependencies []string
	Groups       []string
	Started      bool
	Healthy      bool
	Metadata     map[string]string
}

// Logger is the part of log.Logger that managed components write to.
type Logger interface {
	Debug(msg string, fields ...log.Field)
	Info(msg string, fields ...log.Field)
	Warn(msg string, fields ...log.Field)
	Error(msg string, fields ...log.Field)
}

// New creates an empty container that logs nowhere.
func New() Container {
	return newContainer(log.NewNoopLogger())
}

// NewWithLogger creates an empty container that reports to logger.
func NewWithLogger(logger Logger) Container {
	return newContainer(logger)
}
