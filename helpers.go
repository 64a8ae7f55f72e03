package berth

import (
	"fmt"

	"github.com/xraph/go-utils/log"
)

// Resolve with type safety.
func Resolve[T any](c Container, name string) (T, error) {
	var zero T

	instance, err := c.Resolve(name)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, ErrTypeMismatch(name, instance)
	}

	return typed, nil
}

// Must resolves or panics - use only during startup.
func Must[T any](c Container, name string) T {
	instance, err := Resolve[T](c, name)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", name, err))
	}

	return instance
}

// RegisterSingleton is a convenience wrapper for singleton services.
func RegisterSingleton[T any](c Container, name string, factory func(Container) (T, error)) error {
	return c.Register(name, func(c Container) (any, error) {
		return factory(c)
	}, Singleton())
}

// RegisterTransient is a convenience wrapper for transient services.
func RegisterTransient[T any](c Container, name string, factory func(Container) (T, error)) error {
	return c.Register(name, func(c Container) (any, error) {
		return factory(c)
	}, Transient())
}

// RegisterScoped is a convenience wrapper for scoped services.
func RegisterScoped[T any](c Container, name string, factory func(Container) (T, error)) error {
	return c.Register(name, func(c Container) (any, error) {
		return factory(c)
	}, Scoped())
}

// RegisterValue registers a pre-built instance (always singleton).
func RegisterValue[T any](c Container, name string, instance T) error {
	return c.Register(name, func(c Container) (any, error) {
		return instance, nil
	}, Singleton())
}

// ResolveScope is a helper for resolving from a scope.
func ResolveScope[T any](s Scope, name string) (T, error) {
	var zero T

	instance, err := s.Resolve(name)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, ErrTypeMismatch(name, instance)
	}

	return typed, nil
}

// GetLogger resolves the logger registered during bootstrap.
func GetLogger(c Container) (log.Logger, error) {
	l, err := c.Resolve(LoggerServiceName)
	if err != nil {
		return nil, err
	}

	logger, ok := l.(log.Logger)
	if !ok {
		return nil, fmt.Errorf("resolved instance is not Logger, got %T", l)
	}

	return logger, nil
}
