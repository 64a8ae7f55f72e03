package berth

import "github.com/xraph/go-utils/di"

// RegisterOption is a configuration option for service registration.
type RegisterOption = di.RegisterOption

// Lifecycle names reported by Inspect and accepted by ServiceQuery.
const (
	LifecycleSingleton = "singleton"
	LifecycleTransient = "transient"
	LifecycleScoped    = "scoped"
)

// Singleton makes the service a single shared instance.
func Singleton() RegisterOption {
	return di.Singleton()
}

// Transient makes the service created on each resolve.
func Transient() RegisterOption {
	return di.Transient()
}

// Scoped makes the service live for the duration of a scope.
func Scoped() RegisterOption {
	return di.Scoped()
}

// WithDependencies declares services that must be registered and started first.
func WithDependencies(deps ...string) RegisterOption {
	return di.WithDependencies(deps...)
}

// WithMetadata adds diagnostic metadata to a registration.
func WithMetadata(key, value string) RegisterOption {
	return di.WithDIMetadata(key, value)
}

// WithGroup adds service to a named group.
func WithGroup(group string) RegisterOption {
	return di.WithGroup(group)
}

func mergeOptions(opts []RegisterOption) RegisterOption {
	return di.MergeOptions(opts)
}
