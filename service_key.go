package berth

// ServiceKey provides type-safe service identification for name-based
// registrations.
type ServiceKey[T any] struct {
	name string
}

// NewServiceKey creates a new typed service key.
//
// Example:
//
//	var HeadlineKey = NewServiceKey[string]("headline")
func NewServiceKey[T any](name string) ServiceKey[T] {
	return ServiceKey[T]{name: name}
}

// Name returns the string name of the service key.
func (k ServiceKey[T]) Name() string {
	return k.name
}

// RegisterWithKey registers a service using a typed service key.
func RegisterWithKey[T any](c Container, key ServiceKey[T], factory func(Container) (T, error), opts ...RegisterOption) error {
	return c.Register(key.name, func(c Container) (any, error) {
		return factory(c)
	}, opts...)
}

// ResolveWithKey resolves a service using a typed service key.
func ResolveWithKey[T any](c Container, key ServiceKey[T]) (T, error) {
	return Resolve[T](c, key.name)
}

// MustWithKey resolves a service using a typed service key and panics on error.
func MustWithKey[T any](c Container, key ServiceKey[T]) T {
	return Must[T](c, key.name)
}

// HasKey checks if a service is registered using a typed service key.
func HasKey[T any](c Container, key ServiceKey[T]) bool {
	return c.Has(key.name)
}
