package berth

import (
	"fmt"
	"reflect"
)

// Instance is a deferred typed lookup produced by Select. Nothing is created
// until Get or All is called.
type Instance[T any] struct {
	key     string
	names   []string
	resolve func(name string) (any, error)
	err     error
}

// Select looks up beans satisfying T. With no qualifier only unnamed beans
// are candidates.
//
// Example:
//
//	v, err := berth.Select[vehicle.Vehicle](c).Get()
func Select[T any](c Container, qualifiers ...Qualifier) Instance[T] {
	typ := payloadType[T]()
	key := describe(typ, qualifiers)

	switch v := c.(type) {
	case *containerImpl:
		return newInstance[T](v.beans, typ, key, qualifiers, v.Resolve)
	case *resolution:
		// inside a factory, keep the construction path and scope
		return newInstance[T](v.beans, typ, key, qualifiers, v.Resolve)
	default:
		return Instance[T]{key: key, err: fmt.Errorf("Select requires a berth container, got %T", c)}
	}
}

// SelectScope is Select against a scope, so scoped beans resolve to the
// scope's instance.
func SelectScope[T any](s Scope, qualifiers ...Qualifier) Instance[T] {
	typ := payloadType[T]()
	key := describe(typ, qualifiers)

	sc, ok := s.(*scope)
	if !ok {
		return Instance[T]{key: key, err: fmt.Errorf("SelectScope requires a berth scope, got %T", s)}
	}

	return newInstance[T](sc.parent.beans, typ, key, qualifiers, sc.Resolve)
}

func newInstance[T any](beans *beanRegistry, typ reflect.Type, key string, quals []Qualifier, resolve func(string) (any, error)) Instance[T] {
	return Instance[T]{
		key:     key,
		names:   beans.candidates(typ, quals),
		resolve: resolve,
	}
}

// Get resolves the single candidate. It fails with an unsatisfied error when
// there is none and an ambiguous error when there are several.
func (i Instance[T]) Get() (T, error) {
	var zero T

	if i.err != nil {
		return zero, i.err
	}

	switch len(i.names) {
	case 0:
		return zero, ErrUnsatisfied(i.key)
	case 1:
		return i.get(i.names[0])
	default:
		return zero, ErrAmbiguous(i.key, i.names)
	}
}

// MustGet is Get that panics on error. Use only during startup.
func (i Instance[T]) MustGet() T {
	v, err := i.Get()
	if err != nil {
		panic(fmt.Sprintf("failed to select %s: %v", i.key, err))
	}

	return v
}

// All resolves every candidate in registration order.
func (i Instance[T]) All() ([]T, error) {
	if i.err != nil {
		return nil, i.err
	}

	out := make([]T, 0, len(i.names))
	for _, name := range i.names {
		v, err := i.get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, nil
}

// IsUnsatisfied reports whether no bean matches.
func (i Instance[T]) IsUnsatisfied() bool {
	return len(i.names) == 0
}

// IsAmbiguous reports whether more than one bean matches.
func (i Instance[T]) IsAmbiguous() bool {
	return len(i.names) > 1
}

// Candidates returns the names of the matching services.
func (i Instance[T]) Candidates() []string {
	return append([]string(nil), i.names...)
}

func (i Instance[T]) get(name string) (T, error) {
	var zero T

	instance, err := i.resolve(name)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, ErrTypeMismatch(name, instance)
	}

	return typed, nil
}
