package berth

import (
	"errors"
	"fmt"
	"reflect"
)

// BeanOption configures how a bean is registered.
type BeanOption interface {
	applyBean(*beanConfig)
}

type beanConfig struct {
	name      string         // qualifier
	asTypes   []reflect.Type // additional capability types
	lifecycle string
	groups    []string
	metadata  map[string]string
	err       error
}

type beanOptionFunc func(*beanConfig)

func (f beanOptionFunc) applyBean(c *beanConfig) { f(c) }

func newBeanConfig(opts []BeanOption) *beanConfig {
	cfg := &beanConfig{
		lifecycle: LifecycleTransient,
		metadata:  make(map[string]string),
	}
	for _, opt := range opts {
		opt.applyBean(cfg)
	}

	return cfg
}

// WithName qualifies the bean. Lookups must then pass Named(name).
//
// Example:
//
//	ProvideConstructor(c, NewPrimaryDB, WithName("primary"))
//	db, err := Select[*DB](c, Named("primary")).Get()
func WithName(name string) BeanOption {
	return beanOptionFunc(func(c *beanConfig) {
		c.name = name
	})
}

// As makes the bean satisfy lookups for additional interface types.
// Pass a pointer to the interface:
//
//	ProvideConstructor(c, NewCar, As(new(Vehicle)))
func As(ifaces ...any) BeanOption {
	return beanOptionFunc(func(c *beanConfig) {
		for _, iface := range ifaces {
			t := reflect.TypeOf(iface)
			if t == nil {
				c.err = errors.New("As needs a typed pointer such as new(Iface), got nil")
				continue
			}
			if t.Kind() == reflect.Ptr {
				t = t.Elem()
			}
			c.asTypes = append(c.asTypes, t)
		}
	})
}

// AsSingleton shares one instance across every lookup.
func AsSingleton() BeanOption {
	return beanOptionFunc(func(c *beanConfig) {
		c.lifecycle = LifecycleSingleton
	})
}

// AsTransient creates a new instance per lookup. This is the default.
func AsTransient() BeanOption {
	return beanOptionFunc(func(c *beanConfig) {
		c.lifecycle = LifecycleTransient
	})
}

// AsScoped makes the bean live for the duration of a Scope.
func AsScoped() BeanOption {
	return beanOptionFunc(func(c *beanConfig) {
		c.lifecycle = LifecycleScoped
	})
}

// InGroup adds the bean's service to a named group.
func InGroup(group string) BeanOption {
	return beanOptionFunc(func(c *beanConfig) {
		c.groups = append(c.groups, group)
	})
}

// WithBeanMetadata attaches diagnostic metadata to the bean's service.
func WithBeanMetadata(key, value string) BeanOption {
	return beanOptionFunc(func(c *beanConfig) {
		c.metadata[key] = value
	})
}

// registerOptions translates the bean config for Container.Register.
func (c *beanConfig) registerOptions(primary reflect.Type) []RegisterOption {
	opts := make([]RegisterOption, 0, 4+len(c.groups)+len(c.metadata))

	switch c.lifecycle {
	case LifecycleSingleton:
		opts = append(opts, Singleton())
	case LifecycleScoped:
		opts = append(opts, Scoped())
	default:
		opts = append(opts, Transient())
	}

	for _, g := range c.groups {
		opts = append(opts, WithGroup(g))
	}

	opts = append(opts, WithMetadata("bean.type", primary.String()))
	if c.name != "" {
		opts = append(opts, WithMetadata("bean.name", c.name))
	}

	for k, v := range c.metadata {
		opts = append(opts, WithMetadata(k, v))
	}

	return opts
}

var (
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
	containerType = reflect.TypeOf((*Container)(nil)).Elem()
	eventPortType = reflect.TypeOf((*eventPort)(nil)).Elem()
)

// constructorInfo holds analyzed constructor metadata.
type constructorInfo struct {
	fn       reflect.Value
	fnType   reflect.Type
	params   []paramInfo
	result   reflect.Type
	hasError bool
}

type paramKind int

const (
	paramBean      paramKind = iota // resolved by type from the bean registry
	paramContainer                  // the container itself
	paramEvent                      // an *Event[T] bound to the container's bus
)

type paramInfo struct {
	typ  reflect.Type
	kind paramKind
}

// analyzeConstructor inspects a constructor of the form
// func(deps...) T or func(deps...) (T, error).
func analyzeConstructor(constructor any) (*constructorInfo, error) {
	if constructor == nil {
		return nil, ErrInvalidFactory
	}

	fnValue := reflect.ValueOf(constructor)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, errors.New("constructor must be a function")
	}

	if fnType.IsVariadic() {
		return nil, errors.New("constructor must not be variadic")
	}

	info := &constructorInfo{fn: fnValue, fnType: fnType}

	for i := 0; i < fnType.NumIn(); i++ {
		info.params = append(info.params, analyzeParam(fnType.In(i)))
	}

	switch fnType.NumOut() {
	case 1:
		info.result = fnType.Out(0)
	case 2:
		if fnType.Out(1) != errorType {
			return nil, errors.New("second return value must be error")
		}
		info.result = fnType.Out(0)
		info.hasError = true
	default:
		return nil, fmt.Errorf("constructor must return T or (T, error), got %d results", fnType.NumOut())
	}

	if info.result == errorType {
		return nil, errors.New("constructor must return a value, not only an error")
	}

	return info, nil
}

func analyzeParam(t reflect.Type) paramInfo {
	switch {
	case t == containerType:
		return paramInfo{typ: t, kind: paramContainer}
	case t.Kind() == reflect.Ptr && t.Implements(eventPortType):
		return paramInfo{typ: t, kind: paramEvent}
	default:
		return paramInfo{typ: t, kind: paramBean}
	}
}
