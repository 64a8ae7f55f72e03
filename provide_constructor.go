package berth

import (
	"fmt"
	"reflect"
)

// Provide registers a bean built by factory. The bean is indexed under T and
// under every type passed to As.
//
// Example:
//
//	berth.Provide(c, func(c berth.Container) (*Car, error) {
//	    return &Car{}, nil
//	}, berth.As(new(Vehicle)))
func Provide[T any](c Container, factory func(Container) (T, error), opts ...BeanOption) error {
	if factory == nil {
		return ErrInvalidFactory
	}

	impl, ok := implOf(c)
	if !ok {
		return fmt.Errorf("Provide requires a berth container, got %T", c)
	}

	primary := reflect.TypeOf((*T)(nil)).Elem()

	return impl.registerBean(primary, func(c Container) (any, error) {
		return factory(c)
	}, newBeanConfig(opts), nil)
}

// ProvideConstructor registers a constructor with automatic dependency
// resolution. Parameters are resolved by type; a Container parameter receives
// the container and an *Event[T] parameter receives an event bound to the
// container's bus. The first result is the bean; an optional second result
// must be error.
//
// Example:
//
//	func NewJournalist(news *berth.Event[string]) *Journalist {
//	    return &Journalist{event: news}
//	}
//	berth.ProvideConstructor(c, NewJournalist, berth.AsSingleton())
func ProvideConstructor(c Container, constructor any, opts ...BeanOption) error {
	info, err := analyzeConstructor(constructor)
	if err != nil {
		return fmt.Errorf("invalid constructor: %w", err)
	}

	impl, ok := implOf(c)
	if !ok {
		return fmt.Errorf("ProvideConstructor requires a berth container, got %T", c)
	}

	return impl.registerBean(info.result, impl.constructorFactory(info), newBeanConfig(opts), info.params)
}

// registerBean registers the bean's named service and indexes its types.
func (c *containerImpl) registerBean(primary reflect.Type, factory Factory, cfg *beanConfig, params []paramInfo) error {
	if cfg.err != nil {
		return fmt.Errorf("bean %s: %w", primary, cfg.err)
	}

	for _, t := range cfg.asTypes {
		if !primary.AssignableTo(t) {
			return fmt.Errorf("bean %s does not implement %s", primary, t)
		}
	}

	name := typeKey{typ: primary, name: cfg.name}.String()

	if err := c.Register(name, factory, cfg.registerOptions(primary)...); err != nil {
		return err
	}

	types := append([]reflect.Type{primary}, cfg.asTypes...)
	for _, t := range types {
		if err := c.beans.add(t, cfg.name, name); err != nil {
			return err
		}
	}

	for _, p := range params {
		if p.kind == paramBean {
			c.beans.require(name, p.typ, nil)
		}
	}

	return nil
}

// constructorFactory creates a factory that resolves constructor parameters
// along the caller's resolution, so scoped parameters come from the same
// scope and cycles are detected per call path.
func (c *containerImpl) constructorFactory(info *constructorInfo) Factory {
	return func(container Container) (any, error) {
		res := c.resolutionOf(container)
		args := make([]reflect.Value, len(info.params))

		for i, param := range info.params {
			arg, err := c.resolveParam(res, param)
			if err != nil {
				return nil, fmt.Errorf("parameter %d (%s): %w", i, param.typ, err)
			}
			args[i] = arg
		}

		results := info.fn.Call(args)

		if info.hasError {
			if errResult := results[1]; !errResult.IsNil() {
				return nil, errResult.Interface().(error)
			}
		}

		return results[0].Interface(), nil
	}
}

func (c *containerImpl) resolveParam(res *resolution, param paramInfo) (reflect.Value, error) {
	switch param.kind {
	case paramContainer:
		return reflect.ValueOf(Container(c)), nil

	case paramEvent:
		port := reflect.New(param.typ.Elem())
		port.Interface().(eventPort).bind(c.bus)
		return port, nil
	}

	names := c.beans.candidates(param.typ, nil)
	switch len(names) {
	case 0:
		return reflect.Value{}, ErrUnsatisfied(describe(param.typ, nil))
	case 1:
	default:
		return reflect.Value{}, ErrAmbiguous(describe(param.typ, nil), names)
	}

	instance, err := res.Resolve(names[0])
	if err != nil {
		return reflect.Value{}, err
	}

	if instance == nil {
		return reflect.Zero(param.typ), nil
	}

	return reflect.ValueOf(instance), nil
}
