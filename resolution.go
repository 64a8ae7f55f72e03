package berth

import "slices"

// resolution is the Container handed to factories. It carries the services
// under construction on the current call path and, inside a scope, the scope
// that scoped dependencies resolve from. It is only valid for the duration
// of the factory call.
type resolution struct {
	*containerImpl
	scope    *scope
	building []string
}

func (c *containerImpl) root() *resolution {
	return &resolution{containerImpl: c}
}

// Resolve routes through the scope when there is one so scoped dependencies
// share the scope's instances.
func (r *resolution) Resolve(name string) (any, error) {
	if r.scope != nil {
		return r.scope.resolve(r, name)
	}

	return r.containerImpl.resolve(r, name)
}

// enter returns a resolution with name pushed on the construction path.
func (r *resolution) enter(name string) *resolution {
	return &resolution{
		containerImpl: r.containerImpl,
		scope:         r.scope,
		building:      append(slices.Clone(r.building), name),
	}
}

// unscoped drops the scope. Singletons outlive every scope and must not
// capture scoped instances.
func (r *resolution) unscoped() *resolution {
	return &resolution{containerImpl: r.containerImpl, building: r.building}
}

// cycle reports the path back to name if name is already under construction.
func (r *resolution) cycle(name string) error {
	if !slices.Contains(r.building, name) {
		return nil
	}

	return ErrCircularDependency(append(slices.Clone(r.building), name))
}

// resolutionOf recovers the call path from the Container a factory received.
func (c *containerImpl) resolutionOf(container Container) *resolution {
	if r, ok := container.(*resolution); ok && r.containerImpl == c {
		return r
	}

	return c.root()
}

// implOf unwraps the berth container behind c, including the one handed to
// factories.
func implOf(c Container) (*containerImpl, bool) {
	switch v := c.(type) {
	case *containerImpl:
		return v, true
	case *resolution:
		return v.containerImpl, true
	default:
		return nil, false
	}
}
