package berth

import (
	"context"
	"sync"

	"github.com/xraph/go-utils/di"
	"go.uber.org/multierr"
)

// scope implements Scope.
type scope struct {
	parent    *containerImpl
	instances map[string]any
	order     []string // creation order, disposed in reverse
	mu        sync.Mutex
	ended     bool
}

func newScope(parent *containerImpl) *scope {
	return &scope{
		parent:    parent,
		instances: make(map[string]any),
	}
}

// Resolve returns a service by name from this scope.
func (s *scope) Resolve(name string) (any, error) {
	return s.resolve(&resolution{containerImpl: s.parent, scope: s}, name)
}

// resolve builds scoped services in this scope and delegates everything else
// to the parent. s.mu is not held while a factory runs, so a scoped
// constructor may depend on other scoped services.
func (s *scope) resolve(res *resolution, name string) (any, error) {
	s.mu.Lock()
	ended := s.ended
	instance, cached := s.instances[name]
	s.mu.Unlock()

	if ended {
		return nil, ErrScopeEnded
	}

	reg, exists := s.parent.registration(name)
	if !exists {
		return nil, ErrServiceNotFound(name)
	}

	if !reg.scoped() {
		return s.parent.resolve(res, name)
	}

	if cached {
		return instance, nil
	}

	if s.parent.isClosed() {
		return nil, ErrContainerClosed
	}

	if err := res.cycle(name); err != nil {
		return nil, err
	}

	instance, err := reg.factory(res.enter(name))
	if err != nil {
		return nil, NewServiceError(name, "resolve", err)
	}

	if err := s.parent.autoStart(context.Background(), name, instance); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		release(instance)
		return nil, ErrScopeEnded
	}

	// another caller built it first; keep theirs
	if existing, ok := s.instances[name]; ok {
		release(instance)
		return existing, nil
	}

	s.instances[name] = instance
	s.order = append(s.order, name)

	return instance, nil
}

func release(instance any) {
	if disposable, ok := instance.(di.Disposable); ok {
		_ = disposable.Dispose()
	}
}

// End disposes scoped instances in reverse creation order.
func (s *scope) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return ErrScopeEnded
	}

	var err error

	for i := len(s.order) - 1; i >= 0; i-- {
		name := s.order[i]
		if disposable, ok := s.instances[name].(di.Disposable); ok {
			if dErr := disposable.Dispose(); dErr != nil {
				err = multierr.Append(err, NewServiceError(name, "dispose", dErr))
			}
		}
	}

	s.instances = nil
	s.order = nil
	s.ended = true

	return err
}
