package berth

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/go-utils/di"
	"github.com/xraph/go-utils/log"
	"go.uber.org/multierr"
)

// containerImpl implements Container.
type containerImpl struct {
	services    map[string]*serviceRegistration
	order       []string // registration order
	graph       *DependencyGraph
	middleware  *middlewareChain
	beans       *beanRegistry
	bus         *eventBus
	logger      Logger
	disposables []trackedInstance // transient instances released on Close
	started     bool
	closed      bool
	closeOnce   sync.Once
	mu          sync.RWMutex
}

// serviceRegistration holds service registration details.
type serviceRegistration struct {
	name         string
	factory      Factory
	lifecycle    string
	dependencies []string
	groups       []string
	metadata     map[string]string
	instance     any
	started      bool
	mu           sync.RWMutex
}

type trackedInstance struct {
	name     string
	instance di.Disposable
}

func (r *serviceRegistration) singleton() bool { return r.lifecycle == LifecycleSingleton }
func (r *serviceRegistration) scoped() bool    { return r.lifecycle == LifecycleScoped }

func newContainer(logger Logger) *containerImpl {
	c := &containerImpl{
		services:   make(map[string]*serviceRegistration),
		graph:      NewDependencyGraph(),
		middleware: newMiddlewareChain(),
		beans:      newBeanRegistry(),
		logger:     logger,
	}
	c.bus = newEventBus(c)

	return c
}

// Register adds a service factory to the container.
// Without a lifecycle option the service is transient.
func (c *containerImpl) Register(name string, factory Factory, opts ...RegisterOption) error {
	merged := mergeOptions(append([]RegisterOption{Transient()}, opts...))

	if name == "" {
		return fmt.Errorf("service name cannot be empty")
	}

	if factory == nil {
		return ErrInvalidFactory
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrContainerClosed
	}

	if _, exists := c.services[name]; exists {
		return ErrServiceAlreadyExists(name)
	}

	lifecycle := merged.Lifecycle
	if lifecycle != LifecycleSingleton && lifecycle != LifecycleScoped {
		lifecycle = LifecycleTransient
	}

	deps := merged.GetAllDepNames()

	c.services[name] = &serviceRegistration{
		name:         name,
		factory:      factory,
		lifecycle:    lifecycle,
		dependencies: deps,
		groups:       merged.Groups,
		metadata:     merged.Metadata,
	}
	c.order = append(c.order, name)
	c.graph.AddNode(name, deps)

	c.logger.Debug("service registered",
		log.String("service", name),
		log.String("lifecycle", lifecycle),
	)

	return nil
}

// Resolve returns a service by name.
// Singletons that implement di.Service are started when first resolved.
func (c *containerImpl) Resolve(name string) (any, error) {
	return c.resolve(c.root(), name)
}

func (c *containerImpl) resolve(res *resolution, name string) (any, error) {
	ctx := context.Background()

	if c.isClosed() {
		return nil, ErrContainerClosed
	}

	if err := c.middleware.beforeResolve(ctx, name); err != nil {
		return nil, err
	}

	service, err := c.resolveInternal(ctx, res, name)

	if mwErr := c.middleware.afterResolve(ctx, name, service, err); mwErr != nil {
		return nil, mwErr
	}

	return service, err
}

func (c *containerImpl) registration(name string) (*serviceRegistration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	reg, ok := c.services[name]
	return reg, ok
}

// resolveInternal performs the actual service resolution without middleware.
func (c *containerImpl) resolveInternal(ctx context.Context, res *resolution, name string) (any, error) {
	reg, exists := c.registration(name)
	if !exists {
		return nil, ErrServiceNotFound(name)
	}

	// checked before any lock so a self-dependency fails instead of blocking
	if err := res.cycle(name); err != nil {
		return nil, err
	}

	switch {
	case reg.singleton():
		return c.resolveSingleton(ctx, res.enter(name).unscoped(), reg)
	case reg.scoped():
		return nil, NewServiceError(name, "resolve", fmt.Errorf("scoped service must be resolved from a scope"))
	}

	instance, err := reg.factory(res.enter(name))
	if err != nil {
		return nil, NewServiceError(name, "resolve", err)
	}

	if err := c.autoStart(ctx, name, instance); err != nil {
		return nil, err
	}

	c.track(name, instance)

	return instance, nil
}

func (c *containerImpl) resolveSingleton(ctx context.Context, res *resolution, reg *serviceRegistration) (any, error) {
	reg.mu.RLock()
	if reg.instance != nil && reg.started {
		instance := reg.instance
		reg.mu.RUnlock()

		return instance, nil
	}
	reg.mu.RUnlock()

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.instance != nil && reg.started {
		return reg.instance, nil
	}

	if reg.instance == nil {
		// factory may resolve other services; c.mu is not held here
		instance, err := reg.factory(res)
		if err != nil {
			return nil, NewServiceError(reg.name, "resolve", err)
		}

		reg.instance = instance
	}

	if err := c.autoStart(ctx, reg.name, reg.instance); err != nil {
		return nil, err
	}

	reg.started = true

	return reg.instance, nil
}

// autoStart starts instance if it implements di.Service.
func (c *containerImpl) autoStart(ctx context.Context, name string, instance any) error {
	svc, ok := instance.(di.Service)
	if !ok {
		return nil
	}

	if err := c.middleware.beforeStart(ctx, name); err != nil {
		return err
	}

	startErr := svc.Start(ctx)

	if mwErr := c.middleware.afterStart(ctx, name, startErr); mwErr != nil {
		return mwErr
	}

	if startErr != nil {
		return NewServiceError(name, "auto_start", startErr)
	}

	return nil
}

// track remembers a transient instance that must be disposed on Close.
func (c *containerImpl) track(name string, instance any) {
	disposable, ok := instance.(di.Disposable)
	if !ok {
		return
	}

	c.mu.Lock()
	c.disposables = append(c.disposables, trackedInstance{name: name, instance: disposable})
	c.mu.Unlock()
}

// Use adds middleware to the container.
// Middleware is called in the order they are added.
func (c *containerImpl) Use(middleware Middleware) {
	c.middleware.add(middleware)
}

// Has checks if a service is registered.
func (c *containerImpl) Has(name string) bool {
	_, exists := c.registration(name)
	return exists
}

// IsStarted checks if a service has been started.
func (c *containerImpl) IsStarted(name string) bool {
	reg, exists := c.registration(name)
	if !exists {
		return false
	}

	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return reg.started
}

// Services returns all registered service names.
func (c *containerImpl) Services() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]string(nil), c.order...)
}

// BeginScope creates a new scope for request-scoped services.
func (c *containerImpl) BeginScope() Scope {
	return newScope(c)
}

// Start resolves every singleton in dependency order. Idempotent.
func (c *containerImpl) Start(ctx context.Context) error {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return ErrContainerClosed
	}

	if c.started {
		c.mu.Unlock()
		return nil
	}

	order, err := c.graph.TopologicalSort()
	if err != nil {
		c.mu.Unlock()
		return err
	}

	c.mu.Unlock()

	for _, name := range order {
		if err := c.startService(name); err != nil {
			// roll back what already started
			_ = c.stopServices(ctx, order)

			return NewServiceError(name, "start", err)
		}
	}

	c.mu.Lock()
	c.started = true
	c.mu.Unlock()

	c.logger.Debug("container started", log.Int("services", len(order)))

	return nil
}

// Stop shuts down started singletons in reverse dependency order.
func (c *containerImpl) Stop(ctx context.Context) error {
	c.mu.Lock()

	if !c.started {
		c.mu.Unlock()
		return nil
	}

	order, err := c.graph.TopologicalSort()
	if err != nil {
		c.mu.Unlock()
		return err
	}

	c.mu.Unlock()

	err = c.stopServices(ctx, order)

	c.mu.Lock()
	c.started = false
	c.mu.Unlock()

	return err
}

// Health checks all services.
func (c *containerImpl) Health(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, name := range c.order {
		reg := c.services[name]

		reg.mu.RLock()
		instance := reg.instance
		reg.mu.RUnlock()

		if !reg.singleton() || instance == nil {
			continue
		}

		if checker, ok := instance.(di.HealthChecker); ok {
			if err := checker.Health(ctx); err != nil {
				return NewServiceError(name, "health", err)
			}
		}
	}

	return nil
}

// Inspect returns diagnostic information about a service.
func (c *containerImpl) Inspect(name string) ServiceInfo {
	reg, exists := c.registration(name)
	if !exists {
		return ServiceInfo{Name: name}
	}

	reg.mu.RLock()
	defer reg.mu.RUnlock()

	typeName := "unknown"
	if reg.instance != nil {
		typeName = fmt.Sprintf("%T", reg.instance)
	}

	healthy := false
	if checker, ok := reg.instance.(di.HealthChecker); ok {
		healthy = checker.Health(context.Background()) == nil
	}

	metadata := make(map[string]string, len(reg.metadata))
	for k, v := range reg.metadata {
		metadata[k] = v
	}

	return ServiceInfo{
		Name:         name,
		Type:         typeName,
		Lifecycle:    reg.lifecycle,
		Dependencies: reg.dependencies,
		Groups:       reg.groups,
		Started:      reg.started,
		Healthy:      healthy,
		Metadata:     metadata,
	}
}

// Close stops and disposes everything the container manages. Only the first
// call does any work; later calls return nil.
func (c *containerImpl) Close(ctx context.Context) error {
	var err error

	c.closeOnce.Do(func() {
		err = c.teardown(ctx)
	})

	return err
}

func (c *containerImpl) teardown(ctx context.Context) error {
	c.mu.Lock()
	order, sortErr := c.graph.TopologicalSort()
	if sortErr != nil {
		order = append([]string(nil), c.order...)
	}
	tracked := c.disposables
	c.disposables = nil
	c.closed = true
	c.started = false
	c.mu.Unlock()

	err := c.stopServices(ctx, order)

	for i := len(order) - 1; i >= 0; i-- {
		reg, _ := c.registration(order[i])

		reg.mu.Lock()
		instance := reg.instance
		reg.instance = nil
		reg.started = false
		reg.mu.Unlock()

		if disposable, ok := instance.(di.Disposable); ok {
			if dErr := disposable.Dispose(); dErr != nil {
				err = multierr.Append(err, NewServiceError(reg.name, "dispose", dErr))
			}
		}
	}

	for i := len(tracked) - 1; i >= 0; i-- {
		if dErr := tracked[i].instance.Dispose(); dErr != nil {
			err = multierr.Append(err, NewServiceError(tracked[i].name, "dispose", dErr))
		}
	}

	c.bus.clear()

	c.logger.Debug("container closed",
		log.Int("services", len(order)),
		log.Int("transient_disposed", len(tracked)),
	)

	return err
}

// startService resolves a singleton, which starts it. Other lifecycles are skipped.
func (c *containerImpl) startService(name string) error {
	reg, exists := c.registration(name)
	if !exists || !reg.singleton() {
		return nil
	}

	if c.IsStarted(name) {
		return nil
	}

	_, err := c.Resolve(name)
	return err
}

// stopService stops a single service.
func (c *containerImpl) stopService(ctx context.Context, name string) error {
	reg, exists := c.registration(name)
	if !exists {
		return nil
	}

	reg.mu.RLock()
	instance := reg.instance
	started := reg.started
	reg.mu.RUnlock()

	if !started || instance == nil {
		return nil
	}

	if svc, ok := instance.(di.Service); ok {
		if err := svc.Stop(ctx); err != nil {
			return err
		}
	}

	reg.mu.Lock()
	reg.started = false
	reg.mu.Unlock()

	return nil
}

// stopServices stops names in reverse order, collecting every failure.
func (c *containerImpl) stopServices(ctx context.Context, names []string) error {
	var err error

	for i := len(names) - 1; i >= 0; i-- {
		if stopErr := c.stopService(ctx, names[i]); stopErr != nil {
			err = multierr.Append(err, NewServiceError(names[i], "stop", stopErr))
		}
	}

	return err
}

func (c *containerImpl) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.closed
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", v)
}
