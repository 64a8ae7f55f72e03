package berth

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/xraph/go-utils/log"
	"go.uber.org/multierr"
)

// LoggerServiceName is the name the bootstrap logger is registered under.
const LoggerServiceName = "logger"

// Module declares managed objects on a container during bootstrap.
type Module func(c Container) error

// InitOption configures an Initializer.
type InitOption func(*Initializer)

// Initializer builds and validates a container.
type Initializer struct {
	modules    []Module
	logger     Logger
	middleware []Middleware
	eager      bool
}

// NewInitializer creates an initializer.
func NewInitializer(opts ...InitOption) *Initializer {
	i := &Initializer{}
	for _, opt := range opts {
		opt(i)
	}

	return i
}

// WithModules adds modules, run in order during Initialize.
func WithModules(modules ...Module) InitOption {
	return func(i *Initializer) {
		i.modules = append(i.modules, modules...)
	}
}

// WithLogger sets the container logger. It is also registered as a
// singleton bean named "logger" satisfying Logger (and log.Logger when it
// implements it).
func WithLogger(logger Logger) InitOption {
	return func(i *Initializer) {
		i.logger = logger
	}
}

// WithMiddleware installs middleware before any module runs.
func WithMiddleware(middleware ...Middleware) InitOption {
	return func(i *Initializer) {
		i.middleware = append(i.middleware, middleware...)
	}
}

// WithEagerStart resolves every singleton during Initialize.
func WithEagerStart() InitOption {
	return func(i *Initializer) {
		i.eager = true
	}
}

// AddModules appends modules after construction.
func (i *Initializer) AddModules(modules ...Module) *Initializer {
	i.modules = append(i.modules, modules...)
	return i
}

// Initialize builds the container, runs the modules and validates the result.
// On failure the partially built container is closed and a bootstrap error
// is returned.
func (i *Initializer) Initialize(ctx context.Context) (Container, error) {
	logger := i.logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	c := newContainer(logger)

	for _, mw := range i.middleware {
		c.Use(mw)
	}

	fail := func(phase string, cause error) (Container, error) {
		_ = c.Close(ctx)
		logger.Error("container bootstrap failed", log.String("phase", phase), log.Error(cause))

		return nil, ErrBootstrapFailed(phase, cause)
	}

	if err := c.provideLogger(logger); err != nil {
		return fail("logger", err)
	}

	for n, module := range i.modules {
		if err := module(c); err != nil {
			return fail(fmt.Sprintf("module %d", n), err)
		}
	}

	if err := c.validate(); err != nil {
		return fail("validation", err)
	}

	if i.eager {
		if err := c.Start(ctx); err != nil {
			return fail("start", err)
		}
	}

	logger.Info("container initialized",
		log.Int("services", len(c.Services())),
		log.Int("modules", len(i.modules)),
	)

	return c, nil
}

// Run initializes a container, passes it to body and always closes it, also
// when body fails or panics. The body error and the close error are combined.
func Run(ctx context.Context, initializer *Initializer, body func(ctx context.Context, c Container) error) (err error) {
	c, err := initializer.Initialize(ctx)
	if err != nil {
		return err
	}

	defer func() {
		err = multierr.Append(err, c.Close(ctx))
	}()

	return body(ctx, c)
}

func (c *containerImpl) provideLogger(logger Logger) error {
	if err := c.Register(LoggerServiceName, func(Container) (any, error) {
		return logger, nil
	}, Singleton()); err != nil {
		return err
	}

	if err := c.beans.add(payloadType[Logger](), "", LoggerServiceName); err != nil {
		return err
	}

	if _, ok := logger.(log.Logger); ok {
		return c.beans.add(payloadType[log.Logger](), "", LoggerServiceName)
	}

	return nil
}

// validate checks declared dependencies, typed injection points and cycles.
// Typed dependencies become graph edges so Start and Close order them.
func (c *containerImpl) validate() error {
	var errs error

	missing := c.graph.Missing()
	owners := make([]string, 0, len(missing))
	for owner := range missing {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	for _, owner := range owners {
		errs = multierr.Append(errs, fmt.Errorf("%s depends on unregistered %s",
			owner, strings.Join(missing[owner], ", ")))
	}

	edges := make(map[string][]string)

	for _, p := range c.beans.injectionPoints() {
		names := c.beans.candidates(p.typ, p.quals)
		key := describe(p.typ, p.quals)

		switch len(names) {
		case 0:
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", p.owner, ErrUnsatisfied(key)))
		case 1:
			if c.Has(p.owner) {
				edges[p.owner] = append(edges[p.owner], names[0])
			}
		default:
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", p.owner, ErrAmbiguous(key, names)))
		}
	}

	if errs != nil {
		return errs
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	graph := NewDependencyGraph()
	for _, name := range c.order {
		deps := append(append([]string(nil), c.services[name].dependencies...), edges[name]...)
		graph.AddNode(name, deps)
	}

	if _, err := graph.TopologicalSort(); err != nil {
		return err
	}

	c.graph = graph

	return nil
}
