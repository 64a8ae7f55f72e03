package berth

import (
	"context"
	"sync"
	"time"

	"github.com/xraph/go-utils/log"
)

// Middleware provides hooks for intercepting container operations.
type Middleware interface {
	// BeforeResolve is called before resolving a service.
	// Return error to abort resolution.
	BeforeResolve(ctx context.Context, name string) error

	// AfterResolve is called after resolving a service.
	// Called even if resolution failed (service and err may both be set).
	AfterResolve(ctx context.Context, name string, service any, err error) error

	// BeforeStart is called before starting a service.
	// Return error to abort start.
	BeforeStart(ctx context.Context, name string) error

	// AfterStart is called after starting a service.
	// Called even if start failed.
	AfterStart(ctx context.Context, name string, err error) error
}

// EventHook is implemented by middleware that wants to see event deliveries.
type EventHook interface {
	AfterFire(ctx context.Context, eventType string, observers int, err error)
}

// middlewareChain manages multiple middleware.
type middlewareChain struct {
	middleware []Middleware
	mu         sync.RWMutex
}

func newMiddlewareChain() *middlewareChain {
	return &middlewareChain{
		middleware: make([]Middleware, 0),
	}
}

func (m *middlewareChain) add(middleware Middleware) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.middleware = append(m.middleware, middleware)
}

func (m *middlewareChain) snapshot() []Middleware {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]Middleware(nil), m.middleware...)
}

func (m *middlewareChain) beforeResolve(ctx context.Context, name string) error {
	for _, mw := range m.snapshot() {
		if err := mw.BeforeResolve(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (m *middlewareChain) afterResolve(ctx context.Context, name string, service any, err error) error {
	for _, mw := range m.snapshot() {
		if mwErr := mw.AfterResolve(ctx, name, service, err); mwErr != nil {
			return mwErr
		}
	}
	return nil
}

func (m *middlewareChain) beforeStart(ctx context.Context, name string) error {
	for _, mw := range m.snapshot() {
		if err := mw.BeforeStart(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (m *middlewareChain) afterStart(ctx context.Context, name string, err error) error {
	for _, mw := range m.snapshot() {
		if mwErr := mw.AfterStart(ctx, name, err); mwErr != nil {
			return mwErr
		}
	}
	return nil
}

func (m *middlewareChain) afterFire(ctx context.Context, eventType string, observers int, err error) {
	for _, mw := range m.snapshot() {
		if hook, ok := mw.(EventHook); ok {
			hook.AfterFire(ctx, eventType, observers, err)
		}
	}
}

// FuncMiddleware wraps functions as Middleware.
type FuncMiddleware struct {
	BeforeResolveFunc func(ctx context.Context, name string) error
	AfterResolveFunc  func(ctx context.Context, name string, service any, err error) error
	BeforeStartFunc   func(ctx context.Context, name string) error
	AfterStartFunc    func(ctx context.Context, name string, err error) error
	AfterFireFunc     func(ctx context.Context, eventType string, observers int, err error)
}

// BeforeResolve implements Middleware.
func (f *FuncMiddleware) BeforeResolve(ctx context.Context, name string) error {
	if f.BeforeResolveFunc != nil {
		return f.BeforeResolveFunc(ctx, name)
	}
	return nil
}

// AfterResolve implements Middleware.
func (f *FuncMiddleware) AfterResolve(ctx context.Context, name string, service any, err error) error {
	if f.AfterResolveFunc != nil {
		return f.AfterResolveFunc(ctx, name, service, err)
	}
	return nil
}

// BeforeStart implements Middleware.
func (f *FuncMiddleware) BeforeStart(ctx context.Context, name string) error {
	if f.BeforeStartFunc != nil {
		return f.BeforeStartFunc(ctx, name)
	}
	return nil
}

// AfterStart implements Middleware.
func (f *FuncMiddleware) AfterStart(ctx context.Context, name string, err error) error {
	if f.AfterStartFunc != nil {
		return f.AfterStartFunc(ctx, name, err)
	}
	return nil
}

// AfterFire implements EventHook.
func (f *FuncMiddleware) AfterFire(ctx context.Context, eventType string, observers int, err error) {
	if f.AfterFireFunc != nil {
		f.AfterFireFunc(ctx, eventType, observers, err)
	}
}

// LoggingMiddleware reports resolutions and event deliveries at debug level.
type LoggingMiddleware struct {
	logger  Logger
	started sync.Map // service name -> time.Time
}

// NewLoggingMiddleware creates a middleware writing to logger.
func NewLoggingMiddleware(logger Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// BeforeResolve implements Middleware.
func (l *LoggingMiddleware) BeforeResolve(_ context.Context, name string) error {
	l.started.Store(name, time.Now())
	return nil
}

// AfterResolve implements Middleware.
func (l *LoggingMiddleware) AfterResolve(_ context.Context, name string, service any, err error) error {
	var elapsed time.Duration
	if v, ok := l.started.LoadAndDelete(name); ok {
		elapsed = time.Since(v.(time.Time))
	}

	if err != nil {
		l.logger.Warn("resolve failed",
			log.String("service", name),
			log.Error(err),
		)
		return nil
	}

	l.logger.Debug("resolved",
		log.String("service", name),
		log.String("type", typeName(service)),
		log.Duration("elapsed", elapsed),
	)
	return nil
}

// BeforeStart implements Middleware.
func (l *LoggingMiddleware) BeforeStart(_ context.Context, _ string) error {
	return nil
}

// AfterStart implements Middleware.
func (l *LoggingMiddleware) AfterStart(_ context.Context, name string, err error) error {
	if err != nil {
		l.logger.Error("service failed to start", log.String("service", name), log.Error(err))
		return nil
	}

	l.logger.Debug("service started", log.String("service", name))
	return nil
}

// AfterFire implements EventHook.
func (l *LoggingMiddleware) AfterFire(_ context.Context, eventType string, observers int, err error) {
	if err != nil {
		l.logger.Warn("event delivery failed",
			log.String("event", eventType),
			log.Int("observers", observers),
			log.Error(err),
		)
		return
	}

	l.logger.Debug("event delivered",
		log.String("event", eventType),
		log.Int("observers", observers),
	)
}
