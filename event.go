package berth

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/xraph/go-utils/log"
	"go.uber.org/multierr"
)

// ErrEventUnbound is returned by Fire on an Event that no container produced.
var ErrEventUnbound = errors.New("event is not bound to a container")

// Event fires payloads of type T to the observers registered on a container.
// Take it as an *Event[T] constructor parameter or obtain it with EventOf.
type Event[T any] struct {
	bus *eventBus
}

// eventPort lets the container bind any *Event[T] without knowing T.
type eventPort interface {
	bind(bus *eventBus)
}

func (e *Event[T]) bind(bus *eventBus) {
	e.bus = bus
}

// Fire delivers payload synchronously to every observer of T, in
// registration order, and returns once all of them have returned. With no
// observers it does nothing. Observer errors do not stop delivery.
func (e *Event[T]) Fire(ctx context.Context, payload T) error {
	if e == nil || e.bus == nil {
		return ErrEventUnbound
	}

	return e.bus.fire(ctx, payloadType[T](), payload)
}

// EventOf returns the event for payload type T bound to c.
func EventOf[T any](c Container) *Event[T] {
	ev := &Event[T]{}
	if impl, ok := implOf(c); ok {
		ev.bind(impl.bus)
	}

	return ev
}

// Observer receives payloads of type T.
type Observer[T any] interface {
	Notify(ctx context.Context, payload T) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc[T any] func(ctx context.Context, payload T) error

// Notify implements Observer.
func (f ObserverFunc[T]) Notify(ctx context.Context, payload T) error {
	return f(ctx, payload)
}

// Observe registers fn as an observer of T under name.
func Observe[T any](c Container, name string, fn ObserverFunc[T]) error {
	if fn == nil {
		return fmt.Errorf("observer %q: nil function", name)
	}

	impl, ok := implOf(c)
	if !ok {
		return fmt.Errorf("Observe requires a berth container, got %T", c)
	}

	return impl.bus.subscribe(payloadType[T](), name, func(ctx context.Context, payload any) error {
		p, _ := payload.(T)
		return fn(ctx, p)
	})
}

// ObserveBean registers the bean O as an observer of T. The bean is selected
// on every notification, so a transient observer is a fresh instance each time.
func ObserveBean[T any, O Observer[T]](c Container, qualifiers ...Qualifier) error {
	impl, ok := implOf(c)
	if !ok {
		return fmt.Errorf("ObserveBean requires a berth container, got %T", c)
	}

	beanType := payloadType[O]()
	name := describe(beanType, qualifiers)

	if err := impl.bus.subscribe(payloadType[T](), name, func(ctx context.Context, payload any) error {
		observer, err := Select[O](impl, qualifiers...).Get()
		if err != nil {
			return err
		}

		p, _ := payload.(T)
		return observer.Notify(ctx, p)
	}); err != nil {
		return err
	}

	impl.beans.require("observer "+name, beanType, qualifiers)

	return nil
}

// Observers returns the names of the observers of T in delivery order.
func Observers[T any](c Container) []string {
	impl, ok := implOf(c)
	if !ok {
		return nil
	}

	return impl.bus.names(payloadType[T]())
}

func payloadType[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

type observerEntry struct {
	name   string
	notify func(ctx context.Context, payload any) error
}

// eventBus keeps observer lists keyed by exact payload type.
type eventBus struct {
	owner     *containerImpl
	observers map[reflect.Type][]observerEntry
	closed    bool
	mu        sync.RWMutex
}

func newEventBus(owner *containerImpl) *eventBus {
	return &eventBus{
		owner:     owner,
		observers: make(map[reflect.Type][]observerEntry),
	}
}

func (b *eventBus) subscribe(typ reflect.Type, name string, notify func(context.Context, any) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrContainerClosed
	}

	for _, o := range b.observers[typ] {
		if o.name == name {
			return fmt.Errorf("observer %q already registered for %s", name, typ)
		}
	}

	b.observers[typ] = append(b.observers[typ], observerEntry{name: name, notify: notify})

	b.owner.logger.Debug("observer registered",
		log.String("event", typ.String()),
		log.String("observer", name),
	)

	return nil
}

func (b *eventBus) names(typ reflect.Type) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.observers[typ]))
	for _, o := range b.observers[typ] {
		names = append(names, o.name)
	}

	return names
}

// fire snapshots the observers and notifies them without holding the lock,
// so an observer may itself fire events or register observers.
func (b *eventBus) fire(ctx context.Context, typ reflect.Type, payload any) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrContainerClosed
	}
	observers := append([]observerEntry(nil), b.observers[typ]...)
	b.mu.RUnlock()

	var errs error

	for _, o := range observers {
		if err := o.notify(ctx, payload); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("observer %s: %w", o.name, err))
		}
	}

	var result error
	if errs != nil {
		result = ErrObserverFailed(typ.String(), errs)
	}

	b.owner.middleware.afterFire(ctx, typ.String(), len(observers), result)

	return result
}

func (b *eventBus) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.observers = make(map[reflect.Type][]observerEntry)
	b.closed = true
}
