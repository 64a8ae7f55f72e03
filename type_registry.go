package berth

import (
	"fmt"
	"reflect"
	"sync"
)

// typeKey identifies a bean by Go type and qualifier name.
type typeKey struct {
	typ  reflect.Type
	name string // empty for the default qualifier
}

// String returns a human-readable representation of the type key
func (k typeKey) String() string {
	typeName := "<nil>"
	if k.typ != nil {
		typeName = k.typ.String()
	}
	if k.name == "" {
		return typeName
	}
	return fmt.Sprintf("%s[name=%s]", typeName, k.name)
}

// beanEntry points a type at the named service that produces it.
type beanEntry struct {
	qualifier string
	service   string
}

// injectionPoint is a typed dependency that must have exactly one candidate
// once bootstrap completes.
type injectionPoint struct {
	owner string // service or observer that needs the dependency
	typ   reflect.Type
	quals []Qualifier
}

// beanRegistry indexes named services by the types they satisfy.
type beanRegistry struct {
	index  map[reflect.Type][]beanEntry
	points []injectionPoint
	mu     sync.RWMutex
}

func newBeanRegistry() *beanRegistry {
	return &beanRegistry{
		index: make(map[reflect.Type][]beanEntry),
	}
}

// add indexes service under typ. The same service may back several types.
func (r *beanRegistry) add(typ reflect.Type, qualifier, service string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.index[typ] {
		if e.service == service {
			return fmt.Errorf("service %s already indexed for type %s", service, typ)
		}
	}

	r.index[typ] = append(r.index[typ], beanEntry{qualifier: qualifier, service: service})

	return nil
}

// require records an injection point for bootstrap validation.
func (r *beanRegistry) require(owner string, typ reflect.Type, quals []Qualifier) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.points = append(r.points, injectionPoint{owner: owner, typ: typ, quals: quals})
}

func (r *beanRegistry) injectionPoints() []injectionPoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]injectionPoint(nil), r.points...)
}

// candidates returns the services satisfying typ under quals, in registration order.
func (r *beanRegistry) candidates(typ reflect.Type, quals []Qualifier) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string

	for _, e := range r.index[typ] {
		if matchesAll(quals, e.qualifier) {
			names = append(names, e.service)
		}
	}

	return names
}

// describe renders a lookup for error messages.
func describe(typ reflect.Type, quals []Qualifier) string {
	if len(quals) == 0 {
		return typeKey{typ: typ}.String()
	}

	s := typ.String()
	for _, q := range quals {
		s += "@" + q.String()
	}

	return s
}
