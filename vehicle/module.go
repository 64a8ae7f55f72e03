package vehicle

import (
	"fmt"

	"github.com/xraph/berth"
)

// Scopes accepted by Module.
const (
	ScopeDependent = "dependent"
	ScopeSingleton = "singleton"
)

// Module provides Car as *Car and as Vehicle. ScopeDependent (or "") gives
// every lookup its own car; ScopeSingleton shares one.
func Module(scope string) berth.Module {
	return func(c berth.Container) error {
		opts := []berth.BeanOption{berth.As(new(Vehicle))}

		switch scope {
		case "", ScopeDependent:
			opts = append(opts, berth.AsTransient())
		case ScopeSingleton:
			opts = append(opts, berth.AsSingleton())
		default:
			return fmt.Errorf("unknown vehicle scope %q", scope)
		}

		return berth.ProvideConstructor(c, NewCar, opts...)
	}
}

// Comparison is the outcome of CompareLookups.
type Comparison struct {
	Vehicle Vehicle
	Car     *Car
	Same    bool
}

// CompareLookups selects a Vehicle and a Car, moves both and reports whether
// the two lookups returned the same car.
func CompareLookups(c berth.Container) (Comparison, error) {
	v, err := berth.Select[Vehicle](c).Get()
	if err != nil {
		return Comparison{}, err
	}
	v.Move()

	car, err := berth.Select[*Car](c).Get()
	if err != nil {
		return Comparison{}, err
	}
	car.Move()

	return Comparison{
		Vehicle: v,
		Car:     car,
		Same:    car.Equals(v),
	}, nil
}
