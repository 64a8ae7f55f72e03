// Package vehicle shows that a bean satisfies lookups for the capabilities it
// is provided as, and that the default scope creates an instance per lookup.
package vehicle

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/xraph/go-utils/log"

	"github.com/xraph/berth"
)

// Vehicle is anything that can move.
type Vehicle interface {
	Move()
}

// Car is the managed Vehicle. Every instance has its own identity.
type Car struct {
	id     uuid.UUID
	logger berth.Logger
}

// NewCar creates a car with a fresh identity.
func NewCar(logger berth.Logger) *Car {
	return &Car{
		id:     uuid.New(),
		logger: logger,
	}
}

// ID returns the car's identity.
func (c *Car) ID() uuid.UUID {
	return c.id
}

// Move implements Vehicle.
func (c *Car) Move() {
	c.logger.Info("the car is moving", log.String("car", c.id.String()))
}

// Equals reports whether v is this very car.
func (c *Car) Equals(v Vehicle) bool {
	other, ok := v.(*Car)
	return ok && other != nil && other.id == c.id
}

// String implements fmt.Stringer.
func (c *Car) String() string {
	return fmt.Sprintf("Car(%s)", c.id)
}
