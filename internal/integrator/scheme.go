package integrator

import (
	"github.com/swash-sim/swash/internal/particle"
)

// Stepper is a compiled numeric-integration step: one instance per
// (property, resolved scheme, entity group). Setup eagerly allocates the
// staged "_next" buffers and validates source arrays so numeric failures
// surface at compile time, not mid-timestep.
type Stepper interface {
	Component

	// Setup allocates staged buffers and validates source arrays.
	Setup() error

	// Property returns the integrated property name.
	Property() string

	// Scheme returns the scheme kind this stepper implements.
	Scheme() Scheme

	// Entities returns the stepped entity group in first-seen order.
	// Entities without particle arrays are filtered at construction.
	Entities() []particle.Entity

	// Integrands and Integrals return the positionally paired array names.
	Integrands() []string
	Integrals() []string

	// StagedNames returns the "_next" buffer names, paired with Integrals.
	StagedNames() []string
}

// StepperFunc constructs a stepper for one (property, entity group) binding.
type StepperFunc func(id string, p *Property, entities []particle.Entity, ts *particle.TimeStep) Stepper

// SchemeSet maps scheme kinds to stepper constructors. The execution-list
// compiler consults it when emitting stepper instances; referencing a scheme
// with no registered constructor is a Setup-time configuration error.
type SchemeSet struct {
	ctors map[Scheme]StepperFunc
}

// NewSchemeSet creates a scheme set with the explicit Euler scheme
// registered under SchemeEuler.
func NewSchemeSet() *SchemeSet {
	s := &SchemeSet{ctors: make(map[Scheme]StepperFunc)}
	s.Register(SchemeEuler, NewEulerStepper)
	return s
}

// Register installs (or replaces) the constructor for a scheme kind.
func (s *SchemeSet) Register(kind Scheme, fn StepperFunc) {
	s.ctors[kind] = fn
}

// Has reports whether a constructor is registered for the scheme kind.
func (s *SchemeSet) Has(kind Scheme) bool {
	_, ok := s.ctors[kind]
	return ok
}

// New constructs a stepper of the given scheme kind.
func (s *SchemeSet) New(kind Scheme, id string, p *Property, entities []particle.Entity, ts *particle.TimeStep) (Stepper, error) {
	fn, ok := s.ctors[kind]
	if !ok {
		return nil, &ConfigError{
			Code:     ErrCodeUnknownScheme,
			Property: p.Name,
			Message:  "no stepper registered for scheme " + string(kind),
		}
	}
	return fn(id, p, entities, ts), nil
}
