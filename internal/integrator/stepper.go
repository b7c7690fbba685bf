package integrator

import (
	"context"
	"fmt"

	"github.com/swash-sim/swash/internal/particle"
)

// stagedSuffix names the scratch buffer holding computed-but-uncommitted
// values: integral "x" stages into "x_next".
const stagedSuffix = "_next"

// StagedName returns the staged-buffer name for an integral array.
func StagedName(integral string) string {
	return particle.CanonicalName(integral) + stagedSuffix
}

// EulerStepper performs the explicit forward update
//
//	next = integral + dt*integrand
//
// elementwise over every particle of every entity in its group, writing into
// the staged "_next" buffers. dt is read fresh from the shared TimeStep at
// execution time. The update is a plain single-stage explicit step: no
// implicit solve, no internal sub-stepping.
type EulerStepper struct {
	id         string
	scheme     Scheme
	prop       string
	entities   []particle.Entity
	integrands []string
	integrals  []string
	staged     []string
	ts         *particle.TimeStep
	ready      bool
}

// NewEulerStepper constructs an Euler stepper. Entities without particle
// arrays are silently dropped from the group.
func NewEulerStepper(id string, p *Property, entities []particle.Entity, ts *particle.TimeStep) Stepper {
	return newEulerStepper(SchemeEuler, id, p, entities, ts)
}

// EulerStepperAs adapts the Euler update to another scheme label. Useful
// when a scheme kind differs only in how the compiler groups entities, and
// in tests that exercise per-kind scheme overrides.
func EulerStepperAs(kind Scheme) StepperFunc {
	return func(id string, p *Property, entities []particle.Entity, ts *particle.TimeStep) Stepper {
		return newEulerStepper(kind, id, p, entities, ts)
	}
}

func newEulerStepper(kind Scheme, id string, p *Property, entities []particle.Entity, ts *particle.TimeStep) Stepper {
	kept := make([]particle.Entity, 0, len(entities))
	for _, e := range entities {
		if e.Particles() != nil {
			kept = append(kept, e)
		}
	}

	staged := make([]string, len(p.Integrals))
	for i, name := range p.Integrals {
		staged[i] = StagedName(name)
	}

	return &EulerStepper{
		id:         id,
		scheme:     kind,
		prop:       p.Name,
		entities:   kept,
		integrands: append([]string(nil), p.Integrands...),
		integrals:  append([]string(nil), p.Integrals...),
		staged:     staged,
		ts:         ts,
	}
}

// ID implements Component.
func (s *EulerStepper) ID() string { return s.id }

// Property implements Stepper.
func (s *EulerStepper) Property() string { return s.prop }

// Scheme implements Stepper.
func (s *EulerStepper) Scheme() Scheme { return s.scheme }

// Entities implements Stepper.
func (s *EulerStepper) Entities() []particle.Entity {
	return append([]particle.Entity(nil), s.entities...)
}

// Integrands implements Stepper.
func (s *EulerStepper) Integrands() []string {
	return append([]string(nil), s.integrands...)
}

// Integrals implements Stepper.
func (s *EulerStepper) Integrals() []string {
	return append([]string(nil), s.integrals...)
}

// StagedNames implements Stepper.
func (s *EulerStepper) StagedNames() []string {
	return append([]string(nil), s.staged...)
}

// Setup validates source arrays and lazily allocates the staged buffers.
// Missing integrand or integral arrays surface here as MissingArrayError,
// before any timestep runs.
func (s *EulerStepper) Setup() error {
	for _, e := range s.entities {
		parr := e.Particles()
		for i := range s.integrals {
			if !parr.Has(s.integrands[i]) {
				return &MissingArrayError{Entity: e.Name(), Array: s.integrands[i]}
			}
			if !parr.Has(s.integrals[i]) {
				return &MissingArrayError{Entity: e.Name(), Array: s.integrals[i]}
			}
			parr.Ensure(s.staged[i])
		}
	}
	s.ready = true
	return nil
}

// Execute implements Component. Runs Setup on first use if the compiler has
// not done so already.
func (s *EulerStepper) Execute(_ context.Context, _ int) error {
	if !s.ready {
		if err := s.Setup(); err != nil {
			return err
		}
	}

	dt := s.ts.Value()
	for _, e := range s.entities {
		parr := e.Particles()
		for i := range s.integrals {
			integrand, _ := parr.Get(s.integrands[i])
			integral, _ := parr.Get(s.integrals[i])
			next, _ := parr.Get(s.staged[i])
			for j := range next {
				next[j] = integral[j] + dt*integrand[j]
			}
		}
	}
	return nil
}

// String describes the stepper for plan dumps.
func (s *EulerStepper) String() string {
	names := make([]string, len(s.entities))
	for i, e := range s.entities {
		names[i] = e.Name()
	}
	return fmt.Sprintf("stepper property=%s scheme=%s entities=%v integrands=%v integrals=%v",
		s.prop, s.scheme, names, s.integrands, s.integrals)
}
