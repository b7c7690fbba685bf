// Package solver drives the compiled execution list: a thin loop that walks
// the integrator's plan once per timestep, wrapped with user pre/post hooks
// and progress logging. All scheduling intelligence lives in the integrator;
// the solver is deliberately glue.
package solver

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/swash-sim/swash/internal/integrator"
	"github.com/swash-sim/swash/internal/particle"
)

// DefaultOutputFreq is the default interval, in steps, between progress log
// lines.
const DefaultOutputFreq = 100

// Solver owns the main time-stepping loop.
//
// Operations are pre-integration components managed with insert/replace/
// remove semantics and synced into the integrator's pre-integration slot on
// Setup. Pre/post step hooks run around the whole execution list each
// timestep; an adaptive-dt hook mutating the shared TimeStep between steps
// is picked up by every stepper of the following step.
type Solver struct {
	integ *integrator.Integrator
	ts    *particle.TimeStep

	ops      map[string]integrator.Component
	opsOrder []string

	preStep  []integrator.Component
	postStep []integrator.Component

	t          float64
	tf         float64
	outputFreq int
	iteration  int
}

// New creates a solver over an integrator. The time-step handle is shared
// with the integrator's steppers.
func New(integ *integrator.Integrator) *Solver {
	return &Solver{
		integ:      integ,
		ts:         integ.TimeStep(),
		ops:        make(map[string]integrator.Component),
		outputFreq: DefaultOutputFreq,
	}
}

// Integrator returns the driven integrator.
func (s *Solver) Integrator() *integrator.Integrator { return s.integ }

// SetFinalTime sets the simulated time at which Solve stops.
func (s *Solver) SetFinalTime(tf float64) { s.tf = tf }

// SetTimeStep sets the (initial) time step.
func (s *Solver) SetTimeStep(dt float64) { s.ts.Set(dt) }

// SetOutputFreq sets the progress-log interval in steps. Zero disables
// periodic progress lines.
func (s *Solver) SetOutputFreq(n int) { s.outputFreq = n }

// Time returns the simulated time reached so far.
func (s *Solver) Time() float64 { return s.t }

// Iteration returns the number of completed timesteps.
func (s *Solver) Iteration() int { return s.iteration }

// AddOperation appends an operation. Fails when the ID already exists.
func (s *Solver) AddOperation(c integrator.Component) error {
	if _, exists := s.ops[c.ID()]; exists {
		return fmt.Errorf("operation %q already exists", c.ID())
	}
	s.ops[c.ID()] = c
	s.opsOrder = append(s.opsOrder, c.ID())
	return nil
}

// InsertOperation inserts an operation before or after an existing anchor.
func (s *Solver) InsertOperation(c integrator.Component, before bool, anchorID string) error {
	if _, exists := s.ops[c.ID()]; exists {
		return fmt.Errorf("operation %q already exists", c.ID())
	}
	idx := slices.Index(s.opsOrder, anchorID)
	if idx < 0 {
		return fmt.Errorf("anchor operation %q does not exist", anchorID)
	}
	if !before {
		idx++
	}
	s.ops[c.ID()] = c
	s.opsOrder = slices.Insert(s.opsOrder, idx, c.ID())
	return nil
}

// ReplaceOperation swaps the component registered under c.ID(), keeping its
// position in the order.
func (s *Solver) ReplaceOperation(c integrator.Component) error {
	if _, exists := s.ops[c.ID()]; !exists {
		return fmt.Errorf("operation %q does not exist", c.ID())
	}
	s.ops[c.ID()] = c
	return nil
}

// RemoveOperation removes an operation by ID.
func (s *Solver) RemoveOperation(id string) error {
	idx := slices.Index(s.opsOrder, id)
	if idx < 0 {
		return fmt.Errorf("operation %q does not exist", id)
	}
	s.opsOrder = slices.Delete(s.opsOrder, idx, idx+1)
	delete(s.ops, id)
	return nil
}

// SetOperationOrder replaces the operation order wholesale. Every ID must
// already be registered; on failure the stored order is untouched.
func (s *Solver) SetOperationOrder(ids []string) error {
	for _, id := range ids {
		if _, ok := s.ops[id]; !ok {
			return fmt.Errorf("operation %q does not exist", id)
		}
	}
	s.opsOrder = slices.Clone(ids)
	return nil
}

// OperationOrder returns the current operation order.
func (s *Solver) OperationOrder() []string { return slices.Clone(s.opsOrder) }

// AddPreStep appends a hook run before the execution list each timestep.
func (s *Solver) AddPreStep(c integrator.Component) { s.preStep = append(s.preStep, c) }

// AddPostStep appends a hook run after the execution list each timestep.
func (s *Solver) AddPostStep(c integrator.Component) { s.postStep = append(s.postStep, c) }

// Setup syncs operations into the integrator and compiles the execution
// list. Must be called again after entities, properties or operations
// change; the compiled list is replaced wholesale.
func (s *Solver) Setup() error {
	for _, id := range s.opsOrder {
		if _, ok := s.integ.Component(id); ok {
			// Sync replaced operations into the component registry.
			if err := s.integ.ReplaceComponent(s.ops[id]); err != nil {
				return err
			}
			continue
		}
		if err := s.integ.RegisterComponent(s.ops[id]); err != nil {
			return err
		}
	}
	s.integ.SetPreIntegrationComponents(s.opsOrder)
	return s.integ.Setup()
}

// Step advances the simulation by exactly one timestep.
func (s *Solver) Step(ctx context.Context) error {
	dt := s.ts.Value()
	s.iteration++
	s.t += dt

	for _, h := range s.preStep {
		if err := h.Execute(ctx, s.iteration); err != nil {
			return fmt.Errorf("pre-step %q: %w", h.ID(), err)
		}
	}
	if err := s.integ.StepOnce(ctx, s.iteration); err != nil {
		return err
	}
	for _, h := range s.postStep {
		if err := h.Execute(ctx, s.iteration); err != nil {
			return fmt.Errorf("post-step %q: %w", h.ID(), err)
		}
	}

	slog.Debug("timestep complete", "iteration", s.iteration, "t", s.t, "dt", dt)
	if s.outputFreq > 0 && s.iteration%s.outputFreq == 0 {
		slog.Info("progress", "iteration", s.iteration, "t", s.t, "dt", dt)
	}
	return nil
}

// Solve runs timesteps until the simulated time reaches the final time.
// Cancellation is honored between steps, never within one: a timestep either
// completes fully or the run stops before it starts.
func (s *Solver) Solve(ctx context.Context) error {
	slog.Info("solver starting", "t", s.t, "tf", s.tf, "dt", s.ts.Value())

	for s.t < s.tf {
		if err := ctx.Err(); err != nil {
			slog.Info("solver stopping: context cancelled", "iteration", s.iteration, "t", s.t)
			return err
		}
		if err := s.Step(ctx); err != nil {
			return fmt.Errorf("iteration %d: %w", s.iteration, err)
		}
	}

	slog.Info("solver finished", "iterations", s.iteration, "t", s.t)
	return nil
}

// SolveSteps runs exactly n timesteps regardless of final time. Used by the
// scenario harness and the CLI --steps mode.
func (s *Solver) SolveSteps(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Step(ctx); err != nil {
			return fmt.Errorf("iteration %d: %w", s.iteration, err)
		}
	}
	return nil
}
