package integrator

import "context"

// Component is one runnable step of a timestep. User-supplied hooks
// (summation-density passes, neighbor refresh, adaptive-dt controllers, MPI
// ghost exchange, output writers) implement Component and are referenced by
// ID from the pre-integration and per-property step lists. Generated
// steppers and copiers satisfy the same interface so the compiled execution
// list is a flat []Component walked in order once per timestep.
//
// Execute receives the 1-based timestep iteration. A nil error means the
// step completed; the integrator treats any error as fatal for the run.
type Component interface {
	ID() string
	Execute(ctx context.Context, iteration int) error
}
