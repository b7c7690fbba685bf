package particle

import (
	"math"
	"sync/atomic"
)

// TimeStep is the shared mutable time-step handle.
//
// Every stepper in the execution list reads dt fresh at execution time, so
// an adaptive-timestep hook that mutates the handle between phases is
// honored by all subsequent steppers in the same timestep. No stepper ever
// writes the handle, which rules out write-write races by construction.
//
// The value is stored atomically so monitoring goroutines may read it while
// the solver loop runs.
type TimeStep struct {
	bits atomic.Uint64
}

// NewTimeStep creates a handle holding dt.
func NewTimeStep(dt float64) *TimeStep {
	ts := &TimeStep{}
	ts.Set(dt)
	return ts
}

// Value returns the current time step.
func (ts *TimeStep) Value() float64 {
	return math.Float64frombits(ts.bits.Load())
}

// Set replaces the time step.
func (ts *TimeStep) Set(dt float64) {
	ts.bits.Store(math.Float64bits(dt))
}
