package store

import (
	"context"
	"slices"

	"github.com/swash-sim/swash/internal/particle"
)

// FrameWriter is an execution-list component that records frames for a run.
// Attach it as a solver post-step hook; it honors its own output interval so
// the solver schedule stays uniform.
type FrameWriter struct {
	id       string
	store    *Store
	runID    string
	entities []particle.Entity
	arrays   []string // nil records every field
	every    int
	ts       *particle.TimeStep
	simTime  float64
}

// NewFrameWriter creates a writer recording the given entities every
// `every` steps (1 records every step). arrays filters which fields are
// snapshotted; nil records all of them.
func NewFrameWriter(id string, st *Store, runID string, entities []particle.Entity, arrays []string, every int, ts *particle.TimeStep) *FrameWriter {
	if every < 1 {
		every = 1
	}
	return &FrameWriter{
		id:       id,
		store:    st,
		runID:    runID,
		entities: entities,
		arrays:   slices.Clone(arrays),
		every:    every,
		ts:       ts,
	}
}

// ID implements integrator.Component.
func (w *FrameWriter) ID() string { return w.id }

// Execute implements integrator.Component. Simulated time is accumulated
// locally from the dt in effect at each call, which matches the solver's own
// accounting as long as the writer runs once per step.
func (w *FrameWriter) Execute(ctx context.Context, iteration int) error {
	dt := w.ts.Value()
	w.simTime += dt

	if iteration%w.every != 0 {
		return nil
	}
	if err := w.store.WriteFrame(ctx, w.runID, iteration, w.simTime, dt); err != nil {
		return err
	}
	for _, e := range w.entities {
		parr := e.Particles()
		if parr == nil {
			continue
		}
		for _, name := range parr.Names() {
			if w.arrays != nil && !slices.Contains(w.arrays, name) {
				continue
			}
			data, _ := parr.Get(name)
			if err := w.store.WriteFrameArray(ctx, w.runID, iteration, e.Name(), name, data); err != nil {
				return err
			}
		}
	}
	return nil
}
