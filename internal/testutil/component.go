// Package testutil provides shared fixtures for tests: recording stub
// components and canned particle entities.
package testutil

import (
	"context"
	"fmt"
	"sync"
)

// Recorder is a stub component that logs each Execute call into a shared
// Trace. Tests register several recorders sharing one Trace and assert on
// the observed execution order.
type Recorder struct {
	id    string
	trace *Trace
	fail  error
}

// Trace collects "id@iteration" entries in execution order.
type Trace struct {
	mu      sync.Mutex
	entries []string
}

// NewTrace creates an empty trace.
func NewTrace() *Trace { return &Trace{} }

// Entries returns the recorded entries in order.
func (t *Trace) Entries() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.entries...)
}

func (t *Trace) add(entry string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry)
}

// NewRecorder creates a recorder with the given ID, logging into trace.
// trace may be nil for a component that only needs to exist.
func NewRecorder(id string, trace *Trace) *Recorder {
	return &Recorder{id: id, trace: trace}
}

// NewFailing creates a recorder whose Execute always returns err.
func NewFailing(id string, err error) *Recorder {
	return &Recorder{id: id, fail: err}
}

// ID implements integrator.Component.
func (r *Recorder) ID() string { return r.id }

// Execute implements integrator.Component.
func (r *Recorder) Execute(_ context.Context, iteration int) error {
	if r.fail != nil {
		return r.fail
	}
	if r.trace != nil {
		r.trace.add(fmt.Sprintf("%s@%d", r.id, iteration))
	}
	return nil
}
