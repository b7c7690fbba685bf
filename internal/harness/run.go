package harness

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/swash-sim/swash/internal/integrator"
	"github.com/swash-sim/swash/internal/simfile"
)

// Result captures everything a scenario can assert on.
type Result struct {
	// Plan is the compiled execution list, one description per step.
	Plan []string

	// Trace records probe events as "id@iteration" in execution order.
	Trace []string

	// Iterations is the number of completed timesteps.
	Iterations int

	// Time is the simulated time reached.
	Time float64

	// Final holds the particle arrays after the run, keyed by entity
	// then array name. Staged buffers are included.
	Final map[string]map[string][]float64
}

// probe is a trace-recording component injected as an operation or a
// per-property hook.
type probe struct {
	id    string
	trace *[]string
}

func (p *probe) ID() string { return p.id }

func (p *probe) Execute(_ context.Context, iteration int) error {
	*p.trace = append(*p.trace, fmt.Sprintf("%s@%d", p.id, iteration))
	return nil
}

// Run executes a scenario end to end: load the simulation file, attach
// the declared probes, compile the execution list, step, then evaluate
// every assertion. The result is returned even when assertions fail so
// callers can inspect what actually happened.
func Run(scenario *Scenario) (*Result, error) {
	spec, err := simfile.LoadFile(scenario.Simfile)
	if err != nil {
		return nil, err
	}

	schemes := integrator.NewSchemeSet()
	for _, label := range scenario.Schemes {
		schemes.Register(integrator.Scheme(label), integrator.EulerStepperAs(integrator.Scheme(label)))
	}

	s, err := simfile.Build(spec, schemes)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	for _, id := range scenario.Operations {
		if err := s.AddOperation(&probe{id: id, trace: &result.Trace}); err != nil {
			return nil, err
		}
	}

	integ := s.Integrator()
	for _, h := range scenario.Hooks {
		if err := integ.RegisterComponent(&probe{id: h.ID, trace: &result.Trace}); err != nil {
			return nil, err
		}
		if err := integ.AddComponent(h.Property, h.ID, h.Phase == "pre"); err != nil {
			return nil, err
		}
	}

	if err := s.Setup(); err != nil {
		return nil, err
	}
	result.Plan = integ.DescribePlan()

	steps := scenario.Steps
	if steps == 0 {
		steps = spec.Steps
	}
	if steps == 0 {
		return nil, fmt.Errorf("scenario %q: no step count in scenario or simulation file", scenario.Name)
	}

	if err := s.SolveSteps(context.Background(), steps); err != nil {
		return nil, err
	}

	result.Iterations = s.Iteration()
	result.Time = s.Time()
	result.Final = make(map[string]map[string][]float64)
	for _, e := range integ.Entities() {
		parr := e.Particles()
		if parr == nil {
			continue
		}
		arrays := make(map[string][]float64)
		for _, name := range parr.Names() {
			data, _ := parr.Get(name)
			arrays[name] = slices.Clone(data)
		}
		result.Final[e.Name()] = arrays
	}

	return result, check(scenario, result)
}

// check evaluates every assertion, collecting failures.
func check(scenario *Scenario, r *Result) error {
	var errs []error
	for i, a := range scenario.Assertions {
		if err := checkAssertion(&a, r); err != nil {
			errs = append(errs, fmt.Errorf("assertions[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func checkAssertion(a *Assertion, r *Result) error {
	switch a.Type {
	case AssertArrayEquals:
		arrays, ok := r.Final[a.Entity]
		if !ok {
			return fmt.Errorf("array_equals: no entity %q", a.Entity)
		}
		got, ok := arrays[a.Array]
		if !ok {
			return fmt.Errorf("array_equals: entity %q has no array %q", a.Entity, a.Array)
		}
		if !slices.Equal(got, a.Values) {
			return fmt.Errorf("array_equals: %s.%s = %v, want %v", a.Entity, a.Array, got, a.Values)
		}
	case AssertPlanContains:
		for _, line := range r.Plan {
			if strings.Contains(line, a.Step) {
				return nil
			}
		}
		return fmt.Errorf("plan_contains: no execution-list step matches %q", a.Step)
	case AssertTraceOrder:
		pos := 0
		for _, ev := range r.Trace {
			if pos < len(a.Events) && ev == a.Events[pos] {
				pos++
			}
		}
		if pos != len(a.Events) {
			return fmt.Errorf("trace_order: events %v not found in order in trace %v", a.Events, r.Trace)
		}
	}
	return nil
}
