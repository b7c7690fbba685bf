package integrator

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/swash-sim/swash/internal/particle"
)

// Integrator compiles the declarative integration description held by its
// Registry into a flat, ordered execution list and runs that list once per
// timestep.
//
// Compilation (Setup) is deterministic and idempotent for identical inputs:
//
//  1. Pre-integration components, in registration order.
//  2. Per property, in integration order: pre-step components, one stepper
//     instance per resolved-scheme entity group (groups in first-seen entity
//     order), post-step components.
//  3. After ALL properties: one copier per stepped (property, entity) pair,
//     in stepper emission order.
//
// The deferred copier phase guarantees that every stepper within a timestep
// reads a single consistent snapshot of the prior step's committed state.
//
// The integrator holds non-owning references to registered components; all
// mutations and stepping happen on the caller's goroutine.
type Integrator struct {
	reg     *Registry
	schemes *SchemeSet
	ts      *particle.TimeStep

	components map[string]Component
	preIntegr  []string
	entities   []particle.Entity

	plan []Component
}

// New creates an integrator over a registry, a scheme set and the shared
// time-step handle.
func New(reg *Registry, schemes *SchemeSet, ts *particle.TimeStep) *Integrator {
	return &Integrator{
		reg:        reg,
		schemes:    schemes,
		ts:         ts,
		components: make(map[string]Component),
	}
}

// Registry returns the integrator's property registry.
func (in *Integrator) Registry() *Registry { return in.reg }

// TimeStep returns the shared time-step handle.
func (in *Integrator) TimeStep() *particle.TimeStep { return in.ts }

// RegisterComponent makes an externally-owned component referenceable by ID
// from the pre-integration and per-property step lists. Duplicate IDs are a
// configuration error.
func (in *Integrator) RegisterComponent(c Component) error {
	if _, exists := in.components[c.ID()]; exists {
		return &ConfigError{
			Code:      ErrCodeDuplicateComponent,
			Component: c.ID(),
			Message:   "component already registered",
		}
	}
	in.components[c.ID()] = c
	return nil
}

// ReplaceComponent swaps the component registered under c.ID(). Step lists
// referencing the ID pick up the replacement at the next Setup. Replacing an
// unregistered ID is a configuration error.
func (in *Integrator) ReplaceComponent(c Component) error {
	if _, exists := in.components[c.ID()]; !exists {
		return &ConfigError{
			Code:      ErrCodeUnknownComponent,
			Component: c.ID(),
			Message:   "cannot replace unregistered component",
		}
	}
	in.components[c.ID()] = c
	return nil
}

// Component returns a registered component by ID.
func (in *Integrator) Component(id string) (Component, bool) {
	c, ok := in.components[id]
	return c, ok
}

// AddPreIntegrationComponent inserts a component ID into the
// pre-integration list: appended when atTail is true, prepended otherwise.
// The ID is resolved at Setup time, so components may be registered later.
func (in *Integrator) AddPreIntegrationComponent(id string, atTail bool) {
	if atTail {
		in.preIntegr = append(in.preIntegr, id)
	} else {
		in.preIntegr = append([]string{id}, in.preIntegr...)
	}
}

// SetPreIntegrationComponents replaces the pre-integration list wholesale.
func (in *Integrator) SetPreIntegrationComponents(ids []string) {
	in.preIntegr = slices.Clone(ids)
}

// PreIntegrationComponents returns the pre-integration ID list.
func (in *Integrator) PreIntegrationComponents() []string {
	return slices.Clone(in.preIntegr)
}

// AddComponent attaches a component ID to a property's pre-step (preStep
// true) or post-step list.
func (in *Integrator) AddComponent(property, id string, preStep bool) error {
	return in.reg.AddStepComponent(property, id, preStep)
}

// AddEntity adds an entity to the integrated collection. Which properties it
// participates in is decided at Setup time from eligibility and opt-in.
func (in *Integrator) AddEntity(e particle.Entity) {
	in.entities = append(in.entities, e)
}

// Entities returns the integrated entities in addition order.
func (in *Integrator) Entities() []particle.Entity {
	return append([]particle.Entity(nil), in.entities...)
}

// SetIntegrationOrder delegates to the registry.
func (in *Integrator) SetIntegrationOrder(names []string) error {
	return in.reg.SetIntegrationOrder(names)
}

// Setup compiles the execution list, replacing any previous list wholesale.
// All configuration errors (unknown component or scheme, missing source
// arrays) surface here, never mid-timestep.
func (in *Integrator) Setup() error {
	var plan []Component
	var copiers []Component

	resolve := func(id string) (Component, error) {
		c, ok := in.components[id]
		if !ok {
			return nil, &ConfigError{
				Code:      ErrCodeUnknownComponent,
				Component: id,
				Message:   "execution list references unregistered component",
			}
		}
		return c, nil
	}

	for _, id := range in.preIntegr {
		c, err := resolve(id)
		if err != nil {
			return err
		}
		plan = append(plan, c)
	}

	for _, propName := range in.reg.IntegrationOrder() {
		p, ok := in.reg.Property(propName)
		if !ok {
			return &ConfigError{
				Code:     ErrCodeUnknownProperty,
				Property: propName,
				Message:  "integration order references unregistered property",
			}
		}

		for _, id := range p.PreStepComponents() {
			c, err := resolve(id)
			if err != nil {
				return err
			}
			plan = append(plan, c)
		}

		// Partition eligible, opted-in entities by resolved scheme.
		// Ineligible opt-ins are silently excluded: heterogeneous entity
		// collections routinely integrate a property on a subset of kinds.
		var groupOrder []Scheme
		groups := make(map[Scheme][]particle.Entity)
		for _, e := range in.entities {
			if !e.IntegratesProperty(propName) || !p.Eligible(e.Kind()) {
				continue
			}
			scheme := in.reg.ResolveScheme(e.Kind(), propName)
			if _, seen := groups[scheme]; !seen {
				groupOrder = append(groupOrder, scheme)
			}
			groups[scheme] = append(groups[scheme], e)
		}

		for _, scheme := range groupOrder {
			id := fmt.Sprintf("stepper:%s:%s", propName, scheme)
			st, err := in.schemes.New(scheme, id, p, groups[scheme], in.ts)
			if err != nil {
				return err
			}
			if err := st.Setup(); err != nil {
				return fmt.Errorf("setup %s: %w", id, err)
			}
			plan = append(plan, st)

			// One copier per stepped entity, in the group's first-seen
			// order. Emission order here fixes the commit order later.
			for _, e := range st.Entities() {
				cpID := fmt.Sprintf("copier:%s:%s", propName, e.Name())
				copiers = append(copiers, NewCopier(cpID, p, e))
			}
		}

		for _, id := range p.PostStepComponents() {
			c, err := resolve(id)
			if err != nil {
				return err
			}
			plan = append(plan, c)
		}
	}

	// Commit phase: strictly after every property's stepper phase.
	plan = append(plan, copiers...)

	in.plan = plan
	slog.Debug("execution list compiled",
		"steps", len(plan),
		"copiers", len(copiers),
		"entities", len(in.entities),
	)
	return nil
}

// Plan returns the compiled execution list. The slice is a copy; the steps
// are the live instances.
func (in *Integrator) Plan() []Component {
	return append([]Component(nil), in.plan...)
}

// StepOnce walks the compiled list in order for one timestep. There is no
// cancellation within a timestep: ctx is passed through to components but
// the walk itself never suspends. A step error aborts the timestep.
func (in *Integrator) StepOnce(ctx context.Context, iteration int) error {
	if in.plan == nil {
		return ErrNotCompiled
	}
	for _, step := range in.plan {
		if err := step.Execute(ctx, iteration); err != nil {
			return fmt.Errorf("step %q: %w", step.ID(), err)
		}
	}
	return nil
}

// DescribeStep renders one execution-list element for plan dumps and golden
// snapshots. Steppers and copiers describe their bindings; components render
// as their ID.
func DescribeStep(c Component) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return "component " + c.ID()
}

// DescribePlan renders the whole compiled list in order.
func (in *Integrator) DescribePlan() []string {
	out := make([]string, len(in.plan))
	for i, c := range in.plan {
		out[i] = DescribeStep(c)
	}
	return out
}
