package simfile

import (
	"fmt"

	"github.com/swash-sim/swash/internal/integrator"
	"github.com/swash-sim/swash/internal/particle"
	"github.com/swash-sim/swash/internal/solver"
)

// Build turns a parsed Spec into a ready-to-setup solver. The schemes
// set may be nil, in which case only the built-in euler scheme is
// available; callers wanting additional schemes register them first
// and pass the set in.
//
// Setup is not called: callers may still attach operations and hooks
// before compiling the execution plan.
func Build(spec *Spec, schemes *integrator.SchemeSet) (*solver.Solver, error) {
	if schemes == nil {
		schemes = integrator.NewSchemeSet()
	}

	defScheme := integrator.SchemeEuler
	if spec.DefaultScheme != "" {
		defScheme = integrator.Scheme(spec.DefaultScheme)
	}

	reg := integrator.NewRegistry(defScheme)
	for _, p := range spec.Properties {
		kinds, err := parseKinds(p.Kinds, fmt.Sprintf("property.%s.kinds", p.Name))
		if err != nil {
			return nil, err
		}
		sm, err := schemeMap(p.Scheme, fmt.Sprintf("property.%s.scheme", p.Name))
		if err != nil {
			return nil, err
		}
		if err := reg.AddProperty(p.Name, p.Integrands, p.Integrals, kinds, sm); err != nil {
			return nil, err
		}
	}

	if len(spec.Order) > 0 {
		if err := reg.SetIntegrationOrder(spec.Order); err != nil {
			return nil, err
		}
	}

	ts := particle.NewTimeStep(spec.DT)
	integ := integrator.New(reg, schemes, ts)

	for _, es := range spec.Entities {
		e, err := buildEntity(reg, es)
		if err != nil {
			return nil, err
		}
		integ.AddEntity(e)
	}

	s := solver.New(integ)
	if spec.OutputEvery > 0 {
		s.SetOutputFreq(spec.OutputEvery)
	}
	return s, nil
}

func buildEntity(reg *integrator.Registry, es EntitySpec) (particle.Entity, error) {
	kind, err := particle.ParseKind(es.Kind)
	if err != nil {
		return nil, &CompileError{
			Field:   fmt.Sprintf("entity.%s.kind", es.Name),
			Message: err.Error(),
		}
	}

	count := len(es.Arrays[es.ArrayOrder[0]])
	arr := particle.NewArray(es.Name, count)
	for _, name := range es.ArrayOrder {
		if err := arr.Set(name, es.Arrays[name]); err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("entity.%s.arrays.%s", es.Name, name),
				Message: err.Error(),
			}
		}
	}

	e := particle.NewEntity(es.Name, kind, arr)
	for _, prop := range es.Properties {
		p, ok := reg.Property(prop)
		if !ok {
			return nil, &CompileError{
				Field:   fmt.Sprintf("entity.%s.properties", es.Name),
				Message: fmt.Sprintf("unknown property %q", prop),
			}
		}
		e.EnableProperty(prop)

		// Arrays the property integrates but the file does not seed
		// start zero-filled.
		for _, name := range p.Integrands {
			arr.Ensure(name)
		}
		for _, name := range p.Integrals {
			arr.Ensure(name)
		}
	}
	return e, nil
}

func parseKinds(names []string, field string) ([]particle.Kind, error) {
	if len(names) == 0 {
		// Omitted kinds means the property is open to every kind.
		return []particle.Kind{particle.KindAny}, nil
	}
	kinds := make([]particle.Kind, 0, len(names))
	for _, name := range names {
		k, err := particle.ParseKind(name)
		if err != nil {
			return nil, &CompileError{Field: field, Message: err.Error()}
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func schemeMap(s SchemeSpec, field string) (*integrator.SchemeMap, error) {
	if s.Default == "" && len(s.ByKind) == 0 {
		return nil, nil
	}
	sm := &integrator.SchemeMap{Default: integrator.Scheme(s.Default)}
	if len(s.ByKind) > 0 {
		sm.ByKind = make(map[particle.Kind]integrator.Scheme, len(s.ByKind))
		for name, scheme := range s.ByKind {
			k, err := particle.ParseKind(name)
			if err != nil {
				return nil, &CompileError{Field: field, Message: err.Error()}
			}
			sm.ByKind[k] = integrator.Scheme(scheme)
		}
	}
	return sm, nil
}
