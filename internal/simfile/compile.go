package simfile

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// LoadFile reads a CUE simulation file and compiles its "simulation"
// struct into a Spec.
func LoadFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CompileError{
			Field:   "file",
			Message: fmt.Sprintf("reading simulation file: %v", err),
		}
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	simVal := value.LookupPath(cue.ParsePath("simulation"))
	if !simVal.Exists() {
		return nil, &CompileError{
			Field:   "simulation",
			Message: "no simulation struct found",
			Pos:     value.Pos(),
		}
	}

	return Compile(simVal)
}

// Compile parses a CUE value into a Spec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the simulation struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`simulation: { ... }`)
//	spec, err := Compile(v.LookupPath(cue.ParsePath("simulation")))
func Compile(v cue.Value) (*Spec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &Spec{}

	// Parse name (required)
	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   "name",
			Message: "name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	spec.Name = name

	// Parse dt (required, must be positive)
	dtVal := v.LookupPath(cue.ParsePath("dt"))
	if !dtVal.Exists() {
		return nil, &CompileError{
			Field:   "dt",
			Message: "dt is required",
			Pos:     v.Pos(),
		}
	}
	dt, err := dtVal.Float64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if dt <= 0 {
		return nil, &CompileError{
			Field:   "dt",
			Message: fmt.Sprintf("dt must be positive, got %v", dt),
			Pos:     dtVal.Pos(),
		}
	}
	spec.DT = dt

	// Parse steps (optional)
	stepsVal := v.LookupPath(cue.ParsePath("steps"))
	if stepsVal.Exists() {
		steps, err := stepsVal.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if steps < 0 {
			return nil, &CompileError{
				Field:   "steps",
				Message: fmt.Sprintf("steps must not be negative, got %d", steps),
				Pos:     stepsVal.Pos(),
			}
		}
		spec.Steps = int(steps)
	}

	// Parse default_scheme (optional)
	schemeVal := v.LookupPath(cue.ParsePath("default_scheme"))
	if schemeVal.Exists() {
		scheme, err := schemeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.DefaultScheme = scheme
	}

	// Parse output_every (optional)
	outVal := v.LookupPath(cue.ParsePath("output_every"))
	if outVal.Exists() {
		every, err := outVal.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.OutputEvery = int(every)
	}

	// Parse properties (optional; velocity and position are built in)
	spec.Properties, err = parseProperties(v)
	if err != nil {
		return nil, err
	}

	// Parse integration order (optional)
	orderVal := v.LookupPath(cue.ParsePath("order"))
	if orderVal.Exists() {
		spec.Order, err = parseStringList(orderVal, "order")
		if err != nil {
			return nil, err
		}
	}

	// Parse entities (required, at least one)
	spec.Entities, err = parseEntities(v)
	if err != nil {
		return nil, err
	}
	if len(spec.Entities) == 0 {
		return nil, &CompileError{
			Field:   "entity",
			Message: "at least one entity is required",
			Pos:     v.Pos(),
		}
	}

	return spec, nil
}

// parseProperties extracts property definitions from the simulation.
func parseProperties(v cue.Value) ([]PropertySpec, error) {
	var props []PropertySpec

	propVal := v.LookupPath(cue.ParsePath("property"))
	if !propVal.Exists() {
		return props, nil
	}

	iter, err := propVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		propName := iter.Label()
		propValue := iter.Value()

		prop := PropertySpec{Name: propName}

		integrandsVal := propValue.LookupPath(cue.ParsePath("integrands"))
		if !integrandsVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("property.%s.integrands", propName),
				Message: "property integrands are required",
				Pos:     propValue.Pos(),
			}
		}
		prop.Integrands, err = parseStringList(integrandsVal, fmt.Sprintf("property.%s.integrands", propName))
		if err != nil {
			return nil, err
		}

		integralsVal := propValue.LookupPath(cue.ParsePath("integrals"))
		if !integralsVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("property.%s.integrals", propName),
				Message: "property integrals are required",
				Pos:     propValue.Pos(),
			}
		}
		prop.Integrals, err = parseStringList(integralsVal, fmt.Sprintf("property.%s.integrals", propName))
		if err != nil {
			return nil, err
		}

		kindsVal := propValue.LookupPath(cue.ParsePath("kinds"))
		if kindsVal.Exists() {
			prop.Kinds, err = parseStringList(kindsVal, fmt.Sprintf("property.%s.kinds", propName))
			if err != nil {
				return nil, err
			}
		}

		schemeVal := propValue.LookupPath(cue.ParsePath("scheme"))
		if schemeVal.Exists() {
			prop.Scheme, err = parseScheme(schemeVal, propName)
			if err != nil {
				return nil, err
			}
		}

		props = append(props, prop)
	}

	return props, nil
}

// parseScheme parses a scheme selection. Supports:
// - Single string: applies to all kinds
// - Object: { default: "euler", fluid: "leapfrog" }
func parseScheme(v cue.Value, propName string) (SchemeSpec, error) {
	var spec SchemeSpec

	// Try as string first (uniform scheme)
	if s, err := v.String(); err == nil {
		spec.Default = s
		return spec, nil
	}

	iter, err := v.Fields()
	if err != nil {
		return spec, &CompileError{
			Field:   fmt.Sprintf("property.%s.scheme", propName),
			Message: "must be a string or an object keyed by entity kind",
			Pos:     v.Pos(),
		}
	}

	for iter.Next() {
		label := iter.Label()
		scheme, err := iter.Value().String()
		if err != nil {
			return spec, formatCUEError(err)
		}
		if label == "default" {
			spec.Default = scheme
			continue
		}
		if spec.ByKind == nil {
			spec.ByKind = make(map[string]string)
		}
		spec.ByKind[label] = scheme
	}

	return spec, nil
}

// parseEntities extracts entity definitions from the simulation.
func parseEntities(v cue.Value) ([]EntitySpec, error) {
	var entities []EntitySpec

	entVal := v.LookupPath(cue.ParsePath("entity"))
	if !entVal.Exists() {
		return entities, nil
	}

	iter, err := entVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		entName := iter.Label()
		entValue := iter.Value()

		ent := EntitySpec{Name: entName}

		kindVal := entValue.LookupPath(cue.ParsePath("kind"))
		if !kindVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("entity.%s.kind", entName),
				Message: "entity kind is required",
				Pos:     entValue.Pos(),
			}
		}
		ent.Kind, err = kindVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}

		propsVal := entValue.LookupPath(cue.ParsePath("properties"))
		if propsVal.Exists() {
			ent.Properties, err = parseStringList(propsVal, fmt.Sprintf("entity.%s.properties", entName))
			if err != nil {
				return nil, err
			}
		}

		arraysVal := entValue.LookupPath(cue.ParsePath("arrays"))
		if !arraysVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("entity.%s.arrays", entName),
				Message: "entity arrays are required",
				Pos:     entValue.Pos(),
			}
		}

		ent.Arrays = make(map[string][]float64)
		arrIter, err := arraysVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for arrIter.Next() {
			arrName := arrIter.Label()
			data, err := parseFloatList(arrIter.Value(), fmt.Sprintf("entity.%s.arrays.%s", entName, arrName))
			if err != nil {
				return nil, err
			}
			ent.Arrays[arrName] = data
			ent.ArrayOrder = append(ent.ArrayOrder, arrName)
		}
		if len(ent.ArrayOrder) == 0 {
			return nil, &CompileError{
				Field:   fmt.Sprintf("entity.%s.arrays", entName),
				Message: "at least one array is required",
				Pos:     arraysVal.Pos(),
			}
		}

		entities = append(entities, ent)
	}

	return entities, nil
}

func parseStringList(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: "must be a list of strings",
			Pos:     v.Pos(),
		}
	}

	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

func parseFloatList(v cue.Value, field string) ([]float64, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: "must be a list of numbers",
			Pos:     v.Pos(),
		}
	}

	var out []float64
	for iter.Next() {
		f, err := iter.Value().Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, f)
	}
	return out, nil
}
