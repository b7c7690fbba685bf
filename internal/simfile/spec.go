// Package simfile loads simulation definitions written in CUE and
// builds a configured solver from them.
package simfile

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Spec is the parsed form of a simulation file.
type Spec struct {
	Name          string
	DT            float64
	Steps         int
	DefaultScheme string
	OutputEvery   int
	Properties    []PropertySpec
	Order         []string
	Entities      []EntitySpec
}

// PropertySpec declares an integrated property beyond the built-in
// velocity and position pair.
type PropertySpec struct {
	Name       string
	Integrands []string
	Integrals  []string
	Kinds      []string
	Scheme     SchemeSpec
}

// SchemeSpec carries the per-property scheme selection. Default may be
// empty, in which case the registry default applies. ByKind overrides
// the default for individual entity kinds.
type SchemeSpec struct {
	Default string
	ByKind  map[string]string
}

// EntitySpec declares a particle entity and its initial arrays.
type EntitySpec struct {
	Name       string
	Kind       string
	Properties []string
	Arrays     map[string][]float64
	// ArrayOrder preserves declaration order so builds are deterministic.
	ArrayOrder []string
}

// CompileError represents a simulation file error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
