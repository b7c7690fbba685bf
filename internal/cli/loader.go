package cli

import (
	"fmt"
	"os"

	"github.com/swash-sim/swash/internal/integrator"
	"github.com/swash-sim/swash/internal/simfile"
	"github.com/swash-sim/swash/internal/solver"
)

// loadSpec reads and compiles a simulation file, mapping missing-file
// and compile errors to command-level exit errors.
func loadSpec(path string) (*simfile.Spec, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("simulation file not found: %s", path))
	}

	spec, err := simfile.LoadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "compiling simulation file", err)
	}
	return spec, nil
}

// buildSolver compiles a simulation file into a solver, registering any
// extra scheme labels requested on the command line.
func buildSolver(opts *RootOptions, path string) (*solver.Solver, *simfile.Spec, error) {
	spec, err := loadSpec(path)
	if err != nil {
		return nil, nil, err
	}

	schemes := integrator.NewSchemeSet()
	for _, label := range opts.Schemes {
		schemes.Register(integrator.Scheme(label), integrator.EulerStepperAs(integrator.Scheme(label)))
	}

	s, err := simfile.Build(spec, schemes)
	if err != nil {
		return nil, nil, WrapExitError(ExitFailure, "building simulation", err)
	}
	return s, spec, nil
}
