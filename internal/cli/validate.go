package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swash-sim/swash/internal/simfile"
)

// ValidationError is one reportable problem in a simulation file.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <simfile>",
		Short: "Validate a simulation file without running it",
		Long: `Validate a CUE simulation file: syntax, required fields, entity kinds,
property references and the compiled execution list. Nothing is stepped.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, spec, err := buildSolver(opts, path)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Code == ExitCommandError {
			_ = formatter.Error(exitErr.Message, nil)
			return err
		}
		return outputValidationErrors(formatter, []ValidationError{toValidationError(err)})
	}

	formatter.VerboseLog("Compiled simulation %q: %d properties, %d entities",
		spec.Name, len(spec.Properties), len(spec.Entities))

	// Setup surfaces unknown schemes, unknown components and missing
	// arrays without running a timestep.
	if err := s.Setup(); err != nil {
		return outputValidationErrors(formatter, []ValidationError{toValidationError(err)})
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}
	fmt.Fprintln(formatter.Writer, "✓ Simulation file valid")
	return nil
}

// toValidationError maps compile and configuration errors to the
// reportable form, keeping source positions where available.
func toValidationError(err error) ValidationError {
	var cerr *simfile.CompileError
	if errors.As(err, &cerr) {
		ve := ValidationError{Field: cerr.Field, Message: cerr.Message}
		if cerr.Pos.IsValid() {
			ve.Line = cerr.Pos.Line()
		}
		return ve
	}
	return ValidationError{Field: "simulation", Message: err.Error()}
}

// outputValidationErrors outputs validation errors and signals failure.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	if formatter.Format == "json" {
		_ = formatter.Error(errs[0].Message, ValidationResult{Valid: false, Errors: errs})
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		if e.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", e.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", e.Field, e.Message)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
