package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// PlanResult holds the compiled execution list.
type PlanResult struct {
	Simulation string   `json:"simulation"`
	Steps      []string `json:"steps"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <simfile>",
		Short: "Compile and print the execution list",
		Long: `Compile a simulation file into its per-timestep execution list and print
it in order: pre-integration operations, then each property's pre hooks,
steppers and post hooks, then every commit copier.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runPlan(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, spec, err := buildSolver(opts, path)
	if err != nil {
		_ = formatter.Error(err.Error(), nil)
		return err
	}
	if err := s.Setup(); err != nil {
		_ = formatter.Error(err.Error(), nil)
		return WrapExitError(ExitFailure, "compiling execution list", err)
	}

	plan := s.Integrator().DescribePlan()
	if formatter.Format == "json" {
		return formatter.Success(PlanResult{Simulation: spec.Name, Steps: plan})
	}

	fmt.Fprintf(formatter.Writer, "Execution list for %q (%d steps):\n", spec.Name, len(plan))
	for i, line := range plan {
		fmt.Fprintf(formatter.Writer, "%3d. %s\n", i+1, line)
	}
	return nil
}
