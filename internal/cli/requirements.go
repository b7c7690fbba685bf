package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// KindRequirements lists the arrays one entity kind needs, by access
// category.
type KindRequirements struct {
	Write   []string `json:"write,omitempty"`
	Read    []string `json:"read,omitempty"`
	Private []string `json:"private,omitempty"`
}

// RequirementsResult maps entity kind names to their array requirements.
type RequirementsResult struct {
	Simulation string                      `json:"simulation"`
	Kinds      map[string]KindRequirements `json:"kinds"`
}

// NewRequirementsCommand creates the requirements command.
func NewRequirementsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requirements <simfile>",
		Short: "Derive per-kind particle array requirements",
		Long: `Derive which particle arrays each entity kind must carry for the
simulation's registered integration properties. Consumers allocate
arrays from this table before stepping.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequirements(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runRequirements(opts *RootOptions, path string, cmd *cobra.Command) error {
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

	reqs := s.Integrator().Registry().DeriveRequirements()

	result := RequirementsResult{
		Simulation: spec.Name,
		Kinds:      make(map[string]KindRequirements),
	}
	for k, arrays := range reqs.Write {
		kr := result.Kinds[k.String()]
		kr.Write = arrays
		result.Kinds[k.String()] = kr
	}
	for k, arrays := range reqs.Read {
		kr := result.Kinds[k.String()]
		kr.Read = arrays
		result.Kinds[k.String()] = kr
	}
	for k, arrays := range reqs.Private {
		kr := result.Kinds[k.String()]
		kr.Private = arrays
		result.Kinds[k.String()] = kr
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	names := make([]string, 0, len(result.Kinds))
	for name := range result.Kinds {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(formatter.Writer, "Array requirements for %q:\n", spec.Name)
	for _, name := range names {
		kr := result.Kinds[name]
		fmt.Fprintf(formatter.Writer, "  %s:\n", name)
		if len(kr.Write) > 0 {
			fmt.Fprintf(formatter.Writer, "    write:   %v\n", kr.Write)
		}
		if len(kr.Read) > 0 {
			fmt.Fprintf(formatter.Writer, "    read:    %v\n", kr.Read)
		}
		if len(kr.Private) > 0 {
			fmt.Fprintf(formatter.Writer, "    private: %v\n", kr.Private)
		}
	}
	return nil
}
