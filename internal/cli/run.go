package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/swash-sim/swash/internal/solver"
	"github.com/swash-sim/swash/internal/store"
)

// RunResult summarizes a completed simulation run.
type RunResult struct {
	Simulation string  `json:"simulation"`
	Iterations int     `json:"iterations"`
	Time       float64 `json:"time"`
	RunID      string  `json:"run_id,omitempty"`
	Frames     int     `json:"frames,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		steps       int
		finalTime   float64
		dbPath      string
		recordEvery int
		destDir     string
	)

	cmd := &cobra.Command{
		Use:   "run <simfile>",
		Short: "Run a simulation",
		Long: `Compile a simulation file and step it to completion. The step count
comes from --steps, then the simulation file; --final-time runs on
simulated time instead. With --db, particle arrays are recorded as
frames into a SQLite database.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(rootOpts, args[0], cmd, steps, finalTime, dbPath, recordEvery, destDir)
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 0, "number of timesteps to run (overrides the simulation file)")
	cmd.Flags().Float64Var(&finalTime, "final-time", 0, "run until this simulated time instead of a step count")
	cmd.Flags().StringVar(&dbPath, "db", "", "record frames into this SQLite database")
	cmd.Flags().IntVar(&recordEvery, "record-every", 1, "record a frame every N steps (with --db)")
	cmd.Flags().StringVar(&destDir, "dest", "", "write final particle arrays as JSON into this directory")

	return cmd
}

func runRun(opts *RootOptions, path string, cmd *cobra.Command, steps int, finalTime float64, dbPath string, recordEvery int, destDir string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()

	s, spec, err := buildSolver(opts, path)
	if err != nil {
		_ = formatter.Error(err.Error(), nil)
		return err
	}

	if steps == 0 {
		steps = spec.Steps
	}
	if steps == 0 && finalTime <= 0 {
		msg := "no step count: set --steps, --final-time, or steps in the simulation file"
		_ = formatter.Error(msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	var runID string
	var st *store.Store
	if dbPath != "" {
		st, err = store.Open(dbPath)
		if err != nil {
			_ = formatter.Error(err.Error(), nil)
			return WrapExitError(ExitCommandError, "opening frame database", err)
		}
		defer st.Close()

		runID, err = st.BeginRun(ctx, spec.Name)
		if err != nil {
			_ = formatter.Error(err.Error(), nil)
			return WrapExitError(ExitCommandError, "starting run", err)
		}

		writer := store.NewFrameWriter("frame-writer", st, runID,
			s.Integrator().Entities(), nil, recordEvery, s.Integrator().TimeStep())
		s.AddPostStep(writer)
		formatter.VerboseLog("Recording frames to %s (run %s, every %d steps)", dbPath, runID, recordEvery)
	}

	if err := s.Setup(); err != nil {
		_ = formatter.Error(err.Error(), nil)
		return WrapExitError(ExitFailure, "compiling execution list", err)
	}

	if finalTime > 0 {
		s.SetFinalTime(finalTime)
		err = s.Solve(ctx)
	} else {
		err = s.SolveSteps(ctx, steps)
	}
	if err != nil {
		_ = formatter.Error(err.Error(), nil)
		return WrapExitError(ExitFailure, "simulation failed", err)
	}

	if destDir != "" {
		if err := writeDest(s, destDir); err != nil {
			_ = formatter.Error(err.Error(), nil)
			return WrapExitError(ExitCommandError, "writing output", err)
		}
		formatter.VerboseLog("Wrote final arrays to %s", destDir)
	}

	result := RunResult{
		Simulation: spec.Name,
		Iterations: s.Iteration(),
		Time:       s.Time(),
		RunID:      runID,
	}
	if st != nil {
		if n, err := st.FrameCount(ctx, runID); err == nil {
			result.Frames = n
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "Simulation %q finished: %d iterations, t=%g\n",
		result.Simulation, result.Iterations, result.Time)
	if result.RunID != "" {
		fmt.Fprintf(formatter.Writer, "Recorded %d frame(s) as run %s\n", result.Frames, result.RunID)
	}
	return nil
}

// writeDest dumps each entity's final arrays as <dest>/<entity>.json.
func writeDest(s *solver.Solver, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	for _, e := range s.Integrator().Entities() {
		parr := e.Particles()
		if parr == nil {
			continue
		}
		arrays := make(map[string][]float64, len(parr.Names()))
		for _, name := range parr.Names() {
			data, _ := parr.Get(name)
			arrays[name] = data
		}
		data, err := json.MarshalIndent(arrays, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(destDir, e.Name()+".json"), append(data, '\n'), 0o644); err != nil {
			return err
		}
	}
	return nil
}
