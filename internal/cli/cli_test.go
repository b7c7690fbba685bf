package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swash-sim/swash/internal/store"
)

const testSim = `simulation: {
	name:  "basic"
	dt:    0.5
	steps: 1

	entity: dam: {
		kind: "fluid"
		properties: ["position"]
		arrays: {
			x: [-1.0, 0.0, 1.0]
			u: [-1.0, 1.0, 0.0]
		}
	}
}
`

func writeSim(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sim.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateValidSim(t *testing.T) {
	path := writeSim(t, testSim)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ Simulation file valid")
}

func TestValidateValidSimJSON(t *testing.T) {
	path := writeSim(t, testSim)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateMissingFile(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope.cue")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "not found")
}

func TestValidateBadSim(t *testing.T) {
	path := writeSim(t, `simulation: {name: "s", entity: f: {kind: "fluid", arrays: x: [0.0]}}`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ Validation failed")
	assert.Contains(t, buf.String(), "dt")
}

func TestValidateUnknownScheme(t *testing.T) {
	path := writeSim(t, `simulation: {
	name: "s", dt: 1.0
	property: density: {integrands: ["arho"], integrals: ["rho"], scheme: "leapfrog"}
	entity: f: {kind: "fluid", properties: ["density"], arrays: rho: [1.0]}
}`)

	// Without --scheme leapfrog the compiled list cannot be built.
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	// With the label registered, validation passes.
	buf.Reset()
	cmd = NewValidateCommand(&RootOptions{Format: "text", Schemes: []string{"leapfrog"}})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())
}

func TestPlanText(t *testing.T) {
	path := writeSim(t, testSim)

	buf := &bytes.Buffer{}
	cmd := NewPlanCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, `Execution list for "basic"`)
	assert.Contains(t, out, "stepper property=position scheme=euler entities=[dam]")
	assert.Contains(t, out, "copier property=position entity=dam")
}

func TestPlanJSON(t *testing.T) {
	path := writeSim(t, testSim)

	buf := &bytes.Buffer{}
	cmd := NewPlanCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string     `json:"status"`
		Data   PlanResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "basic", resp.Data.Simulation)
	// One stepper for position on dam, then its commit copier.
	require.Len(t, resp.Data.Steps, 2)
}

func TestRequirementsJSON(t *testing.T) {
	path := writeSim(t, testSim)

	buf := &bytes.Buffer{}
	cmd := NewRequirementsCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string             `json:"status"`
		Data   RequirementsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	// The built-in kinematic pair is open to every kind.
	assert.Equal(t,
		[]string{"ax", "ay", "az", "u", "v", "w", "x", "y", "z"},
		resp.Data.Kinds["any"].Write)
}

func TestRunCommand(t *testing.T) {
	path := writeSim(t, testSim)

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `Simulation "basic" finished: 1 iterations, t=0.5`)
}

func TestRunCommandStepsFlag(t *testing.T) {
	path := writeSim(t, testSim)

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--steps", "4"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, 4, resp.Data.Iterations)
	assert.Equal(t, 2.0, resp.Data.Time)
}

func TestRunCommandNoSteps(t *testing.T) {
	path := writeSim(t, `simulation: {
	name: "s", dt: 1.0
	entity: f: {kind: "fluid", arrays: x: [0.0]}
}`)

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no step count")
}

func TestRunCommandDest(t *testing.T) {
	path := writeSim(t, testSim)
	destDir := filepath.Join(t.TempDir(), "out")

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--dest", destDir})

	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(destDir, "dam.json"))
	require.NoError(t, err)

	var arrays map[string][]float64
	require.NoError(t, json.Unmarshal(data, &arrays))
	assert.Equal(t, []float64{-1.5, 0.5, 1}, arrays["x"])
}

func TestRunCommandRecordsFrames(t *testing.T) {
	path := writeSim(t, testSim)
	dbPath := filepath.Join(t.TempDir(), "frames.db")

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--steps", "2", "--db", dbPath})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Frames)
	require.NotEmpty(t, resp.Data.RunID)

	// The recorded frame holds the committed positions.
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	x, err := st.ReadFrameArray(context.Background(), resp.Data.RunID, 1, "dam", "x")
	require.NoError(t, err)
	assert.Equal(t, []float64{-1.5, 0.5, 1}, x)
}
