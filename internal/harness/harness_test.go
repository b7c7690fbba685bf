package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario("testdata/scenarios/basic_euler.yaml")
	require.NoError(t, err)

	assert.Equal(t, "basic_euler", sc.Name)
	assert.Equal(t, filepath.Join("testdata", "sims", "basic.cue"), sc.Simfile)
	assert.Equal(t, []string{"reset"}, sc.Operations)
	require.Len(t, sc.Hooks, 1)
	assert.Equal(t, HookDecl{ID: "after-position", Property: "position", Phase: "post"}, sc.Hooks[0])
	require.Len(t, sc.Assertions, 3)
	assert.Equal(t, AssertArrayEquals, sc.Assertions[0].Type)
}

func TestLoadScenario_Errors(t *testing.T) {
	dir := t.TempDir()
	simPath := filepath.Join(dir, "sim.cue")
	writeFile(t, simPath, `simulation: {name: "s", dt: 1.0, entity: f: {kind: "fluid", arrays: x: [0.0]}}`)

	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name: "unknown field",
			content: `name: s
description: d
simfile: sim.cue
assertion: []
`,
			wantMsg: "field assertion not found",
		},
		{
			name: "missing description",
			content: `name: s
simfile: sim.cue
`,
			wantMsg: "description is required",
		},
		{
			name: "simfile not found",
			content: `name: s
description: d
simfile: nope.cue
`,
			wantMsg: "simulation file not found",
		},
		{
			name: "bad hook phase",
			content: `name: s
description: d
simfile: sim.cue
hooks:
  - id: h
    property: position
    phase: during
`,
			wantMsg: `phase must be "pre" or "post"`,
		},
		{
			name: "unknown assertion type",
			content: `name: s
description: d
simfile: sim.cue
assertions:
  - type: state_equals
`,
			wantMsg: "unknown assertion type",
		},
		{
			name: "array_equals without values",
			content: `name: s
description: d
simfile: sim.cue
assertions:
  - type: array_equals
    entity: f
    array: x
`,
			wantMsg: "values list is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "scenario.yaml")
			writeFile(t, path, tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRun_BasicEuler(t *testing.T) {
	sc, err := LoadScenario("testdata/scenarios/basic_euler.yaml")
	require.NoError(t, err)

	result, err := Run(sc)
	require.NoError(t, err)

	assert.Len(t, result.Plan, 4)
	assert.Equal(t, []string{"reset@1", "after-position@1"}, result.Trace)
	assert.Equal(t, 1, result.Iterations)
	assert.Equal(t, 0.5, result.Time)
	assert.Equal(t, []float64{-1.5, 0.5, 1}, result.Final["dam"]["x"])
	assert.Equal(t, []float64{-1, 1, 0}, result.Final["dam"]["u"])
}

func TestRun_AssertionFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sim.cue"), `simulation: {
	name: "s", dt: 1.0, steps: 1
	entity: f: {kind: "fluid", properties: ["position"], arrays: {x: [0.0], u: [1.0]}}
}`)
	writeFile(t, filepath.Join(dir, "scenario.yaml"), `name: s
description: d
simfile: sim.cue
assertions:
  - type: array_equals
    entity: f
    array: x
    values: [2.0]
`)

	sc, err := LoadScenario(filepath.Join(dir, "scenario.yaml"))
	require.NoError(t, err)

	result, err := Run(sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array_equals")

	// The run itself completed; only the assertion failed.
	require.NotNil(t, result)
	assert.Equal(t, []float64{1}, result.Final["f"]["x"])
}

func TestRun_SchemeOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sim.cue"), `simulation: {
	name: "mixed", dt: 1.0, steps: 1
	property: density: {
		integrands: ["arho"]
		integrals:  ["rho"]
		kinds: ["fluid", "boundary"]
		scheme: {default: "euler", boundary: "leapfrog"}
	}
	entity: f: {kind: "fluid", properties: ["density"], arrays: rho: [1.0]}
	entity: b: {kind: "boundary", properties: ["density"], arrays: rho: [2.0]}
}`)
	writeFile(t, filepath.Join(dir, "scenario.yaml"), `name: mixed
description: per-kind scheme override splits the stepper group
simfile: sim.cue
schemes: ["leapfrog"]
assertions:
  - type: plan_contains
    step: "scheme=euler entities=[f]"
  - type: plan_contains
    step: "scheme=leapfrog entities=[b]"
  - type: array_equals
    entity: b
    array: rho
    values: [2.0]
`)

	sc, err := LoadScenario(filepath.Join(dir, "scenario.yaml"))
	require.NoError(t, err)

	_, err = Run(sc)
	require.NoError(t, err)
}

func TestRun_NoStepCount(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sim.cue"), `simulation: {
	name: "s", dt: 1.0
	entity: f: {kind: "fluid", arrays: x: [0.0]}
}`)
	writeFile(t, filepath.Join(dir, "scenario.yaml"), `name: s
description: d
simfile: sim.cue
`)

	sc, err := LoadScenario(filepath.Join(dir, "scenario.yaml"))
	require.NoError(t, err)

	_, err = Run(sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no step count")
}

func TestRunWithGolden_BasicEuler(t *testing.T) {
	sc, err := LoadScenario("testdata/scenarios/basic_euler.yaml")
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, sc))
}
