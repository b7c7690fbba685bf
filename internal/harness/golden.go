package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden-file form of a scenario run. Map keys
// serialize sorted, so the encoding is deterministic.
type Snapshot struct {
	Scenario   string                          `json:"scenario"`
	Plan       []string                        `json:"plan"`
	Trace      []string                        `json:"trace"`
	Iterations int                             `json:"iterations"`
	Time       float64                         `json:"time"`
	Final      map[string]map[string][]float64 `json:"final"`
}

// RunWithGolden executes a scenario and compares the run snapshot
// against a golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the run itself or an assertion fails; a snapshot
// mismatch fails the test via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	snapshot := Snapshot{
		Scenario:   scenario.Name,
		Plan:       result.Plan,
		Trace:      result.Trace,
		Iterations: result.Iterations,
		Time:       result.Time,
		Final:      result.Final,
	}

	data, err := json.MarshalIndent(&snapshot, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}
